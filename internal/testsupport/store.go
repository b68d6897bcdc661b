package testsupport

import (
	"context"
	"testing"
	"time"

	"epgdoctor/internal/config"
	"epgdoctor/internal/schedule"
)

// MustOpenStore opens a schedule.Store under the config's data directory and
// registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *schedule.Store {
	t.Helper()

	store, err := schedule.Open(cfg.ProgramCachePath())
	if err != nil {
		t.Fatalf("open schedule store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close schedule store: %v", err)
		}
	})
	return store
}

// SeedPrograms loads a contiguous run of hour-long programs for epgID
// starting at start.
func SeedPrograms(t testing.TB, store *schedule.Store, epgID int64, start time.Time, count int) {
	t.Helper()

	programs := make([]schedule.Program, 0, count)
	for i := 0; i < count; i++ {
		begin := start.Add(time.Duration(i) * time.Hour)
		programs = append(programs, schedule.Program{
			Title: "program",
			Start: begin,
			End:   begin.Add(time.Hour),
		})
	}
	if err := store.ReplacePrograms(context.Background(), epgID, programs); err != nil {
		t.Fatalf("seed programs for %d: %v", epgID, err)
	}
}
