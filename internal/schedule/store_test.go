package schedule

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "programs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreHasPrograms(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	window := NewWindow(now, 12)

	// Program ending before the window opens, one overlapping, one beyond.
	err := store.ReplacePrograms(ctx, 7, []Program{
		{EPGID: 7, Title: "Late Movie", Start: now.Add(-3 * time.Hour), End: now.Add(-1 * time.Hour)},
		{EPGID: 7, Title: "Evening News", Start: now.Add(2 * time.Hour), End: now.Add(3 * time.Hour)},
	})
	if err != nil {
		t.Fatalf("replace programs: %v", err)
	}
	if err := store.ReplacePrograms(ctx, 8, []Program{
		{EPGID: 8, Title: "Next Week Special", Start: now.Add(20 * time.Hour), End: now.Add(21 * time.Hour)},
	}); err != nil {
		t.Fatalf("replace programs: %v", err)
	}

	ok, err := store.HasPrograms(ctx, 7, window)
	if err != nil {
		t.Fatalf("has programs: %v", err)
	}
	if !ok {
		t.Fatal("expected programs inside window for id 7")
	}

	ok, err = store.HasPrograms(ctx, 8, window)
	if err != nil {
		t.Fatalf("has programs: %v", err)
	}
	if ok {
		t.Fatal("id 8 only has programs beyond the window")
	}

	ok, err = store.HasPrograms(ctx, 99, window)
	if err != nil {
		t.Fatalf("has programs: %v", err)
	}
	if ok {
		t.Fatal("unknown id must report no programs")
	}
}

func TestStoreOverlapBoundaries(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	window := NewWindow(now, 6)

	// Ends exactly at window start: still counts (end >= start).
	if err := store.ReplacePrograms(ctx, 1, []Program{
		{EPGID: 1, Start: now.Add(-1 * time.Hour), End: now},
	}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if ok, _ := store.HasPrograms(ctx, 1, window); !ok {
		t.Fatal("program ending at window start must count")
	}

	// Starts exactly at window end: excluded (start < end).
	if err := store.ReplacePrograms(ctx, 2, []Program{
		{EPGID: 2, Start: window.End, End: window.End.Add(time.Hour)},
	}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if ok, _ := store.HasPrograms(ctx, 2, window); ok {
		t.Fatal("program starting at window end must not count")
	}
}

func TestStoreReplaceProgramsSwaps(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := store.ReplacePrograms(ctx, 5, []Program{
		{EPGID: 5, Start: now, End: now.Add(time.Hour)},
		{EPGID: 5, Start: now.Add(time.Hour), End: now.Add(2 * time.Hour)},
	}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if count, _ := store.ProgramCount(ctx, 5); count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}

	if err := store.ReplacePrograms(ctx, 5, nil); err != nil {
		t.Fatalf("replace with empty: %v", err)
	}
	if count, _ := store.ProgramCount(ctx, 5); count != 0 {
		t.Fatalf("count after clear = %d, want 0", count)
	}
}

func TestStoreReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "programs.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	now := time.Now().UTC()
	if err := store.ReplacePrograms(context.Background(), 3, []Program{
		{EPGID: 3, Start: now, End: now.Add(time.Hour)},
	}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if count, _ := reopened.ProgramCount(context.Background(), 3); count != 1 {
		t.Fatalf("count after reopen = %d, want 1", count)
	}
}

func TestWindowOverlaps(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	w := NewWindow(now, 12)
	if w.Hours() != 12 {
		t.Fatalf("hours = %d, want 12", w.Hours())
	}
	cases := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"inside", now.Add(time.Hour), now.Add(2 * time.Hour), true},
		{"spans window", now.Add(-time.Hour), now.Add(13 * time.Hour), true},
		{"ends at start", now.Add(-time.Hour), now, true},
		{"starts at end", w.End, w.End.Add(time.Hour), false},
		{"entirely before", now.Add(-2 * time.Hour), now.Add(-time.Hour), false},
		{"entirely after", w.End.Add(time.Hour), w.End.Add(2 * time.Hour), false},
	}
	for _, tc := range cases {
		if got := w.Overlaps(tc.start, tc.end); got != tc.want {
			t.Fatalf("%s: Overlaps = %v, want %v", tc.name, got, tc.want)
		}
	}
}
