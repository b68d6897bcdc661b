package batch_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"epgdoctor/internal/batch"
	"epgdoctor/internal/match"
	"epgdoctor/internal/schedule"
	"epgdoctor/internal/services"
	"epgdoctor/internal/testsupport"
)

type recordingApplier struct {
	mu    sync.Mutex
	calls map[int64]int64
	err   error
}

func (a *recordingApplier) AssignEPG(ctx context.Context, channelID, epgID int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.calls == nil {
		a.calls = make(map[int64]int64)
	}
	a.calls[channelID] = epgID
	return a.err
}

func workingValidator(working ...int64) schedule.ValidatorFunc {
	ok := make(map[int64]bool, len(working))
	for _, id := range working {
		ok[id] = true
	}
	return func(ctx context.Context, epgID int64, window schedule.Window) (bool, error) {
		return ok[epgID], nil
	}
}

func newSelector(t *testing.T, validator schedule.Validator) *match.Selector {
	t.Helper()
	selector, err := match.NewSelector(match.DefaultConfig(), validator)
	if err != nil {
		t.Fatalf("new selector: %v", err)
	}
	return selector
}

func scanWindow() schedule.Window {
	return schedule.NewWindow(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), 12)
}

func TestScanClassifiesOutcomes(t *testing.T) {
	validator := schedule.ValidatorFunc(func(ctx context.Context, epgID int64, window schedule.Window) (bool, error) {
		switch epgID {
		case 10:
			return true, nil
		case 20:
			return false, nil
		default:
			return false, services.Wrap(services.ErrUnavailable, "schedule", "has_programs", "probe failed", nil)
		}
	})
	runner := batch.NewRunner(validator, newSelector(t, validator), batch.WithWorkers(2))

	channels := []batch.Channel{
		{ID: 1, Name: "Healthy", EPGDataID: 10},
		{ID: 2, Name: "Broken", EPGDataID: 20},
		{ID: 3, Name: "Unassigned"},
		{ID: 4, Name: "Flaky", EPGDataID: 30},
	}
	result, err := runner.Scan(context.Background(), channels, scanWindow(), nil)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if result.Kind != "scan" {
		t.Fatalf("kind = %q", result.Kind)
	}
	if result.RunID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Fatal("run id not set")
	}

	want := []batch.Status{batch.StatusOK, batch.StatusMissing, batch.StatusMissing, batch.StatusInconclusive}
	for i, status := range want {
		if result.Outcomes[i].Status != status {
			t.Errorf("outcome %d = %q, want %q", i, result.Outcomes[i].Status, status)
		}
	}
	if result.Outcomes[2].Detail != "no guide identity assigned" {
		t.Errorf("unassigned detail = %q", result.Outcomes[2].Detail)
	}

	counts := result.Counts()
	if counts.Total != 4 || counts.OK != 1 || counts.Missing != 2 || counts.Inconclusive != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
	if broken := result.Broken(); len(broken) != 2 {
		t.Fatalf("broken = %d, want 2", len(broken))
	}
}

func TestScanEmptyLineupIsError(t *testing.T) {
	validator := workingValidator()
	runner := batch.NewRunner(validator, newSelector(t, validator))

	_, err := runner.Scan(context.Background(), nil, scanWindow(), []string{"nosuch"})
	if err == nil {
		t.Fatal("expected error for empty lineup")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
}

func TestHealFindsReplacementAndApplies(t *testing.T) {
	validator := workingValidator(20)
	applier := &recordingApplier{}
	runner := batch.NewRunner(validator, newSelector(t, validator),
		batch.WithApplier(applier), batch.WithApplyThreshold(70))

	channels := []batch.Channel{
		{ID: 1, Name: "ABC - IL Harrisburg (WSIL)", EPGDataID: 10},
	}
	pool := []match.Candidate{
		{ID: 10, Name: "WSIL-DT", Source: "A"},
		{ID: 20, Name: "WSIL HD", Source: "A"},
	}
	result, err := runner.Heal(context.Background(), channels, pool, scanWindow(), true)
	if err != nil {
		t.Fatalf("heal: %v", err)
	}

	outcome := result.Outcomes[0]
	if outcome.Status != batch.StatusHealed {
		t.Fatalf("status = %q, want healed", outcome.Status)
	}
	if outcome.Match == nil || outcome.Match.Candidate.ID != 20 {
		t.Fatalf("match = %+v, want candidate 20", outcome.Match)
	}
	if !outcome.Applied {
		t.Fatalf("expected match applied, detail %q", outcome.Detail)
	}
	if applier.calls[1] != 20 {
		t.Fatalf("applier calls = %v", applier.calls)
	}
}

func TestHealApplyRespectsThreshold(t *testing.T) {
	validator := workingValidator(20)
	applier := &recordingApplier{}
	runner := batch.NewRunner(validator, newSelector(t, validator),
		batch.WithApplier(applier), batch.WithApplyThreshold(70))

	// State-only agreement scores 30, below the apply threshold.
	channels := []batch.Channel{
		{ID: 1, Name: "News - IL Harrisburg", EPGDataID: 10},
	}
	pool := []match.Candidate{
		{ID: 20, Name: "Morning Show - IL Chicago", Source: "A"},
	}
	result, err := runner.Heal(context.Background(), channels, pool, scanWindow(), true)
	if err != nil {
		t.Fatalf("heal: %v", err)
	}

	outcome := result.Outcomes[0]
	if outcome.Status != batch.StatusHealed {
		t.Fatalf("status = %q, want healed", outcome.Status)
	}
	if outcome.Applied {
		t.Fatal("low-confidence match must not be applied")
	}
	if outcome.Detail != "confidence below apply threshold" {
		t.Fatalf("detail = %q", outcome.Detail)
	}
	if len(applier.calls) != 0 {
		t.Fatalf("applier calls = %v, want none", applier.calls)
	}
}

func TestHealNeverReusesBrokenIdentity(t *testing.T) {
	validator := workingValidator(10)
	runner := batch.NewRunner(validator, newSelector(t, validator))

	channels := []batch.Channel{
		{ID: 1, Name: "ABC (WSIL)", EPGDataID: 10},
	}
	pool := []match.Candidate{
		{ID: 10, Name: "WSIL-DT", Source: "A"},
	}
	result, err := runner.Heal(context.Background(), channels, pool, scanWindow(), false)
	if err != nil {
		t.Fatalf("heal: %v", err)
	}
	if result.Outcomes[0].Status != batch.StatusNoMatch {
		t.Fatalf("status = %q, want no_match when only the broken identity exists", result.Outcomes[0].Status)
	}
}

func TestHealLookupOutageIsInconclusive(t *testing.T) {
	validator := schedule.ValidatorFunc(func(ctx context.Context, epgID int64, window schedule.Window) (bool, error) {
		return false, services.Wrap(services.ErrUnavailable, "schedule", "has_programs", "timeout", nil)
	})
	runner := batch.NewRunner(validator, newSelector(t, validator))

	channels := []batch.Channel{
		{ID: 1, Name: "ABC (WSIL)", EPGDataID: 10},
	}
	pool := []match.Candidate{
		{ID: 20, Name: "WSIL-DT", Source: "A"},
	}
	result, err := runner.Heal(context.Background(), channels, pool, scanWindow(), false)
	if err != nil {
		t.Fatalf("heal run must survive item outages: %v", err)
	}
	if result.Outcomes[0].Status != batch.StatusInconclusive {
		t.Fatalf("status = %q, want inconclusive", result.Outcomes[0].Status)
	}
}

func TestMatchAllSuggestsWithoutExclusion(t *testing.T) {
	validator := workingValidator(10)
	runner := batch.NewRunner(validator, newSelector(t, validator))

	channels := []batch.Channel{
		{ID: 1, Name: "ABC (WSIL)", EPGDataID: 10},
		{ID: 2, Name: "Obscure Feed"},
	}
	pool := []match.Candidate{
		{ID: 10, Name: "WSIL-DT", Source: "A"},
	}
	result, err := runner.MatchAll(context.Background(), channels, pool, scanWindow(), false)
	if err != nil {
		t.Fatalf("match all: %v", err)
	}
	if result.Outcomes[0].Status != batch.StatusMatched || result.Outcomes[0].Match.Candidate.ID != 10 {
		t.Fatalf("outcome 0 = %+v, want current identity re-suggested", result.Outcomes[0])
	}
	if result.Outcomes[1].Status != batch.StatusNoMatch {
		t.Fatalf("outcome 1 = %q, want no_match", result.Outcomes[1].Status)
	}
}

type deadFetcher struct{}

func (deadFetcher) FetchPrograms(context.Context, int64, schedule.Window) ([]schedule.Program, error) {
	return nil, errors.New("upstream must not be reached")
}

func TestScanValidatesFromProgramCache(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	window := scanWindow()
	testsupport.SeedPrograms(t, store, 10, window.Start.Add(time.Hour), 3)

	validator := schedule.NewCachingValidator(deadFetcher{}, store)
	runner := batch.NewRunner(validator, newSelector(t, validator))

	channels := []batch.Channel{{ID: 1, Name: "ABC (WSIL)", EPGDataID: 10}}
	result, err := runner.Scan(context.Background(), channels, window, nil)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if result.Outcomes[0].Status != batch.StatusOK {
		t.Fatalf("outcome = %+v, want ok from cached programs", result.Outcomes[0])
	}
}
