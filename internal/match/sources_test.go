package match

import (
	"testing"

	"epgdoctor/internal/identity"
)

func TestPrioritizeFiltersUnlistedSources(t *testing.T) {
	p := NewPrioritizer([]string{"Gracenote", "SchedulesDirect"})
	pool := []Candidate{
		{ID: 1, Name: "WSIL-DT", Source: "gracenote"},
		{ID: 2, Name: "WABC-DT", Source: "schedulesdirect"},
		{ID: 3, Name: "WXYZ-DT", Source: "community"},
	}

	out := p.Prioritize(pool, identity.DefaultFlags())
	if len(out) != 2 {
		t.Fatalf("got %d candidates, want 2", len(out))
	}
	if out[0].ID != 1 || out[0].Priority != 0 {
		t.Fatalf("first = id %d priority %d, want id 1 priority 0", out[0].ID, out[0].Priority)
	}
	if out[1].ID != 2 || out[1].Priority != 1 {
		t.Fatalf("second = id %d priority %d, want id 2 priority 1", out[1].ID, out[1].Priority)
	}
}

func TestPrioritizeEmptyOrderAdmitsAll(t *testing.T) {
	p := NewPrioritizer(nil)
	pool := []Candidate{
		{ID: 1, Name: "Alpha", Source: "x"},
		{ID: 2, Name: "Beta", Source: "y"},
	}
	out := p.Prioritize(pool, identity.DefaultFlags())
	if len(out) != 2 {
		t.Fatalf("got %d candidates, want 2", len(out))
	}
	for i, rc := range out {
		if rc.Priority != 0 {
			t.Fatalf("candidate %d priority = %d, want 0", i, rc.Priority)
		}
	}
	if out[0].ID != 1 || out[1].ID != 2 {
		t.Fatal("pool order not preserved")
	}
}

func TestPrioritizeDeduplicatesCallsignRepresentatives(t *testing.T) {
	p := NewPrioritizer(nil)
	pool := []Candidate{
		{ID: 1, Name: "WSIL-DT", Source: "A"},
		{ID: 2, Name: "WSIL-DT2", Source: "A"},
		{ID: 3, Name: "WSIL-DT", Source: "B"},
		{ID: 4, Name: "Premium Movies", Source: "A"},
		{ID: 5, Name: "More Premium Movies", Source: "A"},
	}

	out := p.Prioritize(pool, identity.DefaultFlags())
	ids := make([]int64, 0, len(out))
	for _, rc := range out {
		ids = append(ids, rc.ID)
	}
	// Same source and call sign collapse to the shortest name; other sources
	// and callsign-less candidates pass through untouched.
	want := []int64{1, 3, 4, 5}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}
}

func TestPrioritizeDedupKeepsShorterLaterName(t *testing.T) {
	p := NewPrioritizer(nil)
	pool := []Candidate{
		{ID: 1, Name: "WSIL-DT Extended Feed", Source: "A"},
		{ID: 2, Name: "WSIL-DT", Source: "A"},
	}
	out := p.Prioritize(pool, identity.DefaultFlags())
	if len(out) != 1 || out[0].ID != 2 {
		t.Fatalf("got %+v, want single candidate id 2", out)
	}
}
