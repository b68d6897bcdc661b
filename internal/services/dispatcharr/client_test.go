package dispatcharr_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"epgdoctor/internal/schedule"
	"epgdoctor/internal/services"
	"epgdoctor/internal/services/dispatcharr"
)

func newTestClient(t *testing.T, handler http.Handler) (*dispatcharr.Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := dispatcharr.NewClient(server.URL, "secret", 5*time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, server
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := dispatcharr.NewClient("  ", "token", time.Second)
	if err == nil {
		t.Fatal("expected error for empty base URL")
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration marker, got %v", err)
	}
}

func TestListChannelsFiltersGroups(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/channels/channels/" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected auth header %q", got)
		}
		_ = json.NewEncoder(w).Encode([]dispatcharr.Channel{
			{ID: 1, Name: "WSIL-DT", Group: "Locals", EPGDataID: 10},
			{ID: 2, Name: "ESPN", Group: "Sports", EPGDataID: 20},
			{ID: 3, Name: "WPSD-DT", Group: "locals", EPGDataID: 30},
		})
	}))

	channels, err := client.ListChannels(context.Background(), []string{"LOCALS"})
	if err != nil {
		t.Fatalf("list channels: %v", err)
	}
	if len(channels) != 2 || channels[0].ID != 1 || channels[1].ID != 3 {
		t.Fatalf("unexpected filtered lineup: %+v", channels)
	}
}

func TestHasProgramsForwardsWindow(t *testing.T) {
	window := schedule.NewWindow(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), 12)
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if got := query.Get("epg_data"); got != "42" {
			t.Errorf("epg_data = %q", got)
		}
		if got := query.Get("end_time__gte"); got != "2026-03-01T12:00:00Z" {
			t.Errorf("end_time__gte = %q", got)
		}
		if got := query.Get("start_time__lt"); got != "2026-03-02T00:00:00Z" {
			t.Errorf("start_time__lt = %q", got)
		}
		_ = json.NewEncoder(w).Encode([]dispatcharr.Program{
			{Title: "News", Start: window.Start, End: window.Start.Add(time.Hour)},
		})
	}))

	ok, err := client.HasPrograms(context.Background(), 42, window)
	if err != nil {
		t.Fatalf("has programs: %v", err)
	}
	if !ok {
		t.Fatal("expected programs in window")
	}
}

func TestHasProgramsEmptyIsCleanNegative(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("[]"))
	}))

	ok, err := client.HasPrograms(context.Background(), 7, schedule.NewWindow(time.Now(), 12))
	if err != nil {
		t.Fatalf("has programs: %v", err)
	}
	if ok {
		t.Fatal("expected no programs")
	}
}

func TestAssignEPGPatchesChannel(t *testing.T) {
	var gotMethod, gotPath string
	var payload map[string]int64
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))

	if err := client.AssignEPG(context.Background(), 5, 99); err != nil {
		t.Fatalf("assign epg: %v", err)
	}
	if gotMethod != http.MethodPatch {
		t.Fatalf("method = %q, want PATCH", gotMethod)
	}
	if gotPath != "/api/channels/channels/5/" {
		t.Fatalf("path = %q", gotPath)
	}
	if payload["epg_data_id"] != 99 {
		t.Fatalf("payload = %v", payload)
	}
}

func TestRefreshGuidePostsImport(t *testing.T) {
	var gotMethod, gotPath string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))

	if err := client.RefreshGuide(context.Background()); err != nil {
		t.Fatalf("refresh guide: %v", err)
	}
	if gotMethod != http.MethodPost {
		t.Fatalf("method = %q, want POST", gotMethod)
	}
	if gotPath != "/api/epg/import/" {
		t.Fatalf("path = %q", gotPath)
	}
}

func TestStatusClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		marker error
	}{
		{"unauthorized", http.StatusUnauthorized, services.ErrConfiguration},
		{"forbidden", http.StatusForbidden, services.ErrConfiguration},
		{"not found", http.StatusNotFound, services.ErrNotFound},
		{"server error", http.StatusBadGateway, services.ErrUnavailable},
		{"bad request", http.StatusBadRequest, services.ErrValidation},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			_, err := client.ListEPGData(context.Background())
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tc.marker) {
				t.Fatalf("error %v does not match marker %v", err, tc.marker)
			}
		})
	}
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	client, err := dispatcharr.NewClient(server.URL, "secret", time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	server.Close()

	_, err = client.ListChannels(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error from closed server")
	}
	if !services.IsInconclusive(err) {
		t.Fatalf("transport failure must be inconclusive, got %v", err)
	}
}
