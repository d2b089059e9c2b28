package watch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/fairlens/riskwatch/internal/gateway"
	"github.com/fairlens/riskwatch/internal/mode"
	"github.com/fairlens/riskwatch/internal/models"
	"github.com/fairlens/riskwatch/internal/riskapi"
	"github.com/fairlens/riskwatch/internal/storage"
)

type memPersistence struct {
	values map[string]string
}

func (m *memPersistence) GetSetting(key string) (string, error) {
	return m.values[key], nil
}

func (m *memPersistence) SetSetting(key, value string) error {
	m.values[key] = value
	return nil
}

func newDemoRefresher(t *testing.T) *Refresher {
	t.Helper()
	store, err := storage.New(100, filepath.Join(t.TempDir(), "watch.db"))
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	persist := &memPersistence{values: map[string]string{mode.SettingKey: "demo"}}
	modes := mode.NewStore(persist, models.ModeLive)
	gw := gateway.New(modes, riskapi.NewClient("http://127.0.0.1:0", time.Second))
	return New(gw, store)
}

func TestRefreshDemoMode(t *testing.T) {
	r := newDemoRefresher(t)

	result, err := r.Refresh(context.Background(), 200)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if result.Stats == nil || result.Stats.TotalPredictions != 5 {
		t.Errorf("unexpected stats: %+v", result.Stats)
	}
	if len(result.Requests) != 5 {
		t.Errorf("expected 5 requests, got %d", len(result.Requests))
	}
	// Fixtures 1002 and 1004 are declines, both unseen on the first cycle.
	if len(result.NewDeclines) != 2 {
		t.Fatalf("expected 2 new declines, got %d", len(result.NewDeclines))
	}
	if result.NewDeclines[0].Request.ID != "TXN-1002" {
		t.Errorf("first decline = %q, want TXN-1002", result.NewDeclines[0].Request.ID)
	}
	if result.NewDeclines[0].Request.Status != models.StatusRejected {
		t.Errorf("decline status = %q", result.NewDeclines[0].Request.Status)
	}

	// Second cycle observes nothing new.
	result, err = r.Refresh(context.Background(), 200)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if len(result.NewDeclines) != 0 {
		t.Errorf("expected no new declines on repeat, got %d", len(result.NewDeclines))
	}
}

func TestRefreshToleratesPartialFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/stats":
			json.NewEncoder(w).Encode(models.Stats{TotalPredictions: 7})
		case "/logs":
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"detail":"log store offline"}`))
		}
	}))
	defer srv.Close()

	store, err := storage.New(100, filepath.Join(t.TempDir(), "partial.db"))
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer store.Close()

	persist := &memPersistence{values: map[string]string{mode.SettingKey: "live"}}
	modes := mode.NewStore(persist, models.ModeLive)
	r := New(gateway.New(modes, riskapi.NewClient(srv.URL, 5*time.Second)), store)

	result, err := r.Refresh(context.Background(), 20)
	if err != nil {
		t.Fatalf("partial failure should not fail the cycle: %v", err)
	}
	if result.Stats == nil || result.Stats.TotalPredictions != 7 {
		t.Errorf("stats should survive the logs failure: %+v", result.Stats)
	}
	if result.LogsErr == nil {
		t.Error("expected logs error to be reported")
	}
	if len(result.Requests) != 0 {
		t.Errorf("no requests expected, got %d", len(result.Requests))
	}
}

func TestRefreshFailsWhenBothFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"detail":"Backend unavailable"}`))
	}))
	defer srv.Close()

	store, err := storage.New(100, filepath.Join(t.TempDir(), "fail.db"))
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer store.Close()

	persist := &memPersistence{values: map[string]string{mode.SettingKey: "live"}}
	modes := mode.NewStore(persist, models.ModeLive)
	r := New(gateway.New(modes, riskapi.NewClient(srv.URL, 5*time.Second)), store)

	if _, err := r.Refresh(context.Background(), 20); err == nil {
		t.Fatal("expected error when both fetches fail")
	}
}

func TestRefreshDiscardsResultsAfterCancellation(t *testing.T) {
	r := newDemoRefresher(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Refresh(ctx, 200); err == nil {
		t.Fatal("expected context error after cancellation")
	}
}

func TestRecordNotified(t *testing.T) {
	r := newDemoRefresher(t)

	result, err := r.Refresh(context.Background(), 200)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	r.RecordNotified(result.NewDeclines)

	notified, err := r.store.IsNotified(1002)
	if err != nil {
		t.Fatalf("IsNotified failed: %v", err)
	}
	if !notified {
		t.Error("decline 1002 should be marked notified")
	}
}
