package riskapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fairlens/riskwatch/internal/models"
)

func testFeatures() models.RiskFeatures {
	return models.RiskFeatures{
		AvgMonthlyInflow:      85000,
		InflowVolatility:      0.16,
		AvgMonthlyOutflow:     62000,
		MinBalance30d:         22000,
		PurchaseToInflowRatio: 0.24,
		TotalBurdenRatio:      0.41,
		BufferRatio:           0.19,
		StressIndex:           0.29,
	}
}

func TestPredict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/predict" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var features models.RiskFeatures
		if err := json.NewDecoder(r.Body).Decode(&features); err != nil {
			t.Errorf("failed to decode features: %v", err)
		}
		if features.AvgMonthlyInflow != 85000 {
			t.Errorf("unexpected inflow: %v", features.AvgMonthlyInflow)
		}
		json.NewEncoder(w).Encode(models.RiskDecision{RiskProbability: 0.28, Decision: models.DecisionApprove})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	decision, err := client.Predict(context.Background(), testFeatures())
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if decision.Decision != models.DecisionApprove || decision.RiskProbability != 0.28 {
		t.Errorf("unexpected decision: %+v", decision)
	}
}

func TestPredictErrorBodyText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte("inflow_volatility out of range"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.Predict(context.Background(), testFeatures())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "inflow_volatility out of range") {
		t.Errorf("error should carry response text, got %q", err)
	}
}

func TestStatsErrorDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"detail":"Backend unavailable"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.Stats(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "Backend unavailable") {
		t.Errorf("error should carry server detail, got %q", err)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Status != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", apiErr.Status)
	}
}

func TestStatsErrorWithoutDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.Stats(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "request failed (502)") {
		t.Errorf("expected generic failure message, got %q", err)
	}
}

func TestStatsEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.Stats(context.Background())
	if err == nil {
		t.Fatal("expected error for empty 200 body")
	}
	if !strings.Contains(err.Error(), "empty response") {
		t.Errorf("expected empty response error, got %q", err)
	}
}

func TestStatsInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.Stats(context.Background())
	if err == nil {
		t.Fatal("expected error for non-JSON 200 body")
	}
	if !strings.Contains(err.Error(), "invalid JSON") {
		t.Errorf("expected invalid JSON error, got %q", err)
	}
}

func TestLogsPagination(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/logs" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("page") != "2" || r.URL.Query().Get("limit") != "50" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(models.LogsPage{
			Page: 2, Limit: 50, Total: 120, TotalPages: 3,
			Items: []models.LogEntry{{ID: 51, Decision: models.DecisionApprove}},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	logs, err := client.Logs(context.Background(), 2, 50)
	if err != nil {
		t.Fatalf("Logs failed: %v", err)
	}
	if logs.TotalPages != 3 || len(logs.Items) != 1 || logs.Items[0].ID != 51 {
		t.Errorf("unexpected logs page: %+v", logs)
	}
}

func TestAuditLogsForwardsFilters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("status") != "warning" {
			t.Errorf("status = %q, want warning", q.Get("status"))
		}
		if q.Get("search") != "TXN-1004" {
			t.Errorf("search = %q, want TXN-1004", q.Get("search"))
		}
		json.NewEncoder(w).Encode(models.AuditLogsPage{Page: 1, Limit: 20, Total: 1, TotalPages: 1})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.AuditLogs(context.Background(), 1, 20, AuditFilters{Status: "warning", Search: " TXN-1004 "})
	if err != nil {
		t.Fatalf("AuditLogs failed: %v", err)
	}
}

func TestAuditLogsOmitsAllStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("status") {
			t.Error("status=all should not be forwarded")
		}
		json.NewEncoder(w).Encode(models.AuditLogsPage{Page: 1, Limit: 20})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	if _, err := client.AuditLogs(context.Background(), 1, 20, AuditFilters{Status: "all"}); err != nil {
		t.Fatalf("AuditLogs failed: %v", err)
	}
}

func TestRequestCancellation(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	client := NewClient(srv.URL, 30*time.Second)
	if _, err := client.Stats(ctx); err == nil {
		t.Fatal("expected error after cancellation")
	}
}
