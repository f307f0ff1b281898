package mcp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// TestHTTPClientQueryMetrics verifies the REST parameters and identity
// header sent for a metrics query, and the decoded envelope.
func TestHTTPClientQueryMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/metrics" {
			t.Errorf("path = %q, want /api/v1/metrics", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("metric") != "heart_rate_variability" {
			t.Errorf("metric = %q", q.Get("metric"))
		}
		if q.Get("limit") != "100" {
			t.Errorf("limit = %q, want 100", q.Get("limit"))
		}
		if q.Get("from") != "2025-07-01T00:00:00Z" {
			t.Errorf("from = %q", q.Get("from"))
		}
		if got := r.Header.Get("X-User-ID"); got != "alice" {
			t.Errorf("X-User-ID = %q, want alice", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"timestamp":"2025-07-01T08:00:00Z","value":55}],"total_count":1}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "alice")
	from := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	resp, err := c.QueryMetrics(context.Background(), "heart_rate_variability", &from, nil, 100)
	if err != nil {
		t.Fatalf("QueryMetrics: %v", err)
	}
	if resp.TotalCount != 1 {
		t.Errorf("total_count = %d, want 1", resp.TotalCount)
	}
	if len(resp.Data) != 1 || resp.Data[0].Value != 55 {
		t.Errorf("data = %+v, want one point of 55", resp.Data)
	}
}

// TestHTTPClientGetInsights verifies the insights call decodes the report.
func TestHTTPClientGetInsights(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/insights" {
			t.Errorf("path = %q, want /api/v1/insights", r.URL.Path)
		}
		if got := r.URL.Query().Get("range_hours"); got != "48" {
			t.Errorf("range_hours = %q, want 48", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"period_hours":48,"insight":"rest more"}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "")
	report, err := c.GetInsights(context.Background(), 48)
	if err != nil {
		t.Fatalf("GetInsights: %v", err)
	}
	if report.PeriodHours != 48 {
		t.Errorf("period_hours = %d, want 48", report.PeriodHours)
	}
	if report.Insight != "rest more" {
		t.Errorf("insight = %q, want %q", report.Insight, "rest more")
	}
}

// TestHTTPClientErrorStatus verifies a non-200 response surfaces as an
// error including the body.
func TestHTTPClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"metric must be one of heart_rate_variability, workout, sleep"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "")
	_, err := c.QueryMetrics(context.Background(), "steps", nil, nil, 0)
	if err == nil {
		t.Fatal("expected error for 400 response")
	}
	if !strings.Contains(err.Error(), "400") {
		t.Errorf("error = %v, want status code included", err)
	}
}
