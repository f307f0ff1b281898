package insights

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/meltforce/vitalsink/internal/config"
)

func testGenerator(url string, timeout time.Duration) *Generator {
	return NewGenerator(config.InsightsConfig{
		URL:     url,
		APIKey:  "test-key",
		Model:   "test-model",
		Timeout: timeout,
	}, slog.New(slog.NewTextHandler(&strings.Builder{}, nil)))
}

func samplePeriod(hrvAvg float64) PeriodData {
	return PeriodData{
		HRV:     MetricStats{Avg: hrvAvg, Min: hrvAvg - 10, Max: hrvAvg + 10},
		Sleep:   SleepPeriodStats{AvgDurationHours: 7.5, AvgEfficiency: 92},
		Workout: WorkoutPeriodStats{TotalCalories: 450, SessionCount: 2},
	}
}

// TestInsightSuccess verifies the generator returns the completion text,
// trimmed, when the backend answers 200.
func TestInsightSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Sleep more.  "}}]}`))
	}))
	defer srv.Close()

	gen := testGenerator(srv.URL, 5*time.Second)
	got := gen.Insight(context.Background(), samplePeriod(55), samplePeriod(50), 24)
	if got != "Sleep more." {
		t.Errorf("Insight = %q, want %q", got, "Sleep more.")
	}
}

// TestInsightUnconfigured verifies a generator missing any of URL, key, or
// model falls back without touching the network.
func TestInsightUnconfigured(t *testing.T) {
	cases := map[string]config.InsightsConfig{
		"empty":       {Timeout: time.Second},
		"missing key": {URL: "https://api.example.com", Model: "m", Timeout: time.Second},
		"missing url": {APIKey: "k", Model: "m", Timeout: time.Second},
	}
	for name, cfg := range cases {
		gen := NewGenerator(cfg, slog.New(slog.NewTextHandler(&strings.Builder{}, nil)))
		got := gen.Insight(context.Background(), samplePeriod(55), samplePeriod(50), 24)
		if got != fallbackUnconfigured {
			t.Errorf("%s: Insight = %q, want unconfigured fallback", name, got)
		}
	}
}

// TestInsightServiceError verifies a non-2xx response degrades to the
// service-error fallback.
func TestInsightServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusBadGateway)
	}))
	defer srv.Close()

	gen := testGenerator(srv.URL, 5*time.Second)
	got := gen.Insight(context.Background(), samplePeriod(55), samplePeriod(50), 24)
	if got != fallbackServiceError {
		t.Errorf("Insight = %q, want service-error fallback", got)
	}
}

// TestInsightTimeout verifies a slow backend degrades to the generic
// fallback once the client timeout fires.
func TestInsightTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	gen := testGenerator(srv.URL, 50*time.Millisecond)
	got := gen.Insight(context.Background(), samplePeriod(55), samplePeriod(50), 24)
	if got != fallbackGeneric {
		t.Errorf("Insight = %q, want generic fallback", got)
	}
}

// TestInsightEmptyChoices verifies an empty completion list degrades to the
// generic fallback.
func TestInsightEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	gen := testGenerator(srv.URL, 5*time.Second)
	got := gen.Insight(context.Background(), samplePeriod(55), samplePeriod(50), 24)
	if got != fallbackGeneric {
		t.Errorf("Insight = %q, want generic fallback", got)
	}
}

// TestBuildPromptZeroPrevious verifies the prompt reports a 0% HRV change
// when the previous period has no HRV data.
func TestBuildPromptZeroPrevious(t *testing.T) {
	prompt := buildPrompt(samplePeriod(55), samplePeriod(0), 24)
	if !strings.Contains(prompt, "(+0.0% change)") {
		t.Errorf("prompt = %q, want zero change marker", prompt)
	}
}
