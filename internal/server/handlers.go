package server

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/meltforce/vitalsink/internal/ingest"
	"github.com/meltforce/vitalsink/internal/ingest/hae"
	"github.com/meltforce/vitalsink/internal/models"
	"github.com/meltforce/vitalsink/internal/storage"
)

// MetricsResponse is the query endpoint envelope.
type MetricsResponse struct {
	Data       []models.MetricDataPoint `json:"data"`
	TotalCount int64                    `json:"total_count"`
}

var validMetrics = map[string]bool{
	"heart_rate_variability": true,
	"workout":                true,
	"sleep":                  true,
}

// handleIngest accepts one export payload and always answers the webhook
// envelope, success or not, so the exporting app never sees a bare error.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.WebhookResponse{
			Success:     false,
			Message:     "failed to read request body: " + err.Error(),
			RequestHash: "error",
		})
		return
	}
	hash := fmt.Sprintf("%x", sha256.Sum256(body))

	var payload models.Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		s.recordIngestLog(r.Context(), userID, hash, "error", nil, err)
		writeJSON(w, http.StatusBadRequest, models.WebhookResponse{
			Success:     false,
			Message:     "invalid JSON: " + err.Error(),
			RequestHash: hash,
		})
		return
	}
	if payload.RequestID == "" {
		payload.RequestID = uuid.NewString()
	}

	result, err := s.hae.Ingest(r.Context(), &payload, userID)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, hae.ErrPayloadShape):
			status = http.StatusBadRequest
		case errors.Is(err, hae.ErrStorageUnavailable):
			status = http.StatusServiceUnavailable
		}
		s.log.Error("ingest error", "user", userID, "error", err)
		s.recordIngestLog(r.Context(), userID, hash, "error", nil, err)
		writeJSON(w, status, models.WebhookResponse{
			Success:     false,
			Message:     "Failed to process health data: " + err.Error(),
			RequestHash: hash,
		})
		return
	}

	s.recordIngestLog(r.Context(), userID, hash, "success", result, nil)
	writeJSON(w, http.StatusOK, models.WebhookResponse{
		Success: true,
		Message: fmt.Sprintf("Successfully processed health data for user %s", userID),
		Processed: models.ProcessedCount{
			Metrics:  result.MetricsInserted,
			Sleep:    result.SleepInserted,
			Workouts: result.WorkoutsInserted,
		},
		RequestHash: hash,
	})
}

// recordIngestLog persists the call outcome. Logging failures must never
// affect the webhook response.
func (s *Server) recordIngestLog(ctx context.Context, userID, hash, status string, result *ingest.Result, ingestErr error) {
	entry := storage.IngestLog{
		UserID:      userID,
		RequestHash: hash,
		Status:      status,
	}
	if result != nil {
		entry.MetricsInserted = result.MetricsInserted
		entry.SleepInserted = result.SleepInserted
		entry.WorkoutsInserted = result.WorkoutsInserted
		entry.Skipped = result.Skipped
	}
	if ingestErr != nil {
		msg := ingestErr.Error()
		entry.ErrorMessage = &msg
	}
	if _, err := s.db.InsertIngestLog(ctx, entry); err != nil {
		s.log.Warn("recording ingest log failed", "error", err)
	}
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	metric := r.URL.Query().Get("metric")
	if !validMetrics[metric] {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "metric must be one of heart_rate_variability, workout, sleep"})
		return
	}

	from, err := parseOptionalTime(r, "from")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid from: " + err.Error()})
		return
	}
	to, err := parseOptionalTime(r, "to")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid to: " + err.Error()})
		return
	}
	if from != nil && to != nil && !from.Before(*to) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "from must be before to"})
		return
	}

	limit, err := parseBoundedInt(r, "limit", 1000, 1, 5000)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	userID := identityFromRequest(r)

	var (
		points []models.MetricDataPoint
		count  int64
	)
	if metric == "sleep" {
		points, err = s.db.QuerySleepDurations(r.Context(), userID, from, to, limit)
		if err == nil {
			count, err = s.db.CountSleepSessions(r.Context(), userID, from, to)
		}
	} else {
		points, err = s.db.QueryMetricPoints(r.Context(), userID, metric, from, to, limit)
		if err == nil {
			count, err = s.db.CountMetricPoints(r.Context(), userID, metric, from, to)
		}
	}
	if err != nil {
		s.log.Error("metrics query error", "metric", metric, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, MetricsResponse{Data: points, TotalCount: count})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	rangeHours, err := parseBoundedInt(r, "range_hours", 24, 1, 168)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	report, err := s.insights.Compare(r.Context(), identityFromRequest(r), rangeHours)
	if err != nil {
		s.log.Error("insights error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleIngestLogs(w http.ResponseWriter, r *http.Request) {
	limit, err := parseBoundedInt(r, "limit", 50, 1, 500)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	logs, err := s.db.QueryIngestLogs(r.Context(), identityFromRequest(r), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// parseOptionalTime reads an RFC 3339 query parameter, nil when absent.
func parseOptionalTime(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseBoundedInt reads an integer query parameter with a default and an
// inclusive valid range.
func parseBoundedInt(r *http.Request, name string, def, min, max int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	if v < min || v > max {
		return 0, fmt.Errorf("%s must be between %d and %d", name, min, max)
	}
	return v, nil
}
