package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/meltforce/vitalsink/internal/ingest"
	"github.com/meltforce/vitalsink/internal/insights"
	"github.com/meltforce/vitalsink/internal/models"
	"github.com/meltforce/vitalsink/internal/storage"
)

// Ingester processes one webhook payload. *hae.Provider satisfies this.
type Ingester interface {
	Ingest(ctx context.Context, payload *models.Payload, userID string) (*ingest.Result, error)
}

// MetricsStore is the slice of storage the query handlers need.
// *storage.DB satisfies it.
type MetricsStore interface {
	QueryMetricPoints(ctx context.Context, userID, metricName string, from, to *time.Time, limit int) ([]models.MetricDataPoint, error)
	CountMetricPoints(ctx context.Context, userID, metricName string, from, to *time.Time) (int64, error)
	QuerySleepDurations(ctx context.Context, userID string, from, to *time.Time, limit int) ([]models.MetricDataPoint, error)
	CountSleepSessions(ctx context.Context, userID string, from, to *time.Time) (int64, error)
	InsertIngestLog(ctx context.Context, log storage.IngestLog) (uuid.UUID, error)
	QueryIngestLogs(ctx context.Context, userID string, limit int) ([]storage.IngestLog, error)
}

// InsightsService builds period comparison reports. *insights.Service
// satisfies this.
type InsightsService interface {
	Compare(ctx context.Context, userID string, rangeHours int) (*insights.Report, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	db       MetricsStore
	hae      Ingester
	insights InsightsService
	log      *slog.Logger
	apiKey   string
	router   chi.Router
}

// New creates a new Server with all routes configured. An empty apiKey
// leaves the ingest route unauthenticated.
func New(db MetricsStore, haeProvider Ingester, insightsSvc InsightsService, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:       db,
		hae:      haeProvider,
		insights: insightsSvc,
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	auth := func(next http.Handler) http.Handler { return next }
	if s.apiKey != "" {
		auth = APIKeyAuth(s.apiKey)
	}

	s.router.With(auth).Post("/api/v1/ingest/{userID}", s.handleIngest)
	s.router.Get("/api/v1/ingest/logs", s.handleIngestLogs)
	s.router.Get("/api/v1/metrics", s.handleMetrics)
	s.router.Get("/api/v1/insights", s.handleInsights)
	s.router.Get("/healthz", s.handleHealthz)
}
