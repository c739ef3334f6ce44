package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	leadsScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_scored_total",
			Help: "Total number of lead scores written, by resulting stage",
		},
		[]string{"stage"},
	)

	peerLookupFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lead_peer_lookup_failures_total",
			Help: "Total number of scores computed without the team adoption signal",
		},
	)

	recalculationRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_recalculation_runs_total",
			Help: "Total number of bulk score recalculations",
		},
		[]string{"result"},
	)

	syncJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_sync_jobs_total",
			Help: "Total number of processed lead sync jobs",
		},
		[]string{"target", "result"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)
		path := routePattern(r)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routePattern keeps emails and domains out of the label values.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// ScoreMetrics records scoring and sync outcomes.
type ScoreMetrics struct{}

func NewScoreMetrics() *ScoreMetrics {
	return &ScoreMetrics{}
}

func (ScoreMetrics) RecordLeadScored(stage entity.Stage) {
	leadsScored.WithLabelValues(string(stage)).Inc()
}

func (ScoreMetrics) RecordPeerLookupFailure() {
	peerLookupFailures.Inc()
}

func (ScoreMetrics) RecordRecalculation(result string) {
	recalculationRuns.WithLabelValues(result).Inc()
}

func (ScoreMetrics) RecordSyncJob(target, result string) {
	syncJobs.WithLabelValues(target, result).Inc()
}
