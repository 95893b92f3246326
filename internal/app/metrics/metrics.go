package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "puzzle_layer",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "puzzle_layer",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "puzzle_layer",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	puzzleVerifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "puzzle_layer",
			Subsystem: "puzzles",
			Name:      "verifications_total",
			Help:      "Total number of daily puzzle verification attempts.",
		},
		[]string{"result"},
	)

	gameSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "puzzle_layer",
			Subsystem: "games",
			Name:      "submissions_total",
			Help:      "Total number of free-play game submissions.",
		},
		[]string{"mode", "completed"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		puzzleVerifications,
		gameSubmissions,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	})
}

// RecordVerification counts one daily puzzle verification attempt.
func RecordVerification(result string) {
	if result == "" {
		result = "unknown"
	}
	puzzleVerifications.WithLabelValues(result).Inc()
}

// RecordGameSubmission counts one free-play game submission.
func RecordGameSubmission(mode string, completed bool) {
	done := "false"
	if completed {
		done = "true"
	}
	gameSubmissions.WithLabelValues(mode, done).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// canonicalPath collapses id-bearing segments so label cardinality stays
// bounded.
func canonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	if parts[0] != "api" {
		return "/" + parts[0]
	}
	if len(parts) <= 2 {
		return "/" + trimmed
	}
	switch parts[1] {
	case "puzzles":
		if len(parts) >= 3 && parts[2] == "daily" {
			return "/api/puzzles/daily/:mode"
		}
		return "/api/puzzles/" + parts[2]
	case "games":
		if len(parts) >= 4 && parts[2] == "session" {
			return "/api/games/session/:id"
		}
		return "/api/games/" + parts[2]
	case "user":
		return "/api/user/" + parts[2]
	default:
		return "/api/" + parts[1]
	}
}
