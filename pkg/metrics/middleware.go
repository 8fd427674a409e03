package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	requestsCollectorName = "cognitriage_http_requests_total"
	latencyCollectorName  = "cognitriage_http_request_duration_milliseconds"
)

// defaultLatencyBuckets are the histogram bounds, in milliseconds, used when
// the config supplies none.
var defaultLatencyBuckets = []float64{300, 500, 1000, 5000}

// Middleware records request counts and latency per status code, method and
// chi route pattern. Requests that match no route are not recorded.
type Middleware struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewMiddleware builds the HTTP metrics middleware for the named server.
// Latency buckets are in milliseconds; an empty slice selects the defaults.
func NewMiddleware(name string, latencyBuckets []float64) *Middleware {
	if len(latencyBuckets) == 0 {
		latencyBuckets = defaultLatencyBuckets
	}

	return &Middleware{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        requestsCollectorName,
				Help:        "Number of HTTP requests partitioned by status code, method and route.",
				ConstLabels: prometheus.Labels{"service": name},
			}, []string{"code", "method", "path"}),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        latencyCollectorName,
				Help:        "Request duration partitioned by status code, method and route.",
				ConstLabels: prometheus.Labels{"service": name},
				Buckets:     latencyBuckets,
			}, []string{"code", "method", "path"}),
	}
}

// Handler is the chi middleware function.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		rctx := chi.RouteContext(r.Context())
		if rctx == nil {
			return
		}
		code := strconv.Itoa(ww.Status())
		route := rctx.RoutePattern()
		m.requests.WithLabelValues(code, r.Method, route).Inc()
		m.latency.WithLabelValues(code, r.Method, route).Observe(float64(time.Since(start).Milliseconds()))
	})
}

// MustRegisterDefault registers the collectors with the default registerer.
// Call once before serving the promhttp handler.
func (m *Middleware) MustRegisterDefault() {
	prometheus.MustRegister(m.requests, m.latency)
}
