package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	cognitriage = "cognitriage"

	// Pipeline metrics
	triageJobsTotal     = "triage_jobs_total"
	stageDurationName   = "triage_stage_duration_seconds"
	evidenceLookupsName = "evidence_lookups_total"

	// Labels
	jobStateLabel     = "state"
	stageLabel        = "stage"
	evidenceModeLabel = "mode"
)

/**
* Metrics definition
**/
var triageJobsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: cognitriage,
		Name:      triageJobsTotal,
		Help:      "number of triage jobs by terminal state",
	},
	[]string{jobStateLabel},
)

var stageDurationMetric = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Subsystem: cognitriage,
		Name:      stageDurationName,
		Help:      "time spent executing each pipeline stage",
		Buckets:   []float64{0.005, 0.05, 0.25, 1, 5, 15, 60},
	},
	[]string{stageLabel},
)

var evidenceLookupsMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: cognitriage,
		Name:      evidenceLookupsName,
		Help:      "number of evidence lookups by resolution mode (live or fallback)",
	},
	[]string{evidenceModeLabel},
)

func IncreaseTriageJobsTotal(state string) {
	triageJobsTotalMetric.WithLabelValues(state).Inc()
}

func ObserveStageDuration(stage string, seconds float64) {
	stageDurationMetric.WithLabelValues(stage).Observe(seconds)
}

func IncreaseEvidenceLookups(mode string) {
	evidenceLookupsMetric.WithLabelValues(mode).Inc()
}

// RegisterPipelineMetrics registers the pipeline collectors with the default
// registerer. Call once at startup, before serving /metrics.
func RegisterPipelineMetrics() {
	prometheus.MustRegister(triageJobsTotalMetric)
	prometheus.MustRegister(stageDurationMetric)
	prometheus.MustRegister(evidenceLookupsMetric)
}

// PrometheusHandler exposes the default registry, for the metrics server.
func PrometheusHandler() http.Handler {
	return promhttp.Handler()
}
