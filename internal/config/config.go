package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Service  *svcConfig
	Evidence *evidenceConfig
}

type svcConfig struct {
	Address        string `envconfig:"COGNITRIAGE_ADDRESS" default:":8080"`
	MetricsAddress string `envconfig:"COGNITRIAGE_METRICS_ADDRESS" default:":8090"`
	BaseUrl        string `envconfig:"COGNITRIAGE_BASE_URL" default:"http://localhost:8080"`
	LogLevel       string `envconfig:"COGNITRIAGE_LOG_LEVEL" default:"info"`
	// MaxConcurrentJobs bounds the number of pipelines running at once.
	// Zero means unbounded.
	MaxConcurrentJobs int `envconfig:"COGNITRIAGE_MAX_CONCURRENT_JOBS" default:"8"`
	// HTTPLatencyBuckets are the request latency histogram bounds, in
	// milliseconds.
	HTTPLatencyBuckets []float64 `envconfig:"COGNITRIAGE_HTTP_LATENCY_BUCKETS" default:"300,500,1000,5000"`
}

type evidenceConfig struct {
	PubMedBaseUrl string        `envconfig:"COGNITRIAGE_PUBMED_BASE_URL" default:"https://eutils.ncbi.nlm.nih.gov/entrez/eutils"`
	TrialsBaseUrl string        `envconfig:"COGNITRIAGE_TRIALS_BASE_URL" default:"https://clinicaltrials.gov/api/v2/studies"`
	LookupTimeout time.Duration `envconfig:"COGNITRIAGE_EVIDENCE_TIMEOUT" default:"10s"`
	MaxResults    int           `envconfig:"COGNITRIAGE_EVIDENCE_MAX_RESULTS" default:"5"`
}

func New() (*Config, error) {
	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
