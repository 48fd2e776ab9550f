package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prospect_requests_total",
			Help: "Total number of process-location runs by outcome",
		},
		[]string{"status"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "prospect_stage_duration_seconds",
			Help:    "Duration of each pipeline stage in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"stage"},
	)

	SearchFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prospect_search_failures_total",
			Help: "Total number of search queries that failed",
		},
	)

	CrawlResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prospect_crawl_results_total",
			Help: "Total number of crawls by result",
		},
		[]string{"result"},
	)

	RecordsExtracted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prospect_records_extracted_total",
			Help: "Total number of business records extracted",
		},
	)

	PersistFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prospect_persist_failures_total",
			Help: "Total number of records that failed to persist",
		},
		[]string{"sink"},
	)

	LLMCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prospect_llm_calls_total",
			Help: "Total number of LLM calls by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)
)

// ObserveStage records the time elapsed since start for a pipeline stage.
func ObserveStage(stage string, start time.Time) {
	StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
