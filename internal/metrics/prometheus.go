// Package metrics defines the Prometheus collectors for the curation
// pipeline. Init must be called once at startup; the collectors are no-ops
// until registered.
package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RecordsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curator_records_processed_total",
			Help: "Records processed by the rules engine, by resulting classification",
		},
		[]string{"classification"},
	)

	RulesRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curator_rules_rejections_total",
			Help: "Instant rejections by predicate name",
		},
		[]string{"predicate"},
	)

	LLMBatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curator_llm_batches_total",
			Help: "LLM batches issued, by outcome",
		},
		[]string{"stage", "status"},
	)

	LLMTokensUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curator_llm_tokens_total",
			Help: "Tokens consumed by LLM calls",
		},
		[]string{"type"},
	)

	CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "curator_verdict_cache_hits_total",
			Help: "Escalated records resolved from the verdict cache",
		},
	)

	CacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "curator_verdict_cache_misses_total",
			Help: "Escalated records that required an LLM call",
		},
	)

	GateRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curator_gate_rejections_total",
			Help: "Validation gate rejections by failed check",
		},
		[]string{"check"},
	)

	CategoriesAssigned = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curator_categories_assigned_total",
			Help: "Category labels assigned to approved vendors",
		},
		[]string{"category"},
	)

	BreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "curator_breaker_state",
			Help: "Circuit breaker position (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)

	PipelineDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "curator_pipeline_duration_seconds",
			Help:    "Wall time per pipeline run",
			Buckets: []float64{1, 5, 15, 60, 300, 900, 3600},
		},
		[]string{"mode"},
	)
)

func Init() {
	prometheus.MustRegister(
		RecordsProcessed,
		RulesRejections,
		LLMBatches,
		LLMTokensUsed,
		CacheHits,
		CacheMisses,
		GateRejections,
		CategoriesAssigned,
		BreakerState,
		PipelineDuration,
	)
}

// MetricsHandler exposes the default registry as a fiber handler.
func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
