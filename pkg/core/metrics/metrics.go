// Package metrics exposes the orchestration counters on the default
// Prometheus registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits counts resolutions served from a cache tier, labeled by tier
	// ("precomputed" or "persisted").
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dupont_cache_hits_total",
		Help: "Analysis resolutions served from a cache tier.",
	}, []string{"tier"})

	// CacheMisses counts resolutions that fell through to generation.
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dupont_cache_misses_total",
		Help: "Analysis resolutions that required generation.",
	})

	// Generations counts fact-provider calls, labeled by precision
	// ("standard" or "deep_dive").
	Generations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dupont_generations_total",
		Help: "Fact provider generation calls.",
	}, []string{"precision"})

	// GenerationFailures counts terminal generation failures, labeled by kind
	// ("rate_limit", "malformed", "other").
	GenerationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dupont_generation_failures_total",
		Help: "Terminal generation failures by classification.",
	}, []string{"kind"})

	// Retries counts individual backoff-and-retry cycles on rate-limited
	// generation calls.
	Retries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dupont_generation_retries_total",
		Help: "Backoff retries taken on rate-limited generation calls.",
	})

	// BatchCompleted counts companies completed by pre-cache runs.
	BatchCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dupont_batch_completed_total",
		Help: "Companies completed across batch pre-cache runs.",
	})
)
