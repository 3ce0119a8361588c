package resolve

import (
	"context"
	"fmt"

	"dupont_dashboard/pkg/core/analysis"
	"dupont_dashboard/pkg/core/facts"
	"dupont_dashboard/pkg/core/metrics"
	"dupont_dashboard/pkg/core/resilience"
	"dupont_dashboard/pkg/core/store"

	"github.com/rs/zerolog/log"
)

// PrecomputedTier is the read-only in-memory tier (see store.PrecomputedSet).
type PrecomputedTier interface {
	Lookup(symbol string, year int) (*analysis.AnalysisResult, bool)
}

// FactGenerator produces a fresh AnalysisResult for one request.
type FactGenerator interface {
	Generate(ctx context.Context, req facts.Request) (*analysis.AnalysisResult, error)
}

// Resolver resolves (company, year) to an AnalysisResult through the tier
// chain: precomputed set, persisted cache, then generation. A forced refresh
// bypasses both tiers and, when a prior persisted entry disagrees with the
// fresh result beyond the significance threshold, escalates to a deep-dive
// re-verification pass.
//
// The resolver does not coalesce concurrent requests for one key: both may
// generate and both persist; the keyed replacement makes last-write-wins
// safe. Callers needing at-most-one in-flight generation per key must front
// the resolver with their own keyed mutex.
type Resolver struct {
	precomputed PrecomputedTier
	cache       store.ResultCache
	generator   FactGenerator
	retry       resilience.Options
}

// NewResolver wires the tier chain. retry applies to every generation call.
func NewResolver(precomputed PrecomputedTier, cache store.ResultCache, generator FactGenerator, retry resilience.Options) *Resolver {
	return &Resolver{
		precomputed: precomputed,
		cache:       cache,
		generator:   generator,
		retry:       retry,
	}
}

// resolutionProbe is one cache tier expressed as a pure key lookup, so tiers
// stay independently testable and the precedence order reads as data.
type resolutionProbe struct {
	tier   string
	lookup func(ctx context.Context) (*analysis.AnalysisResult, bool)
}

// Resolve runs the tier chain for (company, year). On generation failure the
// error propagates and nothing is written: the resolver never substitutes
// stale or default data.
func (r *Resolver) Resolve(ctx context.Context, company analysis.Company, year int, forceRefresh bool) (*analysis.AnalysisResult, error) {
	key := store.Key(company.Symbol, year)

	if !forceRefresh {
		for _, probe := range r.probes(company.Symbol, year, key) {
			if res, ok := probe.lookup(ctx); ok {
				metrics.CacheHits.WithLabelValues(probe.tier).Inc()
				log.Debug().Str("key", key).Str("tier", probe.tier).Msg("cache hit")
				return res, nil
			}
		}
		metrics.CacheMisses.Inc()
	}

	// A forced refresh recalls the prior entry first: it is the baseline for
	// the discrepancy check after generation.
	var prior *analysis.AnalysisResult
	if forceRefresh {
		if res, ok, err := r.cache.Get(ctx, key); err == nil && ok {
			prior = res
		}
	}

	result, err := r.generate(ctx, facts.Request{Company: company, Year: year})
	if err != nil {
		return nil, err
	}

	if forceRefresh && prior != nil {
		report := CompareResults(prior, result)
		if report.Significant {
			log.Info().
				Str("key", key).
				Float64("roe_shift", report.ROEShift).
				Float64("profit_shift", report.ProfitShift).
				Msg("significant discrepancy, escalating to deep-dive")

			deep, err := r.generate(ctx, facts.Request{
				Company:         company,
				Year:            year,
				DeepDive:        true,
				DiscrepancyNote: report.Message,
			})
			if err != nil {
				return nil, fmt.Errorf("deep-dive re-verification failed: %w", err)
			}
			result = deep
		}
	}

	if err := r.cache.Set(ctx, key, result); err != nil {
		// The caller still gets the result; only durability is degraded.
		log.Warn().Err(err).Str("key", key).Msg("failed to persist resolved analysis")
	}

	return result, nil
}

func (r *Resolver) probes(symbol string, year int, key string) []resolutionProbe {
	return []resolutionProbe{
		{
			tier: "precomputed",
			lookup: func(ctx context.Context) (*analysis.AnalysisResult, bool) {
				res, ok := r.precomputed.Lookup(symbol, year)
				return res, ok
			},
		},
		{
			tier: "persisted",
			lookup: func(ctx context.Context) (*analysis.AnalysisResult, bool) {
				res, ok, err := r.cache.Get(ctx, key)
				if err != nil {
					// A broken persisted tier degrades to a miss.
					log.Warn().Err(err).Str("key", key).Msg("persisted tier lookup failed")
					return nil, false
				}
				return res, ok
			},
		},
	}
}

func (r *Resolver) generate(ctx context.Context, req facts.Request) (*analysis.AnalysisResult, error) {
	precision := "standard"
	if req.DeepDive {
		precision = "deep_dive"
	}
	metrics.Generations.WithLabelValues(precision).Inc()

	result, err := resilience.Retry(ctx, func(ctx context.Context) (*analysis.AnalysisResult, error) {
		return r.generator.Generate(ctx, req)
	}, r.retry)
	if err != nil {
		metrics.GenerationFailures.WithLabelValues(classify(err)).Inc()
		return nil, err
	}
	return result, nil
}

func classify(err error) string {
	switch {
	case resilience.IsRateLimited(err):
		return "rate_limit"
	case isMalformed(err):
		return "malformed"
	default:
		return "other"
	}
}
