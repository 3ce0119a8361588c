package batch

import (
	"context"
	"sync"
	"time"

	"dupont_dashboard/pkg/core/analysis"
	"dupont_dashboard/pkg/core/metrics"
	"dupont_dashboard/pkg/core/resolve"
	"dupont_dashboard/pkg/core/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Resolver is the slice of resolve.Resolver the controller needs.
type Resolver interface {
	Resolve(ctx context.Context, company analysis.Company, year int, forceRefresh bool) (*analysis.AnalysisResult, error)
}

// Pacing defaults. The inter-request delay sits above the Gemini free-tier
// per-minute window; the cooldown after a terminal rate-limit failure is
// deliberately much longer.
const (
	DefaultInterDelay = 20 * time.Second
	DefaultCooldown   = 2 * time.Minute
)

// Progress is a snapshot of a running batch.
type Progress struct {
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Current   string `json:"current"`
}

// Summary reports the outcome of one batch run.
type Summary struct {
	RunID     string `json:"run_id"`
	Year      int    `json:"year"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
	Cancelled bool   `json:"cancelled"`
}

// Controller warms the persisted cache for one target year across the whole
// company universe, pacing generation to stay under external rate limits.
// One run per controller.
type Controller struct {
	companies   []analysis.Company
	precomputed resolve.PrecomputedTier
	cache       store.ResultCache
	resolver    Resolver

	interDelay time.Duration
	cooldown   time.Duration
	sleep      func(ctx context.Context, d time.Duration) error

	mu       sync.Mutex
	progress Progress
}

// Option tweaks a Controller.
type Option func(*Controller)

// WithPacing overrides the inter-request delay and rate-limit cooldown.
func WithPacing(interDelay, cooldown time.Duration) Option {
	return func(c *Controller) {
		c.interDelay = interDelay
		c.cooldown = cooldown
	}
}

// WithSleep injects the pause function (tests run on a fake clock).
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Controller) { c.sleep = sleep }
}

// NewController builds a batch controller over the given universe and tiers.
func NewController(companies []analysis.Company, precomputed resolve.PrecomputedTier, cache store.ResultCache, resolver Resolver, opts ...Option) *Controller {
	c := &Controller{
		companies:   companies,
		precomputed: precomputed,
		cache:       cache,
		resolver:    resolver,
		interDelay:  DefaultInterDelay,
		cooldown:    DefaultCooldown,
		sleep:       sleepCtx,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Progress returns the current snapshot. Safe to call from another goroutine
// while Run is in flight.
func (c *Controller) Progress() Progress {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress
}

func (c *Controller) setProgress(completed int, current string) {
	c.mu.Lock()
	c.progress = Progress{Completed: completed, Total: len(c.companies), Current: current}
	c.mu.Unlock()
}

// Run iterates the universe in its fixed order. Already-warm companies are
// skipped without touching the provider. A single company's failure never
// aborts the run; a rate-limit failure triggers the extended cooldown before
// the next company. Cancellation is cooperative, checked between companies
// only — an in-flight generation is never aborted mid-call.
func (c *Controller) Run(ctx context.Context, year int) Summary {
	summary := Summary{
		RunID: uuid.NewString(),
		Year:  year,
		Total: len(c.companies),
	}

	limiter := rate.NewLimiter(rate.Every(c.interDelay), 1)

	log.Info().Str("run_id", summary.RunID).Int("year", year).Int("companies", summary.Total).
		Msg("batch pre-cache started")

	for _, company := range c.companies {
		select {
		case <-ctx.Done():
			summary.Cancelled = true
			log.Warn().Str("run_id", summary.RunID).Int("completed", summary.Completed).
				Msg("batch pre-cache cancelled")
			c.setProgress(summary.Completed, "")
			return summary
		default:
		}

		c.setProgress(summary.Completed, company.Symbol)

		if c.isWarm(ctx, company.Symbol, year) {
			summary.Skipped++
			log.Debug().Str("symbol", company.Symbol).Msg("already cached, skipping")
			continue
		}

		if err := limiter.Wait(ctx); err != nil {
			summary.Cancelled = true
			c.setProgress(summary.Completed, "")
			return summary
		}

		if _, err := c.resolver.Resolve(ctx, company, year, false); err != nil {
			summary.Failed++
			if resolve.IsRateLimited(err) {
				log.Warn().Err(err).Str("symbol", company.Symbol).Dur("cooldown", c.cooldown).
					Msg("rate limited during batch, cooling down")
				if c.sleep(ctx, c.cooldown) != nil {
					summary.Cancelled = true
					c.setProgress(summary.Completed, "")
					return summary
				}
			} else {
				log.Error().Err(err).Str("symbol", company.Symbol).Msg("batch generation failed, continuing")
			}
			continue
		}

		summary.Completed++
		metrics.BatchCompleted.Inc()
	}

	c.setProgress(summary.Completed, "")
	log.Info().Str("run_id", summary.RunID).Int("completed", summary.Completed).
		Int("skipped", summary.Skipped).Int("failed", summary.Failed).
		Msg("batch pre-cache finished")
	return summary
}

// isWarm reports whether either tier already holds the key.
func (c *Controller) isWarm(ctx context.Context, symbol string, year int) bool {
	if _, ok := c.precomputed.Lookup(symbol, year); ok {
		return true
	}
	has, err := c.cache.Has(ctx, store.Key(symbol, year))
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("persisted tier check failed, treating as cold")
		return false
	}
	return has
}
