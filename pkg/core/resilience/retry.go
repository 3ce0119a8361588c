package resilience

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dupont_dashboard/pkg/core/metrics"

	"github.com/rs/zerolog/log"
	"google.golang.org/api/googleapi"
)

// Defaults for the backoff schedule. 3s doubles to 6s then 12s, which clears
// the per-minute quota windows the Gemini free tier enforces.
const (
	DefaultMaxRetries   = 3
	DefaultInitialDelay = 3000 * time.Millisecond
)

// ErrMaxRetries is the terminal failure after exhausting the retry budget on
// rate-limited calls. It wraps the last rate-limit error, so IsRateLimited
// still reports true on it and callers can surface the alternate-credential
// remediation.
var ErrMaxRetries = errors.New("max retries exceeded")

// Options configures one Retry invocation. The zero value picks the defaults;
// Sleep is injectable so tests can run the schedule on a fake clock.
type Options struct {
	MaxRetries   int
	InitialDelay time.Duration
	Sleep        func(ctx context.Context, d time.Duration) error
}

func (o *Options) normalize() {
	if o.MaxRetries <= 0 {
		o.MaxRetries = DefaultMaxRetries
	}
	if o.InitialDelay <= 0 {
		o.InitialDelay = DefaultInitialDelay
	}
	if o.Sleep == nil {
		o.Sleep = sleepCtx
	}
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

// IsRateLimited classifies an error as a quota/throughput rejection. It
// recognizes HTTP 429 responses from the Google API client as well as the
// signatures the Gemini backends put in error text ("429",
// "RESOURCE_EXHAUSTED", "Quota"). Everything else is non-retryable.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == 429 {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED") ||
		strings.Contains(msg, "Quota")
}

// Retry runs op, retrying only rate-limited failures with exponential backoff
// (InitialDelay × 2^attempt). Any other failure propagates immediately. After
// MaxRetries+1 total attempts it returns ErrMaxRetries wrapping the last
// rate-limit error.
func Retry[T any](ctx context.Context, op func(ctx context.Context) (T, error), opts Options) (T, error) {
	opts.normalize()

	var zero T
	for attempt := 0; ; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		if !IsRateLimited(err) {
			return zero, err
		}
		if attempt >= opts.MaxRetries {
			return zero, fmt.Errorf("%w after %d attempts: %w", ErrMaxRetries, attempt+1, err)
		}

		delay := opts.InitialDelay << attempt
		metrics.Retries.Inc()
		log.Warn().
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Err(err).
			Msg("rate limited, backing off before retry")

		if sleepErr := opts.Sleep(ctx, delay); sleepErr != nil {
			return zero, sleepErr
		}
	}
}
