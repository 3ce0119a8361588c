package resolve

import (
	"errors"

	"dupont_dashboard/pkg/core/facts"
	"dupont_dashboard/pkg/core/resilience"
)

// Failure classification for callers presenting user-facing remediation:
// rate-limited failures prompt the alternate-credential path, malformed
// payloads and everything else get a generic retry message.

// IsRateLimited reports whether the resolution failed on quota exhaustion
// (including the terminal max-retries error).
func IsRateLimited(err error) bool {
	return resilience.IsRateLimited(err) || errors.Is(err, resilience.ErrMaxRetries)
}

func isMalformed(err error) bool {
	return errors.Is(err, facts.ErrMalformedPayload)
}

// IsMalformedPayload reports whether the provider returned a structurally
// invalid payload (fatal, never retried).
func IsMalformedPayload(err error) bool {
	return isMalformed(err)
}
