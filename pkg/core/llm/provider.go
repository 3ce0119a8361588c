package llm

import (
	"context"
)

// Provider is the interface the fact-generation layer calls into. The
// orchestration core treats the model as an opaque function from prompt to
// text; anything provider-specific (grounding, JSON mode, credentials) lives
// behind this boundary.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
}
