package store

import (
	"context"

	"dupont_dashboard/pkg/core/analysis"
)

// ResultCache is the persisted tier: a durable key/value store of serialized
// AnalysisResults surviving across sessions. Absence of a key is (nil, false,
// nil), never an error. Set is an idempotent keyed replacement, which is what
// makes last-write-wins acceptable for concurrent resolutions of one key.
type ResultCache interface {
	Get(ctx context.Context, key string) (*analysis.AnalysisResult, bool, error)
	Set(ctx context.Context, key string, result *analysis.AnalysisResult) error
	Has(ctx context.Context, key string) (bool, error)
}
