package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"dupont_dashboard/pkg/core/analysis"
	"dupont_dashboard/pkg/core/resolve"
	"dupont_dashboard/pkg/core/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrNothingToExport is returned when no company in the universe has a cache
// entry for the requested year. An export never produces an empty artifact.
var ErrNothingToExport = errors.New("nothing to export")

// ExportArtifact is the collected mapping plus coverage accounting. Entries
// is keyed by store.BulkKey, making a written artifact directly loadable as
// the next session's precomputed bulk load.
type ExportArtifact struct {
	ID        string                              `json:"id"`
	Year      int                                 `json:"year"`
	Entries   map[string]*analysis.AnalysisResult `json:"entries"`
	Found     int                                 `json:"found"`
	Total     int                                 `json:"total"`
	CreatedAt time.Time                           `json:"created_at"`
}

// Exporter scans both cache tiers across the universe. Strictly read-only:
// it never triggers generation.
type Exporter struct {
	companies   []analysis.Company
	precomputed resolve.PrecomputedTier
	cache       store.ResultCache
}

// NewExporter builds an export collector over the given universe and tiers.
func NewExporter(companies []analysis.Company, precomputed resolve.PrecomputedTier, cache store.ResultCache) *Exporter {
	return &Exporter{companies: companies, precomputed: precomputed, cache: cache}
}

// Collect assembles the export set for one year. Precomputed entries win over
// persisted ones for the same key (mirroring resolution precedence). Partial
// coverage is reported, zero coverage is ErrNothingToExport.
func (e *Exporter) Collect(ctx context.Context, year int) (*ExportArtifact, error) {
	artifact := &ExportArtifact{
		ID:        uuid.NewString(),
		Year:      year,
		Entries:   make(map[string]*analysis.AnalysisResult),
		Total:     len(e.companies),
		CreatedAt: time.Now().UTC(),
	}

	for _, company := range e.companies {
		if res, ok := e.precomputed.Lookup(company.Symbol, year); ok {
			artifact.Entries[store.BulkKey(company.Symbol, year)] = res
			continue
		}

		res, ok, err := e.cache.Get(ctx, store.Key(company.Symbol, year))
		if err != nil {
			log.Warn().Err(err).Str("symbol", company.Symbol).Msg("persisted tier unreadable during export")
			continue
		}
		if ok {
			artifact.Entries[store.BulkKey(company.Symbol, year)] = res
		}
	}

	artifact.Found = len(artifact.Entries)
	if artifact.Found == 0 {
		return nil, fmt.Errorf("%w: no cached analyses for %d across %d companies",
			ErrNothingToExport, year, artifact.Total)
	}

	log.Info().Int("found", artifact.Found).Int("total", artifact.Total).Int("year", year).
		Msg("export collected")
	return artifact, nil
}

// WriteFile serializes the entry mapping to path in the bulk-artifact format
// consumed by store.LoadPrecomputed.
func (a *ExportArtifact) WriteFile(path string) error {
	raw, err := json.MarshalIndent(a.Entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal export artifact: %w", err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("failed to write export artifact: %w", err)
	}
	return nil
}
