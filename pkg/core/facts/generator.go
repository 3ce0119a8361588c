package facts

import (
	"context"
	"fmt"
	"sort"
	"time"

	"dupont_dashboard/pkg/core/analysis"
	"dupont_dashboard/pkg/core/llm"

	"github.com/rs/zerolog/log"
)

// Generator is the boundary to the external fact provider: it shapes the
// request prompt, invokes the model and turns the structured payload into an
// AnalysisResult with the derived metric pass applied. It performs no retry
// and no caching; callers wrap it as needed.
type Generator struct {
	provider llm.Provider
	model    string
}

// NewGenerator wires a generator onto a model provider. model may be empty to
// accept the provider's default.
func NewGenerator(provider llm.Provider, model string) *Generator {
	return &Generator{provider: provider, model: model}
}

// Generate runs one generation call. Provider failures propagate untouched so
// the retry layer can classify them; structurally invalid payloads surface as
// ErrMalformedPayload.
func (g *Generator) Generate(ctx context.Context, req Request) (*analysis.AnalysisResult, error) {
	options := map[string]interface{}{
		"google_search":   true,
		"response_format": map[string]interface{}{"type": "json_object"},
	}
	if g.model != "" {
		options["model"] = g.model
	}
	if req.DeepDive {
		// Colder sampling for the re-verification pass.
		options["temperature"] = 0.0
	}

	started := time.Now()
	text, err := g.provider.GenerateResponse(ctx, buildPrompt(req), systemPrompt, options)
	if err != nil {
		return nil, fmt.Errorf("fact generation for %s/%d failed: %w", req.Company.Symbol, req.Year, err)
	}

	p, err := parsePayload(text)
	if err != nil {
		return nil, err
	}

	result := assembleResult(req, p, extractCitationLinks(text))

	log.Info().
		Str("symbol", req.Company.Symbol).
		Int("year", req.Year).
		Bool("deep_dive", req.DeepDive).
		Int("series_years", len(result.Series)).
		Dur("took", time.Since(started)).
		Msg("fact provider payload assembled")

	return result, nil
}

// assembleResult builds the immutable aggregate: series ordered
// most-recent-first and trimmed to the anchor plus two preceding years, then
// the derivation pass, then narrative hygiene.
func assembleResult(req Request, p *payload, citations []string) *analysis.AnalysisResult {
	series := make([]analysis.RawYearFinancials, 0, len(p.TimeSeries))
	for _, rec := range p.TimeSeries {
		if rec.Year > req.Year {
			continue // provider drifted past the anchor; drop future years
		}
		series = append(series, rec)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Year > series[j].Year })
	if len(series) > 3 {
		series = series[:3]
	}

	narrative := analysis.Narrative{
		Overview:      cleanNarrative(p.Narrative.Overview),
		Profitability: cleanNarrative(p.Narrative.Profitability),
		Risks:         cleanNarrative(p.Narrative.Risks),
		Outlook:       cleanNarrative(p.Narrative.Outlook),
		QA:            p.Narrative.QA,
	}

	return &analysis.AnalysisResult{
		Company:     req.Company,
		AnchorYear:  req.Year,
		Series:      analysis.DeriveSeries(series),
		TextMetrics: p.TextMetrics,
		Risk: analysis.RiskAssessment{
			SolvencyIndex:  p.SolvencyIndex,
			BusinessRisks:  p.BusinessRisks,
			PeerComparison: p.PeerComparison,
			NearestPeer:    p.NearestPeer,
		},
		AccuracyAudit:   p.AccuracyAudit,
		AccuracySummary: p.AccuracySummary,
		Narrative:       narrative,
		Forecasts: analysis.Forecasts{
			ROA:         p.Forecasts.ROA,
			ROE:         p.Forecasts.ROE,
			Assumptions: p.ForecastAssumptions,
		},
		Sources:     mergeSources(p.Sources, citations),
		GeneratedAt: time.Now().UTC(),
		DeepDive:    req.DeepDive,
	}
}
