package facts

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"dupont_dashboard/pkg/core/analysis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider returns a canned response or error.
type stubProvider struct {
	response string
	err      error
	prompts  []string
}

func (s *stubProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.response, s.err
}

const goodPayload = `{
	"time_series": [
		{"year": 2024, "revenue": 50, "net_profit": 10, "total_assets": 100, "total_equity": 50},
		{"year": 2023, "revenue": 40, "net_profit": 8, "total_assets": 80, "total_equity": 40},
		{"year": 2022, "revenue": 35, "net_profit": 6, "total_assets": 70, "total_equity": 35}
	],
	"accuracy_summary": "All figures verified against the FY2024 annual report.",
	"solvency_index": 0.72,
	"business_risks": {"operational": 0.3, "financial": 0.2},
	"text_metrics": {"2024": {"sentiment": 0.6, "specificity": 0.8}},
	"narrative": {"overview": "Solid year.", "profitability": "Margin led.", "risks": "FX.", "outlook": "Stable."},
	"forecasts": {"roa": {"base": 0.11, "upside": 0.13, "downside": 0.08}, "roe": {"base": 0.22, "upside": 0.25, "downside": 0.17}},
	"sources": ["https://example.com/ar2024.pdf"]
}`

var testCompany = analysis.Company{Symbol: "ACME", Name: "Acme Corp", Sector: "Industrials"}

func TestGenerateAssemblesDerivedResult(t *testing.T) {
	provider := &stubProvider{response: goodPayload}
	gen := NewGenerator(provider, "")

	res, err := gen.Generate(context.Background(), Request{Company: testCompany, Year: 2024})
	require.NoError(t, err)

	assert.Equal(t, "ACME", res.Company.Symbol)
	assert.Equal(t, 2024, res.AnchorYear)
	require.Len(t, res.Series, 3)

	// Derivation ran: anchor year averaged against 2023.
	anchor := res.AnchorMetrics()
	require.NotNil(t, anchor)
	assert.InDelta(t, 90.0, anchor.AvgAssets, 1e-9)
	assert.InDelta(t, 10.0/45.0, anchor.ROE, 1e-9)

	assert.Equal(t, 0.72, res.Risk.SolvencyIndex)
	assert.Equal(t, 0.6, res.TextMetrics[2024].Sentiment)
	assert.False(t, res.DeepDive)
	assert.Equal(t, []string{"https://example.com/ar2024.pdf"}, res.Sources)
}

func TestGenerateParsesFencedAndCitedResponse(t *testing.T) {
	wrapped := "Here is the analysis:\n```json\n" + goodPayload + "\n```\n\n**Sources:**\n[Annual Report](https://acme.example/ir/2024)"
	provider := &stubProvider{response: wrapped}
	gen := NewGenerator(provider, "")

	res, err := gen.Generate(context.Background(), Request{Company: testCompany, Year: 2024})
	require.NoError(t, err)
	assert.Contains(t, res.Sources, "https://example.com/ar2024.pdf")
	assert.Contains(t, res.Sources, "https://acme.example/ir/2024")
}

func TestGenerateMalformedPayloadIsFatal(t *testing.T) {
	provider := &stubProvider{response: "I could not find reliable data for this company."}
	gen := NewGenerator(provider, "")

	_, err := gen.Generate(context.Background(), Request{Company: testCompany, Year: 2024})
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestGenerateEmptySeriesIsFatal(t *testing.T) {
	provider := &stubProvider{response: `{"time_series": []}`}
	gen := NewGenerator(provider, "")

	_, err := gen.Generate(context.Background(), Request{Company: testCompany, Year: 2024})
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestGenerateProviderErrorPropagates(t *testing.T) {
	boom := errors.New("RESOURCE_EXHAUSTED")
	provider := &stubProvider{err: boom}
	gen := NewGenerator(provider, "")

	_, err := gen.Generate(context.Background(), Request{Company: testCompany, Year: 2024})
	assert.ErrorIs(t, err, boom)
}

func TestDeepDivePromptCarriesDiscrepancyNote(t *testing.T) {
	provider := &stubProvider{response: goodPayload}
	gen := NewGenerator(provider, "")

	res, err := gen.Generate(context.Background(), Request{
		Company:         testCompany,
		Year:            2024,
		DeepDive:        true,
		DiscrepancyNote: "ROE shifted by 4.20%, net profit shifted by 1.10%",
	})
	require.NoError(t, err)
	assert.True(t, res.DeepDive)

	require.Len(t, provider.prompts, 1)
	assert.Contains(t, provider.prompts[0], "CRITICAL RE-VERIFICATION PASS")
	assert.Contains(t, provider.prompts[0], "ROE shifted by 4.20%")
}

func TestParsePayloadRepairsSloppyJSON(t *testing.T) {
	sloppy := `{
		time_series: [
			{year: 2024, revenue: 50, net_profit: 10, total_assets: 100, total_equity: 50},
		],
		accuracy_summary: 'ok',
	}`
	p, err := parsePayload(sloppy)
	require.NoError(t, err)
	assert.Equal(t, 2024, p.TimeSeries[0].Year)
}

func TestAssembleResultDropsFutureYearsAndTrimsToThree(t *testing.T) {
	p := &payload{
		TimeSeries: []analysis.RawYearFinancials{
			{Year: 2021, Revenue: 1},
			{Year: 2025, Revenue: 99}, // beyond anchor
			{Year: 2023, Revenue: 3},
			{Year: 2024, Revenue: 4},
			{Year: 2022, Revenue: 2},
		},
	}
	res := assembleResult(Request{Company: testCompany, Year: 2024}, p, nil)

	require.Len(t, res.Series, 3)
	years := []int{res.Series[0].Year, res.Series[1].Year, res.Series[2].Year}
	assert.Equal(t, []int{2024, 2023, 2022}, years)
}

func TestCleanNarrativeStripsFencesAndHTML(t *testing.T) {
	fenced := "```markdown\nA **strong** year.\n```"
	assert.Equal(t, "A **strong** year.", cleanNarrative(fenced))

	html := "<p>Margins <b>expanded</b> in 2024.</p>"
	cleaned := cleanNarrative(html)
	assert.NotContains(t, cleaned, "<p>")
	assert.Contains(t, cleaned, "expanded")
}

func TestMergeSourcesDeduplicates(t *testing.T) {
	got := mergeSources(
		[]string{"https://a.example", "https://b.example", ""},
		[]string{"https://b.example", "https://c.example"},
	)
	assert.Equal(t, []string{"https://a.example", "https://b.example", "https://c.example"}, got)
}

func TestBuildPromptNamesAllThreeYears(t *testing.T) {
	prompt := buildPrompt(Request{Company: testCompany, Year: 2024})
	for _, y := range []int{2024, 2023, 2022} {
		assert.Contains(t, prompt, fmt.Sprint(y))
	}
	assert.NotContains(t, prompt, "CRITICAL RE-VERIFICATION PASS")
}
