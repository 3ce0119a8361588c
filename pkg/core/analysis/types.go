package analysis

import "time"

// Company is static reference data: one row of the coverage universe.
// Loaded once at process start, never mutated.
type Company struct {
	Symbol string `json:"symbol" yaml:"symbol"`
	Name   string `json:"name" yaml:"name"`
	Sector string `json:"sector" yaml:"sector"`
	Domain string `json:"domain" yaml:"domain"`
}

// RawYearFinancials holds one fiscal year as identified by the fact provider.
type RawYearFinancials struct {
	Year        int     `json:"year"`
	Revenue     float64 `json:"revenue"`
	NetProfit   float64 `json:"net_profit"`
	TotalAssets float64 `json:"total_assets"`
	TotalEquity float64 `json:"total_equity"`
	SourceURL   string  `json:"source_url,omitempty"`
}

// DerivedYearMetrics is a RawYearFinancials with the full DuPont set attached.
// Balance-sheet inputs (AvgAssets, AvgEquity) are two-point averages against
// the prior year where one exists in the same series.
type DerivedYearMetrics struct {
	RawYearFinancials

	AvgAssets float64 `json:"avg_assets"`
	AvgEquity float64 `json:"avg_equity"`

	Margin   float64 `json:"margin"`   // net profit / revenue
	Turnover float64 `json:"turnover"` // revenue / avg assets
	ROA      float64 `json:"roa"`      // net profit / avg assets
	Leverage float64 `json:"leverage"` // avg assets / avg equity
	ROE      float64 `json:"roe"`      // net profit / avg equity
}

// TextMetrics are the per-year NLP-style measures reported by the provider
// over the company's disclosures for that year.
type TextMetrics struct {
	Sentiment          float64 `json:"sentiment"`
	ForwardLookingInfo float64 `json:"forward_looking_info"`
	Specificity        float64 `json:"specificity"`
	SentenceLength     float64 `json:"sentence_length"`
	Depth              float64 `json:"depth"`
	Unfamiliarity      float64 `json:"unfamiliarity"`
}

// PeerComparisonRow benchmarks one metric against the sector.
type PeerComparisonRow struct {
	Metric       string  `json:"metric"`
	CompanyValue float64 `json:"company_value"`
	PeerMedian   float64 `json:"peer_median"`
	TopQuartile  float64 `json:"top_quartile"`
	Evidence     string  `json:"evidence,omitempty"`
}

// NearestPeer is the closest ROA/ROE comparator in the sector.
type NearestPeer struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	ROA    float64 `json:"roa"`
	ROE    float64 `json:"roe"`
}

// RiskAssessment groups the solvency and business-risk view.
type RiskAssessment struct {
	SolvencyIndex  float64             `json:"solvency_index"`
	BusinessRisks  map[string]float64  `json:"business_risks,omitempty"`
	PeerComparison []PeerComparisonRow `json:"peer_comparison,omitempty"`
	NearestPeer    *NearestPeer        `json:"nearest_peer,omitempty"`
}

// Audit statuses reported per verified metric.
const (
	AuditStatusVerified = "Verified"
	AuditStatusAdjusted = "Adjusted"
)

// AccuracyAuditEntry records one metric/year verification performed by the
// provider against its sources.
type AccuracyAuditEntry struct {
	Metric          string  `json:"metric"`
	Year            int     `json:"year"`
	IdentifiedValue float64 `json:"identified_value"`
	VerifiedValue   float64 `json:"verified_value"`
	Variance        float64 `json:"variance"`
	Status          string  `json:"status"` // Verified | Adjusted
	SourceReference string  `json:"source_reference,omitempty"`
	Currency        string  `json:"currency,omitempty"`
}

// QAEntry is one prompted question with the provider's answer.
type QAEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Narrative holds the four prose blocks plus the fixed Q&A set.
type Narrative struct {
	Overview      string    `json:"overview"`
	Profitability string    `json:"profitability"`
	Risks         string    `json:"risks"`
	Outlook       string    `json:"outlook"`
	QA            []QAEntry `json:"qa,omitempty"`
}

// ScenarioForecast carries base/upside/downside projections for one metric.
type ScenarioForecast struct {
	Base     float64 `json:"base"`
	Upside   float64 `json:"upside"`
	Downside float64 `json:"downside"`
}

// Forecasts bundles the forward-looking scenarios and their assumptions.
type Forecasts struct {
	ROA         ScenarioForecast `json:"roa"`
	ROE         ScenarioForecast `json:"roe"`
	Assumptions string           `json:"assumptions,omitempty"`
}

// AnalysisResult is the composite aggregate served to the dashboard: one
// company, one anchor year, a three-year derived series (anchor plus two
// preceding, most-recent-first) and everything the provider reported around
// it. Immutable once constructed; a forced refresh supersedes the whole
// record rather than mutating it.
type AnalysisResult struct {
	Company    Company `json:"company"`
	AnchorYear int     `json:"anchor_year"`

	Series      []DerivedYearMetrics `json:"series"`
	TextMetrics map[int]TextMetrics  `json:"text_metrics,omitempty"`

	Risk            RiskAssessment       `json:"risk"`
	AccuracyAudit   []AccuracyAuditEntry `json:"accuracy_audit,omitempty"`
	AccuracySummary string               `json:"accuracy_summary,omitempty"`

	Narrative Narrative `json:"narrative"`
	Forecasts Forecasts `json:"forecasts"`
	Sources   []string  `json:"sources,omitempty"`

	GeneratedAt time.Time `json:"generated_at"`
	DeepDive    bool      `json:"deep_dive"`
}

// AnchorMetrics returns the derived record for the anchor year, or nil when
// the series is missing it (a malformed provider payload should have been
// rejected before this can happen).
func (r *AnalysisResult) AnchorMetrics() *DerivedYearMetrics {
	for i := range r.Series {
		if r.Series[i].Year == r.AnchorYear {
			return &r.Series[i]
		}
	}
	return nil
}
