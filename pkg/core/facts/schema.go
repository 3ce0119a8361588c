package facts

import (
	"dupont_dashboard/pkg/core/analysis"
)

// Request identifies one generation call. DiscrepancyNote is only set on
// deep-dive re-verification passes, where it carries the detected delta as
// context for the model.
type Request struct {
	Company         analysis.Company
	Year            int
	DeepDive        bool
	DiscrepancyNote string
}

// payload is the structured body the model must return. Field names double as
// the schema contract embedded in the prompt; the model is instructed to emit
// exactly this shape as a single JSON object.
type payload struct {
	TimeSeries          []analysis.RawYearFinancials  `json:"time_series"`
	AccuracyAudit       []analysis.AccuracyAuditEntry `json:"accuracy_audit"`
	AccuracySummary     string                        `json:"accuracy_summary"`
	SolvencyIndex       float64                       `json:"solvency_index"`
	BusinessRisks       map[string]float64            `json:"business_risks"`
	PeerComparison      []analysis.PeerComparisonRow  `json:"peer_comparison"`
	NearestPeer         *analysis.NearestPeer         `json:"nearest_peer"`
	TextMetrics         map[int]analysis.TextMetrics  `json:"text_metrics"`
	Narrative           narrativePayload              `json:"narrative"`
	Forecasts           forecastsPayload              `json:"forecasts"`
	ForecastAssumptions string                        `json:"forecast_assumptions"`
	Sources             []string                      `json:"sources"`
}

type narrativePayload struct {
	Overview      string             `json:"overview"`
	Profitability string             `json:"profitability"`
	Risks         string             `json:"risks"`
	Outlook       string             `json:"outlook"`
	QA            []analysis.QAEntry `json:"qa"`
}

type forecastsPayload struct {
	ROA analysis.ScenarioForecast `json:"roa"`
	ROE analysis.ScenarioForecast `json:"roe"`
}
