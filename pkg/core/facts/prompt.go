package facts

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a forensic financial analyst. You research a company's published
annual reports and produce a structured DuPont analysis payload. You respond
with a SINGLE JSON object matching the requested schema exactly: no prose
outside the JSON, no markdown fences. All monetary figures are in millions of
the reporting currency. When a figure cannot be verified from a primary
source, report it anyway and mark the corresponding accuracy_audit entry as
"Adjusted" with the variance you estimate.`

// The fixed Q&A set rendered on the dashboard. The model answers each from
// the researched filings.
var qaPrompts = []string{
	"What drove the change in ROE versus the prior year?",
	"Is profitability driven more by margin or by turnover?",
	"How dependent is ROE on financial leverage?",
	"What is the single largest risk to next year's earnings?",
}

const schemaBlock = `{
  "time_series": [{"year": 0, "revenue": 0, "net_profit": 0, "total_assets": 0, "total_equity": 0, "source_url": ""}],
  "accuracy_audit": [{"metric": "", "year": 0, "identified_value": 0, "verified_value": 0, "variance": 0, "status": "Verified|Adjusted", "source_reference": "", "currency": ""}],
  "accuracy_summary": "",
  "solvency_index": 0,
  "business_risks": {"operational": 0, "financial": 0, "market": 0},
  "peer_comparison": [{"metric": "", "company_value": 0, "peer_median": 0, "top_quartile": 0, "evidence": ""}],
  "nearest_peer": {"symbol": "", "name": "", "roa": 0, "roe": 0},
  "text_metrics": {"<year>": {"sentiment": 0, "forward_looking_info": 0, "specificity": 0, "sentence_length": 0, "depth": 0, "unfamiliarity": 0}},
  "narrative": {"overview": "", "profitability": "", "risks": "", "outlook": "", "qa": [{"question": "", "answer": ""}]},
  "forecasts": {"roa": {"base": 0, "upside": 0, "downside": 0}, "roe": {"base": 0, "upside": 0, "downside": 0}},
  "forecast_assumptions": "",
  "sources": [""]
}`

// buildPrompt renders the user prompt for one request. Deep-dive requests get
// stricter re-verification instructions plus the discrepancy note that
// triggered them.
func buildPrompt(req Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Analyze %s (%s), sector %s, for fiscal year %d.\n",
		req.Company.Name, req.Company.Symbol, req.Company.Sector, req.Year)
	fmt.Fprintf(&b, "Cover fiscal years %d, %d and %d (three-year series, most recent first).\n",
		req.Year, req.Year-1, req.Year-2)

	b.WriteString("\nReport raw yearly financials (revenue, net profit, total assets, total equity), ")
	b.WriteString("an accuracy audit per metric per year, a solvency index with business-risk sub-scores, ")
	b.WriteString("peer benchmarking for the sector, per-year textual disclosure metrics, ")
	b.WriteString("four narrative sections, base/upside/downside forecasts for ROA and ROE, ")
	b.WriteString("and the list of sources used.\n")

	b.WriteString("\nAnswer these questions in narrative.qa:\n")
	for _, q := range qaPrompts {
		fmt.Fprintf(&b, "- %s\n", q)
	}

	if req.DeepDive {
		b.WriteString("\nCRITICAL RE-VERIFICATION PASS: a prior analysis of this company/year ")
		b.WriteString("disagrees with fresh generation. Re-derive every figure strictly from ")
		b.WriteString("primary sources (annual report, audited statements), cite the exact ")
		b.WriteString("source per year, and prefer audited figures over press coverage.\n")
		if req.DiscrepancyNote != "" {
			fmt.Fprintf(&b, "Observed discrepancy: %s\n", req.DiscrepancyNote)
		}
	}

	b.WriteString("\nRespond with a single JSON object in exactly this schema:\n")
	b.WriteString(schemaBlock)
	b.WriteString("\n")

	return b.String()
}
