package resolve

import (
	"fmt"
	"math"

	"dupont_dashboard/pkg/core/analysis"
)

// SignificanceThreshold is the relative shift above which two results for the
// same company/year are considered to disagree. Strictly greater-than: a
// shift of exactly 1% is not significant.
const SignificanceThreshold = 0.01

// DiscrepancyReport is the transient verdict of comparing a prior cached
// result against a freshly generated one. Never persisted.
type DiscrepancyReport struct {
	Significant bool    `json:"significant"`
	Message     string  `json:"message"`
	ROEShift    float64 `json:"roe_shift"`
	ProfitShift float64 `json:"profit_shift"`
}

// CompareResults measures the relative shift in anchor-year ROE and net
// profit between an existing result and a fresh one. The denominator is the
// old value, substituting 1 when it is zero. Pure.
func CompareResults(old, fresh *analysis.AnalysisResult) DiscrepancyReport {
	oldAnchor := old.AnchorMetrics()
	freshAnchor := fresh.AnchorMetrics()
	if oldAnchor == nil || freshAnchor == nil {
		return DiscrepancyReport{Message: "anchor year missing from series, comparison skipped"}
	}

	roeShift := relativeShift(oldAnchor.ROE, freshAnchor.ROE)
	profitShift := relativeShift(oldAnchor.NetProfit, freshAnchor.NetProfit)

	return DiscrepancyReport{
		Significant: roeShift > SignificanceThreshold || profitShift > SignificanceThreshold,
		Message: fmt.Sprintf("ROE shifted by %.2f%%, net profit shifted by %.2f%% against the cached analysis",
			roeShift*100, profitShift*100),
		ROEShift:    roeShift,
		ProfitShift: profitShift,
	}
}

func relativeShift(old, fresh float64) float64 {
	denom := old
	if denom == 0 {
		denom = 1
	}
	return math.Abs(fresh-old) / denom
}
