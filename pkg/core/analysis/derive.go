package analysis

// =============================================================================
// METRIC DERIVATION (DuPont decomposition over a raw yearly series)
// =============================================================================

// DeriveSeries attaches the derived ratio set to a raw series ordered
// most-recent-first. Balance-sheet figures are averaged against the prior
// year (the element at i+1); the oldest element has no predecessor and stands
// in as its own average.
//
// Division by zero is NOT special-cased: a zero revenue, average assets or
// average equity produces ±Inf/NaN in the corresponding ratio. Callers must
// tolerate non-finite values; clamping to 0 would disguise a broken year as a
// plausible one.
//
// Pure and deterministic; the input slice is not modified.
func DeriveSeries(raw []RawYearFinancials) []DerivedYearMetrics {
	derived := make([]DerivedYearMetrics, 0, len(raw))
	for i, rec := range raw {
		avgAssets := rec.TotalAssets
		avgEquity := rec.TotalEquity
		if i+1 < len(raw) {
			prior := raw[i+1]
			avgAssets = (rec.TotalAssets + prior.TotalAssets) / 2
			avgEquity = (rec.TotalEquity + prior.TotalEquity) / 2
		}

		derived = append(derived, DerivedYearMetrics{
			RawYearFinancials: rec,
			AvgAssets:         avgAssets,
			AvgEquity:         avgEquity,
			Margin:            rec.NetProfit / rec.Revenue,
			Turnover:          rec.Revenue / avgAssets,
			ROA:               rec.NetProfit / avgAssets,
			Leverage:          avgAssets / avgEquity,
			ROE:               rec.NetProfit / avgEquity,
		})
	}
	return derived
}

// DuPontIdentity recomputes ROE as margin × turnover × leverage for one
// derived year. Useful as a consistency check against the directly computed
// ROE (the two agree up to floating-point rounding).
func DuPontIdentity(m DerivedYearMetrics) float64 {
	return m.Margin * m.Turnover * m.Leverage
}
