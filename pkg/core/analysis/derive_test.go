package analysis

import (
	"math"
	"testing"
)

func TestDeriveSeriesTwoYearAveraging(t *testing.T) {
	// Year 0 (anchor): assets 100, equity 50, revenue 50, profit 10
	// Year 1 (prior):  assets 80, equity 40
	// avgAssets = (100+80)/2 = 90, avgEquity = (50+40)/2 = 45
	raw := []RawYearFinancials{
		{Year: 2024, Revenue: 50, NetProfit: 10, TotalAssets: 100, TotalEquity: 50},
		{Year: 2023, Revenue: 40, NetProfit: 8, TotalAssets: 80, TotalEquity: 40},
	}

	series := DeriveSeries(raw)
	if len(series) != 2 {
		t.Fatalf("expected 2 derived years, got %d", len(series))
	}

	anchor := series[0]
	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"avg_assets", anchor.AvgAssets, 90},
		{"avg_equity", anchor.AvgEquity, 45},
		{"margin", anchor.Margin, 0.2}, // 10/50
		{"turnover", anchor.Turnover, 50.0 / 90.0},
		{"roa", anchor.ROA, 10.0 / 90.0},
		{"leverage", anchor.Leverage, 2.0}, // 90/45
		{"roe", anchor.ROE, 10.0 / 45.0},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 1e-9 {
			t.Errorf("%s: expected %f, got %f", c.name, c.want, c.got)
		}
	}

	// DuPont identity: ROE == margin * turnover * leverage
	if math.Abs(DuPontIdentity(anchor)-anchor.ROE) > 1e-9 {
		t.Errorf("DuPont identity broken: %f vs %f", DuPontIdentity(anchor), anchor.ROE)
	}
}

func TestDeriveSeriesOldestYearFallback(t *testing.T) {
	raw := []RawYearFinancials{
		{Year: 2024, Revenue: 50, NetProfit: 10, TotalAssets: 100, TotalEquity: 50},
		{Year: 2023, Revenue: 40, NetProfit: 8, TotalAssets: 80, TotalEquity: 40},
	}

	oldest := DeriveSeries(raw)[1]
	// No predecessor: raw balance-sheet values stand in as their own average.
	if oldest.AvgAssets != 80 {
		t.Errorf("expected avg assets 80 (own value), got %f", oldest.AvgAssets)
	}
	if oldest.AvgEquity != 40 {
		t.Errorf("expected avg equity 40 (own value), got %f", oldest.AvgEquity)
	}
	if math.Abs(oldest.ROE-8.0/40.0) > 1e-9 {
		t.Errorf("expected ROE 0.2, got %f", oldest.ROE)
	}
}

func TestDeriveSeriesNonFiniteNotClamped(t *testing.T) {
	raw := []RawYearFinancials{
		{Year: 2024, Revenue: 0, NetProfit: 10, TotalAssets: 0, TotalEquity: 0},
	}

	m := DeriveSeries(raw)[0]
	if !math.IsInf(m.Margin, 1) {
		t.Errorf("zero revenue should give +Inf margin, got %f", m.Margin)
	}
	if !math.IsInf(m.ROE, 1) {
		t.Errorf("zero equity should give +Inf ROE, got %f", m.ROE)
	}
	if !math.IsNaN(m.Leverage) {
		t.Errorf("0/0 leverage should be NaN, got %f", m.Leverage)
	}
}

func TestDeriveSeriesIdempotent(t *testing.T) {
	raw := []RawYearFinancials{
		{Year: 2024, Revenue: 391, NetProfit: 94, TotalAssets: 365, TotalEquity: 57},
		{Year: 2023, Revenue: 383, NetProfit: 97, TotalAssets: 353, TotalEquity: 62},
		{Year: 2022, Revenue: 394, NetProfit: 100, TotalAssets: 352, TotalEquity: 51},
	}

	a := DeriveSeries(raw)
	b := DeriveSeries(raw)
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("year %d: repeated derivation differs", a[i].Year)
		}
	}
	// Input untouched
	if raw[0].TotalAssets != 365 {
		t.Error("input slice was mutated")
	}
}
