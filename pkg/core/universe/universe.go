// Package universe holds the coverage universe: the fixed, ordered list of
// companies the batch and export controllers iterate. Compiled-in by default,
// overridable from a YAML file of the same shape.
package universe

import (
	"fmt"
	"os"

	"dupont_dashboard/pkg/core/analysis"

	"gopkg.in/yaml.v2"
)

// defaultCompanies is the shipped universe. Order matters: batch runs and
// exports iterate in exactly this sequence.
var defaultCompanies = []analysis.Company{
	{Symbol: "AAPL", Name: "Apple Inc.", Sector: "Technology", Domain: "apple.com"},
	{Symbol: "MSFT", Name: "Microsoft Corporation", Sector: "Technology", Domain: "microsoft.com"},
	{Symbol: "GOOGL", Name: "Alphabet Inc.", Sector: "Communication Services", Domain: "abc.xyz"},
	{Symbol: "AMZN", Name: "Amazon.com, Inc.", Sector: "Consumer Discretionary", Domain: "amazon.com"},
	{Symbol: "NVDA", Name: "NVIDIA Corporation", Sector: "Technology", Domain: "nvidia.com"},
	{Symbol: "JPM", Name: "JPMorgan Chase & Co.", Sector: "Financials", Domain: "jpmorganchase.com"},
	{Symbol: "JNJ", Name: "Johnson & Johnson", Sector: "Health Care", Domain: "jnj.com"},
	{Symbol: "PG", Name: "The Procter & Gamble Company", Sector: "Consumer Staples", Domain: "pg.com"},
	{Symbol: "XOM", Name: "Exxon Mobil Corporation", Sector: "Energy", Domain: "exxonmobil.com"},
	{Symbol: "CAT", Name: "Caterpillar Inc.", Sector: "Industrials", Domain: "caterpillar.com"},
	{Symbol: "KO", Name: "The Coca-Cola Company", Sector: "Consumer Staples", Domain: "coca-colacompany.com"},
	{Symbol: "DIS", Name: "The Walt Disney Company", Sector: "Communication Services", Domain: "thewaltdisneycompany.com"},
}

// Companies returns the default universe. The returned slice is a copy;
// callers cannot reorder or mutate the shipped table.
func Companies() []analysis.Company {
	out := make([]analysis.Company, len(defaultCompanies))
	copy(out, defaultCompanies)
	return out
}

// Load reads a universe override from a YAML file:
//
//	companies:
//	  - symbol: AAPL
//	    name: Apple Inc.
//	    sector: Technology
//	    domain: apple.com
//
// An empty path returns the default universe.
func Load(path string) ([]analysis.Company, error) {
	if path == "" {
		return Companies(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read universe file: %w", err)
	}

	var doc struct {
		Companies []analysis.Company `yaml:"companies"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse universe file: %w", err)
	}
	if len(doc.Companies) == 0 {
		return nil, fmt.Errorf("universe file %s lists no companies", path)
	}

	for i, c := range doc.Companies {
		if c.Symbol == "" || c.Name == "" {
			return nil, fmt.Errorf("universe entry %d is missing symbol or name", i)
		}
	}
	return doc.Companies, nil
}

// Find returns the company with the given symbol, case-sensitively, from the
// provided universe.
func Find(companies []analysis.Company, symbol string) (analysis.Company, bool) {
	for _, c := range companies {
		if c.Symbol == symbol {
			return c, true
		}
	}
	return analysis.Company{}, false
}
