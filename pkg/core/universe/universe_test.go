package universe

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCompaniesReturnsCopy(t *testing.T) {
	a := Companies()
	if len(a) == 0 {
		t.Fatal("default universe is empty")
	}
	a[0].Symbol = "MUTATED"

	b := Companies()
	if b[0].Symbol == "MUTATED" {
		t.Error("Companies must return a copy, not the shipped table")
	}
}

func TestLoadEmptyPathFallsBackToDefault(t *testing.T) {
	companies, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(companies) != len(Companies()) {
		t.Errorf("expected default universe, got %d companies", len(companies))
	}
}

func TestLoadOverrideFile(t *testing.T) {
	doc := `companies:
  - symbol: ACME
    name: Acme Corp
    sector: Industrials
    domain: acme.example
  - symbol: GLOB
    name: Globex Corporation
    sector: Energy
    domain: globex.example
`
	path := filepath.Join(t.TempDir(), "universe.yaml")
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	companies, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(companies) != 2 {
		t.Fatalf("expected 2 companies, got %d", len(companies))
	}
	// Order is preserved: it defines batch iteration order.
	if companies[0].Symbol != "ACME" || companies[1].Symbol != "GLOB" {
		t.Errorf("override order not preserved: %+v", companies)
	}
}

func TestLoadRejectsIncompleteEntries(t *testing.T) {
	doc := "companies:\n  - symbol: ACME\n"
	path := filepath.Join(t.TempDir(), "universe.yaml")
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for entry missing name")
	}
}

func TestFind(t *testing.T) {
	companies := Companies()
	if _, ok := Find(companies, "AAPL"); !ok {
		t.Error("expected AAPL in default universe")
	}
	if _, ok := Find(companies, "NOPE"); ok {
		t.Error("unexpected hit for unknown symbol")
	}
}
