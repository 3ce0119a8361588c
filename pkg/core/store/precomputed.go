package store

import (
	"encoding/json"
	"os"
	"sync"

	"dupont_dashboard/pkg/core/analysis"

	"github.com/rs/zerolog/log"
)

// PrecomputedSet is the in-memory tier: a bulk artifact of analyses shipped
// with the deployment and loaded once at session start. Read-only after load.
type PrecomputedSet struct {
	mu      sync.RWMutex
	entries map[string]*analysis.AnalysisResult // BulkKey -> result
}

// NewPrecomputedSet creates an empty set (the precomputed tier disabled).
func NewPrecomputedSet() *PrecomputedSet {
	return &PrecomputedSet{entries: make(map[string]*analysis.AnalysisResult)}
}

// LoadPrecomputed reads a bulk artifact {"SYM:YEAR": AnalysisResult, ...}
// from path. A missing or unreadable artifact degrades to an empty set with a
// warning; it is never fatal.
func LoadPrecomputed(path string) *PrecomputedSet {
	set := NewPrecomputedSet()
	if path == "" {
		return set
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("precomputed artifact unavailable, tier disabled")
		return set
	}

	var entries map[string]*analysis.AnalysisResult
	if err := json.Unmarshal(raw, &entries); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("precomputed artifact corrupt, tier disabled")
		return set
	}

	set.entries = entries
	log.Info().Int("entries", len(entries)).Str("path", path).Msg("precomputed tier loaded")
	return set
}

// Lookup returns the precomputed analysis for (symbol, year) if present.
func (s *PrecomputedSet) Lookup(symbol string, year int) (*analysis.AnalysisResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.entries[BulkKey(symbol, year)]
	return res, ok
}

// Len reports the number of loaded entries.
func (s *PrecomputedSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Seed inserts one entry. The production lifecycle is load-once at startup;
// Seed exists for fixture stores in tests.
func (s *PrecomputedSet) Seed(symbol string, year int, res *analysis.AnalysisResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[BulkKey(symbol, year)] = res
}
