package store

import (
	"fmt"
	"strings"
)

// KeyNamespace prefixes every persisted-tier key so the cache can share a
// database or Redis instance with other tools.
const KeyNamespace = "dupont"

// Key builds the persisted-tier cache key for one (symbol, year):
// "dupont:AAPL:2024". One entry per key per tier; a refresh replaces it.
func Key(symbol string, year int) string {
	return fmt.Sprintf("%s:%s:%d", KeyNamespace, strings.ToUpper(symbol), year)
}

// BulkKey is the composite key used inside bulk artifacts (precomputed loads
// and exports): "AAPL:2024", no namespace.
func BulkKey(symbol string, year int) string {
	return fmt.Sprintf("%s:%d", strings.ToUpper(symbol), year)
}
