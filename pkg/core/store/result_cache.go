package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dupont_dashboard/pkg/core/analysis"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// PGResultCache is the default persisted tier: Postgres JSONB as primary,
// a local file directory as fallback when no pool is configured.
//
// Schema assumption (managed by migrations elsewhere):
//
//	CREATE TABLE IF NOT EXISTS analysis_cache (
//	  cache_key  TEXT PRIMARY KEY,
//	  symbol     TEXT NOT NULL,
//	  year       INT NOT NULL,
//	  payload    JSONB NOT NULL,
//	  updated_at TIMESTAMPTZ NOT NULL
//	);
type PGResultCache struct {
	pool    *pgxpool.Pool
	fileDir string
}

var _ ResultCache = (*PGResultCache)(nil)

// NewPGResultCache creates the hybrid cache. If pool is nil it falls back to
// a file-based cache in dir; an empty dir defaults to .cache/analysis.
func NewPGResultCache(pool *pgxpool.Pool, dir string) *PGResultCache {
	if pool == nil && dir == "" {
		dir = filepath.Join(".cache", "analysis")
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("could not create file cache dir")
		}
	}
	return &PGResultCache{pool: pool, fileDir: dir}
}

// fileEntry wraps a cached result with the metadata the file tier needs to
// identify it without parsing the full payload.
type fileEntry struct {
	Key      string                   `json:"key"`
	Symbol   string                   `json:"symbol"`
	Year     int                      `json:"year"`
	Result   *analysis.AnalysisResult `json:"result"`
	CachedAt time.Time                `json:"cached_at"`
}

func (c *PGResultCache) Get(ctx context.Context, key string) (*analysis.AnalysisResult, bool, error) {
	if c.pool != nil {
		query := `SELECT payload FROM analysis_cache WHERE cache_key = $1 LIMIT 1`
		var payload []byte
		err := c.pool.QueryRow(ctx, query, key).Scan(&payload)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, false, nil
			}
			return nil, false, fmt.Errorf("cache lookup for %s failed: %w", key, err)
		}
		var result analysis.AnalysisResult
		if err := json.Unmarshal(payload, &result); err != nil {
			return nil, false, fmt.Errorf("failed to unmarshal cached payload for %s: %w", key, err)
		}
		return &result, true, nil
	}

	if c.fileDir != "" {
		return c.loadFromFile(key)
	}
	return nil, false, nil
}

func (c *PGResultCache) Set(ctx context.Context, key string, result *analysis.AnalysisResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result for %s: %w", key, err)
	}

	if c.pool != nil {
		query := `
			INSERT INTO analysis_cache (cache_key, symbol, year, payload, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (cache_key)
			DO UPDATE SET
				payload = EXCLUDED.payload,
				updated_at = EXCLUDED.updated_at
		`
		_, err = c.pool.Exec(ctx, query, key, result.Company.Symbol, result.AnchorYear, payload, time.Now())
		if err != nil {
			return fmt.Errorf("failed to persist %s: %w", key, err)
		}
	}

	if c.fileDir != "" {
		entry := fileEntry{
			Key:      key,
			Symbol:   result.Company.Symbol,
			Year:     result.AnchorYear,
			Result:   result,
			CachedAt: time.Now(),
		}
		fileBytes, _ := json.MarshalIndent(entry, "", "  ")
		if err := os.WriteFile(c.keyPath(key), fileBytes, 0644); err != nil {
			return fmt.Errorf("failed to write file cache for %s: %w", key, err)
		}
	}

	return nil
}

func (c *PGResultCache) Has(ctx context.Context, key string) (bool, error) {
	if c.pool != nil {
		query := `SELECT 1 FROM analysis_cache WHERE cache_key = $1 LIMIT 1`
		var one int
		err := c.pool.QueryRow(ctx, query, key).Scan(&one)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return false, nil
			}
			return false, fmt.Errorf("cache existence check for %s failed: %w", key, err)
		}
		return true, nil
	}

	if c.fileDir != "" {
		_, err := os.Stat(c.keyPath(key))
		return err == nil, nil
	}
	return false, nil
}

func (c *PGResultCache) keyPath(key string) string {
	safe := strings.ReplaceAll(key, ":", "_")
	return filepath.Join(c.fileDir, safe+".json")
}

func (c *PGResultCache) loadFromFile(key string) (*analysis.AnalysisResult, bool, error) {
	raw, err := os.ReadFile(c.keyPath(key))
	if err != nil {
		return nil, false, nil // not found
	}
	var entry fileEntry
	if err := json.Unmarshal(raw, &entry); err != nil || entry.Result == nil {
		return nil, false, fmt.Errorf("corrupt file cache entry for %s", key)
	}
	return entry.Result, true, nil
}
