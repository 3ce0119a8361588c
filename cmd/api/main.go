package main

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	apianalysis "dupont_dashboard/pkg/api/analysis"
	"dupont_dashboard/pkg/core/batch"
	"dupont_dashboard/pkg/core/facts"
	"dupont_dashboard/pkg/core/llm"
	"dupont_dashboard/pkg/core/resilience"
	"dupont_dashboard/pkg/core/resolve"
	"dupont_dashboard/pkg/core/store"
	"dupont_dashboard/pkg/core/universe"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func buildCache(ctx context.Context) store.ResultCache {
	backend := strings.ToLower(os.Getenv("CACHE_BACKEND"))
	if backend == "redis" {
		client := store.DialRedis(os.Getenv("REDIS_ADDR"), os.Getenv("REDIS_PASSWORD"), 0)
		log.Info().Str("backend", "redis").Msg("persisted cache ready")
		return store.NewRedisResultCache(client, 0)
	}

	if os.Getenv("DATABASE_URL") != "" {
		if err := store.InitDB(ctx); err != nil {
			log.Warn().Err(err).Msg("database unavailable, falling back to file cache")
		}
	}
	return store.NewPGResultCache(store.GetPool(), os.Getenv("ANALYSIS_CACHE_DIR"))
}

func main() {
	godotenv.Load()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	ctx := context.Background()

	companies, err := universe.Load(os.Getenv("COMPANIES_FILE"))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid companies file")
	}

	precomputed := store.LoadPrecomputed(os.Getenv("PRECOMPUTED_FILE"))
	cache := buildCache(ctx)

	var provider llm.Provider = &llm.GeminiProvider{}
	if os.Getenv("GEMINI_FALLBACK_API_KEY") != "" && os.Getenv("GEMINI_API_KEY") == "" {
		provider = &llm.LegacyGeminiProvider{}
		log.Info().Msg("serving on alternate Gemini credentials")
	}

	generator := facts.NewGenerator(provider, os.Getenv("GEMINI_MODEL"))
	resolver := resolve.NewResolver(precomputed, cache, generator, resilience.Options{})
	exporter := batch.NewExporter(companies, precomputed, cache)

	apianalysis.InitHandler(resolver, companies, exporter)
	http.HandleFunc("/api/analysis/report", apianalysis.HandleReport)
	http.HandleFunc("/api/analysis/companies", apianalysis.HandleCompanies)
	http.HandleFunc("/api/analysis/export", apianalysis.HandleExport)
	http.Handle("/metrics", promhttp.Handler())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Info().Str("port", port).Int("companies", len(companies)).
		Int("precomputed", precomputed.Len()).Msg("API server starting")
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatal().Err(err).Msg("server failed to start")
	}
}
