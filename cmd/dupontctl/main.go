package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"dupont_dashboard/pkg/core/batch"
	"dupont_dashboard/pkg/core/facts"
	"dupont_dashboard/pkg/core/llm"
	"dupont_dashboard/pkg/core/resilience"
	"dupont_dashboard/pkg/core/resolve"
	"dupont_dashboard/pkg/core/store"
	"dupont_dashboard/pkg/core/universe"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func buildCache(ctx context.Context) store.ResultCache {
	if strings.ToLower(os.Getenv("CACHE_BACKEND")) == "redis" {
		client := store.DialRedis(os.Getenv("REDIS_ADDR"), os.Getenv("REDIS_PASSWORD"), 0)
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
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	root := &cobra.Command{
		Use:   "dupontctl",
		Short: "Batch tooling for the DuPont analysis cache",
	}
	root.AddCommand(precacheCmd(), exportCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func precacheCmd() *cobra.Command {
	var (
		year     int
		delay    time.Duration
		cooldown time.Duration
	)

	cmd := &cobra.Command{
		Use:   "precache",
		Short: "Warm the persisted cache for every company in the universe",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			companies, err := universe.Load(os.Getenv("COMPANIES_FILE"))
			if err != nil {
				return err
			}
			precomputed := store.LoadPrecomputed(os.Getenv("PRECOMPUTED_FILE"))
			cache := buildCache(ctx)

			generator := facts.NewGenerator(&llm.GeminiProvider{}, os.Getenv("GEMINI_MODEL"))
			resolver := resolve.NewResolver(precomputed, cache, generator, resilience.Options{})

			ctrl := batch.NewController(companies, precomputed, cache, resolver,
				batch.WithPacing(delay, cooldown))
			summary := ctrl.Run(ctx, year)

			fmt.Printf("run %s: %d completed, %d skipped, %d failed of %d",
				summary.RunID, summary.Completed, summary.Skipped, summary.Failed, summary.Total)
			if summary.Cancelled {
				fmt.Print(" (cancelled)")
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", time.Now().Year()-1, "target fiscal year")
	cmd.Flags().DurationVar(&delay, "delay", batch.DefaultInterDelay, "pause between companies")
	cmd.Flags().DurationVar(&cooldown, "cooldown", batch.DefaultCooldown, "pause after a rate-limit failure")
	return cmd
}

func exportCmd() *cobra.Command {
	var (
		year int
		out  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every cached analysis for a year to a bulk artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			companies, err := universe.Load(os.Getenv("COMPANIES_FILE"))
			if err != nil {
				return err
			}
			precomputed := store.LoadPrecomputed(os.Getenv("PRECOMPUTED_FILE"))
			cache := buildCache(ctx)

			exporter := batch.NewExporter(companies, precomputed, cache)
			artifact, err := exporter.Collect(ctx, year)
			if err != nil {
				return err
			}
			if out == "" {
				out = fmt.Sprintf("dupont_export_%d_%s.json", year, artifact.ID)
			}
			if err := artifact.WriteFile(out); err != nil {
				return err
			}

			fmt.Printf("wrote %d of %d analyses for %d to %s\n",
				artifact.Found, artifact.Total, year, out)
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", time.Now().Year()-1, "target fiscal year")
	cmd.Flags().StringVar(&out, "out", "", "output file path (default dupont_export_<year>_<id>.json)")
	return cmd
}
