// Command embed-backfill embeds every entity that is still missing an
// embedding, batch by batch, and prints a per-kind summary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
	"golang.org/x/time/rate"

	"github.com/rareminds/skillhub/internal/config"
	"github.com/rareminds/skillhub/internal/embed"
	"github.com/rareminds/skillhub/internal/localembed"
	"github.com/rareminds/skillhub/internal/models"
	"github.com/rareminds/skillhub/internal/openai"
	"github.com/rareminds/skillhub/internal/pipeline"
	"github.com/rareminds/skillhub/internal/repository"
	"github.com/rareminds/skillhub/pkg/database"
)

func main() {
	os.Exit(run())
}

func run() int {
	kindFlag := flag.String("kind", "all", "entity kind to backfill: courses, students, opportunities, or all")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	setupLogging(cfg.LogLevel)

	ctx := context.Background()

	db, err := database.NewPostgresPool(ctx, cfg.DatabaseURL,
		database.WithAfterConnect(func(ctx context.Context, conn *pgx.Conn) error {
			return pgxvec.RegisterTypes(ctx, conn)
		}))
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		return 1
	}
	defer db.Close()

	embedder, err := newEmbeddingClient(cfg)
	if err != nil {
		slog.Error("Failed to initialize embedding client", "error", err)
		return 1
	}

	stores := map[models.EntityKind]pipeline.Store{
		models.KindCourses:       repository.NewCoursesRepository(db),
		models.KindStudents:      repository.NewStudentsRepository(db),
		models.KindOpportunities: repository.NewOpportunitiesRepository(db),
	}

	var kinds []models.EntityKind
	if *kindFlag == "all" {
		kinds = []models.EntityKind{models.KindCourses, models.KindStudents, models.KindOpportunities}
	} else {
		kind, err := models.ParseEntityKind(*kindFlag)
		if err != nil {
			slog.Error("Invalid -kind value", "kind", *kindFlag)
			return 1
		}
		kinds = []models.EntityKind{kind}
	}

	exitCode := 0
	summaries := make([]pipeline.RunSummary, 0, len(kinds))

	for _, kind := range kinds {
		orchestrator := pipeline.NewOrchestrator(pipeline.OrchestratorParams{
			Store:      stores[kind],
			Embedder:   embedder,
			Dimensions: cfg.EmbeddingDimensions,
			BatchSize:  cfg.BatchSize,
			BatchDelay: time.Duration(cfg.BatchDelayMs) * time.Millisecond,
			Logger:     slog.Default(),
		})

		summary, err := orchestrator.Run(ctx)
		if err != nil {
			slog.Error("Backfill run failed", "kind", kind, "error", err)
			exitCode = 1
			continue
		}

		if !summary.Clean() {
			exitCode = 1
		}

		summaries = append(summaries, *summary)
	}

	printSummaries(summaries)

	return exitCode
}

// printSummaries writes a human-readable per-kind results table to stdout.
func printSummaries(summaries []pipeline.RunSummary) {
	if len(summaries) == 0 {
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tSUCCEEDED\tFAILED\tSKIPPED\tCOVERAGE\tDURATION")

	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d/%d\t%s\n",
			s.Kind, s.SuccessCount, s.FailedCount, s.SkippedCount,
			s.CoverageAfter.Embedded, s.CoverageAfter.Total, s.Duration.Round(time.Millisecond))
	}

	if err := w.Flush(); err != nil {
		slog.Error("Failed to print summary table", "error", err)
	}

	for _, s := range summaries {
		for _, e := range s.Errors {
			fmt.Printf("failed %s %s: %s\n", s.Kind, e.EntityID, e.Reason)
		}
	}
}

// newEmbeddingClient builds the configured provider wrapped with the retry
// policy and, when a rate limit is configured, a token-bucket throttle.
func newEmbeddingClient(cfg *config.Config) (embed.Client, error) {
	var base embed.Client

	switch cfg.EmbeddingProvider {
	case config.ProviderOpenAI:
		base = openai.NewClient(cfg.OpenAIAPIKey, openai.WithDimensions(cfg.EmbeddingDimensions))
	case config.ProviderLocal:
		base = localembed.NewClient(cfg.EmbeddingServiceURL)
	case config.ProviderMock:
		base = embed.NewMockClient(cfg.EmbeddingDimensions)
	default:
		return nil, errors.New("unknown embedding provider " + cfg.EmbeddingProvider)
	}

	if cfg.EmbeddingRateLimit > 0 {
		base = embed.NewLimitedClient(base, rate.NewLimiter(rate.Limit(cfg.EmbeddingRateLimit), 1))
	}

	return embed.NewRetryClient(base,
		embed.WithMaxRetries(cfg.MaxRetries),
		embed.WithInitialBackoff(time.Duration(cfg.InitialBackoffMs)*time.Millisecond),
		embed.WithBackoffMultiplier(cfg.BackoffMultiplier),
	), nil
}

// setupLogging configures slog with the specified log level
func setupLogging(level string) {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))
}
