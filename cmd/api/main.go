package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jackc/pgx/v5"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
	"golang.org/x/time/rate"

	"github.com/rareminds/skillhub/internal/api/handlers"
	"github.com/rareminds/skillhub/internal/api/middleware"
	"github.com/rareminds/skillhub/internal/config"
	"github.com/rareminds/skillhub/internal/embed"
	"github.com/rareminds/skillhub/internal/localembed"
	"github.com/rareminds/skillhub/internal/models"
	"github.com/rareminds/skillhub/internal/openai"
	"github.com/rareminds/skillhub/internal/recommend"
	"github.com/rareminds/skillhub/internal/repository"
	"github.com/rareminds/skillhub/internal/service"
	"github.com/rareminds/skillhub/pkg/database"
)

const profileCacheSize = 512

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Configure slog with the log level from config
	setupLogging(cfg.LogLevel)

	// Initialize database connection with pgvector types registered
	db, err := database.NewPostgresPool(ctx, cfg.DatabaseURL,
		database.WithAfterConnect(func(ctx context.Context, conn *pgx.Conn) error {
			return pgxvec.RegisterTypes(ctx, conn)
		}))
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize embedding client with retry and optional throttling
	embedder, err := newEmbeddingClient(cfg)
	if err != nil {
		slog.Error("Failed to initialize embedding client", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	coursesRepo := repository.NewCoursesRepository(db)
	studentsRepo := repository.NewStudentsRepository(db)
	opportunitiesRepo := repository.NewOpportunitiesRepository(db)

	// Initialize recommendation engine and service
	engine := recommend.NewEngine(cfg.EmbeddingDimensions, slog.Default())

	profileCache, err := lru.New[string, []float32](profileCacheSize)
	if err != nil {
		slog.Error("Failed to initialize profile cache", "error", err)
		os.Exit(1)
	}

	recommendationService := service.NewRecommendationService(service.RecommendationServiceParams{
		Students:      studentsRepo,
		Courses:       coursesRepo,
		Opportunities: opportunitiesRepo,
		Embedder:      embedder,
		Engine:        engine,
		Dimensions:    cfg.EmbeddingDimensions,
		ProfileCache:  profileCache,
		Logger:        slog.Default(),
	})

	recommendationsHandler := handlers.NewRecommendationsHandler(recommendationService)
	coverageHandler := handlers.NewCoverageHandler(map[models.EntityKind]handlers.CoverageReader{
		models.KindCourses:       coursesRepo,
		models.KindStudents:      studentsRepo,
		models.KindOpportunities: opportunitiesRepo,
	})
	healthHandler := handlers.NewHealthHandler()

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestLogger(slog.Default()))

	r.Get("/health", healthHandler.Check)

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.APIKey))
		r.Get("/students/{studentID}/recommendations", recommendationsHandler.List)
		r.Get("/embeddings/coverage", coverageHandler.Stats)
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.Port, "provider", cfg.EmbeddingProvider)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server stopped")
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

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	handler := slog.NewTextHandler(os.Stdout, opts)
	slog.SetDefault(slog.New(handler))
}
