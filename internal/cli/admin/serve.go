package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloo-solutions/communityos/internal/api/handlers"
	"github.com/cloo-solutions/communityos/internal/domain"
	"github.com/cloo-solutions/communityos/internal/jobs"
	"github.com/cloo-solutions/communityos/internal/repository"
	"github.com/cloo-solutions/communityos/internal/server"
	"github.com/cloo-solutions/communityos/internal/service"
	"github.com/cloo-solutions/communityos/internal/telemetry"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the community directory API server and the background embedding worker",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "", "Port to listen on (overrides COMMUNITY_PORT)")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")
	cmd.Flags().String("migrations", defaultMigrationsPath, "Directory containing migration files")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()
	cfg, logger := rt.cfg, rt.logger

	if cfg.HasSentry() {
		// Sample every trace in development, 10% elsewhere.
		sampleRate := 0.1
		if cfg.Environment == "development" {
			sampleRate = 1.0
		}
		shutdownTelemetry, _ := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
			Logger:           logger,
		})
		defer shutdownTelemetry()
	}

	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}

	if noMigrate, _ := cmd.Flags().GetBool("no-migrate"); !noMigrate {
		path, _ := cmd.Flags().GetString("migrations")
		if err := runMigrations(cfg.DatabaseURL, path, logger); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	participantRepo := repository.NewParticipantRepository(rt.pool)
	searchRepo := repository.NewParticipantSearchRepository(rt.pool, logger)
	embeddingJobRepo := repository.NewEmbeddingJobRepository(rt.pool)

	var (
		embedder  service.EmbeddingClient = unconfiguredEmbedder{}
		explainer service.Explainer
		writer    service.IntroWriter
	)
	var embeddingWorker *jobs.Worker
	if cfg.HasOpenAI() {
		client := newOpenAIClient(cfg)
		embedder, explainer, writer = client, client, client

		processor, err := jobs.NewEmbeddingWorker(embeddingJobRepo,
			service.NewEmbeddingService(client, participantRepo),
			jobs.WithPoolSize(cfg.EmbeddingWorkers),
			jobs.WithLogger(logger),
		)
		if err != nil {
			return fmt.Errorf("failed to create embedding worker: %w", err)
		}
		defer processor.Release()

		embeddingWorker = jobs.NewWorker(processor, cfg.EmbeddingPollInterval, logger)
		go embeddingWorker.Start(ctx)
	} else {
		logger.Warn("COMMUNITY_OPENAI_API_KEY not set: search and embedding generation are disabled")
	}

	searchSvc := service.NewSearchServiceWithConfig(embedder, searchRepo, explainer, service.SearchServiceConfig{
		EmbeddingModel: cfg.EmbeddingModel,
		Logger:         logger,
	})

	router := server.NewRouter(server.RouterConfig{
		Logger:             logger,
		HealthHandler:      handlers.NewHealthHandler(rt.pool),
		SearchHandler:      handlers.NewSearchHandler(searchSvc),
		MatchHandler:       handlers.NewMatchHandler(service.NewMatchService(participantRepo)),
		ParticipantHandler: handlers.NewParticipantHandler(service.NewParticipantService(participantRepo)),
		IntroHandler:       handlers.NewIntroHandler(service.NewIntroService(participantRepo, writer, logger)),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.WithField("port", cfg.Port).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		logger.Info("shutting down")
	case err := <-serveErr:
		telemetry.CaptureError(ctx, err)
		return fmt.Errorf("server failed: %w", err)
	}

	if embeddingWorker != nil {
		embeddingWorker.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}

// unconfiguredEmbedder stands in for the embedding provider when no API key is set.
type unconfiguredEmbedder struct{}

func (unconfiguredEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return nil, domain.NewDomainError(domain.ErrCodeEmbeddingFailed, "embedding provider not configured: COMMUNITY_OPENAI_API_KEY required")
}
