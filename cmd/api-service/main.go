package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aiedgeeliza/videogen/internal/api/handler"
	"github.com/aiedgeeliza/videogen/internal/api/router"
	"github.com/aiedgeeliza/videogen/internal/artifacts"
	"github.com/aiedgeeliza/videogen/internal/config"
	"github.com/aiedgeeliza/videogen/internal/registry"
	"github.com/aiedgeeliza/videogen/internal/render"
	"github.com/aiedgeeliza/videogen/internal/synthesis"
	"github.com/aiedgeeliza/videogen/internal/worker"
	"github.com/aiedgeeliza/videogen/shared/logger"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	defaultConfigPath := os.Getenv("VIDEOGEN_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger, err := initLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	appLogger.Info("Starting video generation service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	store := artifacts.New(cfg.Storage.VideosDir, cfg.Storage.TempDir)
	if err := store.EnsureDirs(); err != nil {
		return fmt.Errorf("failed to prepare storage dirs: %w", err)
	}

	reg := registry.New(cfg.Jobs.MaxConcurrent, appLogger.Logger)

	generator := synthesis.New(synthesis.Options{
		APIKey:            cfg.Gemini.APIKey,
		BaseURL:           cfg.Gemini.BaseURL,
		Model:             cfg.Gemini.Model,
		Timeout:           cfg.Gemini.Timeout,
		MaxRepairAttempts: cfg.Gemini.MaxRepairAttempts,
		EnableVoiceover:   cfg.Gemini.EnableVoiceover,
		Voice:             cfg.Gemini.Voice,
	}, appLogger.Logger)

	engine := render.New(render.Options{
		ManimPath: cfg.Render.ManimPath,
		Quality:   cfg.Render.Quality,
		Timeout:   cfg.Render.Timeout,
	}, store, appLogger.Logger)

	w := worker.NewWorker(&worker.Config{
		Logger:          appLogger.Logger,
		Registry:        reg,
		Synthesizer:     generator,
		Renderer:        engine,
		Artifacts:       store,
		Concurrency:     cfg.Jobs.MaxConcurrent,
		Retention:       cfg.Jobs.Retention,
		CleanupInterval: cfg.Jobs.CleanupInterval,
	})

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	w.Start(workerCtx)

	r := initRouter(cfg, appLogger.Logger, w, reg, store)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed to start",
				slog.Any("error", err),
			)
			os.Exit(1)
		}
	}()

	appLogger.Info("Video generation service is running",
		slog.String("address", addr),
		slog.Int("max_concurrent", cfg.Jobs.MaxConcurrent),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown",
			slog.Any("error", err),
		)
		return err
	}

	workerCancel()
	w.Stop()

	appLogger.Info("Server shutdown complete")
	return nil
}

// initLogger initializes and configures the application logger
func initLogger(cfg *config.LoggingConfig) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		Output:       cfg.Output,
		EnableSource: cfg.EnableCaller,
		TimeFormat:   time.RFC3339,
	})
}

// initRouter initializes the Gin router with all routes and middleware
func initRouter(cfg *config.Config, logger *slog.Logger, w *worker.Worker, reg *registry.Registry, store *artifacts.Store) *gin.Engine {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	return router.SetupRouter(&handler.Dependencies{
		Logger:      logger,
		Worker:      w,
		Registry:    reg,
		Artifacts:   store,
		MinDuration: cfg.Jobs.MinDuration,
		MaxDuration: cfg.Jobs.MaxDuration,
		ManimPath:   cfg.Render.ManimPath,
		VideosDir:   cfg.Storage.VideosDir,
		TempDir:     cfg.Storage.TempDir,
	})
}
