package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/pathtutor/internal/bootstrap"
	"github.com/at-ishikawa/pathtutor/internal/config"
	"github.com/at-ishikawa/pathtutor/internal/database"
	"github.com/at-ishikawa/pathtutor/internal/leaderboard"
	"github.com/at-ishikawa/pathtutor/internal/learning"
	"github.com/at-ishikawa/pathtutor/internal/outbox"
	"github.com/at-ishikawa/pathtutor/internal/progress"
	"github.com/at-ishikawa/pathtutor/internal/server"
	"github.com/at-ishikawa/pathtutor/internal/session"
	"github.com/at-ishikawa/pathtutor/internal/tutor"
)

var configFile string

func main() {
	var debugMode bool
	rootCmd := &cobra.Command{
		Use:           "pathtutor-server",
		Short:         "Pathtutor practice service HTTP server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("godotenv.Load() > %w", err)
			}
			setupLogger(debugMode)
			return run(cmd.Context())
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug mode")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogger(debugMode bool) {
	logLevel := slog.LevelInfo
	if debugMode {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: true,
	})))
}

func run(ctx context.Context) error {
	app := bootstrap.New()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("database.Open() > %w", err)
	}
	app.AddShutdownHook("database", func(ctx context.Context) error {
		return db.Close()
	})
	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return fmt.Errorf("database.Migrate() > %w", err)
	}

	var redisClient *redis.Client
	if cfg.Session.Store == "redis" {
		redisClient = session.NewRedisClient(cfg.Redis)
		app.AddShutdownHook("redis", func(ctx context.Context) error {
			return redisClient.Close()
		})
	}
	sessions, err := session.NewStore(*cfg, db, redisClient)
	if err != nil {
		return fmt.Errorf("session.NewStore() > %w", err)
	}

	timeout := time.Duration(cfg.Progress.TimeoutSeconds) * time.Second
	httpClient := progress.NewHTTPClient(cfg.Progress.BaseURL, timeout, cfg.Progress.RetryAttempts)
	app.AddShutdownHook("progress client", func(ctx context.Context) error {
		return httpClient.Close()
	})
	progressClient := progress.NewCachedClient(httpClient, progress.NewFileCache(cfg.Progress.CacheDirectory))

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := server.NewMetrics(registry)

	handler, err := server.NewSessionHandler(&tutor.Factory{
		Progress:    progressClient,
		Sessions:    sessions,
		AnswerLogs:  learning.NewDBAnswerLogRepository(db),
		AutoAdvance: cfg.Learner.AutoAdvance,
	}, leaderboard.NewReader(cfg.Progress.BaseURL, timeout), metrics)
	if err != nil {
		return fmt.Errorf("server.NewSessionHandler() > %w", err)
	}
	app.AddShutdownHook("sessions", handler.Shutdown)

	scheduler := outbox.NewScheduler(time.Duration(cfg.Sync.FlushIntervalSeconds)*time.Second, handler.Flushers)
	if err := scheduler.Start(ctx); err != nil {
		return fmt.Errorf("scheduler.Start() > %w", err)
	}
	app.AddShutdownHook("outbox scheduler", func(ctx context.Context) error {
		scheduler.Stop()
		return nil
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           server.NewHandler(handler, metrics, registry, cfg.Server.CORS.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}
	app.AddShutdownHook("http server", srv.Shutdown)

	return app.Run(ctx, func(ctx context.Context) error {
		slog.Default().Info("starting server", "addr", srv.Addr, "session_store", cfg.Session.Store, "progress_url", cfg.Progress.BaseURL)
		var err error
		if cfg.Server.TLSCertFile != "" {
			err = srv.ListenAndServeTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}
