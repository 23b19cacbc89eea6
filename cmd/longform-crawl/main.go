package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dvkuznetsov/longform-crawl/internal/config"
	"github.com/dvkuznetsov/longform-crawl/internal/coordinator"
	"github.com/dvkuznetsov/longform-crawl/internal/fetcher"
	"github.com/dvkuznetsov/longform-crawl/internal/store"
)

// version is set at build time via -ldflags; "dev" otherwise.
var version = "dev"

// gracePeriod bounds how long Run waits for in-flight workers to exit
// after a shutdown signal before giving up.
const gracePeriod = 30 * time.Second

func main() {
	var reachedRunE bool

	rootCmd := &cobra.Command{
		Use:   "longform-crawl <config-path>",
		Short: "Multi-source longform crawl coordinator",
		Long: `longform-crawl discovers and fetches longform pages across an
encyclopedia category graph and two paginated-listing sites, tracking
lease-claimed tasks and content-hashed documents in MongoDB.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reachedRunE = true
			return runCrawl(cmd, args)
		},
	}
	rootCmd.SilenceUsage = true
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		if !reachedRunE {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func runCrawl(cmd *cobra.Command, args []string) error {
	configPath := args[0]

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, closeLog, err := setupLogger(cfg.Logs)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	defer closeLog()

	logger.Info("starting longform-crawl",
		"version", version,
		"config", configPath,
		"sources", len(cfg.Sources),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.NewMongoStore(ctx, cfg.DB.URI, cfg.DB.Database, cfg.DB.TasksCollection, cfg.DB.DocumentsCollection, logger)
	if err != nil {
		return fmt.Errorf("connect store: %w", err)
	}

	fetchMaxRetries := cfg.Logic.MaxRetries
	if fetchMaxRetries < 1 {
		fetchMaxRetries = 1
	}
	httpFetcher := fetcher.NewHTTPFetcher(fetcher.Config{
		Timeout:    time.Duration(cfg.Logic.TimeoutSeconds * float64(time.Second)),
		UserAgent:  cfg.Logic.UserAgent,
		MaxRetries: fetchMaxRetries,
	}, logger)
	defer httpFetcher.Close()

	sp := &coordinator.Supervisor{
		Cfg:    cfg,
		Store:  st,
		Fetch:  httpFetcher,
		Logger: logger,
	}

	if err := sp.Run(ctx, gracePeriod); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	logger.Info("longform-crawl exited cleanly")
	return nil
}

// versionCmd prints the build version and exits 0.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("longform-crawl %s\n", version)
		},
	}
}

// setupLogger builds a slog.Logger that writes to both stdout and an
// append-only log file under cfg.Dir (no rotation is performed). The
// returned closer must be called before process exit to close the log
// file.
func setupLogger(cfg config.LogsConfig) (*slog.Logger, func(), error) {
	level := parseLevel(cfg.Level)

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	logPath := filepath.Join(cfg.Dir, "longform-crawl.log")
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	writer := io.MultiWriter(os.Stdout, f)
	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)

	return logger, func() { _ = f.Close() }, nil
}

func parseLevel(raw string) slog.Level {
	switch raw {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
