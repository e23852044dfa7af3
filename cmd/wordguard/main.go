package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raaihank/wordguard/internal/config"
	"github.com/raaihank/wordguard/internal/filter"
	"github.com/raaihank/wordguard/internal/logger"
	"github.com/raaihank/wordguard/internal/seeds"
	"github.com/raaihank/wordguard/internal/server"
	"go.uber.org/zap"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
		watch       = flag.Bool("watch", true, "Reload filter settings when the config file changes")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("wordguard %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	loader := config.NewLoader(*configPath)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	loggerConfig := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}
	if cfg.Logging.File.Enabled {
		loggerConfig.File = &logger.FileConfig{
			Enabled: true,
			Path:    cfg.Logging.File.Path,
		}
	}

	log, err := logger.New(loggerConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting wordguard",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("build_date", date),
		zap.Int("port", cfg.Server.Port),
	)

	provider, closers := buildProvider(cfg, log)
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()

	f := filter.New(
		filter.WithLogger(log.WithComponent("filter").Logger),
		filter.WithProvider(provider),
	)

	srv := server.New(cfg, log, f)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = srv.Configure(ctx, cfg.Filter)
	cancel()
	if err != nil {
		log.Fatal("Failed to configure filter", zap.Error(err))
	}

	if *watch {
		loader.Watch(log.Logger, func(next *config.Config) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := srv.Configure(ctx, next.Filter); err != nil {
				log.Error("Failed to apply reloaded filter settings", zap.Error(err))
			}
		})
	}

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		log.Error("Server error", zap.Error(err))
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Stop(ctx); err != nil {
			log.Error("Failed to shutdown server gracefully", zap.Error(err))
			os.Exit(1)
		}

		log.Info("Server shutdown complete")
	}
}

// buildProvider chains the seed sources: files first, then Redis and
// Postgres when enabled, then the bundled seeds. Unreachable stores are
// logged and skipped.
func buildProvider(cfg *config.Config, log *logger.Logger) (seeds.Provider, []io.Closer) {
	seedLog := log.WithComponent("seeds").Logger
	providers := []seeds.Provider{seeds.NewFileProvider(cfg.Seeds.Dir, seedLog)}
	var closers []io.Closer

	if cfg.Seeds.Redis.Enabled {
		p, err := seeds.NewRedisProvider(&cfg.Seeds.Redis.RedisConfig, seedLog)
		if err != nil {
			log.Warn("Redis seed provider unavailable", zap.Error(err))
		} else {
			providers = append(providers, p)
			closers = append(closers, p)
		}
	}

	if cfg.Seeds.Database.Enabled {
		p, err := seeds.NewPostgresProvider(&cfg.Seeds.Database.DatabaseConfig, seedLog)
		if err != nil {
			log.Warn("Postgres seed provider unavailable", zap.Error(err))
		} else {
			providers = append(providers, p)
			closers = append(closers, p)
		}
	}

	providers = append(providers, seeds.NewEmbeddedProvider())
	return seeds.NewChainProvider(providers...), closers
}
