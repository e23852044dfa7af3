package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/raaihank/wordguard/internal/config"
	"github.com/raaihank/wordguard/internal/logger"
	"github.com/raaihank/wordguard/internal/seeds"
)

func main() {
	var (
		configPath = flag.String("config", "", "Configuration file path")
		inputFile  = flag.String("input", "", "Seed file to import (JSON, YAML, CSV, or Parquet)")
		name       = flag.String("name", "", "Seed name (defaults to the input file name)")
		target     = flag.String("target", "redis", "Import target: redis, postgres, or dir")
		show       = flag.String("show", "", "Print the named seed as JSON and exit")
		export     = flag.String("export", "", "Write the named seed (-show) to this file instead of stdout")
	)
	flag.Parse()

	if *inputFile == "" && *show == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --input profanity.csv --target redis\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --input words.parquet --name mild --target postgres\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --show profanity --export profanity.parquet\n", os.Args[0])
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, cancelling operations...")
		cancel()
	}()

	if *show != "" {
		if err := showSeed(ctx, cfg, *show, *export); err != nil {
			log.Fatal("Failed to show seed", zap.Error(err))
		}
		return
	}

	seedName := *name
	if seedName == "" {
		base := filepath.Base(*inputFile)
		seedName = strings.TrimSuffix(base, filepath.Ext(base))
	}

	if err := importSeed(ctx, cfg, log, *inputFile, seedName, *target); err != nil {
		log.Fatal("Seed import failed", zap.Error(err))
	}
}

// importSeed reads a seed file and stores it in the chosen target
func importSeed(ctx context.Context, cfg *config.Config, log *logger.Logger, path, name, target string) error {
	dict, err := seeds.ReadFile(path)
	if err != nil {
		return err
	}

	log.Info("Seed file read",
		zap.String("file", path),
		zap.String("seed", name),
		zap.Int("words", len(dict)),
	)

	store, closeStore, err := openStore(cfg, log.Logger, target)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.Save(ctx, name, dict); err != nil {
		return err
	}

	log.Info("Seed imported", zap.String("seed", name), zap.String("target", target))
	return nil
}

func openStore(cfg *config.Config, log *zap.Logger, target string) (seeds.Store, func() error, error) {
	switch target {
	case "redis":
		p, err := seeds.NewRedisProvider(&cfg.Seeds.Redis.RedisConfig, log)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	case "postgres":
		p, err := seeds.NewPostgresProvider(&cfg.Seeds.Database.DatabaseConfig, log)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	case "dir":
		if err := os.MkdirAll(cfg.Seeds.Dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create seed directory: %w", err)
		}
		return seeds.NewFileProvider(cfg.Seeds.Dir, log), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown target: %s (must be redis, postgres, or dir)", target)
	}
}

// showSeed resolves a seed from the seed directory or the bundled seeds
func showSeed(ctx context.Context, cfg *config.Config, name, export string) error {
	provider := seeds.NewChainProvider(
		seeds.NewFileProvider(cfg.Seeds.Dir, nil),
		seeds.NewEmbeddedProvider(),
	)

	dict, err := provider.Load(ctx, name)
	if err != nil {
		return err
	}

	if export != "" {
		return seeds.WriteFile(export, dict)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(dict)
}
