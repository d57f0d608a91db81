package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fortuna/services/playbyplay-service/internal/bootstrap"
	"github.com/fortuna/services/playbyplay-service/internal/config"
	"github.com/fortuna/services/playbyplay-service/internal/legacy"
	"github.com/fortuna/services/playbyplay-service/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("pbp-migrate: %v", err)
	}
}

func run() error {
	var dates []string
	var dryRun bool
	var dsn, table string

	flagSet := pflag.NewFlagSet("pbp-migrate", pflag.ContinueOnError)
	flagSet.StringSliceVar(&dates, "date", nil, "only migrate these dates (YYYY-MM-DD, repeatable)")
	flagSet.BoolVar(&dryRun, "dry-run", false, "report what would be written without writing")
	flagSet.StringVar(&dsn, "database-url", "", "legacy Postgres DSN (default: DATABASE_URL)")
	flagSet.StringVar(&table, "table", "", "legacy games table (default: LEGACY_TABLE or nba_games)")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if dsn == "" {
		dsn = cfg.Legacy.DatabaseURL
	}
	if table == "" {
		table = cfg.Legacy.Table
	}
	if dsn == "" {
		return errors.New("no legacy database configured (--database-url or DATABASE_URL)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	games, err := legacy.Open(dsn, table)
	if err != nil {
		return err
	}
	defer games.Close()

	var redisClient *redis.Client
	if bootstrap.NeedsRedis(cfg) {
		redisClient, err = bootstrap.OpenRedis(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer redisClient.Close()
	}
	store, err := bootstrap.OpenStore(ctx, cfg.Storage, redisClient)
	if err != nil {
		return err
	}

	// Historical schedules are not announced to subscribers
	migrator := legacy.NewMigrator(games, storage.NewArtifacts(store, nil))
	result, err := migrator.Migrate(ctx, legacy.MigrateOptions{Dates: dates, DryRun: dryRun})
	if err != nil {
		return fmt.Errorf("migration failed after %d dates: %w", result.Dates, err)
	}

	log.Printf("migrated %d games across %d dates (%d archived, dry run: %v)", result.Games, result.Dates, result.Archived, dryRun)
	return nil
}
