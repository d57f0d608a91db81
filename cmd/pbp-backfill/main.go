package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fortuna/services/playbyplay-service/internal/bootstrap"
	"github.com/fortuna/services/playbyplay-service/internal/config"
	"github.com/fortuna/services/playbyplay-service/internal/poller"
	"github.com/fortuna/services/playbyplay-service/internal/publisher"
	"github.com/fortuna/services/playbyplay-service/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("pbp-backfill: %v", err)
	}
}

func run() error {
	var opts poller.BackfillOptions
	var notify bool

	flagSet := pflag.NewFlagSet("pbp-backfill", pflag.ContinueOnError)
	flagSet.StringVarP(&opts.Date, "date", "d", "", "league date to rebuild (YYYY-MM-DD)")
	flagSet.BoolVar(&opts.UseFeed, "use-feed", false, "list games from the schedule feed instead of the stored schedule")
	flagSet.BoolVar(&opts.DryRun, "dry-run", false, "fetch and transform without writing")
	flagSet.BoolVar(&notify, "notify", false, "announce rewritten gamepacks to subscribers")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if opts.Date == "" {
		return errors.New("--date is required")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	var listener storage.ChangeListener
	if notify && redisClient != nil {
		listener = publisher.NewStreamPublisher(redisClient, cfg.Fanout.Stream)
	}
	artifacts := storage.NewArtifacts(store, listener)

	// Backfill never toggles triggers
	service := poller.New(bootstrap.PollerDeps(cfg, artifacts, nil), bootstrap.PollerConfig(cfg))
	result, err := service.Backfill(ctx, opts)
	if err != nil {
		return err
	}

	log.Printf("backfill %s: %d games, %d gamepacks written (dry run: %v)", opts.Date, result.Games, result.Uploaded, opts.DryRun)
	return nil
}
