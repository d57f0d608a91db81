package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fortuna/services/playbyplay-service/internal/bootstrap"
	"github.com/fortuna/services/playbyplay-service/internal/config"
	"github.com/fortuna/services/playbyplay-service/internal/consumer"
	"github.com/fortuna/services/playbyplay-service/internal/fanout"
	"github.com/fortuna/services/playbyplay-service/internal/handlers"
	"github.com/fortuna/services/playbyplay-service/internal/poller"
	"github.com/fortuna/services/playbyplay-service/internal/publisher"
	"github.com/fortuna/services/playbyplay-service/internal/storage"
	"github.com/fortuna/services/playbyplay-service/internal/trigger"
	"github.com/redis/go-redis/v9"
)

func main() {
	log.Println("Starting Play-by-Play Service...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var redisClient *redis.Client
	if bootstrap.NeedsRedis(cfg) {
		redisClient, err = bootstrap.OpenRedis(ctx, cfg.Redis)
		if err != nil {
			log.Fatalf("%v", err)
		}
		defer redisClient.Close()
	}

	store, err := bootstrap.OpenStore(ctx, cfg.Storage, redisClient)
	if err != nil {
		log.Fatalf("Failed to open artifact store: %v", err)
	}

	// Subscribers
	var subs fanout.Subscriptions = fanout.NewMemorySubscriptions()
	if redisClient != nil {
		subs = fanout.NewRedisSubscriptions(redisClient)
	}
	hub := fanout.NewHub(subs)
	go hub.Run(ctx)
	sender := fanout.NewSender(hub, subs, cfg.Fanout.BatchSize, cfg.Fanout.Concurrency)

	// Artifact writes reach subscribers through the update stream when Redis is available
	var listener storage.ChangeListener
	if redisClient != nil {
		listener = publisher.NewStreamPublisher(redisClient, cfg.Fanout.Stream)
		streamConsumer := consumer.NewStreamConsumer(redisClient, sender, cfg.Fanout.Stream, cfg.Fanout.ConsumerGroup, cfg.Fanout.ConsumerID)
		go streamConsumer.Start(ctx)
	} else {
		listener = consumer.NewDirect(sender)
	}
	artifacts := storage.NewArtifacts(store, listener)

	// Triggers drive the poller service
	loc, err := time.LoadLocation(cfg.Trigger.Timezone)
	if err != nil {
		log.Fatalf("Invalid trigger timezone: %v", err)
	}
	var service *poller.Service
	controller := trigger.NewCronController(bootstrap.TriggerState(redisClient), func(ctx context.Context, payload []byte) error {
		return service.Invoke(ctx, payload)
	}, loc, cfg.Trigger.InvocationTimeout)
	service = poller.New(bootstrap.PollerDeps(cfg, artifacts, controller), bootstrap.PollerConfig(cfg))

	for _, r := range bootstrap.Recurring(cfg) {
		if err := controller.AddRecurring(r); err != nil {
			log.Fatalf("Failed to register trigger: %v", err)
		}
	}
	if err := controller.Start(ctx); err != nil {
		log.Fatalf("Failed to start triggers: %v", err)
	}

	// HTTP
	handler := handlers.NewHandler(ctx, hub, store, service)
	server := &http.Server{
		Addr:        cfg.Server.Addr,
		Handler:     handlers.NewRouter(handler, cfg.Server.AllowedOrigins),
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Received shutdown signal")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	controller.Stop()

	log.Println("Play-by-Play Service stopped")
}
