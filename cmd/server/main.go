// Package main runs the render API: it validates descriptors, serves the
// schema and queues render jobs for the worker.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/dharsanguruparan/rreport/internal/api"
	"github.com/dharsanguruparan/rreport/internal/cache"
	"github.com/dharsanguruparan/rreport/internal/config"
	"github.com/dharsanguruparan/rreport/internal/database"
	"github.com/dharsanguruparan/rreport/internal/descriptor"
	"github.com/dharsanguruparan/rreport/internal/logger"
	"github.com/dharsanguruparan/rreport/internal/repository"
	"github.com/dharsanguruparan/rreport/internal/s3storage"
)

func main() {
	configFile := flag.String("config", "", "path to rreport.yaml")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.New("info", "").Fatalf("load config: %v", err)
	}
	log := logger.New(cfg.LogLevel, cfg.Env)

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer pool.Close()
	if err := database.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}
	jobs := repository.NewJobRepository(pool)

	store, err := s3storage.New(cfg)
	if err != nil {
		log.Fatalf("init storage: %v", err)
	}
	if err := store.EnsureBucket(ctx); err != nil {
		log.Fatalf("ensure bucket: %v", err)
	}

	queueClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer queueClient.Close()

	loader := descriptor.NewConfinedLoader(nil, cfg.ResourceDirectory)
	if cfg.CacheResources {
		loader.Resolver = cache.FromConfig(cfg, log)
	}
	if cfg.ResourceDirectory == "" {
		log.Warnf("resource_directory is not set; descriptors with resources will be rejected")
	}

	srv := api.New(cfg, jobs, store, queueClient, loader, log)
	if err := srv.Run(ctx); err != nil {
		log.Errorf("server stopped: %v", err)
		os.Exit(1)
	}
}
