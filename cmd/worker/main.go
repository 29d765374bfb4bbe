package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/dharsanguruparan/rreport/internal/cache"
	"github.com/dharsanguruparan/rreport/internal/config"
	"github.com/dharsanguruparan/rreport/internal/database"
	"github.com/dharsanguruparan/rreport/internal/descriptor"
	"github.com/dharsanguruparan/rreport/internal/executor"
	"github.com/dharsanguruparan/rreport/internal/logger"
	"github.com/dharsanguruparan/rreport/internal/repository"
	"github.com/dharsanguruparan/rreport/internal/s3storage"
	"github.com/dharsanguruparan/rreport/internal/worker"
)

func main() {
	configFile := flag.String("config", "", "path to rreport.yaml")
	useAPI := flag.Bool("api", false, "render through the engine REST endpoint instead of the local jar")
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

	var exec executor.Executor
	if *useAPI {
		exec, err = executor.NewAPI(cfg, log)
	} else {
		exec, err = executor.NewCLI(cfg, log)
	}
	if err != nil {
		log.Fatalf("init executor: %v", err)
	}

	loader := descriptor.NewConfinedLoader(nil, cfg.ResourceDirectory)
	if cfg.CacheResources {
		loader.Resolver = cache.FromConfig(cfg, log)
	}
	if cfg.ResourceDirectory == "" {
		log.Warnf("resource_directory is not set; descriptors with resources will be rejected")
	}

	server := asynq.NewServer(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, asynq.Config{
		Concurrency: cfg.Workers,
	})
	outDir := filepath.Join(cfg.TempDirectory, "rreport-output")
	processor := worker.NewProcessor(jobs, store, exec, loader, outDir, log)
	mux := processor.Handler()

	go func() {
		<-ctx.Done()
		server.Shutdown()
	}()

	log.Infof("worker started with concurrency %d", cfg.Workers)
	if err := server.Run(mux); err != nil {
		log.Errorf("worker stopped: %v", err)
		os.Exit(1)
	}
}
