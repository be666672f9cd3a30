// File: cmd/worker/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"writer-ai/internal/config"
	"writer-ai/internal/domain/ports/repository"
	aiAdapters "writer-ai/internal/infra/adapters/ai"
	"writer-ai/internal/infra/api"
	"writer-ai/internal/infra/logging"
	"writer-ai/internal/infra/memory"
	"writer-ai/internal/infra/metrics"
	red "writer-ai/internal/infra/redis"
	"writer-ai/internal/infra/sched"
	"writer-ai/internal/infra/worker"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop AI without keys, verbose logs)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.SetBuildInfo(version, commit, "worker")

	// ---- Job store ----
	var store repository.JobStore
	switch cfg.Worker.Store {
	case config.StoreRedis:
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		store = red.NewJobStore(redisClient, red.NewLocker(redisClient), cfg.Redis.TTL)
		logger.Info().Str("addr", cfg.Redis.URL).Dur("ttl", cfg.Redis.TTL).Msg("redis job store")
	default:
		mem := memory.NewJobStore()
		sweeper := sched.NewSweeper("jobs", 5*time.Minute, cfg.Redis.TTL, mem, logger)
		go func() { _ = sweeper.Run(ctx) }()
		store = mem
		logger.Info().Dur("ttl", cfg.Redis.TTL).Msg("in-memory job store")
	}

	// ---- AI ----
	ai, err := aiAdapters.FromConfig(ctx, cfg.AI, cfg.Runtime.Dev, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("ai adapter")
	}

	// ---- Pool + processor ----
	pool := worker.NewPool(cfg.Worker.Workers, logger)
	pool.Start(ctx)
	proc := worker.NewJobProcessor(store, pool, ai, cfg.AI.DefaultModel, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Worker.Port),
		Handler:           api.NewServer(proc, logger).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Int("workers", cfg.Worker.Workers).Msg("worker listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
	case <-ctx.Done():
	}
	logger.Info().Msg("shutdown requested")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
	pool.Stop()
}
