// File: cmd/app/main.go
package main

import (
	"context"
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"writer-ai/internal/config"
	"writer-ai/internal/domain/model"
	aiAdapters "writer-ai/internal/infra/adapters/ai"
	"writer-ai/internal/infra/jobqueue"
	"writer-ai/internal/infra/logging"
	"writer-ai/internal/infra/memory"
	"writer-ai/internal/infra/metrics"
	"writer-ai/internal/infra/sched"
	"writer-ai/internal/infra/web"
	"writer-ai/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop AI without keys, verbose logs)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.SetBuildInfo(version, commit, "app")
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] enabled")
	}

	// ---- Prompts ----
	prompts, err := usecase.LoadPromptBuilder(cfg.Prompt.TemplateFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("prompt template")
	}

	// ---- Generator (direct call or remote job queue) ----
	var generators usecase.GeneratorFactory
	switch cfg.App.Mode {
	case config.ModeQueue:
		client, err := jobqueue.NewClient(cfg.Queue.BaseURL, cfg.Queue.RequestTimeout)
		if err != nil {
			logger.Fatal().Err(err).Msg("job queue client")
		}
		poller := usecase.NewJobPoller(client, usecase.TimerSleeper, logger)
		generators = usecase.QueuedGeneratorFactory(poller, prompts, cfg.AI.DefaultModel, cfg.Queue.MaxAttempts, cfg.Queue.Interval)
		logger.Info().Str("base_url", cfg.Queue.BaseURL).Int("max_attempts", cfg.Queue.MaxAttempts).Dur("interval", cfg.Queue.Interval).Msg("queue mode")
	default:
		ai, err := aiAdapters.FromConfig(ctx, cfg.AI, cfg.Runtime.Dev, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("ai adapter")
		}
		generators = usecase.DirectGeneratorFactory(usecase.NewDirectGenerator(ai, prompts, cfg.AI.DefaultModel))
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("direct mode")
	}

	// ---- Use case ----
	band := model.LengthBand{Low: cfg.Length.Low, High: cfg.Length.High}
	sessionStore := memory.NewSessionStore()
	writerUC := usecase.NewWriterUseCase(sessionStore, generators, usecase.WriterOptions{
		Band:       band,
		MaxRetries: cfg.Length.Retries(),
		Location:   cfg.Location(),
		Dev:        cfg.Runtime.Dev,
	}, logger)

	// ---- Idle session sweep ----
	sweeper := sched.NewSweeper("sessions", 10*time.Minute, cfg.App.SessionTTL, sessionStore, logger)
	go func() { _ = sweeper.Run(ctx) }()

	// ---- HTTP ----
	secret := []byte(cfg.App.SessionSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			logger.Fatal().Err(err).Msg("session secret")
		}
		logger.Warn().Msg("app.session_secret not set; sessions will not survive a restart")
	}
	sessions := web.NewSessionManager(secret, cfg.App.SecureCookie, cfg.App.SessionTTL)
	srv := web.NewServer(writerUC, sessions, fmt.Sprintf("%d〜%d", band.Low, band.High), logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
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
}
