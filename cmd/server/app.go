package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"companion-backend/internal/config"
	"companion-backend/internal/database"
	"companion-backend/internal/handlers"
	"companion-backend/internal/logger"
	"companion-backend/internal/middleware"
	"companion-backend/internal/repository"
	"companion-backend/internal/router"
	"companion-backend/internal/services"
)

type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	relay   *services.RelayService
	usage   *repository.UsageRepo
	closers []func()
}

// newApp loads configuration and builds the relay with its collaborators.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.IsProduction())
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	a := &app{cfg: cfg, logger: log}
	a.closers = append(a.closers, func() { log.Sync() })
	log.Info("✓ Environment variables loaded", zap.String("env", cfg.Env))

	// ──── Optional Redis usage counters ────
	var usage services.UsageRecorder
	if cfg.RedisURL != "" {
		client, err := database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}
		a.closers = append(a.closers, func() { client.Close() })
		a.usage = repository.NewUsageRepo(client)
		usage = a.usage
		log.Info("✓ Redis connected, usage counters enabled")
	}

	// ──── Gemini client and relay ────
	client, err := services.NewGeminiClient(
		cfg.GeminiAPIKey,
		services.WithBaseURL(cfg.GeminiBaseURL),
		services.WithAPIVersion(cfg.GeminiAPIVersion),
		services.WithConcurrency(cfg.GeminiConcurrentReqs),
		services.WithHTTPClient(&http.Client{Timeout: cfg.AttemptTimeout + 5*time.Second}),
	)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("gemini client initialization failed: %w", err)
	}

	a.relay, err = services.NewRelayService(
		client,
		cfg.ModelCandidates,
		cfg.SystemInstruction,
		cfg.AttemptTimeout,
		usage,
		log,
	)
	if err != nil {
		a.Close()
		return nil, err
	}
	log.Info("✓ Prompt relay initialized", zap.Strings("model_candidates", cfg.ModelCandidates))

	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// statusHandler avoids handing a typed nil usage repo to the handler.
func (a *app) statusHandler() *handlers.StatusHandler {
	if a.usage == nil {
		return handlers.NewStatusHandler(a.cfg.GeminiAPIKey != "", a.cfg.Port, a.relay.Candidates(), nil, a.logger)
	}
	return handlers.NewStatusHandler(a.cfg.GeminiAPIKey != "", a.cfg.Port, a.relay.Candidates(), a.usage, a.logger)
}

func runServe(ctx context.Context) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	var limiter *middleware.RateLimiter
	if a.cfg.RateLimitPerMin > 0 {
		limiter = middleware.NewRateLimiter(a.cfg.RateLimitPerMin, time.Minute)
		defer limiter.Stop()
	}

	r := router.New(
		handlers.NewRelayHandler(a.relay, a.logger),
		a.statusHandler(),
		limiter,
		a.cfg.CORSOrigins(),
		a.logger,
	)

	// A relay call may walk every candidate before answering.
	writeTimeout := a.cfg.AttemptTimeout*time.Duration(len(a.cfg.ModelCandidates)) + 5*time.Second
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", a.cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("✓ Proxy server running", zap.String("url", "http://localhost:"+a.cfg.Port))
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			a.logger.Error("server error", zap.Error(err))
		}
		return err
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func runAsk(ctx context.Context, out io.Writer, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	resp, err := a.relay.Relay(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "[%s] %s\n", resp.ModelUsed, resp.Text)
	return err
}
