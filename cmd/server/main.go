package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Anikesh0001/test-practice/internal/config"
	"github.com/Anikesh0001/test-practice/internal/database"
	"github.com/Anikesh0001/test-practice/internal/evalclient"
	"github.com/Anikesh0001/test-practice/internal/handler"
	"github.com/Anikesh0001/test-practice/internal/logger"
	"github.com/Anikesh0001/test-practice/internal/report"
	"github.com/Anikesh0001/test-practice/internal/router"
	"github.com/Anikesh0001/test-practice/internal/service"
	"github.com/Anikesh0001/test-practice/internal/store"
	"github.com/Anikesh0001/test-practice/internal/validator"
	"github.com/Anikesh0001/test-practice/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Test Practice Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Store and Clients ──────────────────────────────────
	st := store.NewRedisStore(rdb, cfg.SessionTTL)
	eval := evalclient.New(cfg.EvalServiceURL, cfg.EvalTimeout, log)
	queue := worker.NewRedisQueue(rdb)
	reports := report.NewGenerator(cfg.ReportFontPath)

	// ─── Initialize Services ──────────────────────────────────────────
	testService := service.NewTestService(st, eval, cfg, log)
	sessionService := service.NewSessionService(st, eval, queue, cfg.DefaultDurationMinutes, log)
	resultService := service.NewResultService(st, eval, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Test:    handler.NewTestHandler(testService, sessionService, cfg.MaxUploadBytes),
		Session: handler.NewSessionHandler(testService, sessionService),
		Result:  handler.NewResultHandler(resultService, testService, reports, log),
		WS:      handler.NewWSHandler(sessionService, log, cfg.AllowedOrigins),
		System:  handler.NewSystemHandler(rdb, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	explainWorker := worker.NewExplainWorker(rdb, st, eval, log)
	go explainWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for the queue to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
