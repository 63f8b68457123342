package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ceats/internal/config"
	"ceats/internal/infra"
	"ceats/internal/repository"
	"ceats/internal/router"
	"ceats/internal/worker"
	"ceats/internal/ws"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	cipher, err := infra.NewTokenCipher(cfg.EncryptionKey)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid WHATSAPP_ENCRYPTION_KEY")
	}

	// Start goroutine worker pool for async tasks (verification mail, WhatsApp
	// confirmations). Worker handlers are wired here (composition root) so the
	// pool has full access to all infrastructure dependencies.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mailer := infra.NewMailer(cfg)
	graph := infra.NewGraphClient(cfg.GraphBaseURL, cfg.GraphAPIVersion)
	breaker := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	whatsappRepo := repository.NewWhatsAppRepository(db)
	sucursalRepo := repository.NewSucursalRepository(db)

	workerHandlers := &worker.WorkerHandlers{
		Email:    worker.NewEmailWorker(mailer),
		WhatsApp: worker.NewWhatsAppWorker(graph, breaker, cipher, whatsappRepo),
	}
	worker.StartWorkerPool(ctx, rdb, workerHandlers, cfg.WorkerPoolSize)
	worker.StartLimpiezaCron(ctx, sucursalRepo)

	hub := ws.NewHub()
	r := router.New(cfg, db, rdb, cipher, hub)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("ceats backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
