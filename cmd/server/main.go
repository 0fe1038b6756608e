package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/dkeye/viewing/internal/adapters/http"
	"github.com/dkeye/viewing/internal/adapters/store"
	"github.com/dkeye/viewing/internal/app"
	"github.com/dkeye/viewing/internal/app/relay"
	"github.com/dkeye/viewing/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Logger first so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	backend, err := store.Open(ctx, cfg.Store)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("failed to open store")
	}
	if backend != nil {
		defer backend.Close()
	}

	registry := app.NewRegistry(cfg.Relay.MaxParticipants)
	rl := relay.New(registry, app.SimplePolicy{}, relay.Options{
		MaxChatLength:    cfg.Chat.MaxLength,
		JoinRateLimit:    cfg.Relay.JoinRateLimit,
		JoinRateInterval: cfg.Relay.JoinRateInterval,
		Lookups:          store.Lookups(backend),
	})

	var pinger router.Pinger
	if backend != nil {
		pinger = backend
	}
	r := router.SetupRouter(ctx, cfg, rl, pinger)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Viewing server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	rl.Shutdown()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
