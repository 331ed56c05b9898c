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

	router "github.com/NguyenLeDaiPhi/LapTrinhMang/internal/adapters/http"
	signaladapter "github.com/NguyenLeDaiPhi/LapTrinhMang/internal/adapters/signal"
	"github.com/NguyenLeDaiPhi/LapTrinhMang/internal/app"
	"github.com/NguyenLeDaiPhi/LapTrinhMang/internal/auth"
	"github.com/NguyenLeDaiPhi/LapTrinhMang/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	store := auth.NewStore()
	tokens := auth.NewTokenService(cfg.Secret, cfg.TokenTTL)
	handlers := &auth.Handlers{Store: store, Tokens: tokens}

	registry := app.NewRegistry()
	rooms := app.NewRoomTable()
	hub := signaladapter.NewHub()
	coordinator := app.NewRouter(registry, rooms, hub)
	ctl := signaladapter.NewController(cfg, registry, coordinator, hub)

	r := router.SetupRouter(ctx, cfg, handlers, tokens, ctl)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("signaling server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	hub.CloseAll()
	log.Info().Msg("Server exited gracefully")
}
