// gestsyncd — back-office synchronization service for the legacy gestionale.
//
// Usage:
//
//	gestsyncd [--config path] [--addr :8080]
//
// Flags:
//
//	--config  Path to gestsync.yaml (default: configs/gestsync.yaml)
//	--addr    Override server.addr from config
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gestpos/gestsync/internal/api"
	"github.com/gestpos/gestsync/internal/config"
	"github.com/gestpos/gestsync/internal/notify"
	"github.com/gestpos/gestsync/internal/resultlog"
	"github.com/gestpos/gestsync/internal/store"
	"github.com/gestpos/gestsync/internal/sync"
)

func main() {
	configPath := flag.String("config", "configs/gestsync.yaml", "path to config file")
	addrOverride := flag.String("addr", "", "listen address override (e.g. :8080)")
	flag.Parse()

	// Pretty console log; switch to JSON in production via log.Logger = zerolog.New(os.Stderr)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("config load failed")
	}
	if *addrOverride != "" {
		cfg.Server.Addr = *addrOverride
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.Store.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Store.Path).Msg("store open failed")
	}
	defer st.Close()

	var sinks []sync.ResultSink

	if cfg.ResultLog.Enabled {
		pub := resultlog.NewRedisPublisher(cfg.ResultLog)
		defer pub.Close()
		sinks = append(sinks, pub)
		log.Info().Str("addr", cfg.ResultLog.Address).Msg("result log enabled")
	}

	if cfg.Notify.Enabled {
		bus, err := notify.New(cfg.Notify)
		if err != nil {
			log.Fatal().Err(err).Msg("notify setup failed")
		}
		if err := bus.Connect(ctx); err != nil {
			log.Fatal().Err(err).Str("type", cfg.Notify.Type).Msg("notify connect failed")
		}
		sink := notify.NewSink(bus)
		defer sink.Close()
		sinks = append(sinks, sink)
		log.Info().Str("type", cfg.Notify.Type).Msg("notify enabled")
	}

	svc := sync.New(st, cfg.Sync.DefaultCompanyCode, sinks...)
	router := api.NewRouter(st, svc)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", cfg.Server.Addr).
			Str("store", cfg.Store.Path).
			Str("config", *configPath).
			Msg("gestsyncd started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}
	log.Info().Msg("stopped")
}
