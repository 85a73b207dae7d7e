package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/twobai/playerreport/internal/config"
	"github.com/twobai/playerreport/internal/constants"
	fxmodules "github.com/twobai/playerreport/internal/fx"
	"github.com/twobai/playerreport/internal/logger"
	"github.com/twobai/playerreport/internal/metrics"
	"github.com/twobai/playerreport/internal/middleware"
	"github.com/twobai/playerreport/internal/server"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runServer),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	chatServer *server.ChatServer,
	cfg *config.Config,
	db *sql.DB,
	reg *prometheus.Registry,
	m *metrics.Metrics,
	log zerolog.Logger,
) error {
	if err := logger.ApplyLevel(cfg.LogLevel); err != nil {
		return err
	}

	mux := http.NewServeMux()
	chatServer.Routes(mux)
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: middleware.RequestID(log, m)(c.Handler(mux)),
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("server shutdown failed")
				return err
			}

			if err := db.Close(); err != nil {
				log.Warn().Err(err).Msg("error closing database connection")
			}
			log.Info().Msg("server stopped gracefully")
			return nil
		},
	})
	return nil
}
