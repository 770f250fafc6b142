package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"commander-league/internal/commander"
	"commander-league/internal/config"
	"commander-league/internal/constants"
	fxmodules "commander-league/internal/fx"
	"commander-league/internal/logger"
	"commander-league/internal/middleware"
	"commander-league/internal/repository"
	"commander-league/internal/server"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
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
	leagueServer *server.LeagueServer,
	resolver *commander.Resolver,
	cache *repository.CommanderCacheRepository,
	cfg *config.Config,
	db *sql.DB,
	log zerolog.Logger,
) {
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	})

	handler := middleware.RequestID(log)(middleware.Recoverer(c.Handler(leagueServer.Handler())))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           handler,
		ReadHeaderTimeout: constants.RequestTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.ApplyLevel(cfg.LogLevel, log)

			pruned, err := cache.Prune(ctx, time.Now().Add(-constants.CommanderCacheTTL))
			if err != nil {
				log.Warn().Err(err).Msg("failed to prune commander cache")
			} else if pruned > 0 {
				log.Info().Int64("removed", pruned).Msg("expired commander cache entries pruned")
			}
			if err := resolver.Load(ctx); err != nil {
				log.Warn().Err(err).Msg("failed to load commander cache, starting cold")
			}

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

			if err := resolver.Close(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("failed to flush commander cache")
			}
			if err := db.Close(); err != nil {
				log.Warn().Err(err).Msg("error closing database connection")
			}

			log.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}
