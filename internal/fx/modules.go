package fx

import (
	"commander-league/internal/api"
	"commander-league/internal/commander"
	"commander-league/internal/config"
	"commander-league/internal/database"
	"commander-league/internal/logger"
	"commander-league/internal/repository"
	"commander-league/internal/server"
	"commander-league/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideResolver(client *api.ScryfallClient, cache *repository.CommanderCacheRepository, logger zerolog.Logger) *commander.Resolver {
	return commander.NewResolver(client, cache, logger.With().Str("component", "commander").Logger())
}

func ProvideLeagueService(cfg *config.Config, docs *repository.DocumentStore, resolver *commander.Resolver, logger zerolog.Logger) (*service.LeagueService, error) {
	return service.NewLeagueService(cfg, docs, resolver, logger)
}

var Module = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewDocumentStore),
	fx.Provide(repository.NewCommanderCacheRepository),
	// api client
	fx.Provide(api.NewScryfallClient),
	// svc
	fx.Provide(ProvideResolver),
	fx.Provide(ProvideLeagueService),
	// server
	fx.Provide(server.NewLeagueServer),
)
