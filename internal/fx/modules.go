package fx

import (
	"github.com/twobai/playerreport/internal/api"
	"github.com/twobai/playerreport/internal/collector"
	"github.com/twobai/playerreport/internal/config"
	"github.com/twobai/playerreport/internal/database"
	"github.com/twobai/playerreport/internal/domain"
	"github.com/twobai/playerreport/internal/logger"
	"github.com/twobai/playerreport/internal/metrics"
	"github.com/twobai/playerreport/internal/persona"
	"github.com/twobai/playerreport/internal/report"
	"github.com/twobai/playerreport/internal/repository"
	"github.com/twobai/playerreport/internal/server"
	"github.com/twobai/playerreport/internal/service"

	"go.uber.org/fx"
)

func ProvideStatsLookup(c *api.StatsClient) service.StatsLookup {
	return c
}

func ProvideChatSource(c *api.StatsClient) collector.Source[domain.ChatRecord] {
	return c.ChatSource()
}

func ProvideConnectionSource(c *api.StatsClient) collector.Source[domain.ConnectionRecord] {
	return c.ConnectionSource()
}

var Module = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(metrics.NewRegistry),
	fx.Provide(metrics.New),
	fx.Provide(database.New),
	// repos
	fx.Provide(fx.Annotate(repository.NewAnalysisRepository, fx.As(new(service.AnalysisRecorder)))),
	// api clients
	fx.Provide(api.NewStatsClient),
	fx.Provide(ProvideStatsLookup, ProvideChatSource, ProvideConnectionSource),
	fx.Provide(fx.Annotate(api.NewOpenRouterClient, fx.As(new(server.Generator)))),
	// svc
	fx.Provide(fx.Annotate(service.NewPlayerDataService, fx.As(new(service.SnapshotProvider)))),
	fx.Provide(report.NewComposer),
	fx.Provide(fx.Annotate(service.NewAnalysisService, fx.As(new(server.Analyzer)))),
	// server
	fx.Provide(persona.NewTable),
	fx.Provide(server.NewChatServer),
)
