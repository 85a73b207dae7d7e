package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/twobai/playerreport/internal/collector"
	"github.com/twobai/playerreport/internal/config"
	"github.com/twobai/playerreport/internal/domain"
	"golang.org/x/sync/errgroup"
)

// StatsLookup returns a player's aggregate stats, or nil when there are none.
type StatsLookup interface {
	PlayerStats(ctx context.Context, playerName string) *domain.PlayerStats
}

// PlayerDataService joins stats, chat history and connection history into a
// single snapshot.
type PlayerDataService struct {
	stats       StatsLookup
	chats       *collector.Collector[domain.ChatRecord]
	connections *collector.Collector[domain.ConnectionRecord]
	logger      zerolog.Logger
}

func NewPlayerDataService(
	stats StatsLookup,
	chats collector.Source[domain.ChatRecord],
	connections collector.Source[domain.ConnectionRecord],
	cfg *config.Config,
	logger zerolog.Logger,
) *PlayerDataService {
	return &PlayerDataService{
		stats:       stats,
		chats:       collector.New(chats, cfg.ChatPageSize, cfg.ChatMaxPages, logger),
		connections: collector.New(connections, cfg.ConnectionPageSize, cfg.ConnectionMaxPages, logger),
		logger:      logger,
	}
}

// Snapshot fetches the three data sets concurrently and waits for all of
// them. Each branch degrades on its own, so an error here means a branch
// faulted and the snapshot must be discarded.
func (s *PlayerDataService) Snapshot(ctx context.Context, playerName string) (*domain.PlayerSnapshot, error) {
	var (
		stats       *domain.PlayerStats
		chats       []domain.ChatRecord
		connections []domain.ConnectionRecord
	)

	g := new(errgroup.Group)
	g.Go(guard("stats", func() {
		stats = s.stats.PlayerStats(ctx, playerName)
	}))
	g.Go(guard("chats", func() {
		chats = s.chats.Collect(ctx, playerName)
	}))
	g.Go(guard("connections", func() {
		connections = s.connections.Collect(ctx, playerName)
	}))

	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Str("player", playerName).Msg("failed to aggregate player data")
		return nil, fmt.Errorf("failed to aggregate player data: %w", err)
	}

	s.logger.Info().
		Str("player", playerName).
		Bool("has_stats", stats != nil).
		Int("chats", len(chats)).
		Int("connections", len(connections)).
		Msg("player data aggregated")

	return &domain.PlayerSnapshot{
		PlayerName:   playerName,
		Stats:        stats,
		Chats:        chats,
		Connections:  connections,
		Online:       domain.PresenceUnknown,
		PriorityNow:  domain.PresenceUnknown,
		SuspectedBot: domain.PresenceUnknown,
	}, nil
}

// guard turns a panic in a fetch branch into an error for the group.
func guard(branch string, fn func()) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%s branch panicked: %v", branch, r)
			}
		}()
		fn()
		return nil
	}
}
