package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"github.com/twobai/playerreport/internal/constants"
	"github.com/twobai/playerreport/internal/domain"
	"github.com/twobai/playerreport/internal/metrics"
	"github.com/twobai/playerreport/internal/report"
)

var ErrEmptyPlayerName = errors.New("player name is required")

type SnapshotProvider interface {
	Snapshot(ctx context.Context, playerName string) (*domain.PlayerSnapshot, error)
}

type AnalysisRecorder interface {
	Record(ctx context.Context, a *domain.Analysis) error
	RecentPlayers(ctx context.Context, prefix string, limit int) ([]string, error)
}

type AnalysisService struct {
	data     SnapshotProvider
	composer *report.Composer
	recorder AnalysisRecorder
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

func NewAnalysisService(data SnapshotProvider, composer *report.Composer, recorder AnalysisRecorder, m *metrics.Metrics, logger zerolog.Logger) *AnalysisService {
	return &AnalysisService{data: data, composer: composer, recorder: recorder, metrics: m, logger: logger}
}

// Analyze builds the report document for a player. The only error is
// ErrEmptyPlayerName; an aggregation failure yields the apology document.
func (s *AnalysisService) Analyze(ctx context.Context, playerName string) (report.Document, error) {
	playerName = strings.TrimSpace(playerName)
	if playerName == "" {
		return report.Document{}, ErrEmptyPlayerName
	}

	logger := zerolog.Ctx(ctx)
	if logger.GetLevel() == zerolog.Disabled {
		logger = &s.logger
	}
	logger.Info().Str("player", playerName).Msg("analyzing player")

	entry := &domain.Analysis{PlayerName: playerName}

	var doc report.Document
	snap, err := s.data.Snapshot(ctx, playerName)
	if err != nil {
		logger.Error().Err(err).Str("player", playerName).Msg("player analysis failed, returning apology")
		doc = s.composer.Apology(playerName)
		entry.Outcome = domain.OutcomeFailure
	} else {
		doc = s.composer.Compose(snap)
		entry.Outcome = domain.OutcomeReport
		entry.HasStats = snap.Stats != nil
		entry.ChatCount = len(snap.Chats)
		entry.ConnectionCount = len(snap.Connections)
	}

	s.metrics.IncAnalysis(string(entry.Outcome))
	s.record(ctx, entry)

	return doc, nil
}

// Suggestions lists previously analyzed player names matching prefix.
func (s *AnalysisService) Suggestions(ctx context.Context, prefix string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	names, err := s.recorder.RecentPlayers(ctx, strings.TrimSpace(prefix), constants.SearchSuggestionLimit)
	if err != nil {
		s.logger.Error().Err(err).Str("prefix", prefix).Msg("failed to load suggestions")
		return nil, err
	}
	return names, nil
}

func (s *AnalysisService) record(ctx context.Context, entry *domain.Analysis) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.DatabaseTimeout)
	defer cancel()

	if err := s.recorder.Record(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Str("player", entry.PlayerName).Msg("failed to record analysis")
	}
}
