package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twobai/playerreport/internal/database"
	"github.com/twobai/playerreport/internal/domain"
)

func newRepo(t *testing.T) *AnalysisRepository {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "analyses.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewAnalysisRepository(db, zerolog.Nop())
}

func record(t *testing.T, r *AnalysisRepository, name string, outcome domain.AnalysisOutcome, at time.Time) {
	t.Helper()
	require.NoError(t, r.Record(context.Background(), &domain.Analysis{
		PlayerName: name,
		Outcome:    outcome,
		CreatedAt:  at,
	}))
}

func TestRecord_AssignsID(t *testing.T) {
	r := newRepo(t)
	a := &domain.Analysis{PlayerName: "Steve", Outcome: domain.OutcomeReport, HasStats: true, ChatCount: 240, ConnectionCount: 200}

	require.NoError(t, r.Record(context.Background(), a))

	assert.NotEmpty(t, a.ID)
	assert.False(t, a.CreatedAt.IsZero())

	var chats, conns int
	var hasStats bool
	err := r.db.QueryRow(`SELECT has_stats, chat_count, connection_count FROM analyses WHERE id = ?`, a.ID).Scan(&hasStats, &chats, &conns)
	require.NoError(t, err)
	assert.True(t, hasStats)
	assert.Equal(t, 240, chats)
	assert.Equal(t, 200, conns)
}

func TestRecord_DuplicateID(t *testing.T) {
	r := newRepo(t)
	a := &domain.Analysis{ID: "fixed", PlayerName: "Steve", Outcome: domain.OutcomeReport}
	require.NoError(t, r.Record(context.Background(), a))

	err := r.Record(context.Background(), &domain.Analysis{ID: "fixed", PlayerName: "Alex", Outcome: domain.OutcomeReport})
	assert.Error(t, err)
}

func TestRecentPlayers_DistinctMostRecentFirst(t *testing.T) {
	r := newRepo(t)
	t0 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	record(t, r, "Steve", domain.OutcomeReport, t0)
	record(t, r, "Stevie", domain.OutcomeReport, t0.Add(time.Minute))
	record(t, r, "Alex", domain.OutcomeReport, t0.Add(2*time.Minute))
	record(t, r, "Steve", domain.OutcomeFailure, t0.Add(3*time.Minute))

	names, err := r.RecentPlayers(context.Background(), "ste", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Steve", "Stevie"}, names)

	all, err := r.RecentPlayers(context.Background(), "", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Steve", "Alex"}, all)
}

func TestRecentPlayers_EscapesWildcards(t *testing.T) {
	r := newRepo(t)
	t0 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	record(t, r, "a_b", domain.OutcomeReport, t0)
	record(t, r, "axb", domain.OutcomeReport, t0.Add(time.Minute))

	names, err := r.RecentPlayers(context.Background(), "a_", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"a_b"}, names)
}

func TestRecentPlayers_ClosedDB(t *testing.T) {
	db, err := database.Open(filepath.Join(t.TempDir(), "analyses.db"), zerolog.Nop())
	require.NoError(t, err)
	r := NewAnalysisRepository(db, zerolog.Nop())
	require.NoError(t, db.Close())

	_, err = r.RecentPlayers(context.Background(), "", 5)
	assert.Error(t, err)
}
