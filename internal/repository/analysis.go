package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"github.com/twobai/playerreport/internal/domain"
)

// AnalysisRepository keeps the audit trail of analyze requests.
type AnalysisRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewAnalysisRepository(sqlDB *sql.DB, logger zerolog.Logger) *AnalysisRepository {
	return &AnalysisRepository{db: sqlDB, logger: logger}
}

func (r *AnalysisRepository) Record(ctx context.Context, a *domain.Analysis) error {
	if a.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate nanoid: %w", err)
		}
		a.ID = id
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO analyses (id, player_name, outcome, has_stats, chat_count, connection_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.PlayerName, string(a.Outcome), a.HasStats, a.ChatCount, a.ConnectionCount, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}

	r.logger.Debug().Str("id", a.ID).Str("player", a.PlayerName).Str("outcome", string(a.Outcome)).Msg("analysis recorded")
	return nil
}

// RecentPlayers returns distinct player names starting with prefix, most
// recently analyzed first. Matching ignores case.
func (r *AnalysisRepository) RecentPlayers(ctx context.Context, prefix string, limit int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT player_name
		FROM analyses
		WHERE player_name LIKE ? ESCAPE '\'
		GROUP BY player_name COLLATE NOCASE
		ORDER BY MAX(created_at) DESC
		LIMIT ?`,
		escapeLike(prefix)+"%", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent players: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan player name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}
