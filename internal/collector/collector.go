// Package collector pages through a player's record history on the stats API.
package collector

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/twobai/playerreport/internal/domain"
)

// Source fetches one page of records of a single kind, newest first.
// Pages are numbered from 1. A page answered with no content returns
// domain.ErrNoContent.
type Source[T any] interface {
	Kind() string
	FetchPage(ctx context.Context, playerName string, page, pageSize int) ([]T, error)
}

type Collector[T any] struct {
	source   Source[T]
	pageSize int
	maxPages int
	logger   zerolog.Logger
}

func New[T any](source Source[T], pageSize, maxPages int, logger zerolog.Logger) *Collector[T] {
	return &Collector[T]{
		source:   source,
		pageSize: pageSize,
		maxPages: maxPages,
		logger:   logger.With().Str("kind", source.Kind()).Logger(),
	}
}

// Collect requests pages sequentially until a page is empty, short, answered
// with no content, or the page ceiling is hit. Records keep request order.
// A failed page ends collection and the records gathered so far are returned.
func (c *Collector[T]) Collect(ctx context.Context, playerName string) []T {
	var records []T

	for page := 1; page <= c.maxPages; page++ {
		batch, err := c.source.FetchPage(ctx, playerName, page, c.pageSize)
		if errors.Is(err, domain.ErrNoContent) {
			c.logger.Debug().Str("player", playerName).Int("page", page).Msg("no content, stopping")
			break
		}
		if err != nil {
			c.logger.Warn().Err(err).Str("player", playerName).Int("page", page).
				Int("collected", len(records)).Msg("page fetch failed, returning partial records")
			break
		}
		if len(batch) == 0 {
			break
		}

		records = append(records, batch...)

		if len(batch) < c.pageSize {
			break
		}
	}

	c.logger.Debug().Str("player", playerName).Int("records", len(records)).Msg("collection finished")
	return records
}
