package search

import (
	"context"

	"github.com/jonathan/outreach-scout/internal/db"
	"github.com/jonathan/outreach-scout/internal/logger"
	"github.com/jonathan/outreach-scout/internal/types"
)

// Cached stores successful searches and answers from the cache when the backend fails
// or comes back empty
type Cached struct {
	inner Provider
	db    *db.DB
	log   *logger.Logger
}

// NewCached wraps p with the sqlite search cache
func NewCached(p Provider, database *db.DB) *Cached {
	return &Cached{inner: p, db: database, log: logger.Named("search_cache")}
}

// Name implements Provider
func (c *Cached) Name() string { return c.inner.Name() }

// Search implements Provider
func (c *Cached) Search(ctx context.Context, query string, opts Options) ([]types.SearchResult, error) {
	results, err := c.inner.Search(ctx, query, opts)
	if err == nil && len(results) > 0 {
		if saveErr := c.db.SaveSearchResults(ctx, query, results); saveErr != nil {
			c.log.Warn().Err(saveErr).Str("query", query).Msg("failed to cache search results")
		}
		return results, nil
	}

	cached, loadErr := c.db.LoadSearchResults(ctx, query)
	if loadErr != nil {
		c.log.Warn().Err(loadErr).Str("query", query).Msg("failed to read search cache")
	}
	if len(cached) > 0 {
		c.log.Info().Str("query", query).Str("provider", c.inner.Name()).Int("results", len(cached)).
			AnErr("search_error", err).Msg("serving cached results")
		return clip(cached, opts.MaxResults), nil
	}
	return results, err
}
