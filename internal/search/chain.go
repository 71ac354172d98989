package search

import (
	"context"
	"errors"

	"github.com/jonathan/outreach-scout/internal/logger"
	"github.com/jonathan/outreach-scout/internal/types"
)

// Chain tries providers in order until one returns results
type Chain struct {
	providers []Provider
	log       *logger.Logger
}

// NewChain creates a Chain; nil providers are ignored
func NewChain(providers ...Provider) *Chain {
	c := &Chain{log: logger.Named("search")}
	for _, p := range providers {
		if p != nil {
			c.providers = append(c.providers, p)
		}
	}
	return c
}

// Name implements Provider
func (c *Chain) Name() string { return "chain" }

// Len returns the number of configured providers
func (c *Chain) Len() int { return len(c.providers) }

// Search returns the first non-empty result. When every provider fails it returns
// the joined errors; when some succeed empty it returns no results and no error.
func (c *Chain) Search(ctx context.Context, query string, opts Options) ([]types.SearchResult, error) {
	if len(c.providers) == 0 {
		return nil, &Error{Provider: c.Name(), Query: query, Message: "no providers", Cause: ErrNotConfigured}
	}

	var errs []error
	for _, p := range c.providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results, err := p.Search(ctx, query, opts)
		if len(results) > 0 {
			c.log.Debug().Str("provider", p.Name()).Str("query", query).Int("results", len(results)).Msg("search succeeded")
			return results, nil
		}
		if err != nil {
			c.log.Warn().Err(err).Str("provider", p.Name()).Str("query", query).Msg("search failed")
			errs = append(errs, err)
		}
	}

	if len(errs) < len(c.providers) {
		return nil, nil
	}
	status := 0
	for _, err := range errs {
		var searchErr *Error
		if errors.As(err, &searchErr) {
			status = max(status, searchErr.Status)
		}
	}
	return nil, &Error{Provider: c.Name(), Query: query, Message: "all providers failed", Status: status, Cause: errors.Join(errs...)}
}
