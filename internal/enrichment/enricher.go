package enrichment

import (
	"context"
	"time"

	"github.com/jonathan/outreach-scout/internal/logger"
	"github.com/jonathan/outreach-scout/internal/types"
)

// Looker performs a register lookup
type Looker interface {
	Lookup(ctx context.Context, query string) ([]types.Suggestion, error)
}

// Enricher looks up a candidate name, stores the raw result and returns a one-line summary
type Enricher struct {
	looker Looker
	dir    string
	now    func() time.Time
	log    *logger.Logger
}

// NewEnricher creates an Enricher writing lookups under dir; an empty dir skips storage
func NewEnricher(looker Looker, dir string) *Enricher {
	return &Enricher{
		looker: looker,
		dir:    dir,
		now:    time.Now,
		log:    logger.Named("enrichment"),
	}
}

// Result is a formatted lookup and where it was stored. StoreErr is set when the lookup
// succeeded but could not be written.
type Result struct {
	Summary  string
	Path     string
	StoreErr error
}

// Enrich looks up name and returns the formatted top suggestion. The error is the lookup
// failure only; storage failures are reported in Result.StoreErr.
func (e *Enricher) Enrich(ctx context.Context, name string) (Result, error) {
	suggestions, err := e.looker.Lookup(ctx, name)
	if err != nil {
		return Result{}, err
	}
	res := Result{Summary: FormatTop(suggestions)}
	if e.dir == "" {
		return res, nil
	}
	res.Path, res.StoreErr = Store(e.dir, name, suggestions, e.now())
	if res.StoreErr != nil {
		e.log.Warn().Err(res.StoreErr).Str("query", name).Msg("failed to store lookup")
	} else {
		e.log.Debug().Str("query", name).Str("path", res.Path).Int("results", len(suggestions)).Msg("stored lookup")
	}
	return res, nil
}
