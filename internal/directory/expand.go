package directory

import (
	"context"

	"github.com/jonathan/outreach-scout/internal/db"
	"github.com/jonathan/outreach-scout/internal/fetch"
	"github.com/jonathan/outreach-scout/internal/logger"
	"github.com/jonathan/outreach-scout/internal/types"
)

// Expander turns directory page URLs into entries, reading and filling the expansion cache
type Expander struct {
	fetcher fetch.Fetcher
	cache   *db.DB
	opts    Options
	log     *logger.Logger
}

// NewExpander creates an Expander. A nil cache disables caching.
func NewExpander(fetcher fetch.Fetcher, cache *db.DB, opts Options) *Expander {
	return &Expander{
		fetcher: fetcher,
		cache:   cache,
		opts:    opts,
		log:     logger.Named("directory"),
	}
}

// Expand returns the entries listed on pageURL.
// A page that was expanded before is served from cache, including pages that yielded nothing.
func (e *Expander) Expand(ctx context.Context, pageURL string) ([]types.DirectoryEntry, error) {
	if e.cache != nil {
		entries, found, err := e.cache.LoadDirectoryEntries(ctx, pageURL)
		if err != nil {
			e.log.Warn().Err(err).Str("url", pageURL).Msg("directory cache read failed")
		} else if found {
			return limit(entries, e.opts.MaxEntries), nil
		}
	}

	result, err := e.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, &ParseError{URL: pageURL, Message: "failed to fetch directory page", Cause: err}
	}

	entries, err := ParseEntries(result.HTML, pageURL, e.opts)
	if err != nil {
		return nil, err
	}
	e.log.Debug().Str("url", pageURL).Int("entries", len(entries)).Msg("parsed directory page")

	if e.cache != nil {
		if err := e.cache.SaveDirectoryEntries(ctx, pageURL, entries); err != nil {
			e.log.Warn().Err(err).Str("url", pageURL).Msg("directory cache write failed")
		}
	}
	return entries, nil
}

func limit(entries []types.DirectoryEntry, maxEntries int) []types.DirectoryEntry {
	if maxEntries > 0 && len(entries) > maxEntries {
		return entries[:maxEntries]
	}
	return entries
}
