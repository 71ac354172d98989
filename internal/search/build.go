package search

import (
	"context"
	"errors"

	"github.com/jonathan/outreach-scout/internal/db"
	"github.com/jonathan/outreach-scout/internal/llm"
	"github.com/jonathan/outreach-scout/internal/logger"
)

// Backend names accepted in configuration
const (
	BackendGoogle     = "google"
	BackendDuckDuckGo = "duckduckgo"
	BackendFeeds      = "feeds"
	BackendWeb        = "web"
)

// BuildOptions holds what the configured backends need
type BuildOptions struct {
	Backends     []string
	GoogleAPIKey string
	GoogleCX     string
	FeedURLs     []string
	LLM          llm.Client // for the web backend
	Cache        *db.DB     // nil disables the search cache
}

// Build assembles the chain of configured backends in order. Backends that cannot be
// built are skipped with a warning; ErrNotConfigured is returned when none remain.
func Build(ctx context.Context, opts BuildOptions) (*Chain, error) {
	log := logger.Named("search")
	var providers []Provider
	var skipped []error

	for _, name := range opts.Backends {
		var p Provider
		switch name {
		case BackendGoogle:
			g, err := NewGoogle(ctx, opts.GoogleAPIKey, opts.GoogleCX)
			if err != nil {
				skipped = append(skipped, err)
				log.Warn().Err(err).Msg("google search disabled")
				continue
			}
			p = g
		case BackendDuckDuckGo:
			p = NewDuckDuckGo()
		case BackendFeeds:
			if len(opts.FeedURLs) == 0 {
				log.Warn().Msg("feeds backend configured without feed URLs")
				continue
			}
			p = NewFeeds(opts.FeedURLs)
		case BackendWeb:
			if opts.LLM == nil {
				log.Warn().Msg("web backend configured without a model client")
				continue
			}
			p = NewWebAgent(opts.LLM)
		default:
			log.Warn().Str("backend", name).Msg("unknown search backend")
			continue
		}
		if opts.Cache != nil {
			p = NewCached(p, opts.Cache)
		}
		providers = append(providers, p)
	}

	if len(providers) == 0 {
		return nil, errors.Join(append([]error{ErrNotConfigured}, skipped...)...)
	}
	return NewChain(providers...), nil
}
