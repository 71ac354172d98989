// Package fetch provides generic URL fetching with optional caching.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonathan/outreach-scout/internal/db"
	"github.com/jonathan/outreach-scout/internal/logger"
)

// Fetcher retrieves a page, possibly from cache.
type Fetcher interface {
	Fetch(ctx context.Context, urlStr string) (*CachedResult, error)
}

// CachedFetcher wraps URL fetching with database-backed caching.
type CachedFetcher struct {
	db        *db.DB
	options   *Options
	cacheTTL  time.Duration
	skipCache bool // For testing or forcing fresh fetches
	render    Renderer
	log       *logger.Logger
}

// CachedFetcherConfig holds configuration for the cached fetcher.
type CachedFetcherConfig struct {
	CacheTTL  time.Duration
	SkipCache bool
	Options   *Options
	// Renderer, when set, re-renders pages whose extracted text is too thin.
	Renderer Renderer
}

// DefaultCachedFetcherConfig returns sensible defaults.
func DefaultCachedFetcherConfig() *CachedFetcherConfig {
	return &CachedFetcherConfig{
		CacheTTL:  db.DefaultPageCacheTTL, // 7 days
		SkipCache: false,
		Options:   DefaultOptions(),
	}
}

// NewCachedFetcher creates a new cached fetcher. A nil database disables caching.
func NewCachedFetcher(database *db.DB, config *CachedFetcherConfig) *CachedFetcher {
	if config == nil {
		config = DefaultCachedFetcherConfig()
	}
	if config.Options == nil {
		config.Options = DefaultOptions()
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = db.DefaultPageCacheTTL
	}
	return &CachedFetcher{
		db:        database,
		options:   config.Options,
		cacheTTL:  config.CacheTTL,
		skipCache: config.SkipCache,
		render:    config.Renderer,
		log:       logger.Named("fetch"),
	}
}

// CachedResult extends Result with cache metadata.
type CachedResult struct {
	*Result
	FromCache bool // Whether this result came from cache
	Rendered  bool // Whether the HTML came from the headless browser
}

// Fetch retrieves a URL, using cache if available and fresh.
// Returns cached content if within TTL, otherwise fetches fresh content and caches it.
func (f *CachedFetcher) Fetch(ctx context.Context, urlStr string) (*CachedResult, error) {
	useCache := !f.skipCache && f.db != nil

	// Step 1: Check if URL should be skipped (permanent failure or backoff)
	if useCache {
		shouldSkip, reason, err := f.db.ShouldSkipURL(ctx, urlStr)
		if err != nil {
			return nil, fmt.Errorf("failed to check skip status: %w", err)
		}
		if shouldSkip {
			return nil, &Error{
				URL:     urlStr,
				Message: fmt.Sprintf("URL skipped: %s", reason),
			}
		}
	}

	// Step 2: Try to get fresh cached page
	if useCache {
		cached, err := f.db.GetFreshPage(ctx, urlStr, f.cacheTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to check cache: %w", err)
		}
		if cached != nil {
			return &CachedResult{
				Result: &Result{
					URL:        cached.URL,
					HTML:       cached.HTML,
					Text:       cached.Text,
					StatusCode: cached.HTTPStatus,
				},
				FromCache: true,
			}, nil
		}
	}

	// Step 3: Fetch fresh content
	result, err := URL(ctx, urlStr, f.options)
	if err != nil {
		if f.db != nil {
			_ = f.db.RecordFailedFetch(ctx, urlStr, statusOf(result, err), err.Error())
		}
		return nil, err
	}

	// Step 4: Extract text, re-rendering script-heavy pages when a renderer is configured
	platform := DetectPlatform(urlStr)
	result.Text, _ = ExtractMainText(result.HTML, PlatformContentSelectors(platform), PlatformNoiseSelectors(platform)...)

	rendered := false
	if f.render != nil && ShouldUseBrowser(result.Text) {
		html, err := f.render(ctx, urlStr)
		if err != nil {
			f.log.Debug().Err(err).Str("url", urlStr).Msg("browser fallback failed, keeping plain fetch")
		} else {
			result.HTML = html
			result.Text, _ = ExtractMainText(html, PlatformContentSelectors(platform), PlatformNoiseSelectors(platform)...)
			rendered = true
		}
	}

	// Step 5: Store in cache
	if f.db != nil {
		page := &db.Page{
			URL:        urlStr,
			HTML:       result.HTML,
			Text:       result.Text,
			HTTPStatus: result.StatusCode,
		}
		if err := f.db.UpsertPage(ctx, page); err != nil {
			// The fetch succeeded, caching is best effort
			f.log.Warn().Err(err).Str("url", urlStr).Msg("failed to cache page")
		}
	}

	return &CachedResult{
		Result:   result,
		Rendered: rendered,
	}, nil
}

// FetchMultiple fetches multiple URLs sequentially with caching.
// Returns results in the same order as input URLs. Failed fetches are nil in the result slice.
func (f *CachedFetcher) FetchMultiple(ctx context.Context, urls []string) ([]*CachedResult, []error) {
	results := make([]*CachedResult, len(urls))
	errs := make([]error, len(urls))

	for i, u := range urls {
		if ctx.Err() != nil {
			errs[i] = ctx.Err()
			continue
		}
		result, err := f.Fetch(ctx, u)
		if err != nil {
			errs[i] = err
		} else {
			results[i] = result
		}
	}

	return results, errs
}

// statusOf extracts the HTTP status from a failed fetch, zero when none was received
func statusOf(result *Result, err error) int {
	if result != nil && result.StatusCode != 0 {
		return result.StatusCode
	}
	var fetchErr *Error
	if errors.As(err, &fetchErr) {
		return fetchErr.StatusCode
	}
	return 0
}
