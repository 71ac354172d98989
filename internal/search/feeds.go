package search

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/jonathan/outreach-scout/internal/logger"
	"github.com/jonathan/outreach-scout/internal/types"
)

// Feeds pulls RSS/Atom feeds (event calendars, maker blogs) and filters items locally.
// Feeds are not queryable, so the query is split into keywords matched on title and description.
type Feeds struct {
	client *http.Client
	urls   []string
	log    *logger.Logger
}

// NewFeeds creates a feed provider over the given feed URLs
func NewFeeds(urls []string) *Feeds {
	return &Feeds{
		client: &http.Client{Timeout: 15 * time.Second},
		urls:   urls,
		log:    logger.Named("feeds"),
	}
}

// Name implements Provider
func (f *Feeds) Name() string { return SourceFeeds }

// Search returns feed items mentioning any query keyword of three or more letters.
// Unreachable or broken feeds are skipped.
func (f *Feeds) Search(ctx context.Context, query string, opts Options) ([]types.SearchResult, error) {
	keywords := strings.Fields(strings.ToLower(query))
	if len(keywords) == 0 || len(f.urls) == 0 {
		return nil, nil
	}
	limit := opts.MaxResults
	if limit <= 0 {
		limit = DefaultOptions().MaxResults
	}

	parser := gofeed.NewParser()
	out := make([]types.SearchResult, 0, limit)
	for _, feedURL := range f.urls {
		if len(out) >= limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return out, err
		}
		feed, err := f.parse(ctx, parser, feedURL)
		if err != nil {
			f.log.Debug().Err(err).Str("feed", feedURL).Msg("skipping feed")
			continue
		}
		for _, it := range feed.Items {
			if len(out) >= limit {
				break
			}
			link := strings.TrimSpace(it.Link)
			if link == "" {
				continue
			}
			text := strings.ToLower(it.Title + " " + it.Description)
			if !matchesAnyKeyword(text, keywords) {
				continue
			}
			out = append(out, types.SearchResult{
				Query:   query,
				Title:   strings.TrimSpace(it.Title),
				URL:     link,
				Snippet: truncate(strings.TrimSpace(it.Description), 300),
				Source:  SourceFeeds,
			})
		}
	}
	return out, nil
}

func (f *Feeds) parse(ctx context.Context, parser *gofeed.Parser, feedURL string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Provider: SourceFeeds, Message: "feed unavailable", Status: resp.StatusCode}
	}
	return parser.Parse(resp.Body)
}

func matchesAnyKeyword(text string, keywords []string) bool {
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if len([]rune(k)) < 3 {
			continue
		}
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
