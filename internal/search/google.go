package search

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/jonathan/outreach-scout/internal/types"
)

// Google limits per the Custom Search JSON API
const (
	googlePageSize   = 10
	googleMaxResults = 100
)

// Google searches through the Programmable Search (Custom Search JSON) API
type Google struct {
	svc *customsearch.Service
	cx  string
}

// NewGoogle creates a Google provider for the search engine cx
func NewGoogle(ctx context.Context, apiKey, cx string, opts ...option.ClientOption) (*Google, error) {
	if apiKey == "" || cx == "" {
		return nil, &Error{Provider: SourceGoogle, Message: "API key and search engine id are required", Cause: ErrNotConfigured}
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, &Error{Provider: SourceGoogle, Message: "failed to create service", Cause: err}
	}
	return &Google{svc: svc, cx: cx}, nil
}

// Name implements Provider
func (g *Google) Name() string { return SourceGoogle }

// Search pages through results ten at a time, German-language, safe search on
func (g *Google) Search(ctx context.Context, query string, opts Options) ([]types.SearchResult, error) {
	want := max(1, min(opts.MaxResults, googleMaxResults))
	results := make([]types.SearchResult, 0, want)
	start := int64(1)

	for len(results) < want {
		num := min(googlePageSize, want-len(results))
		resp, err := g.svc.Cse.List().
			Q(query).
			Cx(g.cx).
			Num(int64(num)).
			Start(start).
			Safe("active").
			Lr("lang_de").
			Context(ctx).
			Do()
		if err != nil {
			return results, googleError(query, err)
		}
		if len(resp.Items) == 0 {
			break
		}

		for _, item := range resp.Items {
			results = append(results, types.SearchResult{
				Query:   query,
				Title:   strings.TrimSpace(item.Title),
				URL:     strings.TrimSpace(item.Link),
				Snippet: strings.TrimSpace(item.Snippet),
				Source:  SourceGoogle,
			})
			if len(results) >= want {
				break
			}
		}
		if len(resp.Items) < num {
			break
		}
		start += int64(num)
	}

	return results, nil
}

func googleError(query string, err error) error {
	searchErr := &Error{Provider: SourceGoogle, Query: query, Message: "API call failed", Cause: err}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		searchErr.Status = apiErr.Code
		if apiErr.Code == 429 {
			searchErr.Cause = errors.Join(ErrRateLimited, err)
		}
	}
	return searchErr
}
