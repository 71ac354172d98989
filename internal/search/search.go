// Package search provides the interchangeable search backends and query normalization
// used to discover candidate organizations.
package search

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/jonathan/outreach-scout/internal/types"
)

// Source names recorded on results
const (
	SourceGoogle     = "google"
	SourceDuckDuckGo = "duckduckgo"
	SourceFeeds      = "feeds"
	SourceWebAgent   = "web_tool"
	SourceCache      = "cache"
)

var (
	// ErrRateLimited is returned when a backend keeps throttling after all retries
	ErrRateLimited = errors.New("search backend rate limited")
	// ErrNotConfigured is returned when no search backend could be built
	ErrNotConfigured = errors.New("no search backend configured")
)

// Options tunes a single search call
type Options struct {
	MaxResults int
	Region     string // locale such as "de-de"
	SafeSearch string // "active", "moderate" or "off"
}

// DefaultOptions returns the options used when none are given
func DefaultOptions() Options {
	return Options{MaxResults: 6, Region: "de-de", SafeSearch: "moderate"}
}

// Provider is a search backend returning title/url/snippet hits
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, opts Options) ([]types.SearchResult, error)
}

// Error represents a failed search call
type Error struct {
	Provider string
	Query    string
	Message  string
	Status   int // HTTP status when known
	Cause    error
}

func (e *Error) Error() string {
	prefix := fmt.Sprintf("%s search %q", e.Provider, e.Query)
	if e.Status != 0 {
		prefix += fmt.Sprintf(" (HTTP %d)", e.Status)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Unrecoverable reports whether err means the backends cannot serve this run any more:
// rate limiting, missing configuration, or an HTTP error response.
func Unrecoverable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrNotConfigured) {
		return true
	}
	var searchErr *Error
	return errors.As(err, &searchErr) && searchErr.Status >= 400
}

// IterQueries yields trimmed, non-empty queries, skipping case-insensitive repeats.
// The sequence can be ranged over more than once.
func IterQueries(raw []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		seen := make(map[string]bool, len(raw))
		for _, q := range raw {
			q = strings.TrimSpace(q)
			if q == "" {
				continue
			}
			key := strings.ToLower(q)
			if seen[key] {
				continue
			}
			seen[key] = true
			if !yield(q) {
				return
			}
		}
	}
}

// clip trims results to max, keeping order
func clip(results []types.SearchResult, maxResults int) []types.SearchResult {
	if maxResults > 0 && len(results) > maxResults {
		return results[:maxResults]
	}
	return results
}
