// Package enrichment looks up organizations in the NorthData company register
// and keeps the raw lookups on disk for later review.
package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/outreach-scout/internal/types"
)

// DefaultBaseURL is the NorthData host
const DefaultBaseURL = "https://www.northdata.de"

// DefaultTimeout bounds a single lookup
const DefaultTimeout = 10 * time.Second

const userAgent = "OutreachScout/1.0 (+https://fablab-luebeck.de)"

// LookupError represents a failed or unparseable lookup
type LookupError struct {
	Query   string
	Message string
	Cause   error
}

func (e *LookupError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("northdata lookup %q: %s: %v", e.Query, e.Message, e.Cause)
	}
	return fmt.Sprintf("northdata lookup %q: %s", e.Query, e.Message)
}

func (e *LookupError) Unwrap() error {
	return e.Cause
}

// NorthData queries the suggest API
type NorthData struct {
	baseURL   string
	countries string
	client    *http.Client
}

// Option configures a NorthData client
type Option func(*NorthData)

// WithBaseURL points the client at another host, used by tests
func WithBaseURL(u string) Option {
	return func(n *NorthData) { n.baseURL = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(n *NorthData) { n.client = c }
}

// NewNorthData creates a client restricted to the given country codes (e.g. "DE" or "DE,AT")
func NewNorthData(countries string, opts ...Option) *NorthData {
	n := &NorthData{
		baseURL:   DefaultBaseURL,
		countries: countries,
		client:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

type suggestResponse struct {
	Results []struct {
		Title       string `json:"title"`
		Name        string `json:"name"`
		Description string `json:"description"`
		URL         string `json:"url"`
		Type        string `json:"type"`
	} `json:"results"`
}

// SuggestURL builds the suggest endpoint URL for a query
func (n *NorthData) SuggestURL(query string) string {
	params := url.Values{}
	params.Set("query", query)
	if n.countries != "" {
		params.Set("countries", n.countries)
	}
	return n.baseURL + "/suggest.json?" + params.Encode()
}

// Lookup returns the register suggestions for query
func (n *NorthData) Lookup(ctx context.Context, query string) ([]types.Suggestion, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.SuggestURL(query), nil)
	if err != nil {
		return nil, &LookupError{Query: query, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, &LookupError{Query: query, Message: "suggest API unreachable", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &LookupError{Query: query, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &LookupError{Query: query, Message: "failed to read response", Cause: err}
	}

	var payload suggestResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &LookupError{Query: query, Message: "response is not valid JSON", Cause: err}
	}

	suggestions := make([]types.Suggestion, 0, len(payload.Results))
	for _, item := range payload.Results {
		suggestions = append(suggestions, types.Suggestion{
			Title:       firstNonEmpty(item.Title, item.Name, query),
			Name:        firstNonEmpty(item.Name, item.Title, query),
			Description: item.Description,
			URL:         item.URL,
			Type:        item.Type,
		})
	}
	return suggestions, nil
}

// FormatTop renders the first suggestion as a one-line note
func FormatTop(suggestions []types.Suggestion) string {
	if len(suggestions) == 0 {
		return "NorthData: keine Treffer."
	}
	top := suggestions[0]
	parts := []string{top.Title}
	if top.Description != "" {
		parts = append(parts, "Standort: "+top.Description)
	}
	parts = append(parts, "Quelle: "+top.URL)
	return strings.Join(parts, " | ")
}

// Store writes the lookup under dir as northdata_<slug>.json and returns the path
func Store(dir, query string, suggestions []types.Suggestion, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create enrichment directory: %w", err)
	}
	if suggestions == nil {
		suggestions = []types.Suggestion{}
	}
	payload := struct {
		Query     string             `json:"query"`
		FetchedAt string             `json:"fetched_at"`
		Results   []types.Suggestion `json:"results"`
	}{
		Query:     query,
		FetchedAt: now.UTC().Format(time.RFC3339),
		Results:   suggestions,
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal suggestions: %w", err)
	}

	path := filepath.Join(dir, "northdata_"+fileSlug(query)+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write suggestions: %w", err)
	}
	return path, nil
}

var slugReplacer = strings.NewReplacer(" ", "-", "/", "-", ".", "-", "_", "-", ",", "-")

func fileSlug(query string) string {
	return strings.Trim(slugReplacer.Replace(strings.ToLower(query)), "-")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
