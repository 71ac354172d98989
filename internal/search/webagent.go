package search

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jonathan/outreach-scout/internal/llm"
	"github.com/jonathan/outreach-scout/internal/schemas"
	"github.com/jonathan/outreach-scout/internal/types"
	schemafiles "github.com/jonathan/outreach-scout/schemas"
)

// WebAgent asks the judgment service to run a hosted web search
type WebAgent struct {
	client llm.Client
}

// NewWebAgent creates a WebAgent provider
func NewWebAgent(client llm.Client) *WebAgent {
	return &WebAgent{client: client}
}

// Name implements Provider
func (w *WebAgent) Name() string { return SourceWebAgent }

type webSearchResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Snippet string `json:"snippet"`
	} `json:"results"`
}

// Search returns the hits reported by the model; entries without title or URL are dropped
func (w *WebAgent) Search(ctx context.Context, query string, opts Options) ([]types.SearchResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultOptions().MaxResults
	}
	prompt := llm.BuildExtractionPrompt(llm.WebSearchSchema(maxResults), query)

	raw, err := w.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, &Error{Provider: SourceWebAgent, Query: query, Message: "model call failed", Cause: err}
	}

	obj := llm.ExtractJSONObject(llm.CleanJSONBlock(raw))
	if obj == "" {
		return nil, &Error{Provider: SourceWebAgent, Query: query, Message: "response holds no JSON object"}
	}
	if err := schemas.Validate(schemafiles.WebSearch, obj); err != nil {
		return nil, &Error{Provider: SourceWebAgent, Query: query, Message: "response does not match schema", Cause: err}
	}
	var resp webSearchResponse
	if err := json.Unmarshal([]byte(obj), &resp); err != nil {
		return nil, &Error{Provider: SourceWebAgent, Query: query, Message: "failed to decode response", Cause: err}
	}

	results := make([]types.SearchResult, 0, len(resp.Results))
	for _, item := range resp.Results {
		title := strings.TrimSpace(item.Title)
		link := strings.TrimSpace(item.URL)
		if title == "" || link == "" {
			continue
		}
		results = append(results, types.SearchResult{
			Query:   query,
			Title:   title,
			URL:     link,
			Snippet: strings.TrimSpace(item.Snippet),
			Source:  SourceWebAgent,
		})
	}
	return clip(results, maxResults), nil
}
