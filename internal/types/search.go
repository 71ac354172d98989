//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"
	"time"
)

// SearchResult is a single hit from any search backend
type SearchResult struct {
	Query   string `json:"query"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
}

// DirectoryEntry is an organization link scraped from a directory page
type DirectoryEntry struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
	SourceURL   string `json:"source_url,omitempty"`
}

// SiteSnapshot is the web context fetched for a candidate
type SiteSnapshot struct {
	URL              string    `json:"url"`
	Title            string    `json:"title"`
	Summary          string    `json:"summary"`
	Highlights       []string  `json:"highlights,omitempty"`
	DetectedLocation string    `json:"detected_location,omitempty"`
	FetchedAt        time.Time `json:"fetched_at"`
}

// Text renders the snapshot as prompt context
func (s *SiteSnapshot) Text() string {
	if s == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Title: " + s.Title + "\n")
	sb.WriteString("Summary: " + s.Summary + "\n")
	if s.DetectedLocation != "" {
		sb.WriteString("Location: " + s.DetectedLocation + "\n")
	}
	for _, h := range s.Highlights {
		sb.WriteString("- " + h + "\n")
	}
	return sb.String()
}

// Suggestion is a company lookup hit
type Suggestion struct {
	Title       string `json:"title"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
	Type        string `json:"type,omitempty"`
}

// Plan is a run's search strategy
type Plan struct {
	Steps       []string `json:"steps"`
	Queries     []string `json:"queries"`
	TargetCount int      `json:"target_count"`
}

// NewPlan builds a plan with case-insensitively unique queries and a target of at least one
func NewPlan(steps []string, queries []string, target int) Plan {
	seen := make(map[string]bool)
	unique := make([]string, 0, len(queries))
	for _, q := range queries {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		key := strings.ToLower(q)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, q)
	}
	if target < 1 {
		target = 1
	}
	return Plan{Steps: steps, Queries: unique, TargetCount: target}
}
