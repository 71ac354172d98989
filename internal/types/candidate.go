// Package types provides type definitions for structured data used throughout the outreach-scout system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"
)

// LetterStatus tracks where a candidate is in the letter lifecycle
type LetterStatus string

// Letter lifecycle states
const (
	LetterPending LetterStatus = "pending"
	LetterQueued  LetterStatus = "queued"
	LetterSent    LetterStatus = "sent"
	LetterFailed  LetterStatus = "failed"
)

// Candidate is one discovered organization or URL under consideration for outreach.
// It is mutated in place as it moves through the gates and is never deleted.
type Candidate struct {
	Name          string               `json:"name"`
	URL           string               `json:"url"`
	Summary       string               `json:"summary,omitempty"`
	Snippet       string               `json:"snippet,omitempty"`
	SourceQuery   string               `json:"source_query,omitempty"`
	Source        string               `json:"source,omitempty"`
	Notes         []string             `json:"notes,omitempty"`
	Enrichment    string               `json:"enrichment,omitempty"`
	Evaluation    *EvaluationResult    `json:"evaluation,omitempty"`
	Coordination  *CoordinatorDecision `json:"coordination,omitempty"`
	Context       *SiteSnapshot        `json:"context,omitempty"`
	OrgSlug       string               `json:"org_slug,omitempty"`
	LetterStatus  LetterStatus         `json:"letter_status,omitempty"`
	LetterPath    string               `json:"letter_path,omitempty"`
	Depth         int                  `json:"depth,omitempty"`
	Directory     bool                 `json:"directory,omitempty"`
	DiscoveredVia string               `json:"discovered_via,omitempty"` // directory page URL, if any
}

// NewCandidateFromResult builds a candidate from a search hit
func NewCandidateFromResult(r SearchResult) *Candidate {
	name := strings.TrimSpace(r.Title)
	if name == "" {
		name = r.URL
	}
	return &Candidate{
		Name:         name,
		URL:          strings.TrimSpace(r.URL),
		Summary:      strings.TrimSpace(r.Snippet),
		Snippet:      strings.TrimSpace(r.Snippet),
		SourceQuery:  r.Query,
		Source:       r.Source,
		LetterStatus: LetterPending,
	}
}

// NewCandidateFromEntry builds a derived candidate from a directory page entry
func NewCandidateFromEntry(e DirectoryEntry, parent *Candidate) *Candidate {
	c := &Candidate{
		Name:          e.Name,
		URL:           e.URL,
		Summary:       e.Description,
		Snippet:       e.Description,
		Source:        "directory",
		LetterStatus:  LetterPending,
		DiscoveredVia: e.SourceURL,
	}
	if parent != nil {
		c.SourceQuery = parent.SourceQuery
		if c.DiscoveredVia == "" {
			c.DiscoveredVia = parent.URL
		}
	}
	return c
}

// AddNote appends a free-text note, ignoring blanks
func (c *Candidate) AddNote(note string) {
	note = strings.TrimSpace(note)
	if note == "" {
		return
	}
	c.Notes = append(c.Notes, note)
}

// Fingerprint is the lowercased text the region and heuristic gates look at
func (c *Candidate) Fingerprint() string {
	parts := []string{c.Name, c.Summary, c.Snippet, c.URL, c.SourceQuery}
	return strings.ToLower(strings.Join(parts, " "))
}

// TitleAndSnippet is the lowercased name plus snippet, used by the negative term gate
func (c *Candidate) TitleAndSnippet() string {
	return strings.ToLower(c.Name + " " + c.Snippet)
}

// Key returns a normalized URL used for seen-URL bookkeeping
func (c *Candidate) Key() string {
	return NormalizeURLKey(c.URL)
}

// Score returns the evaluation score, or zero when the candidate was never evaluated
func (c *Candidate) Score() float64 {
	if c.Evaluation == nil {
		return 0
	}
	return c.Evaluation.Score
}

// NormalizeURLKey lowercases a URL, drops the fragment and trailing slash
func NormalizeURLKey(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if idx := strings.Index(key, "#"); idx >= 0 {
		key = key[:idx]
	}
	key = strings.TrimPrefix(key, "https://")
	key = strings.TrimPrefix(key, "http://")
	key = strings.TrimPrefix(key, "www.")
	return strings.TrimSuffix(key, "/")
}
