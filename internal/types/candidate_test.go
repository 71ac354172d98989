package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCandidateFromResult(t *testing.T) {
	c := NewCandidateFromResult(SearchResult{
		Query:   "fablab lübeck",
		Title:   "  FabLab Lübeck  ",
		URL:     " https://fablab-luebeck.de ",
		Snippet: "Offene Werkstatt ",
		Source:  "google",
	})
	assert.Equal(t, "FabLab Lübeck", c.Name)
	assert.Equal(t, "https://fablab-luebeck.de", c.URL)
	assert.Equal(t, "Offene Werkstatt", c.Summary)
	assert.Equal(t, "fablab lübeck", c.SourceQuery)
	assert.Equal(t, LetterPending, c.LetterStatus)

	untitled := NewCandidateFromResult(SearchResult{URL: "https://x.example"})
	assert.Equal(t, "https://x.example", untitled.Name)
}

func TestNewCandidateFromEntry(t *testing.T) {
	parent := &Candidate{URL: "https://liste.example", SourceQuery: "makerspace liste"}

	c := NewCandidateFromEntry(DirectoryEntry{Name: "Chaotikum", URL: "https://chaotikum.org", Description: "Hackerspace"}, parent)
	assert.Equal(t, "directory", c.Source)
	assert.Equal(t, "https://liste.example", c.DiscoveredVia)
	assert.Equal(t, "makerspace liste", c.SourceQuery)
	assert.Equal(t, "Hackerspace", c.Snippet)

	c = NewCandidateFromEntry(DirectoryEntry{Name: "A", URL: "https://a.example", SourceURL: "https://other.example"}, parent)
	assert.Equal(t, "https://other.example", c.DiscoveredVia)

	c = NewCandidateFromEntry(DirectoryEntry{Name: "B", URL: "https://b.example"}, nil)
	assert.Empty(t, c.DiscoveredVia)
}

func TestCandidate_Helpers(t *testing.T) {
	c := &Candidate{Name: "Repair Café", URL: "https://Repair.example/", Snippet: "Lübeck", SourceQuery: "repair"}
	c.AddNote("  ")
	c.AddNote(" off-region: berlin ")
	assert.Equal(t, []string{"off-region: berlin"}, c.Notes)

	assert.Equal(t, "repair café lübeck", c.TitleAndSnippet())
	assert.Contains(t, c.Fingerprint(), "https://repair.example/")
	assert.Zero(t, c.Score())

	c.Evaluation = &EvaluationResult{Score: 0.7}
	assert.Equal(t, 0.7, c.Score())
}

func TestNormalizeURLKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.FabLab.de/", "fablab.de"},
		{"http://fablab.de/kurse#anmeldung", "fablab.de/kurse"},
		{" fablab.de ", "fablab.de"},
		{"https://fablab.de/kurse?x=1", "fablab.de/kurse?x=1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeURLKey(tt.in), tt.in)
	}
	assert.Equal(t, (&Candidate{URL: "https://www.a.example/"}).Key(), (&Candidate{URL: "http://a.example"}).Key())
}
