package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/jonathan/outreach-scout/internal/types"
)

// Stats are the run counters shown in the research notes
type Stats struct {
	Iterations    int
	Queries       int
	Considered    int
	Accepted      int
	Refinements   int
	StopReason    string
	LettersSent   int
	LettersFailed int
}

// Notes is the content of the markdown research notes
type Notes struct {
	RunID      string
	Plan       types.Plan
	Accepted   []*types.Candidate
	Considered []*types.Candidate
	Stats      Stats
	Generated  time.Time
}

// maxRejectedListed bounds the rejected section
const maxRejectedListed = 30

// RenderNotes renders the research notes as markdown
func RenderNotes(n Notes) string {
	var sb strings.Builder
	sb.WriteString("# Recherche-Notizen\n\n")
	if !n.Generated.IsZero() {
		fmt.Fprintf(&sb, "Erstellt: %s\n", n.Generated.UTC().Format(time.RFC3339))
	}
	if n.RunID != "" {
		fmt.Fprintf(&sb, "Lauf: %s\n", n.RunID)
	}

	sb.WriteString("\n## Plan\n\n")
	for i, step := range n.Plan.Steps {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, step)
	}
	fmt.Fprintf(&sb, "\nZiel: %d Kandidaten\n\nSuchanfragen:\n", n.Plan.TargetCount)
	for _, q := range n.Plan.Queries {
		fmt.Fprintf(&sb, "- %s\n", q)
	}

	sb.WriteString("\n## Statistik\n\n")
	fmt.Fprintf(&sb, "- Iterationen: %d\n", n.Stats.Iterations)
	fmt.Fprintf(&sb, "- Suchanfragen: %d\n", n.Stats.Queries)
	fmt.Fprintf(&sb, "- Geprüfte Kandidaten: %d\n", n.Stats.Considered)
	fmt.Fprintf(&sb, "- Angenommen: %d\n", n.Stats.Accepted)
	fmt.Fprintf(&sb, "- Verfeinerungen: %d\n", n.Stats.Refinements)
	fmt.Fprintf(&sb, "- Briefe: %d versendet, %d fehlgeschlagen\n", n.Stats.LettersSent, n.Stats.LettersFailed)
	if n.Stats.StopReason != "" {
		fmt.Fprintf(&sb, "- Abbruchgrund: %s\n", n.Stats.StopReason)
	}

	sb.WriteString("\n## Angenommene Kandidaten\n\n")
	if len(n.Accepted) == 0 {
		sb.WriteString("Keine.\n")
	}
	for _, c := range n.Accepted {
		fmt.Fprintf(&sb, "### %s\n\n- URL: %s\n", c.Name, c.URL)
		if c.OrgSlug != "" {
			fmt.Fprintf(&sb, "- Schlüssel: %s\n", c.OrgSlug)
		}
		if c.Evaluation != nil {
			fmt.Fprintf(&sb, "- Score: %.2f\n- Begründung: %s\n", c.Evaluation.Score, c.Evaluation.Reason)
		}
		if c.Coordination != nil && c.Coordination.Reason != "" {
			fmt.Fprintf(&sb, "- Koordination: %s\n", c.Coordination.Reason)
		}
		if c.Enrichment != "" {
			fmt.Fprintf(&sb, "- Firmendaten: %s\n", c.Enrichment)
		}
		if c.LetterStatus != "" {
			fmt.Fprintf(&sb, "- Brief: %s\n", c.LetterStatus)
		}
		sb.WriteString("\n")
	}

	var rejected []*types.Candidate
	for _, c := range n.Considered {
		if c.Evaluation != nil && !slices.Contains(n.Accepted, c) {
			rejected = append(rejected, c)
		}
	}
	if len(rejected) > 0 {
		sb.WriteString("## Abgelehnte Kandidaten\n\n")
		for i, c := range rejected {
			if i == maxRejectedListed {
				fmt.Fprintf(&sb, "- ... und %d weitere\n", len(rejected)-maxRejectedListed)
				break
			}
			fmt.Fprintf(&sb, "- %s (%s): %.2f, %s\n", c.Name, c.URL, c.Evaluation.Score, c.Evaluation.Reason)
		}
	}
	return sb.String()
}

// WriteNotes renders the notes and writes them to path
func WriteNotes(path string, n Notes) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create notes directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(RenderNotes(n)), 0o644); err != nil {
		return fmt.Errorf("failed to write notes %s: %w", path, err)
	}
	return nil
}
