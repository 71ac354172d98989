// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/outreach-scout/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, boxWidth-4)))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to n runes; umlauts are common in this output
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

func pad(s string) string {
	if n := boxWidth - 4 - utf8.RuneCountInString(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

// PrintPlan outputs the search strategy of a run.
func (p *Printer) PrintPlan(plan *types.Plan) {
	if plan == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Target:  %d candidates\n", plan.TargetCount))
	sb.WriteString(fmt.Sprintf("Queries: %d\n", len(plan.Queries)))

	if len(plan.Steps) > 0 {
		sb.WriteString("\nSteps:\n")
		for i, step := range plan.Steps {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, step))
		}
	}

	if len(plan.Queries) > 0 {
		sb.WriteString("\nFirst queries:\n")
		count := min(len(plan.Queries), maxItemsToShow)
		for _, q := range plan.Queries[:count] {
			sb.WriteString(fmt.Sprintf("  • %s\n", q))
		}
		if len(plan.Queries) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(plan.Queries)-maxItemsToShow))
		}
	}

	p.printBox("SEARCH PLAN", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCandidate outputs the judgment of a single candidate.
func (p *Printer) PrintCandidate(c *types.Candidate) {
	if c == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:  %s\n", c.Name))
	sb.WriteString(fmt.Sprintf("URL:   %s\n", c.URL))
	if c.OrgSlug != "" {
		sb.WriteString(fmt.Sprintf("Slug:  %s\n", c.OrgSlug))
	}
	if c.SourceQuery != "" {
		sb.WriteString(fmt.Sprintf("Query: %s\n", c.SourceQuery))
	}

	if e := c.Evaluation; e != nil {
		sb.WriteString(fmt.Sprintf("\nScore: %.2f (accepted: %t)\n", e.Score, e.Accepted))
		if e.Reason != "" {
			sb.WriteString(fmt.Sprintf("Reason: %s\n", e.Reason))
		}
	}
	if d := c.Coordination; d != nil {
		sb.WriteString(fmt.Sprintf("Coordinator: approved=%t", d.Approved))
		if d.Blacklist {
			sb.WriteString(" blacklist")
		}
		sb.WriteString("\n")
	}

	if len(c.Notes) > 0 {
		sb.WriteString("\nNotes:\n")
		start := max(len(c.Notes)-3, 0)
		for _, n := range c.Notes[start:] {
			sb.WriteString(fmt.Sprintf("  - %s\n", n))
		}
	}

	p.printBox("CANDIDATE", strings.TrimSuffix(sb.String(), "\n"))
}

// RunSummary is what PrintRunSummary reports
type RunSummary struct {
	RunID         string
	StopReason    string
	Iterations    int
	Considered    int
	Accepted      []*types.Candidate
	LettersSent   int
	LettersFailed int
	SnapshotPath  string
	NotesPath     string
}

// PrintRunSummary outputs the outcome of a run.
func (p *Printer) PrintRunSummary(s RunSummary) {
	var sb strings.Builder
	if s.RunID != "" {
		sb.WriteString(fmt.Sprintf("Run:         %s\n", s.RunID))
	}
	if s.StopReason != "" {
		sb.WriteString(fmt.Sprintf("Stopped:     %s\n", s.StopReason))
	}
	sb.WriteString(fmt.Sprintf("Iterations:  %d\n", s.Iterations))
	sb.WriteString(fmt.Sprintf("Considered:  %d\n", s.Considered))
	sb.WriteString(fmt.Sprintf("Accepted:    %d\n", len(s.Accepted)))
	sb.WriteString(fmt.Sprintf("Letters:     %d sent, %d failed\n", s.LettersSent, s.LettersFailed))

	if len(s.Accepted) > 0 {
		sb.WriteString("\n")
		count := min(len(s.Accepted), maxItemsToShow)
		for _, c := range s.Accepted[:count] {
			sb.WriteString(fmt.Sprintf("• %s (%.2f)\n", c.Name, c.Score()))
		}
		if len(s.Accepted) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("... and %d more\n", len(s.Accepted)-maxItemsToShow))
		}
	}

	if s.SnapshotPath != "" {
		sb.WriteString(fmt.Sprintf("\nSnapshot: %s\n", s.SnapshotPath))
	}
	if s.NotesPath != "" {
		sb.WriteString(fmt.Sprintf("Notes:    %s\n", s.NotesPath))
	}

	p.printBox("RUN SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}
