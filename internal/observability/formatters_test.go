package observability

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jonathan/outreach-scout/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestPrintPlan(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	plan := types.NewPlan(
		[]string{"Regionale Suche", "Verzeichnisse auswerten"},
		[]string{"fablab lübeck", "makerspace kiel", "repair café lübeck", "jugend forscht sh", "hackerspace hamburg", "roboter ag schule"},
		8,
	)
	p.PrintPlan(&plan)
	output := buf.String()

	assert.Contains(t, output, "SEARCH PLAN")
	assert.Contains(t, output, "Target:  8 candidates")
	assert.Contains(t, output, "1. Regionale Suche")
	assert.Contains(t, output, "fablab lübeck")
	assert.Contains(t, output, "... and 1 more")
	assert.NotContains(t, output, "roboter ag schule")
}

func TestPrintPlan_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintPlan(nil)
	assert.Empty(t, buf.String())
}

func TestPrintCandidate(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	c := &types.Candidate{
		Name:         "FabLab Lübeck",
		URL:          "https://fablab-luebeck.de",
		OrgSlug:      "fablab-luebeck-de",
		SourceQuery:  "fablab lübeck",
		Evaluation:   &types.EvaluationResult{Score: 0.82, Accepted: true, Reason: "offene Werkstatt"},
		Coordination: &types.CoordinatorDecision{Approved: true},
		Notes:        []string{"a", "b", "c", "d"},
	}
	p.PrintCandidate(c)
	output := buf.String()

	assert.Contains(t, output, "CANDIDATE")
	assert.Contains(t, output, "Score: 0.82 (accepted: true)")
	assert.Contains(t, output, "offene Werkstatt")
	assert.Contains(t, output, "Coordinator: approved=true")
	assert.Contains(t, output, "  - d")
	assert.NotContains(t, output, "  - a")
}

func TestPrintRunSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRunSummary(RunSummary{
		RunID:       "run-1",
		StopReason:  "target reached",
		Iterations:  2,
		Considered:  14,
		Accepted:    []*types.Candidate{{Name: "FabLab Lübeck", Evaluation: &types.EvaluationResult{Score: 0.9}}},
		LettersSent: 1,
	})
	output := buf.String()

	assert.Contains(t, output, "RUN SUMMARY")
	assert.Contains(t, output, "Stopped:     target reached")
	assert.Contains(t, output, "Letters:     1 sent, 0 failed")
	assert.Contains(t, output, "• FabLab Lübeck (0.90)")
}

func TestPrintBox_AlignsUnicode(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.printBox("TITEL", "Größe\n"+strings.Repeat("ü", 80))

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, utf8.RuneCountInString(line), line)
	}
}
