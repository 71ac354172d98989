package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Defaults(t *testing.T) {
	s, err := Resolve(Config{})
	require.NoError(t, err)

	assert.Equal(t, "refine", s.Phase.Name)
	assert.Equal(t, "luebeck", s.Region.Name)
	assert.InDelta(t, 0.62, s.AcceptThreshold, 1e-9)
	assert.Equal(t, 5, s.MaxIterations)
	assert.Equal(t, 8, s.ResultsPerQuery)
	assert.Equal(t, 5, s.LettersPerRun)
	assert.Equal(t, 5, s.TargetCount)
	assert.Equal(t, DefaultLetterMaxWords, s.LetterMaxWords)
	assert.Equal(t, DefaultLetterMaxRetries, s.LetterMaxRetries)
	assert.Equal(t, "gemini", s.LLMProvider)
	assert.NotEmpty(t, s.Gates.NegativeSuffixes)
}

func TestResolve_PhasePresets(t *testing.T) {
	tests := []struct {
		phase      string
		threshold  float64
		iterations int
		results    int
		letters    int
	}{
		{"explore", 0.55, 3, 10, 2},
		{"refine", 0.62, 5, 8, 5},
		{"acquire", 0.7, 8, 6, 10},
	}

	for _, tt := range tests {
		t.Run(tt.phase, func(t *testing.T) {
			s, err := Resolve(Config{Phase: tt.phase})
			require.NoError(t, err)
			assert.InDelta(t, tt.threshold, s.AcceptThreshold, 1e-9)
			assert.Equal(t, tt.iterations, s.MaxIterations)
			assert.Equal(t, tt.results, s.ResultsPerQuery)
			assert.Equal(t, tt.letters, s.LettersPerRun)
		})
	}
}

func TestResolve_OverridesWinOverPreset(t *testing.T) {
	s, err := Resolve(Config{
		Phase:           "acquire",
		AcceptThreshold: 0.5,
		MaxIterations:   2,
		ResultsPerQuery: 3,
		LettersPerRun:   1,
		TargetCount:     4,
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.5, s.AcceptThreshold, 1e-9)
	assert.Equal(t, 2, s.MaxIterations)
	assert.Equal(t, 3, s.ResultsPerQuery)
	assert.Equal(t, 1, s.LettersPerRun)
	assert.Equal(t, 4, s.TargetCount)
}

func TestResolve_RejectsInvalid(t *testing.T) {
	_, err := Resolve(Config{Phase: "unknown"})
	assert.Error(t, err)

	_, err = Resolve(Config{FeedURLs: []string{"not a url"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid settings")

	_, err = Resolve(Config{LetterMaxWords: 10})
	assert.Error(t, err)
}

func TestRegionsAreComplete(t *testing.T) {
	for name, r := range Regions {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, name, r.Name)
			assert.NotEmpty(t, r.Queries)
			assert.NotEmpty(t, r.FallbackQueries)
			assert.NotEmpty(t, r.OffRegionKeywords)
			assert.NotEmpty(t, r.SearchLocale)
		})
	}
}

func TestIdentity_LoadAndSummary(t *testing.T) {
	content := `
organization:
  name: Maker Faire Lübeck e.V.
  description: Gemeinnütziger Verein für offene Technikbildung.
representative:
  name: Alex Beispiel
  role: Ausstellerbetreuung
event:
  name: Maker Faire Lübeck 2026
  venue: Kulturwerft Gollan
  target_actors: 80
messaging_guidelines:
  key_points:
    - Kostenlose Standfläche für gemeinnützige Gruppen
    - Workshops erwünscht
  call_to_action: Antwort per Mail bis Ende März
`
	path := filepath.Join(t.TempDir(), "identity.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	id, err := LoadIdentity(path)
	require.NoError(t, err)

	summary := id.Summary()
	assert.Contains(t, summary, "Alex Beispiel (Ausstellerbetreuung) vom Maker Faire Lübeck e.V.")
	assert.Contains(t, summary, "Plant aktuell: Maker Faire Lübeck 2026 am Standort Kulturwerft Gollan.")
	assert.Contains(t, summary, "Ziel: ca. 80 Ausstellende.")
	assert.Contains(t, summary, "Kostenlose Standfläche für gemeinnützige Gruppen; Workshops erwünscht")
	assert.Contains(t, summary, "Call-to-Action: Antwort per Mail bis Ende März")
}

func TestIdentity_Missing(t *testing.T) {
	_, err := LoadIdentity(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "identity file not found")
}

func TestIdentity_SummaryDefaults(t *testing.T) {
	id := &Identity{}
	assert.Equal(t, "Unbekannt (Rolle unbekannt) vom Organisation unbekannt.", id.Summary())

	var nilID *Identity
	assert.Empty(t, nilID.Summary())
}
