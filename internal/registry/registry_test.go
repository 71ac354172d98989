package registry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonathan/outreach-scout/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func TestLoad_MissingFile(t *testing.T) {
	r, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, 0, r.Len())
}

func TestLoad_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	r, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Len())
}

func TestUpsertAndSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "staging", "registry.json")
	r := New(path)
	r.now = fixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	r.Upsert("fablab-luebeck-de", UpsertOptions{Name: "FabLab Lübeck", Domain: "fablab-luebeck.de", URL: "https://fablab-luebeck.de"})
	r.Upsert("chaotikum-org", UpsertOptions{Name: "Chaotikum", Domain: "chaotikum.org", URL: "https://chaotikum.org", Status: StatusAccepted})

	written, err := r.Save()
	require.NoError(t, err)
	assert.Equal(t, path, written)

	// nothing changed since
	written, err = r.Save()
	require.NoError(t, err)
	assert.Empty(t, written)

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Len())

	rec, ok := reloaded.Get("fablab-luebeck-de")
	require.True(t, ok)
	assert.Equal(t, StatusSeen, rec.Status)
	assert.Equal(t, "fablab-luebeck.de", rec.Domain)

	assert.True(t, reloaded.IsTerminal("chaotikum-org"))
	assert.False(t, reloaded.IsTerminal("fablab-luebeck-de"))
	assert.True(t, reloaded.IsActive("fablab-luebeck-de"))
}

func TestUpsert_MergesFields(t *testing.T) {
	r := New(filepath.Join(t.TempDir(), "r.json"))
	r.Upsert("x", UpsertOptions{Name: "Old", URL: "https://x.org", Notes: "first"})
	rec := r.Upsert("x", UpsertOptions{Name: "", URL: "https://x.org/new", Status: StatusAccepted})

	assert.Equal(t, "Old", rec.Name)
	assert.Equal(t, "https://x.org/new", rec.PrimaryURL)
	assert.Equal(t, "first", rec.Notes)
	assert.Equal(t, StatusAccepted, rec.Status)
}

func TestMarkStatus(t *testing.T) {
	r := New(filepath.Join(t.TempDir(), "r.json"))
	assert.False(t, r.MarkStatus("unknown", StatusContacted, ""))

	r.Upsert("x", UpsertOptions{Name: "X", Domain: "x.org"})
	assert.True(t, r.MarkStatus("x", StatusRejected, "off-topic"))

	rec, _ := r.Get("x")
	assert.Equal(t, StatusRejected, rec.Status)
	assert.Equal(t, "off-topic", rec.Notes)
	assert.False(t, r.IsActive("x"))
}

func TestRecentRecords(t *testing.T) {
	r := New(filepath.Join(t.TempDir(), "r.json"))
	r.now = fixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	r.Upsert("a", UpsertOptions{Domain: "a.org"})
	r.Upsert("b", UpsertOptions{Domain: "b.org"})
	r.Upsert("c", UpsertOptions{Domain: "c.org"})
	r.Upsert("a", UpsertOptions{Notes: "seen again"})

	recent := r.RecentRecords(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "a", recent[0].Slug)
	assert.Equal(t, "c", recent[1].Slug)
}

func TestSeedFromCandidates_DropsDuplicates(t *testing.T) {
	r := New(filepath.Join(t.TempDir(), "r.json"))
	accepted := []types.Candidate{
		{Name: "Makerspace Nord", URL: "https://hamburg.de/makerspace-nord"},
		{Name: "Makerspace Nord (Kontakt)", URL: "https://www.hamburg.de/makerspace-nord/kontakt"},
		{Name: "Chaotikum", URL: "https://chaotikum.org"},
	}

	deduped, report := r.SeedFromCandidates(accepted)
	assert.Len(t, deduped, 2)
	assert.Equal(t, 2, report.Accepted)
	assert.Len(t, report.Duplicates, 1)
	assert.Equal(t, 2, r.Len())
	assert.True(t, r.IsTerminal(deduped[0].OrgSlug))
}

func TestSeedFromLetters(t *testing.T) {
	dir := t.TempDir()
	letter := "---\ncandidate: \"Chaotikum\"\nsource_url: \"https://chaotikum.org\"\norg_slug: \"chaotikum-org\"\n---\n\nHallo!\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chaotikum.md"), []byte(letter), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("no front matter"), 0o644))

	r := New(filepath.Join(t.TempDir(), "r.json"))
	n, err := r.SeedFromLetters(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rec, ok := r.Get("chaotikum-org")
	require.True(t, ok)
	assert.Equal(t, StatusContacted, rec.Status)
}

func TestLetterRecipients_SkipsBrokenHeaders(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"ok.md":           "---\ncandidate: 'Kid''s Lab'\nsource_url: https://kidslab.example\n---\n\nHallo\n",
		"unterminated.md": "---\ncandidate: Offen\nsource_url: https://offen.example\n",
		"invalid.md":      "---\ncandidate: [kaputt\n---\n",
		"missing-url.md":  "---\ncandidate: Ohne URL\n---\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	recipients, err := LetterRecipients(dir)
	require.NoError(t, err)
	require.Len(t, recipients, 1)
	assert.Equal(t, LetterRecipient{Name: "Kid's Lab", URL: "https://kidslab.example"}, recipients[0])
}

func TestLoad_SkipsRecordsFailingSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	content := `{"generated_at": "2026-01-01T00:00:00Z", "records": [
		{"slug": "chaotikum-org", "domain": "chaotikum.org", "status": "contacted"},
		{"slug": "archiv", "domain": "archiv.example", "status": "archived"},
		{"slug": "ohne-domain", "status": "seen"},
		{"slug": 42, "domain": "zahl.example"}
	]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	r, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Len())
	assert.True(t, r.IsTerminal("chaotikum-org"))
	_, ok := r.Get("archiv")
	assert.False(t, ok)
}
