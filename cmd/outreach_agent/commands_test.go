package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/outreach-scout/internal/blacklist"
	"github.com/jonathan/outreach-scout/internal/config"
	"github.com/jonathan/outreach-scout/internal/letters"
	"github.com/jonathan/outreach-scout/internal/registry"
	"github.com/jonathan/outreach-scout/internal/search"
	"github.com/jonathan/outreach-scout/internal/snapshot"
	"github.com/jonathan/outreach-scout/internal/types"
)

func TestRootCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"run", "search", "seed-registry", "blacklist"} {
		assert.True(t, names[want], want)
	}
}

func TestBlacklistCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blacklist.json")
	var out bytes.Buffer

	require.NoError(t, addBlacklist(&out, path, "https://www.shop.example/kontakt", "Händler"))
	assert.Contains(t, out.String(), "Blacklisted shop.example (Händler)")

	m, err := blacklist.Load(path)
	require.NoError(t, err)
	entry, ok := m.IsBlacklisted("https://shop.example")
	require.True(t, ok)
	assert.Equal(t, blacklist.TagManual, entry.Tag)
	assert.Equal(t, "cli", entry.Source)

	_, err = m.Add("https://fablab.example", "already contacted", blacklist.AddOptions{Tag: blacklist.TagContacted})
	require.NoError(t, err)
	_, err = m.Persist()
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, listBlacklist(&out, path, ""))
	assert.Contains(t, out.String(), "shop.example")
	assert.Contains(t, out.String(), "fablab.example")
	assert.Contains(t, out.String(), "2 entries")

	out.Reset()
	require.NoError(t, listBlacklist(&out, path, blacklist.TagContacted))
	assert.NotContains(t, out.String(), "shop.example")
	assert.Contains(t, out.String(), "1 entries")

	out.Reset()
	require.NoError(t, removeBlacklist(&out, path, "shop.example"))
	assert.Contains(t, out.String(), "Removed shop.example")
	assert.ErrorContains(t, removeBlacklist(&out, path, "shop.example"), "not blacklisted")

	m, err = blacklist.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())
}

func TestSeedRegistry(t *testing.T) {
	dir := t.TempDir()
	registryPath := filepath.Join(dir, "registry.json")
	snapPath := filepath.Join(dir, "snapshot.json")
	lettersDir := filepath.Join(dir, "letters")

	snap := snapshot.New("run-1", []*types.Candidate{
		{Name: "FabLab Lübeck", URL: "https://fablab-luebeck.example"},
		{Name: "FabLab Lübeck", URL: "https://fablab-luebeck.example/"},
		{Name: "Repair Café", URL: "https://repaircafe.example"},
	}, nil, time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC))
	require.NoError(t, snapshot.Write(snapPath, snap))

	store := letters.NewStore(lettersDir, "run-1", false)
	_, err := store.Save(&types.Candidate{Name: "Repair Café", URL: "https://repaircafe.example"}, &letters.Draft{Text: "Hallo", WordCount: 1, Attempts: 1})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, seedRegistry(&out, registryPath, snapPath, lettersDir))
	assert.Contains(t, out.String(), "Snapshot: 2 accepted, 1 duplicates")
	assert.Contains(t, out.String(), "Letters: 1 organizations marked contacted")

	reg, err := registry.Load(registryPath)
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())
	for _, rec := range reg.RecentRecords(10) {
		if rec.Domain == "repaircafe.example" {
			assert.Equal(t, registry.StatusContacted, rec.Status)
		} else {
			assert.Equal(t, registry.StatusAccepted, rec.Status)
		}
	}

	out.Reset()
	require.NoError(t, seedRegistry(&out, registryPath, filepath.Join(dir, "missing.json"), ""))
	assert.Contains(t, out.String(), "not found, skipped")
}

type fixedProvider struct{ results []types.SearchResult }

func (p fixedProvider) Name() string { return "fixed" }

func (p fixedProvider) Search(context.Context, string, search.Options) ([]types.SearchResult, error) {
	return p.results, nil
}

func TestRunSearch(t *testing.T) {
	var out bytes.Buffer
	p := fixedProvider{results: []types.SearchResult{
		{Title: "FabLab Lübeck", URL: "https://fablab-luebeck.example", Snippet: "Offene Werkstatt"},
		{Title: "Repair Café", URL: "https://repaircafe.example"},
	}}
	require.NoError(t, runSearch(context.Background(), &out, p, "makerspace lübeck", search.DefaultOptions()))
	assert.Contains(t, out.String(), `2 results for "makerspace lübeck"`)
	assert.Contains(t, out.String(), " 1. FabLab Lübeck\n    https://fablab-luebeck.example\n    Offene Werkstatt\n")
	assert.Contains(t, out.String(), " 2. Repair Café\n")
}

func TestNewLLMClient_MissingKey(t *testing.T) {
	_, err := newLLMClient(context.Background(), "gemini", config.Config{})
	assert.ErrorContains(t, err, "GEMINI_API_KEY")

	_, err = newLLMClient(context.Background(), "cohere", config.Config{APIKey: "gemini-only"})
	assert.ErrorContains(t, err, "COHERE_API_KEY")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("GOOGLE_CX", "cx-from-env")
	t.Setenv("GEMINI_API_KEY", "from-env")
	cfg := config.Config{APIKey: "from-config"}
	applyEnv(&cfg)
	assert.Equal(t, "from-config", cfg.APIKey)
	assert.Equal(t, "cx-from-env", cfg.GoogleCX)
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Phase)

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"phase": "acquire", "region": "north"}`), 0o644))
	cfg, err = loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "acquire", cfg.Phase)

	require.NoError(t, os.WriteFile(path, []byte(`{"phase": "nope"}`), 0o644))
	_, err = loadConfig(path)
	assert.ErrorContains(t, err, "unknown phase")
}
