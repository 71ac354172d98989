package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"slices"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/jonathan/outreach-scout/internal/db"
	"github.com/jonathan/outreach-scout/internal/llm"
	"github.com/jonathan/outreach-scout/internal/llm/llmtest"
	"github.com/jonathan/outreach-scout/internal/types"
)

type stubProvider struct {
	name    string
	results []types.SearchResult
	err     error
	calls   int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Search(_ context.Context, query string, _ Options) ([]types.SearchResult, error) {
	s.calls++
	out := make([]types.SearchResult, len(s.results))
	for i, r := range s.results {
		r.Query = query
		out[i] = r
	}
	return out, s.err
}

func hit(url string) types.SearchResult {
	return types.SearchResult{Title: "T " + url, URL: url, Source: "stub"}
}

func TestIterQueries(t *testing.T) {
	seq := IterQueries([]string{" FabLab Lübeck ", "", "fablab lübeck", "Repair Café", "  ", "REPAIR CAFÉ", "Hackerspace"})
	assert.Equal(t, []string{"FabLab Lübeck", "Repair Café", "Hackerspace"}, slices.Collect(seq))
	// restartable
	assert.Equal(t, []string{"FabLab Lübeck", "Repair Café", "Hackerspace"}, slices.Collect(seq))

	var first []string
	for q := range seq {
		first = append(first, q)
		break
	}
	assert.Equal(t, []string{"FabLab Lübeck"}, first)
	assert.Empty(t, slices.Collect(IterQueries(nil)))
}

func TestUnrecoverable(t *testing.T) {
	assert.False(t, Unrecoverable(nil))
	assert.False(t, Unrecoverable(errors.New("timeout")))
	assert.False(t, Unrecoverable(&Error{Provider: "x", Message: "dns"}))
	assert.True(t, Unrecoverable(&Error{Provider: "x", Message: "quota", Status: 403}))
	assert.True(t, Unrecoverable(fmt.Errorf("wrapped: %w", &Error{Provider: "x", Cause: ErrRateLimited})))
	assert.True(t, Unrecoverable(ErrNotConfigured))
}

func TestError(t *testing.T) {
	err := &Error{Provider: "google", Query: "q", Message: "API call failed", Status: 429, Cause: ErrRateLimited}
	assert.Equal(t, `google search "q" (HTTP 429): API call failed: search backend rate limited`, err.Error())
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, `feeds search "": feed unavailable`, (&Error{Provider: "feeds", Message: "feed unavailable"}).Error())
}

const ddgPage = `<html><body>
<div class="result results_links">
  <h2><a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Ffablab-luebeck.de%2F&rut=abc">FabLab Lübeck e.V.</a></h2>
  <a class="result__snippet">Offene Werkstatt mit Lasercutter und 3D-Druck.</a>
</div>
<div class="result result--ad">
  <a class="result__a" href="https://shop.example/ad">Anzeige</a>
</div>
<div class="result">
  <a class="result__a" href="https://chaotikum.org/">Chaotikum</a>
  <div class="result__snippet">Hackerspace in Lübeck</div>
</div>
<div class="result">
  <a class="result__a" href="javascript:void(0)">Broken</a>
</div>
<div class="result">
  <a class="result__a" href="https://third.example/">Third</a>
</div>
</body></html>`

func TestDuckDuckGo_Search(t *testing.T) {
	var got http.Header
	var params map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header
		params = map[string]string{"q": r.URL.Query().Get("q"), "kl": r.URL.Query().Get("kl"), "kp": r.URL.Query().Get("kp")}
		_, _ = w.Write([]byte(ddgPage))
	}))
	defer server.Close()

	d := NewDuckDuckGo(WithDuckDuckGoURL(server.URL))
	results, err := d.Search(context.Background(), "fablab lübeck", Options{MaxResults: 2, SafeSearch: "moderate"})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"q": "fablab lübeck", "kl": "de-de", "kp": "-1"}, params)
	assert.Contains(t, got.Get("Accept-Language"), "de-DE")
	require.Len(t, results, 2)
	assert.Equal(t, types.SearchResult{
		Query:   "fablab lübeck",
		Title:   "FabLab Lübeck e.V.",
		URL:     "https://fablab-luebeck.de/",
		Snippet: "Offene Werkstatt mit Lasercutter und 3D-Druck.",
		Source:  SourceDuckDuckGo,
	}, results[0])
	assert.Equal(t, "https://chaotikum.org/", results[1].URL)
	assert.Equal(t, "Hackerspace in Lübeck", results[1].Snippet)
}

func TestDuckDuckGo_RetriesThenRateLimited(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	var delays []time.Duration
	d := NewDuckDuckGo(WithDuckDuckGoURL(server.URL), WithRetries(2, time.Second))
	d.sleep = func(_ context.Context, dur time.Duration) error {
		delays = append(delays, dur)
		return nil
	}

	_, err := d.Search(context.Background(), "q", DefaultOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.True(t, Unrecoverable(err))
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, delays)
}

func TestDuckDuckGo_RecoversAfterThrottle(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(ddgPage))
	}))
	defer server.Close()

	d := NewDuckDuckGo(WithDuckDuckGoURL(server.URL))
	d.sleep = func(context.Context, time.Duration) error { return nil }

	results, err := d.Search(context.Background(), "q", Options{MaxResults: 10})
	require.NoError(t, err)
	assert.Len(t, results, 3)
	assert.Equal(t, 2, calls)
}

func TestDuckDuckGo_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := NewDuckDuckGo(WithDuckDuckGoURL(server.URL)).Search(context.Background(), "q", DefaultOptions())
	var searchErr *Error
	require.ErrorAs(t, err, &searchErr)
	assert.Equal(t, http.StatusForbidden, searchErr.Status)
	assert.True(t, Unrecoverable(err))
}

func TestResolveRedirect(t *testing.T) {
	tests := map[string]string{
		"//duckduckgo.com/l/?uddg=https%3A%2F%2Fa.example%2Fx": "https://a.example/x",
		"https://duckduckgo.com/l/?rut=1":                      "",
		"https://b.example/":                                   "https://b.example/",
		"mailto:info@b.example":                                "",
	}
	for in, want := range tests {
		assert.Equal(t, want, resolveRedirect(in), in)
	}
}

func TestGoogle_Search(t *testing.T) {
	var starts []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "lang_de", q.Get("lr"))
		assert.Equal(t, "active", q.Get("safe"))
		assert.Equal(t, "engine", q.Get("cx"))
		starts = append(starts, q.Get("start"))

		start, _ := strconv.Atoi(q.Get("start"))
		num, _ := strconv.Atoi(q.Get("num"))
		count := num
		if start > 1 {
			count = 2 // short second page ends paging
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"items":[`)
		for i := range count {
			if i > 0 {
				_, _ = fmt.Fprint(w, ",")
			}
			_, _ = fmt.Fprintf(w, `{"title":" Org %d ","link":"https://org%d.example","snippet":"s"}`, start+i, start+i)
		}
		_, _ = fmt.Fprint(w, `]}`)
	}))
	defer server.Close()

	g, err := NewGoogle(context.Background(), "key", "engine", option.WithEndpoint(server.URL+"/"), option.WithHTTPClient(server.Client()))
	require.NoError(t, err)

	results, err := g.Search(context.Background(), "makerspace", Options{MaxResults: 25})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "11"}, starts)
	require.Len(t, results, 12)
	assert.Equal(t, "Org 1", results[0].Title)
	assert.Equal(t, "https://org12.example", results[11].URL)
	assert.Equal(t, SourceGoogle, results[0].Source)
}

func TestGoogle_NotConfigured(t *testing.T) {
	_, err := NewGoogle(context.Background(), "", "cx")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Makerkalender Nord</title>
<item><title>Repair Café im Stadtteilhaus</title><link>https://repair.example/termin</link><description>Reparieren statt wegwerfen</description></item>
<item><title>Flohmarkt</title><link>https://flohmarkt.example</link><description>Trödel aller Art</description></item>
<item><title>Offener Abend</title><link>https://fablab.example/abend</link><description>Der FabLab öffnet seine Türen</description></item>
<item><title>Ohne Link fablab</title></item>
</channel></rss>`

func TestFeeds_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(feedXML))
	}))
	defer server.Close()

	f := NewFeeds([]string{server.URL + "/broken", server.URL + "/feed"})
	results, err := f.Search(context.Background(), "fablab repair in", Options{MaxResults: 10})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "https://repair.example/termin", results[0].URL)
	assert.Equal(t, "https://fablab.example/abend", results[1].URL)
	assert.Equal(t, SourceFeeds, results[1].Source)

	empty, err := f.Search(context.Background(), "  ", DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestWebAgent_Search(t *testing.T) {
	mock := &llmtest.MockClient{
		GenerateJSONFunc: func(_ context.Context, prompt string, tier llm.ModelTier) (string, error) {
			assert.Contains(t, prompt, "repair café kiel")
			assert.Equal(t, llm.TierStandard, tier)
			return "Hier:\n```json\n" + `{"results":[
				{"title":"Repair Café Kiel","url":"https://repaircafe-kiel.de","snippet":"Jeden Samstag"},
				{"title":"","url":"https://untitled.example"},
				{"title":"Ohne URL","url":" "}
			]}` + "\n```", nil
		},
	}

	results, err := NewWebAgent(mock).Search(context.Background(), "repair café kiel", DefaultOptions())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, SourceWebAgent, results[0].Source)
	assert.Equal(t, "https://repaircafe-kiel.de", results[0].URL)
}

func TestWebAgent_Malformed(t *testing.T) {
	tests := map[string]string{
		"no json":      "keine Ergebnisse",
		"wrong schema": `{"items":[]}`,
	}
	for name, resp := range tests {
		t.Run(name, func(t *testing.T) {
			mock := &llmtest.MockClient{GenerateJSONFunc: llmtest.Routed(resp)}
			_, err := NewWebAgent(mock).Search(context.Background(), "q", DefaultOptions())
			var searchErr *Error
			require.ErrorAs(t, err, &searchErr)
			assert.False(t, Unrecoverable(err))
		})
	}
}

func openCache(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestCached_ServesCacheOnFailure(t *testing.T) {
	database := openCache(t)
	inner := &stubProvider{name: "stub", results: []types.SearchResult{hit("https://a.example"), hit("https://b.example")}}
	c := NewCached(inner, database)
	assert.Equal(t, "stub", c.Name())

	results, err := c.Search(context.Background(), "FabLab  Lübeck", DefaultOptions())
	require.NoError(t, err)
	require.Len(t, results, 2)

	inner.results = nil
	inner.err = &Error{Provider: "stub", Message: "down", Cause: ErrRateLimited}
	cached, err := c.Search(context.Background(), "fablab lübeck", Options{MaxResults: 1})
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, "https://a.example", cached[0].URL)

	inner.err = nil
	cached, err = c.Search(context.Background(), "fablab lübeck", DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, cached, 2)
}

func TestCached_NoCachePassesErrorThrough(t *testing.T) {
	inner := &stubProvider{name: "stub", err: ErrRateLimited}
	_, err := NewCached(inner, openCache(t)).Search(context.Background(), "nie gesucht", DefaultOptions())
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestChain(t *testing.T) {
	t.Run("first non-empty wins", func(t *testing.T) {
		empty := &stubProvider{name: "empty"}
		failing := &stubProvider{name: "failing", err: errors.New("boom")}
		good := &stubProvider{name: "good", results: []types.SearchResult{hit("https://a.example")}}
		never := &stubProvider{name: "never", results: []types.SearchResult{hit("https://b.example")}}

		results, err := NewChain(empty, failing, nil, good, never).Search(context.Background(), "q", DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, "https://a.example", results[0].URL)
		assert.Equal(t, 0, never.calls)
	})

	t.Run("some empty is not an error", func(t *testing.T) {
		results, err := NewChain(&stubProvider{name: "empty"}, &stubProvider{name: "f", err: errors.New("x")}).
			Search(context.Background(), "q", DefaultOptions())
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("all failed", func(t *testing.T) {
		a := &stubProvider{name: "a", err: errors.New("dns")}
		b := &stubProvider{name: "b", err: &Error{Provider: "b", Status: 403, Message: "quota"}}
		_, err := NewChain(a, b).Search(context.Background(), "q", DefaultOptions())
		var searchErr *Error
		require.ErrorAs(t, err, &searchErr)
		assert.Equal(t, 403, searchErr.Status)
		assert.True(t, Unrecoverable(err))
	})

	t.Run("no providers", func(t *testing.T) {
		chain := NewChain()
		assert.Equal(t, 0, chain.Len())
		_, err := chain.Search(context.Background(), "q", DefaultOptions())
		assert.ErrorIs(t, err, ErrNotConfigured)
	})
}

func TestBuild(t *testing.T) {
	chain, err := Build(context.Background(), BuildOptions{
		Backends: []string{BackendGoogle, BackendDuckDuckGo, BackendFeeds, BackendWeb, "bing"},
		LLM:      &llmtest.MockClient{},
		Cache:    openCache(t),
	})
	require.NoError(t, err)
	// google lacks keys and feeds lacks URLs
	assert.Equal(t, 2, chain.Len())

	_, err = Build(context.Background(), BuildOptions{Backends: []string{BackendGoogle}})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
