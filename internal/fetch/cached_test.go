package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/jonathan/outreach-scout/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), db.DefaultDBName))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestCachedFetcher_ServesFromCache(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("<html><body><main><p>Offene Werkstatt in Lübeck</p></main></body></html>"))
	}))
	defer server.Close()

	f := NewCachedFetcher(openTestDB(t), nil)
	ctx := context.Background()

	first, err := f.Fetch(ctx, server.URL)
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Contains(t, first.Text, "Offene Werkstatt")

	second, err := f.Fetch(ctx, server.URL)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.HTML, second.HTML)
	assert.Equal(t, int32(1), hits.Load())
}

func TestCachedFetcher_SkipsPermanentFailure(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := NewCachedFetcher(openTestDB(t), nil)
	ctx := context.Background()

	_, err := f.Fetch(ctx, server.URL)
	require.Error(t, err)

	_, err = f.Fetch(ctx, server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "URL skipped")
	assert.Equal(t, int32(1), hits.Load())
}

func TestCachedFetcher_NoDatabase(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("<p>hi</p>"))
	}))
	defer server.Close()

	f := NewCachedFetcher(nil, nil)
	for i := 0; i < 2; i++ {
		res, err := f.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.False(t, res.FromCache)
	}
	assert.Equal(t, int32(2), hits.Load())
}

func TestCachedFetcher_BrowserFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div id="root"></div></body></html>`))
	}))
	defer server.Close()

	rendered := "<html><body><main><p>" + strings.Repeat("Wir reparieren gemeinsam. ", 30) + "</p></main></body></html>"
	cfg := DefaultCachedFetcherConfig()
	cfg.Renderer = func(_ context.Context, _ string) (string, error) { return rendered, nil }

	res, err := NewCachedFetcher(nil, cfg).Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.True(t, res.Rendered)
	assert.Contains(t, res.Text, "Wir reparieren gemeinsam")
}

func TestCachedFetcher_BrowserFailureKeepsPlainFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>kurz</p></body></html>`))
	}))
	defer server.Close()

	cfg := DefaultCachedFetcherConfig()
	cfg.Renderer = func(_ context.Context, _ string) (string, error) { return "", errors.New("no chrome") }

	res, err := NewCachedFetcher(nil, cfg).Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.False(t, res.Rendered)
	assert.Equal(t, "kurz", res.Text)
}

func TestFetchMultiple(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("<p>" + r.URL.Path + "</p>"))
	}))
	defer server.Close()

	f := NewCachedFetcher(nil, nil)
	results, errs := f.FetchMultiple(context.Background(), []string{server.URL + "/kontakt", server.URL + "/missing"})
	require.Len(t, results, 2)
	assert.NotNil(t, results[0])
	assert.NoError(t, errs[0])
	assert.Nil(t, results[1])
	assert.Error(t, errs[1])
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, 404, statusOf(&Result{StatusCode: 404}, errors.New("x")))
	assert.Equal(t, 503, statusOf(nil, &Error{StatusCode: 503}))
	assert.Equal(t, 0, statusOf(nil, errors.New("dial failed")))
}
