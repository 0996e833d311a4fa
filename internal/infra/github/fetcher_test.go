package github

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeatlas/codeatlas/internal/core/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFetcher_FetchArchiveFirstRef(t *testing.T) {
	var requested []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = append(requested, r.URL.Path)
		w.Write([]byte("zip-data"))
	}))
	defer ts.Close()

	fetcher := NewFetcher(WithBaseURL(ts.URL), WithFetcherLogger(testLogger()))

	data, err := fetcher.FetchArchive(context.Background(), "owner", "repo")
	require.NoError(t, err)

	assert.Equal(t, []byte("zip-data"), data)
	assert.Equal(t, []string{"/owner/repo/archive/HEAD.zip"}, requested)
}

func TestFetcher_FallsBackThroughRefs(t *testing.T) {
	var requested []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = append(requested, r.URL.Path)
		if r.URL.Path == "/owner/repo/archive/master.zip" {
			w.Write([]byte("master-zip"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	fetcher := NewFetcher(WithBaseURL(ts.URL), WithFetcherLogger(testLogger()))

	data, err := fetcher.FetchArchive(context.Background(), "owner", "repo")
	require.NoError(t, err)

	assert.Equal(t, []byte("master-zip"), data)
	assert.Equal(t, []string{
		"/owner/repo/archive/HEAD.zip",
		"/owner/repo/archive/main.zip",
		"/owner/repo/archive/master.zip",
	}, requested)
}

func TestFetcher_AllRefsExhausted(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	fetcher := NewFetcher(WithBaseURL(ts.URL), WithFetcherLogger(testLogger()))

	_, err := fetcher.FetchArchive(context.Background(), "owner", "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestFetcher_ContextCancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("zip"))
	}))
	defer ts.Close()

	fetcher := NewFetcher(WithBaseURL(ts.URL), WithFetcherLogger(testLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fetcher.FetchArchive(ctx, "owner", "repo")
	assert.Error(t, err)
}
