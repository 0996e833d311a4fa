package diagram

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRenderer struct {
	svg     string
	err     error
	lastDot string
}

func (r *stubRenderer) Render(ctx context.Context, dotSource string) (string, error) {
	r.lastDot = dotSource
	if r.err != nil {
		return "", r.err
	}
	return r.svg, nil
}

func TestGenerator_RenderProducesResponsiveSVG(t *testing.T) {
	renderer := &stubRenderer{svg: `<?xml version="1.0"?>
<svg width="720pt" height="480pt" xmlns="http://www.w3.org/2000/svg"><g/></svg>`}
	gen := NewGenerator(renderer, WithGeneratorLogger(testLogger()))

	result, err := gen.Render(context.Background(), "digraph G {\n    A -> B;\n}", "repo", DefaultLayout(), nil)
	require.NoError(t, err)

	assert.True(t, result.Rendered)
	assert.Contains(t, result.HTML, `width="100%"`)
	assert.NotContains(t, result.HTML, "720pt")
	assert.Contains(t, result.HTML, "scale(1)")
	// レンダラにはレイアウト適用済みのソースが渡る
	assert.Contains(t, renderer.lastDot, "rankdir=TB;")
}

func TestGenerator_RenderFallbackOnRendererFailure(t *testing.T) {
	renderer := &stubRenderer{err: errors.New("syntax error in line 3")}
	gen := NewGenerator(renderer, WithGeneratorLogger(testLogger()))

	result, err := gen.Render(context.Background(), "digraph G {\n    A -> B;\n}", "repo", DefaultLayout(), nil)
	require.NoError(t, err)

	assert.False(t, result.Rendered)
	assert.Error(t, result.RenderErr)
	assert.Contains(t, result.HTML, "syntax error in line 3")
	assert.Contains(t, result.HTML, "A -&gt; B;")
}

func TestGenerator_RenderRateLimitedResponse(t *testing.T) {
	gen := NewGenerator(&stubRenderer{svg: "<svg></svg>"}, WithGeneratorLogger(testLogger()))

	_, err := gen.Render(context.Background(), "Error: 429 quota exceeded", "repo", DefaultLayout(), nil)
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestGenerator_RenderSavesToHistory(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir,
		WithClock(func() time.Time { return time.Date(2024, 3, 15, 10, 30, 45, 0, time.UTC) }),
		WithStoreLogger(testLogger()))
	gen := NewGenerator(&stubRenderer{svg: "<svg></svg>"},
		WithStore(store),
		WithGeneratorLogger(testLogger()))

	result, err := gen.Render(context.Background(), "```dot\ndigraph G {\n    A -> B;\n}\n```", "owner/repo", DefaultLayout(), &Metadata{ModelName: "gemini-2.5-pro"})
	require.NoError(t, err)

	assert.Equal(t, "raw_owner_repo_20240315_103045.dot", result.SavedFilename)

	// 保存されるのはレイアウト適用前・フェンス除去後のソース
	dotSource, metadata, err := store.Load(result.SavedFilename)
	require.NoError(t, err)
	assert.NotContains(t, dotSource, "```")
	assert.NotContains(t, dotSource, "rankdir=")
	assert.Equal(t, 2, metadata.NodeCount)
}

func TestGenerator_RenderWithoutStoreSkipsSave(t *testing.T) {
	gen := NewGenerator(&stubRenderer{svg: "<svg></svg>"}, WithGeneratorLogger(testLogger()))

	result, err := gen.Render(context.Background(), "digraph G {}", "repo", DefaultLayout(), &Metadata{})
	require.NoError(t, err)
	assert.Empty(t, result.SavedFilename)
}
