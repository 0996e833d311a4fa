package repository

import (
	"archive/zip"
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func buildZip(t *testing.T, files map[string]string) *zip.Reader {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	return zr
}

func TestLoader_AdmitsCodeAndSkipsTestsAndDeps(t *testing.T) {
	zr := buildZip(t, map[string]string{
		"src/main.py":               "def main():\n    pass\n",
		"README.md":                 "# Demo\n",
		"tests/test_main.py":        "def test_main():\n    pass\n",
		"node_modules/pkg/index.js": "module.exports = {};\n",
	})

	loader := NewLoader(WithLoaderLogger(testLogger()))
	result, err := loader.LoadZipReader(zr, "owner/repo")
	require.NoError(t, err)

	assert.Equal(t, 2, result.Stats.FilesProcessed)
	assert.Equal(t, 2, result.Stats.FilesSkipped)
	assert.Contains(t, result.Context, `<file name="src/main.py">`)
	assert.Contains(t, result.Context, `<file name="README.md">`)
	assert.NotContains(t, result.Context, "test_main")
	assert.NotContains(t, result.Context, "node_modules")
	assert.Equal(t, "owner/repo", result.RepoName)
}

func TestLoader_NoCodeFiles(t *testing.T) {
	zr := buildZip(t, map[string]string{
		"image.png":  "\x89PNG",
		"binary.exe": "MZ",
	})

	loader := NewLoader(WithLoaderLogger(testLogger()))
	_, err := loader.LoadZipReader(zr, "owner/repo")

	assert.ErrorIs(t, err, ErrNoCodeFiles)
}

func TestLoader_SkipsOversizedFiles(t *testing.T) {
	zr := buildZip(t, map[string]string{
		"src/big.py":   strings.Repeat("x = 1\n", 100),
		"src/small.py": "y = 2\n",
	})

	limits := DefaultLimits()
	limits.MaxFileSize = 64
	loader := NewLoader(WithLimits(limits), WithLoaderLogger(testLogger()))

	result, err := loader.LoadZipReader(zr, "owner/repo")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Stats.FilesProcessed)
	assert.Equal(t, 1, result.Stats.FilesSkipped)
	assert.NotContains(t, result.Context, "src/big.py")
}

func TestLoader_StopsAtContextLimit(t *testing.T) {
	zr := buildZip(t, map[string]string{
		"src/a.py": strings.Repeat("a = 1\n", 20),
		"src/b.py": strings.Repeat("b = 2\n", 20),
	})

	limits := DefaultLimits()
	limits.MaxContextSize = 200
	loader := NewLoader(WithLimits(limits), WithLoaderLogger(testLogger()))

	result, err := loader.LoadZipReader(zr, "owner/repo")
	require.NoError(t, err)

	// 上限に達したら以降のファイルは取り込まれない
	assert.Equal(t, 1, result.Stats.FilesProcessed)
	assert.LessOrEqual(t, result.Stats.TotalCharacters, 200)
}

func TestLoader_PrioritizesSourceDirs(t *testing.T) {
	zr := buildZip(t, map[string]string{
		"zz_notes.md":    "notes\n",
		"src/engine.py":  "class Engine:\n    pass\n",
		"tools/gen.py":   "print('gen')\n",
		"lib/helpers.py": "def help():\n    pass\n",
	})

	loader := NewLoader(WithLoaderLogger(testLogger()))
	result, err := loader.LoadZipReader(zr, "owner/repo")
	require.NoError(t, err)

	srcIdx := strings.Index(result.Context, `<file name="src/engine.py">`)
	libIdx := strings.Index(result.Context, `<file name="lib/helpers.py">`)
	notesIdx := strings.Index(result.Context, `<file name="zz_notes.md">`)
	toolsIdx := strings.Index(result.Context, `<file name="tools/gen.py">`)

	require.GreaterOrEqual(t, srcIdx, 0)
	require.GreaterOrEqual(t, libIdx, 0)
	require.GreaterOrEqual(t, notesIdx, 0)
	require.GreaterOrEqual(t, toolsIdx, 0)

	// src/ と lib/ 配下が慣習的でないパスより先に並ぶ
	assert.Less(t, srcIdx, notesIdx)
	assert.Less(t, libIdx, notesIdx)
	assert.Less(t, srcIdx, toolsIdx)
}

func TestLoader_AggressiveModeOnLargeRepo(t *testing.T) {
	zr := buildZip(t, map[string]string{
		"src/main.py":   "print('main')\n",
		"docs/guide.md": "# Guide\n",
	})

	limits := DefaultLimits()
	limits.LargeRepoThreshold = 10 // 合計サイズが必ず超える値
	loader := NewLoader(WithLimits(limits), WithLoaderLogger(testLogger()))

	result, err := loader.LoadZipReader(zr, "owner/repo")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Stats.FilesProcessed)
	assert.NotContains(t, result.Context, "docs/guide.md")
}

func TestLoader_EstimatesTokensWithoutCounter(t *testing.T) {
	zr := buildZip(t, map[string]string{
		"src/main.py": "print('main')\n",
	})

	loader := NewLoader(WithLoaderLogger(testLogger()))
	result, err := loader.LoadZipReader(zr, "owner/repo")
	require.NoError(t, err)

	assert.Equal(t, len(result.Context)/4, result.Stats.EstimatedTokens)
	assert.Equal(t, len(result.Context), result.Stats.TotalCharacters)
}

func TestLoader_CollectsLanguageStats(t *testing.T) {
	zr := buildZip(t, map[string]string{
		"src/main.py":  "def main():\n    pass\n",
		"src/other.py": "x = 1\n",
		"cmd/main.go":  "package main\n\nfunc main() {}\n",
	})

	loader := NewLoader(WithLoaderLogger(testLogger()))
	result, err := loader.LoadZipReader(zr, "owner/repo")
	require.NoError(t, err)

	assert.Equal(t, 2, result.Stats.Languages["Python"])
	assert.Equal(t, 1, result.Stats.Languages["Go"])
}
