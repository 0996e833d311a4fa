package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// IgnoreFilter は .gitignore と .codeatlasignore のパターンマッチングを提供します
type IgnoreFilter struct {
	patterns *gitignore.GitIgnore
}

// NewIgnoreFilter は新しいIgnoreFilterを作成します
// rootDir 配下の .gitignore と .codeatlasignore を読み込みます
func NewIgnoreFilter(rootDir string) (*IgnoreFilter, error) {
	var patterns []string

	for _, name := range []string{".gitignore", ".codeatlasignore"} {
		ignorePath := filepath.Join(rootDir, name)
		if _, err := os.Stat(ignorePath); err != nil {
			continue
		}
		filePatterns, err := readIgnoreFile(ignorePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		patterns = append(patterns, filePatterns...)
	}

	var matcher *gitignore.GitIgnore
	if len(patterns) > 0 {
		matcher = gitignore.CompileIgnoreLines(patterns...)
	}

	return &IgnoreFilter{patterns: matcher}, nil
}

// ShouldIgnore はパスが除外対象かどうかを判定します
func (f *IgnoreFilter) ShouldIgnore(path string) bool {
	if f == nil || f.patterns == nil {
		return false
	}
	return f.patterns.MatchesPath(path)
}

// readIgnoreFile は ignore ファイルを読み込んでパターンのスライスを返します
func readIgnoreFile(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var patterns []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimRight(line, "\r")
		// 空行とコメント行をスキップ
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}

	return patterns, nil
}
