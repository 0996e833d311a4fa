package repository

import (
	"regexp"
	"strings"
)

var blankLinesPattern = regexp.MustCompile(`\n{4,}`)

// NormalizeContent はファイル内容を整形する。
// 4行以上連続する空行を2行に縮め、各行の末尾空白を取り除く。
func NormalizeContent(content string) string {
	content = blankLinesPattern.ReplaceAllString(content, "\n\n\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// DecodeBytes はバイト列を寛容にデコードする。不正なUTF-8シーケンスは捨てる。
func DecodeBytes(b []byte) string {
	return strings.ToValidUTF8(string(b), "")
}

// priorityDirs は採用を優先する慣習的なソースディレクトリ
var priorityDirs = []string{"src/", "lib/", "core/", "app/", "pkg/"}

// priorityKey はパスの採用優先度を返す。慣習的なソースディレクトリ配下を
// 優先し、同グループ内では浅い階層が先になる。コンテキスト上限に達したときに
// アーキテクチャ上重要なファイルが先に採用されるようにするためのバイアス。
func priorityKey(p string) (group, depth int) {
	depth = strings.Count(p, "/")
	lower := strings.ToLower(p)
	for _, dir := range priorityDirs {
		if strings.Contains(lower, dir) {
			return 0, depth
		}
	}
	return 1, depth
}
