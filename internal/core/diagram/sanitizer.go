package diagram

import (
	"fmt"
	"regexp"
	"strings"
)

// rateLimitMarkers はエラー応答がレート制限由来であることを示す文字列
var rateLimitMarkers = []string{"429", "RESOURCE_EXHAUSTED", "quota"}

// inlineTagPattern はGraphvizが解釈できないインラインの山括弧タグ
var inlineTagPattern = regexp.MustCompile(`<[^>]+>`)

// Prepare はモデル出力からマークダウンのコードフェンスを取り除き、
// グラフ宣言がない場合はdigraphでラップする。この処理は冪等で、
// 2回適用しても結果は変わらない。
func Prepare(dotSource string) string {
	dotSource = strings.TrimSpace(dotSource)

	// 先頭・末尾のコードフェンスを除去（言語タグは問わない）
	if strings.HasPrefix(dotSource, "```") {
		lines := strings.Split(dotSource, "\n")
		lines = lines[1:]
		if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
			lines = lines[:len(lines)-1]
		}
		dotSource = strings.Join(lines, "\n")
	}

	// グラフ宣言がなければ全体をラップする
	if !strings.Contains(dotSource, "digraph") && !strings.Contains(dotSource, "graph") {
		dotSource = fmt.Sprintf("digraph G {\n%s\n}", dotSource)
	}

	return dotSource
}

// Sanitize はモデル出力のDOTソースによくある構造的な欠損を修復する。
// 行単位の単一パスで、開き括弧の不足を補い、インラインタグを除去し、
// 末尾3行に限って不完全なエッジと閉じ忘れの引用符を修復する。
// 閉じ括弧の過剰（負のバランス）は補正しない。
func Sanitize(dotSource string) (string, error) {
	// ダイアグラムの代わりにエラー応答が紛れ込んでいる場合は修復しない
	if strings.Contains(dotSource, "Error") {
		for _, marker := range rateLimitMarkers {
			if strings.Contains(dotSource, marker) {
				return "", ErrRateLimited
			}
		}
	}

	lines := strings.Split(dotSource, "\n")
	sanitized := make([]string, 0, len(lines))
	braceCount := 0

	for i, line := range lines {
		stripped := strings.TrimSpace(line)
		if stripped == "" || strings.HasPrefix(stripped, "//") || strings.HasPrefix(stripped, "#") {
			sanitized = append(sanitized, line)
			continue
		}

		braceCount += strings.Count(line, "{") - strings.Count(line, "}")

		// Graphvizが解釈できないHTML風のタグを除去する
		line = inlineTagPattern.ReplaceAllString(line, "")

		// 末尾3行のみ: 途切れたエッジと引用符を修復する
		if i >= len(lines)-3 {
			if strings.HasSuffix(stripped, "->") {
				continue
			}
			if strings.Contains(stripped, "->") && !strings.HasSuffix(stripped, ";") && !strings.Contains(stripped, "[") {
				if parts := strings.Split(stripped, "->"); len(parts) == 2 && strings.TrimSpace(parts[1]) == "" {
					continue
				}
			}
			if strings.Count(stripped, `"`)%2 == 1 {
				line = strings.TrimRight(line, " \t") + `"];`
			}
		}

		sanitized = append(sanitized, line)
	}

	result := strings.Join(sanitized, "\n")

	// 開き括弧の不足分だけ閉じ括弧を追記する
	if braceCount > 0 {
		result += "\n" + strings.Repeat("}", braceCount)
	}

	return result, nil
}
