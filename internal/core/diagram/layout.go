package diagram

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	rankdirPattern = regexp.MustCompile(`rankdir\s*=\s*\w+\s*;?`)
	splinesPattern = regexp.MustCompile(`splines\s*=\s*\w+\s*;?`)
	nodesepPattern = regexp.MustCompile(`nodesep\s*=\s*[\d.]+\s*;?`)
	ranksepPattern = regexp.MustCompile(`ranksep\s*=\s*[\d.]+\s*;?`)
)

// ApplyLayout は既存のレイアウト宣言を取り除き、指定されたLayoutOptionsを
// コンテナの開き括弧直後にグローバル宣言として注入する。
func ApplyLayout(dotSource string, layout LayoutOptions) string {
	dotSource = rankdirPattern.ReplaceAllString(dotSource, "")
	dotSource = splinesPattern.ReplaceAllString(dotSource, "")
	dotSource = nodesepPattern.ReplaceAllString(dotSource, "")
	dotSource = ranksepPattern.ReplaceAllString(dotSource, "")

	settings := fmt.Sprintf(`
    rankdir=%s;
    splines=%s;
    nodesep=%g;
    ranksep=%g;
    pad=0.5;
    node [shape=box, style="rounded,filled", fontname="Helvetica", fontsize=12, width=2.0, height=0.6, margin="0.2,0.1"];
    edge [fontname="Helvetica", fontsize=10, arrowsize=0.8];
`, layout.Direction, layout.Splines, layout.NodeSep, layout.RankSep)

	dotSource = strings.Replace(dotSource, "{", "{"+settings, 1)

	// orthoはインラインのエッジラベルを確実に描画できないため外部ラベルに変換する
	if layout.Splines == SplinesOrtho {
		lines := strings.Split(dotSource, "\n")
		for i, line := range lines {
			if strings.Contains(line, "->") && strings.Contains(line, "label=") && !strings.Contains(line, "xlabel=") {
				lines[i] = strings.ReplaceAll(line, "label=", "xlabel=")
			}
		}
		dotSource = strings.Join(lines, "\n")
	}

	return dotSource
}
