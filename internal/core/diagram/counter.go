package diagram

import (
	"regexp"
	"strings"
)

var (
	// edgePattern は引用符付き・裸のノード名の両方に対応した有向エッジ
	edgePattern = regexp.MustCompile(`(?:"[^"]+"|\w+)\s*->\s*(?:"[^"]+"|\w+)`)

	// quotedDefPattern は属性ブラケット付きの引用符ノード定義: "Node Name" [...]
	quotedDefPattern = regexp.MustCompile(`(?m)^\s*"([^"]+)"\s*\[`)

	// bareDefPattern は属性ブラケット付きの裸ノード定義: NodeName [...]
	bareDefPattern = regexp.MustCompile(`(?m)^\s*(\w+)\s*\[`)

	// edgeNodesPattern はエッジの両端のノード名を抽出する
	edgeNodesPattern = regexp.MustCompile(`(?:"([^"]+)"|(\w+))\s*->\s*(?:"([^"]+)"|(\w+))`)
)

// reservedKeywords はノード名として数えないDOTの予約語・属性名
var reservedKeywords = map[string]struct{}{
	"digraph": {}, "graph": {}, "subgraph": {}, "node": {}, "edge": {},
	"rankdir": {}, "splines": {}, "nodesep": {}, "ranksep": {},
	"label": {}, "style": {}, "shape": {}, "color": {}, "fillcolor": {},
	"fontname": {}, "fontsize": {}, "margin": {}, "pad": {},
	"width": {}, "height": {}, "arrowsize": {}, "cluster": {},
	"tb": {}, "lr": {}, "bt": {}, "rl": {},
}

// CountNodesEdges はDOTソース中のノード数とエッジ数を数える。
// 統計表示用であり、描画の正しさには関与しない。行の並び順に依存しない。
func CountNodesEdges(dotSource string) (nodes, edges int) {
	edges = len(edgePattern.FindAllString(dotSource, -1))

	nodeSet := make(map[string]struct{})

	for _, m := range quotedDefPattern.FindAllStringSubmatch(dotSource, -1) {
		nodeSet[m[1]] = struct{}{}
	}

	for _, m := range bareDefPattern.FindAllStringSubmatch(dotSource, -1) {
		addNode(nodeSet, m[1])
	}

	for _, m := range edgeNodesPattern.FindAllStringSubmatch(dotSource, -1) {
		// 各マッチは (quoted_src, bare_src, quoted_dst, bare_dst)
		src := m[1]
		if src == "" {
			src = m[2]
		}
		dst := m[3]
		if dst == "" {
			dst = m[4]
		}
		addNode(nodeSet, src)
		addNode(nodeSet, dst)
	}

	return len(nodeSet), edges
}

// addNode は予約語と純粋な数値を除外してノード集合に追加する
func addNode(set map[string]struct{}, name string) {
	if name == "" {
		return
	}
	if _, ok := reservedKeywords[strings.ToLower(name)]; ok {
		return
	}
	if isNumeric(name) {
		return
	}
	set[name] = struct{}{}
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
