package diagram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyLayout_InjectsSettings(t *testing.T) {
	layout := DefaultLayout()
	layout.Direction = DirectionLeftRight

	got := ApplyLayout("digraph G {\n    A -> B;\n}", layout)

	assert.Contains(t, got, "rankdir=LR;")
	assert.Contains(t, got, "splines=polyline;")
	assert.Contains(t, got, "nodesep=0.5;")
	assert.Contains(t, got, "ranksep=0.75;")
	assert.Contains(t, got, `node [shape=box`)
}

func TestApplyLayout_ReplacesExistingDeclarations(t *testing.T) {
	input := "digraph G {\n    rankdir=BT;\n    splines=line;\n    A -> B;\n}"
	layout := DefaultLayout()

	got := ApplyLayout(input, layout)

	assert.Equal(t, 1, strings.Count(got, "rankdir="))
	assert.Equal(t, 1, strings.Count(got, "splines="))
	assert.Contains(t, got, "rankdir=TB;")
	assert.NotContains(t, got, "rankdir=BT")
}

func TestApplyLayout_InjectsAfterFirstBrace(t *testing.T) {
	got := ApplyLayout("digraph G {\n    subgraph cluster_a {\n        A -> B;\n    }\n}", DefaultLayout())

	// グローバル宣言は最初の開き括弧の直後にのみ入る
	idx := strings.Index(got, "rankdir=")
	braceIdx := strings.Index(got, "{")
	assert.Greater(t, idx, braceIdx)
	assert.Equal(t, 1, strings.Count(got, "rankdir="))
}

func TestApplyLayout_OrthoConvertsEdgeLabels(t *testing.T) {
	input := "digraph G {\n    A -> B [label=\"calls\"];\n    C [label=\"node label\"];\n}"
	layout := DefaultLayout()
	layout.Splines = SplinesOrtho

	got := ApplyLayout(input, layout)

	assert.Contains(t, got, `A -> B [xlabel="calls"];`)
	// ノード自身のラベルは変換しない
	assert.Contains(t, got, `C [label="node label"];`)
}

func TestDirectionFromLabel(t *testing.T) {
	assert.Equal(t, DirectionTopDown, DirectionFromLabel("Top → Down"))
	assert.Equal(t, DirectionLeftRight, DirectionFromLabel("Left → Right"))
	assert.Equal(t, DirectionTopDown, DirectionFromLabel("unknown"))
}
