package diagram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepare_RemovesCodeFence(t *testing.T) {
	input := "```dot\ndigraph G {\n    A -> B;\n}\n```"

	got := Prepare(input)

	assert.Equal(t, "digraph G {\n    A -> B;\n}", got)
}

func TestPrepare_WrapsBareStatements(t *testing.T) {
	got := Prepare("A -> B;")

	assert.Equal(t, "digraph G {\nA -> B;\n}", got)
}

func TestPrepare_Idempotent(t *testing.T) {
	inputs := []string{
		"```graphviz\ndigraph G {\nA -> B;\n}\n```",
		"A -> B;",
		"digraph CodeArchitecture {\n    X -> Y;\n}",
	}

	for _, input := range inputs {
		once := Prepare(input)
		twice := Prepare(once)
		assert.Equal(t, once, twice)
	}
}

func TestPrepare_DoesNotDoubleWrap(t *testing.T) {
	got := Prepare(Prepare("A -> B;"))

	assert.Equal(t, 1, strings.Count(got, "digraph"))
}

func TestSanitize_BalancesMissingBraces(t *testing.T) {
	input := "digraph G {\n    subgraph cluster_api {\n        A -> B;"

	got, err := Sanitize(input)
	require.NoError(t, err)

	assert.Equal(t, strings.Count(got, "{"), strings.Count(got, "}"))
	assert.True(t, strings.HasSuffix(got, "}}"))
}

func TestSanitize_BalancedInputUnchanged(t *testing.T) {
	input := "digraph G {\n    A -> B;\n}"

	got, err := Sanitize(input)
	require.NoError(t, err)

	assert.Equal(t, input, got)
}

func TestSanitize_RateLimitedErrorDetected(t *testing.T) {
	cases := []string{
		"Error: 429 Too Many Requests",
		"Error: RESOURCE_EXHAUSTED",
		"Error: quota exceeded for this project",
	}

	for _, input := range cases {
		_, err := Sanitize(input)
		assert.ErrorIs(t, err, ErrRateLimited, input)
	}
}

func TestSanitize_PlainErrorTextIsNotRateLimit(t *testing.T) {
	// "Error"という単語だけではレート制限とみなさない
	got, err := Sanitize("digraph G {\n    ErrorHandler -> Logger;\n}")
	require.NoError(t, err)
	assert.Contains(t, got, "ErrorHandler")
}

func TestSanitize_DropsDanglingEdgeAtTail(t *testing.T) {
	input := "digraph G {\n    A -> B;\n    C ->\n}"

	got, err := Sanitize(input)
	require.NoError(t, err)

	assert.NotContains(t, got, "C ->")
	assert.Contains(t, got, "A -> B;")
}

func TestSanitize_ClosesUnterminatedQuoteAtTail(t *testing.T) {
	input := "digraph G {\n    A [label=\"unterminated\n}"

	got, err := Sanitize(input)
	require.NoError(t, err)

	assert.Contains(t, got, `unterminated"];`)
	assert.Equal(t, 0, strings.Count(got, `"`)%2)
}

func TestSanitize_RemovesInlineTags(t *testing.T) {
	input := "digraph G {\n    A [label=\"uses <b>cache</b>\"];\n    A -> B;\n}"

	got, err := Sanitize(input)
	require.NoError(t, err)

	assert.NotContains(t, got, "<b>")
	assert.NotContains(t, got, "</b>")
	assert.Contains(t, got, "cache")
}

func TestSanitize_DoesNotTouchBodyLines(t *testing.T) {
	// 末尾3行より前の行は引用符が奇数でも修復しない
	input := "digraph G {\n    A [label=\"broken\n    B [label=\"fine\"];\n    C -> D;\n    D -> E;\n    E -> F;\n}"

	got, err := Sanitize(input)
	require.NoError(t, err)

	assert.Contains(t, got, "A [label=\"broken\n")
	assert.NotContains(t, got, `broken"];`)
}
