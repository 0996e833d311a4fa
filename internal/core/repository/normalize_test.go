package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeContent_CollapsesBlankRuns(t *testing.T) {
	input := "a\n\n\n\n\n\nb"

	got := NormalizeContent(input)

	assert.Equal(t, "a\n\n\nb", got)
}

func TestNormalizeContent_StripsTrailingWhitespace(t *testing.T) {
	input := "func main() {  \n\tdoWork() \t\r\n}\n"

	got := NormalizeContent(input)

	assert.Equal(t, "func main() {\n\tdoWork()\n}", got)
}

func TestNormalizeContent_KeepsShortBlankRuns(t *testing.T) {
	input := "a\n\n\nb"

	got := NormalizeContent(input)

	assert.Equal(t, "a\n\n\nb", got)
}

func TestDecodeBytes_DropsInvalidUTF8(t *testing.T) {
	input := []byte{'o', 'k', 0xff, 0xfe, '!'}

	got := DecodeBytes(input)

	assert.Equal(t, "ok!", got)
}

func TestPriorityKey(t *testing.T) {
	srcGroup, srcDepth := priorityKey("src/core/engine.py")
	rootGroup, rootDepth := priorityKey("notes.md")

	assert.Equal(t, 0, srcGroup)
	assert.Equal(t, 2, srcDepth)
	assert.Equal(t, 1, rootGroup)
	assert.Equal(t, 0, rootDepth)
}
