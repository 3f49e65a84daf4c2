package mdtoken

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeHeadingAndParagraph(t *testing.T) {
	blocks, warnings := Tokenize("# Title\n\nSome text.\n", Options{})
	assert.Empty(t, warnings)
	require.Len(t, blocks, 2)
	assert.Equal(t, KindHeading, blocks[0].Kind)
	assert.Equal(t, 1, blocks[0].Level)
	assert.Equal(t, KindParagraph, blocks[1].Kind)
}

func TestTokenizeHorizontalRule(t *testing.T) {
	blocks, _ := Tokenize("text\n\n---\n\nmore\n", Options{})
	require.Len(t, blocks, 3)
	assert.Equal(t, KindHorizontalRule, blocks[1].Kind)
}

func TestTokenizeFencedCodeBlock(t *testing.T) {
	blocks, _ := Tokenize("```go\nfmt.Println(1)\n```\n", Options{})
	require.Len(t, blocks, 1)
	assert.Equal(t, KindCodeBlock, blocks[0].Kind)
	assert.Equal(t, "go", blocks[0].Lang)
	assert.Equal(t, "fmt.Println(1)", blocks[0].Text)
}

func TestTokenizeMathBlock(t *testing.T) {
	blocks, _ := Tokenize("$$\nx^2 + y^2 = z^2\n$$\n", Options{})
	require.Len(t, blocks, 1)
	assert.Equal(t, KindMathBlock, blocks[0].Kind)
	assert.Equal(t, "x^2 + y^2 = z^2", blocks[0].Latex)
}

func TestTokenizeBlockquoteAndCallout(t *testing.T) {
	blocks, _ := Tokenize("> [!NOTE]\n> Heads up.\n", Options{})
	require.Len(t, blocks, 1)
	require.Equal(t, KindBlockquote, blocks[0].Kind)
	assert.Equal(t, "NOTE", blocks[0].CalloutKind)
	require.Len(t, blocks[0].Children, 1)
}

func TestTokenizeList(t *testing.T) {
	blocks, _ := Tokenize("- one\n- two\n- three\n", Options{})
	require.Len(t, blocks, 1)
	require.Equal(t, KindList, blocks[0].Kind)
	assert.False(t, blocks[0].Ordered)
	assert.True(t, blocks[0].Tight)
	require.Len(t, blocks[0].Items, 3)
}

func TestTokenizeOrderedList(t *testing.T) {
	blocks, _ := Tokenize("1. one\n2. two\n", Options{})
	require.Len(t, blocks, 1)
	assert.True(t, blocks[0].Ordered)
}

func TestTokenizeTable(t *testing.T) {
	src := "| A | B |\n| --- | ---: |\n| 1 | 2 |\n"
	blocks, _ := Tokenize(src, Options{})
	require.Len(t, blocks, 1)
	require.Equal(t, KindTable, blocks[0].Kind)
	require.Len(t, blocks[0].Headers, 2)
	require.Len(t, blocks[0].Rows, 1)
	assert.Equal(t, AlignRight, blocks[0].Alignments[1])
}

func TestTokenizeHtmlBlockComment(t *testing.T) {
	blocks, _ := Tokenize("<!-- a block comment -->\n", Options{})
	require.Len(t, blocks, 1)
	assert.Equal(t, KindHtmlBlockComment, blocks[0].Kind)
}

func TestTokenizeHtmlTable(t *testing.T) {
	blocks, _ := Tokenize("<table><tr><td>x</td></tr></table>\n", Options{})
	require.Len(t, blocks, 1)
	assert.Equal(t, KindHtmlTable, blocks[0].Kind)
}
