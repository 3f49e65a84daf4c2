package inertzone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInlineCode(t *testing.T) {
	idx := Build("a `{++code++}` b")
	assert.True(t, idx.IsInside(3))  // inside the backticks
	assert.False(t, idx.IsInside(0)) // 'a'
	assert.False(t, idx.IsInside(len("a `{++code++}` b")-1))
}

func TestFencedCodeBlock(t *testing.T) {
	text := "```\n{++added++}\n```\nafter"
	idx := Build(text)
	assert.True(t, idx.IsInside(4)) // inside the fence
	afterIdx := len(text) - 1
	assert.False(t, idx.IsInside(afterIdx))
}

func TestFencedCodeRequiresLongerOrEqualCloser(t *testing.T) {
	text := "````\n``\nstill code\n````\nout"
	idx := Build(text)
	assert.True(t, idx.IsInside(10))
	assert.False(t, idx.IsInside(len(text)-1))
}

func TestInlineMathRejectsDigitPrefix(t *testing.T) {
	idx := Build("price is 5$ not math")
	assert.False(t, idx.IsInside(11))
}

func TestInlineMathRejectsFollowingSpace(t *testing.T) {
	idx := Build("a $ b$ c")
	assert.False(t, idx.IsInside(2))
}

func TestBlockMath(t *testing.T) {
	text := "$$\nx^2 + y^2\n$$"
	idx := Build(text)
	assert.True(t, idx.IsInside(5))
	span, ok := idx.SpanAt(5)
	assert.True(t, ok)
	assert.Equal(t, MathBlock, span.Kind)
}

func TestInlineMathSimple(t *testing.T) {
	idx := Build("the value $x^2$ here")
	assert.True(t, idx.IsInside(11))
	assert.False(t, idx.IsInside(0))
}

func TestCodeSpanInsideFenceIsFencedNotDouble(t *testing.T) {
	text := "```\n`not inline code here`\n```"
	idx := Build(text)
	// Entire region should be one FencedCode span, not broken up.
	span, ok := idx.SpanAt(5)
	assert.True(t, ok)
	assert.Equal(t, FencedCode, span.Kind)
}
