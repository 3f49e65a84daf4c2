package docx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRegistryAllocateAndMerge(t *testing.T) {
	r := newCommentRegistry()
	id := r.Allocate("Author", "2024-01-01T00:00:00Z", "first note")
	assert.Equal(t, 1, id)
	r.Merge(id, "second note")

	xml := r.XML()
	assert.True(t, strings.Contains(xml, "first note\nsecond note"))
	assert.True(t, strings.Contains(xml, `w:author="Author"`))
}

func TestCommentRegistryEscapesAmpersand(t *testing.T) {
	r := newCommentRegistry()
	r.Allocate("A & B", "2024-01-01T00:00:00Z", "x < y & z")
	xml := r.XML()
	assert.True(t, strings.Contains(xml, "A &amp; B"))
	assert.True(t, strings.Contains(xml, "x &lt; y &amp; z"))
}

func TestCommentRegistryEmpty(t *testing.T) {
	r := newCommentRegistry()
	assert.True(t, r.Empty())
	r.Allocate("A", "d", "t")
	assert.False(t, r.Empty())
}

func TestParseCommentsRoundTrip(t *testing.T) {
	r := newCommentRegistry()
	r.Allocate("Reviewer", "2024-02-02T00:00:00Z", "looks good")
	data := []byte(r.XML())

	parsed := parseComments(data)
	require.Contains(t, parsed, 1)
	assert.Equal(t, "looks good", parsed[1])
}

func TestParseCommentsEmptyInput(t *testing.T) {
	parsed := parseComments(nil)
	assert.Empty(t, parsed)
}
