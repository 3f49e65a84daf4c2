package mdtoken

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInlineCriticInsertion(t *testing.T) {
	runs := parseInline("a {++new++} b", Options{})
	require.Len(t, runs, 3)
	assert.Equal(t, RunCriticIns, runs[1].Kind)
	require.Len(t, runs[1].Children, 1)
	assert.Equal(t, "new", runs[1].Children[0].Text)
}

func TestParseInlineCriticSubstitution(t *testing.T) {
	runs := parseInline("{~~old~>new~~}", Options{})
	require.Len(t, runs, 1)
	assert.Equal(t, RunCriticSub, runs[0].Kind)
	require.Len(t, runs[0].Old, 1)
	require.Len(t, runs[0].New, 1)
	assert.Equal(t, "old", runs[0].Old[0].Text)
	assert.Equal(t, "new", runs[0].New[0].Text)
}

func TestParseInlineHighlightWithColor(t *testing.T) {
	runs := parseInline("==important=={red}", Options{})
	require.Len(t, runs, 1)
	assert.True(t, runs[0].Highlight)
	assert.Equal(t, "red", runs[0].Color)
	assert.Equal(t, "important", runs[0].Text)
}

func TestParseInlineHighlightDefaultColor(t *testing.T) {
	runs := parseInline("==text==", Options{})
	require.Len(t, runs, 1)
	assert.True(t, runs[0].Highlight)
	assert.Equal(t, "yellow", runs[0].Color)
}

func TestParseInlineStandaloneComment(t *testing.T) {
	runs := parseInline("{>>a note<<}", Options{})
	require.Len(t, runs, 1)
	assert.Equal(t, RunCriticComment, runs[0].Kind)
}

func TestParseInlineCommentAttachesToPrecedingHighlight(t *testing.T) {
	runs := parseInline("==flagged=={>>why<<}", Options{})
	require.Len(t, runs, 1)
	require.Equal(t, RunCriticComment, runs[0].Kind)
	require.Len(t, runs[0].Anchor, 1)
	assert.True(t, runs[0].Anchor[0].Highlight)
}

func TestParseInlineCommentWithAuthorDatePrefix(t *testing.T) {
	runs := parseInline("{>>Ada (2024-01-05 09:30): why<<}", Options{})
	require.Len(t, runs, 1)
	require.Equal(t, RunCriticComment, runs[0].Kind)
	assert.Equal(t, "Ada", runs[0].Author)
	assert.Equal(t, "2024-01-05 09:30", runs[0].Date)
	require.Len(t, runs[0].Children, 1)
	assert.Equal(t, "why", runs[0].Children[0].Text)
}

func TestParseInlineCommentWithoutPrefixLeavesAuthorDateEmpty(t *testing.T) {
	runs := parseInline("{>>just text<<}", Options{})
	require.Len(t, runs, 1)
	assert.Equal(t, "", runs[0].Author)
	assert.Equal(t, "", runs[0].Date)
	require.Len(t, runs[0].Children, 1)
	assert.Equal(t, "just text", runs[0].Children[0].Text)
}

func TestParseInlineInlineMath(t *testing.T) {
	runs := parseInline("$x^2$", Options{})
	require.Len(t, runs, 1)
	assert.Equal(t, RunInlineMath, runs[0].Kind)
	assert.Equal(t, "x^2", runs[0].Latex)
}

func TestParseInlineInlineCode(t *testing.T) {
	runs := parseInline("`code`", Options{})
	require.Len(t, runs, 1)
	assert.True(t, runs[0].Code)
	assert.Equal(t, "code", runs[0].Text)
}

func TestParseInlineHTMLComment(t *testing.T) {
	runs := parseInline("hi <!-- hidden --> there", Options{})
	var found bool
	for _, r := range runs {
		if r.Kind == RunHtmlComment {
			found = true
			assert.Equal(t, "hidden", r.Latex)
		}
	}
	assert.True(t, found)
}

func TestParseInlineCitation(t *testing.T) {
	runs := parseInline("see [@smith2020, p. 20; -@jones2019]", Options{})
	var cite *Run
	for i := range runs {
		if runs[i].Kind == RunCitation {
			cite = &runs[i]
		}
	}
	require.NotNil(t, cite)
	require.Len(t, cite.Items, 2)
	assert.Equal(t, "smith2020", cite.Items[0].Key)
	assert.Equal(t, "p. 20", cite.Items[0].Locator)
	assert.False(t, cite.Items[0].SuppressAuthor)
	assert.Equal(t, "jones2019", cite.Items[1].Key)
	assert.True(t, cite.Items[1].SuppressAuthor)
}

func TestParseInlineBoldAndItalicViaGomarkdown(t *testing.T) {
	runs := parseInline("**bold** and *italic*", Options{})
	var boldFound, italicFound bool
	for _, r := range runs {
		if r.Kind == RunText && r.Bold {
			boldFound = true
		}
		if r.Kind == RunText && r.Italic {
			italicFound = true
		}
	}
	assert.True(t, boldFound)
	assert.True(t, italicFound)
}

func TestParseInlineLink(t *testing.T) {
	runs := parseInline("[text](http://example.com)", Options{})
	var link *Run
	for i := range runs {
		if runs[i].Kind == RunLink {
			link = &runs[i]
		}
	}
	require.NotNil(t, link)
	assert.Equal(t, "http://example.com", link.URL)
}
