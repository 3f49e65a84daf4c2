package docx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scimark/internal/bibtex"
	"scimark/internal/mdtoken"
)

func TestDecodeXMLNodeBasic(t *testing.T) {
	n, err := decodeXMLNode([]byte(`<a x="1"><b>hi</b></a>`))
	require.NoError(t, err)
	assert.Equal(t, "a", n.name)
	assert.Equal(t, "1", n.attrs["x"])
	require.Len(t, n.children, 1)
	assert.Equal(t, "b", n.children[0].name)
	assert.Equal(t, "hi", n.children[0].text)
}

func TestQualifiedNameDropsNamespace(t *testing.T) {
	doc := `<w:p xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:r w:id="3"/></w:p>`
	n, err := decodeXMLNode([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "p", n.name)
	require.Len(t, n.children, 1)
	assert.Equal(t, "r", n.children[0].name)
	assert.Equal(t, "3", n.children[0].attrs["id"])
}

func TestParseIntOr(t *testing.T) {
	assert.Equal(t, 42, parseIntOr("42", -1))
	assert.Equal(t, 0, parseIntOr("0", -1))
	assert.Equal(t, -1, parseIntOr("abc", -1))
	assert.Equal(t, -1, parseIntOr("", -1))
}

func TestRecoverHiddenHTMLComment(t *testing.T) {
	got := recoverHiddenHTMLComment("​<!-- a note -->")
	assert.Equal(t, "<!-- a note -->", got)
}

func TestRoundTripParagraphAndHeading(t *testing.T) {
	blocks := []mdtoken.Block{
		{Kind: mdtoken.KindHeading, Level: 2, Runs: []mdtoken.Run{{Kind: mdtoken.RunText, Text: "Section"}}},
		{Kind: mdtoken.KindParagraph, Runs: []mdtoken.Run{{Kind: mdtoken.RunText, Text: "Body text", Bold: true}}},
	}
	out, _, err := Write(blocks, mdtoken.Frontmatter{}, nil, Options{Now: fixedNow})
	require.NoError(t, err)

	md, _, warnings, err := Read(out, Options{})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Contains(t, md, "## Section")
	assert.Contains(t, md, "**Body text**")
}

func TestRoundTripCriticMarkup(t *testing.T) {
	blocks := []mdtoken.Block{
		{Kind: mdtoken.KindParagraph, Runs: []mdtoken.Run{
			{Kind: mdtoken.RunCriticIns, Children: []mdtoken.Run{{Kind: mdtoken.RunText, Text: "added"}}},
			{Kind: mdtoken.RunCriticDel, Children: []mdtoken.Run{{Kind: mdtoken.RunText, Text: "removed"}}},
		}},
	}
	out, _, err := Write(blocks, mdtoken.Frontmatter{}, nil, Options{Now: fixedNow})
	require.NoError(t, err)

	md, _, _, err := Read(out, Options{})
	require.NoError(t, err)
	assert.Contains(t, md, "{++added++}")
	assert.Contains(t, md, "{--removed--}")
}

func TestRoundTripHiddenHTMLComment(t *testing.T) {
	blocks := []mdtoken.Block{
		{Kind: mdtoken.KindParagraph, Runs: []mdtoken.Run{{Kind: mdtoken.RunHtmlComment, Latex: "secret note"}}},
	}
	out, _, err := Write(blocks, mdtoken.Frontmatter{}, nil, Options{Now: fixedNow})
	require.NoError(t, err)

	md, _, _, err := Read(out, Options{})
	require.NoError(t, err)
	assert.Contains(t, md, "<!-- secret note -->")
}

func TestRoundTripZoteroCitationRecoversBibEntry(t *testing.T) {
	store := bibtex.NewStore()
	e := bibtex.NewEntry("smith2020", bibtex.EntryArticle)
	e.Set(bibtex.FieldAuthor, "Smith, John")
	e.Set(bibtex.FieldYear, "2020")
	e.Set(bibtex.FieldTitle, "A Study")
	e.Set(bibtex.FieldZoteroKey, "ABCD1234")
	e.Set(bibtex.FieldZoteroURI, "http://zotero.org/users/1/items/ABCD1234")
	store.Insert(e)

	blocks := []mdtoken.Block{
		{Kind: mdtoken.KindParagraph, Runs: []mdtoken.Run{
			{Kind: mdtoken.RunCitation, Items: []mdtoken.CitationItem{{Key: "smith2020", Locator: "p. 20"}}},
		}},
	}
	out, _, err := Write(blocks, mdtoken.Frontmatter{}, store, Options{Now: fixedNow})
	require.NoError(t, err)

	md, readStore, _, err := Read(out, Options{})
	require.NoError(t, err)
	assert.Contains(t, md, "p. 20")
	require.Equal(t, 1, readStore.Len())
	// Read recovers the bibliography from the Zotero field-code payload
	// alone and does not reuse the payload's item id (the writer's key): it
	// generates a key from the CSL item data.
	got := readStore.Entries()[0]
	require.NotNil(t, got)
	assert.Contains(t, md, "@"+got.Key)
	assert.Equal(t, "ABCD1234", got.Field(bibtex.FieldZoteroKey))
}

func TestRoundTripAnchoredCommentUsesDirectSyntax(t *testing.T) {
	blocks := []mdtoken.Block{
		{Kind: mdtoken.KindParagraph, Runs: []mdtoken.Run{
			{
				Kind:     mdtoken.RunCriticComment,
				Anchor:   []mdtoken.Run{{Kind: mdtoken.RunText, Text: "flagged"}},
				Children: []mdtoken.Run{{Kind: mdtoken.RunText, Text: "why"}},
			},
		}},
	}
	out, _, err := Write(blocks, mdtoken.Frontmatter{}, nil, Options{Now: fixedNow})
	require.NoError(t, err)

	md, _, _, err := Read(out, Options{})
	require.NoError(t, err)
	assert.Contains(t, md, "{==flagged==}{>>why<<}")
	assert.NotContains(t, md, "{##c")
}

func TestRoundTripStandaloneCommentUsesDirectSyntax(t *testing.T) {
	blocks := []mdtoken.Block{
		{Kind: mdtoken.KindParagraph, Runs: []mdtoken.Run{
			{Kind: mdtoken.RunCriticComment, Children: []mdtoken.Run{{Kind: mdtoken.RunText, Text: "a remark"}}},
		}},
	}
	out, _, err := Write(blocks, mdtoken.Frontmatter{}, nil, Options{Now: fixedNow})
	require.NoError(t, err)

	md, _, _, err := Read(out, Options{})
	require.NoError(t, err)
	assert.Contains(t, md, "{>>a remark<<}")
	assert.NotContains(t, md, "{==")
	assert.NotContains(t, md, "{##c")
}

func TestRoundTripTable(t *testing.T) {
	blocks := []mdtoken.Block{
		{
			Kind: mdtoken.KindTable,
			Headers: []mdtoken.Run{
				{Kind: mdtoken.RunText, Children: []mdtoken.Run{{Kind: mdtoken.RunText, Text: "A"}}},
				{Kind: mdtoken.RunText, Children: []mdtoken.Run{{Kind: mdtoken.RunText, Text: "B"}}},
			},
			Rows: [][]mdtoken.Run{
				{
					{Kind: mdtoken.RunText, Children: []mdtoken.Run{{Kind: mdtoken.RunText, Text: "1"}}},
					{Kind: mdtoken.RunText, Children: []mdtoken.Run{{Kind: mdtoken.RunText, Text: "2"}}},
				},
			},
			Alignments: []mdtoken.Alignment{mdtoken.AlignNone, mdtoken.AlignNone},
		},
	}
	out, _, err := Write(blocks, mdtoken.Frontmatter{}, nil, Options{Now: fixedNow})
	require.NoError(t, err)

	md, _, _, err := Read(out, Options{})
	require.NoError(t, err)
	assert.Contains(t, md, "| A | B |")
	assert.Contains(t, md, "| 1 | 2 |")
}

func TestReadRejectsNonZipData(t *testing.T) {
	_, _, _, err := Read([]byte("not a zip"), Options{})
	assert.Error(t, err)
}
