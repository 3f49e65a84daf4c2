package zotero

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scimark/internal/bibtex"
)

func TestExtractKey(t *testing.T) {
	key, ok := ExtractKey("http://zotero.org/users/123/items/ABCD1234")
	require.True(t, ok)
	assert.Equal(t, "ABCD1234", key)

	_, ok = ExtractKey("not a uri")
	assert.False(t, ok)
}

func TestBuildPayloadAndMarshalRoundTrip(t *testing.T) {
	e := bibtex.NewEntry("smith2020", bibtex.EntryArticle)
	e.Set(bibtex.FieldAuthor, "Smith, John")
	e.Set(bibtex.FieldTitle, "A Study")
	e.Set(bibtex.FieldYear, "2020")
	e.Set("zotero-uri", "http://zotero.org/users/1/items/ABCD1234")

	payload := BuildPayload("CID1", e, "p. 20", false)
	require.Len(t, payload.CitationItems, 1)
	item := payload.CitationItems[0]
	assert.Equal(t, "smith2020", item.ID)
	assert.Equal(t, "article-journal", item.Itemdata.Type)
	assert.Equal(t, "A Study", item.Itemdata.Title)
	assert.Equal(t, "p. 20", item.Locator)
	assert.Equal(t, []string{"http://zotero.org/users/1/items/ABCD1234"}, item.URIs)

	raw, err := Marshal(payload)
	require.NoError(t, err)

	reparsed, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "CID1", reparsed.CitationID)
	require.Len(t, reparsed.CitationItems, 1)
	assert.Equal(t, "smith2020", reparsed.CitationItems[0].ID)
}

func TestFormatPlain(t *testing.T) {
	e := bibtex.NewEntry("k", bibtex.EntryArticle)
	e.Set(bibtex.FieldAuthor, "Doe, Jane")
	e.Set(bibtex.FieldYear, "2021")

	assert.Equal(t, "(Doe 2021)", FormatPlain(e, "", false))
	assert.Equal(t, "(Doe 2021, p. 5)", FormatPlain(e, "p. 5", false))
	assert.Equal(t, "(2021)", FormatPlain(e, "", true))
}

func TestGenerateKey(t *testing.T) {
	item := CSLItem{
		Title:  "The RNA Paradox",
		Author: []CSLName{{Family: "Schrodinger"}},
		Issued: &CSLDate{DateParts: [][]int{{2019}}},
	}

	counter := 0
	assert.Equal(t, "schrodinger2019The", GenerateKey(item, KeyAuthorYearTitle, &counter))
	assert.Equal(t, "schrodinger2019", GenerateKey(item, KeyAuthorYear, &counter))
	assert.Equal(t, "ref1", GenerateKey(item, KeyNumeric, &counter))
	assert.Equal(t, "ref2", GenerateKey(item, KeyNumeric, &counter))
}
