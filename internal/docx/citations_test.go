package docx

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"scimark/internal/bibtex"
	"scimark/internal/mdtoken"
	"scimark/internal/zotero"
)

func TestFirstAuthorSurname(t *testing.T) {
	assert.Equal(t, "Smith", firstAuthorSurname("Smith, John and Doe, Jane"))
	assert.Equal(t, "Doe", firstAuthorSurname("Jane Doe"))
	assert.Equal(t, "", firstAuthorSurname(""))
}

func TestPlainCitationTextSuppressedAuthor(t *testing.T) {
	e := bibtex.NewEntry("k", bibtex.EntryArticle)
	e.Set(bibtex.FieldAuthor, "Smith, John")
	e.Set(bibtex.FieldYear, "2020")

	withAuthor := plainCitationText(mdtoken.CitationItem{Key: "k"}, e)
	assert.Equal(t, "(Smith 2020)", withAuthor)

	suppressed := plainCitationText(mdtoken.CitationItem{Key: "k", SuppressAuthor: true}, e)
	assert.Equal(t, "(2020)", suppressed)
}

func TestJoinAuthors(t *testing.T) {
	names := []zotero.CSLName{{Family: "Smith", Given: "John"}, {Literal: "Acme Corp"}}
	assert.Equal(t, "Smith, John and Acme Corp", joinAuthors(names))
}

func TestCslTypeToBibtex(t *testing.T) {
	assert.Equal(t, bibtex.EntryArticle, cslTypeToBibtex("article-journal"))
	assert.Equal(t, bibtex.EntryBook, cslTypeToBibtex("book"))
	assert.Equal(t, bibtex.EntryMisc, cslTypeToBibtex("unknown-type"))
}
