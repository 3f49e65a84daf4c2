package mdtoken

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrontmatterBasic(t *testing.T) {
	fm, body, warnings := ParseFrontmatter("---\ntitle: My Paper\nbibliography: refs.bib\nfont-size: 12\n---\nBody text\n")
	assert.Empty(t, warnings)
	require.Equal(t, []string{"My Paper"}, fm.Title)
	assert.Equal(t, "refs.bib", fm.Bibliography)
	assert.True(t, fm.HasFontSize)
	assert.Equal(t, 12.0, fm.FontSize)
	assert.Equal(t, "Body text\n", body)
}

func TestParseFrontmatterNoBlock(t *testing.T) {
	fm, body, warnings := ParseFrontmatter("# Just a heading\n")
	assert.Nil(t, warnings)
	assert.Nil(t, fm.Title)
	assert.Equal(t, "# Just a heading\n", body)
}

func TestParseFrontmatterRepeatedTitleAccumulates(t *testing.T) {
	fm, _, _ := ParseFrontmatter("---\ntitle: First\ntitle: Second\n---\n")
	assert.Equal(t, []string{"First", "Second"}, fm.Title)
}

func TestParseFrontmatterArrayValue(t *testing.T) {
	fm, _, _ := ParseFrontmatter("---\nheader-font-size: [14, 12, 10]\n---\n")
	assert.Equal(t, []float64{14, 12, 10}, fm.HeaderFontSize)
}

func TestParseFrontmatterUnrecognizedKeyWarns(t *testing.T) {
	fm, _, warnings := ParseFrontmatter("---\nnonsense: 1\n---\n")
	require.Len(t, warnings, 1)
	assert.Equal(t, "unrecognized-frontmatter-key", warnings[0].Kind)
	assert.Equal(t, []string{"nonsense"}, fm.UnrecognizedKeys)
}

func TestCanonicalizeStylesOrderIndependent(t *testing.T) {
	fm, _, _ := ParseFrontmatter("---\ntitle-font-style: underline-bold\n---\n")
	assert.Equal(t, "bold-underline", fm.TitleFontStyle)
}
