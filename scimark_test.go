package scimark

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() string { return "2024-01-01T00:00:00Z" }

func TestConvertMdToDocxProducesZipArchive(t *testing.T) {
	md := "---\ntitle: My Paper\n---\n# Intro\n\nHello **world**.\n"
	out, warnings, err := ConvertMdToDocx(md, Options{Now: fixedNow})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	// A .docx is a zip archive; the local file header signature is "PK".
	require.True(t, len(out) > 4)
	assert.Equal(t, "PK", string(out[:2]))
}

func TestConvertMdToDocxRoundTripsThroughConvertDocx(t *testing.T) {
	md := "# Title\n\nSome **bold** text with {++an insertion++}.\n"
	out, _, err := ConvertMdToDocx(md, Options{Now: fixedNow})
	require.NoError(t, err)

	recovered, _, warnings, err := ConvertDocx(out, Options{})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Contains(t, recovered, "# Title")
	assert.Contains(t, recovered, "**bold**")
	assert.Contains(t, recovered, "{++an insertion++}")
}

func TestConvertMdToDocxWithBibliography(t *testing.T) {
	md := "See [@smith2020, p. 1].\n"
	bib := `@article{smith2020, author = {Smith, John}, title = {A Study}, year = {2020}}`
	out, warnings, err := ConvertMdToDocx(md, Options{BibtexOverride: bib, Now: fixedNow})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.True(t, len(out) > 0)
}

func TestParseBibtexAndSerializeBibtexRoundTrip(t *testing.T) {
	store, warnings := ParseBibtex(`@article{k, title = {A Title}, year = {2021}}`)
	assert.Empty(t, warnings)
	require.Equal(t, 1, store.Len())

	text := SerializeBibtex(store)
	assert.True(t, strings.Contains(text, "@article{k,"))

	reparsed, _ := ParseBibtex(text)
	assert.Equal(t, 1, reparsed.Len())
}

func TestConversionErrorUnwraps(t *testing.T) {
	_, _, _, err := ConvertDocx([]byte("not a docx"), Options{})
	require.Error(t, err)
	var convErr *ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, ErrKindIO, convErr.Kind)
}

func TestOptionsLoggerDefaultsToDiscard(t *testing.T) {
	var opts Options
	logger := opts.logger()
	require.NotNil(t, logger)
	// Should not panic writing through the default discard logger.
	logger.Info("test message")
}
