package docx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelRegistryDeduplicatesByURL(t *testing.T) {
	r := newRelRegistry()
	first := r.RID("http://example.com/a")
	second := r.RID("http://example.com/a")
	third := r.RID("http://example.com/b")
	assert.Equal(t, first, second)
	assert.NotEqual(t, first, third)
}

func TestRelRegistryFirstOccurrenceOrder(t *testing.T) {
	r := newRelRegistry()
	assert.Equal(t, "rId1", r.RID("http://example.com/a"))
	assert.Equal(t, "rId2", r.RID("http://example.com/b"))
}

func TestRelRegistryXMLIncludesOptionalParts(t *testing.T) {
	r := newRelRegistry()
	r.RID("http://example.com/a")
	xml := r.XML(true, true)
	assert.True(t, strings.Contains(xml, "numbering.xml"))
	assert.True(t, strings.Contains(xml, "comments.xml"))
	assert.True(t, strings.Contains(xml, "styles.xml"))
	assert.True(t, strings.Contains(xml, "hyperlink"))

	bare := r.XML(false, false)
	assert.False(t, strings.Contains(bare, "numbering.xml"))
	assert.False(t, strings.Contains(bare, "comments.xml"))
}

func TestContentTypesXMLTogglesOverrides(t *testing.T) {
	full := contentTypesXML(true, true)
	assert.True(t, strings.Contains(full, "numbering+xml"))
	assert.True(t, strings.Contains(full, "comments+xml"))

	bare := contentTypesXML(false, false)
	assert.False(t, strings.Contains(bare, "numbering+xml"))
	assert.False(t, strings.Contains(bare, "comments+xml"))
}
