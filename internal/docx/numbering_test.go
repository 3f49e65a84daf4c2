package docx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumberingRegistryAllocatesOncePerKey(t *testing.T) {
	r := newNumberingRegistry()
	first := r.NumID(false, 0)
	second := r.NumID(false, 0)
	third := r.NumID(true, 0)
	assert.Equal(t, first, second)
	assert.NotEqual(t, first, third)
	assert.False(t, r.Empty())
}

func TestNumberingRegistryFirstEncounterOrder(t *testing.T) {
	r := newNumberingRegistry()
	a := r.NumID(true, 0)
	b := r.NumID(false, 1)
	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
}

func TestNumberingRegistryXMLContainsBulletAndDecimal(t *testing.T) {
	r := newNumberingRegistry()
	r.NumID(false, 0)
	r.NumID(true, 0)
	xml := r.XML()
	assert.True(t, strings.Contains(xml, `w:numFmt w:val="bullet"`))
	assert.True(t, strings.Contains(xml, `w:numFmt w:val="decimal"`))
	assert.True(t, strings.Contains(xml, `w:numId="1"`))
	assert.True(t, strings.Contains(xml, `w:numId="2"`))
}

func TestNewNumberingRegistryEmpty(t *testing.T) {
	r := newNumberingRegistry()
	assert.True(t, r.Empty())
}
