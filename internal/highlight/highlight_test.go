package highlight

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCanonical(t *testing.T) {
	assert.True(t, IsCanonical("yellow"))
	assert.True(t, IsCanonical("Dark-Blue"))
	assert.True(t, IsCanonical("  teal  "))
	assert.False(t, IsCanonical("chartreuse"))
	assert.False(t, IsCanonical(""))
}

func TestHexKnownAndFallback(t *testing.T) {
	assert.Equal(t, "FFFF00", Hex("yellow"))
	assert.Equal(t, "8B0000", Hex("dark-red"))
	assert.Equal(t, Hex(DefaultColor), Hex("not-a-color"))
}

func TestResolve(t *testing.T) {
	assert.Equal(t, "green", Resolve("green", "blue"))
	assert.Equal(t, "blue", Resolve("not-a-color", "blue"))
	assert.Equal(t, DefaultColor, Resolve("", ""))
	assert.Equal(t, DefaultColor, Resolve("nope", "also-nope"))
}

func TestFromHexRoundTrip(t *testing.T) {
	for name, h := range hex {
		assert.Equal(t, name, FromHex(h))
		assert.Equal(t, name, FromHex("#"+h))
	}
	assert.Equal(t, "", FromHex("123456"))
}
