package latex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeCommandsAndBraces(t *testing.T) {
	toks := Tokenize(`\frac{1}{2}`)
	require.NotEmpty(t, toks)
	assert.Equal(t, TokCommand, toks[0].Kind)
	assert.Equal(t, "frac", toks[0].Command)
	assert.Equal(t, TokOpenBrace, toks[1].Kind)
}

func TestTokenizeEscapedPercentIsLiteral(t *testing.T) {
	toks := Tokenize(`50\% done`)
	var text strings.Builder
	for _, tok := range toks {
		if tok.Kind == TokText {
			text.WriteString(tok.Text)
		}
	}
	assert.Contains(t, text.String(), "50% done")
}

func TestTokenizeComment(t *testing.T) {
	toks := Tokenize("x %a comment\ny")
	var found bool
	for _, tok := range toks {
		if tok.Kind == TokComment {
			found = true
			assert.Equal(t, "a comment", tok.Text)
			assert.Equal(t, " ", tok.Whitespace)
		}
	}
	assert.True(t, found)
}

func TestTokenizeLineContinuation(t *testing.T) {
	toks := Tokenize("a%\nb")
	var found bool
	for _, tok := range toks {
		if tok.Kind == TokLineContinuation {
			found = true
		}
	}
	assert.True(t, found)
}

func TestToOMMLFraction(t *testing.T) {
	nodes := ToOMML(`\frac{1}{2}`)
	require.Len(t, nodes, 1)
	assert.Equal(t, "m:f", nodes[0].Tag)
}

func TestToOMMLGreekLetter(t *testing.T) {
	nodes := ToOMML(`\alpha`)
	require.Len(t, nodes, 1)
	xml := nodes[0].XML()
	assert.Contains(t, xml, "α")
}

func TestToOMMLSuperscript(t *testing.T) {
	nodes := ToOMML(`x^2`)
	require.Len(t, nodes, 1)
	assert.Equal(t, "m:sSup", nodes[0].Tag)
}

func TestToOMMLUnsupportedFallsBackToLiteralRun(t *testing.T) {
	nodes := ToOMML(`\unknowncmd`)
	require.Len(t, nodes, 1)
	assert.Contains(t, nodes[0].XML(), `\unknowncmd`)
}

func TestHiddenCarrierRoundTrip(t *testing.T) {
	nodes := ToOMML("x %hello\ny")
	var xmlBuf strings.Builder
	for _, n := range nodes {
		xmlBuf.WriteString(n.XML())
	}
	latex, err := FromOMML(xmlBuf.String())
	require.NoError(t, err)
	assert.Contains(t, latex, "%hello\n")
}

func TestFromOMMLFraction(t *testing.T) {
	nodes := ToOMML(`\frac{1}{2}`)
	xml := nodes[0].XML()
	latex, err := FromOMML(xml)
	require.NoError(t, err)
	assert.Equal(t, `\frac{1}{2}`, latex)
}
