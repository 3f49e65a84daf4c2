package bibtex

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// accentCombining maps a single-character LaTeX accent macro to the
// combining mark it applies to the following base letter. Ligature macros
// live in ligatureMacros and are direct replacements.
var accentCombining = map[byte]rune{
	'\'': '́', // acute
	'`':  '̀', // grave
	'^':  '̂', // circumflex
	'"':  '̈', // diaeresis
	'~':  '̃', // tilde
	'=':  '̄', // macron
	'.':  '̇', // dot above
	'c':  '̧', // cedilla
	'H':  '̋', // double acute
	'v':  '̌', // caron
	'u':  '̆', // breve
	'k':  '̨', // ogonek
	'b':  '̱', // macron below
	'd':  '̣', // dot below
	'r':  '̊', // ring above
	't':  '͡', // tie
}

var ligatureMacros = map[string]string{
	`\ss`: "ß", `\oe`: "œ", `\OE`: "Œ", `\ae`: "æ", `\AE`: "Æ",
	`\o`: "ø", `\O`: "Ø", `\aa`: "å", `\AA`: "Å",
	`\l`: "ł", `\L`: "Ł", `\i`: "ı", `\j`: "ȷ",
}

// symbolMacros reverses the literal-character escapes escapeValue (see
// serialize.go) produces for BibTeX-special characters. Checked longest
// prefix first so "\textasciitilde{}" isn't cut short at "\t" (the tie
// accent macro) or "\textbackslash{}" at a bare "\".
var symbolMacros = []struct {
	macro string
	repl  string
}{
	{`\textasciicircum{}`, "^"},
	{`\textasciitilde{}`, "~"},
	{`\textbackslash{}`, `\`},
	{`\&`, "&"},
	{`\%`, "%"},
	{`\$`, "$"},
	{`\#`, "#"},
	{`\_`, "_"},
	{`\{`, "{"},
	{`\}`, "}"},
}

// Unescape converts BibTeX/LaTeX escape sequences in s (accent macros like
// \'e and ligatures like \ss) into their Unicode equivalents, then applies
// NFC normalization so combining-mark sequences collapse to precomposed
// characters.
func Unescape(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	i := 0
	for i < len(s) {
		c := s[i]
		if c != '\\' {
			sb.WriteByte(c)
			i++
			continue
		}
		// Try ligature/symbol macros first (longest match: 2-3 chars).
		if rest := s[i:]; len(rest) >= 2 {
			matched := false
			for _, mlen := range []int{3, 2} {
				if mlen > len(rest) {
					continue
				}
				if repl, ok := ligatureMacros[rest[:mlen]]; ok {
					// Guard against a longer macro name continuing
					// (e.g. \ocurrency is not \o).
					if mlen < len(rest) && isLetter(rest[mlen]) {
						continue
					}
					sb.WriteString(repl)
					i += mlen
					matched = true
					break
				}
			}
			if matched {
				continue
			}
		}
		// Symbol escapes: literal characters escapeValue re-escaped.
		matchedSymbol := false
		for _, sm := range symbolMacros {
			if strings.HasPrefix(s[i:], sm.macro) {
				sb.WriteString(sm.repl)
				i += len(sm.macro)
				matchedSymbol = true
				break
			}
		}
		if matchedSymbol {
			continue
		}
		// Accent macros: \X{letter} or \Xletter or \X letter.
		if i+1 < len(s) {
			mark, ok := accentCombining[s[i+1]]
			if ok {
				j := i + 2
				base, n := extractBase(s, j)
				if n > 0 {
					sb.WriteString(base)
					sb.WriteRune(mark)
					i = j + n
					continue
				}
			}
		}
		// Unknown escape: pass the backslash through unchanged and let the
		// byte after it be handled on the next iteration.
		sb.WriteByte(s[i])
		i++
	}
	return norm.NFC.String(sb.String())
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// extractBase reads the base letter following an accent macro starting at
// s[j:], handling the {x} and bare-x forms, and skipping a single leading
// space (the "\' e" style some BibTeX exports use). It returns the base
// text and how many bytes from j (inclusive of any skipped space) were
// consumed.
func extractBase(s string, j int) (base string, consumed int) {
	start := j
	if j < len(s) && s[j] == ' ' {
		j++
	}
	if j >= len(s) {
		return "", 0
	}
	if s[j] == '{' {
		end := strings.IndexByte(s[j:], '}')
		if end < 0 {
			return "", 0
		}
		inner := s[j+1 : j+end]
		return inner, (j + end + 1) - start
	}
	return string(s[j]), (j + 1) - start
}
