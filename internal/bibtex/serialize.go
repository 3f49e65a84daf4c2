package bibtex

import (
	"fmt"
	"strings"
)

var specialCharEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`&`, `\&`,
	`%`, `\%`,
	`$`, `\$`,
	`#`, `\#`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
)

// escapeValue escapes BibTeX-special characters in a serialized value.
func escapeValue(s string) string {
	return specialCharEscaper.Replace(s)
}

// Serialize renders store back to BibTeX text. Custom fields (zotero-key,
// zotero-uri) are emitted after standard fields on every entry.
func Serialize(store *Store) string {
	var sb strings.Builder
	for i, e := range store.Entries() {
		if i > 0 {
			sb.WriteByte('\n')
		}
		writeEntry(&sb, e)
	}
	return sb.String()
}

func writeEntry(sb *strings.Builder, e *BibEntry) {
	fmt.Fprintf(sb, "@%s{%s", e.Type, e.Key)
	ordered := orderedFieldNames(e)
	for _, f := range ordered {
		fmt.Fprintf(sb, ",\n  %s = {%s}", f, escapeValue(e.Field(f)))
	}
	sb.WriteString("\n}\n")
}

// orderedFieldNames returns e's fields with recognized fields first (in
// standardFieldOrder), then any unrecognized fields in insertion order, then
// the two custom fields last.
func orderedFieldNames(e *BibEntry) []string {
	present := e.Fields()
	isCustom := func(f string) bool { return f == FieldZoteroKey || f == FieldZoteroURI }

	var standard, other, custom []string
	for _, f := range present {
		switch {
		case isCustom(f):
			custom = append(custom, f)
		default:
			other = append(other, f)
		}
	}
	// Stable: standardFieldOrder governs priority among `other`, but we
	// keep the entry's own order as the tiebreak by filtering the
	// insertion-ordered `other` slice instead of rebuilding from scratch.
	seen := make(map[string]bool, len(other))
	for _, f := range standardFieldOrder {
		for _, g := range other {
			if g == f && !seen[g] {
				standard = append(standard, g)
				seen[g] = true
			}
		}
	}
	for _, g := range other {
		if !seen[g] {
			standard = append(standard, g)
			seen[g] = true
		}
	}
	return append(standard, custom...)
}
