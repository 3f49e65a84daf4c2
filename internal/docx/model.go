// Package docx assembles and parses the OOXML `.docx` container: the
// DocxWriter and DocxReader halves of the conversion core, plus the
// font-override, numbering, comment, relationship, and citation-field
// machinery they share.
package docx

import "scimark/internal/zotero"

// Warning mirrors bibtex.Warning/mdtoken.Warning's shape; kept distinct
// (not reused directly) because each package owns its own recoverable-
// issue vocabulary, per Design Notes' "no shared mutable state between
// components" rule.
type Warning struct {
	Kind    string
	Message string
}

// MixedCitationStyle names how a `[@a; @b]` citation mixing Zotero-backed
// and plain BibTeX-only keys is rendered. DocxWriter does not read it; both
// values give the output described on zoteroFieldXML.
type MixedCitationStyle string

const (
	StyleSeparate MixedCitationStyle = "separate"
	StyleUnified  MixedCitationStyle = "unified"
)

// Options carries the subset of the root package's Options the docx layer
// needs; the root package is responsible for defaults (nil Logger, etc.).
type Options struct {
	AuthorName            string
	DefaultHighlightColor string
	TemplateDocx          []byte
	MixedCitationStyle    MixedCitationStyle
	CitationKeyFormat     zotero.KeyFormat
	Now                   func() string // RFC3339 UTC timestamp generator, injected for determinism
}
