// Package scimark converts between Manuscript Markdown and OOXML `.docx`
// documents: CommonMark extended with CriticMarkup tracked changes, Pandoc
// citations backed by a BibTeX/Zotero bibliography, format highlights,
// LaTeX math, HTML comments, and GFM callouts.
package scimark

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"scimark/internal/bibtex"
	"scimark/internal/docx"
	"scimark/internal/mdtoken"
	"scimark/internal/zotero"
)

// Warning is a recoverable issue surfaced from a conversion call. The core
// never raises these as errors; they are collected and returned alongside
// the result (§7's "no default logging, caller decides" rule).
type Warning struct {
	Kind    string
	Message string
	Pos     int
}

// ErrorKind classifies a ConversionError into the four-bucket taxonomy a
// caller needs to decide how to react: retry, report, or give up.
type ErrorKind string

const (
	ErrKindIO          ErrorKind = "io"
	ErrKindFormat      ErrorKind = "format"
	ErrKindUnsupported ErrorKind = "unsupported"
	ErrKindInvariant   ErrorKind = "invariant"
)

// ConversionError wraps an underlying error with the kind a caller can
// switch on without parsing the message.
type ConversionError struct {
	Kind ErrorKind
	Err  error
}

func (e *ConversionError) Error() string { return fmt.Sprintf("%s: %v", e.Kind, e.Err) }
func (e *ConversionError) Unwrap() error  { return e.Err }

func wrapErr(kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	return &ConversionError{Kind: kind, Err: err}
}

// MixedCitationStyle names how a citation group mixing Zotero-backed and
// plain BibTeX-only keys renders. The docx writer does not read it: either
// value gives one Zotero field code for the Zotero-backed keys followed by
// plain text for the rest.
type MixedCitationStyle = docx.MixedCitationStyle

const (
	StyleSeparate = docx.StyleSeparate
	StyleUnified  = docx.StyleUnified
)

// CitationKeyFormat selects how ConvertDocx generates the citation key for
// an item recovered from a Zotero field code; the payload's item id is not
// used as the key.
type CitationKeyFormat = zotero.KeyFormat

const (
	KeyAuthorYearTitle = zotero.KeyAuthorYearTitle
	KeyAuthorYear      = zotero.KeyAuthorYear
	KeyNumeric         = zotero.KeyNumeric
)

// Options carries every knob a conversion call accepts; no package-level
// mutable state is retained between calls (Design Notes' "no global
// mutable state" rule — author name, default highlight color, and every
// other configurable all travel through this struct).
type Options struct {
	AuthorName            string
	DefaultHighlightColor string
	Debug                 bool
	Logger                *logrus.Logger
	CitationKeyFormat     CitationKeyFormat
	MixedCitationStyle    MixedCitationStyle
	TemplateDocx          []byte
	CSLCacheDir           string
	SourceDir             string
	OnStyleNotFound       func(styleID string) bool
	BibtexOverride        string

	// Now overrides the RFC3339 timestamp DocxWriter stamps onto
	// tracked-change authorship when non-nil, for deterministic output in
	// tests; production callers leave it nil.
	Now func() string
}

func (o Options) logger() *logrus.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	l := logrus.New()
	l.SetOutput(discardWriter{})
	return l
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func (o Options) logWarning(w Warning) {
	if !o.Debug {
		return
	}
	o.logger().WithFields(logrus.Fields{"kind": w.Kind, "pos": w.Pos}).Debug(w.Message)
}

// ConvertMdToDocx implements the `convertMdToDocx` operation (spec.md §6):
// tokenize Manuscript Markdown, resolve its bibliography, and emit an
// OOXML `.docx` archive.
func ConvertMdToDocx(markdown string, opts Options) ([]byte, []Warning, error) {
	fm, body, fmWarnings := mdtoken.ParseFrontmatter(markdown)
	tokOpts := mdtoken.Options{DefaultHighlightColor: opts.DefaultHighlightColor}
	blocks, tokWarnings := mdtoken.Tokenize(body, tokOpts)

	store := bibtex.NewStore()
	bibSource := opts.BibtexOverride
	if bibSource == "" {
		bibSource = fm.Bibliography
	}
	var bibWarnings []bibtex.Warning
	if bibSource != "" {
		store, bibWarnings = bibtex.Parse(bibSource)
	}

	docOpts := docx.Options{
		AuthorName:            opts.AuthorName,
		DefaultHighlightColor: opts.DefaultHighlightColor,
		TemplateDocx:          opts.TemplateDocx,
		MixedCitationStyle:    opts.MixedCitationStyle,
		CitationKeyFormat:     opts.CitationKeyFormat,
		Now:                   opts.Now,
	}
	out, docWarnings, err := docx.Write(blocks, fm, store, docOpts)

	all := mergeWarnings(fmWarnings, tokWarnings, bibWarnings, docWarnings)
	for _, w := range all {
		opts.logWarning(w)
	}
	if err != nil {
		return nil, all, wrapErr(ErrKindFormat, err)
	}
	return out, all, nil
}

// ConvertDocx implements the `convertDocx` operation (spec.md §6): parse an
// OOXML `.docx` archive back to Manuscript Markdown plus its recovered
// BibTeX bibliography.
func ConvertDocx(data []byte, opts Options) (markdown string, bibliography string, warnings []Warning, err error) {
	docOpts := docx.Options{
		AuthorName:            opts.AuthorName,
		DefaultHighlightColor: opts.DefaultHighlightColor,
		MixedCitationStyle:    opts.MixedCitationStyle,
		CitationKeyFormat:     opts.CitationKeyFormat,
		Now:                   opts.Now,
	}
	md, store, docWarnings, err := docx.Read(data, docOpts)
	all := mergeWarnings(docWarnings)
	for _, w := range all {
		opts.logWarning(w)
	}
	if err != nil {
		return "", "", all, wrapErr(ErrKindIO, err)
	}
	return md, bibtex.Serialize(store), all, nil
}

// ParseBibtex implements the `parseBibtex` operation.
func ParseBibtex(text string) (*bibtex.Store, []Warning) {
	store, warnings := bibtex.Parse(text)
	return store, mergeWarnings(warnings)
}

// SerializeBibtex implements the `serializeBibtex` operation.
func SerializeBibtex(store *bibtex.Store) string {
	return bibtex.Serialize(store)
}

// mergeWarnings flattens the per-component warning vocabularies (each
// package owns its own, per Design Notes' "no shared mutable state"
// rule) into the root package's single reporting shape, in call order.
func mergeWarnings(groups ...any) []Warning {
	var out []Warning
	for _, g := range groups {
		switch v := g.(type) {
		case []mdtoken.Warning:
			for _, w := range v {
				out = append(out, Warning{Kind: w.Kind, Message: w.Message, Pos: w.Pos})
			}
		case []bibtex.Warning:
			for _, w := range v {
				out = append(out, Warning{Kind: "malformed-bibtex", Message: w.Message})
			}
		case []docx.Warning:
			for _, w := range v {
				out = append(out, Warning{Kind: w.Kind, Message: w.Message})
			}
		}
	}
	return out
}

