// Package mdtoken extends a CommonMark tokenizer (github.com/gomarkdown/markdown)
// with the inline and block grammars Manuscript Markdown adds on top:
// CriticMarkup, Pandoc citations, format highlights, HTML comments, LaTeX
// math, and GFM callouts.
package mdtoken

// Block is the tagged variant over block-level constructs (spec.md §3).
type Block struct {
	Kind BlockKind

	// Paragraph, Heading
	Runs []Run

	// Heading
	Level int

	// List
	Ordered bool
	Tight   bool
	Items   [][]Block

	// CodeBlock
	Lang string
	Text string

	// Blockquote
	Children    []Block
	CalloutKind string // "" if not a GFM callout

	// Table
	Headers    []Run
	HeaderRows [][]Run // kept for symmetry with Rows; Headers is the single header row
	Rows       [][]Run
	Alignments []Alignment

	// MathBlock
	Latex string

	// HtmlTable
	XML string
}

type BlockKind int

const (
	KindParagraph BlockKind = iota
	KindHeading
	KindList
	KindCodeBlock
	KindBlockquote
	KindTable
	KindMathBlock
	KindHtmlTable
	KindHorizontalRule
	KindHtmlBlockComment
)

type Alignment int

const (
	AlignNone Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Run is the tagged inline variant (spec.md §3).
type Run struct {
	Kind RunKind

	// Text
	Text      string
	Bold      bool
	Italic    bool
	Underline bool
	Strike    bool
	Sup       bool
	Sub       bool
	Code      bool
	Highlight bool
	Color     string

	// Link
	URL string

	// InlineMath / comments carry raw text in Text/Latex

	// Citation
	Items []CitationItem

	// CriticIns / CriticDel / CriticSub / CriticComment / Link share Children
	Children []Run

	// CriticSub
	Old []Run
	New []Run

	// Critic* common
	Author string
	Date   string

	// CriticComment
	Anchor []Run // nil for standalone comments
	ID     string

	// HtmlComment / InlineMath
	Latex string
}

type RunKind int

const (
	RunText RunKind = iota
	RunLink
	RunInlineMath
	RunCitation
	RunCriticIns
	RunCriticDel
	RunCriticSub
	RunCriticComment
	RunHtmlComment
)

// CitationItem is one `@key` reference within a `[@key, locator; ...]` group.
type CitationItem struct {
	Key            string
	Locator        string
	SuppressAuthor bool
}

// Frontmatter holds the recognized YAML-ish keys from spec.md §4.3.
type Frontmatter struct {
	Title             []string
	CSL               string
	Bibliography      string
	Font              string
	CodeFont          string
	FontSize          float64
	HasFontSize       bool
	CodeFontSize      float64
	HasCodeFontSize   bool
	HeaderFont        string
	HeaderFontSize    []float64
	HeaderFontStyle   []string
	TitleFont         string
	TitleFontSize     float64
	HasTitleFontSize  bool
	TitleFontStyle    string
	Timezone          string
	UnrecognizedKeys  []string
}

// Warning mirrors bibtex.Warning's shape for the tokenizer's own
// recoverable-issue reporting.
type Warning struct {
	Kind    string
	Message string
	Pos     int
}
