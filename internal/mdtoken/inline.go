package mdtoken

import (
	"regexp"
	"strings"

	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"

	"scimark/internal/highlight"
	"scimark/internal/inertzone"
)

// inlineRuns tokenizes one block's raw inline text into a Run tree. The
// baseOffset parameter is reserved for future position-anchored warnings
// (comment/revision anchors currently resolve against the local text only).
func (t *blockTokenizer) inlineRuns(text string, baseOffset int) []Run {
	_ = baseOffset
	return parseInline(text, t.opts)
}

// parseInline runs the two-pass inline scan described in the tokenizer's
// design: pass 1 walks the flat string pulling out CriticMarkup, citations,
// format highlights, inline math, and HTML comments (consulting a
// locally-built inert-zone index so sigils inside code/math never fire);
// pass 2 hands whatever plain text segments remain to gomarkdown's inline
// parser, mirroring the ApplyFormatting pattern of delegating a line at a
// time to parser.New().Parse and walking the resulting AST.
func parseInline(text string, opts Options) []Run {
	if text == "" {
		return nil
	}
	idx := inertzone.Build(text)

	var runs []Run
	var plain strings.Builder

	flushPlain := func() {
		if plain.Len() == 0 {
			return
		}
		runs = append(runs, delegateToGomarkdown(plain.String())...)
		plain.Reset()
	}

	i := 0
	for i < len(text) {
		if span, ok := idx.SpanAt(i); ok && span.Start == i {
			switch span.Kind {
			case inertzone.InlineCode:
				flushPlain()
				n := countLeadingBackticks(text[span.Start:])
				inner := text[span.Start+n : span.End-n]
				runs = append(runs, Run{Kind: RunText, Text: strings.Trim(inner, " "), Code: true})
				i = span.End
				continue
			case inertzone.MathInline:
				flushPlain()
				runs = append(runs, Run{Kind: RunInlineMath, Latex: strings.Trim(text[span.Start+1:span.End-1], " ")})
				i = span.End
				continue
			}
		}
		if idx.IsInside(i) {
			plain.WriteByte(text[i])
			i++
			continue
		}

		if run, n, ok := scanCriticMarkup(text, i, opts); ok {
			flushPlain()
			runs = append(runs, run)
			i += n
			continue
		}
		if run, n, ok := scanHighlight(text, i, opts); ok {
			flushPlain()
			runs = append(runs, run)
			i += n
			continue
		}
		if run, n, ok := scanComment(text, i, opts); ok {
			flushPlain()
			runs = append(runs, run)
			i += n
			continue
		}
		if run, n, ok := scanHTMLComment(text, i); ok {
			flushPlain()
			runs = append(runs, run)
			i += n
			continue
		}
		if run, n, ok := scanCitation(text, i); ok {
			flushPlain()
			runs = append(runs, run)
			i += n
			continue
		}

		plain.WriteByte(text[i])
		i++
	}
	flushPlain()
	return attachTrailingComments(runs)
}

func countLeadingBackticks(s string) int {
	n := 0
	for n < len(s) && s[n] == '`' {
		n++
	}
	return n
}

// attachTrailingComments folds a standalone RunCriticComment immediately
// following a `==text==` highlight, insertion, deletion, or comment run into
// that run's Anchor, matching the `==text=={>>comment<<}` and
// `{++text++}{>>comment<<}` anchor forms. parseInline has no `{==text==}`
// form: in `{==text==}{>>comment<<}` the comment follows a literal `}` and
// stays standalone.
func attachTrailingComments(runs []Run) []Run {
	out := make([]Run, 0, len(runs))
	for i := 0; i < len(runs); i++ {
		r := runs[i]
		if i+1 < len(runs) && runs[i+1].Kind == RunCriticComment && runs[i+1].Anchor == nil {
			switch r.Kind {
			case RunCriticIns, RunCriticDel, RunCriticComment:
				comment := runs[i+1]
				comment.Anchor = []Run{r}
				out = append(out, comment)
				i++
				continue
			case RunText:
				if r.Highlight {
					comment := runs[i+1]
					comment.Anchor = []Run{r}
					out = append(out, comment)
					i++
					continue
				}
			}
		}
		out = append(out, r)
	}
	return out
}

// scanCriticMarkup recognizes {++ins++}, {--del--}, and {~~old~>new~~} at
// position i. It returns the number of bytes consumed.
func scanCriticMarkup(s string, i int, opts Options) (Run, int, bool) {
	switch {
	case strings.HasPrefix(s[i:], "{++"):
		inner, n, ok := readBalanced(s, i+3, "++}")
		if !ok {
			return Run{}, 0, false
		}
		return Run{Kind: RunCriticIns, Children: parseInline(inner, opts)}, n + 3, true
	case strings.HasPrefix(s[i:], "{--"):
		inner, n, ok := readBalanced(s, i+3, "--}")
		if !ok {
			return Run{}, 0, false
		}
		return Run{Kind: RunCriticDel, Children: parseInline(inner, opts)}, n + 3, true
	case strings.HasPrefix(s[i:], "{~~"):
		inner, n, ok := readBalanced(s, i+3, "~~}")
		if !ok {
			return Run{}, 0, false
		}
		sep := strings.Index(inner, "~>")
		if sep < 0 {
			return Run{}, 0, false
		}
		oldText, newText := inner[:sep], inner[sep+2:]
		return Run{
			Kind: RunCriticSub,
			Old:  parseInline(oldText, opts),
			New:  parseInline(newText, opts),
		}, n + 3, true
	}
	return Run{}, 0, false
}

// commentPrefixPattern matches the optional "author (YYYY-MM-DD HH:MM): "
// prefix a CriticMarkup comment body may carry.
var commentPrefixPattern = regexp.MustCompile(`^(.+?) \((\d{4}-\d{2}-\d{2} \d{2}:\d{2})\): ([\s\S]*)$`)

// scanComment recognizes a standalone {>>comment<<} span, including the
// optional "{>>author (YYYY-MM-DD HH:MM): text<<}" author/date prefix form.
func scanComment(s string, i int, opts Options) (Run, int, bool) {
	if !strings.HasPrefix(s[i:], "{>>") {
		return Run{}, 0, false
	}
	inner, n, ok := readBalanced(s, i+3, "<<}")
	if !ok {
		return Run{}, 0, false
	}
	author, date, body := parseCommentPrefix(inner)
	return Run{Kind: RunCriticComment, Author: author, Date: date, Children: parseInline(body, opts)}, n + 3, true
}

// parseCommentPrefix splits a comment body into its optional author/date
// prefix and the remaining text. If the prefix is absent, inner is returned
// as-is with author and date empty.
func parseCommentPrefix(inner string) (author, date, body string) {
	if m := commentPrefixPattern.FindStringSubmatch(inner); m != nil {
		return m[1], m[2], m[3]
	}
	return "", "", inner
}

// readBalanced scans forward from start looking for closeDelim, respecting
// nested `{` `}` pairs so a comment or substitution body may itself contain
// balanced braces. Returns the inner text and bytes consumed from start.
func readBalanced(s string, start int, closeDelim string) (inner string, consumed int, ok bool) {
	depth := 0
	i := start
	for i < len(s) {
		if strings.HasPrefix(s[i:], closeDelim) && depth == 0 {
			return s[start:i], (i - start) + len(closeDelim), true
		}
		if s[i] == '{' {
			depth++
		} else if s[i] == '}' {
			if depth > 0 {
				depth--
			}
		}
		i++
	}
	return "", 0, false
}

// scanHighlight recognizes ==text== with an optional trailing {color}
// specifier (spec.md §4.5).
func scanHighlight(s string, i int, opts Options) (Run, int, bool) {
	if !strings.HasPrefix(s[i:], "==") {
		return Run{}, 0, false
	}
	end := strings.Index(s[i+2:], "==")
	if end < 0 {
		return Run{}, 0, false
	}
	inner := s[i+2 : i+2+end]
	if inner == "" {
		return Run{}, 0, false
	}
	consumed := 2 + end + 2
	color := highlight.Resolve("", opts.DefaultHighlightColor)
	rest := s[i+consumed:]
	if strings.HasPrefix(rest, "{") {
		if close := strings.IndexByte(rest, '}'); close > 0 {
			candidate := rest[1:close]
			if highlight.IsCanonical(candidate) {
				color = highlight.Resolve(candidate, opts.DefaultHighlightColor)
				consumed += close + 1
			}
		}
	}
	children := parseInline(inner, opts)
	if len(children) == 1 && children[0].Kind == RunText {
		r := children[0]
		r.Highlight = true
		r.Color = color
		return r, consumed, true
	}
	return Run{Kind: RunText, Text: inner, Highlight: true, Color: color}, consumed, true
}

// scanHTMLComment recognizes an inline <!-- ... --> span.
func scanHTMLComment(s string, i int) (Run, int, bool) {
	if !strings.HasPrefix(s[i:], "<!--") {
		return Run{}, 0, false
	}
	end := strings.Index(s[i+4:], "-->")
	if end < 0 {
		return Run{}, 0, false
	}
	inner := s[i+4 : i+4+end]
	return Run{Kind: RunHtmlComment, Latex: strings.TrimSpace(inner)}, 4 + end + 3, true
}

// scanCitation recognizes Pandoc-style [@key, locator; -@key2] groups.
func scanCitation(s string, i int) (Run, int, bool) {
	if s[i] != '[' {
		return Run{}, 0, false
	}
	close := strings.IndexByte(s[i:], ']')
	if close < 0 {
		return Run{}, 0, false
	}
	inner := s[i+1 : i+close]
	if !strings.Contains(inner, "@") {
		return Run{}, 0, false
	}
	var items []CitationItem
	for _, part := range strings.Split(inner, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		suppress := false
		if strings.HasPrefix(part, "-@") {
			suppress = true
			part = part[1:]
		}
		if !strings.HasPrefix(part, "@") {
			return Run{}, 0, false
		}
		part = part[1:]
		key := part
		locator := ""
		if comma := strings.IndexByte(part, ','); comma >= 0 {
			key = strings.TrimSpace(part[:comma])
			locator = strings.TrimSpace(part[comma+1:])
		}
		key = strings.TrimRight(key, " ")
		if key == "" {
			return Run{}, 0, false
		}
		items = append(items, CitationItem{Key: key, Locator: locator, SuppressAuthor: suppress})
	}
	if len(items) == 0 {
		return Run{}, 0, false
	}
	return Run{Kind: RunCitation, Items: items}, close + 1, true
}

// delegateToGomarkdown parses a plain-text segment with the standard
// CommonMark inline grammar (no strikethrough, no MathJax: both sigils are
// reserved for CriticMarkup and the inert-zone math scanner) and flattens
// the resulting AST into Runs.
func delegateToGomarkdown(s string) []Run {
	if strings.TrimSpace(s) == "" {
		if s != "" {
			return []Run{{Kind: RunText, Text: s}}
		}
		return nil
	}
	p := parser.New()
	doc := p.Parse([]byte(s))

	var runs []Run
	var walk func(n ast.Node, bold, italic bool)
	walk = func(n ast.Node, bold, italic bool) {
		for _, child := range n.GetChildren() {
			switch c := child.(type) {
			case *ast.Text:
				runs = append(runs, Run{Kind: RunText, Text: string(c.Literal), Bold: bold, Italic: italic})
			case *ast.Code:
				runs = append(runs, Run{Kind: RunText, Text: string(c.Literal), Code: true})
			case *ast.Strong:
				walk(c, true, italic)
			case *ast.Emph:
				walk(c, bold, true)
			case *ast.Link:
				linkRuns := []Run{}
				prevLen := len(runs)
				walk(c, bold, italic)
				linkRuns = append(linkRuns, runs[prevLen:]...)
				runs = runs[:prevLen]
				runs = append(runs, Run{Kind: RunLink, URL: string(c.Destination), Children: linkRuns})
			case *ast.Softbreak:
				runs = append(runs, Run{Kind: RunText, Text: "\n"})
			case *ast.Hardbreak:
				runs = append(runs, Run{Kind: RunText, Text: "\n"})
			default:
				walk(child, bold, italic)
			}
		}
	}
	walk(doc, false, false)
	return runs
}
