// Package inertzone computes the spans of Markdown text where domain-specific
// inline grammars (CriticMarkup, citations, format highlights, HTML
// comments, hidden-carrier detection) must not fire: fenced code blocks,
// inline code spans, and math regions.
package inertzone

import "sort"

// Kind identifies what kind of inert region a Span covers.
type Kind int

const (
	FencedCode Kind = iota
	InlineCode
	MathInline
	MathBlock
)

func (k Kind) String() string {
	switch k {
	case FencedCode:
		return "FencedCode"
	case InlineCode:
		return "InlineCode"
	case MathInline:
		return "MathInline"
	case MathBlock:
		return "MathBlock"
	default:
		return "Unknown"
	}
}

// Span is a half-open [Start, End) byte range, End exclusive, including
// delimiters.
type Span struct {
	Start, End int
	Kind       Kind
}

// Index supports O(log n) isInside queries over a sorted, non-overlapping
// span list.
type Index struct {
	spans []Span
}

// Build scans text and produces an Index. The scan order matches spec.md
// §4.2: fenced code blocks first (they may contain anything, including
// lines that look like other delimiters), then inline code outside fenced
// blocks, then math regions outside code.
func Build(text string) *Index {
	fenced := findFencedBlocks(text)
	inline := findInlineCode(text, fenced)
	code := mergeSorted(fenced, inline)
	math := findMathRegions(text, code)
	all := mergeSorted(code, math)
	sort.Slice(all, func(i, j int) bool { return all[i].Start < all[j].Start })
	return &Index{spans: all}
}

// IsInside reports whether offset falls within any span (Start <=
// offset < End).
func (idx *Index) IsInside(offset int) bool {
	_, ok := idx.SpanAt(offset)
	return ok
}

// SpanAt returns the span containing offset, if any, via binary search.
func (idx *Index) SpanAt(offset int) (Span, bool) {
	spans := idx.spans
	i := sort.Search(len(spans), func(i int) bool { return spans[i].End > offset })
	if i < len(spans) && spans[i].Start <= offset {
		return spans[i], true
	}
	return Span{}, false
}

// Spans returns all spans in order (for callers that need to iterate,
// e.g. to expand a comment boundary out to cover an enclosing code span).
func (idx *Index) Spans() []Span {
	out := make([]Span, len(idx.spans))
	copy(out, idx.spans)
	return out
}

func mergeSorted(a, b []Span) []Span {
	out := make([]Span, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

func isWithinAny(spans []Span, pos int) bool {
	for _, s := range spans {
		if pos >= s.Start && pos < s.End {
			return true
		}
	}
	return false
}

// findFencedBlocks finds lines starting with ``` or ~~~ (after up to 3
// leading spaces, per CommonMark), matched with a closing fence of equal
// or greater length using the same character.
func findFencedBlocks(text string) []Span {
	var spans []Span
	lineStart := 0
	for lineStart <= len(text) {
		lineEnd := indexByteFrom(text, '\n', lineStart)
		if lineEnd < 0 {
			lineEnd = len(text)
		}
		line := text[lineStart:lineEnd]
		if ch, n, indent := fenceOpener(line); n > 0 {
			_ = indent
			closeLineStart := lineEnd + 1
			blockEnd := len(text)
			cur := closeLineStart
			for cur <= len(text) {
				cEnd := indexByteFrom(text, '\n', cur)
				atEOF := cEnd < 0
				if atEOF {
					cEnd = len(text)
				}
				cLine := text[cur:cEnd]
				if closeFenceMatches(cLine, ch, n) {
					blockEnd = cEnd
					if !atEOF {
						blockEnd = cEnd + 1
					}
					break
				}
				if atEOF {
					blockEnd = len(text)
					break
				}
				cur = cEnd + 1
			}
			spans = append(spans, Span{Start: lineStart, End: blockEnd, Kind: FencedCode})
			lineStart = blockEnd
			continue
		}
		if lineEnd >= len(text) {
			break
		}
		lineStart = lineEnd + 1
	}
	return spans
}

func fenceOpener(line string) (ch byte, n int, indent int) {
	i := 0
	for i < len(line) && i < 3 && line[i] == ' ' {
		i++
	}
	if i >= len(line) {
		return 0, 0, 0
	}
	c := line[i]
	if c != '`' && c != '~' {
		return 0, 0, 0
	}
	j := i
	for j < len(line) && line[j] == c {
		j++
	}
	count := j - i
	if count < 3 {
		return 0, 0, 0
	}
	// Backtick fences' info string cannot itself contain a backtick.
	if c == '`' {
		for k := j; k < len(line); k++ {
			if line[k] == '`' {
				return 0, 0, 0
			}
		}
	}
	return c, count, i
}

func closeFenceMatches(line string, ch byte, minLen int) bool {
	i := 0
	for i < len(line) && i < 3 && line[i] == ' ' {
		i++
	}
	j := i
	for j < len(line) && line[j] == ch {
		j++
	}
	count := j - i
	if count < minLen || count == 0 {
		return false
	}
	// Nothing but trailing whitespace after the closing fence.
	for k := j; k < len(line); k++ {
		if line[k] != ' ' && line[k] != '\t' && line[k] != '\r' {
			return false
		}
	}
	return true
}

func indexByteFrom(s string, c byte, from int) int {
	if from > len(s) {
		return -1
	}
	idx := -1
	for i := from; i < len(s); i++ {
		if s[i] == c {
			idx = i
			break
		}
	}
	return idx
}

// findInlineCode finds CommonMark §6.1 code spans outside fenced blocks: an
// opening backtick run of length n is closed by the next run of exactly n
// backticks.
func findInlineCode(text string, exclude []Span) []Span {
	var spans []Span
	i := 0
	for i < len(text) {
		if isWithinAny(exclude, i) {
			i++
			continue
		}
		if text[i] != '`' {
			i++
			continue
		}
		start := i
		n := 0
		for i < len(text) && text[i] == '`' {
			n++
			i++
		}
		// Search for a closing run of exactly n backticks.
		j := i
		found := -1
		for j < len(text) {
			if isWithinAny(exclude, j) {
				j++
				continue
			}
			if text[j] == '`' {
				runLen := 0
				for j < len(text) && text[j] == '`' {
					runLen++
					j++
				}
				if runLen == n {
					found = j
					break
				}
				continue
			}
			j++
		}
		if found < 0 {
			// No closing run: the backtick sequence is literal text, not a
			// code span. Continue scanning after it.
			continue
		}
		spans = append(spans, Span{Start: start, End: found, Kind: InlineCode})
		i = found
	}
	return spans
}

// findMathRegions finds $$...$$ block math (may span lines, matched
// non-greedily) then $...$ inline math, outside any code span.
func findMathRegions(text string, exclude []Span) []Span {
	var spans []Span
	blocks := findDelimited(text, "$$", "$$", exclude, MathBlock)
	spans = append(spans, blocks...)
	codeAndBlocks := mergeSorted(exclude, blocks)

	i := 0
	for i < len(text) {
		if isWithinAny(codeAndBlocks, i) {
			i++
			continue
		}
		if text[i] != '$' || (i+1 < len(text) && text[i+1] == '$') {
			i++
			continue
		}
		if i > 0 && isDigit(text[i-1]) {
			i++
			continue
		}
		if i+1 >= len(text) || isSpace(text[i+1]) {
			i++
			continue
		}
		j := i + 1
		closeAt := -1
		for j < len(text) {
			if isWithinAny(codeAndBlocks, j) {
				j++
				continue
			}
			if text[j] == '$' {
				closeAt = j
				break
			}
			if text[j] == '\n' && j > i+1 && text[j-1] == '\n' {
				// blank line: standard heuristic treats unterminated
				// inline math as giving up at a paragraph break.
				break
			}
			j++
		}
		if closeAt < 0 {
			i++
			continue
		}
		spans = append(spans, Span{Start: i, End: closeAt + 1, Kind: MathInline})
		i = closeAt + 1
	}
	return spans
}

func findDelimited(text, open, closeDelim string, exclude []Span, kind Kind) []Span {
	var spans []Span
	i := 0
	for i+len(open) <= len(text) {
		if isWithinAny(exclude, i) || text[i:i+len(open)] != open {
			i++
			continue
		}
		start := i
		j := i + len(open)
		closeAt := -1
		for j+len(closeDelim) <= len(text) {
			if !isWithinAny(exclude, j) && text[j:j+len(closeDelim)] == closeDelim {
				closeAt = j
				break
			}
			j++
		}
		if closeAt < 0 {
			i++
			continue
		}
		spans = append(spans, Span{Start: start, End: closeAt + len(closeDelim), Kind: kind})
		i = closeAt + len(closeDelim)
	}
	return spans
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isSpace(b byte) bool { return b == ' ' || b == '\t' || b == '\n' || b == '\r' }
