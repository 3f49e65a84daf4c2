package mdtoken

import (
	"strings"

	"scimark/internal/inertzone"
)

// Options controls tokenizer-wide behavior that would otherwise be global
// mutable state (spec.md Design Notes).
type Options struct {
	DefaultHighlightColor string
}

// Tokenize converts Markdown body text (frontmatter already stripped) into
// a block-token stream.
func Tokenize(body string, opts Options) ([]Block, []Warning) {
	idx := inertzone.Build(body)
	t := &blockTokenizer{src: body, idx: idx, opts: opts}
	blocks := t.parseBlocks(0, len(body))
	return blocks, t.warnings
}

type blockTokenizer struct {
	src      string
	idx      *inertzone.Index
	opts     Options
	warnings []Warning
}

type line struct{ start, end int } // end exclusive, does not include '\n'

func (t *blockTokenizer) lines(from, to int) []line {
	var out []line
	i := from
	for i <= to {
		nl := indexByte(t.src, '\n', i, to)
		if nl < 0 {
			if i < to {
				out = append(out, line{i, to})
			}
			break
		}
		out = append(out, line{i, nl})
		i = nl + 1
	}
	return out
}

func indexByte(s string, c byte, from, to int) int {
	for i := from; i < to && i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}

func (t *blockTokenizer) text(l line) string { return t.src[l.start:l.end] }

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }

func (t *blockTokenizer) parseBlocks(from, to int) []Block {
	var blocks []Block
	lines := t.lines(from, to)
	i := 0
	for i < len(lines) {
		ln := lines[i]
		if isBlank(t.text(ln)) {
			i++
			continue
		}
		// Fenced code / math block: driven by the inert-zone index.
		if span, ok := t.idx.SpanAt(ln.start); ok && (span.Kind == inertzone.FencedCode || span.Kind == inertzone.MathBlock) {
			blk, consumedLines := t.consumeSpanBlock(lines, i, span)
			blocks = append(blocks, blk)
			i = consumedLines
			continue
		}
		txt := t.text(ln)
		trimmed := strings.TrimLeft(txt, " ")
		indent := len(txt) - len(trimmed)

		if indent < 4 && isATXHeading(trimmed) {
			level, content := parseATXHeading(trimmed)
			blocks = append(blocks, Block{Kind: KindHeading, Level: level, Runs: t.inlineRuns(content, ln.start+indent+level+1)})
			i++
			continue
		}
		if indent < 4 && isHorizontalRule(trimmed) {
			blocks = append(blocks, Block{Kind: KindHorizontalRule})
			i++
			continue
		}
		if indent < 4 && strings.HasPrefix(trimmed, ">") {
			blk, n := t.consumeBlockquote(lines, i)
			blocks = append(blocks, blk)
			i = n
			continue
		}
		if indent < 4 && isHTMLCommentStart(trimmed) {
			if blk, n, ok := t.consumeHTMLCommentBlock(lines, i); ok {
				blocks = append(blocks, blk)
				i = n
				continue
			}
		}
		if indent < 4 && isHTMLTableStart(trimmed) {
			if blk, n, ok := t.consumeHTMLTable(lines, i); ok {
				blocks = append(blocks, blk)
				i = n
				continue
			}
		}
		if indent < 4 && isListMarker(trimmed) {
			blk, n := t.consumeList(lines, i)
			blocks = append(blocks, blk)
			i = n
			continue
		}
		if indent < 4 && i+1 < len(lines) && isTableSeparatorLine(t.text(lines[i+1])) && strings.Contains(trimmed, "|") {
			blk, n := t.consumeTable(lines, i)
			blocks = append(blocks, blk)
			i = n
			continue
		}

		// Paragraph: contiguous non-blank lines not claimed above.
		start := i
		for i < len(lines) && !isBlank(t.text(lines[i])) {
			if span, ok := t.idx.SpanAt(lines[i].start); ok && (span.Kind == inertzone.FencedCode || span.Kind == inertzone.MathBlock) {
				break
			}
			ltrim := strings.TrimLeft(t.text(lines[i]), " ")
			if i > start && (isATXHeading(ltrim) || isHorizontalRule(ltrim) || isListMarker(ltrim) || strings.HasPrefix(ltrim, ">")) {
				break
			}
			i++
		}
		raw := strings.Join(t.rawLines(lines[start:i]), "\n")
		blocks = append(blocks, Block{Kind: KindParagraph, Runs: t.inlineRuns(raw, lines[start].start)})
	}
	return blocks
}

func (t *blockTokenizer) rawLines(ls []line) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = t.text(l)
	}
	return out
}

func (t *blockTokenizer) consumeSpanBlock(lines []line, i int, span inertzone.Span) (Block, int) {
	j := i
	for j < len(lines) && lines[j].start < span.End {
		j++
	}
	raw := t.src[span.Start:span.End]
	if span.Kind == inertzone.MathBlock {
		latex := strings.TrimSuffix(strings.TrimPrefix(raw, "$$"), "$$")
		return Block{Kind: KindMathBlock, Latex: strings.Trim(latex, "\n")}, j
	}
	lang, body := parseFencedCode(raw)
	return Block{Kind: KindCodeBlock, Lang: lang, Text: body}, j
}

func parseFencedCode(raw string) (lang, body string) {
	nl := strings.IndexByte(raw, '\n')
	if nl < 0 {
		return "", ""
	}
	firstLine := raw[:nl]
	rest := raw[nl+1:]
	trimmed := strings.TrimLeft(firstLine, " `~")
	lang = strings.TrimSpace(trimmed)
	// Drop the closing fence line (and the newline that ends it).
	rest = strings.TrimSuffix(rest, "\n")
	if idx := strings.LastIndexByte(rest, '\n'); idx >= 0 {
		lastLine := strings.TrimSpace(rest[idx+1:])
		if isFenceLine(lastLine) {
			rest = rest[:idx]
		}
	} else if isFenceLine(strings.TrimSpace(rest)) {
		rest = ""
	}
	return lang, rest
}

func isFenceLine(s string) bool {
	s = strings.TrimSpace(s)
	return len(s) >= 3 && (strings.Trim(s, "`") == "" || strings.Trim(s, "~") == "")
}

func isATXHeading(s string) bool {
	n := 0
	for n < len(s) && s[n] == '#' {
		n++
	}
	if n == 0 || n > 6 {
		return false
	}
	return n == len(s) || s[n] == ' ' || s[n] == '\t'
}

func parseATXHeading(s string) (level int, content string) {
	n := 0
	for n < len(s) && s[n] == '#' {
		n++
	}
	content = strings.TrimSpace(s[n:])
	content = strings.TrimRight(content, "#")
	content = strings.TrimRight(content, " ")
	return n, content
}

func isHorizontalRule(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < 3 {
		return false
	}
	for _, c := range []byte{'-', '*', '_'} {
		count := 0
		ok := true
		for i := 0; i < len(s); i++ {
			if s[i] == c {
				count++
			} else if s[i] != ' ' {
				ok = false
				break
			}
		}
		if ok && count >= 3 {
			return true
		}
	}
	return false
}

func isListMarker(s string) bool {
	if len(s) == 0 {
		return false
	}
	if (s[0] == '-' || s[0] == '*' || s[0] == '+') && (len(s) == 1 || s[1] == ' ') {
		return true
	}
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i > 0 && i < len(s) && (s[i] == '.' || s[i] == ')') && (i+1 == len(s) || s[i+1] == ' ') {
		return true
	}
	return false
}

func isHTMLCommentStart(s string) bool { return strings.HasPrefix(s, "<!--") }
func isHTMLTableStart(s string) bool {
	return strings.HasPrefix(strings.ToLower(s), "<table")
}

func isTableSeparatorLine(s string) bool {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "-") {
		return false
	}
	for _, cell := range strings.Split(strings.Trim(s, "|"), "|") {
		c := strings.TrimSpace(cell)
		if c == "" {
			return false
		}
		for _, r := range c {
			if r != '-' && r != ':' {
				return false
			}
		}
	}
	return true
}

func (t *blockTokenizer) consumeBlockquote(lines []line, i int) (Block, int) {
	start := i
	for i < len(lines) {
		txt := strings.TrimLeft(t.text(lines[i]), " ")
		if isBlank(txt) {
			break
		}
		if !strings.HasPrefix(txt, ">") && i > start {
			// Lazy continuation only permitted for paragraph text.
			break
		}
		i++
	}
	var innerLines []string
	for _, l := range lines[start:i] {
		s := strings.TrimLeft(t.text(l), " ")
		s = strings.TrimPrefix(s, ">")
		s = strings.TrimPrefix(s, " ")
		innerLines = append(innerLines, s)
	}
	inner := strings.Join(innerLines, "\n")
	calloutKind := ""
	if k, rest, ok := detectCallout(inner); ok {
		calloutKind = k
		inner = rest
	}
	children, warnings := Tokenize(inner, t.opts)
	t.warnings = append(t.warnings, warnings...)
	return Block{Kind: KindBlockquote, Children: children, CalloutKind: calloutKind}, i
}

func detectCallout(inner string) (kind, rest string, ok bool) {
	firstNL := strings.IndexByte(inner, '\n')
	first := inner
	if firstNL >= 0 {
		first = inner[:firstNL]
	}
	first = strings.TrimSpace(first)
	if !strings.HasPrefix(first, "[!") || !strings.HasSuffix(first, "]") {
		return "", inner, false
	}
	k := strings.ToUpper(first[2 : len(first)-1])
	switch k {
	case "NOTE", "TIP", "IMPORTANT", "WARNING", "CAUTION":
		if firstNL >= 0 {
			return k, strings.TrimPrefix(inner[firstNL+1:], "\n"), true
		}
		return k, "", true
	}
	return "", inner, false
}

func (t *blockTokenizer) consumeHTMLCommentBlock(lines []line, i int) (Block, int, bool) {
	var sb strings.Builder
	j := i
	for j < len(lines) {
		sb.WriteString(t.text(lines[j]))
		if strings.Contains(t.text(lines[j]), "-->") {
			j++
			break
		}
		sb.WriteByte('\n')
		j++
	}
	return Block{Kind: KindHtmlBlockComment, Text: sb.String()}, j, true
}

func (t *blockTokenizer) consumeHTMLTable(lines []line, i int) (Block, int, bool) {
	var sb strings.Builder
	j := i
	for j < len(lines) {
		sb.WriteString(t.text(lines[j]))
		if strings.Contains(strings.ToLower(t.text(lines[j])), "</table>") {
			j++
			break
		}
		sb.WriteByte('\n')
		j++
	}
	return Block{Kind: KindHtmlTable, XML: sb.String()}, j, true
}

func (t *blockTokenizer) consumeList(lines []line, i int) (Block, int) {
	ordered := false
	trimmed := strings.TrimLeft(t.text(lines[i]), " ")
	if len(trimmed) > 0 && trimmed[0] >= '0' && trimmed[0] <= '9' {
		ordered = true
	}
	var items [][]Block
	tight := true
	j := i
	for j < len(lines) {
		txt := t.text(lines[j])
		ltrim := strings.TrimLeft(txt, " ")
		if isBlank(txt) {
			if j+1 < len(lines) && isListMarker(strings.TrimLeft(t.text(lines[j+1]), " ")) {
				tight = false
				j++
				continue
			}
			break
		}
		if !isListMarker(ltrim) {
			if len(items) == 0 {
				break
			}
			// Continuation line: append to the last item's last paragraph text.
			last := items[len(items)-1]
			if len(last) > 0 && last[len(last)-1].Kind == KindParagraph {
				appended := renderRunsToText(last[len(last)-1].Runs) + "\n" + strings.TrimSpace(ltrim)
				last[len(last)-1].Runs = t.inlineRuns(appended, lines[j].start)
				items[len(items)-1] = last
			}
			j++
			continue
		}
		content := stripListMarker(ltrim)
		itemBlocks := []Block{{Kind: KindParagraph, Runs: t.inlineRuns(content, lines[j].start)}}
		items = append(items, itemBlocks)
		j++
	}
	return Block{Kind: KindList, Ordered: ordered, Tight: tight, Items: items}, j
}

func stripListMarker(s string) string {
	if len(s) > 0 && (s[0] == '-' || s[0] == '*' || s[0] == '+') {
		return strings.TrimSpace(s[1:])
	}
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i < len(s) {
		i++ // consume '.' or ')'
	}
	return strings.TrimSpace(s[i:])
}

func (t *blockTokenizer) consumeTable(lines []line, i int) (Block, int) {
	headers := splitRow(t.text(lines[i]))
	alignRow := splitRow(t.text(lines[i+1]))
	alignments := make([]Alignment, len(alignRow))
	for k, cell := range alignRow {
		cell = strings.TrimSpace(cell)
		left := strings.HasPrefix(cell, ":")
		right := strings.HasSuffix(cell, ":")
		switch {
		case left && right:
			alignments[k] = AlignCenter
		case right:
			alignments[k] = AlignRight
		case left:
			alignments[k] = AlignLeft
		default:
			alignments[k] = AlignNone
		}
	}
	headerRuns := make([]Run, len(headers))
	for k, h := range headers {
		runs := t.inlineRuns(strings.TrimSpace(h), lines[i].start)
		headerRuns[k] = Run{Kind: RunText, Children: runs}
	}
	j := i + 2
	var rows [][]Run
	for j < len(lines) && !isBlank(t.text(lines[j])) && strings.Contains(t.text(lines[j]), "|") {
		cells := splitRow(t.text(lines[j]))
		rowRuns := make([]Run, len(cells))
		for k, c := range cells {
			runs := t.inlineRuns(strings.TrimSpace(c), lines[j].start)
			rowRuns[k] = Run{Kind: RunText, Children: runs}
		}
		rows = append(rows, rowRuns)
		j++
	}
	return Block{Kind: KindTable, Headers: headerRuns, Rows: rows, Alignments: alignments}, j
}

func splitRow(line string) []string {
	s := strings.TrimSpace(line)
	s = strings.TrimPrefix(s, "|")
	s = strings.TrimSuffix(s, "|")
	parts := strings.Split(s, "|")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func renderRunsToText(runs []Run) string {
	var sb strings.Builder
	for _, r := range runs {
		if r.Kind == RunText {
			sb.WriteString(r.Text)
		}
	}
	return sb.String()
}
