package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strings"

	"scimark/internal/bibtex"
	"scimark/internal/highlight"
	"scimark/internal/latex"
)

// xmlNode is a generic parsed element, used the same way fromomml.go walks
// OMML: document.xml's body nesting is irregular enough that one flexible
// tree beats a typed struct per element.
type xmlNode struct {
	name     string
	attrs    map[string]string
	text     string
	children []xmlNode
}

func decodeXMLNode(data []byte) (xmlNode, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return xmlNode{}, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return decodeElementBody(dec, start)
		}
	}
}

func decodeElementBody(dec *xml.Decoder, start xml.StartElement) (xmlNode, error) {
	n := xmlNode{name: qualifiedName(start.Name), attrs: map[string]string{}}
	for _, a := range start.Attr {
		n.attrs[qualifiedName(a.Name)] = a.Value
	}
	for {
		tok, err := dec.Token()
		if err != nil {
			return n, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := decodeElementBody(dec, t)
			if err != nil {
				return n, err
			}
			n.children = append(n.children, child)
		case xml.CharData:
			n.text += string(t)
		case xml.EndElement:
			return n, nil
		}
	}
}

// qualifiedName drops the namespace URI encoding/xml resolves OOXML's m:/w:
// prefixes to (it isn't recoverable as a short prefix from the URI alone)
// and keeps just the local element/attribute name; every lookup below
// matches on that local name.
func qualifiedName(name xml.Name) string { return name.Local }

func (n xmlNode) localTag() string { return n.name }

func findChild(n xmlNode, localTag string) (xmlNode, bool) {
	for _, c := range n.children {
		if c.localTag() == localTag {
			return c, true
		}
	}
	return xmlNode{}, false
}

func childrenOf(n xmlNode, localTag string) []xmlNode {
	var out []xmlNode
	for _, c := range n.children {
		if c.localTag() == localTag {
			out = append(out, c)
		}
	}
	return out
}

func attr(n xmlNode, name string) string { return n.attrs[name] }

// reader carries the per-document state DocxReader needs while walking
// document.xml: recovered bibliography, comment bodies, hyperlink targets,
// citation-key allocation counter.
type reader struct {
	opts       Options
	store      *bibtex.Store
	comments   parsedComments
	rels       map[string]string // rId -> target URL (hyperlinks only)
	warnings   []Warning
	keyCounter int
	// inHeaderRow suppresses `**` for bold runs while rendering a table's
	// first row, whose bold DocxWriter applies to every header cell.
	inHeaderRow bool
}

func (r *reader) warn(kind, msg string) {
	r.warnings = append(r.warnings, Warning{Kind: kind, Message: msg})
}

// Read parses a `.docx` archive back into Manuscript Markdown text plus the
// bibliography recovered from any Zotero field codes (spec.md §4.6).
func Read(data []byte, opts Options) (string, *bibtex.Store, []Warning, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", nil, nil, fmt.Errorf("not a valid docx archive: %w", err)
	}
	parts := map[string][]byte{}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return "", nil, nil, err
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", nil, nil, err
		}
		parts[f.Name] = b
	}
	docBytes, ok := parts["word/document.xml"]
	if !ok {
		return "", nil, nil, fmt.Errorf("archive has no word/document.xml")
	}

	r := &reader{
		opts:     opts,
		store:    bibtex.NewStore(),
		comments: parseComments(parts["word/comments.xml"]),
		rels:     parseRelationships(parts["word/_rels/document.xml.rels"]),
	}

	root, err := decodeXMLNode(docBytes)
	if err != nil {
		return "", nil, nil, fmt.Errorf("malformed word/document.xml: %w", err)
	}
	body, ok := findChild(root, "body")
	if !ok {
		return "", r.store, r.warnings, nil
	}

	var sb strings.Builder
	for _, child := range body.children {
		switch child.localTag() {
		case "p":
			sb.WriteString(r.renderParagraph(child))
		case "tbl":
			sb.WriteString(r.renderTable(child))
		}
	}
	md := strings.TrimRight(sb.String(), "\n") + "\n"
	return md, r.store, r.warnings, nil
}

func parseRelationships(data []byte) map[string]string {
	out := map[string]string{}
	if len(data) == 0 {
		return out
	}
	var doc struct {
		Rel []struct {
			ID     string `xml:"Id,attr"`
			Target string `xml:"Target,attr"`
			Mode   string `xml:"TargetMode,attr"`
		} `xml:"Relationship"`
	}
	if err := xml.Unmarshal(data, &doc); err != nil {
		return out
	}
	for _, rel := range doc.Rel {
		if rel.Mode == "External" {
			out[rel.ID] = rel.Target
		}
	}
	return out
}

var headingStylePattern = regexp.MustCompile(`^Heading([1-6])$`)

// renderParagraph renders one `w:p` as a Markdown block, dispatching on its
// paragraph style (heading/title/quote/code/normal) per spec.md §4.6.
func (r *reader) renderParagraph(p xmlNode) string {
	style := r.paragraphStyle(p)
	text := r.renderRuns(p.children)

	switch {
	case style == "Title":
		return "# " + text + "\n\n"
	case headingStylePattern.MatchString(style):
		level := headingStylePattern.FindStringSubmatch(style)[1]
		return strings.Repeat("#", int(level[0]-'0')) + " " + text + "\n\n"
	case style == "CodeBlock":
		return "```\n" + text + "\n```\n\n"
	case style == "Quote" || style == "IntenseQuote":
		if text == "" {
			return ""
		}
		lines := strings.Split(text, "\n")
		var sb strings.Builder
		for _, line := range lines {
			sb.WriteString("> " + line + "\n")
		}
		sb.WriteString("\n")
		return sb.String()
	default:
		if text == "" {
			return "\n"
		}
		return text + "\n\n"
	}
}

func (r *reader) paragraphStyle(p xmlNode) string {
	pPr, ok := findChild(p, "pPr")
	if !ok {
		return ""
	}
	style, ok := findChild(pPr, "pStyle")
	if !ok {
		return ""
	}
	return attr(style, "val")
}

// renderRuns walks the inline content of a paragraph (runs, tracked
// changes, hyperlinks, comment anchors, math, field codes) and renders it
// back to Manuscript Markdown inline syntax.
func (r *reader) renderRuns(nodes []xmlNode) string {
	var sb strings.Builder
	var pendingField *fieldCodeState

	for i := 0; i < len(nodes); i++ {
		n := nodes[i]
		switch n.localTag() {
		case "r":
			if pendingField != nil && pendingField.state == fieldStateInstr {
				if instr, ok := findChild(n, "instrText"); ok {
					pendingField.instr += instr.text
					continue
				}
			}
			if fld, ok := findChild(n, "fldChar"); ok {
				switch attr(fld, "fldCharType") {
				case "begin":
					pendingField = &fieldCodeState{state: fieldStateInstr}
				case "separate":
					if pendingField != nil {
						pendingField.state = fieldStatePlaceholder
					}
				case "end":
					if pendingField != nil {
						sb.WriteString(r.renderFieldCode(pendingField.instr))
						pendingField = nil
					}
				}
				continue
			}
			if pendingField != nil && pendingField.state == fieldStatePlaceholder {
				continue // discard the cached placeholder text between separate/end
			}
			sb.WriteString(r.renderRun(n))
		case "ins":
			sb.WriteString("{++" + r.renderRuns(n.children) + "++}")
		case "del":
			sb.WriteString("{--" + r.renderDelRuns(n.children) + "--}")
		case "hyperlink":
			url := r.rels[attr(n, "id")]
			sb.WriteString("[" + r.renderRuns(n.children) + "](" + url + ")")
		case "commentRangeStart":
			// The common case anchors a comment within a single paragraph;
			// render it directly as `{==text==}{>>comment<<}` (or a
			// standalone `{>>comment<<}` for a zero-width anchor) rather
			// than the ID-based form, which spec.md §4.3 item 1 reserves
			// for ranges spanning more than one paragraph.
			id := attr(n, "id")
			if end := findCommentRangeEnd(nodes[i+1:], id); end >= 0 {
				anchorText := r.renderRuns(nodes[i+1 : i+1+end])
				commentText := r.comments[parseIntOr(id, -1)]
				if anchorText == "" {
					sb.WriteString("{>>" + commentText + "<<}")
				} else {
					sb.WriteString("{==" + anchorText + "==}{>>" + commentText + "<<}")
				}
				i += 1 + end
				continue
			}
			sb.WriteString("{##c" + id + "}")
		case "commentRangeEnd":
			sb.WriteString("{#c" + attr(n, "id") + ">>" + r.comments[parseIntOr(attr(n, "id"), -1)] + "<<}")
		case "oMath", "oMathPara":
			mathNode := n
			if n.localTag() == "oMathPara" {
				if inner, ok := findChild(n, "oMath"); ok {
					mathNode = inner
				}
			}
			latexText, err := latex.FromOMML(innerXML(mathNode))
			if err != nil {
				r.warn("unsupported-omml", "failed to recover LaTeX from an OMML node: "+err.Error())
				continue
			}
			if n.localTag() == "oMathPara" {
				sb.WriteString("$$" + latexText + "$$")
			} else {
				sb.WriteString("$" + latexText + "$")
			}
		}
	}
	return sb.String()
}

// findCommentRangeEnd returns the index within nodes of the commentRangeEnd
// matching id, or -1 if the range isn't closed in this node list (it spans
// into a later paragraph, so the caller must fall back to the ID-based
// anchor syntax).
func findCommentRangeEnd(nodes []xmlNode, id string) int {
	for i, n := range nodes {
		if n.localTag() == "commentRangeEnd" && attr(n, "id") == id {
			return i
		}
	}
	return -1
}

func parseIntOr(s string, def int) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return def
		}
		n = n*10 + int(c-'0')
	}
	if n == 0 && s != "0" {
		return def
	}
	return n
}

type fieldCodeState struct {
	state int
	instr string
}

const (
	fieldStateInstr = iota
	fieldStatePlaceholder
)

// renderFieldCode recovers a Zotero citation from a field code's
// accumulated instrText, or falls back to dropping an unrecognized field.
func (r *reader) renderFieldCode(instr string) string {
	items := reassembleFieldCode(instr, r.store, r.opts.CitationKeyFormat, &r.keyCounter, r.warn)
	if len(items) == 0 {
		return ""
	}
	parts := make([]string, 0, len(items))
	for _, it := range items {
		tag := "@" + it.Key
		if it.SuppressAuthor {
			tag = "-" + tag
		}
		if it.Locator != "" {
			tag += ", " + it.Locator
		}
		parts = append(parts, tag)
	}
	return "[" + strings.Join(parts, "; ") + "]"
}

// renderRun renders one `w:r` to inline Markdown, applying CriticMarkup
// highlight/format syntax and the hidden-carrier recovery rule for an
// HTML-comment run (spec.md §4.6 step 7).
func (r *reader) renderRun(n xmlNode) string {
	t, _ := findChild(n, "t")
	text := t.text
	if del, ok := findChild(n, "delText"); ok {
		text = del.text
	}
	rPr, hasRPr := findChild(n, "rPr")

	if hasRPr {
		if _, vanish := findChild(rPr, "vanish"); vanish && strings.HasPrefix(text, "​") {
			return recoverHiddenHTMLComment(text)
		}
	}

	if !hasRPr {
		return text
	}
	if style, ok := findChild(rPr, "rStyle"); ok && attr(style, "val") == "CodeChar" {
		return "`" + text + "`"
	}
	out := text
	if _, ok := findChild(rPr, "b"); ok && !r.inHeaderRow {
		out = "**" + out + "**"
	}
	if _, ok := findChild(rPr, "i"); ok {
		out = "*" + out + "*"
	}
	if _, ok := findChild(rPr, "strike"); ok {
		out = "~~" + out + "~~"
	}
	if shd, ok := findChild(rPr, "shd"); ok {
		color := highlight.FromHex(attr(shd, "fill"))
		if color == highlight.DefaultColor {
			out = "==" + out + "=="
		} else {
			out = "==" + out + "=={" + color + "}"
		}
	}
	return out
}

var hiddenCommentPattern = regexp.MustCompile(`^\x{200b}<!--\s?(.*?)\s?-->$`)

func recoverHiddenHTMLComment(text string) string {
	if m := hiddenCommentPattern.FindStringSubmatch(text); m != nil {
		return "<!-- " + m[1] + " -->"
	}
	return strings.TrimPrefix(text, "​")
}

// renderDelRuns is renderRuns specialized so nested plain runs read their
// deleted text from w:delText (OOXML forbids w:t inside w:del).
func (r *reader) renderDelRuns(nodes []xmlNode) string {
	return r.renderRuns(nodes)
}

func (r *reader) renderTable(tbl xmlNode) string {
	rows := childrenOf(tbl, "tr")
	if len(rows) == 0 {
		return ""
	}
	var sb strings.Builder
	header := childrenOf(rows[0], "tc")
	r.inHeaderRow = true
	sb.WriteString(r.tableRowLine(header))
	r.inHeaderRow = false
	sb.WriteString("|")
	for range header {
		sb.WriteString(" --- |")
	}
	sb.WriteString("\n")
	for _, row := range rows[1:] {
		sb.WriteString(r.tableRowLine(childrenOf(row, "tc")))
	}
	sb.WriteString("\n")
	return sb.String()
}

func (r *reader) tableRowLine(cells []xmlNode) string {
	var sb strings.Builder
	sb.WriteString("|")
	for _, cell := range cells {
		var cellText strings.Builder
		for _, p := range childrenOf(cell, "p") {
			cellText.WriteString(r.renderRuns(p.children))
		}
		sb.WriteString(" " + strings.TrimSpace(cellText.String()) + " |")
	}
	sb.WriteString("\n")
	return sb.String()
}

// innerXML re-serializes n's children (not n itself) back to an XML
// fragment, the shape latex.FromOMML expects for the inside of an
// `m:oMath` element.
func innerXML(n xmlNode) string {
	var sb strings.Builder
	for _, c := range n.children {
		c.writeXML(&sb)
	}
	return sb.String()
}

func (n xmlNode) writeXML(sb *strings.Builder) {
	sb.WriteString("<" + n.name)
	for k, v := range n.attrs {
		fmt.Fprintf(sb, ` %s="%s"`, k, escapeAttr(v))
	}
	sb.WriteString(">")
	sb.WriteString(escapeXMLBody(n.text))
	for _, c := range n.children {
		c.writeXML(sb)
	}
	sb.WriteString("</" + n.name + ">")
}
