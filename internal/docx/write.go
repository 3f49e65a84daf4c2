package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"scimark/internal/bibtex"
	"scimark/internal/highlight"
	"scimark/internal/inertzone"
	"scimark/internal/latex"
	"scimark/internal/mdtoken"
)

type writer struct {
	opts       Options
	store      *bibtex.Store
	warnings   []Warning
	nums       *numberingRegistry
	comments   *commentRegistry
	rels       *relRegistry
	rsid       string
	nextID     int
	citationID int
	date       string
}

// Write assembles a complete `.docx` archive from a tokenized Markdown
// document (spec.md §4.5).
func Write(blocks []mdtoken.Block, fm mdtoken.Frontmatter, store *bibtex.Store, opts Options) ([]byte, []Warning, error) {
	if store == nil {
		store = bibtex.NewStore()
	}
	w := &writer{
		opts:     opts,
		store:    store,
		nums:     newNumberingRegistry(),
		comments: newCommentRegistry(),
		rels:     newRelRegistry(),
		rsid:     rsidFromUUID(uuid.New()),
	}
	if opts.Now != nil {
		w.date = opts.Now()
	} else {
		w.date = time.Now().UTC().Format(time.RFC3339)
	}

	var body strings.Builder
	if len(fm.Title) > 0 {
		body.WriteString(w.titleParagraph(fm.Title[0]))
	}
	for _, b := range blocks {
		body.WriteString(w.blockXML(b))
	}
	body.WriteString(sectPrXML)

	plan := resolveFontPlan(fm)
	documentXML := xmlHeader + `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:m="http://schemas.openxmlformats.org/officeDocument/2006/math" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"><w:body>` +
		body.String() + `</w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	write := func(name, content string) error {
		fw, err := zw.Create(name)
		if err != nil {
			return err
		}
		_, err = fw.Write([]byte(content))
		return err
	}
	if err := write("[Content_Types].xml", contentTypesXML(!w.nums.Empty(), !w.comments.Empty())); err != nil {
		return nil, w.warnings, err
	}
	if err := write("_rels/.rels", packageRelsXML); err != nil {
		return nil, w.warnings, err
	}
	if err := write("word/document.xml", documentXML); err != nil {
		return nil, w.warnings, err
	}
	if err := write("word/styles.xml", stylesXML(plan)); err != nil {
		return nil, w.warnings, err
	}
	if err := write("word/_rels/document.xml.rels", w.rels.XML(!w.nums.Empty(), !w.comments.Empty())); err != nil {
		return nil, w.warnings, err
	}
	if !w.nums.Empty() {
		if err := write("word/numbering.xml", w.nums.XML()); err != nil {
			return nil, w.warnings, err
		}
	}
	if !w.comments.Empty() {
		if err := write("word/comments.xml", w.comments.XML()); err != nil {
			return nil, w.warnings, err
		}
	}
	if err := write("word/settings.xml", settingsXML(w.rsid)); err != nil {
		return nil, w.warnings, err
	}
	if err := zw.Close(); err != nil {
		return nil, w.warnings, err
	}
	return buf.Bytes(), w.warnings, nil
}

func rsidFromUUID(id uuid.UUID) string {
	return fmt.Sprintf("%08X", id[0:4:4])[:8]
}

func settingsXML(rsid string) string {
	return xmlHeader + `<w:settings xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:rsids><w:rsidRoot w:val="` + rsid + `"/><w:rsid w:val="` + rsid + `"/></w:rsids>` +
		`</w:settings>`
}

const sectPrXML = `<w:sectPr><w:pgSz w:w="12240" w:h="15840"/><w:pgMar w:top="1440" w:right="1440" w:bottom="1440" w:left="1440"/></w:sectPr>`

func (w *writer) warn(kind, msg string) {
	w.warnings = append(w.warnings, Warning{Kind: kind, Message: msg})
}

func (w *writer) allocID() int {
	w.nextID++
	return w.nextID
}

func (w *writer) nextCitationID() int {
	w.citationID++
	return w.citationID
}

func (w *writer) titleParagraph(title string) string {
	return fmt.Sprintf(`<w:p><w:pPr><w:pStyle w:val="Title"/></w:pPr><w:r><w:t xml:space="preserve">%s</w:t></w:r></w:p>`, escapeXMLBody(title))
}

// blockXML dispatches one mdtoken.Block to its OOXML rendering.
func (w *writer) blockXML(b mdtoken.Block) string {
	switch b.Kind {
	case mdtoken.KindParagraph:
		return w.paraXML("Normal", b.Runs, 0, -1, false)
	case mdtoken.KindHeading:
		return w.headingXML(b)
	case mdtoken.KindCodeBlock:
		return w.codeBlockXML(b)
	case mdtoken.KindBlockquote:
		return w.blockquoteXML(b)
	case mdtoken.KindList:
		return w.listXML(b, 0)
	case mdtoken.KindTable:
		return w.tableXML(b)
	case mdtoken.KindMathBlock:
		return w.mathBlockXML(b)
	case mdtoken.KindHorizontalRule:
		return `<w:p><w:pPr><w:pBdr><w:bottom w:val="single" w:sz="6" w:space="1" w:color="auto"/></w:pBdr></w:pPr></w:p>`
	case mdtoken.KindHtmlBlockComment:
		return `<w:p>` + hiddenHTMLCommentRunXML(b.Text) + `</w:p>`
	case mdtoken.KindHtmlTable:
		w.warn("html-table-passthrough", "embedding raw HTML table as an OOXML altChunk is not supported; table text preserved as a paragraph")
		return fmt.Sprintf(`<w:p><w:r><w:t xml:space="preserve">%s</w:t></w:r></w:p>`, escapeXMLBody(b.XML))
	default:
		return ""
	}
}

func (w *writer) headingXML(b mdtoken.Block) string {
	bookmarkID := w.allocID()
	style := fmt.Sprintf("Heading%d", clampLevel(b.Level))
	var sb strings.Builder
	fmt.Fprintf(&sb, `<w:p><w:pPr><w:pStyle w:val="%s"/></w:pPr>`, style)
	fmt.Fprintf(&sb, `<w:bookmarkStart w:id="%d" w:name="heading%d"/>`, bookmarkID, bookmarkID)
	for _, r := range b.Runs {
		sb.WriteString(w.inlineXML(r))
	}
	fmt.Fprintf(&sb, `<w:bookmarkEnd w:id="%d"/>`, bookmarkID)
	sb.WriteString(`</w:p>`)
	return sb.String()
}

// calloutLabel renders a GFM callout kind ("NOTE", "WARNING", ...) as the
// title-case label Word readers expect ("Note", "Warning", ...).
func calloutLabel(kind string) string {
	lower := strings.ToLower(kind)
	if lower == "" {
		return lower
	}
	return strings.ToUpper(lower[:1]) + lower[1:]
}

func clampLevel(level int) int {
	if level < 1 {
		return 1
	}
	if level > 6 {
		return 6
	}
	return level
}

func (w *writer) codeBlockXML(b mdtoken.Block) string {
	var sb strings.Builder
	for _, line := range strings.Split(b.Text, "\n") {
		fmt.Fprintf(&sb, `<w:p><w:pPr><w:pStyle w:val="CodeBlock"/></w:pPr><w:r><w:rPr><w:rStyle w:val="CodeChar"/></w:rPr><w:t xml:space="preserve">%s</w:t></w:r></w:p>`,
			escapeXMLBody(line))
	}
	return sb.String()
}

func (w *writer) blockquoteXML(b mdtoken.Block) string {
	var sb strings.Builder
	if b.CalloutKind != "" {
		fmt.Fprintf(&sb, `<w:p><w:pPr><w:pStyle w:val="IntenseQuote"/></w:pPr><w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">%s</w:t></w:r></w:p>`,
			escapeXMLBody(calloutLabel(b.CalloutKind)))
	}
	for _, child := range b.Children {
		sb.WriteString(w.quotedBlockXML(child))
	}
	return sb.String()
}

// quotedBlockXML renders a blockquote child block under the Quote style
// rather than its normal top-level style.
func (w *writer) quotedBlockXML(b mdtoken.Block) string {
	if b.Kind == mdtoken.KindParagraph {
		return w.paraXML("Quote", b.Runs, 0, -1, false)
	}
	return w.blockXML(b)
}

func (w *writer) listXML(b mdtoken.Block, level int) string {
	numID := w.nums.NumID(b.Ordered, level)
	var sb strings.Builder
	for _, item := range b.Items {
		for _, ib := range item {
			if ib.Kind == mdtoken.KindList {
				sb.WriteString(w.listXML(ib, level+1))
				continue
			}
			sb.WriteString(w.paraXML("Normal", ib.Runs, level, numID, false))
		}
	}
	return sb.String()
}

func (w *writer) tableXML(b mdtoken.Block) string {
	var sb strings.Builder
	sb.WriteString(`<w:tbl><w:tblPr><w:tblStyle w:val="TableGrid"/><w:tblW w:w="0" w:type="auto"/></w:tblPr>`)
	sb.WriteString(w.tableRowXML(b.Headers, b.Alignments, true))
	for _, row := range b.Rows {
		sb.WriteString(w.tableRowXML(row, b.Alignments, false))
	}
	sb.WriteString(`</w:tbl>`)
	return sb.String()
}

func (w *writer) tableRowXML(cells []mdtoken.Run, alignments []mdtoken.Alignment, header bool) string {
	var sb strings.Builder
	sb.WriteString(`<w:tr>`)
	for i, cell := range cells {
		align := mdtoken.AlignNone
		if i < len(alignments) {
			align = alignments[i]
		}
		sb.WriteString(`<w:tc><w:tcPr/>`)
		sb.WriteString(w.cellParaXML(cell.Children, align, header))
		sb.WriteString(`</w:tc>`)
	}
	sb.WriteString(`</w:tr>`)
	return sb.String()
}

func (w *writer) cellParaXML(runs []mdtoken.Run, align mdtoken.Alignment, bold bool) string {
	var sb strings.Builder
	sb.WriteString(`<w:p><w:pPr>`)
	switch align {
	case mdtoken.AlignCenter:
		sb.WriteString(`<w:jc w:val="center"/>`)
	case mdtoken.AlignRight:
		sb.WriteString(`<w:jc w:val="right"/>`)
	case mdtoken.AlignLeft:
		sb.WriteString(`<w:jc w:val="left"/>`)
	}
	sb.WriteString(`</w:pPr>`)
	for _, r := range runs {
		if bold {
			r.Bold = true
		}
		sb.WriteString(w.inlineXML(r))
	}
	sb.WriteString(`</w:p>`)
	return sb.String()
}

func (w *writer) mathBlockXML(b mdtoken.Block) string {
	nodes := latex.ToOMML(b.Latex)
	var inner strings.Builder
	for _, n := range nodes {
		inner.WriteString(n.XML())
	}
	return fmt.Sprintf(`<w:p><m:oMathPara><m:oMath>%s</m:oMath></m:oMathPara></w:p>`, inner.String())
}

// paraXML renders a paragraph (or table-cell pseudo-paragraph) given its
// runs. level >= 0 with numID >= 0 attaches w:numPr for a list item. bold
// forces every run bold (used for a table header row).
func (w *writer) paraXML(style string, runs []mdtoken.Run, level, numID int, bold bool) string {
	var sb strings.Builder
	sb.WriteString(`<w:p><w:pPr>`)
	if style != "" && style != "Normal" {
		fmt.Fprintf(&sb, `<w:pStyle w:val="%s"/>`, style)
	}
	if numID >= 0 {
		fmt.Fprintf(&sb, `<w:numPr><w:ilvl w:val="%d"/><w:numId w:val="%d"/></w:numPr>`, level, numID)
	}
	sb.WriteString(`</w:pPr>`)
	for _, r := range runs {
		if bold {
			r.Bold = true
		}
		sb.WriteString(w.inlineXML(r))
	}
	sb.WriteString(`</w:p>`)
	return sb.String()
}

// inlineXML dispatches one mdtoken.Run to its OOXML rendering, including
// the variants that need writer state (hyperlink rIds, comment ids,
// revision ids/dates).
func (w *writer) inlineXML(r mdtoken.Run) string {
	switch r.Kind {
	case mdtoken.RunText:
		return runXML(r)
	case mdtoken.RunLink:
		rid := w.rels.RID(r.URL)
		var inner strings.Builder
		for _, c := range r.Children {
			inner.WriteString(w.inlineXML(c))
		}
		return fmt.Sprintf(`<w:hyperlink r:id="%s"><w:r><w:rPr><w:rStyle w:val="Hyperlink"/></w:rPr></w:r>%s</w:hyperlink>`, rid, inner.String())
	case mdtoken.RunInlineMath:
		nodes := latex.ToOMML(r.Latex)
		var inner strings.Builder
		for _, n := range nodes {
			inner.WriteString(n.XML())
		}
		return fmt.Sprintf(`<m:oMath>%s</m:oMath>`, inner.String())
	case mdtoken.RunCitation:
		return w.citationXML(r.Items)
	case mdtoken.RunCriticIns:
		return w.revisionInsXML(r)
	case mdtoken.RunCriticDel:
		return w.revisionDelXML(r)
	case mdtoken.RunCriticSub:
		id := w.allocID()
		author := defaultAuthor(w.opts.AuthorName)
		return w.delXMLWith(id, author, w.date, r.Old) + w.insXMLWith(w.allocID(), author, w.date, r.New)
	case mdtoken.RunCriticComment:
		return w.commentXML(r)
	case mdtoken.RunHtmlComment:
		return hiddenHTMLCommentRunXML(r.Latex)
	default:
		return ""
	}
}

func defaultAuthor(name string) string {
	if name == "" {
		return "Unknown"
	}
	return name
}

func (w *writer) revisionInsXML(r mdtoken.Run) string {
	return w.insXMLWith(w.allocID(), defaultAuthor(nonEmpty(r.Author, w.opts.AuthorName)), nonEmpty(r.Date, w.date), r.Children)
}

func (w *writer) revisionDelXML(r mdtoken.Run) string {
	return w.delXMLWith(w.allocID(), defaultAuthor(nonEmpty(r.Author, w.opts.AuthorName)), nonEmpty(r.Date, w.date), r.Children)
}

func (w *writer) insXMLWith(id int, author, date string, children []mdtoken.Run) string {
	var inner strings.Builder
	for _, c := range children {
		inner.WriteString(w.inlineXML(c))
	}
	return fmt.Sprintf(`<w:ins w:id="%d" w:author="%s" w:date="%s">%s</w:ins>`, id, escapeAttr(author), escapeAttr(date), inner.String())
}

func (w *writer) delXMLWith(id int, author, date string, children []mdtoken.Run) string {
	var inner strings.Builder
	for _, c := range children {
		inner.WriteString(delRunXML(c))
	}
	return fmt.Sprintf(`<w:del w:id="%d" w:author="%s" w:date="%s">%s</w:del>`, id, escapeAttr(author), escapeAttr(date), inner.String())
}

// delRunXML renders run text as `w:delText` rather than `w:t`, as OOXML
// requires inside a `w:del`.
func delRunXML(r mdtoken.Run) string {
	if r.Kind != mdtoken.RunText {
		return runXML(r)
	}
	return fmt.Sprintf(`<w:r><w:delText xml:space="preserve">%s</w:delText></w:r>`, escapeXMLBody(r.Text))
}

func (w *writer) commentXML(r mdtoken.Run) string {
	id := w.comments.Allocate(defaultAuthor(nonEmpty(r.Author, w.opts.AuthorName)), nonEmpty(r.Date, w.date), plainTextOf(r.Children))
	var anchorInner strings.Builder
	for _, a := range r.Anchor {
		anchorInner.WriteString(w.inlineXML(a))
	}
	return fmt.Sprintf(`<w:commentRangeStart w:id="%d"/>%s<w:commentRangeEnd w:id="%d"/><w:r><w:commentReference w:id="%d"/></w:r>`,
		id, anchorInner.String(), id, id)
}

func plainTextOf(runs []mdtoken.Run) string {
	var sb strings.Builder
	for _, r := range runs {
		if r.Kind == mdtoken.RunText {
			sb.WriteString(r.Text)
		}
	}
	return sb.String()
}

func hiddenHTMLCommentRunXML(comment string) string {
	return fmt.Sprintf(`<w:r><w:rPr><w:vanish/></w:rPr><w:t xml:space="preserve">​<!-- %s --></w:t></w:r>`, escapeXMLBody(comment))
}

// runXML renders a plain RunText, applying the toggle/code/highlight rules
// from spec.md §4.5 (code strips all other toggles at serialization).
func runXML(r mdtoken.Run) string {
	if r.Kind != mdtoken.RunText {
		return ""
	}
	var rPr strings.Builder
	if r.Code {
		rPr.WriteString(`<w:rStyle w:val="CodeChar"/>`)
	} else {
		if r.Bold {
			rPr.WriteString(`<w:b/>`)
		}
		if r.Italic {
			rPr.WriteString(`<w:i/>`)
		}
		if r.Underline {
			rPr.WriteString(`<w:u w:val="single"/>`)
		}
		if r.Strike {
			rPr.WriteString(`<w:strike/>`)
		}
		if r.Sup {
			rPr.WriteString(`<w:vertAlign w:val="superscript"/>`)
		}
		if r.Sub {
			rPr.WriteString(`<w:vertAlign w:val="subscript"/>`)
		}
		if r.Highlight {
			fmt.Fprintf(&rPr, `<w:shd w:val="clear" w:fill="%s"/>`, highlight.Hex(r.Color))
		}
	}
	rPrXML := ""
	if rPr.Len() > 0 {
		rPrXML = `<w:rPr>` + rPr.String() + `</w:rPr>`
	}
	return fmt.Sprintf(`<w:r>%s<w:t xml:space="preserve">%s</w:t></w:r>`, rPrXML, escapeXMLBody(r.Text))
}

func nonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// inertZoneExpand moves a position that falls inside a code/math span to
// that span's end; a position outside every span is returned unchanged.
func inertZoneExpand(idx *inertzone.Index, pos int) int {
	if span, ok := idx.SpanAt(pos); ok {
		return span.End
	}
	return pos
}
