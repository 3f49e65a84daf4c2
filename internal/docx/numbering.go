package docx

import (
	"fmt"
	"strings"
)

// numberingRegistry allocates abstractNum/num ids for Markdown lists
// encountered during emission, one pair per (ordered, level) combination
// actually used, in first-encounter order (spec.md §5 ordering guarantee).
type numberingRegistry struct {
	entries []numDef
	seen    map[string]int // key "ordered/level" -> numId
}

type numDef struct {
	numID    int
	ordered  bool
	level    int
}

func newNumberingRegistry() *numberingRegistry {
	return &numberingRegistry{seen: map[string]int{}}
}

// NumID returns the numId to use for a list item at the given level
// (0-based) and ordered-ness, allocating a fresh abstractNum/num pair on
// first use.
func (r *numberingRegistry) NumID(ordered bool, level int) int {
	key := fmt.Sprintf("%v/%d", ordered, level)
	if id, ok := r.seen[key]; ok {
		return id
	}
	id := len(r.entries) + 1
	r.entries = append(r.entries, numDef{numID: id, ordered: ordered, level: level})
	r.seen[key] = id
	return id
}

func (r *numberingRegistry) Empty() bool { return len(r.entries) == 0 }

// XML renders word/numbering.xml for every (ordered, level) pair the
// registry allocated.
func (r *numberingRegistry) XML() string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<w:numbering xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">`)
	for _, d := range r.entries {
		sb.WriteString(abstractNumXML(d))
	}
	for _, d := range r.entries {
		fmt.Fprintf(&sb, `<w:num w:numId="%d"><w:abstractNumId w:val="%d"/></w:num>`, d.numID, d.numID)
	}
	sb.WriteString(`</w:numbering>`)
	return sb.String()
}

func abstractNumXML(d numDef) string {
	fmtVal, text := "bullet", "•"
	if d.ordered {
		fmtVal, text = "decimal", "%1."
	}
	indent := 360 + 360*d.level
	return fmt.Sprintf(`<w:abstractNum w:abstractNumId="%d"><w:lvl w:ilvl="%d"><w:start w:val="1"/><w:numFmt w:val="%s"/><w:lvlText w:val="%s"/><w:lvlJc w:val="left"/><w:pPr><w:ind w:left="%d" w:hanging="360"/></w:pPr></w:lvl></w:abstractNum>`,
		d.numID, d.level, fmtVal, text, indent)
}
