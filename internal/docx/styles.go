package docx

import (
	"fmt"
	"strings"

	"scimark/internal/mdtoken"
)

// Half-point font sizes (spec.md §4.5): 1 point = 2 half-points.
const (
	defaultBodyHp     = 22
	defaultCodeHp     = 20
	defaultFootnoteHp = 20
	defaultEndnoteHp  = 20
	defaultTitleHp    = 56
)

var defaultHeadingHp = [6]int{32, 26, 24, 22, 20, 18}

// fontPlan is the resolved set of sizes/families DocxWriter emits into
// styles.xml, computed once per conversion from Options/Frontmatter per the
// font-override resolution arithmetic.
type fontPlan struct {
	bodyHp     int
	codeHp     int
	headingHp  [6]int
	titleHp    int
	bodyFont   string
	codeFont   string
	headerFont string
	titleFont  string
	titleStyle string // canonical "bold-italic-underline" subset, or "normal"
}

func resolveFontPlan(fm mdtoken.Frontmatter) fontPlan {
	plan := fontPlan{
		bodyHp:    defaultBodyHp,
		codeHp:    defaultCodeHp,
		headingHp: defaultHeadingHp,
		titleHp:   defaultTitleHp,
		bodyFont:  firstNonEmpty(fm.Font, "Calibri"),
		codeFont:  firstNonEmpty(fm.CodeFont, "Consolas"),
		headerFont: firstNonEmpty(fm.HeaderFont, fm.Font, "Calibri"),
		titleFont: firstNonEmpty(fm.TitleFont, fm.Font, "Calibri"),
	}

	if fm.HasFontSize {
		plan.bodyHp = hp(fm.FontSize)
		if fm.HasCodeFontSize {
			plan.codeHp = hp(fm.CodeFontSize)
		} else {
			plan.codeHp = maxInt(2, plan.bodyHp-2)
		}
		for i := range plan.headingHp {
			plan.headingHp[i] = roundInt(float64(defaultHeadingHp[i]) / 22.0 * float64(plan.bodyHp))
		}
	} else if fm.HasCodeFontSize {
		plan.codeHp = hp(fm.CodeFontSize)
	}

	if len(fm.HeaderFontSize) > 0 {
		for i := range plan.headingHp {
			src := fm.HeaderFontSize
			idx := i
			if idx >= len(src) {
				idx = len(src) - 1
			}
			plan.headingHp[i] = hp(src[idx])
		}
	}
	if fm.HasTitleFontSize {
		plan.titleHp = hp(fm.TitleFontSize)
	}
	plan.titleStyle = "normal"
	if fm.TitleFontStyle != "" {
		plan.titleStyle = fm.TitleFontStyle
	}
	return plan
}

// hp converts a point size (as given in frontmatter) to half-points.
func hp(points float64) int { return roundInt(points * 2) }

func roundInt(f float64) int {
	if f < 0 {
		return int(f - 0.5)
	}
	return int(f + 0.5)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// stylesXML generates word/styles.xml from scratch. Write always uses it:
// Options.TemplateDocx is not read, so a template's style definitions are
// not carried into the archive.
func stylesXML(plan fontPlan) string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">`)
	sb.WriteString(docDefaults(plan))

	sb.WriteString(paraStyle("Normal", "Normal", plan.bodyFont, plan.bodyHp, "", true))
	for lvl := 1; lvl <= 6; lvl++ {
		id := fmt.Sprintf("Heading%d", lvl)
		sb.WriteString(paraStyle(id, fmt.Sprintf("heading %d", lvl), plan.headerFont, plan.headingHp[lvl-1], "bold", false))
	}
	sb.WriteString(paraStyle("Title", "Title", plan.titleFont, plan.titleHp, plan.titleStyle, false))
	sb.WriteString(paraStyle("Quote", "Quote", plan.bodyFont, plan.bodyHp, "italic", false))
	sb.WriteString(paraStyle("IntenseQuote", "Intense Quote", plan.bodyFont, plan.bodyHp, "bold-italic", false))
	sb.WriteString(charStyle("CodeChar", "Code Char", plan.codeFont, plan.codeHp))
	sb.WriteString(paraStyle("CodeBlock", "Code Block", plan.codeFont, plan.codeHp, "", false))
	sb.WriteString(paraStyle("FootnoteText", "footnote text", plan.bodyFont, defaultFootnoteHp, "", false))
	sb.WriteString(paraStyle("EndnoteText", "endnote text", plan.bodyFont, defaultEndnoteHp, "", false))
	sb.WriteString(charStyle("Hyperlink", "Hyperlink", plan.bodyFont, plan.bodyHp))
	sb.WriteString(tableGridStyle())

	sb.WriteString(`</w:styles>`)
	return sb.String()
}

func docDefaults(plan fontPlan) string {
	return fmt.Sprintf(`<w:docDefaults><w:rPrDefault><w:rPr><w:rFonts w:ascii="%s" w:hAnsi="%s"/><w:sz w:val="%d"/></w:rPr></w:rPrDefault></w:docDefaults>`,
		plan.bodyFont, plan.bodyFont, plan.bodyHp)
}

func paraStyle(id, name, font string, sizeHp int, style string, isDefault bool) string {
	def := ""
	if isDefault {
		def = ` w:default="1"`
	}
	return fmt.Sprintf(`<w:style w:type="paragraph" w:styleId="%s"%s><w:name w:val="%s"/><w:rPr>%s<w:rFonts w:ascii="%s" w:hAnsi="%s"/><w:sz w:val="%d"/></w:rPr></w:style>`,
		id, def, name, styleToggleXML(style), font, font, sizeHp)
}

func charStyle(id, name, font string, sizeHp int) string {
	return fmt.Sprintf(`<w:style w:type="character" w:styleId="%s"><w:name w:val="%s"/><w:rPr><w:rFonts w:ascii="%s" w:hAnsi="%s"/><w:sz w:val="%d"/></w:rPr></w:style>`,
		id, name, font, font, sizeHp)
}

// styleToggleXML renders bold/italic/underline w:rPr toggles from a
// canonical "bold-italic-underline" style string.
func styleToggleXML(style string) string {
	if style == "" || style == "normal" {
		return ""
	}
	var sb strings.Builder
	parts := strings.Split(style, "-")
	for _, p := range parts {
		switch p {
		case "bold":
			sb.WriteString(`<w:b/>`)
		case "italic":
			sb.WriteString(`<w:i/>`)
		case "underline":
			sb.WriteString(`<w:u w:val="single"/>`)
		}
	}
	return sb.String()
}

// tableGridStyle emits the single-line-border table style all generated
// tables reference, since a from-scratch styles.xml carries none of
// Word's built-in style definitions.
func tableGridStyle() string {
	return `<w:style w:type="table" w:styleId="TableGrid"><w:name w:val="Table Grid"/>` +
		`<w:tblPr><w:tblBorders>` +
		`<w:top w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
		`<w:left w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
		`<w:bottom w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
		`<w:right w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
		`<w:insideH w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
		`<w:insideV w:val="single" w:sz="4" w:space="0" w:color="auto"/>` +
		`</w:tblBorders></w:tblPr></w:style>`
}

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
