package latex

import (
	"encoding/xml"
	"strings"
)

// FromOMML parses a raw OMML fragment (the inner XML of an `m:oMath` or
// `m:oMathPara` element) and recovers LaTeX, detecting hidden-carrier runs
// by their U+200B prefix and reversing them to `ws%text\n` / `ws%\n`
// (spec.md §4.4's inverse direction).
func FromOMML(raw string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader("<root>" + raw + "</root>"))
	root, err := decodeElement(dec, xml.StartElement{Name: xml.Name{Local: "root"}})
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, c := range root.children {
		writeLatex(c, &sb)
	}
	return sb.String(), nil
}

type xmlNode struct {
	name     string
	attrs    map[string]string
	text     string
	children []xmlNode
}

func localName(full string) string {
	if i := strings.IndexByte(full, ':'); i >= 0 {
		return full[i+1:]
	}
	return full
}

func decodeElement(dec *xml.Decoder, start xml.StartElement) (xmlNode, error) {
	node := xmlNode{name: qualifiedName(start.Name), attrs: map[string]string{}}
	for _, a := range start.Attr {
		node.attrs[qualifiedName(a.Name)] = a.Value
	}
	for {
		tok, err := dec.Token()
		if err != nil {
			return node, nil
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, _ := decodeElement(dec, t)
			node.children = append(node.children, child)
		case xml.CharData:
			node.text += string(t)
		case xml.EndElement:
			return node, nil
		}
	}
}

func qualifiedName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	// encoding/xml reports namespace URIs in Space; OOXML's m:/w: prefixes
	// aren't recoverable from that, so tag matching below uses local names
	// (findChild/childrenOf), not the raw qualified string.
	return n.Local
}

func findChild(n xmlNode, local string) (xmlNode, bool) {
	for _, c := range n.children {
		if localName(c.name) == local {
			return c, true
		}
	}
	return xmlNode{}, false
}

func childrenOf(n xmlNode, local string) []xmlNode {
	var out []xmlNode
	for _, c := range n.children {
		if localName(c.name) == local {
			out = append(out, c)
		}
	}
	return out
}

func isHidden(n xmlNode) bool {
	if localName(n.name) != "r" {
		return false
	}
	rPr, ok := findChild(n, "rPr")
	if !ok {
		return false
	}
	_, nor := findChild(rPr, "nor")
	return nor
}

func runText(n xmlNode) (string, bool) {
	t, ok := findChild(n, "t")
	if !ok {
		return "", false
	}
	return t.text, true
}

func writeLatex(n xmlNode, sb *strings.Builder) {
	switch localName(n.name) {
	case "r":
		text, ok := runText(n)
		if !ok {
			return
		}
		if isHidden(n) && strings.HasPrefix(text, "\u200b") {
			payload := strings.TrimPrefix(text, "\u200b")
			sb.WriteString(recoverHiddenCarrier(payload))
			return
		}
		sb.WriteString(text)
	case "f":
		num, _ := findChild(n, "num")
		den, _ := findChild(n, "den")
		sb.WriteString(`\frac{`)
		writeChildren(num, sb)
		sb.WriteString(`}{`)
		writeChildren(den, sb)
		sb.WriteString(`}`)
	case "rad":
		e, _ := findChild(n, "e")
		sb.WriteString(`\sqrt{`)
		writeChildren(e, sb)
		sb.WriteString(`}`)
	case "sSup":
		e, _ := findChild(n, "e")
		sup, _ := findChild(n, "sup")
		writeChildren(e, sb)
		sb.WriteString(`^{`)
		writeChildren(sup, sb)
		sb.WriteString(`}`)
	case "sSub":
		e, _ := findChild(n, "e")
		sub, _ := findChild(n, "sub")
		writeChildren(e, sb)
		sb.WriteString(`_{`)
		writeChildren(sub, sb)
		sb.WriteString(`}`)
	case "sSubSup":
		e, _ := findChild(n, "e")
		sub, _ := findChild(n, "sub")
		sup, _ := findChild(n, "sup")
		writeChildren(e, sb)
		sb.WriteString(`_{`)
		writeChildren(sub, sb)
		sb.WriteString(`}^{`)
		writeChildren(sup, sb)
		sb.WriteString(`}`)
	case "acc":
		accent := reverseAccent(n.attrs["chr"])
		e, _ := findChild(n, "e")
		sb.WriteString(`\` + accent + `{`)
		writeChildren(e, sb)
		sb.WriteString(`}`)
	case "func":
		name, _ := findChild(n, "fName")
		e, _ := findChild(n, "e")
		writeChildren(name, sb)
		sb.WriteString(`{`)
		writeChildren(e, sb)
		sb.WriteString(`}`)
	case "nary":
		naryPr, _ := findChild(n, "naryPr")
		chr, _ := findChild(naryPr, "chr")
		sym := reverseNarySymbol(chr.attrs["val"])
		sub, hasSub := findChild(n, "sub")
		sup, hasSup := findChild(n, "sup")
		e, _ := findChild(n, "e")
		sb.WriteString(sym)
		if hasSub && len(sub.children) > 0 {
			sb.WriteString(`_{`)
			writeChildren(sub, sb)
			sb.WriteString(`}`)
		}
		if hasSup && len(sup.children) > 0 {
			sb.WriteString(`^{`)
			writeChildren(sup, sb)
			sb.WriteString(`}`)
		}
		writeChildren(e, sb)
	case "d":
		begChr := n.attrs["begChr"]
		endChr := n.attrs["endChr"]
		e, _ := findChild(n, "e")
		sb.WriteString(`\left` + delimOrDot(begChr))
		writeChildren(e, sb)
		sb.WriteString(`\right` + delimOrDot(endChr))
	case "m":
		rows := childrenOf(n, "mr")
		sb.WriteString(`\begin{matrix}`)
		for i, row := range rows {
			if i > 0 {
				sb.WriteString(`\\`)
			}
			cells := childrenOf(row, "e")
			for j, cell := range cells {
				if j > 0 {
					sb.WriteString(`&`)
				}
				writeChildren(cell, sb)
			}
		}
		sb.WriteString(`\end{matrix}`)
	default:
		writeChildren(n, sb)
	}
}

func writeChildren(n xmlNode, sb *strings.Builder) {
	for _, c := range n.children {
		writeLatex(c, sb)
	}
}

func delimOrDot(c string) string {
	if c == "" {
		return "."
	}
	return c
}

// recoverHiddenCarrier reverses hiddenRun's payload back to `ws%text\n` /
// `ws%\n`.
func recoverHiddenCarrier(payload string) string {
	if strings.HasSuffix(payload, "%\n") {
		return payload
	}
	if strings.HasSuffix(payload, "%") {
		return payload + "\n"
	}
	idx := strings.IndexByte(payload, '%')
	if idx < 0 {
		return payload
	}
	return payload[:idx] + "%" + payload[idx+1:] + "\n"
}

func reverseAccent(chr string) string {
	for name, c := range accentChar {
		if c == chr {
			return name
		}
	}
	return "hat"
}

func reverseNarySymbol(sym string) string {
	switch sym {
	case "∑":
		return `\sum`
	case "∫":
		return `\int`
	case "∏":
		return `\prod`
	case "∮":
		return `\oint`
	}
	return sym
}
