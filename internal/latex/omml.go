package latex

import (
	"fmt"
	"strings"
)

// Node is an OMML (or MathML-adjacent) math tree node. Rather than model
// every OMML element as its own Go type, Node carries a Tag (the `m:...`
// element name) plus Attrs and either raw Text or nested Children — the
// same "one generic node, many tags" shape the translator needs to emit
// unsupported constructs as plain `m:r`/`m:t` runs without a special case
// per failure mode.
type Node struct {
	Tag      string
	Attrs    map[string]string
	Text     string // for m:t leaf content
	Children []Node
	Hidden   bool   // true for a comment/line-continuation carrier run
	Preserve bool   // xml:space="preserve" on m:t
}

// XML renders the node tree as an OOXML math fragment.
func (n Node) XML() string {
	var sb strings.Builder
	n.writeTo(&sb)
	return sb.String()
}

func (n Node) writeTo(sb *strings.Builder) {
	if n.Tag == "" {
		sb.WriteString(escapeXMLText(n.Text))
		return
	}
	sb.WriteByte('<')
	sb.WriteString(n.Tag)
	for k, v := range n.Attrs {
		fmt.Fprintf(sb, " %s=%q", k, v)
	}
	if n.Preserve {
		sb.WriteString(` xml:space="preserve"`)
	}
	if n.Text == "" && len(n.Children) == 0 {
		sb.WriteString("/>")
		return
	}
	sb.WriteByte('>')
	if n.Text != "" {
		sb.WriteString(escapeXMLText(n.Text))
	}
	for _, c := range n.Children {
		c.writeTo(sb)
	}
	sb.WriteString("</")
	sb.WriteString(n.Tag)
	sb.WriteByte('>')
}

func escapeXMLText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

// run builds a plain `m:r` / `m:t` text run, the OMML leaf for ordinary
// math text (numbers, identifiers, unsupported-construct fallback).
func run(text string) Node {
	return Node{Tag: "m:r", Children: []Node{
		{Tag: "m:t", Text: text, Preserve: text != strings.TrimSpace(text)},
	}}
}

// hiddenRun builds the zero-width hidden-carrier run for a `%` comment or
// line continuation (spec.md §4.4): `<m:r><m:rPr><m:nor/></m:rPr><m:t
// xml:space="preserve">​{ws}%{text}</m:t></m:r>`.
func hiddenRun(payload string) Node {
	return Node{Tag: "m:r", Children: []Node{
		{Tag: "m:rPr", Children: []Node{{Tag: "m:nor"}}},
		{Tag: "m:t", Text: "\u200b" + payload, Preserve: true},
	}}
}
