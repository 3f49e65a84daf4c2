package latex

import "strings"

// ToOMML translates a LaTeX math expression into an OMML node tree
// (spec.md §4.4). Unsupported constructs fall back to a literal text run
// carrying the raw LaTeX substring, never an error: MathBridge has no
// failure mode, only a fidelity boundary.
func ToOMML(src string) []Node {
	p := &parser{toks: Tokenize(src)}
	return p.parseSequence(func(t Token) bool { return false })
}

type parser struct {
	toks []Token
	pos  int
}

func (p *parser) peek() (Token, bool) {
	if p.pos >= len(p.toks) {
		return Token{}, false
	}
	return p.toks[p.pos], true
}

func (p *parser) next() (Token, bool) {
	t, ok := p.peek()
	if ok {
		p.pos++
	}
	return t, ok
}

// parseSequence consumes tokens (handling superscript/subscript grouping
// via m:sSup/m:sSub/m:sSubSup) until stop returns true for the next token
// or input is exhausted.
func (p *parser) parseSequence(stop func(Token) bool) []Node {
	var out []Node
	for {
		t, ok := p.peek()
		if !ok || stop(t) {
			return out
		}
		p.pos++
		switch t.Kind {
		case TokComment:
			out = append(out, hiddenRun(t.Whitespace+"%"+t.Text))
		case TokLineContinuation:
			out = append(out, hiddenRun(t.Whitespace+"%\n"))
		case TokNewline:
			out = append(out, Node{Tag: "m:r", Children: []Node{{Tag: "m:t", Text: "\n", Preserve: true}}})
		case TokText:
			out = append(out, textRuns(t.Text)...)
		case TokOpenBrace:
			group := p.parseSequence(isCloseBrace)
			p.expectClose()
			out = append(out, group...)
		case TokCloseBrace:
			// Unbalanced close: treat as literal.
			out = append(out, run("}"))
		case TokSup, TokSub:
			base := popLast(&out)
			out = append(out, p.parseScript(t.Kind, base))
		case TokAmp:
			out = append(out, Node{Tag: "m:r", Children: []Node{{Tag: "m:t", Text: "\t", Preserve: true}}})
		case TokChar:
			out = append(out, p.parseCommand(t.Command)...)
		case TokCommand:
			out = append(out, p.parseCommand(t.Command)...)
		}
	}
}

func isCloseBrace(t Token) bool { return t.Kind == TokCloseBrace }

func (p *parser) expectClose() {
	if t, ok := p.peek(); ok && t.Kind == TokCloseBrace {
		p.pos++
	}
}

func popLast(nodes *[]Node) Node {
	if len(*nodes) == 0 {
		return Node{}
	}
	last := (*nodes)[len(*nodes)-1]
	*nodes = (*nodes)[:len(*nodes)-1]
	return last
}

// parseScript builds m:sSup / m:sSub, merging an immediately adjacent
// opposite script into m:sSubSup (x_i^2 and x^2_i both normalize the same
// way CommonMark-adjacent AST builders normalize equivalent input).
func (p *parser) parseScript(kind TokenKind, base Node) Node {
	script := p.parseArgument()
	if t, ok := p.peek(); ok && (t.Kind == TokSup || t.Kind == TokSub) && t.Kind != kind {
		p.pos++
		other := p.parseArgument()
		sub, sup := script, other
		if kind == TokSup {
			sub, sup = other, script
		}
		return Node{Tag: "m:sSubSup", Children: []Node{
			{Tag: "m:e", Children: []Node{base}},
			{Tag: "m:sub", Children: sub},
			{Tag: "m:sup", Children: sup},
		}}
	}
	tag := "m:sSup"
	slot := "m:sup"
	if kind == TokSub {
		tag, slot = "m:sSub", "m:sub"
	}
	return Node{Tag: tag, Children: []Node{
		{Tag: "m:e", Children: []Node{base}},
		{Tag: slot, Children: script},
	}}
}

// parseArgument consumes a single brace-delimited group or a single
// following token, LaTeX's usual "one token or one group" argument rule.
func (p *parser) parseArgument() []Node {
	t, ok := p.peek()
	if !ok {
		return nil
	}
	if t.Kind == TokOpenBrace {
		p.pos++
		group := p.parseSequence(isCloseBrace)
		p.expectClose()
		return group
	}
	p.pos++
	switch t.Kind {
	case TokCommand, TokChar:
		return p.parseCommand(t.Command)
	case TokText:
		if len(t.Text) == 0 {
			return nil
		}
		r := []rune(t.Text)
		first := string(r[0])
		if len(r) > 1 {
			// Put back the remainder as a fresh text token.
			p.toks = append(p.toks[:p.pos], append([]Token{{Kind: TokText, Text: string(r[1:])}}, p.toks[p.pos:]...)...)
		}
		return textRuns(first)
	default:
		return nil
	}
}

var greek = map[string]string{
	"alpha": "α", "beta": "β", "gamma": "γ", "delta": "δ", "epsilon": "ε",
	"zeta": "ζ", "eta": "η", "theta": "θ", "iota": "ι", "kappa": "κ",
	"lambda": "λ", "mu": "μ", "nu": "ν", "xi": "ξ", "omicron": "ο",
	"pi": "π", "rho": "ρ", "sigma": "σ", "tau": "τ", "upsilon": "υ",
	"phi": "φ", "chi": "χ", "psi": "ψ", "omega": "ω",
	"Alpha": "Α", "Beta": "Β", "Gamma": "Γ", "Delta": "Δ", "Epsilon": "Ε",
	"Zeta": "Ζ", "Eta": "Η", "Theta": "Θ", "Iota": "Ι", "Kappa": "Κ",
	"Lambda": "Λ", "Mu": "Μ", "Nu": "Ν", "Xi": "Ξ", "Omicron": "Ο",
	"Pi": "Π", "Rho": "Ρ", "Sigma": "Σ", "Tau": "Τ", "Upsilon": "Υ",
	"Phi": "Φ", "Chi": "Χ", "Psi": "Ψ", "Omega": "Ω",
}

var symbols = map[string]string{
	"infty": "∞", "partial": "∂", "nabla": "∇", "pm": "±", "mp": "∓",
	"times": "×", "cdot": "⋅", "leq": "≤", "geq": "≥", "neq": "≠",
	"approx": "≈", "to": "→", "leftarrow": "←", "Rightarrow": "⇒",
	"in": "∈", "subset": "⊂", "cup": "∪", "cap": "∩", "forall": "∀",
	"exists": "∃", "emptyset": "∅", "ldots": "…", "cdots": "⋯",
}

var functions = map[string]bool{
	"sin": true, "cos": true, "tan": true, "cot": true, "sec": true, "csc": true,
	"arcsin": true, "arccos": true, "arctan": true, "sinh": true, "cosh": true,
	"tanh": true, "log": true, "ln": true, "exp": true, "lim": true, "max": true,
	"min": true, "gcd": true, "det": true, "dim": true, "ker": true, "hom": true,
	"inf": true, "sup": true,
}

var accentChar = map[string]string{"hat": "̂", "bar": "̄", "vec": "⃗", "dot": "̇", "ddot": "̈", "tilde": "̃"}

var matrixEnvs = map[string][2]string{
	"matrix": {"", ""}, "pmatrix": {"(", ")"}, "bmatrix": {"[", "]"},
	"vmatrix": {"|", "|"}, "Bmatrix": {"{", "}"},
}

func (p *parser) parseCommand(name string) []Node {
	switch name {
	case "frac":
		num := p.parseArgument()
		den := p.parseArgument()
		return []Node{{Tag: "m:f", Children: []Node{
			{Tag: "m:num", Children: num},
			{Tag: "m:den", Children: den},
		}}}
	case "sqrt":
		if t, ok := p.peek(); ok && t.Kind == TokChar && t.Command == "[" {
			// Degree-bearing root \sqrt[n]{x}; bracket argument isn't
			// produced by the brace tokenizer, so fall through to the
			// plain-radical form (the bracketed-degree extension is not
			// modeled — falls back to the base radical of the remaining
			// argument, the same fidelity boundary as any unmapped LaTeX
			// construct).
		}
		arg := p.parseArgument()
		return []Node{{Tag: "m:rad", Children: []Node{
			{Tag: "m:radPr"},
			{Tag: "m:deg"},
			{Tag: "m:e", Children: arg},
		}}}
	case "sum", "int", "prod", "oint":
		sym := map[string]string{"sum": "∑", "int": "∫", "prod": "∏", "oint": "∮"}[name]
		return []Node{p.parseNary(sym)}
	case "left":
		delim := p.readDelimChar()
		inner := p.parseSequence(func(t Token) bool { return t.Kind == TokCommand && t.Command == "right" })
		if t, ok := p.peek(); ok && t.Kind == TokCommand && t.Command == "right" {
			p.pos++
		}
		closeDelim := p.readDelimChar()
		return []Node{{Tag: "m:d", Attrs: map[string]string{"m:begChr": delim, "m:endChr": closeDelim}, Children: []Node{
			{Tag: "m:e", Children: inner},
		}}}
	case "begin":
		env := p.readEnvName()
		return p.parseEnvironment(env)
	case "end":
		p.readEnvName()
		return nil
	}
	if g, ok := greek[name]; ok {
		return textRuns(g)
	}
	if sym, ok := symbols[name]; ok {
		return textRuns(sym)
	}
	if accent, ok := accentChar[name]; ok {
		base := p.parseArgument()
		return []Node{{Tag: "m:acc", Attrs: map[string]string{"m:chr": accent}, Children: []Node{
			{Tag: "m:e", Children: base},
		}}}
	}
	if functions[name] {
		return []Node{{Tag: "m:func", Children: []Node{
			{Tag: "m:fName", Children: []Node{run(name)}},
			{Tag: "m:e", Children: p.parseArgument()},
		}}}
	}
	switch name {
	case "{", "}", "%", "$", "&", "#", "_", " ":
		return textRuns(name)
	case "\\":
		return []Node{{Tag: "m:r", Children: []Node{{Tag: "m:t", Text: "\n", Preserve: true}}}}
	}
	// Unsupported construct: literal text run carrying the raw command.
	return []Node{run("\\" + name)}
}

func (p *parser) readDelimChar() string {
	t, ok := p.next()
	if !ok {
		return "."
	}
	switch t.Kind {
	case TokChar:
		return t.Command
	case TokCommand:
		switch t.Command {
		case "langle":
			return "⟨"
		case "rangle":
			return "⟩"
		}
		return "."
	default:
		return "."
	}
}

func (p *parser) readEnvName() string {
	// `\begin` is tokenized as TokCommand, followed by a brace group holding
	// the environment name as plain text.
	if t, ok := p.peek(); ok && t.Kind == TokOpenBrace {
		p.pos++
		var name strings.Builder
		for {
			t, ok := p.next()
			if !ok || t.Kind == TokCloseBrace {
				break
			}
			if t.Kind == TokText {
				name.WriteString(t.Text)
			}
		}
		return strings.TrimSpace(name.String())
	}
	return ""
}

func (p *parser) parseEnvironment(env string) []Node {
	delims, isMatrix := matrixEnvs[env]
	stop := func(t Token) bool { return t.Kind == TokCommand && t.Command == "end" }
	body := p.parseSequence(stop)
	if t, ok := p.peek(); ok && t.Kind == TokCommand && t.Command == "end" {
		p.pos++
		p.readEnvName()
	}
	if !isMatrix {
		// align*/gather*/etc: emit rows separated by m:r newlines, no
		// matrix wrapper.
		return body
	}
	rows := splitRows(body)
	var mrs []Node
	for _, row := range rows {
		var cells []Node
		for _, cell := range splitCols(row) {
			cells = append(cells, Node{Tag: "m:e", Children: cell})
		}
		mrs = append(mrs, Node{Tag: "m:mr", Children: cells})
	}
	matrix := Node{Tag: "m:m", Children: mrs}
	if delims[0] == "" {
		return []Node{matrix}
	}
	return []Node{{Tag: "m:d", Attrs: map[string]string{"m:begChr": delims[0], "m:endChr": delims[1]}, Children: []Node{
		{Tag: "m:e", Children: []Node{matrix}},
	}}}
}

// splitRows/splitCols split a flattened node sequence on the m:r newline
// and tab markers parseCommand/parseSequence emit for `\\` and `&`.
func splitRows(nodes []Node) [][]Node {
	var rows [][]Node
	var cur []Node
	for _, n := range nodes {
		if isNewlineRun(n) {
			rows = append(rows, cur)
			cur = nil
			continue
		}
		cur = append(cur, n)
	}
	rows = append(rows, cur)
	return rows
}

func splitCols(nodes []Node) [][]Node {
	var cols [][]Node
	var cur []Node
	for _, n := range nodes {
		if isTabRun(n) {
			cols = append(cols, cur)
			cur = nil
			continue
		}
		cur = append(cur, n)
	}
	cols = append(cols, cur)
	return cols
}

func isNewlineRun(n Node) bool {
	return n.Tag == "m:r" && len(n.Children) == 1 && n.Children[0].Tag == "m:t" && n.Children[0].Text == "\n"
}
func isTabRun(n Node) bool {
	return n.Tag == "m:r" && len(n.Children) == 1 && n.Children[0].Tag == "m:t" && n.Children[0].Text == "\t"
}

func (p *parser) parseNary(sym string) Node {
	sub, sup := []Node(nil), []Node(nil)
	if t, ok := p.peek(); ok && t.Kind == TokSub {
		p.pos++
		sub = p.parseArgument()
	}
	if t, ok := p.peek(); ok && t.Kind == TokSup {
		p.pos++
		sup = p.parseArgument()
	}
	operand := p.parseArgument()
	return Node{Tag: "m:nary", Children: []Node{
		{Tag: "m:naryPr", Children: []Node{{Tag: "m:chr", Attrs: map[string]string{"m:val": sym}}}},
		{Tag: "m:sub", Children: sub},
		{Tag: "m:sup", Children: sup},
		{Tag: "m:e", Children: operand},
	}}
}

func textRuns(s string) []Node {
	if s == "" {
		return nil
	}
	return []Node{run(s)}
}
