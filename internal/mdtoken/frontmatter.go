package mdtoken

import (
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseFrontmatter recognizes an optional YAML-ish block delimited by `---`
// at document start (spec.md §4.3). It returns the parsed Frontmatter, the
// remaining body text, and any warnings.
//
// The block is not handed to a strict YAML parser wholesale: the source
// grammar allows repeated keys (canonical for `title`) and bare
// comma-separated lists, neither of which round-trip through yaml.v3's
// document model. Only individual scalar/array *values* are decoded with
// yaml.v3, once the bespoke line grammar has split the block into key/value
// pairs.
func ParseFrontmatter(text string) (Frontmatter, string, []Warning) {
	var fm Frontmatter
	var warnings []Warning

	lines := splitLinesKeepEnds(text)
	if len(lines) == 0 || strings.TrimRight(lines[0], "\r\n") != "---" {
		return fm, text, nil
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\r\n") == "---" {
			end = i
			break
		}
	}
	if end < 0 {
		return fm, text, nil
	}

	body := strings.Join(lines[1:end], "")
	rest := strings.Join(lines[end+1:], "")

	titleSeen := false
	for _, kv := range splitFrontmatterLines(body) {
		key, value := kv.key, kv.value
		switch key {
		case "title":
			if !titleSeen {
				fm.Title = nil
				titleSeen = true
			}
			fm.Title = append(fm.Title, decodeStringList(value)...)
		case "csl":
			fm.CSL = trimQuotes(value)
		case "bibliography":
			fm.Bibliography = trimQuotes(value)
		case "font":
			fm.Font = trimQuotes(value)
		case "code-font":
			fm.CodeFont = trimQuotes(value)
		case "font-size":
			if n, ok := parsePositiveFinite(value); ok {
				fm.FontSize, fm.HasFontSize = n, true
			}
		case "code-font-size":
			if n, ok := parsePositiveFinite(value); ok {
				fm.CodeFontSize, fm.HasCodeFontSize = n, true
			}
		case "header-font":
			fm.HeaderFont = trimQuotes(value)
		case "header-font-size":
			fm.HeaderFontSize = decodeFloatList(value)
		case "header-font-style":
			fm.HeaderFontStyle = canonicalizeStyles(decodeStringList(value))
		case "title-font":
			fm.TitleFont = trimQuotes(value)
		case "title-font-size":
			if n, ok := parsePositiveFinite(value); ok {
				fm.TitleFontSize, fm.HasTitleFontSize = n, true
			}
		case "title-font-style":
			styles := canonicalizeStyles(decodeStringList(value))
			if len(styles) > 0 {
				fm.TitleFontStyle = styles[0]
			}
		case "timezone":
			fm.Timezone = trimQuotes(value)
		default:
			fm.UnrecognizedKeys = append(fm.UnrecognizedKeys, key)
			warnings = append(warnings, Warning{
				Kind:    "unrecognized-frontmatter-key",
				Message: "unrecognized frontmatter key " + strconv.Quote(key),
			})
		}
	}

	return fm, rest, warnings
}

type kvLine struct{ key, value string }

// splitFrontmatterLines groups "key: value" lines, joining continuation
// lines that belong to a bracketed `[a, b, c]` array split across
// multiple physical lines.
func splitFrontmatterLines(body string) []kvLine {
	var out []kvLine
	var pending *kvLine
	openBrackets := 0

	for _, raw := range strings.Split(body, "\n") {
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if pending != nil {
			pending.value += " " + trimmed
			openBrackets += strings.Count(trimmed, "[") - strings.Count(trimmed, "]")
			if openBrackets <= 0 {
				out = append(out, *pending)
				pending = nil
				openBrackets = 0
			}
			continue
		}
		colon := strings.IndexByte(trimmed, ':')
		if colon < 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(trimmed[:colon]))
		value := strings.TrimSpace(trimmed[colon+1:])
		openBrackets = strings.Count(value, "[") - strings.Count(value, "]")
		if openBrackets > 0 {
			pending = &kvLine{key: key, value: value}
			continue
		}
		out = append(out, kvLine{key: key, value: value})
	}
	if pending != nil {
		out = append(out, *pending)
	}
	return out
}

// decodeStringList accepts `[a, b, c]`, bare `a, b, c`, or a single scalar.
func decodeStringList(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if strings.HasPrefix(value, "[") {
		var arr []string
		if err := yaml.Unmarshal([]byte(value), &arr); err == nil {
			return trimAll(arr)
		}
		// Fall back to manual split if the array contains something
		// yaml.v3 won't accept as a flow sequence of scalars.
		inner := strings.TrimSuffix(strings.TrimPrefix(value, "["), "]")
		return splitCommaList(inner)
	}
	if strings.Contains(value, ",") {
		return splitCommaList(value)
	}
	return []string{trimQuotes(value)}
}

func splitCommaList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = trimQuotes(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

func decodeFloatList(value string) []float64 {
	strs := decodeStringList(value)
	out := make([]float64, 0, len(strs))
	for _, s := range strs {
		if n, ok := parsePositiveFinite(s); ok {
			out = append(out, n)
		}
	}
	return out
}

func trimQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func parsePositiveFinite(s string) (float64, bool) {
	s = trimQuotes(s)
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || n <= 0 || math.IsInf(n, 0) || math.IsNaN(n) {
		return 0, false
	}
	return n, true
}

// canonicalizeStyles maps each style token (bold|italic|underline|normal or
// a hyphenated combination) to the canonical "bold-italic-underline" order
// so that order-independent equality holds (spec.md §4.3).
func canonicalizeStyles(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "normal" || v == "" {
			out = append(out, "normal")
			continue
		}
		var bold, italic, underline bool
		for _, part := range strings.Split(v, "-") {
			switch part {
			case "bold":
				bold = true
			case "italic":
				italic = true
			case "underline":
				underline = true
			}
		}
		var pieces []string
		if bold {
			pieces = append(pieces, "bold")
		}
		if italic {
			pieces = append(pieces, "italic")
		}
		if underline {
			pieces = append(pieces, "underline")
		}
		if len(pieces) == 0 {
			continue
		}
		out = append(out, strings.Join(pieces, "-"))
	}
	return out
}

func splitLinesKeepEnds(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i+1])
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}
