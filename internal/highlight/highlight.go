// Package highlight resolves Manuscript Markdown's 14 canonical format
// highlight colors to the hex values DocxWriter shades runs with, and
// back again when DocxReader recovers a highlight color from a shaded run.
package highlight

import "strings"

// Canonical highlight color IDs (spec.md §4.5), in the order code/test
// tables prefer when a hex value matches more than one name.
var canonicalOrder = []string{
	"yellow", "green", "turquoise", "pink", "blue", "red", "dark-blue",
	"teal", "violet", "dark-red", "dark-yellow", "gray-50", "gray-25", "black",
}

// hex maps each canonical color ID to the OOXML shading fill it renders as.
var hex = map[string]string{
	"yellow":      "FFFF00",
	"green":       "00FF00",
	"turquoise":   "00FFFF",
	"pink":        "FF00FF",
	"blue":        "0000FF",
	"red":         "FF0000",
	"dark-blue":   "00008B",
	"teal":        "008080",
	"violet":      "800080",
	"dark-red":    "8B0000",
	"dark-yellow": "808000",
	"gray-50":     "808080",
	"gray-25":     "C0C0C0",
	"black":       "000000",
}

// DefaultColor is used when a `==text==` span carries no `{color}` suffix
// and no frontmatter default has been configured.
const DefaultColor = "yellow"

// IsCanonical reports whether name is one of the 14 recognized highlight
// color IDs.
func IsCanonical(name string) bool {
	_, ok := hex[normalize(name)]
	return ok
}

// Hex returns the OOXML shading fill (no leading '#', uppercase) for a
// canonical color name, falling back to DefaultColor's hex if name is
// unrecognized.
func Hex(name string) string {
	if h, ok := hex[normalize(name)]; ok {
		return h
	}
	return hex[DefaultColor]
}

// Resolve applies the frontmatter/inline fallback rule: an explicit color
// wins if canonical, otherwise fall back to def (itself validated against
// the canonical set), otherwise DefaultColor.
func Resolve(explicit, def string) string {
	if IsCanonical(explicit) {
		return normalize(explicit)
	}
	if IsCanonical(def) {
		return normalize(def)
	}
	return DefaultColor
}

// FromHex reverse-maps a shading fill back to its canonical color name, for
// DocxReader recovering a `==text=={color}` span from a shaded run. Returns
// "" if the hex does not match any canonical color.
func FromHex(fill string) string {
	fill = strings.ToUpper(strings.TrimPrefix(fill, "#"))
	for _, name := range canonicalOrder {
		if hex[name] == fill {
			return name
		}
	}
	return ""
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
