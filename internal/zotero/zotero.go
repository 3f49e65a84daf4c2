// Package zotero builds and parses the Zotero ADDIN ZOTERO_ITEM CSL_CITATION
// field-code payload DocxWriter/DocxReader exchange citations through, and
// derives citation keys from Zotero item URIs.
package zotero

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"scimark/internal/bibtex"
)

// uriKeyPattern extracts the 8-character alphanumeric Zotero item key from
// a library URI like "http://zotero.org/users/123/items/ABCD1234".
var uriKeyPattern = regexp.MustCompile(`/items/([A-Z0-9]{8})$`)

// ExtractKey pulls the Zotero item key out of a citation URI, if present.
func ExtractKey(uri string) (string, bool) {
	m := uriKeyPattern.FindStringSubmatch(uri)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// CSLName is one entry of a CSL-JSON "author" name-list.
type CSLName struct {
	Family string `json:"family,omitempty"`
	Given  string `json:"given,omitempty"`
	Literal string `json:"literal,omitempty"`
}

// CSLItem is the subset of CSL-JSON this core round-trips.
type CSLItem struct {
	ID              string      `json:"id"`
	Type            string      `json:"type,omitempty"`
	Title           string      `json:"title,omitempty"`
	ContainerTitle  string      `json:"container-title,omitempty"`
	Author          []CSLName   `json:"author,omitempty"`
	Issued          *CSLDate    `json:"issued,omitempty"`
	DOI             string      `json:"DOI,omitempty"`
	Volume          string      `json:"volume,omitempty"`
	Page            string      `json:"page,omitempty"`
}

// CSLDate carries a CSL "date-parts" single-date value: [[year, month, day]].
type CSLDate struct {
	DateParts [][]int `json:"date-parts,omitempty"`
}

// CitationItem is one entry of the Zotero field payload's "citationItems"
// array: a CSLItem plus the locator/suppress-author flags carried
// per-citation rather than per-bibliographic-item.
type CitationItem struct {
	ID             string  `json:"id"`
	URIs           []string `json:"uris,omitempty"`
	Itemdata       CSLItem `json:"itemData"`
	Locator        string  `json:"locator,omitempty"`
	Label          string  `json:"label,omitempty"`
	SuppressAuthor bool    `json:"suppress-author,omitempty"`
}

// Payload is the full ADDIN ZOTERO_ITEM CSL_CITATION JSON body.
type Payload struct {
	CitationID    string         `json:"citationID"`
	Properties    map[string]any `json:"properties,omitempty"`
	CitationItems []CitationItem `json:"citationItems"`
}

// BuildPayload constructs a Zotero field payload from a BibStore entry plus
// the locator/suppress-author of one Pandoc citation reference.
func BuildPayload(citationID string, entry *bibtex.BibEntry, locator string, suppress bool) Payload {
	item := CSLItem{
		ID:             entry.Key,
		Type:           cslType(entry.Type),
		Title:          entry.Field(bibtex.FieldTitle),
		ContainerTitle: firstNonEmpty(entry.Field("journal"), entry.Field("booktitle")),
		DOI:            entry.Field("doi"),
		Volume:         entry.Field("volume"),
		Page:           entry.Field("pages"),
	}
	if authors := entry.Field(bibtex.FieldAuthor); authors != "" {
		item.Author = parseAuthorList(authors)
	}
	if year := entry.Field(bibtex.FieldYear); year != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(year)); err == nil {
			item.Issued = &CSLDate{DateParts: [][]int{{n}}}
		}
	}
	uris := []string{}
	if u := entry.Field("zotero-uri"); u != "" {
		uris = append(uris, u)
	}
	return Payload{
		CitationID: citationID,
		Properties: map[string]any{"formattedCitation": FormatPlain(entry, locator, suppress)},
		CitationItems: []CitationItem{{
			ID:             entry.Key,
			URIs:           uris,
			Itemdata:       item,
			Locator:        locator,
			SuppressAuthor: suppress,
		}},
	}
}

// Marshal serializes a Payload as the compact JSON the ADDIN instruction
// text embeds.
func Marshal(p Payload) (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Parse decodes a field-code instruction payload back into a Payload.
func Parse(raw string) (Payload, error) {
	var p Payload
	err := json.Unmarshal([]byte(raw), &p)
	return p, err
}

func cslType(bibtexType string) string {
	switch strings.ToLower(bibtexType) {
	case "article":
		return "article-journal"
	case "book":
		return "book"
	case "inproceedings", "conference":
		return "paper-conference"
	case "incollection":
		return "chapter"
	case "phdthesis", "mastersthesis":
		return "thesis"
	case "techreport":
		return "report"
	default:
		return "document"
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// parseAuthorList splits a BibTeX "Last, First and Last2, First2" author
// field into CSL name objects.
func parseAuthorList(s string) []CSLName {
	var out []CSLName
	for _, part := range strings.Split(s, " and ") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if comma := strings.IndexByte(part, ','); comma >= 0 {
			out = append(out, CSLName{Family: strings.TrimSpace(part[:comma]), Given: strings.TrimSpace(part[comma+1:])})
			continue
		}
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		out = append(out, CSLName{Family: fields[len(fields)-1], Given: strings.Join(fields[:len(fields)-1], " ")})
	}
	return out
}

// FormatPlain renders the placeholder formatted-citation text DocxWriter
// inserts as the field's visible result, e.g. "(Smith 2020, p. 20)".
func FormatPlain(entry *bibtex.BibEntry, locator string, suppress bool) string {
	author := lastNameOf(entry.Field(bibtex.FieldAuthor))
	year := entry.Field(bibtex.FieldYear)
	var sb strings.Builder
	if !suppress {
		sb.WriteString("(")
		if author != "" {
			sb.WriteString(author)
			sb.WriteString(" ")
		}
	} else {
		sb.WriteString("(")
	}
	sb.WriteString(year)
	if locator != "" {
		sb.WriteString(", ")
		sb.WriteString(locator)
	}
	sb.WriteString(")")
	return sb.String()
}

func lastNameOf(authors string) string {
	names := parseAuthorList(authors)
	if len(names) == 0 {
		return ""
	}
	return names[0].Family
}

// KeyFormat selects the citation-key generation rule DocxReader applies
// when recovering bibliography entries from Zotero field codes.
type KeyFormat string

const (
	KeyAuthorYearTitle KeyFormat = "authorYearTitle"
	KeyAuthorYear       KeyFormat = "authorYear"
	KeyNumeric          KeyFormat = "numeric"
)

// GenerateKey builds a citation key from a CSLItem per format, with
// counter supplying the next numeric suffix for the "numeric" format.
func GenerateKey(item CSLItem, format KeyFormat, counter *int) string {
	switch format {
	case KeyAuthorYear:
		return lowerFirst(familyOf(item)) + yearOf(item)
	case KeyNumeric:
		*counter++
		return "ref" + strconv.Itoa(*counter)
	default: // authorYearTitle
		return lowerFirst(familyOf(item)) + yearOf(item) + titleCaseFirstWord(item.Title)
	}
}

func familyOf(item CSLItem) string {
	if len(item.Author) == 0 {
		return "unknown"
	}
	name := item.Author[0].Family
	if name == "" {
		name = item.Author[0].Literal
	}
	return alnumOnly(name)
}

func yearOf(item CSLItem) string {
	if item.Issued == nil || len(item.Issued.DateParts) == 0 || len(item.Issued.DateParts[0]) == 0 {
		return ""
	}
	return strconv.Itoa(item.Issued.DateParts[0][0])
}

func titleCaseFirstWord(title string) string {
	fields := strings.Fields(title)
	for _, f := range fields {
		f = alnumOnly(f)
		if f == "" {
			continue
		}
		return strings.ToUpper(f[:1]) + f[1:]
	}
	return ""
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func alnumOnly(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
