package docx

import (
	"fmt"
	"strconv"
	"strings"

	"scimark/internal/bibtex"
	"scimark/internal/mdtoken"
	"scimark/internal/zotero"
)

// citationXML emits the OOXML for one `[@key, locator; ...]` citation run
// (spec.md §4.5): Zotero entries become a field code wrapping a formatted
// placeholder; everything else renders as plain formatted text.
func (w *writer) citationXML(items []mdtoken.CitationItem) string {
	var zoteroItems, plainItems []mdtoken.CitationItem
	for _, it := range items {
		entry := w.store.Lookup(it.Key)
		if entry != nil && entry.HasField(bibtex.FieldZoteroKey) && entry.HasField(bibtex.FieldZoteroURI) {
			zoteroItems = append(zoteroItems, it)
		} else {
			plainItems = append(plainItems, it)
		}
	}

	var sb strings.Builder
	if len(zoteroItems) > 0 {
		sb.WriteString(w.zoteroFieldXML(zoteroItems))
	}
	for _, it := range plainItems {
		sb.WriteString(runXML(mdtoken.Run{Kind: mdtoken.RunText, Text: plainCitationText(it, w.store.Lookup(it.Key))}))
	}
	return sb.String()
}

func plainCitationText(it mdtoken.CitationItem, entry *bibtex.BibEntry) string {
	author := ""
	year := ""
	if entry != nil {
		author = firstAuthorSurname(entry.Field(bibtex.FieldAuthor))
		year = entry.Field(bibtex.FieldYear)
	} else {
		author = it.Key
	}
	var sb strings.Builder
	sb.WriteString("(")
	if !it.SuppressAuthor && author != "" {
		sb.WriteString(author)
		sb.WriteString(" ")
	}
	sb.WriteString(year)
	if it.Locator != "" {
		sb.WriteString(", ")
		sb.WriteString(it.Locator)
	}
	sb.WriteString(")")
	return sb.String()
}

func firstAuthorSurname(authors string) string {
	first := strings.TrimSpace(strings.SplitN(authors, " and ", 2)[0])
	if comma := strings.IndexByte(first, ','); comma >= 0 {
		return strings.TrimSpace(first[:comma])
	}
	fields := strings.Fields(first)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// zoteroFieldXML builds one ADDIN ZOTERO_ITEM CSL_CITATION field code
// holding every Zotero-backed item of a citation; citationXML renders the
// remaining items as plain text after it. Options.MixedCitationStyle is not
// read, so "separate" and "unified" produce the same output.
func (w *writer) zoteroFieldXML(items []mdtoken.CitationItem) string {
	var payloadItems []zotero.CitationItem
	var placeholderParts []string
	for _, it := range items {
		entry := w.store.Lookup(it.Key)
		p := zotero.BuildPayload(fmt.Sprintf("cite-%d", w.nextCitationID()), entry, it.Locator, it.SuppressAuthor)
		payloadItems = append(payloadItems, p.CitationItems...)
		placeholderParts = append(placeholderParts, zotero.FormatPlain(entry, it.Locator, it.SuppressAuthor))
	}
	payload := zotero.Payload{
		CitationID:    fmt.Sprintf("cite-%d", w.nextCitationID()),
		CitationItems: payloadItems,
	}
	raw, err := zotero.Marshal(payload)
	if err != nil {
		w.warn("unsupported-zotero-payload", "failed to encode Zotero citation payload: "+err.Error())
		raw = "{}"
	}
	placeholder := strings.Join(placeholderParts, "; ")

	var sb strings.Builder
	sb.WriteString(`<w:r><w:fldChar w:fldCharType="begin"/></w:r>`)
	sb.WriteString(`<w:r><w:instrText xml:space="preserve"> ADDIN ZOTERO_ITEM CSL_CITATION ` + escapeXMLBody(raw) + `</w:instrText></w:r>`)
	sb.WriteString(`<w:r><w:fldChar w:fldCharType="separate"/></w:r>`)
	sb.WriteString(runXML(mdtoken.Run{Kind: mdtoken.RunText, Text: placeholder}))
	sb.WriteString(`<w:r><w:fldChar w:fldCharType="end"/></w:r>`)
	return sb.String()
}

// reassembleFieldCode concatenates the w:instrText runs of one
// begin/separate/end field-code group and, when it carries a Zotero
// citation payload, parses it, allocates citation keys per opts format, and
// inserts the recovered entries into store (DocxReader step 3).
func reassembleFieldCode(instr string, store *bibtex.Store, format zotero.KeyFormat, counter *int, warn func(kind, msg string)) []mdtoken.CitationItem {
	instr = strings.TrimSpace(instr)
	const marker = "ADDIN ZOTERO_ITEM CSL_CITATION"
	idx := strings.Index(instr, marker)
	if idx < 0 {
		return nil
	}
	raw := strings.TrimSpace(instr[idx+len(marker):])
	payload, err := zotero.Parse(raw)
	if err != nil {
		warn("malformed-field-code", "could not parse Zotero citation payload: "+err.Error())
		return nil
	}
	var out []mdtoken.CitationItem
	for _, ci := range payload.CitationItems {
		key := resolveCitationKey(ci, store, format, counter)
		out = append(out, mdtoken.CitationItem{Key: key, Locator: ci.Locator, SuppressAuthor: ci.SuppressAuthor})
	}
	return out
}

func resolveCitationKey(ci zotero.CitationItem, store *bibtex.Store, format zotero.KeyFormat, counter *int) string {
	var zkey, zuri string
	if len(ci.URIs) > 0 {
		zuri = ci.URIs[0]
		if k, ok := zotero.ExtractKey(zuri); ok {
			zkey = k
		}
	}
	for _, e := range store.Entries() {
		if e.Field(bibtex.FieldZoteroKey) == zkey && zkey != "" {
			return e.Key
		}
	}
	key := zotero.GenerateKey(ci.Itemdata, format, counter)
	entry := bibtex.NewEntry(key, cslTypeToBibtex(ci.Itemdata.Type))
	if len(ci.Itemdata.Author) > 0 {
		entry.Set(bibtex.FieldAuthor, joinAuthors(ci.Itemdata.Author))
	}
	entry.Set(bibtex.FieldTitle, ci.Itemdata.Title)
	if ci.Itemdata.ContainerTitle != "" {
		entry.Set(bibtex.FieldJournal, ci.Itemdata.ContainerTitle)
	}
	if ci.Itemdata.Issued != nil && len(ci.Itemdata.Issued.DateParts) > 0 && len(ci.Itemdata.Issued.DateParts[0]) > 0 {
		entry.Set(bibtex.FieldYear, strconv.Itoa(ci.Itemdata.Issued.DateParts[0][0]))
	}
	if ci.Itemdata.DOI != "" {
		entry.Set(bibtex.FieldDOI, ci.Itemdata.DOI)
	}
	if zkey != "" {
		entry.Set(bibtex.FieldZoteroKey, zkey)
	}
	if zuri != "" {
		entry.Set(bibtex.FieldZoteroURI, zuri)
	}
	store.Insert(entry)
	return key
}

func joinAuthors(names []zotero.CSLName) string {
	parts := make([]string, 0, len(names))
	for _, n := range names {
		if n.Family == "" && n.Given == "" {
			parts = append(parts, n.Literal)
			continue
		}
		parts = append(parts, n.Family+", "+n.Given)
	}
	return strings.Join(parts, " and ")
}

func cslTypeToBibtex(t string) string {
	switch t {
	case "article-journal":
		return bibtex.EntryArticle
	case "book":
		return bibtex.EntryBook
	case "paper-conference":
		return bibtex.EntryInProceedings
	case "chapter":
		return bibtex.EntryInCollection
	case "thesis":
		return bibtex.EntryPhDThesis
	case "report":
		return bibtex.EntryTechReport
	default:
		return bibtex.EntryMisc
	}
}
