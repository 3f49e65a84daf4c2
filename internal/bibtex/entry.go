// Package bibtex implements BibStore: parsing and serializing BibTeX
// bibliographies with the two custom fields Zotero round-tripping needs
// (zotero-key, zotero-uri).
package bibtex

// EntryType mirrors a BibTeX "@type". String alias so unrecognized types
// survive round-trip instead of being rejected.
type EntryType = string

//goland:noinspection GoUnusedConst
const (
	EntryArticle       EntryType = "article"
	EntryBook          EntryType = "book"
	EntryBooklet       EntryType = "booklet"
	EntryInBook        EntryType = "inbook"
	EntryInCollection  EntryType = "incollection"
	EntryInProceedings EntryType = "inproceedings"
	EntryManual        EntryType = "manual"
	EntryMastersThesis EntryType = "mastersthesis"
	EntryMisc          EntryType = "misc"
	EntryPhDThesis     EntryType = "phdthesis"
	EntryProceedings   EntryType = "proceedings"
	EntryTechReport    EntryType = "techreport"
	EntryUnpublished   EntryType = "unpublished"
)

// knownEntryTypes is used only to decide whether to warn on an unrecognized
// @type; unknown types are still parsed and kept (best-effort recovery).
var knownEntryTypes = map[EntryType]bool{
	EntryArticle: true, EntryBook: true, EntryBooklet: true, EntryInBook: true,
	EntryInCollection: true, EntryInProceedings: true, EntryManual: true,
	EntryMastersThesis: true, EntryMisc: true, EntryPhDThesis: true,
	EntryProceedings: true, EntryTechReport: true, EntryUnpublished: true,
}

// Field is a BibTeX tag name, e.g. "author", "title".
type Field = string

//goland:noinspection GoUnusedConst
const (
	FieldAddress      Field = "address"
	FieldAnnote       Field = "annote"
	FieldAuthor       Field = "author"
	FieldBookTitle    Field = "booktitle"
	FieldChapter      Field = "chapter"
	FieldDOI          Field = "doi"
	FieldCrossref     Field = "crossref"
	FieldEdition      Field = "edition"
	FieldEditor       Field = "editor"
	FieldHowPublished Field = "howpublished"
	FieldInstitution  Field = "institution"
	FieldJournal      Field = "journal"
	FieldKey          Field = "key"
	FieldMonth        Field = "month"
	FieldNote         Field = "note"
	FieldNumber       Field = "number"
	FieldOrganization Field = "organization"
	FieldPages        Field = "pages"
	FieldPublisher    Field = "publisher"
	FieldSchool       Field = "school"
	FieldSeries       Field = "series"
	FieldTitle        Field = "title"
	FieldType         Field = "type"
	FieldVolume       Field = "volume"
	FieldYear         Field = "year"

	// Custom fields carried for Zotero field-code round-tripping.
	FieldZoteroKey Field = "zotero-key"
	FieldZoteroURI Field = "zotero-uri"
)

// standardFieldOrder controls the order serialize emits recognized fields in,
// whatever order they were parsed or set in.
var standardFieldOrder = []Field{
	FieldAuthor, FieldEditor, FieldTitle, FieldBookTitle, FieldJournal,
	FieldYear, FieldMonth, FieldVolume, FieldNumber, FieldPages,
	FieldChapter, FieldEdition, FieldPublisher, FieldOrganization,
	FieldInstitution, FieldSchool, FieldAddress, FieldSeries, FieldType,
	FieldHowPublished, FieldNote, FieldAnnote, FieldCrossref, FieldKey,
	FieldDOI,
}

// BibEntry is one BibTeX record: its citation key, entry type, and an
// insertion-ordered field table.
type BibEntry struct {
	Key    string
	Type   EntryType
	order  []string
	fields map[string]string
}

// NewEntry creates an empty entry ready for Set calls.
func NewEntry(key string, typ EntryType) *BibEntry {
	return &BibEntry{Key: key, Type: typ, fields: make(map[string]string)}
}

// Field returns the value of f, or "" if absent.
func (e *BibEntry) Field(f Field) string {
	if e == nil {
		return ""
	}
	return e.fields[f]
}

// HasField reports whether f was set.
func (e *BibEntry) HasField(f Field) bool {
	_, ok := e.fields[f]
	return ok
}

// Set assigns f = value, recording first-seen order. Setting an existing
// field updates its value without moving its position.
func (e *BibEntry) Set(f Field, value string) {
	if e.fields == nil {
		e.fields = make(map[string]string)
	}
	if _, ok := e.fields[f]; !ok {
		e.order = append(e.order, f)
	}
	e.fields[f] = value
}

// Fields iterates fields in insertion order.
func (e *BibEntry) Fields() []Field {
	out := make([]Field, len(e.order))
	copy(out, e.order)
	return out
}

// Equal reports whether two entries are equivalent modulo field order, the
// invariant spec.md §3 requires of parse(serialize(e)).
func (e *BibEntry) Equal(other *BibEntry) bool {
	if e == nil || other == nil {
		return e == other
	}
	if e.Key != other.Key || e.Type != other.Type {
		return false
	}
	if len(e.fields) != len(other.fields) {
		return false
	}
	for k, v := range e.fields {
		if other.fields[k] != v {
			return false
		}
	}
	return true
}
