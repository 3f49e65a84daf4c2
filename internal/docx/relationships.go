package docx

import "fmt"

// relRegistry deduplicates hyperlink URLs to relationship ids, allocated on
// first occurrence (spec.md §5 ordering guarantee).
type relRegistry struct {
	next int
	ids  map[string]string
	urls []string
}

func newRelRegistry() *relRegistry {
	return &relRegistry{next: 1, ids: map[string]string{}}
}

// RID returns the rId for url, allocating a fresh one on first use.
func (r *relRegistry) RID(url string) string {
	if id, ok := r.ids[url]; ok {
		return id
	}
	id := fmt.Sprintf("rId%d", r.next)
	r.next++
	r.ids[url] = id
	r.urls = append(r.urls, url)
	return id
}

// XML renders word/_rels/document.xml.rels: the styles relationship, plus
// numbering/comments when present, plus one hyperlink relationship per
// distinct URL in first-occurrence order.
func (r *relRegistry) XML(hasNumbering, hasComments bool) string {
	out := xmlHeader + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="coreRelStyles" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>`
	if hasNumbering {
		out += `<Relationship Id="coreRelNumbering" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering" Target="numbering.xml"/>`
	}
	if hasComments {
		out += `<Relationship Id="coreRelComments" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/comments" Target="comments.xml"/>`
	}
	for _, url := range r.urls {
		out += fmt.Sprintf(`<Relationship Id="%s" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink" Target="%s" TargetMode="External"/>`,
			r.ids[url], escapeAttr(url))
	}
	out += `</Relationships>`
	return out
}

func contentTypesXML(hasNumbering, hasComments bool) string {
	out := xmlHeader + `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
		`<Default Extension="xml" ContentType="application/xml"/>` +
		`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
		`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>`
	if hasNumbering {
		out += `<Override PartName="/word/numbering.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"/>`
	}
	if hasComments {
		out += `<Override PartName="/word/comments.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.comments+xml"/>`
	}
	out += `</Types>`
	return out
}

const packageRelsXML = xmlHeader + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`</Relationships>`
