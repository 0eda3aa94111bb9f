// Package opf parses and emits the EPUB package document: metadata,
// manifest and spine (spec.md §4.2). Parsing uses etree, the same tolerant
// XML library the teacher repo already reaches for when encoding/xml's
// strict namespace handling chokes on real-world OPF files.
package opf

import (
	"bytes"
	"regexp"

	"github.com/beevik/etree"

	"golibri-studio/internal/book"
	"golibri-studio/internal/errs"
)

const (
	nsDC      = "http://purl.org/dc/elements/1.1/"
	nsOPF     = "http://www.idpf.org/2007/opf"
	nsDCTerms = "http://purl.org/dc/terms/"
)

// ParseResult is everything the OPF parse recovers, before the container
// layer resolves hrefs against resource bytes.
type ParseResult struct {
	Metadata book.Metadata
	Manifest []book.ManifestItem
	Spine    []book.SpineItem
	Version  string // "2" or "3" as read
}

// Parse reads an OPF document and returns its structured contents.
func Parse(data []byte) (*ParseResult, error) {
	data = preprocess(data)

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, errs.New(errs.KindXMLParse, "opf.Parse", err)
	}

	root := doc.SelectElement("package")
	if root == nil {
		return nil, errs.Newf(errs.KindInvalidEpub, "opf.Parse", "no <package> element found")
	}

	res := &ParseResult{
		Metadata: book.Metadata{Custom: map[string]string{}},
	}

	version := root.SelectAttrValue("version", "2.0")
	if len(version) > 0 && version[0] == '3' {
		res.Version = "3"
	} else {
		res.Version = "2"
	}

	if metaElem := root.SelectElement("metadata"); metaElem != nil {
		res.Metadata = parseMetadata(metaElem)
	}
	if manifestElem := root.SelectElement("manifest"); manifestElem != nil {
		res.Manifest = parseManifest(manifestElem)
	}
	if spineElem := root.SelectElement("spine"); spineElem != nil {
		res.Spine = parseSpine(spineElem)
	}

	return res, nil
}

func textOf(el *etree.Element) string {
	var b bytes.Buffer
	for _, ch := range el.Child {
		if cd, ok := ch.(*etree.CharData); ok {
			b.WriteString(cd.Data)
		}
	}
	return b.String()
}

func localSelectElements(parent *etree.Element, local string) []*etree.Element {
	var out []*etree.Element
	for _, ch := range parent.ChildElements() {
		if ch.Tag == local {
			out = append(out, ch)
		}
	}
	return out
}

func parseMetadata(elem *etree.Element) book.Metadata {
	md := book.Metadata{Custom: map[string]string{}}

	for _, e := range localSelectElements(elem, "title") {
		md.Titles = append(md.Titles, textOf(e))
	}
	for _, e := range localSelectElements(elem, "creator") {
		md.Creators = append(md.Creators, book.Creator{Name: textOf(e), Role: attrAny(e, "role")})
	}
	for _, e := range localSelectElements(elem, "contributor") {
		md.Contributors = append(md.Contributors, book.Creator{Name: textOf(e), Role: attrAny(e, "role")})
	}
	for _, e := range localSelectElements(elem, "language") {
		md.Languages = append(md.Languages, textOf(e))
	}
	for _, e := range localSelectElements(elem, "identifier") {
		md.Identifiers = append(md.Identifiers, book.Identifier{Value: textOf(e), Scheme: attrAny(e, "scheme")})
	}
	for _, e := range localSelectElements(elem, "subject") {
		md.Subjects = append(md.Subjects, textOf(e))
	}
	if e := firstOf(localSelectElements(elem, "publisher")); e != nil {
		md.Publisher = textOf(e)
	}
	if e := firstOf(localSelectElements(elem, "description")); e != nil {
		md.Description = textOf(e)
	}
	if e := firstOf(localSelectElements(elem, "rights")); e != nil {
		md.Rights = textOf(e)
	}
	if e := firstOf(localSelectElements(elem, "date")); e != nil {
		md.Date = textOf(e)
	}

	for _, e := range localSelectElements(elem, "meta") {
		prop := e.SelectAttrValue("property", "")
		if prop == "" {
			// EPUB 2 <meta name="" content="">; keep under its name so it
			// round-trips too (e.g. calibre: custom fields).
			name := e.SelectAttrValue("name", "")
			if name == "" {
				continue
			}
			if name == "dcterms:modified" {
				continue
			}
			md.Custom[name] = e.SelectAttrValue("content", "")
			continue
		}
		if prop == "dcterms:modified" {
			md.Modified = textOf(e)
			continue
		}
		md.Custom[prop] = textOf(e)
	}

	return md
}

func firstOf(els []*etree.Element) *etree.Element {
	if len(els) == 0 {
		return nil
	}
	return els[0]
}

// attrAny looks up an attribute regardless of its namespace prefix (e.g.
// opf:role vs role), since parsers across the pack disagree on whether the
// prefix survives a tolerant read.
func attrAny(e *etree.Element, local string) string {
	for _, a := range e.Attr {
		if a.Key == local {
			return a.Value
		}
	}
	return ""
}

func parseManifest(elem *etree.Element) []book.ManifestItem {
	var out []book.ManifestItem
	for _, e := range localSelectElements(elem, "item") {
		props := e.SelectAttrValue("properties", "")
		out = append(out, book.ManifestItem{
			ID:         e.SelectAttrValue("id", ""),
			Href:       e.SelectAttrValue("href", ""),
			MediaType:  e.SelectAttrValue("media-type", ""),
			Properties: splitProps(props),
		})
	}
	return out
}

func splitProps(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ' ' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}

func parseSpine(elem *etree.Element) []book.SpineItem {
	var out []book.SpineItem
	for _, e := range localSelectElements(elem, "itemref") {
		linear := e.SelectAttrValue("linear", "yes") != "no"
		out = append(out, book.SpineItem{
			IDRef:  e.SelectAttrValue("idref", ""),
			Linear: linear,
		})
	}
	return out
}

// preprocess fixes the common real-world XML issues the teacher's reader
// already worked around: invalid "--" sequences inside comments, and the
// "mlns=" typo for "xmlns=".
func preprocess(data []byte) []byte {
	data = removeInvalidComments(data)
	data = bytes.ReplaceAll(data, []byte(" mlns="), []byte(" xmlns="))
	return data
}

var commentRe = regexp.MustCompile(`(?s)<!--(.*?)-->`)

func removeInvalidComments(data []byte) []byte {
	return commentRe.ReplaceAllFunc(data, func(match []byte) []byte {
		content := match[4 : len(match)-3]
		if bytes.Contains(content, []byte("--")) {
			return []byte{}
		}
		return match
	})
}
