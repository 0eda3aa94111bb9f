// Package nav parses and emits the EPUB-3 navigation document and the
// EPUB-2 NCX, unifying both into the single NavPoint tree the rest of the
// engine works with (spec.md §4.3).
package nav

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"golibri-studio/internal/book"
	"golibri-studio/internal/errs"
	"golibri-studio/internal/xhtml"
)

// Resolver fetches the bytes of a container-relative resource. Parsing
// depends only on this callback, not on any container I/O, per spec §4.3.
type Resolver func(href string) ([]byte, error)

// Doc is the full unified navigation structure recovered from either an
// EPUB-3 nav document or an EPUB-2 NCX.
type Doc struct {
	TOC       []*book.NavPoint
	Landmarks []*book.NavPoint
	PageList  []*book.NavPoint
}

// Load parses the navigation document at navHref if navHref is non-empty;
// otherwise, or when navHref cannot be resolved, it falls back to the NCX
// at ncxHref. A nav document that resolves but fails to parse returns
// that parse error without trying the NCX.
func Load(resolve Resolver, navHref, ncxHref string) (*Doc, error) {
	if navHref != "" {
		data, err := resolve(navHref)
		if err == nil {
			return ParseNavDoc(data)
		}
	}
	if ncxHref != "" {
		data, err := resolve(ncxHref)
		if err != nil {
			return nil, errs.New(errs.KindInvalidEpub, "nav.Load", fmt.Errorf("neither nav doc nor NCX could be read: %w", err))
		}
		toc, err := ParseNCX(data)
		if err != nil {
			return nil, err
		}
		return &Doc{TOC: toc}, nil
	}
	return nil, errs.Newf(errs.KindInvalidEpub, "nav.Load", "no navigation document found")
}

// ParseNavDoc parses an EPUB-3 <nav> document into toc/landmarks/page-list
// trees.
func ParseNavDoc(data []byte) (*Doc, error) {
	src := xhtml.NormalizeEpubNamespace(string(data))
	doc := etree.NewDocument()
	if err := doc.ReadFromString(src); err != nil {
		return nil, errs.New(errs.KindXMLParse, "nav.ParseNavDoc", err)
	}

	out := &Doc{}
	for _, navEl := range findAll(doc.Root(), "nav") {
		typ := attrLocal(navEl, "data-epub-type")
		ol := firstChildTag(navEl, "ol")
		if ol == nil {
			continue
		}
		tree := parseOl(ol)
		switch typ {
		case "toc", "":
			out.TOC = append(out.TOC, tree...)
		case "landmarks":
			out.Landmarks = append(out.Landmarks, tree...)
		case "page-list":
			out.PageList = append(out.PageList, tree...)
		}
	}
	return out, nil
}

func parseOl(ol *etree.Element) []*book.NavPoint {
	var out []*book.NavPoint
	for _, li := range childTags(ol, "li") {
		a := firstChildTag(li, "a")
		if a == nil {
			a = firstChildTag(li, "span")
		}
		point := &book.NavPoint{}
		if a != nil {
			point.Label = xhtml.StripTags(innerXML(a))
			point.Target = a.SelectAttrValue("href", "")
		}
		if childOl := firstChildTag(li, "ol"); childOl != nil {
			point.Children = parseOl(childOl)
		}
		out = append(out, point)
	}
	return out
}

// ParseNCX parses an EPUB-2 NCX <navMap> into a TOC tree.
func ParseNCX(data []byte) ([]*book.NavPoint, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, errs.New(errs.KindXMLParse, "nav.ParseNCX", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, errs.Newf(errs.KindInvalidEpub, "nav.ParseNCX", "empty NCX document")
	}
	navMap := firstChildTag(root, "navMap")
	if navMap == nil {
		return nil, errs.Newf(errs.KindInvalidEpub, "nav.ParseNCX", "no navMap element")
	}
	return parseNavPoints(navMap), nil
}

func parseNavPoints(parent *etree.Element) []*book.NavPoint {
	var out []*book.NavPoint
	for _, np := range childTags(parent, "navPoint") {
		point := &book.NavPoint{}
		if label := firstChildTag(np, "navLabel"); label != nil {
			if text := firstChildTag(label, "text"); text != nil {
				point.Label = text.Text()
			}
		}
		if content := firstChildTag(np, "content"); content != nil {
			point.Target = content.SelectAttrValue("src", "")
		}
		point.Children = parseNavPoints(np)
		out = append(out, point)
	}
	return out
}

// --- emission ---

// EmitNavDoc renders an EPUB-3 XHTML navigation document from doc.
func EmitNavDoc(doc *Doc) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")
	b.WriteString(`<!DOCTYPE html>` + "\n")
	b.WriteString(`<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">` + "\n")
	b.WriteString("<head><title>Table of Contents</title></head>\n<body>\n")

	writeNavSection(&b, "toc", "Table of Contents", doc.TOC)
	if len(doc.Landmarks) > 0 {
		writeNavSection(&b, "landmarks", "Landmarks", doc.Landmarks)
	}
	if len(doc.PageList) > 0 {
		writeNavSection(&b, "page-list", "Page List", doc.PageList)
	}

	b.WriteString("</body>\n</html>\n")
	return []byte(b.String())
}

func writeNavSection(b *strings.Builder, epubType, heading string, points []*book.NavPoint) {
	fmt.Fprintf(b, `<nav epub:type="%s"><h1>%s</h1>`, epubType, escapeText(heading))
	writeOl(b, points)
	b.WriteString("</nav>\n")
}

func writeOl(b *strings.Builder, points []*book.NavPoint) {
	b.WriteString("<ol>")
	for _, p := range points {
		b.WriteString("<li>")
		if p.Target != "" {
			fmt.Fprintf(b, `<a href="%s">%s</a>`, escapeAttr(p.Target), escapeText(p.Label))
		} else {
			fmt.Fprintf(b, `<span>%s</span>`, escapeText(p.Label))
		}
		if len(p.Children) > 0 {
			writeOl(b, p.Children)
		}
		b.WriteString("</li>")
	}
	b.WriteString("</ol>")
}

// EmitNCX renders an EPUB-2 NCX from doc.TOC, assigning sequential
// playOrder depth-first starting at 1.
func EmitNCX(doc *Doc, uid, title string) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")
	b.WriteString(`<!DOCTYPE ncx PUBLIC "-//NISO//DTD ncx 2005-1//EN" "http://www.daisy.org/z3986/2005/ncx-2005-1.dtd">` + "\n")
	b.WriteString(`<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">` + "\n")
	fmt.Fprintf(&b, "<head>\n<meta name=\"dtb:uid\" content=\"%s\"/>\n</head>\n", escapeAttr(uid))
	fmt.Fprintf(&b, "<docTitle><text>%s</text></docTitle>\n", escapeText(title))
	b.WriteString("<navMap>\n")
	order := 1
	writeNavPoints(&b, doc.TOC, &order)
	b.WriteString("</navMap>\n</ncx>\n")
	return []byte(b.String())
}

func writeNavPoints(b *strings.Builder, points []*book.NavPoint, order *int) {
	for _, p := range points {
		id := "navPoint-" + strconv.Itoa(*order)
		fmt.Fprintf(b, `<navPoint id="%s" playOrder="%d">`, id, *order)
		*order++
		fmt.Fprintf(b, "<navLabel><text>%s</text></navLabel>", escapeText(p.Label))
		fmt.Fprintf(b, `<content src="%s"/>`, escapeAttr(p.Target))
		if len(p.Children) > 0 {
			writeNavPoints(b, p.Children, order)
		}
		b.WriteString("</navPoint>\n")
	}
}

// --- etree helpers (local-name based, namespace-tolerant) ---

func findAll(root *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element
	if root == nil {
		return out
	}
	var walk func(e *etree.Element)
	walk = func(e *etree.Element) {
		if e.Tag == tag {
			out = append(out, e)
		}
		for _, c := range e.ChildElements() {
			walk(c)
		}
	}
	walk(root)
	return out
}

func childTags(parent *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element
	for _, c := range parent.ChildElements() {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

func firstChildTag(parent *etree.Element, tag string) *etree.Element {
	for _, c := range parent.ChildElements() {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

func attrLocal(e *etree.Element, local string) string {
	return e.SelectAttrValue(local, "")
}

func innerXML(e *etree.Element) string {
	var b strings.Builder
	for _, ch := range e.Child {
		switch v := ch.(type) {
		case *etree.CharData:
			b.WriteString(v.Data)
		case *etree.Element:
			b.WriteString(innerXML(v))
		}
	}
	return b.String()
}

func escapeText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

func escapeAttr(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
