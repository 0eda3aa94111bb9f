package opf

import (
	"sort"
	"strings"

	"github.com/beevik/etree"

	"golibri-studio/internal/book"
	"golibri-studio/internal/xutil"
)

// Write serializes b's metadata, manifest and spine as an EPUB 3.3 package
// document. The caller (internal/bookio) is responsible for ensuring the
// manifest already carries nav/ncx entries and that b.EnsureWritable has
// run. ncxID, if non-empty, is the manifest id written as the spine's
// toc attribute.
func Write(b *book.Book, ncxID string) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)

	root := doc.CreateElement("package")
	root.CreateAttr("xmlns", nsOPF)
	root.CreateAttr("version", "3.0")
	root.CreateAttr("unique-identifier", "pub-id")

	metadata := root.CreateElement("metadata")
	metadata.CreateAttr("xmlns:dc", nsDC)
	metadata.CreateAttr("xmlns:opf", nsOPF)

	writeMetadata(metadata, &b.Metadata)
	writeManifest(root, b.Manifest)
	writeSpine(root, b.Spine, ncxID)

	doc.Indent(2)
	return doc.WriteToBytes()
}

func writeMetadata(metadata *etree.Element, md *book.Metadata) {
	if len(md.Titles) == 0 {
		md.Titles = []string{"Untitled"}
	}
	for _, t := range md.Titles {
		metadata.CreateElement("dc:title").SetText(t)
	}

	if len(md.Identifiers) == 0 {
		md.Identifiers = []book.Identifier{{Value: "urn:uuid:00000000-0000-0000-0000-000000000000"}}
	}
	for i, id := range md.Identifiers {
		el := metadata.CreateElement("dc:identifier")
		el.SetText(id.Value)
		if i == 0 {
			el.CreateAttr("id", "pub-id")
		}
		if id.Scheme != "" {
			el.CreateAttr("opf:scheme", id.Scheme)
		}
	}

	if len(md.Languages) == 0 {
		md.Languages = []string{"en"}
	}
	for _, l := range md.Languages {
		metadata.CreateElement("dc:language").SetText(l)
	}

	for _, c := range md.Creators {
		el := metadata.CreateElement("dc:creator")
		el.SetText(c.Name)
		if c.Role != "" {
			el.CreateAttr("opf:role", c.Role)
		}
	}
	for _, c := range md.Contributors {
		el := metadata.CreateElement("dc:contributor")
		el.SetText(c.Name)
		if c.Role != "" {
			el.CreateAttr("opf:role", c.Role)
		}
	}

	if md.Publisher != "" {
		metadata.CreateElement("dc:publisher").SetText(md.Publisher)
	}
	if md.Description != "" {
		metadata.CreateElement("dc:description").SetText(md.Description)
	}
	if md.Rights != "" {
		metadata.CreateElement("dc:rights").SetText(md.Rights)
	}
	if md.Date != "" {
		metadata.CreateElement("dc:date").SetText(md.Date)
	}
	for _, s := range md.Subjects {
		metadata.CreateElement("dc:subject").SetText(s)
	}

	if md.Modified == "" {
		md.Modified = xutil.ISO8601Now()
	}
	modEl := metadata.CreateElement("meta")
	modEl.CreateAttr("property", "dcterms:modified")
	modEl.SetText(md.Modified)

	// Stable iteration order keeps repeated writes of the same Book
	// producing byte-comparable output.
	keys := make([]string, 0, len(md.Custom))
	for k := range md.Custom {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		el := metadata.CreateElement("meta")
		el.CreateAttr("property", k)
		el.SetText(md.Custom[k])
	}
}

func writeManifest(root *etree.Element, items []book.ManifestItem) {
	manifest := root.CreateElement("manifest")
	for _, item := range items {
		el := manifest.CreateElement("item")
		el.CreateAttr("id", item.ID)
		el.CreateAttr("href", item.Href)
		el.CreateAttr("media-type", item.MediaType)
		if len(item.Properties) > 0 {
			el.CreateAttr("properties", strings.Join(item.Properties, " "))
		}
	}
}

func writeSpine(root *etree.Element, items []book.SpineItem, ncxID string) {
	spine := root.CreateElement("spine")
	if ncxID != "" {
		spine.CreateAttr("toc", ncxID)
	}
	for _, it := range items {
		el := spine.CreateElement("itemref")
		el.CreateAttr("idref", it.IDRef)
		if !it.Linear {
			el.CreateAttr("linear", "no")
		}
	}
}
