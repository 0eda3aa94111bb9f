package opf

import (
	"testing"

	"golibri-studio/internal/book"
)

func TestWriteParseRoundTrip(t *testing.T) {
	b := book.New()
	b.Version = "3.3"
	b.Metadata.Titles = []string{"My Book"}
	b.Metadata.Creators = []book.Creator{{Name: "Jane Doe", Role: "aut"}}
	b.Metadata.Languages = []string{"en"}
	b.Metadata.Identifiers = []book.Identifier{{Value: "urn:uuid:abc", Scheme: "uuid"}}
	b.Metadata.Publisher = "Acme"
	b.Metadata.Subjects = []string{"fiction"}
	b.Metadata.Custom = map[string]string{"rendition:layout": "pre-paginated"}

	b.Manifest = []book.ManifestItem{
		{ID: "c1", Href: "text/c1.xhtml", MediaType: "application/xhtml+xml"},
		{ID: "nav", Href: "nav.xhtml", MediaType: "application/xhtml+xml", Properties: []string{"nav"}},
	}
	b.Spine = []book.SpineItem{{IDRef: "c1", Linear: true}}

	data, err := Write(b, "ncx")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	res, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if len(res.Metadata.Titles) != 1 || res.Metadata.Titles[0] != "My Book" {
		t.Fatalf("titles = %v", res.Metadata.Titles)
	}
	if len(res.Metadata.Creators) != 1 || res.Metadata.Creators[0].Name != "Jane Doe" {
		t.Fatalf("creators = %v", res.Metadata.Creators)
	}
	if res.Metadata.Custom["rendition:layout"] != "pre-paginated" {
		t.Fatalf("custom metadata did not round-trip: %v", res.Metadata.Custom)
	}
	if len(res.Manifest) != 2 {
		t.Fatalf("manifest = %v", res.Manifest)
	}
	if len(res.Spine) != 1 || res.Spine[0].IDRef != "c1" {
		t.Fatalf("spine = %v", res.Spine)
	}
	if res.Version != "3" {
		t.Fatalf("version = %q", res.Version)
	}
}
