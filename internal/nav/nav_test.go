package nav

import (
	"errors"
	"testing"

	"golibri-studio/internal/book"
)

var errNotFound = errors.New("not found")

func sampleTOC() []*book.NavPoint {
	return []*book.NavPoint{
		{Label: "Chapter 1", Target: "text/c1.xhtml", Children: []*book.NavPoint{
			{Label: "Section 1.1", Target: "text/c1.xhtml#s1"},
		}},
		{Label: "Chapter 2", Target: "text/c2.xhtml"},
	}
}

func TestEmitAndParseNavDoc(t *testing.T) {
	doc := &Doc{TOC: sampleTOC()}
	out := EmitNavDoc(doc)

	parsed, err := ParseNavDoc(out)
	if err != nil {
		t.Fatalf("ParseNavDoc: %v", err)
	}
	if len(parsed.TOC) != 2 {
		t.Fatalf("got %d top-level nav points, want 2", len(parsed.TOC))
	}
	if parsed.TOC[0].Label != "Chapter 1" || parsed.TOC[0].Target != "text/c1.xhtml" {
		t.Fatalf("unexpected first nav point: %+v", parsed.TOC[0])
	}
	if len(parsed.TOC[0].Children) != 1 || parsed.TOC[0].Children[0].Label != "Section 1.1" {
		t.Fatalf("unexpected children: %+v", parsed.TOC[0].Children)
	}
}

func TestEmitAndParseNCX(t *testing.T) {
	doc := &Doc{TOC: sampleTOC()}
	out := EmitNCX(doc, "urn:uuid:x", "My Book")

	parsed, err := ParseNCX(out)
	if err != nil {
		t.Fatalf("ParseNCX: %v", err)
	}
	if len(parsed) != 2 {
		t.Fatalf("got %d nav points, want 2", len(parsed))
	}
	if parsed[1].Label != "Chapter 2" || parsed[1].Target != "text/c2.xhtml" {
		t.Fatalf("unexpected second nav point: %+v", parsed[1])
	}
}

func TestLoadFallsBackToNCX(t *testing.T) {
	ncxBytes := EmitNCX(&Doc{TOC: sampleTOC()}, "urn:uuid:x", "My Book")
	resolve := func(href string) ([]byte, error) {
		if href == "toc.ncx" {
			return ncxBytes, nil
		}
		return nil, errNotFound
	}

	doc, err := Load(resolve, "", "toc.ncx")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(doc.TOC) != 2 {
		t.Fatalf("got %d nav points, want 2", len(doc.TOC))
	}
}
