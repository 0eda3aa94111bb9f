package bookio

import (
	"path/filepath"
	"testing"

	"golibri-studio/internal/book"
)

func minimalBook() *book.Book {
	b := book.New()
	b.Metadata.Titles = []string{"T"}
	b.Metadata.Languages = []string{"en"}
	b.Metadata.Identifiers = []book.Identifier{{Value: "urn:uuid:x"}}
	b.Manifest = []book.ManifestItem{
		{ID: "c1", Href: "text/c1.xhtml", MediaType: "application/xhtml+xml"},
	}
	b.Spine = []book.SpineItem{{IDRef: "c1", Linear: true}}
	b.TOC = []*book.NavPoint{{Label: "Hello", Target: "text/c1.xhtml"}}
	b.Resources["OEBPS/text/c1.xhtml"] = []byte(`<?xml version="1.0" encoding="utf-8"?>
<html xmlns="http://www.w3.org/1999/xhtml"><body><h1>Hello</h1><p>world</p></body></html>`)
	b.OPFDir = "OEBPS"
	return b
}

func TestWriteReadRoundTrip(t *testing.T) {
	b := minimalBook()
	path := filepath.Join(t.TempDir(), "book.epub")

	if err := Write(b, path); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if len(got.Spine) != 1 || got.Spine[0].IDRef != "c1" {
		t.Fatalf("spine = %v", got.Spine)
	}
	if len(got.TOC) != 1 || got.TOC[0].Label != "Hello" {
		t.Fatalf("toc = %v", got.TOC)
	}
	if len(got.Metadata.Titles) != 1 || got.Metadata.Titles[0] != "T" {
		t.Fatalf("titles = %v", got.Metadata.Titles)
	}
	if problems := got.Validate(); len(problems) != 0 {
		t.Fatalf("round-tripped book has validation problems: %v", problems)
	}
}

func TestWriteEPUB2WithNCXOnly(t *testing.T) {
	b := minimalBook()
	b.Version = "2"
	path := filepath.Join(t.TempDir(), "book2.epub")

	if err := Write(b, path); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got.TOC) != 1 || got.TOC[0].Label != "Hello" {
		t.Fatalf("toc after epub2 round-trip = %v", got.TOC)
	}
}

func TestWriteFailsWithEmptySpineIsNotPartialWrite(t *testing.T) {
	b := minimalBook()
	b.Spine = nil
	path := filepath.Join(t.TempDir(), "book.epub")

	if err := Write(b, path); err == nil {
		t.Fatal("expected Write to fail on an empty spine")
	}
	if _, statErr := Read(path); statErr == nil {
		t.Fatal("expected no file to have been written")
	}
}
