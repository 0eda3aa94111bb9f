package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"golibri-studio/internal/book"
)

func sampleBook() *book.Book {
	b := book.New()
	b.OPFDir = "OEBPS"
	b.Metadata.Titles = []string{"Sample Book"}
	b.Metadata.Languages = []string{"en"}
	b.Metadata.Identifiers = []book.Identifier{{Value: "urn:uuid:sample"}}
	b.Metadata.Creators = []book.Creator{{Name: "Jane Doe", Role: "aut"}}

	b.Manifest = []book.ManifestItem{
		{ID: "c1", Href: "text/c1.xhtml", MediaType: "application/xhtml+xml"},
		{ID: "c2", Href: "text/c2.xhtml", MediaType: "application/xhtml+xml"},
		{ID: "cover-img", Href: "images/cover.jpg", MediaType: "image/jpeg"},
	}
	b.Spine = []book.SpineItem{
		{IDRef: "c1", Linear: true},
		{IDRef: "c2", Linear: true},
	}
	b.TOC = []*book.NavPoint{
		{Label: "Chapter One", Target: "text/c1.xhtml"},
		{Label: "Chapter Two", Target: "text/c2.xhtml"},
	}

	b.Resources["OEBPS/text/c1.xhtml"] = []byte(`<?xml version="1.0" encoding="utf-8"?>
<html xmlns="http://www.w3.org/1999/xhtml"><body>
<h1>Chapter One</h1>
<p>See <a href="c2.xhtml#target">chapter two</a> and <img src="../images/cover.jpg"/>.</p>
</body></html>`)
	b.Resources["OEBPS/text/c2.xhtml"] = []byte(`<?xml version="1.0" encoding="utf-8"?>
<html xmlns="http://www.w3.org/1999/xhtml"><body>
<h1 id="target">Chapter Two</h1>
<p>The end.</p>
</body></html>`)
	b.Resources["OEBPS/images/cover.jpg"] = []byte{0xFF, 0xD8, 0xFF}

	return b
}

func TestExtractWritesExpectedLayout(t *testing.T) {
	b := sampleBook()
	outDir := t.TempDir()

	report, err := Extract(b, outDir)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(report.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", report.Warnings)
	}

	metaData, err := os.ReadFile(filepath.Join(outDir, "metadata.yml"))
	if err != nil {
		t.Fatalf("reading metadata.yml: %v", err)
	}
	var meta metadataYAML
	if err := yaml.Unmarshal(metaData, &meta); err != nil {
		t.Fatalf("unmarshal metadata.yml: %v", err)
	}
	if meta.Title != "Sample Book" || len(meta.Authors) != 1 || meta.Authors[0].Name != "Jane Doe" {
		t.Fatalf("unexpected metadata: %+v", meta)
	}

	summary, err := os.ReadFile(filepath.Join(outDir, "SUMMARY.md"))
	if err != nil {
		t.Fatalf("reading SUMMARY.md: %v", err)
	}
	if !strings.Contains(string(summary), "Chapter One") || !strings.Contains(string(summary), "Chapter Two") {
		t.Fatalf("summary missing chapters: %s", summary)
	}

	ch1, err := os.ReadFile(filepath.Join(outDir, "chapters", "00-chapter-one.md"))
	if err != nil {
		t.Fatalf("reading chapter 1: %v", err)
	}
	if !strings.Contains(string(ch1), "01-chapter-two.md#target") {
		t.Fatalf("cross-chapter link not rewritten: %s", ch1)
	}
	if !strings.Contains(string(ch1), "assets/images/cover.jpg") {
		t.Fatalf("asset link not rewritten: %s", ch1)
	}
	if !strings.HasPrefix(string(ch1), "---\n") {
		t.Fatalf("chapter missing frontmatter: %s", ch1)
	}

	if _, err := os.Stat(filepath.Join(outDir, "assets", "images", "cover.jpg")); err != nil {
		t.Fatalf("cover asset not extracted: %v", err)
	}
}

func TestExtractReportsBrokenLinks(t *testing.T) {
	b := sampleBook()
	b.Resources["OEBPS/text/c1.xhtml"] = []byte(`<?xml version="1.0" encoding="utf-8"?>
<html xmlns="http://www.w3.org/1999/xhtml"><body>
<h1>Chapter One</h1>
<p>See <a href="missing.xhtml#nope">nowhere</a>.</p>
</body></html>`)

	report, err := Extract(b, t.TempDir())
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(report.Warnings) == 0 {
		t.Fatal("expected a warning about the dangling link")
	}
}
