package manipulate

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golibri-studio/internal/book"
)

func fixtureBook() *book.Book {
	b := book.New()
	b.OPFDir = "OEBPS"
	b.Metadata.Titles = []string{"Original Title"}
	b.Metadata.Languages = []string{"en"}
	b.Metadata.Identifiers = []book.Identifier{{Value: "urn:uuid:x"}}
	b.Metadata.Creators = []book.Creator{{Name: "Original Author", Role: "aut"}}

	b.Manifest = []book.ManifestItem{
		{ID: "c1", Href: "text/c1.xhtml", MediaType: "application/xhtml+xml"},
		{ID: "c2", Href: "text/c2.xhtml", MediaType: "application/xhtml+xml"},
		{ID: "cover", Href: "images/cover.jpg", MediaType: "image/jpeg"},
	}
	b.Spine = []book.SpineItem{
		{IDRef: "c1", Linear: true},
		{IDRef: "c2", Linear: true},
	}
	b.TOC = []*book.NavPoint{
		{Label: "Chapter One", Target: "text/c1.xhtml"},
		{Label: "Chapter Two", Target: "text/c2.xhtml"},
	}
	b.Resources["OEBPS/text/c1.xhtml"] = []byte(`<html xmlns="http://www.w3.org/1999/xhtml"><body><h1>Chapter One</h1><p>The sky is red today.</p></body></html>`)
	b.Resources["OEBPS/text/c2.xhtml"] = []byte(`<html xmlns="http://www.w3.org/1999/xhtml"><body><h1>Chapter Two</h1><p>Nothing here.</p></body></html>`)
	b.Resources["OEBPS/images/cover.jpg"] = []byte{0xFF, 0xD8, 0xFF}
	return b
}

func TestSetAndRemoveMetadata(t *testing.T) {
	b := fixtureBook()

	if err := SetMetadata(b, "title", "New Title"); err != nil {
		t.Fatalf("SetMetadata title: %v", err)
	}
	if b.Metadata.Titles[0] != "New Title" {
		t.Fatalf("title = %v", b.Metadata.Titles)
	}

	if err := SetMetadata(b, "rendition:layout", "pre-paginated"); err != nil {
		t.Fatalf("SetMetadata custom: %v", err)
	}
	if b.Metadata.Custom["rendition:layout"] != "pre-paginated" {
		t.Fatalf("custom = %v", b.Metadata.Custom)
	}

	if err := RemoveMetadata(b, "title"); err != nil {
		t.Fatalf("RemoveMetadata: %v", err)
	}
	if b.Metadata.Titles != nil {
		t.Fatalf("expected titles cleared, got %v", b.Metadata.Titles)
	}
}

func TestImportExportMetadataRoundTrip(t *testing.T) {
	b := fixtureBook()
	path := filepath.Join(t.TempDir(), "metadata.yml")

	if err := ExportMetadata(b, path); err != nil {
		t.Fatalf("ExportMetadata: %v", err)
	}

	b2 := fixtureBook()
	b2.Metadata.Titles = []string{"Something Else"}
	if err := ImportMetadata(b2, path); err != nil {
		t.Fatalf("ImportMetadata: %v", err)
	}
	if b2.Metadata.Titles[0] != "Original Title" {
		t.Fatalf("title after import = %v", b2.Metadata.Titles)
	}
	if len(b2.Metadata.Creators) != 1 || b2.Metadata.Creators[0].Name != "Original Author" {
		t.Fatalf("creators after import = %v", b2.Metadata.Creators)
	}
}

func TestAddRemoveReorderChapter(t *testing.T) {
	b := fixtureBook()
	mdPath := filepath.Join(t.TempDir(), "new.md")
	if err := os.WriteFile(mdPath, []byte("# New Chapter\n\nBody.\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := AddChapter(b, mdPath, "", "c1"); err != nil {
		t.Fatalf("AddChapter: %v", err)
	}
	if len(b.Spine) != 3 || b.Spine[1].IDRef == "c1" || b.Spine[1].IDRef == "c2" {
		t.Fatalf("spine after add = %v", b.Spine)
	}
	newID := b.Spine[1].IDRef

	if err := ReorderChapter(b, 1, 2); err != nil {
		t.Fatalf("ReorderChapter: %v", err)
	}
	if b.Spine[2].IDRef != newID {
		t.Fatalf("reorder did not move new chapter to the end: %v", b.Spine)
	}

	if err := RemoveChapter(b, newID); err != nil {
		t.Fatalf("RemoveChapter: %v", err)
	}
	if len(b.Spine) != 2 {
		t.Fatalf("spine after remove = %v", b.Spine)
	}
	if _, ok := b.ManifestByID(newID); ok {
		t.Fatal("expected manifest entry to be removed")
	}
}

func TestReorderSpineOutOfRange(t *testing.T) {
	b := fixtureBook()
	if err := ReorderSpine(b, 0, 5); err == nil {
		t.Fatal("expected an error for an out-of-range target index")
	}
}

func TestSetSpineRejectsUnknownIDRef(t *testing.T) {
	b := fixtureBook()
	path := filepath.Join(t.TempDir(), "spine.yml")
	if err := os.WriteFile(path, []byte("- c2\n- c1\n- ghost\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := SetSpine(b, path); err == nil {
		t.Fatal("expected an error for an unknown idref")
	}
}

func TestSetSpineReordersByIDRef(t *testing.T) {
	b := fixtureBook()
	path := filepath.Join(t.TempDir(), "spine.yml")
	if err := os.WriteFile(path, []byte("- c2\n- c1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := SetSpine(b, path); err != nil {
		t.Fatalf("SetSpine: %v", err)
	}
	if b.Spine[0].IDRef != "c2" || b.Spine[1].IDRef != "c1" {
		t.Fatalf("spine after set = %v", b.Spine)
	}
}

func TestShowAndGenerateTOC(t *testing.T) {
	b := fixtureBook()
	tree := ShowTOC(b, 0)
	if !strings.Contains(tree, "Chapter One") || !strings.Contains(tree, "Chapter Two") {
		t.Fatalf("unexpected toc tree: %q", tree)
	}

	if err := GenerateTOC(b, 1); err != nil {
		t.Fatalf("GenerateTOC: %v", err)
	}
	if len(b.TOC) != 2 {
		t.Fatalf("generated toc = %v", b.TOC)
	}
	if b.TOC[0].Target == "" {
		t.Fatalf("generated nav point has no target: %+v", b.TOC[0])
	}
}

func TestGenerateTOCInsertsDistinctIDsForMultipleHeadings(t *testing.T) {
	b := fixtureBook()
	b.Resources["OEBPS/text/c1.xhtml"] = []byte(`<html xmlns="http://www.w3.org/1999/xhtml"><body>` +
		`<h1>First</h1><p>a</p><h2>Second</h2><p>b</p><h2>Third</h2></body></html>`)

	if err := GenerateTOC(b, 2); err != nil {
		t.Fatalf("GenerateTOC: %v", err)
	}

	src := string(b.Resources["OEBPS/text/c1.xhtml"])
	if !strings.Contains(src, `<h1 id="heading">First</h1>`) {
		t.Fatalf("first heading id not inserted correctly: %s", src)
	}
	if !strings.Contains(src, `<h2 id="heading-2">Second</h2>`) {
		t.Fatalf("second heading id not inserted correctly: %s", src)
	}
	if !strings.Contains(src, `<h2 id="heading-3">Third</h2>`) {
		t.Fatalf("third heading id not inserted correctly: %s", src)
	}
}

func TestContentSearchAndReplace(t *testing.T) {
	b := fixtureBook()

	matches, err := Search(b, "sky", false, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 1 || matches[0].ChapterID != "c1" {
		t.Fatalf("matches = %+v", matches)
	}

	results, err := Replace(b, "red", "blue", false, false, nil)
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if len(results) != 1 || results[0].Count != 1 {
		t.Fatalf("results = %+v", results)
	}
	if !strings.Contains(string(b.Resources["OEBPS/text/c1.xhtml"]), "blue") {
		t.Fatalf("replacement not applied: %s", b.Resources["OEBPS/text/c1.xhtml"])
	}
}

func TestContentReplaceDryRunLeavesResourcesUntouched(t *testing.T) {
	b := fixtureBook()
	before := string(b.Resources["OEBPS/text/c1.xhtml"])

	results, err := Replace(b, "red", "blue", false, true, nil)
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %+v", results)
	}
	if string(b.Resources["OEBPS/text/c1.xhtml"]) != before {
		t.Fatal("dry-run replace mutated a resource")
	}
}

func TestHeadingsRejectsOutOfRangeMapping(t *testing.T) {
	b := fixtureBook()
	if _, err := Headings(b, map[int]int{1: 7}); err == nil {
		t.Fatal("expected an error for an out-of-range heading level")
	}
}

func TestAssetListExtractAddRemove(t *testing.T) {
	b := fixtureBook()

	assets := ListAssets(b, "image")
	if len(assets) != 1 || assets[0].Href != "images/cover.jpg" {
		t.Fatalf("ListAssets = %+v", assets)
	}

	var buf bytes.Buffer
	if err := ExtractAsset(b, "images/cover.jpg", "", &buf); err != nil {
		t.Fatalf("ExtractAsset: %v", err)
	}
	if buf.Len() != 3 {
		t.Fatalf("extracted %d bytes, want 3", buf.Len())
	}

	newFile := filepath.Join(t.TempDir(), "extra.png")
	if err := os.WriteFile(newFile, []byte("fake-png"), 0o644); err != nil {
		t.Fatal(err)
	}
	item, err := AddAsset(b, newFile, "")
	if err != nil {
		t.Fatalf("AddAsset: %v", err)
	}
	if item.MediaType != "image/png" {
		t.Fatalf("media type = %q", item.MediaType)
	}

	warnings, err := RemoveAsset(b, item.Href)
	if err != nil {
		t.Fatalf("RemoveAsset: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if _, ok := b.ManifestByHref(item.Href); ok {
		t.Fatal("expected asset to be removed from manifest")
	}
}

func TestCoverGetAndSet(t *testing.T) {
	b := fixtureBook()

	if _, _, err := CoverGet(b); err == nil {
		t.Fatal("expected an error before any cover is set")
	}

	coverFile := filepath.Join(t.TempDir(), "front.png")
	if err := os.WriteFile(coverFile, []byte("fake-png-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	set, err := CoverSet(b, coverFile, "")
	if err != nil {
		t.Fatalf("CoverSet: %v", err)
	}
	if !set.HasProperty("cover-image") {
		t.Fatalf("new cover item missing cover-image property: %+v", set)
	}

	href, data, err := CoverGet(b)
	if err != nil {
		t.Fatalf("CoverGet: %v", err)
	}
	if href != set.Href || string(data) != "fake-png-bytes" {
		t.Fatalf("CoverGet = %q, %q", href, data)
	}

	for _, m := range b.Manifest {
		if m.ID != set.ID && m.HasProperty("cover-image") {
			t.Fatalf("more than one manifest item carries cover-image: %+v", m)
		}
	}
}

func TestExtractAllAssets(t *testing.T) {
	b := fixtureBook()
	dir := t.TempDir()
	if err := ExtractAllAssets(b, dir); err != nil {
		t.Fatalf("ExtractAllAssets: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "assets", "images", "cover.jpg")); err != nil {
		t.Fatalf("expected cover to be extracted under assets/images: %v", err)
	}
}
