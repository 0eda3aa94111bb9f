package mdbridge

import (
	"strings"
	"testing"
)

func TestToMarkdownRewritesAssetAndChapterRefs(t *testing.T) {
	src := `<p><img src="../images/cover.jpg"/> see <a href="chapter2.xhtml#note">note</a></p>`
	ctx := ChapterContext{
		SelfHref:            "text/chapter1.xhtml",
		PathMap:             map[string]string{"../images/cover.jpg": "assets/cover.jpg"},
		ChapterMap:          map[string]string{"chapter2.xhtml": "02-two.md"},
		ReferencedFragments: map[string]bool{},
	}

	md, err := ToMarkdown(src, ctx)
	if err != nil {
		t.Fatalf("ToMarkdown: %v", err)
	}
	if !strings.Contains(md, "assets/cover.jpg") {
		t.Fatalf("asset path not rewritten: %q", md)
	}
	if !strings.Contains(md, "02-two.md#note") {
		t.Fatalf("chapter link not rewritten: %q", md)
	}
}

func TestToMarkdownPreservesReferencedAnchors(t *testing.T) {
	src := `<h2 id="kept">Title</h2><p id="dropped">Body</p>`
	ctx := ChapterContext{
		SelfHref:            "text/c1.xhtml",
		ReferencedFragments: map[string]bool{"kept": true},
	}

	md, err := ToMarkdown(src, ctx)
	if err != nil {
		t.Fatalf("ToMarkdown: %v", err)
	}
	if !strings.Contains(md, `<a id="kept"></a>`) {
		t.Fatalf("expected referenced anchor to survive conversion: %q", md)
	}
	if strings.Contains(md, `id="dropped"`) {
		t.Fatalf("unreferenced id should have been dropped: %q", md)
	}
}

func TestToMarkdownDropsEmptyAnchors(t *testing.T) {
	src := `<p>intro <a id="skip-target"></a>more text</p>`
	ctx := ChapterContext{SelfHref: "text/c1.xhtml", ReferencedFragments: map[string]bool{}}

	md, err := ToMarkdown(src, ctx)
	if err != nil {
		t.Fatalf("ToMarkdown: %v", err)
	}
	if strings.Contains(md, "skip-target") {
		t.Fatalf("empty unreferenced anchor should have been removed: %q", md)
	}
	if !strings.Contains(md, "intro") || !strings.Contains(md, "more text") {
		t.Fatalf("surrounding text lost: %q", md)
	}
}

func TestToMarkdownConvertsFootnoteMarkers(t *testing.T) {
	src := `<p>Some text<a epub:type="noteref" href="#fn1">1</a>.</p>` +
		`<aside epub:type="footnote" id="fn1"><p>Footnote body.</p></aside>`
	ctx := ChapterContext{SelfHref: "text/c1.xhtml", ReferencedFragments: map[string]bool{}}

	md, err := ToMarkdown(src, ctx)
	if err != nil {
		t.Fatalf("ToMarkdown: %v", err)
	}
	if !strings.Contains(md, "[^fn1]") {
		t.Fatalf("expected a footnote reference: %q", md)
	}
	if !strings.Contains(md, "[^fn1]: Footnote body.") {
		t.Fatalf("expected a footnote definition: %q", md)
	}
}

func TestParseChapterMarkdownExtractsFrontmatterAndTitle(t *testing.T) {
	src := []byte("---\ntitle: Chapter One\noriginal_file: text/c1.xhtml\nspine_index: 0\n---\n\n# Chapter One\n\nSome text.\n")

	parsed, err := ParseChapterMarkdown(src)
	if err != nil {
		t.Fatalf("ParseChapterMarkdown: %v", err)
	}
	if !parsed.HasFront {
		t.Fatal("expected frontmatter to be detected")
	}
	if parsed.FrontMatter.OriginalFile != "text/c1.xhtml" {
		t.Fatalf("original_file = %q", parsed.FrontMatter.OriginalFile)
	}
	if parsed.Title != "Chapter One" {
		t.Fatalf("title = %q", parsed.Title)
	}
	if !strings.Contains(parsed.BodyXHTML, "Some text.") {
		t.Fatalf("body missing content: %q", parsed.BodyXHTML)
	}
}

func TestParseChapterMarkdownRendersFootnotesAndHeadingAttributes(t *testing.T) {
	src := []byte("# Title {#custom-id}\n\nSee note[^1].\n\n[^1]: A footnote.\n")

	parsed, err := ParseChapterMarkdown(src)
	if err != nil {
		t.Fatalf("ParseChapterMarkdown: %v", err)
	}
	if !strings.Contains(parsed.BodyXHTML, `id="custom-id"`) {
		t.Fatalf("heading attribute not honored: %q", parsed.BodyXHTML)
	}
	if !strings.Contains(parsed.BodyXHTML, "A footnote.") {
		t.Fatalf("footnote definition not rendered: %q", parsed.BodyXHTML)
	}
}

func TestParseChapterMarkdownFallsBackToHeading(t *testing.T) {
	src := []byte("# Fallback Title\n\nBody text.\n")

	parsed, err := ParseChapterMarkdown(src)
	if err != nil {
		t.Fatalf("ParseChapterMarkdown: %v", err)
	}
	if parsed.HasFront {
		t.Fatal("expected no frontmatter")
	}
	if parsed.Title != "Fallback Title" {
		t.Fatalf("title = %q", parsed.Title)
	}
}

func TestWrapXHTMLDocumentEscapesTitle(t *testing.T) {
	out := WrapXHTMLDocument(`A & <B>`, "<p>body</p>")
	if !strings.Contains(out, "<title>A &amp; &lt;B&gt;</title>") {
		t.Fatalf("title not escaped: %q", out)
	}
	if !strings.Contains(out, `xmlns="http://www.w3.org/1999/xhtml"`) {
		t.Fatalf("missing xhtml namespace: %q", out)
	}
	if !strings.Contains(out, "<p>body</p>") {
		t.Fatalf("body not embedded: %q", out)
	}
}
