package assemble

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFixture(t *testing.T, dir string) {
	t.Helper()

	mustWrite := func(rel, content string) {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", rel, err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}

	mustWrite("metadata.yml", `title: Assembled Book
authors:
  - name: Jane Doe
    role: aut
language: en
identifier: urn:uuid:fixed-id
`)

	mustWrite("SUMMARY.md", `# Summary

- [Chapter One](chapters/00-one.md)
  - [Section 1.1](chapters/00-one.md#s1)
- [Chapter Two](chapters/01-two.md)
`)

	mustWrite("chapters/00-one.md", "---\ntitle: Chapter One\n---\n\n# Chapter One\n\n<a id=\"s1\"></a>\n\nSection text.\n")
	mustWrite("chapters/01-two.md", "# Chapter Two\n\nMore text.\n")
	mustWrite("assets/images/cover.jpg", "not-really-a-jpeg")
}

func TestAssembleBuildsManifestSpineAndNav(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir)

	b, err := Assemble(dir)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	if len(b.Spine) != 2 {
		t.Fatalf("spine = %v", b.Spine)
	}
	if len(b.Manifest) != 3 {
		t.Fatalf("manifest = %v", b.Manifest)
	}
	if len(b.Metadata.Titles) != 1 || b.Metadata.Titles[0] != "Assembled Book" {
		t.Fatalf("titles = %v", b.Metadata.Titles)
	}
	if len(b.Metadata.Creators) != 1 || b.Metadata.Creators[0].Name != "Jane Doe" {
		t.Fatalf("creators = %v", b.Metadata.Creators)
	}

	if len(b.TOC) != 2 {
		t.Fatalf("toc top level = %v", b.TOC)
	}
	if len(b.TOC[0].Children) != 1 || b.TOC[0].Children[0].Label != "Section 1.1" {
		t.Fatalf("nested toc entry missing: %+v", b.TOC[0])
	}

	if problems := b.Validate(); len(problems) != 0 {
		t.Fatalf("assembled book fails validation: %v", problems)
	}
}

func TestAssembleRejectsEmptySummary(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "metadata.yml"), []byte("title: X\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "SUMMARY.md"), []byte("# Summary\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Assemble(dir); err == nil {
		t.Fatal("expected an error for an empty SUMMARY.md")
	}
}
