package book

import "testing"

func minimalBook() *Book {
	b := New()
	b.OPFDir = "OEBPS"
	b.Version = "3.3"
	b.Metadata.Titles = []string{"T"}
	b.Metadata.Languages = []string{"en"}
	b.Metadata.Identifiers = []Identifier{{Value: "urn:uuid:x"}}
	b.Manifest = []ManifestItem{{ID: "c1", Href: "text/c1.xhtml", MediaType: "application/xhtml+xml"}}
	b.Spine = []SpineItem{{IDRef: "c1", Linear: true}}
	b.Resources["OEBPS/text/c1.xhtml"] = []byte("<h1>Hello</h1>")
	return b
}

func TestValidateCleanBook(t *testing.T) {
	b := minimalBook()
	if problems := b.Validate(); len(problems) != 0 {
		t.Fatalf("expected no problems, got %v", problems)
	}
}

func TestValidateDanglingSpineIDRef(t *testing.T) {
	b := minimalBook()
	b.Spine = append(b.Spine, SpineItem{IDRef: "missing"})
	problems := b.Validate()
	if len(problems) != 1 {
		t.Fatalf("expected exactly 1 problem, got %v", problems)
	}
}

func TestValidateMissingResource(t *testing.T) {
	b := minimalBook()
	delete(b.Resources, "OEBPS/text/c1.xhtml")
	problems := b.Validate()
	if len(problems) != 1 {
		t.Fatalf("expected exactly 1 problem, got %v", problems)
	}
}

func TestValidateEmptySpine(t *testing.T) {
	b := minimalBook()
	b.Spine = nil
	found := false
	for _, p := range b.Validate() {
		if p.Error() == "spine is empty" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected an empty-spine problem")
	}
}

func TestEnsureWritablePatchesRequiredMetadata(t *testing.T) {
	b := New()
	b.EnsureWritable()
	if len(b.Metadata.Titles) == 0 || len(b.Metadata.Identifiers) == 0 || len(b.Metadata.Languages) == 0 {
		t.Fatalf("EnsureWritable left required metadata empty: %+v", b.Metadata)
	}
}

func TestWarningsFlagsUnrecognizedRenditionHints(t *testing.T) {
	b := minimalBook()
	if w := b.Warnings(); len(w) != 0 {
		t.Fatalf("expected no warnings on a clean book, got %v", w)
	}

	b.Metadata.Custom["rendition:layout"] = "pre-paginated"
	if w := b.Warnings(); len(w) != 0 {
		t.Fatalf("expected no warning for a recognized rendition:layout, got %v", w)
	}

	b.Metadata.Custom["rendition:layout"] = "fancy"
	b.Metadata.Custom["rendition:orientation"] = "sideways"
	w := b.Warnings()
	if len(w) != 2 {
		t.Fatalf("expected 2 warnings for unrecognized rendition hints, got %v", w)
	}
}

func TestManifestAndNavLookups(t *testing.T) {
	b := minimalBook()
	b.Manifest[0].Properties = []string{"nav"}
	if _, ok := b.NavItem(); !ok {
		t.Fatal("expected NavItem to find the item carrying the nav property")
	}
	if _, ok := b.ManifestByHref("text/c1.xhtml"); !ok {
		t.Fatal("expected ManifestByHref to resolve")
	}
	if _, ok := b.ManifestByID("missing"); ok {
		t.Fatal("expected ManifestByID to miss on unknown id")
	}
}
