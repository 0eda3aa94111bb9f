package xutil

import "testing"

func TestFindResourceKey(t *testing.T) {
	resources := map[string][]byte{
		"OEBPS/text/ch1.xhtml": []byte("a"),
		"images/cover.jpg":     []byte("b"),
	}

	if got := FindResourceKey(resources, "OEBPS", "text/ch1.xhtml"); got != "OEBPS/text/ch1.xhtml" {
		t.Fatalf("got %q", got)
	}
	if got := FindResourceKey(resources, "OEBPS", "../images/cover.jpg"); got != "" {
		// "../images/cover.jpg" isn't normalized away by cleanPath's
		// simple rules; confirm it doesn't silently match the wrong key.
		if got == "OEBPS/text/ch1.xhtml" {
			t.Fatalf("matched wrong resource: %q", got)
		}
	}
	if got := FindResourceKey(resources, "OEBPS", "images/cover.jpg"); got != "images/cover.jpg" {
		t.Fatalf("expected fallback to bare href, got %q", got)
	}
	if got := FindResourceKey(resources, "", "missing.xhtml"); got != "" {
		t.Fatalf("expected no match, got %q", got)
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Chapter One!":  "chapter-one",
		"  spaced  out": "spaced-out",
		"Déjà Vu":       "d-j-vu",
		"":               "",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDisambiguate(t *testing.T) {
	seen := map[string]int{}
	if got := Disambiguate(seen, "chapter"); got != "chapter" {
		t.Fatalf("first call: got %q", got)
	}
	if got := Disambiguate(seen, "chapter"); got != "chapter-2" {
		t.Fatalf("second call: got %q", got)
	}
	if got := Disambiguate(seen, "chapter"); got != "chapter-3" {
		t.Fatalf("third call: got %q", got)
	}
}

func TestGuessMediaType(t *testing.T) {
	cases := map[string]string{
		"img/cover.jpg": "image/jpeg",
		"fonts/a.woff2": "font/woff2",
		"styles/s.css":  "text/css",
		"weird.xyz":     "application/octet-stream",
	}
	for path, want := range cases {
		if got := GuessMediaType(path); got != want {
			t.Errorf("GuessMediaType(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestAssetCategory(t *testing.T) {
	if AssetCategory("image/png") != "image" {
		t.Fatal("expected image")
	}
	if AssetCategory("font/woff2") != "font" {
		t.Fatal("expected font")
	}
	if AssetCategory("text/css") != "css" {
		t.Fatal("expected css")
	}
	if AssetCategory("application/octet-stream") != "other" {
		t.Fatal("expected other")
	}
}
