package bookio

import (
	"fmt"

	"golibri-studio/internal/book"
	"golibri-studio/internal/errs"
	"golibri-studio/internal/nav"
	"golibri-studio/internal/opf"
	"golibri-studio/internal/xutil"
)

// Read opens an EPUB file and parses it into a Book (C1+C2+C3+C4).
func Read(path string) (*book.Book, error) {
	raw, err := openRaw(path)
	if err != nil {
		return nil, err
	}

	opfData, ok := raw.Resources[raw.OPFPath]
	if !ok {
		return nil, errs.Newf(errs.KindInvalidEpub, "bookio.Read", "OPF file %s referenced by container.xml is missing", raw.OPFPath)
	}

	parsed, err := opf.Parse(opfData)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	opfDir := xutil.OPFDir(raw.OPFPath)

	b := book.New()
	b.Metadata = parsed.Metadata
	b.Manifest = parsed.Manifest
	b.Spine = parsed.Spine
	b.Version = parsed.Version
	b.OPFDir = opfDir

	// Resources excludes the OPF itself and the regenerated nav/NCX; those
	// are derived fields on the Book, not resource bytes (I6).
	resources := map[string][]byte{}
	for k, v := range raw.Resources {
		if k == raw.OPFPath {
			continue
		}
		resources[k] = v
	}

	navItem, hasNav := findNavItem(parsed.Manifest)
	ncxHref := findNCXHref(parsed.Manifest)

	resolve := func(href string) ([]byte, error) {
		key := xutil.FindResourceKey(raw.Resources, opfDir, href)
		if key == "" {
			return nil, fmt.Errorf("resource %q not found", href)
		}
		return raw.Resources[key], nil
	}

	var navHref string
	if hasNav {
		navHref = navItem.Href
	}
	doc, err := nav.Load(resolve, navHref, ncxHref)
	if err != nil {
		return nil, fmt.Errorf("reading navigation from %s: %w", path, err)
	}
	b.TOC = doc.TOC
	b.Landmarks = doc.Landmarks
	b.PageList = doc.PageList

	// The nav doc and NCX resource bytes themselves are not stored as
	// resources: they are derived from b.TOC/Landmarks/PageList on write.
	if hasNav {
		if key := xutil.FindResourceKey(raw.Resources, opfDir, navItem.Href); key != "" {
			delete(resources, key)
		}
	}
	if ncxHref != "" {
		if key := xutil.FindResourceKey(raw.Resources, opfDir, ncxHref); key != "" {
			delete(resources, key)
		}
	}

	b.Resources = resources

	if len(b.Spine) == 0 {
		return nil, errs.Newf(errs.KindInvalidEpub, "bookio.Read", "spine is empty")
	}

	return b, nil
}

func findNavItem(items []book.ManifestItem) (book.ManifestItem, bool) {
	for _, m := range items {
		if m.HasProperty("nav") {
			return m, true
		}
	}
	return book.ManifestItem{}, false
}

// findNCXHref resolves the NCX href by manifest media type.
func findNCXHref(items []book.ManifestItem) string {
	for _, m := range items {
		if m.MediaType == "application/x-dtbncx+xml" {
			return m.Href
		}
	}
	return ""
}
