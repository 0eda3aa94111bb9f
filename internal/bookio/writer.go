package bookio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golibri-studio/internal/book"
	"golibri-studio/internal/errs"
	"golibri-studio/internal/nav"
	"golibri-studio/internal/opf"
)

const (
	canonicalOPFDir = "OEBPS"
	canonicalOPF    = canonicalOPFDir + "/content.opf"
	canonicalNav    = canonicalOPFDir + "/toc.xhtml"
	canonicalNCX    = canonicalOPFDir + "/toc.ncx"
	navID           = "nav"
	ncxID           = "ncx"
)

// reservedHrefs are the OPF-dir-relative names the writer regenerates;
// any pre-existing resource with one of these names is dropped rather
// than copied through, per spec.md §6.
var reservedHrefs = map[string]bool{
	"content.opf": true,
	"toc.xhtml":   true,
	"toc.ncx":     true,
}

// Write packages b as a valid EPUB 3.3 ZIP at path, atomically. It writes
// to "<path>.tmp" first and renames over path only on success; on any
// failure the temp file is removed and path is left untouched (spec §4.1,
// property P7).
func Write(b *book.Book, path string) error {
	b.EnsureWritable()
	if err := b.RequireNonEmptySpine("bookio.Write"); err != nil {
		return err
	}

	ensureNavAndNCXManifestEntries(b)

	tmpPath := path + ".tmp"
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return errs.New(errs.KindIO, "bookio.Write", err)
	}

	if err := writeContents(b, tmpFile); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return err
	}

	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return errs.New(errs.KindIO, "bookio.Write", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return errs.New(errs.KindIO, "bookio.Write", fmt.Errorf("renaming temp file to %s: %w", path, err))
	}

	b.OPFDir = canonicalOPFDir
	return nil
}

func writeContents(b *book.Book, f *os.File) error {
	zw := newZipWriter(f)

	if err := zw.writeMimetype(); err != nil {
		return errs.New(errs.KindIO, "bookio.Write", err)
	}

	if err := zw.writeFile("META-INF/container.xml", buildContainerXML(canonicalOPF)); err != nil {
		return errs.New(errs.KindIO, "bookio.Write", err)
	}

	navDoc := &nav.Doc{TOC: b.TOC, Landmarks: b.Landmarks, PageList: b.PageList}
	title := "Untitled"
	if len(b.Metadata.Titles) > 0 {
		title = b.Metadata.Titles[0]
	}
	uid := ""
	if len(b.Metadata.Identifiers) > 0 {
		uid = b.Metadata.Identifiers[0].Value
	}

	if err := zw.writeFile(canonicalNav, nav.EmitNavDoc(navDoc)); err != nil {
		return errs.New(errs.KindIO, "bookio.Write", err)
	}
	if err := zw.writeFile(canonicalNCX, nav.EmitNCX(navDoc, uid, title)); err != nil {
		return errs.New(errs.KindIO, "bookio.Write", err)
	}

	opfBytes, err := opf.Write(b, ncxID)
	if err != nil {
		return fmt.Errorf("emitting OPF: %w", err)
	}
	if err := zw.writeFile(canonicalOPF, opfBytes); err != nil {
		return errs.New(errs.KindIO, "bookio.Write", err)
	}

	for _, rel := range rebasedResourcePaths(b) {
		data := rel.data
		if err := zw.writeFile(canonicalOPFDir+"/"+rel.path, data); err != nil {
			return errs.New(errs.KindIO, "bookio.Write", fmt.Errorf("writing %s: %w", rel.path, err))
		}
	}

	if err := zw.close(); err != nil {
		return errs.New(errs.KindIO, "bookio.Write", err)
	}
	return nil
}

type rebasedResource struct {
	path string
	data []byte
}

// rebasedResourcePaths returns every resource entry with its key rewritten
// relative to the original OPF directory, ready to be rebased under
// OEBPS/ (spec §4.1 step 5). Reserved names (content.opf, toc.xhtml,
// toc.ncx) are dropped since the writer regenerates those.
func rebasedResourcePaths(b *book.Book) []rebasedResource {
	out := make([]rebasedResource, 0, len(b.Resources))
	seen := map[string]bool{}
	for key, data := range b.Resources {
		rel := key
		if b.OPFDir != "" && strings.HasPrefix(key, b.OPFDir+"/") {
			rel = strings.TrimPrefix(key, b.OPFDir+"/")
		}
		if reservedHrefs[rel] {
			continue
		}
		if seen[rel] {
			continue
		}
		seen[rel] = true
		out = append(out, rebasedResource{path: rel, data: data})
	}
	return out
}

// ensureNavAndNCXManifestEntries makes sure the manifest carries exactly
// one nav-document item and one NCX item at the canonical hrefs, updating
// an existing entry in place if one already exists from a prior read.
func ensureNavAndNCXManifestEntries(b *book.Book) {
	navHref := filepath.Base(canonicalNav)
	ncxHref := filepath.Base(canonicalNCX)

	foundNav, foundNCX := false, false
	for i := range b.Manifest {
		if b.Manifest[i].HasProperty("nav") {
			b.Manifest[i].Href = navHref
			b.Manifest[i].MediaType = "application/xhtml+xml"
			foundNav = true
		}
		if b.Manifest[i].MediaType == "application/x-dtbncx+xml" {
			b.Manifest[i].Href = ncxHref
			b.Manifest[i].ID = ncxID
			foundNCX = true
		}
	}
	if !foundNav {
		b.Manifest = append(b.Manifest, book.ManifestItem{
			ID: navID, Href: navHref, MediaType: "application/xhtml+xml", Properties: []string{"nav"},
		})
	}
	if !foundNCX {
		b.Manifest = append(b.Manifest, book.ManifestItem{
			ID: ncxID, Href: ncxHref, MediaType: "application/x-dtbncx+xml",
		})
	}
}
