// Package assemble implements C6: building a book.Book from the
// opinionated Markdown-plus-assets directory layout produced by C5
// (spec.md §4.5).
package assemble

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"golibri-studio/internal/book"
	"golibri-studio/internal/errs"
	"golibri-studio/internal/mdbridge"
	"golibri-studio/internal/xutil"
)

// assetDirs are scanned in this order; each becomes ManifestItems rebased
// under the OPF tree (spec §4.5 step 4).
var assetDirs = []string{"styles", "assets/images", "assets/fonts", "assets"}

// Assemble reads inDir (an extracted layout) and returns a new Book.
func Assemble(inDir string) (*book.Book, error) {
	b := book.New()
	b.OPFDir = "OEBPS"
	b.Version = "3.3"

	if err := loadMetadata(b, inDir); err != nil {
		return nil, err
	}

	entries, err := parseSummary(filepath.Join(inDir, "SUMMARY.md"))
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, errs.New(errs.KindInvalidArgument, "assemble.Assemble", fmt.Errorf("SUMMARY.md has no chapter links"))
	}

	chapterHrefs := map[string]string{} // SUMMARY-relative chapter path -> manifest href
	seen := map[string]int{}

	var walk func(es []*summaryEntry)
	walk = func(es []*summaryEntry) {
		for _, e := range es {
			// A file linked again (e.g. "chapters/00-one.md#s1") is already
			// a chapter; only its nav entry is added, by buildNavTree.
			if _, done := chapterHrefs[e.target]; e.target != "" && !done {
				rel := e.target
				id := xutil.Disambiguate(seen, "chap-"+xutil.Slugify(xutil.FileStem(rel)))
				href := fmt.Sprintf("text/%s.xhtml", id)
				chapterHrefs[rel] = href

				if err2 := addChapter(b, inDir, rel, id, href); err2 != nil && err == nil {
					err = err2
				}
			}
			walk(e.children)
		}
	}
	walk(entries)
	if err != nil {
		return nil, err
	}

	if err := scanAssets(b, inDir); err != nil {
		return nil, err
	}

	b.TOC = buildNavTree(entries, chapterHrefs)

	if len(b.Metadata.Identifiers) == 0 {
		b.Metadata.Identifiers = []book.Identifier{{Value: "urn:uuid:" + uuid.NewString(), Scheme: "uuid"}}
	}
	if len(b.Metadata.Languages) == 0 {
		b.Metadata.Languages = []string{"en"}
	}
	b.Metadata.Modified = xutil.ISO8601Now()

	return b, nil
}

func addChapter(b *book.Book, inDir, relPath, id, href string) error {
	fullPath := filepath.Join(inDir, filepath.FromSlash(relPath))
	src, err := os.ReadFile(fullPath)
	if err != nil {
		return errs.New(errs.KindIO, "assemble.addChapter", err)
	}

	parsed, err := mdbridge.ParseChapterMarkdown(src)
	if err != nil {
		return err
	}

	title := parsed.Title
	if title == "" {
		title = xutil.FileStem(relPath)
	}
	xhtmlDoc := mdbridge.WrapXHTMLDocument(title, parsed.BodyXHTML)

	b.Manifest = append(b.Manifest, book.ManifestItem{
		ID:        id,
		Href:      href,
		MediaType: "application/xhtml+xml",
	})
	b.Spine = append(b.Spine, book.SpineItem{IDRef: id, Linear: true})
	b.Resources[b.OPFDir+"/"+href] = []byte(xhtmlDoc)
	return nil
}

// scanAssets walks styles/ and assets/** and adds every file found as a
// ManifestItem plus a resources entry rebased under the OPF tree.
func scanAssets(b *book.Book, inDir string) error {
	seenIDs := map[string]int{}
	for _, dir := range assetDirs {
		root := filepath.Join(inDir, filepath.FromSlash(dir))
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			continue
		}
		var files []string
		err = filepath.Walk(root, func(p string, fi os.FileInfo, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if dir == "assets" && fi.IsDir() && (fi.Name() == "images" || fi.Name() == "fonts") {
				return filepath.SkipDir
			}
			if !fi.IsDir() {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return errs.New(errs.KindIO, "assemble.scanAssets", err)
		}
		sort.Strings(files)

		for _, p := range files {
			rel, err := filepath.Rel(inDir, p)
			if err != nil {
				return errs.New(errs.KindIO, "assemble.scanAssets", err)
			}
			rel = filepath.ToSlash(rel)

			data, err := os.ReadFile(p)
			if err != nil {
				return errs.New(errs.KindIO, "assemble.scanAssets", err)
			}

			base := xutil.Slugify(xutil.FileStem(rel))
			id := xutil.Disambiguate(seenIDs, "asset-"+base)
			href := "assets/" + filepath.Base(rel)

			b.Manifest = append(b.Manifest, book.ManifestItem{
				ID:        id,
				Href:      href,
				MediaType: xutil.GuessMediaType(rel),
			})
			b.Resources[b.OPFDir+"/"+href] = data
		}
	}
	return nil
}

func buildNavTree(entries []*summaryEntry, chapterHrefs map[string]string) []*book.NavPoint {
	var convert func(es []*summaryEntry) []*book.NavPoint
	convert = func(es []*summaryEntry) []*book.NavPoint {
		out := make([]*book.NavPoint, 0, len(es))
		for _, e := range es {
			np := &book.NavPoint{Label: e.label}
			if e.target != "" {
				target := chapterHrefs[e.target]
				if e.fragment != "" {
					target += "#" + e.fragment
				}
				np.Target = target
			}
			np.Children = convert(e.children)
			out = append(out, np)
		}
		return out
	}
	return convert(entries)
}
