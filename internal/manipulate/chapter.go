package manipulate

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golibri-studio/internal/book"
	"golibri-studio/internal/errs"
	"golibri-studio/internal/mdbridge"
	"golibri-studio/internal/xutil"
)

// AddChapter implements "chapter add": render markdownPath to XHTML,
// derive an id/href from title (or the file stem), and append it to the
// manifest, spine and navigation-tree root, or insert it right after
// afterID when afterID is non-empty (spec §4.6).
func AddChapter(b *book.Book, markdownPath, title, afterID string) error {
	src, err := os.ReadFile(markdownPath)
	if err != nil {
		return errs.New(errs.KindIO, "manipulate.AddChapter", err)
	}

	parsed, err := mdbridge.ParseChapterMarkdown(src)
	if err != nil {
		return err
	}

	chapterTitle := title
	if chapterTitle == "" {
		chapterTitle = parsed.Title
	}
	if chapterTitle == "" {
		chapterTitle = xutil.FileStem(markdownPath)
	}

	seen := map[string]int{}
	for _, m := range b.Manifest {
		seen[xutil.FileStem(m.Href)]++
	}
	base := xutil.Slugify(chapterTitle)
	if base == "" {
		base = "chapter"
	}
	id := "chap-" + xutil.Disambiguate(seen, base)
	href := fmt.Sprintf("text/%s.xhtml", id)

	xhtmlDoc := mdbridge.WrapXHTMLDocument(chapterTitle, parsed.BodyXHTML)

	item := book.ManifestItem{ID: id, Href: href, MediaType: "application/xhtml+xml"}
	spineItem := book.SpineItem{IDRef: id, Linear: true}
	navPoint := &book.NavPoint{Label: chapterTitle, Target: href}

	insertAt := len(b.Spine)
	if afterID != "" {
		idx := spineIndexOf(b, afterID)
		if idx < 0 {
			return notFound("manipulate.AddChapter", "no spine item with id %q", afterID)
		}
		insertAt = idx + 1
	}

	b.Manifest = append(b.Manifest, item)
	b.Spine = insertSpine(b.Spine, insertAt, spineItem)
	b.TOC = insertNavPoint(b.TOC, insertAt, navPoint)
	b.Resources[b.OPFDir+"/"+href] = []byte(xhtmlDoc)

	return nil
}

// RemoveChapter implements "chapter remove": resolve idOrIndex to a spine
// position, then drop it from spine, manifest, resources and the
// navigation tree.
func RemoveChapter(b *book.Book, idOrIndex string) error {
	idx, id, err := resolveChapterRef(b, idOrIndex)
	if err != nil {
		return err
	}
	item, _ := b.ManifestByID(id)

	b.Spine = append(b.Spine[:idx], b.Spine[idx+1:]...)
	b.Manifest = removeManifestByID(b.Manifest, id)
	if key := xutil.FindResourceKey(b.Resources, b.OPFDir, item.Href); key != "" {
		delete(b.Resources, key)
	}
	b.TOC = pruneNavByTarget(b.TOC, item.Href)

	return nil
}

// ReorderChapter implements "chapter reorder": move the spine item at
// from to position to. Both indices must lie in [0, len); out-of-range
// indices fail with InvalidArgument.
func ReorderChapter(b *book.Book, from, to int) error {
	return reorderSpine(b, from, to, "manipulate.ReorderChapter")
}

func resolveChapterRef(b *book.Book, idOrIndex string) (idx int, id string, err error) {
	if n, convErr := strconv.Atoi(idOrIndex); convErr == nil {
		if n < 0 || n >= len(b.Spine) {
			return 0, "", invalidArg("manipulate.resolveChapterRef", "index %d out of range [0,%d)", n, len(b.Spine))
		}
		return n, b.Spine[n].IDRef, nil
	}
	idx = spineIndexOf(b, idOrIndex)
	if idx < 0 {
		return 0, "", notFound("manipulate.resolveChapterRef", "no chapter with id %q", idOrIndex)
	}
	return idx, idOrIndex, nil
}

func spineIndexOf(b *book.Book, id string) int {
	for i, s := range b.Spine {
		if s.IDRef == id {
			return i
		}
	}
	return -1
}

func insertSpine(spine []book.SpineItem, at int, item book.SpineItem) []book.SpineItem {
	if at >= len(spine) {
		return append(spine, item)
	}
	out := make([]book.SpineItem, 0, len(spine)+1)
	out = append(out, spine[:at]...)
	out = append(out, item)
	out = append(out, spine[at:]...)
	return out
}

func insertNavPoint(toc []*book.NavPoint, at int, np *book.NavPoint) []*book.NavPoint {
	if at >= len(toc) {
		return append(toc, np)
	}
	out := make([]*book.NavPoint, 0, len(toc)+1)
	out = append(out, toc[:at]...)
	out = append(out, np)
	out = append(out, toc[at:]...)
	return out
}

func removeManifestByID(items []book.ManifestItem, id string) []book.ManifestItem {
	out := items[:0:0]
	for _, m := range items {
		if m.ID != id {
			out = append(out, m)
		}
	}
	return out
}

// pruneNavByTarget recursively removes any NavPoint whose target's path
// (fragment stripped) equals href.
func pruneNavByTarget(points []*book.NavPoint, href string) []*book.NavPoint {
	out := points[:0:0]
	for _, p := range points {
		target := p.Target
		if idx := strings.IndexByte(target, '#'); idx >= 0 {
			target = target[:idx]
		}
		if target == href {
			continue
		}
		p.Children = pruneNavByTarget(p.Children, href)
		out = append(out, p)
	}
	return out
}
