// Package extract implements C5: projecting a book.Book to the opinionated
// on-disk Markdown-plus-assets layout described in spec.md §4.4.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"golibri-studio/internal/book"
	"golibri-studio/internal/errs"
	"golibri-studio/internal/mdbridge"
	"golibri-studio/internal/xhtml"
	"golibri-studio/internal/xutil"
)

// Report summarizes a completed extraction: non-fatal link-validation
// warnings (spec §4.4 "Link validation").
type Report struct {
	Warnings []string
}

// chapterInfo is everything computed once per spine item before any file
// is written.
type chapterInfo struct {
	spineIndex int
	manifestID string
	href       string // OPF-dir-relative
	resKey     string // Book.Resources key
	label      string // from TOC, if any
	slug       string
	filename   string // "NN-slug.md"
}

// Extract writes b's opinionated Markdown projection to outDir.
func Extract(b *book.Book, outDir string) (*Report, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, errs.New(errs.KindIO, "extract.Extract", err)
	}

	chapters, err := buildChapterInfos(b)
	if err != nil {
		return nil, err
	}

	pathMap := buildAssetPathMap(b)
	chapterMap := buildChapterMap(chapters)
	referenced := globalReferencedFragments(b)

	if err := writeMetadataYAML(b, outDir); err != nil {
		return nil, err
	}

	chaptersDir := filepath.Join(outDir, "chapters")
	if err := os.MkdirAll(chaptersDir, 0o755); err != nil {
		return nil, errs.New(errs.KindIO, "extract.Extract", err)
	}

	anchorsByFile := map[string]map[string]bool{}
	linksByFile := map[string][]linkRef{}

	// Chapter files link to each other from inside chapters/, so the
	// in-chapter rewrite uses bare file names.
	chapterFiles := map[string]string{}
	for _, ch := range chapters {
		chapterFiles[ch.href] = ch.filename
	}

	for _, ch := range chapters {
		md, anchors, links, err := renderChapter(b, ch, pathMap, chapterFiles, referenced)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(filepath.Join(chaptersDir, ch.filename), []byte(md), 0o644); err != nil {
			return nil, errs.New(errs.KindIO, "extract.Extract", err)
		}
		anchorsByFile[ch.filename] = anchors
		linksByFile[ch.filename] = links
	}

	if err := extractAssets(b, outDir, pathMap); err != nil {
		return nil, err
	}

	if err := writeSummary(b, outDir, chapters, chapterMap); err != nil {
		return nil, err
	}

	warnings := validateLinks(chapters, anchorsByFile, linksByFile)
	return &Report{Warnings: warnings}, nil
}

func buildChapterInfos(b *book.Book) ([]chapterInfo, error) {
	seen := map[string]int{}
	out := make([]chapterInfo, 0, len(b.Spine))

	for i, sp := range b.Spine {
		item, ok := b.ManifestByID(sp.IDRef)
		if !ok {
			return nil, errs.Newf(errs.KindInvalidArgument, "extract.buildChapterInfos", "spine idref %q has no manifest entry", sp.IDRef)
		}
		resKey := xutil.FindResourceKey(b.Resources, b.OPFDir, item.Href)
		if resKey == "" {
			return nil, errs.Newf(errs.KindNotFound, "extract.buildChapterInfos", "chapter %q: resource bytes for href %q not found", item.ID, item.Href)
		}

		label := tocLabelFor(b.TOC, item.Href)
		base := xutil.Slugify(label)
		if base == "" {
			base = xutil.Slugify(xutil.FileStem(item.Href))
		}
		if base == "" {
			base = "chapter"
		}
		slug := xutil.Disambiguate(seen, base)

		out = append(out, chapterInfo{
			spineIndex: i,
			manifestID: item.ID,
			href:       item.Href,
			resKey:     resKey,
			label:      label,
			slug:       slug,
			filename:   fmt.Sprintf("%02d-%s.md", i, slug),
		})
	}
	return out, nil
}

func tocLabelFor(points []*book.NavPoint, href string) string {
	var found string
	var walk func(ps []*book.NavPoint)
	walk = func(ps []*book.NavPoint) {
		for _, p := range ps {
			if found != "" {
				return
			}
			target, _, _ := strings.Cut(p.Target, "#")
			if target == href {
				found = p.Label
				return
			}
			walk(p.Children)
		}
	}
	walk(points)
	return found
}

func buildChapterMap(chapters []chapterInfo) map[string]string {
	out := map[string]string{}
	for _, c := range chapters {
		out[c.href] = "chapters/" + c.filename
	}
	return out
}

// buildAssetPathMap maps every non-chapter resource to its extracted
// location under assets/ or styles/.
func buildAssetPathMap(b *book.Book) map[string]string {
	chapterHrefs := map[string]bool{}
	for _, m := range b.Manifest {
		if m.MediaType == "application/xhtml+xml" {
			chapterHrefs[m.Href] = true
		}
	}

	out := map[string]string{}
	for _, m := range b.Manifest {
		if chapterHrefs[m.Href] {
			continue
		}
		cat := xutil.AssetCategory(m.MediaType)
		base := filepath.Base(m.Href)
		switch cat {
		case "image":
			out[m.Href] = "assets/images/" + base
		case "font":
			out[m.Href] = "assets/fonts/" + base
		case "css":
			out[m.Href] = "styles/" + base
		default:
			out[m.Href] = "assets/" + base
		}
	}
	return out
}

func globalReferencedFragments(b *book.Book) map[string]bool {
	refs := map[string]bool{}
	for _, m := range b.Manifest {
		if m.MediaType != "application/xhtml+xml" {
			continue
		}
		key := xutil.FindResourceKey(b.Resources, b.OPFDir, m.Href)
		if key == "" {
			continue
		}
		for id := range xhtml.ReferencedFragments(string(b.Resources[key])) {
			refs[id] = true
		}
	}
	return refs
}

type linkRef struct {
	targetFile string // "" means same-file
	fragment   string
}

func renderChapter(b *book.Book, ch chapterInfo, pathMap, chapterMap map[string]string, referenced map[string]bool) (string, map[string]bool, []linkRef, error) {
	raw := string(b.Resources[ch.resKey])

	ctx := mdbridge.ChapterContext{
		SelfHref:            ch.href,
		PathMap:             pathMap,
		ChapterMap:          chapterMap,
		ReferencedFragments: referenced,
	}
	md, err := mdbridge.ToMarkdown(raw, ctx)
	if err != nil {
		return "", nil, nil, err
	}

	title := ch.label
	if title == "" {
		title = ch.slug
	}

	front, err := yaml.Marshal(map[string]any{
		"title":         title,
		"original_file": ch.href,
		"original_id":   ch.manifestID,
		"spine_index":   ch.spineIndex,
	})
	if err != nil {
		return "", nil, nil, errs.New(errs.KindYAML, "extract.renderChapter", err)
	}

	full := "---\n" + string(front) + "---\n\n" + md

	anchors := map[string]bool{}
	for id := range referenced {
		if strings.Contains(md, `id="`+id+`"`) {
			anchors[id] = true
		}
	}

	links := extractMarkdownLinks(md)

	return full, anchors, links, nil
}

func extractMarkdownLinks(md string) []linkRef {
	var out []linkRef
	for _, m := range mdLinkRe.FindAllStringSubmatchIndex(md, -1) {
		if open := strings.LastIndex(md[:m[0]], "["); open > 0 && md[open-1] == '!' {
			continue // image embed, not a link to a chapter
		}
		target := md[m[2]:m[3]]
		file, frag, _ := strings.Cut(target, "#")
		out = append(out, linkRef{targetFile: file, fragment: frag})
	}
	return out
}
