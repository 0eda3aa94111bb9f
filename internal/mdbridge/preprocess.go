// Package mdbridge implements the XHTML<->Markdown bridge used by the
// extractor (C5) and assembler (C6): reference-aware anchor preservation,
// asset-path rewriting, and the two rendering subroutines (spec.md §4.4,
// §4.5). HTML->Markdown uses html-to-markdown/v2; Markdown->XHTML uses
// goldmark with the GFM and frontmatter extensions, the same stack the
// retrieval pack's other ebook-to-Markdown tools (marky, epub-converter)
// converge on.
package mdbridge

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"golibri-studio/internal/xhtml"
)

// ChapterContext carries everything the preprocessing pass needs to know
// about one chapter before handing it to the HTML->Markdown converter.
type ChapterContext struct {
	// SelfHref is this chapter's own manifest href. A src/href value that
	// is not found in PathMap or ChapterMap as written is looked up again
	// after resolving it against SelfHref's directory. Same-file fragment
	// links ("#frag") are recognised by their leading "#".
	SelfHref string
	// PathMap translates asset paths (images, css, fonts), keyed either
	// as written in the chapter or as manifest hrefs, to their location
	// under the extracted directory.
	PathMap map[string]string
	// ChapterMap translates a chapter's href (as written, or as a manifest
	// href) to its extracted Markdown file name, e.g.
	// "chapter1.xhtml" -> "01-intro.md".
	ChapterMap map[string]string
	// ReferencedFragments is the whole-book set R of fragment ids that
	// are the target of at least one href="...#frag" somewhere in the
	// book (spec §4.4 "Reference-aware anchor preservation").
	ReferencedFragments map[string]bool
}

const anchorMarkerPrefix = "\x00GOLIBRI-ANCHOR:"
const anchorMarkerSuffix = "\x00"

var srcHrefAttrRe = regexp.MustCompile(`(?i)\b(src|href)\s*=\s*(["'])([^"']*)(["'])`)

// rewriteAssetAndChapterRefs rewrites src/href attribute values that point
// at known assets or sibling chapters, and leaves everything else (plain
// web links, same-file fragments) untouched.
func rewriteAssetAndChapterRefs(xhtmlSrc string, ctx ChapterContext) string {
	return srcHrefAttrRe.ReplaceAllStringFunc(xhtmlSrc, func(m string) string {
		sub := srcHrefAttrRe.FindStringSubmatch(m)
		attr, quote, value := sub[1], sub[2], sub[3]

		if strings.HasPrefix(value, "#") {
			// Same-chapter fragment-only link: preserved verbatim.
			return m
		}

		if hrefPath, frag, ok := splitFragment(value); ok {
			target, known := ctx.ChapterMap[hrefPath]
			if !known {
				target, known = ctx.ChapterMap[path.Join(path.Dir(ctx.SelfHref), hrefPath)]
			}
			if known {
				newVal := target
				if frag != "" {
					newVal += "#" + frag
				}
				return attr + "=" + quote + newVal + quote
			}
		}

		if mapped, ok := ctx.PathMap[value]; ok {
			return attr + "=" + quote + mapped + quote
		}
		if mapped, ok := ctx.PathMap[path.Join(path.Dir(ctx.SelfHref), value)]; ok {
			return attr + "=" + quote + mapped + quote
		}

		return m
	})
}

func splitFragment(href string) (path, frag string, ok bool) {
	idx := strings.Index(href, "#")
	if idx < 0 {
		return href, "", true
	}
	return href[:idx], href[idx+1:], true
}

var idAttrCapture = regexp.MustCompile(`(?is)<([a-zA-Z0-9]+)((?:\s+[a-zA-Z_:][\w:.-]*\s*=\s*"[^"]*"|\s+[a-zA-Z_:][\w:.-]*\s*=\s*'[^']*')*)\s*(/?)>`)

// preserveReferencedAnchors implements the per-element decision from
// spec §4.4: an id in R gets an anchor placeholder injected right after
// its element's opening tag; otherwise the id is dropped, and an
// otherwise-empty <a id="..."> is removed outright.
func preserveReferencedAnchors(xhtmlSrc string, referenced map[string]bool) string {
	var b strings.Builder
	last := 0
	matches := idAttrCapture.FindAllStringSubmatchIndex(xhtmlSrc, -1)
	for _, m := range matches {
		tagStart, tagEnd := m[0], m[1]
		tagName := xhtmlSrc[m[2]:m[3]]
		attrs := xhtmlSrc[m[4]:m[5]]

		id, hasID := extractID(attrs)
		if !hasID {
			continue
		}

		b.WriteString(xhtmlSrc[last:tagStart])

		cleanedAttrs := stripIDAttr(attrs)
		selfClosing := m[6] != m[7]

		if referenced[id] {
			b.WriteString("<" + tagName + cleanedAttrs)
			if selfClosing {
				b.WriteString("/>")
			} else {
				b.WriteString(">")
			}
			b.WriteString(anchorMarkerPrefix + id + anchorMarkerSuffix)
		} else if tagName == "a" && !selfClosing && isEmptyAnchor(xhtmlSrc, tagEnd) {
			// Drop the whole empty anchor element: skip past its closing
			// "</a>" so neither tag is emitted.
			closeIdx := strings.Index(xhtmlSrc[tagEnd:], "</a>")
			if closeIdx >= 0 {
				last = tagEnd + closeIdx + len("</a>")
				continue
			}
			b.WriteString("<" + tagName + cleanedAttrs + ">")
		} else {
			b.WriteString("<" + tagName + cleanedAttrs)
			if selfClosing {
				b.WriteString("/>")
			} else {
				b.WriteString(">")
			}
		}
		last = tagEnd
	}
	b.WriteString(xhtmlSrc[last:])
	return b.String()
}

var idAttrValueRe = regexp.MustCompile(`(?i)\bid\s*=\s*["']([^"']+)["']`)

func extractID(attrs string) (string, bool) {
	m := idAttrValueRe.FindStringSubmatch(attrs)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func stripIDAttr(attrs string) string {
	return idAttrValueRe.ReplaceAllString(attrs, "")
}

func isEmptyAnchor(xhtmlSrc string, afterOpenTag int) bool {
	closeIdx := strings.Index(xhtmlSrc[afterOpenTag:], "</a>")
	if closeIdx < 0 {
		return false
	}
	inner := xhtmlSrc[afterOpenTag : afterOpenTag+closeIdx]
	return strings.TrimSpace(inner) == ""
}

// restoreAnchorMarkers turns the \x00GOLIBRI-ANCHOR:id\x00 markers left in
// converted Markdown into minimal inline HTML anchors.
func restoreAnchorMarkers(markdown string) string {
	re := regexp.MustCompile(regexp.QuoteMeta(anchorMarkerPrefix) + `([^\x00]+)` + regexp.QuoteMeta(anchorMarkerSuffix))
	return re.ReplaceAllString(markdown, `<a id="$1"></a>`)
}

const footnoteMarkerPrefix = "\x00GOLIBRI-FOOTNOTE:"
const footnoteMarkerSuffix = "\x00"

// footnoteDef is one footnote body collected while scanning a chapter,
// rendered as a Markdown footnote definition once conversion is done.
type footnoteDef struct {
	id   string
	text string
}

var asideElementRe = regexp.MustCompile(`(?is)<aside([^>]*)>(.*?)</aside>`)
var noterefAnchorRe = regexp.MustCompile(`(?is)<a([^>]*)>.*?</a>`)
var noterefHrefRe = regexp.MustCompile(`(?i)\bhref\s*=\s*["']#([^"']+)["']`)

// convertFootnoteMarkers recognizes the EPUB3 noteref/footnote convention
// (spec §4.4 step 1 "Convert footnote markers into Markdown footnote
// syntax where recognizable"): an <a data-epub-type="noteref" href="#ID">
// paired with an <aside data-epub-type="footnote" id="ID">…</aside> is
// replaced with a footnote-marker placeholder and the aside's text is
// collected as a pending footnote definition.
func convertFootnoteMarkers(xhtmlSrc string) (string, []footnoteDef) {
	var defs []footnoteDef

	cleaned := asideElementRe.ReplaceAllStringFunc(xhtmlSrc, func(m string) string {
		sub := asideElementRe.FindStringSubmatch(m)
		attrs, body := sub[1], sub[2]
		if !hasEpubType(attrs, "footnote") {
			return m
		}
		id, ok := extractID(attrs)
		if !ok {
			return m
		}
		defs = append(defs, footnoteDef{id: id, text: strings.TrimSpace(xhtml.StripTags(body))})
		return ""
	})

	cleaned = noterefAnchorRe.ReplaceAllStringFunc(cleaned, func(m string) string {
		sub := noterefAnchorRe.FindStringSubmatch(m)
		attrs := sub[1]
		if !hasEpubType(attrs, "noteref") {
			return m
		}
		hrefm := noterefHrefRe.FindStringSubmatch(attrs)
		if hrefm == nil {
			return m
		}
		return footnoteMarkerPrefix + hrefm[1] + footnoteMarkerSuffix
	})

	return cleaned, defs
}

func hasEpubType(attrs, want string) bool {
	return strings.Contains(attrs, `data-epub-type="`+want+`"`) || strings.Contains(attrs, `data-epub-type='`+want+`'`)
}

// restoreFootnoteMarkers turns the \x00GOLIBRI-FOOTNOTE:id\x00 markers
// left in converted Markdown into footnote references.
func restoreFootnoteMarkers(markdown string) string {
	re := regexp.MustCompile(regexp.QuoteMeta(footnoteMarkerPrefix) + `([^\x00]+)` + regexp.QuoteMeta(footnoteMarkerSuffix))
	return re.ReplaceAllString(markdown, `[^$1]`)
}

var blankRunRe = regexp.MustCompile(`\n{3,}`)

// postprocessMarkdown collapses blank-line runs, trims trailing
// whitespace per line, appends any pending footnote definitions, and
// ensures exactly one trailing newline.
func postprocessMarkdown(md string, footnotes []footnoteDef) string {
	md = restoreAnchorMarkers(md)
	md = restoreFootnoteMarkers(md)
	lines := strings.Split(md, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	md = strings.Join(lines, "\n")
	md = blankRunRe.ReplaceAllString(md, "\n\n")
	md = strings.TrimRight(md, "\n")

	for _, f := range footnotes {
		md += fmt.Sprintf("\n\n[^%s]: %s", f.id, f.text)
	}

	return md + "\n"
}
