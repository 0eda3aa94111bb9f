package manipulate

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"golibri-studio/internal/book"
	"golibri-studio/internal/errs"
	"golibri-studio/internal/xhtml"
	"golibri-studio/internal/xutil"
)

// ShowTOC implements "toc show": a pretty tree of the current navigation,
// truncated to maxDepth levels when maxDepth > 0.
func ShowTOC(b *book.Book, maxDepth int) string {
	var sb strings.Builder
	writeTOCTree(&sb, b.TOC, 0, maxDepth)
	return sb.String()
}

func writeTOCTree(sb *strings.Builder, points []*book.NavPoint, depth, maxDepth int) {
	if maxDepth > 0 && depth >= maxDepth {
		return
	}
	for _, p := range points {
		fmt.Fprintf(sb, "%s- %s\n", strings.Repeat("  ", depth), p.Label)
		writeTOCTree(sb, p.Children, depth+1, maxDepth)
	}
}

// SetTOC implements "toc set": parse a nested Markdown link list from
// path and replace the navigation tree. Every link target must resolve to
// a manifest href.
func SetTOC(b *book.Book, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errs.New(errs.KindIO, "manipulate.SetTOC", err)
	}

	entries, err := parseNavList(string(data))
	if err != nil {
		return err
	}

	var validate func(es []*navListEntry) error
	validate = func(es []*navListEntry) error {
		for _, e := range es {
			if e.target != "" {
				target, _, _ := strings.Cut(e.target, "#")
				if _, ok := b.ManifestByHref(target); !ok {
					return invalidArg("manipulate.SetTOC", "link target %q does not resolve to any manifest href", target)
				}
			}
			if err := validate(e.children); err != nil {
				return err
			}
		}
		return nil
	}
	if err := validate(entries); err != nil {
		return err
	}

	b.TOC = toNavPoints(entries)
	return nil
}

// GenerateTOC implements "toc generate": walk the spine in order; for
// each XHTML resource find every heading up to maxDepth and emit a flat
// NavPoint per heading.
func GenerateTOC(b *book.Book, maxDepth int) error {
	if maxDepth <= 0 {
		maxDepth = 3
	}

	var toc []*book.NavPoint
	idSeed := map[string]int{}

	for _, sp := range b.Spine {
		item, ok := b.ManifestByID(sp.IDRef)
		if !ok || item.MediaType != "application/xhtml+xml" {
			continue
		}
		key := xutil.FindResourceKey(b.Resources, b.OPFDir, item.Href)
		if key == "" {
			continue
		}
		src := string(b.Resources[key])
		headings := xhtml.FindHeadings(src, maxDepth)

		ids := make([]string, len(headings))
		for i, h := range headings {
			if h.ID != "" {
				ids[i] = h.ID
				continue
			}
			ids[i] = xutil.Disambiguate(idSeed, "heading")
		}

		for i := len(headings) - 1; i >= 0; i-- {
			if headings[i].ID == "" {
				src = insertHeadingID(src, headings[i], ids[i])
			}
		}

		for i, h := range headings {
			toc = append(toc, &book.NavPoint{Label: h.Text, Target: item.Href + "#" + ids[i]})
		}

		if len(headings) > 0 {
			b.Resources[key] = []byte(src)
		}
	}

	b.TOC = toc
	return nil
}

// insertHeadingID adds an id attribute to the heading's opening tag when
// it has none, so the generated TOC entry has something stable to link
// to.
func insertHeadingID(src string, h xhtml.Heading, id string) string {
	open := src[h.Start:h.End]
	gt := strings.Index(open, ">")
	if gt < 0 {
		return src
	}
	newOpen := open[:gt] + ` id="` + id + `"` + open[gt:]
	return src[:h.Start] + newOpen + src[h.End:]
}

// navListEntry mirrors assemble.summaryEntry but is local to this
// package to keep "toc set" independent of the extraction layout.
type navListEntry struct {
	label    string
	target   string
	children []*navListEntry
}

func toNavPoints(entries []*navListEntry) []*book.NavPoint {
	out := make([]*book.NavPoint, 0, len(entries))
	for _, e := range entries {
		out = append(out, &book.NavPoint{
			Label:    e.label,
			Target:   e.target,
			Children: toNavPoints(e.children),
		})
	}
	return out
}

var navListLineRe = regexp.MustCompile(`^(\s*)[-*]\s+(.*)$`)
var navListLinkRe = regexp.MustCompile(`^\[([^\]]*)\]\(([^)]*)\)$`)

func parseNavList(data string) ([]*navListEntry, error) {
	type frame struct {
		indent int
		list   *[]*navListEntry
	}
	var root []*navListEntry
	stack := []frame{{indent: -1, list: &root}}

	for _, line := range strings.Split(data, "\n") {
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		m := navListLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		indent := len(m[1])
		text := strings.TrimSpace(m[2])

		label := text
		target := ""
		if lm := navListLinkRe.FindStringSubmatch(text); lm != nil {
			label = lm[1]
			target = lm[2]
		}

		for len(stack) > 1 && indent <= stack[len(stack)-1].indent {
			stack = stack[:len(stack)-1]
		}

		entry := &navListEntry{label: label, target: target}
		parent := stack[len(stack)-1].list
		*parent = append(*parent, entry)
		stack = append(stack, frame{indent: indent, list: &entry.children})
	}
	return root, nil
}
