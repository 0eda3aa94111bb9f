package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golibri-studio/internal/book"
	"golibri-studio/internal/errs"
)

// writeSummary renders SUMMARY.md: a nested list mirroring the navigation
// tree with links into chapters/, followed by any spine chapters that the
// TOC never references, appended at the root level in spine order
// (spec §4.4 "SUMMARY.md").
func writeSummary(b *book.Book, outDir string, chapters []chapterInfo, chapterMap map[string]string) error {
	var sb strings.Builder
	sb.WriteString("# Summary\n\n")

	linked := map[string]bool{}
	writeSummaryTree(&sb, b.TOC, 0, chapterMap, linked)

	for _, ch := range chapters {
		if linked[ch.href] {
			continue
		}
		fmt.Fprintf(&sb, "- [%s](%s)\n", summaryLabel(ch), chapterMap[ch.href])
	}

	if err := os.WriteFile(filepath.Join(outDir, "SUMMARY.md"), []byte(sb.String()), 0o644); err != nil {
		return errs.New(errs.KindIO, "extract.writeSummary", err)
	}
	return nil
}

func summaryLabel(ch chapterInfo) string {
	if ch.label != "" {
		return ch.label
	}
	return ch.slug
}

func writeSummaryTree(sb *strings.Builder, points []*book.NavPoint, depth int, chapterMap map[string]string, linked map[string]bool) {
	indent := strings.Repeat("  ", depth)
	for _, p := range points {
		target, frag, _ := strings.Cut(p.Target, "#")
		link, known := chapterMap[target]
		if known {
			linked[target] = true
			if frag != "" {
				link += "#" + frag
			}
			fmt.Fprintf(sb, "%s- [%s](%s)\n", indent, p.Label, link)
		} else {
			fmt.Fprintf(sb, "%s- %s\n", indent, p.Label)
		}
		writeSummaryTree(sb, p.Children, depth+1, chapterMap, linked)
	}
}
