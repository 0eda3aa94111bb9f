package extract

import (
	"fmt"
	"regexp"
)

// mdLinkRe matches Markdown inline links, e.g. "[text](02-chapter.md#frag)"
// or "[text](#frag)". Only the target (group 1) is used.
var mdLinkRe = regexp.MustCompile(`\]\(([^)#\s]*(?:#[^)\s]*)?)\)`)

// validateLinks checks every intra-book Markdown link collected during
// rendering against the anchors actually present in their target files,
// returning non-fatal warnings for anything unresolved (spec §4.4 "Link
// validation"). Links to external URLs (scheme present) are skipped.
func validateLinks(chapters []chapterInfo, anchorsByFile map[string]map[string]bool, linksByFile map[string][]linkRef) []string {
	known := map[string]bool{}
	for _, ch := range chapters {
		known[ch.filename] = true
	}

	var warnings []string
	for file, links := range linksByFile {
		for _, l := range links {
			if l.targetFile == "" {
				if l.fragment == "" {
					continue
				}
				if !anchorsByFile[file][l.fragment] {
					warnings = append(warnings, fmt.Sprintf("%s: broken same-file fragment link #%s", file, l.fragment))
				}
				continue
			}
			if isExternalLink(l.targetFile) {
				continue
			}
			if !known[l.targetFile] {
				warnings = append(warnings, fmt.Sprintf("%s: link target %q not found among extracted chapters", file, l.targetFile))
				continue
			}
			if l.fragment != "" && !anchorsByFile[l.targetFile][l.fragment] {
				warnings = append(warnings, fmt.Sprintf("%s: link to %s#%s has no matching anchor", file, l.targetFile, l.fragment))
			}
		}
	}
	return warnings
}

func isExternalLink(target string) bool {
	for i, r := range target {
		switch {
		case r == ':':
			return i > 0
		case r == '/' && i == 0:
			return false
		case (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '+' && r != '-' && r != '.':
			return false
		}
	}
	return false
}
