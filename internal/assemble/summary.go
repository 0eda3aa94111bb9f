package assemble

import (
	"bufio"
	"os"
	"regexp"
	"strings"

	"golibri-studio/internal/errs"
)

// summaryEntry is one parsed line of SUMMARY.md: a label, and, if the line
// carried a link, the link's file target and optional fragment.
type summaryEntry struct {
	label    string
	target   string // chapter-relative path, "" if this entry has no link
	fragment string
	children []*summaryEntry
}

var summaryLineRe = regexp.MustCompile(`^(\s*)[-*]\s+(.*)$`)
var summaryLinkRe = regexp.MustCompile(`^\[([^\]]*)\]\(([^)]*)\)$`)

// parseSummary reads SUMMARY.md as a nested Markdown link list (spec §4.5
// step 2, grammar in spec §6). A leading "# Summary" header, if present, is
// ignored. Indentation (any run of leading whitespace) defines nesting;
// each additional indent level below the shallowest seen opens a new
// child list.
func parseSummary(path string) ([]*summaryEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.New(errs.KindIO, "assemble.parseSummary", err)
	}
	defer f.Close()

	type stackFrame struct {
		indent int
		list   *[]*summaryEntry
	}

	var root []*summaryEntry
	stack := []stackFrame{{indent: -1, list: &root}}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		m := summaryLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		indent := len(m[1])
		label, target, fragment := parseSummaryItemText(m[2])

		for len(stack) > 1 && indent <= stack[len(stack)-1].indent {
			stack = stack[:len(stack)-1]
		}

		entry := &summaryEntry{label: label, target: target, fragment: fragment}
		parent := stack[len(stack)-1].list
		*parent = append(*parent, entry)
		stack = append(stack, stackFrame{indent: indent, list: &entry.children})
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.New(errs.KindIO, "assemble.parseSummary", err)
	}
	return root, nil
}

func parseSummaryItemText(s string) (label, target, fragment string) {
	s = strings.TrimSpace(s)
	m := summaryLinkRe.FindStringSubmatch(s)
	if m == nil {
		return s, "", ""
	}
	label = m[1]
	link := m[2]
	target, fragment, _ = strings.Cut(link, "#")
	return label, target, fragment
}
