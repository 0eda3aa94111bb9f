package manipulate

import (
	"regexp"
	"strings"

	"golibri-studio/internal/book"
	"golibri-studio/internal/errs"
	"golibri-studio/internal/xhtml"
	"golibri-studio/internal/xutil"
)

// SearchMatch is one line matching a "content search" pattern.
type SearchMatch struct {
	ChapterID string
	Href      string
	Line      int
	Column    int
	Snippet   string
}

// Search implements "content search": iterate chapters (optionally
// filtered to chapterIDs), strip tags to plain text, and match
// line-by-line.
func Search(b *book.Book, pattern string, useRegex bool, chapterIDs []string) ([]SearchMatch, error) {
	var re *regexp.Regexp
	if useRegex {
		var err error
		re, err = regexp.Compile(pattern)
		if err != nil {
			return nil, errs.New(errs.KindRegex, "manipulate.Search", err)
		}
	}

	filter := toSet(chapterIDs)
	var matches []SearchMatch

	for _, sp := range b.Spine {
		if len(filter) > 0 && !filter[sp.IDRef] {
			continue
		}
		item, ok := b.ManifestByID(sp.IDRef)
		if !ok || item.MediaType != "application/xhtml+xml" {
			continue
		}
		key := xutil.FindResourceKey(b.Resources, b.OPFDir, item.Href)
		if key == "" {
			continue
		}
		plain := xhtml.StripTags(string(b.Resources[key]))

		for lineNo, line := range strings.Split(plain, "\n") {
			var col int
			var hit bool
			if re != nil {
				if loc := re.FindStringIndex(line); loc != nil {
					col, hit = loc[0], true
				}
			} else if idx := strings.Index(line, pattern); idx >= 0 {
				col, hit = idx, true
			}
			if hit {
				matches = append(matches, SearchMatch{
					ChapterID: item.ID,
					Href:      item.Href,
					Line:      lineNo + 1,
					Column:    col + 1,
					Snippet:   strings.TrimSpace(line),
				})
			}
		}
	}
	return matches, nil
}

// ReplaceResult aggregates the per-chapter outcome of a "content replace".
type ReplaceResult struct {
	ChapterID string
	Href      string
	Count     int
	Preview   []string
}

// Replace implements "content replace": rewrite text nodes only, across
// chapters (optionally filtered). With dryRun, resources are left
// untouched and only counts/previews are returned.
func Replace(b *book.Book, pattern, replacement string, useRegex, dryRun bool, chapterIDs []string) ([]ReplaceResult, error) {
	var re *regexp.Regexp
	if useRegex {
		var err error
		re, err = regexp.Compile(pattern)
		if err != nil {
			return nil, errs.New(errs.KindRegex, "manipulate.Replace", err)
		}
	}

	filter := toSet(chapterIDs)
	var results []ReplaceResult

	for _, sp := range b.Spine {
		if len(filter) > 0 && !filter[sp.IDRef] {
			continue
		}
		item, ok := b.ManifestByID(sp.IDRef)
		if !ok || item.MediaType != "application/xhtml+xml" {
			continue
		}
		key := xutil.FindResourceKey(b.Resources, b.OPFDir, item.Href)
		if key == "" {
			continue
		}

		res := xhtml.ReplaceTextNodes(string(b.Resources[key]), pattern, replacement, re)
		if res.Count == 0 {
			continue
		}
		results = append(results, ReplaceResult{ChapterID: item.ID, Href: item.Href, Count: res.Count, Preview: res.Preview})
		if !dryRun {
			b.Resources[key] = []byte(res.Output)
		}
	}
	return results, nil
}

// HeadingEntry is one heading reported by "content headings".
type HeadingEntry struct {
	Label     string
	Level     int
	ChapterID string
}

// Headings implements "content headings": list every heading per chapter,
// and, when mapping is non-empty, restructure every <hN> tag across every
// chapter according to mapping (oldLevel -> newLevel). Mappings outside
// [1,6] fail with InvalidArgument.
func Headings(b *book.Book, mapping map[int]int) ([]HeadingEntry, error) {
	for from, to := range mapping {
		if from < 1 || from > 6 || to < 1 || to > 6 {
			return nil, invalidArg("manipulate.Headings", "heading level mapping %d->%d out of range [1,6]", from, to)
		}
	}

	var out []HeadingEntry
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

		for _, h := range xhtml.FindHeadings(src, 6) {
			out = append(out, HeadingEntry{Label: h.Text, Level: h.Level, ChapterID: item.ID})
		}

		if len(mapping) > 0 {
			b.Resources[key] = []byte(xhtml.RestructureHeadings(src, mapping))
		}
	}
	return out, nil
}

func toSet(ids []string) map[string]bool {
	if len(ids) == 0 {
		return nil
	}
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}

