// Package xhtml holds the character-level XHTML utilities shared by the
// extractor, assembler and manipulator: tag stripping for search/plain-text
// views, the text-node-safe search/replace used by "content replace", and
// heading/anchor scanning used by "toc generate" and anchor preservation.
//
// Design note (spec.md §9, Open Question a): replace operates with a
// character-level scan of tag boundaries, not a DOM walk, the same
// simplification the source makes. It does not handle "<" appearing inside
// an attribute value. This is deliberate: upgrading to a full parser would
// mean re-serializing every content document on every edit, which risks
// altering markup the user did not ask to change.
package xhtml

import (
	"regexp"
	"strings"
)

var tagRe = regexp.MustCompile(`(?s)<[^>]*>`)

// StripTags removes every "<...>" region from s and collapses the
// remaining whitespace, producing a plain-text view suitable for search
// and validation summaries.
func StripTags(s string) string {
	out := tagRe.ReplaceAllString(s, " ")
	return collapseSpace(out)
}

func collapseSpace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

// textSpan is a [start,end) byte range of S lying strictly between a ">"
// and the next "<" (or document start/end).
type textSpan struct{ start, end int }

// textSpans walks s once and returns every text-node span: substrings that
// are not inside a "<...>" tag. This is the same character-level approach
// the source takes; it is not attribute-value aware.
func textSpans(s string) []textSpan {
	var spans []textSpan
	inTag := false
	spanStart := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			if !inTag {
				if i > spanStart {
					spans = append(spans, textSpan{spanStart, i})
				}
				inTag = true
			}
		case '>':
			if inTag {
				inTag = false
				spanStart = i + 1
			}
		}
	}
	if !inTag && spanStart < len(s) {
		spans = append(spans, textSpan{spanStart, len(s)})
	}
	return spans
}

// ReplaceResult reports what a content replace would do (or did).
type ReplaceResult struct {
	Count   int
	Output  string
	Preview []string // up to a handful of "before -> after" snippets
}

// ReplaceTextNodes replaces every occurrence of pattern with replacement
// that lies strictly inside a text node (never inside a tag name,
// attribute name, or attribute value). When regex is nil, pattern is
// matched literally.
func ReplaceTextNodes(s, pattern, replacement string, regex *regexp.Regexp) ReplaceResult {
	spans := textSpans(s)
	var b strings.Builder
	result := ReplaceResult{}

	last := 0
	for _, sp := range spans {
		b.WriteString(s[last:sp.start])
		segment := s[sp.start:sp.end]
		replaced, count, previews := replaceInSegment(segment, pattern, replacement, regex)
		b.WriteString(replaced)
		result.Count += count
		result.Preview = append(result.Preview, previews...)
		last = sp.end
	}
	b.WriteString(s[last:])
	result.Output = b.String()
	return result
}

func replaceInSegment(segment, pattern, replacement string, regex *regexp.Regexp) (string, int, []string) {
	if regex != nil {
		matches := regex.FindAllStringIndex(segment, -1)
		if len(matches) == 0 {
			return segment, 0, nil
		}
		var previews []string
		for _, m := range matches {
			if len(previews) < 3 {
				previews = append(previews, segment[m[0]:m[1]]+" -> "+regex.ReplaceAllString(segment[m[0]:m[1]], replacement))
			}
		}
		return regex.ReplaceAllString(segment, replacement), len(matches), previews
	}

	count := strings.Count(segment, pattern)
	if count == 0 {
		return segment, 0, nil
	}
	var previews []string
	if count > 0 {
		previews = append(previews, pattern+" -> "+replacement)
	}
	return strings.ReplaceAll(segment, pattern, replacement), count, previews
}

// Heading is one <hN>...</hN> element found in a content document.
type Heading struct {
	Level int
	ID    string // existing id attribute, if any
	Text  string // tag-stripped inner text
	Start int    // byte offset of the opening "<" in the source
	End   int    // byte offset just past the closing ">"
}

var headingRe = regexp.MustCompile(`(?is)<h([1-6])([^>]*)>(.*?)</h[1-6]>`)
var idAttrRe = regexp.MustCompile(`(?i)\bid\s*=\s*["']([^"']+)["']`)

// FindHeadings returns every heading up to maxDepth (inclusive), in
// document order.
func FindHeadings(xhtmlSrc string, maxDepth int) []Heading {
	var out []Heading
	for _, m := range headingRe.FindAllStringSubmatchIndex(xhtmlSrc, -1) {
		level := int(xhtmlSrc[m[2]] - '0')
		if level > maxDepth {
			continue
		}
		attrs := xhtmlSrc[m[4]:m[5]]
		inner := xhtmlSrc[m[6]:m[7]]
		id := ""
		if am := idAttrRe.FindStringSubmatch(attrs); am != nil {
			id = am[1]
		}
		out = append(out, Heading{
			Level: level,
			ID:    id,
			Text:  StripTags(inner),
			Start: m[0],
			End:   m[1],
		})
	}
	return out
}

// RestructureHeadings rewrites every <hN> (and closing </hN>) tag in
// xhtmlSrc according to mapping (oldLevel -> newLevel). Only the tag name
// changes; attributes and content are untouched.
func RestructureHeadings(xhtmlSrc string, mapping map[int]int) string {
	return headingRe.ReplaceAllStringFunc(xhtmlSrc, func(match string) string {
		sub := headingRe.FindStringSubmatch(match)
		level := int(sub[1][0] - '0')
		newLevel, ok := mapping[level]
		if !ok {
			return match
		}
		attrs := sub[2]
		inner := sub[3]
		return "<h" + itoa(newLevel) + attrs + ">" + inner + "</h" + itoa(newLevel) + ">"
	})
}

func itoa(n int) string { return string(rune('0' + n)) }

var hrefFragRe = regexp.MustCompile(`(?i)href\s*=\s*["']([^"'#]*)#([^"']+)["']`)

// ReferencedFragments scans xhtmlSrc for every href="...#frag" (including
// same-file "#frag" links) and returns the set of fragment ids referenced.
func ReferencedFragments(xhtmlSrc string) map[string]bool {
	out := map[string]bool{}
	for _, m := range hrefFragRe.FindAllStringSubmatch(xhtmlSrc, -1) {
		out[m[2]] = true
	}
	return out
}

var idElemRe = regexp.MustCompile(`(?i)\sid\s*=\s*["']([^"']+)["']`)

// IDsPresent returns every id attribute value appearing anywhere in
// xhtmlSrc, in document order (duplicates included).
func IDsPresent(xhtmlSrc string) []string {
	var out []string
	for _, m := range idElemRe.FindAllStringSubmatch(xhtmlSrc, -1) {
		out = append(out, m[1])
	}
	return out
}

var xmlDeclRe = regexp.MustCompile(`(?is)^\s*<\?xml[^>]*\?>`)
var doctypeRe = regexp.MustCompile(`(?is)<!DOCTYPE[^>]*>`)

// StripPreamble removes a leading XML declaration and any DOCTYPE.
func StripPreamble(s string) string {
	s = xmlDeclRe.ReplaceAllString(s, "")
	s = doctypeRe.ReplaceAllString(s, "")
	return strings.TrimLeft(s, "\r\n\t ")
}

var epubPrefixRe = regexp.MustCompile(`(?i)\bepub:type\s*=`)

// NormalizeEpubNamespace rewrites epub:type attributes to a plain data
// attribute so the document survives a standard HTML parse; the value is
// preserved.
func NormalizeEpubNamespace(s string) string {
	return epubPrefixRe.ReplaceAllString(s, "data-epub-type=")
}
