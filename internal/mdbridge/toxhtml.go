package mdbridge

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	ghtml "github.com/yuin/goldmark/renderer/html"
	"go.abhg.dev/goldmark/frontmatter"

	"golibri-studio/internal/errs"
)

var sharedGoldmark = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.Footnote, &frontmatter.Extender{}),
	goldmark.WithParserOptions(parser.WithHeadingAttribute()),
	goldmark.WithRendererOptions(ghtml.WithXHTML(), ghtml.WithUnsafe()),
)

// ChapterFrontMatter is the YAML block at the top of every extracted
// chapter file (spec §4.4 "Per-chapter frontmatter").
type ChapterFrontMatter struct {
	Title        string `yaml:"title"`
	OriginalFile string `yaml:"original_file"`
	OriginalID   string `yaml:"original_id"`
	SpineIndex   int    `yaml:"spine_index"`
}

// ParsedChapter is a Markdown chapter file split into its frontmatter and
// the body rendered to an XHTML fragment (no enclosing <html>).
type ParsedChapter struct {
	FrontMatter ChapterFrontMatter
	HasFront    bool
	BodyXHTML   string
	Title       string // frontmatter title, or first "# " heading
}

var h1Re = regexp.MustCompile(`(?m)^#\s+(.+)$`)

// ParseChapterMarkdown strips YAML frontmatter, renders the remaining
// Markdown to an XHTML fragment via goldmark (tables and strikethrough
// from the GFM extension, footnotes from the Footnote extension, `{#id}`
// heading attributes from WithHeadingAttribute), and determines the
// chapter title.
func ParseChapterMarkdown(source []byte) (*ParsedChapter, error) {
	ctx := parser.NewContext()
	var buf bytes.Buffer
	if err := sharedGoldmark.Convert(source, &buf, parser.WithContext(ctx)); err != nil {
		return nil, errs.New(errs.KindXMLParse, "mdbridge.ParseChapterMarkdown", fmt.Errorf("rendering markdown: %w", err))
	}

	out := &ParsedChapter{BodyXHTML: buf.String()}

	if fm := frontmatter.Get(ctx); fm != nil {
		var fmData ChapterFrontMatter
		if err := fm.Decode(&fmData); err == nil {
			out.FrontMatter = fmData
			out.HasFront = true
		}
	}

	if out.FrontMatter.Title != "" {
		out.Title = out.FrontMatter.Title
	} else if m := h1Re.FindSubmatch(source); m != nil {
		out.Title = strings.TrimSpace(string(m[1]))
	}

	return out, nil
}

// WrapXHTMLDocument produces a full XHTML document from a rendered body
// fragment, with the XML declaration, DOCTYPE and namespace attributes
// the spec requires (§4.5 step 3).
func WrapXHTMLDocument(title, bodyXHTML string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")
	b.WriteString(`<!DOCTYPE html>` + "\n")
	b.WriteString(`<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">` + "\n")
	fmt.Fprintf(&b, "<head>\n<title>%s</title>\n<meta charset=\"utf-8\"/>\n</head>\n", escapeText(title))
	b.WriteString("<body>\n")
	b.WriteString(bodyXHTML)
	b.WriteString("\n</body>\n</html>\n")
	return b.String()
}

func escapeText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
