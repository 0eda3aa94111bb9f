// Package xutil gathers the small pieces of logic that both the extractor
// (C5) and the manipulator (C7) need identically: OPF-directory detection,
// resource-key resolution, ISO-8601 formatting and slugification. Design
// Notes in spec.md call out that these functions drift if duplicated, so
// they live here once.
package xutil

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// commonOPFDirs are the OPF-directory names seen in the wild, tried in
// order after the exact detected directory fails to resolve an href.
var commonOPFDirs = []string{"OEBPS", "OPS", "EPUB", "content", ""}

// OPFDir returns the parent directory of a container-relative OPF path,
// e.g. "OEBPS" for "OEBPS/content.opf", or "" if the OPF sits at the root.
func OPFDir(opfPath string) string {
	idx := strings.LastIndex(opfPath, "/")
	if idx < 0 {
		return ""
	}
	return opfPath[:idx]
}

// FindResourceKey resolves a manifest href (as read from the OPF) to the
// key under which its bytes are stored in Book.Resources. It tries, in
// order: "{opfDir}/{href}", "{href}", then each common OPF-directory
// prefix joined to href. Returns "" if nothing matches.
func FindResourceKey(resources map[string][]byte, opfDir, href string) string {
	href = strings.TrimPrefix(href, "./")

	candidates := make([]string, 0, 2+len(commonOPFDirs))
	if opfDir != "" {
		candidates = append(candidates, opfDir+"/"+href)
	}
	candidates = append(candidates, href)
	for _, d := range commonOPFDirs {
		if d == "" {
			continue
		}
		candidates = append(candidates, d+"/"+href)
	}

	for _, c := range candidates {
		c = cleanPath(c)
		if _, ok := resources[c]; ok {
			return c
		}
	}
	return ""
}

// cleanPath collapses "//" and leading "./" without pulling in path/filepath
// (which would normalize to OS separators).
func cleanPath(p string) string {
	p = strings.ReplaceAll(p, "//", "/")
	return strings.TrimPrefix(p, "./")
}

// ISO8601Now formats the current instant the way dcterms:modified requires:
// UTC, seconds precision, Z suffix.
func ISO8601Now() string {
	return ISO8601Format(time.Now())
}

// ISO8601Format formats t the way dcterms:modified requires.
func ISO8601Format(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

var (
	nonAlnum  = regexp.MustCompile(`[^a-z0-9]+`)
	multiDash = regexp.MustCompile(`-+`)
)

// Slugify lowercases s, replaces runs of non-alphanumerics with a single
// hyphen, and trims leading/trailing hyphens.
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = nonAlnum.ReplaceAllString(s, "-")
	s = multiDash.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Disambiguate returns name, or name suffixed with "-2", "-3", ... if name
// is already present in seen. seen counts uses of the base name: only
// seen[name] is incremented, never the suffixed form returned.
func Disambiguate(seen map[string]int, name string) string {
	n := seen[name]
	seen[name]++
	if n == 0 {
		return name
	}
	return name + "-" + strconv.Itoa(n+1)
}

// FileStem returns the base name of a path without its extension.
func FileStem(path string) string {
	base := path
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		base = base[idx+1:]
	}
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}
	return base
}

// ExtOf returns the lowercase extension of path, including the leading dot,
// or "" if there is none.
func ExtOf(path string) string {
	base := path
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		base = base[idx+1:]
	}
	idx := strings.LastIndex(base, ".")
	if idx < 0 {
		return ""
	}
	return strings.ToLower(base[idx:])
}

// GuessMediaType infers a media type from a file extension. Images, fonts,
// CSS and common document types are covered; unknown extensions get
// "application/octet-stream".
func GuessMediaType(path string) string {
	switch ExtOf(path) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".svg":
		return "image/svg+xml"
	case ".webp":
		return "image/webp"
	case ".ttf":
		return "font/ttf"
	case ".otf":
		return "font/otf"
	case ".woff":
		return "font/woff"
	case ".woff2":
		return "font/woff2"
	case ".css":
		return "text/css"
	case ".xhtml", ".html", ".htm":
		return "application/xhtml+xml"
	case ".ncx":
		return "application/x-dtbncx+xml"
	case ".js":
		return "text/javascript"
	case ".mp3":
		return "audio/mpeg"
	case ".m4a":
		return "audio/mp4"
	case ".opus":
		return "audio/ogg"
	default:
		return "application/octet-stream"
	}
}

// AssetCategory buckets a media type into one of "image", "font", "css",
// "audio", or "other", for asset list filtering and extract-all layout.
func AssetCategory(mediaType string) string {
	switch {
	case strings.HasPrefix(mediaType, "image/"):
		return "image"
	case strings.HasPrefix(mediaType, "font/"), mediaType == "application/vnd.ms-opentype":
		return "font"
	case mediaType == "text/css":
		return "css"
	case strings.HasPrefix(mediaType, "audio/"):
		return "audio"
	default:
		return "other"
	}
}
