// Package book holds the single in-memory representation shared by every
// other layer: the Book, its Metadata, manifest, spine and navigation tree,
// plus the invariant checks every reader and writer relies on.
package book

import (
	"fmt"

	"golibri-studio/internal/errs"
	"golibri-studio/internal/xutil"
)

// ManifestItem is one entry in the OPF manifest.
type ManifestItem struct {
	ID         string
	Href       string // container-relative, OPF-dir-relative on the wire
	MediaType  string
	Properties []string // "nav", "cover-image", "scripted", ...
}

// HasProperty reports whether p is set on the item.
func (m ManifestItem) HasProperty(p string) bool {
	for _, x := range m.Properties {
		if x == p {
			return true
		}
	}
	return false
}

// SpineItem is one entry in the reading order.
type SpineItem struct {
	IDRef  string
	Linear bool
}

// NavPoint is one node of a navigation tree (TOC, landmarks or page-list).
type NavPoint struct {
	Label    string
	Target   string // container-relative path, optionally with #fragment
	Children []*NavPoint
}

// Identifier is a Dublin Core dc:identifier with optional scheme.
type Identifier struct {
	Value  string
	Scheme string
}

// Creator is a dc:creator/dc:contributor with an optional role.
type Creator struct {
	Name string
	Role string
}

// Metadata holds the semantic publication metadata.
type Metadata struct {
	Titles      []string
	Creators    []Creator
	Languages   []string
	Identifiers []Identifier
	Publisher   string
	Description string
	Rights      string
	Date        string
	Subjects    []string
	Contributors []Creator
	Custom      map[string]string // arbitrary meta@property -> value
	Modified    string            // dcterms:modified, synthesized on write if empty
}

// Book is the authoritative in-memory representation of an EPUB.
type Book struct {
	Metadata  Metadata
	Manifest  []ManifestItem
	Spine     []SpineItem
	TOC       []*NavPoint
	Landmarks []*NavPoint
	PageList  []*NavPoint
	Resources map[string][]byte // container-relative path -> raw bytes
	Version   string            // "2" or "3" as read; "3.3" for a Book built by assemble

	// OPFDir is the directory containing the package document, e.g.
	// "OEBPS". Manifest hrefs are relative to it; resource keys are full
	// container paths. Always "OEBPS" once a Book has been through Write.
	OPFDir string
}

// New returns an empty Book with initialized maps.
func New() *Book {
	return &Book{
		Metadata:  Metadata{Custom: map[string]string{}},
		Resources: map[string][]byte{},
	}
}

// ManifestByID returns the manifest item with the given id, if any.
func (b *Book) ManifestByID(id string) (ManifestItem, bool) {
	for _, m := range b.Manifest {
		if m.ID == id {
			return m, true
		}
	}
	return ManifestItem{}, false
}

// ManifestByHref returns the manifest item with the given href, if any.
func (b *Book) ManifestByHref(href string) (ManifestItem, bool) {
	for _, m := range b.Manifest {
		if m.Href == href {
			return m, true
		}
	}
	return ManifestItem{}, false
}

// NavItem returns the manifest item carrying the nav property, if any.
func (b *Book) NavItem() (ManifestItem, bool) {
	for _, m := range b.Manifest {
		if m.HasProperty("nav") {
			return m, true
		}
	}
	return ManifestItem{}, false
}

// CoverItem returns the manifest item carrying the cover-image property.
func (b *Book) CoverItem() (ManifestItem, bool) {
	for _, m := range b.Manifest {
		if m.HasProperty("cover-image") {
			return m, true
		}
	}
	return ManifestItem{}, false
}

// Validate checks invariants I1-I4 (readable-book invariants). It collects
// every violation instead of stopping at the first one, matching the
// "book validate" total-reporting contract in spec §4.2/§7.
func (b *Book) Validate() []error {
	var problems []error

	ids := make(map[string]bool, len(b.Manifest))
	for _, m := range b.Manifest {
		ids[m.ID] = true
	}

	// I1: every spine idref resolves to a manifest id.
	for i, s := range b.Spine {
		if !ids[s.IDRef] {
			problems = append(problems, fmt.Errorf("spine item %d: idref %q does not resolve to any manifest item", i, s.IDRef))
		}
	}

	// I2: every manifest href resolves to a resources entry once the OPF
	// directory prefix is accounted for. The nav document and NCX are
	// derived (I6), so they are exempt.
	for _, m := range b.Manifest {
		if m.HasProperty("nav") || m.MediaType == "application/x-dtbncx+xml" {
			continue
		}
		if xutil.FindResourceKey(b.Resources, b.OPFDir, m.Href) == "" {
			problems = append(problems, fmt.Errorf("manifest item %q: href %q has no resource bytes", m.ID, m.Href))
		}
	}

	// I3: at most one manifest item carries the nav property.
	navCount := 0
	for _, m := range b.Manifest {
		if m.HasProperty("nav") {
			navCount++
		}
	}
	if navCount > 1 {
		problems = append(problems, fmt.Errorf("%d manifest items carry the nav property, expected at most 1", navCount))
	}

	// I4: the spine is non-empty.
	if len(b.Spine) == 0 {
		problems = append(problems, fmt.Errorf("spine is empty"))
	}

	// Required metadata (I5, reported not enforced on read).
	if len(b.Metadata.Titles) == 0 {
		problems = append(problems, fmt.Errorf("no title present"))
	}
	if len(b.Metadata.Identifiers) == 0 {
		problems = append(problems, fmt.Errorf("no identifier present"))
	}
	if len(b.Metadata.Languages) == 0 {
		problems = append(problems, fmt.Errorf("no language present"))
	}

	return problems
}

// EnsureWritable synthesizes placeholders for required metadata (I5) ahead
// of a write, so the writer never emits a structurally invalid package.
func (b *Book) EnsureWritable() {
	if len(b.Metadata.Titles) == 0 {
		b.Metadata.Titles = []string{"Untitled"}
	}
	if len(b.Metadata.Identifiers) == 0 {
		b.Metadata.Identifiers = []Identifier{{Value: "urn:uuid:00000000-0000-0000-0000-000000000000", Scheme: "uuid"}}
	}
	if len(b.Metadata.Languages) == 0 {
		b.Metadata.Languages = []string{"en"}
	}
	if len(b.Spine) == 0 {
		// A genuinely empty spine cannot be repaired here; surfaced by the
		// writer as errs.KindInvalidEpub instead of silently emitting a
		// non-conformant package.
	}
}

// RequireNonEmptySpine is the hard-fail check a writer performs right
// before serialization, after EnsureWritable has had a chance to patch
// everything else.
func (b *Book) RequireNonEmptySpine(op string) error {
	if len(b.Spine) == 0 {
		return errs.Newf(errs.KindInvalidEpub, op, "spine is empty, nothing to write")
	}
	return nil
}

var renditionLayouts = map[string]bool{"reflowable": true, "pre-paginated": true}
var renditionOrientations = map[string]bool{"auto": true, "landscape": true, "portrait": true}
var renditionSpreads = map[string]bool{"auto": true, "none": true, "landscape": true, "both": true}

// Warnings reports cosmetic, non-fatal observations that do not affect
// Validate's pass/fail result: unrecognized rendition hints in
// Metadata.Custom (spec §9 Open Question c).
func (b *Book) Warnings() []string {
	var warnings []string
	if v, ok := b.Metadata.Custom["rendition:layout"]; ok && !renditionLayouts[v] {
		warnings = append(warnings, fmt.Sprintf("rendition:layout %q is not one of reflowable/pre-paginated", v))
	}
	if v, ok := b.Metadata.Custom["rendition:orientation"]; ok && !renditionOrientations[v] {
		warnings = append(warnings, fmt.Sprintf("rendition:orientation %q is not one of auto/landscape/portrait", v))
	}
	if v, ok := b.Metadata.Custom["rendition:spread"]; ok && !renditionSpreads[v] {
		warnings = append(warnings, fmt.Sprintf("rendition:spread %q is not one of auto/none/landscape/both", v))
	}
	return warnings
}
