package manipulate

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golibri-studio/internal/book"
	"golibri-studio/internal/errs"
	"golibri-studio/internal/xutil"
)

// AssetEntry is one manifest item reported by "asset list".
type AssetEntry struct {
	ID        string
	Href      string
	MediaType string
	Category  string
}

// ListAssets implements "asset list": enumerate manifest items,
// optionally filtering by broad category (image/css/font/audio).
func ListAssets(b *book.Book, filter string) []AssetEntry {
	var out []AssetEntry
	for _, m := range b.Manifest {
		cat := xutil.AssetCategory(m.MediaType)
		if filter != "" && cat != filter {
			continue
		}
		out = append(out, AssetEntry{ID: m.ID, Href: m.Href, MediaType: m.MediaType, Category: cat})
	}
	return out
}

// ExtractAsset implements "asset extract": write the bytes of a single
// asset (by manifest href) to outPath, or to w if outPath is empty.
func ExtractAsset(b *book.Book, href, outPath string, w io.Writer) error {
	key := xutil.FindResourceKey(b.Resources, b.OPFDir, href)
	if key == "" {
		return notFound("manipulate.ExtractAsset", "no resource for href %q", href)
	}
	data := b.Resources[key]

	if outPath == "" {
		if _, err := w.Write(data); err != nil {
			return errs.New(errs.KindIO, "manipulate.ExtractAsset", err)
		}
		return nil
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return errs.New(errs.KindIO, "manipulate.ExtractAsset", err)
	}
	return nil
}

// ExtractAllAssets implements "asset extract-all": categorize and write
// every non-chapter resource under assets/images, assets/fonts, styles/
// within dir.
func ExtractAllAssets(b *book.Book, dir string) error {
	for _, m := range b.Manifest {
		if m.MediaType == "application/xhtml+xml" {
			continue
		}
		key := xutil.FindResourceKey(b.Resources, b.OPFDir, m.Href)
		if key == "" {
			continue
		}
		var sub string
		switch xutil.AssetCategory(m.MediaType) {
		case "image":
			sub = "assets/images"
		case "font":
			sub = "assets/fonts"
		case "css":
			sub = "styles"
		default:
			sub = "assets"
		}
		dest := filepath.Join(dir, filepath.FromSlash(sub), filepath.Base(m.Href))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return errs.New(errs.KindIO, "manipulate.ExtractAllAssets", err)
		}
		if err := os.WriteFile(dest, b.Resources[key], 0o644); err != nil {
			return errs.New(errs.KindIO, "manipulate.ExtractAllAssets", err)
		}
	}
	return nil
}

// AddAsset implements "asset add": read file's bytes, infer media type by
// extension (overridable), assign a unique manifest id, and compute a
// container-relative href under the OPF dir.
func AddAsset(b *book.Book, file, mediaTypeOverride string) (book.ManifestItem, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return book.ManifestItem{}, errs.New(errs.KindIO, "manipulate.AddAsset", err)
	}

	mediaType := mediaTypeOverride
	if mediaType == "" {
		mediaType = xutil.GuessMediaType(file)
	}

	seen := map[string]int{}
	for _, m := range b.Manifest {
		seen[m.ID]++
	}
	base := xutil.Slugify(xutil.FileStem(file))
	if base == "" {
		base = "asset"
	}
	id := xutil.Disambiguate(seen, "asset-"+base)
	href := "assets/" + filepath.Base(file)

	item := book.ManifestItem{ID: id, Href: href, MediaType: mediaType}
	b.Manifest = append(b.Manifest, item)
	b.Resources[b.OPFDir+"/"+href] = data

	return item, nil
}

// CoverGet implements "asset cover get": return the href and bytes of the
// manifest item carrying the cover-image property, a thin convenience
// wrapper over the general asset API (§4.6 "Asset management").
func CoverGet(b *book.Book) (string, []byte, error) {
	item, ok := b.CoverItem()
	if !ok {
		return "", nil, notFound("manipulate.CoverGet", "no manifest item carries the cover-image property")
	}
	key := xutil.FindResourceKey(b.Resources, b.OPFDir, item.Href)
	if key == "" {
		return "", nil, notFound("manipulate.CoverGet", "cover item %q has no resource bytes", item.Href)
	}
	return item.Href, b.Resources[key], nil
}

// CoverSet implements "asset cover set": read file's bytes, add a new
// manifest item for it (an existing item for the same file is not
// reused), mark it with the cover-image property, and
// clear that property from whatever manifest item previously carried it.
func CoverSet(b *book.Book, file, mediaTypeOverride string) (book.ManifestItem, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return book.ManifestItem{}, errs.New(errs.KindIO, "manipulate.CoverSet", err)
	}

	mediaType := mediaTypeOverride
	if mediaType == "" {
		mediaType = xutil.GuessMediaType(file)
	}

	for i := range b.Manifest {
		b.Manifest[i].Properties = removeProperty(b.Manifest[i].Properties, "cover-image")
	}

	seen := map[string]int{}
	for _, m := range b.Manifest {
		seen[m.ID]++
	}
	base := xutil.Slugify(xutil.FileStem(file))
	if base == "" {
		base = "cover"
	}
	id := xutil.Disambiguate(seen, "cover-"+base)
	href := "assets/" + filepath.Base(file)

	item := book.ManifestItem{ID: id, Href: href, MediaType: mediaType, Properties: []string{"cover-image"}}
	b.Manifest = append(b.Manifest, item)
	b.Resources[b.OPFDir+"/"+href] = data

	return item, nil
}

func removeProperty(props []string, p string) []string {
	out := props[:0:0]
	for _, x := range props {
		if x != p {
			out = append(out, x)
		}
	}
	return out
}

// RemoveAsset implements "asset remove": remove href from manifest and
// resources, scanning every XHTML resource for references and returning a
// non-fatal list of hits (the caller is expected to print these as
// warnings rather than fail the operation).
func RemoveAsset(b *book.Book, href string) ([]string, error) {
	item, ok := b.ManifestByHref(href)
	if !ok {
		return nil, notFound("manipulate.RemoveAsset", "no manifest item with href %q", href)
	}

	var warnings []string
	base := filepath.Base(href)
	for _, m := range b.Manifest {
		if m.MediaType != "application/xhtml+xml" {
			continue
		}
		key := xutil.FindResourceKey(b.Resources, b.OPFDir, m.Href)
		if key == "" {
			continue
		}
		if strings.Contains(string(b.Resources[key]), base) {
			warnings = append(warnings, fmt.Sprintf("%s still references %s", m.Href, href))
		}
	}

	b.Manifest = removeManifestByID(b.Manifest, item.ID)
	if key := xutil.FindResourceKey(b.Resources, b.OPFDir, href); key != "" {
		delete(b.Resources, key)
	}

	return warnings, nil
}
