package extract

import (
	"os"
	"path/filepath"

	"golibri-studio/internal/book"
	"golibri-studio/internal/errs"
	"golibri-studio/internal/xutil"
)

// extractAssets writes every non-chapter resource to its mapped location
// under outDir, per the categorization in buildAssetPathMap.
func extractAssets(b *book.Book, outDir string, pathMap map[string]string) error {
	for href, rel := range pathMap {
		key := xutil.FindResourceKey(b.Resources, b.OPFDir, href)
		if key == "" {
			continue
		}
		data := b.Resources[key]

		dest := filepath.Join(outDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return errs.New(errs.KindIO, "extract.extractAssets", err)
		}
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return errs.New(errs.KindIO, "extract.extractAssets", err)
		}
	}
	return nil
}
