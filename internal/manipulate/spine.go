package manipulate

import (
	"os"

	"gopkg.in/yaml.v3"

	"golibri-studio/internal/book"
	"golibri-studio/internal/errs"
)

// ReorderSpine implements "spine reorder": move the item at from to
// position to. Both indices must lie in [0, len); out-of-range indices
// fail with InvalidArgument.
func ReorderSpine(b *book.Book, from, to int) error {
	return reorderSpine(b, from, to, "manipulate.ReorderSpine")
}

func reorderSpine(b *book.Book, from, to int, op string) error {
	n := len(b.Spine)
	if from < 0 || from >= n {
		return invalidArg(op, "from index %d out of range [0,%d)", from, n)
	}
	if to < 0 || to >= n {
		return invalidArg(op, "to index %d out of range [0,%d)", to, n)
	}
	item := b.Spine[from]
	spine := append(b.Spine[:from:from], b.Spine[from+1:]...)
	spine = insertSpine(spine, to, item)
	b.Spine = spine
	return nil
}

// SetSpine implements "spine set": replace the spine with the ordered
// list of idrefs parsed from the YAML at path. Fails if any idref is
// unknown.
func SetSpine(b *book.Book, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errs.New(errs.KindIO, "manipulate.SetSpine", err)
	}
	var idrefs []string
	if err := yaml.Unmarshal(data, &idrefs); err != nil {
		return errs.New(errs.KindYAML, "manipulate.SetSpine", err)
	}

	for _, id := range idrefs {
		if _, ok := b.ManifestByID(id); !ok {
			return invalidArg("manipulate.SetSpine", "idref %q has no manifest entry", id)
		}
	}

	spine := make([]book.SpineItem, 0, len(idrefs))
	for _, id := range idrefs {
		spine = append(spine, book.SpineItem{IDRef: id, Linear: true})
	}
	b.Spine = spine
	return nil
}
