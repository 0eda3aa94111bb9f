// Package manipulate implements C7: every operation that mutates a
// book.Book, plus the modify_epub read-modify-write helper that is the
// sole write path for edits (spec.md §4.6).
package manipulate

import (
	"golibri-studio/internal/book"
	"golibri-studio/internal/bookio"
	"golibri-studio/internal/errs"
)

// Modify opens the EPUB at path, runs f against the resulting Book, and
// writes the result back atomically. It is the only way edits reach disk:
// every CLI mutator and every exported function in this package that takes
// a path (rather than a *book.Book) is built on top of it, which is what
// guarantees the atomicity and round-trip consistency spec.md requires of
// every mutator.
func Modify(path string, f func(b *book.Book) error) error {
	b, err := bookio.Read(path)
	if err != nil {
		return err
	}
	if err := f(b); err != nil {
		return err
	}
	return bookio.Write(b, path)
}

// invalidArg is a small constructor shared by every operation in this
// package for the InvalidArgument-kind errors the spec calls for.
func invalidArg(op, format string, args ...any) error {
	return errs.Newf(errs.KindInvalidArgument, op, format, args...)
}

func notFound(op, format string, args ...any) error {
	return errs.Newf(errs.KindNotFound, op, format, args...)
}
