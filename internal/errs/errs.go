// Package errs defines the two-tier error model used across the engine:
// structural errors raised by the container/OPF/navigation layers carry a
// Kind so callers can branch on them; everything above that just wraps with
// context the way the rest of the codebase already does with fmt.Errorf.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a structural failure.
type Kind int

const (
	// KindIO covers filesystem and stream failures.
	KindIO Kind = iota
	// KindInvalidEpub covers violations of the EPUB container contract.
	KindInvalidEpub
	// KindXMLParse covers malformed OPF/nav/NCX/container.xml documents.
	KindXMLParse
	// KindZipFormat covers malformed or non-conforming ZIP archives.
	KindZipFormat
	// KindYAML covers malformed metadata.yml / SUMMARY.md / spine YAML.
	KindYAML
	// KindJSON covers malformed JSON output/input (CLI JSON mode).
	KindJSON
	// KindRegex covers invalid search/replace patterns.
	KindRegex
	// KindInvalidArgument covers bad indices, unknown fields, unknown ids.
	KindInvalidArgument
	// KindNotFound covers chapter/asset/resource lookups that fail.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindInvalidEpub:
		return "invalid_epub"
	case KindXMLParse:
		return "xml_parse"
	case KindZipFormat:
		return "zip_format"
	case KindYAML:
		return "yaml"
	case KindJSON:
		return "json"
	case KindRegex:
		return "regex"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// EpubError is the tagged error type produced by the container, OPF and
// navigation layers. Higher layers attach additional context with
// fmt.Errorf("...: %w", err) and never need their own Kind.
type EpubError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *EpubError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *EpubError) Unwrap() error { return e.Err }

// New builds a tagged structural error.
func New(kind Kind, op string, err error) *EpubError {
	return &EpubError{Kind: kind, Op: op, Err: err}
}

// Newf builds a tagged structural error from a format string.
func Newf(kind Kind, op, format string, args ...any) *EpubError {
	return &EpubError{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Is reports whether err (or any error it wraps) is an EpubError of kind k.
func Is(err error, k Kind) bool {
	var ee *EpubError
	if errors.As(err, &ee) {
		return ee.Kind == k
	}
	return false
}
