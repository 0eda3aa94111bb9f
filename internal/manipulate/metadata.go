package manipulate

import (
	"os"

	"gopkg.in/yaml.v3"

	"golibri-studio/internal/book"
	"golibri-studio/internal/errs"
)

// SetMetadata implements "metadata set": well-known fields replace the
// first entry (or push if the list is empty); subject always appends;
// anything else lands in Metadata.Custom (spec §4.6).
func SetMetadata(b *book.Book, field, value string) error {
	switch field {
	case "title":
		b.Metadata.Titles = replaceFirst(b.Metadata.Titles, value)
	case "creator":
		b.Metadata.Creators = replaceFirstCreator(b.Metadata.Creators, value)
	case "language":
		b.Metadata.Languages = replaceFirst(b.Metadata.Languages, value)
	case "publisher":
		b.Metadata.Publisher = value
	case "description":
		b.Metadata.Description = value
	case "rights":
		b.Metadata.Rights = value
	case "identifier":
		b.Metadata.Identifiers = replaceFirstIdentifier(b.Metadata.Identifiers, value)
	case "date":
		b.Metadata.Date = value
	case "subject":
		b.Metadata.Subjects = append(b.Metadata.Subjects, value)
	default:
		if b.Metadata.Custom == nil {
			b.Metadata.Custom = map[string]string{}
		}
		b.Metadata.Custom[field] = value
	}
	return nil
}

// RemoveMetadata implements "metadata remove": clears the list (or the
// custom key) for field.
func RemoveMetadata(b *book.Book, field string) error {
	switch field {
	case "title":
		b.Metadata.Titles = nil
	case "creator":
		b.Metadata.Creators = nil
	case "language":
		b.Metadata.Languages = nil
	case "publisher":
		b.Metadata.Publisher = ""
	case "description":
		b.Metadata.Description = ""
	case "rights":
		b.Metadata.Rights = ""
	case "identifier":
		b.Metadata.Identifiers = nil
	case "date":
		b.Metadata.Date = ""
	case "subject":
		b.Metadata.Subjects = nil
	default:
		delete(b.Metadata.Custom, field)
	}
	return nil
}

func replaceFirst(list []string, value string) []string {
	if len(list) == 0 {
		return []string{value}
	}
	out := append([]string(nil), list...)
	out[0] = value
	return out
}

func replaceFirstCreator(list []book.Creator, name string) []book.Creator {
	if len(list) == 0 {
		return []book.Creator{{Name: name}}
	}
	out := append([]book.Creator(nil), list...)
	out[0].Name = name
	return out
}

func replaceFirstIdentifier(list []book.Identifier, value string) []book.Identifier {
	if len(list) == 0 {
		return []book.Identifier{{Value: value}}
	}
	out := append([]book.Identifier(nil), list...)
	out[0].Value = value
	return out
}

// metadataYAML is the wire shape for metadata import/export (spec §6),
// sharing its fields with extract.metadataYAML/assemble.metadataYAML
// (extract's type also carries an epx block, which this one omits).
type metadataYAML struct {
	Title       string            `yaml:"title"`
	Authors     []authorYAML      `yaml:"authors"`
	Publisher   string            `yaml:"publisher,omitempty"`
	Identifier  string            `yaml:"identifier,omitempty"`
	Language    string            `yaml:"language,omitempty"`
	Date        string            `yaml:"date,omitempty"`
	Description string            `yaml:"description,omitempty"`
	Subjects    []string          `yaml:"subjects,omitempty"`
	Rights      string            `yaml:"rights,omitempty"`
	Custom      map[string]string `yaml:"custom,omitempty"`
}

type authorYAML struct {
	Name string `yaml:"name"`
	Role string `yaml:"role,omitempty"`
}

// ImportMetadata implements "metadata import": replace the Metadata
// wholesale with the YAML at path, preserving the custom map.
func ImportMetadata(b *book.Book, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errs.New(errs.KindIO, "manipulate.ImportMetadata", err)
	}
	var m metadataYAML
	if err := yaml.Unmarshal(data, &m); err != nil {
		return errs.New(errs.KindYAML, "manipulate.ImportMetadata", err)
	}

	md := book.Metadata{Custom: b.Metadata.Custom}
	if m.Title != "" {
		md.Titles = []string{m.Title}
	}
	for _, a := range m.Authors {
		md.Creators = append(md.Creators, book.Creator{Name: a.Name, Role: a.Role})
	}
	md.Publisher = m.Publisher
	md.Description = m.Description
	md.Subjects = m.Subjects
	md.Rights = m.Rights
	md.Date = m.Date
	if m.Identifier != "" {
		md.Identifiers = []book.Identifier{{Value: m.Identifier}}
	}
	if m.Language != "" {
		md.Languages = []string{m.Language}
	}
	if m.Custom != nil {
		md.Custom = m.Custom
	}
	if md.Custom == nil {
		md.Custom = map[string]string{}
	}
	b.Metadata = md
	return nil
}

// ExportMetadata implements "metadata export": write the Metadata as YAML
// to path.
func ExportMetadata(b *book.Book, path string) error {
	m := metadataYAML{
		Publisher:   b.Metadata.Publisher,
		Date:        b.Metadata.Date,
		Description: b.Metadata.Description,
		Subjects:    b.Metadata.Subjects,
		Rights:      b.Metadata.Rights,
		Custom:      b.Metadata.Custom,
	}
	if len(b.Metadata.Titles) > 0 {
		m.Title = b.Metadata.Titles[0]
	}
	if len(b.Metadata.Identifiers) > 0 {
		m.Identifier = b.Metadata.Identifiers[0].Value
	}
	if len(b.Metadata.Languages) > 0 {
		m.Language = b.Metadata.Languages[0]
	}
	for _, c := range b.Metadata.Creators {
		m.Authors = append(m.Authors, authorYAML{Name: c.Name, Role: c.Role})
	}

	data, err := yaml.Marshal(&m)
	if err != nil {
		return errs.New(errs.KindYAML, "manipulate.ExportMetadata", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errs.New(errs.KindIO, "manipulate.ExportMetadata", err)
	}
	return nil
}
