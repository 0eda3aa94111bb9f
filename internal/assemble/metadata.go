package assemble

import (
	"os"

	"gopkg.in/yaml.v3"

	"golibri-studio/internal/book"
	"golibri-studio/internal/errs"
)

// metadataYAML mirrors extract.metadataYAML (spec §6); duplicated rather
// than imported to keep the extract/assemble packages decoupled.
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

// loadMetadata parses metadata.yml into b.Metadata, preserving the custom
// mapping verbatim (spec §4.5 step 1).
func loadMetadata(b *book.Book, inDir string) error {
	data, err := os.ReadFile(inDir + "/metadata.yml")
	if err != nil {
		return errs.New(errs.KindIO, "assemble.loadMetadata", err)
	}

	var m metadataYAML
	if err := yaml.Unmarshal(data, &m); err != nil {
		return errs.New(errs.KindYAML, "assemble.loadMetadata", err)
	}

	if m.Title != "" {
		b.Metadata.Titles = []string{m.Title}
	}
	for _, a := range m.Authors {
		b.Metadata.Creators = append(b.Metadata.Creators, book.Creator{Name: a.Name, Role: a.Role})
	}
	b.Metadata.Publisher = m.Publisher
	b.Metadata.Description = m.Description
	b.Metadata.Subjects = m.Subjects
	b.Metadata.Rights = m.Rights
	b.Metadata.Date = m.Date
	if m.Identifier != "" {
		b.Metadata.Identifiers = []book.Identifier{{Value: m.Identifier}}
	}
	if m.Language != "" {
		b.Metadata.Languages = []string{m.Language}
	}
	if m.Custom != nil {
		b.Metadata.Custom = m.Custom
	} else {
		b.Metadata.Custom = map[string]string{}
	}

	return nil
}
