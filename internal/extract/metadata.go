package extract

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"golibri-studio/internal/book"
	"golibri-studio/internal/errs"
	"golibri-studio/internal/xutil"
)

// metadataYAML mirrors the metadata.yml layout in spec.md §6.
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
	EPX         epxBlock          `yaml:"epx"`
}

type authorYAML struct {
	Name string `yaml:"name"`
	Role string `yaml:"role,omitempty"`
}

type epxBlock struct {
	SourceFormat  string `yaml:"source_format"`
	EPUBVersion   string `yaml:"epub_version"`
	ExtractedDate string `yaml:"extracted_date"`
}

func writeMetadataYAML(b *book.Book, outDir string) error {
	m := metadataYAML{
		Publisher:   b.Metadata.Publisher,
		Language:    firstOrEmpty(b.Metadata.Languages),
		Date:        b.Metadata.Date,
		Description: b.Metadata.Description,
		Subjects:    b.Metadata.Subjects,
		Rights:      b.Metadata.Rights,
		Custom:      b.Metadata.Custom,
		EPX: epxBlock{
			SourceFormat:  "epub",
			EPUBVersion:   b.Version,
			ExtractedDate: xutil.ISO8601Now(),
		},
	}
	if len(b.Metadata.Titles) > 0 {
		m.Title = b.Metadata.Titles[0]
	}
	if len(b.Metadata.Identifiers) > 0 {
		m.Identifier = b.Metadata.Identifiers[0].Value
	}
	for _, c := range b.Metadata.Creators {
		m.Authors = append(m.Authors, authorYAML{Name: c.Name, Role: c.Role})
	}

	data, err := yaml.Marshal(&m)
	if err != nil {
		return errs.New(errs.KindYAML, "extract.writeMetadataYAML", err)
	}
	if err := os.WriteFile(filepath.Join(outDir, "metadata.yml"), data, 0o644); err != nil {
		return errs.New(errs.KindIO, "extract.writeMetadataYAML", err)
	}
	return nil
}

func firstOrEmpty(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}
