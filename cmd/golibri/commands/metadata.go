package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"golibri-studio/internal/book"
	"golibri-studio/internal/bookio"
	"golibri-studio/internal/manipulate"
)

func init() {
	metadataCmd.AddCommand(metadataSetCmd)
	metadataCmd.AddCommand(metadataRemoveCmd)
	metadataCmd.AddCommand(metadataImportCmd)
	metadataCmd.AddCommand(metadataExportCmd)
	metadataCmd.AddCommand(metadataShowCmd)
	rootCmd.AddCommand(metadataCmd)
}

var metadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Read or edit EPUB metadata",
}

var metadataShowCmd = &cobra.Command{
	Use:   "show <input.epub>",
	Short: "Print the current metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := bookio.Read(args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(b.Metadata)
		}
		printMetadata(b.Metadata)
		return nil
	},
}

var metadataSetCmd = &cobra.Command{
	Use:   "set <input.epub> <field> <value>",
	Short: "Set a metadata field (well-known fields replace, subject appends, others go to custom)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, field, value := args[0], args[1], args[2]
		err := manipulate.Modify(path, func(b *book.Book) error {
			return manipulate.SetMetadata(b, field, value)
		})
		if err != nil {
			return err
		}
		infof("set %s = %q", field, value)
		return nil
	},
}

var metadataRemoveCmd = &cobra.Command{
	Use:   "remove <input.epub> <field>",
	Short: "Clear a metadata field",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, field := args[0], args[1]
		err := manipulate.Modify(path, func(b *book.Book) error {
			return manipulate.RemoveMetadata(b, field)
		})
		if err != nil {
			return err
		}
		infof("removed %s", field)
		return nil
	},
}

var metadataImportCmd = &cobra.Command{
	Use:   "import <input.epub> <metadata.yml>",
	Short: "Replace metadata wholesale from a YAML file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, yamlPath := args[0], args[1]
		err := manipulate.Modify(path, func(b *book.Book) error {
			return manipulate.ImportMetadata(b, yamlPath)
		})
		if err != nil {
			return err
		}
		infof("imported metadata from %s", yamlPath)
		return nil
	},
}

var metadataExportCmd = &cobra.Command{
	Use:   "export <input.epub> <metadata.yml>",
	Short: "Write current metadata as YAML",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := bookio.Read(args[0])
		if err != nil {
			return err
		}
		if err := manipulate.ExportMetadata(b, args[1]); err != nil {
			return err
		}
		infof("exported metadata to %s", args[1])
		return nil
	},
}

func printMetadata(m book.Metadata) {
	if len(m.Titles) > 0 {
		fmt.Printf("title:       %s\n", m.Titles[0])
	}
	for _, c := range m.Creators {
		fmt.Printf("creator:     %s (%s)\n", c.Name, c.Role)
	}
	if len(m.Languages) > 0 {
		fmt.Printf("language:    %s\n", m.Languages[0])
	}
	if len(m.Identifiers) > 0 {
		fmt.Printf("identifier:  %s\n", m.Identifiers[0].Value)
	}
	if m.Publisher != "" {
		fmt.Printf("publisher:   %s\n", m.Publisher)
	}
	if m.Date != "" {
		fmt.Printf("date:        %s\n", m.Date)
	}
	for _, s := range m.Subjects {
		fmt.Printf("subject:     %s\n", s)
	}
	for k, v := range m.Custom {
		fmt.Printf("custom:      %s = %s\n", k, v)
	}
}
