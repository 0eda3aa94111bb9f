package commands

import (
	"github.com/spf13/cobra"

	"golibri-studio/internal/book"
	"golibri-studio/internal/manipulate"
)

func init() {
	spineCmd.AddCommand(spineReorderCmd)
	spineCmd.AddCommand(spineSetCmd)
	rootCmd.AddCommand(spineCmd)
}

var spineCmd = &cobra.Command{
	Use:   "spine",
	Short: "Reorder or replace the reading order",
}

var spineReorderCmd = &cobra.Command{
	Use:   "reorder <input.epub> <from> <to>",
	Short: "Move a spine item to a new position",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		from, to, err := parseFromTo(args[1], args[2])
		if err != nil {
			return err
		}
		return manipulate.Modify(path, func(b *book.Book) error {
			return manipulate.ReorderSpine(b, from, to)
		})
	},
}

var spineSetCmd = &cobra.Command{
	Use:   "set <input.epub> <spine.yml>",
	Short: "Replace the spine with an ordered list of idrefs parsed from YAML",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, yamlPath := args[0], args[1]
		return manipulate.Modify(path, func(b *book.Book) error {
			return manipulate.SetSpine(b, yamlPath)
		})
	},
}
