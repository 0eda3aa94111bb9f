package commands

import (
	"github.com/spf13/cobra"

	"golibri-studio/internal/book"
	"golibri-studio/internal/manipulate"
)

var chapterAfterID string

func init() {
	chapterAddCmd.Flags().StringVar(&chapterAfterID, "after", "", "insert after this chapter id (default: append at end)")
	chapterCmd.AddCommand(chapterAddCmd)
	chapterCmd.AddCommand(chapterRemoveCmd)
	chapterCmd.AddCommand(chapterReorderCmd)
	rootCmd.AddCommand(chapterCmd)
}

var chapterCmd = &cobra.Command{
	Use:   "chapter",
	Short: "Add, remove or reorder chapters",
}

var chapterAddCmd = &cobra.Command{
	Use:   "add <input.epub> <chapter.md> [title]",
	Short: "Render a Markdown file and add it as a chapter",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, mdPath := args[0], args[1]
		title := ""
		if len(args) > 2 {
			title = args[2]
		}
		return manipulate.Modify(path, func(b *book.Book) error {
			return manipulate.AddChapter(b, mdPath, title, chapterAfterID)
		})
	},
}

var chapterRemoveCmd = &cobra.Command{
	Use:   "remove <input.epub> <id-or-index>",
	Short: "Remove a chapter from spine, manifest, resources and the TOC",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, ref := args[0], args[1]
		return manipulate.Modify(path, func(b *book.Book) error {
			return manipulate.RemoveChapter(b, ref)
		})
	},
}

var chapterReorderCmd = &cobra.Command{
	Use:   "reorder <input.epub> <from> <to>",
	Short: "Move a chapter to a new spine position",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		from, to, err := parseFromTo(args[1], args[2])
		if err != nil {
			return err
		}
		return manipulate.Modify(path, func(b *book.Book) error {
			return manipulate.ReorderChapter(b, from, to)
		})
	},
}
