package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"golibri-studio/internal/book"
	"golibri-studio/internal/bookio"
	"golibri-studio/internal/manipulate"
)

var tocShowMaxDepth int
var tocGenerateMaxDepth int

func init() {
	tocShowCmd.Flags().IntVar(&tocShowMaxDepth, "max-depth", 0, "limit the printed tree to this many levels (0 = unlimited)")
	tocGenerateCmd.Flags().IntVar(&tocGenerateMaxDepth, "max-depth", 3, "deepest heading level to include")
	tocCmd.AddCommand(tocShowCmd)
	tocCmd.AddCommand(tocSetCmd)
	tocCmd.AddCommand(tocGenerateCmd)
	rootCmd.AddCommand(tocCmd)
}

var tocCmd = &cobra.Command{
	Use:   "toc",
	Short: "Show, replace or regenerate the navigation tree",
}

var tocShowCmd = &cobra.Command{
	Use:   "show <input.epub>",
	Short: "Print the current navigation tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := bookio.Read(args[0])
		if err != nil {
			return err
		}
		fmt.Print(manipulate.ShowTOC(b, tocShowMaxDepth))
		return nil
	},
}

var tocSetCmd = &cobra.Command{
	Use:   "set <input.epub> <toc.md>",
	Short: "Replace the navigation tree from a nested Markdown link list",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, mdPath := args[0], args[1]
		return manipulate.Modify(path, func(b *book.Book) error {
			return manipulate.SetTOC(b, mdPath)
		})
	},
}

var tocGenerateCmd = &cobra.Command{
	Use:   "generate <input.epub>",
	Short: "Regenerate the navigation tree from headings in spine order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		return manipulate.Modify(path, func(b *book.Book) error {
			return manipulate.GenerateTOC(b, tocGenerateMaxDepth)
		})
	},
}
