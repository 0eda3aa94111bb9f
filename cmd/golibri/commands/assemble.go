package commands

import (
	"github.com/spf13/cobra"

	"golibri-studio/internal/assemble"
	"golibri-studio/internal/bookio"
)

func init() {
	rootCmd.AddCommand(assembleCmd)
}

var assembleCmd = &cobra.Command{
	Use:   "assemble <input-dir> <output.epub>",
	Short: "Build an EPUB from an extracted Markdown-plus-assets directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := assemble.Assemble(args[0])
		if err != nil {
			return err
		}
		if err := bookio.Write(b, args[1]); err != nil {
			return err
		}
		infof("assembled %s (%d chapter(s))", args[1], len(b.Spine))
		return nil
	},
}
