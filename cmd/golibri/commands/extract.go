package commands

import (
	"github.com/spf13/cobra"

	"golibri-studio/internal/bookio"
	"golibri-studio/internal/extract"
)

func init() {
	rootCmd.AddCommand(extractCmd)
}

var extractCmd = &cobra.Command{
	Use:   "extract <input.epub> <output-dir>",
	Short: "Project an EPUB into an editable Markdown-plus-assets directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := bookio.Read(args[0])
		if err != nil {
			return err
		}

		report, err := extract.Extract(b, args[1])
		if err != nil {
			return err
		}

		infof("extracted to %s (%d chapter(s))", args[1], len(b.Spine))
		verbosef("opf directory: %s, manifest items: %d", b.OPFDir, len(b.Manifest))
		for _, w := range report.Warnings {
			warnf("%s", w)
		}
		return nil
	},
}
