package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Global flags exposed to every subcommand, matching the CLI collaborator
// interface in spec.md §6: a verbosity level, a JSON-output gate, and a
// color gate. The core packages never read these directly; only the CLI
// layer branches on them.
var (
	jsonOutput bool
	quiet      bool
	verbose    bool
	noColor    bool
)

var rootCmd = &cobra.Command{
	Use:   "golibri",
	Short: "Golibri is an EPUB 2/3 reader, writer, extractor and editor",
	Long: `Golibri reads and writes EPUB 2/3 containers, projects them to an
opinionated Markdown-plus-assets directory for editing with ordinary text
tools, reassembles that directory back into an EPUB, and exposes
metadata/chapter/spine/toc/content/asset edits directly against the
packaged file.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit machine-readable JSON for query operations")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress informational output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "emit additional diagnostic output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Execute runs the root command, printing any error to stderr and exiting
// non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func infof(format string, args ...any) {
	if quiet {
		return
	}
	fmt.Printf(format+"\n", args...)
}

func verbosef(format string, args ...any) {
	if !verbose {
		return
	}
	fmt.Printf(format+"\n", args...)
}

func warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}
