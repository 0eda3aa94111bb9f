package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"golibri-studio/internal/bookio"
)

func init() {
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(validateCmd)
}

var infoCmd = &cobra.Command{
	Use:   "info <input.epub>",
	Short: "Print title, authors, language, identifier, version and spine length",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := bookio.Read(args[0])
		if err != nil {
			return err
		}

		if jsonOutput {
			type infoJSON struct {
				Title      string `json:"title"`
				Language   string `json:"language"`
				Identifier string `json:"identifier"`
				Version    string `json:"version"`
				SpineLen   int    `json:"spine_length"`
			}
			out := infoJSON{Version: b.Version, SpineLen: len(b.Spine)}
			if len(b.Metadata.Titles) > 0 {
				out.Title = b.Metadata.Titles[0]
			}
			if len(b.Metadata.Languages) > 0 {
				out.Language = b.Metadata.Languages[0]
			}
			if len(b.Metadata.Identifiers) > 0 {
				out.Identifier = b.Metadata.Identifiers[0].Value
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		title := "(untitled)"
		if len(b.Metadata.Titles) > 0 {
			title = b.Metadata.Titles[0]
		}
		lang := ""
		if len(b.Metadata.Languages) > 0 {
			lang = b.Metadata.Languages[0]
		}
		ident := ""
		if len(b.Metadata.Identifiers) > 0 {
			ident = b.Metadata.Identifiers[0].Value
		}

		fmt.Printf("Title:      %s\n", title)
		if len(b.Metadata.Creators) > 0 {
			names := make([]string, len(b.Metadata.Creators))
			for i, c := range b.Metadata.Creators {
				names[i] = c.Name
			}
			fmt.Printf("Authors:    %s\n", strings.Join(names, ", "))
		}
		fmt.Printf("Language:   %s\n", lang)
		fmt.Printf("Identifier: %s\n", ident)
		fmt.Printf("Version:    EPUB %s\n", b.Version)
		fmt.Printf("Spine:      %d item(s)\n", len(b.Spine))
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <input.epub>",
	Short: "Check structural invariants and report every violation found",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := bookio.Read(args[0])
		if err != nil {
			return err
		}

		problems := b.Validate()
		warnings := b.Warnings()

		if jsonOutput {
			msgs := make([]string, len(problems))
			for i, p := range problems {
				msgs[i] = p.Error()
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Valid    bool     `json:"valid"`
				Issues   []string `json:"issues"`
				Warnings []string `json:"warnings,omitempty"`
			}{Valid: len(problems) == 0, Issues: msgs, Warnings: warnings})
		}

		for _, w := range warnings {
			warnf("%s", w)
		}

		if len(problems) == 0 {
			fmt.Println("valid")
			return nil
		}
		for _, p := range problems {
			fmt.Println(p.Error())
		}
		os.Exit(1)
		return nil
	},
}
