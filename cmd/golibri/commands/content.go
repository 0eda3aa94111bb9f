package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"golibri-studio/internal/book"
	"golibri-studio/internal/bookio"
	"golibri-studio/internal/manipulate"
)

var (
	contentRegex      bool
	contentDryRun     bool
	contentChapters   string
	contentHeadingMap string
)

func init() {
	contentSearchCmd.Flags().BoolVar(&contentRegex, "regex", false, "treat pattern as a regular expression")
	contentSearchCmd.Flags().StringVar(&contentChapters, "chapters", "", "comma-separated chapter ids to restrict to")

	contentReplaceCmd.Flags().BoolVar(&contentRegex, "regex", false, "treat pattern as a regular expression")
	contentReplaceCmd.Flags().BoolVar(&contentDryRun, "dry-run", false, "report what would change without writing")
	contentReplaceCmd.Flags().StringVar(&contentChapters, "chapters", "", "comma-separated chapter ids to restrict to")

	contentHeadingsCmd.Flags().StringVar(&contentHeadingMap, "restructure", "", "heading level mapping, e.g. h2->h1,h3->h2")

	contentCmd.AddCommand(contentSearchCmd)
	contentCmd.AddCommand(contentReplaceCmd)
	contentCmd.AddCommand(contentHeadingsCmd)
	rootCmd.AddCommand(contentCmd)
}

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Search, replace or restructure chapter text",
}

var contentSearchCmd = &cobra.Command{
	Use:   "search <input.epub> <pattern>",
	Short: "Search chapter text (text nodes only) and print matches",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := bookio.Read(args[0])
		if err != nil {
			return err
		}
		matches, err := manipulate.Search(b, args[1], contentRegex, splitChapterIDs(contentChapters))
		if err != nil {
			return err
		}
		for _, m := range matches {
			fmt.Printf("%s:%d:%d: %s\n", m.Href, m.Line, m.Column, m.Snippet)
		}
		return nil
	},
}

var contentReplaceCmd = &cobra.Command{
	Use:   "replace <input.epub> <pattern> <replacement>",
	Short: "Replace text inside chapter text nodes (tags and attributes are never touched)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, pattern, replacement := args[0], args[1], args[2]

		if contentDryRun {
			b, err := bookio.Read(path)
			if err != nil {
				return err
			}
			results, err := manipulate.Replace(b, pattern, replacement, contentRegex, true, splitChapterIDs(contentChapters))
			if err != nil {
				return err
			}
			for _, r := range results {
				fmt.Printf("%s: %d replacement(s)\n", r.Href, r.Count)
				for _, p := range r.Preview {
					fmt.Printf("  %s\n", p)
				}
			}
			return nil
		}

		return manipulate.Modify(path, func(b *book.Book) error {
			_, err := manipulate.Replace(b, pattern, replacement, contentRegex, false, splitChapterIDs(contentChapters))
			return err
		})
	},
}

var contentHeadingsCmd = &cobra.Command{
	Use:   "headings <input.epub>",
	Short: "List headings, or restructure them with --restructure",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		mapping, err := parseHeadingMap(contentHeadingMap)
		if err != nil {
			return err
		}

		if len(mapping) == 0 {
			b, err := bookio.Read(path)
			if err != nil {
				return err
			}
			headings, err := manipulate.Headings(b, nil)
			if err != nil {
				return err
			}
			for _, h := range headings {
				fmt.Printf("%s: h%d %s\n", h.ChapterID, h.Level, h.Label)
			}
			return nil
		}

		return manipulate.Modify(path, func(b *book.Book) error {
			_, err := manipulate.Headings(b, mapping)
			return err
		})
	},
}

func splitChapterIDs(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// parseHeadingMap parses "h2->h1,h3->h2" into {2:1, 3:2}.
func parseHeadingMap(s string) (map[int]int, error) {
	if s == "" {
		return nil, nil
	}
	out := map[int]int{}
	for _, pair := range strings.Split(s, ",") {
		from, to, ok := strings.Cut(strings.TrimSpace(pair), "->")
		if !ok {
			return nil, fmt.Errorf("invalid mapping %q, expected form h2->h1", pair)
		}
		fromN, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(from), "h"))
		if err != nil {
			return nil, fmt.Errorf("invalid mapping %q: %w", pair, err)
		}
		toN, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(to), "h"))
		if err != nil {
			return nil, fmt.Errorf("invalid mapping %q: %w", pair, err)
		}
		out[fromN] = toN
	}
	return out, nil
}
