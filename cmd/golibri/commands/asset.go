package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"golibri-studio/internal/book"
	"golibri-studio/internal/bookio"
	"golibri-studio/internal/manipulate"
)

var (
	assetFilter       string
	assetOut          string
	assetMediaType    string
	assetExtractAllTo string
	assetCoverOut     string
	assetCoverMedia   string
)

func init() {
	assetListCmd.Flags().StringVar(&assetFilter, "filter", "", "restrict to one category: image, css, font, audio")
	assetExtractCmd.Flags().StringVar(&assetOut, "out", "", "write to this file instead of stdout")
	assetExtractAllCmd.Flags().StringVar(&assetExtractAllTo, "dir", ".", "directory to extract into")
	assetAddCmd.Flags().StringVar(&assetMediaType, "media-type", "", "override the inferred media type")
	assetCoverGetCmd.Flags().StringVar(&assetCoverOut, "out", "", "write to this file instead of stdout")
	assetCoverSetCmd.Flags().StringVar(&assetCoverMedia, "media-type", "", "override the inferred media type")

	assetCoverCmd.AddCommand(assetCoverGetCmd)
	assetCoverCmd.AddCommand(assetCoverSetCmd)

	assetCmd.AddCommand(assetListCmd)
	assetCmd.AddCommand(assetExtractCmd)
	assetCmd.AddCommand(assetExtractAllCmd)
	assetCmd.AddCommand(assetAddCmd)
	assetCmd.AddCommand(assetRemoveCmd)
	assetCmd.AddCommand(assetCoverCmd)
	rootCmd.AddCommand(assetCmd)
}

var assetCmd = &cobra.Command{
	Use:   "asset",
	Short: "List, extract, add or remove non-chapter resources",
}

var assetListCmd = &cobra.Command{
	Use:   "list <input.epub>",
	Short: "Enumerate manifest items, optionally filtered by category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := bookio.Read(args[0])
		if err != nil {
			return err
		}
		for _, a := range manipulate.ListAssets(b, assetFilter) {
			fmt.Printf("%s\t%s\t%s\n", a.ID, a.Category, a.Href)
		}
		return nil
	},
}

var assetExtractCmd = &cobra.Command{
	Use:   "extract <input.epub> <href>",
	Short: "Write a single asset's bytes to a file or stdout",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := bookio.Read(args[0])
		if err != nil {
			return err
		}
		return manipulate.ExtractAsset(b, args[1], assetOut, os.Stdout)
	},
}

var assetExtractAllCmd = &cobra.Command{
	Use:   "extract-all <input.epub>",
	Short: "Extract every non-chapter resource under --dir",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := bookio.Read(args[0])
		if err != nil {
			return err
		}
		if err := manipulate.ExtractAllAssets(b, assetExtractAllTo); err != nil {
			return err
		}
		infof("extracted assets to %s", assetExtractAllTo)
		return nil
	},
}

var assetAddCmd = &cobra.Command{
	Use:   "add <input.epub> <file>",
	Short: "Add a file as a new asset",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, file := args[0], args[1]
		var added book.ManifestItem
		err := manipulate.Modify(path, func(b *book.Book) error {
			var aerr error
			added, aerr = manipulate.AddAsset(b, file, assetMediaType)
			return aerr
		})
		if err != nil {
			return err
		}
		infof("added %s as %s", added.Href, added.ID)
		return nil
	},
}

var assetCoverCmd = &cobra.Command{
	Use:   "cover",
	Short: "Get or set the manifest item carrying the cover-image property",
}

var assetCoverGetCmd = &cobra.Command{
	Use:   "get <input.epub>",
	Short: "Write the cover image's bytes to a file or stdout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := bookio.Read(args[0])
		if err != nil {
			return err
		}
		href, data, err := manipulate.CoverGet(b)
		if err != nil {
			return err
		}
		if assetCoverOut == "" {
			_, err := os.Stdout.Write(data)
			return err
		}
		infof("cover image (%s) written to %s", href, assetCoverOut)
		return os.WriteFile(assetCoverOut, data, 0o644)
	},
}

var assetCoverSetCmd = &cobra.Command{
	Use:   "set <input.epub> <file>",
	Short: "Add a file as the book's cover image",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, file := args[0], args[1]
		var set book.ManifestItem
		err := manipulate.Modify(path, func(b *book.Book) error {
			var serr error
			set, serr = manipulate.CoverSet(b, file, assetCoverMedia)
			return serr
		})
		if err != nil {
			return err
		}
		infof("set %s as cover image (%s)", set.Href, set.ID)
		return nil
	},
}

var assetRemoveCmd = &cobra.Command{
	Use:   "remove <input.epub> <href>",
	Short: "Remove an asset, warning about any chapter that still references it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, href := args[0], args[1]
		var warnings []string
		err := manipulate.Modify(path, func(b *book.Book) error {
			var werr error
			warnings, werr = manipulate.RemoveAsset(b, href)
			return werr
		})
		if err != nil {
			return err
		}
		for _, w := range warnings {
			warnf("%s", w)
		}
		return nil
	},
}
