// Package mapping implements the mapping command group, which manages the
// configured keyword to category mapping file.
package mapping

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"kakeibo/kakeibo-csv/cmd/common"
	"kakeibo/kakeibo-csv/cmd/root"
	"kakeibo/kakeibo-csv/internal/container"
	"kakeibo/kakeibo-csv/internal/mappingstore"
)

// NewCmd builds the mapping command and its subcommands.
func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mapping",
		Short: "Manage the keyword to category mapping",
		Long: `Manage the keyword to category mapping used by imports.

The mapping lives in the file named by mapping.file (default
category_mapping.json). Until that file exists the built-in keyword table is
used. Files ending in .json, .csv, .yaml or .yml are supported.`,
	}
	cmd.AddCommand(newListCmd(), newExportCmd(), newLoadCmd(), newAddCmd())
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the current mapping in match order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer(cmd)
			if err != nil {
				return err
			}
			doc, err := common.CurrentMapping(c)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %s (%d件)\n", doc.Name, doc.CategoryMapping.Len())
			for _, r := range doc.CategoryMapping.Rules() {
				fmt.Fprintf(out, "%s\t%s\n", r.Keyword, r.Category)
			}
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "export <path>",
		Short:   "Write the current mapping to a file",
		Example: "  kakeibo-csv mapping export backup.csv",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer(cmd)
			if err != nil {
				return err
			}
			doc, err := common.CurrentMapping(c)
			if err != nil {
				return err
			}
			if err := c.GetMappingStore().Save(args[0], doc); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d件のキーワードを書き出しました: %s\n", doc.CategoryMapping.Len(), args[0])
			return nil
		},
	}
}

func newLoadCmd() *cobra.Command {
	var replace bool
	cmd := &cobra.Command{
		Use:   "load <path>",
		Short: "Merge a mapping file into the current mapping",
		Long: `Merge a mapping file into the current mapping and save the result.

Keywords already present take the loaded category and keep their position;
new keywords are appended. With --replace the loaded file becomes the mapping.`,
		Example: "  kakeibo-csv mapping load family.json --replace",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer(cmd)
			if err != nil {
				return err
			}
			loaded, err := c.GetMappingStore().Load(args[0])
			if err != nil {
				return err
			}
			current, err := common.CurrentMapping(c)
			if err != nil {
				return err
			}

			current.CategoryMapping = mappingstore.MergeOrReplace(current.CategoryMapping, loaded.CategoryMapping, replace)
			if replace && loaded.Name != "" {
				current.Name = loaded.Name
			}
			if err := save(c, current); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d件を読み込みました (合計 %d件)\n",
				loaded.CategoryMapping.Len(), current.CategoryMapping.Len())
			return nil
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "replace the current mapping instead of merging")
	return cmd
}

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add [keyword,category]...",
		Short: "Add keyword,category pairs",
		Long: `Add keyword,category pairs, one per argument or, without arguments, one
per line on standard input. The category must be one of the configured
categories. Keywords are stored normalized (full-width folded, lower case).`,
		Example: `  kakeibo-csv mapping add "スタバ,食費" "ユニクロ,衣服"
  cat extra.txt | kakeibo-csv mapping add`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer(cmd)
			if err != nil {
				return err
			}
			text := strings.Join(args, "\n")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read standard input: %w", err)
				}
				text = string(data)
			}

			current, err := common.CurrentMapping(c)
			if err != nil {
				return err
			}
			var added, rejected int
			current.CategoryMapping, added, rejected = mappingstore.BulkAdd(
				current.CategoryMapping, text, c.GetConfig().ValidCategories())
			if added > 0 {
				if err := save(c, current); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "追加: %d件 / 無効: %d件\n", added, rejected)
			return nil
		},
	}
}

func save(c *container.Container, doc mappingstore.Document) error {
	path := c.GetConfig().Mapping.File
	if path == "" {
		return errors.New("mapping.file is not configured")
	}
	return c.GetMappingStore().Save(path, doc)
}
