// Package categorize handles transaction categorization commands
package categorize

import (
	"fmt"

	"github.com/spf13/cobra"

	"kakeibo/kakeibo-csv/cmd/common"
	"kakeibo/kakeibo-csv/cmd/root"
	"kakeibo/kakeibo-csv/internal/categorizer"
)

// NewCmd builds the categorize command.
func NewCmd() *cobra.Command {
	var (
		pf      common.ProfileFlags
		explain bool
	)

	cmd := &cobra.Command{
		Use:   "categorize <description>...",
		Short: "Show the category a statement description is classified into",
		Long: `Classify one or more descriptions with the same keyword mapping an import
would use: the profile's table, the configured mapping file, then --mapping.`,
		Example: `  kakeibo-csv categorize "セブン-イレブン 渋谷店"
  kakeibo-csv categorize --explain "ＡＭＡＺＯＮ．ＣＯ．ＪＰ"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer(cmd)
			if err != nil {
				return err
			}
			p, err := common.ResolveProfile(c, pf)
			if err != nil {
				return err
			}

			cat := c.GetCategorizer()
			out := cmd.OutOrStdout()
			for _, description := range args {
				category := cat.Categorize(description, p.CategoryMapping)
				if !explain {
					fmt.Fprintf(out, "%s\t%s\n", description, category)
					continue
				}
				if rule, ok := categorizer.Match(description, p.CategoryMapping); ok {
					fmt.Fprintf(out, "%s\t%s\t(keyword: %s)\n", description, category, rule.Keyword)
				} else {
					fmt.Fprintf(out, "%s\t%s\t(no keyword matched)\n", description, category)
				}
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&pf.Profile, "profile", "p", "", "format profile whose keyword table is used")
	flags.StringVarP(&pf.Mapping, "mapping", "m", "", "keyword mapping file merged into the profile's")
	flags.BoolVar(&pf.ReplaceMapping, "replace-mapping", false, "use the --mapping file instead of merging it")
	flags.BoolVarP(&explain, "explain", "e", false, "also print the keyword that matched")
	return cmd
}
