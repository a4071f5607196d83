// Package importcsv implements the import command: a single statement import
// with every FormatProfile setting available as a flag.
package importcsv

import (
	"github.com/spf13/cobra"

	"kakeibo/kakeibo-csv/cmd/common"
	"kakeibo/kakeibo-csv/cmd/root"
	"kakeibo/kakeibo-csv/internal/importer"
	"kakeibo/kakeibo-csv/internal/logging"
	"kakeibo/kakeibo-csv/internal/report"
)

// NewCmd builds the import command.
func NewCmd() *cobra.Command {
	var (
		pf common.ProfileFlags
		ff common.FilterFlags
	)

	cmd := &cobra.Command{
		Use:   "import <csv_path>",
		Short: "Import one statement CSV with a configurable format profile",
		Long: `Import one statement CSV into the ledger.

The profile (--profile) names the statement layout: "rakuten" for the common
credit card export, "other" for any CSV whose columns are given with the
column flags or guessed from the header, or a profile from the profiles file.`,
		Example: `  kakeibo-csv import enavi202510.csv
  kakeibo-csv import bank.csv --profile other --encoding cp932 --negate \
      --date-column 日付 --amount-column 出金 --description-column 摘要
  kakeibo-csv import enavi202510.csv --month 2025-10 --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			common.MarkChangedProfileFlags(cmd, &pf)
			return run(cmd, args[0], pf, ff)
		},
	}

	common.AddProfileFlags(cmd, &pf)
	common.AddFilterFlags(cmd, &ff)
	return cmd
}

func run(cmd *cobra.Command, path string, pf common.ProfileFlags, ff common.FilterFlags) error {
	if err := report.ValidateFormat(ff.Format); err != nil {
		return err
	}
	c, err := root.GetContainer(cmd)
	if err != nil {
		return err
	}
	logger := c.GetLogger()

	p, err := common.ResolveProfile(c, pf)
	if err != nil {
		return err
	}
	dateRange, err := common.ResolveDateRange(ff.From, ff.To, ff.Month)
	if err != nil {
		return err
	}
	opts := importer.Options{DateRange: dateRange, Dedup: c.GetConfig().Import.Dedup && !ff.NoDedup}

	st, err := common.ReadStatement(path, p)
	if err != nil {
		return err
	}

	store, err := c.OpenLedger("")
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.WithError(cerr).Warn("Failed to close ledger")
		}
	}()

	logger.Info("Import started",
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldProfile, p.Name),
		logging.F(logging.FieldDatabase, store.Path()))

	summary, err := common.ImportStatement(cmd.Context(), c.NewPipeline(store), st, p, opts, ff.DryRun)
	if err != nil {
		return err
	}
	return c.GetReportGenerator().Write(cmd.OutOrStdout(), ff.Format, summary)
}
