// Package batch handles batch processing of files
package batch

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"kakeibo/kakeibo-csv/cmd/common"
	"kakeibo/kakeibo-csv/cmd/root"
	"kakeibo/kakeibo-csv/internal/batch"
	"kakeibo/kakeibo-csv/internal/fileutils"
	"kakeibo/kakeibo-csv/internal/importer"
	"kakeibo/kakeibo-csv/internal/logging"
	"kakeibo/kakeibo-csv/internal/report"
)

// NewCmd builds the batch command.
func NewCmd() *cobra.Command {
	var (
		pf          common.ProfileFlags
		ff          common.FilterFlags
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "batch <directory>",
		Short: "Import every statement CSV in a directory",
		Long: `Import every .csv file directly inside a directory.

Files are decoded in parallel and imported one after another, oldest billing
month first (taken from names like enavi202510.csv). A file that cannot be
read is reported and skipped; the command then exits with an error once the
other files are done.`,
		Example: `  kakeibo-csv batch statements/
  kakeibo-csv batch statements/ --month 2025-10 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			common.MarkChangedProfileFlags(cmd, &pf)
			return run(cmd, args[0], pf, ff, concurrency)
		},
	}

	common.AddProfileFlags(cmd, &pf)
	common.AddFilterFlags(cmd, &ff)
	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", batch.DefaultConcurrency, "files decoded at the same time")
	return cmd
}

func run(cmd *cobra.Command, dir string, pf common.ProfileFlags, ff common.FilterFlags, concurrency int) error {
	if err := report.ValidateFormat(ff.Format); err != nil {
		return err
	}
	c, err := root.GetContainer(cmd)
	if err != nil {
		return err
	}
	logger := c.GetLogger()
	ctx := cmd.Context()

	p, err := common.ResolveProfile(c, pf)
	if err != nil {
		return err
	}
	dateRange, err := common.ResolveDateRange(ff.From, ff.To, ff.Month)
	if err != nil {
		return err
	}
	opts := importer.Options{DateRange: dateRange, Dedup: c.GetConfig().Import.Dedup && !ff.NoDedup}

	files, err := fileutils.ListFilesWithExtension(dir, ".csv")
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logger.Warn("No CSV files found in directory", logging.F(logging.FieldFile, dir))
		return nil
	}
	logger.Info("Found files for processing",
		logging.F(logging.FieldFile, dir),
		logging.F(logging.FieldCount, len(files)))

	loaded, err := batch.NewLoader(logger, concurrency).Load(ctx, files, p)
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
	pipeline := c.NewPipeline(store)

	var summaries []report.Summary
	failed := 0
	for _, item := range loaded {
		if item.Err != nil {
			failed++
			logger.WithError(item.Err).Error("Skipping file", logging.F(logging.FieldFile, item.Path))
			fmt.Fprintf(cmd.ErrOrStderr(), "エラー: %s: %v\n", filepath.Base(item.Path), item.Err)
			continue
		}
		summary, err := common.ImportStatement(ctx, pipeline, item.Statement, p, opts, ff.DryRun)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			failed++
			logger.WithError(err).Error("Skipping file", logging.F(logging.FieldFile, item.Path))
			fmt.Fprintf(cmd.ErrOrStderr(), "エラー: %s: %v\n", filepath.Base(item.Path), err)
			continue
		}
		summaries = append(summaries, summary)
	}

	if err := c.GetReportGenerator().Write(cmd.OutOrStdout(), ff.Format, summaries...); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files could not be imported", failed, len(loaded))
	}
	return nil
}
