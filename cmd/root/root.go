// Package root contains the root command for the application
package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"kakeibo/kakeibo-csv/internal/config"
	"kakeibo/kakeibo-csv/internal/container"
	"kakeibo/kakeibo-csv/internal/fileutils"
	"kakeibo/kakeibo-csv/internal/importer"
	"kakeibo/kakeibo-csv/internal/logging"
	"kakeibo/kakeibo-csv/internal/models"
	"kakeibo/kakeibo-csv/internal/parsererror"
	"kakeibo/kakeibo-csv/internal/profile"
	"kakeibo/kakeibo-csv/internal/report"
)

type containerKey struct{}

// ErrNoContainer is returned by commands run without the root pre-run hook.
var ErrNoContainer = errors.New("container not initialized")

// NewCmd builds the root command. Running it with a CSV path is the quick
// import: the rakuten profile with its fixed keyword table, duplicates
// skipped, counts printed.
func NewCmd() *cobra.Command {
	v := viper.New()
	var configFile string

	cmd := &cobra.Command{
		Use:   "kakeibo-csv <csv_path> [db_path]",
		Short: "Import credit card statement CSVs into a household budget ledger",
		Long: `kakeibo-csv reads credit card statement CSV exports, classifies each
purchase into a budget category by keyword and stores it in a SQLite ledger,
skipping rows that were already imported.

Run with a CSV path for a quick import using the built-in card profile,
or use the subcommands for configurable imports and mapping management.`,
		Example: `  kakeibo-csv enavi202510.csv
  kakeibo-csv enavi202510.csv budget.db`,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.LoadEnv(); err != nil {
				return fmt.Errorf("failed to load .env: %w", err)
			}
			cfg, err := config.Load(v, configFile)
			if err != nil {
				return err
			}
			c, err := container.NewContainer(cfg)
			if err != nil {
				return err
			}
			cmd.SetContext(WithContainer(cmd.Context(), c))
			return nil
		},
		RunE: runQuickImport,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default config.yaml in $HOME/.kakeibo-csv, ./.kakeibo-csv or .)")
	flags.String("log-level", "", "log level (trace, debug, info, warn, error)")
	flags.String("log-format", "", "log format (text or json)")
	flags.String("db", "", "SQLite ledger path (default budget.db)")
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("log.format", flags.Lookup("log-format"))
	_ = v.BindPFlag("database.path", flags.Lookup("db"))

	return cmd
}

// WithContainer returns ctx carrying c.
func WithContainer(ctx context.Context, c *container.Container) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, containerKey{}, c)
}

// GetContainer returns the container set up by the root pre-run hook.
func GetContainer(cmd *cobra.Command) (*container.Container, error) {
	if ctx := cmd.Context(); ctx != nil {
		if c, ok := ctx.Value(containerKey{}).(*container.Container); ok {
			return c, nil
		}
	}
	return nil, ErrNoContainer
}

func runQuickImport(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		_ = cmd.Usage()
		return errors.New("a CSV file path is required")
	}
	c, err := GetContainer(cmd)
	if err != nil {
		return err
	}
	logger := c.GetLogger()

	csvPath := args[0]
	dbPath := ""
	if len(args) > 1 {
		dbPath = args[1]
	}

	if !fileutils.FileExists(csvPath) {
		return &parsererror.FatalImportError{FilePath: csvPath, Reason: "file not found", Err: parsererror.ErrUnreadableFile}
	}

	// The quick import always uses the built-in card profile. Profiles files
	// and the configured source tag apply to the import command only.
	p := profile.Rakuten(models.DefaultSourceTag)

	store, err := c.OpenLedger(dbPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.WithError(cerr).Warn("Failed to close ledger")
		}
	}()

	logger.Info("Quick import started",
		logging.F(logging.FieldFile, csvPath),
		logging.F(logging.FieldDatabase, store.Path()))

	result, err := c.NewPipeline(store).ImportFile(cmd.Context(), csvPath, p, importer.Options{Dedup: true})
	if err != nil {
		return err
	}
	return c.GetReportGenerator().Write(cmd.OutOrStdout(), report.FormatText,
		report.Summary{File: csvPath, Result: result})
}
