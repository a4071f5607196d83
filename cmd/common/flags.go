package common

import "github.com/spf13/cobra"

// AddProfileFlags registers the FormatProfile override flags on cmd.
func AddProfileFlags(cmd *cobra.Command, f *ProfileFlags) {
	flags := cmd.Flags()
	flags.StringVarP(&f.Profile, "profile", "p", "", "format profile (default from import.profile)")
	flags.StringVar(&f.Encoding, "encoding", "", "file encoding, e.g. utf-8-sig, cp932")
	flags.StringVar(&f.DateFormat, "date-format", "", "date pattern, strftime (%Y/%m/%d) or Go layout")
	flags.IntVar(&f.SkipRows, "skip-rows", 0, "rows to skip before the header")
	flags.BoolVar(&f.Negate, "negate", false, "negate amounts before taking their magnitude")
	flags.StringVar(&f.DateColumn, "date-column", "", "date column name")
	flags.StringVar(&f.AmountColumn, "amount-column", "", "amount column name")
	flags.StringVar(&f.DescriptionColumn, "description-column", "", "description column name")
	flags.StringVarP(&f.Mapping, "mapping", "m", "", "keyword mapping file (.json, .csv, .yaml) merged into the profile's")
	flags.BoolVar(&f.ReplaceMapping, "replace-mapping", false, "use the --mapping file instead of merging it")
}

// MarkChangedProfileFlags records which flags without a neutral zero value
// were given explicitly. Call it at the start of RunE.
func MarkChangedProfileFlags(cmd *cobra.Command, f *ProfileFlags) {
	f.SkipRowsSet = cmd.Flags().Changed("skip-rows")
	f.NegateSet = cmd.Flags().Changed("negate")
}

// FilterFlags select which rows are imported and how the run is reported.
type FilterFlags struct {
	From    string
	To      string
	Month   string
	NoDedup bool
	DryRun  bool
	Format  string
}

// AddFilterFlags registers the date range, dedup, dry-run and format flags.
func AddFilterFlags(cmd *cobra.Command, f *FilterFlags) {
	flags := cmd.Flags()
	flags.StringVar(&f.From, "from", "", "import only rows on or after this date (yyyy-MM-dd)")
	flags.StringVar(&f.To, "to", "", "import only rows on or before this date (yyyy-MM-dd)")
	flags.StringVar(&f.Month, "month", "", "import only rows of this month (yyyy-MM)")
	flags.BoolVar(&f.NoDedup, "no-dedup", false, "import rows even when they are already in the ledger")
	flags.BoolVar(&f.DryRun, "dry-run", false, "show what would be imported without writing")
	flags.StringVar(&f.Format, "format", "text", "report format (text or json)")
}
