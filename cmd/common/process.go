// Package common contains shared functionality for command handlers
package common

import (
	"context"
	"fmt"
	"time"

	"kakeibo/kakeibo-csv/internal/categorizer"
	"kakeibo/kakeibo-csv/internal/container"
	"kakeibo/kakeibo-csv/internal/dateutils"
	"kakeibo/kakeibo-csv/internal/fileutils"
	"kakeibo/kakeibo-csv/internal/importer"
	"kakeibo/kakeibo-csv/internal/logging"
	"kakeibo/kakeibo-csv/internal/mappingstore"
	"kakeibo/kakeibo-csv/internal/models"
	"kakeibo/kakeibo-csv/internal/parsererror"
	"kakeibo/kakeibo-csv/internal/report"
	"kakeibo/kakeibo-csv/internal/statement"
)

// ProfileFlags override fields of the selected FormatProfile. Zero values
// keep the profile's own setting, except where the matching Set flag is true.
type ProfileFlags struct {
	Profile           string
	Encoding          string
	DateFormat        string
	SkipRows          int
	SkipRowsSet       bool
	Negate            bool
	NegateSet         bool
	DateColumn        string
	AmountColumn      string
	DescriptionColumn string
	Mapping           string
	ReplaceMapping    bool
}

// ResolveProfile looks up the named profile, applies the configured mapping
// file (when it exists) and the flag overrides, then merges in the --mapping
// file.
func ResolveProfile(c *container.Container, f ProfileFlags) (models.FormatProfile, error) {
	p, err := c.Profile(f.Profile)
	if err != nil {
		return p, err
	}

	if f.Encoding != "" {
		if _, _, err := statement.LookupEncoding(f.Encoding); err != nil {
			return p, err
		}
		p.Encoding = f.Encoding
	}
	if f.DateFormat != "" {
		if err := dateutils.ValidatePattern(f.DateFormat); err != nil {
			return p, fmt.Errorf("invalid date format %q: %w", f.DateFormat, err)
		}
		p.DateFormat = f.DateFormat
	}
	if f.SkipRowsSet {
		if f.SkipRows < 0 {
			return p, fmt.Errorf("skip rows must not be negative: %d", f.SkipRows)
		}
		p.SkipRows = f.SkipRows
	}
	if f.NegateSet {
		p.NegateAmount = f.Negate
	}
	if f.DateColumn != "" {
		p.DateColumn = f.DateColumn
	}
	if f.AmountColumn != "" {
		p.AmountColumn = f.AmountColumn
	}
	if f.DescriptionColumn != "" {
		p.DescriptionColumn = f.DescriptionColumn
	}

	configured := c.GetConfig().Mapping.File
	if configured != "" && fileutils.FileExists(configured) {
		doc, err := c.GetMappingStore().Load(configured)
		if err != nil {
			return p, err
		}
		p.CategoryMapping = mappingstore.MergeOrReplace(p.CategoryMapping, doc.CategoryMapping, false)
	}

	if f.Mapping != "" {
		doc, err := c.GetMappingStore().Load(f.Mapping)
		if err != nil {
			return p, err
		}
		p.CategoryMapping = mappingstore.MergeOrReplace(p.CategoryMapping, doc.CategoryMapping, f.ReplaceMapping)
		c.GetLogger().Debug("Applied mapping file",
			logging.F(logging.FieldMapping, f.Mapping),
			logging.F(logging.FieldCount, doc.CategoryMapping.Len()))
	}
	return p, nil
}

// ResolveDateRange builds the date filter from --from/--to or --month.
// Empty inputs mean no filter. An open --from or --to is bounded by the
// other side of the calendar: from alone keeps everything on or after it.
func ResolveDateRange(from, to, month string) (*models.DateRange, error) {
	if month != "" {
		if from != "" || to != "" {
			return nil, fmt.Errorf("--month cannot be combined with --from or --to")
		}
		start, end, err := dateutils.MonthBounds(month)
		if err != nil {
			return nil, fmt.Errorf("invalid month %q (want yyyy-MM): %w", month, err)
		}
		r, err := models.NewDateRange(start, end)
		if err != nil {
			return nil, err
		}
		return &r, nil
	}
	if from == "" && to == "" {
		return nil, nil
	}

	start := time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)
	var err error
	if from != "" {
		if start, err = dateutils.ParseISODate(from); err != nil {
			return nil, fmt.Errorf("invalid --from date %q: %w", from, err)
		}
	}
	if to != "" {
		if end, err = dateutils.ParseISODate(to); err != nil {
			return nil, fmt.Errorf("invalid --to date %q: %w", to, err)
		}
	}
	r, err := models.NewDateRange(start, end)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CurrentMapping returns the configured mapping file's contents, or the
// built-in keyword table when that file does not exist yet.
func CurrentMapping(c *container.Container) (mappingstore.Document, error) {
	cfg := c.GetConfig()
	if cfg.Mapping.File != "" && fileutils.FileExists(cfg.Mapping.File) {
		return c.GetMappingStore().Load(cfg.Mapping.File)
	}
	return mappingstore.Document{Name: cfg.Mapping.Name, CategoryMapping: categorizer.DefaultRules()}, nil
}

// ImportStatement imports (or with dryRun, previews) one decoded statement
// and returns its report summary.
func ImportStatement(ctx context.Context, pl *importer.Pipeline, st *statement.Statement, p models.FormatProfile, opts importer.Options, dryRun bool) (report.Summary, error) {
	summary := report.Summary{File: st.Path, DryRun: dryRun}
	var err error
	if dryRun {
		summary.Result, summary.Outcomes, err = pl.PreviewStatement(ctx, st, p, opts)
	} else {
		summary.Result, err = pl.ImportStatement(ctx, st, p, opts)
	}
	return summary, err
}

// ReadStatement decodes the CSV at path, reporting a missing file as a
// fatal import error.
func ReadStatement(path string, p models.FormatProfile) (*statement.Statement, error) {
	if !fileutils.FileExists(path) {
		return nil, &parsererror.FatalImportError{FilePath: path, Reason: "file not found", Err: parsererror.ErrUnreadableFile}
	}
	return statement.ReadFile(path, p)
}
