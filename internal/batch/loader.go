// Package batch loads many statement files at once for a directory import.
package batch

import (
	"context"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"kakeibo/kakeibo-csv/internal/logging"
	"kakeibo/kakeibo-csv/internal/models"
	"kakeibo/kakeibo-csv/internal/statement"
)

// DefaultConcurrency bounds how many files are decoded at the same time.
const DefaultConcurrency = 4

// Card companies name their exports after the billing month, e.g.
// enavi202510.csv or meisai_2025-10.csv.
var periodPattern = regexp.MustCompile(`(20\d{2})[-_]?(0[1-9]|1[0-2])`)

// PeriodFromFilename extracts the billing month from a statement filename.
// ok is false when the name carries no yyyyMM or yyyy-MM.
func PeriodFromFilename(path string) (time.Time, bool) {
	m := periodPattern.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return time.Time{}, false
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), true
}

// Loaded is one file of a batch: its decoded statement, or why decoding failed.
type Loaded struct {
	Path      string
	Period    time.Time // zero when the filename has no billing month
	Statement *statement.Statement
	Err       error
}

// Loader decodes statement files concurrently.
type Loader struct {
	logger      logging.Logger
	concurrency int
}

// NewLoader creates a Loader. concurrency <= 0 selects DefaultConcurrency.
func NewLoader(logger logging.Logger, concurrency int) *Loader {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Loader{logger: logger, concurrency: concurrency}
}

// Load decodes every file under profile. A file that cannot be decoded does
// not stop the others; its error is kept in Loaded.Err. The result is ordered
// oldest billing month first, files without one last, ties by path.
// Only cancellation of ctx makes Load itself fail.
func (l *Loader) Load(ctx context.Context, files []string, profile models.FormatProfile) ([]Loaded, error) {
	loaded := make([]Loaded, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := Loaded{Path: path}
			item.Period, _ = PeriodFromFilename(path)
			item.Statement, item.Err = statement.ReadFile(path, profile)
			if item.Err != nil {
				l.logger.WithError(item.Err).Warn("Statement could not be decoded",
					logging.F(logging.FieldFile, path))
			} else {
				l.logger.Debug("Statement decoded",
					logging.F(logging.FieldFile, path),
					logging.F(logging.FieldEncoding, item.Statement.Encoding),
					logging.F(logging.FieldCount, len(item.Statement.Rows)))
			}
			loaded[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	SortChronologically(loaded)
	l.logger.Info("Statements loaded",
		logging.F(logging.FieldCount, len(loaded)),
		logging.F(logging.FieldErrors, countFailed(loaded)))
	return loaded, nil
}

// SortChronologically orders items by billing month, undated last, then path.
func SortChronologically(items []Loaded) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch {
		case a.Period.IsZero() != b.Period.IsZero():
			return !a.Period.IsZero()
		case !a.Period.Equal(b.Period):
			return a.Period.Before(b.Period)
		default:
			return a.Path < b.Path
		}
	})
}

func countFailed(items []Loaded) int {
	n := 0
	for _, it := range items {
		if it.Err != nil {
			n++
		}
	}
	return n
}
