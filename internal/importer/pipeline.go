// Package importer runs statement imports: parse, classify, filter by date,
// drop duplicates and persist in one ledger transaction.
package importer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"kakeibo/kakeibo-csv/internal/ledger"
	"kakeibo/kakeibo-csv/internal/logging"
	"kakeibo/kakeibo-csv/internal/models"
	"kakeibo/kakeibo-csv/internal/parsererror"
	"kakeibo/kakeibo-csv/internal/profile"
	"kakeibo/kakeibo-csv/internal/statement"
)

// Options control one import run.
type Options struct {
	DateRange *models.DateRange // nil keeps every date
	Dedup     bool
}

// Status is what happened to one parsed transaction.
type Status string

const (
	StatusImported   Status = "imported"
	StatusDuplicate  Status = "duplicate"
	StatusFiltered   Status = "filtered"
	StatusWriteError Status = "write_error"
)

// Outcome pairs a parsed transaction with its status.
type Outcome struct {
	Transaction models.Transaction
	Status      Status
}

// Pipeline imports statements into a ledger. Runs are serialized: the ledger
// has a single writer.
type Pipeline struct {
	mu       sync.Mutex
	store    ledger.Store
	parser   *statement.Parser
	detector *DuplicateDetector
	logger   logging.Logger
	newRunID func() string
}

// NewPipeline creates a Pipeline writing to store.
func NewPipeline(store ledger.Store, parser *statement.Parser, logger logging.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if parser == nil {
		parser = statement.NewParser(nil, logger)
	}
	return &Pipeline{
		store:    store,
		parser:   parser,
		detector: NewDuplicateDetector(logger),
		logger:   logger,
		newRunID: uuid.NewString,
	}
}

// Run imports rows under p. Row parse failures are counted in Errors and
// skipped. Rows outside opts.DateRange are counted in Filtered. With
// opts.Dedup, rows already in the ledger are counted in Duplicates.
//
// Everything is written in one transaction. A failed row write is undone on
// its own and counted in WriteErrors; a failed commit or duplicate query
// aborts the run, and the returned result then has Imported == 0.
func (pl *Pipeline) Run(ctx context.Context, rows []statement.Row, p models.FormatProfile, opts Options) (models.ImportResult, error) {
	result, _, err := pl.process(ctx, rows, p, opts, false)
	return result, err
}

// Preview does everything Run does except commit. Imported counts the rows
// that would be written. The outcomes list every parsed row in file order.
func (pl *Pipeline) Preview(ctx context.Context, rows []statement.Row, p models.FormatProfile, opts Options) (models.ImportResult, []Outcome, error) {
	return pl.process(ctx, rows, p, opts, true)
}

// PrepareProfile fills empty profile columns from the statement header and
// checks that the statement has every required column.
func PrepareProfile(st *statement.Statement, p models.FormatProfile) (models.FormatProfile, error) {
	p = profile.GuessColumns(p, st.Header)
	if err := p.Validate(); err != nil {
		return p, &parsererror.FatalImportError{
			FilePath: st.Path,
			Reason:   "missing column",
			Err:      fmt.Errorf("%w: %v", parsererror.ErrMissingColumn, err),
		}
	}
	if err := statement.ValidateColumns(st.Header, p.RequiredColumns()...); err != nil {
		var fatal *parsererror.FatalImportError
		if errors.As(err, &fatal) {
			fatal.FilePath = st.Path
		}
		return p, err
	}
	return p, nil
}

// ImportStatement prepares the profile for st and runs the import.
func (pl *Pipeline) ImportStatement(ctx context.Context, st *statement.Statement, p models.FormatProfile, opts Options) (models.ImportResult, error) {
	p, err := PrepareProfile(st, p)
	if err != nil {
		pl.logger.WithError(err).Error("Statement rejected", logging.F(logging.FieldFile, st.Path))
		return models.ImportResult{}, err
	}
	return pl.Run(ctx, st.Rows, p, opts)
}

// PreviewStatement is ImportStatement without the commit.
func (pl *Pipeline) PreviewStatement(ctx context.Context, st *statement.Statement, p models.FormatProfile, opts Options) (models.ImportResult, []Outcome, error) {
	p, err := PrepareProfile(st, p)
	if err != nil {
		return models.ImportResult{}, nil, err
	}
	return pl.Preview(ctx, st.Rows, p, opts)
}

// ImportFile reads the statement at path and imports it.
func (pl *Pipeline) ImportFile(ctx context.Context, path string, p models.FormatProfile, opts Options) (models.ImportResult, error) {
	st, err := statement.ReadFile(path, p)
	if err != nil {
		pl.logger.WithError(err).Error("Statement could not be read", logging.F(logging.FieldFile, path))
		return models.ImportResult{}, err
	}
	pl.logger.Debug("Statement decoded",
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldEncoding, st.Encoding),
		logging.F(logging.FieldCount, len(st.Rows)))
	return pl.ImportStatement(ctx, st, p, opts)
}

func (pl *Pipeline) process(ctx context.Context, rows []statement.Row, p models.FormatProfile, opts Options, dryRun bool) (models.ImportResult, []Outcome, error) {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	start := time.Now()
	result := models.ImportResult{RunID: pl.newRunID(), ByCategory: map[string]models.CategoryTotal{}}
	logger := pl.logger.WithFields(
		logging.F(logging.FieldRunID, result.RunID),
		logging.F(logging.FieldProfile, p.Name))

	if err := checkRows(rows, p); err != nil {
		logger.WithError(err).Error("Import aborted before processing rows")
		return result, nil, err
	}
	if err := ctx.Err(); err != nil {
		return result, nil, err
	}

	parsed, rowErrs := pl.parser.ParseAll(rows, p)
	result.Errors = len(rowErrs)

	outcomes := make([]Outcome, 0, len(parsed))
	var candidates []int
	for _, tx := range parsed {
		if opts.DateRange != nil && !opts.DateRange.Contains(tx.Date) {
			result.Filtered++
			outcomes = append(outcomes, Outcome{Transaction: tx, Status: StatusFiltered})
			continue
		}
		candidates = append(candidates, len(outcomes))
		outcomes = append(outcomes, Outcome{Transaction: tx})
	}

	session, err := pl.store.Begin(ctx)
	if err != nil {
		perr := &parsererror.PersistenceError{Operation: "begin", Err: err}
		logger.WithError(perr).Error("Import aborted")
		return result, nil, perr
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := session.Rollback(); rbErr != nil {
				logger.WithError(rbErr).Warn("Rollback failed")
			}
		}
	}()

	abort := func(err error) (models.ImportResult, []Outcome, error) {
		result.Imported = 0
		result.ByCategory = map[string]models.CategoryTotal{}
		logger.WithError(err).Error("Import aborted, no rows written")
		return result, nil, err
	}

	for _, i := range candidates {
		tx := outcomes[i].Transaction
		if err := ctx.Err(); err != nil {
			return abort(err)
		}

		if opts.Dedup {
			dup, err := pl.detector.IsDuplicate(ctx, tx, session)
			if err != nil {
				return abort(&parsererror.PersistenceError{Operation: "duplicate query", Line: tx.Line, Err: err})
			}
			if dup {
				result.Duplicates++
				outcomes[i].Status = StatusDuplicate
				continue
			}
		}

		if _, err := session.InsertExpense(ctx, ledger.ExpenseFromTransaction(tx)); err != nil {
			result.WriteErrors++
			outcomes[i].Status = StatusWriteError
			logger.WithError(&parsererror.PersistenceError{Operation: "insert", Line: tx.Line, Err: err}).
				Warn("Row write failed, continuing", logging.F(logging.FieldRow, tx.Line))
			continue
		}
		result.AddImported(tx)
		outcomes[i].Status = StatusImported
	}

	if !dryRun {
		if err := session.Commit(); err != nil {
			committed = true // the session is finished either way
			return abort(&parsererror.PersistenceError{Operation: "commit", Err: err})
		}
		committed = true
	}

	logger.Info("Import finished",
		logging.F(logging.FieldImported, result.Imported),
		logging.F(logging.FieldDuplicates, result.Duplicates),
		logging.F(logging.FieldErrors, result.Errors),
		logging.F(logging.FieldFiltered, result.Filtered),
		logging.F(logging.FieldWriteErrors, result.WriteErrors),
		logging.F("dry_run", dryRun),
		logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))
	return result, outcomes, nil
}

// checkRows rejects a run whose rows cannot carry the profile's columns.
func checkRows(rows []statement.Row, p models.FormatProfile) error {
	if err := p.Validate(); err != nil {
		return &parsererror.FatalImportError{Reason: "invalid profile", Err: err}
	}
	if len(rows) == 0 {
		return nil
	}
	header := make([]string, 0, len(rows[0].Fields))
	for name := range rows[0].Fields {
		header = append(header, name)
	}
	return statement.ValidateColumns(header, p.RequiredColumns()...)
}
