package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"kakeibo/kakeibo-csv/internal/fileutils"
	"kakeibo/kakeibo-csv/internal/logging"
)

// SQLiteStore is the ledger kept in a local SQLite file.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger logging.Logger
}

// OpenSQLite opens (creating if needed) the ledger database at path and
// applies pending migrations.
func OpenSQLite(path string, logger logging.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if err := fileutils.EnsureDirectoryExists(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// single writer; savepoints must stay on the transaction's connection
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(path); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("Ledger opened", logging.F(logging.FieldDatabase, path))
	return &SQLiteStore{db: db, path: path, logger: logger}, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Begin starts a database transaction.
func (s *SQLiteStore) Begin(ctx context.Context) (Session, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &sqliteSession{tx: tx, logger: s.logger}, nil
}

// List returns every stored expense ordered by date, then id.
func (s *SQLiteStore) List(ctx context.Context) ([]Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, category, amount, COALESCE(description, '') FROM expenses ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []Expense
	for rows.Next() {
		var (
			e      Expense
			amount float64
		)
		if err := rows.Scan(&e.ID, &e.Date, &e.Category, &amount, &e.Description); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Amount = decimal.NewFromFloat(amount)
		out = append(out, e)
	}
	return out, rows.Err()
}

type sqliteSession struct {
	tx     *sql.Tx
	logger logging.Logger
	seq    int
	done   bool
}

// InsertExpense runs the insert inside its own savepoint so a failure only
// undoes this row.
func (s *sqliteSession) InsertExpense(ctx context.Context, e Expense) (int64, error) {
	if s.done {
		return 0, ErrSessionClosed
	}
	s.seq++
	sp := fmt.Sprintf("expense_%d", s.seq)

	if _, err := s.tx.ExecContext(ctx, "SAVEPOINT "+sp); err != nil {
		return 0, fmt.Errorf("savepoint: %w", err)
	}

	amount, _ := e.Amount.Float64()
	res, err := s.tx.ExecContext(ctx,
		`INSERT INTO expenses (date, category, amount, description) VALUES (?, ?, ?, ?)`,
		e.Date, e.Category, amount, e.Description)
	if err == nil {
		var id int64
		if id, err = res.LastInsertId(); err == nil {
			if _, err = s.tx.ExecContext(ctx, "RELEASE "+sp); err == nil {
				return id, nil
			}
		}
	}

	if _, rbErr := s.tx.ExecContext(ctx, "ROLLBACK TO "+sp); rbErr != nil {
		s.logger.WithError(rbErr).Error("Failed to roll back to savepoint", logging.F(logging.FieldOperation, sp))
	} else if _, relErr := s.tx.ExecContext(ctx, "RELEASE "+sp); relErr != nil {
		s.logger.WithError(relErr).Warn("Failed to release savepoint", logging.F(logging.FieldOperation, sp))
	}
	return 0, fmt.Errorf("insert expense: %w", err)
}

// HasDuplicate uses instr so the description match is a plain, case-sensitive
// substring test with no LIKE wildcards to escape.
func (s *sqliteSession) HasDuplicate(ctx context.Context, q DuplicateQuery) (bool, error) {
	if s.done {
		return false, ErrSessionClosed
	}
	amount, _ := q.Amount.Float64()

	var n int
	err := s.tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM expenses
		 WHERE date = ? AND category = ? AND amount = ? AND instr(COALESCE(description, ''), ?) > 0`,
		q.Date, q.Category, amount, q.DescriptionSubstring).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query duplicate: %w", err)
	}
	return n > 0, nil
}

func (s *sqliteSession) Commit() error {
	if s.done {
		return ErrSessionClosed
	}
	s.done = true
	if err := s.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *sqliteSession) Rollback() error {
	if s.done {
		return nil
	}
	s.done = true
	if err := s.tx.Rollback(); err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}
