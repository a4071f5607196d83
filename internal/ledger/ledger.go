// Package ledger is the persisted store of expense records the importer
// writes into.
package ledger

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"kakeibo/kakeibo-csv/internal/models"
)

// ErrSessionClosed is returned when a session is used after Commit or Rollback.
var ErrSessionClosed = errors.New("ledger session already closed")

// Expense is one ledger row. ID is assigned by the store.
type Expense struct {
	ID          int64
	Date        string // yyyy-MM-dd
	Category    string
	Amount      decimal.Decimal
	Description string
}

// ExpenseFromTransaction builds the row stored for tx.
func ExpenseFromTransaction(tx models.Transaction) Expense {
	return Expense{
		Date:        tx.ISODate(),
		Category:    tx.Category,
		Amount:      tx.Amount,
		Description: tx.LedgerDescription(),
	}
}

// DuplicateQuery selects rows with the same date, category and amount whose
// description contains DescriptionSubstring.
type DuplicateQuery struct {
	Date                 string
	Category             string
	Amount               decimal.Decimal
	DescriptionSubstring string
}

// DuplicateQueryFor builds the query matching tx against stored rows. The
// untagged description is used so rows stored under another source tag
// still match.
func DuplicateQueryFor(tx models.Transaction) DuplicateQuery {
	return DuplicateQuery{
		Date:                 tx.ISODate(),
		Category:             tx.Category,
		Amount:               tx.Amount,
		DescriptionSubstring: tx.Description,
	}
}

// Store opens write sessions on the ledger.
type Store interface {
	// Begin starts a session. Everything written through it becomes visible
	// to other sessions only after Commit.
	Begin(ctx context.Context) (Session, error)
	Close() error
}

// Session is one unit of work. Rows inserted through a session are visible
// to its own HasDuplicate calls before Commit.
type Session interface {
	// InsertExpense writes e and returns its id. A failed insert leaves the
	// session usable and the earlier inserts intact.
	InsertExpense(ctx context.Context, e Expense) (int64, error)
	HasDuplicate(ctx context.Context, q DuplicateQuery) (bool, error)
	Commit() error
	// Rollback discards the session. It is a no-op after Commit.
	Rollback() error
}
