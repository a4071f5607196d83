// Package models provides the data structures used throughout the application.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayoutISO is the layout used for ledger dates.
const DateLayoutISO = "2006-01-02"

// Transaction is one classified statement row, ready to be written to the ledger.
type Transaction struct {
	Line        int             // Physical line in the source file, 0 when unknown
	Date        time.Time       // Calendar date (time of day is always zero)
	Amount      decimal.Decimal // Always a positive magnitude
	Description string          // Original, unnormalized statement text
	SourceTag   string          // Prefix applied when the row is stored, e.g. "クレジットカード: "
	Category    string
}

// ISODate returns the transaction date formatted as yyyy-MM-dd.
func (t Transaction) ISODate() string {
	return t.Date.Format(DateLayoutISO)
}

// LedgerDescription returns the description as it is stored in the ledger,
// with the source tag prepended.
func (t Transaction) LedgerDescription() string {
	return t.SourceTag + t.Description
}
