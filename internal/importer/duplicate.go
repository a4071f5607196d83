package importer

import (
	"context"

	"kakeibo/kakeibo-csv/internal/ledger"
	"kakeibo/kakeibo-csv/internal/logging"
	"kakeibo/kakeibo-csv/internal/models"
)

// DuplicateLookup is the query side of the ledger.
type DuplicateLookup interface {
	HasDuplicate(ctx context.Context, q ledger.DuplicateQuery) (bool, error)
}

// DuplicateDetector decides whether a transaction is already in the ledger:
// same date, category and amount, with a stored description containing the
// transaction's untagged description.
type DuplicateDetector struct {
	logger logging.Logger
}

// NewDuplicateDetector creates a DuplicateDetector.
func NewDuplicateDetector(logger logging.Logger) *DuplicateDetector {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &DuplicateDetector{logger: logger}
}

// IsDuplicate checks tx against lookup. Rows written earlier through the same
// session are part of what lookup sees.
func (d *DuplicateDetector) IsDuplicate(ctx context.Context, tx models.Transaction, lookup DuplicateLookup) (bool, error) {
	dup, err := lookup.HasDuplicate(ctx, ledger.DuplicateQueryFor(tx))
	if err != nil {
		return false, err
	}
	if dup {
		d.logger.Debug("Duplicate transaction skipped",
			logging.F(logging.FieldRow, tx.Line),
			logging.F("date", tx.ISODate()),
			logging.F("description", tx.Description),
			logging.F(logging.FieldCategory, tx.Category))
	}
	return dup, nil
}
