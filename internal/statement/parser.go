package statement

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"kakeibo/kakeibo-csv/internal/categorizer"
	"kakeibo/kakeibo-csv/internal/dateutils"
	"kakeibo/kakeibo-csv/internal/logging"
	"kakeibo/kakeibo-csv/internal/models"
	"kakeibo/kakeibo-csv/internal/parsererror"
)

// Field names reported in RowParseError.
const (
	FieldDate        = "date"
	FieldAmount      = "amount"
	FieldDescription = "description"
)

var (
	errZeroAmount   = errors.New("amount is zero")
	errEmptyValue   = errors.New("value is empty")
	amountStripping = strings.NewReplacer(",", "", "円", "", "¥", "", "￥", "", " ", "", "　", "")
)

// ParseAmount parses a statement amount such as "1,200", "-3,500円" or
// "￥980" and returns its non-negative magnitude. negate flips the sign
// before the magnitude is taken. Zero is rejected.
func ParseAmount(raw string, negate bool) (decimal.Decimal, error) {
	cleaned := amountStripping.Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return decimal.Zero, errEmptyValue
	}
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("not a number: %w", err)
	}
	if negate {
		amount = amount.Neg()
	}
	amount = amount.Abs()
	if amount.IsZero() {
		return decimal.Zero, errZeroAmount
	}
	return amount, nil
}

// Parser converts statement rows into classified transactions.
type Parser struct {
	categorizer *categorizer.Categorizer
	logger      logging.Logger
}

// NewParser creates a Parser. A nil categorizer classifies with the default
// fallback; a nil logger discards output.
func NewParser(c *categorizer.Categorizer, logger logging.Logger) *Parser {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if c == nil {
		c = categorizer.NewCategorizer(logger)
	}
	return &Parser{categorizer: c, logger: logger}
}

// Parse converts one row under profile. A bad date or amount yields a
// *parsererror.RowParseError; the caller skips the row and carries on.
func (p *Parser) Parse(row Row, profile models.FormatProfile) (models.Transaction, error) {
	rawDate := row.Get(profile.DateColumn)
	date, err := dateutils.Parse(rawDate, profile.DateFormat)
	if err != nil {
		return models.Transaction{}, &parsererror.RowParseError{Line: row.Line, Field: FieldDate, Value: rawDate, Err: err}
	}

	rawAmount := row.Get(profile.AmountColumn)
	amount, err := ParseAmount(rawAmount, profile.NegateAmount)
	if err != nil {
		return models.Transaction{}, &parsererror.RowParseError{Line: row.Line, Field: FieldAmount, Value: rawAmount, Err: err}
	}

	description := row.Get(profile.DescriptionColumn)

	tx := models.Transaction{
		Line:        row.Line,
		Date:        date,
		Amount:      amount,
		Description: description,
		SourceTag:   profile.SourceTag,
		Category:    p.categorizer.Categorize(description, profile.CategoryMapping),
	}
	return tx, nil
}

// ParseAll parses every row, returning the transactions and the row errors
// separately.
func (p *Parser) ParseAll(rows []Row, profile models.FormatProfile) ([]models.Transaction, []error) {
	var (
		txs  []models.Transaction
		errs []error
	)
	for _, row := range rows {
		tx, err := p.Parse(row, profile)
		if err != nil {
			p.logger.WithError(err).Warn("Skipping unparsable row",
				logging.F(logging.FieldRow, row.Line))
			errs = append(errs, err)
			continue
		}
		txs = append(txs, tx)
	}
	return txs, errs
}
