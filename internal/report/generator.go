// Package report renders import summaries for the terminal or as JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"kakeibo/kakeibo-csv/internal/importer"
	"kakeibo/kakeibo-csv/internal/logging"
	"kakeibo/kakeibo-csv/internal/models"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Summary is everything reported about one imported file.
type Summary struct {
	File     string
	DryRun   bool
	Result   models.ImportResult
	Outcomes []importer.Outcome // listed only for dry runs
}

// ValidateFormat rejects report formats Write does not support.
func ValidateFormat(format string) error {
	switch strings.ToLower(format) {
	case "", FormatText, FormatJSON:
		return nil
	default:
		return fmt.Errorf("unsupported report format: %s", format)
	}
}

// Generator writes summaries.
type Generator struct {
	logger logging.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(logger logging.Logger) *Generator {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Generator{logger: logger}
}

// Write renders summaries to w in the given format.
func (g *Generator) Write(w io.Writer, format string, summaries ...Summary) error {
	if err := ValidateFormat(format); err != nil {
		return err
	}
	switch strings.ToLower(format) {
	case FormatJSON:
		return g.writeJSON(w, summaries)
	default:
		for i, s := range summaries {
			if i > 0 {
				fmt.Fprintln(w)
			}
			writeText(w, s)
		}
		return nil
	}
}

func writeText(w io.Writer, s Summary) {
	r := s.Result
	if s.DryRun {
		fmt.Fprintf(w, "プレビュー (保存されていません): %s\n", s.File)
		fmt.Fprintf(w, "   登録予定: %d件\n", r.Imported)
	} else {
		fmt.Fprintf(w, "インポート完了: %s\n", s.File)
		fmt.Fprintf(w, "   新規登録: %d件\n", r.Imported)
	}
	fmt.Fprintf(w, "   重複スキップ: %d件\n", r.Duplicates)
	fmt.Fprintf(w, "   エラー: %d件\n", r.Errors)
	if r.Filtered > 0 {
		fmt.Fprintf(w, "   期間外: %d件\n", r.Filtered)
	}
	if r.WriteErrors > 0 {
		fmt.Fprintf(w, "   書き込み失敗: %d件\n", r.WriteErrors)
	}

	if r.Imported > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "カテゴリ別登録件数:")
		for _, c := range r.Breakdown() {
			fmt.Fprintf(w, "   %s: %d件 (%s)\n", c.Category, c.Count, Yen(c.Amount))
		}
	}

	if s.DryRun && len(s.Outcomes) > 0 {
		fmt.Fprintln(w)
		for _, o := range s.Outcomes {
			tx := o.Transaction
			fmt.Fprintf(w, "   %s  %-10s %10s  %s  [%s]\n",
				tx.ISODate(), tx.Category, Yen(tx.Amount), tx.Description, o.Status)
		}
	}
}

type jsonRow struct {
	Line        int             `json:"line"`
	Date        string          `json:"date"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
}

type jsonSummary struct {
	File   string              `json:"file"`
	DryRun bool                `json:"dry_run"`
	Result models.ImportResult `json:"result"`
	Rows   []jsonRow           `json:"rows,omitempty"`
}

func (g *Generator) writeJSON(w io.Writer, summaries []Summary) error {
	out := make([]jsonSummary, 0, len(summaries))
	for _, s := range summaries {
		js := jsonSummary{File: s.File, DryRun: s.DryRun, Result: s.Result}
		for _, o := range s.Outcomes {
			js.Rows = append(js.Rows, jsonRow{
				Line:        o.Transaction.Line,
				Date:        o.Transaction.ISODate(),
				Category:    o.Transaction.Category,
				Amount:      o.Transaction.Amount,
				Description: o.Transaction.Description,
				Status:      string(o.Status),
			})
		}
		out = append(out, js)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		g.logger.WithError(err).Error("Failed to encode JSON report")
		return fmt.Errorf("failed to encode JSON report: %w", err)
	}
	return nil
}

// Yen formats an amount with thousands separators, e.g. ¥12,345.
func Yen(amount decimal.Decimal) string {
	if amount.IsInteger() {
		return "¥" + humanize.Comma(amount.IntPart())
	}
	f, _ := amount.Float64()
	return "¥" + humanize.CommafWithDigits(f, 2)
}
