package profile

import (
	"strings"

	"kakeibo/kakeibo-csv/internal/models"
	"kakeibo/kakeibo-csv/internal/textnorm"
)

// Header hints per field, in priority order.
var (
	dateHints        = []string{"利用日", "ご利用日", "日付", "取引日", "date"}
	amountHints      = []string{"利用金額", "ご利用金額", "金額", "支払", "出金", "amount"}
	descriptionHints = []string{"利用店名", "ご利用店名", "摘要", "内容", "店名", "description", "merchant", "store"}
)

// GuessColumns fills the empty column names of p from header. A column that
// is already set is left alone; a field with no matching header stays empty.
func GuessColumns(p models.FormatProfile, header []string) models.FormatProfile {
	used := make(map[string]bool)
	for _, c := range p.RequiredColumns() {
		if c != "" {
			used[c] = true
		}
	}

	fill := func(current string, hints []string) string {
		if current != "" {
			return current
		}
		if col := guess(header, hints, used); col != "" {
			used[col] = true
			return col
		}
		return ""
	}

	p.DateColumn = fill(p.DateColumn, dateHints)
	p.AmountColumn = fill(p.AmountColumn, amountHints)
	p.DescriptionColumn = fill(p.DescriptionColumn, descriptionHints)
	return p
}

func guess(header, hints []string, used map[string]bool) string {
	for _, hint := range hints {
		h := textnorm.Normalize(hint)
		for _, col := range header {
			if used[col] {
				continue
			}
			if strings.Contains(textnorm.Normalize(strings.TrimSpace(col)), h) {
				return col
			}
		}
	}
	return ""
}
