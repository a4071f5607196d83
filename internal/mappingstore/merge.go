package mappingstore

import (
	"strings"

	"kakeibo/kakeibo-csv/internal/models"
	"kakeibo/kakeibo-csv/internal/textnorm"
)

// MergeOrReplace returns loaded when replace is set. Otherwise it returns
// existing with every entry of loaded set on top: colliding keywords take the
// loaded category in their existing position, new keywords are appended in
// loaded order. Neither input is modified.
func MergeOrReplace(existing, loaded models.CategoryMapping, replace bool) models.CategoryMapping {
	if replace {
		return loaded.Clone()
	}
	out := existing.Clone()
	for _, r := range loaded.Rules() {
		out.Set(r.Keyword, r.Category)
	}
	return out
}

// BulkAdd parses text one "keyword,category" per line, splitting on the first
// comma. A line is rejected when it has no comma, when either side is empty
// after trimming, or when the category is not in valid. Blank lines are
// ignored. Accepted keywords are normalized before insertion.
func BulkAdd(existing models.CategoryMapping, text string, valid models.CategorySet) (models.CategoryMapping, int, int) {
	out := existing.Clone()
	added, rejected := 0, 0

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		keyword, category, ok := strings.Cut(line, ",")
		keyword = textnorm.Normalize(strings.TrimSpace(keyword))
		category = strings.TrimSpace(category)
		if !ok || keyword == "" || category == "" || !valid.Has(category) {
			rejected++
			continue
		}
		out.Set(keyword, category)
		added++
	}
	return out, added, rejected
}
