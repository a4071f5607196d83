// Package categorizer assigns spending categories to statement descriptions
// using ordered keyword rules.
package categorizer

import (
	"kakeibo/kakeibo-csv/internal/models"
	"kakeibo/kakeibo-csv/internal/textnorm"
)

// Match returns the first rule, in insertion order, whose keyword occurs in
// the normalized description. Keywords are normalized before comparison too,
// so rules typed with full-width or upper-case text still match.
func Match(description string, mapping models.CategoryMapping) (models.CategoryRule, bool) {
	normalized := textnorm.Normalize(description)
	if normalized == "" {
		return models.CategoryRule{}, false
	}
	for _, rule := range mapping.Rules() {
		if textnorm.Contains(normalized, rule.Keyword) {
			return rule, true
		}
	}
	return models.CategoryRule{}, false
}

// Classify returns the category of the first matching rule, or
// models.CategoryOther when nothing matches.
func Classify(description string, mapping models.CategoryMapping) string {
	if rule, ok := Match(description, mapping); ok {
		return rule.Category
	}
	return models.CategoryOther
}
