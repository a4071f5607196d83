package categorizer

import (
	"kakeibo/kakeibo-csv/internal/logging"
	"kakeibo/kakeibo-csv/internal/models"
)

// Categorizer classifies transactions against a keyword mapping and logs
// which rule decided each one.
type Categorizer struct {
	logger   logging.Logger
	fallback string
}

// Option configures a Categorizer.
type Option func(*Categorizer)

// WithFallback overrides the category used when no rule matches.
func WithFallback(category string) Option {
	return func(c *Categorizer) {
		if category != "" {
			c.fallback = category
		}
	}
}

// NewCategorizer creates a Categorizer. A nil logger discards output.
func NewCategorizer(logger logging.Logger, opts ...Option) *Categorizer {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	c := &Categorizer{logger: logger, fallback: models.CategoryOther}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fallback returns the category assigned to unmatched descriptions.
func (c *Categorizer) Fallback() string {
	return c.fallback
}

// Categorize returns the category for description under mapping.
func (c *Categorizer) Categorize(description string, mapping models.CategoryMapping) string {
	rule, ok := Match(description, mapping)
	if !ok {
		c.logger.Debug("No keyword matched, using fallback",
			logging.F("description", description),
			logging.F(logging.FieldCategory, c.fallback))
		return c.fallback
	}
	c.logger.Debug("Description categorized by keyword",
		logging.F("description", description),
		logging.F("keyword", rule.Keyword),
		logging.F(logging.FieldCategory, rule.Category))
	return rule.Category
}
