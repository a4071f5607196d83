package models

import (
	"fmt"
	"strings"
)

// FormatProfile describes how to interpret one CSV export variant.
type FormatProfile struct {
	Name              string          `yaml:"name"`
	Encoding          string          `yaml:"encoding"`
	DateFormat        string          `yaml:"date_format"`
	SkipRows          int             `yaml:"skip_rows"`
	NegateAmount      bool            `yaml:"negate_amount"`
	DateColumn        string          `yaml:"date_column"`
	AmountColumn      string          `yaml:"amount_column"`
	DescriptionColumn string          `yaml:"description_column"`
	SourceTag         string          `yaml:"source_tag"`
	CategoryMapping   CategoryMapping `yaml:"category_mapping"`
}

// RequiredColumns returns the header names a statement must contain.
func (p FormatProfile) RequiredColumns() []string {
	return []string{p.DateColumn, p.AmountColumn, p.DescriptionColumn}
}

// Validate checks that the profile can drive a parse.
func (p FormatProfile) Validate() error {
	if p.SkipRows < 0 {
		return fmt.Errorf("profile %q: skip_rows must not be negative, got %d", p.Name, p.SkipRows)
	}
	if strings.TrimSpace(p.DateFormat) == "" {
		return fmt.Errorf("profile %q: date_format is required", p.Name)
	}
	if strings.TrimSpace(p.Encoding) == "" {
		return fmt.Errorf("profile %q: encoding is required", p.Name)
	}
	for field, col := range map[string]string{
		"date_column":        p.DateColumn,
		"amount_column":      p.AmountColumn,
		"description_column": p.DescriptionColumn,
	} {
		if strings.TrimSpace(col) == "" {
			return fmt.Errorf("profile %q: %s is required", p.Name, field)
		}
	}
	return nil
}

// Clone returns a copy whose category mapping can be modified independently.
func (p FormatProfile) Clone() FormatProfile {
	p.CategoryMapping = p.CategoryMapping.Clone()
	return p
}
