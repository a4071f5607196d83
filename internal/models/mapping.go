package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// CategoryRule maps a normalized keyword to a category name.
type CategoryRule struct {
	Keyword  string `csv:"keyword" json:"keyword" yaml:"keyword"`
	Category string `csv:"category" json:"category" yaml:"category"`
}

// CategoryMapping is an ordered keyword -> category table. Keywords are unique;
// overwriting a keyword keeps its original position. Classification walks the
// rules in insertion order, so the order is part of the mapping's meaning.
//
// The zero value is an empty mapping ready to use.
type CategoryMapping struct {
	rules []CategoryRule
}

// NewCategoryMapping builds a mapping from rules in the given order. A later
// rule with an already-seen keyword overwrites the earlier category in place.
func NewCategoryMapping(rules ...CategoryRule) CategoryMapping {
	var m CategoryMapping
	for _, r := range rules {
		m.Set(r.Keyword, r.Category)
	}
	return m
}

// Len returns the number of rules.
func (m CategoryMapping) Len() int {
	return len(m.rules)
}

// Rules returns a copy of the rules in insertion order.
func (m CategoryMapping) Rules() []CategoryRule {
	out := make([]CategoryRule, len(m.rules))
	copy(out, m.rules)
	return out
}

// Keys returns the keywords in insertion order.
func (m CategoryMapping) Keys() []string {
	keys := make([]string, len(m.rules))
	for i, r := range m.rules {
		keys[i] = r.Keyword
	}
	return keys
}

// Get returns the category for keyword.
func (m CategoryMapping) Get(keyword string) (string, bool) {
	if i := m.indexOf(keyword); i >= 0 {
		return m.rules[i].Category, true
	}
	return "", false
}

// Set inserts keyword at the end or overwrites its category in place.
func (m *CategoryMapping) Set(keyword, category string) {
	if i := m.indexOf(keyword); i >= 0 {
		m.rules[i].Category = category
		return
	}
	m.rules = append(m.rules, CategoryRule{Keyword: keyword, Category: category})
}

// Delete removes keyword, reporting whether it was present.
func (m *CategoryMapping) Delete(keyword string) bool {
	i := m.indexOf(keyword)
	if i < 0 {
		return false
	}
	m.rules = append(m.rules[:i:i], m.rules[i+1:]...)
	return true
}

// Clone returns an independent copy.
func (m CategoryMapping) Clone() CategoryMapping {
	return CategoryMapping{rules: m.Rules()}
}

// Equal reports whether both mappings hold the same rules in the same order.
func (m CategoryMapping) Equal(other CategoryMapping) bool {
	if len(m.rules) != len(other.rules) {
		return false
	}
	for i := range m.rules {
		if m.rules[i] != other.rules[i] {
			return false
		}
	}
	return true
}

// ToMap returns the mapping as an unordered Go map.
func (m CategoryMapping) ToMap() map[string]string {
	out := make(map[string]string, len(m.rules))
	for _, r := range m.rules {
		out[r.Keyword] = r.Category
	}
	return out
}

func (m CategoryMapping) indexOf(keyword string) int {
	for i, r := range m.rules {
		if r.Keyword == keyword {
			return i
		}
	}
	return -1
}

// MarshalJSON encodes the mapping as a JSON object, keys in insertion order.
func (m CategoryMapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, r := range m.rules {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(r.Keyword)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.Category)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object of string values, keeping document order.
func (m *CategoryMapping) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("category mapping must be a JSON object")
	}

	var out CategoryMapping
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		keyword, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected key %v in category mapping", tok)
		}
		var category string
		if err := dec.Decode(&category); err != nil {
			return fmt.Errorf("category for keyword %q: %w", keyword, err)
		}
		out.Set(keyword, category)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*m = out
	return nil
}

// MarshalYAML encodes the mapping as a YAML mapping node, keys in insertion order.
func (m CategoryMapping) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, r := range m.rules {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: r.Keyword},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: r.Category},
		)
	}
	return node, nil
}

// UnmarshalYAML decodes a YAML mapping of strings, keeping document order.
func (m *CategoryMapping) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("category mapping must be a YAML mapping (line %d)", value.Line)
	}
	var out CategoryMapping
	for i := 0; i+1 < len(value.Content); i += 2 {
		var keyword, category string
		if err := value.Content[i].Decode(&keyword); err != nil {
			return err
		}
		if err := value.Content[i+1].Decode(&category); err != nil {
			return fmt.Errorf("category for keyword %q: %w", keyword, err)
		}
		out.Set(keyword, category)
	}
	*m = out
	return nil
}

// CategorySet is a set of valid category names.
type CategorySet map[string]struct{}

// NewCategorySet builds a set from names.
func NewCategorySet(names ...string) CategorySet {
	s := make(CategorySet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Has reports whether name is in the set.
func (s CategorySet) Has(name string) bool {
	_, ok := s[name]
	return ok
}
