// Package profile holds the built-in statement FormatProfiles and loads
// additional ones from a YAML file.
package profile

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"kakeibo/kakeibo-csv/internal/categorizer"
	"kakeibo/kakeibo-csv/internal/fileutils"
	"kakeibo/kakeibo-csv/internal/models"
	"kakeibo/kakeibo-csv/internal/textnorm"
)

// Built-in profile names.
const (
	NameRakuten = "rakuten"
	NameOther   = "other"
)

// Defaults shared by the built-in profiles.
const (
	DefaultEncoding   = "utf-8-sig"
	DefaultDateFormat = "%Y/%m/%d"
)

// ErrUnknownProfile is returned when a profile name is not registered.
var ErrUnknownProfile = errors.New("unknown profile")

// Rakuten is the common credit card profile: Rakuten Card's e-NAVI export.
func Rakuten(sourceTag string) models.FormatProfile {
	return models.FormatProfile{
		Name:              NameRakuten,
		Encoding:          DefaultEncoding,
		DateFormat:        DefaultDateFormat,
		DateColumn:        "利用日",
		AmountColumn:      "利用金額",
		DescriptionColumn: "利用店名・商品名",
		SourceTag:         sourceTag,
		CategoryMapping:   categorizer.DefaultRules(),
	}
}

// Other is the user-specified profile. Its columns start empty and are
// either set explicitly or filled by GuessColumns.
func Other(sourceTag string) models.FormatProfile {
	return models.FormatProfile{
		Name:       NameOther,
		Encoding:   DefaultEncoding,
		DateFormat: DefaultDateFormat,
		SourceTag:  sourceTag,
	}
}

// Registry is a named set of profiles.
type Registry struct {
	sourceTag string
	profiles  map[string]models.FormatProfile
}

// NewRegistry returns a registry holding the built-in profiles.
func NewRegistry(sourceTag string) *Registry {
	r := &Registry{sourceTag: sourceTag, profiles: make(map[string]models.FormatProfile)}
	r.profiles[NameRakuten] = Rakuten(sourceTag)
	r.profiles[NameOther] = Other(sourceTag)
	return r
}

// Get returns a copy of the named profile. Names are case-insensitive.
func (r *Registry) Get(name string) (models.FormatProfile, error) {
	p, ok := r.profiles[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return models.FormatProfile{}, fmt.Errorf("%w: %q (available: %s)",
			ErrUnknownProfile, name, strings.Join(r.Names(), ", "))
	}
	return p.Clone(), nil
}

// Register adds or replaces a profile. Mapping keywords are normalized.
func (r *Registry) Register(p models.FormatProfile) error {
	name := strings.ToLower(strings.TrimSpace(p.Name))
	if name == "" {
		return fmt.Errorf("profile name is required")
	}
	if p.SkipRows < 0 {
		return fmt.Errorf("profile %q: skip_rows must not be negative", p.Name)
	}
	p.Name = name
	p.CategoryMapping = NormalizeMapping(p.CategoryMapping)
	r.profiles[name] = p
	return nil
}

// Names returns the registered profile names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.profiles))
	for n := range r.profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

type profilesFile struct {
	Profiles []yaml.Node `yaml:"profiles"`
}

// LoadFile reads a YAML document of the form
//
//	profiles:
//	  - name: smbc
//	    encoding: shift_jis
//	    date_format: "%Y/%m/%d"
//	    date_column: ご利用日
//	    ...
//
// and registers every profile in it. Fields a profile omits keep the
// values of the "other" profile, or of the profile named in "base".
func (r *Registry) LoadFile(path string) error {
	data, err := fileutils.ReadFile(path)
	if err != nil {
		return err
	}

	var doc profilesFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse profiles file %s: %w", path, err)
	}

	for i := range doc.Profiles {
		node := &doc.Profiles[i]

		var header struct {
			Base string `yaml:"base"`
		}
		if err := node.Decode(&header); err != nil {
			return fmt.Errorf("profiles file %s, entry %d: %w", path, i+1, err)
		}

		p := Other(r.sourceTag)
		if header.Base != "" {
			if p, err = r.Get(header.Base); err != nil {
				return fmt.Errorf("profiles file %s, entry %d: %w", path, i+1, err)
			}
		}
		// decoding over p keeps the base values for absent keys
		if err := node.Decode(&p); err != nil {
			return fmt.Errorf("profiles file %s, entry %d: %w", path, i+1, err)
		}
		if err := r.Register(p); err != nil {
			return fmt.Errorf("profiles file %s: %w", path, err)
		}
	}
	return nil
}

// NormalizeMapping returns mapping with every keyword normalized. When two
// keywords collapse to the same form the first position and last category win.
func NormalizeMapping(mapping models.CategoryMapping) models.CategoryMapping {
	var out models.CategoryMapping
	for _, rule := range mapping.Rules() {
		keyword := textnorm.Normalize(strings.TrimSpace(rule.Keyword))
		if keyword == "" {
			continue
		}
		out.Set(keyword, rule.Category)
	}
	return out
}
