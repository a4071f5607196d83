// Package mappingstore saves and loads keyword -> category tables and merges
// them into an in-memory mapping.
package mappingstore

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"

	"kakeibo/kakeibo-csv/internal/fileutils"
	"kakeibo/kakeibo-csv/internal/logging"
	"kakeibo/kakeibo-csv/internal/models"
	"kakeibo/kakeibo-csv/internal/parsererror"
)

// Format is a mapping file format, chosen by file extension.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// FormatFromPath returns the format implied by the extension of path.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatCSV, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported mapping file extension %q (want .json, .csv, .yaml or .yml)", filepath.Ext(path))
	}
}

// Document is the content of a mapping file.
type Document struct {
	Name            string                 `json:"name" yaml:"name"`
	CategoryMapping models.CategoryMapping `json:"category_mapping" yaml:"category_mapping"`
}

// Store reads and writes mapping files.
type Store struct {
	logger logging.Logger
}

// NewStore creates a Store.
func NewStore(logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Store{logger: logger}
}

// Save writes doc to path. JSON and YAML keep the name; CSV holds only the
// keyword,category rows.
func (s *Store) Save(path string, doc Document) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	var data []byte
	switch format {
	case FormatJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode mapping: %w", err)
		}
		data = buf.Bytes()
	case FormatCSV:
		rules := doc.CategoryMapping.Rules()
		if len(rules) == 0 {
			data = []byte("keyword,category\n")
			break
		}
		if data, err = gocsv.MarshalBytes(&rules); err != nil {
			return fmt.Errorf("encode mapping: %w", err)
		}
	case FormatYAML:
		if data, err = yaml.Marshal(doc); err != nil {
			return fmt.Errorf("encode mapping: %w", err)
		}
	}

	if err := fileutils.WriteFile(path, data, models.PermissionReportFile); err != nil {
		return err
	}
	s.logger.Info("Category mapping saved",
		logging.F(logging.FieldMapping, path),
		logging.F(logging.FieldCount, doc.CategoryMapping.Len()))
	return nil
}

// Load reads a mapping file. A missing category_mapping key or missing
// keyword/category columns yields a *parsererror.MappingFormatError.
func (s *Store) Load(path string) (Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Document{}, err
	}
	data, err := fileutils.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	var doc Document
	switch format {
	case FormatJSON:
		doc, err = decodeJSON(data)
	case FormatCSV:
		doc, err = decodeCSV(data)
		doc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	case FormatYAML:
		doc, err = decodeYAML(data)
	}
	if err != nil {
		var mfe *parsererror.MappingFormatError
		if errors.As(err, &mfe) {
			mfe.FilePath = path
			mfe.Format = string(format)
			return Document{}, mfe
		}
		return Document{}, &parsererror.MappingFormatError{FilePath: path, Format: string(format), Msg: "malformed file", Err: err}
	}

	s.logger.Debug("Category mapping loaded",
		logging.F(logging.FieldMapping, path),
		logging.F(logging.FieldCount, doc.CategoryMapping.Len()))
	return doc, nil
}

func missingKey(msg string) error {
	return &parsererror.MappingFormatError{Msg: msg, Err: parsererror.ErrMissingMappingKey}
}

func decodeJSON(data []byte) (Document, error) {
	var raw struct {
		Name            string                  `json:"name"`
		CategoryMapping *models.CategoryMapping `json:"category_mapping"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Document{}, err
	}
	if raw.CategoryMapping == nil {
		return Document{}, missingKey(`"category_mapping" key not found`)
	}
	return Document{Name: raw.Name, CategoryMapping: *raw.CategoryMapping}, nil
}

func decodeYAML(data []byte) (Document, error) {
	var raw struct {
		Name            string                  `yaml:"name"`
		CategoryMapping *models.CategoryMapping `yaml:"category_mapping"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Document{}, err
	}
	if raw.CategoryMapping == nil {
		return Document{}, missingKey(`"category_mapping" key not found`)
	}
	return Document{Name: raw.Name, CategoryMapping: *raw.CategoryMapping}, nil
}

func decodeCSV(data []byte) (Document, error) {
	header, err := csv.NewReader(bytes.NewReader(data)).Read()
	if err == io.EOF {
		return Document{}, missingKey("empty file, header keyword,category expected")
	}
	if err != nil {
		return Document{}, err
	}
	present := map[string]bool{}
	for _, h := range header {
		present[strings.TrimSpace(h)] = true
	}
	if !present["keyword"] || !present["category"] {
		return Document{}, missingKey(fmt.Sprintf("header must contain keyword and category, got %s", strings.Join(header, ",")))
	}

	var rules []*models.CategoryRule
	if err := gocsv.UnmarshalBytes(data, &rules); err != nil {
		return Document{}, err
	}

	var m models.CategoryMapping
	for _, r := range rules {
		keyword := strings.TrimSpace(r.Keyword)
		if keyword == "" {
			continue
		}
		m.Set(keyword, strings.TrimSpace(r.Category))
	}
	return Document{CategoryMapping: m}, nil
}
