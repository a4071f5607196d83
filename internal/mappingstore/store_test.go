package mappingstore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kakeibo/kakeibo-csv/internal/logging"
	"kakeibo/kakeibo-csv/internal/models"
	"kakeibo/kakeibo-csv/internal/parsererror"
)

func sampleMapping() models.CategoryMapping {
	return models.NewCategoryMapping(
		models.CategoryRule{Keyword: "コンビニ", Category: "食費"},
		models.CategoryRule{Keyword: "電車", Category: "交通費"},
	)
}

func TestStore_RoundTrip(t *testing.T) {
	for _, ext := range []string{".json", ".csv", ".yaml", ".yml"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "household"+ext)
			s := NewStore(nil)

			require.NoError(t, s.Save(path, Document{Name: "household", CategoryMapping: sampleMapping()}))
			doc, err := s.Load(path)
			require.NoError(t, err)

			assert.Equal(t, sampleMapping().ToMap(), doc.CategoryMapping.ToMap())
			assert.Equal(t, "household", doc.Name)
			// every format keeps insertion order
			assert.Equal(t, []string{"コンビニ", "電車"}, doc.CategoryMapping.Keys())
		})
	}
}

func TestStore_SaveJSONIsReadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.json")
	require.NoError(t, NewStore(nil).Save(path, Document{Name: "家計簿", CategoryMapping: sampleMapping()}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name": "家計簿"`)
	assert.Contains(t, string(data), `"コンビニ": "食費"`)
}

func TestStore_SaveCSVHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mapping.csv")
	require.NoError(t, NewStore(nil).Save(path, Document{CategoryMapping: sampleMapping()}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "keyword,category\nコンビニ,食費\n電車,交通費\n", string(data))

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, NewStore(nil).Save(empty, Document{}))
	doc, err := NewStore(nil).Load(empty)
	require.NoError(t, err)
	assert.Equal(t, 0, doc.CategoryMapping.Len())
}

func TestStore_LoadCSVWithBOMAndExtraColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.csv")
	content := "\ufeffcategory,note,keyword\n食費,,ローソン\n交通費,JR,電車\n,,\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	doc, err := NewStore(nil).Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"ローソン", "電車"}, doc.CategoryMapping.Keys())
	assert.Equal(t, "mapping", doc.Name)
}

func TestStore_LoadFormatErrors(t *testing.T) {
	tests := []struct {
		name       string
		file       string
		content    string
		missingKey bool
	}{
		{"json without key", "m.json", `{"name":"x","mapping":{}}`, true},
		{"json null mapping", "m.json", `{"category_mapping":null}`, true},
		{"json not an object", "m.json", `{"category_mapping":["a"]}`, false},
		{"json broken", "m.json", `{"category_mapping":`, false},
		{"csv wrong header", "m.csv", "word,cat\na,b\n", true},
		{"csv empty", "m.csv", "", true},
		{"yaml without key", "m.yaml", "name: x\n", true},
		{"yaml list", "m.yaml", "category_mapping:\n  - a\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0600))

			_, err := NewStore(nil).Load(path)
			require.Error(t, err)
			var mfe *parsererror.MappingFormatError
			require.True(t, errors.As(err, &mfe), "got %T: %v", err, err)
			assert.Equal(t, path, mfe.FilePath)
			assert.Equal(t, tt.missingKey, errors.Is(err, parsererror.ErrMissingMappingKey))
		})
	}
}

func TestStore_UnsupportedExtension(t *testing.T) {
	s := NewStore(nil)
	assert.Error(t, s.Save(filepath.Join(t.TempDir(), "m.txt"), Document{}))
	_, err := s.Load("m.xlsx")
	assert.Error(t, err)
}

func TestStore_LogsSave(t *testing.T) {
	logger := logging.NewMockLogger()
	path := filepath.Join(t.TempDir(), "m.yaml")
	require.NoError(t, NewStore(logger).Save(path, Document{CategoryMapping: sampleMapping()}))

	entries := logger.GetEntriesByLevel("INFO")
	require.Len(t, entries, 1)
	count, _ := entries[0].FieldValue(logging.FieldCount)
	assert.Equal(t, 2, count)
}
