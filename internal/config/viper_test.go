package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kakeibo/kakeibo-csv/internal/models"
)

func TestInitializeConfig_Defaults(t *testing.T) {
	clearTestEnvVars(t)

	config, err := InitializeConfig("")
	require.NoError(t, err)

	assert.Equal(t, "info", config.Log.Level)
	assert.Equal(t, "text", config.Log.Format)
	assert.Equal(t, "budget.db", config.Database.Path)
	assert.Equal(t, "rakuten", config.Import.Profile)
	assert.True(t, config.Import.Dedup)
	assert.Equal(t, models.DefaultSourceTag, config.Import.SourceTag)
	assert.Empty(t, config.Import.ProfilesFile)
	assert.Equal(t, "category_mapping.json", config.Mapping.File)
	assert.Equal(t, "default", config.Mapping.Name)
	assert.Equal(t, models.DefaultCategories, config.Categories)
}

func TestInitializeConfig_EnvironmentVariables(t *testing.T) {
	clearTestEnvVars(t)

	t.Setenv("KAKEIBO_LOG_LEVEL", "debug")
	t.Setenv("KAKEIBO_LOG_FORMAT", "json")
	t.Setenv("KAKEIBO_DATABASE_PATH", "/tmp/other.db")
	t.Setenv("KAKEIBO_IMPORT_DEDUP", "false")
	t.Setenv("KAKEIBO_IMPORT_PROFILE", "other")
	t.Setenv("KAKEIBO_CATEGORIES", "食費, 交通費")

	config, err := InitializeConfig("")
	require.NoError(t, err)

	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, "json", config.Log.Format)
	assert.Equal(t, "/tmp/other.db", config.Database.Path)
	assert.False(t, config.Import.Dedup)
	assert.Equal(t, "other", config.Import.Profile)
	assert.Equal(t, []string{"食費", "交通費"}, config.Categories)
}

func TestInitializeConfig_ConfigFile(t *testing.T) {
	clearTestEnvVars(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "kakeibo.yaml")
	content := `
log:
  level: warn
database:
  path: household.db
import:
  source_tag: "カード: "
  profiles_file: profiles.yaml
mapping:
  name: family
categories:
  - 食費
  - 日用品
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	config, err := InitializeConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", config.Log.Level)
	assert.Equal(t, "text", config.Log.Format)
	assert.Equal(t, "household.db", config.Database.Path)
	assert.Equal(t, "カード: ", config.Import.SourceTag)
	assert.Equal(t, "profiles.yaml", config.Import.ProfilesFile)
	assert.Equal(t, "family", config.Mapping.Name)
	assert.Equal(t, []string{"食費", "日用品"}, config.Categories)
}

func TestInitializeConfig_EnvOverridesFile(t *testing.T) {
	clearTestEnvVars(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  path: file.db\n"), 0600))
	t.Setenv("KAKEIBO_DATABASE_PATH", "env.db")

	config, err := InitializeConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "env.db", config.Database.Path)
}

func TestInitializeConfig_MissingExplicitFile(t *testing.T) {
	clearTestEnvVars(t)

	_, err := InitializeConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_BoundViper(t *testing.T) {
	clearTestEnvVars(t)

	v := viper.New()
	v.Set("database.path", "flag.db")

	config, err := Load(v, "")
	require.NoError(t, err)
	assert.Equal(t, "flag.db", config.Database.Path)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		c := &Config{Categories: []string{"食費"}}
		c.Log.Level = "info"
		c.Log.Format = "text"
		c.Database.Path = "budget.db"
		c.Import.Profile = "rakuten"
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "bad level", mutate: func(c *Config) { c.Log.Level = "loud" }, wantErr: "invalid log level"},
		{name: "bad format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: "invalid log format"},
		{name: "empty database", mutate: func(c *Config) { c.Database.Path = " " }, wantErr: "database.path"},
		{name: "empty profile", mutate: func(c *Config) { c.Import.Profile = "" }, wantErr: "import.profile"},
		{name: "no categories", mutate: func(c *Config) { c.Categories = nil }, wantErr: "at least one category"},
		{name: "blank category", mutate: func(c *Config) { c.Categories = []string{"食費", " "} }, wantErr: "empty names"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := validateConfig(c)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_ValidCategories(t *testing.T) {
	c := &Config{Categories: []string{"食費", "交通費"}}
	set := c.ValidCategories()
	assert.True(t, set.Has("食費"))
	assert.True(t, set.Has("交通費"))
	assert.False(t, set.Has("娯楽"))
}

func TestLoadEnv(t *testing.T) {
	clearTestEnvVars(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("KAKEIBO_LOG_LEVEL=error\n"), 0600))
	t.Chdir(dir)

	loaded, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, ".env", loaded)
	assert.Equal(t, "error", os.Getenv("KAKEIBO_LOG_LEVEL"))
	t.Cleanup(func() { _ = os.Unsetenv("KAKEIBO_LOG_LEVEL") })
}

func TestLoadEnv_NoFile(t *testing.T) {
	t.Chdir(t.TempDir())

	loaded, err := LoadEnv()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestNewLogger(t *testing.T) {
	c := &Config{}
	c.Log.Level = "debug"
	c.Log.Format = "json"
	assert.NotNil(t, NewLogger(c))
}

// clearTestEnvVars isolates a test from KAKEIBO_* variables and any
// config.yaml under the real home directory.
func clearTestEnvVars(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{
		"KAKEIBO_LOG_LEVEL",
		"KAKEIBO_LOG_FORMAT",
		"KAKEIBO_DATABASE_PATH",
		"KAKEIBO_IMPORT_PROFILE",
		"KAKEIBO_IMPORT_DEDUP",
		"KAKEIBO_IMPORT_SOURCE_TAG",
		"KAKEIBO_IMPORT_PROFILES_FILE",
		"KAKEIBO_MAPPING_FILE",
		"KAKEIBO_MAPPING_NAME",
		"KAKEIBO_CATEGORIES",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}
