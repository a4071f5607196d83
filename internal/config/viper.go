// Package config provides Viper-based hierarchical configuration management
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"kakeibo/kakeibo-csv/internal/models"
)

// EnvPrefix prefixes every environment variable read by the configuration,
// e.g. KAKEIBO_DATABASE_PATH.
const EnvPrefix = "KAKEIBO"

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Database struct {
		Path string `mapstructure:"path" yaml:"path"`
	} `mapstructure:"database" yaml:"database"`

	Import struct {
		Profile      string `mapstructure:"profile" yaml:"profile"`
		Dedup        bool   `mapstructure:"dedup" yaml:"dedup"`
		SourceTag    string `mapstructure:"source_tag" yaml:"source_tag"`
		ProfilesFile string `mapstructure:"profiles_file" yaml:"profiles_file"`
	} `mapstructure:"import" yaml:"import"`

	Mapping struct {
		File string `mapstructure:"file" yaml:"file"`
		Name string `mapstructure:"name" yaml:"name"`
	} `mapstructure:"mapping" yaml:"mapping"`

	Categories []string `mapstructure:"categories" yaml:"categories"`
}

// ValidCategories returns the configured category names as a set.
func (c *Config) ValidCategories() models.CategorySet {
	return models.NewCategorySet(c.Categories...)
}

// InitializeConfig loads defaults, then config.yaml from $HOME/.kakeibo-csv,
// ./.kakeibo-csv or . (or configFile when set), then KAKEIBO_* variables.
func InitializeConfig(configFile string) (*Config, error) {
	return Load(viper.New(), configFile)
}

// Load is InitializeConfig on a caller-supplied viper instance, so commands
// can bind flags to it first.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.kakeibo-csv")
		v.AddConfigPath(".kakeibo-csv")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	// KAKEIBO_CATEGORIES is comma separated
	config.Categories = splitList(strings.Join(config.Categories, ","))

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("database.path", "budget.db")

	v.SetDefault("import.profile", "rakuten")
	v.SetDefault("import.dedup", true)
	v.SetDefault("import.source_tag", models.DefaultSourceTag)
	v.SetDefault("import.profiles_file", "")

	v.SetDefault("mapping.file", "category_mapping.json")
	v.SetDefault("mapping.name", "default")

	v.SetDefault("categories", models.DefaultCategories)
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if strings.TrimSpace(config.Database.Path) == "" {
		return fmt.Errorf("database.path must not be empty")
	}

	if strings.TrimSpace(config.Import.Profile) == "" {
		return fmt.Errorf("import.profile must not be empty")
	}

	if len(config.Categories) == 0 {
		return fmt.Errorf("categories must list at least one category")
	}
	for _, c := range config.Categories {
		if strings.TrimSpace(c) == "" {
			return fmt.Errorf("categories must not contain empty names")
		}
	}

	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
