package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"kakeibo/kakeibo-csv/internal/logging"
)

// LoadEnv loads a .env file from the current directory, or failing that its
// parent, without overriding variables already set. It returns the file
// loaded, or "" when there was none.
func LoadEnv() (string, error) {
	for _, envFile := range []string{".env", filepath.Join("..", ".env")} {
		if _, err := os.Stat(envFile); err != nil {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			return "", err
		}
		return envFile, nil
	}
	return "", nil
}

// NewLogger builds the application logger from the log settings.
func NewLogger(cfg *Config) logging.Logger {
	return logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
}
