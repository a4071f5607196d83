// Package container provides dependency injection for the kakeibo-csv application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"fmt"

	"kakeibo/kakeibo-csv/internal/categorizer"
	"kakeibo/kakeibo-csv/internal/config"
	"kakeibo/kakeibo-csv/internal/importer"
	"kakeibo/kakeibo-csv/internal/ledger"
	"kakeibo/kakeibo-csv/internal/logging"
	"kakeibo/kakeibo-csv/internal/mappingstore"
	"kakeibo/kakeibo-csv/internal/models"
	"kakeibo/kakeibo-csv/internal/profile"
	"kakeibo/kakeibo-csv/internal/report"
	"kakeibo/kakeibo-csv/internal/statement"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation. The ledger is not held here: each
// command opens the database it was pointed at with OpenLedger and closes it
// when done.
type Container struct {
	logger      logging.Logger
	config      *config.Config
	profiles    *profile.Registry
	mappings    *mappingstore.Store
	categorizer *categorizer.Categorizer
	parser      *statement.Parser
	reports     *report.Generator
}

// NewContainer creates and wires all application dependencies.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	return NewContainerWithLogger(cfg, config.NewLogger(cfg))
}

// NewContainerWithLogger is NewContainer with an explicit logger, used by tests.
func NewContainerWithLogger(cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}

	profiles := profile.NewRegistry(cfg.Import.SourceTag)
	if cfg.Import.ProfilesFile != "" {
		if err := profiles.LoadFile(cfg.Import.ProfilesFile); err != nil {
			return nil, fmt.Errorf("failed to load profiles: %w", err)
		}
		logger.Debug("Loaded profiles file",
			logging.F(logging.FieldFile, cfg.Import.ProfilesFile),
			logging.F(logging.FieldCount, len(profiles.Names())))
	}

	cat := categorizer.NewCategorizer(logger)
	parser := statement.NewParser(cat, logger)

	logger.Debug("Container initialized successfully",
		logging.F(logging.FieldDatabase, cfg.Database.Path),
		logging.F(logging.FieldProfile, cfg.Import.Profile))

	return &Container{
		logger:      logger,
		config:      cfg,
		profiles:    profiles,
		mappings:    mappingstore.NewStore(logger),
		categorizer: cat,
		parser:      parser,
		reports:     report.NewGenerator(logger),
	}, nil
}

// OpenLedger opens (and migrates) the SQLite ledger at path, or at the
// configured database path when path is empty.
func (c *Container) OpenLedger(path string) (*ledger.SQLiteStore, error) {
	if path == "" {
		path = c.config.Database.Path
	}
	return ledger.OpenSQLite(path, c.logger)
}

// NewPipeline builds an import pipeline writing to store.
func (c *Container) NewPipeline(store ledger.Store) *importer.Pipeline {
	return importer.NewPipeline(store, c.parser, c.logger)
}

// Profile returns the named profile, or the configured default when name is
// empty.
func (c *Container) Profile(name string) (models.FormatProfile, error) {
	if name == "" {
		name = c.config.Import.Profile
	}
	return c.profiles.Get(name)
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetProfiles returns the profile registry.
func (c *Container) GetProfiles() *profile.Registry {
	return c.profiles
}

// GetMappingStore returns the mapping file store.
func (c *Container) GetMappingStore() *mappingstore.Store {
	return c.mappings
}

// GetCategorizer returns the container's categorizer instance.
func (c *Container) GetCategorizer() *categorizer.Categorizer {
	return c.categorizer
}

// GetParser returns the statement row parser.
func (c *Container) GetParser() *statement.Parser {
	return c.parser
}

// GetReportGenerator returns the import summary renderer.
func (c *Container) GetReportGenerator() *report.Generator {
	return c.reports
}
