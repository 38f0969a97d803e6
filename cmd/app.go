package cmd

import (
	"fmt"

	"roster-sync/core/config"
	"roster-sync/core/database"
	"roster-sync/core/logger"
	"roster-sync/core/storage"
	"roster-sync/feature/baserow"
	"roster-sync/feature/buttondown"
	"roster-sync/feature/membership"
	"roster-sync/feature/roster"
	"roster-sync/feature/sqlsource"

	"go.uber.org/zap"
)

// Roster providers selectable through source.provider.
const (
	ProviderBaserow = "baserow"
	ProviderSQL     = "sql"
)

// bootstrap loads the configuration and builds the logger.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, l, nil
}

// newSource builds the roster source selected by the configuration.
func newSource(cfg *config.Config, l *zap.Logger) (roster.Source, error) {
	switch cfg.Source.Provider {
	case ProviderBaserow, "":
		client, err := baserow.NewClient(cfg.Baserow, l)
		if err != nil {
			return nil, err
		}
		return client, nil
	case ProviderSQL:
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return sqlsource.NewSource(db, cfg.SQL, cfg.Source.Columns(), l), nil
	default:
		return nil, fmt.Errorf("unsupported roster provider %q", cfg.Source.Provider)
	}
}

// newArchive builds the report archive, or returns nil when storage is not configured.
func newArchive(cfg *config.Config, l *zap.Logger) (*membership.ReportArchive, error) {
	if !cfg.Storage.Enabled() {
		return nil, nil
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return membership.NewReportArchive(client, cfg.Storage.Bucket, cfg.Storage.Region, cfg.Membership, l), nil
}

// newService wires the roster source, the mailing list and the archive together.
func newService(cfg *config.Config, l *zap.Logger) (*membership.Service, error) {
	source, err := newSource(cfg, l)
	if err != nil {
		return nil, err
	}

	archive, err := newArchive(cfg, l)
	if err != nil {
		return nil, err
	}

	mirror := buttondown.NewClient(cfg.Buttondown, l)
	skippable := buttondown.Skippable(cfg.Buttondown.SkipCodes...)

	return membership.NewService(source, cfg.Source.Columns(), mirror, skippable, archive, l), nil
}
