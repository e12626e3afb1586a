package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/andrescamacho/bob-go/internal/adapters/persistence"
	"github.com/andrescamacho/bob-go/internal/infrastructure/config"
)

// sqliteBusyTimeout lets a second bob process wait for a profile write
// instead of failing with SQLITE_BUSY
const sqliteBusyTimeout = "_busy_timeout=5000"

// NewConnection opens the profile database described by cfg
func NewConnection(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Type {
	case config.DatabasePostgres:
		dialector = postgres.Open(cfg.DSN())
	case config.DatabaseSQLite:
		dialector = sqlite.Open(sqlitePath(cfg))
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Type, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying db: %w", err)
	}
	switch {
	case cfg.IsMemory():
		// Each connection to :memory: is a separate empty database
		sqlDB.SetMaxOpenConns(1)
	case cfg.Type == config.DatabasePostgres:
		sqlDB.SetMaxOpenConns(cfg.Pool.MaxOpen)
		sqlDB.SetMaxIdleConns(cfg.Pool.MaxIdle)
		sqlDB.SetConnMaxLifetime(cfg.Pool.MaxLifetime)
	}
	return db, nil
}

func sqlitePath(cfg *config.DatabaseConfig) string {
	if cfg.IsMemory() {
		return ":memory:"
	}
	return cfg.Path + "?" + sqliteBusyTimeout
}

// NewTestConnection opens a migrated in-memory SQLite database
func NewTestConnection() (*gorm.DB, error) {
	db, err := NewConnection(&config.DatabaseConfig{Type: config.DatabaseSQLite, Path: ":memory:"})
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(db); err != nil {
		Close(db)
		return nil, fmt.Errorf("failed to auto-migrate test database: %w", err)
	}
	return db, nil
}

// AutoMigrate creates or updates the profile and log tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(persistence.AllModels()...)
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
