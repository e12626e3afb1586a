package config

import (
	"fmt"
	"time"
)

// Database backends
const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
)

// DatabaseConfig locates the database that holds configuration profiles and
// persisted engine logs
type DatabaseConfig struct {
	Type string `mapstructure:"type" validate:"required,oneof=postgres sqlite"`

	// URL overrides the postgres fields below
	URL string `mapstructure:"url"`

	Host     string `mapstructure:"host" validate:"required_if=Type postgres"`
	Port     int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode" validate:"omitempty,oneof=disable require verify-ca verify-full"`

	// SQLite file, or ":memory:"
	Path string `mapstructure:"path" validate:"required_if=Type sqlite"`

	Pool PoolConfig `mapstructure:"pool"`
}

// PoolConfig bounds the postgres connection pool
type PoolConfig struct {
	MaxOpen     int           `mapstructure:"max_open" validate:"min=1"`
	MaxIdle     int           `mapstructure:"max_idle" validate:"min=1,ltefield=MaxOpen"`
	MaxLifetime time.Duration `mapstructure:"max_lifetime"`
}

// DSN returns the postgres connection string
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// IsMemory reports whether the sqlite database lives only in this process
func (c DatabaseConfig) IsMemory() bool {
	return c.Type == DatabaseSQLite && (c.Path == "" || c.Path == ":memory:")
}

// NeedsDatabase reports whether profiles or logs are stored in the database
func (c *Config) NeedsDatabase() bool {
	return c.Engine.Storage == StorageDatabase || c.Logging.Persist
}
