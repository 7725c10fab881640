// Package config provides configuration loading and management for the
// ethPM registry server.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// StorageTypeMemory keeps all registry state in process memory.
	StorageTypeMemory = "memory"

	// StorageTypePostgres stores registry state in PostgreSQL.
	StorageTypePostgres = "postgres"
)

// passwordEnvVar is the environment variable consulted when no password
// file is configured.
const passwordEnvVar = "ETHPM_DATABASE_PASSWORD"

// Option defines the interface for configuration loader options.
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration.
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file.
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) {
			if !filepath.IsLocal(realPath) {
				return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
			}
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure.
type Config struct {
	// Address is the listen address of the API server.
	Address string `yaml:"address,omitempty"`

	// Storage selects the registry state backend.
	Storage StorageConfig `yaml:"storage"`

	// Database holds the PostgreSQL settings; required when the storage
	// type is postgres.
	Database *DatabaseConfig `yaml:"database,omitempty"`
}

// StorageConfig selects the registry state backend.
type StorageConfig struct {
	// Type is one of "memory" or "postgres".
	Type string `yaml:"type"`
}

// DatabaseConfig defines database connection settings.
type DatabaseConfig struct {
	// Host is the database server hostname or IP address.
	Host string `yaml:"host"`

	// Port is the database server port.
	Port int `yaml:"port"`

	// User is the database username.
	User string `yaml:"user"`

	// PasswordFile is the path to a file containing the database password.
	// This is the recommended approach for production deployments.
	PasswordFile string `yaml:"passwordFile,omitempty"`

	// Database is the database name.
	Database string `yaml:"database"`

	// SSLMode is the SSL mode for the connection (disable, require,
	// verify-ca, verify-full).
	SSLMode string `yaml:"sslMode,omitempty"`

	// MaxConns is the maximum size of the connection pool.
	MaxConns int32 `yaml:"maxConns,omitempty"`
}

// GetPassword returns the database password using the following priority:
// 1. Read from PasswordFile if specified
// 2. Read from the ETHPM_DATABASE_PASSWORD environment variable
//
// The password from file will have leading/trailing whitespace trimmed.
func (d *DatabaseConfig) GetPassword() (string, error) {
	if d.PasswordFile != "" {
		cleanPath := filepath.Clean(d.PasswordFile)

		data, err := os.ReadFile(cleanPath)
		if err != nil {
			return "", fmt.Errorf("failed to read password from file %s: %w", d.PasswordFile, err)
		}

		return strings.TrimSpace(string(data)), nil
	}

	if envPassword := os.Getenv(passwordEnvVar); envPassword != "" {
		return envPassword, nil
	}

	return "", fmt.Errorf(
		"no database password configured: set passwordFile or the %s environment variable",
		passwordEnvVar,
	)
}

// GetConnectionString builds a PostgreSQL connection string. The password
// is URL-escaped to handle special characters safely.
func (d *DatabaseConfig) GetConnectionString() (string, error) {
	password, err := d.GetPassword()
	if err != nil {
		return "", err
	}

	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}

	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User,
		url.QueryEscape(password),
		d.Host,
		d.Port,
		d.Database,
		sslMode,
	)

	return connString, nil
}

// GetStorageType returns the configured storage type, defaulting to
// memory when unset.
func (c *Config) GetStorageType() string {
	if c.Storage.Type == "" {
		return StorageTypeMemory
	}
	return c.Storage.Type
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.GetStorageType() {
	case StorageTypeMemory:
		// Nothing else required.
	case StorageTypePostgres:
		if c.Database == nil {
			return fmt.Errorf("database configuration is required when storage type is %s", StorageTypePostgres)
		}
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.Port == 0 {
			return fmt.Errorf("database port is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
	default:
		return fmt.Errorf("unknown storage type: %s", c.Storage.Type)
	}

	return nil
}

// LoadConfig loads and parses configuration from a YAML file.
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}
