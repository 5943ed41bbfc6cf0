// Package config provides unified configuration for the skyhook tools.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ivotron/skyhookdm-ceph-cls/internal/errors"
)

// Config holds the shared configuration for the write, query, and
// index tools.
type Config struct {
	// DataDir is the base directory for local state (databases,
	// download scratch, local object storage)
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// Storage configuration
	Storage StorageConfig `json:"storage" yaml:"storage"`

	// Write tool configuration
	Write WriteConfig `json:"write" yaml:"write"`

	// Query tool configuration
	Query QueryConfig `json:"query" yaml:"query"`

	// Index tool configuration
	Index IndexConfig `json:"index" yaml:"index"`
}

// StorageConfig holds object storage configuration.
type StorageConfig struct {
	// Type is the storage type: local, s3
	Type string `json:"type" yaml:"type"`

	// Path is the local storage path (for local type)
	Path string `json:"path" yaml:"path"`

	// S3 configuration (for s3 type)
	S3 S3Config `json:"s3" yaml:"s3"`
}

// S3Config holds S3 storage configuration.
type S3Config struct {
	// Bucket is the S3 bucket name
	Bucket string `json:"bucket" yaml:"bucket"`

	// Region is the AWS region
	Region string `json:"region" yaml:"region"`

	// Endpoint is the S3 endpoint (for S3-compatible storage)
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// UsePathStyle enables path-style addressing (required for MinIO)
	UsePathStyle bool `json:"use_path_style" yaml:"use_path_style"`
}

// WriteConfig holds write tool configuration.
type WriteConfig struct {
	// RowsPerPartition is how many rows each partition object holds
	RowsPerPartition int `json:"rows_per_partition" yaml:"rows_per_partition"`

	// SchemaVersion is stamped into every partition the writer builds
	SchemaVersion int `json:"schema_version" yaml:"schema_version"`
}

// QueryConfig holds query tool configuration.
type QueryConfig struct {
	// Concurrency is the number of parallel partition downloads
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}

// IndexConfig holds index tool configuration.
type IndexConfig struct {
	// DBPath is the key store database path
	DBPath string `json:"db_path" yaml:"db_path"`
}

// DefaultConfig returns the default configuration for local use.
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data/skyhook",
		Storage: StorageConfig{
			Type: "local",
			Path: "",
		},
		Write: WriteConfig{
			RowsPerPartition: 10000,
			SchemaVersion:    1,
		},
		Query: QueryConfig{
			Concurrency: 10,
		},
		Index: IndexConfig{
			DBPath: "",
		},
	}
}

// Resolve resolves relative paths and sets defaults based on DataDir.
func (c *Config) Resolve() {
	if c.DataDir == "" {
		c.DataDir = "./data/skyhook"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = filepath.Join(c.DataDir, "storage")
	}
	if c.Index.DBPath == "" {
		c.Index.DBPath = filepath.Join(c.DataDir, "index.db")
	}
}

// ManifestPath returns the path to the manifest database.
func (c *Config) ManifestPath() string {
	return filepath.Join(c.DataDir, "manifest.db")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.NewConfigError("data_dir is required")
	}

	if c.Storage.Type != "local" && c.Storage.Type != "s3" {
		return errors.NewConfigError(
			fmt.Sprintf("invalid storage type: %s (must be local or s3)", c.Storage.Type))
	}
	if c.Storage.Type == "s3" && c.Storage.S3.Bucket == "" {
		return errors.NewConfigError("s3.bucket is required when storage type is s3")
	}

	if c.Write.RowsPerPartition < 1 {
		return errors.NewConfigError(
			fmt.Sprintf("write.rows_per_partition must be positive, got %d", c.Write.RowsPerPartition))
	}
	if c.Write.SchemaVersion < 1 {
		return errors.NewConfigError(
			fmt.Sprintf("write.schema_version must be positive, got %d", c.Write.SchemaVersion))
	}

	if c.Query.Concurrency < 1 {
		return errors.NewConfigError(
			fmt.Sprintf("query.concurrency must be positive, got %d", c.Query.Concurrency))
	}

	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file, layered
// over the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv overrides configuration from environment variables with
// the SKYHOOK_ prefix.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("SKYHOOK_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	// Storage configuration
	if v := os.Getenv("SKYHOOK_STORAGE_TYPE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("SKYHOOK_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("SKYHOOK_S3_BUCKET"); v != "" {
		cfg.Storage.S3.Bucket = v
	}
	if v := os.Getenv("SKYHOOK_S3_REGION"); v != "" {
		cfg.Storage.S3.Region = v
	}
	if v := os.Getenv("SKYHOOK_S3_ENDPOINT"); v != "" {
		cfg.Storage.S3.Endpoint = v
	}
	if v := os.Getenv("SKYHOOK_S3_USE_PATH_STYLE"); v != "" {
		cfg.Storage.S3.UsePathStyle = v == "true" || v == "1"
	}

	// Write configuration
	if v := os.Getenv("SKYHOOK_WRITE_ROWS_PER_PARTITION"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Write.RowsPerPartition)
	}
	if v := os.Getenv("SKYHOOK_WRITE_SCHEMA_VERSION"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Write.SchemaVersion)
	}

	// Query configuration
	if v := os.Getenv("SKYHOOK_QUERY_CONCURRENCY"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Query.Concurrency)
	}

	// Index configuration
	if v := os.Getenv("SKYHOOK_INDEX_DB_PATH"); v != "" {
		cfg.Index.DBPath = v
	}
}

// EnsureDirectories creates all required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.DataDir}
	if c.Storage.Type == "local" {
		dirs = append(dirs, c.Storage.Path)
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
