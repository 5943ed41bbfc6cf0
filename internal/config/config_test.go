package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ivotron/skyhookdm-ceph-cls/internal/errors"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Storage.Path == "" || cfg.Index.DBPath == "" {
		t.Errorf("Resolve left paths empty: %+v", cfg)
	}
	if cfg.ManifestPath() != filepath.Join(cfg.DataDir, "manifest.db") {
		t.Errorf("ManifestPath = %q", cfg.ManifestPath())
	}
}

func TestLoadFromYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `data_dir: /tmp/sky
storage:
  type: s3
  s3:
    bucket: partitions
    region: us-west-2
    use_path_style: true
write:
  rows_per_partition: 500
query:
  concurrency: 3
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.DataDir != "/tmp/sky" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.Storage.Type != "s3" || cfg.Storage.S3.Bucket != "partitions" || !cfg.Storage.S3.UsePathStyle {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.Write.RowsPerPartition != 500 {
		t.Errorf("RowsPerPartition = %d", cfg.Write.RowsPerPartition)
	}
	if cfg.Query.Concurrency != 3 {
		t.Errorf("Concurrency = %d", cfg.Query.Concurrency)
	}
	// Unset keys keep their defaults
	if cfg.Write.SchemaVersion != 1 {
		t.Errorf("SchemaVersion = %d, want default 1", cfg.Write.SchemaVersion)
	}
}

func TestLoadFromJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	doc := `{"data_dir": "/tmp/sky", "write": {"rows_per_partition": 42, "schema_version": 2}}`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.Write.RowsPerPartition != 42 || cfg.Write.SchemaVersion != 2 {
		t.Errorf("Write = %+v", cfg.Write)
	}
}

func TestLoadFromFileRejectsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("LoadFromFile accepted a .toml file")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SKYHOOK_DATA_DIR", "/env/dir")
	t.Setenv("SKYHOOK_STORAGE_TYPE", "s3")
	t.Setenv("SKYHOOK_S3_BUCKET", "envbucket")
	t.Setenv("SKYHOOK_QUERY_CONCURRENCY", "7")

	cfg := DefaultConfig()
	LoadFromEnv(cfg)

	if cfg.DataDir != "/env/dir" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.Storage.Type != "s3" || cfg.Storage.S3.Bucket != "envbucket" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.Query.Concurrency != 7 {
		t.Errorf("Concurrency = %d", cfg.Query.Concurrency)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty data dir", func(c *Config) { c.DataDir = "" }},
		{"bad storage type", func(c *Config) { c.Storage.Type = "ceph" }},
		{"s3 without bucket", func(c *Config) { c.Storage.Type = "s3"; c.Storage.S3.Bucket = "" }},
		{"zero rows per partition", func(c *Config) { c.Write.RowsPerPartition = 0 }},
		{"zero schema version", func(c *Config) { c.Write.SchemaVersion = 0 }},
		{"zero concurrency", func(c *Config) { c.Query.Concurrency = 0 }},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		err := cfg.Validate()
		if !errors.IsCode(err, errors.CodeInvalidConfig) {
			t.Errorf("%s: got %v, want INVALID_CONFIG", tt.name, err)
		}
	}
}

func TestEnsureDirectories(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = filepath.Join(t.TempDir(), "nested", "skyhook")
	cfg.Resolve()
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.DataDir, cfg.Storage.Path} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("directory %s missing: %v", dir, err)
		}
	}
}
