// Package main implements the skyhook-index tool.
// It builds a secondary index over a table's partition objects: every
// live row's key column values become ordered entries in the key
// store, which skyhook-query resolves into object and row targets.
package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"github.com/ivotron/skyhookdm-ceph-cls/internal/config"
	"github.com/ivotron/skyhookdm-ceph-cls/internal/index"
	"github.com/ivotron/skyhookdm-ceph-cls/internal/manifest"
	"github.com/ivotron/skyhookdm-ceph-cls/internal/storage"
)

// Flags holds the tool's command line options.
type Flags struct {
	ConfigPath string
	TableName  string
	IdxType    string
	Cols       string
	IndexDB    string
}

func main() {
	flags := parseFlags()
	cfg := loadConfig(flags.ConfigPath)
	if flags.IndexDB != "" {
		cfg.Index.DBPath = flags.IndexDB
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("Failed to create directories: %v", err)
	}

	idxType, err := index.IdxTypeFromString(flags.IdxType)
	if err != nil {
		log.Fatalf("Invalid index type: %v", err)
	}
	var cols []string
	if idxType == index.IdxRec {
		for _, name := range strings.Split(flags.Cols, ",") {
			if name = strings.TrimSpace(name); name != "" {
				cols = append(cols, name)
			}
		}
		if len(cols) == 0 {
			log.Fatalf("-cols is required for a rec index")
		}
	}

	ctx := context.Background()

	// Initialize storage
	store, err := newObjectStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// Initialize manifest catalog
	catalog, err := manifest.NewCatalog(cfg.ManifestPath())
	if err != nil {
		log.Fatalf("Failed to initialize manifest catalog: %v", err)
	}
	defer catalog.Close()

	records, err := catalog.ListPartitions(ctx, flags.TableName)
	if err != nil {
		log.Fatalf("Failed to list partitions: %v", err)
	}
	if len(records) == 0 {
		log.Fatalf("No partitions registered for table %s", flags.TableName)
	}

	keyStore, err := index.OpenKeyStore(cfg.Index.DBPath)
	if err != nil {
		log.Fatalf("Failed to open key store: %v", err)
	}
	defer keyStore.Close()
	builder := index.NewBuilder(keyStore)

	paths := make([]string, len(records))
	for i, rec := range records {
		paths[i] = rec.ObjectPath
	}

	start := time.Now()
	downloader := storage.NewBatchDownloader(store, cfg.Query.Concurrency)
	batch := downloader.Download(ctx, paths)
	for _, p := range paths {
		if err := batch.Errors[p]; err != nil {
			log.Fatalf("Failed to download %s: %v", p, err)
		}
	}

	total := 0
	for _, p := range paths {
		n, err := builder.BuildObject(ctx, p, batch.Buffers[p], idxType, cols)
		if err != nil {
			log.Fatalf("Failed to index %s: %v", p, err)
		}
		total += n
		log.Printf("Indexed %s: %d keys", p, n)
	}

	log.Printf("Built %s index over %d objects for table %s: %d keys in %v",
		flags.IdxType, len(paths), flags.TableName, total, time.Since(start).Round(time.Millisecond))
}

func parseFlags() Flags {
	flags := Flags{}

	flag.StringVar(&flags.ConfigPath, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&flags.TableName, "table", "", "Table to index")
	flag.StringVar(&flags.IdxType, "type", "rec", "Index type: rec (key columns) or rid (record id)")
	flag.StringVar(&flags.Cols, "cols", "", "Comma-separated key columns (rec index)")
	flag.StringVar(&flags.IndexDB, "index-db", "", "Key store database path (overrides config)")

	flag.Parse()

	if flags.TableName == "" {
		flag.Usage()
		log.Fatalf("-table is required")
	}

	return flags
}

// loadConfig layers file and environment configuration over defaults.
func loadConfig(path string) *config.Config {
	cfg := config.DefaultConfig()
	if path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		cfg = loaded
	}
	config.LoadFromEnv(cfg)
	cfg.Resolve()
	return cfg
}

// newObjectStorage builds the configured storage backend.
func newObjectStorage(ctx context.Context, cfg *config.Config) (storage.ObjectStorage, error) {
	switch cfg.Storage.Type {
	case "s3":
		return storage.NewS3Storage(ctx, cfg.Storage.S3.Bucket, storage.S3Config{
			Region:       cfg.Storage.S3.Region,
			Endpoint:     cfg.Storage.S3.Endpoint,
			UsePathStyle: cfg.Storage.S3.UsePathStyle,
		})
	default:
		return storage.NewLocalStorage(cfg.Storage.Path)
	}
}
