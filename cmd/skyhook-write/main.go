// Package main implements the skyhook-write tool.
// It reads delimited text rows, encodes them into partition objects,
// uploads the objects and their metadata sidecars to object storage,
// and registers each partition in the manifest catalog.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/ivotron/skyhookdm-ceph-cls/internal/config"
	"github.com/ivotron/skyhookdm-ceph-cls/internal/manifest"
	"github.com/ivotron/skyhookdm-ceph-cls/internal/partition"
	"github.com/ivotron/skyhookdm-ceph-cls/internal/storage"
	"github.com/ivotron/skyhookdm-ceph-cls/pkg/types"
)

// Flags holds the tool's command line options.
type Flags struct {
	ConfigPath       string
	InputPath        string
	TableName        string
	SchemaPath       string
	Delim            string
	SkipHeader       bool
	RowsPerPartition int
	StartRID         int64
}

func main() {
	flags := parseFlags()
	cfg := loadConfig(flags.ConfigPath)
	if flags.RowsPerPartition > 0 {
		cfg.Write.RowsPerPartition = flags.RowsPerPartition
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("Failed to create directories: %v", err)
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

	// Load the table schema
	schemaText, err := os.ReadFile(flags.SchemaPath)
	if err != nil {
		log.Fatalf("Failed to read schema file: %v", err)
	}
	schema, err := types.ParseSchema(string(schemaText))
	if err != nil {
		log.Fatalf("Failed to parse schema: %v", err)
	}
	log.Printf("Schema loaded: %d columns", len(schema))

	// Open the input
	input, err := os.Open(flags.InputPath)
	if err != nil {
		log.Fatalf("Failed to open input file: %v", err)
	}
	defer input.Close()

	reader := csv.NewReader(input)
	reader.Comma = rune(flags.Delim[0])
	reader.FieldsPerRecord = len(schema)
	reader.ReuseRecord = true

	writer := &partitionWriter{
		ctx:           ctx,
		store:         store,
		catalog:       catalog,
		schema:        schema,
		tableName:     flags.TableName,
		schemaVersion: int32(cfg.Write.SchemaVersion),
		rowsPerPart:   cfg.Write.RowsPerPartition,
	}
	writer.reset()

	start := time.Now()
	rid := flags.StartRID
	line := 0

	if flags.SkipHeader {
		if _, err := reader.Read(); err != nil && err != io.EOF {
			log.Fatalf("Failed to read header line: %v", err)
		}
		line++
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("Failed to read input at line %d: %v", line+1, err)
		}
		line++

		vals := make([]types.FieldValue, len(schema))
		for i, col := range schema {
			v, err := types.ParseFieldLiteral(col, record[i])
			if err != nil {
				log.Fatalf("Line %d: %v", line, err)
			}
			vals[i] = v
		}

		if err := writer.append(rid, vals); err != nil {
			log.Fatalf("Line %d: %v", line, err)
		}
		rid++

		if writer.builder.NumRows() >= writer.rowsPerPart {
			if err := writer.flush(); err != nil {
				log.Fatalf("Failed to write partition: %v", err)
			}
		}
	}

	// Flush the remainder
	if writer.builder.NumRows() > 0 {
		if err := writer.flush(); err != nil {
			log.Fatalf("Failed to write partition: %v", err)
		}
	}

	log.Printf("Wrote %d rows into %d partitions for table %s in %v",
		writer.totalRows, writer.partitions, flags.TableName, time.Since(start).Round(time.Millisecond))
}

// partitionWriter batches rows into encoded partitions and publishes
// each full batch: object upload, sidecar upload, manifest registration.
type partitionWriter struct {
	ctx           context.Context
	store         storage.ObjectStorage
	catalog       *manifest.SQLiteCatalog
	schema        types.Schema
	tableName     string
	schemaVersion int32
	rowsPerPart   int

	builder    *partition.TableBuilder
	stats      *partition.StatsCollector
	totalRows  int
	partitions int
}

func (w *partitionWriter) reset() {
	w.builder = partition.NewTableBuilder(w.tableName, w.schemaVersion, w.schema)
	w.stats = partition.NewStatsCollector(w.schema, w.rowsPerPart)
}

func (w *partitionWriter) append(rid int64, vals []types.FieldValue) error {
	if err := w.builder.AppendValues(rid, vals); err != nil {
		return err
	}
	w.stats.AddRow(vals)
	return nil
}

func (w *partitionWriter) flush() error {
	buf := w.builder.Finish()
	if errs := partition.Validate(buf); len(errs) > 0 {
		return fmt.Errorf("encoded partition failed validation: %w", errs)
	}

	objectPath := fmt.Sprintf("%s/%s.skyfb", w.tableName, uuid.New().String())
	if err := w.store.Upload(w.ctx, objectPath, buf); err != nil {
		return fmt.Errorf("failed to upload %s: %w", objectPath, err)
	}

	sidecar := partition.NewMetadataSidecar(objectPath, w.tableName,
		w.schemaVersion, w.schema.String(), buf, w.stats)
	sidecarJSON, err := sidecar.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to encode sidecar for %s: %w", objectPath, err)
	}
	if err := w.store.Upload(w.ctx, partition.SidecarPath(objectPath), sidecarJSON); err != nil {
		return fmt.Errorf("failed to upload sidecar for %s: %w", objectPath, err)
	}

	if err := w.catalog.RegisterPartition(w.ctx, sidecar); err != nil {
		return fmt.Errorf("failed to register %s: %w", objectPath, err)
	}

	rows := w.builder.NumRows()
	w.totalRows += rows
	w.partitions++
	log.Printf("Partition %s: %d rows, %d bytes", objectPath, rows, len(buf))

	w.reset()
	return nil
}

func parseFlags() Flags {
	flags := Flags{}

	flag.StringVar(&flags.ConfigPath, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&flags.InputPath, "input", "", "Path to delimited input file")
	flag.StringVar(&flags.TableName, "table", "", "Table name the rows belong to")
	flag.StringVar(&flags.SchemaPath, "schema", "", "Path to schema text file")
	flag.StringVar(&flags.Delim, "delim", ",", "Input field delimiter")
	flag.BoolVar(&flags.SkipHeader, "skip-header", false, "Skip the first input line")
	flag.IntVar(&flags.RowsPerPartition, "rows-per-partition", 0, "Rows per partition object (overrides config)")
	flag.Int64Var(&flags.StartRID, "start-rid", 1, "Record id assigned to the first row")

	flag.Parse()

	if flags.InputPath == "" || flags.TableName == "" || flags.SchemaPath == "" {
		flag.Usage()
		log.Fatalf("-input, -table, and -schema are required")
	}
	if len(flags.Delim) != 1 {
		log.Fatalf("-delim must be a single character, got %q", flags.Delim)
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
