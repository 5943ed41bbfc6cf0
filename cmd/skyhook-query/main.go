// Package main implements the skyhook-query tool.
// It scans a table's partition objects, applies predicates and
// projection or aggregation inside each partition, and prints the
// merged result. Statistics-based pruning and a secondary index can
// both narrow the objects scanned.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"

	"github.com/ivotron/skyhookdm-ceph-cls/internal/config"
	"github.com/ivotron/skyhookdm-ceph-cls/internal/index"
	"github.com/ivotron/skyhookdm-ceph-cls/internal/manifest"
	"github.com/ivotron/skyhookdm-ceph-cls/internal/predicate"
	"github.com/ivotron/skyhookdm-ceph-cls/internal/query"
	"github.com/ivotron/skyhookdm-ceph-cls/internal/storage"
	"github.com/ivotron/skyhookdm-ceph-cls/pkg/types"
)

// Flags holds the tool's command line options.
type Flags struct {
	ConfigPath  string
	TableName   string
	QueryPreds  string
	Project     string
	IndexCol    string
	IndexLo     string
	IndexHi     string
	Limit       int
	Concurrency int
	NoPrune     bool
	Debug       bool
}

// queryPlan is the resolved execution plan, dumped under -debug.
type queryPlan struct {
	Table       string
	Predicates  string
	Projection  string
	Aggregating bool
	IndexCol    string
	IndexRange  string
	Objects     int
	Concurrency int
}

func main() {
	flags := parseFlags()
	cfg := loadConfig(flags.ConfigPath)
	if flags.Concurrency > 0 {
		cfg.Query.Concurrency = flags.Concurrency
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
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

	// Every partition of a table carries the same column set, so any
	// registration's schema text serves.
	schemaIn, err := types.ParseSchema(records[0].SchemaText)
	if err != nil {
		log.Fatalf("Failed to parse table schema: %v", err)
	}

	preds, err := predicate.ParsePredicates(schemaIn, flags.QueryPreds)
	if err != nil {
		log.Fatalf("Failed to parse predicates: %v", err)
	}

	aggregating := predicate.HasAggPreds(preds)
	var schemaOut types.Schema
	if aggregating {
		schemaOut, err = query.BuildAggSchema(preds)
	} else {
		schemaOut, err = types.ProjectSchema(schemaIn, flags.Project)
	}
	if err != nil {
		log.Fatalf("Failed to build output schema: %v", err)
	}

	// Resolve the objects to scan, and for index-driven queries the
	// row slots inside each.
	var paths []string
	var matches index.RowMatches
	pruned := 0

	if flags.IndexCol != "" {
		paths, matches, err = resolveByIndex(ctx, cfg, flags, schemaIn, records)
		if err != nil {
			log.Fatalf("Index lookup failed: %v", err)
		}
	} else {
		paths = make([]string, len(records))
		for i, rec := range records {
			paths[i] = rec.ObjectPath
		}
		if !flags.NoPrune && len(preds) > 0 {
			pruner := manifest.NewPruner(catalog)
			result, err := pruner.Prune(ctx, flags.TableName, preds, schemaIn)
			if err != nil {
				log.Fatalf("Pruning failed: %v", err)
			}
			paths = paths[:0]
			for _, rec := range result.Partitions {
				paths = append(paths, rec.ObjectPath)
			}
			pruned = result.TotalPruned
			log.Printf("Pruning kept %d of %d objects", len(paths), result.TotalScanned)
		}
	}

	if flags.Debug {
		spew.Dump(queryPlan{
			Table:       flags.TableName,
			Predicates:  flags.QueryPreds,
			Projection:  flags.Project,
			Aggregating: aggregating,
			IndexCol:    flags.IndexCol,
			IndexRange:  fmt.Sprintf("[%s, %s]", flags.IndexLo, flags.IndexHi),
			Objects:     len(paths),
			Concurrency: cfg.Query.Concurrency,
		})
	}

	start := time.Now()

	// Download candidates in parallel, process serially: the aggregate
	// accumulators live inside the shared predicate list.
	downloader := storage.NewBatchDownloader(store, cfg.Query.Concurrency)
	batch := downloader.Download(ctx, paths)
	for _, p := range paths {
		if err := batch.Errors[p]; err != nil {
			log.Fatalf("Failed to download %s: %v", p, err)
		}
	}

	var totals query.Stats
	var lastBuf []byte
	printed := 0

	for _, p := range paths {
		var result *query.Result
		if matches != nil {
			result, err = query.ProcessRows(schemaIn, schemaOut, preds, batch.Buffers[p], matches[p])
		} else {
			result, err = query.ProcessPartition(schemaIn, schemaOut, preds, batch.Buffers[p])
		}
		if err != nil {
			log.Fatalf("Failed to process %s: %v", p, err)
		}

		totals.RowsScanned += result.Stats.RowsScanned
		totals.RowsPassed += result.Stats.RowsPassed
		totals.RowsSkippedDeleted += result.Stats.RowsSkippedDeleted
		if flags.Debug {
			log.Printf("%s: scanned=%d passed=%d skipped=%d", p,
				result.Stats.RowsScanned, result.Stats.RowsPassed, result.Stats.RowsSkippedDeleted)
		}

		if aggregating {
			// Accumulators carry across partitions; only the last
			// emitted row holds the table-wide totals.
			lastBuf = result.Buf
			continue
		}
		if result.NumRows == 0 {
			continue
		}
		n, err := printRows(result.Buf, printed == 0, remaining(flags.Limit, printed))
		if err != nil {
			log.Fatalf("Failed to format %s: %v", p, err)
		}
		printed += n
		if flags.Limit > 0 && printed >= flags.Limit {
			break
		}
	}

	if aggregating && lastBuf != nil {
		text, err := query.FormatPartition(lastBuf, true)
		if err != nil {
			log.Fatalf("Failed to format aggregate result: %v", err)
		}
		fmt.Print(text)
	}

	elapsed := time.Since(start).Round(time.Millisecond)
	if pruned > 0 {
		color.Green("Scanned %d objects (%d pruned), %d rows examined, %d rows passed in %v",
			len(paths), pruned, totals.RowsScanned, totals.RowsPassed, elapsed)
	} else {
		color.Green("Scanned %d objects, %d rows examined, %d rows passed in %v",
			len(paths), totals.RowsScanned, totals.RowsPassed, elapsed)
	}
}

// resolveByIndex narrows the scan to the objects and row slots a
// secondary index resolves for [lo, hi] on the index column.
func resolveByIndex(ctx context.Context, cfg *config.Config, flags Flags,
	schema types.Schema, records []*manifest.PartitionRecord) ([]string, index.RowMatches, error) {

	col, ok := schema.ColumnByName(flags.IndexCol)
	if !ok {
		return nil, nil, fmt.Errorf("index column %q is not in the table schema", flags.IndexCol)
	}

	store, err := index.OpenKeyStore(cfg.Index.DBPath)
	if err != nil {
		return nil, nil, err
	}
	defer store.Close()

	prefix := index.BuildKeyPrefix(index.IdxRec, "", flags.TableName, []string{flags.IndexCol})
	matches, err := index.NewLookup(store).FindRows(ctx, prefix, col.Type, flags.IndexLo, flags.IndexHi)
	if err != nil {
		return nil, nil, err
	}

	// Keep only objects the manifest still tracks, in a stable order.
	registered := make(map[string]bool, len(records))
	for _, rec := range records {
		registered[rec.ObjectPath] = true
	}
	paths := make([]string, 0, len(matches))
	for p := range matches {
		if registered[p] {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)

	log.Printf("Index resolved %d objects for %s in [%s, %s]",
		len(paths), flags.IndexCol, flags.IndexLo, flags.IndexHi)
	return paths, matches, nil
}

// printRows writes up to max formatted rows to stdout. A max of zero
// or below prints every row. Returns the number of rows printed.
func printRows(buf []byte, withHeader bool, max int) (int, error) {
	text, err := query.FormatPartition(buf, withHeader)
	if err != nil {
		return 0, err
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	if withHeader {
		fmt.Println(lines[0])
		lines = lines[1:]
	}
	if max > 0 && len(lines) > max {
		lines = lines[:max]
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	return len(lines), nil
}

// remaining converts a total row limit into the budget left for the
// next partition.
func remaining(limit, printed int) int {
	if limit <= 0 {
		return 0
	}
	return limit - printed
}

func parseFlags() Flags {
	flags := Flags{}

	flag.StringVar(&flags.ConfigPath, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&flags.TableName, "table", "", "Table to query")
	flag.StringVar(&flags.QueryPreds, "query-preds", "", "Predicate text, e.g. \"0,gt,4,0,100;4,leq,13,0,30\"")
	flag.StringVar(&flags.Project, "project", "*", "Comma-separated columns to return, or * for all")
	flag.StringVar(&flags.IndexCol, "index-col", "", "Resolve rows through the secondary index on this column")
	flag.StringVar(&flags.IndexLo, "index-lo", "", "Index lower bound (required with -index-col)")
	flag.StringVar(&flags.IndexHi, "index-hi", "", "Index upper bound (empty for a point lookup)")
	flag.IntVar(&flags.Limit, "limit", 0, "Maximum rows to print (0 for all)")
	flag.IntVar(&flags.Concurrency, "concurrency", 0, "Parallel downloads (overrides config)")
	flag.BoolVar(&flags.NoPrune, "no-prune", false, "Disable statistics-based object pruning")
	flag.BoolVar(&flags.Debug, "debug", false, "Dump the execution plan and per-object statistics")

	flag.Parse()

	if flags.TableName == "" {
		flag.Usage()
		log.Fatalf("-table is required")
	}
	if flags.IndexCol != "" && flags.IndexLo == "" {
		log.Fatalf("-index-lo is required with -index-col")
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
