// Package manifest provides the catalog that tracks partition objects
// and their pruning statistics.
package manifest

// Schema contains the SQL definitions for the manifest catalog
// (manifest.db). The catalog is the source of truth for which
// partition objects exist, which table each belongs to, and the
// per-column statistics queries prune against.

// CreatePartitionsTableSQL creates the core partitions table. One row
// per partition object, keyed by the object path.
const CreatePartitionsTableSQL = `
CREATE TABLE IF NOT EXISTS partitions (
    object_path TEXT PRIMARY KEY,
    table_name TEXT NOT NULL,
    schema_version INTEGER NOT NULL DEFAULT 1,
    schema_text TEXT NOT NULL,
    row_count INTEGER NOT NULL,
    size_bytes INTEGER NOT NULL,
    created_at INTEGER NOT NULL
)`

// CreateColumnStatsTableSQL creates the per-column statistics table.
// Min and max are stored as canonical value text; numeric columns are
// re-parsed into their widened class before comparison. The bloom blob
// is present only for key columns.
const CreateColumnStatsTableSQL = `
CREATE TABLE IF NOT EXISTS column_stats (
    object_path TEXT NOT NULL,
    column_name TEXT NOT NULL,
    column_type INTEGER NOT NULL,
    min_text TEXT,
    max_text TEXT,
    null_count INTEGER NOT NULL DEFAULT 0,
    bloom BLOB,
    PRIMARY KEY (object_path, column_name),
    FOREIGN KEY (object_path) REFERENCES partitions(object_path)
)`

// CreatePartitionsIndexesSQL creates the indexes the list and prune
// paths scan.
var CreatePartitionsIndexesSQL = []string{
	// Index for per-table listing, the entry point of every query
	`CREATE INDEX IF NOT EXISTS idx_partitions_table ON partitions(table_name, created_at)`,

	// Index for age-ordered maintenance sweeps
	`CREATE INDEX IF NOT EXISTS idx_partitions_created ON partitions(created_at)`,
}

// AnalyzeSQL refreshes the SQLite query planner statistics.
const AnalyzeSQL = `ANALYZE`

// AllSchemaSQL returns all statements needed to initialize the
// manifest catalog.
func AllSchemaSQL() []string {
	statements := []string{
		CreatePartitionsTableSQL,
		CreateColumnStatsTableSQL,
	}
	statements = append(statements, CreatePartitionsIndexesSQL...)
	return statements
}
