package manifest

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ivotron/skyhookdm-ceph-cls/internal/errors"
	"github.com/ivotron/skyhookdm-ceph-cls/internal/partition"
	"github.com/ivotron/skyhookdm-ceph-cls/pkg/types"
)

// Catalog tracks partition objects in manifest.db.
type Catalog interface {
	// RegisterPartition records a partition and its column statistics.
	// Re-registering the same object path replaces the previous entry.
	RegisterPartition(ctx context.Context, m *partition.MetadataSidecar) error

	// GetPartition retrieves a single partition by object path.
	GetPartition(ctx context.Context, objectPath string) (*PartitionRecord, error)

	// ListPartitions returns all partitions of one table, oldest first.
	ListPartitions(ctx context.Context, tableName string) ([]*PartitionRecord, error)

	// GetColumnStats returns the per-column statistics of one partition,
	// keyed by column name.
	GetColumnStats(ctx context.Context, objectPath string) (map[string]*ColumnStatsRecord, error)

	// UnregisterPartition removes a partition and its statistics.
	UnregisterPartition(ctx context.Context, objectPath string) error

	// Close closes the catalog database connections.
	Close() error
}

// PartitionRecord is one partition object as the manifest sees it.
type PartitionRecord struct {
	ObjectPath    string
	TableName     string
	SchemaVersion int32
	SchemaText    string
	RowCount      int64
	SizeBytes     int64
	CreatedAt     time.Time
}

// ColumnStatsRecord is one column's pruning statistics for one
// partition. MinText and MaxText are empty for columns without
// ordered bounds; Bloom is nil for non-key columns.
type ColumnStatsRecord struct {
	ColumnName string
	ColumnType types.DataType
	MinText    string
	MaxText    string
	NullCount  int64
	Bloom      []byte
}

// SQLiteCatalog implements Catalog using SQLite.
type SQLiteCatalog struct {
	db     *sql.DB // Write connection (single writer)
	readDB *sql.DB // Read connection pool (concurrent readers)
	dbPath string
	mu     sync.Mutex // Write-only lock (reads don't need this)

	insertPartitionStmt *sql.Stmt
	insertStatsStmt     *sql.Stmt
}

// NewCatalog opens (and if needed initializes) a manifest catalog.
func NewCatalog(dbPath string) (*SQLiteCatalog, error) {
	// Write connection: single writer with WAL mode
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("manifest: failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // Single writer
	db.SetMaxIdleConns(1)

	// Read connection pool: concurrent readers via read-only mode
	readDB, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&mode=ro")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("manifest: failed to open read database: %w", err)
	}
	readDB.SetMaxOpenConns(4)
	readDB.SetMaxIdleConns(4)
	readDB.SetConnMaxLifetime(5 * time.Minute)

	catalog := &SQLiteCatalog{db: db, readDB: readDB, dbPath: dbPath}

	if err := catalog.initSchema(); err != nil {
		readDB.Close()
		db.Close()
		return nil, fmt.Errorf("manifest: failed to initialize schema: %w", err)
	}

	insertPartition, err := db.Prepare(`
		INSERT OR REPLACE INTO partitions (
			object_path, table_name, schema_version, schema_text,
			row_count, size_bytes, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		readDB.Close()
		db.Close()
		return nil, fmt.Errorf("manifest: failed to prepare partition insert: %w", err)
	}
	catalog.insertPartitionStmt = insertPartition

	insertStats, err := db.Prepare(`
		INSERT OR REPLACE INTO column_stats (
			object_path, column_name, column_type,
			min_text, max_text, null_count, bloom
		) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		insertPartition.Close()
		readDB.Close()
		db.Close()
		return nil, fmt.Errorf("manifest: failed to prepare stats insert: %w", err)
	}
	catalog.insertStatsStmt = insertStats

	return catalog, nil
}

// initSchema creates all required tables and indexes.
func (c *SQLiteCatalog) initSchema() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, stmt := range AllSchemaSQL() {
		if _, err := c.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}

// RegisterPartition records a partition and its column statistics in
// one transaction. The sidecar's base64 bloom text is stored decoded.
func (c *SQLiteCatalog) RegisterPartition(ctx context.Context, m *partition.MetadataSidecar) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("manifest: failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.StmtContext(ctx, c.insertPartitionStmt).ExecContext(ctx,
		m.ObjectPath, m.TableName, m.SchemaVersion, m.SchemaText,
		m.RowCount, m.SizeBytes, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("manifest: failed to insert partition: %w", err)
	}

	// Replacement registration drops stats rows the new sidecar no
	// longer carries.
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM column_stats WHERE object_path = ?", m.ObjectPath); err != nil {
		return fmt.Errorf("manifest: failed to clear column stats: %w", err)
	}

	stats := tx.StmtContext(ctx, c.insertStatsStmt)
	for name, cs := range m.Columns {
		var blob []byte
		if cs.Bloom != "" {
			blob, err = base64.StdEncoding.DecodeString(cs.Bloom)
			if err != nil {
				return fmt.Errorf("manifest: failed to decode bloom for column %s: %w", name, err)
			}
		}
		if _, err := stats.ExecContext(ctx,
			m.ObjectPath, name, int(cs.Type),
			cs.Min, cs.Max, cs.NullCount, blob,
		); err != nil {
			return fmt.Errorf("manifest: failed to insert column stats for %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("manifest: failed to commit registration: %w", err)
	}
	return nil
}

const partitionColumns = `object_path, table_name, schema_version, schema_text,
		row_count, size_bytes, created_at`

// GetPartition retrieves a single partition by object path.
func (c *SQLiteCatalog) GetPartition(ctx context.Context, objectPath string) (*PartitionRecord, error) {
	row := c.readDB.QueryRowContext(ctx,
		`SELECT `+partitionColumns+` FROM partitions WHERE object_path = ?`,
		objectPath,
	)

	rec, err := scanPartitionRecord(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewManifestError(errors.CodePartitionNotFound,
				fmt.Sprintf("no partition registered at %q", objectPath), nil)
		}
		return nil, fmt.Errorf("manifest: failed to scan partition: %w", err)
	}
	return rec, nil
}

// ListPartitions returns all partitions of one table, oldest first.
func (c *SQLiteCatalog) ListPartitions(ctx context.Context, tableName string) ([]*PartitionRecord, error) {
	rows, err := c.readDB.QueryContext(ctx,
		`SELECT `+partitionColumns+` FROM partitions
		 WHERE table_name = ? ORDER BY created_at, object_path`,
		tableName,
	)
	if err != nil {
		return nil, fmt.Errorf("manifest: failed to query partitions: %w", err)
	}
	defer rows.Close()

	var records []*PartitionRecord
	for rows.Next() {
		rec, err := scanPartitionRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("manifest: failed to scan partition: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("manifest: error iterating partitions: %w", err)
	}
	return records, nil
}

// scanPartitionRecord reads one partitions row through any Scan
// function, so single-row and multi-row queries share it.
func scanPartitionRecord(scan func(...interface{}) error) (*PartitionRecord, error) {
	var rec PartitionRecord
	var createdAtUnix int64
	err := scan(
		&rec.ObjectPath, &rec.TableName, &rec.SchemaVersion, &rec.SchemaText,
		&rec.RowCount, &rec.SizeBytes, &createdAtUnix,
	)
	if err != nil {
		return nil, err
	}
	rec.CreatedAt = time.Unix(createdAtUnix, 0)
	return &rec, nil
}

// GetColumnStats returns the per-column statistics of one partition.
func (c *SQLiteCatalog) GetColumnStats(ctx context.Context, objectPath string) (map[string]*ColumnStatsRecord, error) {
	rows, err := c.readDB.QueryContext(ctx,
		`SELECT column_name, column_type, min_text, max_text, null_count, bloom
		 FROM column_stats WHERE object_path = ?`,
		objectPath,
	)
	if err != nil {
		return nil, fmt.Errorf("manifest: failed to query column stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*ColumnStatsRecord)
	for rows.Next() {
		var cs ColumnStatsRecord
		var colType int
		var minText, maxText sql.NullString
		if err := rows.Scan(&cs.ColumnName, &colType, &minText, &maxText, &cs.NullCount, &cs.Bloom); err != nil {
			return nil, fmt.Errorf("manifest: failed to scan column stats: %w", err)
		}
		cs.ColumnType = types.DataType(colType)
		cs.MinText = minText.String
		cs.MaxText = maxText.String
		stats[cs.ColumnName] = &cs
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("manifest: error iterating column stats: %w", err)
	}
	return stats, nil
}

// UnregisterPartition removes a partition and its statistics.
func (c *SQLiteCatalog) UnregisterPartition(ctx context.Context, objectPath string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("manifest: failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM column_stats WHERE object_path = ?", objectPath); err != nil {
		return fmt.Errorf("manifest: failed to delete column stats: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		"DELETE FROM partitions WHERE object_path = ?", objectPath)
	if err != nil {
		return fmt.Errorf("manifest: failed to delete partition: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NewManifestError(errors.CodePartitionNotFound,
			fmt.Sprintf("no partition registered at %q", objectPath), nil)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("manifest: failed to commit unregistration: %w", err)
	}
	return nil
}

// ListTables returns the distinct table names in the catalog.
func (c *SQLiteCatalog) ListTables(ctx context.Context) ([]string, error) {
	rows, err := c.readDB.QueryContext(ctx,
		"SELECT DISTINCT table_name FROM partitions ORDER BY table_name")
	if err != nil {
		return nil, fmt.Errorf("manifest: failed to query tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("manifest: failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("manifest: error iterating tables: %w", err)
	}
	return tables, nil
}

// CountPartitions returns the number of registered partitions for one
// table, or for all tables when tableName is empty.
func (c *SQLiteCatalog) CountPartitions(ctx context.Context, tableName string) (int64, error) {
	var count int64
	var err error
	if tableName == "" {
		err = c.readDB.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM partitions").Scan(&count)
	} else {
		err = c.readDB.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM partitions WHERE table_name = ?", tableName).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("manifest: failed to count partitions: %w", err)
	}
	return count, nil
}

// RunAnalyze refreshes SQLite planner statistics. Call after bulk
// registration.
func (c *SQLiteCatalog) RunAnalyze(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, AnalyzeSQL); err != nil {
		return fmt.Errorf("manifest: failed to run ANALYZE: %w", err)
	}
	return nil
}

// Close closes the catalog database connections.
func (c *SQLiteCatalog) Close() error {
	if c.insertPartitionStmt != nil {
		c.insertPartitionStmt.Close()
	}
	if c.insertStatsStmt != nil {
		c.insertStatsStmt.Close()
	}
	// Close read connection first, then write connection
	if err := c.readDB.Close(); err != nil {
		c.db.Close()
		return err
	}
	return c.db.Close()
}
