package index

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// KeyEntriesDDL creates the key-to-row mapping table. Keys repeat
// across objects and row slots, so the primary key spans all three
// columns.
const KeyEntriesDDL = `
CREATE TABLE IF NOT EXISTS index_entries (
    key         TEXT NOT NULL,
    object_path TEXT NOT NULL,
    row_num     INTEGER NOT NULL,
    PRIMARY KEY (key, object_path, row_num)
) WITHOUT ROWID;
`

// Entry is one index posting: a row key and the physical row slot it
// resolves to inside a partition object.
type Entry struct {
	Key        string
	ObjectPath string
	RowNum     uint32
}

// KeyStore persists index entries in a sqlite file, ordered by key so
// range scans walk postings in key order.
type KeyStore struct {
	db     *sql.DB
	dbPath string
}

// OpenKeyStore opens (creating if needed) the key store at dbPath.
func OpenKeyStore(dbPath string) (*KeyStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("index: failed to open key store: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec(KeyEntriesDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("index: failed to create index_entries table: %w", err)
	}
	return &KeyStore{db: db, dbPath: dbPath}, nil
}

// Put inserts entries in one transaction. Re-inserting an existing
// posting is a no-op, so index builds are idempotent per object.
func (s *KeyStore) Put(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("index: failed to begin transaction: %w", err)
	}
	stmt, err := tx.Prepare("INSERT OR REPLACE INTO index_entries (key, object_path, row_num) VALUES (?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("index: failed to prepare insert: %w", err)
	}
	defer stmt.Close()
	for _, e := range entries {
		if _, err := stmt.Exec(e.Key, e.ObjectPath, int64(e.RowNum)); err != nil {
			tx.Rollback()
			return fmt.Errorf("index: failed to insert entry %q: %w", e.Key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("index: failed to commit entries: %w", err)
	}
	return nil
}

// Get returns all postings for an exact key.
func (s *KeyStore) Get(ctx context.Context, key string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT key, object_path, row_num FROM index_entries WHERE key = ? ORDER BY object_path, row_num", key)
	if err != nil {
		return nil, fmt.Errorf("index: failed to query key %q: %w", key, err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Scan returns all postings with lo <= key <= hi, in key order.
func (s *KeyStore) Scan(ctx context.Context, lo, hi string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT key, object_path, row_num FROM index_entries WHERE key >= ? AND key <= ? ORDER BY key, object_path, row_num",
		lo, hi)
	if err != nil {
		return nil, fmt.Errorf("index: failed to scan range [%q, %q]: %w", lo, hi, err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Count returns the number of postings in the store.
func (s *KeyStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM index_entries").Scan(&n); err != nil {
		return 0, fmt.Errorf("index: failed to count entries: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *KeyStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("index: failed to close key store: %w", err)
	}
	return nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var out []Entry
	for rows.Next() {
		var e Entry
		var rowNum int64
		if err := rows.Scan(&e.Key, &e.ObjectPath, &rowNum); err != nil {
			return nil, fmt.Errorf("index: failed to scan entry: %w", err)
		}
		e.RowNum = uint32(rowNum)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("index: error iterating entries: %w", err)
	}
	return out, nil
}
