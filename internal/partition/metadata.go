package partition

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// MetadataSidecar is the .meta.json document written next to each
// partition object. It carries everything the manifest needs to
// register the partition without decoding the buffer.
type MetadataSidecar struct {
	// ObjectPath is the partition's path in object storage.
	ObjectPath string `json:"object_path"`

	// TableName is the table the partition belongs to.
	TableName string `json:"table_name"`

	// SchemaVersion is the writer's schema generation.
	SchemaVersion int32 `json:"schema_version"`

	// SchemaText is the partition's schema, one column per line.
	SchemaText string `json:"schema_text"`

	// RowCount is the number of rows in the partition.
	RowCount int64 `json:"row_count"`

	// SizeBytes is the encoded buffer size.
	SizeBytes int64 `json:"size_bytes"`

	// Columns holds per-column pruning statistics keyed by name.
	Columns map[string]*ColumnStats `json:"columns,omitempty"`

	// CreatedAt is the creation time as a Unix timestamp.
	CreatedAt int64 `json:"created_at"`
}

// NewMetadataSidecar assembles a sidecar for a finished partition.
func NewMetadataSidecar(objectPath, tableName string, schemaVersion int32, schemaText string, buf []byte, sc *StatsCollector) *MetadataSidecar {
	m := &MetadataSidecar{
		ObjectPath:    objectPath,
		TableName:     tableName,
		SchemaVersion: schemaVersion,
		SchemaText:    schemaText,
		SizeBytes:     int64(len(buf)),
		CreatedAt:     time.Now().Unix(),
	}
	if sc != nil {
		m.RowCount = sc.RowCount()
		m.Columns = sc.Stats()
	}
	return m
}

// ToJSON serializes the sidecar to indented JSON.
func (m *MetadataSidecar) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("partition: failed to marshal metadata: %w", err)
	}
	return data, nil
}

// FromJSON deserializes a sidecar from JSON.
func FromJSON(data []byte) (*MetadataSidecar, error) {
	var m MetadataSidecar
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("partition: failed to unmarshal metadata: %w", err)
	}
	return &m, nil
}

// WriteToFile writes the sidecar JSON to a file.
func (m *MetadataSidecar) WriteToFile(path string) error {
	data, err := m.ToJSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("partition: failed to write metadata file: %w", err)
	}
	return nil
}

// ReadMetadataFromFile reads a sidecar from a file.
func ReadMetadataFromFile(path string) (*MetadataSidecar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("partition: failed to read metadata file: %w", err)
	}
	return FromJSON(data)
}

// SidecarPath derives the metadata path for a partition object path by
// replacing its extension with .meta.json.
func SidecarPath(objectPath string) string {
	if i := strings.LastIndex(objectPath, "."); i > strings.LastIndex(objectPath, "/") {
		return objectPath[:i] + ".meta.json"
	}
	return objectPath + ".meta.json"
}

// CreatedAtTime returns the creation time as a time.Time.
func (m *MetadataSidecar) CreatedAtTime() time.Time {
	return time.Unix(m.CreatedAt, 0)
}
