package types

import (
	"fmt"
	"strings"

	"github.com/ivotron/skyhookdm-ceph-cls/internal/errors"
)

// Wildcards used in schema and projection text.
const (
	// ProjectAllColumns selects every column of the input schema.
	ProjectAllColumns = "*"

	// SchemaNameDefault is the wildcard schema (namespace) name.
	SchemaNameDefault = "*"
)

// Schema is an ordered sequence of column descriptors. A column's
// position in the full table schema equals its Idx; projected schemas
// are subsequences that keep original Idx values, so the null bitmap
// of a row stays addressable after projection.
type Schema []ColumnInfo

// ParseSchema parses schema text, one column per line. Blank lines are
// skipped; text describing no columns is rejected.
func ParseSchema(text string) (Schema, error) {
	var s Schema
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		col, err := ParseColumnInfo(line)
		if err != nil {
			return nil, err
		}
		s = append(s, col)
	}
	if len(s) == 0 {
		return nil, errors.NewSchemaError(errors.CodeEmptySchema, "schema text has no columns")
	}
	return s, nil
}

// String renders the schema as text, one column per line. The output
// parses back to an equal schema.
func (s Schema) String() string {
	var b strings.Builder
	for _, c := range s {
		b.WriteString(c.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// Equal reports whether two schemas hold identical columns in order.
func (s Schema) Equal(o Schema) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// HasAggCols reports whether any column is an aggregate pseudo-column.
func (s Schema) HasAggCols() bool {
	for _, c := range s {
		if c.Idx < 0 {
			return true
		}
	}
	return false
}

// ColumnByName returns the first column with the given name.
func (s Schema) ColumnByName(name string) (ColumnInfo, bool) {
	for _, c := range s {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnInfo{}, false
}

// KeyColumns returns the columns flagged as part of the record key, in
// schema order.
func (s Schema) KeyColumns() []ColumnInfo {
	var keys []ColumnInfo
	for _, c := range s {
		if c.IsKey {
			keys = append(keys, c)
		}
	}
	return keys
}

// MaxIdx returns the largest non-negative column Idx, or -1 when the
// schema holds only aggregate pseudo-columns.
func (s Schema) MaxIdx() int {
	max := -1
	for _, c := range s {
		if c.Idx > max {
			max = c.Idx
		}
	}
	return max
}

// ProjectSchema resolves a projection request against cur. The request
// is either ProjectAllColumns or a comma-delimited list of column
// names; named columns are returned in the order named, keeping their
// original Idx values.
func ProjectSchema(cur Schema, namesOrStar string) (Schema, error) {
	trimmed := strings.TrimSpace(namesOrStar)
	if trimmed == ProjectAllColumns {
		out := make(Schema, len(cur))
		copy(out, cur)
		return out, nil
	}
	var out Schema
	for _, raw := range strings.Split(trimmed, ",") {
		name := strings.TrimSpace(raw)
		col, ok := cur.ColumnByName(name)
		if !ok {
			return nil, errors.NewSchemaError(errors.CodeColIndexOOB,
				fmt.Sprintf("projected column %q not in schema", name))
		}
		out = append(out, col)
	}
	return out, nil
}
