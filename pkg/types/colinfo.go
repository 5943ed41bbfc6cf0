package types

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ivotron/skyhookdm-ceph-cls/internal/errors"
)

// Aggregate pseudo-column indexes. Negative Idx values mark the output
// columns of aggregate queries; they never address a physical field and
// are never null.
const (
	AggIdxMin = -1
	AggIdxMax = -2
	AggIdxSum = -3
	AggIdxCnt = -4
)

var aggIdxNames = map[string]int{
	"min": AggIdxMin,
	"max": AggIdxMax,
	"sum": AggIdxSum,
	"cnt": AggIdxCnt,
}

// AggIdxForName returns the reserved pseudo-idx for an aggregate column
// name, or 0 when the name is not reserved.
func AggIdxForName(name string) int {
	return aggIdxNames[name]
}

// ColumnInfo describes one column of a schema.
type ColumnInfo struct {
	// Idx is the column's logical id: its position in the table's full
	// schema. Projected schemas keep original Idx values; negative
	// values are aggregate pseudo-columns.
	Idx int `json:"idx"`

	// Type is the column's physical data type.
	Type DataType `json:"type"`

	// IsKey marks the column as part of the table's record key.
	IsKey bool `json:"is_key"`

	// Nullable indicates whether fields of this column may be null.
	Nullable bool `json:"nullable"`

	// Name is the column name, unique within a schema.
	Name string `json:"name"`
}

// Equal reports whether two columns match in all five fields.
func (c ColumnInfo) Equal(o ColumnInfo) bool {
	return c == o
}

// String renders the column in schema text form:
// "idx type is_key nullable name".
func (c ColumnInfo) String() string {
	return fmt.Sprintf("%d %d %d %d %s",
		c.Idx, int(c.Type), boolFlag(c.IsKey), boolFlag(c.Nullable), c.Name)
}

func boolFlag(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ParseColumnInfo parses one line of schema text.
func ParseColumnInfo(line string) (ColumnInfo, error) {
	fields := strings.Fields(line)
	if len(fields) != 5 {
		return ColumnInfo{}, errors.NewSchemaError(errors.CodeBadColInfoFormat,
			fmt.Sprintf("column line needs 5 fields, got %d: %q", len(fields), line))
	}
	idx, err := strconv.Atoi(fields[0])
	if err != nil {
		return ColumnInfo{}, errors.Wrap(errors.ErrCategorySchema, errors.CodeBadColInfoConversion,
			fmt.Sprintf("column idx %q is not an integer", fields[0]), err)
	}
	tag, err := strconv.Atoi(fields[1])
	if err != nil {
		return ColumnInfo{}, errors.Wrap(errors.ErrCategorySchema, errors.CodeBadColInfoConversion,
			fmt.Sprintf("column type %q is not an integer", fields[1]), err)
	}
	typ, err := DataTypeFromTag(tag)
	if err != nil {
		return ColumnInfo{}, err
	}
	isKey, err := parseBoolFlag(fields[2])
	if err != nil {
		return ColumnInfo{}, err
	}
	nullable, err := parseBoolFlag(fields[3])
	if err != nil {
		return ColumnInfo{}, err
	}
	return ColumnInfo{
		Idx:      idx,
		Type:     typ,
		IsKey:    isKey,
		Nullable: nullable,
		Name:     fields[4],
	}, nil
}

func parseBoolFlag(s string) (bool, error) {
	switch s {
	case "0":
		return false, nil
	case "1":
		return true, nil
	}
	return false, errors.NewSchemaError(errors.CodeBadColInfoConversion,
		fmt.Sprintf("column flag must be 0 or 1, got %q", s))
}
