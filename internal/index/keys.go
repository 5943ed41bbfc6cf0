// Package index builds and queries secondary indexes over partition
// objects: order-preserving text keys per row, a sqlite key store, and
// range lookup resolving to (object, row slot) pairs for targeted
// processing.
package index

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ivotron/skyhookdm-ceph-cls/internal/errors"
	"github.com/ivotron/skyhookdm-ceph-cls/internal/partition"
	"github.com/ivotron/skyhookdm-ceph-cls/pkg/types"
)

// IdxType identifies what an index key addresses.
type IdxType int

const (
	// IdxFB keys whole partition buffers.
	IdxFB IdxType = iota + 1
	// IdxRID keys rows by record id.
	IdxRID
	// IdxRec keys rows by column values.
	IdxRec
	// IdxTxt keys rows by text column values.
	IdxTxt
)

var idxNames = [...]string{
	IdxFB:  "fb",
	IdxRID: "rid",
	IdxRec: "rec",
	IdxTxt: "txt",
}

// String returns the index type's key-prefix token.
func (t IdxType) String() string {
	if t >= IdxFB && int(t) < len(idxNames) {
		return idxNames[t]
	}
	return "invalid(" + strconv.Itoa(int(t)) + ")"
}

// IdxTypeFromString parses an index type token.
func IdxTypeFromString(tok string) (IdxType, error) {
	for t, name := range idxNames {
		if name != "" && name == tok {
			return IdxType(t), nil
		}
	}
	return 0, errors.NewIndexError(errors.CodeOpNotRecognized,
		fmt.Sprintf("unknown index type %q", tok))
}

// Key layout: "<type>:<schema>:<table>:<col1-col2>:<data1-data2>".
// The major delimiter separates sections, the minor delimiter joins
// column names and per-column data within a section.
const (
	KeyDelimMajor = ":"
	KeyDelimMinor = "-"

	// KeyColsDefault stands in for the column-name section of indexes
	// that do not key on columns (fb, rid).
	KeyColsDefault = "*"

	// MaxIdxCols bounds the columns one index may key on.
	MaxIdxCols = 4

	// keyDataWidth is the zero-padded width of one encoded value. 20
	// digits hold any uint64, so lexicographic order equals numeric
	// order.
	keyDataWidth = 20
)

// BuildKeyPrefix returns the identity prefix of an index: its type,
// schema (namespace) name, table name, and keyed column names. Two
// indexes over different column sets on one table never share a
// prefix.
func BuildKeyPrefix(t IdxType, schemaName, tableName string, colNames []string) string {
	if schemaName == "" {
		schemaName = types.SchemaNameDefault
	}
	cols := KeyColsDefault
	if len(colNames) > 0 {
		cols = strings.Join(colNames, KeyDelimMinor)
	}
	return strings.Join([]string{t.String(), schemaName, tableName, cols}, KeyDelimMajor)
}

// BuildKeyData encodes one field value as fixed-width decimal text.
// Only integral column types index; the value is projected through
// uint64 (signed values wrap) and zero-padded to keyDataWidth.
func BuildKeyData(t types.DataType, v types.FieldValue) (string, error) {
	if !t.IsIntegral() {
		return "", errors.NewIndexError(errors.CodeIndexUnsupportedColType,
			fmt.Sprintf("column type %s cannot encode as an index key", t))
	}
	if v.IsNull {
		return "", errors.NewIndexError(errors.CodeIndexKeyCreationFailed,
			"null value cannot encode as an index key")
	}
	var u uint64
	switch {
	case t == types.TypeBool:
		if v.Bool {
			u = 1
		}
	case t.IsSigned():
		u = uint64(v.Int)
	default:
		u = v.Uint
	}
	return fmt.Sprintf("%0*d", keyDataWidth, u), nil
}

// EncodeKeyLiteral encodes a text literal the way BuildKeyData encodes
// a decoded field, for lookup bounds.
func EncodeKeyLiteral(t types.DataType, literal string) (string, error) {
	if !t.IsIntegral() {
		return "", errors.NewIndexError(errors.CodeIndexUnsupportedColType,
			fmt.Sprintf("column type %s cannot encode as an index key", t))
	}
	lit := strings.TrimSpace(literal)
	switch {
	case t == types.TypeBool:
		b, err := strconv.ParseBool(lit)
		if err != nil {
			return "", errors.Wrap(errors.ErrCategoryIndex, errors.CodeIndexKeyCreationFailed,
				fmt.Sprintf("bool literal %q", literal), err)
		}
		return BuildKeyData(t, types.BoolValue(t, b))
	case t == types.TypeChar:
		if len(lit) != 1 {
			return "", errors.NewIndexError(errors.CodeIndexKeyCreationFailed,
				fmt.Sprintf("char literal %q must be a single byte", literal))
		}
		return BuildKeyData(t, types.IntValue(t, int64(lit[0])))
	case t == types.TypeUchar:
		if len(lit) != 1 {
			return "", errors.NewIndexError(errors.CodeIndexKeyCreationFailed,
				fmt.Sprintf("uchar literal %q must be a single byte", literal))
		}
		return BuildKeyData(t, types.UintValue(t, uint64(lit[0])))
	case t.IsSigned():
		n, err := strconv.ParseInt(lit, 10, 64)
		if err != nil {
			return "", errors.Wrap(errors.ErrCategoryIndex, errors.CodeIndexKeyCreationFailed,
				fmt.Sprintf("integer literal %q", literal), err)
		}
		return BuildKeyData(t, types.IntValue(t, n))
	default:
		n, err := strconv.ParseUint(lit, 10, 64)
		if err != nil {
			return "", errors.Wrap(errors.ErrCategoryIndex, errors.CodeIndexKeyCreationFailed,
				fmt.Sprintf("unsigned literal %q", literal), err)
		}
		return BuildKeyData(t, types.UintValue(t, n))
	}
}

// BuildRowKey builds the full key of one row under a rec index: the
// prefix plus the encoded values of the keyed columns, joined by the
// minor delimiter.
func BuildRowKey(prefix string, rec *partition.Rec, schema types.Schema, colPositions []int) (string, error) {
	parts := make([]string, len(colPositions))
	for i, pos := range colPositions {
		fv, err := rec.Field(schema, pos)
		if err != nil {
			return "", err
		}
		data, err := BuildKeyData(schema[pos].Type, fv)
		if err != nil {
			return "", err
		}
		parts[i] = data
	}
	return prefix + KeyDelimMajor + strings.Join(parts, KeyDelimMinor), nil
}

// validateKeyColumns resolves the named key columns to schema
// positions, rejecting column sets an index cannot key on.
func validateKeyColumns(schema types.Schema, colNames []string) ([]int, error) {
	if len(colNames) == 0 || len(colNames) > MaxIdxCols {
		return nil, errors.NewIndexError(errors.CodeIndexUnsupportedNumCols,
			fmt.Sprintf("index needs 1 to %d key columns, got %d", MaxIdxCols, len(colNames)))
	}
	positions := make([]int, len(colNames))
	for i, name := range colNames {
		pos := -1
		for j, col := range schema {
			if col.Name == name {
				pos = j
				break
			}
		}
		if pos < 0 {
			return nil, errors.NewIndexError(errors.CodeColIndexOOB,
				fmt.Sprintf("key column %q not in schema", name))
		}
		col := schema[pos]
		if col.Idx < 0 {
			return nil, errors.NewIndexError(errors.CodeIndexUnsupportedAggCol,
				fmt.Sprintf("aggregate pseudo-column %q cannot be indexed", name))
		}
		if !col.Type.IsIntegral() {
			return nil, errors.NewIndexError(errors.CodeIndexUnsupportedColType,
				fmt.Sprintf("key column %q has non-integral type %s", name, col.Type))
		}
		positions[i] = pos
	}
	return positions, nil
}
