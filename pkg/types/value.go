package types

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ivotron/skyhookdm-ceph-cls/internal/errors"
)

// FieldValue is one decoded field: the column's type tag plus the value
// widened to its 64-bit class. Exactly one of the value slots is
// meaningful, chosen by the type's class; null fields carry only the
// tag.
type FieldValue struct {
	Type   DataType `json:"type"`
	IsNull bool     `json:"is_null,omitempty"`
	Int    int64    `json:"int,omitempty"`
	Uint   uint64   `json:"uint,omitempty"`
	Float  float64  `json:"float,omitempty"`
	Bool   bool     `json:"bool,omitempty"`
	Str    string   `json:"str,omitempty"`
}

// NullValue returns the null marker for a column type.
func NullValue(t DataType) FieldValue {
	return FieldValue{Type: t, IsNull: true}
}

// IntValue builds a value for a signed column type.
func IntValue(t DataType, v int64) FieldValue {
	return FieldValue{Type: t, Int: v}
}

// UintValue builds a value for an unsigned column type.
func UintValue(t DataType, v uint64) FieldValue {
	return FieldValue{Type: t, Uint: v}
}

// FloatValue builds a value for a floating-point column type.
func FloatValue(t DataType, v float64) FieldValue {
	return FieldValue{Type: t, Float: v}
}

// BoolValue builds a value for a boolean column.
func BoolValue(t DataType, v bool) FieldValue {
	return FieldValue{Type: t, Bool: v}
}

// StrValue builds a value for a string or date column.
func StrValue(t DataType, v string) FieldValue {
	return FieldValue{Type: t, Str: v}
}

// ParseFieldLiteral converts one text field into a value of the
// column's type. Empty text on a nullable column parses as null;
// integer literals are range-checked against the column width.
func ParseFieldLiteral(col ColumnInfo, raw string) (FieldValue, error) {
	if raw == "" {
		if col.Nullable {
			return NullValue(col.Type), nil
		}
		return FieldValue{}, errors.NewSchemaError(errors.CodeBadColInfoConversion,
			fmt.Sprintf("column %q is not nullable but the field is empty", col.Name))
	}

	switch {
	case col.Type == TypeBool:
		switch strings.TrimSpace(raw) {
		case "0", "false":
			return BoolValue(col.Type, false), nil
		case "1", "true":
			return BoolValue(col.Type, true), nil
		}
		return FieldValue{}, errors.NewSchemaError(errors.CodeBadColInfoConversion,
			fmt.Sprintf("column %q: bool literal %q must be 0, 1, true, or false", col.Name, raw))
	case col.Type == TypeChar:
		if len(raw) != 1 {
			return FieldValue{}, errors.NewSchemaError(errors.CodeBadColInfoConversion,
				fmt.Sprintf("column %q: char literal %q must be a single byte", col.Name, raw))
		}
		return IntValue(col.Type, int64(raw[0])), nil
	case col.Type == TypeUchar:
		if len(raw) != 1 {
			return FieldValue{}, errors.NewSchemaError(errors.CodeBadColInfoConversion,
				fmt.Sprintf("column %q: uchar literal %q must be a single byte", col.Name, raw))
		}
		return UintValue(col.Type, uint64(raw[0])), nil
	case col.Type.IsSigned():
		v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, col.Type.FixedSize()*8)
		if err != nil {
			return FieldValue{}, errors.Wrap(errors.ErrCategorySchema, errors.CodeBadColInfoConversion,
				fmt.Sprintf("column %q: integer literal %q", col.Name, raw), err)
		}
		return IntValue(col.Type, v), nil
	case col.Type.IsUnsigned():
		v, err := strconv.ParseUint(strings.TrimSpace(raw), 10, col.Type.FixedSize()*8)
		if err != nil {
			return FieldValue{}, errors.Wrap(errors.ErrCategorySchema, errors.CodeBadColInfoConversion,
				fmt.Sprintf("column %q: unsigned literal %q", col.Name, raw), err)
		}
		return UintValue(col.Type, v), nil
	case col.Type.IsFloat():
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return FieldValue{}, errors.Wrap(errors.ErrCategorySchema, errors.CodeBadColInfoConversion,
				fmt.Sprintf("column %q: float literal %q", col.Name, raw), err)
		}
		return FloatValue(col.Type, v), nil
	}
	// String and date carry the text as-is.
	return StrValue(col.Type, raw), nil
}

// String renders the value as canonical text. Char values render as the
// character itself, booleans as 0/1, floats in shortest form. The same
// text is used for display, bloom filter keys, and pruning bounds.
func (v FieldValue) String() string {
	if v.IsNull {
		return "NULL"
	}
	switch {
	case v.Type == TypeChar:
		return string(rune(v.Int))
	case v.Type == TypeUchar:
		return string(rune(v.Uint))
	case v.Type == TypeBool:
		if v.Bool {
			return "1"
		}
		return "0"
	case v.Type.IsSigned():
		return strconv.FormatInt(v.Int, 10)
	case v.Type.IsUnsigned():
		return strconv.FormatUint(v.Uint, 10)
	case v.Type.IsFloat():
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	}
	return v.Str
}
