// Package types provides the core data model for SkyhookDM partitions:
// column data types, column descriptors, schemas, and decoded field
// values.
package types

import (
	"fmt"
	"strconv"

	"github.com/ivotron/skyhookdm-ceph-cls/internal/errors"
)

// DataType identifies the physical type of a column. The numeric tag
// values are stable wire identifiers: they appear in schema text and
// predicate text and must never be reordered.
type DataType int

const (
	TypeInt8 DataType = iota + 1
	TypeInt16
	TypeInt32
	TypeInt64
	TypeUint8
	TypeUint16
	TypeUint32
	TypeUint64
	TypeChar
	TypeUchar
	TypeBool
	TypeFloat
	TypeDouble
	TypeDate
	TypeString
)

// TypeFirst and TypeLast bound the valid tag range.
const (
	TypeFirst = TypeInt8
	TypeLast  = TypeString
)

var typeNames = [...]string{
	TypeInt8:   "int8",
	TypeInt16:  "int16",
	TypeInt32:  "int32",
	TypeInt64:  "int64",
	TypeUint8:  "uint8",
	TypeUint16: "uint16",
	TypeUint32: "uint32",
	TypeUint64: "uint64",
	TypeChar:   "char",
	TypeUchar:  "uchar",
	TypeBool:   "bool",
	TypeFloat:  "float",
	TypeDouble: "double",
	TypeDate:   "date",
	TypeString: "string",
}

// String returns the lowercase type name.
func (t DataType) String() string {
	if t.Valid() {
		return typeNames[t]
	}
	return "invalid(" + strconv.Itoa(int(t)) + ")"
}

// Valid reports whether t is inside the defined tag range.
func (t DataType) Valid() bool {
	return t >= TypeFirst && t <= TypeLast
}

// IsArithmetic reports whether columns of this type participate in
// comparison and aggregate operators. Date and string columns do not.
func (t DataType) IsArithmetic() bool {
	switch t {
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64,
		TypeUint8, TypeUint16, TypeUint32, TypeUint64,
		TypeChar, TypeUchar, TypeBool, TypeFloat, TypeDouble:
		return true
	}
	return false
}

// IsIntegral reports whether values of this type widen to a 64-bit
// integer without loss.
func (t DataType) IsIntegral() bool {
	switch t {
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64,
		TypeUint8, TypeUint16, TypeUint32, TypeUint64,
		TypeChar, TypeUchar, TypeBool:
		return true
	}
	return false
}

// IsSigned reports whether values of this type widen to int64.
func (t DataType) IsSigned() bool {
	switch t {
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64, TypeChar:
		return true
	}
	return false
}

// IsUnsigned reports whether values of this type widen to uint64.
func (t DataType) IsUnsigned() bool {
	switch t {
	case TypeUint8, TypeUint16, TypeUint32, TypeUint64, TypeUchar, TypeBool:
		return true
	}
	return false
}

// IsFloat reports whether values of this type widen to float64.
func (t DataType) IsFloat() bool {
	return t == TypeFloat || t == TypeDouble
}

// IsTextual reports whether values of this type match as text under
// pattern predicates.
func (t DataType) IsTextual() bool {
	switch t {
	case TypeChar, TypeUchar, TypeString, TypeDate:
		return true
	}
	return false
}

// FixedSize returns the encoded byte width of the type, or 0 for
// variable-width types (string and date).
func (t DataType) FixedSize() int {
	switch t {
	case TypeInt8, TypeUint8, TypeChar, TypeUchar, TypeBool:
		return 1
	case TypeInt16, TypeUint16:
		return 2
	case TypeInt32, TypeUint32, TypeFloat:
		return 4
	case TypeInt64, TypeUint64, TypeDouble:
		return 8
	}
	return 0
}

// DataTypeFromTag converts a numeric wire tag to a DataType. Tags
// outside [TypeFirst, TypeLast] are rejected.
func DataTypeFromTag(tag int) (DataType, error) {
	t := DataType(tag)
	if !t.Valid() {
		return 0, errors.NewSchemaError(errors.CodeUnknownDataType,
			fmt.Sprintf("unknown column type tag %d", tag))
	}
	return t, nil
}
