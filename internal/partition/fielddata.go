package partition

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ivotron/skyhookdm-ceph-cls/internal/errors"
	"github.com/ivotron/skyhookdm-ceph-cls/pkg/types"
)

// Row field-data region layout, little-endian:
//
//	u16  field count n
//	u32  cumulative end offset into the payload, one per field
//	     payload bytes
//
// Field i spans payload[end[i-1]:end[i]] (end[-1] is 0). Null fields
// are zero-length with the row's null bit set. Fixed-width values use
// their type's width; string and date values are raw bytes.

const (
	fieldCountSize  = 2
	fieldOffsetSize = 4
)

// fieldSlice returns the payload bytes of field pos within a row's
// field-data region.
func fieldSlice(data []byte, pos int) ([]byte, error) {
	if len(data) < fieldCountSize {
		return nil, errors.NewDecodeError(errors.CodeDecodeFailed,
			"row field region too short", nil)
	}
	n := int(binary.LittleEndian.Uint16(data))
	if pos < 0 || pos >= n {
		return nil, errors.NewSchemaError(errors.CodeColIndexOOB,
			fmt.Sprintf("field %d outside row of %d fields", pos, n))
	}
	offEnd := fieldCountSize + n*fieldOffsetSize
	if len(data) < offEnd {
		return nil, errors.NewDecodeError(errors.CodeDecodeFailed,
			"row field offsets truncated", nil)
	}
	end := int(binary.LittleEndian.Uint32(data[fieldCountSize+pos*fieldOffsetSize:]))
	start := 0
	if pos > 0 {
		start = int(binary.LittleEndian.Uint32(data[fieldCountSize+(pos-1)*fieldOffsetSize:]))
	}
	payload := data[offEnd:]
	if start > end || end > len(payload) {
		return nil, errors.NewDecodeError(errors.CodeDecodeFailed,
			fmt.Sprintf("field %d bounds [%d:%d] corrupt for %d payload bytes", pos, start, end, len(payload)), nil)
	}
	return payload[start:end], nil
}

// fieldCount returns the number of fields encoded in a region.
func fieldCount(data []byte) (int, error) {
	if len(data) < fieldCountSize {
		return 0, errors.NewDecodeError(errors.CodeDecodeFailed,
			"row field region too short", nil)
	}
	return int(binary.LittleEndian.Uint16(data)), nil
}

// decodeField interprets raw field bytes per the column type, widening
// scalars to the type's 64-bit class.
func decodeField(t types.DataType, raw []byte) (types.FieldValue, error) {
	if w := t.FixedSize(); w != 0 && len(raw) != w {
		return types.FieldValue{}, errors.NewDecodeError(errors.CodeDecodeFailed,
			fmt.Sprintf("field of type %s needs %d bytes, got %d", t, w, len(raw)), nil)
	}
	switch t {
	case types.TypeInt8, types.TypeChar:
		return types.IntValue(t, int64(int8(raw[0]))), nil
	case types.TypeInt16:
		return types.IntValue(t, int64(int16(binary.LittleEndian.Uint16(raw)))), nil
	case types.TypeInt32:
		return types.IntValue(t, int64(int32(binary.LittleEndian.Uint32(raw)))), nil
	case types.TypeInt64:
		return types.IntValue(t, int64(binary.LittleEndian.Uint64(raw))), nil
	case types.TypeUint8, types.TypeUchar:
		return types.UintValue(t, uint64(raw[0])), nil
	case types.TypeUint16:
		return types.UintValue(t, uint64(binary.LittleEndian.Uint16(raw))), nil
	case types.TypeUint32:
		return types.UintValue(t, uint64(binary.LittleEndian.Uint32(raw))), nil
	case types.TypeUint64:
		return types.UintValue(t, binary.LittleEndian.Uint64(raw)), nil
	case types.TypeBool:
		return types.BoolValue(t, raw[0] != 0), nil
	case types.TypeFloat:
		return types.FloatValue(t, float64(math.Float32frombits(binary.LittleEndian.Uint32(raw)))), nil
	case types.TypeDouble:
		return types.FloatValue(t, math.Float64frombits(binary.LittleEndian.Uint64(raw))), nil
	case types.TypeDate, types.TypeString:
		return types.StrValue(t, string(raw)), nil
	}
	return types.FieldValue{}, errors.NewSchemaError(errors.CodeUnsupportedDataType,
		fmt.Sprintf("cannot decode column type %s", t))
}

// encodeField renders one value as its wire bytes. Null values encode
// as zero length; the caller records the null bit.
func encodeField(t types.DataType, v types.FieldValue) ([]byte, error) {
	if v.IsNull {
		return nil, nil
	}
	if v.Type != t {
		return nil, errors.NewInternalError(
			fmt.Sprintf("field value of type %s for column of type %s", v.Type, t), nil)
	}
	switch t {
	case types.TypeInt8, types.TypeChar:
		return []byte{byte(int8(v.Int))}, nil
	case types.TypeInt16:
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, uint16(int16(v.Int)))
		return b, nil
	case types.TypeInt32:
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, uint32(int32(v.Int)))
		return b, nil
	case types.TypeInt64:
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, uint64(v.Int))
		return b, nil
	case types.TypeUint8, types.TypeUchar:
		return []byte{byte(v.Uint)}, nil
	case types.TypeUint16:
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, uint16(v.Uint))
		return b, nil
	case types.TypeUint32:
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, uint32(v.Uint))
		return b, nil
	case types.TypeUint64:
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, v.Uint)
		return b, nil
	case types.TypeBool:
		if v.Bool {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case types.TypeFloat:
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v.Float)))
		return b, nil
	case types.TypeDouble:
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, math.Float64bits(v.Float))
		return b, nil
	case types.TypeDate, types.TypeString:
		return []byte(v.Str), nil
	}
	return nil, errors.NewSchemaError(errors.CodeUnsupportedDataType,
		fmt.Sprintf("cannot encode column type %s", t))
}

// EncodeFieldData encodes one row's values, in schema order, as a
// field-data region.
func EncodeFieldData(schema types.Schema, vals []types.FieldValue) ([]byte, error) {
	if len(vals) != len(schema) {
		return nil, errors.NewInternalError(
			fmt.Sprintf("%d values for %d schema columns", len(vals), len(schema)), nil)
	}
	encoded := make([][]byte, len(vals))
	total := 0
	for i, v := range vals {
		b, err := encodeField(schema[i].Type, v)
		if err != nil {
			return nil, err
		}
		encoded[i] = b
		total += len(b)
	}
	region := make([]byte, fieldCountSize+len(vals)*fieldOffsetSize, fieldCountSize+len(vals)*fieldOffsetSize+total)
	binary.LittleEndian.PutUint16(region, uint16(len(vals)))
	end := 0
	for i, b := range encoded {
		end += len(b)
		binary.LittleEndian.PutUint32(region[fieldCountSize+i*fieldOffsetSize:], uint32(end))
	}
	for _, b := range encoded {
		region = append(region, b...)
	}
	return region, nil
}
