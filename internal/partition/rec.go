package partition

import (
	"fmt"

	"github.com/ivotron/skyhookdm-ceph-cls/internal/errors"
	"github.com/ivotron/skyhookdm-ceph-cls/pkg/types"
)

// Rec is the decoded view of one row. The field data aliases the
// partition buffer's backing array, so a Rec is only valid while its
// partition buffer is.
type Rec struct {
	// RID is the record id assigned at write time. Processing preserves
	// it, so a result row can be traced to its source row.
	RID int64

	nullbits []uint64
	data     []byte
}

// NewRec assembles a row view from raw parts. Used by encoders and
// tests; readers get Recs from Root.Rec.
func NewRec(rid int64, nullbits []uint64, data []byte) *Rec {
	return &Rec{RID: rid, nullbits: nullbits, data: data}
}

// IsNull reports whether the null bit for a column's logical idx is
// set. Bits address columns by Idx, not by schema position, so null
// addressing survives projection. Aggregate pseudo-columns (negative
// Idx) are never null.
func (r *Rec) IsNull(colIdx int) bool {
	if colIdx < 0 {
		return false
	}
	word := colIdx / 64
	if word >= len(r.nullbits) {
		return false
	}
	return r.nullbits[word]&(1<<(uint(colIdx)%64)) != 0
}

// Nullbits returns a copy of the row's null bitmap words.
func (r *Rec) Nullbits() []uint64 {
	out := make([]uint64, len(r.nullbits))
	copy(out, r.nullbits)
	return out
}

// NumFields returns the number of fields in the row's data region.
func (r *Rec) NumFields() (int, error) {
	return fieldCount(r.data)
}

// Field decodes the field at schema position pos. The null bit is
// checked first; null fields carry only the column's type tag.
func (r *Rec) Field(schema types.Schema, pos int) (types.FieldValue, error) {
	if pos < 0 || pos >= len(schema) {
		return types.FieldValue{}, errors.NewSchemaError(errors.CodeColIndexOOB,
			fmt.Sprintf("field position %d outside schema of %d columns", pos, len(schema)))
	}
	col := schema[pos]
	if r.IsNull(col.Idx) {
		return types.NullValue(col.Type), nil
	}
	raw, err := fieldSlice(r.data, pos)
	if err != nil {
		return types.FieldValue{}, err
	}
	return decodeField(col.Type, raw)
}

// RawField returns the encoded bytes of the field at position pos,
// without interpreting them.
func (r *Rec) RawField(pos int) ([]byte, error) {
	return fieldSlice(r.data, pos)
}
