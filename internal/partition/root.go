// Package partition implements the self-describing binary partition
// format: read views over an encoded buffer, the row field-data codec,
// a streaming encoder, per-column statistics, and the metadata sidecar
// written next to partition objects.
package partition

import (
	"fmt"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/ivotron/skyhookdm-ceph-cls/internal/errors"
	"github.com/ivotron/skyhookdm-ceph-cls/internal/skyhookv1"
	"github.com/ivotron/skyhookdm-ceph-cls/pkg/types"
)

// SkyhookVersion is the current partition format version. Readers
// reject buffers written under any other version.
const SkyhookVersion = 2

// Root is the decoded view of a partition's header. The schema string
// makes the partition self-describing: processing an object needs no
// out-of-band schema.
type Root struct {
	SkyhookVersion int32
	SchemaVersion  int32
	TableName      string
	DataSchemaText string
	DeleteVec      []byte
	NumRows        uint32

	tbl *skyhookv1.Table
}

// GetRoot decodes the partition header from an encoded buffer. The
// buffer is validated structurally before any field is read.
func GetRoot(buf []byte) (*Root, error) {
	if err := checkBuffer(buf); err != nil {
		return nil, err
	}
	tbl := skyhookv1.GetRootAsTable(buf, 0)
	root := &Root{
		SkyhookVersion: tbl.SkyhookVersion(),
		SchemaVersion:  tbl.SchemaVersion(),
		TableName:      string(tbl.TableName()),
		DataSchemaText: string(tbl.Schema()),
		DeleteVec:      tbl.DeleteVectorBytes(),
		NumRows:        tbl.Nrows(),
		tbl:            tbl,
	}
	if root.SkyhookVersion != SkyhookVersion {
		return nil, errors.NewDecodeError(errors.CodeDecodeFailed,
			fmt.Sprintf("partition format version %d, reader supports %d", root.SkyhookVersion, SkyhookVersion), nil)
	}
	return root, nil
}

// checkBuffer walks the root table's framing so a truncated or garbage
// buffer fails with DECODE_FAILED instead of an out-of-range panic.
func checkBuffer(buf []byte) error {
	if len(buf) < flatbuffers.SizeUOffsetT+flatbuffers.SizeSOffsetT {
		return errors.NewDecodeError(errors.CodeDecodeFailed,
			fmt.Sprintf("buffer of %d bytes too short for a partition root", len(buf)), nil)
	}
	rootPos := flatbuffers.GetUOffsetT(buf)
	if int64(rootPos)+flatbuffers.SizeSOffsetT > int64(len(buf)) {
		return errors.NewDecodeError(errors.CodeDecodeFailed,
			"root offset outside buffer", nil)
	}
	// A table starts with a signed offset back to its vtable.
	vtablePos := int64(rootPos) - int64(flatbuffers.GetSOffsetT(buf[rootPos:]))
	if vtablePos < 0 || vtablePos+flatbuffers.SizeVOffsetT > int64(len(buf)) {
		return errors.NewDecodeError(errors.CodeDecodeFailed,
			"root vtable outside buffer", nil)
	}
	vtableLen := int64(flatbuffers.GetVOffsetT(buf[vtablePos:]))
	if vtableLen < 2*flatbuffers.SizeVOffsetT || vtablePos+vtableLen > int64(len(buf)) {
		return errors.NewDecodeError(errors.CodeDecodeFailed,
			"root vtable truncated", nil)
	}
	return nil
}

// DataSchema parses the partition's embedded schema text.
func (r *Root) DataSchema() (types.Schema, error) {
	return types.ParseSchema(r.DataSchemaText)
}

// Rec returns the row view at a physical slot. Slots address all rows
// including tombstoned ones; callers consult Deleted for liveness.
func (r *Root) Rec(slot int) (*Rec, error) {
	if slot < 0 || slot >= int(r.NumRows) || slot >= r.tbl.RowsLength() {
		return nil, errors.NewRowError(errors.CodeRowIndexOOB,
			fmt.Sprintf("row %d outside partition of %d rows", slot, r.NumRows))
	}
	var raw skyhookv1.Row
	if !r.tbl.Rows(&raw, slot) {
		return nil, errors.NewDecodeError(errors.CodeDecodeFailed,
			"partition row vector missing", nil)
	}
	n := raw.NullbitsLength()
	nullbits := make([]uint64, n)
	for i := 0; i < n; i++ {
		nullbits[i] = raw.Nullbits(i)
	}
	return &Rec{RID: raw.RID(), nullbits: nullbits, data: raw.DataBytes()}, nil
}

// Deleted reports whether the row slot carries a tombstone.
func (r *Root) Deleted(slot int) bool {
	return slot >= 0 && slot < len(r.DeleteVec) && r.DeleteVec[slot] != 0
}

// LiveRows counts rows without a tombstone.
func (r *Root) LiveRows() uint32 {
	live := r.NumRows
	for _, d := range r.DeleteVec {
		if d != 0 {
			live--
		}
	}
	return live
}

// MarkDeleted sets the tombstone byte for a row slot in an encoded
// partition, in place.
func MarkDeleted(buf []byte, slot int) error {
	root, err := GetRoot(buf)
	if err != nil {
		return err
	}
	if slot < 0 || slot >= int(root.NumRows) {
		return errors.NewRowError(errors.CodeRowIndexOOB,
			fmt.Sprintf("row %d outside partition of %d rows", slot, root.NumRows))
	}
	if !root.tbl.MutateDeleteVector(slot, 1) {
		return errors.NewDecodeError(errors.CodeDecodeFailed,
			"partition has no delete vector", nil)
	}
	return nil
}
