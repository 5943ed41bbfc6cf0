package partition

import (
	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/ivotron/skyhookdm-ceph-cls/internal/skyhookv1"
	"github.com/ivotron/skyhookdm-ceph-cls/pkg/types"
)

// TableBuilder encodes a partition buffer row by row. Rows nest inside
// the buffer bottom-up, so the builder holds row offsets until Finish
// assembles the root table. A builder is good for one buffer.
type TableBuilder struct {
	b         *flatbuffers.Builder
	schema    types.Schema
	tableName string
	schemaV   int32
	rows      []flatbuffers.UOffsetT
	nullWords int
}

// NewTableBuilder prepares an encoder for one partition of the given
// table. The schema becomes the partition's embedded schema text.
func NewTableBuilder(tableName string, schemaVersion int32, schema types.Schema) *TableBuilder {
	return &TableBuilder{
		b:         flatbuffers.NewBuilder(4096),
		schema:    schema,
		tableName: tableName,
		schemaV:   schemaVersion,
		nullWords: nullbitWords(schema),
	}
}

// nullbitWords sizes the per-row null bitmap from the largest logical
// column idx, one bit per idx.
func nullbitWords(schema types.Schema) int {
	max := schema.MaxIdx()
	if max < 0 {
		return 0
	}
	return max/64 + 1
}

// Schema returns the builder's output schema.
func (tb *TableBuilder) Schema() types.Schema {
	return tb.schema
}

// NumRows returns the count of rows appended so far.
func (tb *TableBuilder) NumRows() int {
	return len(tb.rows)
}

// AppendRow adds one row from a pre-encoded field-data region and null
// bitmap.
func (tb *TableBuilder) AppendRow(rid int64, nullbits []uint64, fieldData []byte) {
	dataOff := tb.b.CreateByteVector(fieldData)

	skyhookv1.RowStartNullbitsVector(tb.b, len(nullbits))
	for i := len(nullbits) - 1; i >= 0; i-- {
		tb.b.PrependUint64(nullbits[i])
	}
	nullsOff := tb.b.EndVector(len(nullbits))

	skyhookv1.RowStart(tb.b)
	skyhookv1.RowAddRID(tb.b, rid)
	skyhookv1.RowAddNullbits(tb.b, nullsOff)
	skyhookv1.RowAddData(tb.b, dataOff)
	tb.rows = append(tb.rows, skyhookv1.RowEnd(tb.b))
}

// AppendValues encodes vals against the builder's schema and appends
// the row, deriving null bits from null values.
func (tb *TableBuilder) AppendValues(rid int64, vals []types.FieldValue) error {
	data, err := EncodeFieldData(tb.schema, vals)
	if err != nil {
		return err
	}
	nulls := make([]uint64, tb.nullWords)
	for i, v := range vals {
		if !v.IsNull {
			continue
		}
		if idx := tb.schema[i].Idx; idx >= 0 {
			nulls[idx/64] |= 1 << (uint(idx) % 64)
		}
	}
	tb.AppendRow(rid, nulls, data)
	return nil
}

// Finish assembles the partition buffer: header fields, a zeroed
// delete vector, and the rows in append order. The returned slice
// aliases the builder's arena.
func (tb *TableBuilder) Finish() []byte {
	nameOff := tb.b.CreateString(tb.tableName)
	schemaOff := tb.b.CreateString(tb.schema.String())
	dlvOff := tb.b.CreateByteVector(make([]byte, len(tb.rows)))

	skyhookv1.TableStartRowsVector(tb.b, len(tb.rows))
	for i := len(tb.rows) - 1; i >= 0; i-- {
		tb.b.PrependUOffsetT(tb.rows[i])
	}
	rowsOff := tb.b.EndVector(len(tb.rows))

	skyhookv1.TableStart(tb.b)
	skyhookv1.TableAddSkyhookVersion(tb.b, SkyhookVersion)
	skyhookv1.TableAddSchemaVersion(tb.b, tb.schemaV)
	skyhookv1.TableAddTableName(tb.b, nameOff)
	skyhookv1.TableAddSchema(tb.b, schemaOff)
	skyhookv1.TableAddDeleteVector(tb.b, dlvOff)
	skyhookv1.TableAddRows(tb.b, rowsOff)
	skyhookv1.TableAddNrows(tb.b, uint32(len(tb.rows)))
	skyhookv1.FinishTableBuffer(tb.b, skyhookv1.TableEnd(tb.b))
	return tb.b.FinishedBytes()
}
