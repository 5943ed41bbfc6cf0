// Package query implements the per-partition processing pipeline:
// decode a partition buffer, filter rows with predicates, project
// columns or fold aggregates, and re-encode the survivors as a new
// partition buffer.
//
// An invocation is a pure transformation and holds no state across
// calls, with one deliberate exception: aggregate accumulators live
// inside the predicate list, so a caller folding many partitions reuses
// one list and reads totals after the last call. A list must not be
// shared across concurrent invocations.
package query

import (
	"fmt"

	"github.com/ivotron/skyhookdm-ceph-cls/internal/errors"
	"github.com/ivotron/skyhookdm-ceph-cls/internal/partition"
	"github.com/ivotron/skyhookdm-ceph-cls/internal/predicate"
	"github.com/ivotron/skyhookdm-ceph-cls/pkg/types"
)

// Stats counts the work of one invocation.
type Stats struct {
	RowsScanned        uint32
	RowsPassed         uint32
	RowsSkippedDeleted uint32
}

// Result is one processed partition. Buf is a complete partition
// buffer carrying the output schema, so results can be processed
// again.
type Result struct {
	Buf     []byte
	NumRows uint32
	Stats   Stats
}

// ProcessPartition runs the pipeline over every live row of an encoded
// partition, in physical order.
func ProcessPartition(schemaIn, schemaOut types.Schema, preds predicate.List, buf []byte) (*Result, error) {
	return process(schemaIn, schemaOut, preds, buf, nil, true)
}

// ProcessRows runs the pipeline over the given physical row slots only,
// typically the product of an index lookup. Slots past the partition's
// row count fail with ROW_INDEX_OOB; tombstoned slots are still never
// emitted. A nil or empty slot list yields an empty result.
func ProcessRows(schemaIn, schemaOut types.Schema, preds predicate.List, buf []byte, rowNums []uint32) (*Result, error) {
	return process(schemaIn, schemaOut, preds, buf, rowNums, false)
}

func process(schemaIn, schemaOut types.Schema, preds predicate.List, buf []byte, rowNums []uint32, fullScan bool) (*Result, error) {
	if len(schemaIn) == 0 {
		return nil, errors.NewSchemaError(errors.CodeEmptySchema, "input schema is empty")
	}
	if len(schemaOut) == 0 {
		return nil, errors.NewSchemaError(errors.CodeEmptySchema, "output schema is empty")
	}
	root, err := partition.GetRoot(buf)
	if err != nil {
		return nil, err
	}

	hasAggs := predicate.HasAggPreds(preds)
	var posIn []int
	if !hasAggs {
		if posIn, err = positionsIn(schemaIn, schemaOut); err != nil {
			return nil, err
		}
	}

	out := partition.NewTableBuilder(root.TableName, root.SchemaVersion, schemaOut)
	var stats Stats

	candidates := rowNums
	if fullScan {
		candidates = make([]uint32, root.NumRows)
		for i := range candidates {
			candidates[i] = uint32(i)
		}
	}

	for _, slot := range candidates {
		stats.RowsScanned++
		if root.Deleted(int(slot)) {
			stats.RowsSkippedDeleted++
			continue
		}
		rec, err := root.Rec(int(slot))
		if err != nil {
			return nil, err
		}
		pass, err := predicate.ApplyPredicates(preds, rec, schemaIn)
		if err != nil {
			return nil, err
		}
		if !pass {
			continue
		}
		stats.RowsPassed++
		if hasAggs {
			if err := predicate.AccumulateAggs(preds, rec, schemaIn); err != nil {
				return nil, err
			}
			continue
		}
		if err := emitRow(out, rec, schemaIn, posIn); err != nil {
			return nil, err
		}
	}

	if hasAggs {
		if err := emitAggRow(out, schemaOut, preds); err != nil {
			return nil, err
		}
	}

	return &Result{
		Buf:     out.Finish(),
		NumRows: uint32(out.NumRows()),
		Stats:   stats,
	}, nil
}

// emitRow projects one accepted row into the output builder, keeping
// the source RID.
func emitRow(out *partition.TableBuilder, rec *partition.Rec, schemaIn types.Schema, posIn []int) error {
	vals := make([]types.FieldValue, len(posIn))
	for i, pos := range posIn {
		fv, err := rec.Field(schemaIn, pos)
		if err != nil {
			return err
		}
		vals[i] = fv
	}
	return out.AppendValues(rec.RID, vals)
}

// emitAggRow writes the single aggregate result row: one accumulator
// per output column, in schema order.
func emitAggRow(out *partition.TableBuilder, schemaOut types.Schema, preds predicate.List) error {
	aggs := make(predicate.List, 0, len(schemaOut))
	for _, p := range preds {
		if p.IsGlobalAgg() {
			aggs = append(aggs, p)
		}
	}
	if len(aggs) != len(schemaOut) {
		return errors.NewInternalError(
			fmt.Sprintf("%d aggregate terms for %d output columns", len(aggs), len(schemaOut)), nil)
	}
	vals := make([]types.FieldValue, len(aggs))
	for i, p := range aggs {
		fv, err := aggFieldValue(schemaOut[i], p)
		if err != nil {
			return err
		}
		vals[i] = fv
	}
	return out.AppendValues(0, vals)
}

// aggFieldValue renders an accumulator in its output column's type.
func aggFieldValue(col types.ColumnInfo, p predicate.Predicate) (types.FieldValue, error) {
	switch tp := p.(type) {
	case *predicate.TypedPredicate[int64]:
		return types.IntValue(col.Type, tp.Value()), nil
	case *predicate.TypedPredicate[uint64]:
		if col.Type == types.TypeBool {
			return types.BoolValue(col.Type, tp.Value() != 0), nil
		}
		return types.UintValue(col.Type, tp.Value()), nil
	case *predicate.TypedPredicate[float64]:
		return types.FloatValue(col.Type, tp.Value()), nil
	}
	return types.FieldValue{}, errors.NewPredicateError(errors.CodeUnsupportedAggDataType,
		fmt.Sprintf("aggregate %q accumulator cannot encode into column type %s", p.Op(), col.Type))
}

// positionsIn maps each output column to its position in the input
// schema, matching by logical idx.
func positionsIn(schemaIn, schemaOut types.Schema) ([]int, error) {
	pos := make([]int, len(schemaOut))
	for i, col := range schemaOut {
		found := -1
		for j, in := range schemaIn {
			if in.Idx == col.Idx {
				found = j
				break
			}
		}
		if found < 0 {
			return nil, errors.NewSchemaError(errors.CodeColIndexOOB,
				fmt.Sprintf("output column %q (idx %d) not in input schema", col.Name, col.Idx))
		}
		pos[i] = found
	}
	return pos, nil
}

// BuildAggSchema derives the output schema for an aggregating predicate
// list: one pseudo-column per aggregate term in list order, carrying
// the operator's reserved negative idx and name and the target column's
// type.
func BuildAggSchema(preds predicate.List) (types.Schema, error) {
	var out types.Schema
	for _, p := range preds {
		if !p.IsGlobalAgg() {
			continue
		}
		name := p.Op().String()
		idx := types.AggIdxForName(name)
		if idx == 0 {
			return nil, errors.NewPredicateError(errors.CodeOpNotImplemented,
				fmt.Sprintf("operator %q has no aggregate pseudo-column", p.Op()))
		}
		out = append(out, types.ColumnInfo{
			Idx:  idx,
			Type: p.ColType(),
			Name: name,
		})
	}
	if len(out) == 0 {
		return nil, errors.NewSchemaError(errors.CodeEmptySchema,
			"predicate list has no aggregate terms")
	}
	return out, nil
}
