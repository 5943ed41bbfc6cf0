package predicate

import (
	"fmt"

	"github.com/ivotron/skyhookdm-ceph-cls/internal/errors"
	"github.com/ivotron/skyhookdm-ceph-cls/internal/partition"
	"github.com/ivotron/skyhookdm-ceph-cls/pkg/types"
)

// ApplyPredicates evaluates the filter terms of preds against one
// record. Terms combine conjunctively; aggregate terms are skipped. A
// null field fails its term, so null-valued rows never reach output or
// accumulation through that column.
func ApplyPredicates(preds List, rec *partition.Rec, schema types.Schema) (bool, error) {
	for _, p := range preds {
		if p.IsGlobalAgg() {
			continue
		}
		pass, err := applyOne(p, rec, schema)
		if err != nil {
			return false, err
		}
		if !pass {
			return false, nil
		}
	}
	return true, nil
}

func applyOne(p Predicate, rec *partition.Rec, schema types.Schema) (bool, error) {
	pos, err := schemaPos(schema, p.ColIdx())
	if err != nil {
		return false, err
	}
	fv, err := rec.Field(schema, pos)
	if err != nil {
		return false, err
	}
	if fv.IsNull {
		return false, nil
	}
	switch tp := p.(type) {
	case *TypedPredicate[int64]:
		if !fv.Type.IsSigned() {
			return false, classMismatch(tp.Op(), fv.Type)
		}
		return compareInt64(fv.Int, tp.Value(), tp.Op())
	case *TypedPredicate[uint64]:
		if !fv.Type.IsUnsigned() {
			return false, classMismatch(tp.Op(), fv.Type)
		}
		return compareUint64(uintOf(fv), tp.Value(), tp.Op())
	case *TypedPredicate[float64]:
		if !fv.Type.IsFloat() {
			return false, classMismatch(tp.Op(), fv.Type)
		}
		return compareFloat64(fv.Float, tp.Value(), tp.Op())
	case *TypedPredicate[bool]:
		if fv.Type != types.TypeBool {
			return false, classMismatch(tp.Op(), fv.Type)
		}
		return compareBool(fv.Bool, tp.Value(), tp.Op())
	case *TypedPredicate[string]:
		if !fv.Type.IsTextual() {
			return false, classMismatch(tp.Op(), fv.Type)
		}
		return matchText(fv.String(), tp.Pattern(), tp.Op())
	}
	return false, errors.NewPredicateError(errors.CodeOpNotRecognized,
		fmt.Sprintf("unrecognized predicate implementation for operator %q", p.Op()))
}

// AccumulateAggs folds one record into the aggregate terms of preds.
// Null fields are skipped entirely, so cnt counts the non-null values
// of its column.
func AccumulateAggs(preds List, rec *partition.Rec, schema types.Schema) error {
	for _, p := range preds {
		if !p.IsGlobalAgg() {
			continue
		}
		if err := accumulateOne(p, rec, schema); err != nil {
			return err
		}
	}
	return nil
}

func accumulateOne(p Predicate, rec *partition.Rec, schema types.Schema) error {
	pos, err := schemaPos(schema, p.ColIdx())
	if err != nil {
		return err
	}
	fv, err := rec.Field(schema, pos)
	if err != nil {
		return err
	}
	if fv.IsNull {
		return nil
	}
	switch tp := p.(type) {
	case *TypedPredicate[int64]:
		if !fv.Type.IsSigned() {
			return aggClassMismatch(tp.Op(), fv.Type)
		}
		v, err := computeAgg(fv.Int, tp.Value(), tp.Op())
		if err != nil {
			return err
		}
		tp.UpdateAgg(v)
	case *TypedPredicate[uint64]:
		if !fv.Type.IsUnsigned() {
			return aggClassMismatch(tp.Op(), fv.Type)
		}
		v, err := computeAgg(uintOf(fv), tp.Value(), tp.Op())
		if err != nil {
			return err
		}
		tp.UpdateAgg(v)
	case *TypedPredicate[float64]:
		if !fv.Type.IsFloat() {
			return aggClassMismatch(tp.Op(), fv.Type)
		}
		v, err := computeAgg(fv.Float, tp.Value(), tp.Op())
		if err != nil {
			return err
		}
		tp.UpdateAgg(v)
	default:
		return errors.NewPredicateError(errors.CodeUnsupportedAggDataType,
			fmt.Sprintf("aggregate %q has no numeric accumulator", p.Op()))
	}
	return nil
}

// schemaPos maps a predicate's logical column index to its position in
// the schema.
func schemaPos(schema types.Schema, colIdx int) (int, error) {
	for i, c := range schema {
		if c.Idx == colIdx {
			return i, nil
		}
	}
	return 0, errors.NewPredicateError(errors.CodeColIndexOOB,
		fmt.Sprintf("predicate column index %d not in schema", colIdx))
}

// uintOf widens an unsigned-class field. Bool columns widen to 0 or 1.
func uintOf(fv types.FieldValue) uint64 {
	if fv.Type == types.TypeBool {
		if fv.Bool {
			return 1
		}
		return 0
	}
	return fv.Uint
}

func classMismatch(op OpType, t types.DataType) error {
	return errors.NewPredicateError(errors.CodeComparisonNotDefined,
		fmt.Sprintf("operator %q value class does not match column type %s", op, t))
}

func aggClassMismatch(op OpType, t types.DataType) error {
	return errors.NewPredicateError(errors.CodeUnsupportedAggDataType,
		fmt.Sprintf("aggregate %q value class does not match column type %s", op, t))
}
