package predicate

import (
	"fmt"
	"math"
	"regexp"

	"github.com/ivotron/skyhookdm-ceph-cls/internal/errors"
	"github.com/ivotron/skyhookdm-ceph-cls/pkg/types"
)

// Value constrains the widened classes a predicate can carry. Narrower
// column types widen to one of these without loss: signed integrals
// and char to int64, unsigned integrals and uchar to uint64, float and
// double to float64, text to string.
type Value interface {
	int64 | uint64 | float64 | bool | string
}

// Numeric is the subset of Value with ordering and addition, the
// classes aggregate accumulators live in.
type Numeric interface {
	int64 | uint64 | float64
}

// Predicate is one filter or aggregate term applied to a column.
// Concrete predicates are TypedPredicate instantiations over the five
// widened value classes.
type Predicate interface {
	ColIdx() int
	ColType() types.DataType
	Op() OpType
	IsGlobalAgg() bool
}

// List is an ordered predicate list. Filter terms evaluate
// conjunctively; aggregate terms fold independently.
type List []Predicate

// HasAggPreds reports whether any predicate is a global aggregate.
func HasAggPreds(preds List) bool {
	for _, p := range preds {
		if p.IsGlobalAgg() {
			return true
		}
	}
	return false
}

// TypedPredicate carries the operator, target column, and comparison
// value for one predicate term. For aggregate operators the value is
// the running accumulator: it starts at the operator's identity and
// persists across processor invocations, so one predicate list folds
// results from many partitions. Not safe for concurrent use while a
// processor invocation is running.
type TypedPredicate[T Value] struct {
	colIdx  int
	colType types.DataType
	op      OpType
	agg     bool
	value   T
	re      *regexp.Regexp
}

// NewTypedPredicate validates and builds one predicate term. The value
// class T must suit both the operator and the column type; aggregate
// values are seeded with the operator's identity regardless of the
// value argument.
func NewTypedPredicate[T Value](colIdx int, colType types.DataType, op OpType, value T) (*TypedPredicate[T], error) {
	p := &TypedPredicate[T]{colIdx: colIdx, colType: colType, op: op, value: value}
	switch {
	case op.IsMembership():
		return nil, errors.NewPredicateError(errors.CodeOpNotImplemented,
			fmt.Sprintf("operator %q is not implemented", op))

	case op.IsAggregate():
		if !isNumericClass[T]() {
			return nil, errors.NewPredicateError(errors.CodeUnsupportedAggDataType,
				fmt.Sprintf("aggregate %q needs a numeric value class", op))
		}
		if !colType.IsArithmetic() {
			return nil, errors.NewPredicateError(errors.CodeUnsupportedAggDataType,
				fmt.Sprintf("aggregate %q over non-arithmetic column type %s", op, colType))
		}
		p.agg = true
		p.value = aggIdentity[T](op)

	case op.IsComparison() || op.IsArithmetic():
		if !isArithClass[T]() || !colType.IsArithmetic() {
			return nil, errors.NewPredicateError(errors.CodeComparisonNotDefined,
				fmt.Sprintf("operator %q not defined for column type %s", op, colType))
		}

	case op == OpLike:
		pat, ok := any(value).(string)
		if !ok || !colType.IsTextual() {
			return nil, errors.NewPredicateError(errors.CodeComparisonNotDefined,
				fmt.Sprintf("operator %q needs a text pattern and a textual column, got %s", op, colType))
		}
		if pat == "" {
			return nil, errors.NewPredicateError(errors.CodeRegexPatternNotSet,
				"pattern operator with empty pattern")
		}
		// Whole-value match, RE2 syntax.
		re, err := regexp.Compile(`\A(?:` + pat + `)\z`)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCategoryPredicate, errors.CodeRegexPatternNotSet,
				fmt.Sprintf("pattern %q does not compile", pat), err)
		}
		p.re = re

	case op.IsLogical():
		if !isIntegralClass[T]() || !colType.IsIntegral() {
			return nil, errors.NewPredicateError(errors.CodeComparisonNotDefined,
				fmt.Sprintf("operator %q needs integral operands, got %s", op, colType))
		}

	case op.IsBitwise():
		if !isUnsignedClass[T]() || !colType.IsUnsigned() {
			return nil, errors.NewPredicateError(errors.CodeComparisonNotDefined,
				fmt.Sprintf("operator %q needs unsigned operands, got %s", op, colType))
		}

	default:
		return nil, errors.NewPredicateError(errors.CodeOpNotRecognized,
			fmt.Sprintf("operator %d out of range", int(op)))
	}
	return p, nil
}

func (p *TypedPredicate[T]) ColIdx() int {
	return p.colIdx
}

func (p *TypedPredicate[T]) ColType() types.DataType {
	return p.colType
}

func (p *TypedPredicate[T]) Op() OpType {
	return p.op
}

func (p *TypedPredicate[T]) IsGlobalAgg() bool {
	return p.agg
}

// Value returns the comparison value, or the running accumulator for
// aggregate predicates.
func (p *TypedPredicate[T]) Value() T {
	return p.value
}

// UpdateAgg replaces the accumulator value.
func (p *TypedPredicate[T]) UpdateAgg(v T) {
	p.value = v
}

// ResetAgg reseeds an aggregate's accumulator with its identity. A
// no-op for filter predicates.
func (p *TypedPredicate[T]) ResetAgg() {
	if p.agg {
		p.value = aggIdentity[T](p.op)
	}
}

// Pattern returns the compiled pattern of a like predicate, nil
// otherwise.
func (p *TypedPredicate[T]) Pattern() *regexp.Regexp {
	return p.re
}

// Class checks for the value parameter. A type assertion on the zero
// value pins T to a single concrete class.

func isNumericClass[T Value]() bool {
	var z T
	switch any(z).(type) {
	case int64, uint64, float64:
		return true
	}
	return false
}

// isArithClass admits bool alongside the numeric classes, matching the
// column types comparisons are defined over.
func isArithClass[T Value]() bool {
	var z T
	switch any(z).(type) {
	case int64, uint64, float64, bool:
		return true
	}
	return false
}

func isIntegralClass[T Value]() bool {
	var z T
	switch any(z).(type) {
	case int64, uint64, bool:
		return true
	}
	return false
}

func isUnsignedClass[T Value]() bool {
	var z T
	switch any(z).(type) {
	case uint64:
		return true
	}
	return false
}

// aggIdentity returns the seed for an aggregate accumulator: the
// class maximum for min, the class minimum for max, zero for sum and
// cnt. Identities guarantee any folded value displaces the seed.
func aggIdentity[T Value](op OpType) T {
	var z T
	switch any(z).(type) {
	case int64:
		var v int64
		switch op {
		case OpMin:
			v = math.MaxInt64
		case OpMax:
			v = math.MinInt64
		}
		return any(v).(T)
	case uint64:
		var v uint64
		if op == OpMin {
			v = math.MaxUint64
		}
		return any(v).(T)
	case float64:
		var v float64
		switch op {
		case OpMin:
			v = math.Inf(1)
		case OpMax:
			v = math.Inf(-1)
		}
		return any(v).(T)
	}
	return z
}
