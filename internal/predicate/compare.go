package predicate

import (
	"fmt"
	"regexp"

	"github.com/ivotron/skyhookdm-ceph-cls/internal/errors"
)

// Comparison kernels, one per widened value class. Operand order is
// (row value, predicate value) throughout. Operators a kernel does not
// define fail with COMPARISON_NOT_DEFINED, never a silent false.

func compareInt64(v1, v2 int64, op OpType) (bool, error) {
	switch op {
	case OpLT:
		return v1 < v2, nil
	case OpGT:
		return v1 > v2, nil
	case OpEQ:
		return v1 == v2, nil
	case OpNE:
		return v1 != v2, nil
	case OpLEQ:
		return v1 <= v2, nil
	case OpGEQ:
		return v1 >= v2, nil
	case OpLogicalAnd:
		return v1 != 0 && v2 != 0, nil
	case OpLogicalOr:
		return v1 != 0 || v2 != 0, nil
	case OpLogicalNot:
		return v1 == 0, nil
	case OpLogicalNor:
		return v1 == 0 && v2 == 0, nil
	case OpLogicalXor:
		return (v1 != 0) != (v2 != 0), nil
	case OpLogicalNand:
		return !(v1 != 0 && v2 != 0), nil
	}
	return false, errors.NewPredicateError(errors.CodeComparisonNotDefined,
		fmt.Sprintf("operator %q not defined for int64 operands", op))
}

func compareUint64(v1, v2 uint64, op OpType) (bool, error) {
	switch op {
	case OpLT:
		return v1 < v2, nil
	case OpGT:
		return v1 > v2, nil
	case OpEQ:
		return v1 == v2, nil
	case OpNE:
		return v1 != v2, nil
	case OpLEQ:
		return v1 <= v2, nil
	case OpGEQ:
		return v1 >= v2, nil
	case OpLogicalAnd:
		return v1 != 0 && v2 != 0, nil
	case OpLogicalOr:
		return v1 != 0 || v2 != 0, nil
	case OpLogicalNot:
		return v1 == 0, nil
	case OpLogicalNor:
		return v1 == 0 && v2 == 0, nil
	case OpLogicalXor:
		return (v1 != 0) != (v2 != 0), nil
	case OpLogicalNand:
		return !(v1 != 0 && v2 != 0), nil
	case OpBitwiseAnd:
		return v1&v2 != 0, nil
	case OpBitwiseOr:
		return v1|v2 != 0, nil
	}
	return false, errors.NewPredicateError(errors.CodeComparisonNotDefined,
		fmt.Sprintf("operator %q not defined for uint64 operands", op))
}

func compareFloat64(v1, v2 float64, op OpType) (bool, error) {
	switch op {
	case OpLT:
		return v1 < v2, nil
	case OpGT:
		return v1 > v2, nil
	case OpEQ:
		return v1 == v2, nil
	case OpNE:
		return v1 != v2, nil
	case OpLEQ:
		return v1 <= v2, nil
	case OpGEQ:
		return v1 >= v2, nil
	}
	return false, errors.NewPredicateError(errors.CodeComparisonNotDefined,
		fmt.Sprintf("operator %q not defined for float64 operands", op))
}

func compareBool(v1, v2 bool, op OpType) (bool, error) {
	b1, b2 := uint64(0), uint64(0)
	if v1 {
		b1 = 1
	}
	if v2 {
		b2 = 1
	}
	switch op {
	case OpLT, OpGT, OpEQ, OpNE, OpLEQ, OpGEQ,
		OpLogicalAnd, OpLogicalOr, OpLogicalNot, OpLogicalNor, OpLogicalXor, OpLogicalNand:
		return compareUint64(b1, b2, op)
	}
	return false, errors.NewPredicateError(errors.CodeComparisonNotDefined,
		fmt.Sprintf("operator %q not defined for bool operands", op))
}

// matchText applies a compiled like pattern to a row's text value.
func matchText(v string, re *regexp.Regexp, op OpType) (bool, error) {
	if op != OpLike {
		return false, errors.NewPredicateError(errors.CodeComparisonNotDefined,
			fmt.Sprintf("operator %q not defined for text operands", op))
	}
	if re == nil {
		return false, errors.NewPredicateError(errors.CodeRegexPatternNotSet,
			"pattern operator with no compiled pattern")
	}
	return re.MatchString(v), nil
}
