package predicate

import (
	"fmt"

	"github.com/ivotron/skyhookdm-ceph-cls/internal/errors"
)

// computeAgg folds one row value into an accumulator. Min and max are
// independent branches: a value can displace at most the accumulator
// of its own operator. Cnt counts values and ignores their magnitude.
func computeAgg[T Numeric](val, old T, op OpType) (T, error) {
	switch op {
	case OpMin:
		if val < old {
			return val, nil
		}
		return old, nil
	case OpMax:
		if val > old {
			return val, nil
		}
		return old, nil
	case OpSum:
		return old + val, nil
	case OpCnt:
		return old + 1, nil
	}
	return old, errors.NewPredicateError(errors.CodeOpNotImplemented,
		fmt.Sprintf("operator %q is not an aggregate", op))
}
