// Package predicate implements the typed predicate model: operator
// parsing, per-class comparison kernels, aggregate accumulators, and
// row evaluation against a schema.
package predicate

import (
	"fmt"
	"strconv"

	"github.com/ivotron/skyhookdm-ceph-cls/internal/errors"
)

// OpType identifies a predicate operator. Token names are stable wire
// identifiers used in predicate text.
type OpType int

const (
	OpLT OpType = iota + 1
	OpGT
	OpEQ
	OpNE
	OpLEQ
	OpGEQ
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMin
	OpMax
	OpSum
	OpCnt
	OpLike
	OpIn
	OpNotIn
	OpBetween
	OpLogicalOr
	OpLogicalAnd
	OpLogicalNot
	OpLogicalNor
	OpLogicalXor
	OpLogicalNand
	OpBitwiseAnd
	OpBitwiseOr
)

var opNames = [...]string{
	OpLT:          "lt",
	OpGT:          "gt",
	OpEQ:          "eq",
	OpNE:          "ne",
	OpLEQ:         "leq",
	OpGEQ:         "geq",
	OpAdd:         "add",
	OpSub:         "sub",
	OpMul:         "mul",
	OpDiv:         "div",
	OpMin:         "min",
	OpMax:         "max",
	OpSum:         "sum",
	OpCnt:         "cnt",
	OpLike:        "like",
	OpIn:          "in",
	OpNotIn:       "not_in",
	OpBetween:     "between",
	OpLogicalOr:   "logical_or",
	OpLogicalAnd:  "logical_and",
	OpLogicalNot:  "logical_not",
	OpLogicalNor:  "logical_nor",
	OpLogicalXor:  "logical_xor",
	OpLogicalNand: "logical_nand",
	OpBitwiseAnd:  "bitwise_and",
	OpBitwiseOr:   "bitwise_or",
}

var opTokens = func() map[string]OpType {
	m := make(map[string]OpType, len(opNames))
	for op, name := range opNames {
		if name != "" {
			m[name] = OpType(op)
		}
	}
	return m
}()

// String returns the operator's wire token.
func (op OpType) String() string {
	if op >= 1 && int(op) < len(opNames) {
		return opNames[op]
	}
	return "invalid(" + strconv.Itoa(int(op)) + ")"
}

// OpTypeFromString parses an operator token.
func OpTypeFromString(tok string) (OpType, error) {
	if op, ok := opTokens[tok]; ok {
		return op, nil
	}
	return 0, errors.NewPredicateError(errors.CodeOpNotRecognized,
		fmt.Sprintf("unknown operator %q", tok))
}

// IsComparison reports whether op is an ordering comparison.
func (op OpType) IsComparison() bool {
	return op >= OpLT && op <= OpGEQ
}

// IsArithmetic reports whether op is an arithmetic operator. These
// parse but have no defined comparison semantics.
func (op OpType) IsArithmetic() bool {
	return op >= OpAdd && op <= OpDiv
}

// IsAggregate reports whether op folds rows into an accumulator.
func (op OpType) IsAggregate() bool {
	return op >= OpMin && op <= OpCnt
}

// IsMembership reports whether op is a set or range membership test.
func (op OpType) IsMembership() bool {
	return op == OpIn || op == OpNotIn || op == OpBetween
}

// IsLogical reports whether op is a logical connective over integer
// operands.
func (op OpType) IsLogical() bool {
	return op >= OpLogicalOr && op <= OpLogicalNand
}

// IsBitwise reports whether op tests bits of unsigned operands.
func (op OpType) IsBitwise() bool {
	return op == OpBitwiseAnd || op == OpBitwiseOr
}
