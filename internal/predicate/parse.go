package predicate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ivotron/skyhookdm-ceph-cls/internal/errors"
	"github.com/ivotron/skyhookdm-ceph-cls/pkg/types"
)

// Predicate text is a ";"-separated list of terms, each of the form
// "colIdx,op,type,isGlobalAgg,value". The value field is the split
// remainder, so text literals and patterns may contain commas.
const (
	PredDelimOuter = ";"
	PredDelimInner = ","

	// SelectAllRows disables filtering: every live row passes.
	SelectAllRows = "*"
)

// ParsePredicates parses predicate text against a schema. Empty text
// and SelectAllRows yield a nil list. The term's type tag is validated,
// but the schema is authoritative for the column's type.
func ParsePredicates(schema types.Schema, text string) (List, error) {
	if trimmed := strings.TrimSpace(text); trimmed == "" || trimmed == SelectAllRows {
		return nil, nil
	}
	var preds List
	for _, term := range strings.Split(text, PredDelimOuter) {
		if strings.TrimSpace(term) == "" {
			continue
		}
		p, err := parseTerm(schema, term)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	return preds, nil
}

func parseTerm(schema types.Schema, term string) (Predicate, error) {
	parts := strings.SplitN(term, PredDelimInner, 5)
	if len(parts) != 5 {
		return nil, errors.NewPredicateError(errors.CodeOpNotRecognized,
			fmt.Sprintf("predicate term %q needs colIdx,op,type,isGlobalAgg,value", term))
	}
	colIdx, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCategoryPredicate, errors.CodeBadColInfoConversion,
			fmt.Sprintf("predicate column index %q is not an integer", parts[0]), err)
	}
	op, err := OpTypeFromString(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, err
	}
	tag, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCategoryPredicate, errors.CodeBadColInfoConversion,
			fmt.Sprintf("predicate type tag %q is not an integer", parts[2]), err)
	}
	if _, err := types.DataTypeFromTag(tag); err != nil {
		return nil, err
	}
	switch strings.TrimSpace(parts[3]) {
	case "0", "1":
	default:
		return nil, errors.NewPredicateError(errors.CodeBadColInfoConversion,
			fmt.Sprintf("predicate agg flag %q must be 0 or 1", parts[3]))
	}
	col, ok := columnByIdx(schema, colIdx)
	if !ok {
		return nil, errors.NewPredicateError(errors.CodeColIndexOOB,
			fmt.Sprintf("predicate column index %d not in schema", colIdx))
	}
	return buildTyped(colIdx, col.Type, op, parts[4])
}

func columnByIdx(schema types.Schema, colIdx int) (types.ColumnInfo, bool) {
	for _, c := range schema {
		if c.Idx == colIdx {
			return c, true
		}
	}
	return types.ColumnInfo{}, false
}

// buildTyped parses the value literal in the column's widened class and
// constructs the predicate. Aggregate and membership operators ignore
// the literal. The literal is not trimmed: patterns keep their spaces.
func buildTyped(colIdx int, colType types.DataType, op OpType, raw string) (Predicate, error) {
	switch {
	case op.IsMembership():
		return newPred(colIdx, colType, op, int64(0))

	case op.IsAggregate():
		switch {
		case colType.IsFloat():
			return newPred(colIdx, colType, op, float64(0))
		case colType.IsUnsigned():
			return newPred(colIdx, colType, op, uint64(0))
		default:
			// Signed columns, plus non-arithmetic columns the
			// constructor rejects.
			return newPred(colIdx, colType, op, int64(0))
		}

	case op == OpLike:
		return newPred(colIdx, colType, op, raw)
	}

	switch {
	case colType == types.TypeBool:
		v, err := parseBoolLiteral(raw)
		if err != nil {
			return nil, err
		}
		return newPred(colIdx, colType, op, v)
	case colType == types.TypeChar:
		if len(raw) != 1 {
			return nil, errors.NewPredicateError(errors.CodeBadColInfoConversion,
				fmt.Sprintf("char literal %q must be a single byte", raw))
		}
		return newPred(colIdx, colType, op, int64(raw[0]))
	case colType == types.TypeUchar:
		if len(raw) != 1 {
			return nil, errors.NewPredicateError(errors.CodeBadColInfoConversion,
				fmt.Sprintf("uchar literal %q must be a single byte", raw))
		}
		return newPred(colIdx, colType, op, uint64(raw[0]))
	case colType.IsSigned():
		v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCategoryPredicate, errors.CodeBadColInfoConversion,
				fmt.Sprintf("integer literal %q", raw), err)
		}
		return newPred(colIdx, colType, op, v)
	case colType.IsUnsigned():
		v, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCategoryPredicate, errors.CodeBadColInfoConversion,
				fmt.Sprintf("unsigned literal %q", raw), err)
		}
		return newPred(colIdx, colType, op, v)
	case colType.IsFloat():
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCategoryPredicate, errors.CodeBadColInfoConversion,
				fmt.Sprintf("float literal %q", raw), err)
		}
		return newPred(colIdx, colType, op, v)
	}
	// String and date columns match only under like.
	return nil, errors.NewPredicateError(errors.CodeComparisonNotDefined,
		fmt.Sprintf("operator %q not defined for column type %s", op, colType))
}

// newPred erases the concrete predicate type so a nil pointer never
// escapes behind a non-nil interface.
func newPred[T Value](colIdx int, colType types.DataType, op OpType, v T) (Predicate, error) {
	p, err := NewTypedPredicate(colIdx, colType, op, v)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func parseBoolLiteral(raw string) (bool, error) {
	switch strings.TrimSpace(raw) {
	case "0", "false":
		return false, nil
	case "1", "true":
		return true, nil
	}
	return false, errors.NewPredicateError(errors.CodeBadColInfoConversion,
		fmt.Sprintf("bool literal %q must be 0, 1, true, or false", raw))
}

// String renders the list back to predicate text. Aggregate terms
// render their current accumulator value.
func (l List) String() string {
	terms := make([]string, 0, len(l))
	for _, p := range l {
		terms = append(terms, termString(p))
	}
	return strings.Join(terms, PredDelimOuter)
}

func termString(p Predicate) string {
	agg := "0"
	if p.IsGlobalAgg() {
		agg = "1"
	}
	return fmt.Sprintf("%d,%s,%d,%s,%s", p.ColIdx(), p.Op(), int(p.ColType()), agg, ValueString(p))
}

// ValueString renders a predicate's value as canonical text, the same
// rendering FieldValue.String uses. Pruning compares these against
// partition bounds, so the two must agree byte for byte.
func ValueString(p Predicate) string {
	switch tp := p.(type) {
	case *TypedPredicate[int64]:
		if tp.ColType() == types.TypeChar {
			return string(rune(tp.Value()))
		}
		return strconv.FormatInt(tp.Value(), 10)
	case *TypedPredicate[uint64]:
		if tp.ColType() == types.TypeUchar {
			return string(rune(tp.Value()))
		}
		return strconv.FormatUint(tp.Value(), 10)
	case *TypedPredicate[float64]:
		return strconv.FormatFloat(tp.Value(), 'g', -1, 64)
	case *TypedPredicate[bool]:
		if tp.Value() {
			return "1"
		}
		return "0"
	case *TypedPredicate[string]:
		return tp.Value()
	}
	return ""
}
