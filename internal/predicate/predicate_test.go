package predicate

import (
	"math"
	"testing"

	"github.com/ivotron/skyhookdm-ceph-cls/internal/errors"
	"github.com/ivotron/skyhookdm-ceph-cls/pkg/types"
)

func TestOpTypeTokens(t *testing.T) {
	tokens := []string{
		"lt", "gt", "eq", "ne", "leq", "geq",
		"add", "sub", "mul", "div",
		"min", "max", "sum", "cnt",
		"like", "in", "not_in", "between",
		"logical_or", "logical_and", "logical_not", "logical_nor",
		"logical_xor", "logical_nand",
		"bitwise_and", "bitwise_or",
	}
	for _, tok := range tokens {
		op, err := OpTypeFromString(tok)
		if err != nil {
			t.Fatalf("OpTypeFromString(%q): %v", tok, err)
		}
		if op.String() != tok {
			t.Errorf("token %q round-tripped to %q", tok, op.String())
		}
	}
	if _, err := OpTypeFromString("zap"); !errors.IsCode(err, errors.CodeOpNotRecognized) {
		t.Errorf("unknown token: got %v, want OP_NOT_RECOGNIZED", err)
	}
}

func TestOpTypeClasses(t *testing.T) {
	if !OpLT.IsComparison() || !OpGEQ.IsComparison() || OpAdd.IsComparison() {
		t.Error("comparison class boundaries wrong")
	}
	if !OpAdd.IsArithmetic() || !OpDiv.IsArithmetic() || OpMin.IsArithmetic() {
		t.Error("arithmetic class boundaries wrong")
	}
	if !OpMin.IsAggregate() || !OpCnt.IsAggregate() || OpLike.IsAggregate() {
		t.Error("aggregate class boundaries wrong")
	}
	if !OpIn.IsMembership() || !OpBetween.IsMembership() || OpLike.IsMembership() {
		t.Error("membership class boundaries wrong")
	}
	if !OpLogicalOr.IsLogical() || !OpLogicalNand.IsLogical() || OpBitwiseAnd.IsLogical() {
		t.Error("logical class boundaries wrong")
	}
	if !OpBitwiseAnd.IsBitwise() || !OpBitwiseOr.IsBitwise() || OpLogicalAnd.IsBitwise() {
		t.Error("bitwise class boundaries wrong")
	}
}

func TestConstructionRejectsMembership(t *testing.T) {
	for _, op := range []OpType{OpIn, OpNotIn, OpBetween} {
		_, err := NewTypedPredicate(0, types.TypeInt64, op, int64(0))
		if !errors.IsCode(err, errors.CodeOpNotImplemented) {
			t.Errorf("%s: got %v, want OP_NOT_IMPLEMENTED", op, err)
		}
	}
}

func TestConstructionClassChecks(t *testing.T) {
	tests := []struct {
		name     string
		build    func() error
		wantCode string
	}{
		{"eq int64 over int32 column", func() error {
			_, err := NewTypedPredicate(1, types.TypeInt32, OpEQ, int64(5))
			return err
		}, ""},
		{"eq string class", func() error {
			_, err := NewTypedPredicate(7, types.TypeString, OpEQ, "abc")
			return err
		}, errors.CodeComparisonNotDefined},
		{"gt over date column", func() error {
			_, err := NewTypedPredicate(6, types.TypeDate, OpGT, int64(5))
			return err
		}, errors.CodeComparisonNotDefined},
		{"sum over string column", func() error {
			_, err := NewTypedPredicate(7, types.TypeString, OpSum, int64(0))
			return err
		}, errors.CodeUnsupportedAggDataType},
		{"sum with string class", func() error {
			_, err := NewTypedPredicate(0, types.TypeInt64, OpSum, "0")
			return err
		}, errors.CodeUnsupportedAggDataType},
		{"min over double column", func() error {
			_, err := NewTypedPredicate(5, types.TypeDouble, OpMin, float64(0))
			return err
		}, ""},
		{"logical_and over double column", func() error {
			_, err := NewTypedPredicate(5, types.TypeDouble, OpLogicalAnd, int64(1))
			return err
		}, errors.CodeComparisonNotDefined},
		{"logical_and float class", func() error {
			_, err := NewTypedPredicate(0, types.TypeInt64, OpLogicalAnd, float64(1))
			return err
		}, errors.CodeComparisonNotDefined},
		{"bitwise_and over int64 column", func() error {
			_, err := NewTypedPredicate(0, types.TypeInt64, OpBitwiseAnd, uint64(1))
			return err
		}, errors.CodeComparisonNotDefined},
		{"bitwise_and over uint32 column", func() error {
			_, err := NewTypedPredicate(4, types.TypeUint32, OpBitwiseAnd, uint64(1))
			return err
		}, ""},
		{"like over int column", func() error {
			_, err := NewTypedPredicate(0, types.TypeInt64, OpLike, "x.*")
			return err
		}, errors.CodeComparisonNotDefined},
		{"like empty pattern", func() error {
			_, err := NewTypedPredicate(7, types.TypeString, OpLike, "")
			return err
		}, errors.CodeRegexPatternNotSet},
		{"like bad pattern", func() error {
			_, err := NewTypedPredicate(7, types.TypeString, OpLike, "(")
			return err
		}, errors.CodeRegexPatternNotSet},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build()
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.IsCode(err, tt.wantCode) {
				t.Fatalf("got %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestAggIdentitySeeding(t *testing.T) {
	minI, err := NewTypedPredicate(0, types.TypeInt64, OpMin, int64(999))
	if err != nil {
		t.Fatal(err)
	}
	if minI.Value() != math.MaxInt64 {
		t.Errorf("min int64 seed = %d, want MaxInt64", minI.Value())
	}
	maxI, err := NewTypedPredicate(0, types.TypeInt64, OpMax, int64(999))
	if err != nil {
		t.Fatal(err)
	}
	if maxI.Value() != math.MinInt64 {
		t.Errorf("max int64 seed = %d, want MinInt64", maxI.Value())
	}
	sumI, err := NewTypedPredicate(0, types.TypeInt64, OpSum, int64(999))
	if err != nil {
		t.Fatal(err)
	}
	if sumI.Value() != 0 {
		t.Errorf("sum seed = %d, want 0", sumI.Value())
	}
	minU, err := NewTypedPredicate(4, types.TypeUint64, OpMin, uint64(0))
	if err != nil {
		t.Fatal(err)
	}
	if minU.Value() != math.MaxUint64 {
		t.Errorf("min uint64 seed = %d, want MaxUint64", minU.Value())
	}
	minF, err := NewTypedPredicate(5, types.TypeDouble, OpMin, float64(0))
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsInf(minF.Value(), 1) {
		t.Errorf("min float64 seed = %g, want +Inf", minF.Value())
	}
	maxF, err := NewTypedPredicate(5, types.TypeDouble, OpMax, float64(0))
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsInf(maxF.Value(), -1) {
		t.Errorf("max float64 seed = %g, want -Inf", maxF.Value())
	}
	cnt, err := NewTypedPredicate(5, types.TypeDouble, OpCnt, float64(0))
	if err != nil {
		t.Fatal(err)
	}
	if cnt.Value() != 0 {
		t.Errorf("cnt seed = %g, want 0", cnt.Value())
	}
}

func TestResetAgg(t *testing.T) {
	sum, err := NewTypedPredicate(0, types.TypeInt64, OpSum, int64(0))
	if err != nil {
		t.Fatal(err)
	}
	sum.UpdateAgg(42)
	if sum.Value() != 42 {
		t.Fatalf("UpdateAgg: got %d", sum.Value())
	}
	sum.ResetAgg()
	if sum.Value() != 0 {
		t.Errorf("ResetAgg: got %d, want 0", sum.Value())
	}

	eq, err := NewTypedPredicate(0, types.TypeInt64, OpEQ, int64(7))
	if err != nil {
		t.Fatal(err)
	}
	eq.ResetAgg()
	if eq.Value() != 7 {
		t.Errorf("ResetAgg on filter predicate changed value to %d", eq.Value())
	}
}

func TestLikeMatchesWholeValue(t *testing.T) {
	p, err := NewTypedPredicate(7, types.TypeString, OpLike, "SHIP.*")
	if err != nil {
		t.Fatal(err)
	}
	re := p.Pattern()
	if re == nil {
		t.Fatal("like predicate has no compiled pattern")
	}
	if !re.MatchString("SHIPPED") {
		t.Error("SHIP.* should match SHIPPED")
	}
	if re.MatchString("PRESHIPPED") {
		t.Error("SHIP.* should not match PRESHIPPED: patterns anchor to the whole value")
	}

	bare, err := NewTypedPredicate(7, types.TypeString, OpLike, "SHIP")
	if err != nil {
		t.Fatal(err)
	}
	if bare.Pattern().MatchString("SHIPPED") {
		t.Error("bare SHIP should not match SHIPPED")
	}
	if !bare.Pattern().MatchString("SHIP") {
		t.Error("bare SHIP should match SHIP exactly")
	}
}

func TestHasAggPreds(t *testing.T) {
	eq, err := NewTypedPredicate(0, types.TypeInt64, OpEQ, int64(1))
	if err != nil {
		t.Fatal(err)
	}
	sum, err := NewTypedPredicate(0, types.TypeInt64, OpSum, int64(0))
	if err != nil {
		t.Fatal(err)
	}
	if HasAggPreds(List{eq}) {
		t.Error("filter-only list reported aggregates")
	}
	if !HasAggPreds(List{eq, sum}) {
		t.Error("mixed list did not report aggregates")
	}
	if HasAggPreds(nil) {
		t.Error("nil list reported aggregates")
	}
}
