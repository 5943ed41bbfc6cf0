package index

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/ivotron/skyhookdm-ceph-cls/internal/errors"
	"github.com/ivotron/skyhookdm-ceph-cls/pkg/types"
)

func TestIdxTypeTokens(t *testing.T) {
	for _, tok := range []string{"fb", "rid", "rec", "txt"} {
		it, err := IdxTypeFromString(tok)
		if err != nil {
			t.Fatalf("IdxTypeFromString(%q): %v", tok, err)
		}
		if it.String() != tok {
			t.Errorf("token %q round-tripped to %q", tok, it.String())
		}
	}
	if _, err := IdxTypeFromString("btree"); !errors.IsCode(err, errors.CodeOpNotRecognized) {
		t.Errorf("unknown token: got %v, want OP_NOT_RECOGNIZED", err)
	}
}

func TestBuildKeyPrefix(t *testing.T) {
	tests := []struct {
		t      IdxType
		schema string
		table  string
		cols   []string
		want   string
	}{
		{IdxRec, "", "lineitem", []string{"orderkey", "linenumber"}, "rec:*:lineitem:orderkey-linenumber"},
		{IdxRec, "tpch", "lineitem", []string{"orderkey"}, "rec:tpch:lineitem:orderkey"},
		{IdxRID, "", "lineitem", nil, "rid:*:lineitem:*"},
		{IdxFB, "", "orders", nil, "fb:*:orders:*"},
	}
	for _, tt := range tests {
		if got := BuildKeyPrefix(tt.t, tt.schema, tt.table, tt.cols); got != tt.want {
			t.Errorf("BuildKeyPrefix(%s, %q, %q, %v) = %q, want %q",
				tt.t, tt.schema, tt.table, tt.cols, got, tt.want)
		}
	}
}

func TestBuildKeyData(t *testing.T) {
	got, err := BuildKeyData(types.TypeUint64, types.UintValue(types.TypeUint64, 5))
	if err != nil {
		t.Fatal(err)
	}
	if got != "00000000000000000005" {
		t.Errorf("uint64 5 = %q, want width-20 zero padding", got)
	}
	got, err = BuildKeyData(types.TypeInt64, types.IntValue(types.TypeInt64, 42))
	if err != nil {
		t.Fatal(err)
	}
	if got != "00000000000000000042" {
		t.Errorf("int64 42 = %q", got)
	}
	got, err = BuildKeyData(types.TypeBool, types.BoolValue(types.TypeBool, true))
	if err != nil {
		t.Fatal(err)
	}
	if got != "00000000000000000001" {
		t.Errorf("bool true = %q", got)
	}
	got, err = BuildKeyData(types.TypeChar, types.IntValue(types.TypeChar, 'R'))
	if err != nil {
		t.Fatal(err)
	}
	if got != "00000000000000000082" {
		t.Errorf("char R = %q", got)
	}

	if _, err := BuildKeyData(types.TypeFloat, types.FloatValue(types.TypeFloat, 1)); !errors.IsCode(err, errors.CodeIndexUnsupportedColType) {
		t.Errorf("float: got %v, want INDEX_UNSUPPORTED_COL_TYPE", err)
	}
	if _, err := BuildKeyData(types.TypeString, types.StrValue(types.TypeString, "x")); !errors.IsCode(err, errors.CodeIndexUnsupportedColType) {
		t.Errorf("string: got %v, want INDEX_UNSUPPORTED_COL_TYPE", err)
	}
	if _, err := BuildKeyData(types.TypeInt64, types.NullValue(types.TypeInt64)); !errors.IsCode(err, errors.CodeIndexKeyCreationFailed) {
		t.Errorf("null: got %v, want INDEX_KEY_CREATION_FAILED", err)
	}
}

func TestEncodeKeyLiteral(t *testing.T) {
	got, err := EncodeKeyLiteral(types.TypeInt32, "42")
	if err != nil {
		t.Fatal(err)
	}
	if got != "00000000000000000042" {
		t.Errorf("literal 42 = %q", got)
	}
	if _, err := EncodeKeyLiteral(types.TypeInt32, "x"); !errors.IsCode(err, errors.CodeIndexKeyCreationFailed) {
		t.Errorf("bad literal: got %v, want INDEX_KEY_CREATION_FAILED", err)
	}
	if _, err := EncodeKeyLiteral(types.TypeDouble, "1"); !errors.IsCode(err, errors.CodeIndexUnsupportedColType) {
		t.Errorf("float literal: got %v, want INDEX_UNSUPPORTED_COL_TYPE", err)
	}
}

func TestValidateKeyColumns(t *testing.T) {
	schema, err := types.ParseSchema(`0 4 1 0 orderkey
1 12 0 1 quantity
2 8 0 1 flags
-3 12 0 0 sum`)
	if err != nil {
		t.Fatal(err)
	}

	pos, err := validateKeyColumns(schema, []string{"flags", "orderkey"})
	if err != nil {
		t.Fatalf("valid columns: %v", err)
	}
	if len(pos) != 2 || pos[0] != 2 || pos[1] != 0 {
		t.Errorf("positions = %v, want [2 0]", pos)
	}

	tests := []struct {
		cols     []string
		wantCode string
	}{
		{nil, errors.CodeIndexUnsupportedNumCols},
		{[]string{"a", "b", "c", "d", "e"}, errors.CodeIndexUnsupportedNumCols},
		{[]string{"ghost"}, errors.CodeColIndexOOB},
		{[]string{"sum"}, errors.CodeIndexUnsupportedAggCol},
		{[]string{"quantity"}, errors.CodeIndexUnsupportedColType},
	}
	for _, tt := range tests {
		if _, err := validateKeyColumns(schema, tt.cols); !errors.IsCode(err, tt.wantCode) {
			t.Errorf("validateKeyColumns(%v): got %v, want code %s", tt.cols, err, tt.wantCode)
		}
	}
}

// TestProperty_KeyDataOrder validates the ordering contract: for
// unsigned values v1 < v2 the encoded keys compare the same way as
// strings.
func TestProperty_KeyDataOrder(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("lexicographic order equals numeric order", prop.ForAll(
		func(a, b uint64) bool {
			ka, err := BuildKeyData(types.TypeUint64, types.UintValue(types.TypeUint64, a))
			if err != nil {
				return false
			}
			kb, err := BuildKeyData(types.TypeUint64, types.UintValue(types.TypeUint64, b))
			if err != nil {
				return false
			}
			switch {
			case a < b:
				return ka < kb
			case a > b:
				return ka > kb
			default:
				return ka == kb
			}
		},
		gen.UInt64(),
		gen.UInt64(),
	))

	properties.TestingRun(t)
}
