package index

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ivotron/skyhookdm-ceph-cls/internal/errors"
	"github.com/ivotron/skyhookdm-ceph-cls/internal/partition"
	"github.com/ivotron/skyhookdm-ceph-cls/pkg/types"
)

const indexSchemaText = `0 4 1 0 orderkey
1 3 0 0 linenumber
2 12 0 1 quantity
3 15 0 1 comment`

func indexSchema(t *testing.T) types.Schema {
	t.Helper()
	schema, err := types.ParseSchema(indexSchemaText)
	if err != nil {
		t.Fatalf("ParseSchema: %v", err)
	}
	return schema
}

type indexRow struct {
	orderkey   int64
	linenumber int64
}

func buildIndexPartition(t *testing.T, rows []indexRow, startRID int64) []byte {
	t.Helper()
	schema := indexSchema(t)
	tb := partition.NewTableBuilder("lineitem", 1, schema)
	for i, r := range rows {
		vals := []types.FieldValue{
			types.IntValue(types.TypeInt64, r.orderkey),
			types.IntValue(types.TypeInt32, r.linenumber),
			types.FloatValue(types.TypeFloat, 1.5),
			types.StrValue(types.TypeString, "x"),
		}
		if err := tb.AppendValues(startRID+int64(i), vals); err != nil {
			t.Fatalf("AppendValues: %v", err)
		}
	}
	return tb.Finish()
}

func newTestStore(t *testing.T) *KeyStore {
	t.Helper()
	store, err := OpenKeyStore(filepath.Join(t.TempDir(), "keys.db"))
	if err != nil {
		t.Fatalf("OpenKeyStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestKeyStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	entries := []Entry{
		{Key: "k1", ObjectPath: "obj/b", RowNum: 3},
		{Key: "k1", ObjectPath: "obj/a", RowNum: 0},
		{Key: "k2", ObjectPath: "obj/a", RowNum: 1},
	}
	if err := store.Put(ctx, entries); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := store.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := []Entry{
		{Key: "k1", ObjectPath: "obj/a", RowNum: 0},
		{Key: "k1", ObjectPath: "obj/b", RowNum: 3},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Get(k1) = %v, want %v", got, want)
	}

	got, err = store.Get(ctx, "missing")
	if err != nil {
		t.Fatalf("Get(missing): %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Get(missing) = %v, want empty", got)
	}

	got, err = store.Scan(ctx, "k1", "k2")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("Scan(k1, k2) returned %d entries, want 3", len(got))
	}

	// Re-putting the same entries replaces rather than duplicates.
	if err := store.Put(ctx, entries); err != nil {
		t.Fatalf("second Put: %v", err)
	}
	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 3 {
		t.Errorf("Count after re-put = %d, want 3", n)
	}
}

func TestBuildRecIndexAndLookup(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	builder := NewBuilder(store)
	lookup := NewLookup(store)

	buf := buildIndexPartition(t, []indexRow{
		{orderkey: 1, linenumber: 7},
		{orderkey: 2, linenumber: 1},
		{orderkey: 2, linenumber: 9},
		{orderkey: 3, linenumber: 5},
	}, 1)

	n, err := builder.BuildObject(ctx, "obj/a", buf, IdxRec, []string{"orderkey"})
	if err != nil {
		t.Fatalf("BuildObject: %v", err)
	}
	if n != 4 {
		t.Fatalf("BuildObject wrote %d entries, want 4", n)
	}

	prefix := BuildKeyPrefix(IdxRec, "", "lineitem", []string{"orderkey"})

	matches, err := lookup.FindRows(ctx, prefix, types.TypeInt64, "2", "")
	if err != nil {
		t.Fatalf("FindRows point: %v", err)
	}
	if !reflect.DeepEqual(matches["obj/a"], []uint32{1, 2}) {
		t.Errorf("point lookup orderkey=2: slots %v, want [1 2]", matches["obj/a"])
	}

	matches, err = lookup.FindRows(ctx, prefix, types.TypeInt64, "1", "2")
	if err != nil {
		t.Fatalf("FindRows range: %v", err)
	}
	if !reflect.DeepEqual(matches["obj/a"], []uint32{0, 1, 2}) {
		t.Errorf("range lookup [1,2]: slots %v, want [0 1 2]", matches["obj/a"])
	}

	matches, err = lookup.FindRows(ctx, prefix, types.TypeInt64, "9", "")
	if err != nil {
		t.Fatalf("FindRows miss: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("lookup for absent value returned %v", matches)
	}
}

// TestCompositeKeyRangeBoundary pins the range upper bound for
// multi-column keys: a lookup on the leading column must cover the
// composite continuations of its upper value without bleeding into
// the next value.
func TestCompositeKeyRangeBoundary(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	builder := NewBuilder(store)
	lookup := NewLookup(store)

	buf := buildIndexPartition(t, []indexRow{
		{orderkey: 1, linenumber: 7},
		{orderkey: 2, linenumber: 1},
		{orderkey: 2, linenumber: 9},
		{orderkey: 3, linenumber: 5},
	}, 1)

	if _, err := builder.BuildObject(ctx, "obj/a", buf, IdxRec, []string{"orderkey", "linenumber"}); err != nil {
		t.Fatalf("BuildObject: %v", err)
	}

	prefix := BuildKeyPrefix(IdxRec, "", "lineitem", []string{"orderkey", "linenumber"})
	matches, err := lookup.FindRows(ctx, prefix, types.TypeInt64, "2", "")
	if err != nil {
		t.Fatalf("FindRows: %v", err)
	}
	if !reflect.DeepEqual(matches["obj/a"], []uint32{1, 2}) {
		t.Errorf("composite point lookup orderkey=2: slots %v, want [1 2]", matches["obj/a"])
	}
}

func TestBuildRIDIndexAndFindRID(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	builder := NewBuilder(store)
	lookup := NewLookup(store)

	buf := buildIndexPartition(t, []indexRow{
		{orderkey: 1, linenumber: 1},
		{orderkey: 2, linenumber: 2},
		{orderkey: 3, linenumber: 3},
	}, 10)

	n, err := builder.BuildObject(ctx, "obj/a", buf, IdxRID, nil)
	if err != nil {
		t.Fatalf("BuildObject: %v", err)
	}
	if n != 3 {
		t.Fatalf("BuildObject wrote %d entries, want 3", n)
	}

	matches, err := lookup.FindRID(ctx, "lineitem", 11)
	if err != nil {
		t.Fatalf("FindRID: %v", err)
	}
	if !reflect.DeepEqual(matches["obj/a"], []uint32{1}) {
		t.Errorf("FindRID(11): slots %v, want [1]", matches["obj/a"])
	}
}

func TestBuildObjectSkipsTombstones(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	builder := NewBuilder(store)
	lookup := NewLookup(store)

	buf := buildIndexPartition(t, []indexRow{
		{orderkey: 2, linenumber: 1},
		{orderkey: 2, linenumber: 2},
	}, 1)
	if err := partition.MarkDeleted(buf, 0); err != nil {
		t.Fatalf("MarkDeleted: %v", err)
	}

	n, err := builder.BuildObject(ctx, "obj/a", buf, IdxRec, []string{"orderkey"})
	if err != nil {
		t.Fatalf("BuildObject: %v", err)
	}
	if n != 1 {
		t.Fatalf("BuildObject wrote %d entries, want 1", n)
	}

	prefix := BuildKeyPrefix(IdxRec, "", "lineitem", []string{"orderkey"})
	matches, err := lookup.FindRows(ctx, prefix, types.TypeInt64, "2", "")
	if err != nil {
		t.Fatalf("FindRows: %v", err)
	}
	if !reflect.DeepEqual(matches["obj/a"], []uint32{1}) {
		t.Errorf("slots %v, want [1]", matches["obj/a"])
	}
}

func TestFindRowsAcrossObjects(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	builder := NewBuilder(store)
	lookup := NewLookup(store)

	bufA := buildIndexPartition(t, []indexRow{{orderkey: 5, linenumber: 1}}, 1)
	bufB := buildIndexPartition(t, []indexRow{
		{orderkey: 4, linenumber: 1},
		{orderkey: 5, linenumber: 2},
	}, 2)

	if _, err := builder.BuildObject(ctx, "obj/a", bufA, IdxRec, []string{"orderkey"}); err != nil {
		t.Fatalf("BuildObject(a): %v", err)
	}
	if _, err := builder.BuildObject(ctx, "obj/b", bufB, IdxRec, []string{"orderkey"}); err != nil {
		t.Fatalf("BuildObject(b): %v", err)
	}

	prefix := BuildKeyPrefix(IdxRec, "", "lineitem", []string{"orderkey"})
	matches, err := lookup.FindRows(ctx, prefix, types.TypeInt64, "5", "")
	if err != nil {
		t.Fatalf("FindRows: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("matches span %d objects, want 2: %v", len(matches), matches)
	}
	if !reflect.DeepEqual(matches["obj/a"], []uint32{0}) || !reflect.DeepEqual(matches["obj/b"], []uint32{1}) {
		t.Errorf("matches = %v", matches)
	}
}

func TestBuildObjectErrors(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	builder := NewBuilder(store)

	buf := buildIndexPartition(t, []indexRow{{orderkey: 1, linenumber: 1}}, 1)

	if _, err := builder.BuildObject(ctx, "obj/a", buf, IdxFB, nil); !errors.IsCode(err, errors.CodeIndexColTypeNotImplemented) {
		t.Errorf("fb index: got %v, want INDEX_COL_TYPE_NOT_IMPLEMENTED", err)
	}
	if _, err := builder.BuildObject(ctx, "obj/a", buf, IdxTxt, []string{"comment"}); !errors.IsCode(err, errors.CodeIndexColTypeNotImplemented) {
		t.Errorf("txt index: got %v, want INDEX_COL_TYPE_NOT_IMPLEMENTED", err)
	}
	if _, err := builder.BuildObject(ctx, "obj/a", []byte{1, 2, 3}, IdxRID, nil); !errors.IsCode(err, errors.CodeIndexDecodeFailed) {
		t.Errorf("garbage buffer: got %v, want INDEX_DECODE_FAILED", err)
	}
	if _, err := builder.BuildObject(ctx, "obj/a", buf, IdxRec, []string{"quantity"}); !errors.IsCode(err, errors.CodeIndexUnsupportedColType) {
		t.Errorf("float key column: got %v, want INDEX_UNSUPPORTED_COL_TYPE", err)
	}

	// Rebuilding the same object leaves the entry count unchanged.
	if _, err := builder.BuildObject(ctx, "obj/a", buf, IdxRID, nil); err != nil {
		t.Fatalf("BuildObject: %v", err)
	}
	if _, err := builder.BuildObject(ctx, "obj/a", buf, IdxRID, nil); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("Count after rebuild = %d, want 1", n)
	}
}
