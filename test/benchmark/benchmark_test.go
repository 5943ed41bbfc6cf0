// Package benchmark measures partition encode and query throughput.
package benchmark

import (
	"fmt"
	"testing"

	"github.com/ivotron/skyhookdm-ceph-cls/internal/index"
	"github.com/ivotron/skyhookdm-ceph-cls/internal/partition"
	"github.com/ivotron/skyhookdm-ceph-cls/internal/predicate"
	"github.com/ivotron/skyhookdm-ceph-cls/internal/query"
	"github.com/ivotron/skyhookdm-ceph-cls/pkg/types"
)

const benchSchemaText = `0 4 1 0 orderkey
1 3 0 0 linenumber
2 12 0 1 quantity
3 9 0 1 returnflag
4 15 0 1 comment`

const benchRows = 1000

func benchSchema(b *testing.B) types.Schema {
	b.Helper()
	schema, err := types.ParseSchema(benchSchemaText)
	if err != nil {
		b.Fatal(err)
	}
	return schema
}

func generateRows(n int) [][]types.FieldValue {
	flags := []byte{'A', 'N', 'R'}
	rows := make([][]types.FieldValue, n)
	for i := 0; i < n; i++ {
		rows[i] = []types.FieldValue{
			types.IntValue(types.TypeInt64, int64(i+1)),
			types.IntValue(types.TypeInt32, int64(i%7+1)),
			types.FloatValue(types.TypeFloat, float64(i%50)+0.5),
			types.IntValue(types.TypeChar, int64(flags[i%3])),
			types.StrValue(types.TypeString, fmt.Sprintf("row %d comment text", i+1)),
		}
	}
	return rows
}

func encodePartition(b *testing.B, schema types.Schema, rows [][]types.FieldValue) []byte {
	b.Helper()
	tb := partition.NewTableBuilder("lineitem", 1, schema)
	for i, vals := range rows {
		if err := tb.AppendValues(int64(i+1), vals); err != nil {
			b.Fatal(err)
		}
	}
	return tb.Finish()
}

// BenchmarkPartitionEncode measures row encoding throughput.
func BenchmarkPartitionEncode(b *testing.B) {
	schema := benchSchema(b)
	rows := generateRows(benchRows)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		buf := encodePartition(b, schema, rows)
		if len(buf) == 0 {
			b.Fatal("empty buffer")
		}
	}

	b.ReportMetric(float64(benchRows*b.N)/b.Elapsed().Seconds(), "rows/sec")
}

// BenchmarkProcessPartitionScan measures filtered scan throughput with
// a predicate that passes half the rows.
func BenchmarkProcessPartitionScan(b *testing.B) {
	schema := benchSchema(b)
	buf := encodePartition(b, schema, generateRows(benchRows))
	preds, err := predicate.ParsePredicates(schema, fmt.Sprintf("0,gt,4,0,%d", benchRows/2))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		result, err := query.ProcessPartition(schema, schema, preds, buf)
		if err != nil {
			b.Fatal(err)
		}
		if result.NumRows != benchRows/2 {
			b.Fatalf("passed %d rows, want %d", result.NumRows, benchRows/2)
		}
	}

	b.ReportMetric(float64(benchRows*b.N)/b.Elapsed().Seconds(), "rows/sec")
}

// BenchmarkProcessPartitionProject measures projection throughput over
// an unfiltered scan.
func BenchmarkProcessPartitionProject(b *testing.B) {
	schema := benchSchema(b)
	buf := encodePartition(b, schema, generateRows(benchRows))
	schemaOut, err := types.ProjectSchema(schema, "orderkey,quantity")
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := query.ProcessPartition(schema, schemaOut, nil, buf); err != nil {
			b.Fatal(err)
		}
	}

	b.ReportMetric(float64(benchRows*b.N)/b.Elapsed().Seconds(), "rows/sec")
}

// BenchmarkProcessPartitionAggregate measures aggregate folding. The
// predicate list is rebuilt per iteration so every run folds from the
// operator identities.
func BenchmarkProcessPartitionAggregate(b *testing.B) {
	schema := benchSchema(b)
	buf := encodePartition(b, schema, generateRows(benchRows))
	schemaOut, err := query.BuildAggSchema(mustPreds(b, schema, "2,sum,12,1,0;2,min,12,1,0;2,max,12,1,0"))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		preds := mustPreds(b, schema, "2,sum,12,1,0;2,min,12,1,0;2,max,12,1,0")
		if _, err := query.ProcessPartition(schema, schemaOut, preds, buf); err != nil {
			b.Fatal(err)
		}
	}

	b.ReportMetric(float64(benchRows*b.N)/b.Elapsed().Seconds(), "rows/sec")
}

// BenchmarkBuildKeyData measures index key encoding.
func BenchmarkBuildKeyData(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		v := types.IntValue(types.TypeInt64, int64(i))
		if _, err := index.BuildKeyData(types.TypeInt64, v); err != nil {
			b.Fatal(err)
		}
	}
}

func mustPreds(b *testing.B, schema types.Schema, text string) predicate.List {
	b.Helper()
	preds, err := predicate.ParsePredicates(schema, text)
	if err != nil {
		b.Fatal(err)
	}
	return preds
}
