package partition

import (
	"strconv"

	"github.com/ivotron/skyhookdm-ceph-cls/internal/bloom"
	"github.com/ivotron/skyhookdm-ceph-cls/pkg/types"
)

// ColumnStats holds per-column pruning statistics for one partition.
// Min and Max are the column's text-encoded bounds; numeric columns
// compare in their widened class after parsing. Bloom carries a
// serialized filter over the column's canonical value texts, built for
// key columns only.
type ColumnStats struct {
	Type      types.DataType `json:"type"`
	Min       string         `json:"min,omitempty"`
	Max       string         `json:"max,omitempty"`
	NullCount int64          `json:"null_count"`
	Bloom     string         `json:"bloom,omitempty"`
}

// colAccum accumulates one column's bounds in its widened class.
type colAccum struct {
	col   types.ColumnInfo
	seen  bool
	nulls int64

	i64Min, i64Max int64
	u64Min, u64Max uint64
	f64Min, f64Max float64

	filter *bloom.Filter
}

// StatsCollector accumulates per-column statistics while a partition
// is built. Bounds are tracked for arithmetic columns; bloom filters
// for key columns.
type StatsCollector struct {
	schema   types.Schema
	accums   []*colAccum
	rowCount int64
}

// NewStatsCollector prepares a collector for one partition's rows.
// expectedRows sizes the key-column bloom filters.
func NewStatsCollector(schema types.Schema, expectedRows int) *StatsCollector {
	accums := make([]*colAccum, len(schema))
	for i, col := range schema {
		a := &colAccum{col: col}
		if col.IsKey {
			a.filter = bloom.NewWithEstimates(expectedRows, 0.01)
		}
		accums[i] = a
	}
	return &StatsCollector{schema: schema, accums: accums}
}

// AddRow folds one row's values into the statistics. vals follow the
// collector's schema order.
func (sc *StatsCollector) AddRow(vals []types.FieldValue) {
	sc.rowCount++
	for i, v := range vals {
		if i >= len(sc.accums) {
			break
		}
		sc.accums[i].add(v)
	}
}

func (a *colAccum) add(v types.FieldValue) {
	if v.IsNull {
		a.nulls++
		return
	}
	if a.filter != nil {
		a.filter.Add([]byte(v.String()))
	}
	t := a.col.Type
	switch {
	case t.IsSigned():
		if !a.seen || v.Int < a.i64Min {
			a.i64Min = v.Int
		}
		if !a.seen || v.Int > a.i64Max {
			a.i64Max = v.Int
		}
	case t == types.TypeBool:
		u := uint64(0)
		if v.Bool {
			u = 1
		}
		if !a.seen || u < a.u64Min {
			a.u64Min = u
		}
		if !a.seen || u > a.u64Max {
			a.u64Max = u
		}
	case t.IsUnsigned():
		if !a.seen || v.Uint < a.u64Min {
			a.u64Min = v.Uint
		}
		if !a.seen || v.Uint > a.u64Max {
			a.u64Max = v.Uint
		}
	case t.IsFloat():
		if !a.seen || v.Float < a.f64Min {
			a.f64Min = v.Float
		}
		if !a.seen || v.Float > a.f64Max {
			a.f64Max = v.Float
		}
	default:
		// string and date columns get null counts and blooms only
		a.seen = true
		return
	}
	a.seen = true
}

func (a *colAccum) stats() *ColumnStats {
	cs := &ColumnStats{Type: a.col.Type, NullCount: a.nulls}
	t := a.col.Type
	if a.seen {
		switch {
		case t.IsSigned():
			cs.Min = strconv.FormatInt(a.i64Min, 10)
			cs.Max = strconv.FormatInt(a.i64Max, 10)
		case t.IsUnsigned():
			cs.Min = strconv.FormatUint(a.u64Min, 10)
			cs.Max = strconv.FormatUint(a.u64Max, 10)
		case t.IsFloat():
			cs.Min = strconv.FormatFloat(a.f64Min, 'g', -1, 64)
			cs.Max = strconv.FormatFloat(a.f64Max, 'g', -1, 64)
		}
	}
	if a.filter != nil && a.filter.Count() > 0 {
		cs.Bloom = a.filter.ToBase64()
	}
	return cs
}

// RowCount returns the number of rows folded in.
func (sc *StatsCollector) RowCount() int64 {
	return sc.rowCount
}

// Stats returns the per-column statistics keyed by column name.
func (sc *StatsCollector) Stats() map[string]*ColumnStats {
	out := make(map[string]*ColumnStats, len(sc.accums))
	for _, a := range sc.accums {
		out[a.col.Name] = a.stats()
	}
	return out
}
