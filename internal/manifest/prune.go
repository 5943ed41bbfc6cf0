package manifest

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ivotron/skyhookdm-ceph-cls/internal/bloom"
	"github.com/ivotron/skyhookdm-ceph-cls/internal/predicate"
	"github.com/ivotron/skyhookdm-ceph-cls/pkg/types"
)

// Pruner eliminates partition objects that provably contain no row
// matching a predicate list, using the column statistics the writer
// registered. Pruning is conservative: a partition is dropped only
// when its statistics rule out every possible match, so anything the
// pruner keeps still passes through row-level filtering.
type Pruner struct {
	catalog *SQLiteCatalog
}

// NewPruner creates a pruner over a catalog.
func NewPruner(catalog *SQLiteCatalog) *Pruner {
	return &Pruner{catalog: catalog}
}

// PruneResult contains the result of a pruning pass.
type PruneResult struct {
	Partitions   []*PartitionRecord
	TotalScanned int
	TotalPruned  int
	PruningRatio float64
}

// Prune returns the partitions of tableName that may contain rows
// matching preds. Aggregate terms and non-comparison operators never
// prune; neither do columns without registered statistics.
func (p *Pruner) Prune(ctx context.Context, tableName string, preds predicate.List, schema types.Schema) (*PruneResult, error) {
	partitions, err := p.catalog.ListPartitions(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("pruning: failed to list partitions: %w", err)
	}

	kept := make([]*PartitionRecord, 0, len(partitions))
	for _, rec := range partitions {
		stats, err := p.catalog.GetColumnStats(ctx, rec.ObjectPath)
		if err != nil {
			return nil, fmt.Errorf("pruning: failed to load stats for %s: %w", rec.ObjectPath, err)
		}
		if mayMatch(preds, schema, stats) {
			kept = append(kept, rec)
		}
	}

	total := len(partitions)
	pruned := total - len(kept)
	var ratio float64
	if total > 0 {
		ratio = float64(pruned) / float64(total)
	}
	return &PruneResult{
		Partitions:   kept,
		TotalScanned: total,
		TotalPruned:  pruned,
		PruningRatio: ratio,
	}, nil
}

// mayMatch reports whether the statistics leave room for a row
// matching every filter term.
func mayMatch(preds predicate.List, schema types.Schema, stats map[string]*ColumnStatsRecord) bool {
	for _, pr := range preds {
		if pr.IsGlobalAgg() || !pr.Op().IsComparison() {
			continue
		}
		col, ok := columnByIdx(schema, pr.ColIdx())
		if !ok {
			continue
		}
		cs, ok := stats[col.Name]
		if !ok {
			continue
		}
		if !boundsMayMatch(pr, cs) {
			return false
		}
		if pr.Op() == predicate.OpEQ && len(cs.Bloom) > 0 && !bloomMayContain(cs.Bloom, pr) {
			return false
		}
	}
	return true
}

func columnByIdx(schema types.Schema, idx int) (types.ColumnInfo, bool) {
	for _, col := range schema {
		if col.Idx == idx {
			return col, true
		}
	}
	return types.ColumnInfo{}, false
}

// boundsMayMatch checks a single term against a column's min/max.
// Bounds absent or unparsable keep the partition.
func boundsMayMatch(pr predicate.Predicate, cs *ColumnStatsRecord) bool {
	if cs.MinText == "" || cs.MaxText == "" {
		return true
	}
	switch tp := pr.(type) {
	case *predicate.TypedPredicate[int64]:
		lo, err1 := strconv.ParseInt(cs.MinText, 10, 64)
		hi, err2 := strconv.ParseInt(cs.MaxText, 10, 64)
		if err1 != nil || err2 != nil {
			return true
		}
		return rangeMayMatch(tp.Op(), tp.Value(), lo, hi)
	case *predicate.TypedPredicate[uint64]:
		lo, err1 := strconv.ParseUint(cs.MinText, 10, 64)
		hi, err2 := strconv.ParseUint(cs.MaxText, 10, 64)
		if err1 != nil || err2 != nil {
			return true
		}
		return rangeMayMatch(tp.Op(), tp.Value(), lo, hi)
	case *predicate.TypedPredicate[float64]:
		lo, err1 := strconv.ParseFloat(cs.MinText, 64)
		hi, err2 := strconv.ParseFloat(cs.MaxText, 64)
		if err1 != nil || err2 != nil {
			return true
		}
		return rangeMayMatch(tp.Op(), tp.Value(), lo, hi)
	default:
		// bool and textual terms carry no ordered bounds worth pruning on
		return true
	}
}

// rangeMayMatch decides whether any value in [lo, hi] can satisfy
// "value op threshold" with the row value on the left.
func rangeMayMatch[T int64 | uint64 | float64](op predicate.OpType, threshold, lo, hi T) bool {
	switch op {
	case predicate.OpEQ:
		return threshold >= lo && threshold <= hi
	case predicate.OpNE:
		return !(lo == hi && lo == threshold)
	case predicate.OpLT:
		return lo < threshold
	case predicate.OpLEQ:
		return lo <= threshold
	case predicate.OpGT:
		return hi > threshold
	case predicate.OpGEQ:
		return hi >= threshold
	default:
		return true
	}
}

// bloomMayContain tests an equality term against a key column's bloom
// filter. The filter was built over canonical value text, the same
// rendering ValueString produces, so membership tests line up with
// what the writer added. Corrupt filters keep the partition.
func bloomMayContain(blob []byte, pr predicate.Predicate) bool {
	filter, err := bloom.Deserialize(blob)
	if err != nil {
		return true
	}
	return filter.Contains([]byte(predicate.ValueString(pr)))
}
