package index

import (
	"context"
	"sort"
	"strconv"

	"github.com/ivotron/skyhookdm-ceph-cls/pkg/types"
)

// keyUpperBound sorts immediately after the minor delimiter, so a range
// upper bound of "<prefix>:<data>." includes the composite
// continuations "<prefix>:<data>-..." without reaching the next value.
const keyUpperBound = "."

// RowMatches maps object paths to the row slots an index resolved, in
// ascending slot order. The slots feed query.ProcessRows.
type RowMatches map[string][]uint32

// Lookup answers point and range queries against a key store.
type Lookup struct {
	store *KeyStore
}

// NewLookup returns a lookup reading from store.
func NewLookup(store *KeyStore) *Lookup {
	return &Lookup{store: store}
}

// FindRows resolves the postings whose first key column lies in
// [lo, hi]. The bounds are literals of the first key column's type; an
// empty hi makes a point lookup at lo.
func (l *Lookup) FindRows(ctx context.Context, prefix string, t types.DataType, lo, hi string) (RowMatches, error) {
	loData, err := EncodeKeyLiteral(t, lo)
	if err != nil {
		return nil, err
	}
	hiData := loData
	if hi != "" {
		if hiData, err = EncodeKeyLiteral(t, hi); err != nil {
			return nil, err
		}
	}
	entries, err := l.store.Scan(ctx,
		prefix+KeyDelimMajor+loData,
		prefix+KeyDelimMajor+hiData+keyUpperBound)
	if err != nil {
		return nil, err
	}
	matches := make(RowMatches)
	for _, e := range entries {
		matches[e.ObjectPath] = append(matches[e.ObjectPath], e.RowNum)
	}
	for _, slots := range matches {
		sort.Slice(slots, func(i, j int) bool { return slots[i] < slots[j] })
	}
	return matches, nil
}

// FindRID resolves the postings of one record id under a rid index.
func (l *Lookup) FindRID(ctx context.Context, tableName string, rid uint64) (RowMatches, error) {
	prefix := BuildKeyPrefix(IdxRID, "", tableName, nil)
	return l.FindRows(ctx, prefix, types.TypeUint64, strconv.FormatUint(rid, 10), "")
}
