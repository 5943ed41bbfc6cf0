package index

import (
	"context"
	"fmt"

	"github.com/ivotron/skyhookdm-ceph-cls/internal/errors"
	"github.com/ivotron/skyhookdm-ceph-cls/internal/partition"
)

// Builder scans partition objects into a key store.
type Builder struct {
	store *KeyStore
}

// NewBuilder returns a builder writing to store.
func NewBuilder(store *KeyStore) *Builder {
	return &Builder{store: store}
}

// BuildObject indexes every live row of one encoded partition and
// returns the number of entries written. Rid indexes key rows by
// record id; rec indexes key rows by the named columns. Tombstoned
// rows are never indexed.
func (b *Builder) BuildObject(ctx context.Context, objectPath string, buf []byte, t IdxType, colNames []string) (int, error) {
	switch t {
	case IdxRID, IdxRec:
	default:
		return 0, errors.NewIndexError(errors.CodeIndexColTypeNotImplemented,
			fmt.Sprintf("%s indexes are not implemented", t))
	}

	root, err := partition.GetRoot(buf)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCategoryIndex, errors.CodeIndexDecodeFailed,
			fmt.Sprintf("object %q is not a partition", objectPath), err)
	}
	schema, err := root.DataSchema()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCategoryIndex, errors.CodeIndexExtractFailed,
			fmt.Sprintf("object %q carries an unparsable schema", objectPath), err)
	}

	var positions []int
	prefixCols := colNames
	if t == IdxRec {
		if positions, err = validateKeyColumns(schema, colNames); err != nil {
			return 0, err
		}
	} else {
		// Rid indexes key on the record id, not on columns.
		prefixCols = nil
	}
	prefix := BuildKeyPrefix(t, "", root.TableName, prefixCols)

	entries := make([]Entry, 0, root.NumRows)
	for slot := 0; slot < int(root.NumRows); slot++ {
		if root.Deleted(slot) {
			continue
		}
		rec, err := root.Rec(slot)
		if err != nil {
			return 0, err
		}
		var key string
		switch t {
		case IdxRID:
			key = fmt.Sprintf("%s%s%0*d", prefix, KeyDelimMajor, keyDataWidth, uint64(rec.RID))
		case IdxRec:
			if key, err = BuildRowKey(prefix, rec, schema, positions); err != nil {
				return 0, errors.Wrap(errors.ErrCategoryIndex, errors.CodeIndexExtractFailed,
					fmt.Sprintf("object %q row %d", objectPath, slot), err)
			}
		}
		entries = append(entries, Entry{Key: key, ObjectPath: objectPath, RowNum: uint32(slot)})
	}

	if err := b.store.Put(ctx, entries); err != nil {
		return 0, err
	}
	return len(entries), nil
}
