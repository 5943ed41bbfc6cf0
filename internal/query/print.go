package query

import (
	"strings"

	"github.com/ivotron/skyhookdm-ceph-cls/internal/partition"
)

// FieldDelim separates fields in formatted row output.
const FieldDelim = "|"

// FormatPartition renders a partition buffer as delimited text, one
// line per live row, using the buffer's embedded schema. With
// withHeader the first line carries the column names.
func FormatPartition(buf []byte, withHeader bool) (string, error) {
	root, err := partition.GetRoot(buf)
	if err != nil {
		return "", err
	}
	schema, err := root.DataSchema()
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if withHeader {
		names := make([]string, len(schema))
		for i, col := range schema {
			names[i] = col.Name
		}
		sb.WriteString(strings.Join(names, FieldDelim))
		sb.WriteByte('\n')
	}
	fields := make([]string, len(schema))
	for slot := 0; slot < int(root.NumRows); slot++ {
		if root.Deleted(slot) {
			continue
		}
		rec, err := root.Rec(slot)
		if err != nil {
			return "", err
		}
		for i := range schema {
			fv, err := rec.Field(schema, i)
			if err != nil {
				return "", err
			}
			fields[i] = fv.String()
		}
		sb.WriteString(strings.Join(fields, FieldDelim))
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}
