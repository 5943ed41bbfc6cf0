package partition

import (
	"fmt"
	"strings"
)

// ValidationError describes one defect found in an encoded partition.
type ValidationError struct {
	Row     int
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("row %d, %s: %s", e.Row, e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("  - ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Validate checks an encoded partition before upload: the header
// decodes, the schema parses, counts agree, and every row's field
// region matches the schema width. Returns nil when the buffer is
// sound.
func Validate(buf []byte) ValidationErrors {
	var errs ValidationErrors

	root, err := GetRoot(buf)
	if err != nil {
		return ValidationErrors{{Row: -1, Field: "root", Message: err.Error()}}
	}
	schema, err := root.DataSchema()
	if err != nil {
		errs = append(errs, &ValidationError{Row: -1, Field: "schema", Message: err.Error()})
		return errs
	}
	if root.TableName == "" {
		errs = append(errs, &ValidationError{Row: -1, Field: "table_name", Message: "table name is empty"})
	}
	if int(root.NumRows) != len(root.DeleteVec) {
		errs = append(errs, &ValidationError{
			Row: -1, Field: "delete_vector",
			Message: fmt.Sprintf("%d tombstone bytes for %d rows", len(root.DeleteVec), root.NumRows),
		})
	}
	for slot := 0; slot < int(root.NumRows); slot++ {
		rec, err := root.Rec(slot)
		if err != nil {
			errs = append(errs, &ValidationError{Row: slot, Field: "row", Message: err.Error()})
			continue
		}
		n, err := rec.NumFields()
		if err != nil {
			errs = append(errs, &ValidationError{Row: slot, Field: "data", Message: err.Error()})
			continue
		}
		if n != len(schema) {
			errs = append(errs, &ValidationError{
				Row: slot, Field: "data",
				Message: fmt.Sprintf("%d fields for %d schema columns", n, len(schema)),
			})
			continue
		}
		for pos := range schema {
			if _, err := rec.Field(schema, pos); err != nil {
				errs = append(errs, &ValidationError{Row: slot, Field: schema[pos].Name, Message: err.Error()})
			}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
