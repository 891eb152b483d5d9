package core

import (
	"errors"
	"strings"
)

// Field names a user-editable entry field.
type Field string

const (
	FieldTitle  Field = "title"
	FieldAmount Field = "amount"
	FieldDate   Field = "date"
	FieldKind   Field = "kind"
)

// ValidationError lists every field that failed validation, in the order
// the fields were checked.
type ValidationError struct {
	Fields []Field
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = string(f)
	}
	return "invalid fields: " + strings.Join(names, ", ")
}

// Has reports whether f is among the invalid fields.
func (e *ValidationError) Has(f Field) bool {
	for _, v := range e.Fields {
		if v == f {
			return true
		}
	}
	return false
}

// AsValidationError unwraps err into a *ValidationError.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
