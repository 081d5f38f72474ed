package errorhelpers

import (
	"errors"
	"fmt"
)

// FieldError ties a validation error to the config field it concerns.
type FieldError struct {
	field string
	err   error
}

func (f *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", f.field, f.err.Error())
}

// Field returns the name of the offending field, e.g. "dependencies[2]".
func (f *FieldError) Field() string {
	return f.field
}

func (f *FieldError) Unwrap() error {
	return f.err
}

// Field labels err with a field name. It returns nil for a nil err, so it
// can wrap the result of a check directly.
func Field(field string, err error) error {
	if err == nil {
		return nil
	}

	return &FieldError{field, err}
}

// Fields lists the field names of every FieldError in err, looking through
// errors.Join trees, in order.
func Fields(err error) []string {
	if err == nil {
		return nil
	}

	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var fields []string
		for _, e := range joined.Unwrap() {
			fields = append(fields, Fields(e)...)
		}
		return fields
	}

	var fe *FieldError
	if errors.As(err, &fe) {
		return []string{fe.Field()}
	}
	return nil
}
