package calipso

import (
	"errors"
	"fmt"
)

// ErrUnsupportedType is returned when a dataset does not hold numeric values.
var ErrUnsupportedType = errors.New("unsupported dataset type")

// MissingFieldError is returned when a field that was never populated is
// looked up.
type MissingFieldError struct {
	Field Field
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("field %q is not populated", e.Field)
}

// ShapeError is returned when an array does not have the rank or the
// dimensions an operation needs.
type ShapeError struct {
	Field Field
	Shape []int
	Want  string
}

func (e *ShapeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("unexpected shape %v, want %s", e.Shape, e.Want)
	}
	return fmt.Sprintf("field %q has unexpected shape %v, want %s", e.Field, e.Shape, e.Want)
}

// withField attaches the field name to a *ShapeError carried by err.
func withField(err error, f Field) error {
	var se *ShapeError
	if errors.As(err, &se) && se.Field == "" {
		se.Field = f
	}
	return err
}
