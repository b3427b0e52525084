package schema

import (
	"fmt"

	"github.com/dmitrijs2005/osmnotes/internal/common"
)

// Constraint names the rule a value violated.
type Constraint string

const (
	ConstraintRequired Constraint = "required"  // field missing
	ConstraintNotNull  Constraint = "not_null"  // null where null is not allowed
	ConstraintType     Constraint = "type"      // wrong primitive type
	ConstraintNonEmpty Constraint = "non_empty" // empty string or byte sequence
	ConstraintMin      Constraint = "min"
	ConstraintMax      Constraint = "max"
	ConstraintInteger  Constraint = "integer"
	ConstraintPositive Constraint = "positive"
	ConstraintEnum     Constraint = "enum"
	ConstraintLiteral  Constraint = "literal"
	ConstraintInstant  Constraint = "instant" // not a valid timestamp
	ConstraintByte     Constraint = "byte"    // array element outside 0..255
	ConstraintEncoding Constraint = "encoding"
)

// ValidationError reports the first constraint violation found in an input.
// It matches common.ErrValidation with errors.Is.
type ValidationError struct {
	// Path is the dotted field path ("osm_object.type", "password[2]"). Empty
	// for the input root.
	Path       string
	Constraint Constraint
	Message    string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("validation error: %s (%s)", e.Message, e.Constraint)
	}
	return fmt.Sprintf("validation error: %s: %s (%s)", e.Path, e.Message, e.Constraint)
}

func (e *ValidationError) Is(target error) bool {
	return target == common.ErrValidation
}

func fail(p path, c Constraint, format string, args ...any) *ValidationError {
	return &ValidationError{Path: string(p), Constraint: c, Message: fmt.Sprintf(format, args...)}
}
