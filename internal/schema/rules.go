package schema

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/osmnotes/internal/models"
	"github.com/go-playground/validator/v10"
)

// Enum tags check a string against the tables in models, the same tables the
// type guards read.
const (
	tagOsmObjectType  = "osm_object_type"
	tagNoteStatus     = "note_status"
	tagDataSourceType = "data_source_type"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	mustRegister(v, tagOsmObjectType, func(fl validator.FieldLevel) bool {
		return models.IsOsmObjectType(fl.Field().String())
	})
	mustRegister(v, tagNoteStatus, func(fl validator.FieldLevel) bool {
		return models.IsNoteStatus(fl.Field().String())
	})
	mustRegister(v, tagDataSourceType, func(fl validator.FieldLevel) bool {
		return models.IsDataSourceType(fl.Field().String())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

var tagConstraints = map[string]Constraint{
	"required":        ConstraintNonEmpty,
	"min":             ConstraintNonEmpty,
	"gte":             ConstraintMin,
	"lte":             ConstraintMax,
	"gt":              ConstraintPositive,
	"eq":              ConstraintLiteral,
	tagOsmObjectType:  ConstraintEnum,
	tagNoteStatus:     ConstraintEnum,
	tagDataSourceType: ConstraintEnum,
}

// rule narrows s with validator tags, e.g. rule(number, "gte=0,lte=1"). The
// first failing tag is reported at the field's path.
func rule[T any](s Schema[T], tags string) Schema[T] {
	return newSchema(s.name, func(p path, raw any) (T, *ValidationError) {
		v, verr := s.parse(p, raw)
		if verr != nil {
			return v, verr
		}
		if verr := check(p, v, tags); verr != nil {
			var zero T
			return zero, verr
		}
		return v, nil
	})
}

func check(p path, value any, tags string) *ValidationError {
	err := validate.Var(value, tags)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return fail(p, ConstraintType, "cannot validate %s: %v", typeName(value), err)
	}
	fe := fields[0]
	c, ok := tagConstraints[fe.Tag()]
	if !ok {
		c = Constraint(fe.Tag())
	}
	return fail(p, c, "%s", describe(fe))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "min":
		return "must not be empty"
	case "gte":
		return "must be >= " + fe.Param()
	case "lte":
		return "must be <= " + fe.Param()
	case "gt":
		return "must be positive"
	case "eq":
		return fmt.Sprintf("must be %q", fe.Param())
	case tagOsmObjectType:
		return fmt.Sprintf("%q is not one of %v", fe.Value(), models.OsmObjectTypes)
	case tagNoteStatus:
		return fmt.Sprintf("%q is not one of %v", fe.Value(), models.NoteStatuses)
	case tagDataSourceType:
		return fmt.Sprintf("%q is not one of %v", fe.Value(), models.DataSourceTypes)
	default:
		return "failed " + fe.Tag()
	}
}
