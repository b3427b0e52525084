package schema

import (
	"encoding/json"
	"fmt"
)

// Schema validates a raw value and converts it into T.
type Schema[T any] struct {
	name  string
	parse func(p path, raw any) (T, *ValidationError)
}

func newSchema[T any](name string, parse func(p path, raw any) (T, *ValidationError)) Schema[T] {
	return Schema[T]{name: name, parse: parse}
}

// Name is the schema's display name, e.g. "NoteRecord".
func (s Schema[T]) Name() string { return s.name }

// Parse validates raw. On failure the returned error is a *ValidationError.
func (s Schema[T]) Parse(raw any) (T, error) {
	v, verr := s.parse("", raw)
	if verr != nil {
		var zero T
		return zero, verr
	}
	return v, nil
}

// SafeParse is Parse returning a Result instead of a value/error pair.
func (s Schema[T]) SafeParse(raw any) Result[T] {
	v, verr := s.parse("", raw)
	if verr != nil {
		return Result[T]{Err: verr}
	}
	return Result[T]{Value: v}
}

// ParseJSON decodes data into a raw value and validates it.
func (s Schema[T]) ParseJSON(data []byte) (T, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		var zero T
		return zero, fail("", ConstraintEncoding, "malformed JSON: %v", err)
	}
	return s.Parse(raw)
}

// Result is the outcome of SafeParse: exactly one of Value and Err is set.
type Result[T any] struct {
	Value T
	Err   *ValidationError
}

// OK reports whether validation succeeded.
func (r Result[T]) OK() bool { return r.Err == nil }

// path is a dotted field path used in error reports.
type path string

func (p path) key(k string) path {
	if p == "" {
		return path(k)
	}
	return p + "." + path(k)
}

func (p path) index(i int) path {
	return path(fmt.Sprintf("%s[%d]", p, i))
}

// object walks the fields of a raw map. The first failure is kept in err and
// turns every later field read into a no-op, so decoders read straight
// through and check err once.
type object struct {
	p   path
	m   map[string]any
	err *ValidationError
}

func newObject(p path, raw any) *object {
	if raw == nil {
		return &object{p: p, err: fail(p, ConstraintNotNull, "must not be null")}
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return &object{p: p, err: fail(p, ConstraintType, "expected object, got %s", typeName(raw))}
	}
	return &object{p: p, m: m}
}

// required reads a field that must be present and non-null.
func required[T any](o *object, key string, s Schema[T]) T {
	var zero T
	if o.err != nil {
		return zero
	}
	raw, ok := o.m[key]
	if !ok {
		o.err = fail(o.p.key(key), ConstraintRequired, "is required")
		return zero
	}
	if raw == nil {
		o.err = fail(o.p.key(key), ConstraintNotNull, "must not be null")
		return zero
	}
	v, verr := s.parse(o.p.key(key), raw)
	if verr != nil {
		o.err = verr
		return zero
	}
	return v
}

// optional reads a field that may be absent. An explicit null is rejected.
func optional[T any](o *object, key string, s Schema[T]) *T {
	if o.err != nil {
		return nil
	}
	if _, ok := o.m[key]; !ok {
		return nil
	}
	v := required(o, key, s)
	if o.err != nil {
		return nil
	}
	return &v
}

// nullable reads a field that must be present but may be null.
func nullable[T any](o *object, key string, s Schema[T]) *T {
	if o.err != nil {
		return nil
	}
	raw, ok := o.m[key]
	if !ok {
		o.err = fail(o.p.key(key), ConstraintRequired, "is required")
		return nil
	}
	if raw == nil {
		return nil
	}
	v := required(o, key, s)
	if o.err != nil {
		return nil
	}
	return &v
}

// optionalNullable reads a field that may be absent or null.
func optionalNullable[T any](o *object, key string, s Schema[T]) *T {
	if o.err != nil {
		return nil
	}
	if raw, ok := o.m[key]; !ok || raw == nil {
		return nil
	}
	return optional(o, key, s)
}

func typeName(raw any) string {
	switch raw.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		if _, ok := toFloat(raw); ok {
			return "number"
		}
		return fmt.Sprintf("%T", raw)
	}
}
