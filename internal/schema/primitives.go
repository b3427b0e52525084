package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/dmitrijs2005/osmnotes/internal/models"
)

var anyString = newSchema("string", func(p path, raw any) (string, *ValidationError) {
	s, ok := raw.(string)
	if !ok {
		return "", fail(p, ConstraintType, "expected string, got %s", typeName(raw))
	}
	return s, nil
})

var nonEmptyString = rule(anyString, "required")

// number accepts any numeric kind except NaN. Infinities are left to range
// rules.
var number = newSchema("number", func(p path, raw any) (float64, *ValidationError) {
	f, ok := toFloat(raw)
	if !ok {
		return 0, fail(p, ConstraintType, "expected number, got %s", typeName(raw))
	}
	if math.IsNaN(f) {
		return 0, fail(p, ConstraintType, "expected number, got NaN")
	}
	return f, nil
})

// maxSafeInteger is the largest integer a JSON number carries exactly.
const maxSafeInteger = 1<<53 - 1

var integer = newSchema("integer", func(p path, raw any) (int, *ValidationError) {
	f, verr := number.parse(p, raw)
	if verr != nil {
		return 0, verr
	}
	if math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > maxSafeInteger {
		return 0, fail(p, ConstraintInteger, "must be a safe integer")
	}
	return int(f), nil
})

// floatRange accepts any number within [lo, hi].
func floatRange(lo, hi float64) Schema[float64] {
	return rule(number, fmt.Sprintf("gte=%v,lte=%v", lo, hi))
}

var positiveInt = rule(integer, "gt=0")

// enumOf accepts the strings allowed by a registered enum tag.
func enumOf[T ~string](name, tag string) Schema[T] {
	return rule(newSchema(name, func(p path, raw any) (T, *ValidationError) {
		s, ok := raw.(string)
		if !ok {
			return "", fail(p, ConstraintType, "expected string, got %s", typeName(raw))
		}
		return T(s), nil
	}), tag)
}

func literal(want string) Schema[string] {
	return rule(anyString, "eq="+want)
}

// rawBytes accepts a []byte or an array of integers in 0..255, which is how
// byte sequences travel through JSON. The result never aliases the input.
var rawBytes = newSchema("bytes", func(p path, raw any) ([]byte, *ValidationError) {
	var out []byte
	switch v := raw.(type) {
	case []byte:
		out = bytes.Clone(v)
	case models.ByteArray:
		out = bytes.Clone(v)
	case []int:
		out = make([]byte, len(v))
		for i, n := range v {
			if n < 0 || n > 255 {
				return nil, fail(p.index(i), ConstraintByte, "must be in 0..255")
			}
			out[i] = byte(n)
		}
	case []any:
		out = make([]byte, len(v))
		for i, item := range v {
			f, ok := toFloat(item)
			if !ok {
				return nil, fail(p.index(i), ConstraintType, "expected number, got %s", typeName(item))
			}
			if f != math.Trunc(f) || f < 0 || f > 255 {
				return nil, fail(p.index(i), ConstraintByte, "must be an integer in 0..255")
			}
			out[i] = byte(f)
		}
	default:
		return nil, fail(p, ConstraintType, "expected byte sequence, got %s", typeName(raw))
	}
	return out, nil
})

var byteSequence = rule(rawBytes, "min=1")

// instant accepts a time.Time or an RFC 3339 string.
var instant = newSchema("timestamp", func(p path, raw any) (time.Time, *ValidationError) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case *time.Time:
		if v == nil {
			return time.Time{}, fail(p, ConstraintNotNull, "must not be null")
		}
		return *v, nil
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}, fail(p, ConstraintInstant, "must be an RFC 3339 timestamp")
		}
		return t, nil
	default:
		return time.Time{}, fail(p, ConstraintType, "expected timestamp, got %s", typeName(raw))
	}
})

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
