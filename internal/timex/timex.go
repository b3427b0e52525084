// Package timex holds time helpers shared by the config and persistence
// layers.
package timex

import (
	"encoding/json"
	"errors"
	"time"
)

// StoragePrecision is the resolution instants are kept at. It matches
// PostgreSQL timestamptz so that a value read back compares equal to the
// value written, which the conditional updates rely on.
const StoragePrecision = time.Microsecond

// Now returns the current instant in UTC at StoragePrecision.
var Now = func() time.Time {
	return time.Now().UTC().Truncate(StoragePrecision)
}

// Duration wraps time.Duration for JSON config files. It accepts either a
// duration string ("90s", "1h") or an integer number of nanoseconds.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	default:
		return errors.New("invalid duration")
	}
}
