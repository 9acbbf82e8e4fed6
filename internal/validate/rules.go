package validate

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// timeOfDayRE matches 24-hour HH:MM strings (leading zero optional).
var timeOfDayRE = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

// String requires a string with length in [min, max].
func String(min, max int) Rule {
	return func(v any) (any, string) {
		s, ok := v.(string)
		if !ok {
			return nil, "must be a string"
		}
		if len(s) < min {
			return nil, fmt.Sprintf("must be at least %d character(s)", min)
		}
		if max > 0 && len(s) > max {
			return nil, fmt.Sprintf("must be at most %d character(s)", max)
		}
		return s, ""
	}
}

// Enum requires one of a fixed set of string values.
func Enum(allowed ...string) Rule {
	return func(v any) (any, string) {
		s, ok := v.(string)
		if !ok {
			return nil, "must be a string"
		}
		for _, a := range allowed {
			if s == a {
				return s, ""
			}
		}
		return nil, "must be one of: " + strings.Join(allowed, ", ")
	}
}

// ID requires an entity identifier. Stored rows carry ULID keys, while
// external references may be UUIDs, so both forms are accepted.
func ID() Rule {
	return func(v any) (any, string) {
		s, ok := v.(string)
		if !ok {
			return nil, "must be a string"
		}
		if !validID(s) {
			return nil, "must be a valid identifier"
		}
		return s, ""
	}
}

// IDList requires an array of entity identifiers.
func IDList() Rule {
	return func(v any) (any, string) {
		raw, ok := v.([]any)
		if !ok {
			return nil, "must be an array"
		}
		out := make([]string, 0, len(raw))
		for _, item := range raw {
			s, ok := item.(string)
			if !ok {
				return nil, "must contain only strings"
			}
			if !validID(s) {
				return nil, "must contain only valid identifiers"
			}
			out = append(out, s)
		}
		return out, ""
	}
}

func validID(s string) bool {
	if _, err := ulid.ParseStrict(s); err == nil {
		return true
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// DateTime requires an RFC 3339 timestamp and coerces it to time.Time.
func DateTime() Rule {
	return func(v any) (any, string) {
		s, ok := v.(string)
		if !ok {
			return nil, "must be a string"
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, "must be a valid RFC 3339 datetime"
		}
		return t, ""
	}
}

// TimeOfDay requires a 24-hour HH:MM string.
func TimeOfDay() Rule {
	return func(v any) (any, string) {
		s, ok := v.(string)
		if !ok {
			return nil, "must be a string"
		}
		if !timeOfDayRE.MatchString(s) {
			return nil, "must be a time in HH:MM 24-hour format"
		}
		return s, ""
	}
}

// Int requires an integer in [min, max]. Numeric-looking strings and
// JSON numbers are accepted; fractional values are not.
func Int(min, max int) Rule {
	return func(v any) (any, string) {
		n, ok := coerceInt(v)
		if !ok {
			return nil, "must be an integer"
		}
		if n < min || n > max {
			return nil, fmt.Sprintf("must be between %d and %d", min, max)
		}
		return n, ""
	}
}

// PositiveInt requires an integer greater than zero.
func PositiveInt() Rule {
	return func(v any) (any, string) {
		n, ok := coerceInt(v)
		if !ok {
			return nil, "must be an integer"
		}
		if n <= 0 {
			return nil, "must be greater than 0"
		}
		return n, ""
	}
}

// PositiveNumber requires a number greater than zero, fractions allowed.
func PositiveNumber() Rule {
	return func(v any) (any, string) {
		f, ok := coerceFloat(v)
		if !ok {
			return nil, "must be a number"
		}
		if f <= 0 {
			return nil, "must be greater than 0"
		}
		return f, ""
	}
}

// Bool requires a boolean.
func Bool() Rule {
	return func(v any) (any, string) {
		b, ok := v.(bool)
		if !ok {
			return nil, "must be a boolean"
		}
		return b, ""
	}
}

func coerceInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		if t != math.Trunc(t) {
			return 0, false
		}
		return int(t), true
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func coerceFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
