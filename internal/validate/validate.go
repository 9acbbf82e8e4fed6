// Package validate checks untyped request payloads against declared
// schemas and produces coerced, typed field values. Validation is
// all-or-nothing: a payload either yields a complete set of values or
// a VALIDATION_FAILED error listing every field violation.
package validate

import (
	"time"

	"grow104.org/internal/apperr"
)

// Rule checks and coerces a single raw value. It returns the coerced
// value, or a non-empty message describing the violation.
type Rule func(v any) (any, string)

// Field declares one schema entry.
type Field struct {
	Name     string
	Required bool
	// Nullable marks update-schema fields where an explicit JSON null
	// is a meaningful "clear this column" instruction, distinct from
	// the field being absent.
	Nullable bool
	Rule     Rule
}

// Schema is an ordered list of field declarations. Order determines
// the order of reported violations.
type Schema []Field

// Value is the coerced result for one present field.
type Value struct {
	Null bool
	V    any
}

// Values maps field names to coerced values. A field absent from the
// payload is absent from the map, so absent / null / value remain
// three distinct states.
type Values map[string]Value

// Apply validates the payload against the schema. The payload is never
// mutated, so applying the same schema twice yields identical results.
func Apply(schema Schema, payload map[string]any) (Values, error) {
	values := make(Values, len(schema))
	var violations []apperr.Violation

	for _, field := range schema {
		raw, present := payload[field.Name]
		if !present {
			if field.Required {
				violations = append(violations, apperr.Violation{
					Field:   field.Name,
					Message: "is required",
				})
			}
			continue
		}
		if raw == nil {
			if field.Nullable {
				values[field.Name] = Value{Null: true}
				continue
			}
			violations = append(violations, apperr.Violation{
				Field:   field.Name,
				Message: "must not be null",
			})
			continue
		}
		coerced, msg := field.Rule(raw)
		if msg != "" {
			violations = append(violations, apperr.Violation{
				Field:   field.Name,
				Message: msg,
			})
			continue
		}
		values[field.Name] = Value{V: coerced}
	}

	if len(violations) > 0 {
		return nil, apperr.Validation(violations)
	}
	return values, nil
}

// Has reports whether the field was present in the payload.
func (vs Values) Has(name string) bool {
	_, ok := vs[name]
	return ok
}

// IsNull reports whether the field was present and explicitly null.
func (vs Values) IsNull(name string) bool {
	v, ok := vs[name]
	return ok && v.Null
}

// String returns the field's string value, or "" when absent or null.
func (vs Values) String(name string) string {
	v, ok := vs[name]
	if !ok || v.Null {
		return ""
	}
	s, _ := v.V.(string)
	return s
}

// Int returns the field's integer value and whether it carries one.
func (vs Values) Int(name string) (int, bool) {
	v, ok := vs[name]
	if !ok || v.Null {
		return 0, false
	}
	n, ok := v.V.(int)
	return n, ok
}

// Float returns the field's numeric value and whether it carries one.
func (vs Values) Float(name string) (float64, bool) {
	v, ok := vs[name]
	if !ok || v.Null {
		return 0, false
	}
	f, ok := v.V.(float64)
	return f, ok
}

// Bool returns the field's boolean value and whether it carries one.
func (vs Values) Bool(name string) (bool, bool) {
	v, ok := vs[name]
	if !ok || v.Null {
		return false, false
	}
	b, ok := v.V.(bool)
	return b, ok
}

// Time returns the field's timestamp value and whether it carries one.
func (vs Values) Time(name string) (time.Time, bool) {
	v, ok := vs[name]
	if !ok || v.Null {
		return time.Time{}, false
	}
	t, ok := v.V.(time.Time)
	return t, ok
}

// Strings returns the field's string-slice value, or nil.
func (vs Values) Strings(name string) []string {
	v, ok := vs[name]
	if !ok || v.Null {
		return nil
	}
	list, _ := v.V.([]string)
	return list
}
