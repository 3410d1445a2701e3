package econet

import (
	"fmt"
	"strconv"
	"strings"
)

// Limits holds the permitted range of an editable parameter.
// A nil bound means the controller did not report one.
type Limits struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// limitsFromEntry builds Limits from an editParams entry ({value, minv, maxv}).
func limitsFromEntry(entry any) (*Limits, bool) {
	obj, ok := entry.(map[string]any)
	if !ok {
		return nil, false
	}
	return &Limits{
		Min: toFloat(obj["minv"]),
		Max: toFloat(obj["maxv"]),
	}, true
}

// Contains reports whether v lies within the bounds. Missing bounds are open.
func (l *Limits) Contains(v float64) bool {
	if l == nil {
		return true
	}
	if l.Min != nil && v < *l.Min {
		return false
	}
	if l.Max != nil && v > *l.Max {
		return false
	}
	return true
}

// Validate checks a raw value against the limits.
// Non-numeric values are rejected when any bound is known.
func (l *Limits) Validate(name string, value any) error {
	if l == nil || (l.Min == nil && l.Max == nil) {
		return nil
	}

	v := toFloat(value)
	if v == nil {
		return NewValidationError(fmt.Sprintf("%s must be numeric, got %q", name, fmt.Sprint(value)))
	}

	if !l.Contains(*v) {
		return NewValidationError(fmt.Sprintf("%s must be within %s, got %s", name, l.String(), FormatValue(*v)))
	}
	return nil
}

// String renders the limits as "[min, max]" with "-" for a missing bound
func (l *Limits) String() string {
	if l == nil {
		return "[-, -]"
	}
	bound := func(p *float64) string {
		if p == nil {
			return "-"
		}
		return FormatValue(*p)
	}
	return fmt.Sprintf("[%s, %s]", bound(l.Min), bound(l.Max))
}

// toFloat converts JSON numbers and numeric strings to a float pointer
func toFloat(v any) *float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	return &f
}
