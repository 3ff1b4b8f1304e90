package normalizer

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"jsonnorm/internal/models"
)

// varcharSteps are the bounded-text sizes, escalated as longer values are
// observed. Anything past the last step widens to unbounded text.
var varcharSteps = []int{255, 500, 1000}

// maxVarcharLen is the practical bound for bounded text.
const maxVarcharLen = 1000

// dateLayouts are the string layouts recognized as date-time values.
var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

// ColumnTypeProfile reduces the values observed in one column to a single
// inferred type. Nulls are ignored; an entirely-null column resolves to the
// most permissive bounded-text type.
type ColumnTypeProfile struct {
	observed bool
	current  models.ColumnType
	maxLen   int
}

// Observe folds one value into the profile. A nil value is a no-op.
func (p *ColumnTypeProfile) Observe(v any) error {
	if v == nil {
		return nil
	}
	t, length, err := classifyScalar(v)
	if err != nil {
		return err
	}
	if length > p.maxLen {
		p.maxLen = length
	}
	if !p.observed {
		p.observed = true
		p.current = t
		return nil
	}
	p.current = join(p.current, t)
	return nil
}

// Resolve returns the narrowest type able to represent every observed value
// and, for bounded text, the column size.
func (p *ColumnTypeProfile) Resolve() (models.ColumnType, int) {
	if !p.observed {
		return models.TypeVarChar, varcharSteps[0]
	}
	if p.current == models.TypeVarChar {
		if p.maxLen > maxVarcharLen {
			return models.TypeText, 0
		}
		for _, step := range varcharSteps {
			if p.maxLen <= step {
				return models.TypeVarChar, step
			}
		}
	}
	if p.current == models.TypeText {
		return models.TypeText, 0
	}
	return p.current, 0
}

// classifyScalar maps one raw value to its narrowest type and the length of
// its textual rendering.
func classifyScalar(v any) (models.ColumnType, int, error) {
	switch x := v.(type) {
	case bool:
		return models.TypeBoolean, 5, nil // len("false")
	case json.Number:
		if i, err := x.Int64(); err == nil {
			if i >= math.MinInt32 && i <= math.MaxInt32 {
				return models.TypeInteger, len(x.String()), nil
			}
			return models.TypeBigInt, len(x.String()), nil
		}
		if _, err := x.Float64(); err == nil {
			return models.TypeFloat, len(x.String()), nil
		}
		return models.TypeText, len(x.String()), fmt.Errorf("number %q fits no numeric type", x.String())
	case string:
		if isDateTime(x) {
			return models.TypeDateTime, len(x), nil
		}
		return models.TypeVarChar, len(x), nil
	}
	return models.TypeText, 0, fmt.Errorf("unsupported value %T in scalar position", v)
}

// join widens two observed types to the narrowest common one. The numeric
// family is totally ordered; date-times only join with date-times; any other
// combination falls through to text.
func join(a, b models.ColumnType) models.ColumnType {
	if a == b {
		return a
	}
	if a > b {
		a, b = b, a
	}
	// a < b from here on.
	if b <= models.TypeFloat {
		return b // both in the boolean..float ladder
	}
	if b == models.TypeText || a == models.TypeText {
		return models.TypeText
	}
	// Mixing date-times with numerics, or strings with anything, is only
	// representable as text.
	return models.TypeVarChar
}

func isDateTime(s string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// convertScalar renders a raw value as the Go representation of the final
// column type, ready for the sink: int64/float64 for numerics, time.Time for
// date-times, string for text.
func convertScalar(v any, t models.ColumnType) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch t {
	case models.TypeBoolean:
		return v.(bool), nil
	case models.TypeInteger, models.TypeBigInt:
		switch x := v.(type) {
		case json.Number:
			return x.Int64()
		case bool:
			// Booleans widened into a numeric column load as 1/0.
			if x {
				return int64(1), nil
			}
			return int64(0), nil
		}
		return nil, fmt.Errorf("value %v is not numeric", v)
	case models.TypeFloat:
		switch x := v.(type) {
		case json.Number:
			return x.Float64()
		case bool:
			if x {
				return float64(1), nil
			}
			return float64(0), nil
		}
		return nil, fmt.Errorf("value %v is not numeric", v)
	case models.TypeDateTime:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("value %v is not a date-time", v)
		}
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts, nil
			}
		}
		return nil, fmt.Errorf("value %q is not a date-time", s)
	case models.TypeVarChar, models.TypeText:
		return renderString(v), nil
	}
	return nil, fmt.Errorf("unknown column type %v", t)
}

func renderString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		if x {
			return "true"
		}
		return "false"
	}
	return fmt.Sprintf("%v", v)
}
