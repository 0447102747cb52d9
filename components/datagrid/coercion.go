package datagrid

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// DateLayouts lists the layouts accepted for date columns, in priority order.
var DateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// stringify renders a value the way it is searched, filtered and exported.
// Absent values render as the empty string; composite values are JSON encoded.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	case fmt.Stringer:
		return val.String()
	case map[string]any, []any, []string, []map[string]any, Row:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	}
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// numeric reports the float64 value of v when v is a Go number.
// Numeric-looking strings are deliberately not numbers here: they sort lexically.
func numeric(v any) (float64, bool) {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number:
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// ZeroValue returns the empty value used for an absent field of the given type.
func ZeroValue(t ValueType) any {
	switch t {
	case ValueNumber:
		return float64(0)
	case ValueBoolean:
		return false
	default:
		return ""
	}
}

// defaultFor returns the column's declared default, or the zero value for its type.
func defaultFor(col Column) any {
	if col.Default != nil {
		if v, err := coerceValue(col, col.Default); err == nil {
			return v
		}
	}
	return ZeroValue(col.Type())
}

// coerceValue converts v to the representation declared by the column.
// Nil passes through unchanged.
func coerceValue(col Column, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch col.Type() {
	case ValueNumber:
		if f, ok := numeric(v); ok {
			return f, nil
		}
		s, isString := v.(string)
		if isString && strings.TrimSpace(s) == "" {
			return defaultNumber(col), nil
		}
		f, err := cast.ToFloat64E(strings.TrimSpace(stringify(v)))
		if err != nil {
			return nil, fmt.Errorf("expected number, got %q", stringify(v))
		}
		return f, nil
	case ValueBoolean:
		if b, ok := v.(bool); ok {
			return b, nil
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			return false, nil
		}
		b, err := cast.ToBoolE(strings.ToLower(strings.TrimSpace(stringify(v))))
		if err != nil {
			return nil, fmt.Errorf("expected boolean, got %q", stringify(v))
		}
		return b, nil
	case ValueDate:
		if t, ok := v.(time.Time); ok {
			return t.UTC().Format(time.RFC3339), nil
		}
		s := strings.TrimSpace(stringify(v))
		if s == "" {
			return "", nil
		}
		if _, ok := parseDate(s); !ok {
			return nil, fmt.Errorf("expected date, got %q", s)
		}
		return s, nil
	default:
		switch v.(type) {
		case string:
			return v, nil
		case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
			return stringify(v), nil
		default:
			return v, nil
		}
	}
}

func defaultNumber(col Column) any {
	if col.Default != nil {
		if f, ok := numeric(col.Default); ok {
			return f
		}
	}
	return float64(0)
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CoerceRow converts every declared field of row to its column type and returns
// a new row. Fields without a column pass through untouched.
func CoerceRow(columns []Column, row Row) (Row, error) {
	out := row.Clone()
	if out == nil {
		out = Row{}
	}
	var fields []FieldError
	for _, col := range columns {
		v, ok := out[col.Key]
		if !ok || col.Key == IDField {
			continue
		}
		coerced, err := coerceValue(col, v)
		if err != nil {
			fields = append(fields, FieldError{Field: col.Key, Message: err.Error()})
			continue
		}
		out[col.Key] = coerced
	}
	if len(fields) > 0 {
		return nil, newValidationError(fields...)
	}
	return out, nil
}
