package poller

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Formatter renders a decoded JSON field as slot content.
type Formatter func(v any) (string, error)

// Binding projects one snapshot field into one display slot.
type Binding struct {
	Field  string
	Slot   string
	Format Formatter
}

// Bind renders the field as text: strings verbatim, numbers by their
// literal JSON text.
func Bind(field, slot string) Binding {
	return Binding{Field: field, Slot: slot, Format: FormatValue}
}

// BindFlag renders the field's truthiness as one of two fixed strings.
func BindFlag(field, slot, on, off string) Binding {
	return Binding{Field: field, Slot: slot, Format: FlagFormatter(on, off)}
}

// FormatValue is the default formatter.
func FormatValue(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case json.Number:
		return val.String(), nil
	case bool:
		return strconv.FormatBool(val), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return "", fmt.Errorf("format %T: %w", v, err)
		}
		return string(b), nil
	}
}

// FlagFormatter maps a value to on when it is truthy and off otherwise.
func FlagFormatter(on, off string) Formatter {
	return func(v any) (string, error) {
		if Truthy(v) {
			return on, nil
		}
		return off, nil
	}
}

// Truthy follows JSON-ish truthiness: false, null, "", 0 and NaN are false.
func Truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return true
		}
		return f != 0 && f == f
	case float64:
		return val != 0 && val == val
	case int:
		return val != 0
	case int64:
		return val != 0
	default:
		return true
	}
}
