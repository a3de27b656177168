package schema

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Record maps field names to validated, typed values: string, int64 or
// decimal.Decimal. Persisted records additionally carry id and timestamps
// filled in by the repository.
type Record map[string]any

// ValidationError is a BadInput failure tied to one payload field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("field %q: %s", e.Field, e.Message)
}

// Validate converts an untyped payload into a typed Record conforming to the
// definition. Unknown keys are rejected. With partial=true (updates) missing
// required fields are tolerated; with partial=false (creates and imported
// rows) they fail. Values of derived fields are silently dropped: they are
// recomputed by the system on every write. Pure function over its inputs.
func Validate(def *Definition, payload map[string]any, partial bool) (Record, error) {
	for key := range payload {
		if _, ok := def.fieldIndex[key]; !ok {
			return nil, &ValidationError{Field: key, Message: "unknown field"}
		}
	}

	record := make(Record, len(payload))
	for i := range def.Fields {
		f := &def.Fields[i]
		if f.Derived {
			continue
		}
		value, present := payload[f.Name]
		if !present || isEmpty(value) {
			if f.Required && !partial {
				return nil, &ValidationError{Field: f.Name, Message: "is required"}
			}
			continue
		}

		typed, err := coerce(f, value)
		if err != nil {
			return nil, err
		}
		record[f.Name] = typed
	}
	return record, nil
}

func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func coerce(f *Field, value any) (any, error) {
	switch f.Kind {
	case KindText:
		return coerceText(f, value)
	case KindInteger:
		return coerceInteger(f, value)
	case KindDecimal:
		return coerceDecimal(f, value)
	default:
		return nil, &ValidationError{Field: f.Name, Message: "unsupported field kind"}
	}
}

func coerceText(f *Field, value any) (string, error) {
	var s string
	switch t := value.(type) {
	case string:
		s = strings.TrimSpace(t)
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		s = strconv.Itoa(t)
	case int64:
		s = strconv.FormatInt(t, 10)
	case decimal.Decimal:
		s = t.String()
	default:
		s = strings.TrimSpace(fmt.Sprint(t))
	}
	if f.MaxLength > 0 && utf8.RuneCountInString(s) > f.MaxLength {
		return "", &ValidationError{
			Field:   f.Name,
			Message: fmt.Sprintf("must not exceed %d characters", f.MaxLength),
		}
	}
	return s, nil
}

func coerceInteger(f *Field, value any) (int64, error) {
	d, err := parseNumber(f, value)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, &ValidationError{Field: f.Name, Message: "must be a whole number"}
	}
	return d.IntPart(), nil
}

func coerceDecimal(f *Field, value any) (decimal.Decimal, error) {
	d, err := parseNumber(f, value)
	if err != nil {
		return decimal.Zero, err
	}
	if f.Scale > 0 && int(-d.Exponent()) > f.Scale {
		return decimal.Zero, &ValidationError{
			Field:   f.Name,
			Message: fmt.Sprintf("must not have more than %d decimal places", f.Scale),
		}
	}
	if f.Precision > 0 && int(d.NumDigits()) > f.Precision {
		return decimal.Zero, &ValidationError{
			Field:   f.Name,
			Message: fmt.Sprintf("must not exceed %d digits", f.Precision),
		}
	}
	return d, nil
}

// parseNumber accepts both "." and "," as the decimal separator; spreadsheet
// exports from locales using the comma are common.
func parseNumber(f *Field, value any) (decimal.Decimal, error) {
	switch t := value.(type) {
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(t), ",", ".")
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, &ValidationError{Field: f.Name, Message: "must be a number"}
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(t), nil
	case int:
		return decimal.NewFromInt(int64(t)), nil
	case int64:
		return decimal.NewFromInt(t), nil
	case decimal.Decimal:
		return t, nil
	default:
		return decimal.Zero, &ValidationError{Field: f.Name, Message: "must be a number"}
	}
}
