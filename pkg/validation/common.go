package validation

import (
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// IDValidator accepts positive integer identifiers.
type IDValidator struct{}

func (IDValidator) Validate(raw any) (int64, error) {
	id, err := integer(raw)
	if err != nil {
		return 0, wrap("invalid id", err)
	}
	if id < 1 {
		return 0, errorf("invalid id: %d is not positive", id)
	}
	return id, nil
}

// DateTimeTsValidator accepts non-negative Unix timestamps in seconds and
// returns them as UTC times.
type DateTimeTsValidator struct{}

func (DateTimeTsValidator) Validate(raw any) (time.Time, error) {
	ts, err := integer(raw)
	if err != nil {
		return time.Time{}, wrap("invalid timestamp", err)
	}
	if ts < 0 {
		return time.Time{}, errorf("invalid timestamp: %d is negative", ts)
	}
	return time.Unix(ts, 0).UTC(), nil
}

// URLValidator accepts absolute URLs.
type URLValidator struct {
	validate *validator.Validate
}

// NewURLValidator returns a URLValidator backed by go-playground/validator.
func NewURLValidator() *URLValidator {
	return &URLValidator{validate: validator.New()}
}

func (v *URLValidator) Validate(raw any) (string, error) {
	s, ok := raw.(string)
	if !ok {
		return "", errorf("invalid url: expected string, got %s", typeName(raw))
	}
	if err := v.validate.Var(s, "required,url"); err != nil {
		return "", wrap("invalid url", err)
	}
	return s, nil
}

// integer converts the numeric forms produced by encoding/json into an int64,
// rejecting fractional and out-of-range values.
func integer(raw any) (int64, error) {
	switch n := raw.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, errorf("%q is not a number", n.String())
		}
		return floatInteger(f)
	case float64:
		return floatInteger(n)
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	default:
		return 0, errorf("expected integer, got %s", typeName(raw))
	}
}

func floatInteger(f float64) (int64, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, errorf("%s is not an integer", strconv.FormatFloat(f, 'g', -1, 64))
	}
	return int64(f), nil
}

// typeName names a raw value using JSON vocabulary.
func typeName(raw any) string {
	switch raw.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64, int, int64, int32:
		return "number"
	default:
		return "unknown"
	}
}
