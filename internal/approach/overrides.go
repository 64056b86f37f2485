package approach

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Request-level override keys.
const (
	OverrideUserPersona    = "user_persona"
	OverrideSystemPersona  = "system_persona"
	OverrideResponseLength = "response_length"
	OverrideTop            = "top"
)

// Overrides carries optional request-level parameters decoded from JSON.
type Overrides map[string]any

// String returns the string stored under key, or def when it is absent.
func (o Overrides) String(key, def string) (string, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", &ValidationError{Field: key, Message: fmt.Sprintf("must be a string, got %T", v)}
	}
	return s, nil
}

// Int returns the integer stored under key. Absent, null, zero and empty
// values all fall back to def. Numeric strings and whole JSON numbers are
// accepted; anything else is a validation error.
func (o Overrides) Int(key string, def int) (int, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return def, nil
	}

	var n int
	switch val := v.(type) {
	case int:
		n = val
	case int32:
		n = int(val)
	case int64:
		n = int(val)
	case float64:
		if val != math.Trunc(val) || math.IsInf(val, 0) {
			return 0, &ValidationError{Field: key, Message: fmt.Sprintf("must be a whole number, got %v", val)}
		}
		// float64(math.MaxInt) rounds up to 2^63, itself out of range.
		if val >= float64(math.MaxInt) || val < float64(math.MinInt) {
			return 0, &ValidationError{Field: key, Message: fmt.Sprintf("is out of range, got %v", val)}
		}
		n = int(val)
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return def, nil
		}
		parsed, err := strconv.Atoi(s)
		if err != nil {
			return 0, &ValidationError{Field: key, Message: fmt.Sprintf("must be an integer, got %q", val)}
		}
		n = parsed
	default:
		return 0, &ValidationError{Field: key, Message: fmt.Sprintf("must be an integer, got %T", v)}
	}

	if n == 0 {
		return def, nil
	}
	return n, nil
}
