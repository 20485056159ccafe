package param

import (
	"fmt"
	"strconv"
	"strings"
)

// Float parses a numeric reply.
func Float(s string) (any, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a number", ErrParse, s)
	}
	return f, nil
}

// Int parses an integer reply.
func Int(s string) (any, error) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not an integer", ErrParse, s)
	}
	return i, nil
}

// String returns the reply with surrounding whitespace removed.
func String(s string) (any, error) {
	return strings.TrimSpace(s), nil
}

// OnOff parses the 0/1 and OFF/ON flag replies instruments use
// interchangeably.
func OnOff(s string) (any, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "1", "ON":
		return true, nil
	case "0", "OFF":
		return false, nil
	}
	return nil, fmt.Errorf("%w: %q is not an on/off flag", ErrParse, s)
}

// OnOffFormat formats a bool using the instrument's on/off tokens. Use with
// a SetFmt containing a single %s verb.
func OnOffFormat(on, off string) FormatFunc {
	return func(v any) (string, error) {
		b, ok := v.(bool)
		if !ok {
			return "", fmt.Errorf("%w: expected a boolean, got %T", ErrInvalid, v)
		}
		if b {
			return on, nil
		}
		return off, nil
	}
}
