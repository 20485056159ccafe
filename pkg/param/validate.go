package param

import "fmt"

// Numbers accepts a float64 (or int) within [min, max].
func Numbers(min, max float64) CheckFunc {
	return func(v any) error {
		var f float64
		switch n := v.(type) {
		case float64:
			f = n
		case int:
			f = float64(n)
		default:
			return fmt.Errorf("%w: expected a number, got %T", ErrInvalid, v)
		}
		if f < min || f > max {
			return fmt.Errorf("%w: %v outside [%v, %v]", ErrInvalid, f, min, max)
		}
		return nil
	}
}

// Ints accepts an int within [min, max].
func Ints(min, max int) CheckFunc {
	return func(v any) error {
		i, ok := v.(int)
		if !ok {
			return fmt.Errorf("%w: expected an integer, got %T", ErrInvalid, v)
		}
		if i < min || i > max {
			return fmt.Errorf("%w: %d outside [%d, %d]", ErrInvalid, i, min, max)
		}
		return nil
	}
}

// Enum accepts only the listed values.
func Enum(allowed ...any) CheckFunc {
	return func(v any) error {
		for _, a := range allowed {
			if v == a {
				return nil
			}
		}
		return fmt.Errorf("%w: %v not one of %v", ErrInvalid, v, allowed)
	}
}

// Bool accepts a bool.
func Bool() CheckFunc {
	return func(v any) error {
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("%w: expected a boolean, got %T", ErrInvalid, v)
		}
		return nil
	}
}
