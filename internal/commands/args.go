package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fadedpez/trackbattle/internal/types"
)

// Args are a command's named arguments. Values may be strings or numbers;
// JSON decoding hands numbers over as float64.
type Args map[string]any

// Has reports whether name was given
func (a Args) Has(name string) bool {
	v, ok := a[name]
	if !ok || v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// String returns the argument as a string, or "" if absent
func (a Args) String(name string) string {
	switch v := a[name].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return fmt.Sprint(v)
	}
}

// Int64 returns the argument as an integer, or 0 if absent
func (a Args) Int64(name string) (int64, error) {
	switch v := a[name].(type) {
	case nil:
		return 0, nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v != float64(int64(v)) {
			return 0, invalidNumber(name, v)
		}
		return int64(v), nil
	case string:
		v = strings.TrimPrefix(strings.TrimSpace(v), "$")
		if v == "" {
			return 0, nil
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, invalidNumber(name, v)
		}
		return n, nil
	default:
		return 0, invalidNumber(name, v)
	}
}

func invalidNumber(name string, v any) error {
	return types.NewBattleError(types.ErrInvalidArgument, fmt.Sprintf("%s must be a whole number, got %v.", name, v))
}
