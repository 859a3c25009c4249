package catalog

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/wagiedev/shim-bridge-go/internal/errors"
)

// ParamType is the JSON type an argument must have.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeInteger ParamType = "integer"
	TypeNumber  ParamType = "number"
	TypeBoolean ParamType = "boolean"
	TypeArray   ParamType = "array"
)

// Param describes one named argument of an Operation.
type Param struct {
	Name        string
	Type        ParamType
	Description string

	// Required params must be present. Required strings must also be non-empty.
	Required bool

	// Default is sent in place of an absent optional param. A nil Default
	// sends null.
	Default any

	// Enum restricts string values.
	Enum []string

	// Items is the element type of an array param.
	Items ParamType

	// Spread appends the elements of an array param to the positional args
	// instead of sending the array itself.
	Spread bool

	// Local params configure the call and are never sent to the worker.
	Local bool
}

// Args are the named arguments supplied by the calling agent.
type Args map[string]any

// String returns the named argument as a string, or "" if absent or not a string.
func (a Args) String(name string) string {
	s, _ := a[name].(string)

	return s
}

// Bool returns the named argument as a bool, or false if absent or not a bool.
func (a Args) Bool(name string) bool {
	b, _ := a[name].(bool)

	return b
}

// present reports whether the param was supplied in a usable form.
func (p *Param) present(args Args) bool {
	v, ok := args[p.Name]
	if !ok || v == nil {
		return false
	}

	if p.Type == TypeString && p.Required {
		s, isString := v.(string)

		return !isString || s != ""
	}

	return true
}

// normalize checks v against the param type and returns the value to send.
func (p *Param) normalize(v any) (any, error) {
	switch p.Type {
	case TypeString:
		s, ok := v.(string)
		if !ok {
			return nil, p.invalid("must be a string")
		}

		if len(p.Enum) > 0 && !slices.Contains(p.Enum, s) {
			return nil, p.invalid("must be one of " + strings.Join(p.Enum, ", "))
		}

		return s, nil

	case TypeInteger:
		switch i := v.(type) {
		case int:
			return int64(i), nil
		case int64:
			return i, nil
		}

		n, ok := toFloat(v)
		// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
		if !ok || n != math.Trunc(n) || n < math.MinInt64 || n >= math.MaxInt64 {
			return nil, p.invalid("must be an integer")
		}

		return int64(n), nil

	case TypeNumber:
		n, ok := toFloat(v)
		if !ok {
			return nil, p.invalid("must be a number")
		}

		return n, nil

	case TypeBoolean:
		b, ok := v.(bool)
		if !ok {
			return nil, p.invalid("must be a boolean")
		}

		return b, nil

	case TypeArray:
		items, ok := v.([]any)
		if !ok {
			return nil, p.invalid("must be an array")
		}

		for _, item := range items {
			if !isScalar(item) {
				return nil, p.invalid("must contain only strings, numbers or booleans")
			}
		}

		return items, nil

	default:
		return v, nil
	}
}

func (p *Param) invalid(msg string) error {
	return &errors.ValidationError{Field: p.Name, Message: "Error: " + p.Name + " " + msg}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()

		return f, err == nil
	default:
		return 0, false
	}
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, bool:
		return true
	default:
		_, ok := toFloat(v)

		return ok
	}
}

// joinNames renders "a", "a and b" or "a, b, and c".
func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return fmt.Sprintf("%s, and %s", strings.Join(names[:len(names)-1], ", "), names[len(names)-1])
	}
}
