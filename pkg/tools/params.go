package tools

import (
	"fmt"
	"math"
)

// Handler executes a tool with its decoded JSON arguments
type Handler func(params any) (any, error)

func paramsMap(params any) (map[string]any, error) {
	if params == nil {
		return map[string]any{}, nil
	}
	m, ok := params.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invalid parameters format")
	}
	return m, nil
}

func requiredNumber(m map[string]any, name string) (float64, error) {
	v, ok := m[name]
	if !ok {
		return 0, fmt.Errorf("%s parameter is required", name)
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("%s parameter must be a number", name)
	}
	return f, nil
}

func optionalNumber(m map[string]any, name string, def float64) (float64, error) {
	if _, ok := m[name]; !ok {
		return def, nil
	}
	return requiredNumber(m, name)
}

func requiredInt(m map[string]any, name string) (int, error) {
	f, err := requiredNumber(m, name)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%s parameter must be a whole number, got: %v", name, f)
	}
	return int(f), nil
}

// optionalInt returns nil when the parameter is absent, so that an
// explicit zero can be told apart from a default
func optionalInt(m map[string]any, name string) (*int, error) {
	if _, ok := m[name]; !ok {
		return nil, nil
	}
	v, err := requiredInt(m, name)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func requiredString(m map[string]any, name string) (string, error) {
	s, ok := m[name].(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%s parameter is required and must be a string", name)
	}
	return s, nil
}

func optionalBool(m map[string]any, name string, def bool) (bool, error) {
	v, ok := m[name]
	if !ok {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%s parameter must be a boolean", name)
	}
	return b, nil
}
