package toolkit

import (
	"strconv"
	"strings"
)

// InputKey is the conventional name of a tool's main text input.
const InputKey = "input"

// Inputs holds the string-encoded parameters of an operation.
type Inputs map[string]string

// Has reports whether key is present.
func (in Inputs) Has(key string) bool {
	_, ok := in[key]
	return ok
}

// String returns the value of key, or "" if absent.
func (in Inputs) String(key string) string {
	return in[key]
}

// Int parses key as an integer, falling back to def when absent or blank.
func (in Inputs) Int(key string, def int64) (int64, error) {
	raw := strings.TrimSpace(in[key])
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, invalidInput(key, "%q is not an integer", raw)
	}
	return v, nil
}

// Float parses key as a number, falling back to def when absent or blank.
func (in Inputs) Float(key string, def float64) (float64, error) {
	raw := strings.TrimSpace(in[key])
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, invalidInput(key, "%q is not a number", raw)
	}
	return v, nil
}

// Bool parses key as a boolean, falling back to def when absent or blank.
func (in Inputs) Bool(key string, def bool) (bool, error) {
	raw := strings.TrimSpace(in[key])
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, invalidInput(key, "%q is not a boolean", raw)
	}
	return v, nil
}

// withDefaults returns a copy of in with defaults from specs filled in.
func (in Inputs) withDefaults(defs []Input) Inputs {
	out := make(Inputs, len(in)+len(defs))
	for k, v := range in {
		out[k] = v
	}
	for _, def := range defs {
		if _, ok := out[def.Name]; !ok && def.Default != "" {
			out[def.Name] = def.Default
		}
	}
	return out
}
