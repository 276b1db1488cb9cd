package strata

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Recognized top-level fragment keys. Anything else passes through merges
// untouched but is flagged as a warning by validation.
const (
	// KeyPlugins lists plugin identifiers as a string array.
	KeyPlugins = "plugins"

	// KeySettings holds a nested map of arbitrary settings.
	KeySettings = "settings"

	// KeyRoutes lists route identifiers as a string array.
	KeyRoutes = "routes"
)

// ValidationResult reports the outcome of a fragment shape check.
// Errors make the fragment invalid; warnings do not.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// validateFragment checks a fragment against the basic shape schema and
// returns every violation found. It never panics on malformed input.
func validateFragment(frag Fragment) ValidationResult {
	res := ValidationResult{Valid: true}
	if frag == nil {
		res.addError("fragment is nil")
		return res
	}

	// Iterate keys in sorted order so violations are reported
	// deterministically.
	keys := make([]string, 0, len(frag))
	for k := range frag {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := frag[key]
		switch key {
		case KeyPlugins, KeyRoutes:
			res.checkStringList(key, value)
		case KeySettings:
			if m, ok := value.(map[string]any); ok {
				res.checkValue(key, m)
			} else {
				res.addError(fmt.Sprintf("key %q must be a map, got %s", key, typeName(value)))
			}
		default:
			res.addWarning(fmt.Sprintf("unrecognized top-level key %q", key))
			res.checkValue(key, value)
		}
	}
	return res
}

func (r *ValidationResult) addError(msg string) {
	r.Valid = false
	r.Errors = append(r.Errors, msg)
}

func (r *ValidationResult) addWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// checkStringList verifies that value is a list whose elements are all
// strings, reporting each offending element.
func (r *ValidationResult) checkStringList(key string, value any) {
	switch list := value.(type) {
	case []string:
		return
	case []any:
		for i, elem := range list {
			if _, ok := elem.(string); !ok {
				r.addError(fmt.Sprintf("key %q element %d must be a string, got %s", key, i, typeName(elem)))
			}
		}
	default:
		r.addError(fmt.Sprintf("key %q must be a list of strings, got %s", key, typeName(value)))
	}
}

// checkValue walks a value recursively and reports anything that is not a
// JSON-like type (string, number, boolean, nil, string-keyed map, slice).
func (r *ValidationResult) checkValue(path string, value any) {
	switch v := value.(type) {
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number:
	case map[string]any:
		for key, elem := range v {
			r.checkValue(path+"."+key, elem)
		}
	case []any:
		for i, elem := range v {
			r.checkValue(fmt.Sprintf("%s[%d]", path, i), elem)
		}
	case []string:
	default:
		r.addError(fmt.Sprintf("value at %q has unsupported type %s", path, typeName(value)))
	}
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}
