// Package merge implements the strategies used to combine configuration
// fragments. All functions are pure: inputs are never mutated, and results
// are freshly allocated down to the deepest nested map or slice.
//
// A fragment is an arbitrarily nested map of JSON-like values (strings,
// numbers, booleans, nested maps, slices). Fragments have no fixed schema;
// keys the strategies don't recognize pass through unchanged.
package merge

import "reflect"

// Fragment is a configuration fragment: a string-keyed map of JSON-like
// values contributed by one source.
type Fragment = map[string]any

// Strategy selects the algorithm used to combine two fragments.
type Strategy string

const (
	// StrategyOverride makes the source fragment win outright. The result
	// equals the source fragment; nothing is retained from the target, not
	// even keys absent from the source.
	StrategyOverride Strategy = "override"

	// StrategyMerge deep-merges nested maps key by key. The source wins on
	// scalar conflicts; arrays are combined according to ArrayMode.
	StrategyMerge Strategy = "merge"

	// StrategyExtend is like StrategyMerge except existing keys in the
	// target are never overwritten; only keys absent from the target are
	// added. Arrays are combined with unique semantics regardless of the
	// configured ArrayMode.
	StrategyExtend Strategy = "extend"
)

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyOverride, StrategyMerge, StrategyExtend:
		return true
	}
	return false
}

// ArrayMode selects how two array values at the same key are combined.
type ArrayMode string

const (
	// ArrayConcat appends the source array after the target array,
	// keeping duplicates.
	ArrayConcat ArrayMode = "concat"

	// ArrayUnique concatenates and then removes duplicates, preserving
	// the first occurrence of each element.
	ArrayUnique ArrayMode = "unique"

	// ArrayReplace discards the target array and uses the source array.
	ArrayReplace ArrayMode = "replace"
)

// Valid reports whether m is a known array mode.
func (m ArrayMode) Valid() bool {
	switch m {
	case ArrayConcat, ArrayUnique, ArrayReplace:
		return true
	}
	return false
}

// CustomFunc resolves the value for a single key, overriding the strategy's
// built-in scalar rule. It receives the raw target and source values at the
// key and returns the value to use. It is invoked only where the scalar rule
// would apply: both sides present, and the pair is neither map-vs-map nor
// array-vs-array.
type CustomFunc func(key string, target, source any) any

// Options control how fragments are combined.
type Options struct {
	// Strategy selects the merge algorithm. An empty or unknown value is
	// treated as StrategyMerge.
	Strategy Strategy

	// ArrayMerge selects how array values are combined under StrategyMerge.
	// Empty means the strategy's default (see DefaultOptions).
	// StrategyExtend ignores this and always uses ArrayUnique.
	ArrayMerge ArrayMode

	// Custom, when non-nil, takes precedence over the built-in scalar rule
	// for any key it is invoked on.
	Custom CustomFunc
}

// DefaultOptions returns the standard options for a strategy:
// StrategyMerge and StrategyOverride use ArrayConcat, StrategyExtend uses
// ArrayUnique.
func DefaultOptions(s Strategy) Options {
	mode := ArrayConcat
	if s == StrategyExtend {
		mode = ArrayUnique
	}
	return Options{Strategy: s, ArrayMerge: mode}
}

// resolve fills in defaults for zero-valued fields so the merge functions
// can dispatch without re-checking.
func (o Options) resolve() Options {
	if !o.Strategy.Valid() {
		o.Strategy = StrategyMerge
	}
	if !o.ArrayMerge.Valid() {
		o.ArrayMerge = DefaultOptions(o.Strategy).ArrayMerge
	}
	if o.Strategy == StrategyExtend {
		o.ArrayMerge = ArrayUnique
	}
	return o
}

// Fragments combines source into target according to opts and returns the
// result as a new fragment. Neither input is mutated. Fragments never fails:
// any combination of JSON-like values is legal input, and type mismatches at
// a key resolve as scalar conflicts (source wins under merge/override,
// target wins under extend, Custom can override either).
func Fragments(target, source Fragment, opts Options) Fragment {
	opts = opts.resolve()

	if opts.Strategy == StrategyOverride {
		out := Clone(source)
		if out == nil {
			out = Fragment{}
		}
		return out
	}

	out := Clone(target)
	if out == nil {
		out = Fragment{}
	}
	mergeInto(out, source, opts)
	return out
}

// Layers folds an ordered sequence of fragments left to right with
// Fragments, treating the first element as the initial accumulator. An empty
// sequence yields an empty fragment; a single-element sequence yields a copy
// of that element.
func Layers(fragments []Fragment, opts Options) Fragment {
	if len(fragments) == 0 {
		return Fragment{}
	}

	acc := Clone(fragments[0])
	if acc == nil {
		acc = Fragment{}
	}
	for _, frag := range fragments[1:] {
		acc = Fragments(acc, frag, opts)
	}
	return acc
}

// mergeInto merges src into dst in place. dst must already be a private
// copy; src is only read. Behavior switches on opts.Strategy between the
// merge and extend rules.
func mergeInto(dst Fragment, src Fragment, opts Options) {
	extend := opts.Strategy == StrategyExtend

	for key, srcVal := range src {
		dstVal, exists := dst[key]
		if !exists {
			dst[key] = cloneValue(srcVal)
			continue
		}

		dstMap, dstIsMap := dstVal.(map[string]any)
		srcMap, srcIsMap := srcVal.(map[string]any)
		if dstIsMap && srcIsMap {
			mergeInto(dstMap, srcMap, opts)
			continue
		}

		dstArr, dstIsArr := asSlice(dstVal)
		srcArr, srcIsArr := asSlice(srcVal)
		if dstIsArr && srcIsArr {
			dst[key] = mergeArrays(dstArr, srcArr, opts.ArrayMerge)
			continue
		}

		// Scalar conflict (including map-vs-array mismatches).
		if opts.Custom != nil {
			dst[key] = cloneValue(opts.Custom(key, dstVal, srcVal))
			continue
		}
		if extend {
			continue // target wins
		}
		dst[key] = cloneValue(srcVal) // source wins
	}
}

// mergeArrays combines two arrays under the given mode and returns a fresh
// slice. dst is assumed to already be private; src elements are cloned.
func mergeArrays(dst, src []any, mode ArrayMode) []any {
	switch mode {
	case ArrayReplace:
		out := make([]any, 0, len(src))
		for _, v := range src {
			out = append(out, cloneValue(v))
		}
		return out
	case ArrayUnique:
		out := make([]any, 0, len(dst)+len(src))
		for _, v := range dst {
			if !containsValue(out, v) {
				out = append(out, v)
			}
		}
		for _, v := range src {
			if !containsValue(out, v) {
				out = append(out, cloneValue(v))
			}
		}
		return out
	default: // ArrayConcat
		out := make([]any, 0, len(dst)+len(src))
		out = append(out, dst...)
		for _, v := range src {
			out = append(out, cloneValue(v))
		}
		return out
	}
}

// containsValue reports whether s already holds a value equal to v.
// Equality uses == for comparable values and reflect.DeepEqual otherwise,
// so nested maps and slices deduplicate structurally.
func containsValue(s []any, v any) bool {
	cmpOK := v == nil || reflect.TypeOf(v).Comparable()
	for _, e := range s {
		if cmpOK && (e == nil || reflect.TypeOf(e).Comparable()) {
			if e == v {
				return true
			}
			continue
		}
		if reflect.DeepEqual(e, v) {
			return true
		}
	}
	return false
}

// asSlice normalizes slice values to []any. Fragments decoded from JSON or
// YAML carry []any, but hand-built fragments often use []string.
func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out, true
	}
	return nil, false
}

// Clone returns a deep copy of a fragment, recursively copying nested maps
// and slices. Clone(nil) returns nil.
func Clone(frag Fragment) Fragment {
	if frag == nil {
		return nil
	}
	out := make(Fragment, len(frag))
	for k, v := range frag {
		out[k] = cloneValue(v)
	}
	return out
}

// cloneValue deep-copies maps and slices; scalars are returned as-is.
func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return Clone(val)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	default:
		return v
	}
}
