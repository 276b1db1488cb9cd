// Package format provides codecs for reading and writing configuration
// fragments in the supported file formats (JSON, YAML, TOML). Codecs are
// selected by file extension and always produce JSON-like fragment shapes:
// string-keyed maps with []any slices.
package format

import (
	"fmt"
	"strings"

	"github.com/strataconf/strata/merge"
)

// Codec parses and serializes fragments for one file format.
type Codec interface {
	// Name returns the format identifier (e.g. "json", "yaml", "toml").
	Name() string

	// Decode parses data into a fragment.
	Decode(data []byte) (merge.Fragment, error)

	// Encode serializes a fragment.
	Encode(frag merge.Fragment) ([]byte, error)
}

// codecs maps normalized file extensions to their codec.
var codecs = map[string]Codec{
	"json": jsonCodec{},
	"yaml": yamlCodec{},
	"yml":  yamlCodec{},
	"toml": tomlCodec{},
}

// ByExtension returns the codec for a file extension. The extension may
// carry a leading dot and is matched case-insensitively.
func ByExtension(ext string) (Codec, bool) {
	c, ok := codecs[normalizeExt(ext)]
	return c, ok
}

// Supported reports whether a codec exists for the extension.
func Supported(ext string) bool {
	_, ok := ByExtension(ext)
	return ok
}

// Decode parses data using the codec for the given extension.
func Decode(ext string, data []byte) (merge.Fragment, error) {
	c, ok := ByExtension(ext)
	if !ok {
		return nil, fmt.Errorf("unsupported format %q", ext)
	}
	return c.Decode(data)
}

// Encode serializes a fragment using the codec for the given extension.
func Encode(ext string, frag merge.Fragment) ([]byte, error) {
	c, ok := ByExtension(ext)
	if !ok {
		return nil, fmt.Errorf("unsupported format %q", ext)
	}
	return c.Encode(frag)
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// normalizeValue rewrites decoder output into the JSON-like shapes the rest
// of the system expects: map[string]any for mappings and []any for
// sequences. Decoders occasionally produce other container types (e.g.
// TOML's []map[string]any for table arrays).
func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, e := range val {
			val[k] = normalizeValue(e)
		}
		return val
	case []any:
		for i, e := range val {
			val[i] = normalizeValue(e)
		}
		return val
	case []map[string]any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = normalizeValue(e)
		}
		return out
	default:
		return v
	}
}

// normalizeFragment applies normalizeValue to every top-level entry.
func normalizeFragment(frag map[string]any) merge.Fragment {
	for k, v := range frag {
		frag[k] = normalizeValue(v)
	}
	return frag
}
