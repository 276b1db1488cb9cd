package format

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/strataconf/strata/merge"
)

type tomlCodec struct{}

func (tomlCodec) Name() string { return "toml" }

func (tomlCodec) Decode(data []byte) (merge.Fragment, error) {
	var frag map[string]any
	if err := toml.Unmarshal(data, &frag); err != nil {
		return nil, fmt.Errorf("failed to parse TOML fragment: %w", err)
	}
	return normalizeFragment(frag), nil
}

func (tomlCodec) Encode(frag merge.Fragment) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(frag); err != nil {
		return nil, fmt.Errorf("failed to encode TOML fragment: %w", err)
	}
	return buf.Bytes(), nil
}
