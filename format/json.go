package format

import (
	"encoding/json"
	"fmt"

	"github.com/strataconf/strata/merge"
)

type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Decode(data []byte) (merge.Fragment, error) {
	var frag map[string]any
	if err := json.Unmarshal(data, &frag); err != nil {
		return nil, fmt.Errorf("failed to parse JSON fragment: %w", err)
	}
	return normalizeFragment(frag), nil
}

func (jsonCodec) Encode(frag merge.Fragment) ([]byte, error) {
	data, err := json.MarshalIndent(frag, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON fragment: %w", err)
	}
	return append(data, '\n'), nil
}
