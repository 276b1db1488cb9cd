package format

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/strataconf/strata/merge"
)

type yamlCodec struct{}

func (yamlCodec) Name() string { return "yaml" }

func (yamlCodec) Decode(data []byte) (merge.Fragment, error) {
	var frag map[string]any
	if err := yaml.Unmarshal(data, &frag); err != nil {
		return nil, fmt.Errorf("failed to parse YAML fragment: %w", err)
	}
	return normalizeFragment(frag), nil
}

func (yamlCodec) Encode(frag merge.Fragment) ([]byte, error) {
	data, err := yaml.Marshal(frag)
	if err != nil {
		return nil, fmt.Errorf("failed to encode YAML fragment: %w", err)
	}
	return data, nil
}
