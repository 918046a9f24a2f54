package codec

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type yamlCodec struct{}

func (yamlCodec) Format() Format { return YAML }

// Encode renders v as YAML. YAML has no compact form, so minify is ignored.
func (yamlCodec) Encode(v any, _ bool) ([]byte, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("codec: yaml encode: %w", err)
	}
	return data, nil
}

func (yamlCodec) Decode(data []byte, v any) error {
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("codec: yaml decode: %w", err)
	}
	return nil
}
