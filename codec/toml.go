package codec

import (
	"fmt"

	toml "github.com/pelletier/go-toml/v2"
)

type tomlCodec struct{}

func (tomlCodec) Format() Format { return TOML }

// Encode renders v as TOML. TOML has no compact form, so minify is ignored.
func (tomlCodec) Encode(v any, _ bool) ([]byte, error) {
	data, err := toml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("codec: toml encode: %w", err)
	}
	return data, nil
}

func (tomlCodec) Decode(data []byte, v any) error {
	if err := toml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("codec: toml decode: %w", err)
	}
	return nil
}
