package codec

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

type binaryCodec struct{}

func (binaryCodec) Format() Format { return Binary }

// Encode renders v as CBOR. CBOR is always compact, so minify is ignored.
func (binaryCodec) Encode(v any, _ bool) ([]byte, error) {
	data, err := cbor.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("codec: binary encode: %w", err)
	}
	return data, nil
}

func (binaryCodec) Decode(data []byte, v any) error {
	if err := cbor.Unmarshal(data, v); err != nil {
		return fmt.Errorf("codec: binary decode: %w", err)
	}
	return nil
}
