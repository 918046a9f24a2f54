package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type jsonCodec struct{}

func (jsonCodec) Format() Format { return JSON }

func (jsonCodec) Encode(v any, minify bool) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if !minify {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(v); err != nil {
		return nil, fmt.Errorf("codec: json encode: %w", err)
	}
	// json.Encoder terminates the stream with a newline; strip it so minified
	// output is truly compact.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (jsonCodec) Decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("codec: json decode: %w", err)
	}
	return nil
}
