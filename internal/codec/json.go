package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"hopmap/internal/config"
)

// JSONCodec handles JSON import/export
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// ContentType returns the MIME type of exported documents
func (c *JSONCodec) ContentType() string {
	return "application/json"
}

// Parse imports a topology from JSON
func (c *JSONCodec) Parse(r io.Reader) (*config.TopologySpec, error) {
	var spec config.TopologySpec
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	return &spec, nil
}

// Export exports a topology to JSON
func (c *JSONCodec) Export(spec *config.TopologySpec, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(spec); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
