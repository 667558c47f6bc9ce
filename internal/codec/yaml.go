package codec

import (
	"fmt"
	"io"

	"hopmap/internal/config"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles YAML import/export. The document is the bare topology
// section of a config file, without the enclosing "topology:" key.
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// ContentType returns the MIME type of exported documents
func (c *YAMLCodec) ContentType() string {
	return "application/yaml"
}

// Parse imports a topology from YAML
func (c *YAMLCodec) Parse(r io.Reader) (*config.TopologySpec, error) {
	var spec config.TopologySpec
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &spec, nil
}

// Export exports a topology to YAML
func (c *YAMLCodec) Export(spec *config.TopologySpec, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(spec); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
