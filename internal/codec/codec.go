package codec

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"hopmap/internal/config"
)

// Importer reads a topology document in some format
type Importer interface {
	Parse(r io.Reader) (*config.TopologySpec, error)
	Format() string
}

// Exporter writes a topology document in some format
type Exporter interface {
	Export(spec *config.TopologySpec, w io.Writer) error
	Format() string
	ContentType() string
}

// Codec is both an Importer and an Exporter
type Codec interface {
	Importer
	Exporter
}

// ForFormat returns the codec for a format name. An empty name selects JSON.
func ForFormat(format string) (Codec, error) {
	switch format {
	case "", "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// ForPath returns the codec matching the extension of path
func ForPath(path string) (Codec, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return nil, fmt.Errorf("%s: no file extension to pick a format from", path)
	}
	return ForFormat(ext)
}

// LoadFile reads a standalone topology document, picking the format from the
// file extension. Zero layout constants get their defaults.
func LoadFile(path string) (*config.TopologySpec, error) {
	c, err := ForPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open topology: %w", err)
	}
	defer f.Close()

	spec, err := c.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	spec.ApplyDefaults()
	return spec, nil
}
