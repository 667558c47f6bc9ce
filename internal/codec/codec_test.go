package codec

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hopmap/internal/config"
)

func TestForFormat(t *testing.T) {
	tests := []struct {
		format  string
		want    string
		wantErr bool
	}{
		{"", "json", false},
		{"json", "json", false},
		{"yaml", "yaml", false},
		{"yml", "yaml", false},
		{"ansible", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			c, err := ForFormat(tt.format)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for format %q", tt.format)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.Format() != tt.want {
				t.Errorf("expected format %s, got %s", tt.want, c.Format())
			}
		})
	}
}

func TestCodecsRoundTripDefaultTopology(t *testing.T) {
	for _, c := range []Codec{NewJSONCodec(), NewYAMLCodec()} {
		t.Run(c.Format(), func(t *testing.T) {
			spec := config.DefaultTopologySpec()

			var buf bytes.Buffer
			if err := c.Export(&spec, &buf); err != nil {
				t.Fatalf("export failed: %v", err)
			}

			parsed, err := c.Parse(&buf)
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}

			topo, err := config.NewTopology(*parsed)
			if err != nil {
				t.Fatalf("round-tripped topology is invalid: %v", err)
			}
			if len(topo.Nodes()) != len(spec.Nodes) {
				t.Errorf("expected %d nodes, got %d", len(spec.Nodes), len(topo.Nodes()))
			}
			if topo.Endpoint() != spec.Endpoint {
				t.Errorf("expected endpoint %s, got %s", spec.Endpoint, topo.Endpoint())
			}
			if !topo.InitialLoads().Equal(mustTopology(t, spec).InitialLoads()) {
				t.Errorf("initial loads changed in round trip")
			}
		})
	}
}

func TestYAMLParseRejectsUnknownFields(t *testing.T) {
	doc := `
nodes:
  - id: A
    name: Moscow
endpoint: /arccn/post/
colour: red
`
	if _, err := NewYAMLCodec().Parse(strings.NewReader(doc)); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestJSONExportUsesEdgeKeys(t *testing.T) {
	spec := config.DefaultTopologySpec()

	var buf bytes.Buffer
	if err := NewJSONCodec().Export(&spec, &buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	for _, want := range []string{`"A-B"`, `"initial_loads"`, `"endpoint": "/arccn/post/"`} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected output to contain %s, got:\n%s", want, buf.String())
		}
	}
}

func mustTopology(t *testing.T, spec config.TopologySpec) *config.Topology {
	t.Helper()
	topo, err := config.NewTopology(spec)
	if err != nil {
		t.Fatalf("invalid topology: %v", err)
	}
	return topo
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("json by extension with layout defaults", func(t *testing.T) {
		path := filepath.Join(dir, "topology.json")
		doc := `{
  "nodes": [
    {"id": "A", "name": "Moscow", "xy": [0.5, 0.5]},
    {"id": "B", "name": "Canberra", "xy": [0.2, 0.2]}
  ],
  "initial_loads": {"A-B": [1, 2]},
  "endpoint": "/apply"
}`
		if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}

		spec, err := LoadFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if spec.NodeRadius != config.DefaultNodeRadius {
			t.Errorf("expected default radius %v, got %v", config.DefaultNodeRadius, spec.NodeRadius)
		}
		topo := mustTopology(t, *spec)
		if topo.EndpointPath() != "/apply" {
			t.Errorf("expected /apply, got %s", topo.EndpointPath())
		}
	})

	t.Run("yaml by extension", func(t *testing.T) {
		spec := config.DefaultTopologySpec()
		path := filepath.Join(dir, "topology.yml")
		var buf bytes.Buffer
		if err := NewYAMLCodec().Export(&spec, &buf); err != nil {
			t.Fatalf("export failed: %v", err)
		}
		if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}

		loaded, err := LoadFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(loaded.Nodes) != 3 {
			t.Errorf("expected 3 nodes, got %d", len(loaded.Nodes))
		}
	})

	t.Run("unknown extension", func(t *testing.T) {
		if _, err := LoadFile(filepath.Join(dir, "topology.txt")); err == nil {
			t.Error("expected error for .txt")
		}
	})

	t.Run("no extension", func(t *testing.T) {
		if _, err := LoadFile(filepath.Join(dir, "topology")); err == nil {
			t.Error("expected error without extension")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadFile(filepath.Join(dir, "missing.json")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}
