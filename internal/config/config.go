// Package config provides configuration management for hopmap.
//
// One YAML file carries the topology (nodes, initial loads, layout constants,
// sync endpoint) next to backend and sync client settings.
//
// Config file locations (priority order):
//  1. $HOPMAP_CONFIG
//  2. ./hopmap.yaml
//  3. ~/.config/hopmap/config.yaml
//  4. /etc/hopmap/config.yaml
//
// A parsed file is only a description. NewTopology validates the topology
// section and returns the immutable value the rest of the program consumes.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultAddr     = ":8080"
	DefaultDBPath   = "./hopmap.db"
	DefaultBaseURL  = "http://127.0.0.1:8080"
	DefaultMinLoad  = 1
	DefaultMaxLoad  = 63 // the TOS field leaves room for 63 loop iterations
	DefaultTimeout  = 10 * time.Second
	DefaultCooldown = time.Second

	DefaultNodeRadius          = 42
	DefaultChargeStrength      = -300
	DefaultLinkDistanceDivisor = 20
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// Parse decodes a config document and applies defaults
func Parse(r io.Reader) (*Config, error) {
	var cfg Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validateSettings(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns the reference three-city topology with default settings
func DefaultConfig() *Config {
	cfg := &Config{Topology: DefaultTopologySpec()}
	cfg.applyDefaults()
	return cfg
}

// DefaultTopologySpec returns the reference topology: three hosts on a looped
// switch, one per city.
func DefaultTopologySpec() TopologySpec {
	return TopologySpec{
		Nodes: []NodeSpec{
			{ID: "A", Name: "Moscow", Address: "10.0.2.10", XY: [2]float64{0.55, 0.17}, Color: "rgb(220,50,47)"},
			{ID: "B", Name: "San Francisco", Address: "10.0.1.10", XY: [2]float64{0.21, 0.277}, Color: "rgb(108,113,196)"},
			{ID: "C", Name: "Canberra", Address: "10.0.3.10", XY: [2]float64{0.77, 0.666}, Color: "rgb(64,173,0)"},
		},
		InitialLoads: map[string][2]int{
			"A-B": {1, 1},
			"B-C": {1, 3},
			"C-A": {2, 2},
		},
		LabelOffsets: map[string][2]float64{
			"A": {-50, 70},
			"B": {190, 10},
			"C": {-20, 88},
		},
		Endpoint:            "/arccn/post/",
		QRPayload:           "https://github.com/ARCCN/pox/tree/betta/ext/yac",
		QRSize:              120,
		NodeRadius:          DefaultNodeRadius,
		ChargeStrength:      DefaultChargeStrength,
		LinkDistanceDivisor: DefaultLinkDistanceDivisor,
	}
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}

	// An absent topology section means the reference topology. A partial one
	// only gets its layout constants filled; a missing endpoint stays missing.
	if len(c.Topology.Nodes) == 0 && c.Topology.Endpoint == "" {
		c.Topology = DefaultTopologySpec()
	}
	c.Topology.ApplyDefaults()

	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.DBPath == "" {
		c.Server.DBPath = DefaultDBPath
	}
	if c.Server.MinLoad == 0 && c.Server.MaxLoad == 0 {
		c.Server.MinLoad = DefaultMinLoad
		c.Server.MaxLoad = DefaultMaxLoad
	}

	if c.Sync.BaseURL == "" {
		c.Sync.BaseURL = DefaultBaseURL
	}
	if c.Sync.Timeout == 0 {
		c.Sync.Timeout = Duration(DefaultTimeout)
	}
	if c.Sync.Cooldown == 0 {
		c.Sync.Cooldown = Duration(DefaultCooldown)
	}
}

// ApplyDefaults fills zero layout constants. Nodes, edges and the endpoint
// are left as they are.
func (s *TopologySpec) ApplyDefaults() {
	if s.NodeRadius == 0 {
		s.NodeRadius = DefaultNodeRadius
	}
	if s.ChargeStrength == 0 {
		s.ChargeStrength = DefaultChargeStrength
	}
	if s.LinkDistanceDivisor == 0 {
		s.LinkDistanceDivisor = DefaultLinkDistanceDivisor
	}
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Nodes: %d, Edges: %d, Endpoint: %s\n",
		len(c.Topology.Nodes), len(c.Topology.InitialLoads), c.Topology.Endpoint)
	summary += fmt.Sprintf("Server: %s (db %s), Loads: %d..%d\n",
		c.Server.Addr, c.Server.DBPath, c.Server.MinLoad, c.Server.MaxLoad)
	summary += fmt.Sprintf("Sync: %s, Timeout: %s, Cooldown: %s",
		c.Sync.BaseURL, c.Sync.Timeout.Duration(), c.Sync.Cooldown.Duration())
	return summary
}
