package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version  int          `yaml:"version"`
	Topology TopologySpec `yaml:"topology"`
	Server   ServerConfig `yaml:"server"`
	Sync     SyncConfig   `yaml:"sync"`
}

// TopologySpec is the file form of a topology. NewTopology turns it into a
// validated, immutable Topology.
type TopologySpec struct {
	Nodes               []NodeSpec            `yaml:"nodes" json:"nodes" validate:"required,min=1,unique=ID,dive"`
	InitialLoads        map[string][2]int     `yaml:"initial_loads" json:"initial_loads"`
	LabelOffsets        map[string][2]float64 `yaml:"label_offsets,omitempty" json:"label_offsets,omitempty"`
	Endpoint            string                `yaml:"endpoint" json:"endpoint" validate:"required"`
	QRPayload           string                `yaml:"qr_payload,omitempty" json:"qr_payload,omitempty"`
	QRSize              int                   `yaml:"qr_size,omitempty" json:"qr_size,omitempty" validate:"gte=0"`
	NodeRadius          float64               `yaml:"node_radius" json:"node_radius" validate:"gt=0"`
	ChargeStrength      float64               `yaml:"charge_strength" json:"charge_strength"`
	LinkDistanceDivisor float64               `yaml:"link_distance_divisor" json:"link_distance_divisor" validate:"gt=0"`
}

// NodeSpec describes one node in the topology file
type NodeSpec struct {
	ID      string     `yaml:"id" json:"id" validate:"required,excludes=-"`
	Name    string     `yaml:"name" json:"name" validate:"required"`
	Address string     `yaml:"address" json:"address"`
	XY      [2]float64 `yaml:"xy" json:"xy" validate:"dive,gte=0,lte=1"`
	Color   string     `yaml:"color" json:"color"`
}

// ServerConfig holds backend settings
type ServerConfig struct {
	Addr    string `yaml:"addr"`
	DBPath  string `yaml:"db_path"`
	MinLoad int    `yaml:"min_load" validate:"gte=0"`
	MaxLoad int    `yaml:"max_load" validate:"gtefield=MinLoad"`
	Watch   bool   `yaml:"watch"` // reload topology when the file changes
}

// SyncConfig holds sync client settings
type SyncConfig struct {
	BaseURL  string   `yaml:"base_url" validate:"omitempty,url"`
	Timeout  Duration `yaml:"timeout"`
	Cooldown Duration `yaml:"cooldown"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
