package watcher

import (
	"fmt"
	"log"

	"hopmap/internal/codec"
	"hopmap/internal/config"
)

// TopologySetter receives freshly loaded topologies
type TopologySetter interface {
	SetTopology(topo *config.Topology)
}

// TopologyReloader re-reads a file and hands the new topology to a
// TopologySetter. An invalid file leaves the previous topology active.
type TopologyReloader struct {
	path   string
	target TopologySetter
	load   func(path string) (*config.TopologySpec, error)
}

// NewTopologyReloader creates a reloader for the hopmap config file at path
func NewTopologyReloader(path string, target TopologySetter) *TopologyReloader {
	return &TopologyReloader{path: path, target: target, load: configTopology}
}

// NewTopologyFileReloader creates a reloader for a standalone JSON or YAML
// topology document at path
func NewTopologyFileReloader(path string, target TopologySetter) *TopologyReloader {
	return &TopologyReloader{path: path, target: target, load: codec.LoadFile}
}

func configTopology(path string) (*config.TopologySpec, error) {
	cfg, _, err := config.LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	return &cfg.Topology, nil
}

// Reload loads the file and swaps the topology if it is valid
func (r *TopologyReloader) Reload() error {
	spec, err := r.load(r.path)
	if err != nil {
		return fmt.Errorf("reload %s: %w", r.path, err)
	}

	topo, err := config.NewTopology(*spec)
	if err != nil {
		return fmt.Errorf("reload %s: %w", r.path, err)
	}

	r.target.SetTopology(topo)
	log.Printf("Topology reloaded from %s (%d nodes, %d edges)", r.path, len(topo.Nodes()), len(topo.InitialLoads()))
	return nil
}

// OnChange is a Watcher callback that logs reload failures
func (r *TopologyReloader) OnChange() {
	if err := r.Reload(); err != nil {
		log.Printf("Keeping previous topology: %v", err)
	}
}
