package config

import (
	"net/url"
	"sort"

	"hopmap/internal/domain"
)

// Topology is the validated, immutable description of the diagram: its nodes,
// initial edge loads, label offsets, sync endpoint and force layout constants.
// Accessors return copies, so a Topology can be shared freely.
type Topology struct {
	nodes               []domain.Node
	index               map[domain.NodeID]int
	initialLoads        domain.Snapshot
	labelOffsets        map[domain.NodeID]domain.LabelOffset
	endpoint            *url.URL
	qrPayload           string
	qrSize              int
	nodeRadius          float64
	chargeStrength      float64
	linkDistanceDivisor float64
	spec                TopologySpec
}

// NewTopology validates spec and builds a Topology from it. Every problem is
// reported in one *ValidationError wrapping ErrInvalidTopology.
func NewTopology(spec TopologySpec) (*Topology, error) {
	verr := &ValidationError{Kind: ErrInvalidTopology}
	verr.addStruct(spec)

	t := &Topology{
		nodes:               make([]domain.Node, 0, len(spec.Nodes)),
		index:               make(map[domain.NodeID]int, len(spec.Nodes)),
		initialLoads:        make(domain.Snapshot, len(spec.InitialLoads)),
		labelOffsets:        make(map[domain.NodeID]domain.LabelOffset, len(spec.LabelOffsets)),
		qrPayload:           spec.QRPayload,
		qrSize:              spec.QRSize,
		nodeRadius:          spec.NodeRadius,
		chargeStrength:      spec.ChargeStrength,
		linkDistanceDivisor: spec.LinkDistanceDivisor,
	}

	names := make(map[string]domain.NodeID, len(spec.Nodes))
	for _, ns := range spec.Nodes {
		id := domain.NodeID(ns.ID)
		if ns.ID == "" {
			continue
		}
		if _, dup := t.index[id]; dup {
			continue
		}
		if ns.Name != "" {
			if other, dup := names[ns.Name]; dup {
				verr.addf("nodes: name %q used by both %s and %s", ns.Name, other, id)
			}
			names[ns.Name] = id
		}
		t.index[id] = len(t.nodes)
		t.nodes = append(t.nodes, domain.NewNode(id, ns.Name, ns.Address, ns.XY[0], ns.XY[1], ns.Color))
	}

	for _, raw := range sortedKeys(spec.InitialLoads) {
		key, err := domain.ParseEdgeKey(raw)
		if err != nil {
			verr.addf("initial_loads: %v", err)
			continue
		}
		if !t.hasNode(key.From) || !t.hasNode(key.To) {
			verr.addf("initial_loads: edge %s references an unknown node", key)
			continue
		}
		if _, dup := t.initialLoads[key.Reverse()]; dup {
			verr.addf("initial_loads: edge %s duplicates %s", key, key.Reverse())
			continue
		}
		load := spec.InitialLoads[raw]
		t.initialLoads[key] = domain.NewEdgeLoad(load[0], load[1])
	}

	for _, raw := range sortedKeys(spec.LabelOffsets) {
		id := domain.NodeID(raw)
		if !t.hasNode(id) {
			verr.addf("label_offsets: %q is not a node id", raw)
			continue
		}
		off := spec.LabelOffsets[raw]
		t.labelOffsets[id] = domain.LabelOffset{DX: off[0], DY: off[1]}
	}

	endpoint, err := validateEndpoint(spec.Endpoint)
	if err != nil {
		// empty endpoints are already reported by the struct tags
		if spec.Endpoint != "" {
			verr.addf("%v", err)
		}
	}
	t.endpoint = endpoint

	if err := verr.errOrNil(); err != nil {
		return nil, err
	}

	t.spec = cloneSpec(spec)
	return t, nil
}

func (t *Topology) hasNode(id domain.NodeID) bool {
	_, ok := t.index[id]
	return ok
}

// Nodes returns the nodes in their configured order
func (t *Topology) Nodes() []domain.Node {
	out := make([]domain.Node, len(t.nodes))
	copy(out, t.nodes)
	return out
}

// Node looks up a node by id
func (t *Topology) Node(id domain.NodeID) (domain.Node, bool) {
	i, ok := t.index[id]
	if !ok {
		return domain.Node{}, false
	}
	return t.nodes[i], true
}

// InitialLoads returns a fresh copy of the initial edge loads
func (t *Topology) InitialLoads() domain.Snapshot {
	return t.initialLoads.Clone()
}

// HasEdge reports whether key, in either orientation, is a configured edge
func (t *Topology) HasEdge(key domain.EdgeKey) bool {
	if _, ok := t.initialLoads[key]; ok {
		return true
	}
	_, ok := t.initialLoads[key.Reverse()]
	return ok
}

// LabelOffset returns the info box offset for a node; zero if none is configured
func (t *Topology) LabelOffset(id domain.NodeID) domain.LabelOffset {
	return t.labelOffsets[id]
}

// Endpoint returns the sync endpoint as configured
func (t *Topology) Endpoint() string {
	return t.endpoint.String()
}

// EndpointPath returns the path component of the sync endpoint
func (t *Topology) EndpointPath() string {
	return t.endpoint.Path
}

// ResolveEndpoint resolves the endpoint against base. Absolute endpoints are
// returned unchanged.
func (t *Topology) ResolveEndpoint(base string) (string, error) {
	if t.endpoint.IsAbs() {
		return t.endpoint.String(), nil
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	return b.ResolveReference(t.endpoint).String(), nil
}

// QRPayload returns the text encoded in the diagram's QR code
func (t *Topology) QRPayload() string {
	return t.qrPayload
}

// QRSize returns the QR code edge length in pixels
func (t *Topology) QRSize() int {
	return t.qrSize
}

// NodeRadius returns the visual and physical node radius
func (t *Topology) NodeRadius() float64 {
	return t.nodeRadius
}

// ChargeStrength returns the repulsive force constant between nodes
func (t *Topology) ChargeStrength() float64 {
	return t.chargeStrength
}

// LinkDistance returns the force layout's target length for a link. Heavier
// sources push links proportionally longer. It is pure, so the simulation may
// call it every tick.
func (t *Topology) LinkDistance(width float64, d domain.LinkDatum) float64 {
	return width / t.linkDistanceDivisor * (1 + d.Source.Weight)
}

// Spec returns the file form this topology was built from
func (t *Topology) Spec() TopologySpec {
	return cloneSpec(t.spec)
}

func cloneSpec(spec TopologySpec) TopologySpec {
	out := spec
	out.Nodes = append([]NodeSpec(nil), spec.Nodes...)
	out.InitialLoads = make(map[string][2]int, len(spec.InitialLoads))
	for k, v := range spec.InitialLoads {
		out.InitialLoads[k] = v
	}
	if spec.LabelOffsets != nil {
		out.LabelOffsets = make(map[string][2]float64, len(spec.LabelOffsets))
		for k, v := range spec.LabelOffsets {
			out.LabelOffsets[k] = v
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
