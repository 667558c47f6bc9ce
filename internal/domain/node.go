package domain

// NodeID identifies a node. Edge keys and label offsets reference nodes by id.
type NodeID string

// Node represents one simulated host in the diagram
type Node struct {
	ID       NodeID   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Address  string   `json:"address" yaml:"address"` // display only
	Position Position `json:"position" yaml:"position"`
	Color    string   `json:"color" yaml:"color"` // opaque, e.g. "rgb(220,50,47)"
}

// NewNode creates a node at the given normalized position
func NewNode(id NodeID, name, address string, x, y float64, color string) Node {
	return Node{
		ID:       id,
		Name:     name,
		Address:  address,
		Position: Position{X: x, Y: y},
		Color:    color,
	}
}
