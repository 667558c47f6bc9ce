package domain

import (
	"errors"
	"fmt"
	"strings"
)

// EdgeKeySeparator joins the two node ids of an edge key
const EdgeKeySeparator = "-"

// ErrInvalidEdgeKey is returned when an edge key cannot be parsed
var ErrInvalidEdgeKey = errors.New("invalid edge key")

// EdgeKey identifies one link as an ordered pair of node ids
type EdgeKey struct {
	From NodeID
	To   NodeID
}

// NewEdgeKey creates an edge key from two node ids
func NewEdgeKey(from, to NodeID) EdgeKey {
	return EdgeKey{From: from, To: to}
}

// ParseEdgeKey parses the "<from>-<to>" form
func ParseEdgeKey(s string) (EdgeKey, error) {
	from, to, ok := strings.Cut(s, EdgeKeySeparator)
	if !ok || from == "" || to == "" || strings.Contains(to, EdgeKeySeparator) {
		return EdgeKey{}, fmt.Errorf("%w: %q", ErrInvalidEdgeKey, s)
	}
	if from == to {
		return EdgeKey{}, fmt.Errorf("%w: %q is a self-loop", ErrInvalidEdgeKey, s)
	}
	return EdgeKey{From: NodeID(from), To: NodeID(to)}, nil
}

// String returns the dash-joined form
func (k EdgeKey) String() string {
	return string(k.From) + EdgeKeySeparator + string(k.To)
}

// Reverse returns the key with its endpoints swapped
func (k EdgeKey) Reverse() EdgeKey {
	return EdgeKey{From: k.To, To: k.From}
}

// MarshalText implements encoding.TextMarshaler so keys can index JSON objects
func (k EdgeKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *EdgeKey) UnmarshalText(text []byte) error {
	parsed, err := ParseEdgeKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// EdgeLoad is the (forward, reverse) load pair of an edge.
// It serializes as a two element JSON array.
type EdgeLoad [2]int

// NewEdgeLoad creates a load pair
func NewEdgeLoad(forward, reverse int) EdgeLoad {
	return EdgeLoad{forward, reverse}
}

// Forward is the load applied from the key's first node to its second
func (l EdgeLoad) Forward() int {
	return l[0]
}

// Reverse is the load applied from the key's second node to its first
func (l EdgeLoad) Reverse() int {
	return l[1]
}
