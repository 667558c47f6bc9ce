package domain

import (
	"sort"
	"time"
)

// Snapshot is the user-adjusted mapping of edge keys to loads
type Snapshot map[EdgeKey]EdgeLoad

// Clone returns an independent copy
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Equal reports whether both snapshots hold the same keys and loads
func (s Snapshot) Equal(other Snapshot) bool {
	if len(s) != len(other) {
		return false
	}
	for k, v := range s {
		ov, ok := other[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// Keys returns the edge keys sorted by their string form
func (s Snapshot) Keys() []EdgeKey {
	keys := make([]EdgeKey, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}

// AppliedState is a snapshot accepted by the backend
type AppliedState struct {
	ID        string    `json:"id"`
	Snapshot  Snapshot  `json:"snapshot"`
	AppliedAt time.Time `json:"applied_at"`
	Source    string    `json:"source,omitempty"` // remote address of the submitter
}
