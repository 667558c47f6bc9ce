package domain

// LinkEndpoint is one end of a link as seen by the force simulation
type LinkEndpoint struct {
	ID     NodeID  `json:"id"`
	Weight float64 `json:"weight"`
}

// LinkDatum is the input to a link distance function
type LinkDatum struct {
	Source LinkEndpoint `json:"source"`
	Target LinkEndpoint `json:"target"`
}

// NewLinkDatum builds the datum for an edge, weighting each endpoint with the
// load leaving it: the source carries the forward load, the target the reverse.
func NewLinkDatum(key EdgeKey, load EdgeLoad) LinkDatum {
	return LinkDatum{
		Source: LinkEndpoint{ID: key.From, Weight: float64(load.Forward())},
		Target: LinkEndpoint{ID: key.To, Weight: float64(load.Reverse())},
	}
}
