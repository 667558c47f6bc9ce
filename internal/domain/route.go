package domain

import "sort"

// BaseHops is the hop count of a route that never enters the loop
const BaseHops = 2

// Route is the directed view of one half of an edge
type Route struct {
	From NodeID `json:"from"`
	To   NodeID `json:"to"`
	Load int    `json:"load"`
	Hops int    `json:"hops"`
}

// DeriveRoutes expands a snapshot into directed routes sorted by endpoints
func DeriveRoutes(s Snapshot) []Route {
	routes := make([]Route, 0, 2*len(s))
	for key, load := range s {
		routes = append(routes,
			Route{From: key.From, To: key.To, Load: load.Forward(), Hops: load.Forward() + BaseHops},
			Route{From: key.To, To: key.From, Load: load.Reverse(), Hops: load.Reverse() + BaseHops},
		)
	}

	sort.Slice(routes, func(i, j int) bool {
		if routes[i].From != routes[j].From {
			return routes[i].From < routes[j].From
		}
		return routes[i].To < routes[j].To
	})
	return routes
}
