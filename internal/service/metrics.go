package service

import "github.com/prometheus/client_golang/prometheus"

// AppliesTotal counts apply requests by reply status
var AppliesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "hopmap_apply_total",
		Help: "Total number of configuration apply requests by outcome",
	},
	[]string{"outcome"},
)

func init() {
	prometheus.MustRegister(AppliesTotal)
}
