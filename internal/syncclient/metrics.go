package syncclient

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// SubmissionsTotal counts settled submissions
	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hopmap_sync_submissions_total",
			Help: "Total number of snapshot submissions by outcome",
		},
		[]string{"outcome", "quiet"},
	)

	// RequestDuration tracks how long the POST took
	RequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hopmap_sync_request_duration_seconds",
			Help:    "Duration of snapshot POST requests",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(SubmissionsTotal)
	prometheus.MustRegister(RequestDuration)
}

func observe(res Result) {
	SubmissionsTotal.WithLabelValues(string(res.Outcome), strconv.FormatBool(res.Quiet)).Inc()
	RequestDuration.Observe(res.Duration.Seconds())
}
