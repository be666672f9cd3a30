package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(sweptTotal)
}

var sweptTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "store_entries_swept_total",
		Help: "Idle entries evicted from in-process stores.",
	},
	[]string{"store"}, // sessions | jobs
)

func IncSwept(store string, n int) {
	sweptTotal.WithLabelValues(norm(store)).Add(float64(n))
}
