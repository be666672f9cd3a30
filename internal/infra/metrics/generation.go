package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(generationAttemptsTotal, correctiveRetriesTotal, generationBodyLength)
}

var (
	generationAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_attempts_total",
			Help: "Generator calls made by the length controller, by outcome.",
		},
		[]string{"outcome"}, // accepted | rejected | error
	)

	correctiveRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_corrective_retries_total",
			Help: "Corrective regenerations, by direction.",
		},
		[]string{"direction"}, // lengthen | shorten
	)

	generationBodyLength = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "generation_body_length_chars",
			Help:    "Body length of the result returned to the caller.",
			Buckets: []float64{500, 1000, 1500, 1800, 2000, 2200, 2600, 3000, 4000},
		},
	)
)

func IncAttempt(outcome string) {
	generationAttemptsTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncCorrective(direction string) {
	correctiveRetriesTotal.WithLabelValues(norm(direction)).Inc()
}

func ObserveBodyLength(n int) {
	generationBodyLength.Observe(float64(n))
}
