package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(workerJobsProcessedTotal, jobSubmissionsTotal, jobPollsTotal, jobWaitOutcomesTotal)
}

var (
	workerJobsProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_processed_total",
			Help: "Jobs executed by the worker, labeled by final status.",
		},
		[]string{"status"}, // finished | failed
	)

	jobSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "job_submissions_total",
			Help: "Client enqueue calls, labeled by outcome.",
		},
		[]string{"outcome"}, // ok | error
	)

	jobPollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "job_polls_total",
			Help: "Client status polls, labeled by observed status.",
		},
		[]string{"status"},
	)

	jobWaitOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "job_wait_outcomes_total",
			Help: "How AwaitCompletion ended: finished, failed, timed_out or canceled.",
		},
		[]string{"outcome"},
	)
)

func IncWorkerJob(status string) {
	workerJobsProcessedTotal.WithLabelValues(norm(status)).Inc()
}

func IncSubmission(ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	jobSubmissionsTotal.WithLabelValues(outcome).Inc()
}

func IncPoll(status string) {
	jobPollsTotal.WithLabelValues(norm(status)).Inc()
}

func IncWaitOutcome(outcome string) {
	jobWaitOutcomesTotal.WithLabelValues(norm(outcome)).Inc()
}
