package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ExecutionsTotal counts finished executions by language and remote status.
	ExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "practice_executions_total",
			Help: "Total number of code executions",
		},
		[]string{"language", "status"},
	)

	// QuotaRejections counts admissions refused by the quota tracker.
	QuotaRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "practice_quota_rejections_total",
			Help: "Total number of executions rejected by the per-user quota",
		},
		[]string{"reason"},
	)

	// JudgeRequestDuration tracks round-trips to the remote judge.
	JudgeRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "practice_judge_request_duration_seconds",
			Help:    "Duration of remote judge HTTP calls in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
		[]string{"op"},
	)

	// JudgeErrors counts remote judge failures by kind.
	JudgeErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "practice_judge_errors_total",
			Help: "Total number of remote judge failures",
		},
		[]string{"kind"},
	)

	// VerdictsTotal counts test-harness verdicts.
	VerdictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "practice_verdicts_total",
			Help: "Total number of graded submissions by verdict",
		},
		[]string{"status"},
	)

	XPAwarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "practice_xp_awarded_total",
			Help: "Total experience points awarded",
		},
	)

	// WorkerEvents counts verdict events handled by the worker, by result.
	WorkerEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "practice_worker_events_total",
			Help: "Total number of verdict events processed by the worker",
		},
		[]string{"result"},
	)

	// WorkersActive tracks the number of currently active workers.
	WorkersActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "practice_workers_active",
			Help: "Number of currently active worker goroutines",
		},
	)
)
