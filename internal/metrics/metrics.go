package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	prometheus.MustRegister(
		ShiftMutations,
		ConflictsRejected,
		GeneratedShifts,
		GenerationDuration,
		MailsQueued,
	)
}

var (
	ShiftMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "mutations_total",
			Subsystem: "shift",
			Help:      "Total number of committed shift mutations",
		},
		[]string{"change_type"},
	)

	ConflictsRejected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:      "conflicts_rejected_total",
			Subsystem: "shift",
			Help:      "Total number of memberships rejected because the worker was booked that day",
		},
	)

	GeneratedShifts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "items_total",
			Subsystem: "generation",
			Help:      "Pattern generation items by outcome",
		},
		[]string{"outcome"},
	)

	GenerationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:      "duration_seconds",
		Subsystem: "generation",
		Help:      "Duration of one installation's pattern generation run.",
	})

	MailsQueued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "queued_total",
			Subsystem: "mail",
			Help:      "Total number of notification mails published",
		},
		[]string{"type"},
	)
)
