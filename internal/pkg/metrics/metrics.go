// Package metrics declares the Prometheus collectors of the pickup service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AppointmentsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hako_appointments_created_total",
		Help: "Total number of pickup appointments successfully booked.",
	})

	AppointmentTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hako_appointment_transitions_total",
		Help: "Total number of appointment status transitions by resulting status.",
	},
		[]string{"status"},
	)

	LockerConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hako_locker_conflicts_total",
		Help: "Total number of bookings rejected because a locker was already taken.",
	})

	UnresolvedUnitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hako_unresolved_units_total",
		Help: "Total number of pickup items skipped because their unit could not be found.",
	},
		[]string{"operation"},
	)

	PenaltiesIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hako_penalties_issued_total",
		Help: "Total number of no-show penalties recorded.",
	})

	PenaltiesPurgedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hako_penalties_purged_total",
		Help: "Total number of expired penalties deleted.",
	})

	SinkFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hako_sink_failures_total",
		Help: "Total number of failed best-effort appointment status publications.",
	},
		[]string{"sink"},
	)

	PackingScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hako_packing_score",
		Help:    "Distribution of locker plan scores.",
		Buckets: prometheus.LinearBuckets(0, 10, 11),
	})

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hako_operation_errors_total",
		Help: "Total number of errors encountered during specific operations.",
	},
		[]string{"operation"},
	)
)
