package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all application metrics
type Metrics struct {
	// Calendar metrics
	CalendarBuilds         prometheus.Counter
	CalendarRecordsSkipped prometheus.Counter
	CalendarOutOfRange     prometheus.Counter
	CalendarStaleResponses prometheus.Counter
	CalendarEmptyRenders   prometheus.Counter

	// Backend metrics
	BackendRequests *prometheus.CounterVec
	BackendLatency  *prometheus.HistogramVec

	// Session metrics
	SessionsResolved prometheus.Counter
	SessionsRejected *prometheus.CounterVec
	Invalidations    prometheus.Counter
}

// New creates the application metrics and registers them with reg.
// A nil registerer leaves them unregistered, which tests rely on.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CalendarBuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "calendar",
			Name:      "builds_total",
			Help:      "Total number of weekly grids built",
		}),
		CalendarRecordsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "calendar",
			Name:      "records_skipped_total",
			Help:      "Appointments dropped because their date did not parse",
		}),
		CalendarOutOfRange: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "calendar",
			Name:      "records_out_of_range_total",
			Help:      "Appointments outside the displayed week or hour range",
		}),
		CalendarStaleResponses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "calendar",
			Name:      "stale_responses_total",
			Help:      "Calendar loads discarded because a newer query superseded them",
		}),
		CalendarEmptyRenders: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "calendar",
			Name:      "empty_renders_total",
			Help:      "Grids rendered with the no-appointments placeholder",
		}),
		BackendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Requests sent to the hospital backend",
		}, []string{"endpoint", "status"}),
		BackendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Duration of hospital backend requests",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"endpoint"}),
		SessionsResolved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "resolved_total",
			Help:      "Sessions built from a backend profile lookup",
		}),
		SessionsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "rejected_total",
			Help:      "Requests rejected by the fail-closed session check",
		}, []string{"reason"}),
		Invalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "appointments",
			Name:      "invalidations_total",
			Help:      "Appointment views invalidated after a mutation",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.CalendarBuilds,
			m.CalendarRecordsSkipped,
			m.CalendarOutOfRange,
			m.CalendarStaleResponses,
			m.CalendarEmptyRenders,
			m.BackendRequests,
			m.BackendLatency,
			m.SessionsResolved,
			m.SessionsRejected,
			m.Invalidations,
		)
	}
	return m
}
