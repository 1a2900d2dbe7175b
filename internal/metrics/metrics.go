package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "roomly",
			Name:      "bookings_created_total",
			Help:      "Bookings successfully created.",
		},
	)

	bookingConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "roomly",
			Name:      "booking_conflicts_total",
			Help:      "Booking attempts rejected because the room was taken.",
		},
	)

	bookingsCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "roomly",
			Name:      "bookings_cancelled_total",
			Help:      "Bookings cancelled by their organizer.",
		},
	)

	confirmations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roomly",
			Name:      "confirmations_total",
			Help:      "Attendee confirmation responses by decision.",
		},
		[]string{"decision"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingsCreated, bookingConflicts, bookingsCancelled, confirmations)
	})
}

// IncBookingCreated increments the created-bookings counter.
func IncBookingCreated() {
	bookingsCreated.Inc()
}

// IncBookingConflict increments the rejected-bookings counter.
func IncBookingConflict() {
	bookingConflicts.Inc()
}

// IncBookingCancelled increments the cancelled-bookings counter.
func IncBookingCancelled() {
	bookingsCancelled.Inc()
}

// IncConfirmation increments the confirmation counter for a decision label.
func IncConfirmation(decision string) {
	confirmations.WithLabelValues(decision).Inc()
}
