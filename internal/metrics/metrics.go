// Package metrics exposes prometheus counters for the booking core.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the counters incremented by the mutation flows and
// the sweeper.
type Metrics struct {
	// Hold attempts by outcome (success, overlap_conflict, hold_conflict, error).
	HoldsTotal *prometheus.CounterVec

	// Hold releases by outcome (success, not_owner, noop).
	ReleasesTotal *prometheus.CounterVec

	// Per-seat reservation commits by outcome (success, overlap_conflict,
	// hold_conflict, error).
	ReservationsTotal *prometheus.CounterVec

	// Reservations reversed through cancel-by-approval.
	CancellationsTotal prometheus.Counter

	// Seats reclaimed by the expiration sweeper.
	SweptSeatsTotal prometheus.Counter

	// Sweep cycles by outcome (success, error).
	SweepCyclesTotal *prometheus.CounterVec
}

// New creates the metrics and registers them on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the metrics on the given registry. Tests
// pass a private registry so parallel packages do not collide.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HoldsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seat_holds_total",
				Help: "Total number of seat hold attempts",
			},
			[]string{"status"},
		),
		ReleasesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seat_hold_releases_total",
				Help: "Total number of hold release attempts",
			},
			[]string{"status"},
		),
		ReservationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seat_reservations_total",
				Help: "Total number of per-seat reservation commits",
			},
			[]string{"status"},
		),
		CancellationsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "reservation_cancellations_total",
				Help: "Total number of reservations reversed by approval ref",
			},
		),
		SweptSeatsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "swept_seats_total",
				Help: "Total number of seats reclaimed by the expiration sweeper",
			},
		),
		SweepCyclesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sweep_cycles_total",
				Help: "Total number of sweeper cycles",
			},
			[]string{"status"},
		),
	}

	reg.MustRegister(
		m.HoldsTotal,
		m.ReleasesTotal,
		m.ReservationsTotal,
		m.CancellationsTotal,
		m.SweptSeatsTotal,
		m.SweepCyclesTotal,
	)

	return m
}
