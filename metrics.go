package vlm

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Solver names used as metric labels and logger keys.
const (
	horseshoeSolverName = "steady_horseshoe"
	ringSolverName      = "steady_ring"
	unsteadySolverName  = "unsteady_ring"
)

// SolverCollector bundles the Prometheus metrics of the solvers. A nil collector records nothing.
type SolverCollector struct {
	gatherer prometheus.Gatherer

	Steps         *prometheus.CounterVec
	StepDurations *prometheus.HistogramVec
	Solves        *prometheus.CounterVec

	Panels           prometheus.Gauge
	WakeRingVortices prometheus.Gauge
}

// NewSolverCollector registers the solver metrics against the provided registerer, defaulting to the global
// Prometheus registry when nil.
func NewSolverCollector(reg prometheus.Registerer) (*SolverCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &SolverCollector{
		gatherer: gatherer,
		Steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vlm_steps_total",
			Help: "Total number of completed time steps, labeled by solver.",
		}, []string{"solver"}),
		StepDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vlm_step_duration_seconds",
			Help:    "Duration of each phase of a time step in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
		}, []string{"solver", "phase"}),
		Solves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vlm_solves_total",
			Help: "Total number of linear solves, labeled by solver and outcome (ok or degenerate).",
		}, []string{"solver", "outcome"}),
		Panels: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vlm_panels",
			Help: "Number of panels of the airplane being solved.",
		}),
		WakeRingVortices: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vlm_wake_ring_vortices",
			Help: "Current number of wake ring vortices over all wings.",
		}),
	}
	// Another collector of the same registry shares its metrics with this one.
	if err := register(reg, &c.Steps); err != nil {
		return nil, err
	}
	if err := register(reg, &c.StepDurations); err != nil {
		return nil, err
	}
	if err := register(reg, &c.Solves); err != nil {
		return nil, err
	}
	if err := register(reg, &c.Panels); err != nil {
		return nil, err
	}
	if err := register(reg, &c.WakeRingVortices); err != nil {
		return nil, err
	}
	return c, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *SolverCollector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// ObservePhase records the duration of a phase since start.
func (c *SolverCollector) ObservePhase(solver, phase string, start time.Time) {
	if c == nil || c.StepDurations == nil {
		return
	}
	c.StepDurations.WithLabelValues(solver, phase).Observe(time.Since(start).Seconds())
}

// StepDone counts a completed time step.
func (c *SolverCollector) StepDone(solver string) {
	if c == nil || c.Steps == nil {
		return
	}
	c.Steps.WithLabelValues(solver).Inc()
}

// SolveDone counts a linear solve.
func (c *SolverCollector) SolveDone(solver string, err error) {
	if c == nil || c.Solves == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "degenerate"
	}
	c.Solves.WithLabelValues(solver, outcome).Inc()
}

// SetSizes updates the panel and wake gauges.
func (c *SolverCollector) SetSizes(panels, wakeRings int) {
	if c == nil {
		return
	}
	if c.Panels != nil {
		c.Panels.Set(float64(panels))
	}
	if c.WakeRingVortices != nil {
		c.WakeRingVortices.Set(float64(wakeRings))
	}
}

// register registers *m, or replaces it with the identical collector already registered.
func register[M prometheus.Collector](reg prometheus.Registerer, m *M) error {
	err := reg.Register(*m)
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return err
	}
	existing, ok := are.ExistingCollector.(M)
	if !ok {
		return fmt.Errorf("vlm metrics: %T already registered as a %T", *m, are.ExistingCollector)
	}
	*m = existing
	return nil
}
