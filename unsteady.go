package vlm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"gonum.org/v1/gonum/spatial/r3"
)

// StepResult is the airplane level output of one time step, in wind axes.
type StepResult struct {
	Step         int
	Time         float64 // seconds
	Force        r3.Vec
	Moment       r3.Vec
	Coefficients Coefficients
}

// UnsteadySolver marches the ring vortex lattice through the poses of a movement, shedding a row of wake rings at
// every time step.
type UnsteadySolver struct {
	Movement *Movement
	Config   Config
	Metrics  *SolverCollector

	logger       kitlog.Logger
	wakes        []*Wake
	circulations [][]float64 // circulations[k] was solved at step k
	history      []StepResult
	current      int
	histChan     chan<- StepResult
	exportErr    error
	wg           sync.WaitGroup
	started      bool
}

// stepContext is everything a phase of step k needs.
type stepContext struct {
	step       int
	airplane   *Airplane
	next       *Airplane // next pose, or the current one at the last step
	op         OperatingPoint
	panels     []*Panel
	freestream r3.Vec
}

// NewUnsteadySolver returns a new unsteady solver. If the export configuration is not useless, the step results
// are streamed to Config.OutputDir while the solver runs.
func NewUnsteadySolver(m *Movement, conf Config, export ExportConfig) *UnsteadySolver {
	s := &UnsteadySolver{Movement: m, Config: conf, logger: conf.Logger(unsteadySolverName), current: -1}
	if !export.IsUseless() {
		histChan := make(chan StepResult, 1000) // a 1k entry buffer
		s.histChan = histChan
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.exportErr = StreamResults(export, conf.OutputDir, histChan)
		}()
	}
	return s
}

// InitializePanelVortices attaches a ring vortex to every panel of every pose, and the shared wakes to every wing.
// The trailing edge rings of every pose end a quarter step downstream of the trailing edge, where that pose sheds.
func (s *UnsteadySolver) InitializePanelVortices() error {
	s.wakes = make([]*Wake, len(s.Movement.Airplanes[0].Wings))
	for w := range s.wakes {
		s.wakes[w] = NewWake()
	}
	for k, a := range s.Movement.Airplanes {
		freestream := s.Movement.OperatingPoints[k].FreestreamVelocity()
		for w, wing := range a.Wings {
			wing.initializeRingVortices()
			wing.Wake = s.wakes[w]
			wing.StreamlinePoints = nil
			if err := s.extendTrailingEdge(k, w, freestream); err != nil {
				return err
			}
		}
	}
	return nil
}

// extendTrailingEdge moves the back vertices of the trailing edge rings of wing w at pose k by 0.25·Δt·(V∞+flapping)
// behind the trailing edge.
func (s *UnsteadySolver) extendTrailingEdge(k, w int, freestream r3.Vec) error {
	dt := s.Movement.DeltaTime
	wing := s.Movement.Airplanes[k].Wings[w]
	te := wing.TrailingEdge()
	i := wing.NumChordwise() - 1
	ns := len(te)
	row := make([]r3.Vec, ns+1)
	for j := 0; j <= ns; j++ {
		var x r3.Vec
		point, jj := BackLeftVertex, j
		if j < ns {
			x = te[j].BackLeft
		} else {
			x, point, jj = te[ns-1].BackRight, BackRightVertex, ns-1
		}
		flap, err := s.Movement.FlappingVelocity(k, w, i, jj, point)
		if err != nil {
			return err
		}
		row[j] = r3.Add(x, r3.Scale(0.25*dt, r3.Add(freestream, flap)))
	}
	for j, p := range te {
		r := p.RingVortex
		r.UpdatePosition(r.FrontLeft, r.FrontRight, row[j], row[j+1])
	}
	return nil
}

// Run solves every time step. It may only be cancelled between steps, in which case the results of the completed
// steps remain available. A solver can only run once.
func (s *UnsteadySolver) Run(ctx context.Context) error {
	if s.started {
		return errors.New("unsteady solver already ran")
	}
	s.started = true
	err := s.run(ctx)
	if s.histChan != nil {
		close(s.histChan)
	}
	s.wg.Wait() // Don't return until we're done writing all the files.
	if err != nil {
		return err
	}
	return s.exportErr
}

func (s *UnsteadySolver) run(ctx context.Context) error {
	if err := s.Config.Validate(); err != nil {
		return err
	}
	if err := s.InitializePanelVortices(); err != nil {
		return err
	}
	n := s.Movement.NumSteps()
	s.logger.Log("level", "info", "subsys", "geometry", "status", "starting", "steps", n, "dt", s.Movement.DeltaTime, "wake", s.Config.WakeModel, "panels", s.Movement.Airplanes[0].NumPanels)
	for k := 0; k < n; k++ {
		if err := ctx.Err(); err != nil {
			s.logger.Log("level", "warning", "subsys", "solve", "status", "cancelled", "step", k, "err", err)
			return err
		}
		if err := s.step(ctx, s.stepContext(k)); err != nil {
			return err
		}
		s.LogStatus()
	}
	s.CalculateStreamlines()
	final := s.history[len(s.history)-1]
	s.logger.Log("level", "notice", "subsys", "solve", "status", "finished", "steps", n, "force", fmtVec(final.Force), "moment", fmtVec(final.Moment), "coefficients", final.Coefficients)
	return nil
}

func (s *UnsteadySolver) stepContext(k int) stepContext {
	a := s.Movement.Airplanes[k]
	next := a
	if k+1 < s.Movement.NumSteps() {
		next = s.Movement.Airplanes[k+1]
	}
	op := s.Movement.OperatingPoints[k]
	return stepContext{step: k, airplane: a, next: next, op: op, panels: a.Panels(), freestream: op.FreestreamVelocity()}
}

func (s *UnsteadySolver) step(ctx context.Context, sc stepContext) error {
	ctx, span := startStep(ctx, unsteadySolverName, sc.step, sc.airplane.NumPanels)
	defer span.End()
	s.current = sc.step

	// Influences
	start := time.Now()
	_, phase := startPhase(ctx, "influences")
	aic := influenceMatrix(sc.panels, s.Config.Workers)
	surface, err := s.surfaceVelocities(sc, CollocationPoint)
	if err != nil {
		phase.End()
		span.RecordError(err)
		return err
	}
	rhs := rightHandSide(freestreamInfluences(sc.panels, sc.freestream, surface), wakeInfluences(sc.panels, sc.airplane, s.Config.Workers))
	phase.End()
	s.Metrics.ObservePhase(unsteadySolverName, "influences", start)

	// Solve
	start = time.Now()
	_, phase = startPhase(ctx, "solve")
	Γ, err := solveCirculations(aic, rhs)
	phase.End()
	s.Metrics.SolveDone(unsteadySolverName, err)
	s.Metrics.ObservePhase(unsteadySolverName, "solve", start)
	if err != nil {
		s.logger.Log("level", "critical", "subsys", "solve", "step", sc.step, "err", err)
		span.RecordError(err)
		return err
	}
	for i, p := range sc.panels {
		p.updateStrength(Γ[i])
	}
	s.circulations = append(s.circulations, Γ)

	// Forces
	start = time.Now()
	_, phase = startPhase(ctx, "forces")
	err = s.forces(sc)
	a := sc.airplane
	var cerr error
	if err == nil {
		cerr = a.computeCoefficients(sc.op)
	}
	phase.End()
	s.Metrics.ObservePhase(unsteadySolverName, "forces", start)
	if err != nil {
		span.RecordError(err)
		return err
	}
	result := StepResult{Step: sc.step, Time: float64(sc.step) * s.Movement.DeltaTime, Force: a.ForceWindAxes, Moment: a.MomentWindAxes, Coefficients: a.Coefficients}
	s.history = append(s.history, result)
	if s.histChan != nil {
		s.histChan <- result
	}
	if cerr != nil {
		s.logger.Log("level", "critical", "subsys", "forces", "step", sc.step, "force", fmtVec(a.ForceWindAxes), "moment", fmtVec(a.MomentWindAxes), "err", cerr)
		span.RecordError(cerr)
		return cerr
	}

	// Wake
	start = time.Now()
	_, phase = startPhase(ctx, "wake")
	s.shedWake(sc)
	phase.End()
	s.Metrics.ObservePhase(unsteadySolverName, "wake", start)
	rings := 0
	for _, wake := range s.wakes {
		rings += wake.NumRingVortices()
	}
	s.Metrics.SetSizes(a.NumPanels, rings)
	s.Metrics.StepDone(unsteadySolverName)
	return nil
}

// forces integrates the near field forces of the current pose, adding the flapping velocity of every leg center.
func (s *UnsteadySolver) forces(sc stepContext) error {
	legPoints := []PanelPoint{FrontLegCenter, LeftLegCenter, RightLegCenter}
	flapping := make(map[PanelPoint][]r3.Vec, len(legPoints))
	for _, pp := range legPoints {
		v, err := s.surfaceVelocities(sc, pp)
		if err != nil {
			return err
		}
		flapping[pp] = v
	}
	velocity := func(index int, point PanelPoint, center r3.Vec) r3.Vec {
		return r3.Add(s.solutionVelocity(sc, center), flapping[point][index])
	}
	// The unsteady term vanishes at the first step.
	previous := s.circulations[sc.step]
	if sc.step > 0 {
		previous = s.circulations[sc.step-1]
	}
	ringNearFieldForces(sc.airplane, sc.op, previous, velocity, s.Config.Workers)
	return nil
}

// surfaceVelocities returns the flapping velocity of the named point of every panel, in global index order.
func (s *UnsteadySolver) surfaceVelocities(sc stepContext, point PanelPoint) ([]r3.Vec, error) {
	out := make([]r3.Vec, 0, sc.airplane.NumPanels)
	for w, wing := range sc.airplane.Wings {
		for i, row := range wing.Panels {
			for j := range row {
				v, err := s.Movement.FlappingVelocity(sc.step, w, i, j, point)
				if err != nil {
					return nil, err
				}
				out = append(out, v)
			}
		}
	}
	return out, nil
}

// solutionVelocity returns the freestream plus the velocity induced by the bound and wake vortices.
func (s *UnsteadySolver) solutionVelocity(sc stepContext, x r3.Vec) r3.Vec {
	v := r3.Add(sc.freestream, sc.airplane.InducedVelocity(x))
	return r3.Add(v, sc.airplane.wakeInducedVelocity(x))
}

// shedWake convects every wake and sheds a new row of rings with the current trailing edge circulations. The new
// front row is the back edge of the next pose's trailing edge rings, which stay attached to it.
func (s *UnsteadySolver) shedWake(sc stepContext) {
	dt := s.Movement.DeltaTime
	rows := make([][]r3.Vec, len(s.wakes))
	for w, wake := range s.wakes {
		rows[w] = wakeSeed(sc.next.Wings[w])
		if wake.Empty() {
			wake.Seed(rows[w])
		}
	}

	// Every velocity is computed before any vertex moves.
	velocities := make([][]r3.Vec, len(s.wakes))
	for w, wake := range s.wakes {
		pts := wake.AllVertices()
		switch s.Config.WakeModel {
		case FreeWake:
			velocities[w] = parallelVelocities(pts, s.Config.Workers, func(x r3.Vec) r3.Vec {
				return s.solutionVelocity(sc, x)
			})
		default:
			velocities[w] = make([]r3.Vec, len(pts))
			for n := range pts {
				velocities[w][n] = sc.freestream
			}
		}
	}
	for w, wake := range s.wakes {
		wake.Convect(velocities[w], dt)
		te := sc.airplane.Wings[w].TrailingEdge()
		strengths := make([]float64, len(te))
		for j, p := range te {
			strengths[j] = p.RingVortex.Strength
		}
		wake.Shed(rows[w], strengths)
		for j, p := range sc.next.Wings[w].TrailingEdge() {
			r := p.RingVortex
			r.UpdatePosition(r.FrontLeft, r.FrontRight, rows[w][j], rows[w][j+1])
		}
	}
}

// wakeSeed returns the back vertices of the trailing edge rings of a wing.
func wakeSeed(wing *Wing) []r3.Vec {
	te := wing.TrailingEdge()
	row := make([]r3.Vec, 0, len(te)+1)
	for _, p := range te {
		row = append(row, p.RingVortex.BackLeft)
	}
	return append(row, te[len(te)-1].RingVortex.BackRight)
}

// CalculateStreamlines traces the flow from behind the trailing edge rings of the last pose.
func (s *UnsteadySolver) CalculateStreamlines() {
	if s.Config.StreamlineSteps == 0 || len(s.history) == 0 {
		return
	}
	sc := s.stepContext(s.current)
	field := func(x r3.Vec) r3.Vec { return s.solutionVelocity(sc, x) }
	for _, w := range sc.airplane.Wings {
		seeds := ringWakeSeeds(w, sc.freestream, s.Movement.DeltaTime)
		w.StreamlinePoints = integrateStreamlines(seeds, s.Config.StreamlineSteps, s.Config.StreamlineDeltaTime, s.Config.Workers, field)
	}
	s.logger.Log("level", "info", "subsys", "streamlines", "steps", s.Config.StreamlineSteps)
}

// LogStatus logs the progress of the run.
func (s *UnsteadySolver) LogStatus() {
	if len(s.history) == 0 {
		s.logger.Log("level", "info", "subsys", "solve", "step", fmt.Sprintf("0 of %d", s.Movement.NumSteps()))
		return
	}
	last := s.history[len(s.history)-1]
	s.logger.Log("level", "info", "subsys", "solve", "step", fmt.Sprintf("%d of %d", last.Step+1, s.Movement.NumSteps()), "time", last.Time, "coefficients", last.Coefficients)
}

// DebugWakeVortices logs the strength of every bound and wake ring of the current pose.
func (s *UnsteadySolver) DebugWakeVortices() {
	if s.current < 0 {
		return
	}
	a := s.Movement.Airplanes[s.current]
	for w, wing := range a.Wings {
		for i, row := range wing.Panels {
			for j, p := range row {
				s.logger.Log("level", "debug", "subsys", "wake", "step", s.current, "wing", w, "panel", fmt.Sprintf("[%d][%d]", i, j), "Γ", p.RingVortex.Strength)
			}
		}
		if wing.Wake == nil {
			continue
		}
		for r := len(wing.Wake.Rings) - 1; r >= 0; r-- {
			for j, ring := range wing.Wake.Rings[r] {
				s.logger.Log("level", "debug", "subsys", "wake", "step", s.current, "wing", w, "wake_ring", fmt.Sprintf("[%d][%d]", len(wing.Wake.Rings)-1-r, j), "Γ", ring.Strength)
			}
		}
	}
}

// History returns the result of every completed step.
func (s *UnsteadySolver) History() []StepResult {
	return append([]StepResult(nil), s.history...)
}

// Circulations returns the circulations solved at the given step, in global panel index order.
func (s *UnsteadySolver) Circulations(step int) []float64 {
	if step < 0 || step >= len(s.circulations) {
		return nil
	}
	return s.circulations[step]
}

// Wakes returns the wake of every wing.
func (s *UnsteadySolver) Wakes() []*Wake {
	return s.wakes
}
