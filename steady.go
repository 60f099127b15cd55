package vlm

import (
	"context"
	"errors"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// steadySolver holds what both steady solvers share: a single pose solved once.
type steadySolver struct {
	Airplane       *Airplane
	OperatingPoint OperatingPoint
	Config         Config
	Metrics        *SolverCollector

	name                 string
	logger               kitlog.Logger
	panels               []*Panel
	aic                  *mat.Dense
	freestreamInfluences *mat.VecDense
	circulations         []float64
}

func newSteadySolver(name string, a *Airplane, op OperatingPoint, conf Config) steadySolver {
	return steadySolver{Airplane: a, OperatingPoint: op, Config: conf, name: name, logger: conf.Logger(name), panels: a.Panels()}
}

// SetUpGeometry assembles the influence matrix.
func (s *steadySolver) SetUpGeometry() {
	s.aic = influenceMatrix(s.panels, s.Config.Workers)
}

// SetUpOperatingPoint computes the freestream influence at every collocation point.
func (s *steadySolver) SetUpOperatingPoint() {
	s.freestreamInfluences = freestreamInfluences(s.panels, s.OperatingPoint.FreestreamVelocity(), nil)
}

// CalculateVortexStrengths solves for the circulations and sets them on the bound vortices.
func (s *steadySolver) CalculateVortexStrengths() error {
	if s.aic == nil || s.freestreamInfluences == nil {
		return errors.New("influences not set up")
	}
	Γ, err := solveCirculations(s.aic, rightHandSide(s.freestreamInfluences, nil))
	s.Metrics.SolveDone(s.name, err)
	if err != nil {
		s.logger.Log("level", "critical", "subsys", "solve", "err", err)
		return err
	}
	s.circulations = Γ
	for i, p := range s.panels {
		p.updateStrength(Γ[i])
	}
	return nil
}

// Circulations returns the solved circulation of every panel, in global index order.
func (s *steadySolver) Circulations() []float64 {
	return s.circulations
}

// CalculateSolutionVelocity returns the freestream plus the velocity induced by every bound vortex.
func (s *steadySolver) CalculateSolutionVelocity(x r3.Vec) r3.Vec {
	return r3.Add(s.OperatingPoint.FreestreamVelocity(), s.Airplane.InducedVelocity(x))
}

// CalculateStreamlines traces the flow from the back of every trailing edge panel.
func (s *steadySolver) CalculateStreamlines() {
	if s.Config.StreamlineSteps == 0 {
		return
	}
	for _, w := range s.Airplane.Wings {
		w.StreamlinePoints = integrateStreamlines(trailingEdgeSeeds(w), s.Config.StreamlineSteps, s.Config.StreamlineDeltaTime, s.Config.Workers, s.CalculateSolutionVelocity)
	}
	s.logger.Log("level", "info", "subsys", "streamlines", "steps", s.Config.StreamlineSteps)
}

// run executes every phase of a steady solve.
func (s *steadySolver) run(ctx context.Context, initialize func(), forces func() error) error {
	if err := s.Config.Validate(); err != nil {
		return err
	}
	ctx, span := startStep(ctx, s.name, 0, s.Airplane.NumPanels)
	defer span.End()
	s.Metrics.SetSizes(s.Airplane.NumPanels, 0)
	s.logger.Log("level", "info", "subsys", "geometry", "airplane", s.Airplane.Name, "panels", s.Airplane.NumPanels, "operating_point", s.OperatingPoint)

	start := time.Now()
	_, phase := startPhase(ctx, "influences")
	initialize()
	s.SetUpGeometry()
	s.SetUpOperatingPoint()
	phase.End()
	s.Metrics.ObservePhase(s.name, "influences", start)

	start = time.Now()
	_, phase = startPhase(ctx, "solve")
	err := s.CalculateVortexStrengths()
	phase.End()
	s.Metrics.ObservePhase(s.name, "solve", start)
	if err != nil {
		span.RecordError(err)
		return err
	}

	start = time.Now()
	_, phase = startPhase(ctx, "forces")
	err = forces()
	phase.End()
	s.Metrics.ObservePhase(s.name, "forces", start)
	a := s.Airplane
	if err != nil {
		s.logger.Log("level", "warning", "subsys", "forces", "force", fmtVec(a.ForceWindAxes), "moment", fmtVec(a.MomentWindAxes), "err", err)
		span.RecordError(err)
		return err
	}
	s.logger.Log("level", "notice", "subsys", "forces", "status", "finished", "force", fmtVec(a.ForceWindAxes), "moment", fmtVec(a.MomentWindAxes), "coefficients", a.Coefficients)

	s.CalculateStreamlines()
	s.Metrics.StepDone(s.name)
	return nil
}

// SteadyHorseshoeSolver solves a single pose with one horseshoe vortex per panel.
type SteadyHorseshoeSolver struct {
	steadySolver
}

// NewSteadyHorseshoeSolver returns a new steady horseshoe solver.
func NewSteadyHorseshoeSolver(a *Airplane, op OperatingPoint, conf Config) *SteadyHorseshoeSolver {
	return &SteadyHorseshoeSolver{newSteadySolver(horseshoeSolverName, a, op, conf)}
}

// InitializePanelVortices bounds a horseshoe on the quarter chord of every panel, trailing along the freestream.
func (s *SteadyHorseshoeSolver) InitializePanelVortices() {
	dir := s.OperatingPoint.FreestreamDirection()
	for _, w := range s.Airplane.Wings {
		w.initializeHorseshoeVortices(dir, w.legLength(s.Config.FiniteLegFactor))
	}
}

// CalculateNearFieldForcesAndMoments integrates the forces on the bound legs and computes the coefficients.
func (s *SteadyHorseshoeSolver) CalculateNearFieldForcesAndMoments() error {
	horseshoeNearFieldForces(s.Airplane, s.OperatingPoint, s.CalculateSolutionVelocity, s.Config.Workers)
	return s.Airplane.computeCoefficients(s.OperatingPoint)
}

// Run solves the pose. A ConfigurationError leaves the dimensional totals on the airplane.
func (s *SteadyHorseshoeSolver) Run(ctx context.Context) error {
	return s.run(ctx, s.InitializePanelVortices, s.CalculateNearFieldForcesAndMoments)
}

// SteadyRingSolver solves a single pose with one ring vortex per panel, the trailing edge closed by horseshoes.
type SteadyRingSolver struct {
	steadySolver
}

// NewSteadyRingSolver returns a new steady ring solver.
func NewSteadyRingSolver(a *Airplane, op OperatingPoint, conf Config) *SteadyRingSolver {
	return &SteadyRingSolver{newSteadySolver(ringSolverName, a, op, conf)}
}

// InitializePanelVortices attaches the ring vortices and the trailing edge horseshoes.
func (s *SteadyRingSolver) InitializePanelVortices() {
	dir := s.OperatingPoint.FreestreamDirection()
	for _, w := range s.Airplane.Wings {
		w.initializeRingVortices()
		w.closeTrailingEdge(dir, w.legLength(s.Config.FiniteLegFactor))
	}
}

// CalculateNearFieldForcesAndMoments integrates the forces on the bound ring legs and computes the coefficients.
func (s *SteadyRingSolver) CalculateNearFieldForcesAndMoments() error {
	velocity := func(_ int, _ PanelPoint, center r3.Vec) r3.Vec {
		return s.CalculateSolutionVelocity(center)
	}
	ringNearFieldForces(s.Airplane, s.OperatingPoint, nil, velocity, s.Config.Workers)
	return s.Airplane.computeCoefficients(s.OperatingPoint)
}

// Run solves the pose. A ConfigurationError leaves the dimensional totals on the airplane.
func (s *SteadyRingSolver) Run(ctx context.Context) error {
	return s.run(ctx, s.InitializePanelVortices, s.CalculateNearFieldForcesAndMoments)
}
