package vlm

import (
	"context"
	"errors"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

// referenceAirplane is a flat rectangular wing of span 10 and chord 1.
func referenceAirplane(t *testing.T) *Airplane {
	return testAirplane(t, 10, 1, 4, 16, r3.Vec{X: -0.625})
}

func TestSteadyHorseshoeReference(t *testing.T) {
	a := referenceAirplane(t)
	op := OperatingPoint{Density: 1.225, Velocity: 10, Alpha: 9}
	s := NewSteadyHorseshoeSolver(a, op, testConfig())
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %s", err)
	}
	c := a.Coefficients
	for _, err := range []error{
		withinRel("CDi", c.CDi, 0.019, 0.05),
		withinRel("CL", c.CL, 0.790, 0.05),
		withinRel("Cm", c.Cm, -0.690, 0.05),
	} {
		if err != nil {
			t.Error(err)
		}
	}
	if !scalar.EqualWithinAbs(c.Cl, 0, 1e-8) || !scalar.EqualWithinAbs(c.Cn, 0, 1e-8) || !scalar.EqualWithinAbs(c.CY, 0, 1e-8) {
		t.Errorf("asymmetric coefficients on a symmetric wing: %s", c)
	}
	for _, p := range a.Panels() {
		if p.HorseshoeVortex == nil || p.RingVortex != nil {
			t.Fatal("horseshoe solver must only attach horseshoes")
		}
		if p.Pressure <= 0 {
			t.Fatalf("unexpected pressure on %s: %f", p, p.Pressure)
		}
	}
	// The totals in wind axes match the coefficients.
	q := op.DynamicPressure()
	if !scalar.EqualWithinRel(-a.ForceWindAxes.Z/q/a.SRef, c.CL, 1e-12) {
		t.Fatal("lift total and CL disagree")
	}
}

func TestSteadyHorseshoeFiniteLegs(t *testing.T) {
	op := OperatingPoint{Density: 1.225, Velocity: 10, Alpha: 9}
	exact := referenceAirplane(t)
	if err := NewSteadyHorseshoeSolver(exact, op, testConfig()).Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	legacy := referenceAirplane(t)
	conf := testConfig()
	conf.FiniteLegFactor = 20
	if err := NewSteadyHorseshoeSolver(legacy, op, conf).Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := withinRel("legacy CL", legacy.Coefficients.CL, exact.Coefficients.CL, 0.01); err != nil {
		t.Fatal(err)
	}
	if legacy.Panels()[0].HorseshoeVortex.LegLength != 200 {
		t.Fatalf("leg length = %f", legacy.Panels()[0].HorseshoeVortex.LegLength)
	}
}

func TestSteadyRingSymmetry(t *testing.T) {
	const nc, ns = 3, 6
	a := testAirplane(t, 4, 1, nc, ns, r3.Vec{})
	s := NewSteadyRingSolver(a, DefaultOperatingPoint(), testConfig())
	s.InitializePanelVortices()
	s.SetUpGeometry()
	mirror := func(k int) int {
		i, j := k/ns, k%ns
		return i*ns + ns - 1 - j
	}
	n := a.NumPanels
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			if !scalar.EqualWithinAbsOrRel(s.aic.At(r, c), s.aic.At(mirror(r), mirror(c)), 1e-12, 1e-10) {
				t.Fatalf("AIC[%d][%d] = %g != AIC[%d][%d] = %g", r, c, s.aic.At(r, c), mirror(r), mirror(c), s.aic.At(mirror(r), mirror(c)))
			}
		}
	}
	s.SetUpOperatingPoint()
	if err := s.CalculateVortexStrengths(); err != nil {
		t.Fatal(err)
	}
	if err := s.CalculateNearFieldForcesAndMoments(); err != nil {
		t.Fatal(err)
	}
	Γ := s.Circulations()
	for k := range Γ {
		if !scalar.EqualWithinAbsOrRel(Γ[k], Γ[mirror(k)], 1e-12, 1e-9) {
			t.Fatalf("Γ[%d] = %g != Γ[%d] = %g", k, Γ[k], mirror(k), Γ[mirror(k)])
		}
	}
	c := a.Coefficients
	if !scalar.EqualWithinAbs(c.Cl, 0, 1e-8) || !scalar.EqualWithinAbs(c.Cn, 0, 1e-8) {
		t.Fatalf("Cl = %g, Cn = %g", c.Cl, c.Cn)
	}
	if err := withinRel("CL", c.CL, 0.3476, 0.01); err != nil {
		t.Fatal(err)
	}
	// Trailing edge horseshoes carry the ring strength and cancel its back leg.
	for _, p := range a.Wings[0].TrailingEdge() {
		if p.HorseshoeVortex == nil || p.HorseshoeVortex.Strength != p.RingVortex.Strength {
			t.Fatal("trailing edge horseshoe missing or with a different strength")
		}
		if p.HorseshoeVortex.Origin != p.RingVortex.BackRight || p.HorseshoeVortex.Termination != p.RingVortex.BackLeft {
			t.Fatal("trailing edge horseshoe not bound on the ring back leg")
		}
	}
}

func TestSteadyRingIdempotentSolve(t *testing.T) {
	a := testAirplane(t, 4, 1, 2, 6, r3.Vec{})
	s := NewSteadyRingSolver(a, DefaultOperatingPoint(), testConfig())
	s.InitializePanelVortices()
	s.SetUpGeometry()
	s.SetUpOperatingPoint()
	if err := s.CalculateVortexStrengths(); err != nil {
		t.Fatal(err)
	}
	first := append([]float64(nil), s.Circulations()...)
	if err := s.CalculateVortexStrengths(); err != nil {
		t.Fatal(err)
	}
	if !floats.Equal(first, s.Circulations()) {
		t.Fatalf("re-solving changed the circulations:\n%v\n%v", first, s.Circulations())
	}
}

func TestSteadyZeroFreestream(t *testing.T) {
	for _, ring := range []bool{false, true} {
		a := testAirplane(t, 4, 1, 2, 6, r3.Vec{})
		op := OperatingPoint{Density: 1.225, Velocity: 0, Alpha: 5}
		var err error
		if ring {
			err = NewSteadyRingSolver(a, op, testConfig()).Run(context.Background())
		} else {
			err = NewSteadyHorseshoeSolver(a, op, testConfig()).Run(context.Background())
		}
		var confErr *ConfigurationError
		if !errors.As(err, &confErr) || confErr.Field != "dynamic pressure" {
			t.Fatalf("expected a dynamic pressure configuration error, got %v", err)
		}
		if a.ForceGeometryAxes != (r3.Vec{}) || a.MomentGeometryAxes != (r3.Vec{}) {
			t.Fatalf("spurious force %v / moment %v without freestream", a.ForceGeometryAxes, a.MomentGeometryAxes)
		}
		for _, p := range a.Panels() {
			if p.Strength() != 0 {
				t.Fatalf("spurious circulation %g", p.Strength())
			}
		}
	}
}

func TestSteadyInvalidReferences(t *testing.T) {
	a := testAirplane(t, 4, 1, 2, 6, r3.Vec{})
	a.SRef = 0
	err := NewSteadyRingSolver(a, DefaultOperatingPoint(), testConfig()).Run(context.Background())
	var confErr *ConfigurationError
	if !errors.As(err, &confErr) || confErr.Field != "SRef" {
		t.Fatalf("expected an SRef configuration error, got %v", err)
	}
	// Totals remain valid.
	if a.ForceWindAxes.Z >= 0 {
		t.Fatalf("lift should still be reported, got force %v", a.ForceWindAxes)
	}
	if !isNaNCoefficients(a.Coefficients) {
		t.Fatalf("coefficients should be NaN, got %s", a.Coefficients)
	}
}

func TestSteadyDegenerateGeometry(t *testing.T) {
	w1 := testWing(t, r3.Vec{}, 4, 1, 2, 4, nil)
	w2 := testWing(t, r3.Vec{}, 4, 1, 2, 4, nil)
	a, err := NewAirplane("twins", r3.Vec{}, 4, 4, 1, w1, w2)
	if err != nil {
		t.Fatal(err)
	}
	for _, ring := range []bool{false, true} {
		if ring {
			err = NewSteadyRingSolver(a, DefaultOperatingPoint(), testConfig()).Run(context.Background())
		} else {
			err = NewSteadyHorseshoeSolver(a, DefaultOperatingPoint(), testConfig()).Run(context.Background())
		}
		var degErr *GeometryDegenerateError
		if !errors.As(err, &degErr) {
			t.Fatalf("expected a degenerate geometry error, got %v", err)
		}
		if degErr.Panels != 16 {
			t.Fatalf("panels = %d", degErr.Panels)
		}
	}
}

func TestSteadyStreamlines(t *testing.T) {
	a := testAirplane(t, 4, 1, 2, 6, r3.Vec{})
	conf := testConfig()
	conf.StreamlineSteps = 5
	conf.StreamlineDeltaTime = 0.05
	op := DefaultOperatingPoint()
	if err := NewSteadyRingSolver(a, op, conf).Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	pts := a.Wings[0].StreamlinePoints
	if len(pts) != 6 || len(pts[0]) != 6 {
		t.Fatalf("streamline shape %dx%d", len(pts), len(pts[0]))
	}
	for k, seed := range pts[0] {
		te := a.Wings[0].TrailingEdge()[k]
		if !vectorsEqual(seed, midpoint(te.BackLeft, te.BackRight), 1e-15) {
			t.Fatalf("seed %d = %v", k, seed)
		}
		// Particles travel downstream.
		if pts[5][k].X <= seed.X+0.5*5*0.05*op.Velocity {
			t.Fatalf("streamline %d did not travel downstream: %v", k, pts[5][k])
		}
	}
}
