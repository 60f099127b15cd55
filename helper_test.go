package vlm

import (
	"fmt"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

// vectorsEqual returns whether both vectors are equal within an absolute tolerance.
func vectorsEqual(a, b r3.Vec, tol float64) bool {
	return scalar.EqualWithinAbs(a.X, b.X, tol) && scalar.EqualWithinAbs(a.Y, b.Y, tol) && scalar.EqualWithinAbs(a.Z, b.Z, tol)
}

//anglesEqual returns whether two angles in Radians are equal.
func anglesEqual(a, b float64) (bool, error) {
	diff := math.Abs(a - b)
	if diff < 1e-10 || math.Abs(diff-2*math.Pi) < 1e-10 {
		return true, nil
	}
	return false, fmt.Errorf("difference of %3.10fπ", diff/math.Pi)
}

// withinRel returns an error describing the relative mismatch, if any.
func withinRel(name string, got, exp, tol float64) error {
	if !scalar.EqualWithinRel(got, exp, tol) {
		return fmt.Errorf("%s = %.5f, expected %.5f within %.1f%%", name, got, exp, tol*100)
	}
	return nil
}

// testWing meshes a flat rectangular wing with its leading edge center at origin, spanning y.
func testWing(t testing.TB, origin r3.Vec, span, chord float64, chordwise, spanwise int, move func(r3.Vec) r3.Vec) *Wing {
	t.Helper()
	vertex := func(i, j int) r3.Vec {
		p := r3.Add(origin, r3.Vec{
			X: chord * float64(i) / float64(chordwise),
			Y: -span/2 + span*float64(j)/float64(spanwise),
		})
		if move != nil {
			p = move(p)
		}
		return p
	}
	panels := make([][]*Panel, chordwise)
	for i := range panels {
		panels[i] = make([]*Panel, spanwise)
		for j := range panels[i] {
			p, err := NewPanel(vertex(i, j), vertex(i, j+1), vertex(i+1, j), vertex(i+1, j+1), i == 0, i == chordwise-1)
			if err != nil {
				t.Fatalf("NewPanel: %s", err)
			}
			panels[i][j] = p
		}
	}
	w, err := NewWing("test wing", panels)
	if err != nil {
		t.Fatalf("NewWing: %s", err)
	}
	return w
}

// testAirplane returns a single rectangular wing airplane whose references are the wing's.
func testAirplane(t testing.TB, span, chord float64, chordwise, spanwise int, xyzRef r3.Vec) *Airplane {
	t.Helper()
	a, err := NewAirplane("test", xyzRef, span*chord, span, chord, testWing(t, r3.Vec{}, span, chord, chordwise, spanwise, nil))
	if err != nil {
		t.Fatalf("NewAirplane: %s", err)
	}
	return a
}

// testMovement returns one distinct pose per step, moved by kin at t = k·dt.
func testMovement(t testing.TB, span, chord float64, chordwise, spanwise int, op OperatingPoint, steps int, dt float64, kin func(float64, r3.Vec) r3.Vec) *Movement {
	t.Helper()
	airplanes := make([]*Airplane, steps)
	ops := make([]OperatingPoint, steps)
	for k := range airplanes {
		var move func(r3.Vec) r3.Vec
		if kin != nil {
			tk := float64(k) * dt
			move = func(p r3.Vec) r3.Vec { return kin(tk, p) }
		}
		a, err := NewAirplane("test", r3.Vec{}, span*chord, span, chord, testWing(t, r3.Vec{}, span, chord, chordwise, spanwise, move))
		if err != nil {
			t.Fatalf("NewAirplane: %s", err)
		}
		airplanes[k] = a
		ops[k] = op
	}
	m, err := NewMovement(airplanes, ops, dt)
	if err != nil {
		t.Fatalf("NewMovement: %s", err)
	}
	return m
}

// testConfig returns a quiet configuration without streamlines.
func testConfig() Config {
	conf := DefaultConfig()
	conf.StreamlineSteps = 0
	conf.Workers = 4
	return conf
}

func isNaNCoefficients(c Coefficients) bool {
	for _, v := range []float64{c.CDi, c.CY, c.CL, c.Cl, c.Cm, c.Cn} {
		if !math.IsNaN(v) {
			return false
		}
	}
	return true
}
