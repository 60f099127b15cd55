package vlm

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestPanelGeometry(t *testing.T) {
	p, err := NewPanel(r3.Vec{X: 0, Y: -1}, r3.Vec{X: 0, Y: 1}, r3.Vec{X: 2, Y: -1}, r3.Vec{X: 2, Y: 1}, true, false)
	if err != nil {
		t.Fatal(err)
	}
	if !scalar.EqualWithinAbs(p.Area, 4, 1e-14) {
		t.Fatalf("area = %f", p.Area)
	}
	if !vectorsEqual(p.Normal, r3.Vec{Z: 1}, 1e-15) {
		t.Fatalf("normal = %v", p.Normal)
	}
	if !vectorsEqual(p.FrontLeftVortexVertex, r3.Vec{X: 0.5, Y: -1}, 1e-15) || !vectorsEqual(p.FrontRightVortexVertex, r3.Vec{X: 0.5, Y: 1}, 1e-15) {
		t.Fatalf("front vortex vertices %v %v", p.FrontLeftVortexVertex, p.FrontRightVortexVertex)
	}
	if !vectorsEqual(p.CollocationPoint, r3.Vec{X: 1.5}, 1e-15) {
		t.Fatalf("collocation point = %v", p.CollocationPoint)
	}
	if p.Strength() != 0 {
		t.Fatal("a panel without vortices has no circulation")
	}
	if v := p.InducedVelocity(r3.Vec{X: 5, Y: 3, Z: 1}); v != (r3.Vec{}) {
		t.Fatalf("a panel without vortices induces %v", v)
	}
}

func TestPanelTwisted(t *testing.T) {
	// Raising the back right vertex tilts the normal forward and to the left.
	p, err := NewPanel(r3.Vec{Y: -1}, r3.Vec{Y: 1}, r3.Vec{X: 1, Y: -1}, r3.Vec{X: 1, Y: 1, Z: 0.2}, true, true)
	if err != nil {
		t.Fatal(err)
	}
	if !scalar.EqualWithinAbs(r3.Norm(p.Normal), 1, 1e-15) || p.Normal.Z <= 0 || p.Normal.X >= 0 || p.Normal.Y >= 0 {
		t.Fatalf("normal = %v", p.Normal)
	}
	if p.Area <= 2 {
		t.Fatalf("area = %f", p.Area)
	}
}

func TestPanelErrors(t *testing.T) {
	if _, err := NewPanel(r3.Vec{}, r3.Vec{Y: 1}, r3.Vec{X: 1}, r3.Vec{X: math.NaN(), Y: 1}, true, true); err == nil {
		t.Fatal("NaN vertices should fail")
	}
	if _, err := NewPanel(r3.Vec{}, r3.Vec{Y: 1}, r3.Vec{X: math.Inf(1)}, r3.Vec{X: 1, Y: 1}, true, true); err == nil {
		t.Fatal("infinite vertices should fail")
	}
	if _, err := NewPanel(r3.Vec{}, r3.Vec{}, r3.Vec{X: 1}, r3.Vec{X: 1}, true, true); err == nil {
		t.Fatal("collapsed panels should fail")
	}
}

func TestPanelPoints(t *testing.T) {
	w := testWing(t, r3.Vec{}, 2, 1, 2, 1, nil)
	p := w.Panels[0][0]
	for _, pp := range []PanelPoint{FrontLegCenter, LeftLegCenter, RightLegCenter, RingCenter} {
		if _, err := p.Point(pp); err == nil {
			t.Fatalf("%s without ring vortex should fail", pp)
		}
	}
	if _, err := p.Point(PanelPoint(42)); err == nil {
		t.Fatal("unknown point should fail")
	}
	if PanelPoint(42).String() != "PanelPoint(42)" {
		t.Fatalf("unexpected name %s", PanelPoint(42))
	}
	if x, err := p.Point(BackRightVertex); err != nil || x != p.BackRight {
		t.Fatalf("back right vertex = %v (%v)", x, err)
	}

	w.initializeRingVortices()
	// The first ring ends on the quarter chord of the second panel.
	exp := map[PanelPoint]r3.Vec{
		FrontLegCenter:   {X: 0.125},
		LeftLegCenter:    {X: 0.375, Y: -1},
		RightLegCenter:   {X: 0.375, Y: 1},
		RingCenter:       {X: 0.375},
		CollocationPoint: {X: 0.375},
		BackLeftVertex:   {X: 0.5, Y: -1},
	}
	for pp, e := range exp {
		x, err := p.Point(pp)
		if err != nil {
			t.Fatalf("%s: %s", pp, err)
		}
		if !vectorsEqual(x, e, 1e-15) {
			t.Fatalf("%s = %v instead of %v", pp, x, e)
		}
	}
	// The trailing edge ring extends a quarter panel chord behind the trailing edge.
	te := w.Panels[1][0]
	if !vectorsEqual(te.BackLeftVortexVertex, r3.Vec{X: 1.125, Y: -1}, 1e-15) {
		t.Fatalf("trailing edge ring back left = %v", te.BackLeftVortexVertex)
	}
	// Moving the ring vortex does not move the stored bound geometry.
	r := te.RingVortex
	r.UpdatePosition(r.FrontLeft, r.FrontRight, r3.Vec{X: 5, Y: -1}, r3.Vec{X: 5, Y: 1})
	if x, _ := te.Point(RingCenter); !vectorsEqual(x, r3.Vec{X: 0.875}, 1e-15) {
		t.Fatalf("ring center = %v", x)
	}
}

func TestPanelStrength(t *testing.T) {
	w := testWing(t, r3.Vec{}, 2, 1, 1, 2, nil)
	w.initializeRingVortices()
	w.closeTrailingEdge(r3.Vec{X: 1}, 0)
	p := w.Panels[0][1]
	p.updateStrength(2.5)
	if p.Strength() != 2.5 || p.RingVortex.Strength != 2.5 || p.HorseshoeVortex.Strength != 2.5 {
		t.Fatal("strength not propagated to every bound vortex")
	}
	// The horseshoe cancels the ring's back leg: what remains is an open ring and two trailing legs.
	x := r3.Vec{X: 3, Y: 0.5, Z: 0.3}
	exp := r3.Add(r3.Add(p.RingVortex.Front.InducedVelocity(x), p.RingVortex.Left.InducedVelocity(x)), p.RingVortex.Right.InducedVelocity(x))
	h := p.HorseshoeVortex
	exp = r3.Add(exp, r3.Scale(2.5, r3.Sub(semiInfiniteFilament(h.Termination, h.Direction, x), semiInfiniteFilament(h.Origin, h.Direction, x))))
	if !vectorsEqual(p.InducedVelocity(x), exp, 1e-12) {
		t.Fatalf("induced velocity %v instead of %v", p.InducedVelocity(x), exp)
	}
}
