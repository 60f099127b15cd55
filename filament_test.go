package vlm

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestLineVortexLongLine(t *testing.T) {
	l := NewLineVortex(r3.Vec{Y: -100}, r3.Vec{Y: 100}, 2)
	v := l.InducedVelocity(r3.Vec{X: 1})
	// Biot-Savart for a finite segment seen at its perpendicular bisector.
	exp := 2 / (4 * math.Pi) * 2 * 100 / math.Sqrt(100*100+1)
	if !scalar.EqualWithinRel(-v.Z, exp, 1e-6) {
		t.Fatalf("|v| = %.10f, expected %.10f", -v.Z, exp)
	}
	if !scalar.EqualWithinAbs(v.X, 0, 1e-15) || !scalar.EqualWithinAbs(v.Y, 0, 1e-15) {
		t.Fatalf("velocity is not perpendicular to the plane containing the filament: %v", v)
	}
	// Strength only scales the result.
	if n := l.NormalizedInducedVelocity(r3.Vec{X: 1}); !vectorsEqual(r3.Scale(2, n), v, 1e-15) {
		t.Fatalf("InducedVelocity != Strength * NormalizedInducedVelocity: %v vs %v", v, n)
	}
	if c := l.Center(); c != (r3.Vec{}) {
		t.Fatalf("center = %v", c)
	}
	if vec := l.Vector(); vec != (r3.Vec{Y: 200}) {
		t.Fatalf("vector = %v", vec)
	}
}

func TestLineVortexCore(t *testing.T) {
	l := NewLineVortex(r3.Vec{Y: -100}, r3.Vec{Y: 100}, 1)
	for _, p := range []r3.Vec{{Y: 10}, {X: 1e-8, Y: 10}, {Z: 1e-10, Y: -50}, {Y: 100}, {Y: -100}} {
		v := l.InducedVelocity(p)
		if !isFinite(v) || r3.Norm(v) > 1 {
			t.Fatalf("velocity at %v is not bounded: %v", p, v)
		}
	}
	// Exactly on a vertex nothing is induced.
	if v := l.InducedVelocity(r3.Vec{Y: 100}); v != (r3.Vec{}) {
		t.Fatalf("velocity on vertex = %v", v)
	}
}

func TestLineVortexCoreRadiusIsAbsolute(t *testing.T) {
	// One core radius away from the middle of the line, whatever the filament length.
	h := CoreRadius
	for _, length := range []float64{0.01, 1, 100} {
		l := NewLineVortex(r3.Vec{Y: -length / 2}, r3.Vec{Y: length / 2}, 1)
		v := r3.Norm(l.InducedVelocity(r3.Vec{X: h}))
		exp := length * h / (4 * math.Pi * math.Sqrt(length*length/4+h*h) * 2 * h * h)
		if !scalar.EqualWithinRel(v, exp, 1e-9) {
			t.Fatalf("L=%g: |v| = %.10g, expected %.10g", length, v, exp)
		}
	}
	// Abreast of the origin of a semi-infinite filament.
	v := r3.Norm(semiInfiniteFilament(r3.Vec{}, r3.Vec{X: 1}, r3.Vec{Z: h}))
	if exp := 1 / (8 * math.Pi * h); !scalar.EqualWithinRel(v, exp, 1e-9) {
		t.Fatalf("semi-infinite |v| = %.10g, expected %.10g", v, exp)
	}
}

func TestSemiInfiniteFilament(t *testing.T) {
	// At the foot of the semi-infinite leg, half of the velocity of an infinite line.
	v := semiInfiniteFilament(r3.Vec{}, r3.Vec{Y: 1}, r3.Vec{X: 2})
	exp := 1 / (4 * math.Pi * 2)
	if !scalar.EqualWithinRel(-v.Z, exp, 1e-7) {
		t.Fatalf("|v| = %f, expected %f", -v.Z, exp)
	}
	// Far upstream of the leg, the contribution vanishes.
	if v := semiInfiniteFilament(r3.Vec{}, r3.Vec{Y: 1}, r3.Vec{X: 1, Y: -1e4}); r3.Norm(v) > 1e-8 {
		t.Fatalf("velocity far upstream = %v", v)
	}
	// Agrees with a long finite filament.
	p := r3.Vec{X: 0.3, Y: 0.7, Z: -0.2}
	long := finiteFilament(r3.Vec{}, r3.Vec{Y: 1e5}, p)
	if semi := semiInfiniteFilament(r3.Vec{}, r3.Vec{Y: 1}, p); !vectorsEqual(semi, long, 1e-5) {
		t.Fatalf("semi-infinite %v != long finite %v", semi, long)
	}
}
