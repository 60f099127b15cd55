package vlm

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// CoreRadius is the vortex core radius used to regularize the Biot-Savart law close to the filament line. The
// finite filament scales it by the filament length inside |r1×r2|², which is itself |r0|² times the squared
// distance to the line, so the radius is the same absolute length for every filament.
const CoreRadius = 1e-4

const fourPi = 4 * math.Pi

// LineVortex is a straight vortex filament going from Origin to Termination.
type LineVortex struct {
	Origin, Termination r3.Vec
	Strength            float64
}

// NewLineVortex returns a new line vortex.
func NewLineVortex(origin, termination r3.Vec, strength float64) LineVortex {
	return LineVortex{origin, termination, strength}
}

// Center returns the midpoint of the filament.
func (l LineVortex) Center() r3.Vec {
	return midpoint(l.Origin, l.Termination)
}

// Vector returns the filament vector, from origin to termination.
func (l LineVortex) Vector() r3.Vec {
	return r3.Sub(l.Termination, l.Origin)
}

// NormalizedInducedVelocity returns the velocity induced at p for a unit strength.
func (l LineVortex) NormalizedInducedVelocity(p r3.Vec) r3.Vec {
	return finiteFilament(l.Origin, l.Termination, p)
}

// InducedVelocity returns the velocity induced at p.
func (l LineVortex) InducedVelocity(p r3.Vec) r3.Vec {
	return r3.Scale(l.Strength, finiteFilament(l.Origin, l.Termination, p))
}

// finiteFilament computes the Biot-Savart law of a unit strength segment from a to b evaluated at p.
// The core term bounds the velocity on the filament line; points on either vertex induce nothing.
func finiteFilament(a, b, p r3.Vec) r3.Vec {
	r1 := r3.Sub(p, a)
	r2 := r3.Sub(p, b)
	r1n := r3.Norm(r1)
	r2n := r3.Norm(r2)
	if r1n < eps || r2n < eps {
		return r3.Vec{}
	}
	r0 := r3.Sub(b, a)
	c := r3.Cross(r1, r2)
	core := CoreRadius * r3.Norm(r0)
	den := r3.Norm2(c) + core*core
	if den < eps*eps {
		return r3.Vec{}
	}
	k := (r3.Dot(r0, r1)/r1n - r3.Dot(r0, r2)/r2n) / (fourPi * den)
	return r3.Scale(k, c)
}

// semiInfiniteFilament computes the velocity induced at p by a unit strength filament starting at a and extending
// to infinity along the unit direction d.
func semiInfiniteFilament(a, d, p r3.Vec) r3.Vec {
	r := r3.Sub(p, a)
	rn := r3.Norm(r)
	if rn < eps {
		return r3.Vec{}
	}
	c := r3.Cross(d, r)
	den := r3.Norm2(c) + CoreRadius*CoreRadius
	k := (1 + r3.Dot(d, r)/rn) / (fourPi * den)
	return r3.Scale(k, c)
}
