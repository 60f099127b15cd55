package vlm

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	deg2rad = math.Pi / 180
	// eps is the distance below which a point is considered on a vortex vertex.
	eps = 1e-12
)

// unit returns the unit vector of a given vector, or the zero vector if it has no length.
func unit(a r3.Vec) r3.Vec {
	n := r3.Norm(a)
	if scalar.EqualWithinAbs(n, 0, eps) {
		return r3.Vec{}
	}
	return r3.Scale(1/n, a)
}

// midpoint returns the point halfway between a and b.
func midpoint(a, b r3.Vec) r3.Vec {
	return r3.Scale(0.5, r3.Add(a, b))
}

// lerp returns a + f*(b-a).
func lerp(a, b r3.Vec, f float64) r3.Vec {
	return r3.Add(a, r3.Scale(f, r3.Sub(b, a)))
}

// isFinite returns whether all components are neither NaN nor infinite.
func isFinite(v r3.Vec) bool {
	for _, c := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// fmtVec formats a vector for the logs.
func fmtVec(v r3.Vec) string {
	return fmt.Sprintf("[%.6g %.6g %.6g]", v.X, v.Y, v.Z)
}

// Deg2rad converts degrees to radians, and enforced only positive numbers.
func Deg2rad(a float64) float64 {
	if a < 0 {
		a += 360
	}
	return math.Mod(a*deg2rad, 2*math.Pi)
}

// Rad2deg converts radians to degrees, and enforced only positive numbers.
func Rad2deg(a float64) float64 {
	if a < 0 {
		a += 2 * math.Pi
	}
	return math.Mod(a/deg2rad, 360)
}
