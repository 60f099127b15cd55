package vlm

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// R1 rotation about the 1st axis.
func R1(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, c, s, 0, -s, c})
}

// R2 rotation about the 2nd axis.
func R2(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{c, 0, -s, 0, 1, 0, s, 0, c})
}

// R3 rotation about the 3rd axis.
func R3(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{c, s, 0, -s, c, 0, 0, 0, 1})
}

// WindToGeometry returns the rotation matrix from wind axes to geometry axes for the provided angle of attack
// and sideslip angle (both in radians).
// Wind axes have x along the freestream, z down. Geometry axes have x aft, y to the right and z up.
func WindToGeometry(α, β float64) *mat.Dense {
	flip := mat.NewDense(3, 3, []float64{-1, 0, 0, 0, 1, 0, 0, 0, -1})
	var tmp, rot mat.Dense
	tmp.Mul(flip, R2(α))
	rot.Mul(&tmp, R3(-β))
	return &rot
}

// MxV33 multiplies a matrix with a vector. Note that there is no dimension check!
func MxV33(m mat.Matrix, v r3.Vec) r3.Vec {
	vVec := mat.NewVecDense(3, []float64{v.X, v.Y, v.Z})
	var rVec mat.VecDense
	rVec.MulVec(m, vVec)
	return r3.Vec{X: rVec.AtVec(0), Y: rVec.AtVec(1), Z: rVec.AtVec(2)}
}

// MTxV33 multiplies the transpose of a matrix with a vector.
func MTxV33(m mat.Matrix, v r3.Vec) r3.Vec {
	return MxV33(m.T(), v)
}
