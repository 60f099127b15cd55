package vlm

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// MaxConditionNumber is the largest acceptable condition number of the influence matrix.
const MaxConditionNumber = 1e12

// solveCirculations solves aic·Γ = rhs through an LU decomposition.
func solveCirculations(aic *mat.Dense, rhs *mat.VecDense) ([]float64, error) {
	n, _ := aic.Dims()
	var lu mat.LU
	lu.Factorize(aic)
	cond := lu.Cond()
	if math.IsNaN(cond) || cond > MaxConditionNumber {
		return nil, &GeometryDegenerateError{Condition: cond, Panels: n}
	}
	var x mat.VecDense
	if err := lu.SolveVecTo(&x, false, rhs); err != nil {
		return nil, &GeometryDegenerateError{Condition: cond, Panels: n}
	}
	Γ := make([]float64, n)
	for i := range Γ {
		Γ[i] = x.AtVec(i)
		if math.IsNaN(Γ[i]) || math.IsInf(Γ[i], 0) {
			return nil, &GeometryDegenerateError{Condition: cond, Panels: n}
		}
	}
	return Γ, nil
}
