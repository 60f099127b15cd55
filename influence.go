package vlm

import (
	"sync"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// parallelRows calls f for every index in [0, n) from the given number of workers. Each index is handled exactly
// once, so f may write to slots owned by that index without locking.
func parallelRows(n, workers int, f func(i int)) {
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}
	rows := make(chan int, n)
	for i := 0; i < n; i++ {
		rows <- i
	}
	close(rows)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range rows {
				f(i)
			}
		}()
	}
	wg.Wait()
}

// parallelVelocities evaluates a velocity field at every point.
func parallelVelocities(points []r3.Vec, workers int, field func(r3.Vec) r3.Vec) []r3.Vec {
	out := make([]r3.Vec, len(points))
	parallelRows(len(points), workers, func(i int) {
		out[i] = field(points[i])
	})
	return out
}

// influenceMatrix returns the aerodynamic influence coefficients: entry (i, j) is the normal velocity at the
// collocation point of panel i induced by the bound vortices of panel j at unit strength.
func influenceMatrix(panels []*Panel, workers int) *mat.Dense {
	n := len(panels)
	aic := mat.NewDense(n, n, nil)
	parallelRows(n, workers, func(i int) {
		col := panels[i].CollocationPoint
		normal := panels[i].Normal
		row := aic.RawRowView(i)
		for j, p := range panels {
			row[j] = r3.Dot(p.NormalizedInducedVelocity(col), normal)
		}
	})
	return aic
}

// freestreamInfluences returns the normal component of the freestream at every collocation point. The optional
// surface velocities (flapping) are added to the freestream.
func freestreamInfluences(panels []*Panel, freestream r3.Vec, surface []r3.Vec) *mat.VecDense {
	infl := mat.NewVecDense(len(panels), nil)
	for i, p := range panels {
		v := freestream
		if surface != nil {
			v = r3.Add(v, surface[i])
		}
		infl.SetVec(i, r3.Dot(v, p.Normal))
	}
	return infl
}

// wakeInfluences returns the normal velocity induced by the wake at every collocation point.
func wakeInfluences(panels []*Panel, a *Airplane, workers int) *mat.VecDense {
	infl := mat.NewVecDense(len(panels), nil)
	raw := infl.RawVector().Data
	parallelRows(len(panels), workers, func(i int) {
		raw[i] = r3.Dot(a.wakeInducedVelocity(panels[i].CollocationPoint), panels[i].Normal)
	})
	return infl
}

// rightHandSide returns -(freestream + wake).
func rightHandSide(freestream, wake *mat.VecDense) *mat.VecDense {
	rhs := mat.NewVecDense(freestream.Len(), nil)
	if wake != nil {
		rhs.AddVec(freestream, wake)
	} else {
		rhs.CopyVec(freestream)
	}
	rhs.ScaleVec(-1, rhs)
	return rhs
}
