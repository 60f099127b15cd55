package vlm

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// integrateStreamlines traces every seed with explicit Euler steps through the velocity field. The returned slice
// holds steps+1 rows, the first being the seeds.
func integrateStreamlines(seeds []r3.Vec, steps int, dt float64, workers int, field func(r3.Vec) r3.Vec) [][]r3.Vec {
	points := make([][]r3.Vec, steps+1)
	points[0] = append([]r3.Vec(nil), seeds...)
	for s := 1; s <= steps; s++ {
		prev := points[s-1]
		vel := parallelVelocities(prev, workers, field)
		row := make([]r3.Vec, len(prev))
		for k := range prev {
			row[k] = r3.Add(prev[k], r3.Scale(dt, vel[k]))
		}
		points[s] = row
	}
	return points
}

// trailingEdgeSeeds returns the midpoint of the back edge of every trailing edge panel.
func trailingEdgeSeeds(w *Wing) []r3.Vec {
	te := w.TrailingEdge()
	seeds := make([]r3.Vec, len(te))
	for j, p := range te {
		seeds[j] = midpoint(p.BackLeft, p.BackRight)
	}
	return seeds
}

// ringWakeSeeds returns points a quarter step behind the back leg of every trailing edge ring.
func ringWakeSeeds(w *Wing, freestream r3.Vec, dt float64) []r3.Vec {
	te := w.TrailingEdge()
	seeds := make([]r3.Vec, len(te))
	offset := r3.Scale(0.25*dt, freestream)
	for j, p := range te {
		seeds[j] = r3.Add(p.RingVortex.Back.Center(), offset)
	}
	return seeds
}
