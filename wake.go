package vlm

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Wake is the append-only record of the vorticity shed by one wing. Rows are stored oldest first: ring row r spans
// vertex rows r+1 (front, closer to the wing) and r (back). Once shed, a ring keeps its strength; only its
// position follows the convected vertices. Nothing is ever pruned, so memory grows linearly with the number of
// time steps.
type Wake struct {
	Vertices [][]r3.Vec
	Rings    [][]*RingVortex
}

// NewWake returns an empty wake.
func NewWake() *Wake {
	return &Wake{}
}

// Empty returns whether nothing has been shed yet.
func (w *Wake) Empty() bool {
	return len(w.Vertices) == 0
}

// NumRingVortices returns the number of wake ring vortices.
func (w *Wake) NumRingVortices() (n int) {
	for _, row := range w.Rings {
		n += len(row)
	}
	return
}

// AllVertices returns every wake vertex, row after row.
func (w *Wake) AllVertices() []r3.Vec {
	var pts []r3.Vec
	for _, row := range w.Vertices {
		pts = append(pts, row...)
	}
	return pts
}

// Seed starts the wake with a first row of vertices.
func (w *Wake) Seed(row []r3.Vec) {
	if !w.Empty() {
		panic("wake already seeded")
	}
	w.Vertices = append(w.Vertices, append([]r3.Vec(nil), row...))
}

// Convect moves every vertex by dt times its velocity. Velocities are given in the order of AllVertices.
func (w *Wake) Convect(velocities []r3.Vec, dt float64) {
	n := 0
	for _, row := range w.Vertices {
		for j := range row {
			row[j] = r3.Add(row[j], r3.Scale(dt, velocities[n]))
			n++
		}
	}
	if n != len(velocities) {
		panic(fmt.Sprintf("convecting %d wake vertices with %d velocities", n, len(velocities)))
	}
	w.refreshRings()
}

// Shed appends a new front row of vertices and the row of rings between it and the previous front row, with the
// provided strengths.
func (w *Wake) Shed(row []r3.Vec, strengths []float64) {
	if w.Empty() {
		panic("shedding in an unseeded wake")
	}
	cols := len(w.Vertices[0])
	if len(row) != cols || len(strengths) != cols-1 {
		panic(fmt.Sprintf("shedding %d vertices and %d strengths in a wake of %d columns", len(row), len(strengths), cols))
	}
	w.Vertices = append(w.Vertices, append([]r3.Vec(nil), row...))
	r := len(w.Rings)
	rings := make([]*RingVortex, cols-1)
	for j := range rings {
		front, back := w.Vertices[r+1], w.Vertices[r]
		rings[j] = NewRingVortex(front[j], front[j+1], back[j], back[j+1], strengths[j])
	}
	w.Rings = append(w.Rings, rings)
	if len(w.Vertices) != len(w.Rings)+1 {
		panic(fmt.Sprintf("wake has %d vertex rows for %d ring rows", len(w.Vertices), len(w.Rings)))
	}
}

// FrontRow returns the newest row of vertices.
func (w *Wake) FrontRow() []r3.Vec {
	return w.Vertices[len(w.Vertices)-1]
}

func (w *Wake) refreshRings() {
	for r, rings := range w.Rings {
		front, back := w.Vertices[r+1], w.Vertices[r]
		for j, ring := range rings {
			ring.UpdatePosition(front[j], front[j+1], back[j], back[j+1])
		}
	}
}

// InducedVelocity returns the velocity induced at x by every wake ring.
func (w *Wake) InducedVelocity(x r3.Vec) (v r3.Vec) {
	for _, rings := range w.Rings {
		for _, ring := range rings {
			v = r3.Add(v, ring.InducedVelocity(x))
		}
	}
	return
}
