package vlm

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Wing is a chordwise by spanwise grid of panels. Panels[i][j] has chordwise index i (from the leading edge) and
// spanwise index j (from the left tip, i.e. increasing y).
type Wing struct {
	Name   string
	Panels [][]*Panel
	// Wake is set by the unsteady solver.
	Wake *Wake
	// StreamlinePoints[s][k] is the k-th trailing edge streamline after s Euler substeps.
	StreamlinePoints [][]r3.Vec
}

// NewWing returns a new wing after checking the panel grid.
func NewWing(name string, panels [][]*Panel) (*Wing, error) {
	if len(panels) == 0 || len(panels[0]) == 0 {
		return nil, errors.New("wing must have at least one panel")
	}
	ns := len(panels[0])
	for i, row := range panels {
		if len(row) != ns {
			return nil, fmt.Errorf("chordwise row %d has %d panels instead of %d", i, len(row), ns)
		}
		for j, p := range row {
			if p == nil {
				return nil, fmt.Errorf("panel [%d][%d] is nil", i, j)
			}
			if p.IsLeadingEdge != (i == 0) {
				return nil, fmt.Errorf("panel [%d][%d] has an inconsistent leading edge flag", i, j)
			}
			if p.IsTrailingEdge != (i == len(panels)-1) {
				return nil, fmt.Errorf("panel [%d][%d] has an inconsistent trailing edge flag", i, j)
			}
		}
	}
	return &Wing{Name: name, Panels: panels}, nil
}

// NumChordwise returns the number of chordwise panels.
func (w *Wing) NumChordwise() int {
	return len(w.Panels)
}

// NumSpanwise returns the number of spanwise panels.
func (w *Wing) NumSpanwise() int {
	return len(w.Panels[0])
}

// NumPanels returns the number of panels.
func (w *Wing) NumPanels() int {
	return w.NumChordwise() * w.NumSpanwise()
}

// TrailingEdge returns the last chordwise row of panels.
func (w *Wing) TrailingEdge() []*Panel {
	return w.Panels[len(w.Panels)-1]
}

// Span returns the extent of the wing along the y axis.
func (w *Wing) Span() float64 {
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, row := range w.Panels {
		for _, p := range row {
			for _, v := range []r3.Vec{p.FrontLeft, p.FrontRight, p.BackLeft, p.BackRight} {
				minY = math.Min(minY, v.Y)
				maxY = math.Max(maxY, v.Y)
			}
		}
	}
	return maxY - minY
}

// initializeRingVortices attaches a zero strength ring vortex to every panel. The back leg lies on the quarter
// chord of the next panel, or one quarter panel chord behind the trailing edge.
func (w *Wing) initializeRingVortices() {
	nc := w.NumChordwise()
	for i, row := range w.Panels {
		for j, p := range row {
			if i < nc-1 {
				next := w.Panels[i+1][j]
				p.BackLeftVortexVertex = next.FrontLeftVortexVertex
				p.BackRightVortexVertex = next.FrontRightVortexVertex
			} else {
				p.BackLeftVortexVertex = r3.Add(p.FrontLeftVortexVertex, r3.Sub(p.BackLeft, p.FrontLeft))
				p.BackRightVortexVertex = r3.Add(p.FrontRightVortexVertex, r3.Sub(p.BackRight, p.FrontRight))
			}
			p.RingVortex = NewRingVortex(p.FrontLeftVortexVertex, p.FrontRightVortexVertex,
				p.BackLeftVortexVertex, p.BackRightVortexVertex, 0)
			p.HorseshoeVortex = nil
		}
	}
}

// initializeHorseshoeVortices attaches a zero strength horseshoe to every panel, bound on the quarter chord.
func (w *Wing) initializeHorseshoeVortices(direction r3.Vec, legLength float64) {
	for _, row := range w.Panels {
		for _, p := range row {
			p.RingVortex = nil
			p.HorseshoeVortex = NewFiniteHorseshoeVortex(p.FrontRightVortexVertex, p.FrontLeftVortexVertex, direction, legLength, 0)
		}
	}
}

// closeTrailingEdge adds a horseshoe to every trailing edge ring, bound on its back leg.
func (w *Wing) closeTrailingEdge(direction r3.Vec, legLength float64) {
	for _, p := range w.TrailingEdge() {
		p.HorseshoeVortex = NewFiniteHorseshoeVortex(p.RingVortex.BackRight, p.RingVortex.BackLeft, direction, legLength, 0)
	}
}

// legLength returns the trailing leg length for a given finite leg factor, zero meaning semi-infinite.
func (w *Wing) legLength(factor float64) float64 {
	if factor <= 0 {
		return 0
	}
	return factor * w.Span()
}

func (w *Wing) String() string {
	return fmt.Sprintf("wing %s (%dx%d panels)", w.Name, w.NumChordwise(), w.NumSpanwise())
}
