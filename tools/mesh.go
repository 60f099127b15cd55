package tools

import (
	"errors"

	"github.com/ChristopherRabotin/vlm"
	"gonum.org/v1/gonum/spatial/r3"
)

// RectangularGrid returns the (chordwise+1) x (spanwise+1) vertices of a flat rectangular wing whose leading edge
// center is at origin. The span lies along y, centered on the origin, and the chord along +x.
func RectangularGrid(origin r3.Vec, span, chord float64, chordwise, spanwise int) ([][]r3.Vec, error) {
	if chordwise < 1 || spanwise < 1 {
		return nil, errors.New("at least one chordwise and one spanwise panel required")
	}
	if !(span > 0) || !(chord > 0) {
		return nil, errors.New("span and chord must be positive")
	}
	grid := make([][]r3.Vec, chordwise+1)
	for i := range grid {
		grid[i] = make([]r3.Vec, spanwise+1)
		for j := range grid[i] {
			grid[i][j] = r3.Add(origin, r3.Vec{
				X: chord * float64(i) / float64(chordwise),
				Y: -span/2 + span*float64(j)/float64(spanwise),
			})
		}
	}
	return grid, nil
}

// WingFromGrid builds the panels of a wing from a grid of vertices, row 0 being the leading edge and column 0 the
// left tip.
func WingFromGrid(name string, grid [][]r3.Vec) (*vlm.Wing, error) {
	if len(grid) < 2 || len(grid[0]) < 2 {
		return nil, errors.New("grid must be at least 2x2")
	}
	nc, ns := len(grid)-1, len(grid[0])-1
	panels := make([][]*vlm.Panel, nc)
	for i := range panels {
		panels[i] = make([]*vlm.Panel, ns)
		for j := range panels[i] {
			p, err := vlm.NewPanel(grid[i][j], grid[i][j+1], grid[i+1][j], grid[i+1][j+1], i == 0, i == nc-1)
			if err != nil {
				return nil, err
			}
			panels[i][j] = p
		}
	}
	return vlm.NewWing(name, panels)
}

// RectangularWing meshes a flat rectangular wing with uniform panels.
func RectangularWing(name string, origin r3.Vec, span, chord float64, chordwise, spanwise int) (*vlm.Wing, error) {
	grid, err := RectangularGrid(origin, span, chord, chordwise, spanwise)
	if err != nil {
		return nil, err
	}
	return WingFromGrid(name, grid)
}

// RectangularAirplane returns an airplane made of a single rectangular wing with its leading edge center at the
// origin. The reference area, span and chord are those of the wing.
func RectangularAirplane(name string, span, chord float64, chordwise, spanwise int, xyzRef r3.Vec) (*vlm.Airplane, error) {
	w, err := RectangularWing(name+" wing", r3.Vec{}, span, chord, chordwise, spanwise)
	if err != nil {
		return nil, err
	}
	return vlm.NewAirplane(name, xyzRef, span*chord, span, chord, w)
}
