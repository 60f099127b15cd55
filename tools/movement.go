package tools

import (
	"errors"
	"math"

	"github.com/ChristopherRabotin/vlm"
	"gonum.org/v1/gonum/spatial/r3"
)

// Kinematics moves a mesh vertex to its position at time t.
type Kinematics func(t float64, p r3.Vec) r3.Vec

// Plunge heaves the wing along z by amplitude·sin(2πft).
func Plunge(amplitude, frequency float64) Kinematics {
	return func(t float64, p r3.Vec) r3.Vec {
		return r3.Add(p, r3.Vec{Z: amplitude * math.Sin(2*math.Pi*frequency*t)})
	}
}

// Flap rotates both halves of the wing about the x axis, symmetrically, by amplitude·sin(2πft) (amplitude in
// degrees, positive raises the tips).
func Flap(amplitude, frequency float64) Kinematics {
	return func(t float64, p r3.Vec) r3.Vec {
		θ := amplitude * math.Pi / 180 * math.Sin(2*math.Pi*frequency*t)
		if p.Y < 0 {
			return vlm.MxV33(vlm.R1(θ), p)
		}
		return vlm.MxV33(vlm.R1(-θ), p)
	}
}

// RectangularMovement returns one pose of a rectangular airplane per time step, each moved by the kinematics at
// t = k·dt. A nil kinematics keeps the wing static. Every pose is a distinct airplane.
func RectangularMovement(name string, span, chord float64, chordwise, spanwise int, xyzRef r3.Vec, op vlm.OperatingPoint, steps int, dt float64, kin Kinematics) (*vlm.Movement, error) {
	if steps < 1 {
		return nil, errors.New("at least one step required")
	}
	airplanes := make([]*vlm.Airplane, steps)
	ops := make([]vlm.OperatingPoint, steps)
	for k := range airplanes {
		grid, err := RectangularGrid(r3.Vec{}, span, chord, chordwise, spanwise)
		if err != nil {
			return nil, err
		}
		if kin != nil {
			t := float64(k) * dt
			for i := range grid {
				for j := range grid[i] {
					grid[i][j] = kin(t, grid[i][j])
				}
			}
		}
		w, err := WingFromGrid(name+" wing", grid)
		if err != nil {
			return nil, err
		}
		if airplanes[k], err = vlm.NewAirplane(name, xyzRef, span*chord, span, chord, w); err != nil {
			return nil, err
		}
		ops[k] = op
	}
	return vlm.NewMovement(airplanes, ops, dt)
}

// StaticMovement returns a movement where the rectangular airplane does not move.
func StaticMovement(name string, span, chord float64, chordwise, spanwise int, xyzRef r3.Vec, op vlm.OperatingPoint, steps int, dt float64) (*vlm.Movement, error) {
	return RectangularMovement(name, span, chord, chordwise, spanwise, xyzRef, op, steps, dt, nil)
}

// PlungingMovement returns a movement where the rectangular airplane heaves sinusoidally.
func PlungingMovement(name string, span, chord float64, chordwise, spanwise int, xyzRef r3.Vec, op vlm.OperatingPoint, steps int, dt, amplitude, frequency float64) (*vlm.Movement, error) {
	return RectangularMovement(name, span, chord, chordwise, spanwise, xyzRef, op, steps, dt, Plunge(amplitude, frequency))
}

// FlappingMovement returns a movement where the rectangular airplane flaps its wing halves sinusoidally.
func FlappingMovement(name string, span, chord float64, chordwise, spanwise int, xyzRef r3.Vec, op vlm.OperatingPoint, steps int, dt, amplitude, frequency float64) (*vlm.Movement, error) {
	return RectangularMovement(name, span, chord, chordwise, spanwise, xyzRef, op, steps, dt, Flap(amplitude, frequency))
}
