package vlm

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Movement is a sequence of airplane poses, one per time step, each with its operating point.
type Movement struct {
	Airplanes       []*Airplane
	OperatingPoints []OperatingPoint
	DeltaTime       float64 // seconds
}

// NewMovement returns a new movement after checking that every pose has the same layout.
func NewMovement(airplanes []*Airplane, operatingPoints []OperatingPoint, deltaTime float64) (*Movement, error) {
	if len(airplanes) == 0 {
		return nil, errors.New("movement must have at least one pose")
	}
	if len(airplanes) != len(operatingPoints) {
		return nil, fmt.Errorf("%d airplanes but %d operating points", len(airplanes), len(operatingPoints))
	}
	if !(deltaTime > 0) {
		return nil, fmt.Errorf("delta time must be positive (got %f)", deltaTime)
	}
	for k, a := range airplanes[1:] {
		if err := airplanes[0].sameShape(a); err != nil {
			return nil, fmt.Errorf("pose %d: %s", k+1, err)
		}
	}
	return &Movement{airplanes, operatingPoints, deltaTime}, nil
}

// NumSteps returns the number of time steps.
func (m *Movement) NumSteps() int {
	return len(m.Airplanes)
}

// FlappingVelocity returns the velocity of the air relative to a point of a panel due to the motion of the
// surface, from the poses at step-1 and step. It is zero at the first step.
func (m *Movement) FlappingVelocity(step, wing, chordwise, spanwise int, point PanelPoint) (r3.Vec, error) {
	ref := func(reason string) error {
		return &InvalidPoseReferenceError{step, wing, chordwise, spanwise, point, reason}
	}
	if step < 0 || step >= len(m.Airplanes) {
		return r3.Vec{}, ref(fmt.Sprintf("step out of range [0, %d)", len(m.Airplanes)))
	}
	cur, err := m.panel(step, wing, chordwise, spanwise)
	if err != nil {
		return r3.Vec{}, ref(err.Error())
	}
	x, err := cur.Point(point)
	if err != nil {
		return r3.Vec{}, ref(err.Error())
	}
	if step == 0 {
		return r3.Vec{}, nil
	}
	prev, err := m.panel(step-1, wing, chordwise, spanwise)
	if err != nil {
		return r3.Vec{}, ref(err.Error())
	}
	xPrev, err := prev.Point(point)
	if err != nil {
		return r3.Vec{}, ref(err.Error())
	}
	return r3.Scale(-1/m.DeltaTime, r3.Sub(x, xPrev)), nil
}

func (m *Movement) panel(step, wing, chordwise, spanwise int) (*Panel, error) {
	a := m.Airplanes[step]
	if wing < 0 || wing >= len(a.Wings) {
		return nil, fmt.Errorf("wing out of range [0, %d)", len(a.Wings))
	}
	w := a.Wings[wing]
	if chordwise < 0 || chordwise >= w.NumChordwise() || spanwise < 0 || spanwise >= w.NumSpanwise() {
		return nil, fmt.Errorf("panel out of range [0, %d)x[0, %d)", w.NumChordwise(), w.NumSpanwise())
	}
	return w.Panels[chordwise][spanwise], nil
}
