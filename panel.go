package vlm

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// PanelPoint names a point of a panel whose velocity can be queried.
type PanelPoint uint8

const (
	// CollocationPoint is where flow tangency is enforced.
	CollocationPoint PanelPoint = iota + 1
	// FrontLegCenter is the center of the bound ring's front leg.
	FrontLegCenter
	// LeftLegCenter is the center of the bound ring's left leg.
	LeftLegCenter
	// RightLegCenter is the center of the bound ring's right leg.
	RightLegCenter
	// BackLeftVertex is the panel's back left vertex.
	BackLeftVertex
	// BackRightVertex is the panel's back right vertex.
	BackRightVertex
	// RingCenter is the center of the bound ring.
	RingCenter
)

func (p PanelPoint) String() string {
	switch p {
	case CollocationPoint:
		return "collocation point"
	case FrontLegCenter:
		return "front leg center"
	case LeftLegCenter:
		return "left leg center"
	case RightLegCenter:
		return "right leg center"
	case BackLeftVertex:
		return "back left vertex"
	case BackRightVertex:
		return "back right vertex"
	case RingCenter:
		return "ring center"
	default:
		return fmt.Sprintf("PanelPoint(%d)", uint8(p))
	}
}

// Panel is a quadrilateral surface element. Its vertices are expected in geometry axes (x aft, y right, z up).
type Panel struct {
	FrontLeft, FrontRight, BackLeft, BackRight r3.Vec
	IsLeadingEdge, IsTrailingEdge              bool

	// Derived from the vertices.
	FrontLeftVortexVertex, FrontRightVortexVertex r3.Vec
	CollocationPoint                              r3.Vec
	Normal                                        r3.Vec
	Area                                          float64

	// Bound ring geometry as meshed, set when the ring vortices are initialized. The ring vortex itself may
	// later be attached to the wake.
	BackLeftVortexVertex, BackRightVortexVertex r3.Vec

	RingVortex      *RingVortex
	HorseshoeVortex *HorseshoeVortex

	// Results, overwritten at every solve.
	Force, Moment r3.Vec
	Pressure      float64
}

// NewPanel returns a new panel from its four vertices.
func NewPanel(frontLeft, frontRight, backLeft, backRight r3.Vec, isLeadingEdge, isTrailingEdge bool) (*Panel, error) {
	for _, v := range []r3.Vec{frontLeft, frontRight, backLeft, backRight} {
		if !isFinite(v) {
			return nil, errors.New("panel vertices must be finite")
		}
	}
	p := &Panel{FrontLeft: frontLeft, FrontRight: frontRight, BackLeft: backLeft, BackRight: backRight,
		IsLeadingEdge: isLeadingEdge, IsTrailingEdge: isTrailingEdge}
	// Front vortex vertices sit on the quarter chord, the collocation point on the three quarter chord.
	p.FrontLeftVortexVertex = lerp(frontLeft, backLeft, 0.25)
	p.FrontRightVortexVertex = lerp(frontRight, backRight, 0.25)
	p.CollocationPoint = midpoint(lerp(frontLeft, backLeft, 0.75), lerp(frontRight, backRight, 0.75))
	c := r3.Cross(r3.Sub(frontRight, backLeft), r3.Sub(frontLeft, backRight))
	p.Area = 0.5 * r3.Norm(c)
	if p.Area < eps {
		return nil, fmt.Errorf("panel has no area (vertices %v %v %v %v)", frontLeft, frontRight, backLeft, backRight)
	}
	p.Normal = unit(c)
	return p, nil
}

// NormalizedInducedVelocity returns the velocity induced at x by the bound vortices of this panel at unit strength.
func (p *Panel) NormalizedInducedVelocity(x r3.Vec) (v r3.Vec) {
	if p.RingVortex != nil {
		v = p.RingVortex.NormalizedInducedVelocity(x)
	}
	if p.HorseshoeVortex != nil {
		v = r3.Add(v, p.HorseshoeVortex.NormalizedInducedVelocity(x))
	}
	return
}

// InducedVelocity returns the velocity induced at x by the bound vortices of this panel.
func (p *Panel) InducedVelocity(x r3.Vec) (v r3.Vec) {
	if p.RingVortex != nil {
		v = p.RingVortex.InducedVelocity(x)
	}
	if p.HorseshoeVortex != nil {
		v = r3.Add(v, p.HorseshoeVortex.InducedVelocity(x))
	}
	return
}

// Strength returns the circulation of the bound vortex.
func (p *Panel) Strength() float64 {
	if p.RingVortex != nil {
		return p.RingVortex.Strength
	}
	if p.HorseshoeVortex != nil {
		return p.HorseshoeVortex.Strength
	}
	return 0
}

// updateStrength sets the strength of every bound vortex of this panel, so that a trailing edge horseshoe cancels
// the back leg of its ring.
func (p *Panel) updateStrength(strength float64) {
	if p.RingVortex != nil {
		p.RingVortex.UpdateStrength(strength)
	}
	if p.HorseshoeVortex != nil {
		p.HorseshoeVortex.UpdateStrength(strength)
	}
}

// Point returns the position of the requested point. Leg and ring points need the bound ring geometry.
func (p *Panel) Point(pp PanelPoint) (r3.Vec, error) {
	switch pp {
	case CollocationPoint:
		return p.CollocationPoint, nil
	case BackLeftVertex:
		return p.BackLeft, nil
	case BackRightVertex:
		return p.BackRight, nil
	case FrontLegCenter, LeftLegCenter, RightLegCenter, RingCenter:
		if p.RingVortex == nil {
			return r3.Vec{}, fmt.Errorf("%s requires a ring vortex", pp)
		}
	default:
		return r3.Vec{}, fmt.Errorf("unknown panel point %s", pp)
	}
	switch pp {
	case FrontLegCenter:
		return midpoint(p.FrontRightVortexVertex, p.FrontLeftVortexVertex), nil
	case LeftLegCenter:
		return midpoint(p.FrontLeftVortexVertex, p.BackLeftVortexVertex), nil
	case RightLegCenter:
		return midpoint(p.BackRightVortexVertex, p.FrontRightVortexVertex), nil
	default:
		sum := r3.Add(r3.Add(p.FrontLeftVortexVertex, p.FrontRightVortexVertex), r3.Add(p.BackLeftVortexVertex, p.BackRightVortexVertex))
		return r3.Scale(0.25, sum), nil
	}
}

func (p *Panel) resetResults() {
	p.Force = r3.Vec{}
	p.Moment = r3.Vec{}
	p.Pressure = 0
}

func (p *Panel) String() string {
	return fmt.Sprintf("panel{collocation %v, normal %v, area %.4g, Γ=%.5g}", p.CollocationPoint, p.Normal, p.Area, p.Strength())
}
