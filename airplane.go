package vlm

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Coefficients are the six aerodynamic coefficients, in wind axes.
type Coefficients struct {
	CDi, CY, CL float64
	Cl, Cm, Cn  float64
}

func (c Coefficients) String() string {
	return fmt.Sprintf("CDi=%.5f CY=%.5f CL=%.5f Cl=%.5f Cm=%.5f Cn=%.5f", c.CDi, c.CY, c.CL, c.Cl, c.Cm, c.Cn)
}

func nanCoefficients() Coefficients {
	n := math.NaN()
	return Coefficients{n, n, n, n, n, n}
}

// Airplane is a set of wings sharing a moment reference point and reference geometry.
type Airplane struct {
	Name             string
	Wings            []*Wing
	XYZRef           r3.Vec
	SRef, BRef, CRef float64
	NumPanels        int

	// Results, overwritten at every solve.
	ForceGeometryAxes, MomentGeometryAxes r3.Vec
	ForceWindAxes, MomentWindAxes         r3.Vec
	Coefficients                          Coefficients

	offsets []int
}

// NewAirplane returns a new airplane. The reference geometry is only checked when computing coefficients.
func NewAirplane(name string, xyzRef r3.Vec, sRef, bRef, cRef float64, wings ...*Wing) (*Airplane, error) {
	if len(wings) == 0 {
		return nil, errors.New("airplane must have at least one wing")
	}
	a := &Airplane{Name: name, Wings: wings, XYZRef: xyzRef, SRef: sRef, BRef: bRef, CRef: cRef}
	a.offsets = make([]int, len(wings))
	for w, wing := range wings {
		if wing == nil {
			return nil, fmt.Errorf("wing %d is nil", w)
		}
		a.offsets[w] = a.NumPanels
		a.NumPanels += wing.NumPanels()
	}
	return a, nil
}

// PanelIndex returns the global index of a panel, used as row and column of the influence matrix.
func (a *Airplane) PanelIndex(wing, chordwise, spanwise int) int {
	return a.offsets[wing] + chordwise*a.Wings[wing].NumSpanwise() + spanwise
}

// Panels returns all the panels in global index order.
func (a *Airplane) Panels() []*Panel {
	panels := make([]*Panel, 0, a.NumPanels)
	for _, w := range a.Wings {
		for _, row := range w.Panels {
			panels = append(panels, row...)
		}
	}
	return panels
}

// InducedVelocity returns the velocity induced at x by all the bound vortices.
func (a *Airplane) InducedVelocity(x r3.Vec) (v r3.Vec) {
	for _, w := range a.Wings {
		for _, row := range w.Panels {
			for _, p := range row {
				v = r3.Add(v, p.InducedVelocity(x))
			}
		}
	}
	return
}

// wakeInducedVelocity returns the velocity induced at x by every wake of this airplane.
func (a *Airplane) wakeInducedVelocity(x r3.Vec) (v r3.Vec) {
	for _, w := range a.Wings {
		if w.Wake != nil {
			v = r3.Add(v, w.Wake.InducedVelocity(x))
		}
	}
	return
}

// sameShape returns an error if both airplanes do not have the same wing and panel layout.
func (a *Airplane) sameShape(o *Airplane) error {
	if len(a.Wings) != len(o.Wings) {
		return fmt.Errorf("%d wings instead of %d", len(o.Wings), len(a.Wings))
	}
	for w := range a.Wings {
		if a.Wings[w].NumChordwise() != o.Wings[w].NumChordwise() || a.Wings[w].NumSpanwise() != o.Wings[w].NumSpanwise() {
			return fmt.Errorf("wing %d has a different panel grid", w)
		}
	}
	return nil
}

// sumPanelResults totals the panel forces and moments, in geometry axes.
func (a *Airplane) sumPanelResults() {
	a.ForceGeometryAxes = r3.Vec{}
	a.MomentGeometryAxes = r3.Vec{}
	for _, p := range a.Panels() {
		a.ForceGeometryAxes = r3.Add(a.ForceGeometryAxes, p.Force)
		a.MomentGeometryAxes = r3.Add(a.MomentGeometryAxes, p.Moment)
	}
}

// computeCoefficients rotates the totals to wind axes and nondimensionalizes them. The totals are always stored; a
// ConfigurationError is returned, and the coefficients set to NaN, if the reference geometry or dynamic pressure
// cannot be divided by.
func (a *Airplane) computeCoefficients(op OperatingPoint) error {
	rot := op.WindToGeometry()
	a.ForceWindAxes = MTxV33(rot, a.ForceGeometryAxes)
	a.MomentWindAxes = MTxV33(rot, a.MomentGeometryAxes)

	q := op.DynamicPressure()
	for _, ref := range []struct {
		name string
		val  float64
	}{{"SRef", a.SRef}, {"BRef", a.BRef}, {"CRef", a.CRef}, {"dynamic pressure", q}} {
		if !(ref.val > 0) || math.IsInf(ref.val, 0) {
			a.Coefficients = nanCoefficients()
			return &ConfigurationError{Field: ref.name, Value: ref.val}
		}
	}
	qS := q * a.SRef
	a.Coefficients = Coefficients{
		CDi: -a.ForceWindAxes.X / qS,
		CY:  a.ForceWindAxes.Y / qS,
		CL:  -a.ForceWindAxes.Z / qS,
		Cl:  a.MomentWindAxes.X / qS / a.BRef,
		Cm:  a.MomentWindAxes.Y / qS / a.CRef,
		Cn:  a.MomentWindAxes.Z / qS / a.BRef,
	}
	return nil
}
