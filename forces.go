package vlm

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// legVelocity returns the velocity at the center of a bound leg of the panel with the given global index.
type legVelocity func(index int, point PanelPoint, center r3.Vec) r3.Vec

// boundLeg is a bound ring leg with its effective circulation.
type boundLeg struct {
	leg   LineVortex
	point PanelPoint
	Γ     float64
}

// effectiveLegs returns the legs of panel [i][j] carrying a net circulation. A leg shared with a neighbor carries
// the difference of both strengths; a leg on the leading edge or the left tip carries the full strength. The right
// leg only counts on the right tip, and the back leg never does since it is shared with the next panel or the wake.
func effectiveLegs(w *Wing, i, j int) []boundLeg {
	p := w.Panels[i][j]
	ring := p.RingVortex
	Γ := ring.Strength
	legs := make([]boundLeg, 0, 3)
	if j == w.NumSpanwise()-1 {
		legs = append(legs, boundLeg{ring.Right, RightLegCenter, Γ})
	}
	front := Γ
	if !p.IsLeadingEdge {
		front -= w.Panels[i-1][j].RingVortex.Strength
	}
	legs = append(legs, boundLeg{ring.Front, FrontLegCenter, front})
	left := Γ
	if j > 0 {
		left -= w.Panels[i][j-1].RingVortex.Strength
	}
	legs = append(legs, boundLeg{ring.Left, LeftLegCenter, left})
	return legs
}

// ringNearFieldForces applies Kutta-Joukowski on every bound ring leg of the airplane. When previous is not nil,
// the unsteady term ρ·(Γ-Γprevious)·area·normal is added at the ring center. The panel forces, moments and pressures
// are overwritten, then summed on the airplane.
func ringNearFieldForces(a *Airplane, op OperatingPoint, previous []float64, velocity legVelocity, workers int) {
	type panelRef struct {
		wing    *Wing
		i, j, k int
	}
	refs := make([]panelRef, 0, a.NumPanels)
	for w, wing := range a.Wings {
		for i := range wing.Panels {
			for j := range wing.Panels[i] {
				refs = append(refs, panelRef{wing, i, j, a.PanelIndex(w, i, j)})
			}
		}
	}
	parallelRows(len(refs), workers, func(n int) {
		ref := refs[n]
		p := ref.wing.Panels[ref.i][ref.j]
		p.resetResults()
		for _, leg := range effectiveLegs(ref.wing, ref.i, ref.j) {
			if leg.Γ == 0 {
				continue
			}
			center := leg.leg.Center()
			v := velocity(ref.k, leg.point, center)
			f := r3.Scale(op.Density*leg.Γ, r3.Cross(v, leg.leg.Vector()))
			p.Force = r3.Add(p.Force, f)
			p.Moment = r3.Add(p.Moment, r3.Cross(r3.Sub(center, a.XYZRef), f))
		}
		if previous != nil {
			dΓ := p.RingVortex.Strength - previous[ref.k]
			f := r3.Scale(op.Density*dΓ*p.Area, p.Normal)
			p.Force = r3.Add(p.Force, f)
			p.Moment = r3.Add(p.Moment, r3.Cross(r3.Sub(p.RingVortex.Center(), a.XYZRef), f))
		}
		p.Pressure = r3.Dot(p.Force, p.Normal) / p.Area
	})
	a.sumPanelResults()
}

// horseshoeNearFieldForces applies Kutta-Joukowski on the bound leg of every horseshoe.
func horseshoeNearFieldForces(a *Airplane, op OperatingPoint, velocity func(r3.Vec) r3.Vec, workers int) {
	panels := a.Panels()
	parallelRows(len(panels), workers, func(n int) {
		p := panels[n]
		p.resetResults()
		leg := p.HorseshoeVortex.FiniteLeg()
		center := leg.Center()
		f := r3.Scale(op.Density*leg.Strength, r3.Cross(velocity(center), leg.Vector()))
		p.Force = f
		p.Moment = r3.Cross(r3.Sub(center, a.XYZRef), f)
		p.Pressure = r3.Dot(f, p.Normal) / p.Area
	})
	a.sumPanelResults()
}
