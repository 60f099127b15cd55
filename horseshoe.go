package vlm

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// HorseshoeVortex is a bound finite leg from Origin to Termination, closed by two legs which trail along
// Direction: one from infinity to the origin and one from the termination to infinity.
type HorseshoeVortex struct {
	Origin, Termination r3.Vec
	Direction           r3.Vec // unit vector
	// LegLength is the length of the trailing legs. Zero means they are semi-infinite.
	LegLength float64
	Strength  float64
	finiteLeg LineVortex
}

// NewHorseshoeVortex returns a new horseshoe vortex with semi-infinite trailing legs.
func NewHorseshoeVortex(origin, termination, direction r3.Vec, strength float64) *HorseshoeVortex {
	h := &HorseshoeVortex{Direction: unit(direction), Strength: strength}
	h.UpdatePosition(origin, termination)
	return h
}

// NewFiniteHorseshoeVortex returns a horseshoe vortex whose trailing legs have the provided length.
func NewFiniteHorseshoeVortex(origin, termination, direction r3.Vec, legLength, strength float64) *HorseshoeVortex {
	h := NewHorseshoeVortex(origin, termination, direction, strength)
	h.LegLength = legLength
	return h
}

// FiniteLeg returns the bound leg of this horseshoe.
func (h *HorseshoeVortex) FiniteLeg() LineVortex {
	return h.finiteLeg
}

// UpdateStrength sets the strength of all the legs.
func (h *HorseshoeVortex) UpdateStrength(strength float64) {
	h.Strength = strength
	h.finiteLeg.Strength = strength
}

// UpdatePosition moves the bound leg, and therefore the trailing legs.
func (h *HorseshoeVortex) UpdatePosition(origin, termination r3.Vec) {
	h.Origin = origin
	h.Termination = termination
	h.finiteLeg = NewLineVortex(origin, termination, h.Strength)
}

// NormalizedInducedVelocity returns the velocity induced at p for a unit strength.
func (h *HorseshoeVortex) NormalizedInducedVelocity(p r3.Vec) r3.Vec {
	v := h.finiteLeg.NormalizedInducedVelocity(p)
	if h.LegLength > 0 {
		far := r3.Scale(h.LegLength, h.Direction)
		v = r3.Add(v, finiteFilament(h.Termination, r3.Add(h.Termination, far), p))
		return r3.Add(v, finiteFilament(r3.Add(h.Origin, far), h.Origin, p))
	}
	v = r3.Add(v, semiInfiniteFilament(h.Termination, h.Direction, p))
	return r3.Sub(v, semiInfiniteFilament(h.Origin, h.Direction, p))
}

// InducedVelocity returns the velocity induced at p.
func (h *HorseshoeVortex) InducedVelocity(p r3.Vec) r3.Vec {
	return r3.Scale(h.Strength, h.NormalizedInducedVelocity(p))
}
