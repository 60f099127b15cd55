package vlm

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// RingVortex is a closed quadrilateral vortex of constant strength. Legs run front (right to left), left
// (front to back), back (left to right) and right (back to front).
type RingVortex struct {
	FrontLeft, FrontRight, BackLeft, BackRight r3.Vec
	Strength                                   float64
	Front, Left, Back, Right                   LineVortex
	center                                     r3.Vec
}

// NewRingVortex returns a new ring vortex from its four vertices.
func NewRingVortex(frontLeft, frontRight, backLeft, backRight r3.Vec, strength float64) *RingVortex {
	r := &RingVortex{Strength: strength}
	r.UpdatePosition(frontLeft, frontRight, backLeft, backRight)
	return r
}

// UpdatePosition replaces the four vertices and rebuilds the legs.
func (r *RingVortex) UpdatePosition(frontLeft, frontRight, backLeft, backRight r3.Vec) {
	r.FrontLeft, r.FrontRight, r.BackLeft, r.BackRight = frontLeft, frontRight, backLeft, backRight
	r.Front = NewLineVortex(frontRight, frontLeft, r.Strength)
	r.Left = NewLineVortex(frontLeft, backLeft, r.Strength)
	r.Back = NewLineVortex(backLeft, backRight, r.Strength)
	r.Right = NewLineVortex(backRight, frontRight, r.Strength)
	r.center = r3.Scale(0.25, r3.Add(r3.Add(frontLeft, frontRight), r3.Add(backLeft, backRight)))
}

// UpdateStrength sets the strength of the ring and its legs.
func (r *RingVortex) UpdateStrength(strength float64) {
	r.Strength = strength
	r.Front.Strength = strength
	r.Left.Strength = strength
	r.Back.Strength = strength
	r.Right.Strength = strength
}

// Center returns the mean of the four vertices.
func (r *RingVortex) Center() r3.Vec {
	return r.center
}

// NormalizedInducedVelocity returns the velocity induced at p for a unit strength.
func (r *RingVortex) NormalizedInducedVelocity(p r3.Vec) r3.Vec {
	v := r.Front.NormalizedInducedVelocity(p)
	v = r3.Add(v, r.Left.NormalizedInducedVelocity(p))
	v = r3.Add(v, r.Back.NormalizedInducedVelocity(p))
	return r3.Add(v, r.Right.NormalizedInducedVelocity(p))
}

// InducedVelocity returns the velocity induced at p.
func (r *RingVortex) InducedVelocity(p r3.Vec) r3.Vec {
	return r3.Scale(r.Strength, r.NormalizedInducedVelocity(p))
}
