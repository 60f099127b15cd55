package vlm

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// OperatingPoint defines the freestream. Angles are in degrees.
type OperatingPoint struct {
	Density  float64 // kg/m^3
	Velocity float64 // m/s
	Alpha    float64 // angle of attack
	Beta     float64 // sideslip angle
}

// DefaultOperatingPoint returns sea level air at 10 m/s and five degrees of angle of attack.
func DefaultOperatingPoint() OperatingPoint {
	return OperatingPoint{Density: 1.225, Velocity: 10, Alpha: 5, Beta: 0}
}

// DynamicPressure returns ½ρV².
func (o OperatingPoint) DynamicPressure() float64 {
	return 0.5 * o.Density * o.Velocity * o.Velocity
}

// WindToGeometry returns the rotation matrix from wind axes to geometry axes.
func (o OperatingPoint) WindToGeometry() *mat.Dense {
	return WindToGeometry(Deg2rad(o.Alpha), Deg2rad(o.Beta))
}

// FreestreamDirection returns the unit direction the freestream travels towards, in geometry axes.
func (o OperatingPoint) FreestreamDirection() r3.Vec {
	return MxV33(o.WindToGeometry(), r3.Vec{X: -1})
}

// FreestreamVelocity returns the freestream velocity, in geometry axes.
func (o OperatingPoint) FreestreamVelocity() r3.Vec {
	return r3.Scale(o.Velocity, o.FreestreamDirection())
}

func (o OperatingPoint) String() string {
	return fmt.Sprintf("ρ=%.4f V=%.3f α=%.2f° β=%.2f°", o.Density, o.Velocity, o.Alpha, o.Beta)
}
