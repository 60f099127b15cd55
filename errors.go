package vlm

import "fmt"

// GeometryDegenerateError is returned when the influence matrix cannot be solved, which happens with coincident or
// collapsed panels.
type GeometryDegenerateError struct {
	Condition float64
	Panels    int
}

func (e *GeometryDegenerateError) Error() string {
	return fmt.Sprintf("degenerate geometry: influence matrix of %d panels has condition number %.3g (max %.0e)", e.Panels, e.Condition, MaxConditionNumber)
}

// InvalidPoseReferenceError is returned when a flapping velocity is requested for a point which does not exist.
type InvalidPoseReferenceError struct {
	Step, Wing, Chordwise, Spanwise int
	Point                           PanelPoint
	Reason                          string
}

func (e *InvalidPoseReferenceError) Error() string {
	return fmt.Sprintf("invalid pose reference (step %d, wing %d, panel [%d][%d], %s): %s", e.Step, e.Wing, e.Chordwise, e.Spanwise, e.Point, e.Reason)
}

// ConfigurationError is returned when the coefficients cannot be computed from the reference geometry or the
// operating point. The dimensional totals remain valid.
type ConfigurationError struct {
	Field string
	Value float64
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s = %g cannot be used to nondimensionalize", e.Field, e.Value)
}
