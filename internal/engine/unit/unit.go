// Package unit normalizes unit-annotated scalars to canonical meters.
// Every coordinate, size, gap, and height is converted before any arithmetic
// comparison elsewhere in the engine; mixing normalized and raw values is a
// correctness bug, not a style choice.
package unit

import "fmt"

// Unit is a supported length unit.
type Unit string

// Supported units. Unspecified defers to the effective default.
const (
	Unspecified Unit = ""
	Meters      Unit = "m"
	Feet        Unit = "ft"
	Centimeters Unit = "cm"
	Inches      Unit = "in"
	Millimeters Unit = "mm"
)

// System groups units into measurement systems for mixed-system detection.
type System int

// Measurement systems.
const (
	SystemNone System = iota
	SystemMetric
	SystemImperial
)

// metersPer holds the exact conversion factor to meters for each unit.
var metersPer = map[Unit]float64{
	Meters:      1.0,
	Feet:        0.3048,
	Centimeters: 0.01,
	Inches:      0.0254,
	Millimeters: 0.001,
}

// Parse validates a unit string. The empty string parses to Unspecified.
//
// Postcondition: Returns a supported Unit or a non-nil error naming the input.
func Parse(s string) (Unit, error) {
	u := Unit(s)
	if u == Unspecified {
		return Unspecified, nil
	}
	if _, ok := metersPer[u]; !ok {
		return Unspecified, fmt.Errorf("unsupported unit %q (supported: m, ft, cm, in, mm)", s)
	}
	return u, nil
}

// System returns the measurement system the unit belongs to.
func (u Unit) System() System {
	switch u {
	case Meters, Centimeters, Millimeters:
		return SystemMetric
	case Feet, Inches:
		return SystemImperial
	default:
		return SystemNone
	}
}

// Converter normalizes scalars to meters and tracks which measurement
// systems appear explicitly in a document. Unit-less values are governed by
// the default unit and never count toward mixed-system detection.
type Converter struct {
	def          Unit
	seenMetric   bool
	seenImperial bool
}

// NewConverter creates a Converter with the given default unit for unit-less
// values. An Unspecified default falls back to meters.
func NewConverter(def Unit) *Converter {
	if def == Unspecified {
		def = Meters
	}
	return &Converter{def: def}
}

// Default returns the effective default unit.
func (c *Converter) Default() Unit {
	return c.def
}

// Normalize converts value to meters. An Unspecified unit uses the default.
//
// Postcondition: Returns the value in meters; explicit units are recorded for
// MixedSystems.
func (c *Converter) Normalize(value float64, u Unit) float64 {
	if u == Unspecified {
		return value * metersPer[c.def]
	}
	switch u.System() {
	case SystemMetric:
		c.seenMetric = true
	case SystemImperial:
		c.seenImperial = true
	}
	return value * metersPer[u]
}

// MixedSystems reports whether both metric and imperial units were explicitly
// annotated in values seen so far. Pure unit-less documents never report true.
func (c *Converter) MixedSystems() bool {
	return c.seenMetric && c.seenImperial
}
