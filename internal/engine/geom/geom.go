// Package geom holds the small shared geometric vocabulary of the engine:
// axes, tolerances, 1D spans, and the normalized geometry defaults every
// stage consumes. All values are in canonical meters.
package geom

import (
	"github.com/planforge/planforge/internal/config"
	"github.com/planforge/planforge/internal/engine/unit"
)

// Tolerances, in meters.
const (
	// Epsilon is the tolerance for exact comparisons of normalized values.
	Epsilon = 1e-6
	// AdjacencyTolerance absorbs floating-point noise from unit conversion
	// when testing whether two room edges share a wall plane.
	AdjacencyTolerance = 1e-3
)

// Axis identifies the world axis a wall runs along.
type Axis int

// Wall run axes on the X/Z ground plane.
const (
	AxisX Axis = iota
	AxisZ
)

// String returns "x" or "z".
func (a Axis) String() string {
	if a == AxisX {
		return "x"
	}
	return "z"
}

// Span is a closed 1D interval.
type Span struct {
	Start float64
	End   float64
}

// Length returns the span extent.
func (s Span) Length() float64 {
	return s.End - s.Start
}

// Overlap returns the intersection of two spans and whether its length
// exceeds the given tolerance.
func (s Span) Overlap(o Span, tol float64) (Span, bool) {
	start := max(s.Start, o.Start)
	end := min(s.End, o.End)
	if end-start <= tol {
		return Span{}, false
	}
	return Span{Start: start, End: end}, true
}

// Contains reports whether v lies inside the span with the given tolerance.
func (s Span) Contains(v, tol float64) bool {
	return v > s.Start-tol && v < s.End+tol
}

// Defaults carries the config geometry defaults normalized to meters.
type Defaults struct {
	WallThickness  float64
	WallHeight     float64
	DoorWidth      float64
	DoorHeight     float64
	WindowWidth    float64
	WindowHeight   float64
	WindowSill     float64
	GlassThickness float64
}

// NormalizeDefaults converts the raw config values, expressed in the config
// default unit, into canonical meters. The conversion uses a throwaway
// converter so config values never contribute to a document's mixed-unit
// tracking.
func NormalizeDefaults(g config.GeometryConfig) Defaults {
	c := unit.NewConverter(g.Unit())
	return Defaults{
		WallThickness:  c.Normalize(g.WallThickness, unit.Unspecified),
		WallHeight:     c.Normalize(g.WallHeight, unit.Unspecified),
		DoorWidth:      c.Normalize(g.DoorWidth, unit.Unspecified),
		DoorHeight:     c.Normalize(g.DoorHeight, unit.Unspecified),
		WindowWidth:    c.Normalize(g.WindowWidth, unit.Unspecified),
		WindowHeight:   c.Normalize(g.WindowHeight, unit.Unspecified),
		WindowSill:     c.Normalize(g.WindowSill, unit.Unspecified),
		GlassThickness: c.Normalize(g.GlassThickness, unit.Unspecified),
	}
}
