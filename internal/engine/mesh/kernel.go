// Package mesh turns ownership segments and placed openings into renderable
// 3D wall meshes. Solid walls become boxes; walls with openings are cut with
// a CSG evaluator behind a narrow Kernel interface, keeping wall-by-wall
// generation independent and safe to parallelize.
package mesh

import "github.com/go-gl/mathgl/mgl64"

// Solid is an opaque CSG volume produced and consumed by a Kernel.
type Solid interface {
	// Bounds returns the axis-aligned bounding box.
	Bounds() (min, max mgl64.Vec3)
}

// Kernel is the CSG evaluator used for cutting openings out of wall volumes.
// Implementations must be safe for reuse across many operations.
type Kernel interface {
	// Box creates a box of the given dimensions with its minimum corner at
	// the origin.
	Box(size mgl64.Vec3) Solid
	// Translate moves a solid by the given offset.
	Translate(s Solid, offset mgl64.Vec3) Solid
	// Subtract returns a minus b.
	Subtract(a, b Solid) Solid
	// Triangulate converts a solid to triangles. Degenerate solids return a
	// non-nil error rather than panicking.
	Triangulate(s Solid) ([]Triangle, error)
}

// Triangle is a single mesh face with counter-clockwise winding.
type Triangle struct {
	A, B, C mgl64.Vec3
}

// Normal returns the unit face normal, or the zero vector for a degenerate
// triangle.
func (t Triangle) Normal() mgl64.Vec3 {
	n := t.B.Sub(t.A).Cross(t.C.Sub(t.A))
	if n.Len() == 0 {
		return mgl64.Vec3{}
	}
	return n.Normalize()
}

// Volume returns the enclosed volume of a closed triangle mesh via the
// divergence theorem. Open or inverted meshes yield meaningless results.
func Volume(tris []Triangle) float64 {
	var v float64
	for _, t := range tris {
		v += t.A.Dot(t.B.Cross(t.C)) / 6
	}
	if v < 0 {
		return -v
	}
	return v
}
