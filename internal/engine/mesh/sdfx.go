package mesh

import (
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"
)

// Compile-time interface check.
var _ Kernel = (*SDFKernel)(nil)

// defaultMeshCells controls marching cubes tessellation resolution.
const defaultMeshCells = 200

// SDFKernel implements Kernel on github.com/deadsy/sdfx, evaluating CSG as
// signed distance fields and extracting triangles with marching cubes.
type SDFKernel struct {
	cells int
}

// NewSDFKernel returns a kernel at the default tessellation resolution.
func NewSDFKernel() *SDFKernel {
	return &SDFKernel{cells: defaultMeshCells}
}

// sdfSolid wraps an sdf.SDF3 to implement Solid.
type sdfSolid struct {
	s sdf.SDF3
}

func (s *sdfSolid) Bounds() (min, max mgl64.Vec3) {
	bb := s.s.BoundingBox()
	min = mgl64.Vec3{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = mgl64.Vec3{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

func unwrap(s Solid) sdf.SDF3 {
	return s.(*sdfSolid).s
}

func wrap(s sdf.SDF3) Solid {
	return &sdfSolid{s: s}
}

// Box creates a box with its minimum corner at the origin. sdf.Box3D centers
// the box at the origin, so we translate by half-dimensions.
func (k *SDFKernel) Box(size mgl64.Vec3) Solid {
	s, err := sdf.Box3D(v3.Vec{X: size.X(), Y: size.Y(), Z: size.Z()}, 0)
	if err != nil {
		// Box3D only fails on non-positive dimensions, which callers screen
		// for; a nil SDF3 surfaces as a Triangulate error.
		return &sdfSolid{}
	}
	m := sdf.Translate3d(v3.Vec{X: size.X() / 2, Y: size.Y() / 2, Z: size.Z() / 2})
	return wrap(sdf.Transform3D(s, m))
}

// Translate moves a solid by the given offset.
func (k *SDFKernel) Translate(s Solid, offset mgl64.Vec3) Solid {
	inner := unwrap(s)
	if inner == nil {
		return s
	}
	m := sdf.Translate3d(v3.Vec{X: offset.X(), Y: offset.Y(), Z: offset.Z()})
	return wrap(sdf.Transform3D(inner, m))
}

// Subtract returns a minus b.
func (k *SDFKernel) Subtract(a, b Solid) Solid {
	if unwrap(a) == nil || unwrap(b) == nil {
		return &sdfSolid{}
	}
	return wrap(sdf.Difference3D(unwrap(a), unwrap(b)))
}

// Triangulate extracts the solid's surface with marching cubes. A solid with
// no surface, such as a wall fully consumed by its openings, returns an
// error.
func (k *SDFKernel) Triangulate(s Solid) ([]Triangle, error) {
	sdf3 := unwrap(s)
	if sdf3 == nil {
		return nil, fmt.Errorf("triangulate: degenerate solid")
	}

	renderer := render.NewMarchingCubesUniform(k.cells)
	src := render.ToTriangles(sdf3, renderer)
	if len(src) == 0 {
		return nil, fmt.Errorf("triangulate: solid has no surface")
	}

	out := make([]Triangle, 0, len(src))
	for _, tri := range src {
		out = append(out, Triangle{
			A: mgl64.Vec3{tri[0].X, tri[0].Y, tri[0].Z},
			B: mgl64.Vec3{tri[1].X, tri[1].Y, tri[1].Z},
			C: mgl64.Vec3{tri[2].X, tri[2].Y, tri[2].Z},
		})
	}
	return out, nil
}
