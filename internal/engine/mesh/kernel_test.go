package mesh

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVolume_ClosedBox(t *testing.T) {
	tris := boxTriangles(mgl64.Vec3{1, 2, 3}, mgl64.Vec3{4, 4, 5})
	require.Len(t, tris, 12)
	assert.InDelta(t, 3*2*2, Volume(tris), 1e-9)
}

func TestTriangleNormal_Degenerate(t *testing.T) {
	tri := Triangle{
		A: mgl64.Vec3{1, 1, 1},
		B: mgl64.Vec3{1, 1, 1},
		C: mgl64.Vec3{2, 2, 2},
	}
	assert.Equal(t, mgl64.Vec3{}, tri.Normal())
}

func TestBoxTriangles_OutwardWinding(t *testing.T) {
	min := mgl64.Vec3{0, 0, 0}
	max := mgl64.Vec3{2, 2, 2}
	center := mgl64.Vec3{1, 1, 1}

	for i, tri := range boxTriangles(min, max) {
		mid := tri.A.Add(tri.B).Add(tri.C).Mul(1.0 / 3.0)
		outward := mid.Sub(center)
		assert.Greater(t, tri.Normal().Dot(outward), 0.0, "triangle %d winds inward", i)
	}
}

func TestCountingKernel_Counts(t *testing.T) {
	k := NewCountingKernel(NewSDFKernel())

	a := k.Translate(k.Box(mgl64.Vec3{2, 2, 2}), mgl64.Vec3{0, 0, 0})
	b := k.Box(mgl64.Vec3{1, 1, 1})
	_, err := k.Triangulate(k.Subtract(a, b))

	require.NoError(t, err)
	assert.Equal(t, 2, k.Boxes)
	assert.Equal(t, 1, k.Translates)
	assert.Equal(t, 1, k.Subtracts)
	assert.Equal(t, 1, k.Triangulates)
}

func TestSDFKernel_BoxVolume(t *testing.T) {
	k := NewSDFKernel()
	tris, err := k.Triangulate(k.Box(mgl64.Vec3{1, 1, 1}))
	require.NoError(t, err)
	require.NotEmpty(t, tris)

	// Marching cubes approximates the surface; allow a few percent.
	assert.InDelta(t, 1.0, Volume(tris), 0.05)
}

func TestSDFKernel_BoxMinCornerAtOrigin(t *testing.T) {
	k := NewSDFKernel()
	min, max := k.Box(mgl64.Vec3{2, 3, 4}).Bounds()
	assert.InDelta(t, 0, min.X(), 1e-9)
	assert.InDelta(t, 0, min.Y(), 1e-9)
	assert.InDelta(t, 0, min.Z(), 1e-9)
	assert.InDelta(t, 2, max.X(), 1e-9)
	assert.InDelta(t, 3, max.Y(), 1e-9)
	assert.InDelta(t, 4, max.Z(), 1e-9)
}
