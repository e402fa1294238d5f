package mesh

import "github.com/go-gl/mathgl/mgl64"

// CountingKernel wraps a Kernel and counts operations. Tests use it to assert
// that walls without openings never reach the CSG evaluator.
type CountingKernel struct {
	inner Kernel

	Boxes        int
	Translates   int
	Subtracts    int
	Triangulates int
}

var _ Kernel = (*CountingKernel)(nil)

// NewCountingKernel wraps inner with operation counters.
func NewCountingKernel(inner Kernel) *CountingKernel {
	return &CountingKernel{inner: inner}
}

func (k *CountingKernel) Box(size mgl64.Vec3) Solid {
	k.Boxes++
	return k.inner.Box(size)
}

func (k *CountingKernel) Translate(s Solid, offset mgl64.Vec3) Solid {
	k.Translates++
	return k.inner.Translate(s, offset)
}

func (k *CountingKernel) Subtract(a, b Solid) Solid {
	k.Subtracts++
	return k.inner.Subtract(a, b)
}

func (k *CountingKernel) Triangulate(s Solid) ([]Triangle, error) {
	k.Triangulates++
	return k.inner.Triangulate(s)
}
