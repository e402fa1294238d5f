package mesh

import "github.com/go-gl/mathgl/mgl64"

// boxTriangles returns the 12 triangles of an axis-aligned box with outward
// counter-clockwise winding.
func boxTriangles(min, max mgl64.Vec3) []Triangle {
	v := [8]mgl64.Vec3{
		{min.X(), min.Y(), min.Z()},
		{max.X(), min.Y(), min.Z()},
		{max.X(), max.Y(), min.Z()},
		{min.X(), max.Y(), min.Z()},
		{min.X(), min.Y(), max.Z()},
		{max.X(), min.Y(), max.Z()},
		{max.X(), max.Y(), max.Z()},
		{min.X(), max.Y(), max.Z()},
	}
	return []Triangle{
		{v[0], v[3], v[2]}, {v[0], v[2], v[1]}, // -Z
		{v[4], v[5], v[6]}, {v[4], v[6], v[7]}, // +Z
		{v[0], v[1], v[5]}, {v[0], v[5], v[4]}, // -Y
		{v[3], v[7], v[6]}, {v[3], v[6], v[2]}, // +Y
		{v[0], v[4], v[7]}, {v[0], v[7], v[3]}, // -X
		{v[1], v[2], v[6]}, {v[1], v[6], v[5]}, // +X
	}
}
