package mesh

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/planforge/planforge/internal/plan"
)

// Material is a resolved surface finish ready for export. Colors are linear
// 0..1 components; Opacity 1 is fully opaque.
type Material struct {
	Name      string
	R, G, B   float64
	Roughness float64
	Metalness float64
	Opacity   float64
	Texture   string
}

// MaterialSet carries the three finishes of one wall segment: the owner's
// style on the front face, the neighbor's on the back face, and an edge
// finish for the top, bottom, and end caps.
type MaterialSet struct {
	Front Material
	Back  Material
	Edge  Material
}

const (
	defaultWallColor = "#e8e4da"
	glassColor       = "#9fc4d4"
	glassOpacity     = 0.35
)

// wallMaterial resolves a style into the wall finish, falling back to the
// default finish for nil styles or unparseable colors.
func wallMaterial(s *plan.Style) Material {
	m := Material{
		Name:      "wall",
		Roughness: 0.9,
		Opacity:   1,
	}
	m.R, m.G, m.B = parseColor(defaultWallColor)

	if s == nil {
		return m
	}
	m.Name = "wall-" + s.Name
	if s.WallColor != "" {
		m.R, m.G, m.B = parseColor(s.WallColor)
	}
	if s.Roughness > 0 {
		m.Roughness = s.Roughness
	}
	m.Metalness = s.Metalness
	m.Texture = s.WallTexture
	return m
}

// glassMaterial is the translucent pane finish for window openings.
func glassMaterial() Material {
	m := Material{
		Name:      "glass",
		Roughness: 0.05,
		Opacity:   glassOpacity,
	}
	m.R, m.G, m.B = parseColor(glassColor)
	return m
}

// materialsFor derives the per-face set for one segment. Exterior segments
// use the owner's finish on both faces.
func materialsFor(owner, neighbor *plan.Style) MaterialSet {
	set := MaterialSet{
		Front: wallMaterial(owner),
		Edge:  wallMaterial(owner),
	}
	set.Edge.Name += "-edge"
	if neighbor != nil {
		set.Back = wallMaterial(neighbor)
	} else {
		set.Back = wallMaterial(owner)
	}
	return set
}

// parseColor converts a hex color to linear RGB, substituting the default
// wall color when the string does not parse.
func parseColor(hex string) (r, g, b float64) {
	c, err := colorful.Hex(hex)
	if err != nil {
		c, _ = colorful.Hex(defaultWallColor)
	}
	return c.R, c.G, c.B
}
