package mesh

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/planforge/planforge/internal/diag"
	"github.com/planforge/planforge/internal/engine/geom"
	"github.com/planforge/planforge/internal/engine/opening"
	"github.com/planforge/planforge/internal/engine/ownership"
	"github.com/planforge/planforge/internal/plan"
)

// MeshKind distinguishes the geometry classes in the output.
type MeshKind string

// Mesh kinds.
const (
	KindWall  MeshKind = "wall"
	KindGlass MeshKind = "glass"
)

// Face material slots within Mesh.Materials.
const (
	faceFront = 0
	faceBack  = 1
	faceEdge  = 2
)

// Mesh is one generated geometry object with per-triangle material
// assignment.
type Mesh struct {
	ID   uuid.UUID
	Name string
	Kind MeshKind
	// Room names the owning room.
	Room      string
	Triangles []Triangle
	// MaterialIndex[i] selects the entry of Materials for Triangles[i].
	MaterialIndex []int
	Materials     []Material
}

// Volume returns the enclosed volume in cubic meters.
func (m *Mesh) Volume() float64 {
	return Volume(m.Triangles)
}

// DoorPlacement hands a door opening to an external door renderer: the hole
// center, its orientation, and the source connection when one exists.
type DoorPlacement struct {
	Room string
	Wall plan.WallDirection
	// Axis is the wall run axis the leaf swings across.
	Axis   geom.Axis
	Center mgl64.Vec3
	Width  float64
	Height float64
	Double bool
	// Connection is nil for door wall-type slots.
	Connection *plan.Connection
}

// Output is the generated geometry for one floor.
type Output struct {
	Meshes []*Mesh
	Doors  []DoorPlacement
}

// Generator builds wall and auxiliary meshes from ownership segments and
// placed openings.
type Generator struct {
	kernel   Kernel
	defaults geom.Defaults
	logger   *zap.Logger
}

// NewGenerator wires a generator to its CSG kernel.
//
// Precondition: logger is non-nil; pass zap.NewNop() when logging is
// unwanted.
func NewGenerator(kernel Kernel, defaults geom.Defaults, logger *zap.Logger) *Generator {
	return &Generator{kernel: kernel, defaults: defaults, logger: logger}
}

// Generate emits one mesh per rendered wall segment, glass panes for window
// openings, and door placements for the external door renderer. Segments the
// room does not render are skipped entirely; their geometry is produced by
// the neighbor. Walls of type open produce no geometry.
//
// Postcondition: every returned wall mesh is a closed manifold; failed CSG
// cuts fall back to the uncut wall and record an advisory diagnostic.
func (g *Generator) Generate(ctx context.Context, floor string, walls []ownership.WallPlan, openings []opening.Opening, diags *diag.List) (*Output, error) {
	out := &Output{}

	for _, o := range openings {
		switch o.Kind {
		case opening.KindDoor, opening.KindDoubleDoor:
			out.Doors = append(out.Doors, doorPlacement(o))
		case opening.KindWindow:
			out.Meshes = append(out.Meshes, g.glassPane(o))
		}
	}

	for i := range walls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		wp := &walls[i]
		if wp.Wall.Type == plan.WallOpen {
			continue
		}
		for si, seg := range wp.Segments {
			if !seg.Render {
				continue
			}
			out.Meshes = append(out.Meshes, g.buildSegment(floor, wp, si, seg, openings, diags))
		}
	}

	g.logger.Debug("generated floor geometry",
		zap.String("floor", floor),
		zap.Int("meshes", len(out.Meshes)),
		zap.Int("doors", len(out.Doors)))
	return out, nil
}

// buildSegment produces the wall mesh for one rendered segment. Segments
// without openings become exact boxes without touching the CSG kernel.
func (g *Generator) buildSegment(floor string, wp *ownership.WallPlan, si int, seg ownership.Segment, openings []opening.Opening, diags *diag.List) *Mesh {
	mats := materialsFor(wp.Room.Style, seg.NeighborStyle)
	m := &Mesh{
		ID:        uuid.New(),
		Name:      fmt.Sprintf("wall:%s:%s:%d", wp.Room.Name, wp.Direction, si),
		Kind:      KindWall,
		Room:      wp.Room.Name,
		Materials: []Material{mats.Front, mats.Back, mats.Edge},
	}

	min, max := g.segmentBounds(wp, seg)
	holes := opening.ForWall(openings, wp.Axis, wp.Plane, seg.Span)

	var tris []Triangle
	if len(holes) == 0 {
		tris = boxTriangles(min, max)
	} else {
		var err error
		tris, err = g.cutSegment(min, max, wp, seg, holes)
		if err != nil {
			diags.Warn(diag.CodeCSGFallback, floor, []string{wp.Room.Name},
				"wall %s of room %q rendered without its openings: %v",
				wp.Direction, wp.Room.Name, err)
			g.logger.Warn("csg fallback",
				zap.String("room", wp.Room.Name),
				zap.String("wall", string(wp.Direction)),
				zap.Error(err))
			tris = boxTriangles(min, max)
		}
	}

	front := g.frontNormal(wp.Direction)
	m.Triangles = tris
	m.MaterialIndex = make([]int, len(tris))
	for i, t := range tris {
		m.MaterialIndex[i] = classifyFace(t.Normal(), front)
	}
	return m
}

// segmentBounds computes the axis-aligned extent of a segment's wall volume.
func (g *Generator) segmentBounds(wp *ownership.WallPlan, seg ownership.Segment) (min, max mgl64.Vec3) {
	t := g.defaults.WallThickness
	y0 := wp.Room.Elevation
	y1 := y0 + wp.Room.RoomHeight

	if wp.Axis == geom.AxisX {
		min = mgl64.Vec3{seg.Span.Start, y0, wp.Plane - t/2}
		max = mgl64.Vec3{seg.Span.End, y1, wp.Plane + t/2}
	} else {
		min = mgl64.Vec3{wp.Plane - t/2, y0, seg.Span.Start}
		max = mgl64.Vec3{wp.Plane + t/2, y1, seg.Span.End}
	}
	return min, max
}

// cutSegment subtracts every hole volume from the segment box and
// triangulates the result. A hole that consumes the whole segment, or a CSG
// result with no surface, is reported as an error so the caller can fall
// back to the uncut wall.
func (g *Generator) cutSegment(min, max mgl64.Vec3, wp *ownership.WallPlan, seg ownership.Segment, holes []opening.Opening) ([]Triangle, error) {
	for _, h := range holes {
		if consumesSegment(h, seg.Span, wp.Room.Elevation, wp.Room.RoomHeight) {
			return nil, fmt.Errorf("opening at %.3gm consumes the whole segment", h.Center)
		}
	}

	size := max.Sub(min)
	solid := g.kernel.Translate(g.kernel.Box(size), min)

	// Hole boxes extend past both wall faces so the cut never leaves a
	// zero-thickness film.
	depth := size[axisIndexAcross(wp.Axis)] * 2
	for _, h := range holes {
		span := h.Span()
		hsize, hmin := holeBox(wp.Axis, wp.Plane, span, h.BottomY, h.Height, depth)
		hole := g.kernel.Translate(g.kernel.Box(hsize), hmin)
		solid = g.kernel.Subtract(solid, hole)
	}

	return g.kernel.Triangulate(solid)
}

// holeBox returns the size and minimum corner of one hole volume.
func holeBox(axis geom.Axis, plane float64, span geom.Span, bottomY, height, depth float64) (size, min mgl64.Vec3) {
	if axis == geom.AxisX {
		size = mgl64.Vec3{span.Length(), height, depth}
		min = mgl64.Vec3{span.Start, bottomY, plane - depth/2}
	} else {
		size = mgl64.Vec3{depth, height, span.Length()}
		min = mgl64.Vec3{plane - depth/2, bottomY, span.Start}
	}
	return size, min
}

// consumesSegment reports whether a hole covers the segment's full run and
// full height, which would leave nothing to triangulate.
func consumesSegment(h opening.Opening, span geom.Span, elevation, roomHeight float64) bool {
	hs := h.Span()
	if hs.Start > span.Start+geom.AdjacencyTolerance || hs.End < span.End-geom.AdjacencyTolerance {
		return false
	}
	return h.BottomY <= elevation+geom.AdjacencyTolerance &&
		h.BottomY+h.Height >= elevation+roomHeight-geom.AdjacencyTolerance
}

// glassPane emits the translucent pane for a window opening, a thin box
// centered in the wall at the hole center.
func (g *Generator) glassPane(o opening.Opening) *Mesh {
	gt := g.defaults.GlassThickness
	span := o.Span()

	var min, max mgl64.Vec3
	if o.Axis == geom.AxisX {
		min = mgl64.Vec3{span.Start, o.BottomY, o.Plane - gt/2}
		max = mgl64.Vec3{span.End, o.BottomY + o.Height, o.Plane + gt/2}
	} else {
		min = mgl64.Vec3{o.Plane - gt/2, o.BottomY, span.Start}
		max = mgl64.Vec3{o.Plane + gt/2, o.BottomY + o.Height, span.End}
	}

	tris := boxTriangles(min, max)
	m := &Mesh{
		ID:            uuid.New(),
		Name:          fmt.Sprintf("glass:%s:%s", o.Room, o.Wall),
		Kind:          KindGlass,
		Room:          o.Room,
		Triangles:     tris,
		MaterialIndex: make([]int, len(tris)),
		Materials:     []Material{glassMaterial()},
	}
	return m
}

// doorPlacement converts a door opening into the record handed to the
// external door renderer.
func doorPlacement(o opening.Opening) DoorPlacement {
	d := DoorPlacement{
		Room:       o.Room,
		Wall:       o.Wall,
		Axis:       o.Axis,
		Width:      o.Width,
		Height:     o.Height,
		Double:     o.Kind == opening.KindDoubleDoor,
		Connection: o.Connection,
	}
	if o.Axis == geom.AxisX {
		d.Center = mgl64.Vec3{o.Center, o.CenterY(), o.Plane}
	} else {
		d.Center = mgl64.Vec3{o.Plane, o.CenterY(), o.Center}
	}
	return d
}

// frontNormal is the outward normal of a wall's interior face. The interior
// of the room lies past the wall plane in this direction.
func (g *Generator) frontNormal(dir plan.WallDirection) mgl64.Vec3 {
	switch dir {
	case plan.WallTop:
		return mgl64.Vec3{0, 0, 1}
	case plan.WallBottom:
		return mgl64.Vec3{0, 0, -1}
	case plan.WallLeft:
		return mgl64.Vec3{1, 0, 0}
	default:
		return mgl64.Vec3{-1, 0, 0}
	}
}

// classifyFace maps a triangle normal onto a material slot. Faces closely
// aligned with the interior normal are front, opposed ones are back, and
// everything else (tops, sills, jambs, end caps) is edge.
func classifyFace(n, front mgl64.Vec3) int {
	const alignment = 0.7
	d := n.Dot(front)
	switch {
	case d > alignment:
		return faceFront
	case d < -alignment:
		return faceBack
	default:
		return faceEdge
	}
}

// axisIndexAcross returns the Vec3 component index perpendicular to a wall's
// run axis on the ground plane.
func axisIndexAcross(run geom.Axis) int {
	if run == geom.AxisX {
		return 2
	}
	return 0
}
