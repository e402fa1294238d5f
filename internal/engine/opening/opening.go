// Package opening computes the physical center and extent of every door,
// window, and passage opening from its authored percentage-or-absolute
// position, and detects physically overlapping or duplicate openings.
// Opening overlap is a blocking error, unlike room overlap, which is only
// advisory: two openings competing for the same span of wall cannot both be
// cut.
package opening

import (
	"sort"

	"github.com/planforge/planforge/internal/diag"
	"github.com/planforge/planforge/internal/engine/geom"
	"github.com/planforge/planforge/internal/engine/resolve"
	"github.com/planforge/planforge/internal/engine/unit"
	"github.com/planforge/planforge/internal/plan"
)

// Kind distinguishes where an opening came from.
type Kind string

// Opening kinds.
const (
	KindDoor       Kind = "door"
	KindDoubleDoor Kind = "double-door"
	KindWindow     Kind = "window"
	KindPassage    Kind = "passage"
)

// Opening is a resolved hole through a wall, in world coordinates.
type Opening struct {
	Kind Kind
	// Room and Wall name the wall slot the opening was computed from.
	Room string
	Wall plan.WallDirection
	// Axis is the wall's run axis; Plane the wall centerline coordinate on
	// the perpendicular axis; Center the hole center along the run axis.
	Axis   geom.Axis
	Plane  float64
	Center float64
	// Width is the hole extent along the run axis, Height its vertical
	// extent, BottomY the world height of the hole bottom.
	Width   float64
	Height  float64
	BottomY float64
	// Connection is the source connection, nil for wall-type holes.
	Connection *plan.Connection
}

// Span returns the opening's physical range along the wall run:
// center ± width/2.
func (o Opening) Span() geom.Span {
	return geom.Span{Start: o.Center - o.Width/2, End: o.Center + o.Width/2}
}

// CenterY returns the world height of the hole center.
func (o Opening) CenterY() float64 {
	return o.BottomY + o.Height/2
}

// Place computes every opening on the floor: one per connection, placed on
// the from-endpoint's wall, plus one per door/window wall-type slot. It then
// cross-checks all openings for physical overlap and duplicate bidirectional
// pairs, recording blocking diagnostics for conflicts.
//
// Precondition: fp is fully resolved; conv matches the one used during
// resolution so explicit connection sizes normalize consistently.
func Place(fp *resolve.Floorplan, conns []*plan.Connection, defaults geom.Defaults, conv *unit.Converter, diags *diag.List) []Opening {
	var openings []Opening

	for _, c := range conns {
		o, ok := placeConnection(fp, c, defaults, conv, diags)
		if ok {
			openings = append(openings, o)
		}
	}
	for _, room := range fp.Rooms {
		openings = append(openings, wallHoles(room, defaults)...)
	}

	detectDuplicatePairs(fp.Name, conns, diags)
	detectOverlaps(fp.Name, openings, diags)
	return openings
}

// placeConnection computes the world-space hole for one connection from the
// resolved geometry of its from-endpoint room.
func placeConnection(fp *resolve.Floorplan, c *plan.Connection, defaults geom.Defaults, conv *unit.Converter, diags *diag.List) (Opening, bool) {
	room, ok := fp.Room(c.From.Room)
	if !ok {
		// Endpoint rooms are checked by plan validation; an absent room here
		// means the connection references a different floor.
		diags.Error(diag.CodeMissingReference, fp.Name, []string{c.From.Room},
			"connection %s references room %q not on this floor", c.Label(), c.From.Room)
		return Opening{}, false
	}

	width := defaults.DoorWidth
	kind := KindDoor
	switch c.Type {
	case plan.ConnDoubleDoor:
		width = defaults.DoorWidth * 2
		kind = KindDoubleDoor
	case plan.ConnWindow:
		width = defaults.WindowWidth
		kind = KindWindow
	case plan.ConnOpening:
		kind = KindPassage
	}
	if c.Size != nil {
		width = conv.Normalize(c.Size.Value, c.Size.Unit)
	}

	o := Opening{
		Kind:       kind,
		Room:       room.Name,
		Wall:       c.From.Wall,
		Width:      width,
		Connection: c,
	}
	o.Axis, o.Plane, o.Center = wallPoint(room, c.From.Wall, c.Position)

	switch {
	case c.FullHeight:
		o.BottomY = room.Elevation
		o.Height = room.RoomHeight
	case c.Type == plan.ConnWindow:
		o.BottomY = room.Elevation + defaults.WindowSill
		o.Height = defaults.WindowHeight
	default:
		o.BottomY = room.Elevation
		o.Height = defaults.DoorHeight
	}
	return o, true
}

// wallHoles returns the implicit openings carried by door/window wall types,
// using slot overrides where authored and config defaults otherwise.
func wallHoles(room *resolve.Room, defaults geom.Defaults) []Opening {
	var out []Opening
	for _, dir := range plan.WallDirections {
		w := room.Wall(dir)
		if w.Type != plan.WallDoor && w.Type != plan.WallWindow {
			continue
		}

		pos := 50.0
		if w.Position != nil {
			pos = *w.Position
		}
		o := Opening{
			Room: room.Name,
			Wall: dir,
		}
		o.Axis, o.Plane, o.Center = wallPoint(room, dir, pos)

		if w.Type == plan.WallWindow {
			o.Kind = KindWindow
			o.Width = defaults.WindowWidth
			o.Height = defaults.WindowHeight
			o.BottomY = room.Elevation + defaults.WindowSill
		} else {
			o.Kind = KindDoor
			o.Width = defaults.DoorWidth
			o.Height = defaults.DoorHeight
			o.BottomY = room.Elevation
		}
		if w.Width != nil {
			o.Width = *w.Width
		}
		if w.Height != nil {
			o.Height = *w.Height
		}
		out = append(out, o)
	}
	return out
}

// wallPoint returns the run axis, wall plane, and the run-axis coordinate at
// the given percentage along the wall. Horizontal walls (top/bottom) run
// along X; vertical walls (left/right) run along Z.
func wallPoint(room *resolve.Room, dir plan.WallDirection, percent float64) (geom.Axis, float64, float64) {
	switch dir {
	case plan.WallTop:
		return geom.AxisX, room.Z, room.X + room.Width*percent/100
	case plan.WallBottom:
		return geom.AxisX, room.Z + room.Height, room.X + room.Width*percent/100
	case plan.WallLeft:
		return geom.AxisZ, room.X, room.Z + room.Height*percent/100
	default:
		return geom.AxisZ, room.X + room.Width, room.Z + room.Height*percent/100
	}
}

// detectDuplicatePairs flags bidirectional connection pairs: A→B and B→A on
// the same shared wall describe the same physical opening intent and are
// always an error, even when their percentages differ.
func detectDuplicatePairs(floor string, conns []*plan.Connection, diags *diag.List) {
	seen := make(map[[2]string]*plan.Connection)
	for _, c := range conns {
		fwd := [2]string{c.From.String(), c.To.String()}
		rev := [2]string{c.To.String(), c.From.String()}
		if prev, ok := seen[fwd]; ok {
			diags.Error(diag.CodeDuplicateOpening, floor,
				[]string{prev.Label(), c.Label()},
				"duplicate connection: %s repeats %s", c.Label(), prev.Label())
			continue
		}
		if prev, ok := seen[rev]; ok {
			diags.Error(diag.CodeDuplicateOpening, floor,
				[]string{prev.Label(), c.Label()},
				"connections %s and %s describe the same opening from both sides",
				prev.Label(), c.Label())
			continue
		}
		seen[fwd] = c
	}
}

// detectOverlaps flags pairs of connection openings whose physical ranges
// intersect on the same wall plane. Wall-type holes are authored per room and
// are not cross-checked.
func detectOverlaps(floor string, openings []Opening, diags *diag.List) {
	var conns []Opening
	for _, o := range openings {
		if o.Connection != nil {
			conns = append(conns, o)
		}
	}
	sort.SliceStable(conns, func(i, j int) bool {
		if conns[i].Plane != conns[j].Plane {
			return conns[i].Plane < conns[j].Plane
		}
		return conns[i].Center < conns[j].Center
	})

	for i := 0; i < len(conns); i++ {
		for j := i + 1; j < len(conns); j++ {
			a, b := conns[i], conns[j]
			if a.Axis != b.Axis {
				continue
			}
			if abs(a.Plane-b.Plane) > geom.AdjacencyTolerance {
				continue
			}
			if _, ok := a.Span().Overlap(b.Span(), geom.Epsilon); !ok {
				continue
			}
			if a.Connection == b.Connection {
				continue
			}
			diags.Error(diag.CodeOpeningOverlap, floor,
				[]string{a.Connection.Label(), b.Connection.Label()},
				"openings %s and %s overlap on the same wall (spans %.3g-%.3gm and %.3g-%.3gm)",
				a.Connection.Label(), b.Connection.Label(),
				a.Span().Start, a.Span().End, b.Span().Start, b.Span().End)
		}
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// ForWall filters openings to those lying on the given wall plane whose span
// overlaps the given segment span, with a small tolerance so a hole near a
// segment boundary is only cut into the segments it geometrically belongs
// to.
func ForWall(openings []Opening, axis geom.Axis, plane float64, span geom.Span) []Opening {
	var out []Opening
	for _, o := range openings {
		if o.Axis != axis {
			continue
		}
		if abs(o.Plane-plane) > geom.AdjacencyTolerance {
			continue
		}
		if _, ok := o.Span().Overlap(span, geom.Epsilon); !ok {
			continue
		}
		out = append(out, o)
	}
	return out
}
