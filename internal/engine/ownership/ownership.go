// Package ownership determines, for every wall of every resolved room, which
// room renders it. When two rooms share a wall boundary exactly one of them
// draws the shared span, preventing duplicate coincident geometry; when a
// wall abuts several differently-styled neighbors it is split into ordered
// segments so each span carries a single owner/neighbor style pairing.
//
// The tie-break is an explicit total order, not an iteration-order accident:
// the lexicographically smaller room name renders a shared span. Room names
// are unique per floor, so no secondary key is needed.
package ownership

import (
	"sort"

	"github.com/planforge/planforge/internal/diag"
	"github.com/planforge/planforge/internal/engine/geom"
	"github.com/planforge/planforge/internal/engine/resolve"
	"github.com/planforge/planforge/internal/plan"
)

// Segment is a sub-span of a wall with one consistent owner/neighbor pairing.
type Segment struct {
	// Span is the segment extent in world coordinates along the wall's run
	// axis.
	Span geom.Span
	// Render reports whether this room draws the segment. False means the
	// neighbor across the boundary draws it instead.
	Render bool
	// Neighbor names the room across the boundary, or "" for an exterior
	// span.
	Neighbor string
	// NeighborStyle is the adjoining room's style, nil for exterior spans or
	// unstyled neighbors.
	NeighborStyle *plan.Style
}

// WallPlan describes one wall slot of one room after ownership analysis.
type WallPlan struct {
	Room      *resolve.Room
	Direction plan.WallDirection
	Wall      resolve.Wall
	// Axis is the world axis the wall runs along; Plane is the wall
	// centerline coordinate on the perpendicular axis.
	Axis  geom.Axis
	Plane float64
	// Span is the full wall extent along the run axis.
	Span geom.Span
	// Segments partition Span in ascending order.
	Segments []Segment
}

// neighborSpan records one adjacent room's clipped extent along a wall.
type neighborSpan struct {
	room *resolve.Room
	span geom.Span
}

// Analyze computes wall plans for every room on the floor. The result is
// deterministic for identical resolved geometry: segment boundaries come from
// sorted coordinates and ownership from the name order, never from slice or
// map traversal order.
//
// Shared-wall type and room-height mismatches between neighbors are reported
// as advisory warnings, once per adjoining pair.
func Analyze(fp *resolve.Floorplan, diags *diag.List) []WallPlan {
	var plans []WallPlan
	warned := make(map[[2]string]bool)

	for _, room := range fp.Rooms {
		for _, dir := range plan.WallDirections {
			wp := analyzeWall(fp, room, dir)
			warnMismatches(fp, room, dir, wp, warned, diags)
			plans = append(plans, wp)
		}
	}
	return plans
}

// analyzeWall finds the neighbors across one wall and splits it into
// segments at every neighbor-boundary crossing.
func analyzeWall(fp *resolve.Floorplan, room *resolve.Room, dir plan.WallDirection) WallPlan {
	axis, plane, span := wallExtent(room, dir)
	wp := WallPlan{
		Room:      room,
		Direction: dir,
		Wall:      room.Wall(dir),
		Axis:      axis,
		Plane:     plane,
		Span:      span,
	}

	neighbors := findNeighbors(fp, room, dir, plane, span)

	// Segment boundaries are the union of all neighbor-boundary crossings
	// along the wall, clipped to the wall span.
	cuts := []float64{span.Start, span.End}
	for _, n := range neighbors {
		cuts = append(cuts, n.span.Start, n.span.End)
	}
	sort.Float64s(cuts)
	cuts = dedupe(cuts, geom.Epsilon)

	for i := 0; i+1 < len(cuts); i++ {
		seg := geom.Span{Start: cuts[i], End: cuts[i+1]}
		if seg.Length() <= geom.Epsilon {
			continue
		}
		mid := (seg.Start + seg.End) / 2
		n := neighborAt(neighbors, mid)

		s := Segment{Span: seg, Render: true}
		if n != nil {
			s.Neighbor = n.Name
			s.NeighborStyle = n.Style
			s.Render = room.Name < n.Name
		}
		wp.Segments = append(wp.Segments, s)
	}
	return wp
}

// wallExtent returns the run axis, centerline plane, and world span of a
// room's wall slot.
func wallExtent(room *resolve.Room, dir plan.WallDirection) (geom.Axis, float64, geom.Span) {
	switch dir {
	case plan.WallTop:
		return geom.AxisX, room.Z, room.SpanX()
	case plan.WallBottom:
		return geom.AxisX, room.Z + room.Height, room.SpanX()
	case plan.WallLeft:
		return geom.AxisZ, room.X, room.SpanZ()
	default:
		return geom.AxisZ, room.X + room.Width, room.SpanZ()
	}
}

// findNeighbors scans all other rooms for an edge coincident with the wall
// plane (within the adjacency tolerance) whose extent overlaps the wall span.
// Results are sorted by name so later selection is order-independent.
func findNeighbors(fp *resolve.Floorplan, room *resolve.Room, dir plan.WallDirection, plane float64, span geom.Span) []neighborSpan {
	var out []neighborSpan
	for _, other := range fp.Rooms {
		if other.Name == room.Name {
			continue
		}
		_, otherPlane, otherSpan := wallExtent(other, dir.Opposite())
		if abs(otherPlane-plane) > geom.AdjacencyTolerance {
			continue
		}
		clipped, ok := span.Overlap(otherSpan, geom.AdjacencyTolerance)
		if !ok {
			continue
		}
		out = append(out, neighborSpan{room: other, span: clipped})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].room.Name < out[j].room.Name
	})
	return out
}

// neighborAt returns the first neighbor (in name order) covering the given
// run-axis coordinate, or nil.
func neighborAt(neighbors []neighborSpan, at float64) *resolve.Room {
	for _, n := range neighbors {
		if n.span.Contains(at, geom.Epsilon) {
			return n.room
		}
	}
	return nil
}

// warnMismatches reports shared-wall type and room-height disagreements
// between adjoining rooms. Each pair warns at most once.
func warnMismatches(fp *resolve.Floorplan, room *resolve.Room, dir plan.WallDirection, wp WallPlan, warned map[[2]string]bool, diags *diag.List) {
	for _, seg := range wp.Segments {
		if seg.Neighbor == "" || room.Name >= seg.Neighbor {
			continue
		}
		key := [2]string{room.Name, seg.Neighbor}
		if warned[key] {
			continue
		}
		neighbor, ok := fp.Room(seg.Neighbor)
		if !ok {
			continue
		}
		myType := room.Wall(dir).Type
		theirType := neighbor.Wall(dir.Opposite()).Type
		if myType != theirType {
			warned[key] = true
			diags.Warn(diag.CodeWallMismatch, fp.Name, []string{room.Name, seg.Neighbor},
				"rooms %q and %q disagree on their shared wall type (%s vs %s)",
				room.Name, seg.Neighbor, myType, theirType)
			continue
		}
		if abs(room.RoomHeight-neighbor.RoomHeight) > geom.Epsilon {
			warned[key] = true
			diags.Warn(diag.CodeWallMismatch, fp.Name, []string{room.Name, seg.Neighbor},
				"rooms %q and %q have different heights across a shared wall (%.3gm vs %.3gm)",
				room.Name, seg.Neighbor, room.RoomHeight, neighbor.RoomHeight)
		}
	}
}

func dedupe(sorted []float64, tol float64) []float64 {
	out := sorted[:0]
	for _, v := range sorted {
		if len(out) == 0 || v-out[len(out)-1] > tol {
			out = append(out, v)
		}
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
