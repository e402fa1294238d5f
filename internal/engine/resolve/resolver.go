// Package resolve turns authored room positions, absolute or relative, into
// concrete floor geometry in canonical meters. Relative placement clauses are
// processed in dependency order; cycles and dangling references are reported
// as blocking diagnostics and yield no geometry for the floor, while
// overlapping resolved rooms are reported as advisory warnings.
//
// Resolution never mutates the input entity tree: it produces a fresh
// Floorplan so a failed or cancelled run leaves the authored plan untouched.
package resolve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/planforge/planforge/internal/diag"
	"github.com/planforge/planforge/internal/engine/geom"
	"github.com/planforge/planforge/internal/engine/unit"
	"github.com/planforge/planforge/internal/plan"
)

// Wall is a resolved wall slot with normalized overrides.
type Wall struct {
	Direction plan.WallDirection
	Type      plan.WallType
	// Width and Height override the implicit opening of door/window wall
	// types, in meters.
	Width  *float64
	Height *float64
	// Position is the opening center as a percentage along the wall run.
	Position *float64
}

// Room is a fully resolved room: absolute origin and extents in meters.
type Room struct {
	Name string
	// Index is the creation index within the floor's room list.
	Index int
	// X, Z locate the room's minimum corner on the ground plane.
	X float64
	Z float64
	// Width spans X, Height spans Z.
	Width  float64
	Height float64
	// RoomHeight is the ceiling height, Elevation the floor lift above the
	// ground plane.
	RoomHeight float64
	Elevation  float64
	// Style is the resolved style, or nil for defaults.
	Style *plan.Style
	walls [4]Wall
}

// Wall returns the resolved wall slot for the given direction.
func (r *Room) Wall(dir plan.WallDirection) Wall {
	return r.walls[wallIndex(dir)]
}

// SpanX returns the room's X extent.
func (r *Room) SpanX() geom.Span {
	return geom.Span{Start: r.X, End: r.X + r.Width}
}

// SpanZ returns the room's Z extent.
func (r *Room) SpanZ() geom.Span {
	return geom.Span{Start: r.Z, End: r.Z + r.Height}
}

// Floorplan is the resolved geometry of one floor. Rooms appear in creation
// order; the name index makes missing-room lookups a typed failure instead of
// a nil deref.
type Floorplan struct {
	Name  string
	Rooms []*Room
	index map[string]int
}

// Room returns the resolved room with the given name.
//
// Postcondition: Returns (room, true) if found, or (nil, false) otherwise.
func (f *Floorplan) Room(name string) (*Room, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.Rooms[i], true
}

// resolution state machine
type state int

const (
	stateUnresolved state = iota
	stateResolving
	stateResolved
)

// Resolve computes absolute coordinates for every room on the floor.
//
// Precondition: floor has passed plan.Validate; conv carries the effective
// document default unit.
// Postcondition: Returns the resolved floorplan, or nil when a structural
// error (cycle, missing reference) was recorded in diags. Advisory overlap
// warnings never cause a nil return.
func Resolve(floor *plan.Floor, styles map[string]*plan.Style, defaults geom.Defaults, conv *unit.Converter, diags *diag.List) *Floorplan {
	n := len(floor.Rooms)
	index := make(map[string]int, n)
	for i, r := range floor.Rooms {
		index[r.Name] = i
	}

	// Dependency edges: a relatively placed room depends on its reference.
	// Missing references are collected exhaustively before aborting so one
	// pass reports every dangling name.
	dependents := make([][]int, n)
	missing := false
	for i, r := range floor.Rooms {
		if r.Placement == nil {
			continue
		}
		ref, ok := index[r.Placement.Reference]
		if !ok {
			diags.Error(diag.CodeMissingReference, floor.Name,
				[]string{r.Name, r.Placement.Reference},
				"room %q references unknown room %q", r.Name, r.Placement.Reference)
			missing = true
			continue
		}
		dependents[ref] = append(dependents[ref], i)
	}
	if missing {
		return nil
	}

	fp := &Floorplan{
		Name:  floor.Name,
		Rooms: make([]*Room, n),
		index: index,
	}
	states := make([]state, n)

	// Kahn's algorithm, FIFO-seeded in creation order so resolution is
	// deterministic regardless of map iteration.
	var queue []int
	for i, r := range floor.Rooms {
		if r.Placement == nil {
			queue = append(queue, i)
		}
	}

	resolved := 0
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]

		src := floor.Rooms[i]
		states[i] = stateResolving
		fp.Rooms[i] = resolveRoom(src, i, fp, styles, defaults, conv)
		states[i] = stateResolved
		resolved++

		queue = append(queue, dependents[i]...)
	}

	if resolved < n {
		reportCycles(floor, states, index, diags)
		return nil
	}

	warnOverlaps(fp, floor.Name, diags)
	return fp
}

// resolveRoom normalizes a room's scalars and computes its absolute origin.
// The reference room, if any, is already resolved.
func resolveRoom(src *plan.Room, idx int, fp *Floorplan, styles map[string]*plan.Style, defaults geom.Defaults, conv *unit.Converter) *Room {
	norm := func(m plan.Measure) float64 {
		u := m.Unit
		if u == unit.Unspecified {
			u = src.Unit
		}
		return conv.Normalize(m.Value, u)
	}

	r := &Room{
		Name:       src.Name,
		Index:      idx,
		Width:      norm(src.Width),
		Height:     norm(src.Height),
		RoomHeight: defaults.WallHeight,
	}
	if src.RoomHeight != nil {
		r.RoomHeight = norm(*src.RoomHeight)
	}
	if src.Elevation != nil {
		r.Elevation = norm(*src.Elevation)
	}
	if src.Style != "" {
		r.Style = styles[src.Style]
	}
	for _, dir := range plan.WallDirections {
		slot := src.WallSlot(dir)
		w := Wall{Direction: dir, Type: slot.Type, Position: slot.Position}
		if slot.Width != nil {
			v := norm(*slot.Width)
			w.Width = &v
		}
		if slot.Height != nil {
			v := norm(*slot.Height)
			w.Height = &v
		}
		r.walls[wallIndex(dir)] = w
	}

	if src.Position != nil {
		r.X = norm(src.Position.X)
		r.Z = norm(src.Position.Z)
		return r
	}

	pl := src.Placement
	ref := fp.Rooms[fp.index[pl.Reference]]
	gap := 0.0
	if pl.Gap != nil {
		gap = norm(*pl.Gap)
	}

	// Primary axes: the direction pushes the room away from the reference
	// by the gap. The free axis defaults to the matching edge (top edges
	// flush for horizontal directions, left edges flush for vertical).
	switch pl.Direction.Horizontal() {
	case 1:
		r.X = ref.X + ref.Width + gap
	case -1:
		r.X = ref.X - r.Width - gap
	default:
		r.X = ref.X
	}
	switch pl.Direction.Vertical() {
	case 1:
		r.Z = ref.Z + ref.Height + gap
	case -1:
		r.Z = ref.Z - r.Height - gap
	default:
		r.Z = ref.Z
	}

	applyAlignment(r, ref, pl.Direction, pl.Align)
	return r
}

// applyAlignment pins the aligned edge (or centers) on the cross-axis,
// overriding the default flush placement. The push axis of the direction is
// never touched: an edge align naming it is ignored, and center only applies
// where the direction leaves exactly one axis free. Edge aligns on a diagonal
// override the corresponding axis pin.
func applyAlignment(r, ref *Room, dir plan.PlaceDirection, align plan.Alignment) {
	horizontal := dir.Horizontal() != 0
	vertical := dir.Vertical() != 0

	switch align {
	case plan.AlignTop:
		if horizontal {
			r.Z = ref.Z
		}
	case plan.AlignBottom:
		if horizontal {
			r.Z = ref.Z + ref.Height - r.Height
		}
	case plan.AlignLeft:
		if vertical {
			r.X = ref.X
		}
	case plan.AlignRight:
		if vertical {
			r.X = ref.X + ref.Width - r.Width
		}
	case plan.AlignCenter:
		if horizontal && !vertical {
			r.Z = ref.Z + (ref.Height-r.Height)/2
		}
		if vertical && !horizontal {
			r.X = ref.X + (ref.Width-r.Width)/2
		}
	}
}

// reportCycles walks the placement references of every unresolved room to
// recover each dependency cycle and emits one error per cycle naming all of
// its members.
func reportCycles(floor *plan.Floor, states []state, index map[string]int, diags *diag.List) {
	reported := make(map[int]bool)

	for i := range floor.Rooms {
		if states[i] == stateResolved || reported[i] {
			continue
		}
		// Follow references until a repeat; the repeat closes the cycle.
		seen := make(map[int]int)
		path := []int{}
		cur := i
		for {
			if states[cur] == stateResolved || reported[cur] {
				break
			}
			if at, ok := seen[cur]; ok {
				emitCycle(floor, path[at:], diags)
				break
			}
			seen[cur] = len(path)
			path = append(path, cur)
			cur = index[floor.Rooms[cur].Placement.Reference]
		}
		for _, m := range path {
			reported[m] = true
		}
	}
}

// emitCycle reports one cycle with members in name order so the diagnostic is
// stable across runs.
func emitCycle(floor *plan.Floor, cycle []int, diags *diag.List) {
	names := make([]string, len(cycle))
	for i, m := range cycle {
		names[i] = floor.Rooms[m].Name
	}
	sort.Strings(names)
	diags.Error(diag.CodeCycle, floor.Name, names,
		"placement cycle between rooms %s", strings.Join(names, ", "))
}

// warnOverlaps runs a pairwise bounding-box scan over the resolved rooms and
// reports each overlapping pair. Overlap is advisory: downstream stages still
// run with each room's authored values.
func warnOverlaps(fp *Floorplan, floor string, diags *diag.List) {
	for i := 0; i < len(fp.Rooms); i++ {
		for j := i + 1; j < len(fp.Rooms); j++ {
			a, b := fp.Rooms[i], fp.Rooms[j]
			ox, okx := a.SpanX().Overlap(b.SpanX(), geom.Epsilon)
			if !okx {
				continue
			}
			oz, okz := a.SpanZ().Overlap(b.SpanZ(), geom.Epsilon)
			if !okz {
				continue
			}
			diags.Warn(diag.CodeRoomOverlap, floor, []string{a.Name, b.Name},
				"rooms %q and %q overlap by %s x %s",
				a.Name, b.Name, formatMeters(ox.Length()), formatMeters(oz.Length()))
		}
	}
}

func formatMeters(v float64) string {
	return fmt.Sprintf("%.3gm", v)
}

func wallIndex(dir plan.WallDirection) int {
	switch dir {
	case plan.WallTop:
		return 0
	case plan.WallBottom:
		return 1
	case plan.WallLeft:
		return 2
	default:
		return 3
	}
}
