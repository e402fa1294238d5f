// Package plan provides the typed floorplan entity tree consumed by the
// geometry engine: floors, rooms, walls, connections, and styles. The tree is
// produced by an external parser or loaded from its YAML serialization; the
// engine never sees source text.
package plan

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/planforge/planforge/internal/engine/unit"
)

// WallDirection identifies one of a room's four wall slots. The plan uses an
// X/Z ground plane with Y up: top is the minimum-Z edge, bottom the maximum-Z
// edge, left the minimum-X edge, right the maximum-X edge.
type WallDirection string

// Wall slots.
const (
	WallTop    WallDirection = "top"
	WallBottom WallDirection = "bottom"
	WallLeft   WallDirection = "left"
	WallRight  WallDirection = "right"
)

// WallDirections lists the four slots in canonical order.
var WallDirections = []WallDirection{WallTop, WallBottom, WallLeft, WallRight}

// Opposite returns the wall slot facing d across a shared boundary.
func (d WallDirection) Opposite() WallDirection {
	switch d {
	case WallTop:
		return WallBottom
	case WallBottom:
		return WallTop
	case WallLeft:
		return WallRight
	case WallRight:
		return WallLeft
	default:
		return ""
	}
}

// IsValid reports whether d names one of the four wall slots.
func (d WallDirection) IsValid() bool {
	return d.Opposite() != ""
}

// WallType describes how a wall slot is built.
type WallType string

// Wall types. An empty type defaults to solid.
const (
	WallSolid  WallType = "solid"
	WallOpen   WallType = "open"
	WallDoor   WallType = "door"
	WallWindow WallType = "window"
)

// IsValid reports whether t is a known wall type.
func (t WallType) IsValid() bool {
	switch t {
	case WallSolid, WallOpen, WallDoor, WallWindow:
		return true
	default:
		return false
	}
}

// PlaceDirection is the direction of a relative placement clause.
type PlaceDirection string

// Relative placement directions: four cardinal plus four diagonal.
const (
	RightOf      PlaceDirection = "right-of"
	LeftOf       PlaceDirection = "left-of"
	Above        PlaceDirection = "above"
	Below        PlaceDirection = "below"
	AboveLeftOf  PlaceDirection = "above-left-of"
	AboveRightOf PlaceDirection = "above-right-of"
	BelowLeftOf  PlaceDirection = "below-left-of"
	BelowRightOf PlaceDirection = "below-right-of"
)

// IsValid reports whether d is a known placement direction.
func (d PlaceDirection) IsValid() bool {
	switch d {
	case RightOf, LeftOf, Above, Below,
		AboveLeftOf, AboveRightOf, BelowLeftOf, BelowRightOf:
		return true
	default:
		return false
	}
}

// Horizontal reports whether d moves the room along the X axis (and the sign
// of that movement: -1 for left, +1 for right, 0 for none).
func (d PlaceDirection) Horizontal() int {
	switch d {
	case RightOf, AboveRightOf, BelowRightOf:
		return 1
	case LeftOf, AboveLeftOf, BelowLeftOf:
		return -1
	default:
		return 0
	}
}

// Vertical reports the Z-axis movement sign: -1 for above (toward smaller Z),
// +1 for below, 0 for none.
func (d PlaceDirection) Vertical() int {
	switch d {
	case Above, AboveLeftOf, AboveRightOf:
		return -1
	case Below, BelowLeftOf, BelowRightOf:
		return 1
	default:
		return 0
	}
}

// Alignment pins a relatively placed room's edge on its free axis.
type Alignment string

// Alignments. The empty alignment uses the direction's default edge.
const (
	AlignNone   Alignment = ""
	AlignTop    Alignment = "top"
	AlignBottom Alignment = "bottom"
	AlignLeft   Alignment = "left"
	AlignRight  Alignment = "right"
	AlignCenter Alignment = "center"
)

// IsValid reports whether a is a known alignment.
func (a Alignment) IsValid() bool {
	switch a {
	case AlignNone, AlignTop, AlignBottom, AlignLeft, AlignRight, AlignCenter:
		return true
	default:
		return false
	}
}

// ConnectionType describes the opening a connection cuts into a shared wall.
type ConnectionType string

// Connection types.
const (
	ConnDoor       ConnectionType = "door"
	ConnDoubleDoor ConnectionType = "double-door"
	ConnWindow     ConnectionType = "window"
	ConnOpening    ConnectionType = "opening"
)

// IsValid reports whether t is a known connection type.
func (t ConnectionType) IsValid() bool {
	switch t {
	case ConnDoor, ConnDoubleDoor, ConnWindow, ConnOpening:
		return true
	default:
		return false
	}
}

// Measure is a scalar with an optional unit annotation. Unspecified units are
// governed by the document or config default at normalization time.
type Measure struct {
	Value float64
	Unit  unit.Unit
}

// Wall is an authored override for one of a room's four wall slots.
type Wall struct {
	Direction WallDirection
	Type      WallType
	// Width, Height, Position override the implicit opening carried by
	// door/window wall types. Position is a percentage along the wall run.
	Width    *Measure
	Height   *Measure
	Position *float64
}

// Placement is a relative position clause: direction + reference room +
// optional gap and alignment. It is consumed once by the resolver and plays
// no further role after resolution.
type Placement struct {
	Direction PlaceDirection
	Reference string
	Gap       *Measure
	Align     Alignment
}

// Position is an authored absolute room origin.
type Position struct {
	X Measure
	Z Measure
}

// Room is a rectangular footprint on a floor. Exactly one of Position and
// Placement must be set.
type Room struct {
	// Name uniquely identifies the room within its floor.
	Name      string
	Position  *Position
	Placement *Placement
	// Width spans the X axis, Height the Z axis (footprint, not room height).
	Width  Measure
	Height Measure
	// RoomHeight is the ceiling height; zero means the config wall height.
	RoomHeight *Measure
	// Elevation lifts the room floor above the ground plane.
	Elevation *Measure
	// Unit overrides the document default for all of this room's unit-less
	// scalars.
	Unit unit.Unit
	// Walls holds authored overrides; slots without an entry are solid.
	Walls []Wall
	// Style names an entry in the document style table. Empty uses defaults.
	Style string
}

// WallSlot returns the authored override for the given slot, or a solid wall
// when none was authored.
func (r *Room) WallSlot(dir WallDirection) Wall {
	for _, w := range r.Walls {
		if w.Direction == dir {
			return w
		}
	}
	return Wall{Direction: dir, Type: WallSolid}
}

// Endpoint names one side of a connection.
type Endpoint struct {
	Room string
	Wall WallDirection
}

// String renders the endpoint as "room.wall".
func (e Endpoint) String() string {
	return e.Room + "." + string(e.Wall)
}

// Connection is a door, window, or open passage between two rooms' walls.
type Connection struct {
	From Endpoint
	To   Endpoint
	Type ConnectionType
	// Position is the opening center as a percentage along the wall run.
	Position float64
	// Size overrides the opening width derived from the connection type.
	Size *Measure
	// FullHeight opens the hole from the floor to the full room height
	// instead of the configured door or window height.
	FullHeight bool
}

// Label renders the connection for diagnostics, e.g.
// "office.right -> kitchen.left (door)".
func (c *Connection) Label() string {
	return fmt.Sprintf("%s -> %s (%s)", c.From, c.To, c.Type)
}

// Style is pure presentation data referenced by rooms.
type Style struct {
	Name         string
	FloorColor   string
	WallColor    string
	FloorTexture string
	WallTexture  string
	Roughness    float64
	Metalness    float64
}

// Floor groups rooms and connections at one level of the building.
type Floor struct {
	Name        string
	Level       int
	Rooms       []*Room
	Connections []*Connection
}

// Plan is the document root: floors plus a shared style table.
type Plan struct {
	Name string
	// DefaultUnit governs unit-less scalars document-wide; Unspecified means
	// the config default applies.
	DefaultUnit unit.Unit
	Floors      []*Floor
	Styles      map[string]*Style
}

// Validate checks structural invariants the parser contract promises: unique
// names, known enum values, in-range percentages, resolvable style and
// connection-endpoint references. Placement references are deliberately not
// checked here; a dangling reference is a resolver diagnostic with its own
// error code.
//
// Postcondition: Returns nil if valid, or an error describing the first
// violation.
func (p *Plan) Validate() error {
	if len(p.Floors) == 0 {
		return fmt.Errorf("plan must contain at least one floor")
	}
	for name, s := range p.Styles {
		if err := validateStyle(name, s); err != nil {
			return err
		}
	}
	floorNames := make(map[string]bool, len(p.Floors))
	for _, f := range p.Floors {
		if f.Name == "" {
			return fmt.Errorf("floor name must not be empty")
		}
		if floorNames[f.Name] {
			return fmt.Errorf("duplicate floor name %q", f.Name)
		}
		floorNames[f.Name] = true
		if err := p.validateFloor(f); err != nil {
			return err
		}
	}
	return nil
}

func (p *Plan) validateFloor(f *Floor) error {
	if len(f.Rooms) == 0 {
		return fmt.Errorf("floor %q: must contain at least one room", f.Name)
	}
	names := make(map[string]bool, len(f.Rooms))
	for _, r := range f.Rooms {
		if r.Name == "" {
			return fmt.Errorf("floor %q: room name must not be empty", f.Name)
		}
		if names[r.Name] {
			return fmt.Errorf("floor %q: duplicate room name %q", f.Name, r.Name)
		}
		names[r.Name] = true
		if err := p.validateRoom(f, r); err != nil {
			return err
		}
	}
	for _, c := range f.Connections {
		if err := validateConnection(f, names, c); err != nil {
			return err
		}
	}
	return nil
}

func (p *Plan) validateRoom(f *Floor, r *Room) error {
	prefix := fmt.Sprintf("floor %q: room %q", f.Name, r.Name)

	if (r.Position == nil) == (r.Placement == nil) {
		return fmt.Errorf("%s: exactly one of position and placement must be set", prefix)
	}
	if r.Placement != nil {
		pl := r.Placement
		if !pl.Direction.IsValid() {
			return fmt.Errorf("%s: unknown placement direction %q", prefix, pl.Direction)
		}
		if pl.Reference == "" {
			return fmt.Errorf("%s: placement reference must not be empty", prefix)
		}
		if pl.Reference == r.Name {
			return fmt.Errorf("%s: placement must not reference the room itself", prefix)
		}
		if !pl.Align.IsValid() {
			return fmt.Errorf("%s: unknown alignment %q", prefix, pl.Align)
		}
	}
	if r.Width.Value <= 0 || r.Height.Value <= 0 {
		return fmt.Errorf("%s: width and height must be positive", prefix)
	}
	seen := make(map[WallDirection]bool, len(r.Walls))
	for _, w := range r.Walls {
		if !w.Direction.IsValid() {
			return fmt.Errorf("%s: unknown wall direction %q", prefix, w.Direction)
		}
		if seen[w.Direction] {
			return fmt.Errorf("%s: duplicate wall slot %q", prefix, w.Direction)
		}
		seen[w.Direction] = true
		if w.Type != "" && !w.Type.IsValid() {
			return fmt.Errorf("%s: unknown wall type %q", prefix, w.Type)
		}
		if w.Position != nil && (*w.Position < 0 || *w.Position > 100) {
			return fmt.Errorf("%s: wall %q position must be 0-100, got %g", prefix, w.Direction, *w.Position)
		}
	}
	if r.Style != "" {
		if _, ok := p.Styles[r.Style]; !ok {
			return fmt.Errorf("%s: unknown style %q", prefix, r.Style)
		}
	}
	return nil
}

func validateConnection(f *Floor, rooms map[string]bool, c *Connection) error {
	prefix := fmt.Sprintf("floor %q: connection %s", f.Name, c.Label())

	for _, ep := range []Endpoint{c.From, c.To} {
		if !rooms[ep.Room] {
			return fmt.Errorf("%s: unknown room %q", prefix, ep.Room)
		}
		if !ep.Wall.IsValid() {
			return fmt.Errorf("%s: unknown wall direction %q", prefix, ep.Wall)
		}
	}
	if !c.Type.IsValid() {
		return fmt.Errorf("%s: unknown connection type %q", prefix, c.Type)
	}
	if c.Position < 0 || c.Position > 100 {
		return fmt.Errorf("%s: position must be 0-100, got %g", prefix, c.Position)
	}
	if c.Size != nil && c.Size.Value <= 0 {
		return fmt.Errorf("%s: size must be positive", prefix)
	}
	return nil
}

func validateStyle(name string, s *Style) error {
	if name == "" || s.Name != name {
		return fmt.Errorf("style key %q does not match style name %q", name, s.Name)
	}
	for _, c := range []struct{ field, value string }{
		{"floor_color", s.FloorColor},
		{"wall_color", s.WallColor},
	} {
		if c.value == "" {
			continue
		}
		if !strings.HasPrefix(c.value, "#") {
			return fmt.Errorf("style %q: %s must be a hex color, got %q", name, c.field, c.value)
		}
		if _, err := colorful.Hex(c.value); err != nil {
			return fmt.Errorf("style %q: invalid %s %q: %w", name, c.field, c.value, err)
		}
	}
	if s.Roughness < 0 || s.Roughness > 1 {
		return fmt.Errorf("style %q: roughness must be 0-1, got %g", name, s.Roughness)
	}
	if s.Metalness < 0 || s.Metalness > 1 {
		return fmt.Errorf("style %q: metalness must be 0-1, got %g", name, s.Metalness)
	}
	return nil
}
