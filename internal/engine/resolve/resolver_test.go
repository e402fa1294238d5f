package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/planforge/planforge/internal/config"
	"github.com/planforge/planforge/internal/diag"
	"github.com/planforge/planforge/internal/engine/geom"
	"github.com/planforge/planforge/internal/engine/unit"
	"github.com/planforge/planforge/internal/plan"
)

func testDefaults() geom.Defaults {
	return geom.NormalizeDefaults(config.Default().Geometry)
}

func absRoom(name string, x, z, w, h float64) *plan.Room {
	return &plan.Room{
		Name:     name,
		Position: &plan.Position{X: plan.Measure{Value: x}, Z: plan.Measure{Value: z}},
		Width:    plan.Measure{Value: w},
		Height:   plan.Measure{Value: h},
	}
}

func relRoom(name string, dir plan.PlaceDirection, ref string, w, h float64) *plan.Room {
	return &plan.Room{
		Name:      name,
		Placement: &plan.Placement{Direction: dir, Reference: ref},
		Width:     plan.Measure{Value: w},
		Height:    plan.Measure{Value: h},
	}
}

func resolveFloor(t *testing.T, floor *plan.Floor) (*Floorplan, *diag.List) {
	t.Helper()
	var diags diag.List
	fp := Resolve(floor, nil, testDefaults(), unit.NewConverter(unit.Meters), &diags)
	return fp, &diags
}

func TestResolve_ChainRightOf(t *testing.T) {
	floor := &plan.Floor{
		Name: "ground",
		Rooms: []*plan.Room{
			absRoom("a", 0, 0, 5, 5),
			relRoom("b", plan.RightOf, "a", 5, 5),
			relRoom("c", plan.RightOf, "b", 5, 5),
		},
	}
	fp, diags := resolveFloor(t, floor)
	require.NotNil(t, fp)
	assert.False(t, diags.HasErrors())

	a, _ := fp.Room("a")
	b, _ := fp.Room("b")
	c, _ := fp.Room("c")
	assert.Equal(t, 0.0, a.X)
	assert.Equal(t, 5.0, b.X)
	assert.Equal(t, 0.0, b.Z)
	assert.Equal(t, 10.0, c.X)
	assert.Equal(t, 0.0, c.Z)
}

func TestResolve_AlignBottom(t *testing.T) {
	// MainBedroom 20x15 at origin; Closet 5x8 right-of align bottom lands at
	// (20, 7) since 15-8=7.
	floor := &plan.Floor{
		Name: "ground",
		Rooms: []*plan.Room{
			absRoom("MainBedroom", 0, 0, 20, 15),
			{
				Name: "Closet",
				Placement: &plan.Placement{
					Direction: plan.RightOf,
					Reference: "MainBedroom",
					Align:     plan.AlignBottom,
				},
				Width:  plan.Measure{Value: 5},
				Height: plan.Measure{Value: 8},
			},
		},
	}
	fp, _ := resolveFloor(t, floor)
	require.NotNil(t, fp)

	closet, ok := fp.Room("Closet")
	require.True(t, ok)
	assert.Equal(t, 20.0, closet.X)
	assert.Equal(t, 7.0, closet.Z)
}

func TestResolve_AlignCenter(t *testing.T) {
	floor := &plan.Floor{
		Name: "ground",
		Rooms: []*plan.Room{
			absRoom("big", 0, 0, 10, 10),
			{
				Name: "small",
				Placement: &plan.Placement{
					Direction: plan.RightOf,
					Reference: "big",
					Align:     plan.AlignCenter,
				},
				Width:  plan.Measure{Value: 4},
				Height: plan.Measure{Value: 4},
			},
		},
	}
	fp, _ := resolveFloor(t, floor)
	require.NotNil(t, fp)

	// Center applies to the free axis only; the push axis keeps the
	// right-of placement.
	small, _ := fp.Room("small")
	assert.Equal(t, 10.0, small.X)
	assert.Equal(t, 3.0, small.Z)
}

func TestResolve_AlignCenterOnVerticalDirection(t *testing.T) {
	floor := &plan.Floor{
		Name: "ground",
		Rooms: []*plan.Room{
			absRoom("big", 0, 0, 10, 10),
			{
				Name: "small",
				Placement: &plan.Placement{
					Direction: plan.Below,
					Reference: "big",
					Align:     plan.AlignCenter,
				},
				Width:  plan.Measure{Value: 4},
				Height: plan.Measure{Value: 4},
			},
		},
	}
	fp, _ := resolveFloor(t, floor)
	require.NotNil(t, fp)

	small, _ := fp.Room("small")
	assert.Equal(t, 3.0, small.X)
	assert.Equal(t, 10.0, small.Z)
}

func TestResolve_EdgeAlignOnPushAxisIsIgnored(t *testing.T) {
	// align right names the push axis of right-of; the room must stay to
	// the right of its reference, top edges flush as usual.
	floor := &plan.Floor{
		Name: "ground",
		Rooms: []*plan.Room{
			absRoom("big", 0, 0, 10, 10),
			{
				Name: "east",
				Placement: &plan.Placement{
					Direction: plan.RightOf,
					Reference: "big",
					Align:     plan.AlignRight,
				},
				Width:  plan.Measure{Value: 4},
				Height: plan.Measure{Value: 4},
			},
			{
				Name: "south",
				Placement: &plan.Placement{
					Direction: plan.Below,
					Reference: "big",
					Align:     plan.AlignBottom,
				},
				Width:  plan.Measure{Value: 4},
				Height: plan.Measure{Value: 4},
			},
		},
	}
	fp, _ := resolveFloor(t, floor)
	require.NotNil(t, fp)

	east, _ := fp.Room("east")
	assert.Equal(t, 10.0, east.X)
	assert.Equal(t, 0.0, east.Z)

	south, _ := fp.Room("south")
	assert.Equal(t, 0.0, south.X)
	assert.Equal(t, 10.0, south.Z)
}

func TestResolve_LeftOfAndAbove(t *testing.T) {
	floor := &plan.Floor{
		Name: "ground",
		Rooms: []*plan.Room{
			absRoom("ref", 10, 10, 6, 4),
			relRoom("west", plan.LeftOf, "ref", 3, 4),
			relRoom("north", plan.Above, "ref", 6, 2),
			relRoom("south", plan.Below, "ref", 6, 2),
		},
	}
	fp, _ := resolveFloor(t, floor)
	require.NotNil(t, fp)

	west, _ := fp.Room("west")
	assert.Equal(t, 7.0, west.X)
	assert.Equal(t, 10.0, west.Z)

	north, _ := fp.Room("north")
	assert.Equal(t, 10.0, north.X)
	assert.Equal(t, 8.0, north.Z)

	south, _ := fp.Room("south")
	assert.Equal(t, 14.0, south.Z)
}

func TestResolve_Diagonal(t *testing.T) {
	floor := &plan.Floor{
		Name: "ground",
		Rooms: []*plan.Room{
			absRoom("ref", 0, 0, 5, 5),
			relRoom("ne", plan.AboveRightOf, "ref", 3, 3),
		},
	}
	fp, _ := resolveFloor(t, floor)
	require.NotNil(t, fp)

	ne, _ := fp.Room("ne")
	assert.Equal(t, 5.0, ne.X)
	assert.Equal(t, -3.0, ne.Z)
}

func TestResolve_DiagonalEdgeAlignOverridesAxis(t *testing.T) {
	// An explicit edge align on a diagonal pins that axis flush instead of
	// stacking past the reference.
	floor := &plan.Floor{
		Name: "ground",
		Rooms: []*plan.Room{
			absRoom("ref", 0, 0, 5, 5),
			{
				Name: "ne",
				Placement: &plan.Placement{
					Direction: plan.AboveRightOf,
					Reference: "ref",
					Align:     plan.AlignBottom,
				},
				Width:  plan.Measure{Value: 3},
				Height: plan.Measure{Value: 3},
			},
		},
	}
	fp, _ := resolveFloor(t, floor)
	require.NotNil(t, fp)

	ne, _ := fp.Room("ne")
	assert.Equal(t, 5.0, ne.X)
	assert.Equal(t, 2.0, ne.Z, "bottom edges flush, not stacked above")
}

func TestResolve_Gap(t *testing.T) {
	floor := &plan.Floor{
		Name: "ground",
		Rooms: []*plan.Room{
			absRoom("a", 0, 0, 5, 5),
			{
				Name: "b",
				Placement: &plan.Placement{
					Direction: plan.RightOf,
					Reference: "a",
					Gap:       &plan.Measure{Value: 2},
				},
				Width:  plan.Measure{Value: 5},
				Height: plan.Measure{Value: 5},
			},
		},
	}
	fp, _ := resolveFloor(t, floor)
	require.NotNil(t, fp)

	b, _ := fp.Room("b")
	assert.Equal(t, 7.0, b.X)
}

func TestResolve_GapWithUnits(t *testing.T) {
	floor := &plan.Floor{
		Name: "ground",
		Rooms: []*plan.Room{
			absRoom("a", 0, 0, 5, 5),
			{
				Name: "b",
				Placement: &plan.Placement{
					Direction: plan.RightOf,
					Reference: "a",
					Gap:       &plan.Measure{Value: 50, Unit: unit.Centimeters},
				},
				Width:  plan.Measure{Value: 5},
				Height: plan.Measure{Value: 5},
			},
		},
	}
	fp, _ := resolveFloor(t, floor)
	require.NotNil(t, fp)

	b, _ := fp.Room("b")
	assert.InDelta(t, 5.5, b.X, 1e-9)
}

func TestResolve_RoomUnitOverride(t *testing.T) {
	floor := &plan.Floor{
		Name: "ground",
		Rooms: []*plan.Room{
			{
				Name:     "imperial",
				Position: &plan.Position{X: plan.Measure{Value: 0}, Z: plan.Measure{Value: 0}},
				Width:    plan.Measure{Value: 10},
				Height:   plan.Measure{Value: 10},
				Unit:     unit.Feet,
			},
		},
	}
	fp, _ := resolveFloor(t, floor)
	require.NotNil(t, fp)

	r, _ := fp.Room("imperial")
	assert.InDelta(t, 3.048, r.Width, 1e-9)
}

func TestResolve_Cycle(t *testing.T) {
	floor := &plan.Floor{
		Name: "ground",
		Rooms: []*plan.Room{
			relRoom("a", plan.RightOf, "b", 5, 5),
			relRoom("b", plan.RightOf, "a", 5, 5),
		},
	}
	fp, diags := resolveFloor(t, floor)
	assert.Nil(t, fp, "no partial geometry on cycle")

	errs := diags.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, diag.CodeCycle, errs[0].Code)
	assert.ElementsMatch(t, []string{"a", "b"}, errs[0].Subjects)
}

func TestResolve_CycleWithDanglingDependent(t *testing.T) {
	// c depends on the a<->b cycle but is not part of it; only the cycle is
	// reported, once.
	floor := &plan.Floor{
		Name: "ground",
		Rooms: []*plan.Room{
			relRoom("a", plan.RightOf, "b", 5, 5),
			relRoom("b", plan.RightOf, "a", 5, 5),
			relRoom("c", plan.RightOf, "a", 5, 5),
		},
	}
	fp, diags := resolveFloor(t, floor)
	assert.Nil(t, fp)

	errs := diags.Errors()
	require.Len(t, errs, 1)
	assert.ElementsMatch(t, []string{"a", "b"}, errs[0].Subjects)
}

func TestResolve_MissingReference(t *testing.T) {
	floor := &plan.Floor{
		Name: "ground",
		Rooms: []*plan.Room{
			relRoom("a", plan.RightOf, "NonExistent", 5, 5),
		},
	}
	fp, diags := resolveFloor(t, floor)
	assert.Nil(t, fp, "room stays unresolved on missing reference")

	errs := diags.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, diag.CodeMissingReference, errs[0].Code)
	assert.Contains(t, errs[0].Subjects, "NonExistent")
	assert.Contains(t, errs[0].Message, "NonExistent")
}

func TestResolve_OverlapWarningNonBlocking(t *testing.T) {
	floor := &plan.Floor{
		Name: "ground",
		Rooms: []*plan.Room{
			absRoom("a", 0, 0, 10, 10),
			absRoom("b", 5, 5, 10, 10),
		},
	}
	fp, diags := resolveFloor(t, floor)
	require.NotNil(t, fp, "overlap must not block resolution")
	assert.False(t, diags.HasErrors())

	warns := diags.Warnings()
	require.Len(t, warns, 1)
	assert.Equal(t, diag.CodeRoomOverlap, warns[0].Code)
	assert.ElementsMatch(t, []string{"a", "b"}, warns[0].Subjects)
}

func TestResolve_AdjacentRoomsDoNotWarn(t *testing.T) {
	floor := &plan.Floor{
		Name: "ground",
		Rooms: []*plan.Room{
			absRoom("a", 0, 0, 5, 5),
			relRoom("b", plan.RightOf, "a", 5, 5),
		},
	}
	_, diags := resolveFloor(t, floor)
	assert.Empty(t, diags.Warnings(), "flush rooms share an edge, not an overlap")
}

func TestResolve_DoesNotMutateInput(t *testing.T) {
	room := relRoom("b", plan.RightOf, "a", 5, 5)
	floor := &plan.Floor{
		Name:  "ground",
		Rooms: []*plan.Room{absRoom("a", 0, 0, 5, 5), room},
	}
	fp, _ := resolveFloor(t, floor)
	require.NotNil(t, fp)

	assert.Nil(t, room.Position, "resolution must not write coordinates into the input tree")
	require.NotNil(t, room.Placement)
}

func TestResolve_WallOverridesNormalized(t *testing.T) {
	width := plan.Measure{Value: 100, Unit: unit.Centimeters}
	floor := &plan.Floor{
		Name: "ground",
		Rooms: []*plan.Room{
			{
				Name:     "a",
				Position: &plan.Position{},
				Width:    plan.Measure{Value: 5},
				Height:   plan.Measure{Value: 5},
				Walls: []plan.Wall{
					{Direction: plan.WallTop, Type: plan.WallWindow, Width: &width},
				},
			},
		},
	}
	fp, _ := resolveFloor(t, floor)
	require.NotNil(t, fp)

	r, _ := fp.Room("a")
	top := r.Wall(plan.WallTop)
	assert.Equal(t, plan.WallWindow, top.Type)
	require.NotNil(t, top.Width)
	assert.InDelta(t, 1.0, *top.Width, 1e-9)
	assert.Equal(t, plan.WallSolid, r.Wall(plan.WallLeft).Type)
}

func TestPropertyResolutionIsIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(t, "rooms")
		floor := &plan.Floor{Name: "ground"}
		floor.Rooms = append(floor.Rooms, absRoom("room0", 0, 0, 5, 5))
		dirs := []plan.PlaceDirection{plan.RightOf, plan.LeftOf, plan.Above, plan.Below}
		for i := 1; i < n; i++ {
			ref := rapid.IntRange(0, i-1).Draw(t, "ref")
			dir := dirs[rapid.IntRange(0, len(dirs)-1).Draw(t, "dir")]
			w := float64(rapid.IntRange(1, 10).Draw(t, "w"))
			h := float64(rapid.IntRange(1, 10).Draw(t, "h"))
			floor.Rooms = append(floor.Rooms, relRoom(roomName(i), dir, roomName(ref), w, h))
		}

		var d1, d2 diag.List
		fp1 := Resolve(floor, nil, testDefaults(), unit.NewConverter(unit.Meters), &d1)
		fp2 := Resolve(floor, nil, testDefaults(), unit.NewConverter(unit.Meters), &d2)
		require.NotNil(t, fp1)
		require.NotNil(t, fp2)

		for i := range fp1.Rooms {
			assert.Equal(t, fp1.Rooms[i].X, fp2.Rooms[i].X)
			assert.Equal(t, fp1.Rooms[i].Z, fp2.Rooms[i].Z)
		}
	})
}

func roomName(i int) string {
	return "room" + string(rune('0'+i))
}
