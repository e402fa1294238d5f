package plan

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/planforge/planforge/internal/engine/unit"
)

// yamlPlanFile is the top-level YAML structure for plan documents.
type yamlPlanFile struct {
	Plan yamlPlan `yaml:"plan"`
}

// yamlPlan is the YAML representation of a plan document.
type yamlPlan struct {
	Name        string      `yaml:"name"`
	DefaultUnit string      `yaml:"default_unit"`
	Floors      []yamlFloor `yaml:"floors"`
	Styles      []yamlStyle `yaml:"styles"`
}

// yamlFloor is the YAML representation of a floor.
type yamlFloor struct {
	Name        string           `yaml:"name"`
	Level       int              `yaml:"level"`
	Rooms       []yamlRoom       `yaml:"rooms"`
	Connections []yamlConnection `yaml:"connections"`
}

// yamlRoom is the YAML representation of a room.
type yamlRoom struct {
	Name       string         `yaml:"name"`
	X          *yamlMeasure   `yaml:"x"`
	Z          *yamlMeasure   `yaml:"z"`
	Placement  *yamlPlacement `yaml:"placement"`
	Width      yamlMeasure    `yaml:"width"`
	Height     yamlMeasure    `yaml:"height"`
	RoomHeight *yamlMeasure   `yaml:"room_height"`
	Elevation  *yamlMeasure   `yaml:"elevation"`
	Unit       string         `yaml:"unit"`
	Walls      []yamlWall     `yaml:"walls"`
	Style      string         `yaml:"style"`
}

// yamlPlacement is the YAML representation of a relative position clause.
type yamlPlacement struct {
	Direction string       `yaml:"direction"`
	Reference string       `yaml:"reference"`
	Gap       *yamlMeasure `yaml:"gap"`
	Align     string       `yaml:"align"`
}

// yamlWall is the YAML representation of a wall slot override.
type yamlWall struct {
	Direction string       `yaml:"direction"`
	Type      string       `yaml:"type"`
	Width     *yamlMeasure `yaml:"width"`
	Height    *yamlMeasure `yaml:"height"`
	Position  *float64     `yaml:"position"`
}

// yamlConnection is the YAML representation of a connection.
type yamlConnection struct {
	From     string       `yaml:"from"`
	To       string       `yaml:"to"`
	Type     string       `yaml:"type"`
	Position *float64     `yaml:"position"`
	Size     *yamlMeasure `yaml:"size"`
	// Height accepts only "full"; default heights come from config.
	Height string `yaml:"height"`
}

// yamlStyle is the YAML representation of a style.
type yamlStyle struct {
	Name         string  `yaml:"name"`
	FloorColor   string  `yaml:"floor_color"`
	WallColor    string  `yaml:"wall_color"`
	FloorTexture string  `yaml:"floor_texture"`
	WallTexture  string  `yaml:"wall_texture"`
	Roughness    float64 `yaml:"roughness"`
	Metalness    float64 `yaml:"metalness"`
}

// yamlMeasure accepts either a bare number (unit-less) or a string with a
// trailing unit suffix, e.g. 4.5, "10ft", "250 cm".
type yamlMeasure struct {
	Measure
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *yamlMeasure) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("measure must be a scalar, got %v", node.Kind)
	}
	s := strings.TrimSpace(node.Value)
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		m.Measure = Measure{Value: v}
		return nil
	}
	// Split trailing alphabetic unit suffix from the numeric part.
	i := len(s)
	for i > 0 && (s[i-1] >= 'a' && s[i-1] <= 'z') {
		i--
	}
	num := strings.TrimSpace(s[:i])
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return fmt.Errorf("invalid measure %q: %w", s, err)
	}
	u, err := unit.Parse(s[i:])
	if err != nil {
		return fmt.Errorf("invalid measure %q: %w", s, err)
	}
	m.Measure = Measure{Value: v, Unit: u}
	return nil
}

// LoadFromFile reads and validates a plan document from a YAML file.
//
// Precondition: path must point to a valid YAML plan file.
// Postcondition: Returns a validated Plan or a non-nil error.
func LoadFromFile(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan file %s: %w", path, err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses and validates a plan document from YAML bytes.
//
// Precondition: data must be valid YAML conforming to the plan schema.
// Postcondition: Returns a validated Plan or a non-nil error.
func LoadFromBytes(data []byte) (*Plan, error) {
	var file yamlPlanFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing plan YAML: %w", err)
	}

	p, err := convertYAMLPlan(file.Plan)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("validating plan: %w", err)
	}
	return p, nil
}

// convertYAMLPlan converts the parsed YAML structures into domain types.
func convertYAMLPlan(yp yamlPlan) (*Plan, error) {
	defUnit, err := unit.Parse(yp.DefaultUnit)
	if err != nil {
		return nil, fmt.Errorf("plan default_unit: %w", err)
	}

	p := &Plan{
		Name:        yp.Name,
		DefaultUnit: defUnit,
		Styles:      make(map[string]*Style, len(yp.Styles)),
	}
	for _, ys := range yp.Styles {
		p.Styles[ys.Name] = &Style{
			Name:         ys.Name,
			FloorColor:   ys.FloorColor,
			WallColor:    ys.WallColor,
			FloorTexture: ys.FloorTexture,
			WallTexture:  ys.WallTexture,
			Roughness:    ys.Roughness,
			Metalness:    ys.Metalness,
		}
	}

	for _, yf := range yp.Floors {
		floor := &Floor{Name: yf.Name, Level: yf.Level}
		for _, yr := range yf.Rooms {
			room, err := convertYAMLRoom(yf.Name, yr)
			if err != nil {
				return nil, err
			}
			floor.Rooms = append(floor.Rooms, room)
		}
		for _, yc := range yf.Connections {
			conn, err := convertYAMLConnection(yf.Name, yc)
			if err != nil {
				return nil, err
			}
			floor.Connections = append(floor.Connections, conn)
		}
		p.Floors = append(p.Floors, floor)
	}
	return p, nil
}

func convertYAMLRoom(floor string, yr yamlRoom) (*Room, error) {
	roomUnit, err := unit.Parse(yr.Unit)
	if err != nil {
		return nil, fmt.Errorf("floor %q: room %q: %w", floor, yr.Name, err)
	}

	room := &Room{
		Name:   yr.Name,
		Width:  yr.Width.Measure,
		Height: yr.Height.Measure,
		Unit:   roomUnit,
		Style:  yr.Style,
	}
	if yr.X != nil && yr.Z != nil {
		room.Position = &Position{X: yr.X.Measure, Z: yr.Z.Measure}
	}
	if yr.Placement != nil {
		room.Placement = &Placement{
			Direction: PlaceDirection(yr.Placement.Direction),
			Reference: yr.Placement.Reference,
			Align:     Alignment(yr.Placement.Align),
		}
		if yr.Placement.Gap != nil {
			gap := yr.Placement.Gap.Measure
			room.Placement.Gap = &gap
		}
	}
	if yr.RoomHeight != nil {
		rh := yr.RoomHeight.Measure
		room.RoomHeight = &rh
	}
	if yr.Elevation != nil {
		el := yr.Elevation.Measure
		room.Elevation = &el
	}
	for _, yw := range yr.Walls {
		w := Wall{
			Direction: WallDirection(yw.Direction),
			Type:      WallType(yw.Type),
			Position:  yw.Position,
		}
		if w.Type == "" {
			w.Type = WallSolid
		}
		if yw.Width != nil {
			wm := yw.Width.Measure
			w.Width = &wm
		}
		if yw.Height != nil {
			hm := yw.Height.Measure
			w.Height = &hm
		}
		room.Walls = append(room.Walls, w)
	}
	return room, nil
}

func convertYAMLConnection(floor string, yc yamlConnection) (*Connection, error) {
	from, err := parseEndpoint(yc.From)
	if err != nil {
		return nil, fmt.Errorf("floor %q: connection from: %w", floor, err)
	}
	to, err := parseEndpoint(yc.To)
	if err != nil {
		return nil, fmt.Errorf("floor %q: connection to: %w", floor, err)
	}

	conn := &Connection{
		From:     from,
		To:       to,
		Type:     ConnectionType(yc.Type),
		Position: 50,
	}
	if yc.Position != nil {
		conn.Position = *yc.Position
	}
	if yc.Size != nil {
		sz := yc.Size.Measure
		conn.Size = &sz
	}
	switch yc.Height {
	case "":
	case "full":
		conn.FullHeight = true
	default:
		return nil, fmt.Errorf("floor %q: connection %s: height %q not supported (only \"full\")",
			floor, conn.Label(), yc.Height)
	}
	return conn, nil
}

// parseEndpoint parses a "room.wall" endpoint reference.
func parseEndpoint(s string) (Endpoint, error) {
	i := strings.LastIndex(s, ".")
	if i <= 0 || i == len(s)-1 {
		return Endpoint{}, fmt.Errorf("endpoint %q must be in room.wall form", s)
	}
	return Endpoint{Room: s[:i], Wall: WallDirection(s[i+1:])}, nil
}
