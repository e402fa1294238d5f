package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/planforge/planforge/internal/engine/pipeline"
)

// Document is the JSON projection of a compiled plan: resolved coordinates
// for 2D rendering, mesh and door summaries for scene assembly, and the full
// diagnostics channel.
type Document struct {
	Plan     string          `json:"plan"`
	Floors   []FloorDocument `json:"floors"`
	Problems []ProblemRecord `json:"problems,omitempty"`
}

// FloorDocument is one compiled floor.
type FloorDocument struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
	// Resolved is false when the floor carried blocking diagnostics; Rooms,
	// Meshes, and Doors are then absent.
	Resolved bool         `json:"resolved"`
	Rooms    []RoomRecord `json:"rooms,omitempty"`
	Meshes   []MeshRecord `json:"meshes,omitempty"`
	Doors    []DoorRecord `json:"doors,omitempty"`
}

// RoomRecord is a resolved room in canonical meters.
type RoomRecord struct {
	Name       string  `json:"name"`
	X          float64 `json:"x"`
	Z          float64 `json:"z"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	RoomHeight float64 `json:"roomHeight"`
	Elevation  float64 `json:"elevation,omitempty"`
	Style      string  `json:"style,omitempty"`
}

// MeshRecord summarizes one generated mesh.
type MeshRecord struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Kind      string   `json:"kind"`
	Room      string   `json:"room"`
	Triangles int      `json:"triangles"`
	Materials []string `json:"materials"`
}

// DoorRecord is a door handoff for the external door renderer.
type DoorRecord struct {
	Room       string     `json:"room"`
	Wall       string     `json:"wall"`
	Center     [3]float64 `json:"center"`
	Width      float64    `json:"width"`
	Height     float64    `json:"height"`
	Double     bool       `json:"double,omitempty"`
	Connection string     `json:"connection,omitempty"`
}

// ProblemRecord is one diagnostic.
type ProblemRecord struct {
	Severity string   `json:"severity"`
	Code     string   `json:"code"`
	Floor    string   `json:"floor,omitempty"`
	Subjects []string `json:"subjects,omitempty"`
	Message  string   `json:"message"`
}

// BuildDocument projects a pipeline result into its exportable form.
func BuildDocument(res *pipeline.Result) *Document {
	doc := &Document{Plan: res.Plan.Name}

	for _, fr := range res.Floors {
		fd := FloorDocument{Name: fr.Name, Level: fr.Level}
		if fr.Floorplan != nil {
			fd.Resolved = true
			for _, r := range fr.Floorplan.Rooms {
				rec := RoomRecord{
					Name:       r.Name,
					X:          r.X,
					Z:          r.Z,
					Width:      r.Width,
					Height:     r.Height,
					RoomHeight: r.RoomHeight,
					Elevation:  r.Elevation,
				}
				if r.Style != nil {
					rec.Style = r.Style.Name
				}
				fd.Rooms = append(fd.Rooms, rec)
			}
		}
		if fr.Geometry != nil {
			for _, m := range fr.Geometry.Meshes {
				rec := MeshRecord{
					ID:        m.ID.String(),
					Name:      m.Name,
					Kind:      string(m.Kind),
					Room:      m.Room,
					Triangles: len(m.Triangles),
				}
				for _, mat := range m.Materials {
					rec.Materials = append(rec.Materials, mat.Name)
				}
				fd.Meshes = append(fd.Meshes, rec)
			}
			for _, d := range fr.Geometry.Doors {
				rec := DoorRecord{
					Room:   d.Room,
					Wall:   string(d.Wall),
					Center: [3]float64{d.Center.X(), d.Center.Y(), d.Center.Z()},
					Width:  d.Width,
					Height: d.Height,
					Double: d.Double,
				}
				if d.Connection != nil {
					rec.Connection = d.Connection.Label()
				}
				fd.Doors = append(fd.Doors, rec)
			}
		}
		doc.Floors = append(doc.Floors, fd)
	}

	for _, d := range res.Diagnostics.All() {
		doc.Problems = append(doc.Problems, ProblemRecord{
			Severity: string(d.Severity),
			Code:     string(d.Code),
			Floor:    d.Floor,
			Subjects: d.Subjects,
			Message:  d.Message,
		})
	}
	return doc
}

// WriteJSON writes the indented JSON document for a compiled plan.
func WriteJSON(w io.Writer, res *pipeline.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(BuildDocument(res)); err != nil {
		return fmt.Errorf("encode plan document: %w", err)
	}
	return nil
}
