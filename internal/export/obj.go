// Package export serializes compiled plans for downstream renderers: Wavefront
// OBJ/MTL for mesh viewers and a JSON document for 2D rendering and tooling.
// Output ordering is deterministic so repeated exports of the same plan are
// byte-identical apart from mesh IDs.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/planforge/planforge/internal/engine/mesh"
	"github.com/planforge/planforge/internal/engine/pipeline"
)

// WriteOBJ emits every generated mesh of every floor as OBJ geometry with
// per-material face groups. mtllib names the companion material library.
func WriteOBJ(w io.Writer, res *pipeline.Result, mtllib string) error {
	if _, err := fmt.Fprintf(w, "# %s\nmtllib %s\n", res.Plan.Name, mtllib); err != nil {
		return fmt.Errorf("write obj header: %w", err)
	}

	// OBJ vertex indices are global and 1-based.
	next := 1
	for _, fr := range res.Floors {
		if fr.Geometry == nil {
			continue
		}
		for _, m := range fr.Geometry.Meshes {
			var err error
			next, err = writeMesh(w, fr.Name, m, next)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// writeMesh emits one mesh as an OBJ object, grouping faces by material so
// front, back, and edge finishes survive the export.
func writeMesh(w io.Writer, floor string, m *mesh.Mesh, next int) (int, error) {
	if _, err := fmt.Fprintf(w, "o %s/%s\n", floor, m.Name); err != nil {
		return next, fmt.Errorf("write mesh %s: %w", m.Name, err)
	}

	for _, t := range m.Triangles {
		for _, v := range [3][3]float64{
			{t.A.X(), t.A.Y(), t.A.Z()},
			{t.B.X(), t.B.Y(), t.B.Z()},
			{t.C.X(), t.C.Y(), t.C.Z()},
		} {
			if _, err := fmt.Fprintf(w, "v %.6f %.6f %.6f\n", v[0], v[1], v[2]); err != nil {
				return next, fmt.Errorf("write mesh %s: %w", m.Name, err)
			}
		}
	}

	// Faces grouped by material slot, in slot order.
	for slot := range m.Materials {
		wrote := false
		for i := range m.Triangles {
			if m.MaterialIndex[i] != slot {
				continue
			}
			if !wrote {
				if _, err := fmt.Fprintf(w, "usemtl %s\n", m.Materials[slot].Name); err != nil {
					return next, fmt.Errorf("write mesh %s: %w", m.Name, err)
				}
				wrote = true
			}
			base := next + i*3
			if _, err := fmt.Fprintf(w, "f %d %d %d\n", base, base+1, base+2); err != nil {
				return next, fmt.Errorf("write mesh %s: %w", m.Name, err)
			}
		}
	}
	return next + len(m.Triangles)*3, nil
}

// WriteMTL emits the material library for a compiled plan. Materials are
// deduplicated by name and sorted for stable output.
func WriteMTL(w io.Writer, res *pipeline.Result) error {
	byName := map[string]mesh.Material{}
	for _, fr := range res.Floors {
		if fr.Geometry == nil {
			continue
		}
		for _, m := range fr.Geometry.Meshes {
			for _, mat := range m.Materials {
				byName[mat.Name] = mat
			}
		}
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		mat := byName[name]
		if _, err := fmt.Fprintf(w,
			"newmtl %s\nKd %.4f %.4f %.4f\nd %.4f\nPr %.4f\nPm %.4f\n",
			mat.Name, mat.R, mat.G, mat.B, mat.Opacity, mat.Roughness, mat.Metalness); err != nil {
			return fmt.Errorf("write material %s: %w", name, err)
		}
		if mat.Texture != "" {
			if _, err := fmt.Fprintf(w, "map_Kd %s\n", mat.Texture); err != nil {
				return fmt.Errorf("write material %s: %w", name, err)
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return fmt.Errorf("write material %s: %w", name, err)
		}
	}
	return nil
}

// SaveOBJ writes base.obj and base.mtl under dir.
func SaveOBJ(dir, base string, res *pipeline.Result) error {
	mtlName := base + ".mtl"

	objFile, err := os.Create(filepath.Join(dir, base+".obj"))
	if err != nil {
		return fmt.Errorf("create obj: %w", err)
	}
	defer objFile.Close()
	if err := WriteOBJ(objFile, res, mtlName); err != nil {
		return err
	}

	mtlFile, err := os.Create(filepath.Join(dir, mtlName))
	if err != nil {
		return fmt.Errorf("create mtl: %w", err)
	}
	defer mtlFile.Close()
	return WriteMTL(mtlFile, res)
}
