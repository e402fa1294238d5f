// Package pipeline runs the full compilation for a plan: resolution,
// ownership analysis, opening placement, and mesh generation, floor by
// floor. Floors are isolated from each other: blocking errors on one floor
// suppress that floor's geometry but never another's.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/planforge/planforge/internal/config"
	"github.com/planforge/planforge/internal/diag"
	"github.com/planforge/planforge/internal/engine/geom"
	"github.com/planforge/planforge/internal/engine/mesh"
	"github.com/planforge/planforge/internal/engine/opening"
	"github.com/planforge/planforge/internal/engine/ownership"
	"github.com/planforge/planforge/internal/engine/resolve"
	"github.com/planforge/planforge/internal/engine/unit"
	"github.com/planforge/planforge/internal/plan"
)

// FloorResult is the compiled output for one floor.
type FloorResult struct {
	Name  string
	Level int
	// Floorplan holds resolved room geometry, nil when resolution failed.
	Floorplan *resolve.Floorplan
	Walls     []ownership.WallPlan
	Openings  []opening.Opening
	// Geometry is nil when the floor carried any blocking diagnostic.
	Geometry *mesh.Output
}

// Result is the compiled output for a whole plan plus all diagnostics
// gathered across its floors.
type Result struct {
	Plan        *plan.Plan
	Floors      []FloorResult
	Diagnostics diag.List
}

// HasErrors reports whether any floor carried a blocking diagnostic.
func (r *Result) HasErrors() bool {
	return r.Diagnostics.HasErrors()
}

// Compiler drives the per-floor stages with a shared kernel and config.
type Compiler struct {
	cfg      config.Config
	defaults geom.Defaults
	kernel   mesh.Kernel
	logger   *zap.Logger
}

// New builds a compiler. A nil kernel selects the default SDF kernel.
func New(cfg config.Config, kernel mesh.Kernel, logger *zap.Logger) *Compiler {
	if kernel == nil {
		kernel = mesh.NewSDFKernel()
	}
	return &Compiler{
		cfg:      cfg,
		defaults: geom.NormalizeDefaults(cfg.Geometry),
		kernel:   kernel,
		logger:   logger,
	}
}

// Compile runs every floor through the stage sequence. The returned error is
// non-nil only for cancellation; plan-level problems are diagnostics on the
// result, and a floor that fails resolution still leaves the remaining
// floors fully compiled.
//
// Precondition: p passed plan.Plan.Validate.
func (c *Compiler) Compile(ctx context.Context, p *plan.Plan) (*Result, error) {
	start := time.Now()
	res := &Result{Plan: p}

	docUnit := c.cfg.Geometry.Unit()
	if p.DefaultUnit != unit.Unspecified {
		docUnit = p.DefaultUnit
	}
	conv := unit.NewConverter(docUnit)

	for _, floor := range p.Floors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fr, err := c.compileFloor(ctx, floor, p.Styles, conv, &res.Diagnostics)
		if err != nil {
			return nil, err
		}
		res.Floors = append(res.Floors, fr)
	}

	if conv.MixedSystems() {
		res.Diagnostics.Warn(diag.CodeMixedUnits, "", nil,
			"plan mixes metric and imperial units; all values were normalized to meters")
	}

	c.logger.Info("plan compiled",
		zap.String("plan", p.Name),
		zap.Int("floors", len(p.Floors)),
		zap.Int("errors", len(res.Diagnostics.Errors())),
		zap.Int("warnings", len(res.Diagnostics.Warnings())),
		zap.Duration("elapsed", time.Since(start)))
	return res, nil
}

// compileFloor runs one floor to completion or to its first blocking stage.
func (c *Compiler) compileFloor(ctx context.Context, floor *plan.Floor, styles map[string]*plan.Style, conv *unit.Converter, diags *diag.List) (FloorResult, error) {
	fr := FloorResult{Name: floor.Name, Level: floor.Level}
	log := c.logger.With(zap.String("floor", floor.Name))

	start := time.Now()
	fr.Floorplan = resolve.Resolve(floor, styles, c.defaults, conv, diags)
	if fr.Floorplan == nil {
		log.Warn("floor skipped: resolution failed")
		return fr, nil
	}
	log.Debug("rooms resolved",
		zap.Int("rooms", len(fr.Floorplan.Rooms)),
		zap.Duration("elapsed", time.Since(start)))

	if err := ctx.Err(); err != nil {
		return fr, err
	}
	fr.Walls = ownership.Analyze(fr.Floorplan, diags)
	fr.Openings = opening.Place(fr.Floorplan, floor.Connections, c.defaults, conv, diags)

	if diags.FloorHasErrors(floor.Name) {
		log.Warn("floor geometry suppressed: blocking diagnostics")
		return fr, nil
	}

	start = time.Now()
	gen := mesh.NewGenerator(c.kernel, c.defaults, log)
	out, err := gen.Generate(ctx, floor.Name, fr.Walls, fr.Openings, diags)
	if err != nil {
		return fr, err
	}
	fr.Geometry = out
	log.Debug("meshes generated",
		zap.Int("meshes", len(out.Meshes)),
		zap.Int("doors", len(out.Doors)),
		zap.Duration("elapsed", time.Since(start)))
	return fr, nil
}
