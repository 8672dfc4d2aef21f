// Package layout is the planweave layout engine. It turns a flattened
// planning graph into positioned placements and classified edges:
//
//  1. Placement resolution - one canonical placement per milestone plus
//     duplicates that keep cross-workstream relationships visually local.
//  2. Timeline scaling - deadlines map to x, workstream tracks to y, with
//     bounded staggering for same-day collisions.
//  3. Override application - persisted drag adjustments merge over the
//     computed defaults.
//  4. Connection resolution - the rendered edge set, classified into five
//     kinds, with unresolvable edges silently dropped.
//
// The engine itself is a pure function of (graph, overrides): it holds no
// mutable state, so any input change is handled by a full recompute. Drawing
// is the caller's concern; the output is plain coordinates.
package layout

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/cfaller/planweave/pkg/plangraph"
)

// Default frame geometry and collision constants.
const (
	DefaultWidth   = 1200.0
	DefaultHeight  = 600.0
	DefaultMarginX = 60.0
	DefaultMarginY = 40.0

	// DefaultStaggerSpread bounds the total vertical spread of a
	// same-day collision group, so arbitrarily many placements stay
	// within their track.
	DefaultStaggerSpread = 120.0

	// DefaultStaggerGap is the preferred spacing between staggered
	// placements before the spread cap kicks in.
	DefaultStaggerGap = 28.0

	// DefaultFanGap is the perpendicular offset step between curved
	// paths that share a source/target pair.
	DefaultFanGap = 14.0
)

// Point is an on-screen coordinate, keyed by placement ID in coordinate maps.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Placement is a single on-screen occurrence of a milestone within one
// workstream track. Exactly one non-duplicate placement exists per
// milestone; duplicates are created on demand for cross-workstream
// relationships and never live in the milestone's own workstream.
type Placement struct {
	ID           string
	Milestone    *plangraph.Milestone
	WorkstreamID string
	Duplicate    bool

	// OriginalMilestoneID is set on duplicates only.
	OriginalMilestoneID string
	// ActivityID is set on activity-driven duplicates only.
	ActivityID string
}

// EdgeKind classifies a rendered edge.
type EdgeKind string

// The five edge kinds produced by the connection resolver.
const (
	EdgeAuto            EdgeKind = "auto"
	EdgeExplicitSame    EdgeKind = "explicit-same"
	EdgeExplicitCross   EdgeKind = "explicit-cross"
	EdgeDependencySame  EdgeKind = "dependency-same"
	EdgeDependencyCross EdgeKind = "dependency-cross"
)

// Edge is a rendered connection between two placements. Both endpoint
// coordinates are resolved; edges with a missing endpoint are dropped
// during resolution and never appear here.
type Edge struct {
	ID       string
	SourceID string
	TargetID string
	Source   Point
	Target   Point
	Kind     EdgeKind

	// FanOffset is the perpendicular offset for explicit-same edges that
	// share a (source, target) pair, indexed symmetrically around the
	// centerline. Zero for single edges and all other kinds.
	FanOffset float64

	// Fallback marks a degraded dependency-cross edge drawn from the
	// original placement to its duplicate because the target placement
	// was missing.
	Fallback bool
}

// Overrides supplies persisted vertical adjustments. The layout state store
// implements this; a nil Overrides means "all defaults".
type Overrides interface {
	// WorkstreamY returns the overridden baseline for a workstream.
	WorkstreamY(id string) (float64, bool)
	// PlacementY returns the overridden absolute y for a placement.
	PlacementY(id string) (float64, bool)
}

// Options configures frame geometry and collision behavior.
type Options struct {
	Width   float64
	Height  float64
	MarginX float64
	MarginY float64

	StaggerSpread float64
	StaggerGap    float64
	FanGap        float64

	Logger *log.Logger
}

// withDefaults fills zero-valued fields.
func (o Options) withDefaults() Options {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.MarginX == 0 {
		o.MarginX = DefaultMarginX
	}
	if o.MarginY == 0 {
		o.MarginY = DefaultMarginY
	}
	if o.StaggerSpread == 0 {
		o.StaggerSpread = DefaultStaggerSpread
	}
	if o.StaggerGap == 0 {
		o.StaggerGap = DefaultStaggerGap
	}
	if o.FanGap == 0 {
		o.FanGap = DefaultFanGap
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return o
}

// Result is one full layout pass: ordered placements, their coordinates
// after override application, the classified edge set, and any warnings
// (currently dependency cycles). Baselines are the computed per-workstream
// track positions before override application; drag commits need them to
// derive deltas.
type Result struct {
	Placements  []*Placement
	Coordinates map[string]Point
	Edges       []Edge
	Baselines   map[string]float64
	Warnings    []string
}

// Engine computes layouts. It is stateless and safe for concurrent use.
type Engine struct {
	opts Options
}

// NewEngine creates an engine with defaults applied to opts.
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts.withDefaults()}
}

// Options returns the engine's resolved options.
func (e *Engine) Options() Options { return e.opts }

// Layout runs the full pipeline over a graph. The result is deterministic
// for a fixed graph and override snapshot: same placement IDs, same
// coordinates, same edges.
func (e *Engine) Layout(g *plangraph.Graph, ov Overrides) Result {
	placements := ResolvePlacements(g)
	scale := ComputeScale(g, e.opts)
	coords := scale.Coordinates(placements)
	ApplyOverrides(coords, placements, scale.Baselines(), ov)
	edges := ResolveConnections(g, placements, coords, e.opts)

	var warnings []string
	for _, cycle := range plangraph.FindCycles(g) {
		warnings = append(warnings, "dependency cycle: "+joinPath(cycle))
	}

	e.opts.Logger.Debug("layout pass",
		"placements", len(placements),
		"edges", len(edges),
		"warnings", len(warnings))

	return Result{
		Placements:  placements,
		Coordinates: coords,
		Edges:       edges,
		Baselines:   scale.Baselines(),
		Warnings:    warnings,
	}
}

func joinPath(ids []string) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += " -> "
		}
		out += id
	}
	return out
}

// ApplyOverrides merges persisted adjustments over computed defaults, in
// place. Placement-level entries win outright. A workstream-level entry
// shifts every placement on that track by the baseline delta unless the
// placement has its own entry. The merge never blends: each final y is
// either an override value or a default, not an interpolation.
func ApplyOverrides(coords map[string]Point, placements []*Placement, baselines map[string]float64, ov Overrides) {
	if ov == nil {
		return
	}
	for _, p := range placements {
		c, ok := coords[p.ID]
		if !ok {
			continue
		}
		if y, ok := ov.PlacementY(p.ID); ok {
			c.Y = y
			coords[p.ID] = c
			continue
		}
		if y, ok := ov.WorkstreamY(p.WorkstreamID); ok {
			if base, ok := baselines[p.WorkstreamID]; ok {
				c.Y += y - base
				coords[p.ID] = c
			}
		}
	}
}
