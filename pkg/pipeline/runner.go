package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/cfaller/planweave/pkg/export"
	"github.com/cfaller/planweave/pkg/kv"
	"github.com/cfaller/planweave/pkg/layout"
	"github.com/cfaller/planweave/pkg/layout/state"
	"github.com/cfaller/planweave/pkg/observability"
	"github.com/cfaller/planweave/pkg/plangraph"
	"github.com/cfaller/planweave/pkg/roadmap"
	"github.com/cfaller/planweave/pkg/source"
)

// Runner executes the pipeline with layout caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the store and logger - it doesn't
// keep pipeline results. Multiple goroutines can safely share one Runner.
type Runner struct {
	Store  kv.Store
	Logger *log.Logger
}

// NewRunner creates a runner over the given store.
// A nil store disables persistence (an in-memory store is used).
func NewRunner(store kv.Store, logger *log.Logger) *Runner {
	if store == nil {
		store = kv.NewMemoryStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Store:  store,
		Logger: logger,
	}
}

// Execute runs the complete load → build → extract → layout pipeline.
func (r *Runner) Execute(ctx context.Context, loader source.Loader, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	observability.Pipeline().OnLoadStart(ctx, opts.Dataset)
	doc, err := loader.Load(ctx, opts.Dataset)
	result.Stats.LoadTime = time.Since(loadStart)
	observability.Pipeline().OnLoadComplete(ctx, opts.Dataset, result.Stats.LoadTime, err)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.DatasetID = resolveDatasetID(opts.Dataset, doc)

	// Stage 2: Build and extract
	buildStart := time.Now()
	observability.Pipeline().OnBuildStart(ctx, result.DatasetID)
	root := roadmap.Build(doc.Raw)
	g := plangraph.Extract(root)
	result.Graph = g
	result.Stats.BuildTime = time.Since(buildStart)
	observability.Pipeline().OnBuildComplete(ctx, result.DatasetID, g.MilestoneCount(), result.Stats.BuildTime, nil)
	result.Stats.Workstreams = len(g.Workstreams)
	result.Stats.Milestones = g.MilestoneCount()

	r.Logger.Info("extracted planning graph",
		"dataset", result.DatasetID,
		"workstreams", result.Stats.Workstreams,
		"milestones", result.Stats.Milestones,
		"duration", result.Stats.BuildTime)

	// Overrides are loaded fresh per run; read failures degrade to defaults.
	overrides := state.New(r.Store, result.DatasetID, opts.Logger)
	overrides.Load(ctx)
	result.Overrides = overrides

	// Stage 3: Layout
	layoutStart := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, result.DatasetID, g.MilestoneCount())
	res, document, hit, key := r.layoutWithCache(ctx, doc, g, overrides, opts, result.DatasetID)
	observability.Pipeline().OnLayoutComplete(ctx, result.DatasetID, time.Since(layoutStart), nil)
	result.Layout = res
	result.Document = document
	result.CacheInfo = CacheInfo{LayoutHit: hit, Key: key}
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Placements = len(document.Placements)
	result.Stats.Edges = len(document.Edges)

	r.Logger.Info("computed layout",
		"placements", result.Stats.Placements,
		"edges", result.Stats.Edges,
		"cached", hit,
		"duration", result.Stats.LayoutTime)

	return result, nil
}

// layoutWithCache serves the rendering document from the store when the
// document, geometry, and override snapshot are unchanged. A cache hit
// skips the layout pass, so the raw layout.Result is only populated on
// recompute; the rendering document is always populated.
func (r *Runner) layoutWithCache(ctx context.Context, doc *source.Document, g *plangraph.Graph, overrides *state.Store, opts Options, datasetID string) (layout.Result, export.Document, bool, string) {
	key := layoutKey(datasetID, doc, opts, overrides)

	needsLayout := opts.Refresh
	for _, f := range opts.Formats {
		if f != FormatJSON {
			// DOT-family formats need the raw layout result.
			needsLayout = true
		}
	}

	if !needsLayout {
		if data, hit, err := r.Store.Get(ctx, key); err == nil && hit {
			cached, err := export.Unmarshal(data)
			if err == nil {
				observability.Store().OnStoreHit(ctx, "layout")
				return layout.Result{}, cached, true, key
			}
			// Corrupt entries fall through to recompute.
		}
		observability.Store().OnStoreMiss(ctx, "layout")
	}

	engine := layout.NewEngine(opts.layoutOptions())
	res := engine.Layout(g, overrides)
	document := export.Build(datasetID, res)

	if data, err := document.Marshal(); err == nil {
		_ = r.Store.Set(ctx, key, data)
		observability.Store().OnStoreSet(ctx, "layout", len(data))
	}

	return res, document, false, key
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// Close releases the underlying store.
func (r *Runner) Close() error {
	if r.Store != nil {
		return r.Store.Close()
	}
	return nil
}

// resolveDatasetID picks the effective dataset id: the explicit option, the
// document's own id, or a generated one as a last resort.
func resolveDatasetID(explicit string, doc *source.Document) string {
	if explicit != "" {
		return explicit
	}
	if doc.ID != "" {
		return doc.ID
	}
	return uuid.NewString()
}

// layoutKey derives the cache key for one (document, geometry, overrides)
// combination. Any change to the inputs changes the key.
func layoutKey(datasetID string, doc *source.Document, opts Options, overrides *state.Store) string {
	h := sha256.New()
	if data, err := json.Marshal(doc.Raw); err == nil {
		h.Write(data)
	}
	fmt.Fprintf(h, "|%v|%v|%v|%v", opts.Width, opts.Height, opts.MarginX, opts.MarginY)
	h.Write(overrides.Snapshot())
	return "layout-document-" + datasetID + "-" + hex.EncodeToString(h.Sum(nil))[:16]
}
