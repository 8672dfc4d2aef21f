// Package pipeline runs the complete planweave pipeline: load a document,
// build the hierarchy, extract the planning graph, compute the layout, and
// assemble the rendering document.
//
// By centralizing this logic, CLI and API entry points behave identically.
//
// # Usage
//
//	runner := pipeline.NewRunner(store, logger)
//	result, err := runner.Execute(ctx, loader, pipeline.Options{Dataset: "q3"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	data, _ := result.Document.Marshal()
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/cfaller/planweave/pkg/errors"
	"github.com/cfaller/planweave/pkg/export"
	"github.com/cfaller/planweave/pkg/layout"
	"github.com/cfaller/planweave/pkg/layout/state"
	"github.com/cfaller/planweave/pkg/plangraph"
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
}

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Dataset selects the document for remote loaders and scopes
	// persisted overrides. Empty means "use the document's own id".
	Dataset string `json:"dataset,omitempty"`

	// Refresh bypasses the layout cache.
	Refresh bool `json:"refresh,omitempty"`

	// Layout geometry. Zero values use the engine defaults.
	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"`
	MarginX float64 `json:"margin_x,omitempty"`
	MarginY float64 `json:"margin_y,omitempty"`

	// Detailed includes deadlines and statuses in DOT labels.
	Detailed bool `json:"detailed,omitempty"`

	// Formats lists the artifact formats to produce.
	Formats []string `json:"formats,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// ValidateAndSetDefaults checks option consistency and fills defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	for _, f := range o.Formats {
		if !ValidFormats[f] {
			return errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", f)
		}
	}
	if o.Dataset != "" {
		if err := errors.ValidateDatasetID(o.Dataset); err != nil {
			return err
		}
	}
	if o.Width < 0 || o.Height < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "frame dimensions cannot be negative")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// layoutOptions maps pipeline geometry onto engine options.
func (o Options) layoutOptions() layout.Options {
	return layout.Options{
		Width:   o.Width,
		Height:  o.Height,
		MarginX: o.MarginX,
		MarginY: o.MarginY,
		Logger:  o.Logger,
	}
}

// Stats captures timing and size information for one run.
type Stats struct {
	LoadTime   time.Duration `json:"load_time"`
	BuildTime  time.Duration `json:"build_time"`
	LayoutTime time.Duration `json:"layout_time"`

	Workstreams int `json:"workstreams"`
	Milestones  int `json:"milestones"`
	Placements  int `json:"placements"`
	Edges       int `json:"edges"`
}

// CacheInfo reports whether the layout stage was served from cache.
type CacheInfo struct {
	LayoutHit bool   `json:"layout_hit"`
	Key       string `json:"key,omitempty"`
}

// Result is the output of one pipeline run.
type Result struct {
	DatasetID string
	Graph     *plangraph.Graph
	Layout    layout.Result
	Document  export.Document
	Overrides *state.Store

	Stats     Stats
	CacheInfo CacheInfo
}
