// Package state persists layout overrides for a single dataset. A Store is
// constructed per dataset session and injected into the layout pipeline;
// there is no ambient process-wide state.
package state

import (
	"context"
	"encoding/json"
	"io"

	"github.com/charmbracelet/log"

	"github.com/cfaller/planweave/pkg/kv"
	"github.com/cfaller/planweave/pkg/layout"
)

// WorkstreamKey returns the persistence key for workstream overrides.
func WorkstreamKey(datasetID string) string {
	return "workstream-positions-" + datasetID
}

// PlacementKey returns the persistence key for placement overrides.
func PlacementKey(datasetID string) string {
	return "placement-positions-" + datasetID
}

// Store holds the override maps for one dataset and writes them through to a
// kv.Store on each commit. It implements layout.Overrides.
//
// Persistence is last-writer-wins: each commit overwrites the stored map
// wholesale, and state is read once via Load rather than on every lookup.
type Store struct {
	kv      kv.Store
	dataset string
	logger  *log.Logger

	workstreams map[string]float64
	placements  map[string]float64
}

// New creates a store for the given dataset. Call Load before first use to
// pick up previously persisted overrides.
func New(backend kv.Store, datasetID string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Store{
		kv:          backend,
		dataset:     datasetID,
		logger:      logger,
		workstreams: make(map[string]float64),
		placements:  make(map[string]float64),
	}
}

// DatasetID returns the dataset this store is scoped to.
func (s *Store) DatasetID() string { return s.dataset }

// Load reads both override maps from the backend. Read or decode failures
// are logged and treated as "no overrides present"; they never propagate.
func (s *Store) Load(ctx context.Context) {
	s.workstreams = s.load(ctx, WorkstreamKey(s.dataset))
	s.placements = s.load(ctx, PlacementKey(s.dataset))
}

func (s *Store) load(ctx context.Context, key string) map[string]float64 {
	out := make(map[string]float64)

	data, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		s.logger.Warn("reading overrides failed, using defaults", "key", key, "error", err)
		return out
	}
	if !ok {
		return out
	}
	if err := json.Unmarshal(data, &out); err != nil {
		s.logger.Warn("decoding overrides failed, using defaults", "key", key, "error", err)
		return make(map[string]float64)
	}
	return out
}

// WorkstreamY returns the overridden baseline for a workstream.
func (s *Store) WorkstreamY(id string) (float64, bool) {
	y, ok := s.workstreams[id]
	return y, ok
}

// PlacementY returns the overridden absolute y for a placement.
func (s *Store) PlacementY(id string) (float64, bool) {
	y, ok := s.placements[id]
	return y, ok
}

// Empty reports whether no overrides are recorded.
func (s *Store) Empty() bool {
	return len(s.workstreams) == 0 && len(s.placements) == 0
}

// Workstreams returns a copy of the workstream override map.
func (s *Store) Workstreams() map[string]float64 { return copyMap(s.workstreams) }

// Placements returns a copy of the placement override map.
func (s *Store) Placements() map[string]float64 { return copyMap(s.placements) }

// CommitWorkstreamDrag records y as the new baseline for the workstream and
// shifts each placement on that track by delta, persisting every placement's
// new absolute y individually. trackYs maps placement IDs on the track to
// their current absolute y. Recording placements individually means a later
// single-placement drag is not silently reset by a workstream move.
func (s *Store) CommitWorkstreamDrag(ctx context.Context, workstreamID string, y, delta float64, trackYs map[string]float64) error {
	s.workstreams[workstreamID] = y
	for id, cur := range trackYs {
		s.placements[id] = cur + delta
	}

	if err := s.persist(ctx, WorkstreamKey(s.dataset), s.workstreams); err != nil {
		return err
	}
	return s.persist(ctx, PlacementKey(s.dataset), s.placements)
}

// CommitPlacementDrag records y for a single placement. Committing the same
// value twice is a no-op.
func (s *Store) CommitPlacementDrag(ctx context.Context, placementID string, y float64) error {
	if cur, ok := s.placements[placementID]; ok && cur == y {
		return nil
	}
	s.placements[placementID] = y
	return s.persist(ctx, PlacementKey(s.dataset), s.placements)
}

// RemoveWorkstream drops a single workstream override and persists the
// remaining map. It reports whether an override was recorded for the id.
// Placement overrides written by an earlier drag of that track are kept;
// they are individual records in their own right.
func (s *Store) RemoveWorkstream(ctx context.Context, workstreamID string) (bool, error) {
	if _, ok := s.workstreams[workstreamID]; !ok {
		return false, nil
	}
	delete(s.workstreams, workstreamID)
	return true, s.persist(ctx, WorkstreamKey(s.dataset), s.workstreams)
}

// RemovePlacement drops a single placement override and persists the
// remaining map. It reports whether an override was recorded for the id.
func (s *Store) RemovePlacement(ctx context.Context, placementID string) (bool, error) {
	if _, ok := s.placements[placementID]; !ok {
		return false, nil
	}
	delete(s.placements, placementID)
	return true, s.persist(ctx, PlacementKey(s.dataset), s.placements)
}

// Reset clears both override maps and removes the persisted entries,
// reverting all coordinates to their computed defaults.
func (s *Store) Reset(ctx context.Context) error {
	s.workstreams = make(map[string]float64)
	s.placements = make(map[string]float64)

	if err := s.kv.Remove(ctx, WorkstreamKey(s.dataset)); err != nil {
		return err
	}
	return s.kv.Remove(ctx, PlacementKey(s.dataset))
}

// Snapshot returns a stable encoding of both override maps, suitable for
// cache keying. Identical override state yields identical bytes.
func (s *Store) Snapshot() []byte {
	data, err := json.Marshal(struct {
		Workstreams map[string]float64 `json:"workstreams"`
		Placements  map[string]float64 `json:"placements"`
	}{s.workstreams, s.placements})
	if err != nil {
		return nil
	}
	return data
}

func (s *Store) persist(ctx context.Context, key string, m map[string]float64) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, key, data); err != nil {
		s.logger.Warn("writing overrides failed", "key", key, "error", err)
		return err
	}
	return nil
}

func copyMap(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// TrackYs collects the current absolute y of every placement on a
// workstream track, keyed by placement ID. Used to prepare a workstream
// drag commit from a layout result.
func TrackYs(placements []*layout.Placement, coords map[string]layout.Point, workstreamID string) map[string]float64 {
	out := make(map[string]float64)
	for _, p := range placements {
		if p.WorkstreamID != workstreamID {
			continue
		}
		if c, ok := coords[p.ID]; ok {
			out[p.ID] = c.Y
		}
	}
	return out
}

var _ layout.Overrides = (*Store)(nil)
