package state

import (
	"context"
	"testing"

	"github.com/cfaller/planweave/pkg/kv"
	"github.com/cfaller/planweave/pkg/layout"
)

func newStore(t *testing.T) (*Store, *kv.MemoryStore) {
	t.Helper()
	backend := kv.NewMemoryStore()
	t.Cleanup(func() { backend.Close() })
	store := New(backend, "demo", nil)
	store.Load(context.Background())
	return store, backend
}

func TestPlacementDrag(t *testing.T) {
	ctx := context.Background()
	store, backend := newStore(t)

	if err := store.CommitPlacementDrag(ctx, "milestone-1", 210); err != nil {
		t.Fatalf("CommitPlacementDrag() error = %v", err)
	}

	y, ok := store.PlacementY("milestone-1")
	if !ok || y != 210 {
		t.Errorf("PlacementY() = %v, %v, want 210, true", y, ok)
	}
	if _, ok := store.WorkstreamY("milestone-1"); ok {
		t.Error("placement drag leaked into workstream overrides")
	}

	// Reload from the backend to confirm the write went through.
	fresh := New(backend, "demo", nil)
	fresh.Load(ctx)
	if y, ok := fresh.PlacementY("milestone-1"); !ok || y != 210 {
		t.Errorf("reloaded PlacementY() = %v, %v, want 210, true", y, ok)
	}
}

func TestPlacementDragIdempotent(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t)

	if err := store.CommitPlacementDrag(ctx, "milestone-1", 210); err != nil {
		t.Fatalf("CommitPlacementDrag() error = %v", err)
	}
	if err := store.CommitPlacementDrag(ctx, "milestone-1", 210); err != nil {
		t.Fatalf("CommitPlacementDrag() repeat error = %v", err)
	}

	if got := len(store.Placements()); got != 1 {
		t.Errorf("stored placement entries = %d, want 1", got)
	}
}

func TestWorkstreamDragShiftsTrackPlacements(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t)

	placements := []*layout.Placement{
		{ID: "m1", WorkstreamID: "ws-a"},
		{ID: "m2", WorkstreamID: "ws-a"},
		{ID: "m3", WorkstreamID: "ws-b"},
	}
	coords := map[string]layout.Point{
		"m1": {X: 100, Y: 140},
		"m2": {X: 300, Y: 168},
		"m3": {X: 200, Y: 420},
	}

	trackYs := TrackYs(placements, coords, "ws-a")
	if len(trackYs) != 2 {
		t.Fatalf("TrackYs() returned %d entries, want 2", len(trackYs))
	}

	// Track moved from baseline 140 to 180.
	if err := store.CommitWorkstreamDrag(ctx, "ws-a", 180, 40, trackYs); err != nil {
		t.Fatalf("CommitWorkstreamDrag() error = %v", err)
	}

	if y, ok := store.WorkstreamY("ws-a"); !ok || y != 180 {
		t.Errorf("WorkstreamY(ws-a) = %v, %v, want 180, true", y, ok)
	}
	if y, ok := store.PlacementY("m1"); !ok || y != 180 {
		t.Errorf("PlacementY(m1) = %v, %v, want 180, true", y, ok)
	}
	if y, ok := store.PlacementY("m2"); !ok || y != 208 {
		t.Errorf("PlacementY(m2) = %v, %v, want 208, true", y, ok)
	}
	if _, ok := store.PlacementY("m3"); ok {
		t.Error("workstream drag shifted a placement on another track")
	}
}

func TestWorkstreamDragThenPlacementDrag(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t)

	trackYs := map[string]float64{"m1": 140, "m2": 168}
	if err := store.CommitWorkstreamDrag(ctx, "ws-a", 180, 40, trackYs); err != nil {
		t.Fatalf("CommitWorkstreamDrag() error = %v", err)
	}
	if err := store.CommitPlacementDrag(ctx, "m1", 250); err != nil {
		t.Fatalf("CommitPlacementDrag() error = %v", err)
	}

	// A second workstream drag shifts from the placements' current ys,
	// so the single-placement adjustment is carried along, not reset.
	trackYs = map[string]float64{"m1": 250, "m2": 208}
	if err := store.CommitWorkstreamDrag(ctx, "ws-a", 190, 10, trackYs); err != nil {
		t.Fatalf("CommitWorkstreamDrag() error = %v", err)
	}

	if y, _ := store.PlacementY("m1"); y != 260 {
		t.Errorf("PlacementY(m1) = %v, want 260", y)
	}
	if y, _ := store.PlacementY("m2"); y != 218 {
		t.Errorf("PlacementY(m2) = %v, want 218", y)
	}
}

func TestRemoveSingleOverride(t *testing.T) {
	ctx := context.Background()
	store, backend := newStore(t)

	if err := store.CommitWorkstreamDrag(ctx, "ws-a", 180, 40, map[string]float64{"m1": 140, "m2": 168}); err != nil {
		t.Fatalf("CommitWorkstreamDrag() error = %v", err)
	}

	found, err := store.RemoveWorkstream(ctx, "ws-a")
	if err != nil {
		t.Fatalf("RemoveWorkstream() error = %v", err)
	}
	if !found {
		t.Fatal("RemoveWorkstream() found = false, want true")
	}
	if _, ok := store.WorkstreamY("ws-a"); ok {
		t.Error("workstream override survived removal")
	}
	// The placement records written by the drag are independent entries.
	if _, ok := store.PlacementY("m1"); !ok {
		t.Error("placement override removed alongside workstream override")
	}

	found, err = store.RemovePlacement(ctx, "m1")
	if err != nil {
		t.Fatalf("RemovePlacement() error = %v", err)
	}
	if !found {
		t.Fatal("RemovePlacement() found = false, want true")
	}

	fresh := New(backend, "demo", nil)
	fresh.Load(ctx)
	if _, ok := fresh.WorkstreamY("ws-a"); ok {
		t.Error("workstream removal not persisted")
	}
	if _, ok := fresh.PlacementY("m1"); ok {
		t.Error("placement removal not persisted")
	}
	if _, ok := fresh.PlacementY("m2"); !ok {
		t.Error("unrelated placement override lost")
	}
}

func TestRemoveMissingOverride(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t)

	if found, err := store.RemoveWorkstream(ctx, "ws-x"); err != nil || found {
		t.Errorf("RemoveWorkstream() = %v, %v, want false, nil", found, err)
	}
	if found, err := store.RemovePlacement(ctx, "m-x"); err != nil || found {
		t.Errorf("RemovePlacement() = %v, %v, want false, nil", found, err)
	}
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	store, backend := newStore(t)

	if err := store.CommitWorkstreamDrag(ctx, "ws-a", 180, 40, map[string]float64{"m1": 140}); err != nil {
		t.Fatalf("CommitWorkstreamDrag() error = %v", err)
	}
	if err := store.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	if !store.Empty() {
		t.Error("store not empty after Reset()")
	}
	if backend.Len() != 0 {
		t.Errorf("backend still holds %d keys after Reset()", backend.Len())
	}

	fresh := New(backend, "demo", nil)
	fresh.Load(ctx)
	if !fresh.Empty() {
		t.Error("overrides survived Reset() in the backend")
	}
}

func TestDatasetScoping(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemoryStore()
	defer backend.Close()

	first := New(backend, "alpha", nil)
	first.Load(ctx)
	if err := first.CommitPlacementDrag(ctx, "m1", 99); err != nil {
		t.Fatalf("CommitPlacementDrag() error = %v", err)
	}

	second := New(backend, "beta", nil)
	second.Load(ctx)
	if _, ok := second.PlacementY("m1"); ok {
		t.Error("override from dataset alpha visible in dataset beta")
	}
}

func TestLoadToleratesCorruptData(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemoryStore()
	defer backend.Close()

	if err := backend.Set(ctx, PlacementKey("demo"), []byte("not json")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	store := New(backend, "demo", nil)
	store.Load(ctx)
	if !store.Empty() {
		t.Error("corrupt data produced overrides")
	}
}
