package layout

import (
	"fmt"

	"github.com/cfaller/planweave/pkg/plangraph"
)

// DuplicateID returns the placement ID for a cross-workstream dependency
// duplicate. The key deliberately includes the target: two dependents in the
// same foreign workstream each get their own copy of the source node.
func DuplicateID(sourceID, targetID string) string {
	return fmt.Sprintf("duplicate-%s-%s", sourceID, targetID)
}

// ActivityDuplicateID returns the placement ID for a duplicate created when
// an activity targets a milestone outside its own workstream.
func ActivityDuplicateID(targetID, activityID string) string {
	return fmt.Sprintf("activity-duplicate-%s-%s", targetID, activityID)
}

// ResolvePlacements computes every on-screen occurrence of every milestone.
//
// Order and IDs are fully determined by the graph, so recomputation over the
// same inputs is idempotent:
//
//  1. One canonical placement per milestone (ID = milestone ID), in
//     workstream/document order.
//  2. One duplicate of the dependency source inside the target's workstream
//     for each cross-workstream dependency pair, in dependency order.
//  3. One duplicate of each cross-workstream activity target inside the
//     activity's workstream, in activity order, deduplicated by ID.
//
// Duplication keeps every visible edge inside a coherent local neighborhood
// instead of crossing unrelated tracks, at the cost of showing a milestone
// more than once.
func ResolvePlacements(g *plangraph.Graph) []*Placement {
	var placements []*Placement
	seen := make(map[string]struct{})

	add := func(p *Placement) {
		if _, dup := seen[p.ID]; dup {
			return
		}
		seen[p.ID] = struct{}{}
		placements = append(placements, p)
	}

	// Canonical placements, one per real milestone.
	for _, ws := range g.Workstreams {
		for _, m := range ws.Milestones {
			add(&Placement{
				ID:           m.ID,
				Milestone:    m,
				WorkstreamID: m.WorkstreamID,
			})
		}
	}

	// Dependency duplicates: the source milestone appears in the target's
	// workstream so the dependency edge stays local there.
	for _, d := range g.Dependencies {
		src, ok := g.Milestone(d.Source)
		if !ok {
			continue
		}
		tgt, ok := g.Milestone(d.Target)
		if !ok {
			continue
		}
		if src.WorkstreamID == tgt.WorkstreamID {
			continue
		}
		add(&Placement{
			ID:                  DuplicateID(src.ID, tgt.ID),
			Milestone:           src,
			WorkstreamID:        tgt.WorkstreamID,
			Duplicate:           true,
			OriginalMilestoneID: src.ID,
		})
	}

	// Activity duplicates: a foreign target milestone appears in the
	// activity's workstream. The ID keys on (target, activity), so an
	// activity referencing the same foreign milestone twice yields one
	// duplicate.
	for _, a := range g.Activities {
		for _, targetID := range a.TargetMilestoneIDs {
			tgt, ok := g.Milestone(targetID)
			if !ok {
				continue
			}
			if tgt.WorkstreamID == a.WorkstreamID {
				continue
			}
			add(&Placement{
				ID:                  ActivityDuplicateID(tgt.ID, a.ID),
				Milestone:           tgt,
				WorkstreamID:        a.WorkstreamID,
				Duplicate:           true,
				OriginalMilestoneID: tgt.ID,
				ActivityID:          a.ID,
			})
		}
	}

	return placements
}
