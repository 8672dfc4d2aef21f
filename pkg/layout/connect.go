package layout

import (
	"fmt"
	"sort"

	"github.com/cfaller/planweave/pkg/plangraph"
)

// ResolveConnections derives the rendered edge set from the graph, its
// placements, and the final (post-override) coordinate map.
//
// Edge kinds and construction rules:
//
//   - auto: each auto-connect activity links its source milestone to the
//     next milestone in the workstream's deadline order (no edge if last).
//   - explicit-same: activity target in the activity's own workstream;
//     edges sharing a (source, target) pair fan out with symmetric
//     perpendicular offsets so they stay individually selectable.
//   - explicit-cross: source milestone to the activity-duplicate placement
//     in the activity's workstream, never to the foreign canonical.
//   - dependency-same: canonical to canonical within one workstream.
//   - dependency-cross: the dependency duplicate to the target's canonical
//     placement; if the target placement is missing, a degraded edge from
//     the original canonical to its duplicate is drawn instead.
//
// Any edge whose endpoints are not both present in the coordinate map is
// silently dropped - degraded input never produces placeholder geometry.
func ResolveConnections(g *plangraph.Graph, placements []*Placement, coords map[string]Point, opts Options) []Edge {
	opts = opts.withDefaults()

	r := &connector{
		graph:  g,
		coords: coords,
		seen:   make(map[string]struct{}),
	}

	r.autoEdges()
	r.explicitEdges(opts)
	r.dependencyEdges()

	return r.edges
}

type connector struct {
	graph  *plangraph.Graph
	coords map[string]Point
	edges  []Edge
	seen   map[string]struct{}
}

// add appends an edge if both endpoints resolve and the ID is new.
func (r *connector) add(e Edge) {
	if _, dup := r.seen[e.ID]; dup {
		return
	}
	src, ok := r.coords[e.SourceID]
	if !ok {
		return
	}
	tgt, ok := r.coords[e.TargetID]
	if !ok {
		return
	}
	e.Source, e.Target = src, tgt
	r.seen[e.ID] = struct{}{}
	r.edges = append(r.edges, e)
}

// autoEdges sequences auto-connect activities along their workstream's
// deadline order.
func (r *connector) autoEdges() {
	// Deadline-ascending milestone order per workstream. Undated
	// milestones sort first, ties keep document order.
	orders := make(map[string][]*plangraph.Milestone, len(r.graph.Workstreams))
	for _, ws := range r.graph.Workstreams {
		sorted := append([]*plangraph.Milestone(nil), ws.Milestones...)
		sort.SliceStable(sorted, func(i, j int) bool {
			a, b := sorted[i].Deadline, sorted[j].Deadline
			switch {
			case a == nil && b == nil:
				return false
			case a == nil:
				return true
			case b == nil:
				return false
			default:
				return a.Before(*b)
			}
		})
		orders[ws.ID] = sorted
	}

	for _, a := range r.graph.Activities {
		if !a.AutoConnect {
			continue
		}
		src, ok := r.graph.Milestone(a.SourceMilestoneID)
		if !ok {
			continue
		}
		order := orders[src.WorkstreamID]
		next := nextMilestone(order, src.ID)
		if next == nil {
			continue
		}
		r.add(Edge{
			ID:       fmt.Sprintf("auto-%s", a.ID),
			SourceID: src.ID,
			TargetID: next.ID,
			Kind:     EdgeAuto,
		})
	}
}

func nextMilestone(order []*plangraph.Milestone, id string) *plangraph.Milestone {
	for i, m := range order {
		if m.ID == id {
			if i+1 < len(order) {
				return order[i+1]
			}
			return nil
		}
	}
	return nil
}

// explicitEdges handles activities with explicit targets, same- and
// cross-workstream, assigning fan offsets to same-pair groups.
func (r *connector) explicitEdges(opts Options) {
	type pair struct{ source, target string }
	fanStart := make(map[pair]int) // index of first edge of each pair group

	var sameEdges []Edge
	for _, a := range r.graph.Activities {
		if a.AutoConnect {
			continue
		}
		src, ok := r.graph.Milestone(a.SourceMilestoneID)
		if !ok {
			continue
		}
		for _, targetID := range a.TargetMilestoneIDs {
			tgt, ok := r.graph.Milestone(targetID)
			if !ok {
				continue
			}
			if tgt.WorkstreamID == a.WorkstreamID {
				sameEdges = append(sameEdges, Edge{
					ID:       fmt.Sprintf("explicit-%s-%s", a.ID, tgt.ID),
					SourceID: src.ID,
					TargetID: tgt.ID,
					Kind:     EdgeExplicitSame,
				})
				continue
			}
			r.add(Edge{
				ID:       fmt.Sprintf("explicit-cross-%s-%s", a.ID, tgt.ID),
				SourceID: src.ID,
				TargetID: ActivityDuplicateID(tgt.ID, a.ID),
				Kind:     EdgeExplicitCross,
			})
		}
	}

	// Fan assignment: count group sizes first, then index each edge
	// symmetrically around the centerline.
	counts := make(map[pair]int)
	for _, e := range sameEdges {
		counts[pair{e.SourceID, e.TargetID}]++
	}
	for _, e := range sameEdges {
		p := pair{e.SourceID, e.TargetID}
		n := counts[p]
		if n > 1 {
			i := fanStart[p]
			fanStart[p]++
			e.FanOffset = (float64(i) - float64(n-1)/2) * opts.FanGap
		}
		r.add(e)
	}
}

// dependencyEdges handles explicit milestone dependencies.
func (r *connector) dependencyEdges() {
	for _, d := range r.graph.Dependencies {
		src, ok := r.graph.Milestone(d.Source)
		if !ok {
			continue
		}
		tgt, ok := r.graph.Milestone(d.Target)
		if !ok {
			continue
		}

		if src.WorkstreamID == tgt.WorkstreamID {
			r.add(Edge{
				ID:       fmt.Sprintf("dep-%s-%s", src.ID, tgt.ID),
				SourceID: src.ID,
				TargetID: tgt.ID,
				Kind:     EdgeDependencySame,
			})
			continue
		}

		dupID := DuplicateID(src.ID, tgt.ID)
		if _, ok := r.coords[tgt.ID]; ok {
			r.add(Edge{
				ID:       fmt.Sprintf("dep-cross-%s-%s", src.ID, tgt.ID),
				SourceID: dupID,
				TargetID: tgt.ID,
				Kind:     EdgeDependencyCross,
			})
			continue
		}
		// Target placement missing: degraded but still-visible connection
		// from the original canonical placement to its duplicate.
		r.add(Edge{
			ID:       fmt.Sprintf("dep-cross-%s-%s", src.ID, tgt.ID),
			SourceID: src.ID,
			TargetID: dupID,
			Kind:     EdgeDependencyCross,
			Fallback: true,
		})
	}
}
