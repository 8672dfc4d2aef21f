package plangraph

import (
	"github.com/cfaller/planweave/pkg/roadmap"
)

// Extract flattens a planning tree into a Graph in a single depth-first
// traversal, then runs a second pass linking nested milestone progressions
// through their sibling activities.
//
// The traversal carries the current workstream as context: milestones
// register under whichever workstream encloses them, and activities resolve
// their owning milestone by walking parent links. Milestones outside any
// workstream and activities without a milestone ancestor are ignored - the
// layout has no track to place them on.
func Extract(root *roadmap.Node) *Graph {
	g := &Graph{}
	extractNode(g, root, nil)
	linkParentActivities(g, root)
	return g
}

func extractNode(g *Graph, n *roadmap.Node, current *Workstream) {
	switch n.Type {
	case roadmap.TypeWorkstream:
		current = &Workstream{ID: n.ID, Name: n.Name, Color: n.Color}
		g.AddWorkstream(current)

	case roadmap.TypeMilestone:
		if current != nil {
			m := &Milestone{
				ID:           n.ID,
				Name:         n.Name,
				Deadline:     n.Deadline,
				Status:       n.Status,
				Dependencies: append([]string(nil), n.Dependencies...),
				WorkstreamID: current.ID,
			}
			g.AddMilestone(m)
			for _, dep := range n.Dependencies {
				g.AddDependency(Dependency{Source: dep, Target: m.ID})
			}
		}

	case roadmap.TypeActivity:
		owner := n.MilestoneAncestor()
		if owner == nil || current == nil {
			break
		}
		targets := union(n.SupportedMilestones, n.AdditionalMilestones)
		g.Activities = append(g.Activities, &Activity{
			ID:                 n.ID,
			Name:               n.Name,
			SourceMilestoneID:  owner.ID,
			TargetMilestoneIDs: targets,
			WorkstreamID:       current.ID,
			AutoConnect:        len(targets) == 0,
		})
	}

	for _, c := range n.Children {
		extractNode(g, c, current)
	}
}

// linkParentActivities models nested milestone progressions. When a milestone
// node has both milestone-type children and activity-type children, each such
// activity gains an explicit edge from the parent milestone to every child
// milestone, and stops being auto-connected.
func linkParentActivities(g *Graph, root *roadmap.Node) {
	index := make(map[string]*Activity, len(g.Activities))
	for _, a := range g.Activities {
		index[a.ID] = a
	}

	root.Walk(func(n *roadmap.Node) {
		if !n.IsMilestone() {
			return
		}
		var childMilestones []string
		var childActivities []*Activity
		for _, c := range n.Children {
			switch {
			case c.IsMilestone():
				childMilestones = append(childMilestones, c.ID)
			case c.IsActivity():
				if a, ok := index[c.ID]; ok {
					childActivities = append(childActivities, a)
				}
			}
		}
		if len(childMilestones) == 0 || len(childActivities) == 0 {
			return
		}
		for _, a := range childActivities {
			a.TargetMilestoneIDs = union(a.TargetMilestoneIDs, childMilestones)
			a.AutoConnect = false
		}
	})
}

// union merges two ID lists preserving first-seen order.
func union(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	var out []string
	for _, list := range [][]string{a, b} {
		for _, id := range list {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
