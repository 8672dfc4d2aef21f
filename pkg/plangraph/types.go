// Package plangraph flattens a typed planning tree into the workstream-grouped
// graph consumed by the layout engine: milestones, activities, and dependency
// pairs, with stable ordering so repeated extractions of the same document
// yield identical graphs.
package plangraph

import "time"

// Workstream is a horizontal track owning a set of milestones.
// Workstreams are immutable during a layout pass.
type Workstream struct {
	ID         string
	Name       string
	Color      string
	Milestones []*Milestone
}

// Milestone is a dated node on a workstream track. Exactly one canonical
// instance exists per ID; visual duplicates are a layout-stage concept.
type Milestone struct {
	ID           string
	Name         string
	Deadline     *time.Time
	Status       string
	Dependencies []string
	WorkstreamID string
}

// Activity connects a source milestone to zero or more target milestones.
// AutoConnect is true iff the input supplied no explicit supported or
// additional milestones; such activities are sequenced automatically by the
// connection resolver.
type Activity struct {
	ID                 string
	Name               string
	SourceMilestoneID  string
	TargetMilestoneIDs []string
	WorkstreamID       string
	AutoConnect        bool
}

// Dependency records that Source must complete before Target.
type Dependency struct {
	Source string
	Target string
}

// Graph is the flattened planning graph. Slices preserve document order;
// the milestone index exists for O(1) lookup.
type Graph struct {
	Workstreams  []*Workstream
	Activities   []*Activity
	Dependencies []Dependency

	milestones map[string]*Milestone
}

// Milestone returns the canonical milestone with the given ID.
func (g *Graph) Milestone(id string) (*Milestone, bool) {
	m, ok := g.milestones[id]
	return m, ok
}

// MilestoneCount returns the number of canonical milestones.
func (g *Graph) MilestoneCount() int { return len(g.milestones) }

// Workstream returns the workstream with the given ID.
func (g *Graph) Workstream(id string) (*Workstream, bool) {
	for _, ws := range g.Workstreams {
		if ws.ID == id {
			return ws, true
		}
	}
	return nil, false
}

// WorkstreamIDs returns workstream IDs in document order. The order is
// load-bearing: the timeline scale assigns vertical baselines from it.
func (g *Graph) WorkstreamIDs() []string {
	ids := make([]string, len(g.Workstreams))
	for i, ws := range g.Workstreams {
		ids[i] = ws.ID
	}
	return ids
}

// AddWorkstream appends a workstream track. Tracks keep insertion order.
func (g *Graph) AddWorkstream(ws *Workstream) {
	g.Workstreams = append(g.Workstreams, ws)
}

// AddMilestone registers a canonical milestone under the workstream named by
// m.WorkstreamID. Re-registrations of the same ID and milestones referencing
// unknown workstreams are ignored.
func (g *Graph) AddMilestone(m *Milestone) {
	ws, ok := g.Workstream(m.WorkstreamID)
	if !ok {
		return
	}
	if g.milestones == nil {
		g.milestones = make(map[string]*Milestone)
	}
	if _, exists := g.milestones[m.ID]; exists {
		return
	}
	g.milestones[m.ID] = m
	ws.Milestones = append(ws.Milestones, m)
}

// AddActivity appends an activity.
func (g *Graph) AddActivity(a *Activity) {
	g.Activities = append(g.Activities, a)
}

// AddDependency appends a source-before-target dependency pair.
func (g *Graph) AddDependency(d Dependency) {
	g.Dependencies = append(g.Dependencies, d)
}
