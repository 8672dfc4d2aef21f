package roadmap

import "time"

// NodeType identifies the level of a node in the planning hierarchy.
type NodeType string

// Hierarchy levels, top to bottom.
const (
	TypeRoadmap    NodeType = "roadmap"
	TypeStrategy   NodeType = "strategy"
	TypeProgram    NodeType = "program"
	TypeWorkstream NodeType = "workstream"
	TypeMilestone  NodeType = "milestone"
	TypeActivity   NodeType = "activity"
)

// Milestone status values carried through from input documents.
const (
	StatusNotStarted = "not_started"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Node is one vertex of the typed planning tree produced by Build.
//
// All level-specific fields live on the one struct; fields that don't apply
// to a node's type hold their zero value. Parent links are set by Build and
// let downstream traversals resolve an activity's owning milestone.
type Node struct {
	Type        NodeType
	ID          string
	Name        string
	Description string

	// Workstream fields.
	Color string

	// Milestone fields.
	Deadline     *time.Time
	Status       string
	Dependencies []string

	// Activity fields.
	SupportedMilestones  []string
	AdditionalMilestones []string

	Parent   *Node
	Children []*Node
}

// IsMilestone reports whether the node is a milestone.
func (n *Node) IsMilestone() bool { return n.Type == TypeMilestone }

// IsActivity reports whether the node is an activity.
func (n *Node) IsActivity() bool { return n.Type == TypeActivity }

// Walk visits the node and all descendants in depth-first order.
// Children are visited in document order, so repeated walks over the
// same tree are deterministic.
func (n *Node) Walk(visit func(*Node)) {
	visit(n)
	for _, c := range n.Children {
		c.Walk(visit)
	}
}

// MilestoneAncestor walks parent links until it finds a milestone node.
// Returns nil if no milestone ancestor exists.
func (n *Node) MilestoneAncestor() *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.IsMilestone() {
			return p
		}
	}
	return nil
}
