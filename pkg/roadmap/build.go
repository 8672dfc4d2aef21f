// Package roadmap normalizes raw nested planning documents into a typed tree.
//
// Input documents arrive as generic decoded JSON/YAML (map[string]any) with
// levels roadmap → strategy → program → workstream → milestone → activity.
// Build copies the known fields of each level, substituting zero values for
// anything absent or malformed. There is no validation and no failure path:
// a document full of holes still produces a usable tree, it just carries
// less information. This keeps the layout pipeline total over arbitrary
// input, as required by the downstream stages.
package roadmap

import (
	"fmt"
	"time"
)

type childSpec struct {
	key  string
	kind NodeType
}

// Child collection keys per level. A milestone may nest both further
// milestones and activities, which is what linkParentActivities in the
// extraction stage keys on.
var childSpecs = map[NodeType][]childSpec{
	TypeRoadmap:    {{"strategies", TypeStrategy}},
	TypeStrategy:   {{"programs", TypeProgram}},
	TypeProgram:    {{"workstreams", TypeWorkstream}},
	TypeWorkstream: {{"milestones", TypeMilestone}},
	TypeMilestone:  {{"milestones", TypeMilestone}, {"activities", TypeActivity}},
	TypeActivity:   nil,
}

// Build converts a raw nested document into a typed tree rooted at a
// roadmap node. The operation is O(total node count) and never fails:
// unknown node types become empty-children leaves, missing optional fields
// default to zero values, and unparseable deadlines are dropped.
func Build(raw map[string]any) *Node {
	return buildNode(raw, TypeRoadmap, nil)
}

func buildNode(raw map[string]any, fallback NodeType, parent *Node) *Node {
	typ := fallback
	if t := str(raw["type"]); t != "" {
		typ = NodeType(t)
	}

	n := &Node{
		Type:        typ,
		ID:          str(raw["id"]),
		Name:        str(raw["name"]),
		Description: str(raw["description"]),
		Parent:      parent,
	}

	switch typ {
	case TypeWorkstream:
		n.Color = str(raw["color"])
	case TypeMilestone:
		n.Deadline = date(raw["deadline"])
		n.Status = str(raw["status"])
		if n.Status == "" {
			n.Status = StatusNotStarted
		}
		n.Dependencies = strs(raw["dependencies"])
	case TypeActivity:
		n.SupportedMilestones = strs(raw["supported_milestones"])
		n.AdditionalMilestones = strs(raw["additional_milestones"])
	}

	// Unknown types have no child spec and fall through as leaves.
	for _, spec := range childSpecs[typ] {
		for _, child := range records(raw[spec.key]) {
			n.Children = append(n.Children, buildNode(child, spec.kind, n))
		}
	}

	return n
}

// str coerces a raw value to a string. Numeric identifiers are common in
// exported documents, so numbers are stringified rather than dropped.
func str(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		if s == float64(int64(s)) {
			return fmt.Sprintf("%d", int64(s))
		}
		return fmt.Sprintf("%v", s)
	case int:
		return fmt.Sprintf("%d", s)
	case int64:
		return fmt.Sprintf("%d", s)
	default:
		return ""
	}
}

// strs coerces a raw value to a string slice, skipping non-coercible elements.
func strs(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s := str(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// records coerces a raw value to a slice of records, skipping anything else.
func records(v any) []map[string]any {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []map[string]any
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// Deadline formats accepted from input documents, tried in order.
var dateFormats = []string{time.RFC3339, "2006-01-02"}

// date parses a raw deadline value. Invalid or absent deadlines yield nil,
// which the timeline scale treats as "place at minimum x".
func date(v any) *time.Time {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
