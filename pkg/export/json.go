// Package export turns layout results into renderer-facing formats: a JSON
// document for external drawing collaborators and Graphviz DOT for quick
// structural inspection.
package export

import (
	"encoding/json"

	"github.com/cfaller/planweave/pkg/layout"
)

// Document is the rendering contract: ordered placements and ordered edges,
// plus any warnings from the layout pass. The renderer needs nothing beyond
// this document to draw a timeline.
type Document struct {
	DatasetID  string      `json:"dataset_id,omitempty"`
	Placements []Placement `json:"placements"`
	Edges      []Edge      `json:"edges"`
	Warnings   []string    `json:"warnings,omitempty"`
}

// Placement is one positioned node.
type Placement struct {
	PlacementID  string  `json:"placement_id"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	IsDuplicate  bool    `json:"is_duplicate"`
	WorkstreamID string  `json:"workstream_id"`
	Source       Source  `json:"source"`
}

// Source carries the milestone data behind a placement, so the renderer can
// label and color nodes without a second lookup.
type Source struct {
	MilestoneID string `json:"milestone_id"`
	Name        string `json:"name"`
	Deadline    string `json:"deadline,omitempty"`
	Status      string `json:"status,omitempty"`
	// OriginalMilestoneID is set on duplicates and names the canonical
	// milestone the duplicate mirrors.
	OriginalMilestoneID string `json:"original_milestone_id,omitempty"`
}

// Edge is one positioned connection.
type Edge struct {
	EdgeID    string       `json:"edge_id"`
	SourceID  string       `json:"source_id"`
	TargetID  string       `json:"target_id"`
	Source    layout.Point `json:"source"`
	Target    layout.Point `json:"target"`
	Kind      string       `json:"kind"`
	StyleHint string       `json:"style_hint,omitempty"`
}

// Build assembles the rendering document from a layout result.
func Build(datasetID string, res layout.Result) Document {
	doc := Document{
		DatasetID:  datasetID,
		Placements: make([]Placement, 0, len(res.Placements)),
		Edges:      make([]Edge, 0, len(res.Edges)),
		Warnings:   res.Warnings,
	}

	for _, p := range res.Placements {
		coord, ok := res.Coordinates[p.ID]
		if !ok {
			continue
		}
		doc.Placements = append(doc.Placements, Placement{
			PlacementID:  p.ID,
			X:            coord.X,
			Y:            coord.Y,
			IsDuplicate:  p.Duplicate,
			WorkstreamID: p.WorkstreamID,
			Source:       sourceOf(p),
		})
	}

	for _, e := range res.Edges {
		doc.Edges = append(doc.Edges, Edge{
			EdgeID:    e.ID,
			SourceID:  e.SourceID,
			TargetID:  e.TargetID,
			Source:    e.Source,
			Target:    e.Target,
			Kind:      string(e.Kind),
			StyleHint: styleHint(e),
		})
	}

	return doc
}

func sourceOf(p *layout.Placement) Source {
	s := Source{OriginalMilestoneID: p.OriginalMilestoneID}
	if m := p.Milestone; m != nil {
		s.MilestoneID = m.ID
		s.Name = m.Name
		s.Status = m.Status
		if m.Deadline != nil {
			s.Deadline = m.Deadline.Format("2006-01-02")
		}
	}
	return s
}

// styleHint tells the renderer how to draw an edge beyond its kind: fanned
// curves for stacked explicit edges, dashed strokes for degraded fallbacks.
func styleHint(e layout.Edge) string {
	if e.Fallback {
		return "dashed-fallback"
	}
	if e.FanOffset != 0 {
		return "fan"
	}
	return ""
}

// Marshal encodes the document with indentation for file output.
func (d Document) Marshal() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Unmarshal decodes a rendering document.
func Unmarshal(data []byte) (Document, error) {
	var d Document
	err := json.Unmarshal(data, &d)
	return d, err
}
