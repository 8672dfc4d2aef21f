package export

import (
	"strings"
	"testing"
	"time"

	"github.com/cfaller/planweave/pkg/layout"
	"github.com/cfaller/planweave/pkg/plangraph"
)

func day(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func sampleGraph() *plangraph.Graph {
	g := &plangraph.Graph{}
	g.AddWorkstream(&plangraph.Workstream{ID: "ws-a", Name: "Alpha"})
	g.AddWorkstream(&plangraph.Workstream{ID: "ws-b", Name: "Beta"})
	g.AddMilestone(&plangraph.Milestone{ID: "m1", Name: "Kickoff", Deadline: day("2026-03-01"), Status: "in_progress", WorkstreamID: "ws-a"})
	g.AddMilestone(&plangraph.Milestone{ID: "m2", Name: "Launch", Deadline: day("2026-06-01"), WorkstreamID: "ws-b"})
	g.AddDependency(plangraph.Dependency{Source: "m1", Target: "m2"})
	return g
}

func sampleResult(g *plangraph.Graph) layout.Result {
	return layout.NewEngine(layout.Options{}).Layout(g, nil)
}

func TestBuild(t *testing.T) {
	g := sampleGraph()
	res := sampleResult(g)
	doc := Build("demo", res)

	if doc.DatasetID != "demo" {
		t.Errorf("DatasetID = %q, want demo", doc.DatasetID)
	}
	if len(doc.Placements) != len(res.Placements) {
		t.Fatalf("placements = %d, want %d", len(doc.Placements), len(res.Placements))
	}
	if len(doc.Edges) != len(res.Edges) {
		t.Fatalf("edges = %d, want %d", len(doc.Edges), len(res.Edges))
	}

	byID := make(map[string]Placement)
	for _, p := range doc.Placements {
		byID[p.PlacementID] = p
	}

	m1, ok := byID["m1"]
	if !ok {
		t.Fatal("canonical placement m1 missing")
	}
	if m1.IsDuplicate {
		t.Error("m1 marked duplicate")
	}
	if m1.Source.Name != "Kickoff" || m1.Source.Deadline != "2026-03-01" || m1.Source.Status != "in_progress" {
		t.Errorf("m1 source = %+v", m1.Source)
	}

	dup, ok := byID[layout.DuplicateID("m1", "m2")]
	if !ok {
		t.Fatal("dependency duplicate of m1 missing")
	}
	if !dup.IsDuplicate || dup.WorkstreamID != "ws-b" {
		t.Errorf("duplicate = %+v", dup)
	}
	if dup.Source.OriginalMilestoneID != "m1" {
		t.Errorf("duplicate original id = %q, want m1", dup.Source.OriginalMilestoneID)
	}
}

func TestBuildStyleHints(t *testing.T) {
	tests := []struct {
		name string
		edge layout.Edge
		want string
	}{
		{name: "plain", edge: layout.Edge{Kind: layout.EdgeDependencySame}, want: ""},
		{name: "fanned", edge: layout.Edge{Kind: layout.EdgeExplicitSame, FanOffset: 14}, want: "fan"},
		{name: "fallback", edge: layout.Edge{Kind: layout.EdgeDependencyCross, Fallback: true}, want: "dashed-fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := styleHint(tt.edge); got != tt.want {
				t.Errorf("styleHint() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	doc := Build("demo", sampleResult(sampleGraph()))

	data, err := doc.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	back, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if back.DatasetID != doc.DatasetID {
		t.Errorf("DatasetID = %q, want %q", back.DatasetID, doc.DatasetID)
	}
	if len(back.Placements) != len(doc.Placements) || len(back.Edges) != len(doc.Edges) {
		t.Errorf("round trip lost entries: %d/%d placements, %d/%d edges",
			len(back.Placements), len(doc.Placements), len(back.Edges), len(doc.Edges))
	}
}

func TestToDOT(t *testing.T) {
	g := sampleGraph()
	res := sampleResult(g)
	dot := ToDOT(g, res, DOTOptions{})

	for _, want := range []string{
		"digraph planweave {",
		`label="Alpha"`,
		`label="Beta"`,
		`"m1" [label="Kickoff"]`,
		`"m1" -> "m2"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT output missing %q:\n%s", want, dot)
		}
	}

	// Duplicate placements collapse: no duplicate- node ids appear.
	if strings.Contains(dot, "duplicate-") {
		t.Errorf("DOT output leaked duplicate placement ids:\n%s", dot)
	}
}

func TestToDOTDetailed(t *testing.T) {
	g := sampleGraph()
	dot := ToDOT(g, sampleResult(g), DOTOptions{Detailed: true})

	if !strings.Contains(dot, "2026-03-01") {
		t.Errorf("detailed DOT missing deadline:\n%s", dot)
	}
	if !strings.Contains(dot, "in_progress") {
		t.Errorf("detailed DOT missing status:\n%s", dot)
	}
}
