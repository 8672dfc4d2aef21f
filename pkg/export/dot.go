package export

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/cfaller/planweave/pkg/layout"
	"github.com/cfaller/planweave/pkg/plangraph"
)

// DOTOptions configures structural diagram rendering.
type DOTOptions struct {
	// Detailed includes deadlines and statuses in node labels.
	// When false, only the milestone name is shown.
	Detailed bool
}

// edgeAttrs maps edge kinds to DOT styling. Cross-workstream and fallback
// edges are visually distinct so degraded connections stand out.
var edgeAttrs = map[layout.EdgeKind]string{
	layout.EdgeAuto:            "style=dotted, color=grey40",
	layout.EdgeExplicitSame:    "color=black",
	layout.EdgeExplicitCross:   "color=black, arrowhead=open",
	layout.EdgeDependencySame:  "color=firebrick",
	layout.EdgeDependencyCross: "color=firebrick, arrowhead=open",
}

// ToDOT converts a planning graph and its layout result to Graphviz DOT.
// Each workstream becomes a cluster so tracks stay visually grouped, and
// duplicate placements collapse back into their canonical milestone. The
// resulting DOT string can be rendered using [RenderSVG] or [RenderPNG].
func ToDOT(g *plangraph.Graph, res layout.Result, opts DOTOptions) string {
	// Placement id -> canonical milestone id, so edges over duplicates
	// point at the structural node.
	canonical := make(map[string]string, len(res.Placements))
	for _, p := range res.Placements {
		if p.Milestone != nil {
			canonical[p.ID] = p.Milestone.ID
		}
	}

	var buf bytes.Buffer
	buf.WriteString("digraph planweave {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	for i, ws := range g.Workstreams {
		fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", i)
		fmt.Fprintf(&buf, "    label=%q;\n", ws.Name)
		buf.WriteString("    style=dashed;\n")
		for _, m := range ws.Milestones {
			fmt.Fprintf(&buf, "    %q [label=%q];\n", m.ID, fmtLabel(m, opts.Detailed))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	seen := make(map[string]bool)
	for _, e := range res.Edges {
		src, ok := canonical[e.SourceID]
		if !ok {
			src = e.SourceID
		}
		tgt, ok := canonical[e.TargetID]
		if !ok {
			tgt = e.TargetID
		}
		if src == tgt {
			continue
		}
		line := fmt.Sprintf("  %q -> %q [%s];\n", src, tgt, edgeStyle(e.Kind))
		if seen[line] {
			continue
		}
		seen[line] = true
		buf.WriteString(line)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func edgeStyle(kind layout.EdgeKind) string {
	if attrs, ok := edgeAttrs[kind]; ok {
		return attrs
	}
	return "color=black"
}

func fmtLabel(m *plangraph.Milestone, detailed bool) string {
	if !detailed {
		return m.Name
	}

	parts := []string{m.Name}
	if m.Deadline != nil {
		parts = append(parts, m.Deadline.Format("2006-01-02"))
	}
	if m.Status != "" {
		parts = append(parts, m.Status)
	}
	return strings.Join(parts, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
