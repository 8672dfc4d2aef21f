package plangraph

import "sort"

// FindCycles detects cycles in the dependency graph using depth-first search
// with recursion-stack marking. Each cycle is reported once as the milestone
// ID path that closes it, e.g. ["a", "b", "a"].
//
// The layout engine never recurses over dependencies to position nodes, so a
// cycle cannot cause non-termination downstream; detection exists purely to
// surface a user-facing warning instead of silently rendering a loop.
func FindCycles(g *Graph) [][]string {
	adj := make(map[string][]string)
	for _, d := range g.Dependencies {
		// Edges over unknown milestones are dropped by the connection
		// resolver; skip them here too so warnings match what renders.
		if _, ok := g.Milestone(d.Source); !ok {
			continue
		}
		if _, ok := g.Milestone(d.Target); !ok {
			continue
		}
		adj[d.Source] = append(adj[d.Source], d.Target)
	}

	roots := make([]string, 0, len(adj))
	for id := range adj {
		roots = append(roots, id)
	}
	sort.Strings(roots)

	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int)
	var stack []string
	var cycles [][]string

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		stack = append(stack, id)
		for _, next := range adj[id] {
			switch color[next] {
			case white:
				dfs(next)
			case gray:
				// Close the loop from next's position in the stack.
				for i, s := range stack {
					if s == next {
						cycle := append(append([]string(nil), stack[i:]...), next)
						cycles = append(cycles, cycle)
						break
					}
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
	}

	for _, id := range roots {
		if color[id] == white {
			dfs(id)
		}
	}
	return cycles
}
