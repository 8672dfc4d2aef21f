package layout

import (
	"time"

	"github.com/cfaller/planweave/pkg/plangraph"
)

// degenerateExpansion widens a zero-width deadline domain to ±14 days so the
// linear mapping always has a non-zero range.
const degenerateExpansion = 14 * 24 * time.Hour

// Scale maps deadlines to horizontal coordinates and workstream tracks to
// vertical baselines. Compute it once per layout pass with ComputeScale.
type Scale struct {
	// Raw domain after degenerate expansion; what Domain reports.
	domainMin time.Time
	domainMax time.Time

	// Niced domain used for the linear x mapping.
	nicedMin time.Time
	nicedMax time.Time

	order     []string
	baselines map[string]float64

	opts Options
}

// ComputeScale derives the horizontal domain and vertical baselines.
//
// The horizontal domain spans the deadlines of all real milestones, expanded
// by ±14 days when degenerate, then niced to clean tick boundaries before
// the linear mapping to [MarginX, Width-MarginX]. Milestones without a
// deadline sit at the fixed minimum x rather than being excluded.
//
// The vertical baselines form an evenly spaced point scale over workstream
// IDs in document order, padded by half a step at both ends.
func ComputeScale(g *plangraph.Graph, opts Options) *Scale {
	opts = opts.withDefaults()

	s := &Scale{
		order:     g.WorkstreamIDs(),
		baselines: make(map[string]float64),
		opts:      opts,
	}

	var min, max time.Time
	for _, ws := range g.Workstreams {
		for _, m := range ws.Milestones {
			if m.Deadline == nil {
				continue
			}
			d := *m.Deadline
			if min.IsZero() || d.Before(min) {
				min = d
			}
			if max.IsZero() || d.After(max) {
				max = d
			}
		}
	}
	if min.IsZero() {
		// No dated milestones at all; anchor the empty domain on today so
		// the scale still produces finite coordinates.
		min = time.Now().UTC().Truncate(24 * time.Hour)
		max = min
	}
	if !max.After(min) {
		min = min.Add(-degenerateExpansion)
		max = max.Add(degenerateExpansion)
	}
	s.domainMin, s.domainMax = min, max
	s.nicedMin, s.nicedMax = niceDomain(min, max)

	// Point scale: step = contentHeight / n, baselines centered in their
	// slots. A single workstream lands on the frame's vertical center.
	n := len(s.order)
	if n > 0 {
		contentH := opts.Height - 2*opts.MarginY
		step := contentH / float64(n)
		for i, id := range s.order {
			s.baselines[id] = opts.MarginY + step*(float64(i)+0.5)
		}
	}

	return s
}

// Domain returns the horizontal domain after degenerate expansion, before
// nicing. A single shared deadline D therefore reports [D-14d, D+14d].
func (s *Scale) Domain() (time.Time, time.Time) { return s.domainMin, s.domainMax }

// NicedDomain returns the tick-aligned domain the x mapping actually uses.
func (s *Scale) NicedDomain() (time.Time, time.Time) { return s.nicedMin, s.nicedMax }

// X maps a deadline to a horizontal coordinate. A nil deadline maps to the
// fixed minimum x.
func (s *Scale) X(deadline *time.Time) float64 {
	if deadline == nil {
		return s.opts.MarginX
	}
	span := s.nicedMax.Sub(s.nicedMin)
	if span <= 0 {
		return s.opts.MarginX
	}
	frac := float64(deadline.Sub(s.nicedMin)) / float64(span)
	contentW := s.opts.Width - 2*s.opts.MarginX
	return s.opts.MarginX + frac*contentW
}

// Baseline returns the default vertical baseline of a workstream track.
func (s *Scale) Baseline(workstreamID string) (float64, bool) {
	y, ok := s.baselines[workstreamID]
	return y, ok
}

// Baselines returns a copy of the workstream baseline map.
func (s *Scale) Baselines() map[string]float64 {
	out := make(map[string]float64, len(s.baselines))
	for k, v := range s.baselines {
		out[k] = v
	}
	return out
}

// Coordinates computes the default coordinate of every placement.
//
// Placements are grouped by (workstream, deadline day); within a group of
// size n > 1 the vertical offsets are distributed symmetrically around the
// track baseline. The preferred gap shrinks once the group would exceed the
// fixed maximum spread, so same-day pileups stay distinguishable without
// unbounded growth.
func (s *Scale) Coordinates(placements []*Placement) map[string]Point {
	coords := make(map[string]Point, len(placements))

	type groupKey struct {
		workstream string
		day        string
	}
	groups := make(map[groupKey][]*Placement)
	var keys []groupKey

	for _, p := range placements {
		key := groupKey{workstream: p.WorkstreamID, day: dayKey(p.Milestone)}
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], p)
	}

	for _, key := range keys {
		group := groups[key]
		base, ok := s.baselines[key.workstream]
		if !ok {
			// Placement on an unknown track; pin to the top margin so it
			// stays visible rather than vanishing.
			base = s.opts.MarginY
		}
		gap := s.opts.StaggerGap
		if n := len(group); n > 1 && gap*float64(n-1) > s.opts.StaggerSpread {
			gap = s.opts.StaggerSpread / float64(n-1)
		}
		for i, p := range group {
			offset := 0.0
			if len(group) > 1 {
				offset = (float64(i) - float64(len(group)-1)/2) * gap
			}
			coords[p.ID] = Point{
				X: s.X(p.Milestone.Deadline),
				Y: base + offset,
			}
		}
	}

	return coords
}

func dayKey(m *plangraph.Milestone) string {
	if m == nil || m.Deadline == nil {
		return "none"
	}
	return m.Deadline.UTC().Format("2006-01-02")
}

// niceDomain rounds the domain outward to clean tick boundaries. The tick
// unit scales with the span: weeks for short ranges, months for medium
// ranges, years beyond that.
func niceDomain(min, max time.Time) (time.Time, time.Time) {
	span := max.Sub(min)
	switch {
	case span <= 90*24*time.Hour:
		return floorWeek(min), ceilWeek(max)
	case span <= 540*24*time.Hour:
		return floorMonth(min), ceilMonth(max)
	default:
		return floorYear(min), ceilYear(max)
	}
}

func floorWeek(t time.Time) time.Time {
	t = t.UTC().Truncate(24 * time.Hour)
	// Back up to Monday.
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}

func ceilWeek(t time.Time) time.Time {
	f := floorWeek(t)
	if f.Equal(t) {
		return f
	}
	return f.AddDate(0, 0, 7)
}

func floorMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func ceilMonth(t time.Time) time.Time {
	f := floorMonth(t)
	if f.Equal(t) {
		return f
	}
	return f.AddDate(0, 1, 0)
}

func floorYear(t time.Time) time.Time {
	return time.Date(t.UTC().Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
}

func ceilYear(t time.Time) time.Time {
	f := floorYear(t)
	if f.Equal(t) {
		return f
	}
	return f.AddDate(1, 0, 0)
}
