package layout

import (
	"math"
	"testing"
	"time"
)

func TestScaleDegenerateDomain(t *testing.T) {
	g := graph("wsA")
	d := day(2024, 6, 15)
	addMilestone(g, "m1", "wsA", d)
	addMilestone(g, "m2", "wsA", d)

	s := ComputeScale(g, Options{})

	min, max := s.Domain()
	wantMin := d.Add(-degenerateExpansion)
	wantMax := d.Add(degenerateExpansion)
	if !min.Equal(wantMin) || !max.Equal(wantMax) {
		t.Errorf("domain = [%v, %v], want [%v, %v]", min, max, wantMin, wantMax)
	}

	nmin, nmax := s.NicedDomain()
	if !nmax.After(nmin) {
		t.Error("niced domain is zero-width")
	}
}

func TestScaleXMapping(t *testing.T) {
	g := graph("wsA")
	addMilestone(g, "m1", "wsA", day(2024, 1, 1))
	addMilestone(g, "m2", "wsA", day(2024, 12, 31))

	opts := Options{Width: 1000, MarginX: 50}
	s := ComputeScale(g, opts)

	nmin, nmax := s.NicedDomain()
	if xMin := s.X(&nmin); math.Abs(xMin-50) > 1e-9 {
		t.Errorf("X(domain min) = %v, want 50", xMin)
	}
	if xMax := s.X(&nmax); math.Abs(xMax-950) > 1e-9 {
		t.Errorf("X(domain max) = %v, want 950", xMax)
	}

	early, late := day(2024, 2, 1), day(2024, 11, 1)
	if s.X(early) >= s.X(late) {
		t.Error("x mapping not monotonic")
	}

	// Missing deadline lands at the fixed minimum x, never excluded.
	if x := s.X(nil); x != 50 {
		t.Errorf("X(nil) = %v, want margin", x)
	}
}

func TestScaleNiceDomain(t *testing.T) {
	tests := []struct {
		name     string
		min, max time.Time
		check    func(t *testing.T, nmin, nmax time.Time)
	}{
		{
			name: "ShortSpanSnapsToWeeks",
			min:  time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC),  // Wednesday
			max:  time.Date(2024, 3, 21, 0, 0, 0, 0, time.UTC), // Thursday
			check: func(t *testing.T, nmin, nmax time.Time) {
				if nmin.Weekday() != time.Monday || nmax.Weekday() != time.Monday {
					t.Errorf("week boundaries = %v, %v", nmin.Weekday(), nmax.Weekday())
				}
				if nmin.After(time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)) {
					t.Error("niced min not expanded outward")
				}
			},
		},
		{
			name: "MediumSpanSnapsToMonths",
			min:  time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			max:  time.Date(2024, 11, 20, 0, 0, 0, 0, time.UTC),
			check: func(t *testing.T, nmin, nmax time.Time) {
				if nmin.Day() != 1 || nmax.Day() != 1 {
					t.Errorf("month boundaries = %v, %v", nmin, nmax)
				}
				if !nmin.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
					t.Errorf("niced min = %v", nmin)
				}
				if !nmax.Equal(time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)) {
					t.Errorf("niced max = %v", nmax)
				}
			},
		},
		{
			name: "LongSpanSnapsToYears",
			min:  time.Date(2022, 5, 10, 0, 0, 0, 0, time.UTC),
			max:  time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
			check: func(t *testing.T, nmin, nmax time.Time) {
				if !nmin.Equal(time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)) {
					t.Errorf("niced min = %v", nmin)
				}
				if !nmax.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
					t.Errorf("niced max = %v", nmax)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nmin, nmax := niceDomain(tt.min, tt.max)
			tt.check(t, nmin, nmax)
		})
	}
}

func TestScaleBaselines(t *testing.T) {
	g := graph("wsA", "wsB", "wsC")
	addMilestone(g, "m1", "wsA", day(2024, 1, 1))

	opts := Options{Height: 400, MarginY: 50}
	s := ComputeScale(g, opts)

	yA, _ := s.Baseline("wsA")
	yB, _ := s.Baseline("wsB")
	yC, _ := s.Baseline("wsC")

	if !(yA < yB && yB < yC) {
		t.Errorf("baselines out of order: %v %v %v", yA, yB, yC)
	}
	// Even spacing, half-step padding at both ends: 50 + 100*(i+0.5).
	for i, y := range []float64{yA, yB, yC} {
		want := 50 + 100*(float64(i)+0.5)
		if math.Abs(y-want) > 1e-9 {
			t.Errorf("baseline[%d] = %v, want %v", i, y, want)
		}
	}

	if _, ok := s.Baseline("nope"); ok {
		t.Error("unknown workstream has a baseline")
	}
}

func TestScaleCollisionStaggering(t *testing.T) {
	g := graph("wsA")
	d := day(2024, 5, 1)
	for _, id := range []string{"m1", "m2", "m3", "m4", "m5"} {
		addMilestone(g, id, "wsA", d)
	}

	s := ComputeScale(g, Options{})
	placements := ResolvePlacements(g)
	coords := s.Coordinates(placements)

	base, _ := s.Baseline("wsA")

	ys := make([]float64, 0, 5)
	sum := 0.0
	for _, p := range placements {
		y := coords[p.ID].Y
		ys = append(ys, y)
		sum += y - base
	}

	// Pairwise distinct.
	for i := 0; i < len(ys); i++ {
		for j := i + 1; j < len(ys); j++ {
			if ys[i] == ys[j] {
				t.Errorf("placements %d and %d share y = %v", i, j, ys[i])
			}
		}
	}
	// Symmetric around the baseline: offsets cancel.
	if math.Abs(sum) > 1e-9 {
		t.Errorf("offsets not symmetric, sum = %v", sum)
	}
}

func TestScaleStaggerSpreadBounded(t *testing.T) {
	g := graph("wsA")
	d := day(2024, 5, 1)
	for i := 0; i < 40; i++ {
		addMilestone(g, "m"+string(rune('a'+i%26))+string(rune('0'+i/26)), "wsA", d)
	}

	opts := Options{StaggerSpread: 120}
	s := ComputeScale(g, opts)
	coords := s.Coordinates(ResolvePlacements(g))

	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, c := range coords {
		minY = math.Min(minY, c.Y)
		maxY = math.Max(maxY, c.Y)
	}
	if spread := maxY - minY; spread > 120+1e-9 {
		t.Errorf("spread = %v, want <= 120", spread)
	}
}

func TestScaleDistinctDaysNotStaggered(t *testing.T) {
	g := graph("wsA")
	addMilestone(g, "m1", "wsA", day(2024, 1, 1))
	addMilestone(g, "m2", "wsA", day(2024, 6, 1))

	s := ComputeScale(g, Options{})
	coords := s.Coordinates(ResolvePlacements(g))

	base, _ := s.Baseline("wsA")
	for id, c := range coords {
		if c.Y != base {
			t.Errorf("%s off baseline: %v != %v", id, c.Y, base)
		}
	}
}

func TestScaleNoDeadlinesAnywhere(t *testing.T) {
	g := graph("wsA")
	addMilestone(g, "m1", "wsA", nil)

	s := ComputeScale(g, Options{})
	coords := s.Coordinates(ResolvePlacements(g))

	c := coords["m1"]
	if math.IsNaN(c.X) || math.IsInf(c.X, 0) {
		t.Errorf("x = %v", c.X)
	}
	if c.X != DefaultMarginX {
		t.Errorf("undated milestone x = %v, want margin", c.X)
	}
}
