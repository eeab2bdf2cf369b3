package spline

import (
	gomath "math"
	"sort"

	"github.com/Faultbox/splinetool/pkg/bezier"
)

// ResetArcLengthTable rebuilds the cumulative chord-length table from
// scratch. Entry k holds the polyline length up to parameter k/resolution,
// so the table has segments*resolution+1 entries and starts at 0.
func (s *Spline) ResetArcLengthTable() {
	segments := s.Segments()
	if segments == 0 {
		s.table = []float32{0}
		return
	}

	r := s.resolution
	n := segments*r + 1
	if cap(s.table) >= n {
		s.table = s.table[:n]
	} else {
		s.table = make([]float32, n)
	}
	s.table[0] = 0

	last := s.points[0].Anchor()
	for k := 1; k < n; k++ {
		curve, j := k/r, k%r
		t := float32(j) / float32(r)
		if curve == segments {
			curve, t = segments-1, 1
		}
		a, b := s.points[curve], s.points[curve+1]
		next := bezier.Point(a.Anchor(), a.Handle(1), b.Handle(0), b.Anchor(), t)
		s.table[k] = s.table[k-1] + next.Distance(last)
		last = next
	}
}

// ArcLength returns the total length of the spline.
func (s *Spline) ArcLength() float32 {
	return s.table[len(s.table)-1]
}

// Table returns a copy of the arc-length table.
func (s *Spline) Table() []float32 {
	out := make([]float32, len(s.table))
	copy(out, s.table)
	return out
}

// ArcPos maps an arc distance to a global parameter segment+t. The first
// table entry exceeding d brackets it; the parameter is interpolated
// linearly inside the bracket. Distances at or beyond the ends clamp to
// 0 and Segments().
func (s *Spline) ArcPos(d float32) float32 {
	n := len(s.table)
	if n < 2 || d <= 0 || gomath.IsNaN(float64(d)) {
		return 0
	}
	if d >= s.table[n-1] {
		return float32(s.Segments())
	}

	// table[0] == 0 <= d < table[n-1], so 1 <= i <= n-1.
	i := sort.Search(n, func(i int) bool { return s.table[i] > d })
	r := float32(s.resolution)
	t1 := float32(i-1) / r
	t2 := float32(i) / r
	dt := (d - s.table[i-1]) / (s.table[i] - s.table[i-1])
	return t1 + (t2-t1)*dt
}
