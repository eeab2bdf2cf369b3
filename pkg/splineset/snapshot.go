package splineset

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/splinetool/pkg/math"
	"github.com/Faultbox/splinetool/pkg/spline"
)

// Snapshot is the persistable state of a Set, in local space. Arc-length
// tables and the junction registry are derived and not part of it.
type Snapshot struct {
	Splines []SplineState
}

// SplineState is one persisted spline.
type SplineState struct {
	Name   string
	Points []PointState
}

// PointState is one persisted control point. Handles are relative to the
// anchor.
type PointState struct {
	Anchor  math.Vec3
	Handles [2]math.Vec3
	Up      math.Vec3
	Mode    spline.Mode
	Group   spline.GroupID
}

// Snapshot captures the current state.
func (s *Set) Snapshot() Snapshot {
	snap := Snapshot{Splines: make([]SplineState, len(s.splines))}
	for i, sp := range s.splines {
		state := SplineState{Name: sp.Name(), Points: make([]PointState, sp.Len())}
		for j, p := range sp.Points() {
			state.Points[j] = PointState{
				Anchor:  p.Anchor(),
				Handles: [2]math.Vec3{p.RelativeHandle(0), p.RelativeHandle(1)},
				Up:      p.Up(),
				Mode:    p.Mode(),
				Group:   p.Group(),
			}
		}
		snap.Splines[i] = state
	}
	return snap
}

// Validate reports every structural problem in snap at once.
func (snap Snapshot) Validate() error {
	var errs error
	groups := make(map[spline.GroupID]int)
	for i, st := range snap.Splines {
		if len(st.Points) < 2 {
			errs = multierr.Append(errs, fmt.Errorf("spline %d (%q) has %d points", i, st.Name, len(st.Points)))
		}
		for j, p := range st.Points {
			if !p.Anchor.IsFinite() || !p.Handles[0].IsFinite() || !p.Handles[1].IsFinite() || !p.Up.IsFinite() {
				errs = multierr.Append(errs, fmt.Errorf("spline %d point %d: non-finite geometry", i, j))
			}
			if !p.Mode.Valid() {
				errs = multierr.Append(errs, fmt.Errorf("spline %d point %d: %w: %d", i, j, spline.ErrUnknownMode, int(p.Mode)))
			}
			switch {
			case p.Group == spline.NoGroup:
			case p.Group < 0:
				errs = multierr.Append(errs, fmt.Errorf("spline %d point %d: invalid group %d", i, j, p.Group))
			default:
				groups[p.Group]++
			}
		}
	}
	for g, n := range groups {
		if n < 2 {
			errs = multierr.Append(errs, fmt.Errorf("group %d has %d member", g, n))
		}
	}
	return errs
}

// Restore replaces the whole set with snap. The snapshot is validated
// first; on any problem live state is left untouched and the returned error
// wraps ErrMalformedState together with every problem found.
func (s *Set) Restore(snap Snapshot) error {
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedState, err)
	}

	splines := make([]*spline.Spline, len(snap.Splines))
	var points []*spline.ControlPoint
	for i, st := range snap.Splines {
		pts := make([]*spline.ControlPoint, len(st.Points))
		for j, p := range st.Points {
			pts[j] = spline.RestoreControlPoint(p.Anchor, p.Handles, p.Up, p.Mode, p.Group)
		}
		points = append(points, pts...)
		splines[i] = spline.FromPoints(st.Name, pts, spline.WithResolution(s.resolution))
	}

	graph := s.newGraph()
	if err := graph.Rebuild(points); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedState, err)
	}
	s.replace(splines, graph)
	s.log.Debug("restored", zap.Int("splines", len(splines)), zap.Int("junctioned", graph.Len()))
	return nil
}
