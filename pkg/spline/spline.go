// Package spline implements chains of cubic Bézier segments evaluated at
// uniform speed through an arc-length lookup table.
package spline

import (
	"fmt"

	"github.com/Faultbox/splinetool/pkg/bezier"
	"github.com/Faultbox/splinetool/pkg/math"
)

// DefaultResolution is the number of arc-length samples per segment.
const DefaultResolution = 100

// Spline is an ordered sequence of control points forming len-1 cubic
// segments. It owns its points exclusively.
//
// Every method that moves or restructures points rebuilds the arc-length
// table before returning. Callers that mutate a point obtained from Point or
// Lookup directly must call ResetArcLengthTable themselves.
type Spline struct {
	name       string
	settings   any
	points     []*ControlPoint
	table      []float32
	resolution int
}

// Option configures a Spline.
type Option func(*Spline)

// WithResolution sets the arc-length samples per segment. Values below 1
// fall back to DefaultResolution.
func WithResolution(r int) Option {
	return func(s *Spline) {
		if r < 1 {
			r = DefaultResolution
		}
		s.resolution = r
	}
}

// New creates a two-point spline starting at position and running one unit
// along +Z.
func New(position math.Vec3, name string, opts ...Option) *Spline {
	return FromPoints(name, []*ControlPoint{
		NewControlPoint(position, math.Forward),
		NewControlPoint(position.Add(math.Forward), math.Forward),
	}, opts...)
}

// FromPoints creates a spline that takes ownership of points. Fewer than two
// points give a spline with no segments until points are appended.
func FromPoints(name string, points []*ControlPoint, opts ...Option) *Spline {
	s := &Spline{
		name:       name,
		points:     points,
		resolution: DefaultResolution,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ResetArcLengthTable()
	return s
}

// Name returns the spline's name.
func (s *Spline) Name() string { return s.name }

// SetName renames the spline.
func (s *Spline) SetName(name string) { s.name = name }

// Settings returns the opaque settings reference attached by collaborators.
func (s *Spline) Settings() any { return s.settings }

// SetSettings attaches an opaque settings reference. nil detaches.
func (s *Spline) SetSettings(settings any) { s.settings = settings }

// Resolution returns the arc-length samples per segment.
func (s *Spline) Resolution() int { return s.resolution }

// Len returns the number of control points.
func (s *Spline) Len() int { return len(s.points) }

// Segments returns the number of Bézier segments.
func (s *Spline) Segments() int {
	if len(s.points) < 2 {
		return 0
	}
	return len(s.points) - 1
}

// Point returns control point i, or nil if i is out of range.
func (s *Spline) Point(i int) *ControlPoint {
	if i < 0 || i >= len(s.points) {
		return nil
	}
	return s.points[i]
}

// Points returns the control points in order. The slice is a copy; the
// points are not.
func (s *Spline) Points() []*ControlPoint {
	out := make([]*ControlPoint, len(s.points))
	copy(out, s.points)
	return out
}

// Lookup returns the point with the given id.
func (s *Spline) Lookup(id PointID) (*ControlPoint, bool) {
	if i := s.IndexOf(id); i >= 0 {
		return s.points[i], true
	}
	return nil, false
}

// IndexOf returns the index of the point with the given id, or -1.
func (s *Spline) IndexOf(id PointID) int {
	for i, p := range s.points {
		if p.id == id {
			return i
		}
	}
	return -1
}

// Update applies fn to point i and rebuilds the arc-length table.
func (s *Spline) Update(i int, fn func(p *ControlPoint)) error {
	p := s.Point(i)
	if p == nil {
		return fmt.Errorf("%w: point %d of %d", ErrIndexOutOfRange, i, len(s.points))
	}
	fn(p)
	s.ResetArcLengthTable()
	return nil
}

// AppendPoint adds a point one unit past the last point along its outgoing
// tangent, with half-unit handles in the same direction. An empty spline
// gets a point at the origin facing +Z.
func (s *Spline) AppendPoint() *ControlPoint {
	p := NewControlPoint(math.Vec3{}, math.Forward)
	if n := len(s.points); n > 0 {
		last := s.points[n-1]
		dir := last.RelativeHandle(1).Normalize()
		p = NewControlPoint(last.Anchor().Add(dir), dir)
	}
	s.points = append(s.points, p)
	s.ResetArcLengthTable()
	return p
}

// InsertPoint inserts a point before index.
//
// Index 0 mirrors AppendPoint at the start of the spline. Any other index
// splits the segment between index-1 and index at its parametric midpoint:
// both neighbours switch to Aligned and the handles facing the new point are
// halved, while the new point takes the midpoint tangent. This reproduces
// the split segment exactly; the neighbouring segments change only if a
// neighbour had kinked handles in Free mode. An index equal to Len appends.
func (s *Spline) InsertPoint(index int) (*ControlPoint, error) {
	switch {
	case index < 0 || index > len(s.points):
		return nil, fmt.Errorf("%w: insert at %d of %d", ErrIndexOutOfRange, index, len(s.points))
	case index == len(s.points):
		return s.AppendPoint(), nil
	}

	var p *ControlPoint
	if index == 0 {
		first := s.points[0]
		anchor := first.Anchor().Add(first.RelativeHandle(0).Normalize())
		p = NewControlPoint(anchor, first.RelativeHandle(1).Normalize())
	} else {
		prev, next := s.points[index-1], s.points[index]
		mid := s.PointAt(index-1, 0.5)
		// B'(0.5)/6 is the de Casteljau handle length at the split.
		tangent := s.DirectionAt(index-1, 0.5).Scale(1.0 / 6)
		h1 := prev.RelativeHandle(1).Scale(0.5)
		h0 := next.RelativeHandle(0).Scale(0.5)

		prev.SetMode(Aligned)
		prev.SetRelativeHandle(1, h1)
		next.SetMode(Aligned)
		next.SetRelativeHandle(0, h0)

		p = NewControlPoint(mid, tangent.Scale(2))
	}

	s.points = append(s.points, nil)
	copy(s.points[index+1:], s.points[index:])
	s.points[index] = p
	s.ResetArcLengthTable()
	return p, nil
}

// RemovePoint removes the point with the given id. Junction bookkeeping is
// the caller's job.
func (s *Spline) RemovePoint(id PointID) bool {
	i := s.IndexOf(id)
	if i < 0 {
		return false
	}
	s.points = append(s.points[:i], s.points[i+1:]...)
	s.ResetArcLengthTable()
	return true
}

// PointAt evaluates segment curve at local parameter t.
func (s *Spline) PointAt(curve int, t float32) math.Vec3 {
	if len(s.points) < 2 {
		return s.firstAnchor()
	}
	a, b := s.points[curve], s.points[curve+1]
	return bezier.Point(a.Anchor(), a.Handle(1), b.Handle(0), b.Anchor(), t)
}

// DirectionAt returns the derivative of segment curve at local parameter t.
func (s *Spline) DirectionAt(curve int, t float32) math.Vec3 {
	if len(s.points) < 2 {
		if len(s.points) == 1 {
			return s.points[0].RelativeHandle(1)
		}
		return math.Forward
	}
	a, b := s.points[curve], s.points[curve+1]
	return bezier.FirstDerivative(a.Anchor(), a.Handle(1), b.Handle(0), b.Anchor(), t)
}

// UpAt returns the unit up vector of segment curve at local parameter t:
// the slerp of the endpoint rotations, made perpendicular to the tangent.
func (s *Spline) UpAt(curve int, t float32) math.Vec3 {
	return s.RotationAt(curve, t).Rotate(math.Up)
}

// RotationAt returns the frame of segment curve at local parameter t.
func (s *Spline) RotationAt(curve int, t float32) math.Quat {
	if len(s.points) < 2 {
		if len(s.points) == 1 {
			return s.points[0].Rotation()
		}
		return math.QuatIdentity()
	}
	dir := s.DirectionAt(curve, t)
	rot := s.points[curve].Rotation().Slerp(s.points[curve+1].Rotation(), t)
	up := rot.Rotate(math.Up).ProjectOnPlane(dir)
	return math.LookRotation(dir, up)
}

// Position returns the point at arc distance d from the start.
func (s *Spline) Position(d float32) math.Vec3 {
	curve, t := s.locate(d)
	return s.PointAt(curve, t)
}

// Direction returns the tangent at arc distance d.
func (s *Spline) Direction(d float32) math.Vec3 {
	curve, t := s.locate(d)
	return s.DirectionAt(curve, t)
}

// Up returns the unit up vector at arc distance d. It is always
// perpendicular to Direction(d).
func (s *Spline) Up(d float32) math.Vec3 {
	curve, t := s.locate(d)
	return s.UpAt(curve, t)
}

// Rotation returns the orientation frame at arc distance d.
func (s *Spline) Rotation(d float32) math.Quat {
	curve, t := s.locate(d)
	return s.RotationAt(curve, t)
}

// locate converts an arc distance into a segment and local parameter.
func (s *Spline) locate(d float32) (int, float32) {
	segments := s.Segments()
	if segments == 0 {
		return 0, 0
	}
	u := s.ArcPos(d)
	curve := int(u)
	t := u - float32(curve)
	if curve >= segments {
		curve = segments - 1
		t = 1
	}
	return curve, t
}

func (s *Spline) firstAnchor() math.Vec3 {
	if len(s.points) == 0 {
		return math.Vec3{}
	}
	return s.points[0].Anchor()
}
