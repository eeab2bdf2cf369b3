// Package splineset is the entry point for collaborators: it owns every
// spline, keeps the junction graph consistent with them and addresses
// points by (spline, point) index in the caller's coordinate frame.
//
// A Set is not safe for concurrent use. Hosts that edit from several
// goroutines must serialize calls.
package splineset

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/splinetool/pkg/encoding"
	"github.com/Faultbox/splinetool/pkg/junction"
	"github.com/Faultbox/splinetool/pkg/math"
	"github.com/Faultbox/splinetool/pkg/spline"
)

// Set is an ordered collection of splines plus the junctions between them.
type Set struct {
	splines    []*spline.Spline
	graph      *junction.Graph
	frame      math.Transform
	log        *zap.Logger
	observer   func(Event)
	resolution int

	batching int
	dirty    map[*spline.Spline]struct{}
}

// New creates a set holding one default spline.
func New(opts ...Option) *Set {
	s := &Set{
		frame:      math.TransformIdentity(),
		log:        zap.NewNop(),
		resolution: spline.DefaultResolution,
		dirty:      make(map[*spline.Spline]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.graph = s.newGraph()
	s.splines = []*spline.Spline{s.newSpline(math.Forward, 0)}
	return s
}

// Reset discards every spline and junction and returns to a single default
// spline.
func (s *Set) Reset() {
	s.replace([]*spline.Spline{s.newSpline(math.Forward, 0)}, s.newGraph())
}

func (s *Set) newSpline(position math.Vec3, index int) *spline.Spline {
	return spline.New(position, splineName(index), spline.WithResolution(s.resolution))
}

func splineName(index int) string {
	return fmt.Sprintf("Spline_%02d", index)
}

// replace swaps the whole content, announcing the removal of every old
// spline and the addition of every new one.
func (s *Set) replace(splines []*spline.Spline, graph *junction.Graph) {
	for i := len(s.splines) - 1; i >= 0; i-- {
		s.emit(Event{Kind: SplineRemoved, Spline: i, Point: -1, Name: s.splines[i].Name()})
	}
	s.splines = splines
	s.graph = graph
	clear(s.dirty)
	for i, sp := range s.splines {
		s.emit(Event{Kind: SplineAdded, Spline: i, Point: -1, Name: sp.Name()})
	}
}

// Frame returns the containing coordinate frame.
func (s *Set) Frame() math.Transform { return s.frame }

// SetFrame moves the set to another containing frame. Local geometry is
// unchanged.
func (s *Set) SetFrame(t math.Transform) { s.frame = t }

// resolve finds a point in any spline of the set. The junction graph reaches
// points only through it.
func (s *Set) resolve(id spline.PointID) (*spline.ControlPoint, bool) {
	for _, sp := range s.splines {
		if p, ok := sp.Lookup(id); ok {
			return p, true
		}
	}
	return nil, false
}

func (s *Set) newGraph() *junction.Graph {
	return junction.New(junction.ResolverFunc(s.resolve))
}

// FindPoint returns the address of the point with the given id.
func (s *Set) FindPoint(id spline.PointID) (splineIndex, pointIndex int, ok bool) {
	for i, sp := range s.splines {
		if j := sp.IndexOf(id); j >= 0 {
			return i, j, true
		}
	}
	return -1, -1, false
}

func (s *Set) spline(i int) (*spline.Spline, error) {
	if i < 0 || i >= len(s.splines) {
		s.log.Warn("spline index out of range", zap.Int("spline", i), zap.Int("count", len(s.splines)))
		return nil, fmt.Errorf("%w: spline %d of %d", ErrIndexOutOfRange, i, len(s.splines))
	}
	return s.splines[i], nil
}

func (s *Set) point(si, pi int) (*spline.Spline, *spline.ControlPoint, error) {
	sp, err := s.spline(si)
	if err != nil {
		return nil, nil, err
	}
	p := sp.Point(pi)
	if p == nil {
		s.log.Warn("point index out of range", zap.Int("spline", si), zap.Int("point", pi), zap.Int("count", sp.Len()))
		return nil, nil, fmt.Errorf("%w: point %d of spline %d (%d points)", ErrIndexOutOfRange, pi, si, sp.Len())
	}
	return sp, p, nil
}

func checkHandle(index int) error {
	if index != 0 && index != 1 {
		return fmt.Errorf("%w: handle %d", ErrIndexOutOfRange, index)
	}
	return nil
}

// touch rebuilds the arc-length table of sp, or queues it while a batch is
// open.
func (s *Set) touch(sp *spline.Spline) {
	if s.batching > 0 {
		s.dirty[sp] = struct{}{}
		return
	}
	sp.ResetArcLengthTable()
}

// touchPoints rebuilds every spline owning one of ids and announces the
// change.
func (s *Set) touchPoints(ids []spline.PointID) {
	changed := make(map[int]bool)
	for _, id := range ids {
		if i, _, ok := s.FindPoint(id); ok {
			changed[i] = true
		}
	}
	for i, sp := range s.splines {
		if changed[i] {
			s.touch(sp)
			s.emit(Event{Kind: SplineChanged, Spline: i, Point: -1})
		}
	}
}

// Batch runs fn with arc-length rebuilds deferred until it returns. Every
// spline touched inside fn is rebuilt once at the end, whether or not fn
// fails. Queries made inside fn may see stale tables.
func (s *Set) Batch(fn func() error) error {
	s.batching++
	defer func() {
		s.batching--
		if s.batching > 0 {
			return
		}
		for sp := range s.dirty {
			sp.ResetArcLengthTable()
		}
		clear(s.dirty)
	}()
	return fn()
}

// SplineCount returns the number of splines.
func (s *Set) SplineCount() int { return len(s.splines) }

// PointCount returns the number of points in spline si.
func (s *Set) PointCount(si int) (int, error) {
	sp, err := s.spline(si)
	if err != nil {
		return 0, err
	}
	return sp.Len(), nil
}

// ArcLength returns the length of spline si in local units.
func (s *Set) ArcLength(si int) (float32, error) {
	sp, err := s.spline(si)
	if err != nil {
		return 0, err
	}
	return sp.ArcLength(), nil
}

// Position returns the point at arc distance d along spline si.
func (s *Set) Position(si int, d float32) (math.Vec3, error) {
	sp, err := s.spline(si)
	if err != nil {
		return math.Vec3{}, err
	}
	return s.frame.TransformPoint(sp.Position(d)), nil
}

// Direction returns the tangent at arc distance d along spline si.
func (s *Set) Direction(si int, d float32) (math.Vec3, error) {
	sp, err := s.spline(si)
	if err != nil {
		return math.Vec3{}, err
	}
	return s.frame.TransformDirection(sp.Direction(d)), nil
}

// Up returns the up vector at arc distance d along spline si.
func (s *Set) Up(si int, d float32) (math.Vec3, error) {
	sp, err := s.spline(si)
	if err != nil {
		return math.Vec3{}, err
	}
	return s.frame.TransformDirection(sp.Up(d)), nil
}

// Orientation returns the frame at arc distance d along spline si.
func (s *Set) Orientation(si int, d float32) (math.Quat, error) {
	sp, err := s.spline(si)
	if err != nil {
		return math.Quat{}, err
	}
	return s.frame.TransformRotation(sp.Rotation(d)), nil
}

// Anchor returns the anchor of point pi of spline si.
func (s *Set) Anchor(si, pi int) (math.Vec3, error) {
	_, p, err := s.point(si, pi)
	if err != nil {
		return math.Vec3{}, err
	}
	return s.frame.TransformPoint(p.Anchor()), nil
}

// Rotation returns the orientation of a control point.
func (s *Set) Rotation(si, pi int) (math.Quat, error) {
	_, p, err := s.point(si, pi)
	if err != nil {
		return math.Quat{}, err
	}
	return s.frame.TransformRotation(p.Rotation()), nil
}

// EulerAngles returns pitch, yaw and roll of a control point in degrees,
// measured in the containing frame.
func (s *Set) EulerAngles(si, pi int) (math.Vec3, error) {
	_, p, err := s.point(si, pi)
	if err != nil {
		return math.Vec3{}, err
	}
	up := s.frame.TransformDirection(p.Up())
	forward := s.frame.TransformDirection(p.RelativeHandle(1))
	return spline.EulerAngles(up, forward), nil
}

// Handle returns the position of handle index of a control point.
func (s *Set) Handle(si, pi, index int) (math.Vec3, error) {
	_, p, err := s.point(si, pi)
	if err != nil {
		return math.Vec3{}, err
	}
	if err := checkHandle(index); err != nil {
		return math.Vec3{}, err
	}
	return s.frame.TransformPoint(p.Handle(index)), nil
}

// HandleMagnitude returns the local length of handle index.
func (s *Set) HandleMagnitude(si, pi, index int) (float32, error) {
	_, p, err := s.point(si, pi)
	if err != nil {
		return 0, err
	}
	if err := checkHandle(index); err != nil {
		return 0, err
	}
	return p.HandleMagnitude(index), nil
}

// Mode returns the tangent mode of a control point.
func (s *Set) Mode(si, pi int) (spline.Mode, error) {
	_, p, err := s.point(si, pi)
	if err != nil {
		return 0, err
	}
	return p.Mode(), nil
}

// PointID returns the stable identity of a control point.
func (s *Set) PointID(si, pi int) (spline.PointID, error) {
	_, p, err := s.point(si, pi)
	if err != nil {
		return 0, err
	}
	return p.ID(), nil
}

// SplineName returns the name of spline si.
func (s *Set) SplineName(si int) (string, error) {
	sp, err := s.spline(si)
	if err != nil {
		return "", err
	}
	return sp.Name(), nil
}

// Settings returns the settings reference attached to spline si.
func (s *Set) Settings(si int) (any, error) {
	sp, err := s.spline(si)
	if err != nil {
		return nil, err
	}
	return sp.Settings(), nil
}

// ConnectedIndex returns the junction of a control point. Bad addresses are
// logged and reported as spline.NoGroup.
func (s *Set) ConnectedIndex(si, pi int) spline.GroupID {
	_, p, err := s.point(si, pi)
	if err != nil {
		return spline.NoGroup
	}
	return p.Group()
}

// ConnectionPointCount returns the number of points in junction g.
func (s *Set) ConnectionPointCount(g spline.GroupID) int {
	return s.graph.Size(g)
}

// IndexInConnection returns the position of a control point within its
// junction.
func (s *Set) IndexInConnection(si, pi int) (int, bool) {
	_, p, err := s.point(si, pi)
	if err != nil {
		return 0, false
	}
	return s.graph.IndexWithinGroup(p.ID())
}

// ConnectedPoint returns the address of the junction member offset places
// from the given point. Points outside a junction, or offsets that leave
// it, return the point's own address.
func (s *Set) ConnectedPoint(si, pi, offset int) (int, int, error) {
	_, p, err := s.point(si, pi)
	if err != nil {
		return 0, 0, err
	}
	sj, pj, ok := s.FindPoint(s.graph.Neighbor(p.ID(), offset))
	if !ok {
		return si, pi, nil
	}
	return sj, pj, nil
}

// ConnectedPointCount returns the number of junctioned points in the set.
func (s *Set) ConnectedPointCount() int { return s.graph.Len() }

// Junctions returns the members of every junction as (spline, point)
// addresses, in registry order.
func (s *Set) Junctions() [][][2]int {
	var out [][][2]int
	for _, g := range s.graph.Groups() {
		var members [][2]int
		for _, id := range s.graph.Members(g) {
			if i, j, ok := s.FindPoint(id); ok {
				members = append(members, [2]int{i, j})
			}
		}
		out = append(out, members)
	}
	return out
}

// SetAnchor moves a control point to position. Junction members move with
// it and every spline they belong to is rebuilt.
func (s *Set) SetAnchor(si, pi int, position math.Vec3) error {
	sp, p, err := s.point(si, pi)
	if err != nil {
		return err
	}
	local := s.frame.InverseTransformPoint(position)
	if p.Group() == spline.NoGroup {
		p.SetAnchor(local)
		s.touch(sp)
		s.emit(Event{Kind: SplineChanged, Spline: si, Point: -1})
		return nil
	}
	ids, err := s.graph.PropagateAnchor(p.ID(), local)
	if err != nil {
		return err
	}
	s.touchPoints(ids)
	return nil
}

// SetHandle places handle index of a control point at position; the other
// handle follows the point's mode.
func (s *Set) SetHandle(si, pi, index int, position math.Vec3) error {
	sp, p, err := s.point(si, pi)
	if err != nil {
		return err
	}
	if err := checkHandle(index); err != nil {
		return err
	}
	local := s.frame.InverseTransformPoint(position)
	p.SetHandle(index, local)
	s.touch(sp)
	s.emit(Event{Kind: SplineChanged, Spline: si, Point: -1})
	return nil
}

// SetHandleMagnitude sets the local length of handle index, clamped to
// spline.MinHandleMagnitude.
func (s *Set) SetHandleMagnitude(si, pi, index int, magnitude float32) error {
	sp, p, err := s.point(si, pi)
	if err != nil {
		return err
	}
	if err := checkHandle(index); err != nil {
		return err
	}
	p.SetHandleMagnitude(index, magnitude)
	s.touch(sp)
	s.emit(Event{Kind: SplineChanged, Spline: si, Point: -1})
	return nil
}

// SetMode changes the tangent mode of a control point.
func (s *Set) SetMode(si, pi int, mode spline.Mode) error {
	sp, p, err := s.point(si, pi)
	if err != nil {
		return err
	}
	if !mode.Valid() {
		return fmt.Errorf("%w: %d", spline.ErrUnknownMode, int(mode))
	}
	p.SetMode(mode)
	s.touch(sp)
	s.emit(Event{Kind: SplineChanged, Spline: si, Point: -1})
	return nil
}

// SetRotation orients a control point. A junctioned point turns its whole
// junction rigidly.
func (s *Set) SetRotation(si, pi int, rotation math.Quat) error {
	sp, p, err := s.point(si, pi)
	if err != nil {
		return err
	}
	local := s.frame.InverseTransformRotation(rotation)
	if p.Group() == spline.NoGroup {
		p.SetRotation(local)
		s.touch(sp)
		s.emit(Event{Kind: SplineChanged, Spline: si, Point: -1})
		return nil
	}
	ids, err := s.graph.PropagateRotation(p.ID(), local)
	if err != nil {
		return err
	}
	s.touchPoints(ids)
	return nil
}

// ScaleJunction scales the handles of a control point and of every point
// in its junction. Negative components are treated as zero.
func (s *Set) ScaleJunction(si, pi int, scale math.Vec3) error {
	_, p, err := s.point(si, pi)
	if err != nil {
		return err
	}
	ids, err := s.graph.PropagateScale(p.ID(), scale)
	if err != nil {
		return err
	}
	s.touchPoints(ids)
	return nil
}

// Connect joins two control points into one junction and returns it. The
// joining point snaps to the junction's anchor. Connecting two points that
// are both already junctioned fails with ErrJunctionConflict and changes
// nothing.
func (s *Set) Connect(s1, p1, s2, p2 int) (spline.GroupID, error) {
	_, a, err := s.point(s1, p1)
	if err != nil {
		return spline.NoGroup, err
	}
	_, b, err := s.point(s2, p2)
	if err != nil {
		return spline.NoGroup, err
	}

	ref := a
	if a.Group() == spline.NoGroup && b.Group() != spline.NoGroup {
		ref = b
	}
	g, err := s.graph.Connect(a.ID(), b.ID())
	if err != nil {
		if errors.Is(err, ErrJunctionConflict) {
			s.log.Warn("cannot connect two junctions",
				zap.Int("spline", s1), zap.Int("point", p1),
				zap.Int("other_spline", s2), zap.Int("other_point", p2))
		}
		return spline.NoGroup, err
	}
	ids, err := s.graph.PropagateAnchor(ref.ID(), ref.Anchor())
	if err != nil {
		return g, err
	}
	s.touchPoints(ids)
	return g, nil
}

// AppendPoint extends spline si by one point and returns its index.
func (s *Set) AppendPoint(si int) (int, error) {
	sp, err := s.spline(si)
	if err != nil {
		return 0, err
	}
	sp.AppendPoint()
	pi := sp.Len() - 1
	s.emit(Event{Kind: PointAdded, Spline: si, Point: pi})
	return pi, nil
}

// InsertPoint inserts a point into spline si before index.
func (s *Set) InsertPoint(si, index int) error {
	sp, err := s.spline(si)
	if err != nil {
		return err
	}
	if _, err := sp.InsertPoint(index); err != nil {
		s.log.Warn("insert index out of range", zap.Int("spline", si), zap.Int("index", index))
		return err
	}
	s.emit(Event{Kind: PointAdded, Spline: si, Point: index})
	return nil
}

// AddSpline appends a default two-point spline at position and returns its
// index.
func (s *Set) AddSpline(position math.Vec3) int {
	i := len(s.splines)
	s.splines = append(s.splines, s.newSpline(s.frame.InverseTransformPoint(position), i))
	s.emit(Event{Kind: SplineAdded, Spline: i, Point: -1, Name: s.splines[i].Name()})
	return i
}

// AddSplineFromPoint branches a new spline off an existing point: its first
// point is junctioned to the given one. It returns the new spline's index.
func (s *Set) AddSplineFromPoint(si, pi int) (int, error) {
	_, p, err := s.point(si, pi)
	if err != nil {
		return 0, err
	}
	i := len(s.splines)
	branch := s.newSpline(p.Anchor(), i)
	s.splines = append(s.splines, branch)
	if _, err := s.graph.Connect(p.ID(), branch.Point(0).ID()); err != nil {
		s.splines = s.splines[:i]
		return 0, err
	}
	s.emit(Event{Kind: SplineAdded, Spline: i, Point: -1, Name: branch.Name()})
	return i, nil
}

// RemovePoint deletes a point. A spline left with one point loses that
// point too, and a spline left empty is removed from the set, so no
// degenerate spline survives.
func (s *Set) RemovePoint(si, pi int) error {
	sp, p, err := s.point(si, pi)
	if err != nil {
		return err
	}
	s.removePoint(si, sp, p)
	return nil
}

func (s *Set) removePoint(si int, sp *spline.Spline, p *spline.ControlPoint) {
	if s.graph.Disconnect(p.ID()) {
		s.log.Debug("junction dissolved", zap.Int("spline", si))
	}
	pi := sp.IndexOf(p.ID())
	sp.RemovePoint(p.ID())
	s.emit(Event{Kind: PointRemoved, Spline: si, Point: pi})

	switch sp.Len() {
	case 1:
		s.removePoint(si, sp, sp.Point(0))
	case 0:
		s.removeSpline(si)
	}
}

// RemoveSpline deletes spline si after releasing its points from their
// junctions. Later splines shift down by one.
func (s *Set) RemoveSpline(si int) error {
	if _, err := s.spline(si); err != nil {
		return err
	}
	s.removeSpline(si)
	return nil
}

func (s *Set) removeSpline(si int) {
	sp := s.splines[si]
	for _, p := range sp.Points() {
		s.graph.Disconnect(p.ID())
	}
	s.splines = append(s.splines[:si], s.splines[si+1:]...)
	delete(s.dirty, sp)
	s.emit(Event{Kind: SplineRemoved, Spline: si, Point: -1, Name: sp.Name()})
}

// SetSplineName renames spline si. The name is stored in canonical form:
// NFC with surrounding space removed.
func (s *Set) SetSplineName(si int, name string) error {
	sp, err := s.spline(si)
	if err != nil {
		return err
	}
	name = encoding.NormalizeName(name)
	sp.SetName(name)
	s.emit(Event{Kind: SplineRenamed, Spline: si, Point: -1, Name: name})
	return nil
}

// SetSettings attaches an opaque settings reference to spline si; nil
// detaches it.
func (s *Set) SetSettings(si int, settings any) error {
	sp, err := s.spline(si)
	if err != nil {
		return err
	}
	sp.SetSettings(settings)
	s.touch(sp)
	s.emit(Event{Kind: SettingsChanged, Spline: si, Point: -1})
	return nil
}
