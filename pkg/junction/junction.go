// Package junction links control points of different splines into groups
// that share one anchor and move, rotate and scale together.
//
// The graph keeps a flat registry of member ids in which every group
// occupies one contiguous run and groups appear in ascending id order. The
// control points themselves stay owned by their splines; the graph reaches
// them only through a Resolver.
package junction

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Faultbox/splinetool/pkg/math"
	"github.com/Faultbox/splinetool/pkg/spline"
)

// Junction errors.
var (
	ErrJunctionConflict = errors.New("cannot connect two junctions")
	ErrSamePoint        = errors.New("cannot connect a point to itself")
	ErrUnknownPoint     = errors.New("unknown control point")
	ErrMalformedGroup   = errors.New("malformed junction registry")
)

// Resolver finds the control point with a given id.
type Resolver interface {
	Resolve(id spline.PointID) (*spline.ControlPoint, bool)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(id spline.PointID) (*spline.ControlPoint, bool)

// Resolve calls f(id).
func (f ResolverFunc) Resolve(id spline.PointID) (*spline.ControlPoint, bool) {
	return f(id)
}

type member struct {
	id    spline.PointID
	group spline.GroupID
}

// Graph is the junction registry.
type Graph struct {
	resolver Resolver
	members  []member
	next     spline.GroupID
}

// New creates an empty graph that resolves point ids through r.
func New(r Resolver) *Graph {
	return &Graph{resolver: r}
}

// Len returns the total number of junctioned points.
func (g *Graph) Len() int { return len(g.members) }

// Connect puts a and b in the same group and returns it. If one of them is
// already in a group the other joins it; if neither is, a new group is
// created. Connecting two grouped points is rejected with
// ErrJunctionConflict and changes nothing.
func (g *Graph) Connect(a, b spline.PointID) (spline.GroupID, error) {
	if a == b {
		return spline.NoGroup, ErrSamePoint
	}
	pa, err := g.resolve(a)
	if err != nil {
		return spline.NoGroup, err
	}
	pb, err := g.resolve(b)
	if err != nil {
		return spline.NoGroup, err
	}

	ga, gb := pa.Group(), pb.Group()
	switch {
	case ga != spline.NoGroup && gb != spline.NoGroup:
		return spline.NoGroup, fmt.Errorf("%w: groups %d and %d", ErrJunctionConflict, ga, gb)
	case ga != spline.NoGroup:
		return ga, g.join(ga, pb)
	case gb != spline.NoGroup:
		return gb, g.join(gb, pa)
	}

	group := g.next
	g.next++
	g.members = append(g.members, member{a, group}, member{b, group})
	pa.SetGroup(group)
	pb.SetGroup(group)
	return group, nil
}

// join inserts p at the end of group's run so the run stays contiguous.
// A group the registry does not hold is reported as ErrMalformedGroup.
func (g *Graph) join(group spline.GroupID, p *spline.ControlPoint) error {
	start := g.start(group)
	if start < 0 {
		return fmt.Errorf("%w: group %d is not registered", ErrMalformedGroup, group)
	}
	end := start + g.Size(group)
	g.members = append(g.members, member{})
	copy(g.members[end+1:], g.members[end:])
	g.members[end] = member{p.ID(), group}
	p.SetGroup(group)
	return nil
}

// start returns the registry index of group's first member, or -1.
func (g *Graph) start(group spline.GroupID) int {
	for i, m := range g.members {
		if m.group == group {
			return i
		}
	}
	return -1
}

// Size returns the number of points in group, 0 if it does not exist.
func (g *Graph) Size(group spline.GroupID) int {
	i := g.start(group)
	if i < 0 {
		return 0
	}
	n := 0
	for i < len(g.members) && g.members[i].group == group {
		i++
		n++
	}
	return n
}

// Members returns the ids in group in registry order.
func (g *Graph) Members(group spline.GroupID) []spline.PointID {
	i := g.start(group)
	if i < 0 {
		return nil
	}
	n := g.Size(group)
	out := make([]spline.PointID, 0, n)
	for _, m := range g.members[i : i+n] {
		out = append(out, m.id)
	}
	return out
}

// Groups returns every group id in registry order.
func (g *Graph) Groups() []spline.GroupID {
	var out []spline.GroupID
	for i, m := range g.members {
		if i == 0 || g.members[i-1].group != m.group {
			out = append(out, m.group)
		}
	}
	return out
}

// GroupOf returns the group id is registered in.
func (g *Graph) GroupOf(id spline.PointID) (spline.GroupID, bool) {
	if i := g.index(id); i >= 0 {
		return g.members[i].group, true
	}
	return spline.NoGroup, false
}

// IndexWithinGroup returns id's position inside its group.
func (g *Graph) IndexWithinGroup(id spline.PointID) (int, bool) {
	i := g.index(id)
	if i < 0 {
		return 0, false
	}
	return i - g.start(g.members[i].group), true
}

// Neighbor returns the member offset places away from id within its group.
// If that position falls outside the group, id itself is returned.
func (g *Graph) Neighbor(id spline.PointID, offset int) spline.PointID {
	i := g.index(id)
	if i < 0 {
		return id
	}
	j := i + offset
	if j >= 0 && j < len(g.members) && g.members[j].group == g.members[i].group {
		return g.members[j].id
	}
	return id
}

func (g *Graph) index(id spline.PointID) int {
	for i, m := range g.members {
		if m.id == id {
			return i
		}
	}
	return -1
}

// Disconnect removes id from its group before the point is deleted. A group
// left with a single member is dissolved. It reports whether a group was
// dissolved.
func (g *Graph) Disconnect(id spline.PointID) bool {
	i := g.index(id)
	if i < 0 {
		return false
	}
	group := g.members[i].group
	g.members = append(g.members[:i], g.members[i+1:]...)
	if p, ok := g.resolver.Resolve(id); ok {
		p.SetGroup(spline.NoGroup)
	}

	if g.Size(group) != 1 {
		return false
	}
	last := g.start(group)
	if p, ok := g.resolver.Resolve(g.members[last].id); ok {
		p.SetGroup(spline.NoGroup)
	}
	g.members = append(g.members[:last], g.members[last+1:]...)
	return true
}

// affected returns the members of id's group, or just id when it is not
// junctioned.
func (g *Graph) affected(id spline.PointID) []spline.PointID {
	if group, ok := g.GroupOf(id); ok {
		return g.Members(group)
	}
	return []spline.PointID{id}
}

// PropagateAnchor moves every member of id's group to position and returns
// the ids it touched.
func (g *Graph) PropagateAnchor(id spline.PointID, position math.Vec3) ([]spline.PointID, error) {
	return g.each(id, func(p *spline.ControlPoint) {
		p.SetAnchor(position)
	})
}

// PropagateRotation rotates the whole group rigidly: the delta that takes
// id's current rotation to rotation is applied to every member.
func (g *Graph) PropagateRotation(id spline.PointID, rotation math.Quat) ([]spline.PointID, error) {
	p, err := g.resolve(id)
	if err != nil {
		return nil, err
	}
	delta := rotation.Normalize().Mul(p.Rotation().Inverse())
	return g.each(id, func(m *spline.ControlPoint) {
		m.SetRotation(delta.Mul(m.Rotation()))
	})
}

// PropagateScale scales the handles of every member component-wise.
// Negative components are clamped to zero; anchors are unaffected.
func (g *Graph) PropagateScale(id spline.PointID, scale math.Vec3) ([]spline.PointID, error) {
	scale.X = max(scale.X, 0)
	scale.Y = max(scale.Y, 0)
	scale.Z = max(scale.Z, 0)
	return g.each(id, func(p *spline.ControlPoint) {
		p.Scale(scale)
	})
}

// each resolves every affected point before applying fn, so an unknown id
// leaves all points untouched.
func (g *Graph) each(id spline.PointID, fn func(p *spline.ControlPoint)) ([]spline.PointID, error) {
	ids := g.affected(id)
	points := make([]*spline.ControlPoint, 0, len(ids))
	for _, mid := range ids {
		p, err := g.resolve(mid)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	for _, p := range points {
		fn(p)
	}
	return ids, nil
}

func (g *Graph) resolve(id spline.PointID) (*spline.ControlPoint, error) {
	p, ok := g.resolver.Resolve(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPoint, id)
	}
	return p, nil
}

// Rebuild replaces the registry with the grouped points among points,
// ordered by their group reference. Points keep their relative order
// within a group. Groups with fewer than two members are rejected and the
// registry is left unchanged.
func (g *Graph) Rebuild(points []*spline.ControlPoint) error {
	var members []member
	for _, p := range points {
		if p.Group() != spline.NoGroup {
			members = append(members, member{p.ID(), p.Group()})
		}
	}
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].group < members[j].group
	})

	next := spline.GroupID(0)
	for i := 0; i < len(members); {
		j := i
		for j < len(members) && members[j].group == members[i].group {
			j++
		}
		if members[i].group < 0 {
			return fmt.Errorf("%w: negative group %d", ErrMalformedGroup, members[i].group)
		}
		if j-i < 2 {
			return fmt.Errorf("%w: group %d has %d member", ErrMalformedGroup, members[i].group, j-i)
		}
		next = members[i].group + 1
		i = j
	}

	g.members = members
	g.next = next
	return nil
}

// Validate checks the registry invariants: contiguous ascending groups of
// at least two members, each member resolving to a point that records the
// same group.
func (g *Graph) Validate() error {
	seen := make(map[spline.GroupID]bool)
	for i := 0; i < len(g.members); {
		group := g.members[i].group
		if seen[group] {
			return fmt.Errorf("%w: group %d is not contiguous", ErrMalformedGroup, group)
		}
		if i > 0 && group < g.members[i-1].group {
			return fmt.Errorf("%w: group %d out of order", ErrMalformedGroup, group)
		}
		seen[group] = true
		n := g.Size(group)
		if n < 2 {
			return fmt.Errorf("%w: group %d has %d member", ErrMalformedGroup, group, n)
		}
		for _, m := range g.members[i : i+n] {
			p, ok := g.resolver.Resolve(m.id)
			if !ok {
				return fmt.Errorf("%w: group %d references missing point %d", ErrMalformedGroup, group, m.id)
			}
			if p.Group() != group {
				return fmt.Errorf("%w: point %d records group %d, registered in %d", ErrMalformedGroup, m.id, p.Group(), group)
			}
		}
		i += n
	}
	return nil
}
