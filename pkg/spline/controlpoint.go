package spline

import (
	gomath "math"
	"sync/atomic"

	"github.com/Faultbox/splinetool/pkg/math"
)

// MinHandleMagnitude is the shortest handle a control point will hold.
// Zero-length tangents break derivative-based framing.
const MinHandleMagnitude float32 = 0.01

// PointID identifies a control point for the lifetime of the process.
type PointID uint64

// GroupID identifies a junction. NoGroup marks a point outside any junction.
type GroupID int

// NoGroup is the group of a point that is not part of a junction.
const NoGroup GroupID = -1

var lastPointID atomic.Uint64

func nextPointID() PointID {
	return PointID(lastPointID.Add(1))
}

// ControlPoint is an anchor with two tangent handles stored relative to it.
// Handle 0 points back along the curve, handle 1 forward.
type ControlPoint struct {
	id      PointID
	anchor  math.Vec3
	handles [2]math.Vec3
	up      math.Vec3
	mode    Mode
	group   GroupID
}

// NewControlPoint creates a mirrored point at position whose handles span
// forward, half on each side.
func NewControlPoint(position, forward math.Vec3) *ControlPoint {
	p := &ControlPoint{
		id:     nextPointID(),
		anchor: position,
		handles: [2]math.Vec3{
			forward.Scale(-0.5),
			forward.Scale(0.5),
		},
		up:    math.Up,
		mode:  Mirrored,
		group: NoGroup,
	}
	for i := range p.handles {
		p.handles[i] = clampHandle(p.handles[i], defaultHandle(i))
	}
	return p
}

// RestoreControlPoint creates a point from persisted state. The handles are
// taken verbatim apart from the minimum-length clamp; the mode is not
// re-applied.
func RestoreControlPoint(anchor math.Vec3, handles [2]math.Vec3, up math.Vec3, mode Mode, group GroupID) *ControlPoint {
	p := &ControlPoint{
		id:      nextPointID(),
		anchor:  anchor,
		handles: handles,
		up:      up,
		mode:    mode,
		group:   group,
	}
	for i := range p.handles {
		p.handles[i] = clampHandle(p.handles[i], defaultHandle(i))
	}
	if p.up.Length() < 1e-6 {
		p.up = math.Up
	}
	return p
}

// ID returns the point's identity.
func (p *ControlPoint) ID() PointID { return p.id }

// Anchor returns the on-curve position.
func (p *ControlPoint) Anchor() math.Vec3 { return p.anchor }

// SetAnchor moves the point. Handles move with it.
func (p *ControlPoint) SetAnchor(position math.Vec3) { p.anchor = position }

// Up returns the reference up vector.
func (p *ControlPoint) Up() math.Vec3 { return p.up }

// Mode returns the tangent-continuity mode.
func (p *ControlPoint) Mode() Mode { return p.mode }

// Group returns the junction the point belongs to, or NoGroup.
func (p *ControlPoint) Group() GroupID { return p.group }

// SetGroup records junction membership. Only the junction graph should call it.
func (p *ControlPoint) SetGroup(g GroupID) { p.group = g }

// RelativeHandle returns handle index as an offset from the anchor.
func (p *ControlPoint) RelativeHandle(index int) math.Vec3 {
	return p.handles[index&1]
}

// Handle returns handle index in the point's space (anchor + offset).
func (p *ControlPoint) Handle(index int) math.Vec3 {
	return p.anchor.Add(p.RelativeHandle(index))
}

// HandleMagnitude returns the length of handle index.
func (p *ControlPoint) HandleMagnitude(index int) float32 {
	return p.handles[index&1].Length()
}

// SetRelativeHandle stores v as handle index and couples the opposite handle
// according to the mode.
func (p *ControlPoint) SetRelativeHandle(index int, v math.Vec3) {
	index &= 1
	v = clampHandle(v, p.handles[index])
	p.handles[index] = v

	other := 1 - index
	switch p.mode {
	case Aligned:
		p.handles[other] = v.Normalize().Scale(-p.handles[other].Length())
	case Mirrored:
		p.handles[other] = v.Neg()
	}
}

// SetHandle places handle index at position, expressed in the point's space.
func (p *ControlPoint) SetHandle(index int, position math.Vec3) {
	p.SetRelativeHandle(index, position.Sub(p.anchor))
}

// SetHandleMagnitude rescales handle index to magnitude, never below
// MinHandleMagnitude. Mirrored points mirror the result.
func (p *ControlPoint) SetHandleMagnitude(index int, magnitude float32) {
	index &= 1
	if magnitude < MinHandleMagnitude || gomath.IsNaN(float64(magnitude)) {
		magnitude = MinHandleMagnitude
	}
	p.handles[index] = p.handles[index].Normalize().Scale(magnitude)
	if p.mode == Mirrored {
		p.handles[1-index] = p.handles[index].Neg()
	}
}

// SetMode changes the mode and immediately snaps handle 0 to it.
func (p *ControlPoint) SetMode(mode Mode) {
	p.mode = mode
	p.SetRelativeHandle(1, p.handles[1])
}

// Rotation returns the look rotation of handle 1 and the up vector.
func (p *ControlPoint) Rotation() math.Quat {
	return math.LookRotation(p.handles[1], p.up)
}

// SetRotation turns both handles and the up vector by q, keeping the handle
// lengths.
func (p *ControlPoint) SetRotation(q math.Quat) {
	q = q.Normalize()
	p.handles[0] = q.Rotate(math.Back).Scale(p.handles[0].Length())
	p.handles[1] = q.Rotate(math.Forward).Scale(p.handles[1].Length())
	p.up = q.Rotate(math.Up)
}

// Scale multiplies both handle offsets component-wise. The anchor is unchanged.
func (p *ControlPoint) Scale(s math.Vec3) {
	for i := range p.handles {
		p.handles[i] = clampHandle(p.handles[i].Mul(s), p.handles[i])
	}
}

// EulerAngles returns pitch, yaw and roll in degrees; see EulerAngles.
func (p *ControlPoint) EulerAngles() math.Vec3 {
	return EulerAngles(p.up, p.handles[1])
}

// clampHandle keeps v at least MinHandleMagnitude long. A zero v takes the
// direction of fallback.
func clampHandle(v, fallback math.Vec3) math.Vec3 {
	if v.Length() >= MinHandleMagnitude {
		return v
	}
	dir := v.Normalize()
	if dir == (math.Vec3{}) {
		dir = fallback.Normalize()
	}
	if dir == (math.Vec3{}) {
		dir = math.Forward
	}
	return dir.Scale(MinHandleMagnitude)
}

func defaultHandle(index int) math.Vec3 {
	if index == 0 {
		return math.Back
	}
	return math.Forward
}

// EulerAngles decomposes a forward/up frame into angles that read naturally
// for a path: X is pitch (negative when climbing), Y is yaw (heading from +Z
// towards +X) and Z is roll, the signed banking of up away from the
// unrolled up. All angles are in degrees.
func EulerAngles(up, forward math.Vec3) math.Vec3 {
	var euler math.Vec3
	xz := math.Vec3{X: forward.X, Z: forward.Z}

	euler.Y = xz.XZ().Heading()
	euler.X = -float32(gomath.Atan2(float64(forward.Y), float64(xz.Length()))) * 180 / gomath.Pi

	perpendicular := math.Up.Cross(xz)
	if perpendicular.Length() < 1e-6 {
		perpendicular = math.Right
	}
	normal := forward.Cross(perpendicular)

	roll := normal.Angle(up)
	if perpendicular.Angle(up) < 90 {
		roll = -roll
	}
	euler.Z = roll
	return euler
}
