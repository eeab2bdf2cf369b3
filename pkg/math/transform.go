package math

// Transform is a translate-rotate-scale frame. The zero value is not a valid
// frame; use TransformIdentity.
type Transform struct {
	Position Vec3
	Rotation Quat
	Scale    Vec3
}

// TransformIdentity returns a frame that maps every point onto itself.
func TransformIdentity() Transform {
	return Transform{
		Rotation: QuatIdentity(),
		Scale:    Vec3{1, 1, 1},
	}
}

// Matrix returns T * R * S.
func (t Transform) Matrix() Mat4 {
	return Translate(t.Position.X, t.Position.Y, t.Position.Z).
		Mul(t.Rotation.ToMat4()).
		Mul(Scale(t.Scale.X, t.Scale.Y, t.Scale.Z))
}

// TransformPoint maps a local point into the containing space.
func (t Transform) TransformPoint(p Vec3) Vec3 {
	return t.Matrix().TransformVec3(p)
}

// InverseTransformPoint maps a point of the containing space into local space.
// A frame with a zero scale component maps everything onto the origin plane
// and cannot be inverted; such points are returned translated only.
func (t Transform) InverseTransformPoint(p Vec3) Vec3 {
	if t.Scale.X == 0 || t.Scale.Y == 0 || t.Scale.Z == 0 {
		return t.Rotation.Inverse().Rotate(p.Sub(t.Position))
	}
	return t.Matrix().Inverse().TransformVec3(p)
}

// TransformDirection rotates a local direction into the containing space.
// Scale is ignored so unit directions stay unit length.
func (t Transform) TransformDirection(d Vec3) Vec3 {
	return t.Rotation.ToMat4().TransformDirection(d)
}

// TransformRotation returns the containing-space rotation of a local rotation.
func (t Transform) TransformRotation(q Quat) Quat {
	return t.Rotation.Mul(q)
}

// InverseTransformRotation returns the local rotation of a containing-space rotation.
func (t Transform) InverseTransformRotation(q Quat) Quat {
	return t.Rotation.Inverse().Mul(q)
}
