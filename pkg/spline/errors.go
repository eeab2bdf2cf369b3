package spline

import "errors"

// Spline errors.
var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrUnknownMode     = errors.New("unknown control point mode")
)
