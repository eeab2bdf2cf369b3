package splineset

import (
	"errors"

	"github.com/Faultbox/splinetool/pkg/junction"
	"github.com/Faultbox/splinetool/pkg/spline"
)

// Set errors. ErrIndexOutOfRange and ErrJunctionConflict are shared with the
// packages that detect them so errors.Is works across layers.
var (
	ErrIndexOutOfRange  = spline.ErrIndexOutOfRange
	ErrJunctionConflict = junction.ErrJunctionConflict
	ErrMalformedState   = errors.New("malformed spline state")
)
