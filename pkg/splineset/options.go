package splineset

import (
	"go.uber.org/zap"

	"github.com/Faultbox/splinetool/pkg/math"
	"github.com/Faultbox/splinetool/pkg/spline"
)

// Option configures a Set.
type Option func(*Set)

// WithLogger sets the logger used for recovered errors. The default
// discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Set) {
		if l != nil {
			s.log = l
		}
	}
}

// WithObserver registers fn to receive structural events.
func WithObserver(fn func(Event)) Option {
	return func(s *Set) {
		s.observer = fn
	}
}

// WithFrame places the set in a containing coordinate frame. Reads are
// returned in that frame and writes are expected in it.
func WithFrame(t math.Transform) Option {
	return func(s *Set) {
		s.frame = t
	}
}

// WithResolution sets the arc-length samples per segment for every spline
// the set creates.
func WithResolution(r int) Option {
	return func(s *Set) {
		if r < 1 {
			r = spline.DefaultResolution
		}
		s.resolution = r
	}
}
