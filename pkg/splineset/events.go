package splineset

import "fmt"

// EventKind classifies a structural change.
type EventKind int

const (
	PointAdded EventKind = iota
	PointRemoved
	SplineAdded
	SplineRemoved
	SplineChanged
	SettingsChanged
	SplineRenamed
)

func (k EventKind) String() string {
	switch k {
	case PointAdded:
		return "point-added"
	case PointRemoved:
		return "point-removed"
	case SplineAdded:
		return "spline-added"
	case SplineRemoved:
		return "spline-removed"
	case SplineChanged:
		return "spline-changed"
	case SettingsChanged:
		return "settings-changed"
	case SplineRenamed:
		return "spline-renamed"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event tells an observer what changed. Spline and Point are indices at the
// time of the change; Point is -1 for spline-level events. Name carries the
// spline name for SplineAdded, SplineRemoved and SplineRenamed.
type Event struct {
	Kind   EventKind
	Spline int
	Point  int
	Name   string
}

func (s *Set) emit(e Event) {
	if s.observer != nil {
		s.observer(e)
	}
}
