package spline

import (
	"fmt"
	"strings"
)

// Mode constrains handle 0 relative to handle 1 whenever either is edited.
type Mode int

const (
	Free     Mode = iota // Handles are independent
	Aligned              // Opposite directions, independent lengths
	Mirrored             // Exactly opposite
)

// String returns the lower-case mode name used in spline files.
func (m Mode) String() string {
	switch m {
	case Free:
		return "free"
	case Aligned:
		return "aligned"
	case Mirrored:
		return "mirrored"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Valid reports whether m is one of the defined modes.
func (m Mode) Valid() bool {
	return m >= Free && m <= Mirrored
}

// ParseMode parses a mode name, ignoring case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "free":
		return Free, nil
	case "aligned":
		return Aligned, nil
	case "mirrored":
		return Mirrored, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}
