package graph

import (
	"strings"

	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/geo"
)

// Side is the side of a node a port is attached to.
type Side int

const (
	// SideUndefined lets the engine choose the side and offset of a port.
	SideUndefined Side = iota
	SideNorth
	SideEast
	SideSouth
	SideWest
)

var sideNames = [...]string{"undefined", "north", "east", "south", "west"}

func (s Side) String() string {
	if s < 0 || int(s) >= len(sideNames) {
		return "invalid"
	}
	return sideNames[s]
}

// ParseSide parses a side name. The empty string is SideUndefined.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(s) {
	case "", "undefined":
		return SideUndefined, nil
	case "north", "n", "top":
		return SideNorth, nil
	case "east", "e", "right":
		return SideEast, nil
	case "south", "s", "bottom":
		return SideSouth, nil
	case "west", "w", "left":
		return SideWest, nil
	}
	return SideUndefined, errors.New(errors.ErrCodeInvalidInput, "unknown port side %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Side) UnmarshalText(b []byte) error {
	v, err := ParseSide(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// OnBoundary reports whether offset lies on side s of a w×h box. Undefined
// sides accept any offset.
func (s Side) OnBoundary(offset geo.Point, w, h float64) bool {
	within := func(v, max float64) bool { return v >= -geo.Epsilon && v <= max+geo.Epsilon }
	switch s {
	case SideNorth:
		return geo.Near(offset.Y, 0) && within(offset.X, w)
	case SideSouth:
		return geo.Near(offset.Y, h) && within(offset.X, w)
	case SideWest:
		return geo.Near(offset.X, 0) && within(offset.Y, h)
	case SideEast:
		return geo.Near(offset.X, w) && within(offset.Y, h)
	}
	return true
}
