package graph

import (
	"strings"

	"github.com/matzehuels/strata/pkg/errors"
)

// Direction is the direction edges flow in the drawing. Layers are stacked
// along this axis.
type Direction int

const (
	DirRight Direction = iota
	DirDown
	DirLeft
	DirUp
)

var directionNames = [...]string{"right", "down", "left", "up"}

func (d Direction) String() string {
	if d < 0 || int(d) >= len(directionNames) {
		return "invalid"
	}
	return directionNames[d]
}

// ParseDirection parses a direction name. The empty string is DirRight.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "", "right", "lr":
		return DirRight, nil
	case "down", "tb":
		return DirDown, nil
	case "left", "rl":
		return DirLeft, nil
	case "up", "bt":
		return DirUp, nil
	}
	return DirRight, errors.New(errors.ErrCodeInvalidOptions, "unknown direction %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(b []byte) error {
	v, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Horizontal reports whether layers are stacked along the x axis.
func (d Direction) Horizontal() bool {
	return d == DirRight || d == DirLeft
}
