package graph

import (
	"strings"

	"github.com/matzehuels/strata/pkg/errors"
)

// LayerConstraint pins a node to the first or last layer of its component.
//
// Edges of a constrained node are reversed as needed during cycle breaking
// so that a First node only has outgoing and a Last node only incoming
// edges. Layering then moves the node to the outermost layer. Constraints
// are ignored when layers are fixed by the caller.
type LayerConstraint int

const (
	ConstraintNone LayerConstraint = iota
	ConstraintFirst
	ConstraintLast
)

var constraintNames = [...]string{"none", "first", "last"}

func (c LayerConstraint) String() string {
	if c < 0 || int(c) >= len(constraintNames) {
		return "invalid"
	}
	return constraintNames[c]
}

// ParseLayerConstraint parses a constraint name. The empty string is
// ConstraintNone.
func ParseLayerConstraint(s string) (LayerConstraint, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return ConstraintNone, nil
	case "first":
		return ConstraintFirst, nil
	case "last":
		return ConstraintLast, nil
	}
	return ConstraintNone, errors.New(errors.ErrCodeInvalidInput, "unknown layer constraint %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c LayerConstraint) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *LayerConstraint) UnmarshalText(b []byte) error {
	v, err := ParseLayerConstraint(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Pinned reports whether edge e must be reversed to honor the layer
// constraints of its ends: it enters a First node or leaves a Last node,
// and the other end does not carry the same constraint. Self-loops are
// never pinned.
func (g *Graph) Pinned(e EdgeID) bool {
	if g.IsSelfLoop(e) {
		return false
	}
	s, d := g.Ends(e)
	cs, cd := g.nodes[s].Constraint, g.nodes[d].Constraint
	return (cd == ConstraintFirst && cs != ConstraintFirst) ||
		(cs == ConstraintLast && cd != ConstraintLast)
}
