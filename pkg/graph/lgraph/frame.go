package lgraph

import (
	"math"

	"github.com/matzehuels/strata/pkg/geo"
	"github.com/matzehuels/strata/pkg/graph"
)

// The layout stages work in a canonical frame independent of the drawing
// direction. Points in the canonical frame store the layer axis in X (called
// L, growing downstream) and the within-layer axis in Y (called W).

// CSide is a port side in the canonical frame.
type CSide int

const (
	// Front faces the next layer.
	Front CSide = iota
	// Back faces the previous layer.
	Back
	// Low is the side with the smaller W coordinate.
	Low
	// High is the side with the larger W coordinate.
	High
)

func (s CSide) String() string {
	switch s {
	case Front:
		return "front"
	case Back:
		return "back"
	case Low:
		return "low"
	case High:
		return "high"
	}
	return "invalid"
}

// Frame converts between drawing coordinates and the canonical frame for one
// layout direction.
type Frame struct {
	Dir graph.Direction
}

// Size returns the extent of a w×h node along the layer and within-layer
// axes.
func (f Frame) Size(w, h float64) (sizeL, sizeW float64) {
	if f.Dir.Horizontal() {
		return w, h
	}
	return h, w
}

// SideOf maps a drawing side to the canonical side. SideUndefined maps to
// Front.
func (f Frame) SideOf(s graph.Side) CSide {
	var front, back, low, high graph.Side
	switch f.Dir {
	case graph.DirRight:
		front, back, low, high = graph.SideEast, graph.SideWest, graph.SideNorth, graph.SideSouth
	case graph.DirDown:
		front, back, low, high = graph.SideSouth, graph.SideNorth, graph.SideWest, graph.SideEast
	case graph.DirLeft:
		front, back, low, high = graph.SideWest, graph.SideEast, graph.SideNorth, graph.SideSouth
	default:
		front, back, low, high = graph.SideNorth, graph.SideSouth, graph.SideWest, graph.SideEast
	}
	switch s {
	case back:
		return Back
	case low:
		return Low
	case high:
		return High
	case front:
		return Front
	}
	return Front
}

// DrawingSide is the inverse of [Frame.SideOf].
func (f Frame) DrawingSide(s CSide) graph.Side {
	for _, ds := range []graph.Side{graph.SideNorth, graph.SideEast, graph.SideSouth, graph.SideWest} {
		if f.SideOf(ds) == s {
			return ds
		}
	}
	return graph.SideUndefined
}

// Offset converts a port offset relative to the top-left corner of a w×h
// node into the canonical frame.
func (f Frame) Offset(o geo.Point, w, h float64) geo.Point {
	switch f.Dir {
	case graph.DirDown:
		return geo.Pt(o.Y, o.X)
	case graph.DirLeft:
		return geo.Pt(w-o.X, o.Y)
	case graph.DirUp:
		return geo.Pt(h-o.Y, o.X)
	}
	return o
}

// LocalOffset is the inverse of [Frame.Offset].
func (f Frame) LocalOffset(c geo.Point, w, h float64) geo.Point {
	switch f.Dir {
	case graph.DirDown:
		return geo.Pt(c.Y, c.X)
	case graph.DirLeft:
		return geo.Pt(w-c.X, c.Y)
	case graph.DirUp:
		return geo.Pt(c.Y, h-c.X)
	}
	return c
}

// ToDrawing maps a canonical point to drawing coordinates.
func (f Frame) ToDrawing(c geo.Point) geo.Point {
	switch f.Dir {
	case graph.DirDown:
		return geo.Pt(c.Y, c.X)
	case graph.DirLeft:
		return geo.Pt(-c.X, c.Y)
	case graph.DirUp:
		return geo.Pt(c.Y, -c.X)
	}
	return c
}

// ToCanonical is the inverse of [Frame.ToDrawing].
func (f Frame) ToCanonical(p geo.Point) geo.Point {
	switch f.Dir {
	case graph.DirDown:
		return geo.Pt(p.Y, p.X)
	case graph.DirLeft:
		return geo.Pt(-p.X, p.Y)
	case graph.DirUp:
		return geo.Pt(-p.Y, p.X)
	}
	return p
}

// RectToDrawing maps a canonical box (origin and extents along L and W) to a
// drawing rectangle.
func (f Frame) RectToDrawing(origin geo.Point, sizeL, sizeW float64) geo.Rect {
	a := f.ToDrawing(origin)
	b := f.ToDrawing(origin.Add(geo.Pt(sizeL, sizeW)))
	return geo.Rect{
		X: math.Min(a.X, b.X),
		Y: math.Min(a.Y, b.Y),
		W: math.Abs(a.X - b.X),
		H: math.Abs(a.Y - b.Y),
	}
}

// RectToCanonical maps a drawing rectangle to its canonical origin.
func (f Frame) RectToCanonical(r geo.Rect) geo.Point {
	a := f.ToCanonical(geo.Pt(r.X, r.Y))
	b := f.ToCanonical(geo.Pt(r.Right(), r.Bottom()))
	return geo.Pt(math.Min(a.X, b.X), math.Min(a.Y, b.Y))
}
