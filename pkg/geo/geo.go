// Package geo provides the small amount of plane geometry the layout engine
// needs: points, axis-aligned rectangles and polyline helpers.
//
// All values are plain structs passed by value. Coordinates follow the usual
// screen convention: x grows to the right and y grows downwards.
package geo

import (
	"fmt"
	"math"
)

// Epsilon is the tolerance used when comparing coordinates.
const Epsilon = 1e-6

// Point is a position in the plane.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Equals reports whether p and q coincide within [Epsilon].
func (p Point) Equals(q Point) bool {
	return Near(p.X, q.X) && Near(p.Y, q.Y)
}

func (p Point) String() string {
	return fmt.Sprintf("(%.2f, %.2f)", p.X, p.Y)
}

// Near reports whether a and b differ by less than [Epsilon].
func Near(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// Rect is an axis-aligned rectangle given by its top-left corner and size.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"width"`
	H float64 `json:"height"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Center returns the midpoint of r.
func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Contains reports whether p lies strictly inside r. Points on the border are
// outside, so a route may touch a node boundary at its own port.
func (r Rect) Contains(p Point) bool {
	return p.X > r.X+Epsilon && p.X < r.Right()-Epsilon &&
		p.Y > r.Y+Epsilon && p.Y < r.Bottom()-Epsilon
}

// Overlaps reports whether the interiors of r and o intersect.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.Right()-Epsilon && o.X < r.Right()-Epsilon &&
		r.Y < o.Bottom()-Epsilon && o.Y < r.Bottom()-Epsilon
}

// Grow returns r enlarged by d on every side.
func (r Rect) Grow(d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, W: r.W + 2*d, H: r.H + 2*d}
}

// Translate returns r moved by the vector v.
func (r Rect) Translate(v Point) Rect {
	return Rect{X: r.X + v.X, Y: r.Y + v.Y, W: r.W, H: r.H}
}

// Union returns the smallest rectangle containing both r and o. The zero
// Rect is treated as empty.
func (r Rect) Union(o Rect) Rect {
	if r == (Rect{}) {
		return o
	}
	if o == (Rect{}) {
		return r
	}
	x0, y0 := math.Min(r.X, o.X), math.Min(r.Y, o.Y)
	x1, y1 := math.Max(r.Right(), o.Right()), math.Max(r.Bottom(), o.Bottom())
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// ExtendTo returns r grown just enough to contain p.
func (r Rect) ExtendTo(p Point) Rect {
	x0, y0 := math.Min(r.X, p.X), math.Min(r.Y, p.Y)
	x1, y1 := math.Max(r.Right(), p.X), math.Max(r.Bottom(), p.Y)
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// PushOutY moves p vertically out of r to whichever of the top or bottom
// edges is nearer, leaving clearance between p and the edge. Points outside r
// are returned unchanged.
func (r Rect) PushOutY(p Point, clearance float64) Point {
	if !r.Contains(p) {
		return p
	}
	if p.Y-r.Y <= r.Bottom()-p.Y {
		return Point{X: p.X, Y: r.Y - clearance}
	}
	return Point{X: p.X, Y: r.Bottom() + clearance}
}

// PushOutX is the horizontal counterpart of [Rect.PushOutY].
func (r Rect) PushOutX(p Point, clearance float64) Point {
	if !r.Contains(p) {
		return p
	}
	if p.X-r.X <= r.Right()-p.X {
		return Point{X: r.X - clearance, Y: p.Y}
	}
	return Point{X: r.Right() + clearance, Y: p.Y}
}

// Simplify drops consecutive duplicates and interior points that are
// collinear with their neighbours along an axis. The first and last points
// are always kept.
func Simplify(pts []Point) []Point {
	if len(pts) < 3 {
		return pts
	}
	out := make([]Point, 0, len(pts))
	for _, p := range pts {
		if n := len(out); n > 0 && out[n-1].Equals(p) {
			continue
		}
		out = append(out, p)
	}
	if len(out) < 3 {
		return out
	}
	res := []Point{out[0]}
	for i := 1; i < len(out)-1; i++ {
		a, b, c := res[len(res)-1], out[i], out[i+1]
		if (Near(a.X, b.X) && Near(b.X, c.X)) || (Near(a.Y, b.Y) && Near(b.Y, c.Y)) {
			continue
		}
		res = append(res, b)
	}
	return append(res, out[len(out)-1])
}

// IsOrthogonal reports whether every segment of the polyline is horizontal or
// vertical.
func IsOrthogonal(pts []Point) bool {
	for i := 1; i < len(pts); i++ {
		if !Near(pts[i-1].X, pts[i].X) && !Near(pts[i-1].Y, pts[i].Y) {
			return false
		}
	}
	return true
}
