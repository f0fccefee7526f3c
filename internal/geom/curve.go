package geom

import "fmt"

// Side names an edge of a node's rectangle.
type Side int

const (
	SideTop Side = iota
	SideBottom
	SideLeft
	SideRight
)

// Sides lists every side in a fixed order; ties in ClosestSide resolve in this order.
var Sides = [...]Side{SideTop, SideBottom, SideLeft, SideRight}

func (s Side) String() string {
	switch s {
	case SideTop:
		return "top"
	case SideBottom:
		return "bottom"
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	}
	return fmt.Sprintf("side(%d)", int(s))
}

// ParseSide is the inverse of String.
func ParseSide(s string) (Side, error) {
	for _, side := range Sides {
		if side.String() == s {
			return side, nil
		}
	}
	return 0, fmt.Errorf("unknown side %q", s)
}

// CurveSegments is the tessellation used when drawing connections.
const CurveSegments = 30

// CubicBezier samples the curve at segments+1 evenly spaced parameters, both ends included.
func CubicBezier(p0, p1, p2, p3 Point, segments int) []Point {
	if segments < 1 {
		segments = 1
	}
	points := make([]Point, 0, segments+1)
	for i := 0; i <= segments; i++ {
		t := float64(i) / float64(segments)
		u := 1 - t
		b0 := u * u * u
		b1 := 3 * u * u * t
		b2 := 3 * u * t * t
		b3 := t * t * t
		points = append(points, Point{
			X: b0*p0.X + b1*p1.X + b2*p2.X + b3*p3.X,
			Y: b0*p0.Y + b1*p1.Y + b2*p2.Y + b3*p3.Y,
		})
	}
	return points
}

// SideNormal is the outward unit vector of a side.
func SideNormal(side Side) Point {
	switch side {
	case SideTop:
		return Point{0, -1}
	case SideBottom:
		return Point{0, 1}
	case SideLeft:
		return Point{-1, 0}
	case SideRight:
		return Point{1, 0}
	}
	return Point{}
}

// AnchorPoint splits the given side into total+1 equal parts and returns the
// (index+1)-th divider, so anchors never sit on a corner.
func AnchorPoint(pos Point, size Size, side Side, index, total int) Point {
	if total < 1 {
		total = 1
	}
	t := float64(index+1) / float64(total+1)
	switch side {
	case SideTop:
		return Point{pos.X + size.W*t, pos.Y}
	case SideBottom:
		return Point{pos.X + size.W*t, pos.Y + size.H}
	case SideLeft:
		return Point{pos.X, pos.Y + size.H*t}
	case SideRight:
		return Point{pos.X + size.W, pos.Y + size.H*t}
	}
	return pos
}

// SideMidpoint is the centre of a side.
func SideMidpoint(pos Point, size Size, side Side) Point {
	return AnchorPoint(pos, size, side, 0, 1)
}

// ClosestSide returns the side whose midpoint is nearest p.
func ClosestSide(pos Point, size Size, p Point) Side {
	best := SideTop
	bestDist := -1.0
	for _, side := range Sides {
		d := SideMidpoint(pos, size, side).Dist(p)
		if bestDist < 0 || d < bestDist {
			best, bestDist = side, d
		}
	}
	return best
}

// FacingSide picks the side of a point-like endpoint that faces toward target,
// choosing the dominant axis of the displacement.
func FacingSide(from, target Point) Side {
	d := target.Sub(from)
	if abs(d.X) > abs(d.Y) {
		if d.X < 0 {
			return SideLeft
		}
		return SideRight
	}
	if d.Y < 0 {
		return SideTop
	}
	return SideBottom
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
