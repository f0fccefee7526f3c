// Package route computes anchor points and curves for connections.
package route

import (
	"infinity/internal/geom"
	"infinity/internal/model"
)

const (
	// ControlDistance is how far control points are pushed along each endpoint's outward normal.
	ControlDistance = 50.0
	HeadLength      = 10.0
)

// Nodes is the lookup the router needs from the entity store.
type Nodes interface {
	Bounds(ref model.NodeRef) model.Bounds
}

// Route is the resolved geometry of one connection, in document space.
type Route struct {
	ConnectionID string
	Start        geom.Point
	End          geom.Point
	Curve        []geom.Point
	Head         [2][2]geom.Point
	Color        geom.Color
	// Dangling is set when either endpoint no longer exists.
	Dangling bool
}

// Anchor is one end of a connection, or the pending start of one.
type Anchor struct {
	Ref  model.NodeRef
	Side geom.Side
}

// Rank returns the position of connection id among all connections that attach to
// anchor, and how many there are. Connections are compared by id, never by storage.
func Rank(conns []model.Connection, id string, anchor Anchor) (index, total int) {
	for _, c := range conns {
		if attaches(c, anchor) {
			if c.ID == id {
				index = total
			}
			total++
		}
	}
	if total == 0 {
		total = 1
	}
	return index, total
}

// attaches counts a self-loop whose two ends share a side once.
func attaches(c model.Connection, a Anchor) bool {
	return (c.Start == a.Ref && c.StartSide == a.Side) || (c.End == a.Ref && c.EndSide == a.Side)
}

// AnchorFor places one end of a connection on its node's side.
func AnchorFor(nodes Nodes, conns []model.Connection, id string, a Anchor) (geom.Point, bool) {
	b := nodes.Bounds(a.Ref)
	index, total := Rank(conns, id, a)
	return geom.AnchorPoint(b.Pos, b.Size, a.Side, index, total), b.Found
}

// ControlPoints bows the curve away from both endpoints along their normals.
func ControlPoints(start geom.Point, startSide geom.Side, end geom.Point, endSide geom.Side) (geom.Point, geom.Point) {
	c1 := geom.Lerp(start, end, 1.0/3).Add(geom.SideNormal(startSide).Scale(ControlDistance))
	c2 := geom.Lerp(start, end, 2.0/3).Add(geom.SideNormal(endSide).Scale(ControlDistance))
	return c1, c2
}

// Curve tessellates the connection curve between two anchors.
func Curve(start geom.Point, startSide geom.Side, end geom.Point, endSide geom.Side) []geom.Point {
	c1, c2 := ControlPoints(start, startSide, end, endSide)
	return geom.CubicBezier(start, c1, c2, end, geom.CurveSegments)
}

// ArrowHead returns the two barbs at the tip of a polyline, each as [tip, wing].
// The direction comes from the final segment; degenerate segments yield zero-length barbs.
func ArrowHead(curve []geom.Point) [2][2]geom.Point {
	if len(curve) == 0 {
		return [2][2]geom.Point{}
	}
	tip := curve[len(curve)-1]
	dir := geom.Point{}
	for i := len(curve) - 2; i >= 0; i-- {
		if d := tip.Sub(curve[i]); d.Len() > 0 {
			dir = d.Normalize()
			break
		}
	}
	base := tip.Sub(dir.Scale(HeadLength))
	spread := dir.Perp().Scale(HeadLength / 2)
	return [2][2]geom.Point{
		{tip, base.Add(spread)},
		{tip, base.Sub(spread)},
	}
}

// Plan routes one connection against the current nodes.
func Plan(nodes Nodes, conns []model.Connection, c model.Connection) Route {
	start, okStart := AnchorFor(nodes, conns, c.ID, Anchor{Ref: c.Start, Side: c.StartSide})
	end, okEnd := AnchorFor(nodes, conns, c.ID, Anchor{Ref: c.End, Side: c.EndSide})
	curve := Curve(start, c.StartSide, end, c.EndSide)
	return Route{
		ConnectionID: c.ID,
		Start:        start,
		End:          end,
		Curve:        curve,
		Head:         ArrowHead(curve),
		Color:        c.Color,
		Dangling:     !okStart || !okEnd,
	}
}

// PlanAll routes every connection in z order.
func PlanAll(nodes Nodes, conns []model.Connection) []Route {
	routes := make([]Route, 0, len(conns))
	for _, c := range conns {
		routes = append(routes, Plan(nodes, conns, c))
	}
	return routes
}

// Preview routes the in-progress connection from its pending start to the pointer.
// The start takes the slot a committed connection would get; the pointer end behaves
// like a point-sized node facing back at the start.
func Preview(nodes Nodes, conns []model.Connection, start Anchor, pointer geom.Point) Route {
	b := nodes.Bounds(start.Ref)
	n := Count(conns, start)
	from := geom.AnchorPoint(b.Pos, b.Size, start.Side, n, n+1)
	endSide := geom.FacingSide(pointer, from)
	curve := Curve(from, start.Side, pointer, endSide)
	return Route{
		Start:    from,
		End:      pointer,
		Curve:    curve,
		Head:     ArrowHead(curve),
		Dangling: !b.Found,
	}
}

// Count returns how many connections attach to an anchor.
func Count(conns []model.Connection, a Anchor) int {
	n := 0
	for _, c := range conns {
		if attaches(c, a) {
			n++
		}
	}
	return n
}
