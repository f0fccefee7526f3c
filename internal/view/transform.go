// Package view converts between screen space and document space.
package view

import "infinity/internal/geom"

const (
	MinZoom = 0.4
	MaxZoom = 4.0

	// ScrollSensitivity scales a vertical scroll delta into a relative zoom change.
	ScrollSensitivity = 0.001
)

// Transform maps document space to screen space as p*Zoom + Offset.
type Transform struct {
	Zoom   float64
	Offset geom.Point
}

func Identity() Transform {
	return Transform{Zoom: 1}
}

func (t Transform) ToScreen(p geom.Point) geom.Point {
	return p.Scale(t.zoom()).Add(t.Offset)
}

func (t Transform) ToDocument(p geom.Point) geom.Point {
	return p.Sub(t.Offset).Scale(1 / t.zoom())
}

// ScreenRect returns the screen-space rectangle of a document-space box.
func (t Transform) ScreenRect(pos geom.Point, size geom.Size) geom.Rect {
	return geom.Rect{
		Min: t.ToScreen(pos),
		Max: t.ToScreen(geom.Point{X: pos.X + size.W, Y: pos.Y + size.H}),
	}
}

// DocumentRect is the inverse of ScreenRect for a screen-space rectangle.
func (t Transform) DocumentRect(r geom.Rect) geom.Rect {
	return geom.Rect{Min: t.ToDocument(r.Min), Max: t.ToDocument(r.Max)}
}

// DocumentDelta converts a screen-space displacement into document units.
func (t Transform) DocumentDelta(d geom.Point) geom.Point {
	return d.Scale(1 / t.zoom())
}

// Scroll applies one vertical scroll delta to the zoom and clamps the result.
func (t *Transform) Scroll(deltaY float64) {
	if deltaY == 0 {
		return
	}
	t.Zoom = geom.Clamp(t.zoom()*(1+deltaY*ScrollSensitivity), MinZoom, MaxZoom)
}

// Pan shifts the offset by a screen-space pointer delta.
func (t *Transform) Pan(delta geom.Point) {
	t.Offset = t.Offset.Add(delta)
}

// ResetZoom restores a zoom of 1 and keeps the offset.
func (t *Transform) ResetZoom() {
	t.Zoom = 1
}

// zoom guards against the zero value Transform.
func (t Transform) zoom() float64 {
	if t.Zoom == 0 {
		return 1
	}
	return t.Zoom
}
