// Package render draws the workspace onto an output surface in screen space.
package render

import (
	"fmt"
	"strings"

	"infinity/internal/geom"
	"infinity/internal/model"
	"infinity/internal/route"
	"infinity/internal/view"
)

// Surface receives screen-space draw calls.
type Surface interface {
	Line(a, b geom.Point, c geom.Color, width float64)
	// Text draws monospace text with its top-left corner at at.
	Text(at geom.Point, s string, c geom.Color, size float64)
}

// Document-space layout of node contents.
const (
	Padding    = 6.0
	LineHeight = 16.0
	FontSize   = 12.0
	HUDSize    = 12.0
)

type Theme struct {
	NoteBorder   geom.Color
	CodeBorder   geom.Color
	LockedBorder geom.Color
	Text         geom.Color
	Muted        geom.Color
	Preview      geom.Color
	Dangling     geom.Color
}

var DefaultTheme = Theme{
	NoteBorder:   geom.RGB(220, 220, 220),
	CodeBorder:   geom.RGB(120, 200, 140),
	LockedBorder: geom.RGB(230, 90, 90),
	Text:         geom.RGB(235, 235, 235),
	Muted:        geom.RGB(140, 140, 140),
	Preview:      geom.RGB(255, 120, 200),
	Dangling:     geom.RGB(110, 110, 110),
}

// Scene is everything drawn in one frame.
type Scene struct {
	Canvas  *model.Canvas
	View    view.Transform
	Clip    geom.Rect
	Current *model.Stroke
	Preview *route.Route
	HUD     bool
	Theme   Theme
}

// Draw renders connections, nodes, ink and the connection preview, in that order.
func Draw(s Surface, sc Scene) {
	if sc.Theme == (Theme{}) {
		sc.Theme = DefaultTheme
	}
	c := sc.Canvas
	for _, r := range route.PlanAll(c, c.Connections()) {
		col := r.Color
		if r.Dangling {
			col = sc.Theme.Dangling
		}
		drawRoute(s, sc.View, r, col, 1.5)
	}
	for _, n := range c.Notes() {
		if sc.visible(n.Rect()) {
			drawNote(s, sc, n)
		}
	}
	for _, n := range c.Codes() {
		if sc.visible(n.Rect()) {
			drawCode(s, sc, n)
		}
	}
	for _, st := range c.Strokes() {
		if sc.visible(strokeBounds(st)) {
			drawStroke(s, sc.View, st)
		}
	}
	if sc.Current != nil {
		drawStroke(s, sc.View, *sc.Current)
	}
	if sc.Preview != nil {
		drawRoute(s, sc.View, *sc.Preview, sc.Theme.Preview, 1)
	}
	if sc.HUD {
		hud := fmt.Sprintf("Zoom: %.2f | Offset: (%.1f, %.1f)", sc.View.Zoom, sc.View.Offset.X, sc.View.Offset.Y)
		s.Text(geom.Pt(10, 10), hud, sc.Theme.Text, HUDSize)
	}
}

// visible culls document-space rectangles against the clip. A zero clip disables culling.
func (sc Scene) visible(r geom.Rect) bool {
	if sc.Clip == (geom.Rect{}) {
		return true
	}
	screen := geom.Rect{Min: sc.View.ToScreen(r.Min), Max: sc.View.ToScreen(r.Max)}
	return screen.Intersects(sc.Clip)
}

// Polyline draws consecutive segments through points.
func Polyline(s Surface, points []geom.Point, c geom.Color, width float64) {
	for i := 1; i < len(points); i++ {
		s.Line(points[i-1], points[i], c, width)
	}
}

func drawRoute(s Surface, t view.Transform, r route.Route, c geom.Color, width float64) {
	screen := make([]geom.Point, len(r.Curve))
	for i, p := range r.Curve {
		screen[i] = t.ToScreen(p)
	}
	Polyline(s, screen, c, width)
	for _, barb := range r.Head {
		s.Line(t.ToScreen(barb[0]), t.ToScreen(barb[1]), c, width)
	}
}

func drawStroke(s Surface, t view.Transform, st model.Stroke) {
	screen := make([]geom.Point, len(st.Points))
	for i, p := range st.Points {
		screen[i] = t.ToScreen(p)
	}
	Polyline(s, screen, st.Color, st.Thickness*t.Zoom)
}

func drawBox(s Surface, r geom.Rect, c geom.Color) {
	tl, br := r.Min, r.Max
	tr, bl := geom.Pt(br.X, tl.Y), geom.Pt(tl.X, br.Y)
	s.Line(tl, tr, c, 1)
	s.Line(tr, br, c, 1)
	s.Line(br, bl, c, 1)
	s.Line(bl, tl, c, 1)
}

func drawNote(s Surface, sc Scene, n model.Note) {
	border := sc.Theme.NoteBorder
	if n.Locked {
		border = sc.Theme.LockedBorder
	}
	drawBox(s, sc.View.ScreenRect(n.Pos, n.Size), border)
	drawLines(s, sc, n.Node, strings.Split(n.Text, "\n"), sc.Theme.Text)
}

func drawCode(s Surface, sc Scene, n model.Code) {
	border := sc.Theme.CodeBorder
	if n.Locked {
		border = sc.Theme.LockedBorder
	}
	drawBox(s, sc.View.ScreenRect(n.Pos, n.Size), border)
	lines := append([]string{CodeHeader(n)}, strings.Split(n.Code, "\n")...)
	drawLines(s, sc, n.Node, lines, sc.Theme.Text)
}

// CodeHeader is the title line of a code node.
func CodeHeader(n model.Code) string {
	header := n.FilePath
	if header == "" {
		header = "(no file)"
	}
	if n.LineOffset != nil {
		header = fmt.Sprintf("%s:%d", header, *n.LineOffset)
	}
	if n.Locked {
		header += " [locked]"
	}
	return header
}

// drawLines lays out text rows inside a node, dropping rows that do not fit.
func drawLines(s Surface, sc Scene, n model.Node, lines []string, c geom.Color) {
	size := FontSize * sc.View.Zoom
	for i, line := range lines {
		top := Padding + float64(i)*LineHeight
		if top+LineHeight > n.Size.H {
			break
		}
		at := sc.View.ToScreen(geom.Pt(n.Pos.X+Padding, n.Pos.Y+top))
		s.Text(at, line, c, size)
	}
}

func strokeBounds(st model.Stroke) geom.Rect {
	if len(st.Points) == 0 {
		return geom.Rect{}
	}
	r := geom.Rect{Min: st.Points[0], Max: st.Points[0]}
	for _, p := range st.Points[1:] {
		r = extend(r, p)
	}
	return r
}

func extend(r geom.Rect, p geom.Point) geom.Rect {
	if p.X < r.Min.X {
		r.Min.X = p.X
	}
	if p.Y < r.Min.Y {
		r.Min.Y = p.Y
	}
	if p.X > r.Max.X {
		r.Max.X = p.X
	}
	if p.Y > r.Max.Y {
		r.Max.Y = p.Y
	}
	return r
}

// Bounds is the document-space extent of every node, stroke and connection curve.
func Bounds(c *model.Canvas) (geom.Rect, bool) {
	var r geom.Rect
	found := false
	add := func(p geom.Point) {
		if !found {
			r = geom.Rect{Min: p, Max: p}
			found = true
			return
		}
		r = extend(r, p)
	}
	for _, n := range c.Notes() {
		add(n.Rect().Min)
		add(n.Rect().Max)
	}
	for _, n := range c.Codes() {
		add(n.Rect().Min)
		add(n.Rect().Max)
	}
	for _, st := range c.Strokes() {
		for _, p := range st.Points {
			add(p)
		}
	}
	for _, rt := range route.PlanAll(c, c.Connections()) {
		for _, p := range rt.Curve {
			add(p)
		}
	}
	return r, found
}
