package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"infinity/internal/geom"
	"infinity/internal/model"
)

// One terminal cell covers this many screen pixels, the same metrics the PNG
// export uses for a character.
const (
	cellWidth  = 8.0
	cellHeight = 16.0
)

// Box-drawing directions a cell connects to.
const (
	linkLeft uint8 = 1 << iota
	linkRight
	linkUp
	linkDown
)

var junctions = map[uint8]rune{
	linkLeft:                                 '─',
	linkRight:                                '─',
	linkLeft | linkRight:                     '─',
	linkUp:                                   '│',
	linkDown:                                 '│',
	linkUp | linkDown:                        '│',
	linkRight | linkDown:                     '┌',
	linkLeft | linkDown:                      '┐',
	linkRight | linkUp:                       '└',
	linkLeft | linkUp:                        '┘',
	linkLeft | linkRight | linkDown:          '┬',
	linkLeft | linkRight | linkUp:            '┴',
	linkUp | linkDown | linkRight:            '├',
	linkUp | linkDown | linkLeft:             '┤',
	linkLeft | linkRight | linkUp | linkDown: '┼',
}

type cell struct {
	r     rune
	links uint8
	color geom.Color
}

func (c cell) glyph() rune {
	if c.r != 0 {
		return c.r
	}
	if g, ok := junctions[c.links]; ok {
		return g
	}
	return ' '
}

// cellSurface rasterises screen-space draw calls onto a grid of terminal cells.
type cellSurface struct {
	width, height int
	cells         []cell
	styles        map[geom.Color]lipgloss.Style
}

func newCellSurface(width, height int) *cellSurface {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return &cellSurface{
		width:  width,
		height: height,
		cells:  make([]cell, width*height),
		styles: make(map[geom.Color]lipgloss.Style),
	}
}

func toCell(p geom.Point) (int, int) {
	return int(math.Floor(p.X / cellWidth)), int(math.Floor(p.Y / cellHeight))
}

// cellCenter is the screen position of the middle of a terminal cell.
func cellCenter(x, y int) geom.Point {
	return geom.Pt(float64(x)*cellWidth+cellWidth/2, float64(y)*cellHeight+cellHeight/2)
}

func (s *cellSurface) at(x, y int) *cell {
	if x < 0 || y < 0 || x >= s.width || y >= s.height {
		return nil
	}
	return &s.cells[y*s.width+x]
}

func (s *cellSurface) bounds() geom.Rect {
	return geom.Rect{Max: geom.Pt(float64(s.width)*cellWidth, float64(s.height)*cellHeight)}
}

func (s *cellSurface) Line(a, b geom.Point, c geom.Color, width float64) {
	a, b, ok := clipSegment(a, b, s.bounds())
	if !ok {
		return
	}
	x0, y0 := toCell(a)
	x1, y1 := toCell(b)
	switch {
	case width >= model.MarkerThickness:
		s.plot(x0, y0, x1, y1, func(cl *cell) { *cl = cell{r: '•', color: c} })
	case y0 == y1:
		s.hline(x0, x1, y0, c)
	case x0 == x1:
		s.vline(x0, y0, y1, c)
	default:
		s.plot(x0, y0, x1, y1, func(cl *cell) {
			if cl.r == 0 && cl.links == 0 {
				*cl = cell{r: '·', color: c}
			}
		})
	}
}

func (s *cellSurface) hline(x0, x1, y int, c geom.Color) {
	lo, hi := min(x0, x1), max(x0, x1)
	for x := lo; x <= hi; x++ {
		cl := s.at(x, y)
		if cl == nil {
			continue
		}
		links := linkLeft | linkRight
		if x == lo && lo != hi {
			links = linkRight
		} else if x == hi && lo != hi {
			links = linkLeft
		}
		s.link(cl, links, c)
	}
}

func (s *cellSurface) vline(x, y0, y1 int, c geom.Color) {
	lo, hi := min(y0, y1), max(y0, y1)
	for y := lo; y <= hi; y++ {
		cl := s.at(x, y)
		if cl == nil {
			continue
		}
		links := linkUp | linkDown
		if y == lo && lo != hi {
			links = linkDown
		} else if y == hi && lo != hi {
			links = linkUp
		}
		s.link(cl, links, c)
	}
}

func (s *cellSurface) link(cl *cell, links uint8, c geom.Color) {
	if cl.r != 0 {
		cl.r = 0
		cl.links = 0
	}
	cl.links |= links
	cl.color = c
}

// plot walks the cells between two cells with Bresenham's algorithm.
func (s *cellSurface) plot(x0, y0, x1, y1 int, set func(*cell)) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		if cl := s.at(x0, y0); cl != nil {
			set(cl)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// Text writes one cell per rune from the first whole cell at or after at, ignoring
// size: the terminal font is fixed.
func (s *cellSurface) Text(at geom.Point, text string, c geom.Color, size float64) {
	x, y := int(math.Ceil(at.X/cellWidth)), int(math.Ceil(at.Y/cellHeight))
	for i, r := range []rune(text) {
		if r < 32 {
			r = ' '
		}
		if cl := s.at(x+i, y); cl != nil {
			*cl = cell{r: r, color: c}
		}
	}
}

func (s *cellSurface) style(c geom.Color) lipgloss.Style {
	if st, ok := s.styles[c]; ok {
		return st
	}
	st := lipgloss.NewStyle().Foreground(lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)))
	s.styles[c] = st
	return st
}

// Lines renders each row, styling runs of same-colored cells together.
func (s *cellSurface) Lines() []string {
	lines := make([]string, s.height)
	for y := 0; y < s.height; y++ {
		var b strings.Builder
		row := s.cells[y*s.width : (y+1)*s.width]
		for x := 0; x < len(row); {
			end := x
			var run strings.Builder
			for end < len(row) && row[end].color == row[x].color {
				run.WriteRune(row[end].glyph())
				end++
			}
			if row[x].color == (geom.Color{}) {
				b.WriteString(run.String())
			} else {
				b.WriteString(s.style(row[x].color).Render(run.String()))
			}
			x = end
		}
		lines[y] = b.String()
	}
	return lines
}

func (s *cellSurface) String() string {
	return strings.Join(s.Lines(), "\n")
}

// Plain is the grid without styling.
func (s *cellSurface) Plain() []string {
	lines := make([]string, s.height)
	for y := 0; y < s.height; y++ {
		runes := make([]rune, s.width)
		for x := 0; x < s.width; x++ {
			runes[x] = s.cells[y*s.width+x].glyph()
		}
		lines[y] = string(runes)
	}
	return lines
}

// clipSegment trims a segment to r (Liang-Barsky). ok is false when nothing is left.
func clipSegment(a, b geom.Point, r geom.Rect) (geom.Point, geom.Point, bool) {
	// keep the far edges exclusive so they map to the last cell
	maxX := r.Max.X - 0.001
	maxY := r.Max.Y - 0.001
	d := b.Sub(a)
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-d.X, a.X - r.Min.X},
		{d.X, maxX - a.X},
		{-d.Y, a.Y - r.Min.Y},
		{d.Y, maxY - a.Y},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return a, b, false
			}
			t0 = math.Max(t0, t)
		} else {
			if t < t0 {
				return a, b, false
			}
			t1 = math.Min(t1, t)
		}
	}
	return a.Add(d.Scale(t0)), a.Add(d.Scale(t1)), true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
