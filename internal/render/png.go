package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"infinity/internal/geom"
	"infinity/internal/model"
	"infinity/internal/view"
)

var ErrNothingToExport = errors.New("nothing to export")

// ExportPadding surrounds the exported content, in document units.
const ExportPadding = 20.0

// PNGSurface rasterises draw calls with gg.
type PNGSurface struct {
	dc    *gg.Context
	font  *truetype.Font
	faces map[float64]font.Face
}

func NewPNGSurface(width, height int, background color.Color) (*PNGSurface, error) {
	ttf, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	dc := gg.NewContext(width, height)
	dc.SetColor(background)
	dc.Clear()
	return &PNGSurface{dc: dc, font: ttf, faces: make(map[float64]font.Face)}, nil
}

func (p *PNGSurface) Line(a, b geom.Point, c geom.Color, width float64) {
	if width < 1 {
		width = 1
	}
	p.dc.SetColor(c)
	p.dc.SetLineWidth(width)
	p.dc.DrawLine(a.X, a.Y, b.X, b.Y)
	p.dc.Stroke()
}

func (p *PNGSurface) Text(at geom.Point, s string, c geom.Color, size float64) {
	if size < 1 {
		return
	}
	p.dc.SetFontFace(p.face(size))
	p.dc.SetColor(c)
	p.dc.DrawStringAnchored(s, at.X, at.Y, 0, 1)
}

func (p *PNGSurface) face(size float64) font.Face {
	if f, ok := p.faces[size]; ok {
		return f
	}
	f := truetype.NewFace(p.font, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	p.faces[size] = f
	return f
}

func (p *PNGSurface) EncodePNG(w io.Writer) error {
	return p.dc.EncodePNG(w)
}

// ExportPNG renders the whole canvas at the given zoom, framed to its content, on a
// light background.
func ExportPNG(w io.Writer, c *model.Canvas, zoom float64) error {
	bounds, ok := Bounds(c)
	if !ok {
		return ErrNothingToExport
	}
	if zoom <= 0 {
		zoom = 1
	}
	bounds.Min = bounds.Min.Sub(geom.Pt(ExportPadding, ExportPadding))
	bounds.Max = bounds.Max.Add(geom.Pt(ExportPadding, ExportPadding))

	width := int(bounds.Width()*zoom) + 1
	height := int(bounds.Height()*zoom) + 1
	surface, err := NewPNGSurface(width, height, color.White)
	if err != nil {
		return err
	}
	t := view.Transform{Zoom: zoom, Offset: bounds.Min.Scale(-zoom)}
	Draw(surface, Scene{Canvas: c, View: t, Theme: PrintTheme})
	return surface.EncodePNG(w)
}

// PrintTheme suits a white background.
var PrintTheme = Theme{
	NoteBorder:   geom.RGB(0, 0, 0),
	CodeBorder:   geom.RGB(20, 110, 40),
	LockedBorder: geom.RGB(180, 30, 30),
	Text:         geom.RGB(0, 0, 0),
	Muted:        geom.RGB(110, 110, 110),
	Preview:      geom.RGB(200, 60, 150),
	Dangling:     geom.RGB(160, 160, 160),
}
