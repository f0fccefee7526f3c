package render

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinity/internal/geom"
	"infinity/internal/model"
	"infinity/internal/route"
	"infinity/internal/view"
)

type recorder struct {
	lines []line
	texts []text
}

type line struct {
	a, b  geom.Point
	color geom.Color
	width float64
}

type text struct {
	at   geom.Point
	s    string
	size float64
}

func (r *recorder) Line(a, b geom.Point, c geom.Color, width float64) {
	r.lines = append(r.lines, line{a, b, c, width})
}

func (r *recorder) Text(at geom.Point, s string, c geom.Color, size float64) {
	r.texts = append(r.texts, text{at, s, size})
}

func TestDraw_NoteInScreenSpace(t *testing.T) {
	c := model.NewCanvas()
	ref := c.CreateNote(geom.Pt(100, 100))
	c.SetNoteText(ref.ID, "first\nsecond")

	rec := &recorder{}
	Draw(rec, Scene{Canvas: c, View: view.Transform{Zoom: 2}})

	require.Len(t, rec.lines, 4)
	assert.Equal(t, geom.Pt(200, 200), rec.lines[0].a)
	assert.Equal(t, geom.Pt(600, 200), rec.lines[0].b)
	assert.Equal(t, geom.Pt(600, 280), rec.lines[1].b)

	// a 40-unit note fits two rows of text
	require.Len(t, rec.texts, 2)
	assert.Equal(t, "first", rec.texts[0].s)
	assert.Equal(t, geom.Pt(212, 212), rec.texts[0].at)
	assert.Equal(t, FontSize*2, rec.texts[0].size)
}

func TestDraw_ConnectionSegmentsAndHead(t *testing.T) {
	c := model.NewCanvas()
	a := c.CreateNote(geom.Pt(0, 0))
	b := c.CreateNote(geom.Pt(400, 0))
	c.Connect(a, b, geom.SideRight, geom.SideLeft, model.DefaultConnectionColor)

	rec := &recorder{}
	Draw(rec, Scene{Canvas: c, View: view.Identity()})

	// 30 curve segments, 2 barbs, then two boxes
	require.Len(t, rec.lines, geom.CurveSegments+2+8)
	assert.Equal(t, model.DefaultConnectionColor, rec.lines[0].color)
	assert.Equal(t, geom.Pt(200, 20), rec.lines[0].a)
}

func TestDraw_DanglingConnectionDoesNotFail(t *testing.T) {
	c := model.NewCanvas()
	a := c.CreateNote(geom.Pt(0, 0))
	c.Connect(a, model.NodeRef{ID: 99, Kind: model.KindCode}, geom.SideRight, geom.SideLeft, model.DefaultConnectionColor)

	rec := &recorder{}
	Draw(rec, Scene{Canvas: c, View: view.Identity()})
	assert.Equal(t, DefaultTheme.Dangling, rec.lines[0].color)
}

func TestDraw_ClipCullsNodes(t *testing.T) {
	c := model.NewCanvas()
	c.CreateNote(geom.Pt(0, 0))
	c.CreateNote(geom.Pt(5000, 5000))

	rec := &recorder{}
	Draw(rec, Scene{Canvas: c, View: view.Identity(), Clip: geom.Rect{Max: geom.Pt(800, 600)}})
	assert.Len(t, rec.lines, 4)
}

func TestDraw_PreviewStrokeAndHUD(t *testing.T) {
	c := model.NewCanvas()
	a := c.CreateNote(geom.Pt(0, 0))
	preview := route.Preview(c, c.Connections(), route.Anchor{Ref: a, Side: geom.SideBottom}, geom.Pt(50, 300))
	current := &model.Stroke{Points: []geom.Point{{X: 0, Y: 0}, {X: 10, Y: 10}}, Color: model.DefaultMarkerColor, Thickness: 2}

	rec := &recorder{}
	Draw(rec, Scene{Canvas: c, View: view.Identity(), Preview: &preview, Current: current, HUD: true})

	last := rec.lines[len(rec.lines)-1]
	assert.Equal(t, DefaultTheme.Preview, last.color)
	strokeLine := rec.lines[4]
	assert.Equal(t, model.DefaultMarkerColor, strokeLine.color)
	assert.Equal(t, 2.0, strokeLine.width)

	hud := rec.texts[len(rec.texts)-1]
	assert.Equal(t, "Zoom: 1.00 | Offset: (0.0, 0.0)", hud.s)
	assert.Equal(t, geom.Pt(10, 10), hud.at)
}

func TestCodeHeader(t *testing.T) {
	line := 42
	assert.Equal(t, "(no file)", CodeHeader(model.Code{}))
	assert.Equal(t, "a.go:42 [locked]", CodeHeader(model.Code{
		Node:       model.Node{Locked: true},
		FilePath:   "a.go",
		LineOffset: &line,
	}))
}

func TestBounds(t *testing.T) {
	c := model.NewCanvas()
	_, ok := Bounds(c)
	assert.False(t, ok)

	c.CreateNote(geom.Pt(-10, 5))
	c.AddStroke(model.Stroke{Points: []geom.Point{{X: 300, Y: 300}, {X: 310, Y: 290}}})
	r, ok := Bounds(c)
	require.True(t, ok)
	assert.Equal(t, geom.Pt(-10, 5), r.Min)
	assert.Equal(t, geom.Pt(310, 300), r.Max)
}

func TestExportPNG(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, ExportPNG(&buf, model.NewCanvas(), 1), ErrNothingToExport)

	c := model.NewCanvas()
	ref := c.CreateNote(geom.Pt(0, 0))
	c.SetNoteText(ref.ID, "exported")
	require.NoError(t, ExportPNG(&buf, c, 1))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 241, img.Bounds().Dx())
	assert.Equal(t, 81, img.Bounds().Dy())
}
