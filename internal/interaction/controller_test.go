package interaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinity/internal/geom"
	"infinity/internal/ink"
	"infinity/internal/model"
	"infinity/internal/view"
)

type fixture struct {
	canvas   *model.Canvas
	view     *view.Transform
	ctrl     *Controller
	recorded int
}

func newFixture(zoom float64) *fixture {
	f := &fixture{canvas: model.NewCanvas(), view: &view.Transform{Zoom: zoom}}
	f.ctrl = NewController(f.canvas, f.view, ink.NewEngine(model.DefaultMarkerColor), func() { f.recorded++ }, model.DefaultConnectionColor)
	return f
}

func press(p geom.Point) Input   { return Input{Pointer: p, Down: true, Pressed: true} }
func hold(p geom.Point) Input    { return Input{Pointer: p, Down: true} }
func release(p geom.Point) Input { return Input{Pointer: p, Released: true} }

func (f *fixture) gesture(points ...geom.Point) {
	f.ctrl.Process(press(points[0]))
	for _, p := range points[1:] {
		f.ctrl.Process(hold(p))
	}
	f.ctrl.Process(release(points[len(points)-1]))
}

func TestController_NodeDragScaledByZoom(t *testing.T) {
	f := newFixture(2)
	ref := f.canvas.CreateNote(geom.Pt(100, 100))

	f.gesture(geom.Pt(210, 210), geom.Pt(220, 210), geom.Pt(230, 210))

	n, _ := f.canvas.Find(ref)
	assert.Equal(t, geom.Pt(110, 100), n.Pos)
	assert.False(t, n.Dragging)
	assert.Equal(t, 1, f.recorded, "a drag records once, at the end")
	assert.Equal(t, geom.Point{}, f.view.Offset)
}

func TestController_ClickWithoutMoveRecordsNothing(t *testing.T) {
	f := newFixture(1)
	f.canvas.CreateNote(geom.Pt(0, 0))
	f.gesture(geom.Pt(5, 5))
	assert.Zero(t, f.recorded)
}

func TestController_DragMarksNodeWhileHeld(t *testing.T) {
	f := newFixture(1)
	ref := f.canvas.CreateNote(geom.Pt(0, 0))
	f.ctrl.Process(press(geom.Pt(5, 5)))

	n, _ := f.canvas.Find(ref)
	assert.True(t, n.Dragging)
	got, ok := f.ctrl.Dragging()
	require.True(t, ok)
	assert.Equal(t, ref, got)
}

func TestController_PanOnEmptyCanvas(t *testing.T) {
	f := newFixture(1)
	f.gesture(geom.Pt(500, 500), geom.Pt(510, 505), geom.Pt(530, 490))
	assert.Equal(t, geom.Pt(30, -10), f.view.Offset)
	assert.Zero(t, f.recorded)
}

func TestController_PanSuppressedInOtherModes(t *testing.T) {
	for _, mode := range []Mode{ModeMarker, ModeEraser, ModeConnecting} {
		t.Run(mode.String(), func(t *testing.T) {
			f := newFixture(1)
			ref := f.canvas.CreateNote(geom.Pt(0, 0))
			f.ctrl.SetMode(mode)
			f.gesture(geom.Pt(10, 10), geom.Pt(50, 50))
			f.gesture(geom.Pt(500, 500), geom.Pt(550, 550))

			assert.Equal(t, geom.Point{}, f.view.Offset)
			n, _ := f.canvas.Find(ref)
			assert.Equal(t, geom.Pt(0, 0), n.Pos)
		})
	}
}

func TestController_ScrollZoomClamped(t *testing.T) {
	f := newFixture(1)
	for i := 0; i < 100; i++ {
		f.ctrl.Process(Input{ScrollY: 1000})
	}
	assert.Equal(t, view.MaxZoom, f.view.Zoom)
	for i := 0; i < 100; i++ {
		f.ctrl.Process(Input{ScrollY: -900})
	}
	assert.Equal(t, view.MinZoom, f.view.Zoom)
}

func TestController_MarkerStroke(t *testing.T) {
	f := newFixture(2)
	f.view.Offset = geom.Pt(10, 10)
	f.ctrl.Toggle(ModeMarker)

	f.gesture(geom.Pt(10, 10), geom.Pt(30, 10), geom.Pt(30, 50))
	f.ctrl.Process(release(geom.Pt(30, 50)))

	require.Len(t, f.canvas.Strokes(), 1)
	s := f.canvas.Strokes()[0]
	assert.Equal(t, geom.Pt(0, 0), s.Points[0])
	assert.Equal(t, geom.Pt(10, 20), s.Points[len(s.Points)-1])
	assert.Equal(t, model.MarkerThickness, s.Thickness)
	assert.Equal(t, 1, f.recorded)
}

func TestController_EraserUsesScreenRadius(t *testing.T) {
	f := newFixture(2)
	f.canvas.AddStroke(model.Stroke{Points: []geom.Point{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 100, Y: 0}, {X: 104, Y: 0}}})
	f.ctrl.SetMode(ModeEraser)

	// screen (0,0) is document (0,0); radius 10 screen units is 5 document units
	f.gesture(geom.Pt(0, 0))
	require.Len(t, f.canvas.Strokes(), 1)
	assert.Equal(t, []geom.Point{{X: 100, Y: 0}, {X: 104, Y: 0}}, f.canvas.Strokes()[0].Points)
	assert.Equal(t, 1, f.recorded)

	f.gesture(geom.Pt(400, 400))
	assert.Equal(t, 1, f.recorded)
	assert.Len(t, f.canvas.Strokes()[0].Points, 2)
}

func TestController_ConnectGesture(t *testing.T) {
	f := newFixture(1)
	a := f.canvas.CreateNote(geom.Pt(0, 0))
	b := f.canvas.CreateNote(geom.Pt(400, 0))
	f.ctrl.SetMode(ModeConnecting)

	f.gesture(geom.Pt(195, 20))
	pending, ok := f.ctrl.Pending()
	require.True(t, ok)
	assert.Equal(t, a, pending.Ref)
	assert.Equal(t, geom.SideRight, pending.Side)

	f.ctrl.Process(hold(geom.Pt(300, 20)))
	preview, ok := f.ctrl.Preview()
	require.True(t, ok)
	assert.Equal(t, geom.Pt(300, 20), preview.End)
	assert.Empty(t, f.canvas.Connections(), "the preview is not persisted")

	f.gesture(geom.Pt(405, 20))
	require.Len(t, f.canvas.Connections(), 1)
	conn := f.canvas.Connections()[0]
	assert.Equal(t, a, conn.Start)
	assert.Equal(t, b, conn.End)
	assert.Equal(t, geom.SideLeft, conn.EndSide)
	assert.Equal(t, 1, f.recorded)
	_, ok = f.ctrl.Pending()
	assert.False(t, ok)
}

func TestController_ConnectSelfLoop(t *testing.T) {
	f := newFixture(1)
	a := f.canvas.CreateNote(geom.Pt(0, 0))
	f.ctrl.SetMode(ModeConnecting)

	f.gesture(geom.Pt(100, 2))
	f.gesture(geom.Pt(100, 38))
	require.Len(t, f.canvas.Connections(), 1)
	conn := f.canvas.Connections()[0]
	assert.Equal(t, a, conn.Start)
	assert.Equal(t, a, conn.End)
	assert.Equal(t, geom.SideTop, conn.StartSide)
	assert.Equal(t, geom.SideBottom, conn.EndSide)
}

func TestController_ConnectIgnoresEmptyClicks(t *testing.T) {
	f := newFixture(1)
	f.canvas.CreateNote(geom.Pt(0, 0))
	f.ctrl.SetMode(ModeConnecting)
	f.gesture(geom.Pt(900, 900))
	_, ok := f.ctrl.Pending()
	assert.False(t, ok)

	f.gesture(geom.Pt(10, 10))
	f.ctrl.CancelConnection()
	_, ok = f.ctrl.Pending()
	assert.False(t, ok)
}

func TestController_ModesExclusive(t *testing.T) {
	f := newFixture(1)
	f.canvas.CreateNote(geom.Pt(0, 0))

	f.ctrl.Toggle(ModeConnecting)
	f.gesture(geom.Pt(10, 10))
	f.ctrl.Toggle(ModeMarker)
	assert.Equal(t, ModeMarker, f.ctrl.Mode())
	_, ok := f.ctrl.Pending()
	assert.False(t, ok, "leaving connect mode drops the pending start")

	f.ctrl.Toggle(ModeEraser)
	assert.Equal(t, ModeEraser, f.ctrl.Mode())
	assert.Equal(t, ink.ToolEraser, f.ctrl.ink.Tool())

	f.ctrl.Toggle(ModeEraser)
	assert.Equal(t, ModeIdle, f.ctrl.Mode())
	assert.Equal(t, ink.ToolNone, f.ctrl.ink.Tool())
}

func TestController_ModeSwitchEndsDrag(t *testing.T) {
	f := newFixture(1)
	ref := f.canvas.CreateNote(geom.Pt(0, 0))
	f.ctrl.Process(press(geom.Pt(5, 5)))
	f.ctrl.Process(hold(geom.Pt(25, 5)))
	f.ctrl.SetMode(ModeMarker)

	n, _ := f.canvas.Find(ref)
	assert.False(t, n.Dragging)
	assert.Equal(t, 1, f.recorded)
}

func TestController_ModeResetDropsHeldStroke(t *testing.T) {
	f := newFixture(1)
	f.ctrl.SetMode(ModeMarker)
	f.ctrl.Process(press(geom.Pt(0, 0)))
	f.ctrl.Process(hold(geom.Pt(50, 50)))
	require.NotNil(t, f.ctrl.ink.Current())

	f.ctrl.SetMode(ModeMarker)
	assert.Nil(t, f.ctrl.ink.Current())
	assert.Equal(t, ink.GestureIdle, f.ctrl.ink.Gesture())

	f.ctrl.Process(hold(geom.Pt(80, 80)))
	assert.Nil(t, f.ctrl.ink.Current(), "a held button does not start a new stroke")
	f.ctrl.Process(release(geom.Pt(80, 80)))

	assert.Empty(t, f.canvas.Strokes())
	assert.Zero(t, f.recorded)

	f.gesture(geom.Pt(0, 0), geom.Pt(10, 0))
	assert.Len(t, f.canvas.Strokes(), 1, "the next press draws again")
	assert.Equal(t, 1, f.recorded)
}

func TestController_ModeResetCommitsHeldErase(t *testing.T) {
	f := newFixture(1)
	f.canvas.AddStroke(model.Stroke{Points: []geom.Point{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 100, Y: 0}, {X: 104, Y: 0}}})
	f.canvas.AddStroke(model.Stroke{Points: []geom.Point{{X: 300, Y: 300}, {X: 304, Y: 300}}})
	f.ctrl.SetMode(ModeEraser)
	f.ctrl.Process(press(geom.Pt(0, 0)))

	f.ctrl.SetMode(ModeEraser)
	assert.Equal(t, 1, f.recorded, "the erase so far is committed once")

	f.ctrl.Process(hold(geom.Pt(300, 300)))
	f.ctrl.Process(release(geom.Pt(300, 300)))
	assert.Len(t, f.canvas.Strokes(), 2, "a held button does not keep erasing")
	assert.Equal(t, 1, f.recorded)
}
