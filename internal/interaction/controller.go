// Package interaction turns per-frame pointer input into exactly one active gesture.
package interaction

import (
	"infinity/internal/geom"
	"infinity/internal/ink"
	"infinity/internal/model"
	"infinity/internal/route"
	"infinity/internal/view"
)

// Input is one frame of normalized host input. Positions are in screen space.
type Input struct {
	Pointer geom.Point
	// Down reports the primary button held during this frame.
	Down bool
	// Pressed and Released are the edges of Down within this frame.
	Pressed  bool
	Released bool
	ScrollY  float64
	Clip     geom.Rect
}

// Mode is the global tool. Node dragging and panning happen only in ModeIdle.
type Mode int

const (
	ModeIdle Mode = iota
	ModeMarker
	ModeEraser
	ModeConnecting
)

func (m Mode) String() string {
	switch m {
	case ModeMarker:
		return "MARKER"
	case ModeEraser:
		return "ERASER"
	case ModeConnecting:
		return "CONNECT"
	}
	return "NORMAL"
}

// Recorder commits one history entry for a finished gesture.
type Recorder func()

type panGesture struct {
	active bool
	anchor geom.Point
}

type dragGesture struct {
	active bool
	ref    model.NodeRef
	anchor geom.Point
	moved  bool
}

// Controller owns the gesture state machines. It mutates the canvas and transform it
// was built with and never records mid-gesture.
type Controller struct {
	canvas       *model.Canvas
	view         *view.Transform
	ink          *ink.Engine
	record       Recorder
	connectColor geom.Color

	mode    Mode
	pan     panGesture
	drag    dragGesture
	pending *route.Anchor
	// inkHeld is set by a press in marker or eraser mode and cleared by release or
	// any mode change, so a held button never resumes a cancelled gesture.
	inkHeld bool
	pointer geom.Point
	clip    geom.Rect
}

func NewController(canvas *model.Canvas, t *view.Transform, inkEngine *ink.Engine, record Recorder, connectColor geom.Color) *Controller {
	if record == nil {
		record = func() {}
	}
	return &Controller{
		canvas:       canvas,
		view:         t,
		ink:          inkEngine,
		record:       record,
		connectColor: connectColor,
	}
}

func (c *Controller) Mode() Mode { return c.mode }

// SetMode activates m and clears every other mode. Unfinished gestures end first:
// a moved drag or an erase is committed, a marker stroke is dropped.
func (c *Controller) SetMode(m Mode) {
	c.finishDrag()
	c.pan.active = false
	c.pending = nil
	c.inkHeld = false
	if c.ink.Tool() == ink.ToolEraser {
		if _, ok := c.ink.Release(); ok {
			c.record()
		}
	}
	c.ink.Cancel()
	c.mode = m
	switch m {
	case ModeMarker:
		c.ink.SetTool(ink.ToolMarker)
	case ModeEraser:
		c.ink.SetTool(ink.ToolEraser)
	default:
		c.ink.SetTool(ink.ToolNone)
	}
}

// Toggle switches m on, or back to idle when it is already on.
func (c *Controller) Toggle(m Mode) {
	if c.mode == m {
		c.SetMode(ModeIdle)
		return
	}
	c.SetMode(m)
}

// Pending is the chosen start of a connection in progress.
func (c *Controller) Pending() (route.Anchor, bool) {
	if c.pending == nil {
		return route.Anchor{}, false
	}
	return *c.pending, true
}

// CancelConnection drops a pending start without leaving connect mode.
func (c *Controller) CancelConnection() {
	c.pending = nil
}

// Pointer is the last pointer position in document space.
func (c *Controller) Pointer() geom.Point { return c.pointer }

// Clip is the last visible viewport in screen space.
func (c *Controller) Clip() geom.Rect { return c.clip }

// Dragging reports the node being dragged, if any.
func (c *Controller) Dragging() (model.NodeRef, bool) {
	return c.drag.ref, c.drag.active
}

// Preview routes the connection in progress to the pointer.
func (c *Controller) Preview() (route.Route, bool) {
	if c.pending == nil {
		return route.Route{}, false
	}
	return route.Preview(c.canvas, c.canvas.Connections(), *c.pending, c.pointer), true
}

// Process handles one frame of input.
func (c *Controller) Process(in Input) {
	c.clip = in.Clip
	if in.ScrollY != 0 {
		c.view.Scroll(in.ScrollY)
	}
	c.pointer = c.view.ToDocument(in.Pointer)
	switch c.mode {
	case ModeMarker:
		c.processMarker(in)
	case ModeEraser:
		c.processEraser(in)
	case ModeConnecting:
		c.processConnect(in)
	default:
		c.processIdle(in)
	}
}

func (c *Controller) processMarker(in Input) {
	if in.Pressed {
		c.inkHeld = true
	}
	if in.Down && c.inkHeld {
		c.ink.Draw(c.pointer)
	}
	if in.Released || !in.Down {
		c.inkHeld = false
		if s, ok := c.ink.Release(); ok && c.canvas.AddStroke(*s) {
			c.record()
		}
	}
}

func (c *Controller) processEraser(in Input) {
	if in.Pressed {
		c.inkHeld = true
	}
	if in.Down && c.inkHeld {
		radius := c.view.DocumentDelta(geom.Point{X: ink.EraserRadius}).X
		c.canvas.ReplaceStrokes(c.ink.Erase(c.canvas.Strokes(), c.pointer, radius))
	}
	if in.Released || !in.Down {
		c.inkHeld = false
		if _, ok := c.ink.Release(); ok {
			c.record()
		}
	}
}

func (c *Controller) processConnect(in Input) {
	if !in.Pressed {
		return
	}
	ref, ok := c.canvas.HitTest(c.pointer)
	if !ok {
		return
	}
	n, _ := c.canvas.Find(ref)
	side := geom.ClosestSide(n.Pos, n.Size, c.pointer)
	if c.pending == nil {
		c.pending = &route.Anchor{Ref: ref, Side: side}
		return
	}
	start := *c.pending
	c.pending = nil
	c.canvas.Connect(start.Ref, ref, start.Side, side, c.connectColor)
	c.record()
}

func (c *Controller) processIdle(in Input) {
	if in.Pressed {
		if ref, ok := c.canvas.HitTest(c.pointer); ok {
			c.drag = dragGesture{active: true, ref: ref, anchor: in.Pointer}
			c.canvas.SetDragging(ref, true)
		} else {
			c.pan = panGesture{active: true, anchor: in.Pointer}
		}
	}
	if in.Down {
		switch {
		case c.drag.active:
			delta := in.Pointer.Sub(c.drag.anchor)
			if delta != (geom.Point{}) {
				c.canvas.MoveBy(c.drag.ref, c.view.DocumentDelta(delta))
				c.drag.moved = true
			}
			c.drag.anchor = in.Pointer
		case c.pan.active:
			c.view.Pan(in.Pointer.Sub(c.pan.anchor))
			c.pan.anchor = in.Pointer
		}
	}
	if in.Released || !in.Down {
		c.finishDrag()
		c.pan.active = false
	}
}

// finishDrag ends a node drag and records it when the node actually moved.
func (c *Controller) finishDrag() {
	if !c.drag.active {
		return
	}
	c.canvas.SetDragging(c.drag.ref, false)
	moved := c.drag.moved
	c.drag = dragGesture{}
	if moved {
		c.record()
	}
}
