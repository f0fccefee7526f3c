// Package ink captures freehand marker strokes and erases them by proximity.
package ink

import (
	"infinity/internal/geom"
	"infinity/internal/model"
)

// EraserRadius is the eraser size in screen units; divide by zoom for document units.
const EraserRadius = 10.0

// Tool is the active ink tool.
type Tool int

const (
	ToolNone Tool = iota
	ToolMarker
	ToolEraser
)

func (t Tool) String() string {
	switch t {
	case ToolMarker:
		return "marker"
	case ToolEraser:
		return "eraser"
	}
	return "none"
}

// Gesture tracks one press-to-release interaction of a tool.
type Gesture int

const (
	GestureIdle Gesture = iota
	GestureInProgress
	GestureCommitted
)

// Engine holds the active tool and the stroke being drawn.
type Engine struct {
	tool    Tool
	gesture Gesture
	color   geom.Color
	current *model.Stroke
	erased  bool
}

func NewEngine(markerColor geom.Color) *Engine {
	return &Engine{color: markerColor}
}

func (e *Engine) Tool() Tool       { return e.tool }
func (e *Engine) Gesture() Gesture { return e.gesture }

// SetTool switches tools. Marker and eraser exclude each other; switching drops any
// unfinished gesture.
func (e *Engine) SetTool(t Tool) {
	if e.tool == t {
		return
	}
	e.tool = t
	e.Cancel()
}

// Toggle activates t, or deactivates it when already active.
func (e *Engine) Toggle(t Tool) {
	if e.tool == t {
		e.SetTool(ToolNone)
		return
	}
	e.SetTool(t)
}

// Current is the stroke being drawn, nil when there is none.
func (e *Engine) Current() *model.Stroke {
	return e.current
}

// Draw appends a document-space point to the stroke in progress, starting one if needed.
func (e *Engine) Draw(p geom.Point) {
	if e.tool != ToolMarker {
		return
	}
	if e.current == nil {
		e.current = &model.Stroke{Color: e.color, Thickness: model.MarkerThickness}
	}
	e.current.Points = append(e.current.Points, p)
	e.gesture = GestureInProgress
}

// Erase removes points of strokes within radius of center for the current gesture
// and returns the surviving strokes.
func (e *Engine) Erase(strokes []model.Stroke, center geom.Point, radius float64) []model.Stroke {
	if e.tool != ToolEraser {
		return strokes
	}
	out, changed := EraseAt(strokes, center, radius)
	e.gesture = GestureInProgress
	if changed {
		e.erased = true
	}
	return out
}

// Release ends the gesture. It returns the finished stroke for marker gestures and
// whether the gesture should be recorded in history. A release with no gesture in
// progress reports nothing, so repeated releases never record twice.
func (e *Engine) Release() (*model.Stroke, bool) {
	if e.gesture != GestureInProgress {
		return nil, false
	}
	e.gesture = GestureCommitted
	switch e.tool {
	case ToolMarker:
		s := e.current
		e.current = nil
		return s, s != nil && len(s.Points) >= 2
	case ToolEraser:
		erased := e.erased
		e.erased = false
		return nil, erased
	}
	return nil, false
}

// Cancel drops the gesture in progress without committing it.
func (e *Engine) Cancel() {
	e.current = nil
	e.erased = false
	e.gesture = GestureIdle
}

// EraseAt removes every point within radius of center. Strokes left with fewer than
// two points are dropped. Untouched strokes are returned as they were.
func EraseAt(strokes []model.Stroke, center geom.Point, radius float64) ([]model.Stroke, bool) {
	changed := false
	out := make([]model.Stroke, 0, len(strokes))
	for _, s := range strokes {
		if !touches(s, center, radius) {
			out = append(out, s)
			continue
		}
		changed = true
		kept := make([]geom.Point, 0, len(s.Points))
		for _, p := range s.Points {
			if p.Dist(center) > radius {
				kept = append(kept, p)
			}
		}
		if len(kept) < 2 {
			continue
		}
		s.Points = kept
		out = append(out, s)
	}
	if !changed {
		return strokes, false
	}
	return out, true
}

func touches(s model.Stroke, center geom.Point, radius float64) bool {
	for _, p := range s.Points {
		if p.Dist(center) <= radius {
			return true
		}
	}
	return false
}
