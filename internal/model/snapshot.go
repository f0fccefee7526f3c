package model

import (
	"infinity/internal/geom"
	"infinity/internal/view"
)

// Snapshot is an independent copy of the whole document. It shares no memory with a Canvas.
type Snapshot struct {
	Notes       []Note
	Codes       []Code
	Connections []Connection
	Strokes     []Stroke
	Zoom        float64
	Offset      geom.Point
	NextID      uint64
}

// EmptySnapshot is the state of a new document.
func EmptySnapshot() Snapshot {
	return Snapshot{
		Notes:       []Note{},
		Codes:       []Code{},
		Connections: []Connection{},
		Strokes:     []Stroke{},
		Zoom:        1,
		NextID:      1,
	}
}

func (s Snapshot) View() view.Transform {
	return view.Transform{Zoom: s.Zoom, Offset: s.Offset}
}

// Clone deep-copies every collection.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Notes = append(make([]Note, 0, len(s.Notes)), s.Notes...)
	out.Codes = make([]Code, len(s.Codes))
	for i, code := range s.Codes {
		out.Codes[i] = code.clone()
	}
	out.Connections = append(make([]Connection, 0, len(s.Connections)), s.Connections...)
	out.Strokes = make([]Stroke, len(s.Strokes))
	for i, stroke := range s.Strokes {
		out.Strokes[i] = stroke.clone()
	}
	return out
}

// Snapshot captures the canvas together with the view.
func (c *Canvas) Snapshot(t view.Transform) Snapshot {
	return Snapshot{
		Notes:       c.notes,
		Codes:       c.codes,
		Connections: c.connections,
		Strokes:     c.strokes,
		Zoom:        t.Zoom,
		Offset:      t.Offset,
		NextID:      c.nextID,
	}.Clone()
}

// Restore replaces the canvas contents with a copy of s and returns its view.
// The id counter never moves backwards.
func (c *Canvas) Restore(s Snapshot) view.Transform {
	s = s.Clone()
	c.notes = s.Notes
	c.codes = s.Codes
	c.connections = s.Connections
	c.strokes = s.Strokes
	for i := range c.notes {
		c.notes[i].Dragging = false
		c.notes[i].Size = c.notes[i].Size.Clamp(MinNodeSize, MaxNodeSize)
	}
	for i := range c.codes {
		c.codes[i].Dragging = false
		c.codes[i].Size = c.codes[i].Size.Clamp(MinNodeSize, MaxNodeSize)
	}
	next := s.NextID
	for _, n := range c.notes {
		if n.ID >= next {
			next = n.ID + 1
		}
	}
	for _, n := range c.codes {
		if n.ID >= next {
			next = n.ID + 1
		}
	}
	if next > c.nextID {
		c.nextID = next
	}
	t := s.View()
	if t.Zoom == 0 {
		t.Zoom = 1
	}
	t.Zoom = geom.Clamp(t.Zoom, view.MinZoom, view.MaxZoom)
	return t
}
