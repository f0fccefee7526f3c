// Package model holds the workspace entities and the store that owns them.
package model

import (
	"github.com/google/uuid"

	"infinity/internal/geom"
)

// Canvas owns the live notes, code nodes, connections and strokes.
// Slice order is z order: later entries draw on top.
type Canvas struct {
	notes       []Note
	codes       []Code
	connections []Connection
	strokes     []Stroke
	nextID      uint64
}

func NewCanvas() *Canvas {
	return &Canvas{
		notes:       make([]Note, 0),
		codes:       make([]Code, 0),
		connections: make([]Connection, 0),
		strokes:     make([]Stroke, 0),
		nextID:      1,
	}
}

// The accessors below return the live slices; callers must not retain or modify them.

func (c *Canvas) Notes() []Note             { return c.notes }
func (c *Canvas) Codes() []Code             { return c.codes }
func (c *Canvas) Connections() []Connection { return c.connections }
func (c *Canvas) Strokes() []Stroke         { return c.strokes }

// Len returns the number of nodes of a kind.
func (c *Canvas) Len(kind Kind) int {
	if kind == KindCode {
		return len(c.codes)
	}
	return len(c.notes)
}

// issueID hands out ids from one counter shared by both kinds.
func (c *Canvas) issueID() uint64 {
	id := c.nextID
	c.nextID++
	return id
}

func (c *Canvas) CreateNote(at geom.Point) NodeRef {
	note := Note{Node: Node{ID: c.issueID(), Pos: at, Size: NoteSize}}
	c.notes = append(c.notes, note)
	return note.Ref()
}

func (c *Canvas) CreateCode(at geom.Point) NodeRef {
	code := Code{Node: Node{ID: c.issueID(), Pos: at, Size: CodeSize}}
	c.codes = append(c.codes, code)
	return code.Ref()
}

// Delete removes the node at index. Connections that reference it are kept.
func (c *Canvas) Delete(kind Kind, index int) bool {
	switch kind {
	case KindNote:
		if index < 0 || index >= len(c.notes) {
			return false
		}
		c.notes = append(c.notes[:index], c.notes[index+1:]...)
	case KindCode:
		if index < 0 || index >= len(c.codes) {
			return false
		}
		c.codes = append(c.codes[:index], c.codes[index+1:]...)
	default:
		return false
	}
	return true
}

// Reorder swaps the node at index with its neighbour in dir. Out of range moves are no-ops.
func (c *Canvas) Reorder(kind Kind, index int, dir Direction) bool {
	target := index + int(dir)
	n := c.Len(kind)
	if index < 0 || index >= n || target < 0 || target >= n {
		return false
	}
	if kind == KindCode {
		c.codes[index], c.codes[target] = c.codes[target], c.codes[index]
	} else {
		c.notes[index], c.notes[target] = c.notes[target], c.notes[index]
	}
	return true
}

// Index returns the z position of a node in its collection.
func (c *Canvas) Index(ref NodeRef) (int, bool) {
	switch ref.Kind {
	case KindNote:
		for i := range c.notes {
			if c.notes[i].ID == ref.ID {
				return i, true
			}
		}
	case KindCode:
		for i := range c.codes {
			if c.codes[i].ID == ref.ID {
				return i, true
			}
		}
	}
	return -1, false
}

// Find returns a copy of the shared node fields.
func (c *Canvas) Find(ref NodeRef) (Node, bool) {
	n := c.node(ref)
	if n == nil {
		return Node{}, false
	}
	return *n, true
}

func (c *Canvas) Note(id uint64) (Note, bool) {
	if i, ok := c.Index(NodeRef{ID: id, Kind: KindNote}); ok {
		return c.notes[i], true
	}
	return Note{}, false
}

func (c *Canvas) Code(id uint64) (Code, bool) {
	if i, ok := c.Index(NodeRef{ID: id, Kind: KindCode}); ok {
		return c.codes[i].clone(), true
	}
	return Code{}, false
}

// Bounds resolves a reference, falling back to a fresh zero-size placeholder at the origin.
func (c *Canvas) Bounds(ref NodeRef) Bounds {
	n := c.node(ref)
	if n == nil {
		return Bounds{}
	}
	return Bounds{Pos: n.Pos, Size: n.Size, Found: true}
}

func (c *Canvas) node(ref NodeRef) *Node {
	i, ok := c.Index(ref)
	if !ok {
		return nil
	}
	if ref.Kind == KindCode {
		return &c.codes[i].Node
	}
	return &c.notes[i].Node
}

// HitTest returns the topmost node containing p (document space). Code nodes draw
// above notes, so they are tested first.
func (c *Canvas) HitTest(p geom.Point) (NodeRef, bool) {
	for i := len(c.codes) - 1; i >= 0; i-- {
		if c.codes[i].Rect().Contains(p) {
			return c.codes[i].Ref(), true
		}
	}
	for i := len(c.notes) - 1; i >= 0; i-- {
		if c.notes[i].Rect().Contains(p) {
			return c.notes[i].Ref(), true
		}
	}
	return NodeRef{}, false
}

func (c *Canvas) MoveBy(ref NodeRef, delta geom.Point) bool {
	n := c.node(ref)
	if n == nil {
		return false
	}
	n.Pos = n.Pos.Add(delta)
	return true
}

func (c *Canvas) SetPosition(ref NodeRef, pos geom.Point) bool {
	n := c.node(ref)
	if n == nil {
		return false
	}
	n.Pos = pos
	return true
}

// Resize sets a node's size clamped to [MinNodeSize, MaxNodeSize] per axis.
func (c *Canvas) Resize(ref NodeRef, size geom.Size) bool {
	n := c.node(ref)
	if n == nil {
		return false
	}
	n.Size = size.Clamp(MinNodeSize, MaxNodeSize)
	return true
}

func (c *Canvas) SetDragging(ref NodeRef, dragging bool) bool {
	n := c.node(ref)
	if n == nil {
		return false
	}
	n.Dragging = dragging
	return true
}

// SetLocked toggles read-only state. Unlocking a code node clears its line offset.
func (c *Canvas) SetLocked(ref NodeRef, locked bool) bool {
	n := c.node(ref)
	if n == nil {
		return false
	}
	n.Locked = locked
	if !locked && ref.Kind == KindCode {
		i, _ := c.Index(ref)
		c.codes[i].LineOffset = nil
	}
	return true
}

// SetNoteText replaces the text of an unlocked note.
func (c *Canvas) SetNoteText(id uint64, text string) bool {
	i, ok := c.Index(NodeRef{ID: id, Kind: KindNote})
	if !ok || c.notes[i].Locked {
		return false
	}
	c.notes[i].Text = text
	return true
}

// SetCode replaces the path and snippet of an unlocked code node.
func (c *Canvas) SetCode(id uint64, filePath, code string) bool {
	i, ok := c.Index(NodeRef{ID: id, Kind: KindCode})
	if !ok || c.codes[i].Locked {
		return false
	}
	c.codes[i].FilePath = filePath
	c.codes[i].Code = code
	return true
}

func (c *Canvas) SetLineOffset(id uint64, line *int) bool {
	i, ok := c.Index(NodeRef{ID: id, Kind: KindCode})
	if !ok {
		return false
	}
	if line != nil {
		v := *line
		line = &v
	}
	c.codes[i].LineOffset = line
	return true
}

// Connect appends a connection with a fresh id. Both ends may name the same node.
func (c *Canvas) Connect(start, end NodeRef, startSide, endSide geom.Side, color geom.Color) Connection {
	conn := Connection{
		ID:        uuid.NewString(),
		Start:     start,
		End:       end,
		StartSide: startSide,
		EndSide:   endSide,
		Color:     color,
	}
	c.connections = append(c.connections, conn)
	return conn
}

func (c *Canvas) DeleteConnection(id string) bool {
	for i := range c.connections {
		if c.connections[i].ID == id {
			c.connections = append(c.connections[:i], c.connections[i+1:]...)
			return true
		}
	}
	return false
}

// AddStroke commits a stroke. Strokes with fewer than two points are dropped.
func (c *Canvas) AddStroke(s Stroke) bool {
	if len(s.Points) < 2 {
		return false
	}
	c.strokes = append(c.strokes, s.clone())
	return true
}

// ReplaceStrokes swaps in a new stroke collection, as produced by the eraser.
func (c *Canvas) ReplaceStrokes(strokes []Stroke) {
	c.strokes = strokes
}

// Reset empties the canvas. Ids keep counting so they are never reused in a session.
func (c *Canvas) Reset() {
	c.notes = c.notes[:0]
	c.codes = c.codes[:0]
	c.connections = c.connections[:0]
	c.strokes = c.strokes[:0]
}
