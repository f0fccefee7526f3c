package model

import (
	"fmt"

	"infinity/internal/geom"
)

// Kind distinguishes the two node variants.
type Kind int

const (
	KindNote Kind = iota
	KindCode
)

func (k Kind) String() string {
	switch k {
	case KindNote:
		return "note"
	case KindCode:
		return "code"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func ParseKind(s string) (Kind, error) {
	switch s {
	case "note":
		return KindNote, nil
	case "code":
		return KindCode, nil
	}
	return 0, fmt.Errorf("unknown node kind %q", s)
}

const (
	MinNodeSize = 1.0
	MaxNodeSize = 400.0

	MarkerThickness = 2.0
)

var (
	NoteSize = geom.Sz(200, 40)
	CodeSize = geom.Sz(320, 160)

	DefaultConnectionColor = geom.RGB(120, 170, 255)
	DefaultMarkerColor     = geom.RGB(255, 200, 60)
)

// NodeRef identifies a node across both collections.
type NodeRef struct {
	ID   uint64
	Kind Kind
}

func (r NodeRef) String() string {
	return fmt.Sprintf("%s#%d", r.Kind, r.ID)
}

// Node holds the fields shared by notes and code nodes. Position and size are in document space.
type Node struct {
	ID       uint64
	Pos      geom.Point
	Size     geom.Size
	Locked   bool
	Dragging bool
}

func (n Node) Rect() geom.Rect {
	return geom.RectFrom(n.Pos, n.Size)
}

type Note struct {
	Node
	Text string
}

func (n Note) Ref() NodeRef {
	return NodeRef{ID: n.ID, Kind: KindNote}
}

type Code struct {
	Node
	FilePath string
	Code     string
	// LineOffset is the 1-based line where Code was last found inside FilePath, nil when unresolved.
	LineOffset *int
}

func (c Code) Ref() NodeRef {
	return NodeRef{ID: c.ID, Kind: KindCode}
}

func (c Code) clone() Code {
	if c.LineOffset != nil {
		line := *c.LineOffset
		c.LineOffset = &line
	}
	return c
}

// Connection is a directed arrow between two nodes. It references nodes, it does not own them.
type Connection struct {
	ID        string
	Start     NodeRef
	End       NodeRef
	StartSide geom.Side
	EndSide   geom.Side
	Color     geom.Color
}

// Stroke is freehand ink in drawing order.
type Stroke struct {
	Points    []geom.Point
	Color     geom.Color
	Thickness float64
}

func (s Stroke) clone() Stroke {
	s.Points = append([]geom.Point(nil), s.Points...)
	return s
}

// Bounds is the result of resolving a NodeRef. When Found is false Pos and Size are
// the zero-size placeholder at the document origin.
type Bounds struct {
	Pos   geom.Point
	Size  geom.Size
	Found bool
}

// Direction moves a node one step in z order.
type Direction int

const (
	Backward Direction = -1
	Forward  Direction = 1
)
