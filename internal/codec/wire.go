package codec

import (
	"encoding/json"
	"fmt"

	"infinity/internal/geom"
	"infinity/internal/model"
	"infinity/internal/view"
)

// Geometry is written as bare tuples so the format does not follow field renames.
type (
	vec2 [2]float64
	rgba [4]uint8
)

func toVec(p geom.Point) vec2 { return vec2{p.X, p.Y} }
func (v vec2) point() geom.Point { return geom.Point{X: v[0], Y: v[1]} }
func sizeVec(s geom.Size) vec2 { return vec2{s.W, s.H} }
// size clamps decoded sizes to the range resizing allows.
func (v vec2) size() geom.Size {
	return geom.Size{W: v[0], H: v[1]}.Clamp(model.MinNodeSize, model.MaxNodeSize)
}
func toRGBA(c geom.Color) rgba { return rgba{c.R, c.G, c.B, c.A} }
func (c rgba) color() geom.Color { return geom.Color{R: c[0], G: c[1], B: c[2], A: c[3]} }

// nodeRef encodes as [id, "kind"].
type nodeRef model.NodeRef

func (r nodeRef) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{r.ID, r.Kind.String()})
}

func (r *nodeRef) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	if len(parts) != 2 {
		return fmt.Errorf("node reference needs 2 elements, got %d", len(parts))
	}
	var kind string
	if err := json.Unmarshal(parts[0], &r.ID); err != nil {
		return fmt.Errorf("node reference id: %w", err)
	}
	if err := json.Unmarshal(parts[1], &kind); err != nil {
		return fmt.Errorf("node reference kind: %w", err)
	}
	k, err := model.ParseKind(kind)
	if err != nil {
		return err
	}
	r.Kind = k
	return nil
}

type side geom.Side

func (s side) MarshalJSON() ([]byte, error) {
	return json.Marshal(geom.Side(s).String())
}

func (s *side) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	v, err := geom.ParseSide(name)
	if err != nil {
		return err
	}
	*s = side(v)
	return nil
}

type noteDoc struct {
	ID     uint64 `json:"id"`
	Pos    vec2   `json:"pos"`
	Size   vec2   `json:"size"`
	Locked bool   `json:"locked"`
	Text   string `json:"text"`
}

type codeDoc struct {
	ID         uint64 `json:"id"`
	Pos        vec2   `json:"pos"`
	Size       vec2   `json:"size"`
	Locked     bool   `json:"locked"`
	FilePath   string `json:"file_path"`
	Code       string `json:"code"`
	LineOffset *int   `json:"line_offset"`
}

type connectionDoc struct {
	ID        string  `json:"id"`
	Start     nodeRef `json:"start"`
	End       nodeRef `json:"end"`
	StartSide side    `json:"start_side"`
	EndSide   side    `json:"end_side"`
	Color     rgba    `json:"color"`
}

type strokeDoc struct {
	Points    []vec2  `json:"points"`
	Color     rgba    `json:"color"`
	Thickness float64 `json:"thickness"`
}

type snapshotDoc struct {
	Notes       []noteDoc       `json:"notes"`
	Codes       []codeDoc       `json:"codes"`
	Connections []connectionDoc `json:"connections"`
	Strokes     []strokeDoc     `json:"strokes"`
	Zoom        float64         `json:"zoom"`
	Offset      vec2            `json:"offset"`
	NextID      uint64          `json:"next_id"`
}

type historyDoc struct {
	Format    string        `json:"format"`
	Version   int           `json:"version"`
	UndoStack []snapshotDoc `json:"undo_stack"`
	RedoStack []snapshotDoc `json:"redo_stack"`
	Current   snapshotDoc   `json:"current"`
}

func fromSnapshot(s model.Snapshot) snapshotDoc {
	doc := snapshotDoc{
		Notes:       make([]noteDoc, 0, len(s.Notes)),
		Codes:       make([]codeDoc, 0, len(s.Codes)),
		Connections: make([]connectionDoc, 0, len(s.Connections)),
		Strokes:     make([]strokeDoc, 0, len(s.Strokes)),
		Zoom:        s.Zoom,
		Offset:      toVec(s.Offset),
		NextID:      s.NextID,
	}
	for _, n := range s.Notes {
		doc.Notes = append(doc.Notes, noteDoc{
			ID: n.ID, Pos: toVec(n.Pos), Size: sizeVec(n.Size), Locked: n.Locked, Text: n.Text,
		})
	}
	for _, c := range s.Codes {
		doc.Codes = append(doc.Codes, codeDoc{
			ID: c.ID, Pos: toVec(c.Pos), Size: sizeVec(c.Size), Locked: c.Locked,
			FilePath: c.FilePath, Code: c.Code, LineOffset: c.LineOffset,
		})
	}
	for _, c := range s.Connections {
		doc.Connections = append(doc.Connections, connectionDoc{
			ID:        c.ID,
			Start:     nodeRef(c.Start),
			End:       nodeRef(c.End),
			StartSide: side(c.StartSide),
			EndSide:   side(c.EndSide),
			Color:     toRGBA(c.Color),
		})
	}
	for _, st := range s.Strokes {
		points := make([]vec2, len(st.Points))
		for i, p := range st.Points {
			points[i] = toVec(p)
		}
		doc.Strokes = append(doc.Strokes, strokeDoc{Points: points, Color: toRGBA(st.Color), Thickness: st.Thickness})
	}
	return doc
}

// zoom clamps a stored zoom into the view range. Zero means unset and is kept.
func (doc snapshotDoc) zoom() float64 {
	if doc.Zoom == 0 {
		return 0
	}
	return geom.Clamp(doc.Zoom, view.MinZoom, view.MaxZoom)
}

func (doc snapshotDoc) snapshot() model.Snapshot {
	s := model.Snapshot{
		Notes:       make([]model.Note, 0, len(doc.Notes)),
		Codes:       make([]model.Code, 0, len(doc.Codes)),
		Connections: make([]model.Connection, 0, len(doc.Connections)),
		Strokes:     make([]model.Stroke, 0, len(doc.Strokes)),
		Zoom:        doc.zoom(),
		Offset:      doc.Offset.point(),
		NextID:      doc.NextID,
	}
	for _, n := range doc.Notes {
		s.Notes = append(s.Notes, model.Note{
			Node: model.Node{ID: n.ID, Pos: n.Pos.point(), Size: n.Size.size(), Locked: n.Locked},
			Text: n.Text,
		})
	}
	for _, c := range doc.Codes {
		s.Codes = append(s.Codes, model.Code{
			Node:       model.Node{ID: c.ID, Pos: c.Pos.point(), Size: c.Size.size(), Locked: c.Locked},
			FilePath:   c.FilePath,
			Code:       c.Code,
			LineOffset: c.LineOffset,
		})
	}
	for _, c := range doc.Connections {
		s.Connections = append(s.Connections, model.Connection{
			ID:        c.ID,
			Start:     model.NodeRef(c.Start),
			End:       model.NodeRef(c.End),
			StartSide: geom.Side(c.StartSide),
			EndSide:   geom.Side(c.EndSide),
			Color:     c.Color.color(),
		})
	}
	for _, st := range doc.Strokes {
		points := make([]geom.Point, len(st.Points))
		for i, p := range st.Points {
			points[i] = p.point()
		}
		s.Strokes = append(s.Strokes, model.Stroke{Points: points, Color: st.Color.color(), Thickness: st.Thickness})
	}
	return s
}
