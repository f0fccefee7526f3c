package codec

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinity/internal/geom"
	"infinity/internal/history"
	"infinity/internal/model"
	"infinity/internal/view"
)

func sampleCanvas() (*model.Canvas, model.NodeRef, model.NodeRef) {
	c := model.NewCanvas()
	note := c.CreateNote(geom.Pt(100.25, -40.5))
	c.SetNoteText(note.ID, "hello,\n\"world\"")
	code := c.CreateCode(geom.Pt(3e5, 1.0/3))
	c.SetCode(code.ID, "internal/geom/geom.go", "func Pt(x, y float64) Point {")
	line := 7
	c.SetLocked(code, true)
	c.SetLineOffset(code.ID, &line)
	c.Resize(note, geom.Sz(123.456, 7))
	c.Connect(note, code, geom.SideRight, geom.SideTop, geom.Color{R: 1, G: 2, B: 3, A: 4})
	c.Connect(code, code, geom.SideBottom, geom.SideBottom, model.DefaultConnectionColor)
	c.AddStroke(model.Stroke{
		Points:    []geom.Point{{X: 0.1, Y: 0.2}, {X: -5, Y: 1e-7}, {X: 9, Y: 9}},
		Color:     model.DefaultMarkerColor,
		Thickness: model.MarkerThickness,
	})
	return c, note, code
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	c, note, _ := sampleCanvas()
	tr := view.Transform{Zoom: 1.7320508075688772, Offset: geom.Pt(-12.5, 99)}
	m := history.New(model.EmptySnapshot(), 0)
	m.Record(c.Snapshot(tr))
	c.MoveBy(note, geom.Pt(1, 1))
	m.Record(c.Snapshot(tr))
	current, _ := m.Undo()
	state := m.Export(current)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, state))

	got, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, state, got)
}

func TestEncode_TupleGeometry(t *testing.T) {
	c, _, _ := sampleCanvas()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, history.State{Current: c.Snapshot(view.Identity())}))

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	var current struct {
		Notes []struct {
			Pos  []float64 `json:"pos"`
			Size []float64 `json:"size"`
		} `json:"notes"`
		Connections []struct {
			Start []interface{} `json:"start"`
			Color []int         `json:"color"`
		} `json:"connections"`
		Strokes []struct {
			Points [][]float64 `json:"points"`
		} `json:"strokes"`
	}
	require.NoError(t, json.Unmarshal(raw["current"], &current))
	assert.Equal(t, []float64{100.25, -40.5}, current.Notes[0].Pos)
	assert.Equal(t, []float64{123.456, 7}, current.Notes[0].Size)
	assert.Equal(t, []interface{}{float64(1), "note"}, current.Connections[0].Start)
	assert.Equal(t, []int{1, 2, 3, 4}, current.Connections[0].Color)
	assert.Len(t, current.Strokes[0].Points, 3)
}

func TestDecode_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", "FLOWCHART\nBOXES:0"},
		{"wrong format", `{"format":"other","version":1}`},
		{"future version", `{"format":"infinity-canvas","version":99}`},
		{"bad side", `{"format":"infinity-canvas","version":1,"current":{"connections":[{"id":"x","start":[1,"note"],"end":[1,"note"],"start_side":"inside","end_side":"top","color":[0,0,0,0]}]}}`},
		{"bad kind", `{"format":"infinity-canvas","version":1,"current":{"connections":[{"id":"x","start":[1,"shape"],"end":[1,"note"],"start_side":"top","end_side":"top","color":[0,0,0,0]}]}}`},
		{"short ref", `{"format":"infinity-canvas","version":1,"current":{"connections":[{"id":"x","start":[1],"end":[1,"note"],"start_side":"top","end_side":"top","color":[0,0,0,0]}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc))
			assert.ErrorIs(t, err, ErrInvalidDocument)
		})
	}
}

func TestMarshalSnapshot_Stable(t *testing.T) {
	c, _, _ := sampleCanvas()
	s := c.Snapshot(view.Identity())
	a, err := MarshalSnapshot(s)
	require.NoError(t, err)
	b, err := MarshalSnapshot(s.Clone())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDecode_ClampsOutOfRange(t *testing.T) {
	doc := `{"format":"infinity-canvas","version":1,"current":{` +
		`"notes":[{"id":1,"pos":[0,0],"size":[0,1000],"text":""}],` +
		`"codes":[{"id":2,"pos":[0,0],"size":[-5,500]}],"zoom":9}}`

	got, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, view.MaxZoom, got.Current.Zoom)
	assert.Equal(t, geom.Sz(model.MinNodeSize, model.MaxNodeSize), got.Current.Notes[0].Size)
	assert.Equal(t, geom.Sz(model.MinNodeSize, model.MaxNodeSize), got.Current.Codes[0].Size)
}
