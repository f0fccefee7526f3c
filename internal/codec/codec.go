// Package codec reads and writes workspace documents.
//
// A document is one JSON object holding the undo stack, the redo stack and the
// current snapshot. Points, sizes and colors are plain arrays.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"infinity/internal/history"
	"infinity/internal/model"
)

const (
	Format  = "infinity-canvas"
	Version = 1
)

var ErrInvalidDocument = errors.New("invalid document")

// Encode writes the full history state.
func Encode(w io.Writer, s history.State) error {
	doc := historyDoc{
		Format:    Format,
		Version:   Version,
		UndoStack: fromSnapshots(s.Undo),
		RedoStack: fromSnapshots(s.Redo),
		Current:   fromSnapshot(s.Current),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// Decode reads a document written by Encode. Nothing is returned on error.
func Decode(r io.Reader) (history.State, error) {
	var doc historyDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return history.State{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if doc.Format != Format {
		return history.State{}, fmt.Errorf("%w: unexpected format %q", ErrInvalidDocument, doc.Format)
	}
	if doc.Version < 1 || doc.Version > Version {
		return history.State{}, fmt.Errorf("%w: unsupported version %d", ErrInvalidDocument, doc.Version)
	}
	return history.State{
		Undo:    toSnapshots(doc.UndoStack),
		Redo:    toSnapshots(doc.RedoStack),
		Current: doc.Current.snapshot(),
	}, nil
}

// MarshalSnapshot encodes one snapshot compactly, for fingerprinting.
func MarshalSnapshot(s model.Snapshot) ([]byte, error) {
	return json.Marshal(fromSnapshot(s))
}

func fromSnapshots(in []model.Snapshot) []snapshotDoc {
	out := make([]snapshotDoc, 0, len(in))
	for _, s := range in {
		out = append(out, fromSnapshot(s))
	}
	return out
}

func toSnapshots(in []snapshotDoc) []model.Snapshot {
	out := make([]model.Snapshot, 0, len(in))
	for _, doc := range in {
		out = append(out, doc.snapshot())
	}
	return out
}
