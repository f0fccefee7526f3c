// Package document persists canvas history to files through afs.
package document

import (
	"bytes"
	"context"
	"fmt"

	"github.com/viant/afs"

	"infinity/internal/codec"
	"infinity/internal/history"
)

const fileMode = 0o644

// Repository loads and saves documents at afs URLs. Plain paths are local files.
type Repository struct {
	fs afs.Service
}

func NewRepository(fs afs.Service) *Repository {
	if fs == nil {
		fs = afs.New()
	}
	return &Repository{fs: fs}
}

// Save writes the encoded state. Nothing is written if encoding fails.
func (r *Repository) Save(ctx context.Context, location string, s history.State) error {
	var buf bytes.Buffer
	if err := codec.Encode(&buf, s); err != nil {
		return fmt.Errorf("encode %s: %w", location, err)
	}
	if err := r.fs.Upload(ctx, location, fileMode, &buf); err != nil {
		return fmt.Errorf("write %s: %w", location, err)
	}
	return nil
}

// Load reads and decodes a document. The returned state is only valid when err is nil.
func (r *Repository) Load(ctx context.Context, location string) (history.State, error) {
	data, err := r.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return history.State{}, fmt.Errorf("read %s: %w", location, err)
	}
	s, err := codec.Decode(bytes.NewReader(data))
	if err != nil {
		return history.State{}, fmt.Errorf("load %s: %w", location, err)
	}
	return s, nil
}

func (r *Repository) Exists(ctx context.Context, location string) (bool, error) {
	return r.fs.Exists(ctx, location)
}
