package main

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/viant/afs"
	"go.uber.org/zap"
)

// pngName suggests an export name next to the document.
func pngName(document string) string {
	if document == "" {
		return "canvas.png"
	}
	return strings.TrimSuffix(document, filepath.Ext(document)) + ".png"
}

func (m *ui) exportPNG(name string) {
	if !strings.HasSuffix(strings.ToLower(name), ".png") {
		name += ".png"
	}
	var buf bytes.Buffer
	if err := m.ws.ExportPNG(&buf); err != nil {
		m.fail(err)
		return
	}
	location, err := m.cfg.SavePath(name)
	if err != nil {
		m.log.Error("failed to resolve png path", zap.String("name", name), zap.Error(err))
		m.fail(err)
		return
	}
	if err := afs.New().Upload(m.ctx, location, 0o644, &buf); err != nil {
		m.log.Error("failed to write png", zap.String("url", location), zap.Error(err))
		m.fail(err)
		return
	}
	m.notify("Exported to %s", location)
}
