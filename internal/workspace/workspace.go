// Package workspace is the command surface of the application. It owns the live
// canvas, the view, the history and the gesture controller, and records exactly one
// history entry per completed command.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/viant/afs"
	"go.uber.org/zap"

	"infinity/internal/config"
	"infinity/internal/document"
	"infinity/internal/geom"
	"infinity/internal/history"
	"infinity/internal/ink"
	"infinity/internal/interaction"
	"infinity/internal/model"
	"infinity/internal/project"
	"infinity/internal/render"
	"infinity/internal/view"
)

var (
	ErrNotFound = errors.New("node not found")
	ErrReadOnly = errors.New("node is locked")
	ErrNoPath   = errors.New("no document path")
)

type Options struct {
	Config *config.Config
	Logger *zap.Logger
	// FS serves both project files and documents. Defaults to afs.New().
	FS     afs.Service
	Picker project.FolderPicker
}

type Workspace struct {
	cfg *config.Config
	log *zap.Logger

	canvas  *model.Canvas
	view    view.Transform
	history *history.Manager
	ink     *ink.Engine
	ctrl    *interaction.Controller

	project *project.Project
	repo    *document.Repository

	path  string
	saved uint64
}

func New(opts Options) *Workspace {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.FS == nil {
		opts.FS = afs.New()
	}
	w := &Workspace{
		cfg:     opts.Config,
		log:     opts.Logger,
		canvas:  model.NewCanvas(),
		view:    view.Identity(),
		ink:     ink.NewEngine(opts.Config.MarkerColor.Geom()),
		project: project.New(opts.FS, opts.Picker, opts.Config.ProjectRoot),
		repo:    document.NewRepository(opts.FS),
	}
	w.ctrl = interaction.NewController(w.canvas, &w.view, w.ink, w.record, opts.Config.ConnectionColor.Geom())
	w.history = history.New(w.current(), w.cfg.UndoLimit)
	w.markSaved()
	return w
}

func (w *Workspace) current() model.Snapshot {
	return w.canvas.Snapshot(w.view)
}

func (w *Workspace) record() {
	w.history.Record(w.current())
}

// interrupt ends whatever gesture is in flight before the document is replaced.
func (w *Workspace) interrupt() {
	w.ctrl.SetMode(w.ctrl.Mode())
}

func (w *Workspace) restore(s model.Snapshot) {
	w.view = w.canvas.Restore(s)
}

func (w *Workspace) markSaved() {
	fp, err := document.Fingerprint(w.current())
	if err != nil {
		w.log.Warn("failed to fingerprint document", zap.Error(err))
		return
	}
	w.saved = fp
}

func (w *Workspace) Canvas() *model.Canvas { return w.canvas }
func (w *Workspace) View() view.Transform { return w.view }
func (w *Workspace) Mode() interaction.Mode { return w.ctrl.Mode() }
func (w *Workspace) Path() string { return w.path }
func (w *Workspace) Project() *project.Project { return w.project }
func (w *Workspace) Controller() *interaction.Controller { return w.ctrl }

// HistoryDepth reports the available undo and redo steps.
func (w *Workspace) HistoryDepth() (undo, redo int) { return w.history.Depth() }

// Dirty reports whether the document differs from what was last loaded or saved.
func (w *Workspace) Dirty() bool {
	fp, err := document.Fingerprint(w.current())
	if err != nil {
		return true
	}
	return fp != w.saved
}

// Frame processes one frame of input and returns the scene to draw.
func (w *Workspace) Frame(in interaction.Input) render.Scene {
	w.ctrl.Process(in)
	return w.Scene()
}

func (w *Workspace) Scene() render.Scene {
	sc := render.Scene{
		Canvas:  w.canvas,
		View:    w.view,
		Clip:    w.ctrl.Clip(),
		Current: w.ink.Current(),
		HUD:     true,
	}
	if r, ok := w.ctrl.Preview(); ok {
		sc.Preview = &r
	}
	return sc
}

// New discards the document and starts an empty one with fresh history.
func (w *Workspace) New() {
	w.interrupt()
	w.canvas.Reset()
	w.view = view.Identity()
	w.history = history.New(w.current(), w.cfg.UndoLimit)
	w.path = ""
	w.markSaved()
	w.log.Info("new document")
}

func (w *Workspace) location(path string) (string, error) {
	location, err := w.cfg.SavePath(path)
	if err != nil {
		w.log.Error("failed to resolve document path", zap.String("path", path), zap.Error(err))
	}
	return location, err
}

// Open replaces the document with the one at path. On failure nothing changes.
func (w *Workspace) Open(ctx context.Context, path string) error {
	location, err := w.location(path)
	if err != nil {
		return err
	}
	state, err := w.repo.Load(ctx, location)
	if err != nil {
		w.log.Error("failed to open document", zap.String("url", location), zap.Error(err))
		return err
	}
	w.interrupt()
	w.restore(state.Current)
	w.history = history.Import(state, w.cfg.UndoLimit)
	w.path = path
	w.markSaved()
	w.log.Info("opened document", zap.String("url", location),
		zap.Int("notes", len(w.canvas.Notes())), zap.Int("codes", len(w.canvas.Codes())))
	return nil
}

// Save writes the history to path, or to the last used path when path is empty.
func (w *Workspace) Save(ctx context.Context, path string) error {
	if path == "" {
		path = w.path
	}
	if path == "" {
		return ErrNoPath
	}
	location, err := w.location(path)
	if err != nil {
		return err
	}
	if err := w.repo.Save(ctx, location, w.history.Export(w.current())); err != nil {
		w.log.Error("failed to save document", zap.String("url", location), zap.Error(err))
		return err
	}
	w.path = path
	w.markSaved()
	w.log.Info("saved document", zap.String("url", location))
	return nil
}

func (w *Workspace) Undo() bool {
	w.interrupt()
	s, ok := w.history.Undo()
	if ok {
		w.restore(s)
	}
	return ok
}

func (w *Workspace) Redo() bool {
	w.interrupt()
	s, ok := w.history.Redo()
	if ok {
		w.restore(s)
	}
	return ok
}

func (w *Workspace) ToggleMarker()  { w.ctrl.Toggle(interaction.ModeMarker) }
func (w *Workspace) ToggleEraser()  { w.ctrl.Toggle(interaction.ModeEraser) }
func (w *Workspace) ToggleConnect() { w.ctrl.Toggle(interaction.ModeConnecting) }

// ResetZoom returns to zoom 1 keeping the offset. View changes are not recorded.
func (w *Workspace) ResetZoom() { w.view.ResetZoom() }

// Pan shifts the view by a screen-space delta.
func (w *Workspace) Pan(delta geom.Point) { w.view.Pan(delta) }

// AddNote creates a note with its top-left corner at a document point.
func (w *Workspace) AddNote(at geom.Point) model.NodeRef {
	ref := w.canvas.CreateNote(at)
	w.record()
	return ref
}

// PasteNote creates a note holding text.
func (w *Workspace) PasteNote(at geom.Point, text string) model.NodeRef {
	ref := w.canvas.CreateNote(at)
	w.canvas.SetNoteText(ref.ID, text)
	w.record()
	return ref
}

// AddCode creates a code node. The first code node asks for the project root; not
// having one only means locked nodes cannot resolve line offsets.
func (w *Workspace) AddCode(ctx context.Context, at geom.Point) model.NodeRef {
	if _, err := w.project.Root(ctx); err != nil {
		w.log.Warn("no project root", zap.Error(err))
	}
	ref := w.canvas.CreateCode(at)
	w.record()
	return ref
}

// Delete removes a node. Connections that reference it are kept.
func (w *Workspace) Delete(ref model.NodeRef) bool {
	i, ok := w.canvas.Index(ref)
	if !ok || !w.canvas.Delete(ref.Kind, i) {
		return false
	}
	w.record()
	return true
}

// Reorder moves a node one step in z order. Moving past either end is a no-op.
func (w *Workspace) Reorder(ref model.NodeRef, dir model.Direction) bool {
	i, ok := w.canvas.Index(ref)
	if !ok || !w.canvas.Reorder(ref.Kind, i, dir) {
		return false
	}
	w.record()
	return true
}

func (w *Workspace) Resize(ref model.NodeRef, size geom.Size) bool {
	n, ok := w.canvas.Find(ref)
	if !ok {
		return false
	}
	if !w.canvas.Resize(ref, size) {
		return false
	}
	if after, _ := w.canvas.Find(ref); after.Size == n.Size {
		return false
	}
	w.record()
	return true
}

func (w *Workspace) DeleteConnection(id string) bool {
	if !w.canvas.DeleteConnection(id) {
		return false
	}
	w.record()
	return true
}

func (w *Workspace) SetNoteText(ref model.NodeRef, text string) error {
	n, ok := w.canvas.Note(ref.ID)
	if !ok || ref.Kind != model.KindNote {
		return ErrNotFound
	}
	if n.Locked {
		return ErrReadOnly
	}
	if n.Text == text {
		return nil
	}
	w.canvas.SetNoteText(ref.ID, text)
	w.record()
	return nil
}

func (w *Workspace) SetCode(ref model.NodeRef, code string) error {
	n, err := w.editableCode(ref)
	if err != nil {
		return err
	}
	if n.Code == code {
		return nil
	}
	w.canvas.SetCode(ref.ID, n.FilePath, code)
	w.record()
	return nil
}

func (w *Workspace) SetFilePath(ref model.NodeRef, filePath string) error {
	n, err := w.editableCode(ref)
	if err != nil {
		return err
	}
	if n.FilePath == filePath {
		return nil
	}
	w.canvas.SetCode(ref.ID, filePath, n.Code)
	w.record()
	return nil
}

func (w *Workspace) editableCode(ref model.NodeRef) (model.Code, error) {
	n, ok := w.canvas.Code(ref.ID)
	if !ok || ref.Kind != model.KindCode {
		return model.Code{}, ErrNotFound
	}
	if n.Locked {
		return model.Code{}, ErrReadOnly
	}
	return n, nil
}

// Text returns a node's note text or code snippet.
func (w *Workspace) Text(ref model.NodeRef) (string, bool) {
	switch ref.Kind {
	case model.KindNote:
		n, ok := w.canvas.Note(ref.ID)
		return n.Text, ok
	case model.KindCode:
		n, ok := w.canvas.Code(ref.ID)
		return n.Code, ok
	}
	return "", false
}

// SetLocked locks or unlocks a node. Locking a code node looks up its snippet in the
// project; a read failure aborts the lock, an unmatched snippet leaves no offset.
func (w *Workspace) SetLocked(ctx context.Context, ref model.NodeRef, locked bool) error {
	n, ok := w.canvas.Find(ref)
	if !ok {
		return ErrNotFound
	}
	if n.Locked == locked {
		return nil
	}
	var line *int
	if locked && ref.Kind == model.KindCode {
		var err error
		if line, err = w.lookup(ctx, ref.ID); err != nil {
			return err
		}
	}
	w.canvas.SetLocked(ref, locked)
	if line != nil {
		w.canvas.SetLineOffset(ref.ID, line)
	}
	w.record()
	return nil
}

// ToggleLock flips a node's lock.
func (w *Workspace) ToggleLock(ctx context.Context, ref model.NodeRef) error {
	n, ok := w.canvas.Find(ref)
	if !ok {
		return ErrNotFound
	}
	return w.SetLocked(ctx, ref, !n.Locked)
}

func (w *Workspace) lookup(ctx context.Context, id uint64) (*int, error) {
	n, ok := w.canvas.Code(id)
	if !ok || n.FilePath == "" || n.Code == "" {
		return nil, nil
	}
	line, found, err := w.project.LineOffset(ctx, n.FilePath, n.Code)
	switch {
	case errors.Is(err, project.ErrNoProjectRoot):
		w.log.Warn("line lookup skipped", zap.Uint64("id", id), zap.Error(err))
		return nil, nil
	case err != nil:
		w.log.Error("line lookup failed", zap.Uint64("id", id), zap.String("file", n.FilePath), zap.Error(err))
		return nil, fmt.Errorf("lock code node %d: %w", id, err)
	case !found:
		w.log.Debug("snippet not found", zap.Uint64("id", id), zap.String("file", n.FilePath))
		return nil, nil
	}
	return &line, nil
}

// RefreshLineOffsets re-resolves locked code nodes whose file is among paths. It
// changes annotations only and records nothing. It returns the nodes updated.
func (w *Workspace) RefreshLineOffsets(ctx context.Context, paths []string) int {
	changed := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		changed[cleanPath(p)] = struct{}{}
	}
	updated := 0
	for _, n := range w.canvas.Codes() {
		if !n.Locked {
			continue
		}
		if _, ok := changed[cleanPath(n.FilePath)]; !ok {
			continue
		}
		line, err := w.lookup(ctx, n.ID)
		if err != nil {
			continue
		}
		if sameLine(line, n.LineOffset) {
			continue
		}
		w.canvas.SetLineOffset(n.ID, line)
		updated++
	}
	return updated
}

func sameLine(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// ExportPNG renders the whole canvas at zoom 1.
func (w *Workspace) ExportPNG(out io.Writer) error {
	if err := render.ExportPNG(out, w.canvas, 1); err != nil {
		w.log.Error("failed to export png", zap.Error(err))
		return err
	}
	return nil
}
