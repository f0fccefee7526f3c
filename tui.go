package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"infinity/internal/config"
	"infinity/internal/geom"
	"infinity/internal/interaction"
	"infinity/internal/model"
	"infinity/internal/project"
	"infinity/internal/render"
	"infinity/internal/workspace"
)

// wheelStep is the scroll delta one wheel notch contributes.
const wheelStep = 100.0

type uiMode int

const (
	uiNormal uiMode = iota
	uiEditing
	uiPrompt
	uiConfirm
	uiHelp
)

type promptKind int

const (
	promptSave promptKind = iota
	promptOpen
	promptExport
)

type confirmKind int

const (
	confirmQuit confirmKind = iota
	confirmNew
	confirmDelete
)

type editTarget int

const (
	editNoteText editTarget = iota
	editCode
	editFilePath
)

type filesChangedMsg struct{ paths []string }

type watchErrorMsg struct{ err error }

var (
	statusStyle    = lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("255"))
	errorStyle     = statusStyle.Copy().Foreground(lipgloss.Color("203"))
	successStyle   = statusStyle.Copy().Foreground(lipgloss.Color("114"))
	selectionColor = geom.RGB(255, 215, 0)
)

type ui struct {
	ctx context.Context
	ws  *workspace.Workspace
	cfg *config.Config
	log *zap.Logger

	width   int
	height  int
	pointer geom.Point
	hasPtr  bool
	down    bool

	selected    model.NodeRef
	hasSelected bool

	mode     uiMode
	prompt   promptKind
	confirm  confirmKind
	edit     editTarget
	input    []rune
	inputPos int
	filename string

	message string
	failed  bool

	watcher *project.Watcher
	send    func(tea.Msg)
}

func newUI(ctx context.Context, ws *workspace.Workspace, cfg *config.Config, log *zap.Logger, filename string) *ui {
	return &ui{ctx: ctx, ws: ws, cfg: cfg, log: log, filename: filename}
}

func (m *ui) Init() tea.Cmd {
	return nil
}

func (m *ui) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case filesChangedMsg:
		if n := m.ws.RefreshLineOffsets(m.ctx, msg.paths); n > 0 {
			m.notify("Updated line offsets of %d code node(s)", n)
		}
		return m, nil

	case watchErrorMsg:
		m.log.Warn("project watcher error", zap.Error(msg.err))
		m.fail(msg.err)
		return m, nil
	}
	return m, nil
}

func (m *ui) canvasRows() int {
	if m.height-1 < 1 {
		return 1
	}
	return m.height - 1
}

func (m *ui) clip() geom.Rect {
	return geom.Rect{Max: geom.Pt(float64(m.width)*cellWidth, float64(m.canvasRows())*cellHeight)}
}

func (m *ui) handleMouse(msg tea.MouseMsg) {
	if m.mode != uiNormal {
		return
	}
	in := interaction.Input{Pointer: cellCenter(msg.X, msg.Y), Clip: m.clip()}
	m.pointer, m.hasPtr = in.Pointer, true

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		in.ScrollY = wheelStep
	case tea.MouseButtonWheelDown:
		in.ScrollY = -wheelStep
	case tea.MouseButtonLeft:
		if msg.Action == tea.MouseActionPress && !m.down {
			in.Pressed = true
			m.down = true
			m.pick(in.Pointer)
		}
	}
	if msg.Action == tea.MouseActionRelease && m.down {
		in.Released = true
		m.down = false
	}
	in.Down = m.down
	m.ws.Frame(in)
}

// pick selects the node under a press for the keyboard node commands.
func (m *ui) pick(p geom.Point) {
	if m.ws.Mode() != interaction.ModeIdle {
		return
	}
	m.selected, m.hasSelected = m.ws.Canvas().HitTest(m.ws.View().ToDocument(p))
}

// target returns the selected node if it still exists.
func (m *ui) target() (model.Node, bool) {
	if !m.hasSelected {
		return model.Node{}, false
	}
	n, ok := m.ws.Canvas().Find(m.selected)
	if !ok {
		m.hasSelected = false
	}
	return n, ok
}

// docCursor is where keyboard-created nodes go: the pointer, or the middle of the view.
func (m *ui) docCursor() geom.Point {
	p := m.pointer
	if !m.hasPtr {
		c := m.clip()
		p = geom.Pt(c.Max.X/2, c.Max.Y/2)
	}
	return m.ws.View().ToDocument(p)
}

func (m *ui) notify(format string, args ...any) {
	m.message = fmt.Sprintf(format, args...)
	m.failed = false
}

func (m *ui) fail(err error) {
	m.message = err.Error()
	m.failed = true
}

func (m *ui) ensureWatcher() {
	if !m.cfg.WatchProject || m.watcher != nil || m.send == nil {
		return
	}
	root := m.ws.Project().KnownRoot()
	if root == "" {
		return
	}
	w, err := project.NewWatcher(root,
		project.WithOnChange(func(paths []string) { m.send(filesChangedMsg{paths: paths}) }),
		project.WithOnError(func(err error) { m.send(watchErrorMsg{err: err}) }),
	)
	if err != nil {
		m.log.Warn("failed to watch project", zap.String("root", root), zap.Error(err))
		return
	}
	w.Start()
	m.watcher = w
	m.log.Info("watching project", zap.String("root", root))
}

func (m *ui) quit() tea.Cmd {
	if m.watcher != nil {
		if err := m.watcher.Stop(); err != nil {
			m.log.Warn("failed to stop watcher", zap.Error(err))
		}
		m.watcher = nil
	}
	return tea.Quit
}

func (m *ui) View() string {
	if m.mode == uiHelp {
		return m.helpView()
	}
	surface := newCellSurface(m.width, m.canvasRows())
	sc := m.ws.Scene()
	sc.Clip = m.clip()
	render.Draw(surface, sc)
	if n, ok := m.target(); ok {
		r := m.ws.View().ScreenRect(n.Pos, n.Size)
		corners := []geom.Point{r.Min, geom.Pt(r.Max.X, r.Min.Y), r.Max, geom.Pt(r.Min.X, r.Max.Y)}
		for i := range corners {
			surface.Line(corners[i], corners[(i+1)%len(corners)], selectionColor, 1)
		}
	}
	return surface.String() + "\n" + m.statusLine()
}

func (m *ui) statusLine() string {
	var status string
	switch m.mode {
	case uiEditing:
		label := map[editTarget]string{editNoteText: "Note", editCode: "Code", editFilePath: "File"}[m.edit]
		status = fmt.Sprintf("Mode: EDIT | %s: %s | ←/→=move cursor, Enter=newline, Ctrl+S=save, Esc=cancel",
			label, m.inputDisplay())
		if m.edit == editFilePath {
			status = fmt.Sprintf("Mode: EDIT | File: %s | Enter=save, Esc=cancel", m.inputDisplay())
		}
	case uiPrompt:
		op := map[promptKind]string{promptSave: "Save", promptOpen: "Open", promptExport: "Export PNG"}[m.prompt]
		status = fmt.Sprintf("Mode: FILE | %s filename: %s | Enter=confirm, Esc=cancel", op, m.inputDisplay())
	case uiConfirm:
		status = "Mode: CONFIRM | " + m.confirmMessage()
	default:
		status = fmt.Sprintf("Mode: %s | %s", m.ws.Mode(), m.documentLabel())
		if a, ok := m.ws.Controller().Pending(); ok {
			status += fmt.Sprintf(" | Connection from %s (select target)", a.Ref)
		}
		if n, ok := m.target(); ok {
			status += fmt.Sprintf(" | Selected: %s", m.selected)
			if n.Locked {
				status += " [locked]"
			}
		}
		if m.message == "" {
			status += " | ? for help | q to quit"
		}
	}

	style := statusStyle
	if m.message != "" && m.mode == uiNormal {
		status += " | " + m.message
		style = successStyle
		if m.failed {
			style = errorStyle
		}
	}
	if m.width > 0 {
		style = style.Copy().Width(m.width).MaxWidth(m.width)
	}
	return style.Render(status)
}

func (m *ui) documentLabel() string {
	name := "untitled"
	if m.filename != "" {
		name = filepath.Base(m.filename)
	}
	if m.ws.Dirty() {
		name += " [modified]"
	}
	return name
}

func (m *ui) confirmMessage() string {
	switch m.confirm {
	case confirmQuit:
		return "Quit? Unsaved changes will be lost. (y/n)"
	case confirmNew:
		return "Create new canvas? Unsaved changes will be lost. (y/n)"
	case confirmDelete:
		return fmt.Sprintf("Delete %s? (y/n)", m.selected)
	}
	return "(y/n)"
}

// inputDisplay shows the line being typed with a block cursor.
func (m *ui) inputDisplay() string {
	runes := []rune(strings.ReplaceAll(string(m.input), "\n", "⏎"))
	if m.inputPos >= len(runes) {
		return string(runes) + "█"
	}
	runes[m.inputPos] = '█'
	return string(runes)
}

func (m *ui) helpView() string {
	lines := []string{
		"Infinity Help",
		"=============",
		"",
		"Mouse:",
		"  drag node        Move it (normal mode)",
		"  drag background  Pan the canvas",
		"  wheel            Zoom around the origin",
		"  click node       Select it for the commands below",
		"",
		"Canvas:",
		"  b                Add note at the pointer",
		"  c                Add code node at the pointer",
		"  p                Paste clipboard as a new note",
		"  m / x / a        Toggle marker / eraser / connect mode",
		"  0                Reset zoom",
		"  h/j/k/l, arrows  Pan (Shift for 2x)",
		"",
		"Selected node:",
		"  e / Enter        Edit note text or code snippet",
		"  f                Edit code file path",
		"  L                Lock / unlock",
		"  [ / ]            Move backward / forward in z order",
		"  + / -            Grow / shrink",
		"  y                Copy text to clipboard",
		"  X                Delete its newest connection",
		"  d                Delete",
		"",
		"File:",
		"  s / o / S        Save / open / export PNG",
		"  n                New canvas",
		"  u / U            Undo / redo",
		"  Esc              Cancel connection, clear selection, leave tool",
		"  q / Ctrl+C       Quit",
		"",
		"Press any key to return.",
	}
	if m.height > 0 && len(lines) > m.height {
		lines = lines[:m.height]
	}
	return strings.Join(lines, "\n")
}
