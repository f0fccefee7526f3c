package main

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"infinity/internal/geom"
	"infinity/internal/interaction"
	"infinity/internal/model"
	"infinity/internal/workspace"
)

// resizeStep is how much + and - change a node, in document units.
const resizeStep = 10.0

var errNoSelection = errors.New("no node selected")

func (m *ui) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case uiHelp:
		m.mode = uiNormal
		return m, nil
	case uiEditing:
		m.handleEditKey(msg)
		return m, nil
	case uiPrompt:
		m.handlePromptKey(msg)
		return m, nil
	case uiConfirm:
		return m.handleConfirmKey(msg)
	}
	return m.handleNormalKey(msg)
}

func (m *ui) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	m.message = ""

	switch key {
	case "q", "ctrl+c":
		if m.ws.Dirty() && m.cfg.Confirmations {
			m.ask(confirmQuit)
			return m, nil
		}
		return m, m.quit()
	case "?":
		m.mode = uiHelp
	case "esc":
		m.ws.Controller().SetMode(interaction.ModeIdle)
		m.hasSelected = false
	case "n":
		if m.ws.Dirty() && m.cfg.Confirmations {
			m.ask(confirmNew)
			return m, nil
		}
		m.newDocument()
	case "o":
		m.startPrompt(promptOpen, m.filename)
	case "s":
		if m.filename == "" {
			m.startPrompt(promptSave, "")
			return m, nil
		}
		m.save(m.filename)
	case "S":
		m.startPrompt(promptExport, pngName(m.filename))
	case "u", "ctrl+z":
		if !m.ws.Undo() {
			m.notify("Nothing to undo")
		}
	case "U", "ctrl+y":
		if !m.ws.Redo() {
			m.notify("Nothing to redo")
		}
	case "b":
		m.selected, m.hasSelected = m.ws.AddNote(m.docCursor()), true
	case "c":
		m.selected, m.hasSelected = m.ws.AddCode(m.ctx, m.docCursor()), true
		m.ensureWatcher()
	case "p":
		m.paste()
	case "m":
		m.ws.ToggleMarker()
	case "x":
		m.ws.ToggleEraser()
	case "a":
		m.ws.ToggleConnect()
	case "0":
		m.ws.ResetZoom()
	default:
		if m.handleNodeKey(key) {
			return m, nil
		}
		m.handleNavigation(key, m.getMoveSpeed(key))
	}
	return m, nil
}

// handleNodeKey runs commands that act on the selected node.
func (m *ui) handleNodeKey(key string) bool {
	switch key {
	case "e", "enter", "f", "L", "d", "[", "]", "+", "=", "-", "y", "X":
	default:
		return false
	}
	n, ok := m.target()
	if !ok {
		m.fail(errNoSelection)
		return true
	}
	ref := m.selected
	switch key {
	case "e", "enter":
		if ref.Kind == model.KindCode {
			m.startEdit(editCode)
		} else {
			m.startEdit(editNoteText)
		}
	case "f":
		if ref.Kind == model.KindCode {
			m.startEdit(editFilePath)
		}
	case "L":
		if err := m.ws.ToggleLock(m.ctx, ref); err != nil {
			m.fail(err)
		}
		m.ensureWatcher()
	case "d":
		if m.cfg.Confirmations {
			m.ask(confirmDelete)
			return true
		}
		m.deleteSelected()
	case "[":
		m.ws.Reorder(ref, model.Backward)
	case "]":
		m.ws.Reorder(ref, model.Forward)
	case "+", "=":
		m.ws.Resize(ref, geom.Sz(n.Size.W+resizeStep, n.Size.H+resizeStep))
	case "-":
		m.ws.Resize(ref, geom.Sz(n.Size.W-resizeStep, n.Size.H-resizeStep))
	case "y":
		m.copySelected()
	case "X":
		m.deleteNewestConnection(ref)
	}
	return true
}

func (m *ui) deleteSelected() {
	if m.ws.Delete(m.selected) {
		m.hasSelected = false
	}
}

func (m *ui) deleteNewestConnection(ref model.NodeRef) {
	conns := m.ws.Canvas().Connections()
	for i := len(conns) - 1; i >= 0; i-- {
		if conns[i].Start == ref || conns[i].End == ref {
			m.ws.DeleteConnection(conns[i].ID)
			return
		}
	}
	m.notify("No connections on %s", ref)
}

func (m *ui) handleNavigation(key string, speed int) {
	step := float64(speed)
	switch key {
	case "h", "left", "H", "shift+left":
		m.ws.Pan(geom.Pt(step*cellWidth, 0))
	case "l", "right", "shift+right":
		m.ws.Pan(geom.Pt(-step*cellWidth, 0))
	case "k", "up", "K", "shift+up":
		m.ws.Pan(geom.Pt(0, step*cellHeight))
	case "j", "down", "J", "shift+down":
		m.ws.Pan(geom.Pt(0, -step*cellHeight))
	}
}

func (m *ui) getMoveSpeed(key string) int {
	switch key {
	case "H", "J", "K", "shift+left", "shift+right", "shift+up", "shift+down":
		return 2
	default:
		return 1
	}
}

func (m *ui) ask(c confirmKind) {
	m.confirm = c
	m.mode = uiConfirm
}

func (m *ui) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = uiNormal
	if msg.String() != "y" && msg.String() != "Y" {
		return m, nil
	}
	switch m.confirm {
	case confirmQuit:
		return m, m.quit()
	case confirmNew:
		m.newDocument()
	case confirmDelete:
		m.deleteSelected()
	}
	return m, nil
}

func (m *ui) newDocument() {
	m.ws.New()
	m.filename = ""
	m.hasSelected = false
	m.notify("New canvas")
}

func (m *ui) setInput(s string) {
	m.input = []rune(s)
	m.inputPos = len(m.input)
}

func (m *ui) startPrompt(kind promptKind, initial string) {
	m.prompt = kind
	m.mode = uiPrompt
	m.setInput(initial)
}

func (m *ui) startEdit(target editTarget) {
	var text string
	switch target {
	case editFilePath:
		n, _ := m.ws.Canvas().Code(m.selected.ID)
		if n.Locked {
			m.fail(workspace.ErrReadOnly)
			return
		}
		text = n.FilePath
	default:
		n, _ := m.ws.Canvas().Find(m.selected)
		if n.Locked {
			m.fail(workspace.ErrReadOnly)
			return
		}
		text, _ = m.ws.Text(m.selected)
	}
	m.edit = target
	m.mode = uiEditing
	m.setInput(text)
}

func (m *ui) commitEdit() {
	text := string(m.input)
	var err error
	switch m.edit {
	case editNoteText:
		err = m.ws.SetNoteText(m.selected, text)
	case editCode:
		err = m.ws.SetCode(m.selected, text)
	case editFilePath:
		err = m.ws.SetFilePath(m.selected, strings.TrimSpace(text))
	}
	m.mode = uiNormal
	if err != nil {
		m.fail(err)
	}
}

func (m *ui) handleEditKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "esc":
		m.mode = uiNormal
	case "ctrl+s":
		m.commitEdit()
	case "enter":
		if m.edit == editFilePath {
			m.commitEdit()
			return
		}
		m.insert([]rune{'\n'})
	default:
		m.editInput(msg)
	}
}

func (m *ui) handlePromptKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "esc":
		m.mode = uiNormal
	case "enter":
		name := strings.TrimSpace(string(m.input))
		m.mode = uiNormal
		if name == "" {
			return
		}
		switch m.prompt {
		case promptSave:
			m.save(name)
		case promptOpen:
			m.open(name)
		case promptExport:
			m.exportPNG(name)
		}
	default:
		m.editInput(msg)
	}
}

// editInput applies cursor movement, deletion and typed runes to the input line.
func (m *ui) editInput(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyLeft:
		if m.inputPos > 0 {
			m.inputPos--
		}
	case tea.KeyRight:
		if m.inputPos < len(m.input) {
			m.inputPos++
		}
	case tea.KeyHome, tea.KeyCtrlA:
		m.inputPos = 0
	case tea.KeyEnd, tea.KeyCtrlE:
		m.inputPos = len(m.input)
	case tea.KeyBackspace:
		if m.inputPos > 0 {
			m.input = append(m.input[:m.inputPos-1], m.input[m.inputPos:]...)
			m.inputPos--
		}
	case tea.KeyDelete:
		if m.inputPos < len(m.input) {
			m.input = append(m.input[:m.inputPos], m.input[m.inputPos+1:]...)
		}
	case tea.KeySpace:
		m.insert([]rune{' '})
	case tea.KeyTab:
		m.insert([]rune{'\t'})
	case tea.KeyRunes:
		m.insert(msg.Runes)
	}
}

func (m *ui) insert(r []rune) {
	tail := append([]rune{}, m.input[m.inputPos:]...)
	m.input = append(append(m.input[:m.inputPos], r...), tail...)
	m.inputPos += len(r)
}

func (m *ui) save(name string) {
	if err := m.ws.Save(m.ctx, name); err != nil {
		m.fail(err)
		return
	}
	m.filename = name
	m.notify("Saved %s", name)
}

func (m *ui) open(name string) {
	if err := m.ws.Open(m.ctx, name); err != nil {
		m.fail(err)
		return
	}
	m.filename = name
	m.hasSelected = false
	m.notify("Opened %s", name)
	m.ensureWatcher()
}
