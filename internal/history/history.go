// Package history keeps bounded undo/redo stacks of document snapshots.
package history

import "infinity/internal/model"

const DefaultLimit = 200

// Manager stores committed snapshots. The top of the undo stack is always the
// state the document is currently in, so undo steps to the entry beneath it.
type Manager struct {
	undo  []model.Snapshot
	redo  []model.Snapshot
	limit int
}

// State is the persisted form of a Manager.
type State struct {
	Undo    []model.Snapshot
	Redo    []model.Snapshot
	Current model.Snapshot
}

// New creates a history whose only entry is base. limit bounds the undo stack;
// values below 1 fall back to DefaultLimit.
func New(base model.Snapshot, limit int) *Manager {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &Manager{
		undo:  []model.Snapshot{base.Clone()},
		redo:  make([]model.Snapshot, 0),
		limit: limit,
	}
}

// Record pushes a copy of the current state and clears redo. The oldest entries
// are evicted once the stack exceeds the limit.
func (m *Manager) Record(current model.Snapshot) {
	m.undo = append(m.undo, current.Clone())
	if over := len(m.undo) - m.limit; over > 0 {
		m.undo = append(m.undo[:0], m.undo[over:]...)
	}
	m.redo = m.redo[:0]
}

// Undo returns the state to restore, or false when there is nothing to undo.
func (m *Manager) Undo() (model.Snapshot, bool) {
	if len(m.undo) < 2 {
		return model.Snapshot{}, false
	}
	last := len(m.undo) - 1
	m.redo = append(m.redo, m.undo[last])
	m.undo = m.undo[:last]
	return m.undo[last-1].Clone(), true
}

// Redo returns the state to restore, or false when there is nothing to redo.
func (m *Manager) Redo() (model.Snapshot, bool) {
	if len(m.redo) == 0 {
		return model.Snapshot{}, false
	}
	last := len(m.redo) - 1
	s := m.redo[last]
	m.redo = m.redo[:last]
	m.undo = append(m.undo, s)
	return s.Clone(), true
}

func (m *Manager) CanUndo() bool { return len(m.undo) > 1 }
func (m *Manager) CanRedo() bool { return len(m.redo) > 0 }

// Depth reports how many undo and redo steps are available.
func (m *Manager) Depth() (undo, redo int) {
	return len(m.undo) - 1, len(m.redo)
}

// Committed is the most recently recorded state.
func (m *Manager) Committed() model.Snapshot {
	return m.undo[len(m.undo)-1].Clone()
}

// Export copies the stacks for persistence. current is the live document.
func (m *Manager) Export(current model.Snapshot) State {
	return State{
		Undo:    cloneAll(m.undo),
		Redo:    cloneAll(m.redo),
		Current: current.Clone(),
	}
}

// Import rebuilds a Manager from persisted stacks. An empty undo stack is seeded
// with the current state.
func Import(s State, limit int) *Manager {
	m := New(s.Current, limit)
	if len(s.Undo) > 0 {
		m.undo = cloneAll(s.Undo)
		if over := len(m.undo) - m.limit; over > 0 {
			m.undo = m.undo[over:]
		}
	}
	m.redo = cloneAll(s.Redo)
	return m
}

func cloneAll(in []model.Snapshot) []model.Snapshot {
	out := make([]model.Snapshot, len(in))
	for i, s := range in {
		out[i] = s.Clone()
	}
	return out
}
