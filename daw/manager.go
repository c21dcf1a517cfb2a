package daw

import (
	"time"
)

const (
	// maxUndo is how many snapshots are kept; the oldest fall off.
	maxUndo = 50
	// snapshotInterval coalesces rapid command bursts: mutating commands
	// executed within this window of the last snapshot share it, so one
	// undo steps over the whole burst.
	snapshotInterval = 120 * time.Millisecond
)

type (
	// Manager owns the State and runs Commands against it, keeping
	// whole-document snapshots for undo. Undo is snapshot based rather than
	// per-command inverse: before a mutating command runs, the document is
	// copied onto the undo stack, and undoing restores the copy wholesale.
	Manager struct {
		state *State

		undoStack []snapshot
		redoStack []snapshot

		lastSnapshot time.Time
		hasSnapshot  bool

		now func() time.Time
	}

	snapshot struct {
		state *State
		name  string // name of the command that caused the snapshot
	}
)

// NewManager wraps the given state.
func NewManager(s *State) *Manager {
	return &Manager{state: s, now: time.Now}
}

// State returns the live state.
func (m *Manager) State() *State { return m.state }

// Execute runs the command. Mutating commands snapshot the document first,
// unless the previous snapshot is newer than snapshotInterval, and clear the
// redo stack.
func (m *Manager) Execute(cmd Command) error {
	if Mutates(cmd) {
		now := m.now()
		if !m.hasSnapshot || now.Sub(m.lastSnapshot) >= snapshotInterval {
			m.pushUndo(snapshot{state: m.state.Copy(), name: cmd.CommandName()})
			m.lastSnapshot = now
			m.hasSnapshot = true
		}
		m.redoStack = m.redoStack[:0]
	}
	return Execute(cmd, m.state)
}

// Undo restores the document to the latest snapshot. Returns false when
// there is nothing to undo.
func (m *Manager) Undo() bool {
	if len(m.undoStack) == 0 {
		return false
	}
	top := m.undoStack[len(m.undoStack)-1]
	m.undoStack = m.undoStack[:len(m.undoStack)-1]
	m.redoStack = append(m.redoStack, snapshot{state: m.state.Copy(), name: top.name})
	m.restore(top.state)
	// The next mutating command must get a fresh snapshot regardless of
	// timing, or it would be coalesced into a state that no longer exists.
	m.hasSnapshot = false
	return true
}

// Redo reverses the latest Undo. Returns false when there is nothing to
// redo.
func (m *Manager) Redo() bool {
	if len(m.redoStack) == 0 {
		return false
	}
	top := m.redoStack[len(m.redoStack)-1]
	m.redoStack = m.redoStack[:len(m.redoStack)-1]
	m.pushUndo(snapshot{state: m.state.Copy(), name: top.name})
	m.hasSnapshot = false
	m.restore(top.state)
	return true
}

// CanUndo reports whether Undo would do anything.
func (m *Manager) CanUndo() bool { return len(m.undoStack) > 0 }

// CanRedo reports whether Redo would do anything.
func (m *Manager) CanRedo() bool { return len(m.redoStack) > 0 }

// UndoDepth returns the number of undo steps available.
func (m *Manager) UndoDepth() int { return len(m.undoStack) }

// UndoName returns the name of the command the next Undo steps over.
func (m *Manager) UndoName() string {
	if len(m.undoStack) == 0 {
		return ""
	}
	return m.undoStack[len(m.undoStack)-1].name
}

func (m *Manager) pushUndo(s snapshot) {
	if len(m.undoStack) >= maxUndo {
		m.undoStack = m.undoStack[1:]
	}
	m.undoStack = append(m.undoStack, s)
}

// restore swaps the document fields in, keeping the live services of the
// current state.
func (m *Manager) restore(old *State) {
	m.state.Project = old.Project
	m.state.SnapMode = old.SnapMode
	m.state.Metronome = old.Metronome
	m.state.Recording = old.Recording
	m.state.SelectedTrack = old.SelectedTrack
	m.state.SelectedClip = old.SelectedClip
}
