package daw

import (
	"supersaw"
)

// State is everything a frontend needs to render the application: the
// project document plus editor and playback state. The document parts are
// value-like and deep-copied by Copy for undo snapshots; Transport and
// Status are live services shared across snapshots, since restoring an undo
// step must not rewind the playhead or resurrect old status messages.
type State struct {
	Project *supersaw.Project

	Transport *Transport
	Status    *StatusManager

	SnapMode  supersaw.SnapMode
	Metronome bool
	Recording bool

	SelectedTrack string
	SelectedClip  string
}

// NewState returns a fresh state around an empty project.
func NewState(name string) *State {
	return &State{
		Project:   supersaw.NewProject(name),
		Transport: NewTransport(),
		Status:    NewStatusManager(),
		SnapMode:  supersaw.SnapSixteenth,
	}
}

// Copy deep-copies the document fields and shares the live services.
func (s *State) Copy() *State {
	c := *s
	c.Project = s.Project.Copy()
	return &c
}
