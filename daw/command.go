package daw

import (
	"math/rand"

	"supersaw"
)

type (
	// Command is one undoable operation on the State. The set of commands is
	// closed: Execute switches exhaustively over the concrete types and
	// there is no way to register new ones, so every frontend speaks exactly
	// the same protocol.
	Command interface {
		// Name is a short identifier for logs and status messages.
		CommandName() string
		isCommand()
	}

	NoOp struct{}

	// Track commands. Commands referring to an unknown track id do nothing.

	AddTrack struct {
		ID   string // generated when empty
		Name string
		Type supersaw.TrackType
	}
	RemoveTrack struct{ TrackID string }
	RenameTrack struct {
		TrackID string
		Name    string
	}
	SetTrackColor struct {
		TrackID string
		Color   string
	}
	SetTrackChannel struct {
		TrackID string
		Channel uint8
	}
	ToggleTrackMute struct{ TrackID string }
	// ToggleTrackSolo is exclusive: soloing a track unsolos all others.
	ToggleTrackSolo struct{ TrackID string }
	ToggleTrackArm  struct{ TrackID string }
	ReorderTrack struct {
		TrackID string
		Index   int
	}

	// Clip commands.

	AddMIDIClip struct {
		ID        string // generated when empty
		TrackID   string
		Name      string
		StartTime float64
		Duration  float64
	}
	AddAudioClip struct {
		ID        string // generated when empty
		TrackID   string
		Name      string
		FilePath  string
		StartTime float64
		Duration  float64
	}
	RemoveClip struct {
		TrackID string
		ClipID  string
	}
	MoveClip struct {
		TrackID   string
		ClipID    string
		StartTime float64
	}
	ResizeClip struct {
		TrackID  string
		ClipID   string
		Duration float64
	}
	RenameClip struct {
		TrackID string
		ClipID  string
		Name    string
	}

	// Note commands, all addressed to a MIDI clip.

	AddNote struct {
		TrackID  string
		ClipID   string
		NoteID   string // generated when empty
		Key      uint8
		Velocity uint8
		Start    float64 // seconds, relative to the clip
		Duration float64
	}
	DeleteNote struct {
		TrackID string
		ClipID  string
		NoteID  string
	}
	UpdateNote struct {
		TrackID  string
		ClipID   string
		NoteID   string
		Start    float64
		Duration float64
		Key      uint8
		Velocity uint8
	}
	MoveNote struct {
		TrackID   string
		ClipID    string
		NoteID    string
		DeltaTime float64
		DeltaKey  int
	}
	SetNoteVelocity struct {
		TrackID  string
		ClipID   string
		NoteID   string
		Velocity uint8
	}
	QuantizeNotes struct {
		TrackID string
		ClipID  string
		NoteIDs []string
		Options supersaw.QuantizeOptions
		Rand    *rand.Rand // optional, used when Options.Humanize != 0
	}
	EditNoteVelocities struct {
		TrackID string
		ClipID  string
		NoteIDs []string
		Edit    supersaw.VelocityEdit
		Rand    *rand.Rand // optional, used when Edit.Randomize != 0
	}

	// Automation commands.

	AddAutomationLane struct {
		ID        string // generated when empty
		TrackID   string
		Parameter supersaw.Parameter
	}
	RemoveAutomationLane struct {
		TrackID string
		LaneID  string
	}
	ToggleAutomationLane struct {
		TrackID string
		LaneID  string
	}
	SetAutomationLaneVisibility struct {
		TrackID string
		LaneID  string
		Visible bool
		Height  float64 // 0 keeps the current height
	}
	AddAutomationPoint struct {
		TrackID string
		LaneID  string
		PointID string // generated when empty
		Time    float64
		Value   float64
	}
	UpdateAutomationPoint struct {
		TrackID string
		LaneID  string
		PointID string
		Time    *float64
		Value   *float64
	}
	SetAutomationCurve struct {
		TrackID string
		LaneID  string
		PointID string
		Curve   supersaw.CurveType
		Tension float64
	}
	RemoveAutomationPoint struct {
		TrackID string
		LaneID  string
		PointID string
	}
	ClearAutomationRange struct {
		TrackID string
		LaneID  string
		Start   float64
		End     float64
	}

	// Transport and editor commands. These delegate to the live Transport
	// and are not undoable in any meaningful sense, but routing them through
	// Execute keeps the protocol closed.

	Play           struct{}
	StopPlayback   struct{}
	PausePlayback  struct{}
	Seek           struct{ Position float64 }
	SetBPM         struct{ BPM float64 }
	SetLoopRegion  struct{ Start, End float64 }
	SetLoopEnabled struct{ Enabled bool }

	SetSnapMode     struct{ Mode supersaw.SnapMode }
	ToggleMetronome struct{}
	ToggleRecording struct{}

	SelectTrack struct{ TrackID string }
	SelectClip  struct {
		TrackID string
		ClipID  string
	}
	DeselectAll   struct{}
	RenameProject struct{ Name string }
)

func (NoOp) CommandName() string                  { return "NoOp" }
func (AddTrack) CommandName() string              { return "AddTrack" }
func (RemoveTrack) CommandName() string           { return "RemoveTrack" }
func (RenameTrack) CommandName() string           { return "RenameTrack" }
func (SetTrackColor) CommandName() string         { return "SetTrackColor" }
func (SetTrackChannel) CommandName() string       { return "SetTrackChannel" }
func (ToggleTrackMute) CommandName() string       { return "ToggleTrackMute" }
func (ToggleTrackSolo) CommandName() string       { return "ToggleTrackSolo" }
func (ToggleTrackArm) CommandName() string        { return "ToggleTrackArm" }
func (ReorderTrack) CommandName() string          { return "ReorderTrack" }
func (AddMIDIClip) CommandName() string           { return "AddMIDIClip" }
func (AddAudioClip) CommandName() string          { return "AddAudioClip" }
func (RemoveClip) CommandName() string            { return "RemoveClip" }
func (MoveClip) CommandName() string              { return "MoveClip" }
func (ResizeClip) CommandName() string            { return "ResizeClip" }
func (RenameClip) CommandName() string            { return "RenameClip" }
func (AddNote) CommandName() string               { return "AddNote" }
func (DeleteNote) CommandName() string            { return "DeleteNote" }
func (UpdateNote) CommandName() string            { return "UpdateNote" }
func (MoveNote) CommandName() string              { return "MoveNote" }
func (SetNoteVelocity) CommandName() string       { return "SetNoteVelocity" }
func (QuantizeNotes) CommandName() string         { return "QuantizeNotes" }
func (EditNoteVelocities) CommandName() string    { return "EditNoteVelocities" }
func (AddAutomationLane) CommandName() string     { return "AddAutomationLane" }
func (RemoveAutomationLane) CommandName() string  { return "RemoveAutomationLane" }
func (ToggleAutomationLane) CommandName() string  { return "ToggleAutomationLane" }
func (AddAutomationPoint) CommandName() string    { return "AddAutomationPoint" }
func (UpdateAutomationPoint) CommandName() string { return "UpdateAutomationPoint" }
func (SetAutomationCurve) CommandName() string    { return "SetAutomationCurve" }
func (RemoveAutomationPoint) CommandName() string { return "RemoveAutomationPoint" }
func (ClearAutomationRange) CommandName() string  { return "ClearAutomationRange" }
func (Play) CommandName() string                  { return "Play" }
func (StopPlayback) CommandName() string          { return "StopPlayback" }
func (PausePlayback) CommandName() string         { return "PausePlayback" }
func (Seek) CommandName() string                  { return "Seek" }
func (SetBPM) CommandName() string                { return "SetBPM" }
func (SetLoopRegion) CommandName() string         { return "SetLoopRegion" }
func (SetLoopEnabled) CommandName() string        { return "SetLoopEnabled" }
func (SetSnapMode) CommandName() string           { return "SetSnapMode" }
func (ToggleMetronome) CommandName() string       { return "ToggleMetronome" }
func (ToggleRecording) CommandName() string       { return "ToggleRecording" }
func (SelectTrack) CommandName() string           { return "SelectTrack" }
func (SelectClip) CommandName() string            { return "SelectClip" }
func (DeselectAll) CommandName() string           { return "DeselectAll" }
func (RenameProject) CommandName() string         { return "RenameProject" }

func (SetAutomationLaneVisibility) CommandName() string { return "SetAutomationLaneVisibility" }

func (NoOp) isCommand()                  {}
func (AddTrack) isCommand()              {}
func (RemoveTrack) isCommand()           {}
func (RenameTrack) isCommand()           {}
func (SetTrackColor) isCommand()         {}
func (SetTrackChannel) isCommand()       {}
func (ToggleTrackMute) isCommand()       {}
func (ToggleTrackSolo) isCommand()       {}
func (ToggleTrackArm) isCommand()        {}
func (ReorderTrack) isCommand()          {}
func (AddMIDIClip) isCommand()           {}
func (AddAudioClip) isCommand()          {}
func (RemoveClip) isCommand()            {}
func (MoveClip) isCommand()              {}
func (ResizeClip) isCommand()            {}
func (RenameClip) isCommand()            {}
func (AddNote) isCommand()               {}
func (DeleteNote) isCommand()            {}
func (UpdateNote) isCommand()            {}
func (MoveNote) isCommand()              {}
func (SetNoteVelocity) isCommand()       {}
func (QuantizeNotes) isCommand()         {}
func (EditNoteVelocities) isCommand()    {}
func (AddAutomationLane) isCommand()     {}
func (RemoveAutomationLane) isCommand()  {}
func (ToggleAutomationLane) isCommand()  {}
func (AddAutomationPoint) isCommand()    {}
func (UpdateAutomationPoint) isCommand() {}
func (SetAutomationCurve) isCommand()    {}
func (RemoveAutomationPoint) isCommand() {}
func (ClearAutomationRange) isCommand()  {}
func (Play) isCommand()                  {}
func (StopPlayback) isCommand()          {}
func (PausePlayback) isCommand()         {}
func (Seek) isCommand()                  {}
func (SetBPM) isCommand()                {}
func (SetLoopRegion) isCommand()         {}
func (SetLoopEnabled) isCommand()        {}
func (SetSnapMode) isCommand()           {}
func (ToggleMetronome) isCommand()       {}
func (ToggleRecording) isCommand()       {}
func (SelectTrack) isCommand()           {}
func (SelectClip) isCommand()            {}
func (DeselectAll) isCommand()           {}
func (RenameProject) isCommand()         {}

func (SetAutomationLaneVisibility) isCommand() {}

// Mutates reports whether the command changes the project document. Commands
// that only touch the live transport or the selection are skipped by the
// undo machinery.
func Mutates(cmd Command) bool {
	switch cmd.(type) {
	case NoOp, Play, StopPlayback, PausePlayback, Seek, SetBPM,
		SetLoopRegion, SetLoopEnabled, SetSnapMode, ToggleMetronome,
		ToggleRecording, SelectTrack, SelectClip, DeselectAll:
		return false
	}
	return true
}
