package daw

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"supersaw"
)

// Execute applies cmd to the state. Commands addressing ids that no longer
// exist do nothing and return nil, so replaying a command stream over a
// changed document stays safe. Errors are reserved for commands that are
// structurally invalid.
func Execute(cmd Command, s *State) error {
	switch cmd := cmd.(type) {
	case NoOp:

	case AddTrack:
		id := cmd.ID
		if id == "" {
			id = uuid.NewString()
		}
		t := &supersaw.Track{ID: id, Name: cmd.Name, Type: cmd.Type, Channel: 0}
		if t.Type == "" {
			t.Type = supersaw.TrackMIDI
		}
		s.Project.Tracks = append(s.Project.Tracks, t)
	case RemoveTrack:
		for i, t := range s.Project.Tracks {
			if t.ID == cmd.TrackID {
				s.Project.Tracks = append(s.Project.Tracks[:i], s.Project.Tracks[i+1:]...)
				if s.SelectedTrack == cmd.TrackID {
					s.SelectedTrack = ""
					s.SelectedClip = ""
				}
				break
			}
		}
	case RenameTrack:
		if t, ok := s.Project.Track(cmd.TrackID); ok {
			t.Name = cmd.Name
		}
	case SetTrackColor:
		if t, ok := s.Project.Track(cmd.TrackID); ok {
			t.Color = cmd.Color
		}
	case SetTrackChannel:
		if cmd.Channel > 15 {
			return fmt.Errorf("channel %d out of range", cmd.Channel)
		}
		if t, ok := s.Project.Track(cmd.TrackID); ok {
			t.Channel = cmd.Channel
		}
	case ToggleTrackMute:
		if t, ok := s.Project.Track(cmd.TrackID); ok {
			t.Muted = !t.Muted
		}
	case ToggleTrackSolo:
		if t, ok := s.Project.Track(cmd.TrackID); ok {
			solo := !t.Solo
			for _, other := range s.Project.Tracks {
				other.Solo = false
			}
			t.Solo = solo
		}
	case ToggleTrackArm:
		if t, ok := s.Project.Track(cmd.TrackID); ok {
			t.Armed = !t.Armed
		}
	case ReorderTrack:
		tracks := s.Project.Tracks
		from := -1
		for i, t := range tracks {
			if t.ID == cmd.TrackID {
				from = i
				break
			}
		}
		if from < 0 {
			break
		}
		to := cmd.Index
		if to < 0 {
			to = 0
		} else if to >= len(tracks) {
			to = len(tracks) - 1
		}
		t := tracks[from]
		tracks = append(tracks[:from], tracks[from+1:]...)
		tracks = append(tracks[:to], append([]*supersaw.Track{t}, tracks[to:]...)...)
		s.Project.Tracks = tracks

	case AddMIDIClip:
		t, ok := s.Project.Track(cmd.TrackID)
		if !ok {
			break
		}
		if cmd.Duration <= 0 {
			return fmt.Errorf("clip duration must be positive, got %v", cmd.Duration)
		}
		id := cmd.ID
		if id == "" {
			id = uuid.NewString()
		}
		t.Clips = append(t.Clips, &supersaw.Clip{
			ID:        id,
			Name:      cmd.Name,
			Type:      supersaw.ClipMIDI,
			StartTime: math.Max(0, cmd.StartTime),
			Duration:  cmd.Duration,
			Events:    supersaw.NewEventStore(s.Project.PPQ),
		})
	case AddAudioClip:
		t, ok := s.Project.Track(cmd.TrackID)
		if !ok {
			break
		}
		if cmd.Duration <= 0 {
			return fmt.Errorf("clip duration must be positive, got %v", cmd.Duration)
		}
		id := cmd.ID
		if id == "" {
			id = uuid.NewString()
		}
		t.Clips = append(t.Clips, &supersaw.Clip{
			ID:        id,
			Name:      cmd.Name,
			Type:      supersaw.ClipAudio,
			FilePath:  cmd.FilePath,
			StartTime: math.Max(0, cmd.StartTime),
			Duration:  cmd.Duration,
		})
	case RemoveClip:
		t, ok := s.Project.Track(cmd.TrackID)
		if !ok {
			break
		}
		for i, c := range t.Clips {
			if c.ID == cmd.ClipID {
				t.Clips = append(t.Clips[:i], t.Clips[i+1:]...)
				if s.SelectedClip == cmd.ClipID {
					s.SelectedClip = ""
				}
				break
			}
		}
	case MoveClip:
		if c, ok := trackClip(s, cmd.TrackID, cmd.ClipID); ok {
			c.StartTime = math.Max(0, cmd.StartTime)
		}
	case ResizeClip:
		if cmd.Duration <= 0 {
			return fmt.Errorf("clip duration must be positive, got %v", cmd.Duration)
		}
		if c, ok := trackClip(s, cmd.TrackID, cmd.ClipID); ok {
			c.Duration = cmd.Duration
		}
	case RenameClip:
		if c, ok := trackClip(s, cmd.TrackID, cmd.ClipID); ok {
			c.Name = cmd.Name
		}

	case AddNote:
		c, ok := midiClip(s, cmd.TrackID, cmd.ClipID)
		if !ok {
			break
		}
		if cmd.Key > 127 {
			return fmt.Errorf("key %d out of range", cmd.Key)
		}
		if cmd.Velocity > 127 {
			return fmt.Errorf("velocity %d out of range", cmd.Velocity)
		}
		if cmd.Duration <= 0 {
			return fmt.Errorf("note duration must be positive, got %v", cmd.Duration)
		}
		id := cmd.NoteID
		if id == "" {
			id = uuid.NewString()
		}
		start := math.Max(0, cmd.Start)
		startTick := c.Events.TimeToTick(start)
		c.Events.AddNote(supersaw.Note{
			ID:            id,
			Channel:       trackChannel(s, cmd.TrackID),
			Key:           cmd.Key,
			Velocity:      cmd.Velocity,
			StartTime:     start,
			Duration:      cmd.Duration,
			StartTick:     startTick,
			DurationTicks: c.Events.TimeToTick(start+cmd.Duration) - startTick,
		})
	case DeleteNote:
		if c, ok := midiClip(s, cmd.TrackID, cmd.ClipID); ok {
			c.Events.DeleteNote(cmd.NoteID)
		}
	case UpdateNote:
		c, ok := midiClip(s, cmd.TrackID, cmd.ClipID)
		if !ok {
			break
		}
		if cmd.Duration <= 0 {
			return fmt.Errorf("note duration must be positive, got %v", cmd.Duration)
		}
		c.Events.UpdateNote(cmd.NoteID, math.Max(0, cmd.Start), cmd.Duration, cmd.Key, cmd.Velocity)
	case MoveNote:
		if c, ok := midiClip(s, cmd.TrackID, cmd.ClipID); ok {
			c.Events.MoveNote(cmd.NoteID, cmd.DeltaTime, cmd.DeltaKey)
		}
	case SetNoteVelocity:
		if c, ok := midiClip(s, cmd.TrackID, cmd.ClipID); ok {
			c.Events.UpdateNoteVelocity(cmd.NoteID, cmd.Velocity)
		}
	case QuantizeNotes:
		if c, ok := midiClip(s, cmd.TrackID, cmd.ClipID); ok {
			c.Events.Quantize(cmd.NoteIDs, s.Project.BPM, cmd.Options, cmd.Rand)
		}
	case EditNoteVelocities:
		if c, ok := midiClip(s, cmd.TrackID, cmd.ClipID); ok {
			c.Events.EditVelocities(cmd.NoteIDs, cmd.Edit, cmd.Rand)
		}

	case AddAutomationLane:
		t, ok := s.Project.Track(cmd.TrackID)
		if !ok {
			break
		}
		id := cmd.ID
		if id == "" {
			id = uuid.NewString()
		}
		t.Automation = append(t.Automation, supersaw.NewAutomationLane(id, cmd.Parameter))
	case RemoveAutomationLane:
		t, ok := s.Project.Track(cmd.TrackID)
		if !ok {
			break
		}
		for i, l := range t.Automation {
			if l.ID == cmd.LaneID {
				t.Automation = append(t.Automation[:i], t.Automation[i+1:]...)
				break
			}
		}
	case ToggleAutomationLane:
		if l, ok := trackLane(s, cmd.TrackID, cmd.LaneID); ok {
			l.Enabled = !l.Enabled
		}
	case SetAutomationLaneVisibility:
		if l, ok := trackLane(s, cmd.TrackID, cmd.LaneID); ok {
			l.Visible = cmd.Visible
			if cmd.Height > 0 {
				l.Height = cmd.Height
			}
		}
	case AddAutomationPoint:
		l, ok := trackLane(s, cmd.TrackID, cmd.LaneID)
		if !ok {
			break
		}
		id := cmd.PointID
		if id == "" {
			id = uuid.NewString()
		}
		l.AddPoint(id, cmd.Time, cmd.Value)
	case UpdateAutomationPoint:
		if l, ok := trackLane(s, cmd.TrackID, cmd.LaneID); ok {
			l.UpdatePoint(cmd.PointID, cmd.Time, cmd.Value)
		}
	case SetAutomationCurve:
		if l, ok := trackLane(s, cmd.TrackID, cmd.LaneID); ok {
			l.SetPointCurve(cmd.PointID, cmd.Curve, cmd.Tension)
		}
	case RemoveAutomationPoint:
		if l, ok := trackLane(s, cmd.TrackID, cmd.LaneID); ok {
			l.RemovePoint(cmd.PointID)
		}
	case ClearAutomationRange:
		if l, ok := trackLane(s, cmd.TrackID, cmd.LaneID); ok {
			l.ClearRange(cmd.Start, cmd.End)
		}

	case Play:
		s.Transport.Play()
	case StopPlayback:
		s.Transport.Stop()
	case PausePlayback:
		s.Transport.Pause()
	case Seek:
		s.Transport.Seek(cmd.Position)
	case SetBPM:
		s.Transport.SetBPM(cmd.BPM)
		if cmd.BPM > 0 {
			s.Project.BPM = cmd.BPM
		}
	case SetLoopRegion:
		s.Transport.SetLoop(cmd.Start, cmd.End)
	case SetLoopEnabled:
		s.Transport.SetLoopEnabled(cmd.Enabled)

	case SetSnapMode:
		s.SnapMode = cmd.Mode
	case ToggleMetronome:
		s.Metronome = !s.Metronome
	case ToggleRecording:
		s.Recording = !s.Recording
	case SelectTrack:
		if _, ok := s.Project.Track(cmd.TrackID); ok {
			s.SelectedTrack = cmd.TrackID
			s.SelectedClip = ""
		}
	case SelectClip:
		if _, ok := trackClip(s, cmd.TrackID, cmd.ClipID); ok {
			s.SelectedTrack = cmd.TrackID
			s.SelectedClip = cmd.ClipID
		}
	case DeselectAll:
		s.SelectedTrack = ""
		s.SelectedClip = ""
	case RenameProject:
		s.Project.Name = cmd.Name

	default:
		return fmt.Errorf("unknown command %T", cmd)
	}
	return nil
}

func trackClip(s *State, trackID, clipID string) (*supersaw.Clip, bool) {
	t, ok := s.Project.Track(trackID)
	if !ok {
		return nil, false
	}
	return t.Clip(clipID)
}

func midiClip(s *State, trackID, clipID string) (*supersaw.Clip, bool) {
	c, ok := trackClip(s, trackID, clipID)
	if !ok || c.Type != supersaw.ClipMIDI || c.Events == nil {
		return nil, false
	}
	return c, true
}

func trackLane(s *State, trackID, laneID string) (*supersaw.AutomationLane, bool) {
	t, ok := s.Project.Track(trackID)
	if !ok {
		return nil, false
	}
	return t.Lane(laneID)
}

func trackChannel(s *State, trackID string) uint8 {
	if t, ok := s.Project.Track(trackID); ok {
		return t.Channel
	}
	return 0
}
