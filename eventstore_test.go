package supersaw

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTickToTimeSingleTempo(t *testing.T) {
	s := NewEventStore(480)
	// 120 BPM: one quarter note is half a second
	assert.Equal(t, 0.5, s.TickToTime(480))
	assert.Equal(t, 2.0, s.TickToTime(4*480))
	assert.Equal(t, uint32(480), s.TimeToTick(0.5))
	assert.Equal(t, uint32(0), s.TimeToTick(-1))
}

func TestTickToTimeAccumulatesSegments(t *testing.T) {
	s := NewEventStore(480)
	s.SetTempo(480, 250000) // 240 BPM from beat 1
	// beat 0 at 120 BPM takes 0.5 s, the next beats 0.25 s each
	assert.InDelta(t, 0.5, s.TickToTime(480), 1e-9)
	assert.InDelta(t, 0.75, s.TickToTime(960), 1e-9)
	assert.InDelta(t, 1.0, s.TickToTime(1440), 1e-9)
	assert.Equal(t, uint32(960), s.TimeToTick(0.75))
	assert.Equal(t, uint32(1440), s.TimeToTick(1.0))
}

func TestTimeToTickRoundTrip(t *testing.T) {
	s := NewEventStore(960)
	s.SetTempo(960, 400000)
	s.SetTempo(3840, 600000)
	for _, tick := range []uint32{0, 1, 959, 960, 961, 3839, 3840, 10000} {
		assert.Equal(t, tick, s.TimeToTick(s.TickToTime(tick)), "tick %d", tick)
	}
}

func TestAddNoteCreatesPairedEvents(t *testing.T) {
	s := NewEventStore(480)
	s.AddNote(Note{ID: "n1", Channel: 2, Key: 60, Velocity: 100, StartTime: 1, Duration: 0.5, StartTick: 960, DurationTicks: 480})

	on, ok := s.Event("n1_on")
	assert.True(t, ok)
	assert.Equal(t, NoteOn{Channel: 2, Key: 60, Velocity: 100}, on.Message)
	assert.Equal(t, 1.0, on.Time)

	off, ok := s.Event("n1_off")
	assert.True(t, ok)
	assert.Equal(t, NoteOff{Channel: 2, Key: 60, Velocity: 0}, off.Message)
	assert.Equal(t, 1.5, off.Time)
	assert.Equal(t, uint32(1440), off.Tick)
}

func TestDeleteNoteRemovesBothEvents(t *testing.T) {
	s := NewEventStore(480)
	s.AddNote(Note{ID: "n1", Key: 60, Velocity: 100, StartTime: 0, Duration: 1, DurationTicks: 960})
	s.DeleteNote("n1")
	assert.Equal(t, 0, s.EventCount())
	assert.Equal(t, 0, s.NoteCount())
	s.DeleteNote("no-such-note") // ignored
}

func TestUpdateNoteRecomputesTicks(t *testing.T) {
	s := NewEventStore(480)
	s.AddNote(Note{ID: "n1", Key: 60, Velocity: 100, StartTime: 0, Duration: 0.5, DurationTicks: 480})
	s.UpdateNote("n1", 1.0, 1.0, 62, 90)
	n, ok := s.Note("n1")
	assert.True(t, ok)
	assert.Equal(t, uint32(960), n.StartTick)
	assert.Equal(t, uint32(960), n.DurationTicks)
	assert.Equal(t, uint8(62), n.Key)
	on, _ := s.Event("n1_on")
	assert.Equal(t, NoteOn{Key: 62, Velocity: 90}, on.Message)
}

func TestUpdateNoteIgnoresNonPositiveDuration(t *testing.T) {
	s := NewEventStore(480)
	s.AddNote(Note{ID: "n1", Key: 60, Velocity: 100, StartTime: 1, Duration: 0.5, StartTick: 960, DurationTicks: 480})
	s.UpdateNote("n1", 1.0, -0.5, 60, 100)
	s.UpdateNote("n1", 1.0, 0, 60, 100)
	n, _ := s.Note("n1")
	assert.Equal(t, 0.5, n.Duration)
	assert.Equal(t, uint32(480), n.DurationTicks)
	on, _ := s.Event("n1_on")
	off, _ := s.Event("n1_off")
	assert.Greater(t, off.Tick, on.Tick)
}

func TestMoveNoteClamps(t *testing.T) {
	s := NewEventStore(480)
	s.AddNote(Note{ID: "n1", Key: 2, Velocity: 100, StartTime: 0.25, Duration: 0.5, StartTick: 240, DurationTicks: 480})
	s.MoveNote("n1", -10, -10)
	n, _ := s.Note("n1")
	assert.Equal(t, 0.0, n.StartTime)
	assert.Equal(t, uint8(0), n.Key)
}

func TestUpdateNoteVelocityClampsAndRewritesEvent(t *testing.T) {
	s := NewEventStore(480)
	s.AddNote(Note{ID: "n1", Key: 60, Velocity: 100, StartTime: 0, Duration: 1, DurationTicks: 960})
	s.UpdateNoteVelocity("n1", 200)
	n, _ := s.Note("n1")
	assert.Equal(t, uint8(127), n.Velocity)
	on, _ := s.Event("n1_on")
	assert.Equal(t, uint8(127), on.Message.(NoteOn).Velocity)
}

func TestEventsInRangeHalfOpen(t *testing.T) {
	s := NewEventStore(480)
	for i, tm := range []float64{0, 0.5, 1, 1.5, 2} {
		s.AddEvent(Event{ID: string(rune('a' + i)), Time: tm, Tick: uint32(i), Message: Clock{}})
	}
	got := s.EventsInRange(0.5, 1.5)
	assert.Len(t, got, 2)
	assert.Equal(t, 0.5, got[0].Time)
	assert.Equal(t, 1.0, got[1].Time)

	assert.Len(t, s.EventsInTickRange(1, 4), 3)
}

func TestNotesInRangeOverlap(t *testing.T) {
	s := NewEventStore(480)
	s.AddNote(Note{ID: "a", Key: 60, StartTime: 0, Duration: 1, DurationTicks: 960})
	s.AddNote(Note{ID: "b", Key: 61, StartTime: 2, Duration: 1, StartTick: 1920, DurationTicks: 960})
	got := s.NotesInRange(0.5, 2.0)
	assert.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
}

func TestAddEventReplacesSameID(t *testing.T) {
	s := NewEventStore(480)
	s.AddEvent(Event{ID: "x", Time: 1, Tick: 960, Message: Clock{}})
	s.AddEvent(Event{ID: "x", Time: 2, Tick: 1920, Message: Clock{}})
	assert.Equal(t, 1, s.EventCount())
	e, _ := s.Event("x")
	assert.Equal(t, 2.0, e.Time)
	assert.Equal(t, 2.0, s.LastEventTime())
}

func TestCopyIsDeep(t *testing.T) {
	s := NewEventStore(480)
	s.AddNote(Note{ID: "n1", Key: 60, Velocity: 100, StartTime: 0, Duration: 1, DurationTicks: 960})
	c := s.Copy()
	c.UpdateNoteVelocity("n1", 10)
	c.SetTempo(480, 250000)
	n, _ := s.Note("n1")
	assert.Equal(t, uint8(100), n.Velocity)
	assert.Len(t, s.TempoMap(), 1)
}
