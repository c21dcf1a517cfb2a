package supersaw

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMFRoundTrip(t *testing.T) {
	s := NewEventStore(480)
	s.SetTempo(0, 400000) // 150 BPM
	s.SetTimeSignature(0, 3, 4)
	s.AddNote(Note{
		ID: "n1", Channel: 1, Key: 60, Velocity: 100,
		StartTime: s.TickToTime(480), Duration: s.TickToTime(960) - s.TickToTime(480),
		StartTick: 480, DurationTicks: 480,
	})
	s.AddEvent(Event{ID: "cc1", Time: s.TickToTime(240), Tick: 240, Message: ControlChange{Channel: 1, Controller: 74, Value: 90}})
	s.AddEvent(Event{ID: "pb1", Time: s.TickToTime(600), Tick: 600, Message: PitchBend{Channel: 1, Value: -1024}})

	path := filepath.Join(t.TempDir(), "roundtrip.mid")
	require.NoError(t, s.SaveSMF(path))

	loaded, err := LoadSMF(path)
	require.NoError(t, err)

	assert.Equal(t, uint16(480), loaded.PPQ())
	require.Len(t, loaded.TempoMap(), 1)
	assert.Equal(t, uint32(400000), loaded.TempoMap()[0].Tempo)
	require.Len(t, loaded.TimeSignatures(), 1)
	assert.Equal(t, uint8(3), loaded.TimeSignatures()[0].Numerator)

	notes := loaded.Notes()
	require.Len(t, notes, 1)
	assert.Equal(t, uint8(60), notes[0].Key)
	assert.Equal(t, uint8(100), notes[0].Velocity)
	assert.Equal(t, uint8(1), notes[0].Channel)
	assert.Equal(t, uint32(480), notes[0].StartTick)
	assert.Equal(t, uint32(480), notes[0].DurationTicks)

	var cc, pb int
	for _, e := range loaded.Events() {
		switch m := e.Message.(type) {
		case ControlChange:
			cc++
			assert.Equal(t, uint8(74), m.Controller)
			assert.Equal(t, uint32(240), e.Tick)
		case PitchBend:
			pb++
			assert.Equal(t, int16(-1024), m.Value)
		}
	}
	assert.Equal(t, 1, cc)
	assert.Equal(t, 1, pb)
}

func TestLoadSMFClosesDanglingNotes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dangling.mid")
	s := NewEventStore(480)
	// a lone note-on, no matching off
	s.AddEvent(Event{ID: "on", Time: 0, Tick: 0, Message: NoteOn{Key: 64, Velocity: 80}})
	require.NoError(t, s.SaveSMF(path))

	loaded, err := LoadSMF(path)
	require.NoError(t, err)
	notes := loaded.Notes()
	require.Len(t, notes, 1)
	assert.Equal(t, uint8(64), notes[0].Key)
	assert.Greater(t, notes[0].DurationTicks, uint32(0))
}

func TestLoadSMFMissingFile(t *testing.T) {
	_, err := LoadSMF(filepath.Join(t.TempDir(), "missing.mid"))
	assert.Error(t, err)
}

func TestMIDIMessageSkipsRealtime(t *testing.T) {
	_, ok := MIDIMessage(Clock{})
	assert.False(t, ok)
	_, ok = MIDIMessage(NoteOn{Key: 60, Velocity: 100})
	assert.True(t, ok)
}
