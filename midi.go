package supersaw

import "fmt"

type (
	// Message is a single MIDI message, stored inside an Event. The set of
	// message types is closed: consumers switch exhaustively on the concrete
	// type and there is no way to register new ones, mirroring the fixed
	// protocol the sequencer speaks.
	Message interface {
		message()
	}

	NoteOn struct {
		Channel  uint8
		Key      uint8
		Velocity uint8
	}

	NoteOff struct {
		Channel  uint8
		Key      uint8
		Velocity uint8
	}

	ControlChange struct {
		Channel    uint8
		Controller uint8
		Value      uint8
	}

	ProgramChange struct {
		Channel uint8
		Program uint8
	}

	// PitchBend value is relative, -8192 to +8191.
	PitchBend struct {
		Channel uint8
		Value   int16
	}

	// Aftertouch is polyphonic (per-key) pressure.
	Aftertouch struct {
		Channel  uint8
		Key      uint8
		Pressure uint8
	}

	SysEx struct {
		Data []byte
	}

	Clock    struct{}
	Start    struct{}
	Stop     struct{}
	Continue struct{}
)

func (NoteOn) message()        {}
func (NoteOff) message()       {}
func (ControlChange) message() {}
func (ProgramChange) message() {}
func (PitchBend) message()     {}
func (Aftertouch) message()    {}
func (SysEx) message()         {}
func (Clock) message()         {}
func (Start) message()         {}
func (Stop) message()          {}
func (Continue) message()      {}

// Event is a single timed MIDI event. Time is seconds from the start of the
// owning store; Tick is the same instant on the musical grid. Events are
// immutable once stored, except through the store's note operations.
type Event struct {
	ID      string
	Time    float64
	Tick    uint32
	Message Message
}

// Note is a convenience view over a paired note-on/note-off event. Every
// stored note has exactly one on event (id suffixed "_on") and one off event
// (id suffixed "_off"); EventStore.AddNote is the only path that creates
// notes, which is what keeps the pairing intact.
type Note struct {
	ID            string
	Channel       uint8
	Key           uint8
	Velocity      uint8
	StartTime     float64
	Duration      float64
	StartTick     uint32
	DurationTicks uint32
}

// EndTime returns the time the note's off event fires.
func (n Note) EndTime() float64 {
	return n.StartTime + n.Duration
}

// TempoChange sets the tempo, in microseconds per quarter note, from Tick
// onwards. The tempo map is ordered ascending by tick and always contains an
// entry at tick 0.
type TempoChange struct {
	Tick  uint32
	Tempo uint32
}

// BPM returns the tempo in beats per minute.
func (tc TempoChange) BPM() float64 {
	return 60e6 / float64(tc.Tempo)
}

// TimeSignature sets the meter from Tick onwards. Denominator is the actual
// note value (4, 8, ...), not the power-of-two wire encoding.
type TimeSignature struct {
	Tick        uint32
	Numerator   uint8
	Denominator uint8
}

const (
	// DefaultTempo is 120 BPM in microseconds per quarter note.
	DefaultTempo = 500000
	// DefaultPPQ is the default time resolution in ticks per quarter note.
	DefaultPPQ = 480
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName returns the scientific name of a MIDI key, e.g. 60 -> "C4".
func NoteName(key uint8) string {
	return fmt.Sprintf("%s%d", noteNames[key%12], int(key)/12-1)
}
