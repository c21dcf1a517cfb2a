package supersaw

import (
	"fmt"
	"math"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// LoadSMF reads a standard MIDI file into a new EventStore. All tracks are
// merged onto one timeline. Note-on/note-off pairs become notes; a note-on
// with velocity 0 closes the note like a note-off does, and notes still open
// at the end of their track are closed there.
func LoadSMF(path string) (*EventStore, error) {
	f, err := smf.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	ticks, ok := f.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("%s: unsupported time format %v", path, f.TimeFormat)
	}
	store := NewEventStore(ticks.Resolution())

	type openNote struct {
		id       string
		tick     uint32
		velocity uint8
	}
	nextID := 0
	newID := func(prefix string) string {
		nextID++
		return fmt.Sprintf("%s_%d", prefix, nextID)
	}

	// Tempo and meter metas first, so that event times below see the full
	// tempo map regardless of which track carries it.
	for _, tr := range f.Tracks {
		var tick uint32
		for _, ev := range tr {
			tick += ev.Delta
			var bpm float64
			var num, denom uint8
			switch {
			case ev.Message.GetMetaTempo(&bpm):
				store.SetTempo(tick, uint32(math.Round(60e6/bpm)))
			case ev.Message.GetMetaMeter(&num, &denom):
				store.SetTimeSignature(tick, num, denom)
			}
		}
	}

	for _, tr := range f.Tracks {
		open := make(map[[2]uint8]openNote)
		var tick uint32
		for _, ev := range tr {
			tick += ev.Delta
			var ch, key, vel, ctrl, val, prog, press uint8
			var rel int16
			var abs uint16
			var data []byte
			msg := ev.Message
			switch {
			case msg.GetNoteStart(&ch, &key, &vel):
				if prev, ok := open[[2]uint8{ch, key}]; ok {
					store.finishNote(prev.id, ch, key, prev.velocity, prev.tick, tick)
				}
				open[[2]uint8{ch, key}] = openNote{id: newID("note"), tick: tick, velocity: vel}
			case msg.GetNoteEnd(&ch, &key):
				if prev, ok := open[[2]uint8{ch, key}]; ok {
					store.finishNote(prev.id, ch, key, prev.velocity, prev.tick, tick)
					delete(open, [2]uint8{ch, key})
				}
			case msg.GetControlChange(&ch, &ctrl, &val):
				store.addImported(newID("cc"), tick, ControlChange{Channel: ch, Controller: ctrl, Value: val})
			case msg.GetProgramChange(&ch, &prog):
				store.addImported(newID("pc"), tick, ProgramChange{Channel: ch, Program: prog})
			case msg.GetPitchBend(&ch, &rel, &abs):
				store.addImported(newID("pb"), tick, PitchBend{Channel: ch, Value: rel})
			case msg.GetPolyAfterTouch(&ch, &key, &press):
				store.addImported(newID("at"), tick, Aftertouch{Channel: ch, Key: key, Pressure: press})
			case msg.GetSysEx(&data):
				store.addImported(newID("sx"), tick, SysEx{Data: append([]byte(nil), data...)})
			}
		}
		// Close anything the file left hanging at the end of the track.
		for pos, prev := range open {
			end := tick
			if end <= prev.tick {
				end = prev.tick + 1
			}
			store.finishNote(prev.id, pos[0], pos[1], prev.velocity, prev.tick, end)
		}
	}
	return store, nil
}

func (s *EventStore) addImported(id string, tick uint32, m Message) {
	s.AddEvent(Event{ID: id, Time: s.TickToTime(tick), Tick: tick, Message: m})
}

func (s *EventStore) finishNote(id string, ch, key, vel uint8, start, end uint32) {
	startTime := s.TickToTime(start)
	s.AddNote(Note{
		ID:            id,
		Channel:       ch,
		Key:           key,
		Velocity:      vel,
		StartTime:     startTime,
		Duration:      s.TickToTime(end) - startTime,
		StartTick:     start,
		DurationTicks: end - start,
	})
}

// SaveSMF writes the store as a single-track format 0 file. Events are
// delta-encoded in tick order, preceded by the tempo and meter metas.
func (s *EventStore) SaveSMF(path string) error {
	f := smf.New()
	f.TimeFormat = smf.MetricTicks(s.ppq)

	type timed struct {
		tick uint32
		msg  []byte
	}
	var all []timed
	for _, tc := range s.tempo {
		all = append(all, timed{tick: tc.Tick, msg: smf.MetaTempo(tc.BPM())})
	}
	for _, ts := range s.meters {
		all = append(all, timed{tick: ts.Tick, msg: smf.MetaMeter(ts.Numerator, ts.Denominator)})
	}
	for _, e := range s.Events() {
		m, ok := MIDIMessage(e.Message)
		if !ok {
			continue
		}
		all = append(all, timed{tick: e.Tick, msg: m})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].tick < all[j].tick })

	var tr smf.Track
	var prev uint32
	for _, t := range all {
		tr.Add(t.tick-prev, t.msg)
		prev = t.tick
	}
	tr.Close(0)
	if err := f.Add(tr); err != nil {
		return fmt.Errorf("building track: %w", err)
	}
	if err := f.WriteFile(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// MIDIMessage converts a Message to its wire form. Realtime messages and
// anything else without a file representation return ok == false for the
// caller to skip; the realtime types are still sendable live through
// midi.Message constructors at the call sites that need them.
func MIDIMessage(m Message) (midi.Message, bool) {
	switch m := m.(type) {
	case NoteOn:
		return midi.NoteOn(m.Channel, m.Key, m.Velocity), true
	case NoteOff:
		return midi.NoteOffVelocity(m.Channel, m.Key, m.Velocity), true
	case ControlChange:
		return midi.ControlChange(m.Channel, m.Controller, m.Value), true
	case ProgramChange:
		return midi.ProgramChange(m.Channel, m.Program), true
	case PitchBend:
		return midi.Pitchbend(m.Channel, m.Value), true
	case Aftertouch:
		return midi.PolyAfterTouch(m.Channel, m.Key, m.Pressure), true
	case SysEx:
		return midi.SysEx(m.Data), true
	}
	return nil, false
}
