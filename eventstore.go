package supersaw

import (
	"math"
	"sort"
)

type (
	// EventStore holds the timed MIDI events of one clip or track, indexed
	// both by wall-clock time and by tick so that either axis can be queried
	// without scanning. It also owns the tempo map and time signatures that
	// define the tick <-> seconds relation.
	//
	// EventStore is a value type in the sense of the rest of this package:
	// it is not safe for concurrent use, and Copy returns a deep clone.
	EventStore struct {
		events map[string]Event
		notes  map[string]Note

		byTime []timeBucket
		byTick []tickBucket

		tempo  []TempoChange
		meters []TimeSignature
		ppq    uint16
	}

	timeBucket struct {
		time float64
		ids  []string
	}

	tickBucket struct {
		tick uint32
		ids  []string
	}
)

// NewEventStore returns an empty store at the given resolution, with a single
// 120 BPM tempo entry at tick 0. A ppq of 0 falls back to DefaultPPQ.
func NewEventStore(ppq uint16) *EventStore {
	if ppq == 0 {
		ppq = DefaultPPQ
	}
	return &EventStore{
		events: make(map[string]Event),
		notes:  make(map[string]Note),
		tempo:  []TempoChange{{Tick: 0, Tempo: DefaultTempo}},
		ppq:    ppq,
	}
}

// PPQ returns the store's resolution in ticks per quarter note.
func (s *EventStore) PPQ() uint16 { return s.ppq }

// Copy returns a deep clone that shares no mutable state with s.
func (s *EventStore) Copy() *EventStore {
	c := &EventStore{
		events: make(map[string]Event, len(s.events)),
		notes:  make(map[string]Note, len(s.notes)),
		byTime: make([]timeBucket, len(s.byTime)),
		byTick: make([]tickBucket, len(s.byTick)),
		tempo:  append([]TempoChange(nil), s.tempo...),
		meters: append([]TimeSignature(nil), s.meters...),
		ppq:    s.ppq,
	}
	for id, e := range s.events {
		if sx, ok := e.Message.(SysEx); ok {
			e.Message = SysEx{Data: append([]byte(nil), sx.Data...)}
		}
		c.events[id] = e
	}
	for id, n := range s.notes {
		c.notes[id] = n
	}
	for i, b := range s.byTime {
		c.byTime[i] = timeBucket{time: b.time, ids: append([]string(nil), b.ids...)}
	}
	for i, b := range s.byTick {
		c.byTick[i] = tickBucket{tick: b.tick, ids: append([]string(nil), b.ids...)}
	}
	return c
}

// AddEvent stores e, replacing any previous event with the same id.
func (s *EventStore) AddEvent(e Event) {
	if _, ok := s.events[e.ID]; ok {
		s.removeIndexed(e.ID)
	}
	s.events[e.ID] = e
	s.indexEvent(e)
}

// Event returns the event with the given id.
func (s *EventStore) Event(id string) (Event, bool) {
	e, ok := s.events[id]
	return e, ok
}

// RemoveEvent deletes the event with the given id. Unknown ids are ignored.
func (s *EventStore) RemoveEvent(id string) {
	if _, ok := s.events[id]; !ok {
		return
	}
	s.removeIndexed(id)
	delete(s.events, id)
}

// EventCount returns the number of stored events.
func (s *EventStore) EventCount() int { return len(s.events) }

// Events returns all events ordered by time, events at the same instant in
// insertion order.
func (s *EventStore) Events() []Event {
	out := make([]Event, 0, len(s.events))
	for _, b := range s.byTime {
		for _, id := range b.ids {
			out = append(out, s.events[id])
		}
	}
	return out
}

// EventsInRange returns the events with start <= Time < end, ordered by time.
func (s *EventStore) EventsInRange(start, end float64) []Event {
	var out []Event
	i := sort.Search(len(s.byTime), func(i int) bool { return s.byTime[i].time >= start })
	for ; i < len(s.byTime) && s.byTime[i].time < end; i++ {
		for _, id := range s.byTime[i].ids {
			out = append(out, s.events[id])
		}
	}
	return out
}

// EventsInTickRange returns the events with start <= Tick < end, ordered by
// tick.
func (s *EventStore) EventsInTickRange(start, end uint32) []Event {
	var out []Event
	i := sort.Search(len(s.byTick), func(i int) bool { return s.byTick[i].tick >= start })
	for ; i < len(s.byTick) && s.byTick[i].tick < end; i++ {
		for _, id := range s.byTick[i].ids {
			out = append(out, s.events[id])
		}
	}
	return out
}

// LastEventTime returns the time of the latest event, or 0 for an empty
// store.
func (s *EventStore) LastEventTime() float64 {
	if len(s.byTime) == 0 {
		return 0
	}
	return s.byTime[len(s.byTime)-1].time
}

// AddNote stores a note as a paired note-on/note-off event. The events get
// the ids id+"_on" and id+"_off".
func (s *EventStore) AddNote(n Note) {
	s.notes[n.ID] = n
	s.AddEvent(Event{
		ID:      n.ID + "_on",
		Time:    n.StartTime,
		Tick:    n.StartTick,
		Message: NoteOn{Channel: n.Channel, Key: n.Key, Velocity: n.Velocity},
	})
	s.AddEvent(Event{
		ID:      n.ID + "_off",
		Time:    n.EndTime(),
		Tick:    n.StartTick + n.DurationTicks,
		Message: NoteOff{Channel: n.Channel, Key: n.Key, Velocity: 0},
	})
}

// Note returns the note with the given id.
func (s *EventStore) Note(id string) (Note, bool) {
	n, ok := s.notes[id]
	return n, ok
}

// Notes returns all notes ordered by start time, then id.
func (s *EventStore) Notes() []Note {
	out := make([]Note, 0, len(s.notes))
	for _, n := range s.notes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// NoteCount returns the number of stored notes.
func (s *EventStore) NoteCount() int { return len(s.notes) }

// DeleteNote removes a note and both of its events. Unknown ids are ignored.
func (s *EventStore) DeleteNote(id string) {
	if _, ok := s.notes[id]; !ok {
		return
	}
	s.RemoveEvent(id + "_on")
	s.RemoveEvent(id + "_off")
	delete(s.notes, id)
}

// UpdateNote rewrites a note in place, recomputing its events. Unknown ids
// and non-positive durations are ignored.
func (s *EventStore) UpdateNote(id string, start, duration float64, key, velocity uint8) {
	n, ok := s.notes[id]
	if !ok || duration <= 0 {
		return
	}
	n.StartTime = start
	n.Duration = duration
	n.Key = key
	n.Velocity = velocity
	n.StartTick = s.TimeToTick(start)
	n.DurationTicks = s.TimeToTick(start+duration) - n.StartTick
	s.DeleteNote(id)
	s.AddNote(n)
}

// MoveNote shifts a note in time and pitch. The new start is clamped at 0 and
// the key at the MIDI range. Unknown ids are ignored.
func (s *EventStore) MoveNote(id string, deltaTime float64, deltaKey int) {
	n, ok := s.notes[id]
	if !ok {
		return
	}
	start := math.Max(0, n.StartTime+deltaTime)
	key := clampInt(int(n.Key)+deltaKey, 0, 127)
	s.UpdateNote(id, start, n.Duration, uint8(key), n.Velocity)
}

// UpdateNoteVelocity sets a note's velocity, clamped to 1..127, and rewrites
// the stored note-on event to match. Unknown ids are ignored.
func (s *EventStore) UpdateNoteVelocity(id string, velocity uint8) {
	n, ok := s.notes[id]
	if !ok {
		return
	}
	if velocity < 1 {
		velocity = 1
	} else if velocity > 127 {
		velocity = 127
	}
	n.Velocity = velocity
	s.notes[id] = n
	if e, ok := s.events[id+"_on"]; ok {
		if on, ok := e.Message.(NoteOn); ok {
			on.Velocity = velocity
			e.Message = on
			s.events[id+"_on"] = e
		}
	}
}

// NotesInRange returns the notes overlapping [start, end), ordered by start
// time.
func (s *EventStore) NotesInRange(start, end float64) []Note {
	var out []Note
	for _, n := range s.notes {
		if n.StartTime < end && n.EndTime() > start {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// SetTempo adds or replaces a tempo map entry. A tempo of 0 is ignored.
func (s *EventStore) SetTempo(tick, tempo uint32) {
	if tempo == 0 {
		return
	}
	i := sort.Search(len(s.tempo), func(i int) bool { return s.tempo[i].Tick >= tick })
	if i < len(s.tempo) && s.tempo[i].Tick == tick {
		s.tempo[i].Tempo = tempo
		return
	}
	s.tempo = append(s.tempo, TempoChange{})
	copy(s.tempo[i+1:], s.tempo[i:])
	s.tempo[i] = TempoChange{Tick: tick, Tempo: tempo}
}

// TempoMap returns the tempo entries ordered by tick. The slice is shared;
// callers must not mutate it.
func (s *EventStore) TempoMap() []TempoChange { return s.tempo }

// SetTimeSignature adds or replaces a meter entry at the given tick.
func (s *EventStore) SetTimeSignature(tick uint32, num, denom uint8) {
	if num == 0 || denom == 0 {
		return
	}
	i := sort.Search(len(s.meters), func(i int) bool { return s.meters[i].Tick >= tick })
	if i < len(s.meters) && s.meters[i].Tick == tick {
		s.meters[i].Numerator = num
		s.meters[i].Denominator = denom
		return
	}
	s.meters = append(s.meters, TimeSignature{})
	copy(s.meters[i+1:], s.meters[i:])
	s.meters[i] = TimeSignature{Tick: tick, Numerator: num, Denominator: denom}
}

// TimeSignatures returns the meter entries ordered by tick. The slice is
// shared; callers must not mutate it.
func (s *EventStore) TimeSignatures() []TimeSignature { return s.meters }

// TickToTime converts a tick to seconds, accumulating the duration of every
// tempo segment the tick crosses.
func (s *EventStore) TickToTime(tick uint32) float64 {
	var secs float64
	for i, tc := range s.tempo {
		segEnd := tick
		if i+1 < len(s.tempo) && s.tempo[i+1].Tick < tick {
			segEnd = s.tempo[i+1].Tick
		}
		if segEnd <= tc.Tick {
			break
		}
		secs += float64(segEnd-tc.Tick) * s.secondsPerTick(tc.Tempo)
		if segEnd == tick {
			break
		}
	}
	return secs
}

// TimeToTick converts seconds to the nearest tick, walking the tempo map the
// same way TickToTime does so the two stay consistent.
func (s *EventStore) TimeToTick(t float64) uint32 {
	if t <= 0 {
		return 0
	}
	var secs float64
	for i, tc := range s.tempo {
		spt := s.secondsPerTick(tc.Tempo)
		if i+1 < len(s.tempo) {
			next := s.tempo[i+1]
			segSecs := float64(next.Tick-tc.Tick) * spt
			if secs+segSecs < t {
				secs += segSecs
				continue
			}
		}
		return tc.Tick + uint32(math.Round((t-secs)/spt))
	}
	return 0
}

func (s *EventStore) secondsPerTick(tempo uint32) float64 {
	return float64(tempo) / 1e6 / float64(s.ppq)
}

func (s *EventStore) indexEvent(e Event) {
	i := sort.Search(len(s.byTime), func(i int) bool { return s.byTime[i].time >= e.Time })
	if i < len(s.byTime) && s.byTime[i].time == e.Time {
		s.byTime[i].ids = append(s.byTime[i].ids, e.ID)
	} else {
		s.byTime = append(s.byTime, timeBucket{})
		copy(s.byTime[i+1:], s.byTime[i:])
		s.byTime[i] = timeBucket{time: e.Time, ids: []string{e.ID}}
	}
	j := sort.Search(len(s.byTick), func(j int) bool { return s.byTick[j].tick >= e.Tick })
	if j < len(s.byTick) && s.byTick[j].tick == e.Tick {
		s.byTick[j].ids = append(s.byTick[j].ids, e.ID)
	} else {
		s.byTick = append(s.byTick, tickBucket{})
		copy(s.byTick[j+1:], s.byTick[j:])
		s.byTick[j] = tickBucket{tick: e.Tick, ids: []string{e.ID}}
	}
}

func (s *EventStore) removeIndexed(id string) {
	e := s.events[id]
	i := sort.Search(len(s.byTime), func(i int) bool { return s.byTime[i].time >= e.Time })
	if i < len(s.byTime) && s.byTime[i].time == e.Time {
		s.byTime[i].ids = removeString(s.byTime[i].ids, id)
		if len(s.byTime[i].ids) == 0 {
			s.byTime = append(s.byTime[:i], s.byTime[i+1:]...)
		}
	}
	j := sort.Search(len(s.byTick), func(j int) bool { return s.byTick[j].tick >= e.Tick })
	if j < len(s.byTick) && s.byTick[j].tick == e.Tick {
		s.byTick[j].ids = removeString(s.byTick[j].ids, id)
		if len(s.byTick[j].ids) == 0 {
			s.byTick = append(s.byTick[:j], s.byTick[j+1:]...)
		}
	}
}

func removeString(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
