package daw

import (
	"math"
	"sync"
	"sync/atomic"
	"time"
)

type (
	// Transport is the playback clock. Position is derived, not stored: while
	// playing it is the baseline position plus the wall clock time elapsed
	// since the baseline was captured, so there is no ticking goroutine and
	// reads are cheap. Every state change rebases the baseline.
	//
	// Transport is safe for concurrent use. State changes broadcast
	// TransportEvents to all subscribers; a subscriber that stops draining
	// its channel misses events instead of blocking the clock.
	Transport struct {
		playing     atomic.Bool
		loopEnabled atomic.Bool

		mu       sync.Mutex
		position float64 // position at baseline
		baseline time.Time
		bpm      float64
		loop     LoopRegion

		subMu sync.Mutex
		subs  []chan TransportEvent

		now func() time.Time
	}

	// LoopRegion is a playback loop in seconds, start inclusive.
	LoopRegion struct {
		Start float64
		End   float64
	}

	// TransportEvent is a state change notification. The set of events is
	// closed; subscribers switch on the concrete type.
	TransportEvent interface {
		transportEvent()
	}

	Started           struct{ Position float64 }
	Stopped           struct{}
	Paused            struct{ Position float64 }
	PositionChanged   struct{ Position float64 }
	LoopRegionChanged struct {
		Region  LoopRegion
		Enabled bool
	}
	TempoChanged struct{ BPM float64 }
)

func (Started) transportEvent()           {}
func (Stopped) transportEvent()           {}
func (Paused) transportEvent()            {}
func (PositionChanged) transportEvent()   {}
func (LoopRegionChanged) transportEvent() {}
func (TempoChanged) transportEvent()      {}

// Length returns the loop duration in seconds.
func (r LoopRegion) Length() float64 { return r.End - r.Start }

// Contains reports whether pos lies inside the loop.
func (r LoopRegion) Contains(pos float64) bool { return pos >= r.Start && pos < r.End }

// NewTransport returns a stopped transport at position 0 and 120 BPM.
func NewTransport() *Transport {
	return &Transport{bpm: 120, now: time.Now}
}

// Playing reports whether the transport is running.
func (t *Transport) Playing() bool { return t.playing.Load() }

// BPM returns the current tempo.
func (t *Transport) BPM() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bpm
}

// SetBPM sets the tempo. Non-positive values are ignored. The baseline is
// rebased so the position does not jump.
func (t *Transport) SetBPM(bpm float64) {
	if bpm <= 0 {
		return
	}
	t.mu.Lock()
	t.rebase()
	t.bpm = bpm
	t.mu.Unlock()
	t.broadcast(TempoChanged{BPM: bpm})
}

// Position returns the playhead position in seconds, applying loop wrapping
// when the loop is enabled.
func (t *Transport) Position() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.positionLocked()
}

func (t *Transport) positionLocked() float64 {
	pos := t.position
	if t.playing.Load() {
		pos += t.now().Sub(t.baseline).Seconds()
	}
	if t.loopEnabled.Load() && pos >= t.loop.End && t.loop.Length() > 0 {
		pos = t.loop.Start + math.Mod(pos-t.loop.Start, t.loop.Length())
		// Rebase so the wrapped position becomes the new baseline and the
		// modulo stays numerically small.
		t.position = pos
		t.baseline = t.now()
	}
	return pos
}

// rebase folds elapsed time into position. Callers hold mu.
func (t *Transport) rebase() {
	t.position = t.positionLocked()
	t.baseline = t.now()
}

// Play starts the clock from the current position. Playing again while
// already playing only rebases.
func (t *Transport) Play() {
	t.mu.Lock()
	t.rebase()
	wasPlaying := t.playing.Swap(true)
	pos := t.position
	t.mu.Unlock()
	if !wasPlaying {
		t.broadcast(Started{Position: pos})
	}
}

// Stop halts the clock and resets the position to 0.
func (t *Transport) Stop() {
	t.mu.Lock()
	t.playing.Store(false)
	t.position = 0
	t.baseline = t.now()
	t.mu.Unlock()
	t.broadcast(Stopped{})
}

// Pause halts the clock, keeping the position.
func (t *Transport) Pause() {
	t.mu.Lock()
	t.rebase()
	wasPlaying := t.playing.Swap(false)
	pos := t.position
	t.mu.Unlock()
	if wasPlaying {
		t.broadcast(Paused{Position: pos})
	}
}

// Seek moves the playhead. Negative positions clamp to 0. Seeking outside an
// enabled loop disables the loop.
func (t *Transport) Seek(pos float64) {
	pos = math.Max(0, pos)
	t.mu.Lock()
	t.position = pos
	t.baseline = t.now()
	loopDisabled := false
	if t.loopEnabled.Load() && !t.loop.Contains(pos) {
		t.loopEnabled.Store(false)
		loopDisabled = true
	}
	loop, enabled := t.loop, t.loopEnabled.Load()
	t.mu.Unlock()
	t.broadcast(PositionChanged{Position: pos})
	if loopDisabled {
		t.broadcast(LoopRegionChanged{Region: loop, Enabled: enabled})
	}
}

// Loop returns the loop region and whether it is enabled.
func (t *Transport) Loop() (LoopRegion, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loop, t.loopEnabled.Load()
}

// SetLoop sets the loop region. Inverted or empty regions are ignored.
func (t *Transport) SetLoop(start, end float64) {
	if end <= start || start < 0 {
		return
	}
	t.mu.Lock()
	t.rebase()
	t.loop = LoopRegion{Start: start, End: end}
	region, enabled := t.loop, t.loopEnabled.Load()
	t.mu.Unlock()
	t.broadcast(LoopRegionChanged{Region: region, Enabled: enabled})
}

// SetLoopEnabled switches looping on or off. Enabling with an empty region
// is ignored.
func (t *Transport) SetLoopEnabled(enabled bool) {
	t.mu.Lock()
	if enabled && t.loop.Length() <= 0 {
		t.mu.Unlock()
		return
	}
	t.rebase()
	t.loopEnabled.Store(enabled)
	region := t.loop
	t.mu.Unlock()
	t.broadcast(LoopRegionChanged{Region: region, Enabled: enabled})
}

// Subscribe registers a new event listener. The channel is buffered; events
// overflowing the buffer are dropped for that subscriber.
func (t *Transport) Subscribe() <-chan TransportEvent {
	c := make(chan TransportEvent, 64)
	t.subMu.Lock()
	t.subs = append(t.subs, c)
	t.subMu.Unlock()
	return c
}

func (t *Transport) broadcast(e TransportEvent) {
	t.subMu.Lock()
	defer t.subMu.Unlock()
	for _, c := range t.subs {
		TrySend(c, e)
	}
}
