package daw

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests move time by hand.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newFakeTransport() (*Transport, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	tr := NewTransport()
	tr.now = clock.now
	return tr, clock
}

func TestTransportStartsStopped(t *testing.T) {
	tr, _ := newFakeTransport()
	assert.False(t, tr.Playing())
	assert.Equal(t, 0.0, tr.Position())
	assert.Equal(t, 120.0, tr.BPM())
}

func TestTransportPlayAdvancesPosition(t *testing.T) {
	tr, clock := newFakeTransport()
	tr.Play()
	clock.advance(2 * time.Second)
	assert.InDelta(t, 2.0, tr.Position(), 1e-9)
	clock.advance(500 * time.Millisecond)
	assert.InDelta(t, 2.5, tr.Position(), 1e-9)
}

func TestTransportPauseFreezesStopResets(t *testing.T) {
	tr, clock := newFakeTransport()
	tr.Play()
	clock.advance(time.Second)
	tr.Pause()
	clock.advance(time.Hour)
	assert.InDelta(t, 1.0, tr.Position(), 1e-9)
	tr.Stop()
	assert.Equal(t, 0.0, tr.Position())
}

func TestTransportSeek(t *testing.T) {
	tr, clock := newFakeTransport()
	tr.Seek(10)
	assert.Equal(t, 10.0, tr.Position())
	tr.Seek(-5)
	assert.Equal(t, 0.0, tr.Position())
	tr.Play()
	clock.advance(time.Second)
	tr.Seek(3)
	assert.InDelta(t, 3.0, tr.Position(), 1e-9)
	clock.advance(time.Second)
	assert.InDelta(t, 4.0, tr.Position(), 1e-9)
}

func TestTransportLoopWraps(t *testing.T) {
	tr, clock := newFakeTransport()
	tr.SetLoop(2, 6)
	tr.SetLoopEnabled(true)
	tr.Play()
	clock.advance(7 * time.Second) // 7 s from 0: wraps at 6 back to 2 + 1
	assert.InDelta(t, 3.0, tr.Position(), 1e-9)
	// keeps advancing from the wrapped position
	clock.advance(time.Second)
	assert.InDelta(t, 4.0, tr.Position(), 1e-9)
}

func TestTransportSeekOutsideLoopDisablesIt(t *testing.T) {
	tr, _ := newFakeTransport()
	tr.SetLoop(2, 6)
	tr.SetLoopEnabled(true)
	tr.Seek(10)
	_, enabled := tr.Loop()
	assert.False(t, enabled)
	tr.Seek(3)
	_, enabled = tr.Loop()
	assert.False(t, enabled) // seeking back in does not re-enable
}

func TestTransportRejectsBadRegionsAndTempo(t *testing.T) {
	tr, _ := newFakeTransport()
	tr.SetLoop(5, 5)
	tr.SetLoop(6, 2)
	region, _ := tr.Loop()
	assert.Equal(t, 0.0, region.Length())
	tr.SetLoopEnabled(true) // empty region, ignored
	_, enabled := tr.Loop()
	assert.False(t, enabled)

	tr.SetBPM(0)
	tr.SetBPM(-60)
	assert.Equal(t, 120.0, tr.BPM())
	tr.SetBPM(0.5) // slow drone tempos are fine
	assert.Equal(t, 0.5, tr.BPM())
}

func TestTransportEvents(t *testing.T) {
	tr, clock := newFakeTransport()
	events := tr.Subscribe()

	tr.Play()
	clock.advance(time.Second)
	tr.Pause()
	tr.Seek(5)
	tr.SetBPM(90)
	tr.SetLoop(0, 4)
	tr.Stop()

	e, ok := TimeoutReceive(events, time.Second)
	require.True(t, ok)
	assert.Equal(t, Started{Position: 0}, e)

	e, _ = TimeoutReceive(events, time.Second)
	assert.Equal(t, Paused{Position: 1}, e)

	e, _ = TimeoutReceive(events, time.Second)
	assert.Equal(t, PositionChanged{Position: 5}, e)

	e, _ = TimeoutReceive(events, time.Second)
	assert.Equal(t, TempoChanged{BPM: 90}, e)

	e, _ = TimeoutReceive(events, time.Second)
	assert.Equal(t, LoopRegionChanged{Region: LoopRegion{Start: 0, End: 4}}, e)

	e, _ = TimeoutReceive(events, time.Second)
	assert.Equal(t, Stopped{}, e)
}

func TestTransportSlowSubscriberDoesNotBlock(t *testing.T) {
	tr, _ := newFakeTransport()
	tr.Subscribe() // never drained
	for i := 0; i < 200; i++ {
		tr.Seek(float64(i))
	}
	// reaching here at all is the point; the channel overflowed silently
	assert.Equal(t, 199.0, tr.Position())
}
