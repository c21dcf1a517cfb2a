package daw

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/gomidi/midi/v2"
)

type recordingSender struct {
	mu   sync.Mutex
	msgs []midi.Message
}

func (r *recordingSender) Send(msg midi.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return nil
}

func (r *recordingSender) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

func (r *recordingSender) noteOns() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	var ch, key, vel uint8
	for _, m := range r.msgs {
		if m.GetNoteStart(&ch, &key, &vel) {
			n++
		}
	}
	return n
}

func TestPlayerSendsEventsWhilePlaying(t *testing.T) {
	s := stateWithClip(t)
	require.NoError(t, Execute(AddNote{TrackID: "t1", ClipID: "c1", NoteID: "n1", Key: 60, Velocity: 100, Start: 0, Duration: 0.05}, s))

	out := &recordingSender{}
	player := NewPlayer(s, out)
	defer player.Close()

	s.Transport.Play()
	deadline := time.Now().Add(2 * time.Second)
	for out.noteOns() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	s.Transport.Stop()
	assert.Equal(t, 1, out.noteOns())
}

func TestPlayerIdlesWhenStopped(t *testing.T) {
	s := stateWithClip(t)
	require.NoError(t, Execute(AddNote{TrackID: "t1", ClipID: "c1", NoteID: "n1", Key: 60, Velocity: 100, Start: 0, Duration: 0.05}, s))

	out := &recordingSender{}
	player := NewPlayer(s, out)
	defer player.Close()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, out.count())
}

func TestPlayerCloseSilences(t *testing.T) {
	s := NewState("test")
	out := &recordingSender{}
	player := NewPlayer(s, out)
	player.Close()

	out.mu.Lock()
	defer out.mu.Unlock()
	// All Notes Off and All Sound Off on all 16 channels
	assert.Len(t, out.msgs, 32)
	var ch, ctrl, val uint8
	require.True(t, out.msgs[0].GetControlChange(&ch, &ctrl, &val))
	assert.Equal(t, uint8(123), ctrl)
}
