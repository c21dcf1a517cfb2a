package daw

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStatus() (*StatusManager, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	s := NewStatusManager()
	s.now = clock.now
	return s, clock
}

func TestStatusCurrentAndExpiry(t *testing.T) {
	s, clock := newTestStatus()
	_, ok := s.Current()
	assert.False(t, ok)

	s.Info("loaded %d clips", 3)
	msg, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "loaded 3 clips", msg.Text)
	assert.Equal(t, StatusInfo, msg.Level)

	clock.advance(statusDuration)
	_, ok = s.Current()
	assert.False(t, ok)
}

func TestStatusLevels(t *testing.T) {
	s, _ := newTestStatus()
	s.Error("boom")
	msg, _ := s.Current()
	assert.Equal(t, StatusError, msg.Level)
	s.Success("done")
	msg, _ = s.Current()
	assert.Equal(t, StatusSuccess, msg.Level)
}

func TestStatusClear(t *testing.T) {
	s, _ := newTestStatus()
	s.Warning("careful")
	s.Clear()
	_, ok := s.Current()
	assert.False(t, ok)
}

func TestStatusSubscribe(t *testing.T) {
	s, _ := newTestStatus()
	c := s.Subscribe()
	s.Info("hello")
	msg, ok := TimeoutReceive(c, time.Second)
	require.True(t, ok)
	assert.Equal(t, "hello", msg.Text)
}
