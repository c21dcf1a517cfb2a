package daw

import (
	"fmt"
	"sync"
	"time"
)

// StatusLevel is the severity of a status message.
type StatusLevel int

const (
	StatusInfo StatusLevel = iota
	StatusSuccess
	StatusWarning
	StatusError
)

const statusDuration = 3 * time.Second

// StatusMessage is one transient message shown to the user.
type StatusMessage struct {
	Text     string
	Level    StatusLevel
	Time     time.Time
	Duration time.Duration
}

// Expired reports whether the message should no longer be shown at now.
func (m StatusMessage) Expired(now time.Time) bool {
	return now.Sub(m.Time) >= m.Duration
}

// StatusManager holds the latest status message and fans it out to
// subscribers. It is the one place everything in the model reports progress
// and failures to, so a frontend only needs to watch one channel.
type StatusManager struct {
	mu      sync.Mutex
	current StatusMessage
	hasMsg  bool
	subs    []chan StatusMessage

	now func() time.Time
}

// NewStatusManager returns an empty manager.
func NewStatusManager() *StatusManager {
	return &StatusManager{now: time.Now}
}

// Set replaces the current message.
func (s *StatusManager) Set(level StatusLevel, format string, args ...any) {
	msg := StatusMessage{
		Text:     fmt.Sprintf(format, args...),
		Level:    level,
		Time:     s.now(),
		Duration: statusDuration,
	}
	s.mu.Lock()
	s.current = msg
	s.hasMsg = true
	subs := s.subs
	s.mu.Unlock()
	for _, c := range subs {
		TrySend(c, msg)
	}
}

func (s *StatusManager) Info(format string, args ...any)    { s.Set(StatusInfo, format, args...) }
func (s *StatusManager) Success(format string, args ...any) { s.Set(StatusSuccess, format, args...) }
func (s *StatusManager) Warning(format string, args ...any) { s.Set(StatusWarning, format, args...) }
func (s *StatusManager) Error(format string, args ...any)   { s.Set(StatusError, format, args...) }

// Current returns the active message, if one is set and not yet expired.
func (s *StatusManager) Current() (StatusMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasMsg || s.current.Expired(s.now()) {
		return StatusMessage{}, false
	}
	return s.current, true
}

// Clear drops the current message.
func (s *StatusManager) Clear() {
	s.mu.Lock()
	s.hasMsg = false
	s.mu.Unlock()
}

// Subscribe registers a buffered listener channel. Messages overflowing the
// buffer are dropped for that subscriber.
func (s *StatusManager) Subscribe() <-chan StatusMessage {
	c := make(chan StatusMessage, 16)
	s.mu.Lock()
	s.subs = append(s.subs, c)
	s.mu.Unlock()
	return c
}
