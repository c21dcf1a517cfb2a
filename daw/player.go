package daw

import (
	"time"

	"gitlab.com/gomidi/midi/v2"

	"supersaw"
)

// Sender sends live MIDI messages to an output device.
type Sender interface {
	Send(msg midi.Message) error
}

const lookAhead = 50 * time.Millisecond

// Player follows the transport and streams the project's events to a
// Sender. It runs in its own goroutine: every look-ahead window it gathers
// the events due in that window, sleeps until each instant and sends. When
// the transport is not playing it idles. Closing the player silences all
// channels.
type Player struct {
	closer   chan struct{}
	finished chan struct{}
}

// NewPlayer starts a player over the state. The state's project pointer is
// read each window, so document edits and undo are picked up on the fly.
func NewPlayer(s *State, out Sender) *Player {
	p := &Player{
		closer:   make(chan struct{}, 1),
		finished: make(chan struct{}),
	}
	go p.run(s, out)
	return p
}

func (p *Player) run(s *State, out Sender) {
	defer close(p.finished)
	defer silence(out)
	for {
		select {
		case <-p.closer:
			return
		default:
		}
		if !s.Transport.Playing() {
			time.Sleep(lookAhead / 5)
			continue
		}
		windowStart := s.Transport.Position()
		wallStart := time.Now()
		windowEnd := windowStart + lookAhead.Seconds()
		for _, e := range s.Project.EventsInRange(windowStart, windowEnd) {
			due := wallStart.Add(time.Duration((e.Time - windowStart) * float64(time.Second)))
			if d := time.Until(due); d > 0 {
				select {
				case <-p.closer:
					return
				case <-time.After(d):
				}
			}
			if !s.Transport.Playing() {
				break
			}
			if msg, ok := supersaw.MIDIMessage(e.Message); ok {
				if err := out.Send(msg); err != nil {
					s.Status.Error("sending midi: %v", err)
				}
			}
		}
		if rest := lookAhead - time.Since(wallStart); rest > 0 {
			select {
			case <-p.closer:
				return
			case <-time.After(rest):
			}
		}
	}
}

// Close stops the player, waiting briefly for the goroutine to clean up.
func (p *Player) Close() {
	TrySend(p.closer, struct{}{})
	TimeoutReceive(p.finished, 3*time.Second)
}

// silence sends All Notes Off and All Sound Off on every channel.
func silence(out Sender) {
	for ch := uint8(0); ch < 16; ch++ {
		out.Send(midi.ControlChange(ch, 123, 0))
		out.Send(midi.ControlChange(ch, 120, 0))
	}
}
