package engine

import (
	"sync"
	"time"
)

// session advances one message's playback position until it ends or is
// halted.
type session struct {
	id   string
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func startSession(p Producer, msg Message, from, tick time.Duration) *session {
	s := &session{
		id:   msg.ID,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go s.run(p, msg, from, tick)
	return s
}

func (s *session) run(p Producer, msg Message, pos, tick time.Duration) {
	defer close(s.done)

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			pos += tick
			if pos >= msg.Length {
				p.StopPlayback(msg.ID)
				return
			}
			p.UpdatePlaying(msg.ID, pos, float64(pos)/float64(msg.Length))
		}
	}
}

// halt stops the session and waits for its last update to be reported.
func (s *session) halt() {
	s.once.Do(func() { close(s.stop) })
	<-s.done
}

func (s *session) finished() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}
