package events

import (
	"sync"
	"sync/atomic"

	"github.com/kelindar/event"
)

// Stream funnels events of several types into one channel for a single
// reader, such as an SSE handler. Publishers never block on it: an event
// that finds the channel full is counted and dropped.
type Stream struct {
	C <-chan Event

	ch      chan Event
	dropped atomic.Uint64

	mu     sync.Mutex
	unsubs []func()
}

// NewStream creates a stream buffering up to size events.
func NewStream(size int) *Stream {
	ch := make(chan Event, size)
	return &Stream{C: ch, ch: ch}
}

// Forward subscribes s to events of type T on bus.
func Forward[T Event](bus *Bus, s *Stream) {
	unsub := event.Subscribe(bus.dispatcher, func(e T) {
		select {
		case s.ch <- e:
		default:
			s.dropped.Add(1)
		}
	})
	s.mu.Lock()
	s.unsubs = append(s.unsubs, unsub)
	s.mu.Unlock()
}

// Dropped returns how many events were lost to a full buffer.
func (s *Stream) Dropped() uint64 {
	return s.dropped.Load()
}

// Close detaches the stream from every bus it was forwarded from. C is
// left open so a pending reader is not woken with a zero value.
func (s *Stream) Close() {
	s.mu.Lock()
	unsubs := s.unsubs
	s.unsubs = nil
	s.mu.Unlock()
	for _, unsub := range unsubs {
		unsub()
	}
}
