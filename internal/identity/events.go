package identity

import (
	"sync"

	"github.com/pairlog/pairlog/internal/model"
)

const eventBuffer = 16

// eventStream carries session-state events to a single subscriber as
// one ordered sequence. Events published while nobody is subscribed
// are discarded.
type eventStream struct {
	mu sync.Mutex
	ch chan model.SessionEvent
}

func newEventStream() *eventStream {
	return &eventStream{}
}

func (s *eventStream) subscribe() (<-chan model.SessionEvent, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ch != nil {
		close(s.ch)
	}
	ch := make(chan model.SessionEvent, eventBuffer)
	s.ch = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.ch == ch {
			close(s.ch)
			s.ch = nil
		}
	}
	return ch, cancel
}

// publish appends an event to the stream. It never blocks: when the
// subscriber has fallen behind by a full buffer the event is dropped.
func (s *eventStream) publish(event model.SessionEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ch == nil {
		return false
	}
	select {
	case s.ch <- event:
		return true
	default:
		return false
	}
}
