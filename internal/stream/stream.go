package stream

import (
	"context"
	"sync"
	"time"
)

// MarkEvent describes one committed attendance submission, fanned out to
// dashboard subscribers.
type MarkEvent struct {
	ClassID   int64     `json:"class_id"`
	ClassName string    `json:"class_name,omitempty"`
	TeacherID int64     `json:"teacher_id"`
	Date      string    `json:"date"`
	Present   int       `json:"present"`
	Absent    int       `json:"absent"`
	Timestamp time.Time `json:"timestamp"`
}

// Stream fan-outs mark events to all active subscribers (SSE clients).
type Stream struct {
	mu   sync.RWMutex
	subs map[int]chan MarkEvent
	next int
}

// New initialises an empty stream.
func New() *Stream {
	return &Stream{subs: make(map[int]chan MarkEvent)}
}

// Subscribe registers a subscriber and returns a channel which will receive
// events. The channel is closed when the provided context ends.
func (s *Stream) Subscribe(ctx context.Context) <-chan MarkEvent {
	ch := make(chan MarkEvent, 16)

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

// Publish fan-outs the event to all subscribers.
func (s *Stream) Publish(evt MarkEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- evt:
		default:
			// Drop when subscriber is slow to avoid blocking.
		}
	}
}
