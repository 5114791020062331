package events

import (
	"context"
	"sync"
)

// Publisher delivers events to the notification stream. Services call Emit
// while still holding their write lock, so the event for one mutation is on
// the stream before the next mutation can commit.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// Sink is the persistence side of the stream. It is append-only.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// MemorySink records events in order; doubles as the test observer.
type MemorySink struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// List returns emitted events in emission order.
func (s *MemorySink) List() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event(nil), s.events...)
}

// SinkPublisher writes events straight to a sink. The default wiring for
// local runs and tests; the Kafka publisher replaces it in deployments.
type SinkPublisher struct {
	sink Sink
}

func NewSinkPublisher(sink Sink) *SinkPublisher {
	return &SinkPublisher{sink: sink}
}

func (p *SinkPublisher) Emit(ctx context.Context, event Event) error {
	return p.sink.Append(ctx, event)
}

// NopPublisher drops events; used where eventing is not configured.
type NopPublisher struct{}

func (NopPublisher) Emit(context.Context, Event) error { return nil }
