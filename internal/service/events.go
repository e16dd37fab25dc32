package service

import (
	"sync"

	"github.com/timmy/socialkit/internal/domain"
)

// EventType names a session state change.
type EventType string

const (
	EventBatchStarted        EventType = "batch_started"
	EventItemCompleted       EventType = "item_completed"
	EventBatchCompleted      EventType = "batch_completed"
	EventBatchFailed         EventType = "batch_failed"
	EventRegenerateStarted   EventType = "regenerate_started"
	EventRegenerateCompleted EventType = "regenerate_completed"
	EventRegenerateFailed    EventType = "regenerate_failed"
	EventReset               EventType = "reset"
)

// Event is published to session subscribers after each observable change.
type Event struct {
	Type      EventType               `json:"type"`
	SessionID string                  `json:"session_id"`
	Status    domain.GenerationStatus `json:"status"`
	Result    *domain.GeneratedResult `json:"result,omitempty"`
	ResultID  string                  `json:"result_id,omitempty"`
	Error     string                  `json:"error,omitempty"`
}

// broadcaster fans events out to subscribers without blocking the publisher.
type broadcaster struct {
	mu      sync.Mutex
	subs    map[int]chan Event
	next    int
	buffer  int
	dropped int
}

func newBroadcaster(buffer int) *broadcaster {
	if buffer <= 0 {
		buffer = 32
	}
	return &broadcaster{subs: make(map[int]chan Event), buffer: buffer}
}

func (b *broadcaster) subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan Event, b.buffer)
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
		})
	}
}

// publish returns the number of subscribers that missed e because their buffer was full.
func (b *broadcaster) publish(e Event) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	missed := 0
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			missed++
		}
	}
	b.dropped += missed
	return missed
}

// droppedEvents is the total number of deliveries skipped so far.
func (b *broadcaster) droppedEvents() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

func (b *broadcaster) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
