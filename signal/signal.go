package signal

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/skillsenselab/authbridge/logger"
)

// subscriberBuffer is the per-subscriber channel capacity. A subscriber that
// falls this far behind starts dropping intermediate values; it still
// converges because every later publish carries the full current value.
const subscriberBuffer = 16

// Signal is a last-value publish/subscribe cell.
// The zero value is not usable; create with New.
type Signal[T any] struct {
	mu   sync.RWMutex
	last T
	subs map[string]chan T
	log  *logger.Logger
}

// New creates a Signal seeded with an initial value.
func New[T any](initial T) *Signal[T] {
	return &Signal[T]{
		last: initial,
		subs: make(map[string]chan T),
		log:  logger.Get("signal"),
	}
}

// Get returns the current value.
func (s *Signal[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Publish stores v as the current value and delivers it to all subscribers.
// Slow subscribers have intermediate values dropped rather than blocking the
// publisher. Sends happen under the same lock that guards teardown, so a
// publish never races a closing channel.
func (s *Signal[T]) Publish(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.last = v
	for id, ch := range s.subs {
		select {
		case ch <- v:
		default:
			s.log.Warn("subscriber channel full, dropping value", map[string]interface{}{
				logger.FieldSubscriberID: id,
			})
		}
	}
}

// Subscribe registers a subscriber whose lifetime is bound to ctx.
// The current value is delivered immediately; the channel is closed when
// ctx is canceled.
func (s *Signal[T]) Subscribe(ctx context.Context) <-chan T {
	id := uuid.NewString()
	ch := make(chan T, subscriberBuffer)

	s.mu.Lock()
	s.subs[id] = ch
	ch <- s.last
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
		close(ch)
	}()

	return ch
}

// SubscriberCount returns the number of active subscribers.
// Useful for test assertions.
func (s *Signal[T]) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}
