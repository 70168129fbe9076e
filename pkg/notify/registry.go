package notify

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// subscriberBuffer is the per-connection event backlog. A connection that
// falls further behind starts losing events rather than stalling publishers.
const subscriberBuffer = 16

// Subscriber is one registered connection. Read delivered events from
// Events; the channel closes when the subscriber is removed.
type Subscriber struct {
	userID string
	ch     chan Event
}

// Events returns the subscriber's delivery channel.
func (s *Subscriber) Events() <-chan Event {
	return s.ch
}

// Registry tracks connected clients and pushes events to them as they
// happen. It replaces poll-based notification fetching: a connection
// registers once and receives its events over one long-lived stream.
type Registry struct {
	logger *zap.Logger

	mu   sync.RWMutex
	subs map[*Subscriber]struct{}
}

var _ Notifier = (*Registry)(nil)

// NewRegistry returns an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		logger: logger,
		subs:   make(map[*Subscriber]struct{}),
	}
}

// Register adds a connection for the given user and returns its subscriber.
// An empty userID subscribes to every event, which is how admin dashboards
// listen.
func (r *Registry) Register(userID string) *Subscriber {
	sub := &Subscriber{
		userID: userID,
		ch:     make(chan Event, subscriberBuffer),
	}
	r.mu.Lock()
	r.subs[sub] = struct{}{}
	r.mu.Unlock()
	return sub
}

// Remove drops the connection and closes its channel. Removing an already
// removed subscriber is a no-op.
func (r *Registry) Remove(sub *Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subs[sub]; !ok {
		return
	}
	delete(r.subs, sub)
	// No publisher can be mid-send here: sends happen under the read lock.
	close(sub.ch)
}

// Len reports how many connections are registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

// Publish delivers the event to every matching connection. Delivery is
// best-effort: a subscriber with a full backlog loses the event.
func (r *Registry) Publish(ctx context.Context, event Event) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for sub := range r.subs {
		if event.UserID != "" && sub.userID != "" && sub.userID != event.UserID {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			r.logger.Warn("dropping notification for slow subscriber",
				zap.String("type", string(event.Type)),
				zap.String("user_id", sub.userID),
			)
		}
	}
}
