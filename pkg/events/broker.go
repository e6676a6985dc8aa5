package events

import (
	"slices"
	"sync"
	"sync/atomic"

	"AgriWaste-Marketplace/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const subscriberBuffer = 32

type (
	Publisher interface {
		Publish(event domain.Event)
	}

	Broker interface {
		Publisher
		Subscribe(userID, role string) *Subscription
		Unsubscribe(sub *Subscription)
		Dropped() uint64
		Close()
	}

	Subscription struct {
		ID     string
		UserID string
		Role   string
		C      <-chan domain.Event

		ch chan domain.Event
	}

	broker struct {
		mu          sync.RWMutex
		subscribers map[string]*Subscription
		closed      bool
		dropped     atomic.Uint64
		log         *logrus.Logger
	}
)

func NewBroker(logger *logrus.Logger) Broker {
	return &broker{
		subscribers: make(map[string]*Subscription),
		log:         logger,
	}
}

func (b *broker) Subscribe(userID, role string) *Subscription {
	ch := make(chan domain.Event, subscriberBuffer)
	sub := &Subscription{
		ID:     uuid.NewString(),
		UserID: userID,
		Role:   role,
		C:      ch,
		ch:     ch,
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return sub
	}
	b.subscribers[sub.ID] = sub
	b.log.WithFields(logrus.Fields{"user_id": userID, "role": role}).Debug("event subscriber connected")
	return sub
}

func (b *broker) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subscribers[sub.ID]; !ok {
		return
	}
	delete(b.subscribers, sub.ID)
	close(sub.ch)
}

// Publish never blocks. A subscriber whose buffer is full misses the event.
func (b *broker) Publish(event domain.Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subscribers {
		if !matchesAudience(event, sub) {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			b.dropped.Add(1)
			b.log.WithFields(logrus.Fields{
				"event":   event.Type,
				"user_id": sub.UserID,
			}).Warn("event dropped for slow subscriber")
		}
	}
}

func (b *broker) Dropped() uint64 {
	return b.dropped.Load()
}

func (b *broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subscribers {
		close(sub.ch)
		delete(b.subscribers, id)
	}
}

func matchesAudience(event domain.Event, sub *Subscription) bool {
	return slices.Contains(event.UserIDs, sub.UserID) || slices.Contains(event.Roles, sub.Role)
}
