package events

import (
	"sync"

	"AgriWaste-Marketplace/domain"
)

// Recorder is a Publisher that keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *Recorder) Publish(event domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *Recorder) Events() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Event(nil), r.events...)
}

func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, 0, len(r.events))
	for _, e := range r.events {
		types = append(types, e.Type)
	}
	return types
}
