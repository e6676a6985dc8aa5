package domain

import (
	"time"
)

const (
	EventListingCreated   = "listing.created"
	EventListingUpdated   = "listing.updated"
	EventListingDeleted   = "listing.deleted"
	EventOrderCreated     = "order.created"
	EventOrderUpdated     = "order.updated"
	EventQueryCreated     = "query.created"
	EventQueryResponded   = "query.responded"
	EventTransportUpdated = "transport.updated"
	EventMessageReceived  = "chat.message"
	EventUserUpdated      = "user.updated"
	EventPaymentUpdated   = "payment.updated"
)

// Event is a change notification pushed to connected clients. It reaches
// every user listed in UserIDs and every subscriber holding one of Roles.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	UserIDs   []string  `json:"-"`
	Roles     []string  `json:"-"`
	Payload   any       `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

func NewEvent(eventType string, payload any, userIDs ...string) Event {
	return Event{
		Type:      eventType,
		UserIDs:   userIDs,
		Payload:   payload,
		CreatedAt: time.Now(),
	}
}

// ToRoles widens the audience to every subscriber with one of roles.
func (e Event) ToRoles(roles ...string) Event {
	e.Roles = append(e.Roles, roles...)
	return e
}
