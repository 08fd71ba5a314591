/*
Package chat contains the real-time coordination layer.

This file defines the Event Relay. The relay translates domain outcomes into zero or
one targeted push event; audience resolution happens in the Publisher, so relay logic
stays a pure function of (event, audience). All pushes are fire-and-forget: an offline
recipient is a silent no-op, never an error, and the initiating action still succeeds.
*/
package chat

import (
	"github.com/rs/zerolog"

	"chatty/internal/pkg/logx"
)

// Audience selects the recipients of a published event: a single user or every
// live connection (registered or not).
type Audience struct {
	all    bool
	userID string
}

// One targets the single live connection of userID, if any.
func One(userID string) Audience {
	return Audience{userID: userID}
}

// All targets every live connection.
func All() Audience {
	return Audience{all: true}
}

// IsAll reports whether the audience is a broadcast.
func (a Audience) IsAll() bool { return a.all }

// UserID returns the targeted user for a non-broadcast audience.
func (a Audience) UserID() string { return a.userID }

// Publisher delivers an event to an audience. The Hub implements it over live
// WebSocket connections; tests substitute a recording fake.
type Publisher interface {
	Publish(event Event, audience Audience)
}

// Relay consumes state-machine outcomes and emits the corresponding wire events.
type Relay struct {
	pub    Publisher
	logger zerolog.Logger
}

// NewRelay constructs a Relay on top of the given Publisher.
func NewRelay(pub Publisher) *Relay {
	return &Relay{
		pub:    pub,
		logger: logx.Logger().With().Str("component", "Relay").Logger(),
	}
}

// RequestCreated pushes a newChatRequest event to the request's receiver.
func (r *Relay) RequestCreated(ev RequestEvent) {
	r.push(EventNewChatRequest, ev, One(ev.ReceiverID))
}

// RequestAccepted pushes a chatRequestAccepted event to the original sender.
func (r *Relay) RequestAccepted(ev RequestEvent) {
	r.push(EventChatRequestAccepted, ev, One(ev.SenderID))
}

// RequestRejected pushes a chatRequestRejected event to the original sender.
func (r *Relay) RequestRejected(ev RequestEvent) {
	r.push(EventChatRequestRejected, ev, One(ev.SenderID))
}

// MessageCreated pushes the full persisted message record to its receiver.
func (r *Relay) MessageCreated(receiverID string, message any) {
	r.push(EventNewMessage, message, One(receiverID))
}

// OnlineUsersChanged broadcasts the current online set to every connection.
func (r *Relay) OnlineUsersChanged(ids []string) {
	r.push(EventOnlineUsersChanged, OnlineUsersEvent{IDs: ids}, All())
}

func (r *Relay) push(name EventName, payload any, audience Audience) {
	event, err := NewEvent(name, payload)
	if err != nil {
		return
	}

	r.pub.Publish(event, audience)
}
