/*
Package chat contains the real-time coordination layer: the session gateway (Hub),
the per-connection Client pumps, and the Event Relay that pushes server-side events
to live WebSocket connections.

This file defines the wire-level event envelope and payload types. Event names are
the contract consumed by clients; payload shapes mirror the persisted records.
*/
package chat

import (
	"encoding/json"
	"time"

	"chatty/internal/pkg/logx"
)

// EventName identifies a server-to-client (or client-to-server) event on the wire.
type EventName string

const (
	// EventNewChatRequest is pushed to the receiver of a freshly created chat request.
	EventNewChatRequest EventName = "newChatRequest"

	// EventChatRequestAccepted is pushed to the original sender when the receiver accepts.
	EventChatRequestAccepted EventName = "chatRequestAccepted"

	// EventChatRequestRejected is pushed to the original sender when the receiver rejects.
	EventChatRequestRejected EventName = "chatRequestRejected"

	// EventNewMessage carries a full persisted message record to its receiver.
	EventNewMessage EventName = "newMessage"

	// EventOnlineUsersChanged is broadcast to every connection whenever the
	// presence registry gains or loses an entry.
	EventOnlineUsersChanged EventName = "onlineUsersChanged"
)

// Inbound event names a connected client may send, relayed to the counterpart.
// These mirror the outbound request events but flow client-to-server.
const (
	EventChatRequestSent EventName = "chatRequestSent"
)

// Event is the JSON envelope for everything crossing a WebSocket connection.
type Event struct {
	Name EventName       `json:"event"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewEvent marshals payload into an Event envelope.
func NewEvent(name EventName, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		logx.Error(err, "Failed to marshal event payload", "event", string(name))
		return Event{}, err
	}

	return Event{Name: name, Data: data}, nil
}

// RequestEvent is the payload shape for all chat-request events.
type RequestEvent struct {
	RequestID  string    `json:"requestId"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt,omitempty"`
}

// OnlineUsersEvent is the payload of EventOnlineUsersChanged.
type OnlineUsersEvent struct {
	IDs []string `json:"ids"`
}
