/*
Package client provides a WebSocket consumer of the event-relay contract: a
state mirror that keeps a client-side view of presence and chat-request state
in sync with the events the server pushes.

The mirror is intentionally dumb about delivery: pushes are best-effort, so a
consumer that was offline reconciles through the HTTP query endpoints and uses
the mirror only for live updates. The end-to-end tests use it as the reference
client of the wire contract.
*/
package client

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"chatty/internal/app/chat"
)

const writeTimeout = 5 * time.Second

// Mirror maintains a live, client-side view of the server's relay events.
type Mirror struct {
	conn *websocket.Conn

	mu       sync.RWMutex
	online   map[string]struct{}
	statuses map[string]string
	requests []chat.RequestEvent
	messages []json.RawMessage

	done chan struct{}
}

// Dial connects to the gateway's WebSocket endpoint. A non-empty token is sent
// as the handshake's token query parameter, binding the connection to the
// authenticated identity; without it the connection receives broadcasts only.
func Dial(ctx context.Context, wsURL, token string) (*Mirror, error) {
	if token != "" {
		wsURL = wsURL + "?token=" + token
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, err
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	m := &Mirror{
		conn:     conn,
		online:   make(map[string]struct{}),
		statuses: make(map[string]string),
		done:     make(chan struct{}),
	}

	go m.readLoop()

	return m, nil
}

func (m *Mirror) readLoop() {
	defer close(m.done)

	for {
		_, payload, err := m.conn.ReadMessage()
		if err != nil {
			return
		}

		var event chat.Event
		if err := json.Unmarshal(payload, &event); err != nil {
			continue
		}

		m.apply(event)
	}
}

// apply folds one relay event into the mirrored state.
func (m *Mirror) apply(event chat.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch event.Name {
	case chat.EventOnlineUsersChanged:
		var ev chat.OnlineUsersEvent
		if err := json.Unmarshal(event.Data, &ev); err != nil {
			return
		}
		m.online = make(map[string]struct{}, len(ev.IDs))
		for _, id := range ev.IDs {
			m.online[id] = struct{}{}
		}

	case chat.EventNewChatRequest:
		var ev chat.RequestEvent
		if err := json.Unmarshal(event.Data, &ev); err != nil {
			return
		}
		m.requests = append(m.requests, ev)
		m.statuses[ev.SenderID] = ev.Status

	case chat.EventChatRequestAccepted, chat.EventChatRequestRejected:
		var ev chat.RequestEvent
		if err := json.Unmarshal(event.Data, &ev); err != nil {
			return
		}
		m.statuses[ev.ReceiverID] = ev.Status

	case chat.EventNewMessage:
		m.messages = append(m.messages, event.Data)
	}
}

// IsOnline reports whether userID appeared in the latest online-set broadcast.
func (m *Mirror) IsOnline(userID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.online[userID]
	return ok
}

// OnlineUsers returns the latest broadcast online set.
func (m *Mirror) OnlineUsers() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.online))
	for id := range m.online {
		ids = append(ids, id)
	}
	return ids
}

// StatusOf returns the mirrored request status for the given peer, or "" when
// no request event involving that peer has been observed.
func (m *Mirror) StatusOf(peerID string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.statuses[peerID]
}

// PendingRequests returns every newChatRequest event observed so far.
func (m *Mirror) PendingRequests() []chat.RequestEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]chat.RequestEvent, len(m.requests))
	copy(out, m.requests)
	return out
}

// Messages returns the raw newMessage payloads observed so far.
func (m *Mirror) Messages() []json.RawMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]json.RawMessage, len(m.messages))
	copy(out, m.messages)
	return out
}

// Send emits an inbound relay event to the gateway.
func (m *Mirror) Send(name chat.EventName, payload any) error {
	event, err := chat.NewEvent(name, payload)
	if err != nil {
		return err
	}
	return m.conn.WriteJSON(event)
}

// Close tears down the transport and waits for the read loop to exit.
func (m *Mirror) Close() error {
	m.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeTimeout),
	)
	err := m.conn.Close()
	<-m.done
	return err
}
