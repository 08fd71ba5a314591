/*
Package chat contains the real-time coordination layer.

This file defines the Client struct, representing an active WebSocket connection.
It manages the connection lifecycle, the read/write pumps with heartbeat deadlines,
and the dispatch of inbound relay events to the Event Relay.
*/
package chat

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"chatty/internal/pkg/logx"
	"chatty/internal/pkg/randx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of an inbound frame.
	maxMessageSize = 8192

	// capacity of the per-connection outbound queue.
	sendChannelBuffer = 256
)

// errSendQueueFull is returned by enqueue when the outbound buffer is saturated.
var errSendQueueFull = &queueFullError{}

type queueFullError struct{}

func (*queueFullError) Error() string { return "client send queue full" }

// Client represents an active WebSocket connection and its (possibly empty) user identity.
type Client struct {
	// hub is the session gateway this connection belongs to.
	hub *Hub

	// conn is the underlying WebSocket connection.
	conn *websocket.Conn

	// connID uniquely identifies this connection within the process.
	connID string

	// userID is the authenticated identity bound at handshake time.
	// Empty for connections that presented no (or an invalid) token.
	userID string

	// send buffers outbound frames awaiting the write pump.
	send chan []byte

	// closeOnce guards the send channel against double close.
	closeOnce sync.Once

	logger zerolog.Logger
}

// NewClient constructs a Client for the given connection. userID may be empty.
func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	connID := randx.NewID()

	clientLogger := logx.Logger().With().
		Str("conn_id", connID).
		Str("user_id", userID).
		Logger()

	return &Client{
		hub:    hub,
		conn:   conn,
		connID: connID,
		userID: userID,
		send:   make(chan []byte, sendChannelBuffer),
		logger: clientLogger,
	}
}

// ConnID returns the connection's unique identifier.
func (c *Client) ConnID() string { return c.connID }

// UserID returns the identity bound to this connection, or "" when anonymous.
func (c *Client) UserID() string { return c.userID }

// ReadPump reads frames from the WebSocket connection until it closes or errors.
// It maintains the Pong heartbeat deadline, dispatches inbound relay events, and
// performs gateway cleanup on exit.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (client close/going away)")
			}
			break
		}

		c.processInboundEvent(messageBytes)
	}
}

// cleanupOnDisconnect deregisters the connection and closes the transport.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Client connection cleanup starting.")

	c.hub.UnregisterClient(c)

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}
}

// processInboundEvent handles raw frames received from the client. Connected
// clients may ask the gateway to relay request events to the counterpart; the
// payload shape matches the outbound request events. The actor field is always
// stamped with the connection's own identity, so a frame cannot speak for
// another user, and anonymous connections cannot relay at all.
func (c *Client) processInboundEvent(messageBytes []byte) {
	var inbound Event
	if err := json.Unmarshal(messageBytes, &inbound); err != nil {
		c.logger.Warn().Err(err).
			Bytes("message_bytes", messageBytes).
			Msg("Client sent invalid JSON")
		return
	}

	if c.userID == "" {
		c.logger.Warn().Str("event", string(inbound.Name)).Msg("Anonymous client attempted to relay an event, dropping")
		return
	}

	var ev RequestEvent
	if len(inbound.Data) > 0 {
		if err := json.Unmarshal(inbound.Data, &ev); err != nil {
			c.logger.Warn().Err(err).Str("event", string(inbound.Name)).Msg("Client sent invalid event payload")
			return
		}
	}

	switch inbound.Name {
	case EventChatRequestSent:
		// A send is acted by the request's sender.
		ev.SenderID = c.userID
		c.hub.Relay().RequestCreated(ev)

	case EventChatRequestAccepted:
		// A transition is acted by the request's receiver.
		ev.ReceiverID = c.userID
		c.hub.Relay().RequestAccepted(ev)

	case EventChatRequestRejected:
		ev.ReceiverID = c.userID
		c.hub.Relay().RequestRejected(ev)

	default:
		c.logger.Warn().Str("event", string(inbound.Name)).Msg("Client sent unsupported event")
	}
}

// WritePump writes frames from the send channel to the WebSocket connection
// and keeps the connection alive with periodic pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !c.writeQueuedMessage(message, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedMessage writes one message pulled from the send channel.
// Returns true if the WritePump loop should continue.
func (c *Client) writeQueuedMessage(message []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		c.logger.Error().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

// writePingMessage sends a periodic WebSocket Ping to maintain the heartbeat.
// Returns false if the WritePump loop should terminate due to write failure.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Info().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}

// enqueue places an outbound frame on the send channel without blocking.
func (c *Client) enqueue(payload []byte) error {
	select {
	case c.send <- payload:
		return nil
	default:
		return errSendQueueFull
	}
}

// closeSend closes the outbound channel exactly once, letting WritePump drain and exit.
func (c *Client) closeSend() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}
