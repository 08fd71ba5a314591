/*
Package chat contains the real-time coordination layer.

This file defines the Hub, the session gateway. The Hub owns the set of live client
connections, registers authenticated connections with the presence registry, and
implements the Publisher interface the Event Relay pushes through. Client lifecycle
mutations flow through the register/unregister channels and are applied one at a time
by the Run loop; the clients map is additionally guarded by an RWMutex so relay pushes
from HTTP handler goroutines can resolve connections without entering the loop.

The register channel is unbuffered: RegisterClient does not return until the run loop
has taken the client, so a connection is in the loop's hands before its read pump can
observe a disconnect and queue the matching unregister. Buffering register would let
the two events land on independent channels in either order, and an unregister drained
first leaves a closed transport registered with the presence registry.
*/
package chat

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"chatty/internal/app/presence"
	"chatty/internal/pkg/logx"
)

const unregisterChannelBuffer = 64

// Hub is the central coordinator for live WebSocket sessions.
type Hub struct {
	// registry is the authoritative user-to-connection mapping.
	registry *presence.Registry

	// clients holds every live connection, keyed by connection ID. Connections
	// that never presented an identity are included: they receive broadcasts
	// but are not individually addressable.
	clients map[string]*Client

	// relay is the event relay built on top of this hub.
	relay *Relay

	// register hands clients whose transport just came up to the run loop.
	// Unbuffered so registration precedes any later lifecycle event for the
	// same connection.
	register chan *Client

	// unregister queues clients whose transport closed or errored. Buffered
	// because the run loop itself enqueues here when a broadcast finds a
	// saturated send queue.
	unregister chan *Client

	// stop signals the Run loop to terminate.
	stop chan struct{}

	// mu protects the clients map.
	mu sync.RWMutex

	// wg waits for the Run loop during shutdown.
	wg sync.WaitGroup

	logger zerolog.Logger
}

// NewHub constructs a Hub over the given presence registry and starts its Run loop.
func NewHub(registry *presence.Registry) *Hub {
	h := &Hub{
		registry:   registry,
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client, unregisterChannelBuffer),
		stop:       make(chan struct{}),
		logger:     logx.Logger().With().Str("component", "Hub").Logger(),
	}

	h.relay = NewRelay(h)

	h.wg.Add(1)
	go h.run()

	return h
}

// Relay returns the event relay publishing through this hub.
func (h *Hub) Relay() *Relay {
	return h.relay
}

// Registry returns the presence registry owned by this hub's gateway.
func (h *Hub) Registry() *presence.Registry {
	return h.registry
}

// RegisterClient hands the client to the gateway. It blocks until the run loop
// has taken ownership, so callers may start the read pump immediately after:
// any unregister the pump produces is ordered behind this registration.
func (h *Hub) RegisterClient(client *Client) {
	select {
	case h.register <- client:
	case <-h.stop:
		client.closeSend()
	}
}

// UnregisterClient queues a client for removal after its transport closed.
func (h *Hub) UnregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stop:
	}
}

// run applies registration and deregistration events sequentially, so presence
// mutations and their online-set broadcasts happen in commit order.
func (h *Hub) run() {
	defer h.wg.Done()

	h.logger.Info().Msg("Hub run loop started.")

	for {
		select {
		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case <-h.stop:
			h.logger.Info().Msg("Hub run loop stopping.")
			return
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client.connID] = client
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info().
		Str("conn_id", client.connID).
		Str("user_id", client.userID).
		Int("total_connections", total).
		Msg("Client connected.")

	if client.userID == "" {
		// Anonymous connection: reachable by broadcasts only.
		return
	}

	online := h.registry.Register(client.userID, client.connID)
	h.relay.OnlineUsersChanged(online)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	current, ok := h.clients[client.connID]
	if ok && current == client {
		delete(h.clients, client.connID)
	}
	h.mu.Unlock()

	if !ok || current != client {
		h.logger.Warn().
			Str("conn_id", client.connID).
			Msg("Unregister ignored for unknown or already removed client.")
		return
	}

	client.closeSend()

	h.logger.Info().
		Str("conn_id", client.connID).
		Str("user_id", client.userID).
		Msg("Client disconnected.")

	changed, online := h.registry.Unregister(client.connID)
	if changed {
		h.relay.OnlineUsersChanged(online)
	}
}

// Publish delivers an event to the selected audience. A miss on the presence
// registry is a silent no-op: the recipient is offline and will reconcile state
// on its next query. A full send buffer drops the event and queues the client
// for removal.
func (h *Hub) Publish(event Event, audience Audience) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Str("event", string(event.Name)).Msg("Error marshaling event for publish.")
		return
	}

	if audience.IsAll() {
		h.mu.RLock()
		targets := make([]*Client, 0, len(h.clients))
		for _, client := range h.clients {
			targets = append(targets, client)
		}
		h.mu.RUnlock()

		for _, client := range targets {
			h.deliver(client, payload)
		}
		return
	}

	connID, ok := h.registry.Lookup(audience.UserID())
	if !ok {
		// Peer unreachable: the event is intentionally lost.
		return
	}

	h.mu.RLock()
	client, ok := h.clients[connID]
	h.mu.RUnlock()

	if !ok {
		return
	}

	h.deliver(client, payload)
}

func (h *Hub) deliver(client *Client, payload []byte) {
	if err := client.enqueue(payload); err != nil {
		h.logger.Warn().
			Str("conn_id", client.connID).
			Str("user_id", client.userID).
			Msg("Client send channel full, dropping event and unregistering.")
		h.UnregisterClient(client)
	}
}

// Shutdown stops the Run loop and closes every live client's send channel.
func (h *Hub) Shutdown() {
	h.logger.Info().Msg("Shutting down Hub...")

	close(h.stop)
	h.wg.Wait()

	h.mu.Lock()
	for _, client := range h.clients {
		client.closeSend()
	}
	h.clients = make(map[string]*Client)
	h.mu.Unlock()

	h.logger.Info().Msg("Hub shutdown complete.")
}
