// Package hub maintains the realtime side of every canvas: the set of
// connected participants, the presence roster, and fan-out of drawing and
// control events. Events flow through a Broker (Redis pub/sub) so that
// participants connected to different server replicas still see each other.
package hub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/Preethi0409/canvas/internal/logging"
	"github.com/Preethi0409/canvas/internal/wire"
	"github.com/google/uuid"
)

type Hub struct {
	logger logging.Logger
	broker Broker

	mu    sync.Mutex
	rooms map[string]*room
}

type room struct {
	canvasID string
	clients  map[*Client]struct{}
	sub      Subscription
	cancel   context.CancelFunc
}

func New(logger logging.Logger, broker Broker) *Hub {
	return &Hub{
		logger: logger,
		broker: broker,
		rooms:  make(map[string]*room),
	}
}

func channelName(canvasID string) string {
	return "canvas:" + canvasID
}

// Join registers a connection with a canvas room, starts its pumps, and
// blocks until the connection drops. The first participant of a canvas
// subscribes the room to the broker channel.
func (h *Hub) Join(ctx context.Context, canvasID string, conn Conn, userID, username, profilePic string) error {
	client := newClient(uuid.NewString(), conn, userID, username, profilePic)

	if err := h.register(ctx, canvasID, client); err != nil {
		return err
	}
	go client.writePump()

	h.logger.Info(ctx, "ws connected", "canvas", canvasID, "user", userID, "conn", client.ID)
	h.broadcastRoster(ctx, canvasID)

	// Blocks until the read loop exits so cleanup runs reliably.
	h.readLoop(ctx, canvasID, client)

	h.unregister(ctx, canvasID, client)
	h.logger.Info(ctx, "ws disconnected", "canvas", canvasID, "user", userID, "conn", client.ID)
	h.broadcastRoster(ctx, canvasID)
	return nil
}

func (h *Hub) register(ctx context.Context, canvasID string, client *Client) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[canvasID]
	if !ok {
		subCtx, cancel := context.WithCancel(context.Background())
		sub, err := h.broker.Subscribe(subCtx, channelName(canvasID))
		if err != nil {
			cancel()
			return err
		}
		r = &room{
			canvasID: canvasID,
			clients:  make(map[*Client]struct{}),
			sub:      sub,
			cancel:   cancel,
		}
		h.rooms[canvasID] = r
		go h.relay(canvasID, sub)
	}
	r.clients[client] = struct{}{}
	return nil
}

func (h *Hub) unregister(ctx context.Context, canvasID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[canvasID]
	if !ok {
		return
	}
	if _, ok := r.clients[client]; ok {
		delete(r.clients, client)
		close(client.send)
	}
	if len(r.clients) == 0 {
		_ = r.sub.Close()
		r.cancel()
		delete(h.rooms, canvasID)
	}
}

// readLoop consumes events published by one client, stamps them with the
// originating connection id, and pushes them to the broker. Presence
// heartbeats additionally refresh the client's last-seen time and trigger a
// roster broadcast.
func (h *Hub) readLoop(ctx context.Context, canvasID string, client *Client) {
	for {
		_, payload, err := client.conn.ReadMessage()
		if err != nil {
			return
		}

		var ev wire.Event
		if err := json.Unmarshal(payload, &ev); err != nil {
			h.logger.Warn(ctx, "dropping malformed event", "canvas", canvasID, "error", err.Error())
			continue
		}
		ev.CanvasID = canvasID
		ev.Origin = client.ID

		if ev.Kind == wire.EventOperation && (ev.Op == nil || len(ev.Op.Points) == 0) {
			h.logger.Warn(ctx, "dropping operation event without points", "canvas", canvasID, "conn", client.ID)
			continue
		}

		if ev.Kind == wire.EventPresence {
			h.touch(client)
			h.broadcastRoster(ctx, canvasID)
			continue
		}

		if err := h.publish(ctx, canvasID, &ev); err != nil {
			// Best effort: the initiator has already applied the transition
			// locally; peers reconcile from the durable log on next join.
			h.logger.Error(ctx, "publish failed", "canvas", canvasID, "kind", string(ev.Kind), "error", err.Error())
		}
	}
}

// Publish fans an event out to every subscriber of the canvas, on all
// replicas. Used by the hub itself and by the HTTP layer (e.g. clear).
func (h *Hub) publish(ctx context.Context, canvasID string, ev *wire.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return h.broker.Publish(ctx, channelName(canvasID), payload)
}

// relay moves events from the broker subscription to the local members of a
// room, skipping the connection the event originated from (the originator
// applied its transition optimistically and must not see an echo).
func (h *Hub) relay(canvasID string, sub Subscription) {
	for payload := range sub.Messages() {
		var ev wire.Event
		if err := json.Unmarshal(payload, &ev); err != nil {
			continue
		}

		h.mu.Lock()
		r, ok := h.rooms[canvasID]
		var slow []*Client
		if ok {
			for client := range r.clients {
				if client.ID == ev.Origin {
					continue
				}
				if !client.enqueue(payload) {
					slow = append(slow, client)
				}
			}
		}
		h.mu.Unlock()

		ctx := context.Background()
		for _, client := range slow {
			h.logger.Warn(ctx, "dropping slow client", "canvas", canvasID, "conn", client.ID)
			_ = client.conn.Close()
		}
	}
}

func (h *Hub) touch(client *Client) {
	h.mu.Lock()
	client.lastSeen = time.Now()
	h.mu.Unlock()
}

// broadcastRoster publishes the local membership of a canvas as a presence
// event. Trackers on the client side merge rosters from every replica and
// expire entries by liveness window.
func (h *Hub) broadcastRoster(ctx context.Context, canvasID string) {
	h.mu.Lock()
	r, ok := h.rooms[canvasID]
	var roster []wire.PresenceEntry
	if ok {
		roster = make([]wire.PresenceEntry, 0, len(r.clients))
		for client := range r.clients {
			roster = append(roster, wire.PresenceEntry{
				UserID:     client.UserID,
				Username:   client.Username,
				ProfilePic: client.ProfilePic,
				LastSeenAt: client.lastSeen,
			})
		}
	}
	h.mu.Unlock()

	ev := &wire.Event{Kind: wire.EventPresence, CanvasID: canvasID, Roster: roster}
	if err := h.publish(ctx, canvasID, ev); err != nil {
		h.logger.Warn(ctx, "roster broadcast failed", "canvas", canvasID, "error", err.Error())
	}
}
