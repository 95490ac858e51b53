package hub

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Preethi0409/canvas/internal/logging"
	"github.com/Preethi0409/canvas/internal/wire"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- in-process broker ---

type fakeBroker struct {
	mu   sync.Mutex
	subs map[string][]*fakeSubscription
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{subs: make(map[string][]*fakeSubscription)}
}

func (b *fakeBroker) Publish(ctx context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	subs := append([]*fakeSubscription(nil), b.subs[channel]...)
	b.mu.Unlock()
	for _, s := range subs {
		s.send(payload)
	}
	return nil
}

func (b *fakeBroker) Subscribe(ctx context.Context, channel string) (Subscription, error) {
	s := &fakeSubscription{ch: make(chan []byte, 64)}
	b.mu.Lock()
	b.subs[channel] = append(b.subs[channel], s)
	b.mu.Unlock()
	return s, nil
}

type fakeSubscription struct {
	mu     sync.Mutex
	ch     chan []byte
	closed bool
}

func (s *fakeSubscription) Messages() <-chan []byte { return s.ch }

// send delivers a payload unless the subscription is already closed; a real
// broker treats publishing to a channel without subscribers as a no-op.
func (s *fakeSubscription) send(payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.ch <- payload
}

func (s *fakeSubscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
	return nil
}

// --- in-memory connection ---

type fakeConn struct {
	in     chan []byte
	out    chan []byte
	closed chan struct{}
	once   sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:     make(chan []byte, 16),
		out:    make(chan []byte, 64),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case msg, ok := <-c.in:
		if !ok {
			return 0, nil, io.EOF
		}
		return websocket.TextMessage, msg, nil
	case <-c.closed:
		return 0, nil, io.EOF
	}
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	if messageType == websocket.TextMessage {
		c.out <- data
	}
	return nil
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) disconnect() { close(c.in) }

func (c *fakeConn) sendEvent(t *testing.T, ev wire.Event) {
	t.Helper()
	payload, err := json.Marshal(ev)
	require.NoError(t, err)
	c.in <- payload
}

func (c *fakeConn) nextEvent(t *testing.T) wire.Event {
	t.Helper()
	select {
	case payload := <-c.out:
		var ev wire.Event
		require.NoError(t, json.Unmarshal(payload, &ev))
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return wire.Event{}
	}
}

// waitEvent skips events until one of the wanted kind arrives.
func (c *fakeConn) waitEvent(t *testing.T, kind wire.EventKind) wire.Event {
	t.Helper()
	for i := 0; i < 20; i++ {
		ev := c.nextEvent(t)
		if ev.Kind == kind {
			return ev
		}
	}
	t.Fatalf("no %s event received", kind)
	return wire.Event{}
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestJoinBroadcastsRoster(t *testing.T) {
	h := New(testLogger(), newFakeBroker())
	ctx := context.Background()

	a := newFakeConn()
	go func() { _ = h.Join(ctx, "c1", a, "u1", "alice", "") }()

	roster := a.waitEvent(t, wire.EventPresence)
	require.Len(t, roster.Roster, 1)
	assert.Equal(t, "alice", roster.Roster[0].Username)

	b := newFakeConn()
	go func() { _ = h.Join(ctx, "c1", b, "u2", "bob", "") }()

	// The second join triggers a two-member roster for everyone.
	for {
		ev := a.waitEvent(t, wire.EventPresence)
		if len(ev.Roster) == 2 {
			break
		}
	}

	a.disconnect()
	b.disconnect()
}

func TestOperationEventSkipsOriginator(t *testing.T) {
	h := New(testLogger(), newFakeBroker())
	ctx := context.Background()

	a := newFakeConn()
	b := newFakeConn()
	go func() { _ = h.Join(ctx, "c1", a, "u1", "alice", "") }()
	go func() { _ = h.Join(ctx, "c1", b, "u2", "bob", "") }()
	a.waitEvent(t, wire.EventPresence)
	b.waitEvent(t, wire.EventPresence)

	a.sendEvent(t, wire.Event{
		Kind: wire.EventOperation,
		Op:   &wire.Operation{ID: "op1", UserID: "u1", Tool: wire.ToolBrush, LineWidth: 1, Points: []wire.Point{{X: 1, Y: 1}}},
	})

	got := b.waitEvent(t, wire.EventOperation)
	require.NotNil(t, got.Op)
	assert.Equal(t, "op1", got.Op.ID)
	assert.Equal(t, "c1", got.CanvasID)
	assert.NotEmpty(t, got.Origin)

	// The originator must not receive an echo; only roster traffic may show up.
	select {
	case payload := <-a.out:
		var ev wire.Event
		require.NoError(t, json.Unmarshal(payload, &ev))
		assert.NotEqual(t, wire.EventOperation, ev.Kind, "originator received its own operation")
	case <-time.After(200 * time.Millisecond):
	}

	a.disconnect()
	b.disconnect()
}

func TestOperationEventWithoutPointsDropped(t *testing.T) {
	h := New(testLogger(), newFakeBroker())
	ctx := context.Background()

	a := newFakeConn()
	b := newFakeConn()
	go func() { _ = h.Join(ctx, "c1", a, "u1", "alice", "") }()
	go func() { _ = h.Join(ctx, "c1", b, "u2", "bob", "") }()
	a.waitEvent(t, wire.EventPresence)
	b.waitEvent(t, wire.EventPresence)

	a.sendEvent(t, wire.Event{Kind: wire.EventOperation, Op: &wire.Operation{ID: "op-empty"}})
	a.sendEvent(t, wire.Event{Kind: wire.EventOperation})
	a.sendEvent(t, wire.Event{Kind: wire.EventUndo})

	// Events relay in order, so everything delivered before the undo is
	// inspected; the point-less operations must not be among it.
	for {
		ev := b.nextEvent(t)
		assert.NotEqual(t, wire.EventOperation, ev.Kind, "point-less operation relayed to peers")
		if ev.Kind == wire.EventUndo {
			break
		}
	}

	a.disconnect()
	b.disconnect()
}

func TestUndoRedoClearRelayedToPeers(t *testing.T) {
	h := New(testLogger(), newFakeBroker())
	ctx := context.Background()

	a := newFakeConn()
	b := newFakeConn()
	go func() { _ = h.Join(ctx, "c1", a, "u1", "alice", "") }()
	go func() { _ = h.Join(ctx, "c1", b, "u2", "bob", "") }()
	a.waitEvent(t, wire.EventPresence)
	b.waitEvent(t, wire.EventPresence)

	for _, kind := range []wire.EventKind{wire.EventUndo, wire.EventRedo, wire.EventClear} {
		a.sendEvent(t, wire.Event{Kind: kind})
		got := b.waitEvent(t, kind)
		assert.Equal(t, kind, got.Kind)
	}

	a.disconnect()
	b.disconnect()
}

func TestRoomsAreIsolated(t *testing.T) {
	h := New(testLogger(), newFakeBroker())
	ctx := context.Background()

	a := newFakeConn()
	b := newFakeConn()
	go func() { _ = h.Join(ctx, "c1", a, "u1", "alice", "") }()
	go func() { _ = h.Join(ctx, "c2", b, "u2", "bob", "") }()
	a.waitEvent(t, wire.EventPresence)
	b.waitEvent(t, wire.EventPresence)

	a.sendEvent(t, wire.Event{Kind: wire.EventUndo})

	select {
	case payload := <-b.out:
		var ev wire.Event
		require.NoError(t, json.Unmarshal(payload, &ev))
		assert.NotEqual(t, wire.EventUndo, ev.Kind, "event leaked across rooms")
	case <-time.After(200 * time.Millisecond):
	}

	a.disconnect()
	b.disconnect()
}
