package transport

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Preethi0409/canvas/internal/logging"
	"github.com/Preethi0409/canvas/internal/wire"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wsServer struct {
	upgrader websocket.Upgrader

	mu       sync.Mutex
	lastURL  string
	incoming []wire.Event
	conn     *websocket.Conn
}

func (s *wsServer) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.lastURL = r.URL.String()
		s.mu.Unlock()

		conn, err := s.upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		s.mu.Lock()
		s.conn = conn
		s.mu.Unlock()

		for {
			_, payload, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var ev wire.Event
			require.NoError(t, json.Unmarshal(payload, &ev))
			s.mu.Lock()
			s.incoming = append(s.incoming, ev)
			s.mu.Unlock()
		}
	}
}

func (s *wsServer) send(t *testing.T, ev wire.Event) {
	t.Helper()
	payload, err := json.Marshal(ev)
	require.NoError(t, err)
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	require.NotNil(t, conn)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, payload))
}

type staticToken string

func (s staticToken) AccessToken() string { return string(s) }

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSubscribeReceivesEvents(t *testing.T) {
	srv := &wsServer{}
	ts := httptest.NewServer(srv.handler(t))
	defer ts.Close()

	ch := NewChannel(testLogger(), ts.URL, staticToken("tok"), "")

	var mu sync.Mutex
	var got []wire.Event
	unsub, err := ch.Subscribe(context.Background(), "c1", func(ev wire.Event) {
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
	})
	require.NoError(t, err)
	defer unsub()

	srv.send(t, wire.Event{Kind: wire.EventUndo, CanvasID: "c1"})

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1 && got[0].Kind == wire.EventUndo
	}, 2*time.Second, 10*time.Millisecond)
}

func TestDialURLCarriesTokenAndPassword(t *testing.T) {
	srv := &wsServer{}
	ts := httptest.NewServer(srv.handler(t))
	defer ts.Close()

	ch := NewChannel(testLogger(), ts.URL, staticToken("tok"), "secret")
	unsub, err := ch.Subscribe(context.Background(), "c1", func(wire.Event) {})
	require.NoError(t, err)
	defer unsub()

	srv.mu.Lock()
	url := srv.lastURL
	srv.mu.Unlock()
	assert.Contains(t, url, "/ws/canvases/c1")
	assert.Contains(t, url, "token=tok")
	assert.Contains(t, url, "password=secret")
}

func TestPublishReachesServer(t *testing.T) {
	srv := &wsServer{}
	ts := httptest.NewServer(srv.handler(t))
	defer ts.Close()

	ch := NewChannel(testLogger(), ts.URL, staticToken("tok"), "")
	unsub, err := ch.Subscribe(context.Background(), "c1", func(wire.Event) {})
	require.NoError(t, err)
	defer unsub()

	op := &wire.Operation{ID: "op1", Tool: wire.ToolBrush, LineWidth: 1, Points: []wire.Point{{X: 1, Y: 1}}}
	require.NoError(t, ch.Publish(context.Background(), "c1", wire.Event{Kind: wire.EventOperation, Op: op}))

	assert.Eventually(t, func() bool {
		srv.mu.Lock()
		defer srv.mu.Unlock()
		return len(srv.incoming) == 1 && srv.incoming[0].Op != nil && srv.incoming[0].Op.ID == "op1"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestReconnectNotifiesSubscriber(t *testing.T) {
	srv := &wsServer{}
	ts := httptest.NewServer(srv.handler(t))
	defer ts.Close()

	ch := NewChannel(testLogger(), ts.URL, staticToken("tok"), "")
	reconnected := make(chan struct{}, 1)
	ch.OnReconnect(func() {
		select {
		case reconnected <- struct{}{}:
		default:
		}
	})

	var mu sync.Mutex
	var got []wire.Event
	unsub, err := ch.Subscribe(context.Background(), "c1", func(ev wire.Event) {
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
	})
	require.NoError(t, err)
	defer unsub()

	srv.mu.Lock()
	first := srv.conn
	srv.mu.Unlock()
	require.NotNil(t, first)
	require.NoError(t, first.Close())

	select {
	case <-reconnected:
	case <-time.After(5 * time.Second):
		t.Fatal("reconnect callback never ran")
	}

	// The redialed connection delivers events again.
	assert.Eventually(t, func() bool {
		srv.mu.Lock()
		defer srv.mu.Unlock()
		return srv.conn != nil && srv.conn != first
	}, 2*time.Second, 10*time.Millisecond)

	srv.send(t, wire.Event{Kind: wire.EventRedo, CanvasID: "c1"})
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1 && got[0].Kind == wire.EventRedo
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPublishAfterUnsubscribeFails(t *testing.T) {
	srv := &wsServer{}
	ts := httptest.NewServer(srv.handler(t))
	defer ts.Close()

	ch := NewChannel(testLogger(), ts.URL, staticToken("tok"), "")
	unsub, err := ch.Subscribe(context.Background(), "c1", func(wire.Event) {})
	require.NoError(t, err)
	unsub()

	err = ch.Publish(context.Background(), "c1", wire.Event{Kind: wire.EventUndo})
	assert.Error(t, err)
}

func TestSubscribeDialFailure(t *testing.T) {
	ch := NewChannel(testLogger(), "http://127.0.0.1:1", staticToken("tok"), "")
	_, err := ch.Subscribe(context.Background(), "c1", func(wire.Event) {})
	assert.Error(t, err)
}
