package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Preethi0409/canvas/internal/common"
	"github.com/Preethi0409/canvas/internal/logging"
	"github.com/Preethi0409/canvas/internal/wire"
)

// Identity is the already-resolved current user. The engine never
// authenticates; it only reads identity from the session provider.
type Identity struct {
	ID         string
	Username   string
	ProfilePic string
}

// SessionProvider resolves the current user, if any.
type SessionProvider interface {
	CurrentUser() (Identity, bool)
}

// Store is the durable, canvas-scoped operation store.
type Store interface {
	Append(ctx context.Context, canvasID string, draft wire.OperationDraft) (*wire.Operation, error)
	LoadAll(ctx context.Context, canvasID string) ([]wire.Operation, error)
	DeleteAll(ctx context.Context, canvasID string) error
}

// Channel is the realtime fan-out transport for one canvas. Subscribe
// delivers every event published by other participants to the handler and
// returns an unsubscribe function. Delivery is at-least-once and ordered per
// publisher; the coordinator dedups by operation id.
type Channel interface {
	Subscribe(ctx context.Context, canvasID string, handler func(wire.Event)) (func(), error)
	Publish(ctx context.Context, canvasID string, ev wire.Event) error
}

// Cache is an optional local operation cache. A cached snapshot is rendered
// immediately on rejoin, before the fresh one arrives from the store.
type Cache interface {
	LoadOperations(ctx context.Context, canvasID string) ([]wire.Operation, error)
	SaveOperations(ctx context.Context, canvasID string, ops []wire.Operation) error
}

// Coordinator owns the operation log and surface of one canvas session and
// keeps them eventually consistent with every other participant. All
// transitions run to completion under one mutex; handlers never observe a
// half-applied state.
type Coordinator struct {
	logger  logging.Logger
	store   Store
	channel Channel
	session SessionProvider
	cache   Cache

	canvasID string

	mu          sync.Mutex
	log         *Log
	surface     *Surface
	tracker     *Tracker
	unsubscribe func()
	buffering   bool
	buffer      []wire.Event

	heartbeatStop chan struct{}
}

func NewCoordinator(logger logging.Logger, store Store, channel Channel, session SessionProvider, cache Cache, canvasID string, surface *Surface) *Coordinator {
	return &Coordinator{
		logger:   logger,
		store:    store,
		channel:  channel,
		session:  session,
		cache:    cache,
		canvasID: canvasID,
		log:      NewLog(),
		surface:  surface,
		tracker:  NewTracker(),
	}
}

// Join hydrates the session. The live subscription is opened first and its
// events buffered, then the snapshot is loaded, then the buffer is drained
// through the id-deduping merge. Operations committed between the snapshot
// query and the subscription are therefore never lost, and duplicates cannot
// double-apply.
func (c *Coordinator) Join(ctx context.Context) error {
	c.mu.Lock()
	c.buffering = true
	c.buffer = nil
	c.mu.Unlock()

	unsubscribe, err := c.channel.Subscribe(ctx, c.canvasID, c.handleEvent)
	if err != nil {
		return fmt.Errorf("subscribing to canvas: %w", err)
	}

	if c.cache != nil {
		if cached, err := c.cache.LoadOperations(ctx, c.canvasID); err == nil && len(cached) > 0 {
			c.mu.Lock()
			c.log.LoadSnapshot(cached)
			c.replayLocked()
			c.mu.Unlock()
		}
	}

	ops, err := c.store.LoadAll(ctx, c.canvasID)
	if err != nil {
		unsubscribe()
		return fmt.Errorf("%w: loading snapshot: %v", common.ErrPersistence, err)
	}

	c.mu.Lock()
	c.unsubscribe = unsubscribe
	c.log.LoadSnapshot(ops)
	c.replayLocked()
	for _, ev := range c.buffer {
		c.applyLocked(ev)
	}
	c.buffer = nil
	c.buffering = false
	c.saveCacheLocked(ctx)
	c.mu.Unlock()

	return nil
}

// Resync reconciles the log after a transport gap: live events are buffered
// while a fresh snapshot is loaded, then drained through the id-deduping
// merge, the same way Join hydrates. Operations broadcast while the
// connection was down are recovered from the durable store. If the snapshot
// load fails, buffered events still apply to the stale log.
func (c *Coordinator) Resync(ctx context.Context) error {
	c.mu.Lock()
	c.buffering = true
	c.buffer = nil
	c.mu.Unlock()

	ops, err := c.store.LoadAll(ctx, c.canvasID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		c.log.LoadSnapshot(ops)
		c.replayLocked()
	}
	for _, ev := range c.buffer {
		c.applyLocked(ev)
	}
	c.buffer = nil
	c.buffering = false
	if err != nil {
		return fmt.Errorf("%w: reloading snapshot: %v", common.ErrPersistence, err)
	}
	c.saveCacheLocked(ctx)
	return nil
}

// Leave tears down the subscription and heartbeats.
func (c *Coordinator) Leave() {
	c.mu.Lock()
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	stop := c.heartbeatStop
	c.heartbeatStop = nil
	c.mu.Unlock()

	if stop != nil {
		close(stop)
	}
	if unsubscribe != nil {
		unsubscribe()
	}
}

func (c *Coordinator) handleEvent(ev wire.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.buffering {
		c.buffer = append(c.buffer, ev)
		return
	}
	c.applyLocked(ev)
}

func (c *Coordinator) applyLocked(ev wire.Event) {
	switch ev.Kind {
	case wire.EventOperation:
		if ev.Op == nil || len(ev.Op.Points) == 0 {
			return
		}
		if c.log.ReceiveRemote(*ev.Op) {
			DrawOperation(c.surface, *ev.Op)
			c.saveCacheLocked(context.Background())
		}
	case wire.EventUndo:
		if c.log.Undo() {
			c.replayLocked()
		}
	case wire.EventRedo:
		if c.log.Redo() {
			c.replayLocked()
		}
	case wire.EventClear:
		c.log.Clear()
		c.surface.Clear()
		c.saveCacheLocked(context.Background())
	case wire.EventPresence:
		c.tracker.ApplyRoster(ev.Roster)
	case wire.EventCursor:
		c.tracker.ApplyCursor(ev.Cursor)
	}
}

// CompleteStroke commits a finished gesture: optimistic local draw, persist,
// broadcast, then append the store-confirmed operation so every replica
// agrees on its identity. A failed persist leaves the optimistic draw on the
// surface but the stroke out of the shared log; it is reported, not retried.
func (c *Coordinator) CompleteStroke(ctx context.Context, draft wire.OperationDraft) (*wire.Operation, error) {
	c.mu.Lock()
	DrawOperation(c.surface, wire.Operation{
		Tool:      draft.Tool,
		Color:     draft.Color,
		LineWidth: draft.LineWidth,
		Points:    draft.Points,
	})
	c.mu.Unlock()

	op, err := c.store.Append(ctx, c.canvasID, draft)
	if err != nil {
		return nil, err
	}

	if err := c.channel.Publish(ctx, c.canvasID, wire.Event{Kind: wire.EventOperation, Op: op}); err != nil {
		// The operation is durable; peers reconcile on their next snapshot.
		c.logger.Warn(ctx, "operation broadcast failed", "canvas", c.canvasID, "error", err.Error())
	}

	c.mu.Lock()
	c.log.Append(*op)
	c.saveCacheLocked(ctx)
	c.mu.Unlock()

	return op, nil
}

// Undo moves the shared cursor back, replays, and broadcasts so every
// participant follows in lockstep. Returns false without broadcasting when
// already at the boundary.
func (c *Coordinator) Undo(ctx context.Context) (bool, error) {
	c.mu.Lock()
	ok := c.log.Undo()
	if ok {
		c.replayLocked()
	}
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, c.channel.Publish(ctx, c.canvasID, wire.Event{Kind: wire.EventUndo})
}

// Redo is the inverse of Undo, with the same broadcast semantics.
func (c *Coordinator) Redo(ctx context.Context) (bool, error) {
	c.mu.Lock()
	ok := c.log.Redo()
	if ok {
		c.replayLocked()
	}
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, c.channel.Publish(ctx, c.canvasID, wire.Event{Kind: wire.EventRedo})
}

// Clear deletes every persisted operation, broadcasts, and empties the local
// log and surface.
func (c *Coordinator) Clear(ctx context.Context) error {
	if err := c.store.DeleteAll(ctx, c.canvasID); err != nil {
		return err
	}
	if err := c.channel.Publish(ctx, c.canvasID, wire.Event{Kind: wire.EventClear}); err != nil {
		c.logger.Warn(ctx, "clear broadcast failed", "canvas", c.canvasID, "error", err.Error())
	}

	c.mu.Lock()
	c.log.Clear()
	c.surface.Clear()
	c.saveCacheLocked(ctx)
	c.mu.Unlock()
	return nil
}

// MoveCursor broadcasts a live pointer position. Never persisted.
func (c *Coordinator) MoveCursor(ctx context.Context, x, y float64, color string) error {
	user, ok := c.session.CurrentUser()
	if !ok {
		return common.ErrUnauthorized
	}
	return c.channel.Publish(ctx, c.canvasID, wire.Event{
		Kind:   wire.EventCursor,
		Cursor: &wire.Cursor{UserID: user.ID, Username: user.Username, X: x, Y: y, Color: color},
	})
}

// StartHeartbeats publishes presence on a ticker until Leave or ctx
// cancellation. Failures are logged and skipped, never fatal.
func (c *Coordinator) StartHeartbeats(ctx context.Context, interval time.Duration) {
	stop := make(chan struct{})
	c.mu.Lock()
	c.heartbeatStop = stop
	c.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		c.publishHeartbeat(ctx)
		for {
			select {
			case <-ticker.C:
				c.publishHeartbeat(ctx)
			case <-stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (c *Coordinator) publishHeartbeat(ctx context.Context) {
	if err := c.channel.Publish(ctx, c.canvasID, wire.Event{Kind: wire.EventPresence}); err != nil {
		c.logger.Debug(ctx, "heartbeat failed", "canvas", c.canvasID, "error", err.Error())
	}
}

// Online returns the roster within the liveness window.
func (c *Coordinator) Online(window time.Duration) []Participant {
	return c.tracker.Online(window, time.Now())
}

// Visible returns the currently visible operation prefix.
func (c *Coordinator) Visible() []wire.Operation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.log.Visible()
}

// CurrentIndex exposes the undo/redo cursor.
func (c *Coordinator) CurrentIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.log.CurrentIndex()
}

// Surface exposes the raster the coordinator draws on.
func (c *Coordinator) Surface() *Surface { return c.surface }

func (c *Coordinator) replayLocked() {
	Render(c.surface, c.log.Visible())
}

func (c *Coordinator) saveCacheLocked(ctx context.Context) {
	if c.cache == nil {
		return
	}
	if err := c.cache.SaveOperations(ctx, c.canvasID, c.log.Visible()); err != nil {
		c.logger.Debug(ctx, "operation cache write failed", "canvas", c.canvasID, "error", err.Error())
	}
}
