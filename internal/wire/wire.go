// Package wire defines the JSON vocabulary shared by the server and the
// client: drawing operations as they are persisted and broadcast, and the
// realtime event envelope fanned out to canvas subscribers.
package wire

import "time"

// Tool selects how a stroke is applied to the surface.
type Tool string

const (
	ToolBrush  Tool = "brush"
	ToolEraser Tool = "eraser"
)

// Valid reports whether the tool is one of the known values.
func (t Tool) Valid() bool {
	return t == ToolBrush || t == ToolEraser
}

// Point is a single 2-D sample of a stroke, in canvas pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// OperationDraft is a locally completed stroke before the store has confirmed
// it. It has no identity yet; the server assigns ID and CreatedAt on append.
type OperationDraft struct {
	Tool      Tool    `json:"tool"`
	Color     string  `json:"color"`
	LineWidth float64 `json:"lineWidth"`
	Points    []Point `json:"points"`
}

// Operation is an immutable, store-confirmed drawing action. Operations are
// never edited in place; all changes to a canvas are new operations or
// log-wide control events (undo/redo/clear).
type Operation struct {
	ID        string    `json:"id"`
	CanvasID  string    `json:"canvasId"`
	UserID    string    `json:"userId"`
	Tool      Tool      `json:"tool"`
	Color     string    `json:"color"`
	LineWidth float64   `json:"lineWidth"`
	Points    []Point   `json:"points"`
	CreatedAt time.Time `json:"createdAt"`
}

// EventKind discriminates realtime events on a canvas channel.
type EventKind string

const (
	EventOperation EventKind = "operation"
	EventUndo      EventKind = "undo"
	EventRedo      EventKind = "redo"
	EventClear     EventKind = "clear"
	EventPresence  EventKind = "presence"
	EventCursor    EventKind = "cursor"
)

// PresenceEntry describes one participant currently connected to a canvas.
type PresenceEntry struct {
	UserID     string    `json:"userId"`
	Username   string    `json:"username"`
	ProfilePic string    `json:"profilePic,omitempty"`
	LastSeenAt time.Time `json:"lastSeenAt"`
}

// Cursor is a live pointer position broadcast while a participant moves
// across the canvas. Never persisted.
type Cursor struct {
	UserID   string  `json:"userId"`
	Username string  `json:"username"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Color    string  `json:"color,omitempty"`
}

// Event is the envelope relayed to every subscriber of a canvas channel.
// Origin carries the publishing connection id; the hub uses it to skip
// echoing an event back to its originator, which has already applied the
// transition optimistically.
type Event struct {
	Kind     EventKind       `json:"kind"`
	CanvasID string          `json:"canvasId"`
	Origin   string          `json:"origin,omitempty"`
	Op       *Operation      `json:"op,omitempty"`
	Roster   []PresenceEntry `json:"roster,omitempty"`
	Cursor   *Cursor         `json:"cursor,omitempty"`
}

// Validate checks an operation draft before it is persisted.
func (d OperationDraft) Validate() error {
	if !d.Tool.Valid() {
		return errInvalid("unknown tool")
	}
	if d.LineWidth <= 0 {
		return errInvalid("line width must be positive")
	}
	if len(d.Points) < 1 {
		return errInvalid("a stroke needs at least one point")
	}
	return nil
}
