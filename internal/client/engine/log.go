// Package engine implements the collaborative drawing core: the per-canvas
// operation log with undo/redo, the stroke recorder, the raster renderer,
// the sync coordinator, and the presence tracker. The engine talks to the
// outside world only through the Store, Channel and SessionProvider
// interfaces defined here.
package engine

import (
	"sort"

	"github.com/Preethi0409/canvas/internal/wire"
)

// Log is the ordered sequence of confirmed operations for one canvas plus a
// cursor marking the visible prefix. currentIndex == -1 means nothing is
// visible; the invariant -1 <= currentIndex < len(sequence) always holds.
type Log struct {
	sequence     []wire.Operation
	currentIndex int
	ids          map[string]struct{}
}

func NewLog() *Log {
	return &Log{currentIndex: -1, ids: make(map[string]struct{})}
}

// Append commits a new local operation. Any redo tail beyond the cursor is
// truncated first, so redo is only valid until the next new stroke.
func (l *Log) Append(op wire.Operation) {
	l.truncate()
	l.sequence = append(l.sequence, op)
	l.ids[op.ID] = struct{}{}
	l.currentIndex = len(l.sequence) - 1
}

// ReceiveRemote merges an operation authored elsewhere. Duplicate ids are
// dropped so at-least-once delivery cannot double a stroke. Remote operations
// are already confirmed, so the cursor always advances to include them.
func (l *Log) ReceiveRemote(op wire.Operation) bool {
	if _, seen := l.ids[op.ID]; seen {
		return false
	}
	l.sequence = append(l.sequence, op)
	l.ids[op.ID] = struct{}{}
	l.currentIndex = len(l.sequence) - 1
	return true
}

// Undo steps the cursor back one operation. Returns false at the boundary.
func (l *Log) Undo() bool {
	if l.currentIndex < 0 {
		return false
	}
	l.currentIndex--
	return true
}

// Redo steps the cursor forward one operation. Returns false at the boundary.
func (l *Log) Redo() bool {
	if l.currentIndex >= len(l.sequence)-1 {
		return false
	}
	l.currentIndex++
	return true
}

// Clear empties the log.
func (l *Log) Clear() {
	l.sequence = nil
	l.currentIndex = -1
	l.ids = make(map[string]struct{})
}

// LoadSnapshot replaces the log wholesale with operations from the durable
// store, ordered by creation time ascending, and makes all of them visible.
func (l *Log) LoadSnapshot(ops []wire.Operation) {
	sorted := make([]wire.Operation, len(ops))
	copy(sorted, ops)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	l.sequence = sorted
	l.ids = make(map[string]struct{}, len(sorted))
	for _, op := range sorted {
		l.ids[op.ID] = struct{}{}
	}
	l.currentIndex = len(sorted) - 1
}

// Visible returns a copy of the prefix sequence[0..currentIndex].
func (l *Log) Visible() []wire.Operation {
	if l.currentIndex < 0 {
		return nil
	}
	out := make([]wire.Operation, l.currentIndex+1)
	copy(out, l.sequence[:l.currentIndex+1])
	return out
}

func (l *Log) CurrentIndex() int { return l.currentIndex }

func (l *Log) Len() int { return len(l.sequence) }

func (l *Log) truncate() {
	for _, op := range l.sequence[l.currentIndex+1:] {
		delete(l.ids, op.ID)
	}
	l.sequence = l.sequence[:l.currentIndex+1]
}
