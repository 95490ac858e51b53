package engine

import (
	"sort"
	"sync"
	"time"

	"github.com/Preethi0409/canvas/internal/wire"
)

// Participant is one entry in the live roster of a canvas.
type Participant struct {
	UserID     string
	Username   string
	ProfilePic string
	LastSeenAt time.Time
	Cursor     *wire.Cursor
}

// Tracker maintains who is currently on a canvas. Rosters arrive from every
// server replica independently, so entries are merged by user id and expired
// by liveness window rather than replaced wholesale.
type Tracker struct {
	mu      sync.Mutex
	entries map[string]*Participant
}

func NewTracker() *Tracker {
	return &Tracker{entries: make(map[string]*Participant)}
}

// ApplyRoster folds a presence event into the tracker. Known cursors are
// preserved across roster refreshes.
func (t *Tracker) ApplyRoster(roster []wire.PresenceEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range roster {
		p, ok := t.entries[e.UserID]
		if !ok {
			p = &Participant{UserID: e.UserID}
			t.entries[e.UserID] = p
		}
		p.Username = e.Username
		p.ProfilePic = e.ProfilePic
		if e.LastSeenAt.After(p.LastSeenAt) {
			p.LastSeenAt = e.LastSeenAt
		}
	}
}

// ApplyCursor records a live cursor position. Cursor events can arrive ahead
// of the roster entry for a freshly joined participant.
func (t *Tracker) ApplyCursor(c *wire.Cursor) {
	if c == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.entries[c.UserID]
	if !ok {
		p = &Participant{UserID: c.UserID, Username: c.Username}
		t.entries[c.UserID] = p
	}
	cur := *c
	p.Cursor = &cur
	p.LastSeenAt = time.Now()
}

// Online returns the participants seen within the liveness window, sorted by
// username for stable display. Stale entries are dropped from the tracker.
func (t *Tracker) Online(window time.Duration, now time.Time) []Participant {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Participant, 0, len(t.entries))
	for id, p := range t.entries {
		if now.Sub(p.LastSeenAt) > window {
			delete(t.entries, id)
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}
