package dashboard

import "time"

// DefaultFlashDuration is how long a changed cell stays highlighted.
const DefaultFlashDuration = 500 * time.Millisecond

// Field identifies a flashing cell within a row.
type Field int

const (
	FieldPrice Field = iota
	FieldChange
)

// Move is the direction of a value change.
type Move int

const (
	MoveNone Move = iota
	MoveUp
	MoveDown
)

// Compare classifies the change from old to cur.
func Compare(old, cur float64) Move {
	switch {
	case cur > old:
		return MoveUp
	case cur < old:
		return MoveDown
	default:
		return MoveNone
	}
}

type flashKey struct {
	id    string
	field Field
}

type flash struct {
	move  Move
	until time.Time
}

// Flashes is a display-only overlay of transient highlights keyed by
// (record ID, field). Entries expire on their own; nothing is persisted.
type Flashes struct {
	ttl     time.Duration
	entries map[flashKey]flash
}

// NewFlashes creates an overlay whose highlights last ttl.
func NewFlashes(ttl time.Duration) *Flashes {
	if ttl <= 0 {
		ttl = DefaultFlashDuration
	}
	return &Flashes{ttl: ttl, entries: make(map[flashKey]flash)}
}

// TTL returns the highlight duration.
func (f *Flashes) TTL() time.Duration { return f.ttl }

// Mark starts a highlight for the cell when cur differs from old, replacing
// any highlight already running. It reports whether a highlight was set.
func (f *Flashes) Mark(id string, field Field, old, cur float64, now time.Time) bool {
	mv := Compare(old, cur)
	if mv == MoveNone {
		return false
	}
	f.entries[flashKey{id, field}] = flash{move: mv, until: now.Add(f.ttl)}
	return true
}

// Active returns the highlight currently showing for the cell, or MoveNone.
func (f *Flashes) Active(id string, field Field, now time.Time) Move {
	e, ok := f.entries[flashKey{id, field}]
	if !ok || !now.Before(e.until) {
		return MoveNone
	}
	return e.move
}

// Sweep drops expired highlights and returns how many remain.
func (f *Flashes) Sweep(now time.Time) int {
	for k, e := range f.entries {
		if !now.Before(e.until) {
			delete(f.entries, k)
		}
	}
	return len(f.entries)
}

// Len returns the number of tracked highlights, expired or not.
func (f *Flashes) Len() int { return len(f.entries) }
