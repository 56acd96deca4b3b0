package view

import "time"

// QuietWindow is how long navigation must stay silent before the coalesced
// position is applied. Filter keystrokes and actions never wait on it.
const QuietWindow = 50 * time.Millisecond

// Anchor is the absolute component of a navigation batch.
type Anchor int

const (
	AnchorNone Anchor = iota
	AnchorFirst
	AnchorLast
)

// NavBatch is the net effect of a burst of navigation intents: an optional
// absolute jump followed by a relative move.
type NavBatch struct {
	Anchor Anchor
	Delta  int
}

// Debouncer coalesces navigation intents. Intents accumulate while they keep
// arriving inside the quiet window; Settle hands out the net batch once the
// window elapses without a new intent. Intermediate positions are never
// visible to callers.
type Debouncer struct {
	pending NavBatch
	last    time.Time
	active  bool
}

func NewDebouncer() *Debouncer {
	return &Debouncer{}
}

// Push records one navigation intent at time now. An absolute jump resets
// whatever relative movement accumulated before it.
func (d *Debouncer) Push(now time.Time, anchor Anchor, delta int) {
	if anchor != AnchorNone {
		d.pending = NavBatch{Anchor: anchor, Delta: delta}
	} else {
		d.pending.Delta += delta
	}
	d.last = now
	d.active = true
}

// Settle returns the coalesced batch once the quiet window has elapsed since
// the last Push. It returns false while intents are still arriving or nothing
// is queued.
func (d *Debouncer) Settle(now time.Time) (NavBatch, bool) {
	if !d.active || now.Sub(d.last) < QuietWindow {
		return NavBatch{}, false
	}
	batch := d.pending
	d.pending = NavBatch{}
	d.active = false
	return batch, true
}

// Pending reports whether intents are queued and not yet settled.
func (d *Debouncer) Pending() bool { return d.active }

// Cancel drops any queued intents, for when the view they target goes away.
func (d *Debouncer) Cancel() {
	d.pending = NavBatch{}
	d.active = false
}

// Apply executes a settled batch against a table.
func Apply[T any](t *Table[T], batch NavBatch) {
	switch batch.Anchor {
	case AnchorFirst:
		t.MoveFirst()
	case AnchorLast:
		t.MoveLast()
	}
	if batch.Delta != 0 {
		t.MoveBy(batch.Delta)
	}
}
