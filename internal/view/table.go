// Package view derives sorted, filtered, cursor-addressable tables from the
// latest snapshots, and coalesces navigation bursts so only settled positions
// are ever applied.
package view

import (
	"sort"
	"strings"
)

// PageSize is how many rows a page-up/page-down intent moves.
const PageSize = 10

// SortOrder is the direction of the active comparator.
type SortOrder int

const (
	Ascending SortOrder = iota
	Descending
)

// SortKey names one column a table can be ordered by.
type SortKey string

// Config fixes the per-kind behavior of a Table: the sort key cycle, the
// comparator, the identity used for selection tracking, and which fields the
// filter matches against.
type Config[T any] struct {
	SortKeys []SortKey // cycle order; the first entry is the default
	Compare  func(a, b T, key SortKey) int
	Identity func(T) string
	Match    func(rec T, needle string) bool
}

// Table is the view state for one resource kind. It owns sort key and order,
// filter text, and the selection; the records themselves are handed in from
// the snapshot cache and never mutated here.
type Table[T any] struct {
	cfg Config[T]

	all    []T // latest snapshot, unfiltered
	rows   []T // filtered and sorted
	filter string

	sortIdx int
	order   SortOrder

	selected string // identity of the selected row, "" for none
	cursor   int    // index of selected in rows, -1 for none

	offset int // first visible row
	height int // viewport rows; 0 disables offset tracking
}

func NewTable[T any](cfg Config[T]) *Table[T] {
	return &Table[T]{cfg: cfg, cursor: -1}
}

// SetRecords installs a new snapshot and rebuilds the view. The logical
// selection survives whenever its row still exists.
func (t *Table[T]) SetRecords(records []T) {
	t.all = records
	t.rebuild()
}

// Rows returns the current filtered, sorted view. Callers must not mutate it.
func (t *Table[T]) Rows() []T { return t.rows }

func (t *Table[T]) Len() int { return len(t.rows) }

// Selected returns the selected record, if any.
func (t *Table[T]) Selected() (T, bool) {
	var zero T
	if t.cursor < 0 || t.cursor >= len(t.rows) {
		return zero, false
	}
	return t.rows[t.cursor], true
}

// Cursor returns the selected index in the current view, -1 for none.
func (t *Table[T]) Cursor() int { return t.cursor }

func (t *Table[T]) SortKey() SortKey { return t.cfg.SortKeys[t.sortIdx] }

func (t *Table[T]) Order() SortOrder { return t.order }

func (t *Table[T]) Filter() string { return t.filter }

// SetSortKey activates the given key if it is in this table's cycle.
func (t *Table[T]) SetSortKey(key SortKey) bool {
	for i, k := range t.cfg.SortKeys {
		if k == key {
			t.sortIdx = i
			t.rebuild()
			return true
		}
	}
	return false
}

// CycleSortKey advances to the next key in the fixed per-kind enumeration,
// wrapping around. The order is kept as-is.
func (t *Table[T]) CycleSortKey() SortKey {
	t.sortIdx = (t.sortIdx + 1) % len(t.cfg.SortKeys)
	t.rebuild()
	return t.SortKey()
}

// ToggleOrder reverses the active comparator without changing the key.
func (t *Table[T]) ToggleOrder() SortOrder {
	if t.order == Ascending {
		t.order = Descending
	} else {
		t.order = Ascending
	}
	t.rebuild()
	return t.order
}

// SetFilter replaces the filter text and rebuilds immediately.
func (t *Table[T]) SetFilter(text string) {
	t.filter = text
	t.rebuild()
}

func (t *Table[T]) ClearFilter() {
	t.filter = ""
	t.rebuild()
}

// MoveBy moves the cursor by delta rows, clamped to the view. With no current
// selection the cursor enters at the edge the movement comes from, first row
// going down and last row going up, and spends the rest of the delta from
// there, matching what the equivalent single-row moves would do.
func (t *Table[T]) MoveBy(delta int) {
	if len(t.rows) == 0 || delta == 0 {
		return
	}
	from := t.cursor
	if from < 0 {
		if delta > 0 {
			from, delta = 0, delta-1
		} else {
			from, delta = len(t.rows)-1, delta+1
		}
	}
	t.setCursor(clamp(from+delta, 0, len(t.rows)-1))
}

func (t *Table[T]) MoveFirst() {
	if len(t.rows) == 0 {
		return
	}
	t.setCursor(0)
}

func (t *Table[T]) MoveLast() {
	if len(t.rows) == 0 {
		return
	}
	t.setCursor(len(t.rows) - 1)
}

func (t *Table[T]) PageUp()   { t.MoveBy(-PageSize) }
func (t *Table[T]) PageDown() { t.MoveBy(PageSize) }

// SetHeight tells the table how many rows the renderer shows so the scroll
// offset can track the cursor.
func (t *Table[T]) SetHeight(rows int) {
	t.height = rows
	t.follow()
}

// Offset returns the first visible row index.
func (t *Table[T]) Offset() int { return t.offset }

func (t *Table[T]) setCursor(i int) {
	t.cursor = i
	t.selected = t.cfg.Identity(t.rows[i])
	t.follow()
}

// rebuild recomputes rows from the unfiltered snapshot: filter, stable sort,
// then re-resolve the selection by identity. A selection whose row is gone is
// cleared to none, never snapped to a neighbor.
func (t *Table[T]) rebuild() {
	needle := strings.ToLower(t.filter)
	if needle == "" {
		t.rows = append(t.rows[:0:0], t.all...)
	} else {
		t.rows = t.rows[:0:0]
		for _, r := range t.all {
			if t.cfg.Match(r, needle) {
				t.rows = append(t.rows, r)
			}
		}
	}

	key := t.SortKey()
	sort.SliceStable(t.rows, func(i, j int) bool {
		c := t.cfg.Compare(t.rows[i], t.rows[j], key)
		if t.order == Descending {
			return c > 0
		}
		return c < 0
	})

	t.cursor = -1
	if t.selected != "" {
		for i, r := range t.rows {
			if t.cfg.Identity(r) == t.selected {
				t.cursor = i
				break
			}
		}
		if t.cursor == -1 {
			t.selected = ""
		}
	}
	t.follow()
}

// follow keeps the cursor inside the visible window.
func (t *Table[T]) follow() {
	if t.height <= 0 {
		t.offset = 0
		return
	}
	if t.cursor < 0 {
		t.offset = clamp(t.offset, 0, max(0, len(t.rows)-t.height))
		return
	}
	if t.cursor < t.offset {
		t.offset = t.cursor
	}
	if t.cursor >= t.offset+t.height {
		t.offset = t.cursor - t.height + 1
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
