package review

import "github.com/hagwonlabs/reviewd/internal/model"

// Cursor tracks the position within a due-item list during a review
// session. It is per-session UI state, never persisted, and resets
// whenever the due set changes.
type Cursor struct {
	ids []int64
	pos int
}

// NewCursor creates a cursor over the given due items, positioned at the
// first item.
func NewCursor(items []model.ReviewItem) *Cursor {
	return &Cursor{ids: itemIDs(items)}
}

// Sync replaces the cursor's item list if the due set changed, resetting
// the position to the start. A cursor pointing past the end of an
// unchanged list also resets.
func (c *Cursor) Sync(items []model.ReviewItem) {
	ids := itemIDs(items)
	if !equalIDs(c.ids, ids) {
		c.ids = ids
		c.pos = 0
		return
	}
	if c.pos >= len(c.ids) {
		c.pos = 0
	}
}

// Current returns the item ID at the cursor, or false if the list is empty.
func (c *Cursor) Current() (int64, bool) {
	if len(c.ids) == 0 {
		return 0, false
	}
	if c.pos >= len(c.ids) {
		c.pos = 0
	}
	return c.ids[c.pos], true
}

// Next advances the cursor and returns the item ID it lands on, wrapping
// back to the first item past the end of the list.
func (c *Cursor) Next() (int64, bool) {
	if len(c.ids) == 0 {
		return 0, false
	}
	c.pos = (c.pos + 1) % len(c.ids)
	return c.ids[c.pos], true
}

// Len returns the number of items under the cursor.
func (c *Cursor) Len() int { return len(c.ids) }

func itemIDs(items []model.ReviewItem) []int64 {
	ids := make([]int64, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
