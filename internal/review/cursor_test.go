package review

import (
	"testing"

	"github.com/hagwonlabs/reviewd/internal/model"
)

func cursorItems(ids ...int64) []model.ReviewItem {
	items := make([]model.ReviewItem, len(ids))
	for i, id := range ids {
		items[i] = model.ReviewItem{ID: id}
	}
	return items
}

func TestCursorAdvancesAndWraps(t *testing.T) {
	c := NewCursor(cursorItems(10, 20, 30))

	id, ok := c.Current()
	if !ok || id != 10 {
		t.Fatalf("Current = %d, %v; want 10", id, ok)
	}

	want := []int64{20, 30, 10, 20}
	for i, w := range want {
		id, ok := c.Next()
		if !ok || id != w {
			t.Fatalf("Next #%d = %d, %v; want %d", i, id, ok, w)
		}
	}
}

func TestCursorEmpty(t *testing.T) {
	c := NewCursor(nil)
	if _, ok := c.Current(); ok {
		t.Error("Current on empty cursor should report not ok")
	}
	if _, ok := c.Next(); ok {
		t.Error("Next on empty cursor should report not ok")
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
}

func TestCursorSyncResetsOnChange(t *testing.T) {
	c := NewCursor(cursorItems(10, 20, 30))
	c.Next() // now at 20

	// Same due set: position kept.
	c.Sync(cursorItems(10, 20, 30))
	if id, _ := c.Current(); id != 20 {
		t.Errorf("position lost on unchanged sync, Current = %d", id)
	}

	// Item 20 left the due set: cursor resets to the start.
	c.Sync(cursorItems(10, 30))
	if id, _ := c.Current(); id != 10 {
		t.Errorf("Current after changed sync = %d, want 10", id)
	}
	if c.Len() != 2 {
		t.Errorf("Len after sync = %d, want 2", c.Len())
	}

	// Due set emptied entirely.
	c.Sync(nil)
	if _, ok := c.Current(); ok {
		t.Error("Current after syncing to empty set should report not ok")
	}
}
