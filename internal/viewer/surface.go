package viewer

import (
	"context"

	"github.com/quireapp/quire/internal/doc"
)

// SlotState is the lifecycle of one page's render slot.
type SlotState int

const (
	// SlotBlank means nothing is rendered or requested.
	SlotBlank SlotState = iota
	// SlotPending means a render task is in flight.
	SlotPending
	// SlotReady means the slot holds a usable surface.
	SlotReady
	// SlotFailed means the last render failed; the error is scoped to
	// this page and other slots are unaffected.
	SlotFailed
)

// RenderTask is one in-flight render. The cache owns its context; the
// dispatcher runs the collaborator call under Context and reports back
// through Complete with the task pointer. Identity of that pointer, not
// any flag, decides whether the completion still matters.
type RenderTask struct {
	Page  int
	Width int
	Mode  doc.RenderMode

	ctx    context.Context
	cancel context.CancelFunc
}

// Context carries the task's cancellation signal.
func (t *RenderTask) Context() context.Context { return t.ctx }

type slot struct {
	state   SlotState
	task    *RenderTask
	surface *doc.Surface
	err     error
}

// Cache owns the per-page render slots. Each slot holds at most one
// live task at a time; a newer request cancels and supersedes the old
// task, and the old task's late completion is discarded when its pointer
// no longer matches the slot. Surfaces are kept until released, so
// revisiting a page repaints without re-rendering. Owned by the event
// loop goroutine.
type Cache struct {
	pageCount int
	slots     map[int]*slot
}

// NewCache makes an empty cache for a document of pageCount pages.
func NewCache(pageCount int) *Cache {
	return &Cache{
		pageCount: pageCount,
		slots:     make(map[int]*slot),
	}
}

// EnsureRendered requests page at width in the given mode and returns
// the task the caller must dispatch, or nil when there is nothing to do:
// the surface is already present at those parameters, the same render is
// already in flight, or the request is out of range. An out-of-range
// page or non-positive width additionally clears the slot to blank; it
// is a no-op, never an error.
func (c *Cache) EnsureRendered(page, width int, mode doc.RenderMode) *RenderTask {
	if page < 1 || page > c.pageCount || width <= 0 {
		if page >= 1 && page <= c.pageCount {
			c.Release(page)
		}
		return nil
	}

	sl := c.slots[page]
	if sl != nil {
		switch sl.state {
		case SlotReady:
			if sl.surface != nil && sl.surface.Width == width && sl.task != nil &&
				sl.task.Mode == mode {
				return nil
			}
		case SlotPending:
			if sl.task != nil && sl.task.Width == width && sl.task.Mode == mode {
				return nil
			}
		}
		if sl.task != nil && sl.state == SlotPending {
			sl.task.cancel()
		}
	} else {
		sl = &slot{}
		c.slots[page] = sl
	}

	ctx, cancel := context.WithCancel(context.Background())
	task := &RenderTask{Page: page, Width: width, Mode: mode, ctx: ctx, cancel: cancel}
	sl.state = SlotPending
	sl.task = task
	sl.err = nil
	return task
}

// Complete reports a finished render. The result is applied only when
// task is still the slot's current task; a completion from a superseded
// or released task is dropped no matter what it carries. Cancellations
// are not failures: they leave the slot to whatever superseded them.
// It reports whether the slot changed.
func (c *Cache) Complete(task *RenderTask, surface *doc.Surface, err error) bool {
	if task == nil {
		return false
	}
	sl := c.slots[task.Page]
	if sl == nil || sl.task != task {
		return false
	}

	if err != nil {
		if doc.IsCancelled(err) {
			return false
		}
		sl.state = SlotFailed
		sl.surface = nil
		sl.err = err
		return true
	}

	sl.state = SlotReady
	sl.surface = surface
	sl.err = nil
	return true
}

// Surface returns the ready surface for page, if any.
func (c *Cache) Surface(page int) (*doc.Surface, bool) {
	sl := c.slots[page]
	if sl == nil || sl.state != SlotReady {
		return nil, false
	}
	return sl.surface, true
}

// State reports the slot lifecycle state for page.
func (c *Cache) State(page int) SlotState {
	sl := c.slots[page]
	if sl == nil {
		return SlotBlank
	}
	return sl.state
}

// Err returns the failure recorded for page, nil unless SlotFailed.
func (c *Cache) Err(page int) error {
	sl := c.slots[page]
	if sl == nil {
		return nil
	}
	return sl.err
}

// Release cancels any in-flight task for page and clears the slot.
func (c *Cache) Release(page int) {
	sl := c.slots[page]
	if sl == nil {
		return
	}
	if sl.task != nil && sl.state == SlotPending {
		sl.task.cancel()
	}
	delete(c.slots, page)
}

// Clear releases every slot, cancelling all outstanding work. Used on
// layout and width changes that invalidate everything at once.
func (c *Cache) Clear() {
	for page, sl := range c.slots {
		if sl.task != nil && sl.state == SlotPending {
			sl.task.cancel()
		}
		delete(c.slots, page)
	}
}

// Pending counts slots with work in flight.
func (c *Cache) Pending() int {
	n := 0
	for _, sl := range c.slots {
		if sl.state == SlotPending {
			n++
		}
	}
	return n
}
