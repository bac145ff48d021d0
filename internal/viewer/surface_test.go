package viewer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/quireapp/quire/internal/doc"
)

func surfaceFor(task *RenderTask) *doc.Surface {
	return &doc.Surface{
		Page:  task.Page,
		Width: task.Width,
		Lines: []string{fmt.Sprintf("page %d at %d", task.Page, task.Width)},
	}
}

func TestCacheRenderRoundTrip(t *testing.T) {
	c := NewCache(10)

	task := c.EnsureRendered(3, 40, doc.ModeText)
	if task == nil {
		t.Fatal("expected a task for a blank slot")
	}
	if c.State(3) != SlotPending {
		t.Fatalf("state = %v, want pending", c.State(3))
	}

	if !c.Complete(task, surfaceFor(task), nil) {
		t.Fatal("completion of the current task should apply")
	}

	surf, ok := c.Surface(3)
	if !ok || surf.Width != 40 {
		t.Fatalf("surface = %v, %v", surf, ok)
	}

	// Same parameters again: nothing to do.
	if c.EnsureRendered(3, 40, doc.ModeText) != nil {
		t.Error("ready slot at same width must not re-render")
	}
}

func TestCacheSupersession(t *testing.T) {
	// The resize race: a render at the old width is still in flight
	// when the new width is requested. Exactly one surface, at the new
	// width, must survive.
	c := NewCache(10)

	t1 := c.EnsureRendered(5, 30, doc.ModeText)
	if t1 == nil {
		t.Fatal("first request should yield a task")
	}

	t2 := c.EnsureRendered(5, 44, doc.ModeText)
	if t2 == nil {
		t.Fatal("second request should supersede, not coalesce")
	}
	if t1.Context().Err() == nil {
		t.Error("superseded task must be cancelled")
	}

	// The stale completion arrives late and is discarded by identity.
	if c.Complete(t1, surfaceFor(t1), nil) {
		t.Error("superseded completion must be discarded")
	}
	if _, ok := c.Surface(5); ok {
		t.Error("no surface should be visible yet")
	}

	if !c.Complete(t2, surfaceFor(t2), nil) {
		t.Fatal("current completion should apply")
	}
	surf, ok := c.Surface(5)
	if !ok || surf.Width != 44 {
		t.Fatalf("surface width = %v, want 44", surf)
	}
}

func TestCacheDuplicatePendingCoalesces(t *testing.T) {
	c := NewCache(10)

	t1 := c.EnsureRendered(2, 40, doc.ModeText)
	if t1 == nil {
		t.Fatal("want a task")
	}
	if c.EnsureRendered(2, 40, doc.ModeText) != nil {
		t.Error("identical pending request must coalesce to the in-flight task")
	}
	if t1.Context().Err() != nil {
		t.Error("coalescing must not cancel the in-flight task")
	}
}

func TestCacheModeChangeRerenders(t *testing.T) {
	c := NewCache(10)

	t1 := c.EnsureRendered(2, 40, doc.ModeText)
	c.Complete(t1, surfaceFor(t1), nil)

	t2 := c.EnsureRendered(2, 40, doc.ModeMarkdown)
	if t2 == nil {
		t.Error("mode change must issue a new render")
	}
}

func TestCacheInvalidRequests(t *testing.T) {
	c := NewCache(10)

	// Out-of-range pages and degenerate widths are quiet no-ops.
	if c.EnsureRendered(0, 40, doc.ModeText) != nil {
		t.Error("page 0 must be a no-op")
	}
	if c.EnsureRendered(11, 40, doc.ModeText) != nil {
		t.Error("page beyond the document must be a no-op")
	}

	// A degenerate width clears whatever the slot held.
	task := c.EnsureRendered(4, 40, doc.ModeText)
	c.Complete(task, surfaceFor(task), nil)
	if c.EnsureRendered(4, 0, doc.ModeText) != nil {
		t.Error("zero width must be a no-op")
	}
	if c.State(4) != SlotBlank {
		t.Errorf("state = %v after zero width, want blank", c.State(4))
	}
}

func TestCacheFailureIsolatedToPage(t *testing.T) {
	c := NewCache(10)

	bad := c.EnsureRendered(3, 40, doc.ModeText)
	good := c.EnsureRendered(4, 40, doc.ModeText)

	renderErr := fmt.Errorf("render page 3: %w", doc.ErrRenderFailed)
	if !c.Complete(bad, nil, renderErr) {
		t.Fatal("failure of the current task should record")
	}
	c.Complete(good, surfaceFor(good), nil)

	if c.State(3) != SlotFailed {
		t.Errorf("state(3) = %v, want failed", c.State(3))
	}
	if !errors.Is(c.Err(3), doc.ErrRenderFailed) {
		t.Errorf("err(3) = %v, want ErrRenderFailed", c.Err(3))
	}
	if c.State(4) != SlotReady {
		t.Errorf("state(4) = %v, the failure must not leak", c.State(4))
	}

	// A failed slot retries on the next request.
	if c.EnsureRendered(3, 40, doc.ModeText) == nil {
		t.Error("failed slot should re-render on request")
	}
}

func TestCacheCancellationIsNotAnError(t *testing.T) {
	c := NewCache(10)

	task := c.EnsureRendered(6, 40, doc.ModeText)
	cancelErr := fmt.Errorf("render page 6: %w", doc.ErrRenderCancelled)

	if c.Complete(task, nil, cancelErr) {
		t.Error("a cancelled completion must not change the slot")
	}
	if c.State(6) == SlotFailed {
		t.Error("cancellation must never mark the slot failed")
	}
}

func TestCacheReleaseCancels(t *testing.T) {
	c := NewCache(10)

	task := c.EnsureRendered(7, 40, doc.ModeText)
	c.Release(7)

	if task.Context().Err() == nil {
		t.Error("release must cancel the in-flight task")
	}
	if c.State(7) != SlotBlank {
		t.Errorf("state = %v after release, want blank", c.State(7))
	}
	if c.Complete(task, surfaceFor(task), nil) {
		t.Error("completion after release must be discarded")
	}
}

func TestCacheClear(t *testing.T) {
	c := NewCache(10)

	t1 := c.EnsureRendered(1, 40, doc.ModeText)
	t2 := c.EnsureRendered(2, 40, doc.ModeText)
	done := c.EnsureRendered(3, 40, doc.ModeText)
	c.Complete(done, surfaceFor(done), nil)

	c.Clear()

	if t1.Context().Err() == nil || t2.Context().Err() == nil {
		t.Error("clear must cancel all in-flight tasks")
	}
	for p := 1; p <= 3; p++ {
		if c.State(p) != SlotBlank {
			t.Errorf("state(%d) = %v after clear, want blank", p, c.State(p))
		}
	}
	if c.Pending() != 0 {
		t.Errorf("pending = %d after clear, want 0", c.Pending())
	}
}
