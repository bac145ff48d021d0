package tui

import (
	"context"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/quireapp/quire/internal/bookmarks"
	"github.com/quireapp/quire/internal/debuglog"
	"github.com/quireapp/quire/internal/doc"
	"github.com/quireapp/quire/internal/viewer"
)

const (
	turnFrameInterval   = 33 * time.Millisecond
	scrollFrameInterval = 33 * time.Millisecond
	resizeSettleDelay   = 120 * time.Millisecond
	positionFlushDelay  = 2 * time.Second
)

func (a *App) openDocument(path string) tea.Cmd {
	return func() tea.Msg {
		resolved, err := a.validator.ValidateAndResolve(path)
		if err != nil {
			return docOpenedMsg{path: path, err: err}
		}
		document, err := a.engine.Open(context.Background(), resolved)
		if err != nil {
			return docOpenedMsg{path: resolved, err: wrapErr("opening document", err)}
		}
		return docOpenedMsg{document: document, path: resolved}
	}
}

// renderSurface dispatches one render task. Completion always reports
// back with the task pointer; the cache decides whether the result is
// still current.
func (a *App) renderSurface(task *viewer.RenderTask) tea.Cmd {
	document := a.document
	return func() tea.Msg {
		surface, err := document.Render(task.Context(), doc.RenderRequest{
			Page:  task.Page,
			Width: task.Width,
			Mode:  task.Mode,
		})
		return surfaceRenderedMsg{task: task, surface: surface, err: err}
	}
}

// measureFirstPage reads the true page proportions so the geometry can
// drop the provisional default aspect.
func (a *App) measureFirstPage() tea.Cmd {
	document := a.document
	return func() tea.Msg {
		page, err := document.Page(context.Background(), 1)
		if err != nil {
			debuglog.Debugf("measuring first page: %v", err)
			return nil
		}
		size := page.Size()
		if size.Width <= 0 || size.Height <= 0 {
			return nil
		}
		return pageAspectMsg{aspect: size.Aspect()}
	}
}

func (a *App) loadOutline() tea.Cmd {
	document := a.document
	return func() tea.Msg {
		items, err := document.Outline(context.Background())
		if err != nil {
			return outlineLoadedMsg{err: err}
		}
		return outlineLoadedMsg{entries: flattenOutline(items, 0, nil)}
	}
}

func (a *App) resolveDestination(entry outlineEntry) tea.Cmd {
	document := a.document
	return func() tea.Msg {
		loc, err := document.ResolveDestination(context.Background(), entry.dest)
		if err != nil {
			return destinationResolvedMsg{err: err}
		}
		page := document.PageIndexOf(loc)
		if page < 1 {
			return destinationResolvedMsg{err: doc.ErrUnresolvedDestination}
		}
		return destinationResolvedMsg{page: page}
	}
}

func (a *App) loadBookmarksCmd() tea.Cmd {
	store, docPath := a.store, a.docPath
	return func() tea.Msg {
		list, err := store.Load(docPath)
		if err != nil {
			return bookmarksLoadedMsg{err: err}
		}
		return bookmarksLoadedMsg{list: list}
	}
}

func (a *App) addBookmark(page int, name string) tea.Cmd {
	store, docPath := a.store, a.docPath
	return func() tea.Msg {
		var bm *bookmarks.Bookmark
		err := retryOperation(func() error {
			var addErr error
			bm, addErr = store.Add(docPath, page, name)
			return addErr
		})
		return bookmarkAddedMsg{bookmark: bm, err: err}
	}
}

func (a *App) removeBookmark(id string) tea.Cmd {
	store, docPath := a.store, a.docPath
	return func() tea.Msg {
		err := retryOperation(func() error { return store.Remove(docPath, id) })
		return bookmarkRemovedMsg{err: err}
	}
}

// interchangePath is the sibling file exports write and imports read.
func (a *App) interchangePath() string {
	return a.docPath + ".bookmarks.json"
}

func (a *App) exportBookmarks() tea.Cmd {
	store, docPath, out := a.store, a.docPath, a.interchangePath()
	return func() tea.Msg {
		list, err := store.Load(docPath)
		if err != nil {
			return bookmarksExportedMsg{err: err}
		}
		data, err := bookmarks.Export(list)
		if err != nil {
			return bookmarksExportedMsg{err: err}
		}
		if err := os.WriteFile(out, data, 0o600); err != nil {
			return bookmarksExportedMsg{err: err}
		}
		return bookmarksExportedMsg{path: out, count: len(list)}
	}
}

func (a *App) importBookmarks() tea.Cmd {
	store, docPath, in := a.store, a.docPath, a.interchangePath()
	return func() tea.Msg {
		data, err := os.ReadFile(in)
		if err != nil {
			return bookmarksImportedMsg{err: err}
		}
		added, err := store.Import(docPath, data)
		if err != nil {
			return bookmarksImportedMsg{err: err}
		}
		return bookmarksImportedMsg{added: added}
	}
}

func (a *App) loadPosition() tea.Cmd {
	store, docPath := a.store, a.docPath
	return func() tea.Msg {
		pos, err := store.LoadPosition(docPath)
		if err != nil {
			debuglog.Debugf("loading reading position: %v", err)
			return nil
		}
		if pos == nil {
			return nil
		}
		return positionLoadedMsg{pos: pos}
	}
}

// savePosition snapshots the reading position before the command runs,
// so a jump landing mid-write cannot tear the value.
func (a *App) savePosition() tea.Cmd {
	if a.session == nil || a.docPath == "" {
		return nil
	}
	pos := a.currentPosition()
	store, docPath := a.store, a.docPath
	return func() tea.Msg {
		if err := retryOperation(func() error { return store.SavePosition(docPath, pos) }); err != nil {
			debuglog.Warnf("saving reading position: %v", err)
		}
		return nil
	}
}

// persistPositionNow writes the position synchronously, for the way out
// when no command will get a chance to run.
func (a *App) persistPositionNow() {
	if a.session == nil || a.docPath == "" {
		return
	}
	if err := a.store.SavePosition(a.docPath, a.currentPosition()); err != nil {
		debuglog.Warnf("saving reading position: %v", err)
	}
}

func (a *App) currentPosition() *bookmarks.Position {
	pos := &bookmarks.Position{
		Page:   a.session.Page(),
		Layout: a.session.Layout().String(),
	}
	if a.session.Layout() == viewer.LayoutScroll && a.virt != nil {
		pos.ScrollOffset = a.virt.Offset()
	}
	return pos
}

func (a *App) scheduleTurnStart(seq uint64) tea.Cmd {
	return tea.Tick(viewer.TurnStartDelay, func(time.Time) tea.Msg {
		return turnStartMsg{seq: seq}
	})
}

func (a *App) scheduleTurnFinish(seq uint64) tea.Cmd {
	return tea.Tick(a.turnDuration, func(time.Time) tea.Msg {
		return turnFinishMsg{seq: seq}
	})
}

func (a *App) turnFrameTick(seq uint64) tea.Cmd {
	return tea.Tick(turnFrameInterval, func(time.Time) tea.Msg {
		return turnFrameMsg{seq: seq}
	})
}

func (a *App) scrollFrameTick(seq int) tea.Cmd {
	return tea.Tick(scrollFrameInterval, func(time.Time) tea.Msg {
		return scrollFrameMsg{seq: seq}
	})
}

func (a *App) scheduleResizeSettle(seq int) tea.Cmd {
	return tea.Tick(resizeSettleDelay, func(time.Time) tea.Msg {
		return resizeSettledMsg{seq: seq}
	})
}

func (a *App) schedulePositionFlush(seq int) tea.Cmd {
	return tea.Tick(positionFlushDelay, func(time.Time) tea.Msg {
		return positionFlushMsg{seq: seq}
	})
}

// retryOperation retries a database operation up to 3 times with exponential backoff
func retryOperation(operation func() error) error {
	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		if err := operation(); err != nil {
			lastErr = err
			if i < maxRetries-1 {
				delay := baseDelay * time.Duration(1<<i) // exponential backoff
				time.Sleep(delay)
				continue
			}
		} else {
			return nil
		}
	}
	return lastErr
}

func flattenOutline(items []doc.OutlineItem, depth int, out []outlineEntry) []outlineEntry {
	for _, it := range items {
		out = append(out, outlineEntry{title: it.Title, dest: it.Dest, depth: depth})
		out = flattenOutline(it.Children, depth+1, out)
	}
	return out
}
