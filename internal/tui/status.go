package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/quireapp/quire/internal/viewer"
)

// Canonical short status messages used across the app.
const (
	MsgOpening           = "Opening…"
	MsgPortraitScroll    = "Portrait viewport, showing the scroll layout"
	MsgSpreadUnavailable = "Spread needs a landscape viewport"
	MsgZoomUnavailable   = "Zoom works in the spread layout"
	MsgNoOutline         = "Document has no outline"
	MsgNoDestination     = "Chapter has no destination"
	MsgChapterUnresolved = "Chapter target cannot be resolved"
	MsgBookmarkRemoved   = "Bookmark removed"
	MsgNoBookmarks       = "No bookmarks yet"
)

func MsgBookmarkAdded(name string, page int) string {
	return fmt.Sprintf("Bookmarked page %d as '%s'", page, strings.TrimSpace(name))
}

func MsgBookmarksExported(n int, path string) string {
	return fmt.Sprintf("Exported %d bookmarks to %s", n, path)
}

func MsgBookmarksImported(n int) string {
	if n == 1 {
		return "Imported 1 bookmark"
	}
	return fmt.Sprintf("Imported %d bookmarks", n)
}

func MsgRenderMode(mode string) string {
	return fmt.Sprintf("Render mode: %s", mode)
}

func MsgZoomLevel(z float64) string {
	return fmt.Sprintf("Zoom %d%%", int(math.Round(z*100)))
}

// MsgPagePosition formats the position indicator for the status bar:
// "12-13/264" for a full spread, "12/264" otherwise.
func MsgPagePosition(s *viewer.Session) string {
	if s == nil {
		return ""
	}
	if s.Layout() == viewer.LayoutSpread && s.Page()+1 <= s.PageCount() {
		return fmt.Sprintf("%d-%d/%d", s.Page(), s.Page()+1, s.PageCount())
	}
	return fmt.Sprintf("%d/%d", s.Page(), s.PageCount())
}
