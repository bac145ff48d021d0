package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"

	"github.com/quireapp/quire/internal/viewer"
)

// padLine fits one rendered line into exactly width cells. Surface
// lines may carry ANSI styling, so both measuring and truncation have
// to be escape-aware.
func padLine(s string, width int) string {
	if width <= 0 {
		return ""
	}
	w := ansi.PrintableRuneWidth(s)
	if w > width {
		s = truncate.String(s, uint(width))
		w = ansi.PrintableRuneWidth(s)
	}
	if w < width {
		s += strings.Repeat(" ", width-w)
	}
	return s
}

// placeholderLine draws row of a rows-tall placeholder block: blank
// except for a centered label halfway down.
func placeholderLine(label string, width, row, rows int) string {
	if row == rows/2 {
		return PlaceholderStyle.Render(centerLabel(label, width))
	}
	return strings.Repeat(" ", width)
}

// slotLine renders one row of a page slot from whatever the surface
// cache holds for it right now.
func (a *App) slotLine(page, width, row, rows int) string {
	switch a.cache.State(page) {
	case viewer.SlotReady:
		s, ok := a.cache.Surface(page)
		if !ok {
			return strings.Repeat(" ", width)
		}
		idx := row
		if a.session.Layout() == viewer.LayoutSpread && a.session.Zoom() > 1 {
			idx += a.session.Pan()
		}
		if idx >= len(s.Lines) {
			return strings.Repeat(" ", width)
		}
		return padLine(s.Lines[idx], width)
	case viewer.SlotPending:
		return placeholderLine(fmt.Sprintf("rendering page %d…", page), width, row, rows)
	case viewer.SlotFailed:
		return placeholderLine(fmt.Sprintf("page %d failed to render", page), width, row, rows)
	default:
		return strings.Repeat(" ", width)
	}
}

// spreadSlotLine renders one row of the left or right spread slot.
// Page 0 is the blank right slot past the end of an odd page count.
func (a *App) spreadSlotLine(page, row int) string {
	if page == 0 {
		return strings.Repeat(" ", a.geom.PageCols)
	}
	return a.slotLine(page, a.geom.PageCols, row, a.geom.PageRows)
}

// spreadView composes the open book: two page slots around a divider,
// or the running turn animation.
func (a *App) spreadView() string {
	if a.turn.Phase() == viewer.TurnRunning {
		return a.turnView()
	}
	left, right := a.spreadPages()
	div := DividerStyle.Render("│")
	lines := make([]string, a.geom.PageRows)
	for i := range lines {
		lines[i] = a.spreadSlotLine(left, i) + div + a.spreadSlotLine(right, i)
	}
	return strings.Join(lines, "\n")
}

// turnView draws the page-turn frames: the incoming spread wipes in
// behind a sweep bar that advances with the turn progress. Purely
// cosmetic; the page commit happens only on the finish event.
func (a *App) turnView() string {
	left, right := a.incomingPages()
	div := DividerStyle.Render("│")
	total := a.geom.PageCols*2 + 1
	cut := int(a.turnProgress(time.Now()) * float64(total))
	bar := SweepStyle.Render("┃")

	lines := make([]string, a.geom.PageRows)
	for i := range lines {
		full := a.spreadSlotLine(left, i) + div + a.spreadSlotLine(right, i)
		if cut >= total {
			lines[i] = full
			continue
		}
		lines[i] = padLine(full, cut) + bar + strings.Repeat(" ", total-cut-1)
	}
	return strings.Join(lines, "\n")
}

// scrollView windows the continuous page column to the viewport.
func (a *App) scrollView(rows int) string {
	g := a.geom
	pitch := g.PageRows + g.Gap
	top := a.virt.Offset()
	var pad string
	if margin := (a.width - g.PageCols) / 2; margin > 0 {
		pad = strings.Repeat(" ", margin)
	}

	content := a.virt.ContentRows()
	lines := make([]string, rows)
	for i := range lines {
		r := top + i
		if r >= content {
			continue
		}
		page := r/pitch + 1
		within := r - (page-1)*pitch
		if within >= g.PageRows {
			continue // inter-page gap
		}
		if !a.virt.IsVisible(page) {
			continue
		}
		lines[i] = pad + a.slotLine(page, g.PageCols, within, g.PageRows)
	}
	return strings.Join(lines, "\n")
}

// spreadPages is the pair shown by the resting spread. The right slot
// is 0 when the current page is the document's last.
func (a *App) spreadPages() (int, int) {
	left := a.session.Page()
	right := left + 1
	if right > a.session.PageCount() {
		right = 0
	}
	return left, right
}

// incomingPages is the pair a running turn lands on.
func (a *App) incomingPages() (int, int) {
	left := a.session.Page()
	if a.turn.Direction() == viewer.TurnForward {
		left += 2
	} else {
		left -= 2
		if left < 1 {
			left = 1
		}
	}
	right := left + 1
	if right > a.session.PageCount() {
		right = 0
	}
	return left, right
}

// turnProgress is how far the sweep has come, in [0, 1], against the
// configured duration.
func (a *App) turnProgress(now time.Time) float64 {
	if a.turnStartedAt.IsZero() {
		return 0
	}
	p := float64(now.Sub(a.turnStartedAt)) / float64(a.turnDuration)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
