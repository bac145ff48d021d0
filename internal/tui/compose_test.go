package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quireapp/quire/internal/doc"
	"github.com/quireapp/quire/internal/viewer"
)

// completeSurface forces a ready surface into the cache for page.
func completeSurface(t *testing.T, app *App, page, width int, lines ...string) {
	t.Helper()
	app.cache.Release(page)
	task := app.cache.EnsureRendered(page, width, app.mode)
	require.NotNil(t, task)
	require.True(t, app.cache.Complete(task, &doc.Surface{Page: page, Width: width, Lines: lines}, nil))
}

func TestPadLine(t *testing.T) {
	assert.Equal(t, "abc  ", padLine("abc", 5))
	assert.Equal(t, "", padLine("abc", 0))

	over := padLine(strings.Repeat("x", 10), 4)
	assert.Equal(t, 4, ansi.PrintableRuneWidth(over))

	// A double width rune straddling the cut still pads out exactly.
	wide := padLine("日本語", 5)
	assert.Equal(t, 5, ansi.PrintableRuneWidth(wide))

	styled := padLine("\x1b[31mred\x1b[0m", 6)
	assert.Equal(t, 6, ansi.PrintableRuneWidth(styled))
	assert.Contains(t, styled, "red")
}

func TestPlaceholderLine(t *testing.T) {
	blank := placeholderLine("loading", 10, 0, 10)
	assert.Equal(t, strings.Repeat(" ", 10), blank)

	label := placeholderLine("loading", 10, 5, 10)
	assert.Equal(t, 10, ansi.PrintableRuneWidth(label))
	assert.Contains(t, label, "loading")
}

func TestSlotLine(t *testing.T) {
	app := newTestApp(t)

	t.Run("pending slots show a centered notice", func(t *testing.T) {
		require.Equal(t, viewer.SlotPending, app.cache.State(1))
		line := app.slotLine(1, 50, app.geom.PageRows/2, app.geom.PageRows)
		assert.Contains(t, line, "rendering page 1")
		assert.Equal(t, 50, ansi.PrintableRuneWidth(line))
	})

	t.Run("ready slots draw the surface", func(t *testing.T) {
		completeSurface(t, app, 1, 50, "first", "second", "third")
		line := app.slotLine(1, 50, 0, app.geom.PageRows)
		assert.Equal(t, "first", strings.TrimRight(line, " "))
		assert.Equal(t, 50, ansi.PrintableRuneWidth(line))

		past := app.slotLine(1, 50, 10, app.geom.PageRows)
		assert.Equal(t, strings.Repeat(" ", 50), past)
	})

	t.Run("a zoomed spread pans down the surface", func(t *testing.T) {
		completeSurface(t, app, 1, 50, "first", "second", "third")
		_, err := app.session.ZoomIn()
		require.NoError(t, err)
		app.session.PanBy(2)

		line := app.slotLine(1, 50, 0, app.geom.PageRows)
		assert.Equal(t, "third", strings.TrimRight(line, " "))

		app.session.ResetView()
	})

	t.Run("failed slots say so", func(t *testing.T) {
		app.cache.Release(2)
		task := app.cache.EnsureRendered(2, 50, app.mode)
		require.NotNil(t, task)
		app.cache.Complete(task, nil, errors.New("backend gone"))

		line := app.slotLine(2, 50, app.geom.PageRows/2, app.geom.PageRows)
		assert.Contains(t, line, "page 2 failed to render")
	})
}

func TestSpreadViewComposition(t *testing.T) {
	app := newTestApp(t)

	view := app.spreadView()
	lines := strings.Split(view, "\n")
	require.Len(t, lines, app.geom.PageRows)
	for i, line := range lines {
		assert.Equal(t, 2*app.geom.PageCols+1, ansi.PrintableRuneWidth(line), "line %d", i)
	}
	assert.Contains(t, lines[0], "│")
}

func TestSpreadViewBlankRightSlot(t *testing.T) {
	app := newTestApp(t)
	app.session.SetPageCount(9)
	app.session.SetPage(9)

	left, right := app.spreadPages()
	require.Equal(t, 9, left)
	require.Equal(t, 0, right, "no page faces the last one")

	lines := strings.Split(app.spreadView(), "\n")
	require.Len(t, lines, app.geom.PageRows)
	for i, line := range lines {
		assert.Equal(t, 2*app.geom.PageCols+1, ansi.PrintableRuneWidth(line), "line %d", i)
		assert.True(t, strings.HasSuffix(line, strings.Repeat(" ", app.geom.PageCols)),
			"line %d should have a blank right slot", i)
	}
}

func TestIncomingPages(t *testing.T) {
	app := newTestApp(t)

	require.True(t, app.turn.Request(viewer.TurnForward, app.session))
	left, right := app.incomingPages()
	assert.Equal(t, 3, left)
	assert.Equal(t, 4, right)
	app.turn.Abort()

	app.session.SetPage(3)
	require.True(t, app.turn.Request(viewer.TurnBackward, app.session))
	left, right = app.incomingPages()
	assert.Equal(t, 1, left)
	assert.Equal(t, 2, right)
	app.turn.Abort()

	app.session.SetPage(7)
	require.True(t, app.turn.Request(viewer.TurnForward, app.session))
	left, right = app.incomingPages()
	assert.Equal(t, 9, left)
	assert.Equal(t, 10, right)
}

func TestTurnViewSweep(t *testing.T) {
	app := newTestApp(t)

	app, _ = update(t, app, tea.KeyMsg{Type: tea.KeyRight})
	app, _ = update(t, app, turnStartMsg{seq: app.turn.Seq()})
	require.Equal(t, viewer.TurnRunning, app.turn.Phase())

	t.Run("mid turn shows the sweep over the incoming spread", func(t *testing.T) {
		app.turnStartedAt = time.Now().Add(-app.turnDuration / 2)
		lines := strings.Split(app.spreadView(), "\n")
		require.Len(t, lines, app.geom.PageRows)
		for i, line := range lines {
			assert.Equal(t, 2*app.geom.PageCols+1, ansi.PrintableRuneWidth(line), "line %d", i)
		}
		assert.Contains(t, lines[0], "┃")
		assert.Contains(t, lines[app.geom.PageRows/2], "rendering page 3")
	})

	t.Run("a finished sweep shows the full spread", func(t *testing.T) {
		app.turnStartedAt = time.Now().Add(-3 * app.turnDuration)
		lines := strings.Split(app.spreadView(), "\n")
		for i, line := range lines {
			assert.Equal(t, 2*app.geom.PageCols+1, ansi.PrintableRuneWidth(line), "line %d", i)
			assert.NotContains(t, line, "┃", "line %d", i)
		}
	})
}

func TestTurnProgress(t *testing.T) {
	app := newTestApp(t)
	now := time.Now()

	assert.Equal(t, 0.0, app.turnProgress(now), "no progress before the start event")

	app.turnStartedAt = now.Add(-app.turnDuration / 2)
	assert.InDelta(t, 0.5, app.turnProgress(now), 1e-9)

	app.turnStartedAt = now.Add(-3 * app.turnDuration)
	assert.Equal(t, 1.0, app.turnProgress(now))

	app.turnStartedAt = now.Add(app.turnDuration)
	assert.Equal(t, 0.0, app.turnProgress(now), "a clock skewed start clamps to zero")
}

func TestScrollViewComposition(t *testing.T) {
	app := newPortraitApp(t)
	rows := app.contentRows()
	require.Equal(t, 78, rows)

	lines := strings.Split(app.scrollView(rows), "\n")
	require.Len(t, lines, rows)

	// Pages are centered in the viewport with a two cell margin.
	center := app.geom.PageRows / 2
	assert.Contains(t, lines[center], "rendering page 1")
	assert.True(t, strings.HasPrefix(lines[center], "  "))
	assert.Equal(t, "", lines[app.geom.PageRows], "the inter page gap stays blank")
	assert.Contains(t, lines[app.geom.PageRows+1+center], "rendering page 2")

	for i, line := range lines {
		if line == "" {
			continue
		}
		assert.Equal(t, 38, ansi.PrintableRuneWidth(line), "line %d", i)
	}
}

func TestScrollViewMidPageOffset(t *testing.T) {
	app := newPortraitApp(t)
	_ = app.scrollBy(13)

	rows := app.contentRows()
	lines := strings.Split(app.scrollView(rows), "\n")
	require.Len(t, lines, rows)

	// Page 2's notice row sits at content row 38; with the viewport 13
	// rows down it lands on screen row 25.
	assert.Contains(t, lines[25], "rendering page 2")
	assert.NotContains(t, strings.Join(lines, "\n"), "rendering page 1",
		"page 1's notice row has scrolled off")
}

func TestScrollViewSkipsInvisiblePages(t *testing.T) {
	app := newPortraitApp(t)

	// Only pages near the viewport are materialized at all.
	assert.True(t, app.virt.IsVisible(1))
	assert.False(t, app.virt.IsVisible(9))
	assert.Equal(t, viewer.SlotBlank, app.cache.State(9))
}
