// Package viewer holds the presentation core of the reader: layout
// geometry, the page surface cache, the view session, the page-turn
// machine, the scroll virtualizer and the navigation facade. Everything
// here is synchronous and event-loop agnostic; the TUI drives it with
// messages and owns all timing.
package viewer

import (
	"math"

	"github.com/quireapp/quire/internal/doc"
)

// LayoutMode selects how pages are presented.
type LayoutMode int

const (
	// LayoutSpread shows two facing pages side by side with animated
	// page turns, like an open book.
	LayoutSpread LayoutMode = iota
	// LayoutScroll stacks all pages in one continuous column.
	LayoutScroll
)

func (m LayoutMode) String() string {
	switch m {
	case LayoutSpread:
		return "spread"
	case LayoutScroll:
		return "scroll"
	default:
		return "unknown"
	}
}

// Orientation classifies the viewport shape after cell-aspect correction.
type Orientation int

const (
	Landscape Orientation = iota
	Portrait
)

func (o Orientation) String() string {
	if o == Portrait {
		return "portrait"
	}
	return "landscape"
}

// Viewport is the terminal extent in cells.
type Viewport struct {
	Cols int
	Rows int
}

// Metrics are the layout tunables. Zero values are replaced by defaults
// so a Metrics{} literal stays usable in tests.
type Metrics struct {
	// CellAspect is the width/height ratio of one terminal cell.
	CellAspect float64
	// HorizontalFill is the fraction of the viewport width given to
	// page content.
	HorizontalFill float64
	// VerticalPadding is the row padding above and below the spread.
	VerticalPadding int
	// PageGap is the blank rows between pages in the scroll layout.
	PageGap int
	// ProximityMargin is how many rows beyond the viewport edges the
	// virtualizer treats as near enough to render.
	ProximityMargin int
}

const (
	defaultCellAspect      = 0.5
	defaultHorizontalFill  = 0.9
	defaultVerticalPadding = 1
	defaultPageGap         = 1
	defaultProximityMargin = 40
)

// DefaultMetrics returns the standard layout tuning.
func DefaultMetrics() Metrics {
	return Metrics{
		CellAspect:      defaultCellAspect,
		HorizontalFill:  defaultHorizontalFill,
		VerticalPadding: defaultVerticalPadding,
		PageGap:         defaultPageGap,
		ProximityMargin: defaultProximityMargin,
	}
}

func (m Metrics) normalized() Metrics {
	if m.CellAspect <= 0 {
		m.CellAspect = defaultCellAspect
	}
	if m.HorizontalFill <= 0 || m.HorizontalFill > 1 {
		m.HorizontalFill = defaultHorizontalFill
	}
	if m.VerticalPadding < 0 {
		m.VerticalPadding = defaultVerticalPadding
	}
	if m.PageGap < 0 {
		m.PageGap = defaultPageGap
	}
	if m.ProximityMargin <= 0 {
		m.ProximityMargin = defaultProximityMargin
	}
	return m
}

// OrientationOf derives the viewport orientation from its cell extent,
// correcting for cells being taller than wide.
func OrientationOf(vp Viewport, m Metrics) Orientation {
	m = m.normalized()
	if float64(vp.Cols)*m.CellAspect > float64(vp.Rows) {
		return Landscape
	}
	return Portrait
}

// Geometry is the resolved cell budget for one layout pass.
type Geometry struct {
	Layout LayoutMode

	// PageCols and PageRows are the extent of a single page.
	PageCols int
	PageRows int

	// ContainerCols is the page content width: both pages in spread,
	// one page in scroll. The spread divider column is drawn on top
	// and is not part of the budget.
	ContainerCols int

	// Gap is the blank rows between scroll pages.
	Gap int
}

// Resolve computes the page geometry for a viewport. aspect is the page
// height/width ratio (use doc.DefaultAspect until the true value is
// known); chrome is the rows reserved for the status bar. Resolve is a
// pure function and never returns extents below one cell.
func Resolve(vp Viewport, layout LayoutMode, aspect float64, chrome int, m Metrics) Geometry {
	m = m.normalized()
	if aspect <= 0 {
		aspect = doc.DefaultAspect
	}

	switch layout {
	case LayoutScroll:
		pageCols := int(float64(vp.Cols) * m.HorizontalFill)
		if pageCols < 1 {
			pageCols = 1
		}
		pageRows := int(math.Round(float64(pageCols) * aspect * m.CellAspect))
		if pageRows < 1 {
			pageRows = 1
		}
		return Geometry{
			Layout:        LayoutScroll,
			PageCols:      pageCols,
			PageRows:      pageRows,
			ContainerCols: pageCols,
			Gap:           m.PageGap,
		}

	default:
		availRows := vp.Rows - 2*m.VerticalPadding - chrome
		if availRows < 1 {
			availRows = 1
		}

		// The spread must fit both axes: cap the container at 90% of
		// the width, then shrink until the page height fits.
		widthCap := float64(vp.Cols) * m.HorizontalFill
		heightCap := 2 * float64(availRows) / (aspect * m.CellAspect)
		containerCols := int(math.Min(widthCap, heightCap))
		if containerCols < 2 {
			containerCols = 2
		}

		pageCols := containerCols / 2
		pageRows := int(math.Round(float64(pageCols) * aspect * m.CellAspect))
		if pageRows < 1 {
			pageRows = 1
		}
		if pageRows > availRows {
			pageRows = availRows
		}
		return Geometry{
			Layout:        LayoutSpread,
			PageCols:      pageCols,
			PageRows:      pageRows,
			ContainerCols: pageCols * 2,
		}
	}
}
