package viewer

import (
	"errors"
	"math"
)

// Zoom limits for the spread layout.
const (
	MinZoom  = 0.5
	MaxZoom  = 3.0
	ZoomStep = 0.2
)

var (
	// ErrSpreadUnavailable rejects the spread layout while the
	// viewport is portrait shaped.
	ErrSpreadUnavailable = errors.New("spread layout requires a landscape viewport")

	// ErrZoomUnavailable rejects zoom outside the spread layout.
	ErrZoomUnavailable = errors.New("zoom only applies to the spread layout")
)

// Session is the authoritative view state: layout, orientation, current
// page, zoom and pan. All writes clamp so the state never leaves its
// documented ranges. Not safe for concurrent use; the event loop owns it.
type Session struct {
	layout      LayoutMode
	orientation Orientation
	page        int
	pageCount   int
	zoom        float64
	pan         int

	// coerced notes that the current scroll layout was forced by a
	// portrait viewport rather than chosen. Turning the terminal back
	// to landscape clears it without restoring the spread.
	coerced bool
}

// NewSession starts at page 1 in the spread layout, or the scroll layout
// when the viewport is already portrait.
func NewSession(pageCount int, o Orientation) *Session {
	s := &Session{
		layout:      LayoutSpread,
		orientation: o,
		page:        1,
		pageCount:   pageCount,
		zoom:        1.0,
	}
	if pageCount < 1 {
		s.pageCount = 1
	}
	if o == Portrait {
		s.layout = LayoutScroll
		s.coerced = true
	}
	return s
}

func (s *Session) Layout() LayoutMode       { return s.layout }
func (s *Session) Orientation() Orientation { return s.orientation }
func (s *Session) Page() int                { return s.page }
func (s *Session) PageCount() int           { return s.pageCount }
func (s *Session) Zoom() float64            { return s.zoom }
func (s *Session) Pan() int                 { return s.pan }

// SetOrientation applies a viewport orientation change. Flipping to
// portrait while the spread is shown forces the scroll layout, exactly
// once per flip; returning to landscape never restores the spread on
// its own. It reports whether the layout changed.
func (s *Session) SetOrientation(o Orientation) bool {
	if o == s.orientation {
		return false
	}
	s.orientation = o

	if o == Portrait && s.layout == LayoutSpread {
		s.layout = LayoutScroll
		s.coerced = true
		s.resetView()
		return true
	}
	if o == Landscape {
		s.coerced = false
	}
	return false
}

// SelectLayout switches the presentation. The spread is refused while
// the viewport is portrait.
func (s *Session) SelectLayout(m LayoutMode) error {
	if m == s.layout {
		return nil
	}
	if m == LayoutSpread && s.orientation == Portrait {
		return ErrSpreadUnavailable
	}
	s.layout = m
	s.coerced = false
	s.resetView()
	return nil
}

// Coerced reports whether the current scroll layout was forced by a
// portrait viewport.
func (s *Session) Coerced() bool { return s.coerced }

// SetPage moves to page n, clamped into [1, PageCount]. Navigation
// always resets zoom and pan.
func (s *Session) SetPage(n int) int {
	s.page = clampPage(n, s.pageCount)
	s.resetView()
	return s.page
}

// SetPageCount installs the document length and re-clamps the current
// page.
func (s *Session) SetPageCount(n int) {
	if n < 1 {
		n = 1
	}
	s.pageCount = n
	s.page = clampPage(s.page, n)
}

// ZoomIn grows the spread zoom one step, capped at MaxZoom.
func (s *Session) ZoomIn() (float64, error) { return s.zoomBy(ZoomStep) }

// ZoomOut shrinks the spread zoom one step, capped at MinZoom.
func (s *Session) ZoomOut() (float64, error) { return s.zoomBy(-ZoomStep) }

func (s *Session) zoomBy(step float64) (float64, error) {
	if s.layout != LayoutSpread {
		return s.zoom, ErrZoomUnavailable
	}
	z := s.zoom + step
	// Steps are tenths; keep the accumulator exact.
	z = math.Round(z*10) / 10
	if z < MinZoom {
		z = MinZoom
	}
	if z > MaxZoom {
		z = MaxZoom
	}
	s.zoom = z
	if z == 1.0 {
		s.pan = 0
	}
	return s.zoom, nil
}

// PanBy shifts the zoomed page window vertically. Panning only means
// anything while zoomed in.
func (s *Session) PanBy(rows int) int {
	if s.layout != LayoutSpread || s.zoom <= 1.0 {
		return s.pan
	}
	s.pan += rows
	if s.pan < 0 {
		s.pan = 0
	}
	return s.pan
}

// ResetView restores the neutral zoom and pan.
func (s *Session) ResetView() { s.resetView() }

func (s *Session) resetView() {
	s.zoom = 1.0
	s.pan = 0
}

func clampPage(n, count int) int {
	if n < 1 {
		return 1
	}
	if n > count {
		return count
	}
	return n
}
