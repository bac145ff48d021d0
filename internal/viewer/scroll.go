package viewer

import "sort"

// NavigationKind says why the scroll position is moving. It travels as
// an explicit parameter through every jump so the presentation can tell
// a reader-initiated jump (animated) from initial placement (instant),
// and so a passive position sync never re-triggers an animation.
type NavigationKind int

const (
	// KindUserJump is an explicit navigation: go-to-page, outline,
	// bookmark. Presented as an eased scroll.
	KindUserJump NavigationKind = iota
	// KindInitialPlacement restores a position without ceremony, for
	// example when reopening a document at the remembered page.
	KindInitialPlacement
)

func (k NavigationKind) String() string {
	if k == KindInitialPlacement {
		return "initial-placement"
	}
	return "user-jump"
}

// currentThreshold is the visible fraction a page needs before it can
// claim the current-page marker.
const currentThreshold = 0.4

// Virtualizer tracks which pages of the scroll layout are worth
// rendering and which page the reader is looking at. The visible set
// starts with the first two pages and only ever grows: once a page has
// been near the viewport its surface stays warm, trading memory for
// never re-rendering on the way back up.
type Virtualizer struct {
	pageCount int
	pageRows  int
	gap       int
	margin    int
	viewRows  int
	top       int

	visible map[int]bool
	current int
}

// NewVirtualizer seeds the visible set with pages 1 and 2.
func NewVirtualizer(pageCount int, m Metrics) *Virtualizer {
	m = m.normalized()
	v := &Virtualizer{
		pageCount: pageCount,
		gap:       m.PageGap,
		margin:    m.ProximityMargin,
		visible:   make(map[int]bool),
		current:   1,
	}
	for p := 1; p <= 2 && p <= pageCount; p++ {
		v.visible[p] = true
	}
	return v
}

// SetGeometry installs the page extent and viewport height, then
// re-evaluates proximity at the current offset. It returns the pages
// that became visible.
func (v *Virtualizer) SetGeometry(g Geometry, viewRows int) []int {
	v.pageRows = g.PageRows
	v.gap = g.Gap
	v.viewRows = viewRows
	return v.Sync(v.top)
}

// PageTop is the content row where page begins.
func (v *Virtualizer) PageTop(page int) int {
	return (page - 1) * (v.pageRows + v.gap)
}

// ContentRows is the total scrollable height.
func (v *Virtualizer) ContentRows() int {
	if v.pageCount == 0 {
		return 0
	}
	return v.pageCount*v.pageRows + (v.pageCount-1)*v.gap
}

// MaxOffset is the largest useful scroll offset.
func (v *Virtualizer) MaxOffset() int {
	max := v.ContentRows() - v.viewRows
	if max < 0 {
		return 0
	}
	return max
}

// Sync applies a new scroll offset: pages whose container lies within
// the proximity margin of the viewport join the visible set, and the
// page covering the largest fraction of itself above the threshold
// becomes current. Later pages win exact ties, matching the
// last-observation-wins behavior of the original intersection handling.
// It returns pages newly added to the visible set, in order.
func (v *Virtualizer) Sync(top int) []int {
	if top < 0 {
		top = 0
	}
	if max := v.MaxOffset(); top > max {
		top = max
	}
	v.top = top

	if v.pageRows <= 0 {
		return nil
	}

	var added []int
	nearTop := top - v.margin
	nearBottom := top + v.viewRows + v.margin

	bestFraction := 0.0
	bestPage := 0

	for p := 1; p <= v.pageCount; p++ {
		pTop := v.PageTop(p)
		pBottom := pTop + v.pageRows

		if pBottom > nearTop && pTop < nearBottom && !v.visible[p] {
			v.visible[p] = true
			added = append(added, p)
		}

		overlap := min(pBottom, top+v.viewRows) - max(pTop, top)
		if overlap <= 0 {
			continue
		}
		fraction := float64(overlap) / float64(v.pageRows)
		if fraction > currentThreshold && fraction >= bestFraction {
			bestFraction = fraction
			bestPage = p
		}
	}

	if bestPage != 0 {
		v.current = bestPage
	}
	return added
}

// Offset is the current scroll offset in rows.
func (v *Virtualizer) Offset() int { return v.top }

// Current is the page considered read right now.
func (v *Virtualizer) Current() int { return v.current }

// Visible returns the visible set in page order.
func (v *Virtualizer) Visible() []int {
	pages := make([]int, 0, len(v.visible))
	for p := range v.visible {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}

// IsVisible reports whether page has joined the visible set.
func (v *Virtualizer) IsVisible(page int) bool { return v.visible[page] }
