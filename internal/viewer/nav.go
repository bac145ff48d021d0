package viewer

// Jump is the outcome of a navigation: the page actually landed on after
// clamping and snapping, and where the scroll layout must move to
// present it. ScrollOffset is -1 in the spread layout, where the jump is
// a direct state change with no scrolling involved.
type Jump struct {
	Page         int
	Kind         NavigationKind
	ScrollOffset int
}

// Navigator is the single entry point for every direct jump: go-to-page,
// outline entries, bookmarks, and position restore all land here. Turn
// animations stay with the turn machine; a navigator jump always aborts
// any turn in flight so its finish event dies stale.
type Navigator struct {
	session *Session
	turn    *Turn
	virt    *Virtualizer
}

// NewNavigator wires the facade over the session, turn machine and
// virtualizer it coordinates.
func NewNavigator(s *Session, t *Turn, v *Virtualizer) *Navigator {
	return &Navigator{session: s, turn: t, virt: v}
}

// GoToPage jumps to page n. The target is clamped into the document;
// in the landscape spread an even target snaps back one page so the
// requested page lands in the left slot. Every jump resets zoom and pan
// and cancels an in-flight turn without committing it.
func (n *Navigator) GoToPage(page int, kind NavigationKind) Jump {
	s := n.session
	page = clampPage(page, s.PageCount())

	if s.Layout() == LayoutSpread && s.Orientation() == Landscape && page%2 == 0 {
		page--
	}

	n.turn.Abort()
	s.SetPage(page)

	j := Jump{Page: page, Kind: kind, ScrollOffset: -1}
	if s.Layout() == LayoutScroll {
		j.ScrollOffset = n.virt.PageTop(page)
		if max := n.virt.MaxOffset(); j.ScrollOffset > max {
			j.ScrollOffset = max
		}
	}
	return j
}

// NextPage advances by the layout increment without animation, for the
// scroll layout's page keys. The spread layout animates through the
// turn machine instead.
func (n *Navigator) NextPage(kind NavigationKind) Jump {
	return n.GoToPage(n.session.Page()+n.session.increment(), kind)
}

// PrevPage is the backward counterpart of NextPage.
func (n *Navigator) PrevPage(kind NavigationKind) Jump {
	return n.GoToPage(n.session.Page()-n.session.increment(), kind)
}
