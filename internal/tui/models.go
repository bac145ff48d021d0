package tui

type View int

const (
	ViewPicker View = iota
	ViewReader
	ViewOutline
	ViewBookmarks
	ViewGoTo
	ViewBookmarkAdd
	ViewHelp
)
