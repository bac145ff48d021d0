package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// truncateEnd shortens s to at most limit terminal cells, appending an
// ellipsis if truncation occurs. Handles negative or tiny limits
// gracefully.
func truncateEnd(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= limit {
		return s
	}
	if limit <= 1 {
		return "…"
	}
	return runewidth.Truncate(s, limit, "…")
}

// truncateMiddle shortens s to at most limit cells by preserving the
// start and end of the string with a single ellipsis in the middle.
// Useful for paths where both ends carry meaning.
func truncateMiddle(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= limit {
		return s
	}
	if limit <= 1 {
		return "…"
	}
	// Split remaining space equally around the ellipsis.
	keep := limit - 1
	left := keep / 2
	right := keep - left
	r := []rune(s)
	head := runewidth.Truncate(s, left, "")
	var tail string
	for i := len(r); i > 0; i-- {
		if runewidth.StringWidth(string(r[i-1:])) > right {
			break
		}
		tail = string(r[i-1:])
	}
	return head + "…" + tail
}

// centerLabel pads s on both sides to exactly width cells, truncating
// first when it does not fit.
func centerLabel(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) > width {
		s = truncateEnd(s, width)
	}
	w := runewidth.StringWidth(s)
	left := (width - w) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-w-left)
}
