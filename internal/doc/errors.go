package doc

import (
	"context"
	"errors"
)

// Sentinel errors engines wrap so callers can classify failures with
// errors.Is without depending on engine internals.
var (
	// ErrUnreadableDocument marks files that exist but cannot be
	// parsed as a document.
	ErrUnreadableDocument = errors.New("document cannot be read")

	// ErrPageNotFound marks page numbers outside the document.
	ErrPageNotFound = errors.New("page not found")

	// ErrRenderFailed marks a page whose content could not be typeset.
	// The failure is scoped to that page; other pages stay renderable.
	ErrRenderFailed = errors.New("page render failed")

	// ErrRenderCancelled marks renders abandoned because their context
	// was cancelled. Cancellation is an expected outcome, not a fault,
	// and must never be surfaced to the reader.
	ErrRenderCancelled = errors.New("page render cancelled")

	// ErrUnresolvedDestination marks outline or link targets that do
	// not lead to a page of this document.
	ErrUnresolvedDestination = errors.New("destination cannot be resolved")
)

// IsCancelled reports whether err is a cancellation outcome, either the
// engine sentinel or a raw context error that escaped unwrapped.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrRenderCancelled) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
