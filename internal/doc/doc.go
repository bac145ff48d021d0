// Package doc defines the contract between the viewer and document engines.
// An engine knows how to open a file format and turn its pages into terminal
// cell surfaces; the viewer drives it through the interfaces below and never
// sees format internals.
package doc

import "context"

// Size is a page extent in PDF points (1/72 inch).
type Size struct {
	Width  float64
	Height float64
}

// Aspect returns height divided by width. A degenerate width yields the
// ISO A-series default so geometry stays usable.
func (s Size) Aspect() float64 {
	if s.Width <= 0 {
		return DefaultAspect
	}
	return s.Height / s.Width
}

// DefaultAspect is the height/width ratio assumed for pages whose true
// size is not known yet (ISO A-series paper).
const DefaultAspect = 1.414

// RenderMode selects how page content is typeset into a surface.
type RenderMode int

const (
	// ModeText lays out the page's extracted text as plain lines.
	// Pages without extractable text fall back to an image preview
	// when the page carries raster images.
	ModeText RenderMode = iota
	// ModeMarkdown runs the page through structure detection and
	// renders styled markdown.
	ModeMarkdown
	// ModeImage renders a cell-art preview of the page's first
	// raster image.
	ModeImage
)

func (m RenderMode) String() string {
	switch m {
	case ModeText:
		return "text"
	case ModeMarkdown:
		return "markdown"
	case ModeImage:
		return "image"
	default:
		return "unknown"
	}
}

// RenderRequest asks for one page typeset into a block Width cells wide.
type RenderRequest struct {
	Page  int // 1-based
	Width int // target width in terminal cells
	Mode  RenderMode
}

// Surface is a rendered page: a block of terminal cell lines, each at most
// Width cells wide. Lines may carry ANSI styling.
type Surface struct {
	Page  int
	Width int
	Lines []string
}

// Destination is an engine-specific reference to a location inside the
// document that produced it, for example an outline target. Pass it only
// back to that document's ResolveDestination.
type Destination any

// Locator is a resolved position inside a document. Ref is the engine's
// token for the target page; Top is the offset from the top edge of that
// page in points, negative when the destination leaves it unspecified.
type Locator struct {
	Ref any
	Top float64
}

// OutlineItem is one entry of the document outline. Dest is nil for
// entries that only group children and cannot be navigated to.
type OutlineItem struct {
	Title    string
	Dest     Destination
	Children []OutlineItem
}

// Engine opens documents of one format.
type Engine interface {
	// Open reads the file at path. Files that cannot be parsed return
	// an error wrapping ErrUnreadableDocument.
	Open(ctx context.Context, path string) (Document, error)
}

// Page describes a single page. Implementations are immutable and safe
// for concurrent use.
type Page interface {
	// Number is the 1-based page number.
	Number() int
	// Size is the intrinsic page extent in points.
	Size() Size
	// Viewport reports the page extent when presented at the given
	// scale factor. Pure, no I/O.
	Viewport(scale float64) Size
}

// Document is an open document. Render and Page honor context
// cancellation between pipeline stages; a cancelled render returns an
// error wrapping ErrRenderCancelled. Close releases the underlying
// readers; all other methods must not be called afterwards.
type Document interface {
	Name() string
	PageCount() int
	Page(ctx context.Context, n int) (Page, error)
	Render(ctx context.Context, req RenderRequest) (*Surface, error)
	Outline(ctx context.Context) ([]OutlineItem, error)
	ResolveDestination(ctx context.Context, dest Destination) (Locator, error)
	// PageIndexOf maps a resolved locator to its 1-based page number,
	// 0 when the locator does not belong to this document.
	PageIndexOf(loc Locator) int
	Close() error
}
