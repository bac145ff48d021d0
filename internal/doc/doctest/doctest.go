// Package doctest provides an in-memory document engine for tests. Surfaces
// are deterministic, render timing and failures are injectable, and every
// render request is logged so tests can assert scheduling behavior.
package doctest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/quireapp/quire/internal/doc"
)

// PageDest is the fake destination type: it points at a 1-based page of
// the document that returned it.
type PageDest int

// Engine hands out fake documents by path.
type Engine struct {
	mu   sync.Mutex
	docs map[string]*Document
}

func NewEngine(docs ...*Document) *Engine {
	e := &Engine{docs: make(map[string]*Document)}
	for _, d := range docs {
		e.docs[d.name] = d
	}
	return e
}

// Add registers a document under its name.
func (e *Engine) Add(d *Document) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.docs[d.name] = d
}

func (e *Engine) Open(_ context.Context, path string) (doc.Document, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, ok := e.docs[path]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", path, doc.ErrUnreadableDocument)
	}
	return d, nil
}

// Document is a fake document with uniform or per-page sizes.
type Document struct {
	name    string
	sizes   []doc.Size
	outline []doc.OutlineItem

	// RenderDelay makes Render block, honoring context cancellation.
	RenderDelay time.Duration
	// RenderErr fails renders of specific pages.
	RenderErr map[int]error

	mu      sync.Mutex
	renders []doc.RenderRequest
	closed  bool
}

// NewDocument builds a document with n pages of default aspect.
func NewDocument(name string, n int) *Document {
	sizes := make([]doc.Size, n)
	for i := range sizes {
		sizes[i] = doc.Size{Width: 595, Height: 842}
	}
	return &Document{name: name, sizes: sizes, RenderErr: map[int]error{}}
}

// SetPageSize overrides the intrinsic size of page n (1-based).
func (d *Document) SetPageSize(n int, s doc.Size) *Document {
	d.sizes[n-1] = s
	return d
}

// SetOutline installs the outline returned by Outline.
func (d *Document) SetOutline(items []doc.OutlineItem) *Document {
	d.outline = items
	return d
}

// RenderLog returns a copy of all render requests seen so far.
func (d *Document) RenderLog() []doc.RenderRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]doc.RenderRequest, len(d.renders))
	copy(out, d.renders)
	return out
}

func (d *Document) Name() string   { return d.name }
func (d *Document) PageCount() int { return len(d.sizes) }

func (d *Document) Page(_ context.Context, n int) (doc.Page, error) {
	if n < 1 || n > len(d.sizes) {
		return nil, fmt.Errorf("page %d of %d: %w", n, len(d.sizes), doc.ErrPageNotFound)
	}
	return page{number: n, size: d.sizes[n-1]}, nil
}

func (d *Document) Render(ctx context.Context, req doc.RenderRequest) (*doc.Surface, error) {
	d.mu.Lock()
	d.renders = append(d.renders, req)
	d.mu.Unlock()

	if req.Page < 1 || req.Page > len(d.sizes) {
		return nil, fmt.Errorf("render page %d: %w", req.Page, doc.ErrPageNotFound)
	}
	if err := d.RenderErr[req.Page]; err != nil {
		return nil, fmt.Errorf("render page %d: %w: %v", req.Page, doc.ErrRenderFailed, err)
	}
	if d.RenderDelay > 0 {
		select {
		case <-time.After(d.RenderDelay):
		case <-ctx.Done():
			return nil, fmt.Errorf("render page %d: %w", req.Page, doc.ErrRenderCancelled)
		}
	} else if ctx.Err() != nil {
		return nil, fmt.Errorf("render page %d: %w", req.Page, doc.ErrRenderCancelled)
	}

	return &doc.Surface{
		Page:  req.Page,
		Width: req.Width,
		Lines: []string{
			fmt.Sprintf("page %d mode %s", req.Page, req.Mode),
			fmt.Sprintf("width %d", req.Width),
		},
	}, nil
}

func (d *Document) Outline(_ context.Context) ([]doc.OutlineItem, error) {
	return d.outline, nil
}

func (d *Document) ResolveDestination(_ context.Context, dest doc.Destination) (doc.Locator, error) {
	pd, ok := dest.(PageDest)
	if !ok || int(pd) < 1 || int(pd) > len(d.sizes) {
		return doc.Locator{}, fmt.Errorf("resolve %v: %w", dest, doc.ErrUnresolvedDestination)
	}
	return doc.Locator{Ref: int(pd), Top: -1}, nil
}

func (d *Document) PageIndexOf(loc doc.Locator) int {
	n, ok := loc.Ref.(int)
	if !ok || n < 1 || n > len(d.sizes) {
		return 0
	}
	return n
}

func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// Closed reports whether Close was called.
func (d *Document) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

type page struct {
	number int
	size   doc.Size
}

func (p page) Number() int    { return p.number }
func (p page) Size() doc.Size { return p.size }

func (p page) Viewport(scale float64) doc.Size {
	return doc.Size{Width: p.size.Width * scale, Height: p.size.Height * scale}
}
