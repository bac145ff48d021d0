// Package pdf implements the document engine for PDF files. Document
// structure (page tree, outline, named destinations) is read with
// seehuhn.de/go/pdf; page content (text, markdown, raster images) is
// extracted with tsawler/tabula. The two libraries keep independent
// readers over the same file for the lifetime of the document.
package pdf

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/patrickmn/go-cache"
	"github.com/tsawler/tabula/reader"
	pdflib "seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/pagetree"

	"github.com/quireapp/quire/internal/debuglog"
	"github.com/quireapp/quire/internal/doc"
)

const (
	extractTTL     = 30 * time.Minute
	extractCleanup = 10 * time.Minute
)

// Engine opens PDF documents.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Open reads the PDF at path with both readers and indexes its page tree.
// Any parse failure maps to doc.ErrUnreadableDocument.
func (e *Engine) Open(ctx context.Context, path string) (doc.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	structure, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w: %v", filepath.Base(path), doc.ErrUnreadableDocument, err)
	}

	refs, err := pagetree.FindPages(structure)
	if err != nil {
		structure.Close()
		return nil, fmt.Errorf("reading page tree of %s: %w: %v", filepath.Base(path), doc.ErrUnreadableDocument, err)
	}
	if len(refs) == 0 {
		structure.Close()
		return nil, fmt.Errorf("%s has no pages: %w", filepath.Base(path), doc.ErrUnreadableDocument)
	}

	content, err := reader.Open(path)
	if err != nil {
		structure.Close()
		return nil, fmt.Errorf("opening %s for extraction: %w: %v", filepath.Base(path), doc.ErrUnreadableDocument, err)
	}

	index := make(map[pdflib.Reference]int, len(refs))
	for i, ref := range refs {
		index[ref] = i + 1
	}

	d := &document{
		name:      filepath.Base(path),
		path:      path,
		structure: structure,
		content:   content,
		refs:      refs,
		refIndex:  index,
		extract:   cache.New(extractTTL, extractCleanup),
		renderers: make(map[int]*glamour.TermRenderer),
	}
	debuglog.Infof("opened %s: %d pages", d.name, len(refs))
	return d, nil
}

// document is an open PDF. Neither underlying reader is safe for
// concurrent use, so all file access is serialized on mu.
type document struct {
	name string
	path string

	structure *pdflib.Reader
	content   *reader.Reader
	refs      []pdflib.Reference
	refIndex  map[pdflib.Reference]int

	// extract memoizes per-page text, markdown and sizes keyed by
	// "text:n", "md:n", "size:n".
	extract *cache.Cache

	mu        sync.Mutex
	renderers map[int]*glamour.TermRenderer

	outlineOnce sync.Once
	outlineVal  []doc.OutlineItem
	outlineErr  error

	namesOnce sync.Once
	names     *namedDests

	closeOnce sync.Once
	closeErr  error
}

func (d *document) Name() string   { return d.name }
func (d *document) PageCount() int { return len(d.refs) }

func (d *document) Page(ctx context.Context, n int) (doc.Page, error) {
	if n < 1 || n > len(d.refs) {
		return nil, fmt.Errorf("page %d of %d in %s: %w", n, len(d.refs), d.name, doc.ErrPageNotFound)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("page %d of %s: %w", n, d.name, doc.ErrRenderCancelled)
	}

	size, err := d.pageSize(n)
	if err != nil {
		return nil, err
	}
	return page{number: n, size: size}, nil
}

func (d *document) pageSize(n int) (doc.Size, error) {
	if v, ok := d.extract.Get(fmt.Sprintf("size:%d", n)); ok {
		return v.(doc.Size), nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pageSizeLocked(n)
}

// pageSizeLocked resolves the effective page extent, honoring inherited
// MediaBox entries and 90/270 degree rotation. Callers hold mu.
func (d *document) pageSizeLocked(n int) (doc.Size, error) {
	key := fmt.Sprintf("size:%d", n)
	if v, ok := d.extract.Get(key); ok {
		return v.(doc.Size), nil
	}

	dict, err := pagetree.GetPage(d.structure, n-1)
	if err != nil {
		return doc.Size{}, fmt.Errorf("page %d of %s: %w: %v", n, d.name, doc.ErrPageNotFound, err)
	}

	size := doc.Size{Width: 595, Height: 842}
	if box, err := pdflib.GetRectangle(d.structure, dict["MediaBox"]); err == nil && box != nil {
		w := math.Abs(box.URx - box.LLx)
		h := math.Abs(box.URy - box.LLy)
		if w > 0 && h > 0 {
			size = doc.Size{Width: w, Height: h}
		}
	}
	if rot, _ := pdflib.GetInteger(d.structure, dict["Rotate"]); rot == 90 || rot == 270 || rot == -90 {
		size.Width, size.Height = size.Height, size.Width
	}

	d.extract.Set(key, size, cache.DefaultExpiration)
	return size, nil
}

func (d *document) PageIndexOf(loc doc.Locator) int {
	switch ref := loc.Ref.(type) {
	case pdflib.Reference:
		return d.refIndex[ref]
	case pdflib.Integer:
		if int(ref) >= 0 && int(ref) < len(d.refs) {
			return int(ref) + 1
		}
	case int:
		if ref >= 1 && ref <= len(d.refs) {
			return ref
		}
	}
	return 0
}

func (d *document) Close() error {
	d.closeOnce.Do(func() {
		cerr := d.content.Close()
		serr := d.structure.Close()
		if serr != nil {
			d.closeErr = serr
		} else {
			d.closeErr = cerr
		}
		debuglog.Debugf("closed %s", d.name)
	})
	return d.closeErr
}

// page satisfies doc.Page. Values are computed once and immutable.
type page struct {
	number int
	size   doc.Size
}

func (p page) Number() int    { return p.number }
func (p page) Size() doc.Size { return p.size }

func (p page) Viewport(scale float64) doc.Size {
	return doc.Size{Width: p.size.Width * scale, Height: p.size.Height * scale}
}
