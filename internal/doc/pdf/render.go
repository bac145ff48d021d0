package pdf

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
	"github.com/patrickmn/go-cache"
	"github.com/tsawler/tabula"
	xdraw "golang.org/x/image/draw"

	"github.com/quireapp/quire/internal/debuglog"
	"github.com/quireapp/quire/internal/doc"
)

// Render typesets one page into a cell surface. Cancellation is checked
// between the extraction and typesetting stages and maps to
// doc.ErrRenderCancelled.
func (d *document) Render(ctx context.Context, req doc.RenderRequest) (*doc.Surface, error) {
	if req.Page < 1 || req.Page > len(d.refs) {
		return nil, fmt.Errorf("render page %d of %d in %s: %w", req.Page, len(d.refs), d.name, doc.ErrPageNotFound)
	}
	if req.Width <= 0 {
		return nil, fmt.Errorf("render page %d of %s at width %d: %w", req.Page, d.name, req.Width, doc.ErrRenderFailed)
	}
	if err := d.renderCancelled(ctx, req.Page); err != nil {
		return nil, err
	}

	switch req.Mode {
	case doc.ModeMarkdown:
		return d.renderMarkdown(ctx, req)
	case doc.ModeImage:
		return d.renderImage(ctx, req)
	default:
		return d.renderText(ctx, req)
	}
}

func (d *document) renderCancelled(ctx context.Context, page int) error {
	if ctx.Err() != nil {
		return fmt.Errorf("render page %d of %s: %w", page, d.name, doc.ErrRenderCancelled)
	}
	return nil
}

func (d *document) renderText(ctx context.Context, req doc.RenderRequest) (*doc.Surface, error) {
	text, err := d.pageText(req.Page)
	if err != nil {
		return nil, err
	}
	if err := d.renderCancelled(ctx, req.Page); err != nil {
		return nil, err
	}

	if strings.TrimSpace(text) == "" {
		// Purely graphical page: fall back to an image preview when
		// the page carries raster content, otherwise stay blank.
		if surf, err := d.renderImage(ctx, req); err == nil {
			return surf, nil
		} else if doc.IsCancelled(err) {
			return nil, err
		}
		return &doc.Surface{Page: req.Page, Width: req.Width, Lines: []string{""}}, nil
	}

	wrapped := wordwrap.String(text, req.Width)
	lines := strings.Split(wrapped, "\n")
	for i, line := range lines {
		if runewidth.StringWidth(line) > req.Width {
			lines[i] = runewidth.Truncate(line, req.Width, "…")
		}
	}

	return &doc.Surface{Page: req.Page, Width: req.Width, Lines: lines}, nil
}

func (d *document) renderMarkdown(ctx context.Context, req doc.RenderRequest) (*doc.Surface, error) {
	md, err := d.pageMarkdown(req.Page)
	if err != nil {
		return nil, err
	}
	if err := d.renderCancelled(ctx, req.Page); err != nil {
		return nil, err
	}
	if strings.TrimSpace(md) == "" {
		return d.renderText(ctx, req)
	}

	r, err := d.markdownRenderer(req.Width)
	if err != nil {
		return nil, fmt.Errorf("render page %d of %s: %w: %v", req.Page, d.name, doc.ErrRenderFailed, err)
	}
	out, err := r.Render(md)
	if err != nil {
		return nil, fmt.Errorf("render page %d of %s: %w: %v", req.Page, d.name, doc.ErrRenderFailed, err)
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	return &doc.Surface{Page: req.Page, Width: req.Width, Lines: lines}, nil
}

// markdownRenderer returns a glamour renderer word-wrapped for width.
// Renderers are cached per width because construction is expensive.
func (d *document) markdownRenderer(width int) (*glamour.TermRenderer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if r, ok := d.renderers[width]; ok {
		return r, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	d.renderers[width] = r
	return r, nil
}

func (d *document) pageText(n int) (string, error) {
	key := fmt.Sprintf("text:%d", n)
	if v, ok := d.extract.Get(key); ok {
		return v.(string), nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	text, warnings, err := tabula.FromReader(d.content).Pages(n).Text()
	if err != nil {
		return "", fmt.Errorf("extracting page %d of %s: %w: %v", n, d.name, doc.ErrRenderFailed, err)
	}
	if len(warnings) > 0 {
		debuglog.Warnf("extracting page %d of %s: %s", n, d.name, tabula.FormatWarnings(warnings))
	}

	d.extract.Set(key, text, cache.DefaultExpiration)
	return text, nil
}

func (d *document) pageMarkdown(n int) (string, error) {
	key := fmt.Sprintf("md:%d", n)
	if v, ok := d.extract.Get(key); ok {
		return v.(string), nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	md, warnings, err := tabula.FromReader(d.content).Pages(n).ToMarkdown()
	if err != nil {
		return "", fmt.Errorf("extracting page %d of %s: %w: %v", n, d.name, doc.ErrRenderFailed, err)
	}
	if len(warnings) > 0 {
		debuglog.Warnf("extracting page %d of %s: %s", n, d.name, tabula.FormatWarnings(warnings))
	}

	d.extract.Set(key, md, cache.DefaultExpiration)
	return md, nil
}

// renderImage draws the page's first raster image as half-block cell art,
// two vertical pixels per cell.
func (d *document) renderImage(ctx context.Context, req doc.RenderRequest) (*doc.Surface, error) {
	src, err := d.firstPageImage(req.Page)
	if err != nil {
		return nil, err
	}
	if err := d.renderCancelled(ctx, req.Page); err != nil {
		return nil, err
	}

	bounds := src.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("render page %d of %s: empty image: %w", req.Page, d.name, doc.ErrRenderFailed)
	}

	// A terminal cell is about twice as tall as wide, and a half block
	// splits it into two stacked pixels.
	rows := int(float64(req.Width) * float64(bounds.Dy()) / float64(bounds.Dx()) / 2)
	if rows < 1 {
		rows = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, req.Width, rows*2))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)

	lines := make([]string, rows)
	cell := lipgloss.NewStyle()
	for y := 0; y < rows; y++ {
		var b strings.Builder
		for x := 0; x < req.Width; x++ {
			top := dst.RGBAAt(x, y*2)
			bot := dst.RGBAAt(x, y*2+1)
			b.WriteString(cell.
				Foreground(lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", top.R, top.G, top.B))).
				Background(lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", bot.R, bot.G, bot.B))).
				Render("▀"))
		}
		lines[y] = b.String()
	}

	return &doc.Surface{Page: req.Page, Width: req.Width, Lines: lines}, nil
}

// firstPageImage extracts the first decodable raster image of a page.
func (d *document) firstPageImage(n int) (image.Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	pg, err := d.content.GetPage(n - 1)
	if err != nil {
		return nil, fmt.Errorf("render page %d of %s: %w: %v", n, d.name, doc.ErrRenderFailed, err)
	}
	images, err := d.content.ExtractPageImages(pg)
	if err != nil {
		return nil, fmt.Errorf("render page %d of %s: %w: %v", n, d.name, doc.ErrRenderFailed, err)
	}

	for _, pi := range images {
		data, err := pi.ToPNG()
		if err != nil {
			debuglog.Debugf("page %d of %s: image %s not decodable: %v", n, d.name, pi.Name, err)
			continue
		}
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			continue
		}
		return img, nil
	}
	return nil, fmt.Errorf("render page %d of %s: no raster images: %w", n, d.name, doc.ErrRenderFailed)
}
