package pdf

import (
	"context"
	"fmt"
	"math"

	pdflib "seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/destination"
	"seehuhn.de/go/pdf/nametree"
	"seehuhn.de/go/pdf/outline"

	"github.com/quireapp/quire/internal/debuglog"
	"github.com/quireapp/quire/internal/doc"
)

// maxNamedHops bounds chains of named destinations pointing at each other.
const maxNamedHops = 4

func (d *document) Outline(ctx context.Context) ([]doc.OutlineItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.outlineOnce.Do(func() {
		d.mu.Lock()
		defer d.mu.Unlock()

		ol, err := outline.Read(d.structure)
		if err != nil {
			d.outlineErr = fmt.Errorf("reading outline of %s: %w", d.name, err)
			return
		}
		if ol == nil {
			return
		}
		d.outlineVal = convertOutline(ol.Items)
		debuglog.Debugf("outline of %s: %d top-level items", d.name, len(d.outlineVal))
	})

	return d.outlineVal, d.outlineErr
}

func convertOutline(items []*outline.Item) []doc.OutlineItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]doc.OutlineItem, 0, len(items))
	for _, it := range items {
		o := doc.OutlineItem{
			Title:    it.Title,
			Children: convertOutline(it.Children),
		}
		if it.Destination != nil {
			o.Dest = it.Destination
		}
		out = append(out, o)
	}
	return out
}

func (d *document) ResolveDestination(ctx context.Context, dest doc.Destination) (doc.Locator, error) {
	if err := ctx.Err(); err != nil {
		return doc.Locator{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.resolveLocked(dest, 0)
}

func (d *document) resolveLocked(dest doc.Destination, hops int) (doc.Locator, error) {
	if hops > maxNamedHops {
		return doc.Locator{}, fmt.Errorf("destination chain too deep in %s: %w", d.name, doc.ErrUnresolvedDestination)
	}

	dd, ok := dest.(destination.Destination)
	if !ok {
		return doc.Locator{}, fmt.Errorf("destination %T: %w", dest, doc.ErrUnresolvedDestination)
	}

	switch t := dd.(type) {
	case *destination.XYZ:
		return d.locatorLocked(t.Page, t.Top)
	case *destination.Fit:
		return d.locatorLocked(t.Page, destination.Unset)
	case *destination.FitH:
		return d.locatorLocked(t.Page, t.Top)
	case *destination.FitV:
		return d.locatorLocked(t.Page, destination.Unset)
	case *destination.FitR:
		return d.locatorLocked(t.Page, t.Top)
	case *destination.FitB:
		return d.locatorLocked(t.Page, destination.Unset)
	case *destination.FitBH:
		return d.locatorLocked(t.Page, t.Top)
	case *destination.FitBV:
		return d.locatorLocked(t.Page, destination.Unset)
	case *destination.Named:
		obj, err := d.lookupNamedLocked(pdflib.Name(string(t.Name)))
		if err != nil {
			return doc.Locator{}, err
		}
		next, err := d.decodeDestLocked(obj)
		if err != nil {
			return doc.Locator{}, fmt.Errorf("named destination %q in %s: %w: %v", string(t.Name), d.name, doc.ErrUnresolvedDestination, err)
		}
		return d.resolveLocked(next, hops+1)
	default:
		return doc.Locator{}, fmt.Errorf("destination type %T: %w", dd, doc.ErrUnresolvedDestination)
	}
}

// locatorLocked pins a destination target to a page of this document and
// converts the PDF y coordinate (from the bottom edge) into an offset
// from the page top. top may be destination.Unset.
func (d *document) locatorLocked(target destination.Target, top float64) (doc.Locator, error) {
	var ref any
	switch t := pdflib.Object(target).(type) {
	case pdflib.Reference:
		ref = t
	case pdflib.Integer:
		ref = t
	default:
		return doc.Locator{}, fmt.Errorf("destination target %T: %w", target, doc.ErrUnresolvedDestination)
	}

	idx := d.PageIndexOf(doc.Locator{Ref: ref})
	if idx == 0 {
		return doc.Locator{}, fmt.Errorf("destination target outside %s: %w", d.name, doc.ErrUnresolvedDestination)
	}

	loc := doc.Locator{Ref: ref, Top: -1}
	if !math.IsNaN(top) {
		size, err := d.pageSizeLocked(idx)
		if err == nil {
			loc.Top = math.Max(0, math.Min(size.Height, size.Height-top))
		}
	}
	return loc, nil
}

// namedDests indexes the document's named destinations: the PDF 1.2
// name tree under /Names plus the legacy /Dests dictionary.
type namedDests struct {
	tree   *nametree.InMemory
	legacy pdflib.Dict
}

func (d *document) lookupNamedLocked(name pdflib.Name) (pdflib.Object, error) {
	d.namesOnce.Do(func() {
		nd := &namedDests{}
		cat := d.structure.GetMeta().Catalog

		if cat.Names != nil {
			if namesDict, err := pdflib.GetDict(d.structure, cat.Names); err == nil && namesDict != nil {
				tree, err := nametree.ExtractInMemory(d.structure, namesDict["Dests"])
				if err == nil {
					nd.tree = tree
				} else {
					debuglog.Warnf("name tree of %s unreadable: %v", d.name, err)
				}
			}
		}
		if cat.Dests != nil {
			if legacy, err := pdflib.GetDict(d.structure, cat.Dests); err == nil {
				nd.legacy = legacy
			}
		}
		d.names = nd
	})

	if d.names.tree != nil {
		if obj, err := d.names.tree.Lookup(name); err == nil {
			return obj, nil
		}
	}
	if d.names.legacy != nil {
		if obj, ok := d.names.legacy[name]; ok {
			return obj, nil
		}
	}
	return nil, fmt.Errorf("named destination %q not in %s: %w", string(name), d.name, doc.ErrUnresolvedDestination)
}

// decodeDestLocked turns a raw destination object (an explicit array or
// a dictionary with a /D entry) into a destination value.
func (d *document) decodeDestLocked(obj pdflib.Object) (destination.Destination, error) {
	obj, err := pdflib.Resolve(d.structure, obj)
	if err != nil {
		return nil, err
	}
	if dict, ok := obj.(pdflib.Dict); ok {
		obj = dict["D"]
	}
	x := pdflib.NewExtractor(d.structure)
	return destination.Decode(x, obj)
}
