// Package pages flattens the page tree of a loaded document into an
// ordered list of leaf pages.
package pages

import (
	"fmt"

	"github.com/vellumpdf/vellum/core"
)

// Page is one leaf of the page tree. It keeps the chain of ancestor
// /Pages nodes so inheritable attributes can be looked up.
type Page struct {
	dict    core.Dict
	parents []core.Dict
}

// Dict returns the page dictionary itself.
func (p *Page) Dict() core.Dict { return p.dict }

// Inherited looks an attribute up on the page, then on each ancestor
// from nearest to the root. Returns nil if no node defines it.
func (p *Page) Inherited(key string) core.Object {
	if obj := p.dict.Resolve(key); obj != nil {
		return obj
	}
	for i := len(p.parents) - 1; i >= 0; i-- {
		if obj := p.parents[i].Resolve(key); obj != nil {
			return obj
		}
	}
	return nil
}

// MediaBox returns the effective /MediaBox rectangle.
func (p *Page) MediaBox() (core.Array, bool) {
	box, ok := p.Inherited("MediaBox").(core.Array)
	return box, ok
}

// CropBox returns the effective /CropBox rectangle, falling back to the
// media box when none is set.
func (p *Page) CropBox() (core.Array, bool) {
	if box, ok := p.Inherited("CropBox").(core.Array); ok {
		return box, ok
	}
	return p.MediaBox()
}

// Resources returns the effective /Resources dictionary.
func (p *Page) Resources() (core.Dict, bool) {
	res, ok := p.Inherited("Resources").(core.Dict)
	return res, ok
}

// Rotate returns the effective /Rotate value in degrees, 0 if unset.
func (p *Page) Rotate() int {
	if n, ok := p.Inherited("Rotate").(core.Int); ok {
		return int(n)
	}
	return 0
}

// Walk flattens the tree under root, normally a document catalog, into
// leaf pages in depth-first order. A node with a wrong or missing /Type
// loses its subtree but not its siblings; structural damage such as a
// non-dictionary node or a /Pages node without kids invalidates the
// whole tree and yields an empty list.
func Walk(root core.Object, rep *core.Reporter) []*Page {
	out, err := walkNode(root, nil, rep, true)
	if err != nil {
		rep.Errorf(0, "invalid page tree: %v", err)
		return nil
	}
	return out
}

func walkNode(node core.Object, parents []core.Dict, rep *core.Reporter, atRoot bool) ([]*Page, error) {
	d, ok := core.Deref(node).(core.Dict)
	if !ok {
		return nil, fmt.Errorf("node is not a dictionary")
	}
	typ, ok := d.GetName("Type")
	if !ok {
		rep.Errorf(0, "page tree node missing /Type, skipping subtree")
		return nil, nil
	}

	switch typ {
	case "Page":
		chain := make([]core.Dict, len(parents))
		copy(chain, parents)
		return []*Page{{dict: d, parents: chain}}, nil

	case "Pages":
		kids, ok := d.GetArray("Kids")
		if !ok {
			return nil, fmt.Errorf("/Pages node has no /Kids array")
		}
		parents = append(parents, d)
		var out []*Page
		for _, kid := range kids {
			sub, err := walkNode(kid, parents, rep, false)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		}
		return out, nil

	case "Catalog":
		if !atRoot {
			rep.Errorf(0, "unexpected /Catalog node inside page tree, skipping subtree")
			return nil, nil
		}
		pagesObj := d.Get("Pages")
		if pagesObj == nil {
			return nil, fmt.Errorf("catalog has no /Pages entry")
		}
		return walkNode(pagesObj, parents, rep, false)

	default:
		rep.Errorf(0, "expected /Page or /Pages dictionary, got /%s, skipping subtree", typ)
		return nil, nil
	}
}
