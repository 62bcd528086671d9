package core

import (
	"bytes"
	"errors"
	"fmt"

	"golang.org/x/exp/slices"
)

// ObjectTable is the lazy indirect-object store for one file. It maps
// object identities to byte offsets gathered from the cross-reference
// chain and hands out one shared Indirect placeholder per identity, so
// every holder of a reference observes the same resolution.
type ObjectTable struct {
	data []byte
	rep  *Reporter

	offsets    map[ObjectID]int
	allOffsets []int

	indirects map[ObjectID]*Indirect
	deferred  map[ObjectID]struct{}
}

// NewObjectTable creates an empty table over the file buffer.
func NewObjectTable(data []byte, rep *Reporter) *ObjectTable {
	return &ObjectTable{
		data:      data,
		rep:       rep,
		offsets:   make(map[ObjectID]int),
		indirects: make(map[ObjectID]*Indirect),
		deferred:  make(map[ObjectID]struct{}),
	}
}

// Data returns the underlying file buffer.
func (t *ObjectTable) Data() []byte { return t.data }

// Reporter returns the diagnostics sink for this load.
func (t *ObjectTable) Reporter() *Reporter { return t.rep }

// SetOffsetIfAbsent records a byte offset for an identity unless an
// earlier cross-reference section already claimed it. Sections are fed
// newest first, so first write wins implements update precedence.
func (t *ObjectTable) SetOffsetIfAbsent(id ObjectID, offset int) {
	if _, ok := t.offsets[id]; !ok {
		t.offsets[id] = offset
	}
	t.allOffsets = append(t.allOffsets, offset)
}

// Offset returns the recorded byte offset for an identity.
func (t *ObjectTable) Offset(id ObjectID) (int, bool) {
	off, ok := t.offsets[id]
	return off, ok
}

// AllOffsets returns every in-use offset seen across the whole chain,
// including ones shadowed by later updates, in discovery order.
func (t *ObjectTable) AllOffsets() []int { return t.allOffsets }

// IDs returns the identities known to the table, sorted by object and
// generation number.
func (t *ObjectTable) IDs() []ObjectID {
	ids := make([]ObjectID, 0, len(t.indirects))
	for id := range t.indirects {
		ids = append(ids, id)
	}
	for id := range t.offsets {
		if _, ok := t.indirects[id]; !ok {
			ids = append(ids, id)
		}
	}
	slices.SortFunc(ids, func(a, b ObjectID) int {
		if a.Number != b.Number {
			return a.Number - b.Number
		}
		return a.Generation - b.Generation
	})
	return ids
}

// FindIndirect returns the shared placeholder for an identity, creating
// it on first request and marking it deferred until resolved.
func (t *ObjectTable) FindIndirect(id ObjectID) *Indirect {
	if ind, ok := t.indirects[id]; ok {
		return ind
	}
	ind := &Indirect{id: id, table: t}
	t.indirects[id] = ind
	t.deferred[id] = struct{}{}
	return ind
}

// StoreResolved records a value for an identity that was materialized
// outside the normal offset path, such as a member of an object stream.
func (t *ObjectTable) StoreResolved(id ObjectID, obj Object) {
	t.FindIndirect(id).resolve(obj)
	delete(t.deferred, id)
}

// Load returns the object for an identity, parsing it from the file on
// first use. A missing or unrecoverable object loads as Missing or Null
// with a diagnostic; Load itself never fails.
func (t *ObjectTable) Load(id ObjectID) Object {
	ind := t.FindIndirect(id)
	if v, ok := ind.Resolved(); ok {
		return v
	}

	offset, ok := t.offsets[id]
	if !ok || offset == 0 {
		t.rep.Warnf(0, "did not find PDF object %s", id)
		t.StoreResolved(id, Missing{})
		return Missing{}
	}

	lx := NewLexerAt(t.data, offset)
	if !t.checkObjectHeader(lx, id, offset) {
		t.StoreResolved(id, Missing{})
		return Missing{}
	}

	p := NewParser(lx, t, t.rep)
	tok := p.next()
	var obj Object
	if tok.Type == TokenKeyword && string(tok.Value) == "endobj" {
		// An empty object body. Back up so the trailing keyword check
		// below sees the endobj.
		obj = Null{}
		lx.Seek(tok.Pos)
	} else {
		var err error
		obj, err = p.parseValueToken(tok)
		if err != nil {
			var pe *ParseError
			pos := offset
			if errors.As(err, &pe) {
				pos = pe.Pos
			}
			t.rep.Errorf(pos, "cannot load object %s: %v", id, err)
			t.StoreResolved(id, Null{})
			return Null{}
		}
	}

	t.StoreResolved(id, obj)

	tok = p.next()
	if tok.Type == TokenKeyword && string(tok.Value) == "endobj" {
		return obj
	}

	dict, isDict := obj.(Dict)
	if isDict && tok.Type == TokenKeyword && string(tok.Value) == "stream" {
		s := extractStream(lx, dict, id, tok, t.rep)
		t.StoreResolved(id, s)
		return s
	}

	want := `"endobj"`
	if isDict {
		want = `"endobj" or "stream"`
	}
	t.rep.Errorf(tok.Pos, "expected %s token for object %s", want, id)
	t.StoreResolved(id, Null{})
	return Null{}
}

// checkObjectHeader validates the "N G obj" header at the recorded
// offset. When the header is absent the buffer is scanned for one on a
// line of its own; a unique hit repositions the lexer past it, while an
// ambiguous or absent one gives the object up with a warning.
func (t *ObjectTable) checkObjectHeader(lx *Lexer, id ObjectID, offset int) bool {
	toks := lx.Multiple(3)
	ok := toks[0].Type == TokenInteger && atoiBytes(toks[0].Value) == id.Number
	ok = ok && toks[1].Type == TokenInteger && atoiBytes(toks[1].Value) == id.Generation
	ok = ok && toks[2].Type == TokenKeyword && string(toks[2].Value) == "obj"
	if ok {
		return true
	}

	header := []byte(fmt.Sprintf("%d %d obj", id.Number, id.Generation))
	offset2 := bytes.Index(t.data, append([]byte("\n"), header...)) + 1
	if offset2 == 0 {
		offset2 = bytes.Index(t.data, append([]byte("\r"), header...)) + 1
	}
	if offset2 == 0 ||
		bytes.Index(t.data[offset2:], append([]byte{t.data[offset2-1]}, header...)) >= 0 {
		t.rep.Warnf(offset, "expected indirect object %q", header)
		return false
	}
	t.rep.Warnf(offset, "indirect object %q found at incorrect offset %d (expected offset %d)",
		header, offset2, offset)
	lx.Seek(offset2 + len(header))
	return true
}

// ResolveAll materializes every deferred object, looping until loading
// stops uncovering new references.
func (t *ObjectTable) ResolveAll() {
	for len(t.deferred) > 0 {
		pending := make([]ObjectID, 0, len(t.deferred))
		for id := range t.deferred {
			pending = append(pending, id)
		}
		for _, id := range pending {
			t.Load(id)
		}
	}
}

func atoiBytes(b []byte) int {
	n := 0
	for _, c := range b {
		if c < '0' || c > '9' {
			return -1
		}
		n = n*10 + int(c-'0')
	}
	return n
}
