// Package reader loads PDF files into a lazily resolved object graph.
// It tolerates the structural damage commonly found in real files,
// collecting diagnostics instead of failing wherever recovery is
// possible.
package reader

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strconv"

	"github.com/vellumpdf/vellum/core"
	"github.com/vellumpdf/vellum/pages"
)

// Document is a loaded PDF body: the merged trailer of the update
// chain, the lazy object table behind it, and the flattened page list.
type Document struct {
	version string
	trailer core.Dict
	table   *core.ObjectTable
	rep     *core.Reporter
	pages   []*pages.Page
}

// Open loads the PDF file at path.
func Open(path string, opts ...Option) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read PDF file %s: %w", path, err)
	}
	return Load(data, opts...)
}

// Read loads a PDF from a reader, consuming it fully.
func Read(r io.Reader, opts ...Option) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("could not read PDF data: %w", err)
	}
	return Load(data, opts...)
}

// Load parses a PDF from memory. Only damage that makes the file
// unaddressable is returned as an error; everything recoverable is
// recorded on the document's diagnostics instead.
func Load(data []byte, opts ...Option) (*Document, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.disableGC {
		old := debug.SetGCPercent(-1)
		defer debug.SetGCPercent(old)
	}

	rep := core.NewReporter(cfg.verbose)

	version, err := checkHeader(data, rep)
	if err != nil {
		return nil, err
	}
	data, err = trimAfterEOF(data, rep)
	if err != nil {
		return nil, err
	}

	start, err := core.LocateStartXref(data, rep)
	if err != nil {
		return nil, err
	}
	table := core.NewObjectTable(data, rep)
	trailer, err := core.NewXRef(table).ReadChain(start)
	if err != nil {
		return nil, err
	}

	if v, ok := trailerVersion(trailer); ok && parseVersion(v) > parseVersion(version) {
		version = v
	}

	// Only the newest update's catalog pointers survive the merge; a
	// /Prev or /XRefStm from an older section must not leak through.
	merged := core.Dict{}
	for _, key := range []string{"Root", "Info", "ID"} {
		if v := trailer.Get(key); v != nil {
			merged[key] = v
		}
	}

	doc := &Document{
		version: version,
		trailer: merged,
		table:   table,
		rep:     rep,
	}
	if root, ok := merged.GetDict("Root"); ok {
		doc.pages = pages.Walk(root, rep)
	} else {
		rep.Errorf(0, "document has no /Root catalog")
	}

	if cfg.decompress {
		core.UncompressAll(table)
	}
	return doc, nil
}

// checkHeader validates the %PDF- marker and extracts the header
// version. Garbage before the marker is tolerated with a warning; a
// file without the marker at all cannot be trusted.
func checkHeader(data []byte, rep *core.Reporter) (string, error) {
	hdr := bytes.Index(data, []byte("%PDF-"))
	if hdr < 0 {
		trimmed := trimSpace(data)
		if len(trimmed) == 0 {
			return "", &core.ParseError{Pos: 0, Msg: "empty PDF file"}
		}
		return "", &core.ParseError{Pos: 0, Msg: fmt.Sprintf("invalid PDF header: %q", firstLine(trimmed))}
	}
	if hdr > 0 {
		rep.Warnf(hdr, "PDF header not at beginning of file")
	}
	version := ""
	if hdr+8 <= len(data) {
		version = string(data[hdr+5 : hdr+8])
	}
	return version, nil
}

// trimAfterEOF cuts the buffer just past the last %%EOF marker. Extra
// non-blank bytes after it are reported and discarded.
func trimAfterEOF(data []byte, rep *core.Reporter) ([]byte, error) {
	endloc := bytes.LastIndex(data, []byte("%EOF"))
	if endloc < 0 {
		tail := data
		if len(tail) > 20 {
			tail = tail[len(tail)-20:]
		}
		return nil, &core.ParseError{Pos: len(data), Msg: fmt.Sprintf("EOF mark not found: %q", tail)}
	}
	// Keep up to two EOL bytes after the marker.
	endloc += len("%EOF") + 2
	if endloc > len(data) {
		endloc = len(data)
	}
	if len(trimSpace(data[endloc:])) > 0 {
		rep.Warnf(endloc, "extra data at end of file")
	}
	return data[:endloc], nil
}

func trailerVersion(trailer core.Dict) (string, bool) {
	switch v := trailer.Resolve("Version").(type) {
	case core.Name:
		return string(v), true
	case core.Real:
		return v.String(), true
	case core.String:
		return string(v), true
	}
	return "", false
}

func parseVersion(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func trimSpace(b []byte) []byte {
	return bytes.Trim(b, " \t\r\n\f\x00")
}

func firstLine(b []byte) []byte {
	if i := bytes.IndexAny(b, "\r\n"); i >= 0 {
		return b[:i]
	}
	return b
}

// Version returns the file version, the greater of the header version
// and any /Version override in the trailer.
func (d *Document) Version() string { return d.version }

// Trailer returns the merged trailer dictionary: the /Root, /Info and
// /ID of the newest update.
func (d *Document) Trailer() core.Dict { return d.trailer }

// Root returns the document catalog.
func (d *Document) Root() (core.Dict, bool) {
	return d.trailer.GetDict("Root")
}

// Info returns the document information dictionary.
func (d *Document) Info() (core.Dict, bool) {
	return d.trailer.GetDict("Info")
}

// InfoText returns a text field from the information dictionary, such
// as Title or Author, transcoded to UTF-8.
func (d *Document) InfoText(key string) (string, bool) {
	info, ok := d.Info()
	if !ok {
		return "", false
	}
	s, ok := info.GetString(key)
	if !ok {
		return "", false
	}
	return s.Text(), true
}

// ID returns the file identifier array from the trailer.
func (d *Document) ID() (core.Array, bool) {
	return d.trailer.GetArray("ID")
}

// Pages returns the flattened page list in document order.
func (d *Document) Pages() []*pages.Page { return d.pages }

// PageCount returns the number of pages.
func (d *Document) PageCount() int { return len(d.pages) }

// Page returns the page at index i, or nil if out of range.
func (d *Document) Page(i int) *pages.Page {
	if i < 0 || i >= len(d.pages) {
		return nil
	}
	return d.pages[i]
}

// Object returns the object with the given identity, loading it on
// first use. Unknown identities return the Missing sentinel.
func (d *Document) Object(id core.ObjectID) core.Object {
	return d.table.Load(id)
}

// ObjectIDs returns every object identity known to the document, in
// object-number order.
func (d *Document) ObjectIDs() []core.ObjectID {
	return d.table.IDs()
}

// ResolveAll eagerly loads every referenced object.
func (d *Document) ResolveAll() {
	d.table.ResolveAll()
}

// Uncompress resolves all objects and decodes every stream body in
// place.
func (d *Document) Uncompress() {
	core.UncompressAll(d.table)
}

// AllOffsets returns every in-use byte offset recorded across the whole
// cross-reference chain, including entries shadowed by newer updates.
func (d *Document) AllOffsets() []int {
	return d.table.AllOffsets()
}

// Diagnostics returns the problems recorded while loading, in order of
// occurrence.
func (d *Document) Diagnostics() []core.Diagnostic {
	return d.rep.Diagnostics()
}
