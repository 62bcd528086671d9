// Package vellum reads PDF files into a lazily resolved object graph,
// tolerating the structural damage commonly found in files in the
// wild. It is the top-level entry point; the heavy lifting lives in
// the reader, pages and core packages.
//
//	doc, err := vellum.Open("report.pdf")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(doc.PageCount(), "pages, version", doc.Version())
package vellum

import (
	"io"

	"github.com/vellumpdf/vellum/reader"
)

// Document is a loaded PDF body.
type Document = reader.Document

// Option configures a load.
type Option = reader.Option

// Load options, re-exported from the reader package.
var (
	WithDecompress = reader.WithDecompress
	WithGCEnabled  = reader.WithGCEnabled
	WithVerbose    = reader.WithVerbose
)

// Open loads the PDF file at path.
func Open(path string, opts ...Option) (*Document, error) {
	return reader.Open(path, opts...)
}

// Load parses a PDF from memory.
func Load(data []byte, opts ...Option) (*Document, error) {
	return reader.Load(data, opts...)
}

// Read loads a PDF from a reader, consuming it fully.
func Read(r io.Reader, opts ...Option) (*Document, error) {
	return reader.Read(r, opts...)
}

// Must panics on error, for use in tests and initialization code.
func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
