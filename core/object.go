package core

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

// Object represents a PDF object
type Object interface {
	Kind() Kind
	String() string
}

// Kind identifies the type of a PDF object
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindReal
	KindString
	KindName
	KindArray
	KindDict
	KindStream
	KindReference
	KindMissing
)

// String returns the string representation of the object kind
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindReal:
		return "Real"
	case KindString:
		return "String"
	case KindName:
		return "Name"
	case KindArray:
		return "Array"
	case KindDict:
		return "Dict"
	case KindStream:
		return "Stream"
	case KindReference:
		return "Reference"
	case KindMissing:
		return "Missing"
	default:
		return "Unknown"
	}
}

// ObjectID identifies an indirect object by object and generation number.
// It is the key into the object table and is immutable once created.
type ObjectID struct {
	Number     int
	Generation int
}

func (id ObjectID) String() string {
	return fmt.Sprintf("%d %d", id.Number, id.Generation)
}

// Null represents the PDF null object
type Null struct{}

func (n Null) Kind() Kind     { return KindNull }
func (n Null) String() string { return "null" }

// Missing is the explicit sentinel returned when an indirect object
// cannot be located. It is distinct from Null, which is a value that
// actually appears in the file.
type Missing struct{}

func (m Missing) Kind() Kind     { return KindMissing }
func (m Missing) String() string { return "missing" }

// Bool represents a PDF boolean
type Bool bool

func (b Bool) Kind() Kind { return KindBool }
func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

// Int represents a PDF integer
type Int int64

func (i Int) Kind() Kind     { return KindInt }
func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }

// Real represents a PDF real number
type Real float64

func (r Real) Kind() Kind     { return KindReal }
func (r Real) String() string { return strconv.FormatFloat(float64(r), 'f', -1, 64) }

// String represents a PDF string. Literal and hexadecimal strings both
// decode to this type; the payload is kept as raw bytes.
type String string

func (s String) Kind() Kind     { return KindString }
func (s String) String() string { return string(s) }

// Name represents a PDF name
type Name string

func (n Name) Kind() Kind     { return KindName }
func (n Name) String() string { return "/" + string(n) }

// Array represents a PDF array
type Array []Object

func (a Array) Kind() Kind { return KindArray }
func (a Array) String() string {
	parts := make([]string, len(a))
	for i, obj := range a {
		parts[i] = obj.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Get retrieves the element at the given index, following indirect
// references. Returns nil if the index is out of range.
func (a Array) Get(index int) Object {
	if index < 0 || index >= len(a) {
		return nil
	}
	return Deref(a[index])
}

// GetInt retrieves an integer at the given index
func (a Array) GetInt(index int) (Int, bool) {
	i, ok := a.Get(index).(Int)
	return i, ok
}

// GetName retrieves a name at the given index
func (a Array) GetName(index int) (Name, bool) {
	n, ok := a.Get(index).(Name)
	return n, ok
}

// Dict represents a PDF dictionary
type Dict map[string]Object

func (d Dict) Kind() Kind { return KindDict }
func (d Dict) String() string {
	parts := make([]string, 0, len(d))
	for _, key := range d.Keys() {
		parts = append(parts, fmt.Sprintf("/%s %s", key, d[key].String()))
	}
	return "<<" + strings.Join(parts, " ") + ">>"
}

// Get retrieves a value from the dictionary without resolving indirect
// references. Returns nil if the key is absent.
func (d Dict) Get(key string) Object {
	return d[key]
}

// Resolve retrieves a value from the dictionary, following an indirect
// reference if the stored value is one.
func (d Dict) Resolve(key string) Object {
	obj, ok := d[key]
	if !ok {
		return nil
	}
	return Deref(obj)
}

// GetInt retrieves an integer value, following indirect references
func (d Dict) GetInt(key string) (Int, bool) {
	i, ok := d.Resolve(key).(Int)
	return i, ok
}

// GetName retrieves a name value, following indirect references
func (d Dict) GetName(key string) (Name, bool) {
	n, ok := d.Resolve(key).(Name)
	return n, ok
}

// GetDict retrieves a dictionary value, following indirect references
func (d Dict) GetDict(key string) (Dict, bool) {
	dict, ok := d.Resolve(key).(Dict)
	return dict, ok
}

// GetArray retrieves an array value, following indirect references
func (d Dict) GetArray(key string) (Array, bool) {
	arr, ok := d.Resolve(key).(Array)
	return arr, ok
}

// GetString retrieves a string value, following indirect references
func (d Dict) GetString(key string) (String, bool) {
	s, ok := d.Resolve(key).(String)
	return s, ok
}

// GetStream retrieves a stream value, following indirect references
func (d Dict) GetStream(key string) (*Stream, bool) {
	s, ok := d.Resolve(key).(*Stream)
	return s, ok
}

// Has checks if a key exists in the dictionary
func (d Dict) Has(key string) bool {
	_, ok := d[key]
	return ok
}

// Set sets a value in the dictionary
func (d Dict) Set(key string, value Object) {
	d[key] = value
}

// Delete removes a key from the dictionary
func (d Dict) Delete(key string) {
	delete(d, key)
}

// Keys returns the dictionary keys in sorted order
func (d Dict) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Indirect is the shared placeholder for an indirect object. Every
// reference handed out for a given identity points at the same Indirect
// instance, so a later resolution is visible to all holders. The table
// back-reference lets the placeholder load itself on first use.
type Indirect struct {
	id       ObjectID
	table    *ObjectTable
	value    Object
	resolved bool
}

func (r *Indirect) Kind() Kind { return KindReference }
func (r *Indirect) String() string {
	return fmt.Sprintf("%d %d R", r.id.Number, r.id.Generation)
}

// ID returns the object identity this reference points at.
func (r *Indirect) ID() ObjectID { return r.id }

// Resolved reports the resolved value, if any.
func (r *Indirect) Resolved() (Object, bool) {
	return r.value, r.resolved
}

// Value returns the referenced object, loading it on demand. An identity
// that cannot be located resolves to Missing rather than failing.
func (r *Indirect) Value() Object {
	if r.resolved {
		return r.value
	}
	if r.table == nil {
		return Missing{}
	}
	return r.table.Load(r.id)
}

func (r *Indirect) resolve(obj Object) {
	r.value = obj
	r.resolved = true
}

// Deref follows an indirect reference to its value, loading lazily if
// needed. Non-reference objects are returned unchanged.
func Deref(obj Object) Object {
	if ref, ok := obj.(*Indirect); ok {
		return ref.Value()
	}
	return obj
}

// Stream represents a stream-bearing dictionary: the dictionary itself,
// the identity of the indirect object that carries it, and the raw byte
// range extracted from the file.
type Stream struct {
	Dict Dict
	ID   ObjectID
	Raw  []byte

	decoded []byte
}

func (s *Stream) Kind() Kind { return KindStream }
func (s *Stream) String() string {
	return fmt.Sprintf("stream %s (%d bytes)", s.Dict.String(), len(s.Raw))
}
