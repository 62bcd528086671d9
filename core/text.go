package core

import (
	"bytes"

	"golang.org/x/text/encoding/unicode"
)

var (
	utf16BOMBE = []byte{0xFE, 0xFF}
	utf16BOMLE = []byte{0xFF, 0xFE}
)

// Text returns the string as readable text. PDF text strings carrying a
// UTF-16 byte order mark, in either byte order, are transcoded to
// UTF-8; anything else is returned byte for byte.
func (s String) Text() string {
	b := []byte(s)
	if !bytes.HasPrefix(b, utf16BOMBE) && !bytes.HasPrefix(b, utf16BOMLE) {
		return string(s)
	}
	dec := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
	out, err := dec.Bytes(b)
	if err != nil {
		return string(s)
	}
	return string(out)
}
