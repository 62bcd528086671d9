package filters

import (
	"bytes"
	"fmt"
)

// ASCIIHexDecode decodes pairs of hexadecimal digits into bytes. PDF
// whitespace between digits is ignored, > ends the data, and an odd
// trailing digit is treated as if followed by a zero.
func ASCIIHexDecode(data []byte) ([]byte, error) {
	var out bytes.Buffer
	var hi byte
	haveHi := false

	for _, c := range data {
		if isSpace(c) {
			continue
		}
		if c == '>' {
			break
		}
		v, err := hexNibble(c)
		if err != nil {
			return nil, err
		}
		if haveHi {
			out.WriteByte(hi<<4 | v)
			haveHi = false
		} else {
			hi = v
			haveHi = true
		}
	}
	if haveHi {
		out.WriteByte(hi << 4)
	}
	return out.Bytes(), nil
}

// ASCII85Decode decodes base-85 groups of five characters into four
// bytes. The z shorthand stands for four zero bytes and ~> ends the
// data; a short final group decodes to its leading bytes.
func ASCII85Decode(data []byte) ([]byte, error) {
	var out bytes.Buffer
	var group [5]byte
	n := 0

	flush := func(count int) {
		for i := count; i < 5; i++ {
			group[i] = 84 // pad as if with 'u'
		}
		v := uint32(0)
		for _, d := range group {
			v = v*85 + uint32(d)
		}
		for j := 0; j < count-1; j++ {
			out.WriteByte(byte(v >> (24 - j*8)))
		}
	}

	for i := 0; i < len(data); i++ {
		c := data[i]
		switch {
		case isSpace(c):
		case c == '~':
			if n > 1 {
				flush(n)
			}
			return out.Bytes(), nil
		case c == 'z' && n == 0:
			out.Write([]byte{0, 0, 0, 0})
		case c >= '!' && c <= 'u':
			group[n] = c - '!'
			n++
			if n == 5 {
				flush(5)
				n = 0
			}
		default:
			return nil, fmt.Errorf("invalid base-85 character %q", c)
		}
	}
	if n > 1 {
		flush(n)
	}
	return out.Bytes(), nil
}

func hexNibble(c byte) (byte, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	}
	return 0, fmt.Errorf("invalid hex digit %q", c)
}
