// Package filters implements the stream decode filters needed to read
// PDF body structures: Flate with PNG and TIFF predictors, the two
// ASCII encodings, and run-length compression.
package filters

import "fmt"

// Params carries the integer decode parameters from a stream's
// /DecodeParms dictionary.
type Params map[string]int

// Int returns the parameter value, or def when it is absent.
func (p Params) Int(key string, def int) int {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

// Decode applies a single named filter. Both the full filter names and
// their abbreviated forms are accepted.
func Decode(name string, data []byte, params Params) ([]byte, error) {
	switch name {
	case "FlateDecode", "Fl":
		return FlateDecode(data, params)
	case "ASCIIHexDecode", "AHx":
		return ASCIIHexDecode(data)
	case "ASCII85Decode", "A85":
		return ASCII85Decode(data)
	case "RunLengthDecode", "RL":
		return RunLengthDecode(data)
	default:
		return nil, fmt.Errorf("unsupported filter %q", name)
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}
