package filters

import "fmt"

// RunLengthDecode expands run-length compressed data. A length byte of
// 0 to 127 copies the following length+1 bytes literally; 129 to 255
// repeats the following byte 257-length times; 128 ends the data.
func RunLengthDecode(data []byte) ([]byte, error) {
	var out []byte
	i := 0
	for i < len(data) {
		n := int(data[i])
		i++
		switch {
		case n == 128:
			return out, nil
		case n < 128:
			if i+n+1 > len(data) {
				return nil, fmt.Errorf("run-length literal extends past end of data")
			}
			out = append(out, data[i:i+n+1]...)
			i += n + 1
		default:
			if i >= len(data) {
				return nil, fmt.Errorf("run-length repeat extends past end of data")
			}
			for j := 0; j < 257-n; j++ {
				out = append(out, data[i])
			}
			i++
		}
	}
	return out, nil
}
