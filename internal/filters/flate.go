package filters

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// FlateDecode inflates zlib-compressed data and undoes the predictor
// transform when /Predictor is set. Flate is the filter cross-reference
// streams and object streams are almost always written with.
func FlateDecode(data []byte, params Params) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("zlib: %w", err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("zlib: %w", err)
	}

	switch predictor := params.Int("Predictor", 1); {
	case predictor == 1:
		return out, nil
	case predictor == 2:
		return undoTIFFPredictor(out, params)
	case predictor >= 10 && predictor <= 15:
		return undoPNGPredictor(out, params)
	default:
		return nil, fmt.Errorf("unsupported predictor %d", predictor)
	}
}

// undoTIFFPredictor reverses TIFF predictor 2, where each sample is
// stored as the difference from the sample to its left.
func undoTIFFPredictor(data []byte, params Params) ([]byte, error) {
	colors := params.Int("Colors", 1)
	if bpc := params.Int("BitsPerComponent", 8); bpc != 8 {
		return nil, fmt.Errorf("TIFF predictor needs 8 bits per component, got %d", bpc)
	}
	rowSize := params.Int("Columns", 1) * colors
	if rowSize <= 0 || len(data)%rowSize != 0 {
		return nil, fmt.Errorf("predicted data size %d does not divide into rows of %d", len(data), rowSize)
	}

	for row := 0; row < len(data); row += rowSize {
		for i := colors; i < rowSize; i++ {
			data[row+i] += data[row+i-colors]
		}
	}
	return data, nil
}

// undoPNGPredictor reverses the PNG row filters. Each encoded row is
// prefixed with one byte naming the filter used for that row.
func undoPNGPredictor(data []byte, params Params) ([]byte, error) {
	colors := params.Int("Colors", 1)
	if bpc := params.Int("BitsPerComponent", 8); bpc != 8 {
		return nil, fmt.Errorf("PNG predictor needs 8 bits per component, got %d", bpc)
	}
	rowSize := params.Int("Columns", 1) * colors
	if rowSize <= 0 || len(data)%(rowSize+1) != 0 {
		return nil, fmt.Errorf("predicted data size %d does not divide into rows of %d", len(data), rowSize+1)
	}

	out := make([]byte, 0, len(data)/(rowSize+1)*rowSize)
	prev := make([]byte, rowSize)
	row := make([]byte, rowSize)
	for pos := 0; pos < len(data); pos += rowSize + 1 {
		filter := data[pos]
		copy(row, data[pos+1:pos+1+rowSize])

		for i := range row {
			var left, up, upLeft byte
			if i >= colors {
				left = row[i-colors]
				upLeft = prev[i-colors]
			}
			up = prev[i]

			switch filter {
			case 0:
			case 1:
				row[i] += left
			case 2:
				row[i] += up
			case 3:
				row[i] += byte((int(left) + int(up)) / 2)
			case 4:
				row[i] += paeth(left, up, upLeft)
			default:
				return nil, fmt.Errorf("unknown PNG row filter %d", filter)
			}
		}

		out = append(out, row...)
		prev, row = row, prev
	}
	return out, nil
}

// paeth picks the neighbor closest to the linear prediction, as defined
// by the PNG specification.
func paeth(left, up, upLeft byte) byte {
	p := int(left) + int(up) - int(upLeft)
	pa := abs(p - int(left))
	pb := abs(p - int(up))
	pc := abs(p - int(upLeft))
	if pa <= pb && pa <= pc {
		return left
	}
	if pb <= pc {
		return up
	}
	return upLeft
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
