package core

import (
	"bytes"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

// XRef drives cross-reference discovery: it walks the chain of xref
// sections from newest to oldest, filling the object table's offset map
// as it goes. Both classic tables and cross-reference streams are
// handled, and compressed objects are expanded as their containers are
// discovered.
type XRef struct {
	table *ObjectTable
	rep   *Reporter
}

// NewXRef creates a cross-reference walker over the given table.
func NewXRef(table *ObjectTable) *XRef {
	return &XRef{table: table, rep: table.Reporter()}
}

// LocateStartXref finds the startxref anchor near the end of the file
// and returns the byte offset of the newest cross-reference section.
func LocateStartXref(data []byte, rep *Reporter) (int, error) {
	startloc := bytes.LastIndex(data, []byte("startxref"))
	if startloc < 0 {
		return 0, parseErrorf(len(data), `did not find "startxref" at end of file`)
	}
	lx := NewLexerAt(data, startloc)
	lx.NextTokenDefault() // the startxref keyword itself
	tok := lx.NextTokenDefault()
	if tok.Type != TokenInteger {
		return 0, parseErrorf(tok.Pos, "expected table location")
	}
	offset := atoiBytes(tok.Value)
	eof := lx.NextTokenDefault()
	marker := strings.TrimLeft(strings.TrimRight(string(eof.Value), " \t\r\n\f\x00"), "%")
	if marker != "EOF" {
		return 0, parseErrorf(eof.Pos, "expected %%%%EOF")
	}
	return offset, nil
}

// ReadChain parses the cross-reference section at start and follows
// /Prev links until the oldest section is reached. Offsets are recorded
// first write wins, so the newest section takes precedence. The newest
// section's trailer dictionary is returned, carrying the highest
// /Version declared anywhere in the chain. A /Prev pointing back at a
// section already visited is fatal.
func (x *XRef) ReadChain(start int) (Dict, error) {
	lx := NewLexerAt(x.table.Data(), start)
	var newest Dict
	followed := false
	visited := map[int]struct{}{start: {}}
	for {
		trailer, err := x.parseSection(lx)
		if err != nil {
			return nil, err
		}
		if newest == nil {
			newest = trailer
		} else if v, ok := versionNumber(trailer); ok {
			if cur, curOK := versionNumber(newest); !curOK || v > cur {
				newest["Version"] = trailer.Get("Version")
			}
		}
		prev, ok := trailer.GetInt("Prev")
		if !ok {
			if !followed {
				tok := lx.NextTokenDefault()
				if !(tok.Type == TokenKeyword && string(tok.Value) == "startxref") {
					x.rep.Warnf(tok.Pos, `expected "startxref" at end of xref table`)
				}
			}
			break
		}
		if _, seen := visited[int(prev)]; seen {
			return nil, parseErrorf(lx.Pos(), "circular /Prev chain in cross-reference sections")
		}
		visited[int(prev)] = struct{}{}
		followed = true
		lx.Seek(int(prev))
	}
	if newest == nil {
		newest = Dict{}
	}
	return newest, nil
}

// versionNumber reads a trailer /Version override, which writers emit
// as a name, a number or a string.
func versionNumber(trailer Dict) (float64, bool) {
	var s string
	switch v := trailer.Resolve("Version").(type) {
	case Name:
		s = string(v)
	case Real:
		s = v.String()
	case String:
		s = string(v)
	default:
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// parseSection dispatches on the first token of a section: an integer
// opens a cross-reference stream object, the xref keyword a classic
// table followed by a trailer dictionary.
func (x *XRef) parseSection(lx *Lexer) (Dict, error) {
	p := NewParser(lx, x.table, x.rep)
	tok := p.next()
	switch {
	case tok.Type == TokenInteger:
		return x.parseXrefStream(lx, p, tok)

	case tok.Type == TokenKeyword && string(tok.Value) == "xref":
		if err := x.parseClassicTable(lx); err != nil {
			return nil, err
		}
		tok = p.next()
		if tok.Type != TokenDictStart {
			return nil, parseErrorf(tok.Pos, `expected "<<" starting trailer dictionary`)
		}
		obj, err := p.parseDict()
		if err != nil {
			return nil, err
		}
		return obj.(Dict), nil

	default:
		return nil, parseErrorf(tok.Pos, `expected "xref" keyword or xref stream object`)
	}
}

// parseClassicTable reads a classic table. A well-formed table is
// consumed token by token; on the first malformed token the whole
// section is re-scanned line by line, which rescues the common case of
// broken line endings or missing subsection headers.
func (x *XRef) parseClassicTable(lx *Lexer) error {
	start := lx.Pos()
	if x.strictClassic(lx) {
		return nil
	}
	return x.lenientClassic(lx, start)
}

func (x *XRef) strictClassic(lx *Lexer) bool {
	for {
		tok := lx.NextTokenDefault()
		if tok.Type == TokenKeyword && string(tok.Value) == "trailer" {
			return true
		}
		if tok.Type != TokenInteger {
			return false
		}
		startobj := atoiBytes(tok.Value)
		countTok := lx.NextTokenDefault()
		if countTok.Type != TokenInteger {
			return false
		}
		count := atoiBytes(countTok.Value)
		for i := 0; i < count; i++ {
			offTok := lx.NextTokenDefault()
			genTok := lx.NextTokenDefault()
			useTok := lx.NextTokenDefault()
			if offTok.Type != TokenInteger || genTok.Type != TokenInteger ||
				useTok.Type != TokenKeyword {
				return false
			}
			switch string(useTok.Value) {
			case "n":
				offset := atoiBytes(offTok.Value)
				if offset != 0 {
					id := ObjectID{Number: startobj + i, Generation: atoiBytes(genTok.Value)}
					x.table.SetOffsetIfAbsent(id, offset)
				}
			case "f":
				// free entry
			default:
				return false
			}
		}
	}
}

func (x *XRef) lenientClassic(lx *Lexer, start int) error {
	data := lx.Data()
	rel := bytes.Index(data[start:], []byte("trailer"))
	if rel < 0 {
		return parseErrorf(start, "invalid table format")
	}
	end := start + rel

	objnum := -1
	for _, line := range bytes.FieldsFunc(data[start:end], func(r rune) bool {
		return r == '\n' || r == '\r'
	}) {
		fields := bytes.Fields(line)
		switch len(fields) {
		case 0:
		case 2:
			objnum = atoiBytes(fields[0])
			if objnum < 0 {
				return parseErrorf(start, "invalid table format")
			}
		case 3:
			offset := atoiBytes(fields[0])
			generation := atoiBytes(fields[1])
			if objnum < 0 || offset < 0 || generation < 0 {
				return parseErrorf(start, "invalid table format")
			}
			if offset != 0 && string(fields[2]) == "n" {
				x.table.SetOffsetIfAbsent(ObjectID{Number: objnum, Generation: generation}, offset)
			}
			objnum++
		default:
			x.rep.Errorf(start, "invalid line in xref table: %q", line)
			return parseErrorf(start, "invalid table format")
		}
	}
	x.rep.Warnf(start, "badly formatted xref table")
	lx.Seek(end)
	lx.NextTokenDefault() // the trailer keyword
	return nil
}

// parseXrefStream reads a cross-reference stream object. Unlike object
// bodies, structural damage here is fatal: without the entry table the
// rest of the file cannot be addressed.
func (x *XRef) parseXrefStream(lx *Lexer, p *Parser, numTok *Token) (Dict, error) {
	data := lx.Data()
	genTok := lx.NextTokenDefault()
	objTok := lx.NextTokenDefault()
	openTok := lx.NextTokenDefault()
	if genTok.Type != TokenInteger ||
		objTok.Type != TokenKeyword || string(objTok.Value) != "obj" ||
		openTok.Type != TokenDictStart {
		return nil, parseErrorf(numTok.Pos, "expected xref stream start")
	}
	obj, err := p.parseDict()
	if err != nil {
		return nil, err
	}
	dict := obj.(Dict)
	if typ, _ := dict.GetName("Type"); typ != "XRef" {
		return nil, parseErrorf(numTok.Pos, "expected dictionary type of /XRef")
	}

	streamTok := p.next()
	if !(streamTok.Type == TokenKeyword && string(streamTok.Value) == "stream") {
		return nil, parseErrorf(streamTok.Pos, "expected stream keyword in xref stream object")
	}
	length, ok := dict.Get("Length").(Int)
	if !ok {
		return nil, parseErrorf(numTok.Pos, "xref stream /Length must be a direct integer")
	}
	bodyStart := streamBodyStart(data, streamTok, x.rep)
	end := bodyStart + int(length)
	if end > len(data) {
		return nil, parseErrorf(bodyStart, "xref stream extends past end of file")
	}
	probe := NewLexerAt(data, end)
	endit := probe.Multiple(2)
	if string(endit[0].Value) != "endstream" || string(endit[1].Value) != "endobj" {
		return nil, parseErrorf(end, "expected endstream endobj")
	}

	id := ObjectID{Number: atoiBytes(numTok.Value), Generation: atoiBytes(genTok.Value)}
	s := &Stream{Dict: dict, ID: id, Raw: data[bodyStart:end]}
	decoded, err := s.Decoded()
	if err != nil {
		return nil, parseErrorf(numTok.Pos, "cannot decode xref stream: %v", err)
	}

	widths, err := xrefEntryWidths(dict)
	if err != nil {
		return nil, err
	}
	pairs, err := xrefIndexPairs(dict)
	if err != nil {
		return nil, err
	}

	objStreams := make(map[int][]int)
	pos := 0
	for _, pair := range pairs {
		num := pair[0]
		for cnt := 0; cnt < pair[1]; cnt++ {
			var cols [3]int
			for i, width := range widths {
				if pos+width > len(decoded) {
					return nil, parseErrorf(bodyStart, "xref stream data truncated")
				}
				v := 0
				for _, b := range decoded[pos : pos+width] {
					v = v<<8 | int(b)
				}
				pos += width
				cols[i] = v
			}
			entryType := cols[0]
			if entryType == 0 && widths[0] == 0 {
				// A zero-width type column means every entry is in use.
				entryType = 1
			}
			switch entryType {
			case 1:
				if cols[1] != 0 {
					x.table.SetOffsetIfAbsent(ObjectID{Number: num, Generation: cols[2]}, cols[1])
				}
			case 2:
				objStreams[cols[1]] = append(objStreams[cols[1]], cols[2])
			}
			num++
		}
	}

	expandObjectStreams(x.table, objStreams)

	lx.Seek(probe.Pos())
	return dict, nil
}

func xrefEntryWidths(dict Dict) ([]int, error) {
	w, ok := dict.GetArray("W")
	if !ok || len(w) != 3 {
		return nil, parseErrorf(0, "xref stream /W must be a three-element array")
	}
	widths := make([]int, 3)
	for i := range w {
		n, ok := w.GetInt(i)
		if !ok || n < 0 {
			return nil, parseErrorf(0, "invalid entry size")
		}
		widths[i] = int(n)
	}
	if slices.Max(widths) > 8 {
		return nil, parseErrorf(0, "invalid entry size")
	}
	return widths, nil
}

func xrefIndexPairs(dict Dict) ([][2]int, error) {
	index, ok := dict.GetArray("Index")
	if !ok {
		size, ok := dict.GetInt("Size")
		if !ok {
			return nil, parseErrorf(0, "xref stream missing /Size")
		}
		index = Array{Int(0), size}
	}
	if len(index)%2 != 0 {
		return nil, parseErrorf(0, "xref stream /Index must hold start,count pairs")
	}
	pairs := make([][2]int, 0, len(index)/2)
	for i := 0; i < len(index); i += 2 {
		start, okS := index.GetInt(i)
		count, okC := index.GetInt(i + 1)
		if !okS || !okC {
			return nil, parseErrorf(0, "xref stream /Index must hold start,count pairs")
		}
		pairs = append(pairs, [2]int{int(start), int(count)})
	}
	return pairs, nil
}
