package core

import (
	"bytes"
)

// streamBodyStart locates the first byte of the stream body following a
// stream keyword token. The keyword must be terminated by an EOL; a lone
// CR is tolerated with a warning and a missing EOL with an error.
func streamBodyStart(data []byte, tok *Token, rep *Reporter) int {
	start := tok.Pos + len(tok.Value)
	gotCR := start < len(data) && data[start] == '\r'
	if gotCR {
		start++
	}
	gotLF := start < len(data) && data[start] == '\n'
	if gotLF {
		start++
	}
	if !gotLF {
		if !gotCR {
			rep.Errorf(start, `stream keyword not followed by \n`)
		} else {
			rep.Warnf(start, `stream keyword terminated by \r without \n`)
		}
	}
	return start
}

// extractStream slices the stream body out of the buffer. The declared
// /Length is trusted when the bytes at dict start + length read
// "endstream endobj"; anything else enters a repair path that searches
// for the endstream keyword and adjusts the window, recording what was
// wrong. The lexer is left positioned for the caller to continue.
func extractStream(lx *Lexer, dict Dict, id ObjectID, streamTok *Token, rep *Reporter) *Stream {
	data := lx.Data()
	start := streamBodyStart(data, streamTok, rep)
	s := &Stream{Dict: dict, ID: id}

	length := -1
	if n, ok := dict.GetInt("Length"); ok && n >= 0 {
		length = int(n)
	} else {
		rep.Errorf(streamTok.Pos, "stream /Length attribute missing or invalid")
	}

	maxstream := len(data) - 20
	endstreamAt := func() int {
		if maxstream <= start {
			return -1
		}
		i := bytes.Index(data[start:maxstream], []byte("endstream"))
		if i < 0 {
			return -1
		}
		return start + i
	}

	if length < 0 {
		// No usable length at all. Take everything up to the endstream
		// keyword and record the corrected length.
		endstream := endstreamAt()
		if endstream < 0 {
			rep.Errorf(start, "could not find endstream")
			return s
		}
		s.Raw = data[start:endstream]
		dict["Length"] = Int(len(s.Raw))
		lx.Seek(endstream)
		return s
	}

	target := start + length
	if target <= len(data) {
		probe := NewLexerAt(data, target)
		endit := probe.Multiple(2)
		s.Raw = data[start:target]
		if string(endit[0].Value) == "endstream" && string(endit[1].Value) == "endobj" {
			lx.Seek(probe.Pos())
			return s
		}
	}

	// The length attribute does not match the distance between the
	// stream and endstream keywords.
	endstream := endstreamAt()
	if endstream < 0 {
		rep.Errorf(start, "could not find endstream")
		return s
	}
	room := endstream - start

	if length == room+1 && start >= 2 && bytes.Equal(data[start-2:start], []byte("\r\n")) {
		rep.Warnf(start, `stream keyword terminated by \r without \n`)
		s.Raw = data[start-1 : target-1]
		lx.Seek(start - 1)
		return s
	}
	lx.Seek(endstream)
	if length > room {
		rep.Errorf(endstream, "stream /Length attribute (%d) appears to be too big (size %d), adjusting", length, room)
		s.Raw = data[start:endstream]
		dict["Length"] = Int(len(s.Raw))
		return s
	}
	if len(trimPDFSpace(data[target:endstream])) > 0 {
		rep.Errorf(endstream, "stream /Length attribute (%d) appears to be too small (size %d), adjusting", length, room)
		s.Raw = data[start:endstream]
		dict["Length"] = Int(len(s.Raw))
		return s
	}
	endobj := -1
	if maxstream > endstream {
		endobj = bytes.Index(data[endstream:maxstream], []byte("endobj"))
	}
	if endobj < 0 {
		rep.Errorf(endstream, "could not find endobj after endstream")
		return s
	}
	endobj += endstream
	if !bytes.Equal(trimPDFSpace(data[endstream:endobj]), []byte("endstream")) {
		rep.Errorf(endstream, "unexpected data between endstream and endobj")
		return s
	}
	rep.Errorf(endstream, "illegal endstream/endobj combination")
	return s
}

func trimPDFSpace(b []byte) []byte {
	return bytes.Trim(b, " \t\r\n\f\x00")
}
