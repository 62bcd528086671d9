package core

import (
	"bytes"
	"strconv"
)

// Parser builds PDF values from the token stream. It recognizes the
// "N G R" indirect-reference idiom and replaces it with the shared
// placeholder from the object table, and it recovers from the common
// ways producers get dictionaries wrong instead of aborting.
type Parser struct {
	lx    *Lexer
	table *ObjectTable
	rep   *Reporter
}

// NewParser creates a parser over the given lexer. The table supplies
// indirect-reference placeholders and may be nil when parsing values
// that cannot contain references.
func NewParser(lx *Lexer, table *ObjectTable, rep *Reporter) *Parser {
	return &Parser{lx: lx, table: table, rep: rep}
}

// next returns the next non-comment token, tolerating end of input.
func (p *Parser) next() *Token {
	for {
		tok := p.lx.NextTokenDefault()
		if tok.Type != TokenComment {
			return tok
		}
	}
}

func (p *Parser) findIndirect(number, generation int64) Object {
	id := ObjectID{Number: int(number), Generation: int(generation)}
	if p.table == nil {
		return &Indirect{id: id}
	}
	return p.table.FindIndirect(id)
}

// ParseValue parses one fully-formed value starting at the next token.
func (p *Parser) ParseValue() (Object, error) {
	return p.parseValueToken(p.next())
}

// parseValueToken dispatches on a token already read. Stray delimiters
// at a value position are fatal; most other malformed input is reported
// and substituted.
func (p *Parser) parseValueToken(tok *Token) (Object, error) {
	switch tok.Type {
	case TokenDictStart:
		return p.parseDict()

	case TokenArrayStart:
		return p.parseArray()

	case TokenInteger, TokenReal:
		return p.parseNumber(tok), nil

	case TokenString, TokenHexString:
		return String(tok.Value), nil

	case TokenName:
		return Name(tok.Value), nil

	case TokenKeyword:
		return p.parseKeyword(tok), nil

	case TokenIndirectRef:
		p.rep.Errorf(tok.Pos, `unexpected "R" keyword`)
		return Null{}, nil

	case TokenEOF:
		return nil, parseErrorf(tok.Pos, "unexpected end of input")

	default:
		// TokenDelim, TokenArrayEnd, TokenDictEnd
		return nil, parseErrorf(tok.Pos, "unexpected delimiter %q", tok.Value)
	}
}

func (p *Parser) parseNumber(tok *Token) Object {
	if tok.Type == TokenInteger {
		if i, err := strconv.ParseInt(string(tok.Value), 10, 64); err == nil {
			return Int(i)
		}
	}
	if f, err := strconv.ParseFloat(string(tok.Value), 64); err == nil {
		return Real(f)
	}
	p.rep.Errorf(tok.Pos, "invalid number %q", tok.Value)
	return Null{}
}

func (p *Parser) parseKeyword(tok *Token) Object {
	switch string(tok.Value) {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	case "null":
		return Null{}
	}

	// A missing delimiter before endobj is a common generation mistake:
	// the value and the keyword fuse into one token. Split them, back
	// the cursor up so the caller still observes endobj, and interpret
	// what remains.
	if text := tok.Value; len(text) > 6 && bytes.HasSuffix(text, []byte("endobj")) {
		p.rep.Errorf(tok.Pos, "no space or delimiter before endobj")
		p.lx.Seek(tok.Pos + len(text) - 6)
		switch prefix := string(text[:len(text)-6]); prefix {
		case "true":
			return Bool(true)
		case "false":
			return Bool(false)
		case "null":
			return Null{}
		default:
			return String(prefix)
		}
	}

	p.rep.Errorf(tok.Pos, "unexpected keyword %q", tok.Value)
	return Null{}
}

// parseArray accumulates values until the closing bracket. When an R
// token appears, the two preceding values must be integers; they are
// consumed and collapsed into a single indirect reference.
func (p *Parser) parseArray() (Object, error) {
	var arr Array
	for {
		tok := p.next()
		switch tok.Type {
		case TokenArrayEnd:
			return arr, nil

		case TokenEOF:
			return nil, parseErrorf(tok.Pos, "unexpected end of input in array")

		case TokenIndirectRef:
			if len(arr) >= 2 {
				num, okNum := arr[len(arr)-2].(Int)
				gen, okGen := arr[len(arr)-1].(Int)
				if okNum && okGen {
					arr = arr[:len(arr)-2]
					arr = append(arr, p.findIndirect(int64(num), int64(gen)))
					continue
				}
			}
			p.rep.Errorf(tok.Pos, `expected two integers before "R"`)

		default:
			obj, err := p.parseValueToken(tok)
			if err != nil {
				return nil, err
			}
			arr = append(arr, obj)
		}
	}
}

// parseDict accumulates /name value pairs until the closing marker. A
// token that is not a name where a key is expected is reported and
// skipped so the rest of the dictionary still parses.
func (p *Parser) parseDict() (Object, error) {
	d := make(Dict)
	tok := p.next()
	for {
		if tok.Type == TokenDictEnd {
			return d, nil
		}
		if tok.Type == TokenEOF {
			return nil, parseErrorf(tok.Pos, "unexpected end of input in dictionary")
		}
		if tok.Type != TokenName {
			p.rep.Errorf(tok.Pos, "expected PDF name object, got %q", tok.Value)
			tok = p.next()
			continue
		}
		key := string(tok.Value)

		valTok := p.next()
		if valTok.Type == TokenInteger {
			// Possible "N G R" reference: carry the lookahead tokens
			// through the loop instead of rewinding.
			num := p.parseNumber(valTok)
			tok2 := p.next()
			if tok2.Type != TokenInteger {
				d[key] = num
				tok = tok2
				continue
			}
			tok3 := p.next()
			if tok3.Type != TokenIndirectRef {
				p.rep.Errorf(tok3.Pos, `expected "R" following two integers`)
				tok = tok3
				continue
			}
			gen := p.parseNumber(tok2)
			if n, okN := num.(Int); okN {
				if g, okG := gen.(Int); okG {
					d[key] = p.findIndirect(int64(n), int64(g))
				}
			}
			tok = p.next()
			continue
		}

		value, err := p.parseValueToken(valTok)
		if err != nil {
			return nil, err
		}
		d[key] = value
		tok = p.next()
	}
}
