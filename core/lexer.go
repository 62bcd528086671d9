package core

import (
	"bytes"
)

// TokenType represents the type of token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenComment
	TokenKeyword     // true, false, null, obj, endobj, stream, endstream, etc.
	TokenInteger     // 123
	TokenReal        // 3.14
	TokenString      // (hello)
	TokenHexString   // <48656C6C6F>
	TokenName        // /Type
	TokenArrayStart  // [
	TokenArrayEnd    // ]
	TokenDictStart   // <<
	TokenDictEnd     // >>
	TokenIndirectRef // R (after two numbers)
	TokenDelim       // stray delimiter byte: ) > { } \ ...
)

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Value []byte
	Pos   int // byte offset of the token start in the buffer
}

// Lexer tokenizes PDF syntax from an in-memory buffer. The position
// cursor is seekable, which the object table relies on to jump to
// recorded byte offsets and to back up over tokens during recovery.
type Lexer struct {
	data []byte
	pos  int
}

// NewLexer creates a lexer over the full buffer.
func NewLexer(data []byte) *Lexer {
	return &Lexer{data: data}
}

// NewLexerAt creates a lexer positioned at the given offset.
func NewLexerAt(data []byte, pos int) *Lexer {
	return &Lexer{data: data, pos: pos}
}

// Pos returns the current byte position.
func (l *Lexer) Pos() int { return l.pos }

// Seek moves the cursor to an absolute byte position.
func (l *Lexer) Seek(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(l.data) {
		pos = len(l.data)
	}
	l.pos = pos
}

// Data returns the underlying buffer.
func (l *Lexer) Data() []byte { return l.data }

// NextToken returns the next token from the input. End of input yields a
// TokenEOF token rather than an error; errors are reserved for malformed
// string and hex-string payloads.
func (l *Lexer) NextToken() (*Token, error) {
	l.skipWhitespace()

	if l.pos >= len(l.data) {
		return &Token{Type: TokenEOF, Pos: l.pos}, nil
	}

	start := l.pos
	b := l.data[l.pos]

	switch {
	case b == '%':
		return l.readComment(), nil
	case b == '[':
		l.pos++
		return &Token{Type: TokenArrayStart, Value: l.data[start:l.pos], Pos: start}, nil
	case b == ']':
		l.pos++
		return &Token{Type: TokenArrayEnd, Value: l.data[start:l.pos], Pos: start}, nil
	case b == '(':
		return l.readString()
	case b == '<':
		if l.pos+1 < len(l.data) && l.data[l.pos+1] == '<' {
			l.pos += 2
			return &Token{Type: TokenDictStart, Value: l.data[start:l.pos], Pos: start}, nil
		}
		return l.readHexString()
	case b == '>':
		if l.pos+1 < len(l.data) && l.data[l.pos+1] == '>' {
			l.pos += 2
			return &Token{Type: TokenDictEnd, Value: l.data[start:l.pos], Pos: start}, nil
		}
		l.pos++
		return &Token{Type: TokenDelim, Value: l.data[start:l.pos], Pos: start}, nil
	case b == '/':
		return l.readName()
	case isDigit(b) || b == '-' || b == '+' || b == '.':
		return l.readNumber(), nil
	case isAlpha(b):
		return l.readKeyword(), nil
	}

	// Anything else is a stray delimiter; the parser decides whether it
	// is fatal in context.
	l.pos++
	return &Token{Type: TokenDelim, Value: l.data[start:l.pos], Pos: start}, nil
}

// NextTokenDefault is the end-of-input tolerant variant of NextToken: a
// lexical error or exhausted input yields an empty EOF token.
func (l *Lexer) NextTokenDefault() *Token {
	tok, err := l.NextToken()
	if err != nil {
		return &Token{Type: TokenEOF, Pos: l.pos}
	}
	return tok
}

// Multiple reads exactly n tokens, tolerating end of input.
func (l *Lexer) Multiple(n int) []*Token {
	toks := make([]*Token, n)
	for i := 0; i < n; i++ {
		toks[i] = l.NextTokenDefault()
	}
	return toks
}

// skipWhitespace skips all whitespace characters
// PDF whitespace: space (0x20), tab (0x09), LF (0x0A), CR (0x0D), FF (0x0C), null (0x00)
func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.data) && isWhitespace(l.data[l.pos]) {
		l.pos++
	}
}

// readComment reads a comment (% to end of line)
func (l *Lexer) readComment() *Token {
	start := l.pos
	for l.pos < len(l.data) && l.data[l.pos] != '\r' && l.data[l.pos] != '\n' {
		l.pos++
	}
	return &Token{Type: TokenComment, Value: l.data[start:l.pos], Pos: start}
}

// readString reads a literal string (hello), decoding escape sequences
// and balancing nested parentheses.
func (l *Lexer) readString() (*Token, error) {
	start := l.pos
	l.pos++ // opening (

	var buf bytes.Buffer
	depth := 1
	for depth > 0 {
		if l.pos >= len(l.data) {
			return nil, parseErrorf(start, "unterminated string")
		}
		b := l.data[l.pos]
		l.pos++

		switch b {
		case '(':
			depth++
			buf.WriteByte(b)
		case ')':
			depth--
			if depth > 0 {
				buf.WriteByte(b)
			}
		case '\\':
			if l.pos >= len(l.data) {
				return nil, parseErrorf(start, "unterminated string")
			}
			next := l.data[l.pos]
			l.pos++
			switch next {
			case 'n':
				buf.WriteByte('\n')
			case 'r':
				buf.WriteByte('\r')
			case 't':
				buf.WriteByte('\t')
			case 'b':
				buf.WriteByte('\b')
			case 'f':
				buf.WriteByte('\f')
			case '(', ')', '\\':
				buf.WriteByte(next)
			case '\r', '\n':
				// Line continuation: drop the backslash and newline
				if next == '\r' && l.pos < len(l.data) && l.data[l.pos] == '\n' {
					l.pos++
				}
			case '0', '1', '2', '3', '4', '5', '6', '7':
				// Octal escape \ddd
				val := next - '0'
				for i := 0; i < 2 && l.pos < len(l.data) && isOctalDigit(l.data[l.pos]); i++ {
					val = val*8 + (l.data[l.pos] - '0')
					l.pos++
				}
				buf.WriteByte(val)
			default:
				// Unknown escape - keep the character
				buf.WriteByte(next)
			}
		default:
			buf.WriteByte(b)
		}
	}

	return &Token{Type: TokenString, Value: buf.Bytes(), Pos: start}, nil
}

// readHexString reads a hexadecimal string <48656C6C6F>, decoding it to
// raw bytes. An odd number of digits is padded with a trailing zero.
func (l *Lexer) readHexString() (*Token, error) {
	start := l.pos
	l.pos++ // opening <

	var digits []byte
	for {
		if l.pos >= len(l.data) {
			return nil, parseErrorf(start, "unterminated hex string")
		}
		b := l.data[l.pos]
		l.pos++
		if b == '>' {
			break
		}
		if isWhitespace(b) {
			continue
		}
		if !isHexDigit(b) {
			return nil, parseErrorf(l.pos-1, "invalid hex digit %q", b)
		}
		digits = append(digits, b)
	}

	if len(digits)%2 != 0 {
		digits = append(digits, '0')
	}
	decoded := make([]byte, len(digits)/2)
	for i := 0; i < len(digits); i += 2 {
		decoded[i/2] = hexValue(digits[i])<<4 | hexValue(digits[i+1])
	}

	return &Token{Type: TokenHexString, Value: decoded, Pos: start}, nil
}

// readName reads a name object /Type, decoding # escape sequences.
func (l *Lexer) readName() (*Token, error) {
	start := l.pos
	l.pos++ // the /

	var buf bytes.Buffer
	for l.pos < len(l.data) {
		b := l.data[l.pos]
		if isWhitespace(b) || isDelimiter(b) {
			break
		}
		l.pos++

		if b == '#' && l.pos+1 < len(l.data) &&
			isHexDigit(l.data[l.pos]) && isHexDigit(l.data[l.pos+1]) {
			buf.WriteByte(hexValue(l.data[l.pos])<<4 | hexValue(l.data[l.pos+1]))
			l.pos += 2
		} else {
			buf.WriteByte(b)
		}
	}

	return &Token{Type: TokenName, Value: buf.Bytes(), Pos: start}, nil
}

// readNumber reads an integer or real number
func (l *Lexer) readNumber() *Token {
	start := l.pos
	hasDecimal := false

	for l.pos < len(l.data) {
		b := l.data[l.pos]
		if b == '.' {
			if hasDecimal {
				break
			}
			hasDecimal = true
		} else if !isDigit(b) && !(l.pos == start && (b == '-' || b == '+')) {
			break
		}
		l.pos++
	}

	typ := TokenInteger
	if hasDecimal {
		typ = TokenReal
	}
	return &Token{Type: typ, Value: l.data[start:l.pos], Pos: start}
}

// readKeyword reads a keyword (true, false, null, R, obj, endobj, etc.)
func (l *Lexer) readKeyword() *Token {
	start := l.pos
	for l.pos < len(l.data) && (isAlpha(l.data[l.pos]) || isDigit(l.data[l.pos])) {
		l.pos++
	}

	value := l.data[start:l.pos]
	if len(value) == 1 && value[0] == 'R' {
		return &Token{Type: TokenIndirectRef, Value: value, Pos: start}
	}
	return &Token{Type: TokenKeyword, Value: value, Pos: start}
}

// Helper functions

func isWhitespace(b byte) bool {
	// PDF whitespace: space, tab, LF, CR, FF, null
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == 0
}

func isDelimiter(b byte) bool {
	return b == '(' || b == ')' || b == '<' || b == '>' || b == '[' || b == ']' ||
		b == '{' || b == '}' || b == '/' || b == '%'
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isOctalDigit(b byte) bool {
	return b >= '0' && b <= '7'
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func hexValue(b byte) byte {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10
	}
	return 0
}
