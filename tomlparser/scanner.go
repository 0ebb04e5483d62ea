package tomlparser

import (
	"strings"
	"unicode/utf8"
)

// We don't buffer a token stream; the Scanner is simply a cursor in the
// input string with associated utility methods, and the recursive descent
// parser drives it directly, using Clone() for look-ahead.
type Scanner struct {
	input string

	startIndex int // start of the current token
	curIndex   int // position just past the current token
	tokenType  TokenType

	// set when tokenType is StringToken
	strValue     string
	strMultiline bool
	strLiteral   bool

	err *Error
}

// NewScanner creates a scanner over a complete TOML document. A UTF-8 BOM
// at the very start is skipped; spans keep counting it.
func NewScanner(input string) *Scanner {
	s := &Scanner{input: input}
	if strings.HasPrefix(input, "\ufeff") {
		s.curIndex = len("\ufeff")
	}
	return s
}

// Returns a clone of the scanner; this is used to do look-ahead parsing
func (s Scanner) Clone() *Scanner {
	result := new(Scanner)
	*result = s
	return result
}

func (s *Scanner) TokenType() TokenType {
	return s.tokenType
}

// Token returns the raw source text of the current token.
func (s *Scanner) Token() string {
	return s.input[s.startIndex:s.curIndex]
}

// Span returns the byte range of the current token.
func (s *Scanner) Span() Span {
	return Span{Start: s.startIndex, End: s.curIndex}
}

// Input returns the source text the scanner was created over.
func (s *Scanner) Input() string {
	return s.input
}

// StringValue returns the decoded value of the current StringToken: escapes
// resolved, line endings normalized, delimiters excluded. The value aliases
// the input unless decoding forced a rewrite.
func (s *Scanner) StringValue() string {
	return s.strValue
}

// StringIsMultiline reports whether the current StringToken was written
// with a triple-quote delimiter.
func (s *Scanner) StringIsMultiline() bool {
	return s.strMultiline
}

// StringIsLiteral reports whether the current StringToken was a literal
// (single-quoted) string.
func (s *Scanner) StringIsLiteral() bool {
	return s.strLiteral
}

// Err returns the error scanning stopped at, if any.
func (s *Scanner) Err() *Error {
	return s.err
}

// Next scans the next token and advances the scanner's position to after
// the token. The first lexical problem is returned once; every call after
// that reports EOFToken.
func (s *Scanner) Next() (TokenType, error) {
	s.strValue, s.strMultiline, s.strLiteral = "", false, false
	s.startIndex = s.curIndex
	if s.err != nil || s.curIndex == len(s.input) {
		s.tokenType = EOFToken
		return EOFToken, nil
	}
	tt, err := s.next()
	if err != nil {
		s.err = err.(*Error)
		s.tokenType = EOFToken
		return EOFToken, err
	}
	s.tokenType = tt
	return tt, nil
}

func (s *Scanner) next() (TokenType, error) {
	r, w := utf8.DecodeRuneInString(s.input[s.curIndex:])
	switch {
	case r == ' ' || r == '\t':
		return s.scanWhitespace(), nil
	case r == '\n':
		s.curIndex++
		return NewlineToken, nil
	case r == '\r':
		if strings.HasPrefix(s.input[s.curIndex+1:], "\n") {
			s.curIndex += 2
			return NewlineToken, nil
		}
		// a carriage return is only ever valid as part of \r\n
		return 0, &Error{Kind: Unexpected, Span: Span{s.curIndex, s.curIndex + 1}, Char: '\r'}
	case r == '#':
		return s.scanComment(), nil
	case r == '=':
		s.curIndex++
		return EqualsToken, nil
	case r == '.':
		s.curIndex++
		return PeriodToken, nil
	case r == ',':
		s.curIndex++
		return CommaToken, nil
	case r == ':':
		s.curIndex++
		return ColonToken, nil
	case r == '+':
		s.curIndex++
		return PlusToken, nil
	case r == '{':
		s.curIndex++
		return LeftBraceToken, nil
	case r == '}':
		s.curIndex++
		return RightBraceToken, nil
	case r == '[':
		s.curIndex++
		return LeftBracketToken, nil
	case r == ']':
		s.curIndex++
		return RightBracketToken, nil
	case r == '\'' || r == '"':
		return s.scanString(byte(r))
	case isKeylike(r):
		return s.scanKeylike(), nil
	default:
		return 0, &Error{Kind: Unexpected, Span: Span{s.curIndex, s.curIndex + w}, Char: r}
	}
}

func isKeylike(r rune) bool {
	return r >= 'a' && r <= 'z' ||
		r >= 'A' && r <= 'Z' ||
		r >= '0' && r <= '9' ||
		r == '-' || r == '_'
}

func (s *Scanner) scanKeylike() TokenType {
	for i, r := range s.input[s.curIndex:] {
		if !isKeylike(r) {
			s.curIndex += i
			return KeylikeToken
		}
	}
	s.curIndex = len(s.input)
	return KeylikeToken
}

func (s *Scanner) scanWhitespace() TokenType {
	for i := s.curIndex; i < len(s.input); i++ {
		if c := s.input[i]; c != ' ' && c != '\t' {
			s.curIndex = i
			return WhitespaceToken
		}
	}
	s.curIndex = len(s.input)
	return WhitespaceToken
}

// scanComment assumes the cursor is at '#'. The comment runs to the next
// newline, which is not part of the token. A control character ends the
// comment as well, so that the following Next() reports it as Unexpected.
func (s *Scanner) scanComment() TokenType {
	s.curIndex++
	for i, r := range s.input[s.curIndex:] {
		if r == '\n' || r == '\r' || (r < 0x20 && r != '\t') || r == 0x7f {
			s.curIndex += i
			return CommentToken
		}
	}
	s.curIndex = len(s.input)
	return CommentToken
}

// scanString assumes the cursor is at the opening quote. Both string
// flavors share delimiter handling; only basic strings process escapes.
func (s *Scanner) scanString(delim byte) (TokenType, error) {
	start := s.curIndex
	literal := delim == '\''
	multiline := false

	s.curIndex++
	if s.eat(delim) {
		if !s.eat(delim) {
			// empty single-line string
			s.setString("", false, literal)
			return StringToken, nil
		}
		multiline = true
		// a newline directly after the opening delimiter is dropped
		if !s.eat('\n') && strings.HasPrefix(s.input[s.curIndex:], "\r\n") {
			s.curIndex += 2
		}
	}

	vstart := s.curIndex
	// the value aliases the input until a rewrite (escape, line ending
	// normalization, line continuation) forces an owned buffer
	var owned *strings.Builder
	toOwned := func(end int) {
		if owned == nil {
			owned = &strings.Builder{}
			owned.WriteString(s.input[vstart:end])
		}
	}

	for {
		if s.curIndex == len(s.input) {
			return 0, &Error{Kind: UnterminatedString, Span: Span{start, start + 1}}
		}
		pos := s.curIndex
		r, w := utf8.DecodeRuneInString(s.input[pos:])
		switch {
		case byte(r) == delim && w == 1:
			if !multiline {
				val := s.input[vstart:pos]
				if owned != nil {
					val = owned.String()
				}
				s.curIndex = pos + 1
				s.setString(val, false, literal)
				return StringToken, nil
			}
			// count the quote run: the final three close the string and up
			// to two before them belong to the value
			n := 1
			for n < 5 && pos+n < len(s.input) && s.input[pos+n] == delim {
				n++
			}
			if n < 3 {
				s.curIndex = pos + n
				if owned != nil {
					owned.WriteString(s.input[pos : pos+n])
				}
				continue
			}
			extra := n - 3
			val := s.input[vstart : pos+extra]
			if owned != nil {
				owned.WriteString(s.input[pos : pos+extra])
				val = owned.String()
			}
			s.curIndex = pos + n
			s.setString(val, true, literal)
			return StringToken, nil
		case r == '\n':
			if !multiline {
				return 0, &Error{Kind: NewlineInString, Span: Span{pos, pos + 1}}
			}
			s.curIndex = pos + 1
			if owned != nil {
				owned.WriteByte('\n')
			}
		case r == '\r':
			if !strings.HasPrefix(s.input[pos+1:], "\n") {
				return 0, &Error{Kind: InvalidCharInString, Span: Span{pos, pos + 1}, Char: '\r'}
			}
			if !multiline {
				return 0, &Error{Kind: NewlineInString, Span: Span{pos, pos + 2}}
			}
			// \r\n is admitted in multi-line values but stored as \n
			toOwned(pos)
			s.curIndex = pos + 2
			owned.WriteByte('\n')
		case r == '\\' && !literal:
			toOwned(pos)
			ch, cont, err := s.scanEscape(start, multiline)
			if err != nil {
				return 0, err
			}
			if !cont {
				owned.WriteRune(ch)
			}
		case (r < 0x20 && r != '\t') || r == 0x7f || (r == utf8.RuneError && w == 1):
			return 0, &Error{Kind: InvalidCharInString, Span: Span{pos, pos + w}, Char: r}
		default:
			s.curIndex = pos + w
			if owned != nil {
				owned.WriteRune(r)
			}
		}
	}
}

// scanEscape assumes the cursor is at the backslash of a basic-string
// escape. It returns the decoded rune, or cont=true when the backslash
// started a line continuation and swallowed the line ending plus the
// whitespace after it.
func (s *Scanner) scanEscape(strStart int, multiline bool) (ch rune, cont bool, err error) {
	s.curIndex++
	if s.curIndex == len(s.input) {
		return 0, false, &Error{Kind: UnterminatedString, Span: Span{strStart, strStart + 1}}
	}
	r, w := utf8.DecodeRuneInString(s.input[s.curIndex:])
	switch r {
	case 'b':
		s.curIndex++
		return '\b', false, nil
	case 't':
		s.curIndex++
		return '\t', false, nil
	case 'n':
		s.curIndex++
		return '\n', false, nil
	case 'f':
		s.curIndex++
		return '\f', false, nil
	case 'r':
		s.curIndex++
		return '\r', false, nil
	case '"':
		s.curIndex++
		return '"', false, nil
	case '\\':
		s.curIndex++
		return '\\', false, nil
	case 'u':
		s.curIndex++
		return s.scanHexEscape(strStart, 4)
	case 'U':
		s.curIndex++
		return s.scanHexEscape(strStart, 8)
	case '\n', '\r':
		if !multiline {
			return 0, false, &Error{Kind: InvalidEscape, Span: Span{s.curIndex, s.curIndex + 1}, Char: '\n'}
		}
		if r == '\r' {
			if !strings.HasPrefix(s.input[s.curIndex+1:], "\n") {
				return 0, false, &Error{Kind: InvalidEscape, Span: Span{s.curIndex, s.curIndex + 1}, Char: '\r'}
			}
			s.curIndex++
		}
		s.curIndex++
		s.eatContinuationWhitespace()
		return 0, true, nil
	default:
		return 0, false, &Error{Kind: InvalidEscape, Span: Span{s.curIndex, s.curIndex + w}, Char: r}
	}
}

// eatContinuationWhitespace consumes whitespace and line endings after a
// line-continuation backslash, up to the next non-whitespace byte.
func (s *Scanner) eatContinuationWhitespace() {
	for s.curIndex < len(s.input) {
		switch s.input[s.curIndex] {
		case ' ', '\t', '\n':
			s.curIndex++
		case '\r':
			if !strings.HasPrefix(s.input[s.curIndex+1:], "\n") {
				return
			}
			s.curIndex += 2
		default:
			return
		}
	}
}

func (s *Scanner) scanHexEscape(strStart, digits int) (rune, bool, error) {
	spanStart := s.curIndex
	var code uint32
	for i := 0; i < digits; i++ {
		if s.curIndex == len(s.input) {
			return 0, false, &Error{Kind: UnterminatedString, Span: Span{strStart, strStart + 1}}
		}
		c, w := utf8.DecodeRuneInString(s.input[s.curIndex:])
		d := hexDigit(c)
		if d < 0 {
			return 0, false, &Error{Kind: InvalidHexEscape, Span: Span{s.curIndex, s.curIndex + w}, Char: c}
		}
		code = code<<4 | uint32(d)
		s.curIndex += w
	}
	if (code >= 0xD800 && code <= 0xDFFF) || code > 0x10FFFF {
		return 0, false, &Error{Kind: InvalidEscapeValue, Span: Span{spanStart, s.curIndex}, Code: code}
	}
	return rune(code), false, nil
}

func hexDigit(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0')
	case r >= 'a' && r <= 'f':
		return int(r-'a') + 10
	case r >= 'A' && r <= 'F':
		return int(r-'A') + 10
	}
	return -1
}

func (s *Scanner) eat(c byte) bool {
	if s.curIndex < len(s.input) && s.input[s.curIndex] == c {
		s.curIndex++
		return true
	}
	return false
}

func (s *Scanner) setString(val string, multiline, literal bool) {
	s.strValue = val
	s.strMultiline = multiline
	s.strLiteral = literal
}
