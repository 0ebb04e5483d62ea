package tomlparser

import (
	"math"
	"strconv"
	"strings"
)

// Parse reads a complete TOML document into a value tree. The returned
// value is the root table; every value and key in the tree carries the
// span of its defining source text. The first lexical or structural
// problem aborts the parse; no partial tree is returned.
func Parse(input string) (*Value, error) {
	p := &parser{
		s:            NewScanner(input),
		headerArrays: map[*Array]bool{},
	}
	return p.parse()
}

type parser struct {
	s *Scanner

	// headerArrays tracks arrays created by [[...]] headers; only those
	// may be appended to by a later [[...]].
	headerArrays map[*Array]bool
}

type keyPart struct {
	name string
	span Span
}

func (p *parser) parse() (*Value, error) {
	root := NewValue(NewTable(), Span{Start: 0, End: len(p.s.Input())})
	section := root.inner.(*Table)
	for {
		tt, err := p.nextSignificant()
		if err != nil {
			return nil, err
		}
		switch tt {
		case EOFToken:
			return root, nil
		case LeftBracketToken:
			section, err = p.header(root.inner.(*Table))
			if err != nil {
				return nil, err
			}
		case KeylikeToken, StringToken:
			if err := p.keyValue(section); err != nil {
				return nil, err
			}
		default:
			return nil, p.wantedTok("a table key", tt)
		}
	}
}

// nextSignificant advances past whitespace, newlines and comments.
func (p *parser) nextSignificant() (TokenType, error) {
	for {
		tt, err := p.s.Next()
		if err != nil {
			return 0, err
		}
		switch tt {
		case WhitespaceToken, NewlineToken, CommentToken:
		default:
			return tt, nil
		}
	}
}

// nextInLine advances past whitespace only; newlines stay visible so the
// caller can reject them.
func (p *parser) nextInLine() (TokenType, error) {
	for {
		tt, err := p.s.Next()
		if err != nil {
			return 0, err
		}
		if tt != WhitespaceToken {
			return tt, nil
		}
	}
}

func (p *parser) wantedTok(expected string, found TokenType) error {
	return &Error{Kind: Wanted, Span: p.s.Span(), Expected: expected, Found: found.describe()}
}

// endOfStatement requires the rest of the line to hold nothing but
// whitespace and an optional comment.
func (p *parser) endOfStatement() error {
	tt, err := p.nextInLine()
	if err != nil {
		return err
	}
	switch tt {
	case NewlineToken, CommentToken, EOFToken:
		return nil
	default:
		return p.wantedTok("a newline", tt)
	}
}

// header parses a [table] or [[array-of-tables]] header. The scanner sits
// on the first '['; the table the header names becomes the current
// section.
func (p *parser) header(root *Table) (*Table, error) {
	array := false
	// a second '[' with nothing in between makes it an array of tables
	look := p.s.Clone()
	if tt, err := look.Next(); err == nil && tt == LeftBracketToken {
		*p.s = *look
		array = true
	}
	if _, err := p.nextInLine(); err != nil {
		return nil, err
	}
	parts, term, err := p.key(true)
	if err != nil {
		return nil, err
	}
	if term != RightBracketToken {
		return nil, p.wantedTok("a right bracket", term)
	}
	if array {
		// the closing brackets must sit together
		tt, err := p.s.Next()
		if err != nil {
			return nil, err
		}
		if tt != RightBracketToken {
			return nil, p.wantedTok("a right bracket", tt)
		}
	}
	section, err := p.defineTable(root, parts, array)
	if err != nil {
		return nil, err
	}
	if err := p.endOfStatement(); err != nil {
		return nil, err
	}
	return section, nil
}

// key parses a dotted key whose first part is the scanner's current token.
// It returns the parts plus the token that terminated the key, which the
// caller matches against ']' or '='.
func (p *parser) key(header bool) ([]keyPart, TokenType, error) {
	var parts []keyPart
	for {
		part, err := p.keyPart(header)
		if err != nil {
			return nil, 0, err
		}
		parts = append(parts, part)
		tt, err := p.nextInLine()
		if err != nil {
			return nil, 0, err
		}
		switch tt {
		case PeriodToken:
			if _, err := p.nextInLine(); err != nil {
				return nil, 0, err
			}
		case NewlineToken:
			if header {
				return nil, 0, &Error{Kind: NewlineInTableKey, Span: p.s.Span()}
			}
			return parts, tt, nil
		default:
			return parts, tt, nil
		}
	}
}

func (p *parser) keyPart(header bool) (keyPart, error) {
	switch p.s.TokenType() {
	case KeylikeToken:
		return keyPart{name: p.s.Token(), span: p.s.Span()}, nil
	case StringToken:
		if p.s.StringIsMultiline() {
			return keyPart{}, &Error{Kind: MultilineStringKey, Span: p.s.Span()}
		}
		return keyPart{name: p.s.StringValue(), span: p.s.Span()}, nil
	case NewlineToken:
		if header {
			return keyPart{}, &Error{Kind: NewlineInTableKey, Span: p.s.Span()}
		}
		return keyPart{}, p.wantedTok("a table key", NewlineToken)
	default:
		return keyPart{}, p.wantedTok("a table key", p.s.TokenType())
	}
}

// keyValue parses one `key = value` statement whose first key token is the
// scanner's current token, and inserts it into the current section.
func (p *parser) keyValue(section *Table) error {
	parts, term, err := p.key(false)
	if err != nil {
		return err
	}
	if term != EqualsToken {
		return p.wantedTok("an equals", term)
	}
	val, err := p.value()
	if err != nil {
		return err
	}
	if err := p.insertKeyValue(section, parts, val); err != nil {
		return err
	}
	return p.endOfStatement()
}

// insertKeyValue inserts a possibly dotted key into a table. Intermediate
// tables are created as dotted-key tables; a later header may pass through
// one to add a sub-table, but never names one directly.
func (p *parser) insertKeyValue(section *Table, parts []keyPart, val *Value) error {
	t := section
	for _, part := range parts[:len(parts)-1] {
		existing := t.Get(part.name)
		if existing == nil {
			sub := NewTable()
			sub.dotted = true
			t.Insert(Key{Name: part.name, Span: part.span}, NewValue(sub, part.span))
			t = sub
			continue
		}
		sub, ok := existing.inner.(*Table)
		if !ok {
			return &Error{Kind: DottedKeyInvalidType, Span: part.span}
		}
		if sub.inline || sub.defined {
			// frozen inline tables and tables defined by a header cannot
			// be reopened through a dotted key
			first, _ := t.Key(part.name)
			return &Error{Kind: DuplicateKey, Span: part.span, Key: part.name, First: first.Span}
		}
		t = sub
	}
	last := parts[len(parts)-1]
	if !t.Insert(Key{Name: last.name, Span: last.span}, val) {
		first, _ := t.Key(last.name)
		return &Error{Kind: DuplicateKey, Span: last.span, Key: last.name, First: first.Span}
	}
	return nil
}

// defineTable walks or creates the path named by a header and returns the
// table it designates. Prefix parts create implicit tables; the final part
// either defines a table or appends to an array of tables.
func (p *parser) defineTable(root *Table, parts []keyPart, array bool) (*Table, error) {
	t := root
	for i, part := range parts {
		last := i == len(parts)-1
		existing := t.Get(part.name)
		if existing == nil {
			if last && array {
				elem := NewTable()
				elem.defined = true
				arr := &Array{NewValue(elem, part.span)}
				t.Insert(Key{Name: part.name, Span: part.span}, NewValue(arr, part.span))
				p.headerArrays[arr] = true
				return elem, nil
			}
			sub := NewTable()
			if last {
				sub.defined = true
			} else {
				sub.implicit = true
			}
			t.Insert(Key{Name: part.name, Span: part.span}, NewValue(sub, part.span))
			t = sub
			continue
		}
		switch inner := existing.inner.(type) {
		case *Table:
			if inner.inline {
				return nil, &Error{Kind: DuplicateTable, Span: part.span, Key: part.name, First: existing.Span}
			}
			if !last {
				// traversal through a dotted-key table is fine; only
				// naming it directly is a redefinition
				t = inner
				continue
			}
			if array {
				return nil, &Error{Kind: RedefineAsArray, Span: part.span}
			}
			if inner.defined || inner.dotted {
				return nil, &Error{Kind: DuplicateTable, Span: part.span, Key: part.name, First: existing.Span}
			}
			inner.defined = true
			inner.implicit = false
			return inner, nil
		case *Array:
			if !p.headerArrays[inner] {
				return nil, &Error{Kind: RedefineAsArray, Span: part.span}
			}
			if last {
				if !array {
					return nil, &Error{Kind: DuplicateTable, Span: part.span, Key: part.name, First: existing.Span}
				}
				elem := NewTable()
				elem.defined = true
				*inner = append(*inner, NewValue(elem, part.span))
				return elem, nil
			}
			// a header path through an array of tables means its latest
			// element
			t = (*inner)[len(*inner)-1].inner.(*Table)
		default:
			if last && array {
				return nil, &Error{Kind: RedefineAsArray, Span: part.span}
			}
			return nil, &Error{Kind: DottedKeyInvalidType, Span: part.span}
		}
	}
	return t, nil
}

// value parses the value after '='.
func (p *parser) value() (*Value, error) {
	tt, err := p.nextInLine()
	if err != nil {
		return nil, err
	}
	return p.valueFrom(tt)
}

func (p *parser) valueFrom(tt TokenType) (*Value, error) {
	switch tt {
	case StringToken:
		return NewValue(String(p.s.StringValue()), p.s.Span()), nil
	case KeylikeToken:
		return p.keylikeValue()
	case PlusToken:
		start := p.s.Span().Start
		tt2, err := p.s.Next()
		if err != nil {
			return nil, err
		}
		if tt2 != KeylikeToken {
			return nil, p.wantedTok("a value", tt2)
		}
		return p.number(start, "+"+p.s.Token())
	case LeftBracketToken:
		return p.array()
	case LeftBraceToken:
		return p.inlineTable()
	case EOFToken:
		return nil, &Error{Kind: UnexpectedEof, Span: p.s.Span()}
	default:
		return nil, p.wantedTok("a value", tt)
	}
}

func (p *parser) keylikeValue() (*Value, error) {
	tok := p.s.Token()
	span := p.s.Span()
	switch tok {
	case "true":
		return NewValue(Boolean(true), span), nil
	case "false":
		return NewValue(Boolean(false), span), nil
	}
	return p.number(span.Start, tok)
}

// number parses an integer or float whose first token is text. A float
// with a fractional part arrives split over three tokens ("1", ".", "5"),
// and an exponent with a '+' sign likewise ("5e", "+", "22"); the pieces
// are glued back on here, which only happens when the tokens sit directly
// next to each other.
func (p *parser) number(start int, text string) (*Value, error) {
	full := text
	look := p.s.Clone()
	if tt, err := look.Next(); err == nil && tt == PeriodToken {
		*p.s = *look
		tt2, err := p.s.Next()
		if err != nil {
			return nil, err
		}
		if tt2 != KeylikeToken {
			return nil, &Error{Kind: InvalidNumber, Span: Span{start, p.s.Span().End}}
		}
		full = text + "." + p.s.Token()
	}
	if last := full[len(full)-1]; (last == 'e' || last == 'E') && !strings.HasPrefix(full, "0x") {
		look := p.s.Clone()
		if tt, err := look.Next(); err == nil && tt == PlusToken {
			*p.s = *look
			tt2, err := p.s.Next()
			if err != nil {
				return nil, err
			}
			if tt2 != KeylikeToken {
				return nil, &Error{Kind: InvalidNumber, Span: Span{start, p.s.Span().End}}
			}
			full += "+" + p.s.Token()
		}
	}
	span := Span{Start: start, End: start + len(full)}
	inner, ok := classifyNumber(full)
	if !ok {
		if c := full[0]; (c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') && !strings.ContainsAny(full, "0123456789") {
			return nil, &Error{Kind: UnquotedString, Span: span}
		}
		return nil, &Error{Kind: InvalidNumber, Span: span}
	}
	return NewValue(inner, span), nil
}

// classifyNumber validates and converts a complete numeric literal.
func classifyNumber(full string) (ValueInner, bool) {
	switch full {
	case "inf", "+inf":
		return Float(math.Inf(1)), true
	case "-inf":
		return Float(math.Inf(-1)), true
	case "nan", "+nan", "-nan":
		return Float(math.NaN()), true
	}

	// radix forms take no sign
	if len(full) > 2 && full[0] == '0' {
		var base int
		var digit func(byte) bool
		switch full[1] {
		case 'x':
			base, digit = 16, isHexDigitByte
		case 'o':
			base, digit = 8, func(c byte) bool { return c >= '0' && c <= '7' }
		case 'b':
			base, digit = 2, func(c byte) bool { return c == '0' || c == '1' }
		}
		if base != 0 {
			digits := full[2:]
			if !digitRun(digits, digit) {
				return nil, false
			}
			n, err := strconv.ParseInt(strings.ReplaceAll(digits, "_", ""), base, 64)
			if err != nil {
				return nil, false
			}
			return Integer(n), true
		}
	}

	body := full
	if body[0] == '+' || body[0] == '-' {
		body = body[1:]
	}
	if body == "" {
		return nil, false
	}

	if !strings.ContainsAny(body, ".eE") {
		if !decimalRun(body) {
			return nil, false
		}
		n, err := strconv.ParseInt(strings.ReplaceAll(full, "_", ""), 10, 64)
		if err != nil {
			return nil, false
		}
		return Integer(n), true
	}

	// float: mantissa, optional fraction, optional exponent
	mantissa := body
	exponent := ""
	if i := strings.IndexAny(body, "eE"); i >= 0 {
		mantissa, exponent = body[:i], body[i+1:]
		if exponent == "" {
			return nil, false
		}
		if exponent[0] == '+' || exponent[0] == '-' {
			exponent = exponent[1:]
		}
		// exponents may be zero-prefixed
		if !digitRun(exponent, isDecDigitByte) {
			return nil, false
		}
	}
	if i := strings.IndexByte(mantissa, '.'); i >= 0 {
		intPart, fracPart := mantissa[:i], mantissa[i+1:]
		if !decimalRun(intPart) || !digitRun(fracPart, isDecDigitByte) {
			return nil, false
		}
	} else if !decimalRun(mantissa) {
		return nil, false
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(full, "_", ""), 64)
	if err != nil {
		return nil, false
	}
	return Float(f), true
}

// digitRun checks a run of digits where a single underscore may only sit
// between two digits.
func digitRun(s string, digit func(byte) bool) bool {
	prevDigit := false
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '_':
			if !prevDigit {
				return false
			}
			prevDigit = false
		case digit(c):
			prevDigit = true
		default:
			return false
		}
	}
	return prevDigit
}

// decimalRun is digitRun plus the leading-zero rule: a decimal magnitude
// may only start with '0' when it is exactly "0".
func decimalRun(s string) bool {
	if !digitRun(s, isDecDigitByte) {
		return false
	}
	return len(s) == 1 || s[0] != '0'
}

func isDecDigitByte(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigitByte(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

// array parses an inline array; the scanner sits on '['. Newlines and
// comments flow freely between elements and a trailing comma is fine.
func (p *parser) array() (*Value, error) {
	start := p.s.Span().Start
	arr := &Array{}
	for {
		tt, err := p.nextSignificant()
		if err != nil {
			return nil, err
		}
		if tt == RightBracketToken {
			break
		}
		elem, err := p.valueFrom(tt)
		if err != nil {
			return nil, err
		}
		*arr = append(*arr, elem)
		tt, err = p.nextSignificant()
		if err != nil {
			return nil, err
		}
		if tt == RightBracketToken {
			break
		}
		if tt != CommaToken {
			return nil, p.wantedTok("a comma", tt)
		}
	}
	return NewValue(arr, Span{Start: start, End: p.s.Span().End}), nil
}

// inlineTable parses { ... }; the scanner sits on '{'. Inline tables stay
// on one line, take no trailing comma, and are frozen once closed.
func (p *parser) inlineTable() (*Value, error) {
	start := p.s.Span().Start
	table := NewTable()
	tt, err := p.nextInLine()
	if err != nil {
		return nil, err
	}
	for tt != RightBraceToken {
		switch tt {
		case KeylikeToken, StringToken:
		default:
			return nil, p.wantedTok("a table key", tt)
		}
		parts, term, err := p.key(false)
		if err != nil {
			return nil, err
		}
		if term != EqualsToken {
			return nil, p.wantedTok("an equals", term)
		}
		val, err := p.value()
		if err != nil {
			return nil, err
		}
		if err := p.insertKeyValue(table, parts, val); err != nil {
			return nil, err
		}
		tt, err = p.nextInLine()
		if err != nil {
			return nil, err
		}
		if tt == RightBraceToken {
			break
		}
		if tt != CommaToken {
			return nil, p.wantedTok("a comma", tt)
		}
		tt, err = p.nextInLine()
		if err != nil {
			return nil, err
		}
		if tt == RightBraceToken {
			return nil, p.wantedTok("a table key", tt)
		}
	}
	table.freeze()
	return NewValue(table, Span{Start: start, End: p.s.Span().End}), nil
}
