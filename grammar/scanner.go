package grammar

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/dhamidi/peg/source"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokDirective
	tokArrow
	tokSlash
	tokAnd
	tokNot
	tokQuestion
	tokStar
	tokPlus
	tokOpen
	tokClose
	tokLess
	tokGreater
	tokDot
	tokLiteral
	tokClass
	tokTilde
	tokSemicolon
)

var tokenNames = map[tokenKind]string{
	tokEOF:       "end of grammar",
	tokIdent:     "identifier",
	tokDirective: "directive",
	tokArrow:     "'<-'",
	tokSlash:     "'/'",
	tokAnd:       "'&'",
	tokNot:       "'!'",
	tokQuestion:  "'?'",
	tokStar:      "'*'",
	tokPlus:      "'+'",
	tokOpen:      "'('",
	tokClose:     "')'",
	tokLess:      "'<'",
	tokGreater:   "'>'",
	tokDot:       "'.'",
	tokLiteral:   "literal",
	tokClass:     "character class",
	tokTilde:     "'~'",
	tokSemicolon: "';'",
}

func (k tokenKind) String() string {
	if name, ok := tokenNames[k]; ok {
		return name
	}
	return "unknown token"
}

type token struct {
	kind   tokenKind
	offset int
	text   string
	lit    *Literal
	class  *CharClass
}

func (t token) describe() string {
	switch t.kind {
	case tokIdent:
		return fmt.Sprintf("identifier %q", t.text)
	case tokDirective:
		return fmt.Sprintf("directive %%%s", t.text)
	case tokLiteral, tokClass:
		return fmt.Sprintf("%s %s", t.kind, t.text)
	}
	return t.kind.String()
}

// scanner splits grammar text into tokens. Whitespace and # comments are
// skipped.
type scanner struct {
	file *source.File
	src  []byte
	pos  int
}

func newScanner(file *source.File) *scanner {
	return &scanner{file: file, src: file.Content()}
}

func (s *scanner) scanAll() ([]token, error) {
	var toks []token
	for {
		tok, err := s.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.kind == tokEOF {
			return toks, nil
		}
	}
}

func (s *scanner) errorf(offset int, format string, args ...any) error {
	return syntaxError(s.file.Position(offset), format, args...)
}

func (s *scanner) peek() rune {
	if s.pos >= len(s.src) {
		return -1
	}
	r, _ := utf8.DecodeRune(s.src[s.pos:])
	return r
}

func (s *scanner) read() rune {
	if s.pos >= len(s.src) {
		return -1
	}
	r, w := utf8.DecodeRune(s.src[s.pos:])
	s.pos += w
	return r
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case ' ', '\t', '\r', '\n':
			s.pos++
		case '#':
			for s.pos < len(s.src) && s.src[s.pos] != '\n' {
				s.pos++
			}
		default:
			return
		}
	}
}

func (s *scanner) next() (token, error) {
	s.skipSpace()
	start := s.pos
	tok := token{offset: start}
	r := s.read()

	switch {
	case r == -1:
		tok.kind = tokEOF
	case isIdentStart(r):
		s.pos = start
		tok.kind = tokIdent
		tok.text = s.ident()
	case r == '%':
		if !isIdentStart(s.peek()) {
			return tok, s.errorf(start, "expected directive name after '%%'")
		}
		tok.kind = tokDirective
		tok.text = s.ident()
	case r == '<':
		if s.peek() == '-' {
			s.pos++
			tok.kind = tokArrow
		} else {
			tok.kind = tokLess
		}
	case r == '←':
		tok.kind = tokArrow
	case r == '\'' || r == '"':
		lit, err := s.literal(start, r)
		if err != nil {
			return tok, err
		}
		tok.kind = tokLiteral
		tok.lit = lit
	case r == '[':
		class, err := s.class(start)
		if err != nil {
			return tok, err
		}
		tok.kind = tokClass
		tok.class = class
	default:
		kind, ok := punctuation[r]
		if !ok {
			return tok, s.errorf(start, "unexpected character %q", r)
		}
		tok.kind = kind
	}

	if tok.text == "" {
		tok.text = string(s.src[start:s.pos])
	}
	return tok, nil
}

var punctuation = map[rune]tokenKind{
	'/': tokSlash,
	'&': tokAnd,
	'!': tokNot,
	'?': tokQuestion,
	'*': tokStar,
	'+': tokPlus,
	'(': tokOpen,
	')': tokClose,
	'>': tokGreater,
	'.': tokDot,
	'~': tokTilde,
	';': tokSemicolon,
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

func (s *scanner) ident() string {
	start := s.pos
	for isIdentPart(s.peek()) {
		s.pos++
	}
	return string(s.src[start:s.pos])
}

func (s *scanner) literal(start int, quote rune) (*Literal, error) {
	var text []rune
	for {
		r := s.peek()
		switch r {
		case -1:
			return nil, s.errorf(start, "unterminated literal")
		case quote:
			s.pos++
			lit := &Literal{Text: string(text)}
			// A trailing i marks the literal case-insensitive unless it starts
			// an identifier.
			if s.peek() == 'i' && (s.pos+1 >= len(s.src) || !isIdentPart(rune(s.src[s.pos+1]))) {
				s.pos++
				lit.CaseInsensitive = true
			}
			return lit, nil
		}
		c, err := s.char()
		if err != nil {
			return nil, err
		}
		text = append(text, c)
	}
}

func (s *scanner) class(start int) (*CharClass, error) {
	c := &CharClass{}
	if s.peek() == '^' {
		s.pos++
		c.Negated = true
	}
	for {
		switch s.peek() {
		case -1:
			return nil, s.errorf(start, "unterminated character class")
		case ']':
			s.pos++
			return c, nil
		}
		lo, err := s.char()
		if err != nil {
			return nil, err
		}
		hi := lo
		if s.peek() == '-' && s.pos+1 < len(s.src) && s.src[s.pos+1] != ']' {
			s.pos++
			rangeStart := s.pos
			if hi, err = s.char(); err != nil {
				return nil, err
			}
			if hi < lo {
				return nil, s.errorf(rangeStart, "invalid character range %q-%q", lo, hi)
			}
		}
		c.Ranges = append(c.Ranges, RuneRange{Lo: lo, Hi: hi})
	}
}

// char reads one possibly escaped character of a literal or class.
func (s *scanner) char() (rune, error) {
	start := s.pos
	r := s.read()
	if r == utf8.RuneError {
		return 0, s.errorf(start, "invalid UTF-8 in grammar")
	}
	if r != '\\' {
		return r, nil
	}
	e := s.read()
	switch e {
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 't':
		return '\t', nil
	case 'f':
		return '\f', nil
	case 'v':
		return '\v', nil
	case '\\', '\'', '"', '[', ']', '-', '^':
		return e, nil
	case 'x':
		return s.hex(start, 2)
	case 'u':
		return s.hex(start, 4)
	case 'U':
		return s.hex(start, 8)
	case -1:
		return 0, s.errorf(start, "unterminated escape sequence")
	}
	if e >= '0' && e <= '7' {
		digits := string(e)
		for len(digits) < 3 && s.peek() >= '0' && s.peek() <= '7' {
			digits += string(s.read())
		}
		v, err := strconv.ParseUint(digits, 8, 32)
		if err != nil || v > 0xff {
			return 0, s.errorf(start, "invalid octal escape \\%s", digits)
		}
		return rune(v), nil
	}
	return 0, s.errorf(start, "unknown escape sequence \\%c", e)
}

func (s *scanner) hex(start, n int) (rune, error) {
	if s.pos+n > len(s.src) {
		return 0, s.errorf(start, "short hexadecimal escape")
	}
	digits := string(s.src[s.pos : s.pos+n])
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil || !utf8.ValidRune(rune(v)) {
		return 0, s.errorf(start, "invalid hexadecimal escape %q", digits)
	}
	s.pos += n
	return rune(v), nil
}
