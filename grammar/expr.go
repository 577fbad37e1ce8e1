package grammar

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Expression is a node of a rule body. The concrete types are listed below;
// the set is closed.
type Expression interface {
	fmt.Stringer
	expr()
}

// Literal matches Text exactly, or ignoring case when CaseInsensitive is set.
type Literal struct {
	Text            string
	CaseInsensitive bool
}

// RuneRange is an inclusive range of code points.
type RuneRange struct {
	Lo, Hi rune
}

// Contains reports whether r lies within the range.
func (rr RuneRange) Contains(r rune) bool {
	return r >= rr.Lo && r <= rr.Hi
}

// CharClass matches one code point that falls in (or, when Negated, outside)
// any of its ranges.
type CharClass struct {
	Ranges  []RuneRange
	Negated bool
}

// Matches reports whether the class accepts r.
func (c *CharClass) Matches(r rune) bool {
	for _, rr := range c.Ranges {
		if rr.Contains(r) {
			return !c.Negated
		}
	}
	return c.Negated
}

// AnyChar matches any single code point.
type AnyChar struct{}

// Sequence matches its items one after another. An empty Sequence matches the
// empty string.
type Sequence []Expression

// Choice tries its alternatives in order and commits to the first success.
type Choice []Expression

// ZeroOrMore matches Body as many times as possible, including none.
type ZeroOrMore struct {
	Body Expression
}

// OneOrMore matches Body at least once.
type OneOrMore struct {
	Body Expression
}

// Optional matches Body or nothing.
type Optional struct {
	Body Expression
}

// And succeeds if Body matches, without consuming input.
type And struct {
	Body Expression
}

// Not succeeds if Body does not match, without consuming input.
type Not struct {
	Body Expression
}

// RuleRef invokes the rule called Name. Offset locates the reference in the
// grammar text, or is -1 when the grammar was built programmatically.
type RuleRef struct {
	Name   string
	Offset int
}

// Capture marks a token boundary. Whitespace is not skipped anywhere inside
// Body and the matched text becomes a single token.
type Capture struct {
	Body Expression
}

func (*Literal) expr()    {}
func (*CharClass) expr()  {}
func (*AnyChar) expr()    {}
func (Sequence) expr()    {}
func (Choice) expr()      {}
func (*ZeroOrMore) expr() {}
func (*OneOrMore) expr()  {}
func (*Optional) expr()   {}
func (*And) expr()        {}
func (*Not) expr()        {}
func (*RuleRef) expr()    {}
func (*Capture) expr()    {}

// Ref builds a rule reference without a grammar text location.
func Ref(name string) *RuleRef {
	return &RuleRef{Name: name, Offset: -1}
}

// Lit builds a case-sensitive literal.
func Lit(text string) *Literal {
	return &Literal{Text: text}
}

// Class builds a character class from pairs of inclusive bounds, for example
// Class(false, 'a', 'z', '0', '9').
func Class(negated bool, bounds ...rune) *CharClass {
	c := &CharClass{Negated: negated}
	for i := 0; i+1 < len(bounds); i += 2 {
		c.Ranges = append(c.Ranges, RuneRange{Lo: bounds[i], Hi: bounds[i+1]})
	}
	return c
}

func (l *Literal) String() string {
	s := quote(l.Text)
	if l.CaseInsensitive {
		s += "i"
	}
	return s
}

func (c *CharClass) String() string {
	var b strings.Builder
	b.WriteByte('[')
	if c.Negated {
		b.WriteByte('^')
	}
	for _, rr := range c.Ranges {
		b.WriteString(classChar(rr.Lo))
		if rr.Hi != rr.Lo {
			b.WriteByte('-')
			b.WriteString(classChar(rr.Hi))
		}
	}
	b.WriteByte(']')
	return b.String()
}

func (*AnyChar) String() string {
	return "."
}

func (s Sequence) String() string {
	parts := make([]string, len(s))
	for i, item := range s {
		parts[i] = group(item, precSequence)
	}
	return strings.Join(parts, " ")
}

func (c Choice) String() string {
	parts := make([]string, len(c))
	for i, alt := range c {
		parts[i] = group(alt, precChoice)
	}
	return strings.Join(parts, " / ")
}

func (e *ZeroOrMore) String() string { return group(e.Body, precSuffix) + "*" }
func (e *OneOrMore) String() string  { return group(e.Body, precSuffix) + "+" }
func (e *Optional) String() string   { return group(e.Body, precSuffix) + "?" }
func (e *And) String() string        { return "&" + group(e.Body, precPrefix) }
func (e *Not) String() string        { return "!" + group(e.Body, precPrefix) }
func (e *RuleRef) String() string    { return e.Name }
func (e *Capture) String() string    { return "< " + e.Body.String() + " >" }

const (
	precChoice = iota
	precSequence
	precPrefix
	precSuffix
)

func precedence(e Expression) int {
	switch e := e.(type) {
	case Choice:
		if len(e) == 1 {
			return precedence(e[0])
		}
		return precChoice
	case Sequence:
		if len(e) == 1 {
			return precedence(e[0])
		}
		return precSequence
	case *And, *Not:
		return precPrefix
	case *ZeroOrMore, *OneOrMore, *Optional:
		return precSuffix
	default:
		return precSuffix + 1
	}
}

// group renders e, parenthesised when it binds looser than the context.
func group(e Expression, context int) string {
	if seq, ok := e.(Sequence); ok && len(seq) == 0 {
		return "()"
	}
	prec := precedence(e)
	if prec < context || (prec == context && context >= precPrefix) {
		return "(" + e.String() + ")"
	}
	return e.String()
}

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\'':
			b.WriteString(`\'`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteString(escapeControl(r))
		}
	}
	b.WriteByte('\'')
	return b.String()
}

func classChar(r rune) string {
	switch r {
	case ']', '[', '\\', '-', '^':
		return `\` + string(r)
	}
	return escapeControl(r)
}

func escapeControl(r rune) string {
	switch r {
	case '\n':
		return `\n`
	case '\r':
		return `\r`
	case '\t':
		return `\t`
	}
	if r < 0x20 || r == 0x7f {
		return fmt.Sprintf(`\x%02x`, r)
	}
	if r == utf8.RuneError || !strconv.IsPrint(r) {
		if r > 0xffff {
			return fmt.Sprintf(`\U%08x`, r)
		}
		return fmt.Sprintf(`\u%04x`, r)
	}
	return string(r)
}
