package parse

import (
	"unicode"

	"github.com/dhamidi/peg/grammar"
)

// match evaluates e at pos and returns the end of the match. Nodes produced
// by e are appended to s.nodes; a failed match leaves s.nodes untouched.
func (s *state) match(e grammar.Expression, pos int) (int, bool) {
	if s.aborted {
		return pos, false
	}
	switch e := e.(type) {
	case *grammar.Literal:
		at := s.skip(pos)
		if end, ok := s.matchLiteral(e, at); ok {
			return end, true
		}
		s.fail(at, e.String())
		return pos, false

	case *grammar.CharClass:
		r, size := s.decode(pos)
		if size == 0 || !e.Matches(r) {
			s.fail(pos, e.String())
			return pos, false
		}
		return pos + size, true

	case *grammar.AnyChar:
		_, size := s.decode(pos)
		if size == 0 {
			s.fail(pos, "any character")
			return pos, false
		}
		return pos + size, true

	case grammar.Sequence:
		mark := len(s.nodes)
		cur := pos
		for _, item := range e {
			end, ok := s.match(item, cur)
			if !ok {
				s.nodes = s.nodes[:mark]
				return pos, false
			}
			cur = end
		}
		return cur, true

	case grammar.Choice:
		for _, alt := range e {
			if end, ok := s.match(alt, pos); ok {
				return end, true
			}
		}
		return pos, false

	case *grammar.ZeroOrMore:
		return s.repeat(e.Body, pos), true

	case *grammar.OneOrMore:
		end, ok := s.match(e.Body, pos)
		if !ok {
			return pos, false
		}
		if end == pos {
			return pos, true
		}
		return s.repeat(e.Body, end), true

	case *grammar.Optional:
		if end, ok := s.match(e.Body, pos); ok {
			return end, true
		}
		return pos, true

	case *grammar.And:
		if !s.lookahead(e.Body, pos) {
			s.fail(pos, e.String())
			return pos, false
		}
		return pos, true

	case *grammar.Not:
		if s.lookahead(e.Body, pos) {
			s.fail(pos, e.String())
			return pos, false
		}
		return pos, true

	case *grammar.RuleRef:
		return s.call(e.Name, pos)

	case *grammar.Capture:
		mark := len(s.nodes)
		s.noSkip++
		end, ok := s.match(e.Body, pos)
		s.noSkip--
		s.nodes = s.nodes[:mark]
		if !ok {
			return pos, false
		}
		s.nodes = append(s.nodes, &Node{Start: pos, End: end, Token: true})
		return end, true
	}
	return pos, false
}

// repeat matches body until it fails or stops consuming input. The nodes of
// an iteration that consumed nothing are dropped.
func (s *state) repeat(body grammar.Expression, pos int) int {
	for {
		mark := len(s.nodes)
		end, ok := s.match(body, pos)
		if !ok {
			return pos
		}
		if end == pos {
			s.nodes = s.nodes[:mark]
			return pos
		}
		pos = end
	}
}

// lookahead reports whether body matches at pos without consuming input,
// producing nodes or recording failures.
func (s *state) lookahead(body grammar.Expression, pos int) bool {
	mark := len(s.nodes)
	s.quiet++
	_, ok := s.match(body, pos)
	s.quiet--
	s.nodes = s.nodes[:mark]
	return ok
}

func (s *state) matchLiteral(lit *grammar.Literal, pos int) (int, bool) {
	if !lit.CaseInsensitive {
		end := pos + len(lit.Text)
		if end <= len(s.src) && string(s.src[pos:end]) == lit.Text {
			return end, true
		}
		return pos, false
	}
	cur := pos
	for _, want := range lit.Text {
		got, size := s.decode(cur)
		if size == 0 || !equalFold(want, got) {
			return pos, false
		}
		cur += size
	}
	return cur, true
}

// equalFold reports whether a and b are equal under simple Unicode case
// folding.
func equalFold(a, b rune) bool {
	if a == b {
		return true
	}
	for f := unicode.SimpleFold(a); f != a; f = unicode.SimpleFold(f) {
		if f == b {
			return true
		}
	}
	return false
}
