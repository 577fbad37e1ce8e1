package grammar

import (
	"fmt"
	"io"
	"sort"
	"unicode"
	"unicode/utf8"

	"golang.org/x/exp/ebnf"
)

// ParseEBNF reads an EBNF grammar in the golang.org/x/exp/ebnf notation and
// converts it with FromEBNF.
func ParseEBNF(filename string, r io.Reader, start string, opts ...Option) (*Grammar, error) {
	eg, err := ebnf.Parse(filename, r)
	if err != nil {
		return nil, fmt.Errorf("parse ebnf: %w", err)
	}
	return FromEBNF(eg, start, opts...)
}

// FromEBNF converts a verified EBNF grammar into a parsing expression grammar
// rooted at start.
//
// EBNF alternatives are unordered while PEG choices commit to the first
// success, so alternatives that are prefixes of later ones may need to be
// reordered by hand. Lexical productions (lower-case names) become captured
// tokens, so whitespace is never skipped inside them.
func FromEBNF(eg ebnf.Grammar, start string, opts ...Option) (*Grammar, error) {
	if err := ebnf.Verify(eg, start); err != nil {
		return nil, fmt.Errorf("verify ebnf: %w", err)
	}

	names := make([]string, 0, len(eg))
	for name := range eg {
		if name != start {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	names = append([]string{start}, names...)

	rules := make([]*Rule, 0, len(names))
	for _, name := range names {
		prod := eg[name]
		expr, err := convertEBNF(prod.Expr)
		if err != nil {
			return nil, fmt.Errorf("production %s: %w", name, err)
		}
		if isLexical(name) {
			expr = &Capture{Body: expr}
		}
		rules = append(rules, &Rule{Name: name, Expr: expr, Offset: -1})
	}

	return New(rules, append([]Option{WithStart(start)}, opts...)...)
}

func isLexical(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return !unicode.IsUpper(r)
}

func convertEBNF(expr ebnf.Expression) (Expression, error) {
	switch e := expr.(type) {
	case nil:
		return Sequence{}, nil
	case ebnf.Alternative:
		choice := make(Choice, len(e))
		for i, alt := range e {
			c, err := convertEBNF(alt)
			if err != nil {
				return nil, err
			}
			choice[i] = c
		}
		return choice, nil
	case ebnf.Sequence:
		seq := make(Sequence, len(e))
		for i, item := range e {
			c, err := convertEBNF(item)
			if err != nil {
				return nil, err
			}
			seq[i] = c
		}
		return seq, nil
	case *ebnf.Group:
		return convertEBNF(e.Body)
	case *ebnf.Option:
		body, err := convertEBNF(e.Body)
		if err != nil {
			return nil, err
		}
		return &Optional{Body: body}, nil
	case *ebnf.Repetition:
		body, err := convertEBNF(e.Body)
		if err != nil {
			return nil, err
		}
		return &ZeroOrMore{Body: body}, nil
	case *ebnf.Name:
		return Ref(e.String), nil
	case *ebnf.Token:
		return Lit(e.String), nil
	case *ebnf.Range:
		lo, _ := utf8.DecodeRuneInString(e.Begin.String)
		hi, _ := utf8.DecodeRuneInString(e.End.String)
		return Class(false, lo, hi), nil
	case *ebnf.Bad:
		return nil, fmt.Errorf("%s: %s", e.Pos(), e.Error)
	}
	return nil, fmt.Errorf("unsupported ebnf expression %T", expr)
}
