package grammar

import (
	"github.com/dhamidi/peg/source"
)

// whitespaceDirective names the rule synthesized for `%whitespace <- expr`
// when expr is not a plain rule reference.
const whitespaceDirective = "%whitespace"

// Compile parses grammar text into a Grammar. name is used in error
// positions. The first defined rule is the start rule.
//
// Left-recursive rules are accepted; the matcher fails re-entrant calls at
// the same position instead of looping, so such rules simply never match
// through their left-recursive alternative.
func Compile(name string, text []byte, opts ...Option) (*Grammar, error) {
	return CompileFile(source.NewFile(name, text), opts...)
}

// CompileString is Compile for string input.
func CompileString(name, text string, opts ...Option) (*Grammar, error) {
	return Compile(name, []byte(text), opts...)
}

// MustCompile is like CompileString but panics on error. It is intended for
// grammars embedded in programs.
func MustCompile(name, text string) *Grammar {
	g, err := CompileString(name, text)
	if err != nil {
		panic(err)
	}
	return g
}

// CompileFile compiles the grammar held in file.
func CompileFile(file *source.File, opts ...Option) (*Grammar, error) {
	toks, err := newScanner(file).scanAll()
	if err != nil {
		return nil, err
	}
	c := &compiler{file: file, toks: toks}
	if err := c.parseGrammar(); err != nil {
		return nil, err
	}
	if c.whitespace != "" {
		opts = append([]Option{WithWhitespace(c.whitespace)}, opts...)
	}
	return build(c.rules, file, opts...)
}

type compiler struct {
	file *source.File
	toks []token
	pos  int

	rules      []*Rule
	whitespace string
}

func (c *compiler) cur() token {
	return c.toks[c.pos]
}

func (c *compiler) at(i int) token {
	if i >= len(c.toks) {
		return c.toks[len(c.toks)-1]
	}
	return c.toks[i]
}

func (c *compiler) accept(kind tokenKind) bool {
	if c.cur().kind == kind {
		c.pos++
		return true
	}
	return false
}

func (c *compiler) expect(kind tokenKind) (token, error) {
	tok := c.cur()
	if tok.kind != kind {
		return tok, c.unexpected(kind.String())
	}
	c.pos++
	return tok, nil
}

func (c *compiler) unexpected(want string) error {
	tok := c.cur()
	return syntaxError(c.file.Position(tok.offset), "unexpected %s, expected %s", tok.describe(), want)
}

// definitionAt reports whether a rule definition or directive starts at
// token i. Sequences end where the next definition begins.
func (c *compiler) definitionAt(i int) bool {
	switch c.at(i).kind {
	case tokDirective:
		return true
	case tokTilde:
		return c.at(i+1).kind == tokIdent && c.at(i+2).kind == tokArrow
	case tokIdent:
		return c.at(i+1).kind == tokArrow
	}
	return false
}

func (c *compiler) parseGrammar() error {
	for c.cur().kind != tokEOF {
		if !c.definitionAt(c.pos) {
			return c.unexpected("rule definition")
		}
		var err error
		if c.cur().kind == tokDirective {
			err = c.parseDirective()
		} else {
			err = c.parseDefinition()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) parseDefinition() error {
	offset := c.cur().offset
	ignore := c.accept(tokTilde)
	name, err := c.expect(tokIdent)
	if err != nil {
		return err
	}
	if _, err := c.expect(tokArrow); err != nil {
		return err
	}
	expr, err := c.parseExpression()
	if err != nil {
		return err
	}
	c.accept(tokSemicolon)
	c.rules = append(c.rules, &Rule{
		Name:   name.text,
		Expr:   expr,
		Ignore: ignore,
		Offset: offset,
	})
	return nil
}

func (c *compiler) parseDirective() error {
	dir := c.cur()
	c.pos++
	if dir.text != "whitespace" {
		return syntaxError(c.file.Position(dir.offset), "unknown directive %%%s", dir.text)
	}
	if c.whitespace != "" {
		return syntaxError(c.file.Position(dir.offset), "whitespace rule already designated")
	}
	if _, err := c.expect(tokArrow); err != nil {
		return err
	}
	expr, err := c.parseExpression()
	if err != nil {
		return err
	}
	c.accept(tokSemicolon)

	if ref, ok := expr.(*RuleRef); ok {
		c.whitespace = ref.Name
		return nil
	}
	c.whitespace = whitespaceDirective
	c.rules = append(c.rules, &Rule{
		Name:   whitespaceDirective,
		Expr:   expr,
		Ignore: true,
		Offset: dir.offset,
	})
	return nil
}

func (c *compiler) parseExpression() (Expression, error) {
	first, err := c.parseSequence()
	if err != nil {
		return nil, err
	}
	if c.cur().kind != tokSlash {
		return first, nil
	}
	choice := Choice{first}
	for c.accept(tokSlash) {
		alt, err := c.parseSequence()
		if err != nil {
			return nil, err
		}
		choice = append(choice, alt)
	}
	return choice, nil
}

func (c *compiler) startsPrefix() bool {
	switch c.cur().kind {
	case tokAnd, tokNot, tokIdent, tokOpen, tokLess, tokLiteral, tokClass, tokDot:
		return !c.definitionAt(c.pos)
	}
	return false
}

func (c *compiler) parseSequence() (Expression, error) {
	seq := Sequence{}
	for c.startsPrefix() {
		item, err := c.parsePrefix()
		if err != nil {
			return nil, err
		}
		seq = append(seq, item)
	}
	if len(seq) == 1 {
		return seq[0], nil
	}
	return seq, nil
}

func (c *compiler) parsePrefix() (Expression, error) {
	switch {
	case c.accept(tokAnd):
		body, err := c.parsePrefix()
		if err != nil {
			return nil, err
		}
		return &And{Body: body}, nil
	case c.accept(tokNot):
		body, err := c.parsePrefix()
		if err != nil {
			return nil, err
		}
		return &Not{Body: body}, nil
	}
	return c.parseSuffix()
}

func (c *compiler) parseSuffix() (Expression, error) {
	expr, err := c.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case c.accept(tokStar):
			expr = &ZeroOrMore{Body: expr}
		case c.accept(tokPlus):
			expr = &OneOrMore{Body: expr}
		case c.accept(tokQuestion):
			expr = &Optional{Body: expr}
		default:
			return expr, nil
		}
	}
}

func (c *compiler) parsePrimary() (Expression, error) {
	tok := c.cur()
	switch tok.kind {
	case tokIdent:
		c.pos++
		return &RuleRef{Name: tok.text, Offset: tok.offset}, nil
	case tokOpen:
		c.pos++
		expr, err := c.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := c.expect(tokClose); err != nil {
			return nil, err
		}
		return expr, nil
	case tokLess:
		c.pos++
		expr, err := c.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := c.expect(tokGreater); err != nil {
			return nil, err
		}
		return &Capture{Body: expr}, nil
	case tokLiteral:
		c.pos++
		return tok.lit, nil
	case tokClass:
		c.pos++
		return tok.class, nil
	case tokDot:
		c.pos++
		return &AnyChar{}, nil
	}
	return nil, c.unexpected("expression")
}
