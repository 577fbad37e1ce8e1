// Package grammar defines parsing expression grammars: the expression model,
// the immutable Grammar, and the compiler that builds one from grammar text.
package grammar

import (
	"strings"

	"github.com/dhamidi/peg/source"
)

// Rule is a named expression. Ignored rules match like any other rule but
// never produce syntax tree nodes.
type Rule struct {
	Name   string
	Expr   Expression
	Ignore bool
	// Offset locates the definition in the grammar text, -1 if unknown.
	Offset int
}

func (r *Rule) String() string {
	prefix := ""
	if r.Ignore {
		prefix = "~"
	}
	return prefix + r.Name + " <- " + r.Expr.String()
}

// Grammar maps rule names to rules and designates a start rule and an
// optional whitespace rule. A Grammar is never modified after construction and
// may be shared between concurrent parses. Rules handed out by a Grammar must
// not be modified.
type Grammar struct {
	rules      map[string]*Rule
	names      []string
	start      string
	whitespace string
}

// Option configures New.
type Option func(*options)

type options struct {
	start      string
	whitespace string
}

// WithStart selects the start rule. The default is the first rule.
func WithStart(name string) Option {
	return func(o *options) {
		o.start = name
	}
}

// WithWhitespace designates the rule skipped before rule invocations and
// literals.
func WithWhitespace(name string) Option {
	return func(o *options) {
		o.whitespace = name
	}
}

// New builds a grammar from rules given in definition order. Without
// WithStart the first rule other than the whitespace rule is the start rule.
// It fails with a *CompileError if a name is defined twice or if any
// reference, the start rule or the whitespace rule does not resolve.
func New(rules []*Rule, opts ...Option) (*Grammar, error) {
	return build(rules, nil, opts...)
}

func build(rules []*Rule, file *source.File, opts ...Option) (*Grammar, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if len(rules) == 0 {
		return nil, syntaxError(position(file, 0), "grammar defines no rules")
	}

	g := &Grammar{
		rules:      make(map[string]*Rule, len(rules)),
		names:      make([]string, 0, len(rules)),
		start:      o.start,
		whitespace: o.whitespace,
	}
	for _, r := range rules {
		if _, dup := g.rules[r.Name]; dup {
			return nil, syntaxError(position(file, r.Offset), "rule %q already defined", r.Name)
		}
		g.rules[r.Name] = r
		g.names = append(g.names, r.Name)
	}
	if g.start == "" {
		for _, name := range g.names {
			if name != whitespaceDirective && name != g.whitespace {
				g.start = name
				break
			}
		}
		if g.start == "" {
			return nil, syntaxError(position(file, 0), "grammar defines no rules besides the whitespace rule")
		}
	}

	for _, r := range rules {
		var undefined *RuleRef
		Walk(r.Expr, func(e Expression) bool {
			if ref, ok := e.(*RuleRef); ok && undefined == nil && !g.Has(ref.Name) {
				undefined = ref
			}
			return undefined == nil
		})
		if undefined != nil {
			return nil, undefinedRuleError(position(file, undefined.Offset), undefined.Name, g.names)
		}
	}
	if !g.Has(g.start) {
		return nil, undefinedRuleError(source.Position{}, g.start, g.names)
	}
	if g.whitespace != "" && !g.Has(g.whitespace) {
		return nil, undefinedRuleError(source.Position{}, g.whitespace, g.names)
	}

	return g, nil
}

func position(file *source.File, offset int) source.Position {
	if file == nil || offset < 0 {
		return source.Position{}
	}
	return file.Position(offset)
}

// Rule returns the rule called name, or nil.
func (g *Grammar) Rule(name string) *Rule {
	return g.rules[name]
}

// Has reports whether a rule called name is defined.
func (g *Grammar) Has(name string) bool {
	_, ok := g.rules[name]
	return ok
}

// Names returns the rule names in definition order.
func (g *Grammar) Names() []string {
	return append([]string(nil), g.names...)
}

// Len returns the number of rules.
func (g *Grammar) Len() int {
	return len(g.names)
}

// Start returns the name of the start rule.
func (g *Grammar) Start() string {
	return g.start
}

// Whitespace returns the name of the whitespace rule, or "".
func (g *Grammar) Whitespace() string {
	return g.whitespace
}

// WithStart returns a copy of g using a different start rule. The copy shares
// the rules of g.
func (g *Grammar) WithStart(name string) (*Grammar, error) {
	if !g.Has(name) {
		return nil, undefinedRuleError(source.Position{}, name, g.names)
	}
	cp := *g
	cp.start = name
	return &cp, nil
}

// String renders the grammar in grammar text form, start rule first, such
// that Compile accepts it.
func (g *Grammar) String() string {
	var b strings.Builder
	b.WriteString(g.rules[g.start].String())
	b.WriteByte('\n')
	for _, name := range g.names {
		if name == g.start || name == whitespaceDirective {
			continue
		}
		b.WriteString(g.rules[name].String())
		b.WriteByte('\n')
	}
	switch g.whitespace {
	case "":
	case whitespaceDirective:
		b.WriteString("%whitespace <- " + g.rules[whitespaceDirective].Expr.String() + "\n")
	default:
		b.WriteString("%whitespace <- " + g.whitespace + "\n")
	}
	return b.String()
}

// Walk calls fn for e and, while fn returns true, for its sub-expressions in
// order. Rule references are not followed.
func Walk(e Expression, fn func(Expression) bool) {
	if e == nil || !fn(e) {
		return
	}
	switch e := e.(type) {
	case Sequence:
		for _, item := range e {
			Walk(item, fn)
		}
	case Choice:
		for _, alt := range e {
			Walk(alt, fn)
		}
	case *ZeroOrMore:
		Walk(e.Body, fn)
	case *OneOrMore:
		Walk(e.Body, fn)
	case *Optional:
		Walk(e.Body, fn)
	case *And:
		Walk(e.Body, fn)
	case *Not:
		Walk(e.Body, fn)
	case *Capture:
		Walk(e.Body, fn)
	}
}
