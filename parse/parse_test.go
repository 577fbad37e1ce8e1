package parse

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dhamidi/peg/grammar"
	"github.com/dhamidi/peg/source"
)

func compile(t *testing.T, text string) *grammar.Grammar {
	t.Helper()
	g, err := grammar.CompileString("test.peg", text)
	if err != nil {
		t.Fatalf("compile grammar: %v", err)
	}
	return g
}

func mustParse(t *testing.T, g *grammar.Grammar, input string, opts ...Option) *Tree {
	t.Helper()
	tree, err := Parse(g, []byte(input), opts...)
	if err != nil {
		t.Fatalf("parse %q: %v", input, err)
	}
	return tree
}

func diagnosticsOf(t *testing.T, err error) Diagnostics {
	t.Helper()
	if err == nil {
		t.Fatal("expected parse to fail")
	}
	var ds Diagnostics
	if !errors.As(err, &ds) {
		t.Fatalf("error is %T, want Diagnostics: %v", err, err)
	}
	if len(ds) == 0 {
		t.Fatal("empty diagnostics")
	}
	return ds
}

func childTexts(tree *Tree, n *Node) []string {
	var texts []string
	for _, child := range n.Children {
		texts = append(texts, tree.Text(child))
	}
	return texts
}

const sumGrammar = `
sum  <- term ('+' term)*
term <- [0-9]+
%whitespace <- ' '
`

func TestSumWithWhitespace(t *testing.T) {
	g := compile(t, sumGrammar)
	tree := mustParse(t, g, "12 + 3+4")

	if tree.Root.Rule != "sum" {
		t.Fatalf("root = %s, want sum", tree.Root.Rule)
	}
	if got := tree.Root.ChildrenOf("term"); len(got) != 3 {
		t.Fatalf("got %d term children, want 3", len(got))
	}
	if diff := cmp.Diff([]string{"12", "3", "4"}, childTexts(tree, tree.Root)); diff != "" {
		t.Errorf("term texts (-want +got):\n%s", diff)
	}
	if tree.Root.Start != 0 || tree.Root.End != 8 {
		t.Errorf("root span = %d-%d, want 0-8", tree.Root.Start, tree.Root.End)
	}

	want := "sum\n  term \"12\"\n  term \"3\"\n  term \"4\"\n"
	if got := tree.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestNotPredicate(t *testing.T) {
	g := compile(t, `foo <- !'bar' .`)

	_, err := Parse(g, []byte("bar"))
	ds := diagnosticsOf(t, err)
	if got, want := ds.Error(), "1:1: syntax error in foo: unexpected 'b', expected !'bar'"; got != want {
		t.Errorf("error = %q, want %q", got, want)
	}

	tree := mustParse(t, g, "baz")
	if tree.Root.Rule != "foo" {
		t.Errorf("root = %s, want foo", tree.Root.Rule)
	}
	if got := tree.Text(tree.Root); got != "b" {
		t.Errorf("matched %q, want %q", got, "b")
	}
}

func TestAndPredicate(t *testing.T) {
	g := compile(t, `
a <- &b c
b <- 'x'
c <- < . >
`)

	tree := mustParse(t, g, "x")
	if got := tree.Root.End; got != 1 {
		t.Errorf("root ends at %d, want 1", got)
	}
	var rules []string
	for _, child := range tree.Root.Children {
		rules = append(rules, child.Rule)
	}
	if diff := cmp.Diff([]string{"c"}, rules); diff != "" {
		t.Errorf("children (-want +got):\n%s", diff)
	}
	if got := tree.Text(tree.Root.Children[0]); got != "x" {
		t.Errorf("c matched %q, want %q", got, "x")
	}

	_, err := Parse(g, []byte("y"))
	ds := diagnosticsOf(t, err)
	if got, want := ds.Error(), "1:1: syntax error in a: unexpected 'y', expected &b"; got != want {
		t.Errorf("error = %q, want %q", got, want)
	}
	if diff := cmp.Diff([]string{"&b"}, ds[0].Expected); diff != "" {
		t.Errorf("expected (-want +got):\n%s", diff)
	}
}

func TestUndefinedRuleProducesNoGrammar(t *testing.T) {
	g, err := grammar.CompileString("test.peg", `x <- y`)
	if g != nil {
		t.Errorf("got grammar %v alongside error", g)
	}
	var ce *grammar.CompileError
	if !errors.As(err, &ce) || ce.Kind != grammar.KindUndefinedRule || ce.Name != "y" {
		t.Errorf("error = %v, want undefined rule y", err)
	}
}

func TestFirstMatchWins(t *testing.T) {
	g := compile(t, `
choice <- short / long
short  <- 'x'
long   <- 'xy'
`)
	tree := mustParse(t, g, "xy")
	if len(tree.Root.Children) != 1 || tree.Root.Children[0].Rule != "short" {
		t.Fatalf("children = %v, want [short]", tree.Root.Children)
	}
	if tree.Root.End != 1 {
		t.Errorf("root ends at %d, want 1", tree.Root.End)
	}
}

func TestCaseInsensitiveKeyword(t *testing.T) {
	g := compile(t, `
kw         <- 'entity'i !ident_char
ident_char <- [a-zA-Z0-9_]
`)
	for _, input := range []string{"ENTITY", "Entity", "entity", "eNtItY ", "entity;"} {
		t.Run(input, func(t *testing.T) {
			tree := mustParse(t, g, input)
			if tree.Root.End != 6 {
				t.Errorf("matched %d bytes, want 6", tree.Root.End)
			}
		})
	}
	for _, input := range []string{"entityx", "entity_1", "entit", "identity"} {
		t.Run(input, func(t *testing.T) {
			if _, err := Parse(g, []byte(input)); err == nil {
				t.Errorf("parse %q succeeded, want failure", input)
			}
		})
	}
}

func TestTermination(t *testing.T) {
	tests := []struct {
		name    string
		grammar string
		input   string
		wantEnd int
	}{
		{"empty loop body", `a <- ''*`, "xyz", 0},
		{"optional loop body", `a <- (b?)* 'x'
b <- 'y'`, "yyx", 3},
		{"nested empty loops", `a <- ((''* 'q'?)*)+ .`, "z", 1},
		{"empty rule in loop", `a <- e* 'x'
e <- ''`, "x", 1},
		{"direct left recursion", `a <- a 'x' / 'y'`, "yxx", 1},
		{"indirect left recursion", `a <- b 'x' / 'z'
b <- a 'y' / 'w'`, "wx", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := compile(t, tt.grammar)
			tree := mustParse(t, g, tt.input)
			if tree.Root.End != tt.wantEnd {
				t.Errorf("root ends at %d, want %d", tree.Root.End, tt.wantEnd)
			}
		})
	}
}

func TestLeftRecursionIsCounted(t *testing.T) {
	g := compile(t, `a <- a 'x' / 'y'`)
	var stats Stats
	mustParse(t, g, "yx", WithStats(&stats))
	if stats.LeftRecursion != 1 {
		t.Errorf("LeftRecursion = %d, want 1", stats.LeftRecursion)
	}
}

func TestMemoReuse(t *testing.T) {
	g := compile(t, `
a <- b 'x' / b 'y'
b <- [a-z]+
`)
	var stats Stats
	tree := mustParse(t, g, "abcy", WithStats(&stats))

	b := stats.Rules["b"]
	if b == nil || b.Calls != 2 || b.MemoHits != 1 {
		t.Fatalf("b stats = %+v, want 2 calls and 1 memo hit", b)
	}
	if b.Matches != 2 {
		t.Errorf("b matches = %d, want 2", b.Matches)
	}
	if got := tree.Text(tree.Root.FirstChild("b")); got != "abc" {
		t.Errorf("b text = %q, want %q", got, "abc")
	}
	if stats.MemoMisses != 2 {
		t.Errorf("MemoMisses = %d, want 2", stats.MemoMisses)
	}
}

func TestZeroWidthNodesAreNotShared(t *testing.T) {
	g := compile(t, `
a <- b b 'x'
b <- ''
`)
	tree := mustParse(t, g, "x")
	if len(tree.Root.Children) != 2 {
		t.Fatalf("got %d children, want 2", len(tree.Root.Children))
	}
	if tree.Root.Children[0] == tree.Root.Children[1] {
		t.Error("zero-width node shared between two parents slots")
	}
}

func TestLinearTime(t *testing.T) {
	g := compile(t, `
doc  <- (elem? ';'?)*
elem <- pad (word / num) pad
pad  <- ' '*
word <- [a-z]+
num  <- [0-9]+
`)
	calls := func(tokens int) int {
		var b strings.Builder
		for i := 0; i < tokens; i++ {
			if i%2 == 0 {
				b.WriteString("ab; ")
			} else {
				b.WriteString("12;")
			}
		}
		var stats Stats
		tree := mustParse(t, g, b.String(), WithStats(&stats), RequireEOF())
		if n := len(tree.Root.Children); n != tokens {
			t.Fatalf("got %d elements, want %d", n, tokens)
		}
		return stats.Calls
	}

	small, large := calls(5000), calls(10000)
	if large > 2*small {
		t.Errorf("10000 tokens took %d calls, 5000 took %d: growth is not linear", large, small)
	}
	if large > 10*10000 {
		t.Errorf("10000 tokens took %d rule calls", large)
	}
}

func TestMemoPreventsExponentialBacktracking(t *testing.T) {
	g := compile(t, `
expr   <- term '+' expr / term '-' expr / term
term   <- factor '*' term / factor '/' term / factor
factor <- '(' expr ')' / [0-9]
`)
	depth := 20
	input := strings.Repeat("(", depth) + "1" + strings.Repeat(")", depth)

	var stats Stats
	tree := mustParse(t, g, input, WithStats(&stats), RequireEOF())
	if tree.Root.End != len(input) {
		t.Fatalf("root ends at %d, want %d", tree.Root.End, len(input))
	}
	if limit := 20 * len(input); stats.Calls > limit {
		t.Errorf("got %d rule calls, want at most %d", stats.Calls, limit)
	}
}

func TestMaxDepth(t *testing.T) {
	g := compile(t, `a <- '(' a ')' / 'x'`)

	_, err := Parse(g, []byte("((((x))))"), WithMaxDepth(3))
	ds := diagnosticsOf(t, err)
	if len(ds) != 1 || ds[0].Kind != KindResource {
		t.Fatalf("diagnostics = %v, want one resource diagnostic", ds)
	}
	if ds[0].Pos.Offset != 3 {
		t.Errorf("offset = %d, want 3", ds[0].Pos.Offset)
	}

	mustParse(t, g, "((((x))))", WithMaxDepth(5))
}

func TestDefaultMaxDepth(t *testing.T) {
	g := compile(t, `e <- '(' e ')' / 'x'`)
	nested := func(depth int) []byte {
		return []byte(strings.Repeat("(", depth) + "x" + strings.Repeat(")", depth))
	}

	tests := []struct {
		name string
		opts []Option
	}{
		{"no options", nil},
		{"zero selects default", []Option{WithMaxDepth(0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(g, nested(1_000_000), tt.opts...)
			ds := diagnosticsOf(t, err)
			if len(ds) != 1 || ds[0].Kind != KindResource {
				t.Fatalf("diagnostics = %v, want one resource diagnostic", ds)
			}
			if ds[0].Pos.Offset != DefaultMaxDepth {
				t.Errorf("offset = %d, want %d", ds[0].Pos.Offset, DefaultMaxDepth)
			}
		})
	}

	mustParse(t, g, string(nested(DefaultMaxDepth-1)))
	mustParse(t, g, string(nested(2*DefaultMaxDepth)), WithMaxDepth(-1))
}

func TestRequireEOF(t *testing.T) {
	g := compile(t, sumGrammar)

	tree := mustParse(t, g, "1+2 x")
	if tree.Root.End != 3 {
		t.Errorf("partial match ends at %d, want 3", tree.Root.End)
	}

	mustParse(t, g, "1+2  ", RequireEOF())

	_, err := Parse(g, []byte("12 + 3 x"), RequireEOF())
	ds := diagnosticsOf(t, err)
	want := "1:8: syntax error in sum: unexpected 'x', expected '+' or end of input"
	if got := ds.Error(); got != want {
		t.Errorf("error = %q, want %q", got, want)
	}
}

func TestDiagnostics(t *testing.T) {
	g := compile(t, `
stmt   <- ident ('=' value / '(' ')')
value  <- number / string
ident  <- < [a-z]+ >
number <- < [0-9]+ >
string <- < '"' [^"]* '"' >
%whitespace <- [ ]+
`)
	tests := []struct {
		name  string
		input string
		want  Diagnostics
	}{
		{
			name:  "choice in one rule",
			input: "x ?",
			want: Diagnostics{{
				Kind:     KindSyntax,
				Pos:      source.Position{Offset: 2, Line: 1, Column: 3},
				Rule:     "stmt",
				Expected: []string{"'='", "'('"},
				Found:    "'?'",
				Message:  "syntax error in stmt: unexpected '?', expected '=' or '('",
			}},
		},
		{
			name:  "grouped by rule",
			input: "x = ?",
			want: Diagnostics{
				{
					Kind:     KindSyntax,
					Pos:      source.Position{Offset: 4, Line: 1, Column: 5},
					Rule:     "number",
					Expected: []string{"[0-9]"},
					Found:    "'?'",
					Message:  "syntax error in number: unexpected '?', expected [0-9]",
				},
				{
					Kind:     KindSyntax,
					Pos:      source.Position{Offset: 4, Line: 1, Column: 5},
					Rule:     "string",
					Expected: []string{`'"'`},
					Found:    "'?'",
					Message:  `syntax error in string: unexpected '?', expected '"'`,
				},
			},
		},
		{
			name:  "end of input",
			input: "x (",
			want: Diagnostics{{
				Kind:     KindSyntax,
				Pos:      source.Position{Offset: 3, Line: 1, Column: 4},
				Rule:     "stmt",
				Expected: []string{"')'"},
				Found:    "end of input",
				Message:  "syntax error in stmt: unexpected end of input, expected ')'",
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(g, []byte(tt.input))
			got := diagnosticsOf(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("diagnostics (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDiagnosticsMultiline(t *testing.T) {
	g := compile(t, `
list <- item+
item <- < [a-z]+ > ';'
%whitespace <- [ \n]+
`)
	_, err := Parse(g, []byte("ab;\ncd;\nef\n"), WithFilename("in.txt"), RequireEOF())
	ds := diagnosticsOf(t, err)
	want := "in.txt:4:1: syntax error in item: unexpected end of input, expected ';'"
	if got := ds.Error(); got != want {
		t.Errorf("error = %q, want %q", got, want)
	}
}

func TestCaptures(t *testing.T) {
	t.Run("rule absorbs capture", func(t *testing.T) {
		g := compile(t, `
decl <- name ':' type
name <- < [a-z]+ >
type <- < [a-z]+ ('[' [0-9]* ']')? >
%whitespace <- [ \t]+
`)
		tree := mustParse(t, g, "foo : int[3]")
		if diff := cmp.Diff([]string{"foo", "int[3]"}, childTexts(tree, tree.Root)); diff != "" {
			t.Errorf("texts (-want +got):\n%s", diff)
		}
		for _, child := range tree.Root.Children {
			if !child.Token || len(child.Children) != 0 {
				t.Errorf("%s: Token = %v with %d children, want token leaf", child.Name(), child.Token, len(child.Children))
			}
		}
	})

	t.Run("named rules inside capture are dropped", func(t *testing.T) {
		g := compile(t, `
num   <- < digit+ ('.' digit+)? >
digit <- [0-9]
`)
		tree := mustParse(t, g, "3.14")
		if !tree.Root.Token || tree.Root.Children != nil {
			t.Errorf("root = %+v, want token leaf", tree.Root)
		}
		if got := tree.Text(tree.Root); got != "3.14" {
			t.Errorf("text = %q", got)
		}
	})

	t.Run("anonymous tokens", func(t *testing.T) {
		g := compile(t, `pair <- < [a-z]+ > '=' < [0-9]+ >`)
		tree := mustParse(t, g, "ab=12")
		if len(tree.Root.Children) != 2 {
			t.Fatalf("got %d children, want 2", len(tree.Root.Children))
		}
		for _, child := range tree.Root.Children {
			if child.Rule != "" || child.Name() != "anonymous" || !child.Token {
				t.Errorf("child = %+v, want anonymous token", child)
			}
		}
		if diff := cmp.Diff([]string{"ab", "12"}, childTexts(tree, tree.Root)); diff != "" {
			t.Errorf("texts (-want +got):\n%s", diff)
		}
	})

	t.Run("no whitespace skipping inside capture", func(t *testing.T) {
		captured := compile(t, `pair <- < 'a' 'b' >
%whitespace <- ' '+`)
		if _, err := Parse(captured, []byte("a b")); err == nil {
			t.Error("captured literals skipped whitespace")
		}
		mustParse(t, captured, "ab")

		plain := compile(t, `pair <- 'a' 'b'
%whitespace <- ' '+`)
		mustParse(t, plain, "a b")
	})
}

func TestIgnoredRules(t *testing.T) {
	g := compile(t, `
list  <- item (sep item)*
~sep  <- ',' note?
note  <- '!'
item  <- [a-z]+
`)
	tree := mustParse(t, g, "a,!b,c")
	var names []string
	for _, child := range tree.Root.Children {
		names = append(names, child.Rule)
	}
	if diff := cmp.Diff([]string{"item", "item", "item"}, names); diff != "" {
		t.Errorf("children (-want +got):\n%s", diff)
	}
}

func TestSpansStartAfterTrivia(t *testing.T) {
	g := compile(t, `
s <- x
x <- 'x'
%whitespace <- ' '
`)
	tree := mustParse(t, g, "  x")
	if tree.Root.Start != 2 {
		t.Errorf("s starts at %d, want 2", tree.Root.Start)
	}
	if x := tree.Root.FirstChild("x"); x == nil || x.Start != 2 || x.End != 3 {
		t.Errorf("x = %+v, want span 2-3", x)
	}
}

func TestWithStart(t *testing.T) {
	g := compile(t, sumGrammar)

	tree := mustParse(t, g, "42", WithStart("term"))
	if tree.Root.Rule != "term" {
		t.Errorf("root = %s, want term", tree.Root.Rule)
	}

	_, err := Parse(g, []byte("42"), WithStart("trem"))
	if !errors.Is(err, grammar.ErrUndefinedRule) {
		t.Errorf("error = %v, want undefined rule", err)
	}
}

func TestParseFile(t *testing.T) {
	g := compile(t, sumGrammar)
	_, err := ParseFile(g, source.NewFile("sum.txt", []byte("1+")), RequireEOF())
	ds := diagnosticsOf(t, err)
	if !strings.HasPrefix(ds.Error(), "sum.txt:1:3: ") {
		t.Errorf("error = %q, want sum.txt:1:3 prefix", ds.Error())
	}
}

func TestDeterministic(t *testing.T) {
	g := compile(t, `
stmt   <- ident ('=' value / '(' ')')
value  <- number / string
ident  <- < [a-z]+ >
number <- < [0-9]+ >
string <- < '"' [^"]* '"' >
%whitespace <- [ ]+
`)
	for _, input := range []string{`x = "a"`, "x = ?", "x (", "x = 12"} {
		t1, err1 := Parse(g, []byte(input))
		t2, err2 := Parse(g, []byte(input))
		if err1 != nil || err2 != nil {
			if err1 == nil || err2 == nil || err1.Error() != err2.Error() {
				t.Errorf("%q: errors differ: %v / %v", input, err1, err2)
			}
			continue
		}
		if diff := cmp.Diff(t1.Root, t2.Root); diff != "" {
			t.Errorf("%q: trees differ:\n%s", input, diff)
		}
	}
}

func TestConcurrentParses(t *testing.T) {
	g := compile(t, sumGrammar)
	want := mustParse(t, g, "1 + 22 + 333").String()

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tree, err := Parse(g, []byte("1 + 22 + 333"))
			if err != nil {
				results[i] = err.Error()
				return
			}
			results[i] = tree.String()
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		if got != want {
			t.Errorf("parse %d = %q, want %q", i, got, want)
		}
	}
}
