package parse

import (
	"github.com/dhamidi/peg/grammar"
	"github.com/dhamidi/peg/source"
)

// endOfInput is the expectation recorded when RequireEOF finds trailing input.
const endOfInput = "end of input"

// Parse matches input against g. On failure the error is Diagnostics, or a
// *grammar.CompileError when WithStart names an undefined rule.
//
// A Grammar may be used by any number of concurrent Parse calls.
func Parse(g *grammar.Grammar, input []byte, opts ...Option) (*Tree, error) {
	cfg := newConfig(opts)
	return run(g, source.NewFile(cfg.filename, input), cfg)
}

// ParseFile is like Parse but reads from an existing source file. WithFilename
// renames the file in positions.
func ParseFile(g *grammar.Grammar, file *source.File, opts ...Option) (*Tree, error) {
	cfg := newConfig(opts)
	if cfg.filename != "" && cfg.filename != file.Name() {
		file = source.NewFile(cfg.filename, file.Content())
	}
	return run(g, file, cfg)
}

func newConfig(opts []Option) *config {
	cfg := &config{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func run(g *grammar.Grammar, file *source.File, cfg *config) (*Tree, error) {
	if cfg.start != "" && cfg.start != g.Start() {
		var err error
		if g, err = g.WithStart(cfg.start); err != nil {
			return nil, err
		}
	}
	start := g.Start()

	s := newState(g, file, cfg)
	end, ok := s.call(start, 0)
	if ok && cfg.requireEOF {
		if rest := s.skip(end); rest < len(s.src) {
			s.rules = append(s.rules, start)
			s.fail(rest, endOfInput)
			s.rules = s.rules[:0]
			ok = false
		}
	}
	if !ok || s.aborted {
		return nil, s.diagnostics(start)
	}

	var root *Node
	if len(s.nodes) == 1 {
		root = s.nodes[0]
	} else {
		// The start rule is ignored: keep the span, lose the structure.
		root = &Node{Rule: start, Start: 0, End: end}
	}
	return &Tree{Root: root, Source: file}, nil
}
