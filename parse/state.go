package parse

import (
	"fmt"
	"slices"
	"strconv"
	"unicode/utf8"

	"github.com/dhamidi/peg/grammar"
	"github.com/dhamidi/peg/source"
)

type memoState uint8

const (
	inProgress memoState = iota
	matched
	failed
)

// mode captures the context that changes what a rule matches or records.
type mode uint8

const (
	modeNoSkip mode = 1 << iota
	modeQuiet
)

// memoKey identifies one rule invocation.
type memoKey struct {
	rule   string
	offset int
	mode   mode
}

type memoEntry struct {
	state memoState
	end   int
	// node is nil for ignored rules and the whitespace rule.
	node *Node
}

// failure groups the expectations recorded at the furthest position by the
// rule that was active when they failed.
type failure struct {
	rule     string
	expected []string
}

// state is the mutable part of a single parse.
type state struct {
	g     *grammar.Grammar
	cfg   *config
	file  *source.File
	src   []byte
	memo  map[memoKey]*memoEntry
	stats *Stats

	// nodes collects the nodes produced so far by the enclosing rule. A failed
	// match always leaves it as it found it.
	nodes []*Node
	// rules is the stack of active rule invocations.
	rules []string
	// noSkip is non-zero inside captures and the whitespace rule.
	noSkip int
	// quiet is non-zero inside predicates and whitespace skipping.
	quiet int

	maxFail  int
	failures []*failure

	aborted  bool
	resource *Diagnostic
}

func newState(g *grammar.Grammar, file *source.File, cfg *config) *state {
	s := &state{
		g:       g,
		cfg:     cfg,
		file:    file,
		src:     file.Content(),
		memo:    make(map[memoKey]*memoEntry),
		stats:   cfg.stats,
		maxFail: -1,
	}
	if s.stats != nil {
		s.stats.reset()
	}
	return s
}

func (s *state) mode() mode {
	var m mode
	if s.noSkip > 0 {
		m |= modeNoSkip
	}
	if s.quiet > 0 {
		m |= modeQuiet
	}
	return m
}

// call invokes the rule called name at pos, consulting and filling the memo.
func (s *state) call(name string, pos int) (int, bool) {
	if s.aborted {
		return pos, false
	}
	var rs *RuleStats
	if s.stats != nil {
		s.stats.Calls++
		rs = s.stats.rule(name)
		rs.Calls++
	}

	key := memoKey{rule: name, offset: pos, mode: s.mode()}
	if entry, ok := s.memo[key]; ok {
		return s.reuse(entry, rs, pos)
	}
	if s.stats != nil {
		s.stats.MemoMisses++
	}
	entry := &memoEntry{state: inProgress}
	s.memo[key] = entry

	rule := s.g.Rule(name)
	whitespace := name == s.g.Whitespace()
	start := pos
	if whitespace {
		s.noSkip++
		s.quiet++
	} else {
		start = s.skip(pos)
	}

	s.rules = append(s.rules, name)
	depth := len(s.rules)
	if s.stats != nil && depth > s.stats.MaxDepth {
		s.stats.MaxDepth = depth
	}
	if s.cfg.maxDepth > 0 && depth > s.cfg.maxDepth {
		s.abort(name, start)
	}
	if s.cfg.trace != nil {
		s.cfg.trace.Debugf("%d: enter %s at %d", depth, name, start)
	}

	mark := len(s.nodes)
	end, ok := s.match(rule.Expr, start)
	ok = ok && !s.aborted

	s.rules = s.rules[:len(s.rules)-1]
	if whitespace {
		s.noSkip--
		s.quiet--
	}

	if !ok {
		s.nodes = s.nodes[:mark]
		entry.state = failed
		if rs != nil {
			rs.Failures++
		}
		if s.cfg.trace != nil {
			s.cfg.trace.Debugf("%d: fail %s at %d", depth, name, start)
		}
		return pos, false
	}

	var node *Node
	if !rule.Ignore && !whitespace {
		node = newNode(name, start, end, s.nodes[mark:])
	}
	s.nodes = s.nodes[:mark]
	if node != nil {
		s.nodes = append(s.nodes, node)
	}
	entry.state, entry.end, entry.node = matched, end, node
	if rs != nil {
		rs.Matches++
	}
	if s.cfg.trace != nil {
		s.cfg.trace.Debugf("%d: match %s %d-%d", depth, name, start, end)
	}
	return end, true
}

func (s *state) reuse(entry *memoEntry, rs *RuleStats, pos int) (int, bool) {
	if entry.state == inProgress {
		if s.stats != nil {
			s.stats.LeftRecursion++
			rs.Failures++
		}
		return pos, false
	}
	if s.stats != nil {
		s.stats.MemoHits++
		rs.MemoHits++
	}
	if entry.state == failed {
		if rs != nil {
			rs.Failures++
		}
		return pos, false
	}
	if rs != nil {
		rs.Matches++
	}
	if n := entry.node; n != nil {
		// A zero-width node can be reused at the same position in one tree.
		if n.Start == n.End {
			n = n.Clone()
		}
		s.nodes = append(s.nodes, n)
	}
	return entry.end, true
}

// newNode builds the node for a rule from the nodes its body produced. A rule
// whose body is a single capture spanning the whole match becomes a token.
func newNode(name string, start, end int, children []*Node) *Node {
	n := &Node{Rule: name, Start: start, End: end}
	if len(children) == 1 {
		c := children[0]
		if c.Rule == "" && c.Start == start && c.End == end {
			n.Token = true
			return n
		}
	}
	if len(children) > 0 {
		n.Children = slices.Clone(children)
	}
	return n
}

// skip matches the whitespace rule at pos until it stops making progress.
func (s *state) skip(pos int) int {
	ws := s.g.Whitespace()
	if ws == "" || s.noSkip > 0 {
		return pos
	}
	s.quiet++
	for {
		end, ok := s.call(ws, pos)
		if !ok || end == pos {
			break
		}
		pos = end
	}
	s.quiet--
	return pos
}

// fail records that expected was not found at pos.
func (s *state) fail(pos int, expected string) {
	if s.quiet > 0 || pos < s.maxFail {
		return
	}
	if pos > s.maxFail {
		s.maxFail = pos
		s.failures = s.failures[:0]
	}
	rule := ""
	if len(s.rules) > 0 {
		rule = s.rules[len(s.rules)-1]
	}
	for _, f := range s.failures {
		if f.rule == rule {
			if !slices.Contains(f.expected, expected) {
				f.expected = append(f.expected, expected)
			}
			return
		}
	}
	s.failures = append(s.failures, &failure{rule: rule, expected: []string{expected}})
}

func (s *state) abort(rule string, pos int) {
	s.aborted = true
	s.resource = &Diagnostic{
		Kind:    KindResource,
		Pos:     s.file.Position(pos),
		Rule:    rule,
		Message: fmt.Sprintf("rule nesting exceeds maximum depth %d in %s", s.cfg.maxDepth, rule),
	}
}

func (s *state) diagnostics(start string) Diagnostics {
	if s.aborted {
		return Diagnostics{s.resource}
	}
	pos := max(s.maxFail, 0)
	found := s.describe(pos)
	if len(s.failures) == 0 {
		return Diagnostics{{
			Kind:    KindSyntax,
			Pos:     s.file.Position(pos),
			Rule:    start,
			Found:   found,
			Message: syntaxMessage(start, found, nil),
		}}
	}
	ds := make(Diagnostics, len(s.failures))
	for i, f := range s.failures {
		ds[i] = &Diagnostic{
			Kind:     KindSyntax,
			Pos:      s.file.Position(pos),
			Rule:     f.rule,
			Expected: f.expected,
			Found:    found,
			Message:  syntaxMessage(f.rule, found, f.expected),
		}
	}
	return ds
}

// describe names the input found at pos for diagnostics.
func (s *state) describe(pos int) string {
	r, size := s.decode(pos)
	switch {
	case size == 0:
		return "end of input"
	case r == utf8.RuneError && size == 1:
		return fmt.Sprintf("byte %#02x", s.src[pos])
	}
	return strconv.QuoteRune(r)
}

func (s *state) decode(pos int) (rune, int) {
	if pos >= len(s.src) {
		return 0, 0
	}
	return utf8.DecodeRune(s.src[pos:])
}
