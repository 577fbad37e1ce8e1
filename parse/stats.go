package parse

import "sort"

// Stats counts the work done by one parse.
type Stats struct {
	// Calls counts rule invocations, including whitespace skipping.
	Calls      int
	MemoHits   int
	MemoMisses int
	// LeftRecursion counts calls that failed because the rule was already
	// being evaluated at the same position.
	LeftRecursion int
	// MaxDepth is the deepest nesting of rule invocations reached.
	MaxDepth int
	Rules    map[string]*RuleStats
}

// RuleStats counts invocations of a single rule.
type RuleStats struct {
	Calls    int
	MemoHits int
	Matches  int
	Failures int
}

func (s *Stats) reset() {
	*s = Stats{Rules: make(map[string]*RuleStats)}
}

func (s *Stats) rule(name string) *RuleStats {
	rs := s.Rules[name]
	if rs == nil {
		rs = &RuleStats{}
		s.Rules[name] = rs
	}
	return rs
}

// RuleNames returns the names of the invoked rules, most called first and
// ties in name order.
func (s *Stats) RuleNames() []string {
	names := make([]string, 0, len(s.Rules))
	for name := range s.Rules {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := s.Rules[names[i]], s.Rules[names[j]]
		if a.Calls != b.Calls {
			return a.Calls > b.Calls
		}
		return names[i] < names[j]
	})
	return names
}
