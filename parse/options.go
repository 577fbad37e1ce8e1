package parse

import "github.com/tliron/commonlog"

// Option configures a single parse.
type Option func(*config)

type config struct {
	start      string
	filename   string
	maxDepth   int
	requireEOF bool
	stats      *Stats
	trace      commonlog.Logger
}

// WithStart parses from rule name instead of the grammar's start rule.
func WithStart(name string) Option {
	return func(c *config) {
		c.start = name
	}
}

// WithFilename names the input in diagnostics and positions.
func WithFilename(name string) Option {
	return func(c *config) {
		c.filename = name
	}
}

// DefaultMaxDepth bounds nested rule invocations unless WithMaxDepth says
// otherwise. Each level costs several stack frames, so an unbounded parse of
// deeply nested input can exhaust the goroutine stack.
const DefaultMaxDepth = 10000

// WithMaxDepth limits nested rule invocations. Exceeding the limit aborts the
// parse with a KindResource diagnostic. Zero selects DefaultMaxDepth and a
// negative n removes the limit.
func WithMaxDepth(n int) Option {
	return func(c *config) {
		if n == 0 {
			n = DefaultMaxDepth
		}
		c.maxDepth = n
	}
}

// RequireEOF makes the parse fail unless the start rule, followed by any
// whitespace, consumes the whole input. By default a parse succeeds once the
// start rule matches a prefix.
func RequireEOF() Option {
	return func(c *config) {
		c.requireEOF = true
	}
}

// WithStats collects counters for the parse into s. s is reset first.
func WithStats(s *Stats) Option {
	return func(c *config) {
		c.stats = s
	}
}

// WithTrace logs every rule entry and exit at debug level.
func WithTrace(log commonlog.Logger) Option {
	return func(c *config) {
		c.trace = log
	}
}
