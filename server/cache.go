package server

import (
	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dhamidi/peg/grammar"
)

// grammarCache keeps compiled grammars keyed by a digest of their text. The
// text is kept alongside to rule out digest collisions.
type grammarCache struct {
	entries *lru.Cache[uint64, cacheEntry]
	metrics *collectors
}

type cacheEntry struct {
	text    string
	grammar *grammar.Grammar
}

func newGrammarCache(size int, metrics *collectors) (*grammarCache, error) {
	entries, err := lru.New[uint64, cacheEntry](size)
	if err != nil {
		return nil, err
	}
	return &grammarCache{entries: entries, metrics: metrics}, nil
}

// compile returns the cached grammar for text or compiles and caches it.
// Compile errors are not cached.
func (c *grammarCache) compile(text string) (*grammar.Grammar, error) {
	key := xxhash.Sum64String(text)
	if entry, ok := c.entries.Get(key); ok && entry.text == text {
		c.metrics.cacheLookups.WithLabelValues("hit").Inc()
		return entry.grammar, nil
	}
	c.metrics.cacheLookups.WithLabelValues("miss").Inc()

	g, err := grammar.CompileString("grammar", text)
	if err != nil {
		c.metrics.compiles.WithLabelValues("error").Inc()
		return nil, err
	}
	c.metrics.compiles.WithLabelValues("ok").Inc()
	c.entries.Add(key, cacheEntry{text: text, grammar: g})
	return g, nil
}

func (c *grammarCache) len() int {
	return c.entries.Len()
}
