package parse

import (
	"fmt"
	"strings"

	"github.com/dhamidi/peg/source"
)

// Kind classifies diagnostics.
type Kind int

const (
	// KindSyntax reports input that does not satisfy the grammar.
	KindSyntax Kind = iota + 1
	// KindResource reports a parse aborted by the depth limit.
	KindResource
)

func (k Kind) String() string {
	switch k {
	case KindSyntax:
		return "syntax"
	case KindResource:
		return "resource"
	}
	return "unknown"
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "syntax":
		*k = KindSyntax
	case "resource":
		*k = KindResource
	default:
		return fmt.Errorf("unknown diagnostic kind %q", text)
	}
	return nil
}

// Diagnostic describes why a parse failed.
type Diagnostic struct {
	Kind Kind            `json:"kind" yaml:"kind"`
	Pos  source.Position `json:"pos" yaml:"pos"`
	// Rule is the innermost rule active at Pos.
	Rule     string   `json:"rule,omitempty" yaml:"rule,omitempty"`
	Expected []string `json:"expected,omitempty" yaml:"expected,omitempty"`
	Found    string   `json:"found,omitempty" yaml:"found,omitempty"`
	Message  string   `json:"message" yaml:"message"`
}

func (d *Diagnostic) Error() string {
	return d.Pos.String() + ": " + d.Message
}

// Diagnostics is the error returned by a failed parse. It is never empty.
type Diagnostics []*Diagnostic

func (ds Diagnostics) Error() string {
	lines := make([]string, len(ds))
	for i, d := range ds {
		lines[i] = d.Error()
	}
	return strings.Join(lines, "\n")
}

func syntaxMessage(rule, found string, expected []string) string {
	var b strings.Builder
	b.WriteString("syntax error")
	if rule != "" {
		b.WriteString(" in ")
		b.WriteString(rule)
	}
	b.WriteString(": unexpected ")
	b.WriteString(found)
	if len(expected) > 0 {
		b.WriteString(", expected ")
		b.WriteString(joinAlternatives(expected))
	}
	return b.String()
}

func joinAlternatives(items []string) string {
	if len(items) == 1 {
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " or " + items[len(items)-1]
}
