package grammar

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/dhamidi/peg/source"
)

// ErrorKind classifies compile errors.
type ErrorKind int

const (
	// KindSyntax reports malformed grammar text.
	KindSyntax ErrorKind = iota + 1
	// KindUndefinedRule reports a reference to a rule that is never defined.
	KindUndefinedRule
)

func (k ErrorKind) String() string {
	switch k {
	case KindSyntax:
		return "syntax"
	case KindUndefinedRule:
		return "undefined rule"
	}
	return "unknown"
}

// Sentinel errors matched by errors.Is against a *CompileError of the same
// kind.
var (
	ErrSyntax        = errors.New("grammar syntax error")
	ErrUndefinedRule = errors.New("undefined rule")
)

// CompileError is returned when a grammar cannot be built. No Grammar is
// produced alongside it.
type CompileError struct {
	Kind ErrorKind
	// Pos is the location in the grammar text, zero when unknown.
	Pos source.Position
	// Name is the missing rule for KindUndefinedRule.
	Name    string
	Message string
	// Suggestions lists defined rule names close to Name.
	Suggestions []string
}

func (e *CompileError) Error() string {
	msg := e.Message
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(quoteAll(e.Suggestions), " or "))
	}
	if e.Pos.IsValid() {
		return e.Pos.String() + ": " + msg
	}
	return msg
}

func (e *CompileError) Is(target error) bool {
	switch target {
	case ErrSyntax:
		return e.Kind == KindSyntax
	case ErrUndefinedRule:
		return e.Kind == KindUndefinedRule
	}
	return false
}

func syntaxError(pos source.Position, format string, args ...any) *CompileError {
	return &CompileError{
		Kind:    KindSyntax,
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
	}
}

func undefinedRuleError(pos source.Position, name string, defined []string) *CompileError {
	return &CompileError{
		Kind:        KindUndefinedRule,
		Pos:         pos,
		Name:        name,
		Message:     fmt.Sprintf("undefined rule %q", name),
		Suggestions: closestNames(name, defined),
	}
}

// maxSuggestionDistance bounds how different a suggestion may be.
const maxSuggestionDistance = 3

func closestNames(name string, candidates []string) []string {
	best := maxSuggestionDistance + 1
	var closest []string
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(name, c)
		switch {
		case d > maxSuggestionDistance:
		case d < best:
			closest = []string{c}
			best = d
		case d == best:
			closest = append(closest, c)
		}
	}
	slices.Sort(closest)
	return closest
}

func quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = fmt.Sprintf("%q", n)
	}
	return out
}
