// Package source holds input buffers and maps byte offsets to line and column
// positions.
package source

import "fmt"

// Position represents a location in an input buffer.
// Line and Column are 1-based; Column counts runes, not bytes.
type Position struct {
	Filename string `json:"filename,omitempty" yaml:"filename,omitempty"`
	Offset   int    `json:"offset" yaml:"offset"`
	Line     int    `json:"line" yaml:"line"`
	Column   int    `json:"column" yaml:"column"`
}

func (p Position) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// IsValid reports whether the position carries line information.
func (p Position) IsValid() bool {
	return p.Line > 0
}

// Span represents a range in an input buffer.
type Span struct {
	Start Position `json:"start" yaml:"start"`
	End   Position `json:"end" yaml:"end"`
}

func (s Span) String() string {
	return s.Start.String() + "-" + s.End.String()
}
