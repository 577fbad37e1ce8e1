// Package format renders syntax trees, diagnostics and parse statistics.
package format

import (
	"encoding"
	"fmt"
	"io"

	"github.com/dhamidi/peg/parse"
)

// Encoder writes a syntax tree in one output format.
type Encoder interface {
	encoding.TextMarshaler
	Encode(tree *parse.Tree) error
}

// Names lists the output formats accepted by New, "none" included.
var Names = []string{"tree", "line", "json", "yaml", "none"}

// New returns the encoder called name writing to w. The "none" format
// discards the tree.
func New(name string, w io.Writer) (Encoder, error) {
	switch name {
	case "tree":
		return NewTreeEncoder(w), nil
	case "line":
		return NewLineEncoder(w), nil
	case "json":
		return NewJSONEncoder(w), nil
	case "yaml":
		return NewYAMLEncoder(w), nil
	case "none":
		return NewTreeEncoder(io.Discard), nil
	}
	return nil, fmt.Errorf("unknown format %q (want one of %v)", name, Names)
}

func write(w io.Writer, m encoding.TextMarshaler) error {
	text, err := m.MarshalText()
	if err != nil {
		return err
	}
	_, err = w.Write(text)
	return err
}
