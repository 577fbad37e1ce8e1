package format

import (
	"io"

	"github.com/dhamidi/peg/parse"
)

// TreeEncoder writes the indented tree dump of parse.Tree.String.
type TreeEncoder struct {
	w    io.Writer
	tree *parse.Tree
}

func NewTreeEncoder(w io.Writer) *TreeEncoder {
	return &TreeEncoder{w: w}
}

func (e *TreeEncoder) Encode(tree *parse.Tree) error {
	e.tree = tree
	return write(e.w, e)
}

func (e *TreeEncoder) MarshalText() ([]byte, error) {
	return []byte(e.tree.String()), nil
}
