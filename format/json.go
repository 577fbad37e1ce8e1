package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/peg/parse"
)

// JSONEncoder writes the tree as indented JSON in the shape of
// parse.JSONNode.
type JSONEncoder struct {
	w    io.Writer
	tree *parse.Tree
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(tree *parse.Tree) error {
	e.tree = tree
	return write(e.w, e)
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	data, err := json.MarshalIndent(e.tree.JSON(e.tree.Root), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
