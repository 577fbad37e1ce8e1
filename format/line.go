package format

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dhamidi/peg/parse"
)

// LineEncoder writes one tab separated line per node: depth, rule name, span
// and, for leaves, the quoted text. The output is meant for grep and awk.
type LineEncoder struct {
	w    io.Writer
	tree *parse.Tree
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(tree *parse.Tree) error {
	e.tree = tree
	return write(e.w, e)
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	t := e.tree
	t.Root.Walk(func(n *parse.Node, depth int) bool {
		span := t.Span(n)
		fmt.Fprintf(&sb, "%d\t%s\t%d:%d\t%d:%d",
			depth,
			n.Name(),
			span.Start.Line, span.Start.Column,
			span.End.Line, span.End.Column,
		)
		if len(n.Children) == 0 {
			sb.WriteString("\t" + strconv.Quote(t.Text(n)))
		}
		sb.WriteByte('\n')
		return true
	})
	return []byte(sb.String()), nil
}
