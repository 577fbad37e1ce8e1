package format

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dhamidi/peg/parse"
	"github.com/dhamidi/peg/source"
)

// YAMLEncoder writes the tree as a YAML document with compact spans.
type YAMLEncoder struct {
	w    io.Writer
	tree *parse.Tree
}

func NewYAMLEncoder(w io.Writer) *YAMLEncoder {
	return &YAMLEncoder{w: w}
}

func (e *YAMLEncoder) Encode(tree *parse.Tree) error {
	e.tree = tree
	return write(e.w, e)
}

func (e *YAMLEncoder) MarshalText() ([]byte, error) {
	return yaml.Marshal(e.node(e.tree.Root))
}

type yamlNode struct {
	Rule     string      `yaml:"rule"`
	Span     string      `yaml:"span"`
	Text     string      `yaml:"text,omitempty"`
	Children []*yamlNode `yaml:"children,omitempty"`
}

func (e *YAMLEncoder) node(n *parse.Node) *yamlNode {
	yn := &yamlNode{
		Rule: n.Name(),
		Span: spanString(e.tree.Span(n)),
	}
	if len(n.Children) == 0 {
		yn.Text = e.tree.Text(n)
		return yn
	}
	yn.Children = make([]*yamlNode, len(n.Children))
	for i, child := range n.Children {
		yn.Children[i] = e.node(child)
	}
	return yn
}

func spanString(s source.Span) string {
	return fmt.Sprintf("%d:%d-%d:%d", s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
}
