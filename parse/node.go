package parse

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/dhamidi/peg/source"
)

// Node is a syntax tree node produced by a successful rule match. Nodes hold
// byte offsets into the parsed input; use Tree to recover text and positions.
type Node struct {
	// Rule is the name of the matched rule, empty for an anonymous capture.
	Rule  string
	Start int
	End   int
	// Token is set for leaves whose text, not structure, is meaningful.
	Token    bool
	Children []*Node
}

// Name returns the rule name, or "anonymous" for captures.
func (n *Node) Name() string {
	if n.Rule == "" {
		return "anonymous"
	}
	return n.Rule
}

// Text returns the matched text within src.
func (n *Node) Text(src []byte) string {
	return string(src[n.Start:n.End])
}

// Len returns the length of the match in bytes.
func (n *Node) Len() int {
	return n.End - n.Start
}

// FirstChild returns the first direct child matched by rule, or nil.
func (n *Node) FirstChild(rule string) *Node {
	for _, child := range n.Children {
		if child.Rule == rule {
			return child
		}
	}
	return nil
}

// ChildrenOf returns the direct children matched by rule.
func (n *Node) ChildrenOf(rule string) []*Node {
	var result []*Node
	for _, child := range n.Children {
		if child.Rule == rule {
			result = append(result, child)
		}
	}
	return result
}

// Walk visits n and its descendants depth first. Returning false from fn skips
// the children of the visited node.
func (n *Node) Walk(fn func(n *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, child := range n.Children {
		child.walk(fn, depth+1)
	}
}

// Find returns the path from n to the deepest descendant whose span contains
// offset, or nil when offset lies outside n.
func (n *Node) Find(offset int) []*Node {
	if !n.contains(offset) {
		return nil
	}
	path := []*Node{n}
	for cur := n; ; {
		var next *Node
		for _, child := range cur.Children {
			if child.contains(offset) {
				next = child
				break
			}
		}
		if next == nil {
			return path
		}
		path = append(path, next)
		cur = next
	}
}

func (n *Node) contains(offset int) bool {
	if n.Start == n.End {
		return offset == n.Start
	}
	return offset >= n.Start && offset < n.End
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	cp := *n
	if n.Children != nil {
		cp.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			cp.Children[i] = child.Clone()
		}
	}
	return &cp
}

// Tree is the result of a successful parse.
type Tree struct {
	Root   *Node
	Source *source.File
}

// Text returns the input text matched by n.
func (t *Tree) Text(n *Node) string {
	return t.Source.Slice(n.Start, n.End)
}

// Span returns the line and column range matched by n.
func (t *Tree) Span(n *Node) source.Span {
	return t.Source.Span(n.Start, n.End)
}

// String renders the tree one node per line, children indented below their
// parent. Leaves show their quoted text.
func (t *Tree) String() string {
	var b strings.Builder
	t.Root.Walk(func(n *Node, depth int) bool {
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(n.Name())
		if len(n.Children) == 0 {
			b.WriteByte(' ')
			b.WriteString(strconv.Quote(t.Text(n)))
		}
		b.WriteByte('\n')
		return true
	})
	return b.String()
}

// JSONNode is the JSON shape of a syntax tree node.
type JSONNode struct {
	Rule     string      `json:"rule"`
	Span     source.Span `json:"span"`
	Text     string      `json:"text,omitempty"`
	Children []*JSONNode `json:"children,omitempty"`
}

// JSON converts n into its JSON shape. Only leaves carry text.
func (t *Tree) JSON(n *Node) *JSONNode {
	jn := &JSONNode{
		Rule: n.Name(),
		Span: t.Span(n),
	}
	if len(n.Children) == 0 {
		jn.Text = t.Text(n)
		return jn
	}
	jn.Children = make([]*JSONNode, len(n.Children))
	for i, child := range n.Children {
		jn.Children[i] = t.JSON(child)
	}
	return jn
}

func (t *Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.JSON(t.Root))
}
