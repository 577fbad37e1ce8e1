package parse

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNodeFind(t *testing.T) {
	g := compile(t, sumGrammar)
	tree := mustParse(t, g, "12 + 3+4")

	tests := []struct {
		offset int
		want   []string
	}{
		{0, []string{"sum", "term"}},
		{2, []string{"sum"}},
		{5, []string{"sum", "term"}},
		{8, nil},
		{-1, nil},
	}
	for _, tt := range tests {
		var got []string
		for _, n := range tree.Root.Find(tt.offset) {
			got = append(got, n.Rule)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("Find(%d) (-want +got):\n%s", tt.offset, diff)
		}
	}

	path := tree.Root.Find(5)
	if got := tree.Text(path[len(path)-1]); got != "3" {
		t.Errorf("Find(5) leaf = %q, want %q", got, "3")
	}
}

func TestNodeWalk(t *testing.T) {
	g := compile(t, `
list <- item+
item <- name value?
name <- [a-z]+
value <- [0-9]+
`)
	tree := mustParse(t, g, "a1b")

	var visited []string
	tree.Root.Walk(func(n *Node, depth int) bool {
		visited = append(visited, n.Rule)
		return n.Rule != "item" || depth != 1 || n.Start != 2
	})
	want := []string{"list", "item", "name", "value", "item"}
	if diff := cmp.Diff(want, visited); diff != "" {
		t.Errorf("walk order (-want +got):\n%s", diff)
	}
}

func TestNodeClone(t *testing.T) {
	g := compile(t, sumGrammar)
	tree := mustParse(t, g, "1+2")

	cp := tree.Root.Clone()
	if diff := cmp.Diff(tree.Root, cp); diff != "" {
		t.Fatalf("clone differs (-orig +clone):\n%s", diff)
	}
	cp.Children[0].Rule = "changed"
	if tree.Root.Children[0].Rule != "term" {
		t.Error("clone shares children with the original")
	}
}

func TestTreeJSON(t *testing.T) {
	g := compile(t, `
sum  <- term ('+' term)*
term <- [0-9]+
%whitespace <- [ \n]
`)
	tree := mustParse(t, g, "1 +\n2")

	data, err := json.Marshal(tree)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got JSONNode
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got.Rule != "sum" || got.Text != "" || len(got.Children) != 2 {
		t.Fatalf("root = %+v", got)
	}
	second := got.Children[1]
	if second.Text != "2" || second.Span.Start.Line != 2 || second.Span.Start.Column != 1 {
		t.Errorf("second term = %+v", second)
	}
}

func TestNodeName(t *testing.T) {
	if got := (&Node{}).Name(); got != "anonymous" {
		t.Errorf("Name() = %q, want anonymous", got)
	}
	if got := (&Node{Rule: "x"}).Name(); got != "x" {
		t.Errorf("Name() = %q, want x", got)
	}
}
