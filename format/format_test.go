package format

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/dhamidi/peg/grammar"
	"github.com/dhamidi/peg/parse"
)

const assignGrammar = `
assign <- name '=' value
name   <- < [a-z]+ >
value  <- < [0-9]+ >
%whitespace <- [ \n]+
`

func parseAssign(t *testing.T, input string) *parse.Tree {
	t.Helper()
	g := grammar.MustCompile("assign.peg", assignGrammar)
	tree, err := parse.Parse(g, []byte(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return tree
}

func TestEncoders(t *testing.T) {
	tree := parseAssign(t, "x =\n 42")

	tests := []struct {
		format string
		want   string
	}{
		{"tree", "assign\n  name \"x\"\n  value \"42\"\n"},
		{"line", "0\tassign\t1:1\t2:4\n1\tname\t1:1\t1:2\t\"x\"\n1\tvalue\t2:2\t2:4\t\"42\"\n"},
		{"none", ""},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			enc, err := New(tt.format, &buf)
			if err != nil {
				t.Fatal(err)
			}
			if err := enc.Encode(tree); err != nil {
				t.Fatal(err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestJSONEncoder(t *testing.T) {
	tree := parseAssign(t, "x = 42")
	var buf bytes.Buffer
	if err := NewJSONEncoder(&buf).Encode(tree); err != nil {
		t.Fatal(err)
	}

	var got parse.JSONNode
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	var texts []string
	for _, child := range got.Children {
		texts = append(texts, child.Rule+"="+child.Text)
	}
	if diff := cmp.Diff([]string{"name=x", "value=42"}, texts); diff != "" {
		t.Errorf("children (-want +got):\n%s", diff)
	}
}

func TestYAMLEncoder(t *testing.T) {
	tree := parseAssign(t, "x = 42")
	var buf bytes.Buffer
	if err := NewYAMLEncoder(&buf).Encode(tree); err != nil {
		t.Fatal(err)
	}

	var got yamlNode
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, buf.String())
	}
	want := yamlNode{
		Rule: "assign",
		Span: "1:1-1:7",
		Children: []*yamlNode{
			{Rule: "name", Span: "1:1-1:2", Text: "x"},
			{Rule: "value", Span: "1:5-1:7", Text: "42"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("yaml (-want +got):\n%s", diff)
	}
}

func TestUnknownFormat(t *testing.T) {
	if _, err := New("xml", &bytes.Buffer{}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestWriteError(t *testing.T) {
	g := grammar.MustCompile("assign.peg", assignGrammar)
	_, err := parse.Parse(g, []byte("x = y"), parse.WithFilename("in"))

	var buf bytes.Buffer
	WriteError(&buf, err)
	want := "in:1:5: syntax error in value: unexpected 'y', expected [0-9]\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}

	buf.Reset()
	WriteError(&buf, errors.New("boom"))
	if got := buf.String(); got != "boom\n" {
		t.Errorf("output = %q", got)
	}
}

func TestWriteStats(t *testing.T) {
	g := grammar.MustCompile("assign.peg", assignGrammar)
	var stats parse.Stats
	if _, err := parse.Parse(g, []byte("x = 1"), parse.WithStats(&stats)); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	WriteStats(&buf, &stats, 0)
	out := buf.String()
	for _, want := range []string{"calls", "memo_hits", "Rule", "assign", "value", "%whitespace"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats output lacks %q:\n%s", want, out)
		}
	}
}
