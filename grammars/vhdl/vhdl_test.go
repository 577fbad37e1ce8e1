package vhdl

import (
	"errors"
	"testing"

	"github.com/dhamidi/peg/parse"
)

func TestGrammarCompiles(t *testing.T) {
	g, err := Grammar()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if g.Start() != "vhdl2008" {
		t.Errorf("Start() = %q, want vhdl2008", g.Start())
	}
	if g.Whitespace() != "_" {
		t.Errorf("Whitespace() = %q, want _", g.Whitespace())
	}
	if !g.Rule("_").Ignore {
		t.Error("whitespace rule is not ignored")
	}
	if g.Len() < 400 {
		t.Errorf("only %d rules", g.Len())
	}

	again, _ := Grammar()
	if again != g {
		t.Error("Grammar() compiled twice")
	}
}

func TestLexicalRules(t *testing.T) {
	g, err := Grammar()
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		rule  string
		input string
		ok    bool
	}{
		{"basic_identifier", "clk_en2", true},
		{"basic_identifier", "_clk", false},
		{"integer", "1_000", true},
		{"based_literal", "16#FF#", true},
		{"_entity", "ENTITY", true},
		{"_entity", "Entity", true},
		{"decimal_literal", "3.14E2", true},
		{"decimal_literal", ".5", false},
	}
	for _, tt := range tests {
		t.Run(tt.rule+"/"+tt.input, func(t *testing.T) {
			tree, err := parse.Parse(g, []byte(tt.input), parse.WithStart(tt.rule), parse.RequireEOF())
			if ok := err == nil; ok != tt.ok {
				t.Fatalf("parse ok = %v, want %v (err: %v)", ok, tt.ok, err)
			}
			if tt.ok && tree.Root.Rule != tt.rule {
				t.Errorf("root = %s, want %s", tree.Root.Rule, tt.rule)
			}
		})
	}
}

func TestEntityDeclaration(t *testing.T) {
	g, err := Grammar()
	if err != nil {
		t.Fatal(err)
	}
	inputs := []string{
		"entity foo is end entity foo;\n",
		"-- header\nentity foo is\nend;\n",
		"ENTITY Foo IS END ENTITY Foo;",
	}
	for _, input := range inputs {
		tree, err := parse.Parse(g, []byte(input), parse.RequireEOF())
		if err != nil {
			t.Errorf("parse %q: %v", input, err)
			continue
		}
		var entity *parse.Node
		tree.Root.Walk(func(n *parse.Node, _ int) bool {
			if n.Rule == "entity_declaration" && entity == nil {
				entity = n
			}
			return entity == nil
		})
		if entity == nil {
			t.Errorf("parse %q: no entity_declaration in\n%s", input, tree)
		}
	}
}

func TestMissingSemicolon(t *testing.T) {
	g, err := Grammar()
	if err != nil {
		t.Fatal(err)
	}
	_, err = parse.Parse(g, []byte("entity foo is\nend entity foo\n"), parse.RequireEOF())
	var ds parse.Diagnostics
	if !errors.As(err, &ds) {
		t.Fatalf("error = %v, want diagnostics", err)
	}
	if ds[0].Pos.Line != 3 || ds[0].Pos.Column != 1 {
		t.Errorf("position = %s, want 3:1", ds[0].Pos)
	}
	if ds[0].Rule != "semicolon" {
		t.Errorf("rule = %q, want semicolon", ds[0].Rule)
	}
}
