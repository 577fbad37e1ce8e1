package lsp

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/peg/parse"
	"github.com/dhamidi/peg/source"
)

// Position converts a byte offset into a protocol position, whose character
// counts UTF-16 code units.
func Position(file *source.File, offset int) protocol.Position {
	pos := file.Position(offset)
	lineStart := file.Offset(pos.Line, 1)
	units := 0
	for _, r := range file.Slice(lineStart, pos.Offset) {
		units += len(utf16.AppendRune(nil, r))
	}
	return protocol.Position{
		Line:      protocol.UInteger(pos.Line - 1),
		Character: protocol.UInteger(units),
	}
}

// Offset converts a protocol position back into a byte offset. Characters
// past the end of the line stop at the line break.
func Offset(file *source.File, pos protocol.Position) int {
	offset := file.Offset(int(pos.Line)+1, 1)
	content := file.Content()
	for units := 0; units < int(pos.Character) && offset < len(content); {
		r, size := utf8.DecodeRune(content[offset:])
		if r == '\n' {
			break
		}
		units += len(utf16.AppendRune(nil, r))
		offset += size
	}
	return offset
}

// Range converts a pair of byte offsets into a protocol range.
func Range(file *source.File, start, end int) protocol.Range {
	return protocol.Range{
		Start: Position(file, start),
		End:   Position(file, end),
	}
}

// Diagnostics converts a parse error into protocol diagnostics, one per
// expectation group. A nil error yields an empty, non-nil slice so that
// clients clear earlier diagnostics.
func Diagnostics(file *source.File, err error) []protocol.Diagnostic {
	result := []protocol.Diagnostic{}
	if err == nil {
		return result
	}
	severity := protocol.DiagnosticSeverityError
	src := lsName

	var ds parse.Diagnostics
	if !errors.As(err, &ds) {
		return append(result, protocol.Diagnostic{
			Range:    Range(file, 0, 0),
			Severity: &severity,
			Source:   &src,
			Message:  err.Error(),
		})
	}
	for _, d := range ds {
		end := d.Pos.Offset
		if _, size := utf8.DecodeRune(file.Content()[min(end, file.Len()):]); size > 0 {
			end += size
		}
		code := protocol.IntegerOrString{Value: d.Kind.String()}
		result = append(result, protocol.Diagnostic{
			Range:    Range(file, d.Pos.Offset, end),
			Severity: &severity,
			Code:     &code,
			Source:   &src,
			Message:  d.Message,
		})
	}
	return result
}

// HoverText describes the rules enclosing the last node of path.
func HoverText(tree *parse.Tree, path []*parse.Node) string {
	names := make([]string, len(path))
	for i, n := range path {
		names[i] = n.Name()
	}
	leaf := path[len(path)-1]

	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n\n", leaf.Name())
	fmt.Fprintf(&b, "`%s`\n", strings.Join(names, " > "))
	if len(leaf.Children) == 0 {
		fmt.Fprintf(&b, "\n```\n%s\n```\n", tree.Text(leaf))
	}
	return b.String()
}

// Symbols reports the syntax tree below the root as nested document symbols,
// down to depth levels.
func Symbols(tree *parse.Tree, depth int) []protocol.DocumentSymbol {
	return symbols(tree, tree.Root.Children, depth)
}

func symbols(tree *parse.Tree, nodes []*parse.Node, depth int) []protocol.DocumentSymbol {
	if depth <= 0 || len(nodes) == 0 {
		return nil
	}
	result := make([]protocol.DocumentSymbol, 0, len(nodes))
	for _, n := range nodes {
		rng := Range(tree.Source, n.Start, n.End)
		kind := protocol.SymbolKindStruct
		if n.Token || len(n.Children) == 0 {
			kind = protocol.SymbolKindString
		}
		result = append(result, protocol.DocumentSymbol{
			Name:           n.Name(),
			Kind:           kind,
			Range:          rng,
			SelectionRange: rng,
			Children:       symbols(tree, n.Children, depth-1),
		})
	}
	return result
}
