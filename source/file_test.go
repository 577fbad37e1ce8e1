package source

import "testing"

func TestFilePosition(t *testing.T) {
	f := NewFile("in.vhd", []byte("ab\nçd\n\nx"))

	tests := []struct {
		offset int
		line   int
		column int
	}{
		{0, 1, 1},
		{1, 1, 2},
		{2, 1, 3},
		{3, 2, 1},
		{5, 2, 2}, // after the two-byte ç
		{6, 2, 3},
		{7, 3, 1},
		{8, 4, 1},
		{9, 4, 2},
		{100, 4, 2},
		{-4, 1, 1},
	}

	for _, tt := range tests {
		pos := f.Position(tt.offset)
		if pos.Line != tt.line || pos.Column != tt.column {
			t.Errorf("Position(%d) = %d:%d, want %d:%d", tt.offset, pos.Line, pos.Column, tt.line, tt.column)
		}
	}
}

func TestFileOffsetRoundTrip(t *testing.T) {
	f := NewFile("", []byte("entity e is\n  port (ç : in bit);\nend;"))
	for offset := 0; offset <= f.Len(); offset++ {
		if offset < f.Len() && f.Content()[offset] == 0xa7 {
			// second byte of ç
			continue
		}
		pos := f.Position(offset)
		if got := f.Offset(pos.Line, pos.Column); got != offset {
			t.Errorf("Offset(Position(%d)) = %d", offset, got)
		}
	}
}

func TestFileOffsetClamps(t *testing.T) {
	f := NewFile("", []byte("ab\ncd"))
	if got := f.Offset(1, 40); got != 2 {
		t.Errorf("Offset(1, 40) = %d, want 2", got)
	}
	if got := f.Offset(9, 1); got != f.Len() {
		t.Errorf("Offset(9, 1) = %d, want %d", got, f.Len())
	}
	if got := f.Offset(0, 0); got != 0 {
		t.Errorf("Offset(0, 0) = %d, want 0", got)
	}
}

func TestPositionString(t *testing.T) {
	if got := (Position{Line: 3, Column: 7}).String(); got != "3:7" {
		t.Errorf("got %q", got)
	}
	if got := (Position{Filename: "a.vhd", Line: 3, Column: 7}).String(); got != "a.vhd:3:7" {
		t.Errorf("got %q", got)
	}
}

func TestFileSlice(t *testing.T) {
	f := NewFile("", []byte("hello"))
	if got := f.Slice(1, 3); got != "el" {
		t.Errorf("Slice(1, 3) = %q", got)
	}
	if got := f.Slice(3, 1); got != "" {
		t.Errorf("Slice(3, 1) = %q", got)
	}
	if got := f.Slice(-1, 99); got != "hello" {
		t.Errorf("Slice(-1, 99) = %q", got)
	}
}
