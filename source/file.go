package source

import (
	"bytes"
	"os"
	"sort"
	"unicode/utf8"
)

// File is a named, read-only input buffer with a line index.
type File struct {
	name       string
	content    []byte
	lineStarts []int
}

// NewFile wraps content. The slice must not be modified afterwards.
func NewFile(name string, content []byte) *File {
	lineCnt := bytes.Count(content, []byte("\n")) + 1
	f := &File{
		name:       name,
		content:    content,
		lineStarts: make([]int, 1, lineCnt),
	}
	for i, b := range content {
		if b == '\n' {
			f.lineStarts = append(f.lineStarts, i+1)
		}
	}
	return f
}

// ReadFile loads a file from disk.
func ReadFile(filename string) (*File, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return NewFile(filename, data), nil
}

func (f *File) Name() string {
	return f.name
}

func (f *File) Content() []byte {
	return f.content
}

func (f *File) Len() int {
	return len(f.content)
}

// LineCount returns the number of lines, counting a trailing partial line.
func (f *File) LineCount() int {
	return len(f.lineStarts)
}

// Slice returns the text between two offsets, clamped to the buffer.
func (f *File) Slice(start, end int) string {
	start = f.clamp(start)
	end = f.clamp(end)
	if end < start {
		return ""
	}
	return string(f.content[start:end])
}

// Position maps a byte offset to a position. Offsets outside the buffer are
// clamped.
func (f *File) Position(offset int) Position {
	offset = f.clamp(offset)
	line := sort.Search(len(f.lineStarts), func(i int) bool {
		return f.lineStarts[i] > offset
	}) - 1
	lineStart := f.lineStarts[line]
	return Position{
		Filename: f.name,
		Offset:   offset,
		Line:     line + 1,
		Column:   utf8.RuneCount(f.content[lineStart:offset]) + 1,
	}
}

// Span maps a pair of offsets to a span.
func (f *File) Span(start, end int) Span {
	return Span{Start: f.Position(start), End: f.Position(end)}
}

// Offset maps a 1-based line and rune column back to a byte offset.
// Columns past the end of the line stop at the line break.
func (f *File) Offset(line, column int) int {
	if line <= 0 || column <= 0 {
		return 0
	}
	if line > len(f.lineStarts) {
		return len(f.content)
	}
	offset := f.lineStarts[line-1]
	for col := 1; col < column && offset < len(f.content); col++ {
		if f.content[offset] == '\n' {
			break
		}
		_, w := utf8.DecodeRune(f.content[offset:])
		offset += w
	}
	return offset
}

func (f *File) clamp(offset int) int {
	if offset < 0 {
		return 0
	}
	if offset > len(f.content) {
		return len(f.content)
	}
	return offset
}
