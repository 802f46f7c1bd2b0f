package source

import (
	"fmt"
	"sort"
	"unicode/utf8"
)

// File holds a source file and precomputed line offsets for diagnostics.
type File struct {
	Name        string
	Input       string
	lineOffsets []int // 0-based byte offsets of each line start
}

func NewFile(name string, input string) *File {
	f := &File{Name: name, Input: input}
	f.lineOffsets = []int{0}
	for i := 0; i < len(input); i++ {
		if input[i] == '\n' {
			f.lineOffsets = append(f.lineOffsets, i+1)
		}
	}
	return f
}

// LineCol returns 1-based line/column for a byte offset.
// Column is counted in runes, not bytes.
func (f *File) LineCol(off int) (int, int) {
	if off < 0 {
		off = 0
	}
	if off > len(f.Input) {
		off = len(f.Input)
	}
	i := sort.Search(len(f.lineOffsets), func(i int) bool { return f.lineOffsets[i] > off }) - 1
	if i < 0 {
		i = 0
	}
	col := 1
	pos := f.lineOffsets[i]
	for pos < off {
		_, sz := utf8.DecodeRuneInString(f.Input[pos:])
		if sz <= 0 {
			sz = 1
		}
		if pos+sz > off {
			break
		}
		col++
		pos += sz
	}
	return i + 1, col
}

// Span is a byte range [Start, End) inside a File.
// The zero Span is "no location".
type Span struct {
	File       *File
	Start, End int
}

func NewSpan(f *File, start, end int) Span {
	return Span{File: f, Start: start, End: end}
}

func (s Span) IsZero() bool {
	return s.File == nil && s.Start == 0 && s.End == 0
}

func (s Span) Filename() string {
	if s.File == nil {
		return ""
	}
	return s.File.Name
}

// LocStart returns the filename and 1-based position of the span start.
func (s Span) LocStart() (filename string, line int, col int) {
	if s.File == nil {
		return "", 0, 0
	}
	line, col = s.File.LineCol(s.Start)
	return s.File.Name, line, col
}

// Text returns the source text covered by the span.
func (s Span) Text() string {
	if s.File == nil || s.Start < 0 || s.End > len(s.File.Input) || s.Start > s.End {
		return ""
	}
	return s.File.Input[s.Start:s.End]
}

// Equal compares spans by file identity and byte range.
func (s Span) Equal(o Span) bool {
	return s.File == o.File && s.Start == o.Start && s.End == o.End
}

// Join returns the smallest span covering both s and o. Spans from
// different files are not joined; s is returned unchanged.
func (s Span) Join(o Span) Span {
	if s.IsZero() {
		return o
	}
	if o.IsZero() || s.File != o.File {
		return s
	}
	start, end := s.Start, s.End
	if o.Start < start {
		start = o.Start
	}
	if o.End > end {
		end = o.End
	}
	return Span{File: s.File, Start: start, End: end}
}

// PathWithLineCol renders "file:line:col", or "" for the zero span.
func (s Span) PathWithLineCol() string {
	name, line, col := s.LocStart()
	if s.File == nil {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", name, line, col)
}

func (s Span) String() string {
	if s.File == nil {
		return "<unknown>"
	}
	return s.PathWithLineCol()
}
