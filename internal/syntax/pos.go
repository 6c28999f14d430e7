package syntax

import "strconv"

// Pos is a line and column in a named source file. Columns count
// characters from 1. The zero Pos is not a position.
type Pos struct {
	filename  string
	line, col uint32
}

func NewPos(filename string, line, col uint32) Pos {
	return Pos{filename: filename, line: line, col: col}
}

// String formats p as "file:line:col", leaving out the file name when
// there is none.
func (p Pos) String() string {
	s := strconv.FormatUint(uint64(p.line), 10) + ":" + strconv.FormatUint(uint64(p.col), 10)
	if p.filename == "" {
		return s
	}
	return p.filename + ":" + s
}

func (p Pos) IsValid() bool { return p.line > 0 }

func (p Pos) Line() uint32 { return p.line }

func (p Pos) Col() uint32 { return p.col }

func (p Pos) Filename() string { return p.filename }
